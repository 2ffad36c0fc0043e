// Package assessment contains the domain model for skill testing:
// generated quizzes, submitted answer sheets, scoring rules, and the
// test results stored per student and subject.
package assessment

import (
	"errors"
	"math"
	"strings"
	"time"

	"github.com/study-buddy/study-buddy-backend/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// SCORING CONSTANTS
// ══════════════════════════════════════════════════════════════════════════════

const (
	// QuestionsPerSection - each quiz has 5 multiple-choice and
	// 5 scenario questions.
	QuestionsPerSection = 5

	// PointsPerQuestion - a correct answer is worth 20 points, so a
	// full section scores 100.
	PointsPerQuestion = 20

	// MaxSectionScore - maximum score of one section.
	MaxSectionScore = QuestionsPerSection * PointsPerQuestion
)

// ══════════════════════════════════════════════════════════════════════════════
// ENUMS
// ══════════════════════════════════════════════════════════════════════════════

// QuestionKind distinguishes the two quiz sections.
type QuestionKind string

const (
	// KindMultipleChoice - objective question with options A-D.
	KindMultipleChoice QuestionKind = "mcq"
	// KindScenario - open question graded qualitatively.
	KindScenario QuestionKind = "scenario"
)

// IsValid checks that the kind is known.
func (k QuestionKind) IsValid() bool {
	return k == KindMultipleChoice || k == KindScenario
}

// AnswerKey is a multiple-choice option key (A, B, C or D).
type AnswerKey string

// IsValid checks that the key is one of A-D.
func (a AnswerKey) IsValid() bool {
	switch a {
	case "A", "B", "C", "D":
		return true
	default:
		return false
	}
}

// NormalizeAnswerKey uppercases and trims a raw answer so that "b" and
// " B " both match option B.
func NormalizeAnswerKey(raw string) AnswerKey {
	return AnswerKey(strings.ToUpper(strings.TrimSpace(raw)))
}

// ══════════════════════════════════════════════════════════════════════════════
// QUIZ (AGGREGATE ROOT)
// ══════════════════════════════════════════════════════════════════════════════

// Option is one answer choice of a multiple-choice question.
type Option struct {
	// Key - option key, A through D.
	Key AnswerKey
	// Text - the answer text shown to the student.
	Text string
}

// Question is a single quiz question. Multiple-choice questions carry
// options and the correct key; scenario questions carry only the text.
type Question struct {
	// Number - 1-based position within its section.
	Number int

	// Kind - multiple-choice or scenario.
	Kind QuestionKind

	// Text - the question itself, in the quiz language.
	Text string

	// Options - answer choices, exactly four for multiple-choice.
	Options []Option

	// CorrectAnswer - key of the right option, multiple-choice only.
	// Never shown to the student before evaluation.
	CorrectAnswer AnswerKey
}

// Quiz is a generated test for one student and subject. Quizzes are
// short-lived: they wait in a store until the student submits answers
// or the quiz expires.
type Quiz struct {
	// ID - unique quiz identifier assigned at generation time.
	ID string

	// RollNo - the student the quiz was generated for.
	RollNo int

	// Subject - the tested subject.
	Subject string

	// Grade - grade level the difficulty was calibrated for.
	Grade int

	// Language - language the questions are written in.
	Language string

	// MultipleChoice - the objective section, 5 questions.
	MultipleChoice []Question

	// Scenarios - the open section, 5 questions.
	Scenarios []Question

	// CreatedAt - when the quiz was generated.
	CreatedAt time.Time
}

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN ERRORS
// ══════════════════════════════════════════════════════════════════════════════

var (
	// ErrInvalidQuizStructure - a quiz must have 5+5 well-formed questions.
	ErrInvalidQuizStructure = errors.New("invalid quiz: expected 5 multiple-choice and 5 scenario questions")

	// ErrAnswerCountMismatch - the answer sheet does not cover every question.
	ErrAnswerCountMismatch = errors.New("answer count does not match question count")

	// ErrInvalidAnswerKey - a multiple-choice answer must be A, B, C or D.
	ErrInvalidAnswerKey = errors.New("invalid answer key: must be A, B, C or D")

	// ErrInvalidScenarioPoints - scenario grades go in steps of 5 up to 20.
	ErrInvalidScenarioPoints = errors.New("invalid scenario points: must be 0, 5, 10, 15 or 20")

	// ErrInvalidScore - section scores live on the 0-100 scale.
	ErrInvalidScore = errors.New("invalid score: must be between 0 and 100")

	// ErrQuizNotFound - no pending quiz for the student.
	// Aliases the shared sentinel so errors.Is sees shared.ErrNotFound
	// through any wrapping.
	ErrQuizNotFound = shared.ErrQuizNotFound

	// ErrResultNotFound - no test results recorded.
	ErrResultNotFound = shared.ErrResultNotFound
)

// ══════════════════════════════════════════════════════════════════════════════
// FACTORY & VALIDATION
// ══════════════════════════════════════════════════════════════════════════════

// NewQuizParams contains the parameters for assembling a generated quiz.
type NewQuizParams struct {
	ID             string
	RollNo         int
	Subject        string
	Grade          int
	Language       string
	MultipleChoice []Question
	Scenarios      []Question
}

// NewQuiz assembles a quiz from generated questions, validating the
// structure the evaluator depends on.
func NewQuiz(params NewQuizParams) (*Quiz, error) {
	if params.ID == "" {
		return nil, errors.New("quiz id is required")
	}
	if params.RollNo <= 0 {
		return nil, errors.New("quiz roll number must be positive")
	}
	if strings.TrimSpace(params.Subject) == "" {
		return nil, errors.New("quiz subject is required")
	}

	if len(params.MultipleChoice) != QuestionsPerSection || len(params.Scenarios) != QuestionsPerSection {
		return nil, ErrInvalidQuizStructure
	}

	for _, q := range params.MultipleChoice {
		if q.Kind != KindMultipleChoice || len(q.Options) != 4 || !q.CorrectAnswer.IsValid() {
			return nil, ErrInvalidQuizStructure
		}
		if strings.TrimSpace(q.Text) == "" {
			return nil, ErrInvalidQuizStructure
		}
	}

	for _, q := range params.Scenarios {
		if q.Kind != KindScenario || strings.TrimSpace(q.Text) == "" {
			return nil, ErrInvalidQuizStructure
		}
	}

	return &Quiz{
		ID:             params.ID,
		RollNo:         params.RollNo,
		Subject:        strings.TrimSpace(params.Subject),
		Grade:          params.Grade,
		Language:       params.Language,
		MultipleChoice: params.MultipleChoice,
		Scenarios:      params.Scenarios,
		CreatedAt:      time.Now().UTC(),
	}, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// ANSWER SHEET & SCORING
// ══════════════════════════════════════════════════════════════════════════════

// AnswerSheet is the student's submission: option keys for the
// multiple-choice section and free text for the scenario section,
// both keyed by 1-based question number.
type AnswerSheet struct {
	// QuizAnswers - question number to chosen option key.
	QuizAnswers map[int]string

	// ScenarioAnswers - question number to the student's written answer.
	ScenarioAnswers map[int]string
}

// ScoreMultipleChoice grades the objective section of the quiz against
// the sheet: 20 points per exact match, 0 otherwise. The sheet must
// answer every question.
func (q *Quiz) ScoreMultipleChoice(sheet AnswerSheet) (int, error) {
	if len(sheet.QuizAnswers) != len(q.MultipleChoice) {
		return 0, ErrAnswerCountMismatch
	}

	score := 0
	for _, question := range q.MultipleChoice {
		raw, ok := sheet.QuizAnswers[question.Number]
		if !ok {
			return 0, ErrAnswerCountMismatch
		}

		answer := NormalizeAnswerKey(raw)
		if !answer.IsValid() {
			return 0, ErrInvalidAnswerKey
		}

		if answer == question.CorrectAnswer {
			score += PointsPerQuestion
		}
	}

	return score, nil
}

// ScenarioGrade is the evaluator's judgement of one scenario answer.
type ScenarioGrade struct {
	// Number - 1-based scenario question number.
	Number int

	// Points - awarded points: 0, 5, 10, 15 or 20.
	Points int

	// Comment - short justification shown to the student.
	Comment string
}

// IsValid checks that the awarded points are on the 5-point ladder.
func (g ScenarioGrade) IsValid() bool {
	return g.Points >= 0 && g.Points <= PointsPerQuestion && g.Points%5 == 0
}

// SumScenarioGrades totals the evaluator's scenario grades, validating
// that every question was graded on the allowed ladder.
func (q *Quiz) SumScenarioGrades(grades []ScenarioGrade) (int, error) {
	if len(grades) != len(q.Scenarios) {
		return 0, ErrAnswerCountMismatch
	}

	total := 0
	for _, g := range grades {
		if !g.IsValid() {
			return 0, ErrInvalidScenarioPoints
		}
		total += g.Points
	}

	return total, nil
}

// TotalScore combines the two section scores into the final mark:
// the rounded average of both.
func TotalScore(quizScore, evaluatedScore int) int {
	return int(math.Round(float64(quizScore+evaluatedScore) / 2))
}

// ══════════════════════════════════════════════════════════════════════════════
// RESULT (AGGREGATE ROOT)
// ══════════════════════════════════════════════════════════════════════════════

// Result is one stored test outcome. Results are append-only history;
// a student retaking a subject gets a new row, not an overwrite.
type Result struct {
	// RollNo - the tested student.
	RollNo int

	// Subject - the tested subject.
	Subject string

	// QuizScore - multiple-choice section score, 0-100.
	QuizScore int

	// EvaluatedScore - scenario section score, 0-100.
	EvaluatedScore int

	// TotalScore - rounded average of both sections.
	TotalScore int

	// TestDate - when the test was evaluated.
	TestDate time.Time
}

// NewResult builds a test result from the two section scores.
func NewResult(rollNo int, subject string, quizScore, evaluatedScore int) (*Result, error) {
	if rollNo <= 0 {
		return nil, errors.New("result roll number must be positive")
	}

	subject = strings.TrimSpace(subject)
	if subject == "" {
		return nil, errors.New("result subject is required")
	}

	if quizScore < 0 || quizScore > MaxSectionScore {
		return nil, ErrInvalidScore
	}
	if evaluatedScore < 0 || evaluatedScore > MaxSectionScore {
		return nil, ErrInvalidScore
	}

	return &Result{
		RollNo:         rollNo,
		Subject:        subject,
		QuizScore:      quizScore,
		EvaluatedScore: evaluatedScore,
		TotalScore:     TotalScore(quizScore, evaluatedScore),
		TestDate:       time.Now().UTC(),
	}, nil
}
