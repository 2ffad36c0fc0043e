package command

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/study-buddy/study-buddy-backend/internal/domain/assessment"
	"github.com/study-buddy/study-buddy-backend/internal/domain/shared"
	"github.com/study-buddy/study-buddy-backend/internal/domain/student"
)

// ─────────────────────────────────────────────────────────────────────────────
// Recording mocks
// ─────────────────────────────────────────────────────────────────────────────

// MockStudentRepo embeds the interface so only the methods the handlers
// touch need an implementation.
type MockStudentRepo struct {
	student.Repository
	profile *student.StudentProfile
	err     error
}

func (m *MockStudentRepo) GetByRollNo(_ context.Context, _ student.RollNo) (*student.StudentProfile, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.profile, nil
}

type MockQuizStore struct {
	saved    *assessment.Quiz
	savedTTL time.Duration
	pending  *assessment.Quiz
	deleted  []int
}

func (m *MockQuizStore) Save(_ context.Context, quiz *assessment.Quiz, ttl time.Duration) error {
	m.saved = quiz
	m.savedTTL = ttl
	m.pending = quiz
	return nil
}

func (m *MockQuizStore) GetPending(_ context.Context, _ int) (*assessment.Quiz, error) {
	if m.pending == nil {
		return nil, assessment.ErrQuizNotFound
	}
	return m.pending, nil
}

func (m *MockQuizStore) Delete(_ context.Context, rollNo int) error {
	m.deleted = append(m.deleted, rollNo)
	m.pending = nil
	return nil
}

type MockQuizGenerator struct {
	quiz *assessment.Quiz
	spec QuizSpec
	err  error
}

func (m *MockQuizGenerator) GenerateQuiz(_ context.Context, spec QuizSpec) (*assessment.Quiz, error) {
	m.spec = spec
	if m.err != nil {
		return nil, m.err
	}
	return m.quiz, nil
}

type MockEvaluator struct {
	grades  []assessment.ScenarioGrade
	answers map[int]string
	err     error
}

func (m *MockEvaluator) EvaluateScenarios(_ context.Context, _ *assessment.Quiz, answers map[int]string) ([]assessment.ScenarioGrade, error) {
	m.answers = answers
	if m.err != nil {
		return nil, m.err
	}
	return m.grades, nil
}

type MockResultRepo struct {
	assessment.ResultRepository
	inserted []*assessment.Result
	err      error
}

func (m *MockResultRepo) Insert(_ context.Context, result *assessment.Result) error {
	if m.err != nil {
		return m.err
	}
	m.inserted = append(m.inserted, result)
	return nil
}

type MockPublisher struct {
	events []shared.Event
}

func (m *MockPublisher) Publish(event shared.Event) error {
	m.events = append(m.events, event)
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Builders
// ─────────────────────────────────────────────────────────────────────────────

func buildProfile(t *testing.T) *student.StudentProfile {
	t.Helper()

	profile, err := student.NewStudentProfile(student.NewStudentParams{
		RollNo:   42,
		Name:     "Asha Verma",
		Grade:    8,
		Language: student.LanguageHindi,
		Scores:   student.Scores{{Subject: "maths", Score: 55}},
	})
	require.NoError(t, err)
	return profile
}

func buildQuiz(t *testing.T) *assessment.Quiz {
	t.Helper()

	mcq := make([]assessment.Question, 0, assessment.QuestionsPerSection)
	scenarios := make([]assessment.Question, 0, assessment.QuestionsPerSection)
	for i := 1; i <= assessment.QuestionsPerSection; i++ {
		mcq = append(mcq, assessment.Question{
			Number: i,
			Kind:   assessment.KindMultipleChoice,
			Text:   "question",
			Options: []assessment.Option{
				{Key: "A", Text: "a"}, {Key: "B", Text: "b"},
				{Key: "C", Text: "c"}, {Key: "D", Text: "d"},
			},
			CorrectAnswer: "A",
		})
		scenarios = append(scenarios, assessment.Question{
			Number: i,
			Kind:   assessment.KindScenario,
			Text:   "scenario",
		})
	}

	quiz, err := assessment.NewQuiz(assessment.NewQuizParams{
		ID:             "quiz-1",
		RollNo:         42,
		Subject:        "maths",
		Grade:          8,
		Language:       "hindi",
		MultipleChoice: mcq,
		Scenarios:      scenarios,
	})
	require.NoError(t, err)
	return quiz
}

func fullSheet(points string) assessment.AnswerSheet {
	sheet := assessment.AnswerSheet{
		QuizAnswers:     make(map[int]string),
		ScenarioAnswers: make(map[int]string),
	}
	for i := 1; i <= assessment.QuestionsPerSection; i++ {
		sheet.QuizAnswers[i] = points
		sheet.ScenarioAnswers[i] = "written answer"
	}
	return sheet
}

// ─────────────────────────────────────────────────────────────────────────────
// GenerateQuiz
// ─────────────────────────────────────────────────────────────────────────────

func TestGenerateQuizHandler_Handle(t *testing.T) {
	store := &MockQuizStore{}
	gen := &MockQuizGenerator{quiz: buildQuiz(t)}
	handler := NewGenerateQuizHandler(&MockStudentRepo{profile: buildProfile(t)}, gen, store, 15*time.Minute)

	result, err := handler.Handle(context.Background(), GenerateQuizCommand{RollNo: 42, Subject: "maths"})
	require.NoError(t, err)

	// The quiz spec carries the profile's grade and language, not defaults.
	assert.Equal(t, QuizSpec{RollNo: 42, Subject: "maths", Grade: 8, Language: "hindi"}, gen.spec)
	assert.Same(t, gen.quiz, store.saved)
	assert.Equal(t, 15*time.Minute, store.savedTTL)
	assert.Equal(t, 15*time.Minute, result.ExpiresIn)
}

func TestGenerateQuizHandler_UnknownStudent(t *testing.T) {
	store := &MockQuizStore{}
	handler := NewGenerateQuizHandler(&MockStudentRepo{err: student.ErrStudentNotFound}, &MockQuizGenerator{}, store, 0)

	_, err := handler.Handle(context.Background(), GenerateQuizCommand{RollNo: 99, Subject: "maths"})
	require.Error(t, err)
	assert.ErrorIs(t, err, student.ErrStudentNotFound)
	assert.Nil(t, store.saved)
}

func TestGenerateQuizHandler_GenerationFailure(t *testing.T) {
	store := &MockQuizStore{}
	gen := &MockQuizGenerator{err: errors.New("model returned garbage")}
	handler := NewGenerateQuizHandler(&MockStudentRepo{profile: buildProfile(t)}, gen, store, 0)

	_, err := handler.Handle(context.Background(), GenerateQuizCommand{RollNo: 42, Subject: "maths"})
	require.Error(t, err)
	assert.True(t, shared.IsGeneration(err))
	assert.Nil(t, store.saved)
}

// ─────────────────────────────────────────────────────────────────────────────
// EvaluateQuiz
// ─────────────────────────────────────────────────────────────────────────────

func TestEvaluateQuizHandler_Handle(t *testing.T) {
	store := &MockQuizStore{pending: buildQuiz(t)}
	evaluator := &MockEvaluator{grades: []assessment.ScenarioGrade{
		{Number: 1, Points: 20}, {Number: 2, Points: 15}, {Number: 3, Points: 10},
		{Number: 4, Points: 15}, {Number: 5, Points: 20},
	}}
	repo := &MockResultRepo{}
	pub := &MockPublisher{}
	handler := NewEvaluateQuizHandler(store, evaluator, repo, pub)

	// All multiple-choice answers correct: 100 quiz + 80 evaluated.
	result, err := handler.Handle(context.Background(), EvaluateQuizCommand{RollNo: 42, Sheet: fullSheet("A")})
	require.NoError(t, err)

	assert.Equal(t, "maths", result.Subject)
	assert.Equal(t, 100, result.QuizScore)
	assert.Equal(t, 80, result.EvaluatedScore)
	assert.Equal(t, 90, result.TotalScore)
	assert.NotEmpty(t, result.Feedback)

	require.Len(t, repo.inserted, 1)
	assert.Equal(t, 90, repo.inserted[0].TotalScore)

	// The pending quiz is consumed and the evaluation is announced.
	assert.Equal(t, []int{42}, store.deleted)
	require.Len(t, pub.events, 1)
	evaluated, ok := pub.events[0].(shared.QuizEvaluatedEvent)
	require.True(t, ok)
	assert.Equal(t, 90, evaluated.TotalScore)
}

func TestEvaluateQuizHandler_NoPendingQuiz(t *testing.T) {
	handler := NewEvaluateQuizHandler(&MockQuizStore{}, &MockEvaluator{}, &MockResultRepo{}, nil)

	_, err := handler.Handle(context.Background(), EvaluateQuizCommand{RollNo: 42, Sheet: fullSheet("A")})
	assert.ErrorIs(t, err, assessment.ErrQuizNotFound)
}

func TestEvaluateQuizHandler_QuizSurvivesFailedEvaluation(t *testing.T) {
	store := &MockQuizStore{pending: buildQuiz(t)}
	evaluator := &MockEvaluator{err: errors.New("model unavailable")}
	handler := NewEvaluateQuizHandler(store, evaluator, &MockResultRepo{}, nil)

	_, err := handler.Handle(context.Background(), EvaluateQuizCommand{RollNo: 42, Sheet: fullSheet("A")})
	require.Error(t, err)
	assert.True(t, shared.IsGeneration(err))

	// Not consumed: the student can resubmit.
	assert.Empty(t, store.deleted)
	assert.NotNil(t, store.pending)
}

func TestEvaluateQuizHandler_StoreFailureKeepsQuiz(t *testing.T) {
	store := &MockQuizStore{pending: buildQuiz(t)}
	evaluator := &MockEvaluator{grades: []assessment.ScenarioGrade{
		{Number: 1, Points: 20}, {Number: 2, Points: 20}, {Number: 3, Points: 20},
		{Number: 4, Points: 20}, {Number: 5, Points: 20},
	}}
	repo := &MockResultRepo{err: errors.New("connection reset")}
	handler := NewEvaluateQuizHandler(store, evaluator, repo, nil)

	_, err := handler.Handle(context.Background(), EvaluateQuizCommand{RollNo: 42, Sheet: fullSheet("A")})
	require.Error(t, err)
	assert.True(t, shared.IsPersistence(err))
	assert.Empty(t, store.deleted)
}
