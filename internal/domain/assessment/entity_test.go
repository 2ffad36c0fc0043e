package assessment

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/study-buddy/study-buddy-backend/internal/domain/shared"
)

// ─────────────────────────────────────────────────────────────────────────────
// Builders
// ─────────────────────────────────────────────────────────────────────────────

func buildQuiz(t *testing.T) *Quiz {
	t.Helper()

	mcq := make([]Question, 0, QuestionsPerSection)
	scenarios := make([]Question, 0, QuestionsPerSection)
	keys := []AnswerKey{"A", "B", "C", "D", "A"}

	for i := 1; i <= QuestionsPerSection; i++ {
		mcq = append(mcq, Question{
			Number: i,
			Kind:   KindMultipleChoice,
			Text:   "pick the right option",
			Options: []Option{
				{Key: "A", Text: "first"},
				{Key: "B", Text: "second"},
				{Key: "C", Text: "third"},
				{Key: "D", Text: "fourth"},
			},
			CorrectAnswer: keys[i-1],
		})
		scenarios = append(scenarios, Question{
			Number: i,
			Kind:   KindScenario,
			Text:   "explain your reasoning",
		})
	}

	quiz, err := NewQuiz(NewQuizParams{
		ID:             "quiz-1",
		RollNo:         42,
		Subject:        "maths",
		Grade:          8,
		Language:       "english",
		MultipleChoice: mcq,
		Scenarios:      scenarios,
	})
	require.NoError(t, err)
	return quiz
}

func allGrades(points int) []ScenarioGrade {
	grades := make([]ScenarioGrade, QuestionsPerSection)
	for i := range grades {
		grades[i] = ScenarioGrade{Number: i + 1, Points: points}
	}
	return grades
}

// ─────────────────────────────────────────────────────────────────────────────
// Quiz structure
// ─────────────────────────────────────────────────────────────────────────────

func TestNewQuiz_RejectsWrongSectionSize(t *testing.T) {
	quiz := buildQuiz(t)

	_, err := NewQuiz(NewQuizParams{
		ID:             "quiz-2",
		RollNo:         42,
		Subject:        "maths",
		MultipleChoice: quiz.MultipleChoice[:4],
		Scenarios:      quiz.Scenarios,
	})
	assert.ErrorIs(t, err, ErrInvalidQuizStructure)
}

func TestNewQuiz_RejectsMissingCorrectAnswer(t *testing.T) {
	quiz := buildQuiz(t)

	broken := make([]Question, len(quiz.MultipleChoice))
	copy(broken, quiz.MultipleChoice)
	broken[2].CorrectAnswer = "E"

	_, err := NewQuiz(NewQuizParams{
		ID:             "quiz-3",
		RollNo:         42,
		Subject:        "maths",
		MultipleChoice: broken,
		Scenarios:      quiz.Scenarios,
	})
	assert.ErrorIs(t, err, ErrInvalidQuizStructure)
}

// ─────────────────────────────────────────────────────────────────────────────
// Multiple-choice scoring
// ─────────────────────────────────────────────────────────────────────────────

func TestScoreMultipleChoice(t *testing.T) {
	quiz := buildQuiz(t)

	tests := []struct {
		name    string
		answers map[int]string
		want    int
		wantErr error
	}{
		{
			name:    "all correct",
			answers: map[int]string{1: "A", 2: "B", 3: "C", 4: "D", 5: "A"},
			want:    MaxSectionScore,
		},
		{
			name:    "lowercase and padding still match",
			answers: map[int]string{1: " a ", 2: "b", 3: "c", 4: "d", 5: "a"},
			want:    MaxSectionScore,
		},
		{
			name:    "three of five",
			answers: map[int]string{1: "A", 2: "B", 3: "C", 4: "A", 5: "B"},
			want:    3 * PointsPerQuestion,
		},
		{
			name:    "all wrong scores zero",
			answers: map[int]string{1: "B", 2: "C", 3: "D", 4: "A", 5: "B"},
			want:    0,
		},
		{
			name:    "missing answer",
			answers: map[int]string{1: "A", 2: "B", 3: "C", 4: "D"},
			wantErr: ErrAnswerCountMismatch,
		},
		{
			name:    "answer for the wrong question number",
			answers: map[int]string{1: "A", 2: "B", 3: "C", 4: "D", 9: "A"},
			wantErr: ErrAnswerCountMismatch,
		},
		{
			name:    "invalid option key",
			answers: map[int]string{1: "A", 2: "B", 3: "C", 4: "D", 5: "X"},
			wantErr: ErrInvalidAnswerKey,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, err := quiz.ScoreMultipleChoice(AnswerSheet{QuizAnswers: tt.answers})
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, score)
		})
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Scenario grading
// ─────────────────────────────────────────────────────────────────────────────

func TestSumScenarioGrades(t *testing.T) {
	quiz := buildQuiz(t)

	total, err := quiz.SumScenarioGrades([]ScenarioGrade{
		{Number: 1, Points: 20},
		{Number: 2, Points: 15},
		{Number: 3, Points: 10},
		{Number: 4, Points: 5},
		{Number: 5, Points: 0},
	})
	require.NoError(t, err)
	assert.Equal(t, 50, total)
}

func TestSumScenarioGrades_RejectsOffLadderPoints(t *testing.T) {
	quiz := buildQuiz(t)

	grades := allGrades(10)
	grades[1].Points = 7

	_, err := quiz.SumScenarioGrades(grades)
	assert.ErrorIs(t, err, ErrInvalidScenarioPoints)
}

func TestSumScenarioGrades_RejectsMissingGrade(t *testing.T) {
	quiz := buildQuiz(t)

	_, err := quiz.SumScenarioGrades(allGrades(20)[:3])
	assert.ErrorIs(t, err, ErrAnswerCountMismatch)
}

// ─────────────────────────────────────────────────────────────────────────────
// Totals and results
// ─────────────────────────────────────────────────────────────────────────────

func TestTotalScore_RoundsHalfUp(t *testing.T) {
	assert.Equal(t, 78, TotalScore(80, 75))
	assert.Equal(t, 60, TotalScore(60, 60))
	assert.Equal(t, 0, TotalScore(0, 0))
	assert.Equal(t, 100, TotalScore(100, 100))
	assert.Equal(t, 53, TotalScore(100, 5))
}

func TestNewResult(t *testing.T) {
	result, err := NewResult(7, "  science  ", 80, 55)
	require.NoError(t, err)

	assert.Equal(t, 7, result.RollNo)
	assert.Equal(t, "science", result.Subject)
	assert.Equal(t, 68, result.TotalScore)
	assert.Equal(t, "UTC", result.TestDate.Location().String())
}

func TestNewResult_RejectsOutOfRangeScores(t *testing.T) {
	_, err := NewResult(7, "science", 120, 50)
	assert.ErrorIs(t, err, ErrInvalidScore)

	_, err = NewResult(7, "science", 50, -5)
	assert.ErrorIs(t, err, ErrInvalidScore)
}

func TestSentinelErrors_CarrySharedKinds(t *testing.T) {
	// Quiz stores wrap the sentinels; the HTTP and chat layers branch
	// on the shared kind, so it must survive the wrapping.
	assert.True(t, shared.IsNotFound(fmt.Errorf("get_quiz: %w", ErrQuizNotFound)))
	assert.True(t, shared.IsNotFound(fmt.Errorf("get_result: %w", ErrResultNotFound)))
	assert.ErrorIs(t, ErrQuizNotFound, shared.ErrNotFound)
}
