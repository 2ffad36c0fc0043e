package query

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/study-buddy/study-buddy-backend/internal/domain/assessment"
)

type MockResultRepo struct {
	assessment.ResultRepository
	results []*assessment.Result
	err     error
}

func (m *MockResultRepo) GetByStudent(_ context.Context, _ int) ([]*assessment.Result, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.results, nil
}

func resultAt(subject string, quiz, evaluated int, daysAgo int) *assessment.Result {
	return &assessment.Result{
		RollNo:         42,
		Subject:        subject,
		QuizScore:      quiz,
		EvaluatedScore: evaluated,
		TotalScore:     assessment.TotalScore(quiz, evaluated),
		TestDate:       time.Now().UTC().AddDate(0, 0, -daysAgo),
	}
}

func TestGetSubjectPerformance_AggregatesPerSubject(t *testing.T) {
	// Newest first, the way the repository returns them.
	repo := &MockResultRepo{results: []*assessment.Result{
		resultAt("maths", 80, 70, 1),
		resultAt("science", 60, 60, 3),
		resultAt("maths", 40, 50, 10),
	}}
	handler := NewGetSubjectPerformanceHandler(repo)

	dtos, err := handler.Handle(context.Background(), GetSubjectPerformanceQuery{RollNo: 42})
	require.NoError(t, err)
	require.Len(t, dtos, 2)

	// Subjects keep most-recent-attempt order.
	maths := dtos[0]
	assert.Equal(t, "maths", maths.Subject)
	assert.Equal(t, 2, maths.Attempts)
	assert.Equal(t, 60.0, maths.AvgQuizScore)
	assert.Equal(t, 60.0, maths.AvgEvaluatedScore)
	assert.Equal(t, 60.0, maths.AvgTotalScore)
	assert.Equal(t, 75, maths.BestTotalScore)

	science := dtos[1]
	assert.Equal(t, "science", science.Subject)
	assert.Equal(t, 1, science.Attempts)
	assert.Equal(t, 60.0, science.AvgTotalScore)
}

func TestGetSubjectPerformance_LastTakenAtIsTheNewestAttempt(t *testing.T) {
	newest := resultAt("maths", 80, 70, 1)
	repo := &MockResultRepo{results: []*assessment.Result{
		newest,
		resultAt("maths", 40, 50, 30),
	}}
	handler := NewGetSubjectPerformanceHandler(repo)

	dtos, err := handler.Handle(context.Background(), GetSubjectPerformanceQuery{RollNo: 42})
	require.NoError(t, err)
	require.Len(t, dtos, 1)

	assert.Equal(t, newest.TestDate, dtos[0].LastTakenAt)
}

func TestGetSubjectPerformance_NoHistory(t *testing.T) {
	handler := NewGetSubjectPerformanceHandler(&MockResultRepo{})

	dtos, err := handler.Handle(context.Background(), GetSubjectPerformanceQuery{RollNo: 42})
	require.NoError(t, err)
	assert.Empty(t, dtos)
}

func TestGetSubjectPerformance_RejectsBadRollNo(t *testing.T) {
	handler := NewGetSubjectPerformanceHandler(&MockResultRepo{})

	_, err := handler.Handle(context.Background(), GetSubjectPerformanceQuery{RollNo: 0})
	assert.Error(t, err)
}
