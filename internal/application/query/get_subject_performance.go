package query

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/study-buddy/study-buddy-backend/internal/domain/assessment"
	"github.com/study-buddy/study-buddy-backend/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET SUBJECT PERFORMANCE QUERY
// Aggregates a student's test history per subject: attempts, average
// section scores, and when the subject was last taken.
// ══════════════════════════════════════════════════════════════════════════════

// GetSubjectPerformanceQuery contains the parameters for the aggregate.
type GetSubjectPerformanceQuery struct {
	// RollNo identifies the student.
	RollNo int
}

// Validate validates the query.
func (q GetSubjectPerformanceQuery) Validate() error {
	if q.RollNo <= 0 {
		return shared.NewDomainError("assessment", "GetPerformance", shared.ErrInvalidID, "roll number must be positive")
	}
	return nil
}

// SubjectPerformanceDTO is the aggregate of one subject's attempts.
type SubjectPerformanceDTO struct {
	// Subject is the tested subject.
	Subject string `json:"subject"`

	// Attempts is the number of recorded tests.
	Attempts int `json:"attempts"`

	// AvgQuizScore is the mean multiple-choice score, two decimals.
	AvgQuizScore float64 `json:"avg_quiz_score"`

	// AvgEvaluatedScore is the mean scenario score, two decimals.
	AvgEvaluatedScore float64 `json:"avg_evaluated_score"`

	// AvgTotalScore is the mean total score, two decimals.
	AvgTotalScore float64 `json:"avg_total_score"`

	// BestTotalScore is the highest total score recorded.
	BestTotalScore int `json:"best_total_score"`

	// LastTakenAt is when the subject was last tested.
	LastTakenAt time.Time `json:"last_taken_at"`
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// GetSubjectPerformanceHandler handles the GetSubjectPerformanceQuery.
type GetSubjectPerformanceHandler struct {
	resultRepo assessment.ResultRepository
}

// NewGetSubjectPerformanceHandler creates a new GetSubjectPerformanceHandler.
func NewGetSubjectPerformanceHandler(resultRepo assessment.ResultRepository) *GetSubjectPerformanceHandler {
	return &GetSubjectPerformanceHandler{resultRepo: resultRepo}
}

// Handle executes the performance query. Subjects appear in the order
// of their most recent attempt because the repository returns results
// newest first.
func (h *GetSubjectPerformanceHandler) Handle(ctx context.Context, q GetSubjectPerformanceQuery) ([]SubjectPerformanceDTO, error) {
	if err := q.Validate(); err != nil {
		return nil, fmt.Errorf("get_subject_performance: validation failed: %w", err)
	}

	results, err := h.resultRepo.GetByStudent(ctx, q.RollNo)
	if err != nil {
		return nil, fmt.Errorf("get_subject_performance: %w", err)
	}

	type bucket struct {
		attempts     int
		quizSum      int
		evaluatedSum int
		totalSum     int
		bestTotal    int
		lastTakenAt  time.Time
	}

	order := make([]string, 0)
	buckets := make(map[string]*bucket)

	for _, r := range results {
		b, seen := buckets[r.Subject]
		if !seen {
			b = &bucket{}
			buckets[r.Subject] = b
			order = append(order, r.Subject)
		}

		b.attempts++
		b.quizSum += r.QuizScore
		b.evaluatedSum += r.EvaluatedScore
		b.totalSum += r.TotalScore
		if r.TotalScore > b.bestTotal {
			b.bestTotal = r.TotalScore
		}
		if r.TestDate.After(b.lastTakenAt) {
			b.lastTakenAt = r.TestDate
		}
	}

	dtos := make([]SubjectPerformanceDTO, 0, len(order))
	for _, subject := range order {
		b := buckets[subject]
		n := float64(b.attempts)
		dtos = append(dtos, SubjectPerformanceDTO{
			Subject:           subject,
			Attempts:          b.attempts,
			AvgQuizScore:      round2(float64(b.quizSum) / n),
			AvgEvaluatedScore: round2(float64(b.evaluatedSum) / n),
			AvgTotalScore:     round2(float64(b.totalSum) / n),
			BestTotalScore:    b.bestTotal,
			LastTakenAt:       b.lastTakenAt,
		})
	}

	return dtos, nil
}

// round2 rounds to two decimal places.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
