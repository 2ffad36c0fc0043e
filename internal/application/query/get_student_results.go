package query

import (
	"context"
	"fmt"
	"time"

	"github.com/study-buddy/study-buddy-backend/internal/domain/assessment"
	"github.com/study-buddy/study-buddy-backend/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET STUDENT RESULTS QUERY
// Lists a student's test history, newest first.
// ══════════════════════════════════════════════════════════════════════════════

// GetStudentResultsQuery contains the parameters for the history.
type GetStudentResultsQuery struct {
	// RollNo identifies the student.
	RollNo int

	// Subject narrows the history to one subject when non-empty.
	Subject string
}

// Validate validates the query.
func (q GetStudentResultsQuery) Validate() error {
	if q.RollNo <= 0 {
		return shared.NewDomainError("assessment", "GetResults", shared.ErrInvalidID, "roll number must be positive")
	}
	return nil
}

// ResultDTO is one stored test outcome.
type ResultDTO struct {
	// Subject is the tested subject.
	Subject string `json:"subject"`

	// QuizScore is the multiple-choice section score, 0-100.
	QuizScore int `json:"quiz_score"`

	// EvaluatedScore is the scenario section score, 0-100.
	EvaluatedScore int `json:"evaluated_score"`

	// TotalScore is the rounded average of both sections.
	TotalScore int `json:"total_score"`

	// Feedback is the performance band text for the total score.
	Feedback string `json:"feedback"`

	// TestDate is when the test was evaluated.
	TestDate time.Time `json:"test_date"`
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// GetStudentResultsHandler handles the GetStudentResultsQuery.
type GetStudentResultsHandler struct {
	resultRepo assessment.ResultRepository
}

// NewGetStudentResultsHandler creates a new GetStudentResultsHandler.
func NewGetStudentResultsHandler(resultRepo assessment.ResultRepository) *GetStudentResultsHandler {
	return &GetStudentResultsHandler{resultRepo: resultRepo}
}

// Handle executes the results query. A student with no recorded tests
// gets an empty list, not an error.
func (h *GetStudentResultsHandler) Handle(ctx context.Context, q GetStudentResultsQuery) ([]ResultDTO, error) {
	if err := q.Validate(); err != nil {
		return nil, fmt.Errorf("get_student_results: validation failed: %w", err)
	}

	var (
		results []*assessment.Result
		err     error
	)

	if q.Subject != "" {
		results, err = h.resultRepo.GetBySubject(ctx, q.RollNo, q.Subject)
	} else {
		results, err = h.resultRepo.GetByStudent(ctx, q.RollNo)
	}
	if err != nil {
		return nil, fmt.Errorf("get_student_results: %w", err)
	}

	dtos := make([]ResultDTO, 0, len(results))
	for _, r := range results {
		dtos = append(dtos, ResultDTO{
			Subject:        r.Subject,
			QuizScore:      r.QuizScore,
			EvaluatedScore: r.EvaluatedScore,
			TotalScore:     r.TotalScore,
			Feedback:       shared.Score(r.TotalScore).Band().Feedback(),
			TestDate:       r.TestDate,
		})
	}

	return dtos, nil
}
