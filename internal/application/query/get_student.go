// Package query contains read operations (CQRS - Queries).
// Queries never mutate state; the cache-aside ones fall through to the
// repository on any cache error and repopulate on the way out.
package query

import (
	"context"
	"fmt"
	"time"

	"github.com/study-buddy/study-buddy-backend/internal/domain/shared"
	"github.com/study-buddy/study-buddy-backend/internal/domain/student"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET STUDENT QUERY
// Loads one student profile, cache-aside through Redis.
// ══════════════════════════════════════════════════════════════════════════════

// GetStudentQuery contains the parameters for loading a profile.
type GetStudentQuery struct {
	// RollNo identifies the student.
	RollNo int
}

// Validate validates the query.
func (q GetStudentQuery) Validate() error {
	if q.RollNo <= 0 {
		return shared.NewDomainError("student", "GetStudent", shared.ErrInvalidID, "roll number must be positive")
	}
	return nil
}

// SubjectScoreDTO is one subject/score pair in profile order.
type SubjectScoreDTO struct {
	// Subject is the subject name as recorded.
	Subject string `json:"subject"`

	// Score is the recorded score, 0-100.
	Score int `json:"score"`

	// Weak reports whether the score is strictly below 60.
	Weak bool `json:"weak"`
}

// StudentDTO is the read model of a student profile.
type StudentDTO struct {
	// RollNo is the student's roll number.
	RollNo int `json:"roll_no"`

	// Name is the display name.
	Name string `json:"name"`

	// Grade is the school grade level.
	Grade int `json:"grade"`

	// Language is the preferred language of instruction.
	Language string `json:"language"`

	// Scores are the recorded subject scores in profile order.
	Scores []SubjectScoreDTO `json:"scores"`

	// WeakSubjects are the subjects below the weak threshold, in
	// profile order.
	WeakSubjects []string `json:"weak_subjects"`

	// UpdatedAt is when the profile was last modified.
	UpdatedAt time.Time `json:"updated_at"`
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// GetStudentHandler handles the GetStudentQuery.
type GetStudentHandler struct {
	studentRepo  student.Repository
	studentCache student.Cache
	cacheTTL     time.Duration
}

// NewGetStudentHandler creates a new GetStudentHandler.
// The cache may be nil, which disables the cache-aside path.
func NewGetStudentHandler(
	studentRepo student.Repository,
	studentCache student.Cache,
	cacheTTL time.Duration,
) *GetStudentHandler {
	if cacheTTL <= 0 {
		cacheTTL = 10 * time.Minute
	}

	return &GetStudentHandler{
		studentRepo:  studentRepo,
		studentCache: studentCache,
		cacheTTL:     cacheTTL,
	}
}

// Handle executes the get student query.
func (h *GetStudentHandler) Handle(ctx context.Context, q GetStudentQuery) (*StudentDTO, error) {
	if err := q.Validate(); err != nil {
		return nil, fmt.Errorf("get_student: validation failed: %w", err)
	}

	rollNo := student.RollNo(q.RollNo)

	if h.studentCache != nil {
		if profile, err := h.studentCache.Get(ctx, rollNo); err == nil {
			return toStudentDTO(profile), nil
		}
	}

	profile, err := h.studentRepo.GetByRollNo(ctx, rollNo)
	if err != nil {
		return nil, fmt.Errorf("get_student: %w", err)
	}

	if h.studentCache != nil {
		_ = h.studentCache.Set(ctx, profile, h.cacheTTL)
	}

	return toStudentDTO(profile), nil
}

// toStudentDTO maps a profile aggregate onto the read model.
func toStudentDTO(profile *student.StudentProfile) *StudentDTO {
	scores := make([]SubjectScoreDTO, 0, profile.Scores.Len())
	weak := make([]string, 0)

	for _, ss := range profile.Scores {
		scores = append(scores, SubjectScoreDTO{
			Subject: ss.Subject,
			Score:   ss.Score.Int(),
			Weak:    ss.Score.IsWeak(),
		})
		if ss.Score.IsWeak() {
			weak = append(weak, ss.Subject)
		}
	}

	return &StudentDTO{
		RollNo:       profile.RollNo.Int(),
		Name:         profile.Name,
		Grade:        profile.Grade.Int(),
		Language:     profile.Language.String(),
		Scores:       scores,
		WeakSubjects: weak,
		UpdatedAt:    profile.UpdatedAt,
	}
}
