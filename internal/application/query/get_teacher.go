package query

import (
	"context"
	"fmt"
	"time"

	"github.com/study-buddy/study-buddy-backend/internal/domain/shared"
	"github.com/study-buddy/study-buddy-backend/internal/domain/teacher"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET TEACHER QUERY
// ══════════════════════════════════════════════════════════════════════════════

// GetTeacherQuery contains the parameters for loading a teacher profile.
type GetTeacherQuery struct {
	// StaffID identifies the teacher.
	StaffID int
}

// Validate validates the query.
func (q GetTeacherQuery) Validate() error {
	if q.StaffID <= 0 {
		return shared.NewDomainError("teacher", "GetTeacher", shared.ErrInvalidID, "staff id must be positive")
	}
	return nil
}

// TeacherDTO is the read model of a teacher profile.
type TeacherDTO struct {
	// StaffID is the teacher's staff identifier.
	StaffID int `json:"staff_id"`

	// Name is the display name.
	Name string `json:"name"`

	// Grades are the taught grade levels, sorted.
	Grades []int `json:"grades"`

	// Subject is the taught subject.
	Subject string `json:"subject"`

	// UpdatedAt is when the profile was last modified.
	UpdatedAt time.Time `json:"updated_at"`
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// GetTeacherHandler handles the GetTeacherQuery.
type GetTeacherHandler struct {
	teacherRepo teacher.Repository
}

// NewGetTeacherHandler creates a new GetTeacherHandler.
func NewGetTeacherHandler(teacherRepo teacher.Repository) *GetTeacherHandler {
	return &GetTeacherHandler{teacherRepo: teacherRepo}
}

// Handle executes the get teacher query.
func (h *GetTeacherHandler) Handle(ctx context.Context, q GetTeacherQuery) (*TeacherDTO, error) {
	if err := q.Validate(); err != nil {
		return nil, fmt.Errorf("get_teacher: validation failed: %w", err)
	}

	profile, err := h.teacherRepo.GetByStaffID(ctx, teacher.StaffID(q.StaffID))
	if err != nil {
		return nil, fmt.Errorf("get_teacher: %w", err)
	}

	return &TeacherDTO{
		StaffID:   profile.StaffID.Int(),
		Name:      profile.Name,
		Grades:    profile.Grades,
		Subject:   profile.Subject,
		UpdatedAt: profile.UpdatedAt,
	}, nil
}
