package command

import (
	"context"
	"fmt"
	"time"

	"github.com/study-buddy/study-buddy-backend/internal/domain/shared"
	"github.com/study-buddy/study-buddy-backend/internal/domain/teacher"
)

// ══════════════════════════════════════════════════════════════════════════════
// SAVE TEACHER COMMAND
// Registers a new teacher profile. A staff ID is an identifier, not a
// credential; there is no authentication around it.
// ══════════════════════════════════════════════════════════════════════════════

// SaveTeacherCommand contains the data needed to register a teacher.
type SaveTeacherCommand struct {
	// StaffID is the teacher's staff identifier.
	StaffID int

	// Name is the teacher's display name.
	Name string

	// Grades are the grade levels the teacher teaches.
	Grades []int

	// Subject is the subject the teacher teaches.
	Subject string
}

// Validate validates the command.
func (c SaveTeacherCommand) Validate() error {
	if c.StaffID <= 0 {
		return shared.NewDomainError("teacher", "SaveTeacher", shared.ErrInvalidID, "staff id must be positive")
	}
	if c.Name == "" {
		return shared.NewDomainError("teacher", "SaveTeacher", shared.ErrEmptyValue, "name is required")
	}
	return nil
}

// SaveTeacherResult contains the result of registration.
type SaveTeacherResult struct {
	// StaffID is the registered staff identifier.
	StaffID int

	// Name is the stored display name.
	Name string

	// Grades are the stored grade levels, sorted, no duplicates.
	Grades []int

	// Subject is the stored subject.
	Subject string

	// CreatedAt is when the profile was registered.
	CreatedAt time.Time
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// SaveTeacherHandler handles the SaveTeacherCommand.
type SaveTeacherHandler struct {
	teacherRepo    teacher.Repository
	eventPublisher shared.EventPublisher
}

// NewSaveTeacherHandler creates a new SaveTeacherHandler.
func NewSaveTeacherHandler(
	teacherRepo teacher.Repository,
	eventPublisher shared.EventPublisher,
) *SaveTeacherHandler {
	return &SaveTeacherHandler{
		teacherRepo:    teacherRepo,
		eventPublisher: eventPublisher,
	}
}

// Handle executes the save teacher command.
func (h *SaveTeacherHandler) Handle(ctx context.Context, cmd SaveTeacherCommand) (*SaveTeacherResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, fmt.Errorf("save_teacher: validation failed: %w", err)
	}

	profile, err := teacher.NewTeacherProfile(teacher.NewTeacherParams{
		StaffID: teacher.StaffID(cmd.StaffID),
		Name:    cmd.Name,
		Grades:  teacher.Grades(cmd.Grades),
		Subject: cmd.Subject,
	})
	if err != nil {
		return nil, shared.WrapError("teacher", "SaveTeacher", shared.ErrValidation, "invalid profile", err)
	}

	if err := h.teacherRepo.Create(ctx, profile); err != nil {
		return nil, fmt.Errorf("save_teacher: %w", err)
	}

	if h.eventPublisher != nil {
		event := shared.NewTeacherRegisteredEvent(
			profile.StaffID.Int(),
			profile.Name,
			profile.Subject,
			profile.Grades,
		)
		_ = h.eventPublisher.Publish(event)
	}

	return &SaveTeacherResult{
		StaffID:   profile.StaffID.Int(),
		Name:      profile.Name,
		Grades:    profile.Grades,
		Subject:   profile.Subject,
		CreatedAt: profile.CreatedAt,
	}, nil
}
