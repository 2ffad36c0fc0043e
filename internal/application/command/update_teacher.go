package command

import (
	"context"
	"fmt"
	"time"

	"github.com/study-buddy/study-buddy-backend/internal/domain/shared"
	"github.com/study-buddy/study-buddy-backend/internal/domain/teacher"
)

// ══════════════════════════════════════════════════════════════════════════════
// UPDATE TEACHER COMMAND
// Partial update of an existing teacher profile. Zero values leave a
// field unchanged.
// ══════════════════════════════════════════════════════════════════════════════

// UpdateTeacherCommand contains the data for a partial profile update.
type UpdateTeacherCommand struct {
	// StaffID identifies the profile to update.
	StaffID int

	// Name replaces the display name when non-empty.
	Name string

	// Grades replaces the set of taught grades when non-empty.
	Grades []int

	// Subject replaces the taught subject when non-empty.
	Subject string
}

// Validate validates the command.
func (c UpdateTeacherCommand) Validate() error {
	if c.StaffID <= 0 {
		return shared.NewDomainError("teacher", "UpdateTeacher", shared.ErrInvalidID, "staff id must be positive")
	}
	if c.Name == "" && len(c.Grades) == 0 && c.Subject == "" {
		return shared.NewDomainError("teacher", "UpdateTeacher", shared.ErrInvalidInput, "nothing to update")
	}
	return nil
}

// UpdateTeacherResult contains the result of the update.
type UpdateTeacherResult struct {
	// StaffID is the updated staff identifier.
	StaffID int

	// ChangedFields names the fields that were modified.
	ChangedFields []string

	// UpdatedAt is when the profile was last modified.
	UpdatedAt time.Time
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// UpdateTeacherHandler handles the UpdateTeacherCommand.
type UpdateTeacherHandler struct {
	teacherRepo    teacher.Repository
	eventPublisher shared.EventPublisher
}

// NewUpdateTeacherHandler creates a new UpdateTeacherHandler.
func NewUpdateTeacherHandler(
	teacherRepo teacher.Repository,
	eventPublisher shared.EventPublisher,
) *UpdateTeacherHandler {
	return &UpdateTeacherHandler{
		teacherRepo:    teacherRepo,
		eventPublisher: eventPublisher,
	}
}

// Handle executes the update teacher command.
func (h *UpdateTeacherHandler) Handle(ctx context.Context, cmd UpdateTeacherCommand) (*UpdateTeacherResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, fmt.Errorf("update_teacher: validation failed: %w", err)
	}

	profile, err := h.teacherRepo.GetByStaffID(ctx, teacher.StaffID(cmd.StaffID))
	if err != nil {
		return nil, fmt.Errorf("update_teacher: %w", err)
	}

	changed := make([]string, 0, 3)

	if cmd.Name != "" && cmd.Name != profile.Name {
		if err := profile.Rename(cmd.Name); err != nil {
			return nil, shared.WrapError("teacher", "UpdateTeacher", shared.ErrValidation, "invalid name", err)
		}
		changed = append(changed, "name")
	}

	if len(cmd.Grades) > 0 {
		if err := profile.ChangeGrades(teacher.Grades(cmd.Grades)); err != nil {
			return nil, shared.WrapError("teacher", "UpdateTeacher", shared.ErrValidation, "invalid grades", err)
		}
		changed = append(changed, "grades")
	}

	if cmd.Subject != "" && cmd.Subject != profile.Subject {
		if err := profile.ChangeSubject(cmd.Subject); err != nil {
			return nil, shared.WrapError("teacher", "UpdateTeacher", shared.ErrValidation, "invalid subject", err)
		}
		changed = append(changed, "subject")
	}

	if len(changed) == 0 {
		return &UpdateTeacherResult{
			StaffID:       profile.StaffID.Int(),
			ChangedFields: changed,
			UpdatedAt:     profile.UpdatedAt,
		}, nil
	}

	if err := h.teacherRepo.Update(ctx, profile); err != nil {
		return nil, fmt.Errorf("update_teacher: %w", err)
	}

	if h.eventPublisher != nil {
		event := shared.NewTeacherUpdatedEvent(profile.StaffID.Int(), changed)
		_ = h.eventPublisher.Publish(event)
	}

	return &UpdateTeacherResult{
		StaffID:       profile.StaffID.Int(),
		ChangedFields: changed,
		UpdatedAt:     profile.UpdatedAt,
	}, nil
}
