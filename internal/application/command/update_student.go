package command

import (
	"context"
	"fmt"
	"time"

	"github.com/study-buddy/study-buddy-backend/internal/domain/shared"
	"github.com/study-buddy/study-buddy-backend/internal/domain/student"
)

// ══════════════════════════════════════════════════════════════════════════════
// UPDATE STUDENT COMMAND
// Partial update of an existing profile. Zero values leave a field
// unchanged; supplied scores are recorded on top of the existing ones.
// ══════════════════════════════════════════════════════════════════════════════

// UpdateStudentCommand contains the data for a partial profile update.
type UpdateStudentCommand struct {
	// RollNo identifies the profile to update.
	RollNo int

	// Name replaces the display name when non-empty.
	Name string

	// Grade replaces the grade level when non-zero.
	Grade int

	// Language replaces the language of instruction when non-empty.
	Language string

	// Scores are recorded on top of the existing scores. An existing
	// subject is overwritten in place, a new one is appended.
	Scores []SubjectScoreInput
}

// Validate validates the command.
func (c UpdateStudentCommand) Validate() error {
	if c.RollNo <= 0 {
		return shared.NewDomainError("student", "UpdateStudent", shared.ErrInvalidID, "roll number must be positive")
	}
	if c.Name == "" && c.Grade == 0 && c.Language == "" && len(c.Scores) == 0 {
		return shared.NewDomainError("student", "UpdateStudent", shared.ErrInvalidInput, "nothing to update")
	}
	return nil
}

// UpdateStudentResult contains the result of the update.
type UpdateStudentResult struct {
	// RollNo is the updated roll number.
	RollNo int

	// ChangedFields names the fields that were modified.
	ChangedFields []string

	// UpdatedAt is when the profile was last modified.
	UpdatedAt time.Time
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// UpdateStudentHandler handles the UpdateStudentCommand.
type UpdateStudentHandler struct {
	studentRepo    student.Repository
	eventPublisher shared.EventPublisher
}

// NewUpdateStudentHandler creates a new UpdateStudentHandler.
func NewUpdateStudentHandler(
	studentRepo student.Repository,
	eventPublisher shared.EventPublisher,
) *UpdateStudentHandler {
	return &UpdateStudentHandler{
		studentRepo:    studentRepo,
		eventPublisher: eventPublisher,
	}
}

// Handle executes the update student command.
func (h *UpdateStudentHandler) Handle(ctx context.Context, cmd UpdateStudentCommand) (*UpdateStudentResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, fmt.Errorf("update_student: validation failed: %w", err)
	}

	profile, err := h.studentRepo.GetByRollNo(ctx, student.RollNo(cmd.RollNo))
	if err != nil {
		return nil, fmt.Errorf("update_student: %w", err)
	}

	changed := make([]string, 0, 4)

	if cmd.Name != "" && cmd.Name != profile.Name {
		if err := profile.Rename(cmd.Name); err != nil {
			return nil, shared.WrapError("student", "UpdateStudent", shared.ErrValidation, "invalid name", err)
		}
		changed = append(changed, "name")
	}

	if cmd.Grade != 0 && cmd.Grade != profile.Grade.Int() {
		if err := profile.ChangeGrade(student.Grade(cmd.Grade)); err != nil {
			return nil, shared.WrapError("student", "UpdateStudent", shared.ErrValidation, "invalid grade", err)
		}
		changed = append(changed, "grade")
	}

	if cmd.Language != "" && cmd.Language != profile.Language.String() {
		if err := profile.ChangeLanguage(student.Language(cmd.Language)); err != nil {
			return nil, shared.WrapError("student", "UpdateStudent", shared.ErrValidation, "invalid language", err)
		}
		changed = append(changed, "language")
	}

	if len(cmd.Scores) > 0 {
		for _, in := range cmd.Scores {
			if err := profile.RecordScore(in.Subject, student.Score(in.Score)); err != nil {
				return nil, shared.WrapError("student", "UpdateStudent", shared.ErrValidation, "invalid score", err)
			}
		}
		changed = append(changed, "scores")
	}

	if len(changed) == 0 {
		return &UpdateStudentResult{
			RollNo:        profile.RollNo.Int(),
			ChangedFields: changed,
			UpdatedAt:     profile.UpdatedAt,
		}, nil
	}

	if err := h.studentRepo.Update(ctx, profile); err != nil {
		return nil, fmt.Errorf("update_student: %w", err)
	}

	if h.eventPublisher != nil {
		event := shared.NewStudentUpdatedEvent(profile.RollNo.Int(), changed)
		_ = h.eventPublisher.Publish(event)
	}

	return &UpdateStudentResult{
		RollNo:        profile.RollNo.Int(),
		ChangedFields: changed,
		UpdatedAt:     profile.UpdatedAt,
	}, nil
}
