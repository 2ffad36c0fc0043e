// Package command contains write operations (CQRS - Commands).
// Commands validate input, drive the domain aggregates, persist through
// the repositories, and announce changes on the event bus.
package command

import (
	"context"
	"fmt"
	"time"

	"github.com/study-buddy/study-buddy-backend/internal/domain/shared"
	"github.com/study-buddy/study-buddy-backend/internal/domain/student"
)

// ══════════════════════════════════════════════════════════════════════════════
// SAVE STUDENT COMMAND
// Registers a new student profile with initial subject scores.
// ══════════════════════════════════════════════════════════════════════════════

// SubjectScoreInput is one subject/score pair supplied at registration
// or update time. Order matters: the profile preserves it, and the
// pipeline selects weak subjects in that order.
type SubjectScoreInput struct {
	// Subject is the subject name as the student spells it.
	Subject string

	// Score is the recorded score on the 0-100 scale.
	Score int
}

// SaveStudentCommand contains the data needed to register a student.
type SaveStudentCommand struct {
	// RollNo is the student's roll number, the primary identifier.
	RollNo int

	// Name is the student's display name.
	Name string

	// Grade is the school grade level (1-10).
	Grade int

	// Language is the preferred language of instruction.
	Language string

	// Scores are the initial subject scores, in profile order.
	Scores []SubjectScoreInput
}

// Validate validates the command.
func (c SaveStudentCommand) Validate() error {
	if c.RollNo <= 0 {
		return shared.NewDomainError("student", "SaveStudent", shared.ErrInvalidID, "roll number must be positive")
	}
	if c.Name == "" {
		return shared.NewDomainError("student", "SaveStudent", shared.ErrEmptyValue, "name is required")
	}
	return nil
}

// SaveStudentResult contains the result of registration.
type SaveStudentResult struct {
	// RollNo is the registered roll number.
	RollNo int

	// Name is the stored display name.
	Name string

	// Grade is the stored grade level.
	Grade int

	// Language is the stored language of instruction.
	Language string

	// SubjectCount is the number of recorded subject scores.
	SubjectCount int

	// CreatedAt is when the profile was registered.
	CreatedAt time.Time
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// SaveStudentHandler handles the SaveStudentCommand.
type SaveStudentHandler struct {
	studentRepo    student.Repository
	eventPublisher shared.EventPublisher
}

// NewSaveStudentHandler creates a new SaveStudentHandler.
func NewSaveStudentHandler(
	studentRepo student.Repository,
	eventPublisher shared.EventPublisher,
) *SaveStudentHandler {
	return &SaveStudentHandler{
		studentRepo:    studentRepo,
		eventPublisher: eventPublisher,
	}
}

// Handle executes the save student command.
func (h *SaveStudentHandler) Handle(ctx context.Context, cmd SaveStudentCommand) (*SaveStudentResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, fmt.Errorf("save_student: validation failed: %w", err)
	}

	scores := make(student.Scores, 0, len(cmd.Scores))
	for _, in := range cmd.Scores {
		scores = append(scores, student.SubjectScore{
			Subject: in.Subject,
			Score:   student.Score(in.Score),
		})
	}

	profile, err := student.NewStudentProfile(student.NewStudentParams{
		RollNo:   student.RollNo(cmd.RollNo),
		Name:     cmd.Name,
		Grade:    student.Grade(cmd.Grade),
		Language: student.Language(cmd.Language),
		Scores:   scores,
	})
	if err != nil {
		return nil, shared.WrapError("student", "SaveStudent", shared.ErrValidation, "invalid profile", err)
	}

	if err := h.studentRepo.Create(ctx, profile); err != nil {
		return nil, fmt.Errorf("save_student: %w", err)
	}

	if h.eventPublisher != nil {
		event := shared.NewStudentRegisteredEvent(
			profile.RollNo.Int(),
			profile.Name,
			profile.Grade.Int(),
			profile.Language.String(),
		)
		_ = h.eventPublisher.Publish(event)
	}

	return &SaveStudentResult{
		RollNo:       profile.RollNo.Int(),
		Name:         profile.Name,
		Grade:        profile.Grade.Int(),
		Language:     profile.Language.String(),
		SubjectCount: profile.Scores.Len(),
		CreatedAt:    profile.CreatedAt,
	}, nil
}
