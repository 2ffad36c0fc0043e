package eventhandler

import (
	"context"
	"log/slog"

	"github.com/study-buddy/study-buddy-backend/internal/domain/recommendation"
	"github.com/study-buddy/study-buddy-backend/internal/domain/shared"
	"github.com/study-buddy/study-buddy-backend/internal/domain/student"
)

// ═══════════════════════════════════════════════════════════════════════════
// ON STUDENT UPDATED HANDLER
// A profile change invalidates up to three caches: the profile itself,
// the student's recommendation listing when scores moved, and the class
// averages of the student's grade.
// ═══════════════════════════════════════════════════════════════════════════

// AverageInvalidator drops cached class averages of a grade. Satisfied
// by the Redis average cache.
type AverageInvalidator interface {
	InvalidateGrade(ctx context.Context, grade int) error
}

// OnStudentUpdatedHandler keeps the caches in step with profile edits.
type OnStudentUpdatedHandler struct {
	studentRepo  student.Repository
	studentCache student.Cache
	recCache     recommendation.Cache
	averageCache AverageInvalidator
	logger       *slog.Logger
}

// NewOnStudentUpdatedHandler creates the handler. Any cache may be nil,
// which skips that invalidation.
func NewOnStudentUpdatedHandler(
	studentRepo student.Repository,
	studentCache student.Cache,
	recCache recommendation.Cache,
	averageCache AverageInvalidator,
	logger *slog.Logger,
) *OnStudentUpdatedHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return &OnStudentUpdatedHandler{
		studentRepo:  studentRepo,
		studentCache: studentCache,
		recCache:     recCache,
		averageCache: averageCache,
		logger:       logger.With("handler", "on_student_updated"),
	}
}

// Handle implements shared.EventHandler.
func (h *OnStudentUpdatedHandler) Handle(event shared.Event) error {
	updated, ok := event.(shared.StudentUpdatedEvent)
	if !ok {
		h.logger.Warn("received unexpected event type", "event_type", event.EventType())
		return nil
	}

	ctx := context.Background()

	if h.studentCache != nil {
		if err := h.studentCache.Delete(ctx, student.RollNo(updated.RollNo)); err != nil {
			h.logger.Warn("failed to invalidate student cache",
				"roll_no", updated.RollNo,
				"error", err,
			)
		}
	}

	scoresChanged := fieldChanged(updated.ChangedFields, "scores")
	gradeChanged := fieldChanged(updated.ChangedFields, "grade")

	// New scores can change which subjects count as weak, so the stored
	// listing may no longer match what the next pipeline run produces.
	if scoresChanged && h.recCache != nil {
		if err := h.recCache.Invalidate(ctx, updated.RollNo); err != nil {
			h.logger.Warn("failed to invalidate recommendation cache",
				"roll_no", updated.RollNo,
				"error", err,
			)
		}
	}

	if (scoresChanged || gradeChanged) && h.averageCache != nil {
		h.invalidateGradeAverages(ctx, updated.RollNo)
	}

	h.logger.Debug("student caches invalidated",
		"roll_no", updated.RollNo,
		"changed_fields", updated.ChangedFields,
	)

	return nil
}

// invalidateGradeAverages loads the profile to learn the grade, then
// drops that grade's cached averages. The event carries no grade, and
// after a grade change the old grade's entries expire by TTL.
func (h *OnStudentUpdatedHandler) invalidateGradeAverages(ctx context.Context, rollNo int) {
	profile, err := h.studentRepo.GetByRollNo(ctx, student.RollNo(rollNo))
	if err != nil {
		h.logger.Warn("failed to load profile for average invalidation",
			"roll_no", rollNo,
			"error", err,
		)
		return
	}

	if err := h.averageCache.InvalidateGrade(ctx, profile.Grade.Int()); err != nil {
		h.logger.Warn("failed to invalidate class averages",
			"roll_no", rollNo,
			"grade", profile.Grade.Int(),
			"error", err,
		)
	}
}

// EventType returns the event type this handler reacts to.
func (h *OnStudentUpdatedHandler) EventType() shared.EventType {
	return shared.EventStudentUpdated
}

// fieldChanged reports whether the changed-fields list names the field.
func fieldChanged(fields []string, name string) bool {
	for _, f := range fields {
		if f == name {
			return true
		}
	}
	return false
}

// ═══════════════════════════════════════════════════════════════════════════
// ON STUDENT REGISTERED HANDLER
// A new profile with scores shifts its grade's class averages.
// ═══════════════════════════════════════════════════════════════════════════

// OnStudentRegisteredHandler drops cached class averages of the grade a
// new student joined.
type OnStudentRegisteredHandler struct {
	averageCache AverageInvalidator
	logger       *slog.Logger
}

// NewOnStudentRegisteredHandler creates the handler.
func NewOnStudentRegisteredHandler(averageCache AverageInvalidator, logger *slog.Logger) *OnStudentRegisteredHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return &OnStudentRegisteredHandler{
		averageCache: averageCache,
		logger:       logger.With("handler", "on_student_registered"),
	}
}

// Handle implements shared.EventHandler.
func (h *OnStudentRegisteredHandler) Handle(event shared.Event) error {
	registered, ok := event.(shared.StudentRegisteredEvent)
	if !ok {
		h.logger.Warn("received unexpected event type", "event_type", event.EventType())
		return nil
	}

	if h.averageCache == nil {
		return nil
	}

	ctx := context.Background()
	if err := h.averageCache.InvalidateGrade(ctx, registered.Grade); err != nil {
		h.logger.Warn("failed to invalidate class averages",
			"roll_no", registered.RollNo,
			"grade", registered.Grade,
			"error", err,
		)
	}

	return nil
}

// EventType returns the event type this handler reacts to.
func (h *OnStudentRegisteredHandler) EventType() shared.EventType {
	return shared.EventStudentRegistered
}
