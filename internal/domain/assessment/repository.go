package assessment

import (
	"context"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// REPOSITORY INTERFACES
// Implementations live in infrastructure/persistence.
// ══════════════════════════════════════════════════════════════════════════════

// ResultRepository defines the persistence operations for test results.
// Results are append-only: every evaluation inserts a new row.
type ResultRepository interface {
	// Insert stores a new test result.
	Insert(ctx context.Context, result *Result) error

	// GetByStudent returns all results of a student, newest first.
	GetByStudent(ctx context.Context, rollNo int) ([]*Result, error)

	// GetBySubject returns a student's results for one subject,
	// newest first.
	GetBySubject(ctx context.Context, rollNo int, subject string) ([]*Result, error)

	// GetInRange returns a student's results within a time window,
	// newest first.
	GetInRange(ctx context.Context, rollNo int, from, to time.Time) ([]*Result, error)

	// CountByStudent returns the number of recorded results.
	CountByStudent(ctx context.Context, rollNo int) (int, error)
}

// ══════════════════════════════════════════════════════════════════════════════
// QUIZ STORE
// Holds generated quizzes until the student submits answers. Quizzes
// expire, so the store is usually backed by Redis with a TTL.
// ══════════════════════════════════════════════════════════════════════════════

// QuizStore defines short-lived storage for pending quizzes.
type QuizStore interface {
	// Save stores a generated quiz as the student's pending quiz,
	// replacing any previous one.
	Save(ctx context.Context, quiz *Quiz, ttl time.Duration) error

	// GetPending returns the student's pending quiz.
	// Returns ErrQuizNotFound if none is stored or it expired.
	GetPending(ctx context.Context, rollNo int) (*Quiz, error)

	// Delete drops the student's pending quiz after evaluation.
	Delete(ctx context.Context, rollNo int) error
}
