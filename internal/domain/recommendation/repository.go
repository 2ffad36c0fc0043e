package recommendation

import (
	"context"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// REPOSITORY INTERFACES
// These interfaces define the contract for working with the data store.
// Implementations live in infrastructure/persistence.
// ══════════════════════════════════════════════════════════════════════════════

// Repository defines the persistence operations for recommendations.
type Repository interface {
	// ─────────────────────────────────────────────────────────────────────────
	// Write Operations
	// ─────────────────────────────────────────────────────────────────────────

	// Upsert writes a recommendation, overwriting the previous row for
	// the same (roll number, subject, language) key.
	Upsert(ctx context.Context, rec *Recommendation) error

	// Delete removes one recommendation row.
	// Returns ErrRecommendationNotFound if the key has no row.
	Delete(ctx context.Context, rollNo int, subject, language string) error

	// DeleteByStudent removes all recommendations of a student.
	DeleteByStudent(ctx context.Context, rollNo int) error

	// ─────────────────────────────────────────────────────────────────────────
	// Read Operations
	// ─────────────────────────────────────────────────────────────────────────

	// GetByStudent returns all recommendations of a student, ordered
	// by subject then language.
	GetByStudent(ctx context.Context, rollNo int) ([]*Recommendation, error)

	// GetByStudentAndSubject returns the stored materials for one
	// weak subject of a student.
	GetByStudentAndSubject(ctx context.Context, rollNo int, subject string) ([]*Recommendation, error)

	// GetStale returns recommendations last updated before the cutoff,
	// up to limit rows. Used by the dead-link sweep.
	GetStale(ctx context.Context, olderThan time.Time, limit int) ([]*Recommendation, error)

	// CountByStudent returns the number of stored rows for a student.
	CountByStudent(ctx context.Context, rollNo int) (int, error)
}

// ══════════════════════════════════════════════════════════════════════════════
// CACHE INTERFACE
// Caches a student's recommendation list between chat turns.
// ══════════════════════════════════════════════════════════════════════════════

// Cache defines caching operations for recommendation lists.
type Cache interface {
	// Get fetches the cached recommendation list of a student.
	Get(ctx context.Context, rollNo int) ([]*Recommendation, error)

	// Set stores the recommendation list of a student.
	Set(ctx context.Context, rollNo int, recs []*Recommendation, ttl time.Duration) error

	// Invalidate drops the cached list of a student.
	Invalidate(ctx context.Context, rollNo int) error
}
