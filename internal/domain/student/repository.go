package student

import (
	"context"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// REPOSITORY INTERFACES
// These interfaces define the contract for working with the data store.
// Implementations live in infrastructure/persistence.
// ══════════════════════════════════════════════════════════════════════════════

// Repository defines the core CRUD operations for student profiles.
type Repository interface {
	// ─────────────────────────────────────────────────────────────────────────
	// CRUD Operations
	// ─────────────────────────────────────────────────────────────────────────

	// Create registers a new student profile.
	// Returns ErrStudentAlreadyExists if the roll number is taken.
	Create(ctx context.Context, profile *StudentProfile) error

	// GetByRollNo returns the profile for a roll number.
	// Returns ErrStudentNotFound if no profile is recorded.
	GetByRollNo(ctx context.Context, rollNo RollNo) (*StudentProfile, error)

	// Update overwrites the stored profile.
	// Returns ErrStudentNotFound if no profile is recorded.
	Update(ctx context.Context, profile *StudentProfile) error

	// Delete removes a student profile.
	// Returns ErrStudentNotFound if no profile is recorded.
	Delete(ctx context.Context, rollNo RollNo) error

	// ─────────────────────────────────────────────────────────────────────────
	// Bulk Operations
	// ─────────────────────────────────────────────────────────────────────────

	// GetAll returns all student profiles with pagination.
	GetAll(ctx context.Context, opts ListOptions) ([]*StudentProfile, error)

	// GetByGrade returns the profiles of one grade level.
	GetByGrade(ctx context.Context, grade Grade, opts ListOptions) ([]*StudentProfile, error)

	// Count returns the total number of registered students.
	Count(ctx context.Context) (int, error)

	// CountByGrade returns the number of students in a grade.
	CountByGrade(ctx context.Context, grade Grade) (int, error)

	// ─────────────────────────────────────────────────────────────────────────
	// Search & Analytics
	// ─────────────────────────────────────────────────────────────────────────

	// Search finds students by name.
	Search(ctx context.Context, query string, opts ListOptions) ([]*StudentProfile, error)

	// ClassAverage aggregates scores of one subject across a grade.
	// Returns ErrNoScoresRecorded if no student of the grade has a
	// score for the subject.
	ClassAverage(ctx context.Context, grade Grade, subject string) (*ClassAverage, error)

	// ─────────────────────────────────────────────────────────────────────────
	// Existence Checks
	// ─────────────────────────────────────────────────────────────────────────

	// Exists checks whether a profile is recorded for the roll number.
	Exists(ctx context.Context, rollNo RollNo) (bool, error)
}

// ClassAverage is an aggregate view of one subject across a grade,
// shown to teachers.
type ClassAverage struct {
	// Grade - the aggregated grade level.
	Grade Grade

	// Subject - the aggregated subject, spelled as queried.
	Subject string

	// Average - mean score, rounded to two decimals.
	Average float64

	// Count - number of students with a recorded score.
	Count int

	// Min - lowest recorded score.
	Min Score

	// Max - highest recorded score.
	Max Score
}

// ListOptions contains pagination and sorting parameters.
type ListOptions struct {
	// Offset - number of rows to skip.
	Offset int

	// Limit - maximum number of rows to return.
	Limit int

	// SortBy - column to sort by.
	SortBy string

	// SortDesc - sort in descending order.
	SortDesc bool
}

// DefaultListOptions returns the default pagination parameters.
func DefaultListOptions() ListOptions {
	return ListOptions{
		Offset:   0,
		Limit:    50,
		SortBy:   "roll_no",
		SortDesc: false,
	}
}

// WithOffset sets the offset.
func (o ListOptions) WithOffset(offset int) ListOptions {
	o.Offset = offset
	return o
}

// WithLimit sets the limit.
func (o ListOptions) WithLimit(limit int) ListOptions {
	o.Limit = limit
	return o
}

// WithSort sets the sort column and direction.
func (o ListOptions) WithSort(field string, desc bool) ListOptions {
	o.SortBy = field
	o.SortDesc = desc
	return o
}

// ══════════════════════════════════════════════════════════════════════════════
// CACHE INTERFACE
// Caches frequently requested profiles (usually backed by Redis).
// ══════════════════════════════════════════════════════════════════════════════

// Cache defines caching operations for student profiles.
type Cache interface {
	// Get fetches a profile from the cache.
	Get(ctx context.Context, rollNo RollNo) (*StudentProfile, error)

	// Set stores a profile in the cache.
	Set(ctx context.Context, profile *StudentProfile, ttl time.Duration) error

	// Delete removes a profile from the cache.
	Delete(ctx context.Context, rollNo RollNo) error

	// InvalidateAll clears the whole student cache.
	InvalidateAll(ctx context.Context) error
}
