package teacher

import "context"

// ══════════════════════════════════════════════════════════════════════════════
// REPOSITORY INTERFACE
// Implementations live in infrastructure/persistence.
// ══════════════════════════════════════════════════════════════════════════════

// Repository defines the persistence operations for teacher profiles.
type Repository interface {
	// Create registers a new teacher profile.
	// Returns ErrTeacherAlreadyExists if the staff ID is taken.
	Create(ctx context.Context, profile *TeacherProfile) error

	// GetByStaffID returns the profile for a staff ID.
	// Returns ErrTeacherNotFound if no profile is recorded.
	GetByStaffID(ctx context.Context, staffID StaffID) (*TeacherProfile, error)

	// Update overwrites the stored profile.
	// Returns ErrTeacherNotFound if no profile is recorded.
	Update(ctx context.Context, profile *TeacherProfile) error

	// Delete removes a teacher profile.
	// Returns ErrTeacherNotFound if no profile is recorded.
	Delete(ctx context.Context, staffID StaffID) error

	// GetAll returns all teacher profiles.
	GetAll(ctx context.Context) ([]*TeacherProfile, error)

	// Exists checks whether a profile is recorded for the staff ID.
	Exists(ctx context.Context, staffID StaffID) (bool, error)

	// Count returns the number of registered teachers.
	Count(ctx context.Context) (int, error)
}
