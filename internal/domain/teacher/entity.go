// Package teacher contains the domain model for school teachers:
// who they are, which grades they teach, and the analytics views
// they are allowed to ask for.
package teacher

import (
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/study-buddy/study-buddy-backend/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// VALUE OBJECTS
// ══════════════════════════════════════════════════════════════════════════════

// StaffID represents a teacher's staff identifier.
type StaffID int

// IsValid checks that the staff ID is positive.
func (s StaffID) IsValid() bool {
	return s > 0
}

// Int returns the underlying int value.
func (s StaffID) Int() int {
	return int(s)
}

// Grades is the set of grade levels a teacher teaches, e.g. [5, 6, 7].
type Grades []int

// IsValid checks that the set is non-empty and every grade is in range.
func (g Grades) IsValid() bool {
	if len(g) == 0 {
		return false
	}
	for _, grade := range g {
		if grade < 1 || grade > 10 {
			return false
		}
	}
	return true
}

// Contains reports whether the teacher teaches the grade.
func (g Grades) Contains(grade int) bool {
	for _, v := range g {
		if v == grade {
			return true
		}
	}
	return false
}

// Normalized returns the grades sorted with duplicates removed.
func (g Grades) Normalized() Grades {
	seen := make(map[int]bool, len(g))
	out := make(Grades, 0, len(g))
	for _, grade := range g {
		if !seen[grade] {
			seen[grade] = true
			out = append(out, grade)
		}
	}
	sort.Ints(out)
	return out
}

// ══════════════════════════════════════════════════════════════════════════════
// TEACHER PROFILE (AGGREGATE ROOT)
// ══════════════════════════════════════════════════════════════════════════════

// TeacherProfile is the aggregate root of the teacher domain.
type TeacherProfile struct {
	// StaffID - unique staff identifier, the aggregate identifier.
	StaffID StaffID

	// Name - teacher's display name.
	Name string

	// Grades - grade levels the teacher teaches, sorted, no duplicates.
	Grades Grades

	// Subject - the subject the teacher teaches.
	Subject string

	// CreatedAt - when the profile was registered.
	CreatedAt time.Time

	// UpdatedAt - when the profile was last modified.
	UpdatedAt time.Time
}

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN ERRORS
// ══════════════════════════════════════════════════════════════════════════════

var (
	// ErrInvalidStaffID - staff ID must be positive.
	ErrInvalidStaffID = errors.New("invalid staff id: must be positive")

	// ErrInvalidName - name must be 1-100 characters.
	ErrInvalidName = errors.New("invalid name: must be 1-100 chars")

	// ErrInvalidGrades - grades must be non-empty and within 1-10.
	ErrInvalidGrades = errors.New("invalid grades: must be non-empty, each between 1 and 10")

	// ErrInvalidSubject - subject name must be 2-50 characters.
	ErrInvalidSubject = errors.New("invalid subject: must be 2-50 chars")

	// ErrGradeNotTaught - the teacher does not teach the requested grade.
	ErrGradeNotTaught = errors.New("teacher does not teach this grade")

	// ErrTeacherNotFound - no profile recorded for the staff ID.
	// Aliases the shared sentinel so errors.Is sees shared.ErrNotFound
	// through any wrapping.
	ErrTeacherNotFound = shared.ErrTeacherNotFound

	// ErrTeacherAlreadyExists - a profile already exists for the staff ID.
	ErrTeacherAlreadyExists = shared.ErrTeacherAlreadyExists
)

// ══════════════════════════════════════════════════════════════════════════════
// FACTORY & VALIDATION
// ══════════════════════════════════════════════════════════════════════════════

// NewTeacherParams contains the parameters for registering a teacher.
type NewTeacherParams struct {
	StaffID StaffID
	Name    string
	Grades  Grades
	Subject string
}

// NewTeacherProfile creates a new teacher profile with validation of all fields.
func NewTeacherProfile(params NewTeacherParams) (*TeacherProfile, error) {
	if !params.StaffID.IsValid() {
		return nil, ErrInvalidStaffID
	}

	name := strings.TrimSpace(params.Name)
	if len(name) == 0 || len(name) > 100 {
		return nil, ErrInvalidName
	}

	if !params.Grades.IsValid() {
		return nil, ErrInvalidGrades
	}

	subject := strings.TrimSpace(params.Subject)
	if len(subject) < 2 || len(subject) > 50 {
		return nil, ErrInvalidSubject
	}

	now := time.Now().UTC()

	return &TeacherProfile{
		StaffID:   params.StaffID,
		Name:      name,
		Grades:    params.Grades.Normalized(),
		Subject:   subject,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN METHODS (Business Logic)
// ══════════════════════════════════════════════════════════════════════════════

// TeachesGrade reports whether the teacher teaches the grade level.
func (t *TeacherProfile) TeachesGrade(grade int) bool {
	return t.Grades.Contains(grade)
}

// CanViewGrade checks access to grade-level analytics. Teachers only
// see averages for grades they actually teach.
func (t *TeacherProfile) CanViewGrade(grade int) error {
	if !t.TeachesGrade(grade) {
		return ErrGradeNotTaught
	}
	return nil
}

// Rename updates the teacher's display name.
func (t *TeacherProfile) Rename(name string) error {
	name = strings.TrimSpace(name)
	if len(name) == 0 || len(name) > 100 {
		return ErrInvalidName
	}

	t.Name = name
	t.UpdatedAt = time.Now().UTC()
	return nil
}

// ChangeGrades replaces the set of taught grades.
func (t *TeacherProfile) ChangeGrades(grades Grades) error {
	if !grades.IsValid() {
		return ErrInvalidGrades
	}

	t.Grades = grades.Normalized()
	t.UpdatedAt = time.Now().UTC()
	return nil
}

// ChangeSubject updates the subject the teacher teaches.
func (t *TeacherProfile) ChangeSubject(subject string) error {
	subject = strings.TrimSpace(subject)
	if len(subject) < 2 || len(subject) > 50 {
		return ErrInvalidSubject
	}

	t.Subject = subject
	t.UpdatedAt = time.Now().UTC()
	return nil
}
