// Package postgres implements the PostgreSQL persistence layer for Study Buddy.
package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/study-buddy/study-buddy-backend/internal/domain/teacher"

	"github.com/jackc/pgx/v5"
)

// ══════════════════════════════════════════════════════════════════════════════
// TEACHER REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// TeacherRepository implements teacher.Repository for PostgreSQL.
type TeacherRepository struct {
	conn *Connection
}

// NewTeacherRepository creates a new TeacherRepository.
func NewTeacherRepository(conn *Connection) *TeacherRepository {
	return &TeacherRepository{conn: conn}
}

// Create registers a new teacher profile.
func (r *TeacherRepository) Create(ctx context.Context, t *teacher.TeacherProfile) error {
	query := `
		INSERT INTO teachers (
			staff_id, name, subject, grades, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6)
	`

	gradesJSON, err := json.Marshal(t.Grades)
	if err != nil {
		return fmt.Errorf("failed to marshal grades: %w", err)
	}

	_, err = r.conn.Exec(ctx, query,
		t.StaffID.Int(),
		t.Name,
		t.Subject,
		gradesJSON,
		t.CreatedAt,
		t.UpdatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return teacher.ErrTeacherAlreadyExists
		}
		return fmt.Errorf("failed to create teacher: %w", err)
	}

	return nil
}

// GetByStaffID returns a teacher profile by staff ID.
func (r *TeacherRepository) GetByStaffID(ctx context.Context, staffID teacher.StaffID) (*teacher.TeacherProfile, error) {
	query := `
		SELECT staff_id, name, subject, grades, created_at, updated_at
		FROM teachers
		WHERE staff_id = $1
	`

	row := r.conn.QueryRow(ctx, query, staffID.Int())
	return r.scanTeacher(row)
}

// Update overwrites the stored profile.
func (r *TeacherRepository) Update(ctx context.Context, t *teacher.TeacherProfile) error {
	query := `
		UPDATE teachers SET
			name = $1,
			subject = $2,
			grades = $3,
			updated_at = $4
		WHERE staff_id = $5
	`

	gradesJSON, err := json.Marshal(t.Grades)
	if err != nil {
		return fmt.Errorf("failed to marshal grades: %w", err)
	}

	result, err := r.conn.Exec(ctx, query,
		t.Name,
		t.Subject,
		gradesJSON,
		t.UpdatedAt,
		t.StaffID.Int(),
	)
	if err != nil {
		return fmt.Errorf("failed to update teacher: %w", err)
	}

	if result.RowsAffected() == 0 {
		return teacher.ErrTeacherNotFound
	}

	return nil
}

// Delete removes a teacher profile.
func (r *TeacherRepository) Delete(ctx context.Context, staffID teacher.StaffID) error {
	result, err := r.conn.Exec(ctx,
		"DELETE FROM teachers WHERE staff_id = $1",
		staffID.Int(),
	)
	if err != nil {
		return fmt.Errorf("failed to delete teacher: %w", err)
	}

	if result.RowsAffected() == 0 {
		return teacher.ErrTeacherNotFound
	}

	return nil
}

// GetAll returns all teacher profiles ordered by staff ID.
func (r *TeacherRepository) GetAll(ctx context.Context) ([]*teacher.TeacherProfile, error) {
	query := `
		SELECT staff_id, name, subject, grades, created_at, updated_at
		FROM teachers
		ORDER BY staff_id
	`

	rows, err := r.conn.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query teachers: %w", err)
	}
	defer rows.Close()

	return r.scanTeachers(rows)
}

// Exists checks whether a profile is recorded for the staff ID.
func (r *TeacherRepository) Exists(ctx context.Context, staffID teacher.StaffID) (bool, error) {
	var exists bool
	err := r.conn.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM teachers WHERE staff_id = $1)",
		staffID.Int(),
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check teacher existence: %w", err)
	}
	return exists, nil
}

// Count returns the number of registered teachers.
func (r *TeacherRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.conn.QueryRow(ctx, "SELECT COUNT(*) FROM teachers").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count teachers: %w", err)
	}
	return count, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// HELPER METHODS
// ══════════════════════════════════════════════════════════════════════════════

// scanTeacher scans a single teacher profile from a row.
func (r *TeacherRepository) scanTeacher(row pgx.Row) (*teacher.TeacherProfile, error) {
	var t teacher.TeacherProfile
	var staffID int
	var gradesJSON []byte

	err := row.Scan(
		&staffID,
		&t.Name,
		&t.Subject,
		&gradesJSON,
		&t.CreatedAt,
		&t.UpdatedAt,
	)

	if IsNoRows(err) {
		return nil, teacher.ErrTeacherNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan teacher: %w", err)
	}

	t.StaffID = teacher.StaffID(staffID)
	t.Grades = gradesFromJSON(gradesJSON)

	return &t, nil
}

// scanTeachers scans multiple teacher profiles from rows.
func (r *TeacherRepository) scanTeachers(rows pgx.Rows) ([]*teacher.TeacherProfile, error) {
	var teachers []*teacher.TeacherProfile

	for rows.Next() {
		var t teacher.TeacherProfile
		var staffID int
		var gradesJSON []byte

		err := rows.Scan(
			&staffID,
			&t.Name,
			&t.Subject,
			&gradesJSON,
			&t.CreatedAt,
			&t.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan teacher: %w", err)
		}

		t.StaffID = teacher.StaffID(staffID)
		t.Grades = gradesFromJSON(gradesJSON)

		teachers = append(teachers, &t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return teachers, nil
}

// gradesFromJSON unmarshals the JSONB grade array. Corrupt data
// degrades to an empty set rather than failing the read.
func gradesFromJSON(data []byte) teacher.Grades {
	var grades teacher.Grades
	if len(data) > 0 {
		_ = json.Unmarshal(data, &grades)
	}
	return grades
}
