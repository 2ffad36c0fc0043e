// Package postgres implements the PostgreSQL persistence layer for Study Buddy.
package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/study-buddy/study-buddy-backend/internal/domain/student"

	"github.com/jackc/pgx/v5"
)

// ══════════════════════════════════════════════════════════════════════════════
// STUDENT REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// StudentRepository implements student.Repository for PostgreSQL.
type StudentRepository struct {
	conn *Connection
}

// NewStudentRepository creates a new StudentRepository.
func NewStudentRepository(conn *Connection) *StudentRepository {
	return &StudentRepository{conn: conn}
}

// ─────────────────────────────────────────────────────────────────────────────
// CRUD Operations
// ─────────────────────────────────────────────────────────────────────────────

// Create registers a new student profile.
func (r *StudentRepository) Create(ctx context.Context, p *student.StudentProfile) error {
	query := `
		INSERT INTO students (
			roll_no, name, grade, language, scores, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	scoresJSON, err := scoresToJSON(p.Scores)
	if err != nil {
		return fmt.Errorf("failed to marshal scores: %w", err)
	}

	_, err = r.conn.Exec(ctx, query,
		p.RollNo.Int(),
		p.Name,
		p.Grade.Int(),
		p.Language.String(),
		scoresJSON,
		p.CreatedAt,
		p.UpdatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return student.ErrStudentAlreadyExists
		}
		return fmt.Errorf("failed to create student: %w", err)
	}

	return nil
}

// GetByRollNo returns a student profile by roll number.
func (r *StudentRepository) GetByRollNo(ctx context.Context, rollNo student.RollNo) (*student.StudentProfile, error) {
	query := `
		SELECT roll_no, name, grade, language, scores, created_at, updated_at
		FROM students
		WHERE roll_no = $1
	`

	row := r.conn.QueryRow(ctx, query, rollNo.Int())
	return r.scanStudent(row)
}

// Update overwrites the stored profile.
func (r *StudentRepository) Update(ctx context.Context, p *student.StudentProfile) error {
	query := `
		UPDATE students SET
			name = $1,
			grade = $2,
			language = $3,
			scores = $4,
			updated_at = $5
		WHERE roll_no = $6
	`

	scoresJSON, err := scoresToJSON(p.Scores)
	if err != nil {
		return fmt.Errorf("failed to marshal scores: %w", err)
	}

	result, err := r.conn.Exec(ctx, query,
		p.Name,
		p.Grade.Int(),
		p.Language.String(),
		scoresJSON,
		p.UpdatedAt,
		p.RollNo.Int(),
	)
	if err != nil {
		return fmt.Errorf("failed to update student: %w", err)
	}

	if result.RowsAffected() == 0 {
		return student.ErrStudentNotFound
	}

	return nil
}

// Delete removes a student profile. Recommendations and test results
// of the student go with it via ON DELETE CASCADE.
func (r *StudentRepository) Delete(ctx context.Context, rollNo student.RollNo) error {
	result, err := r.conn.Exec(ctx,
		"DELETE FROM students WHERE roll_no = $1",
		rollNo.Int(),
	)
	if err != nil {
		return fmt.Errorf("failed to delete student: %w", err)
	}

	if result.RowsAffected() == 0 {
		return student.ErrStudentNotFound
	}

	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Bulk Operations
// ─────────────────────────────────────────────────────────────────────────────

// GetAll returns all student profiles with pagination.
func (r *StudentRepository) GetAll(ctx context.Context, opts student.ListOptions) ([]*student.StudentProfile, error) {
	query := r.buildListQuery(opts, "")
	return r.queryStudents(ctx, query, opts.Limit, opts.Offset)
}

// GetByGrade returns the profiles of one grade level.
func (r *StudentRepository) GetByGrade(ctx context.Context, grade student.Grade, opts student.ListOptions) ([]*student.StudentProfile, error) {
	query := r.buildListQuery(opts, "grade = $3")
	return r.queryStudentsWithArgs(ctx, query, opts.Limit, opts.Offset, grade.Int())
}

// Count returns the total number of registered students.
func (r *StudentRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.conn.QueryRow(ctx, "SELECT COUNT(*) FROM students").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count students: %w", err)
	}
	return count, nil
}

// CountByGrade returns the number of students in a grade.
func (r *StudentRepository) CountByGrade(ctx context.Context, grade student.Grade) (int, error) {
	var count int
	err := r.conn.QueryRow(ctx,
		"SELECT COUNT(*) FROM students WHERE grade = $1",
		grade.Int(),
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count students by grade: %w", err)
	}
	return count, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Search & Analytics
// ─────────────────────────────────────────────────────────────────────────────

// Search finds students by name.
func (r *StudentRepository) Search(ctx context.Context, query string, opts student.ListOptions) ([]*student.StudentProfile, error) {
	searchPattern := "%" + strings.ToLower(query) + "%"

	sqlQuery := `
		SELECT roll_no, name, grade, language, scores, created_at, updated_at
		FROM students
		WHERE LOWER(name) LIKE $1
	`

	sqlQuery += r.buildOrderBy(opts)
	sqlQuery += " LIMIT $2 OFFSET $3"

	rows, err := r.conn.Query(ctx, sqlQuery, searchPattern, opts.Limit, opts.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to search students: %w", err)
	}
	defer rows.Close()

	return r.scanStudents(rows)
}

// ClassAverage aggregates scores of one subject across a grade. The
// scores column is a JSONB array, so the aggregation expands it with
// jsonb_array_elements and filters on the subject case-insensitively.
func (r *StudentRepository) ClassAverage(ctx context.Context, grade student.Grade, subject string) (*student.ClassAverage, error) {
	query := `
		SELECT COALESCE(ROUND(AVG((entry->>'score')::int), 2)::float8, 0),
			   COUNT(*),
			   COALESCE(MIN((entry->>'score')::int), 0),
			   COALESCE(MAX((entry->>'score')::int), 0)
		FROM students, jsonb_array_elements(scores) AS entry
		WHERE grade = $1 AND LOWER(entry->>'subject') = LOWER($2)
	`

	var average float64
	var count, lowest, highest int

	err := r.conn.QueryRow(ctx, query, grade.Int(), subject).Scan(&average, &count, &lowest, &highest)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate class average: %w", err)
	}

	if count == 0 {
		return nil, student.ErrNoScoresRecorded
	}

	return &student.ClassAverage{
		Grade:   grade,
		Subject: subject,
		Average: average,
		Count:   count,
		Min:     student.Score(lowest),
		Max:     student.Score(highest),
	}, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Existence Checks
// ─────────────────────────────────────────────────────────────────────────────

// Exists checks whether a profile is recorded for the roll number.
func (r *StudentRepository) Exists(ctx context.Context, rollNo student.RollNo) (bool, error) {
	var exists bool
	err := r.conn.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM students WHERE roll_no = $1)",
		rollNo.Int(),
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check student existence: %w", err)
	}
	return exists, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// HELPER METHODS
// ══════════════════════════════════════════════════════════════════════════════

// scanStudent scans a single student profile from a row.
func (r *StudentRepository) scanStudent(row pgx.Row) (*student.StudentProfile, error) {
	var p student.StudentProfile
	var rollNo, grade int
	var language string
	var scoresJSON []byte

	err := row.Scan(
		&rollNo,
		&p.Name,
		&grade,
		&language,
		&scoresJSON,
		&p.CreatedAt,
		&p.UpdatedAt,
	)

	if IsNoRows(err) {
		return nil, student.ErrStudentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan student: %w", err)
	}

	p.RollNo = student.RollNo(rollNo)
	p.Grade = student.Grade(grade)
	p.Language = student.Language(language)
	p.Scores = scoresFromJSON(scoresJSON)

	return &p, nil
}

// scanStudents scans multiple student profiles from rows.
func (r *StudentRepository) scanStudents(rows pgx.Rows) ([]*student.StudentProfile, error) {
	var profiles []*student.StudentProfile

	for rows.Next() {
		var p student.StudentProfile
		var rollNo, grade int
		var language string
		var scoresJSON []byte

		err := rows.Scan(
			&rollNo,
			&p.Name,
			&grade,
			&language,
			&scoresJSON,
			&p.CreatedAt,
			&p.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan student: %w", err)
		}

		p.RollNo = student.RollNo(rollNo)
		p.Grade = student.Grade(grade)
		p.Language = student.Language(language)
		p.Scores = scoresFromJSON(scoresJSON)

		profiles = append(profiles, &p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return profiles, nil
}

// buildListQuery builds a SELECT query with filters and ordering.
func (r *StudentRepository) buildListQuery(opts student.ListOptions, whereClause string) string {
	query := `
		SELECT roll_no, name, grade, language, scores, created_at, updated_at
		FROM students
	`

	if whereClause != "" {
		query += " WHERE " + whereClause
	}

	query += r.buildOrderBy(opts)
	query += " LIMIT $1 OFFSET $2"

	return query
}

// buildOrderBy builds ORDER BY clause.
func (r *StudentRepository) buildOrderBy(opts student.ListOptions) string {
	orderField := "roll_no"
	validFields := map[string]string{
		"roll_no":    "roll_no",
		"name":       "name",
		"grade":      "grade",
		"created_at": "created_at",
		"updated_at": "updated_at",
	}

	if field, ok := validFields[opts.SortBy]; ok {
		orderField = field
	}

	direction := "ASC"
	if opts.SortDesc {
		direction = "DESC"
	}

	return fmt.Sprintf(" ORDER BY %s %s", orderField, direction)
}

// queryStudents executes a query and returns student profiles.
func (r *StudentRepository) queryStudents(ctx context.Context, query string, limit, offset int) ([]*student.StudentProfile, error) {
	rows, err := r.conn.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query students: %w", err)
	}
	defer rows.Close()

	return r.scanStudents(rows)
}

// queryStudentsWithArgs executes a query with additional args.
func (r *StudentRepository) queryStudentsWithArgs(ctx context.Context, query string, limit, offset int, args ...interface{}) ([]*student.StudentProfile, error) {
	queryArgs := append([]interface{}{limit, offset}, args...)

	rows, err := r.conn.Query(ctx, query, queryArgs...)
	if err != nil {
		return nil, fmt.Errorf("failed to query students: %w", err)
	}
	defer rows.Close()

	return r.scanStudents(rows)
}

// ─────────────────────────────────────────────────────────────────────────────
// JSONB Mapping
// ─────────────────────────────────────────────────────────────────────────────

// subjectScoreDoc is the JSONB shape of one scores array entry.
type subjectScoreDoc struct {
	Subject string `json:"subject"`
	Score   int    `json:"score"`
}

// scoresToJSON marshals scores into the JSONB array, preserving the
// profile's subject order.
func scoresToJSON(scores student.Scores) ([]byte, error) {
	docs := make([]subjectScoreDoc, 0, len(scores))
	for _, ss := range scores {
		docs = append(docs, subjectScoreDoc{
			Subject: ss.Subject,
			Score:   ss.Score.Int(),
		})
	}
	return json.Marshal(docs)
}

// scoresFromJSON unmarshals the JSONB array back into scores. Corrupt
// data degrades to an empty score list rather than failing the read.
func scoresFromJSON(data []byte) student.Scores {
	var docs []subjectScoreDoc
	if len(data) > 0 {
		_ = json.Unmarshal(data, &docs)
	}

	scores := make(student.Scores, 0, len(docs))
	for _, doc := range docs {
		scores = append(scores, student.SubjectScore{
			Subject: doc.Subject,
			Score:   student.Score(doc.Score),
		})
	}
	return scores
}
