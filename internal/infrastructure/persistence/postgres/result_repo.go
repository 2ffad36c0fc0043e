// Package postgres implements the PostgreSQL persistence layer for Study Buddy.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/study-buddy/study-buddy-backend/internal/domain/assessment"

	"github.com/jackc/pgx/v5"
)

// ══════════════════════════════════════════════════════════════════════════════
// TEST RESULT REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// ResultRepository implements assessment.ResultRepository for PostgreSQL.
// Results are append-only: every evaluation inserts a new row and
// nothing ever updates or deletes one.
type ResultRepository struct {
	conn *Connection
}

// NewResultRepository creates a new ResultRepository.
func NewResultRepository(conn *Connection) *ResultRepository {
	return &ResultRepository{conn: conn}
}

// Insert stores a new test result.
func (r *ResultRepository) Insert(ctx context.Context, result *assessment.Result) error {
	query := `
		INSERT INTO test_results (
			roll_no, subject, quiz_score, evaluated_score, total_score, test_date
		) VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.conn.Exec(ctx, query,
		result.RollNo,
		result.Subject,
		result.QuizScore,
		result.EvaluatedScore,
		result.TotalScore,
		result.TestDate,
	)
	if err != nil {
		return fmt.Errorf("failed to insert test result: %w", err)
	}

	return nil
}

// GetByStudent returns all results of a student, newest first.
func (r *ResultRepository) GetByStudent(ctx context.Context, rollNo int) ([]*assessment.Result, error) {
	query := `
		SELECT roll_no, subject, quiz_score, evaluated_score, total_score, test_date
		FROM test_results
		WHERE roll_no = $1
		ORDER BY test_date DESC
	`

	rows, err := r.conn.Query(ctx, query, rollNo)
	if err != nil {
		return nil, fmt.Errorf("failed to query test results: %w", err)
	}
	defer rows.Close()

	return r.scanResults(rows)
}

// GetBySubject returns a student's results for one subject, newest first.
func (r *ResultRepository) GetBySubject(ctx context.Context, rollNo int, subject string) ([]*assessment.Result, error) {
	query := `
		SELECT roll_no, subject, quiz_score, evaluated_score, total_score, test_date
		FROM test_results
		WHERE roll_no = $1 AND LOWER(subject) = LOWER($2)
		ORDER BY test_date DESC
	`

	rows, err := r.conn.Query(ctx, query, rollNo, subject)
	if err != nil {
		return nil, fmt.Errorf("failed to query test results by subject: %w", err)
	}
	defer rows.Close()

	return r.scanResults(rows)
}

// GetInRange returns a student's results within a time window, newest first.
func (r *ResultRepository) GetInRange(ctx context.Context, rollNo int, from, to time.Time) ([]*assessment.Result, error) {
	query := `
		SELECT roll_no, subject, quiz_score, evaluated_score, total_score, test_date
		FROM test_results
		WHERE roll_no = $1 AND test_date >= $2 AND test_date <= $3
		ORDER BY test_date DESC
	`

	rows, err := r.conn.Query(ctx, query, rollNo, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query test results in range: %w", err)
	}
	defer rows.Close()

	return r.scanResults(rows)
}

// CountByStudent returns the number of recorded results.
func (r *ResultRepository) CountByStudent(ctx context.Context, rollNo int) (int, error) {
	var count int
	err := r.conn.QueryRow(ctx,
		"SELECT COUNT(*) FROM test_results WHERE roll_no = $1",
		rollNo,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count test results: %w", err)
	}
	return count, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// HELPER METHODS
// ══════════════════════════════════════════════════════════════════════════════

// scanResults scans multiple test results from rows.
func (r *ResultRepository) scanResults(rows pgx.Rows) ([]*assessment.Result, error) {
	var results []*assessment.Result

	for rows.Next() {
		var result assessment.Result

		err := rows.Scan(
			&result.RollNo,
			&result.Subject,
			&result.QuizScore,
			&result.EvaluatedScore,
			&result.TotalScore,
			&result.TestDate,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan test result: %w", err)
		}

		results = append(results, &result)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return results, nil
}
