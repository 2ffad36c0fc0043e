// Package postgres implements the PostgreSQL persistence layer for Study Buddy.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/study-buddy/study-buddy-backend/internal/domain/recommendation"

	"github.com/jackc/pgx/v5"
)

// ══════════════════════════════════════════════════════════════════════════════
// RECOMMENDATION REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// RecommendationRepository implements recommendation.Repository for PostgreSQL.
type RecommendationRepository struct {
	conn *Connection
}

// NewRecommendationRepository creates a new RecommendationRepository.
func NewRecommendationRepository(conn *Connection) *RecommendationRepository {
	return &RecommendationRepository{conn: conn}
}

// ─────────────────────────────────────────────────────────────────────────────
// Write Operations
// ─────────────────────────────────────────────────────────────────────────────

// Upsert writes a recommendation, overwriting the previous row for the
// same (roll number, subject, language) key. Conflict resolution runs
// on the lowercased subject, matching the domain key, so a re-spelled
// subject still lands on its existing row.
func (r *RecommendationRepository) Upsert(ctx context.Context, rec *recommendation.Recommendation) error {
	query := `
		INSERT INTO recommendations (
			roll_no, subject, language, reference, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (roll_no, LOWER(subject), language)
		DO UPDATE SET
			subject = EXCLUDED.subject,
			reference = EXCLUDED.reference,
			updated_at = EXCLUDED.updated_at
	`

	_, err := r.conn.Exec(ctx, query,
		rec.RollNo,
		rec.Subject,
		rec.Language,
		rec.Reference.String(),
		rec.CreatedAt,
		rec.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert recommendation: %w", err)
	}

	return nil
}

// Delete removes one recommendation row.
func (r *RecommendationRepository) Delete(ctx context.Context, rollNo int, subject, language string) error {
	query := `
		DELETE FROM recommendations
		WHERE roll_no = $1 AND LOWER(subject) = LOWER($2) AND language = $3
	`

	result, err := r.conn.Exec(ctx, query, rollNo, subject, language)
	if err != nil {
		return fmt.Errorf("failed to delete recommendation: %w", err)
	}

	if result.RowsAffected() == 0 {
		return recommendation.ErrRecommendationNotFound
	}

	return nil
}

// DeleteByStudent removes all recommendations of a student.
func (r *RecommendationRepository) DeleteByStudent(ctx context.Context, rollNo int) error {
	_, err := r.conn.Exec(ctx,
		"DELETE FROM recommendations WHERE roll_no = $1",
		rollNo,
	)
	if err != nil {
		return fmt.Errorf("failed to delete recommendations by student: %w", err)
	}

	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Read Operations
// ─────────────────────────────────────────────────────────────────────────────

// GetByStudent returns all recommendations of a student, ordered by
// subject then language.
func (r *RecommendationRepository) GetByStudent(ctx context.Context, rollNo int) ([]*recommendation.Recommendation, error) {
	query := `
		SELECT roll_no, subject, language, reference, created_at, updated_at
		FROM recommendations
		WHERE roll_no = $1
		ORDER BY LOWER(subject), language
	`

	rows, err := r.conn.Query(ctx, query, rollNo)
	if err != nil {
		return nil, fmt.Errorf("failed to query recommendations: %w", err)
	}
	defer rows.Close()

	return r.scanRecommendations(rows)
}

// GetByStudentAndSubject returns the stored materials for one weak
// subject of a student.
func (r *RecommendationRepository) GetByStudentAndSubject(ctx context.Context, rollNo int, subject string) ([]*recommendation.Recommendation, error) {
	query := `
		SELECT roll_no, subject, language, reference, created_at, updated_at
		FROM recommendations
		WHERE roll_no = $1 AND LOWER(subject) = LOWER($2)
		ORDER BY language
	`

	rows, err := r.conn.Query(ctx, query, rollNo, subject)
	if err != nil {
		return nil, fmt.Errorf("failed to query recommendations by subject: %w", err)
	}
	defer rows.Close()

	return r.scanRecommendations(rows)
}

// GetStale returns recommendations last updated before the cutoff,
// oldest first, up to limit rows.
func (r *RecommendationRepository) GetStale(ctx context.Context, olderThan time.Time, limit int) ([]*recommendation.Recommendation, error) {
	query := `
		SELECT roll_no, subject, language, reference, created_at, updated_at
		FROM recommendations
		WHERE updated_at < $1
		ORDER BY updated_at ASC
		LIMIT $2
	`

	rows, err := r.conn.Query(ctx, query, olderThan, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query stale recommendations: %w", err)
	}
	defer rows.Close()

	return r.scanRecommendations(rows)
}

// CountByStudent returns the number of stored rows for a student.
func (r *RecommendationRepository) CountByStudent(ctx context.Context, rollNo int) (int, error) {
	var count int
	err := r.conn.QueryRow(ctx,
		"SELECT COUNT(*) FROM recommendations WHERE roll_no = $1",
		rollNo,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count recommendations: %w", err)
	}
	return count, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// HELPER METHODS
// ══════════════════════════════════════════════════════════════════════════════

// scanRecommendations scans multiple recommendations from rows.
func (r *RecommendationRepository) scanRecommendations(rows pgx.Rows) ([]*recommendation.Recommendation, error) {
	var recs []*recommendation.Recommendation

	for rows.Next() {
		var rec recommendation.Recommendation
		var reference string

		err := rows.Scan(
			&rec.RollNo,
			&rec.Subject,
			&rec.Language,
			&reference,
			&rec.CreatedAt,
			&rec.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan recommendation: %w", err)
		}

		rec.Reference = recommendation.Reference(reference)
		recs = append(recs, &rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return recs, nil
}
