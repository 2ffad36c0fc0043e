package query

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/study-buddy/study-buddy-backend/internal/domain/recommendation"
	"github.com/study-buddy/study-buddy-backend/internal/domain/shared"
	"github.com/study-buddy/study-buddy-backend/internal/domain/student"
)

// ══════════════════════════════════════════════════════════════════════════════
// LIST RECOMMENDATIONS QUERY
// Returns a student's stored study materials grouped by subject,
// cache-aside through Redis.
// ══════════════════════════════════════════════════════════════════════════════

// ListRecommendationsQuery contains the parameters for the listing.
type ListRecommendationsQuery struct {
	// RollNo identifies the student.
	RollNo int
}

// Validate validates the query.
func (q ListRecommendationsQuery) Validate() error {
	if q.RollNo <= 0 {
		return shared.NewDomainError("recommendation", "List", shared.ErrInvalidID, "roll number must be positive")
	}
	return nil
}

// RecommendationDTO is one stored study material reference.
type RecommendationDTO struct {
	// Subject is the weak subject the material is for.
	Subject string `json:"subject"`

	// Language is the language of the material.
	Language string `json:"language"`

	// Reference is the validated resource reference.
	Reference string `json:"reference"`

	// UpdatedAt is when the reference was last refreshed.
	UpdatedAt time.Time `json:"updated_at"`
}

// SubjectRecommendations groups the materials of one weak subject.
type SubjectRecommendations struct {
	// Subject is the weak subject.
	Subject string `json:"subject"`

	// Items are the stored materials, newest first.
	Items []RecommendationDTO `json:"items"`
}

// RecommendationListDTO is the full listing for one student.
type RecommendationListDTO struct {
	// RollNo is the student's roll number.
	RollNo int `json:"roll_no"`

	// Subjects are the grouped materials, in first-seen subject order.
	Subjects []SubjectRecommendations `json:"subjects"`

	// Total is the total number of stored materials.
	Total int `json:"total"`
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// ListRecommendationsHandler handles the ListRecommendationsQuery.
type ListRecommendationsHandler struct {
	studentRepo student.Repository
	recRepo     recommendation.Repository
	recCache    recommendation.Cache
	cacheTTL    time.Duration
}

// NewListRecommendationsHandler creates a new ListRecommendationsHandler.
// The cache may be nil, which disables the cache-aside path.
func NewListRecommendationsHandler(
	studentRepo student.Repository,
	recRepo recommendation.Repository,
	recCache recommendation.Cache,
	cacheTTL time.Duration,
) *ListRecommendationsHandler {
	if cacheTTL <= 0 {
		cacheTTL = 30 * time.Minute
	}

	return &ListRecommendationsHandler{
		studentRepo: studentRepo,
		recRepo:     recRepo,
		recCache:    recCache,
		cacheTTL:    cacheTTL,
	}
}

// Handle executes the listing query. An unknown roll number is
// NotFound; a known student with no stored materials gets an empty
// listing.
func (h *ListRecommendationsHandler) Handle(ctx context.Context, q ListRecommendationsQuery) (*RecommendationListDTO, error) {
	if err := q.Validate(); err != nil {
		return nil, fmt.Errorf("list_recommendations: validation failed: %w", err)
	}

	exists, err := h.studentRepo.Exists(ctx, student.RollNo(q.RollNo))
	if err != nil {
		return nil, fmt.Errorf("list_recommendations: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("list_recommendations: %w", shared.ErrStudentNotFound)
	}

	if h.recCache != nil {
		if recs, err := h.recCache.Get(ctx, q.RollNo); err == nil {
			return groupRecommendations(q.RollNo, recs), nil
		}
	}

	recs, err := h.recRepo.GetByStudent(ctx, q.RollNo)
	if err != nil {
		return nil, fmt.Errorf("list_recommendations: %w", err)
	}

	if h.recCache != nil {
		_ = h.recCache.Set(ctx, q.RollNo, recs, h.cacheTTL)
	}

	return groupRecommendations(q.RollNo, recs), nil
}

// groupRecommendations buckets rows by subject, keeping first-seen
// subject order and newest-first order within a subject.
func groupRecommendations(rollNo int, recs []*recommendation.Recommendation) *RecommendationListDTO {
	order := make([]string, 0)
	buckets := make(map[string][]RecommendationDTO)

	for _, rec := range recs {
		if _, seen := buckets[rec.Subject]; !seen {
			order = append(order, rec.Subject)
		}
		buckets[rec.Subject] = append(buckets[rec.Subject], RecommendationDTO{
			Subject:   rec.Subject,
			Language:  rec.Language,
			Reference: rec.Reference.String(),
			UpdatedAt: rec.UpdatedAt,
		})
	}

	subjects := make([]SubjectRecommendations, 0, len(order))
	for _, subject := range order {
		items := buckets[subject]
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].UpdatedAt.After(items[j].UpdatedAt)
		})
		subjects = append(subjects, SubjectRecommendations{Subject: subject, Items: items})
	}

	return &RecommendationListDTO{
		RollNo:   rollNo,
		Subjects: subjects,
		Total:    len(recs),
	}
}
