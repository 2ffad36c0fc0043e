package redis

import (
	"context"
	"time"

	"github.com/study-buddy/study-buddy-backend/internal/domain/recommendation"
)

// RecommendationCache implements recommendation.Cache on top of the
// generic Cache. It holds the full recommendation list of a student
// under one key; event handlers invalidate it when the pipeline or the
// dead-link sweep rewrites rows.
type RecommendationCache struct {
	cache *Cache
}

// NewRecommendationCache creates a new RecommendationCache.
func NewRecommendationCache(cache *Cache) *RecommendationCache {
	return &RecommendationCache{cache: cache}
}

// Get fetches the cached recommendation list of a student.
// Returns ErrCacheMiss when no entry exists.
func (c *RecommendationCache) Get(ctx context.Context, rollNo int) ([]*recommendation.Recommendation, error) {
	var recs []*recommendation.Recommendation
	if err := c.cache.Get(ctx, RecommendationsKey(rollNo), &recs); err != nil {
		return nil, err
	}
	return recs, nil
}

// Set stores the recommendation list of a student. An empty list is
// cached too, so students without weak subjects do not hit the database
// on every chat turn.
func (c *RecommendationCache) Set(ctx context.Context, rollNo int, recs []*recommendation.Recommendation, ttl time.Duration) error {
	if recs == nil {
		recs = []*recommendation.Recommendation{}
	}
	return c.cache.Set(ctx, RecommendationsKey(rollNo), recs, ttl)
}

// Invalidate drops the cached list of a student.
func (c *RecommendationCache) Invalidate(ctx context.Context, rollNo int) error {
	return c.cache.Delete(ctx, RecommendationsKey(rollNo))
}
