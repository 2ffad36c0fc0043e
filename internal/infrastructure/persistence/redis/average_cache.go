package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/study-buddy/study-buddy-backend/internal/domain/student"
)

// AverageCache caches class-average aggregates for the teacher flow.
// Averages are recomputed from all scores of a grade, so a short TTL
// is enough; score updates additionally invalidate the grade.
type AverageCache struct {
	cache *Cache
}

// NewAverageCache creates a new AverageCache.
func NewAverageCache(cache *Cache) *AverageCache {
	return &AverageCache{cache: cache}
}

// Get fetches a cached class average.
// Returns ErrCacheMiss when no entry exists.
func (c *AverageCache) Get(ctx context.Context, grade int, subject string) (*student.ClassAverage, error) {
	var avg student.ClassAverage
	if err := c.cache.Get(ctx, AverageKey(grade, subject), &avg); err != nil {
		return nil, err
	}
	return &avg, nil
}

// Set stores a class average.
func (c *AverageCache) Set(ctx context.Context, avg *student.ClassAverage, ttl time.Duration) error {
	if avg == nil {
		return nil
	}
	return c.cache.Set(ctx, AverageKey(avg.Grade.Int(), avg.Subject), avg, ttl)
}

// InvalidateGrade drops every cached average of one grade, for example
// after a student of that grade records a new score.
func (c *AverageCache) InvalidateGrade(ctx context.Context, grade int) error {
	return c.cache.DeleteByPattern(ctx, fmt.Sprintf("%s%d:*", PrefixAverage, grade))
}
