package redis

import (
	"context"
	"time"

	"github.com/study-buddy/study-buddy-backend/internal/domain/student"
)

// StudentCache implements student.Cache on top of the generic Cache.
// A cache error other than a miss is surfaced to the caller, which
// treats it as a miss and falls through to the repository.
type StudentCache struct {
	cache *Cache
}

// NewStudentCache creates a new StudentCache.
func NewStudentCache(cache *Cache) *StudentCache {
	return &StudentCache{cache: cache}
}

// Get fetches a profile from the cache.
// Returns ErrCacheMiss when no entry exists.
func (c *StudentCache) Get(ctx context.Context, rollNo student.RollNo) (*student.StudentProfile, error) {
	var profile student.StudentProfile
	if err := c.cache.Get(ctx, StudentKey(rollNo.Int()), &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// Set stores a profile in the cache.
func (c *StudentCache) Set(ctx context.Context, profile *student.StudentProfile, ttl time.Duration) error {
	if profile == nil {
		return nil
	}
	return c.cache.Set(ctx, StudentKey(profile.RollNo.Int()), profile, ttl)
}

// Delete removes a profile from the cache.
func (c *StudentCache) Delete(ctx context.Context, rollNo student.RollNo) error {
	return c.cache.Delete(ctx, StudentKey(rollNo.Int()))
}

// InvalidateAll clears the whole student cache.
func (c *StudentCache) InvalidateAll(ctx context.Context) error {
	return c.cache.DeleteByPattern(ctx, PrefixStudent+"*")
}
