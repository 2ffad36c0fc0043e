package redis

import (
	"context"
)

// SessionStore persists chat session state between turns as opaque
// JSON blobs keyed by session ID. The chat layer owns the session
// shape; this store only round-trips it. Every write refreshes the
// 24 hour idle TTL.
type SessionStore struct {
	cache *Cache
}

// NewSessionStore creates a new SessionStore.
func NewSessionStore(cache *Cache) *SessionStore {
	return &SessionStore{cache: cache}
}

// Save stores session state under the session ID.
func (s *SessionStore) Save(ctx context.Context, sessionID string, value interface{}) error {
	if sessionID == "" {
		return ErrCacheKeyEmpty
	}
	return s.cache.Set(ctx, SessionKey(sessionID), value, TTLSessionData)
}

// Load reads session state into dest.
// Returns ErrCacheMiss when the session does not exist or expired.
func (s *SessionStore) Load(ctx context.Context, sessionID string, dest interface{}) error {
	if sessionID == "" {
		return ErrCacheKeyEmpty
	}
	return s.cache.Get(ctx, SessionKey(sessionID), dest)
}

// Delete removes a session, forcing the next message to start over at
// role selection.
func (s *SessionStore) Delete(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return ErrCacheKeyEmpty
	}
	return s.cache.Delete(ctx, SessionKey(sessionID))
}
