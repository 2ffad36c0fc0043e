// Package chat implements the conversational surface of the backend: a
// role-routing session layer over the application commands and queries.
// A session starts untagged; the first recognized greeting binds it to
// the student, teacher or tutor flow.
package chat

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/study-buddy/study-buddy-backend/internal/infrastructure/persistence/redis"
)

// ══════════════════════════════════════════════════════════════════════════════
// SESSION
// ══════════════════════════════════════════════════════════════════════════════

// Role tags a session with the flow that handles its messages.
type Role string

const (
	// RoleUnset - the session has not picked a flow yet.
	RoleUnset Role = ""
	// RoleStudent - messages go to the student flow.
	RoleStudent Role = "student"
	// RoleTeacher - messages go to the teacher flow.
	RoleTeacher Role = "teacher"
	// RoleTutor - messages go straight to the LLM tutor.
	RoleTutor Role = "tutor"
)

// Turn is one exchange half in the tutor conversation history.
type Turn struct {
	// Role is "user" or "assistant".
	Role string `json:"role"`

	// Text is the turn's content.
	Text string `json:"text"`
}

// maxHistoryTurns caps the tutor history carried per session. Older
// turns fall off the front.
const maxHistoryTurns = 20

// Session is the conversational state of one chat client.
type Session struct {
	// ID identifies the session across requests.
	ID string `json:"id"`

	// Role selects the flow handling this session.
	Role Role `json:"role"`

	// RollNo is set when the role is student.
	RollNo int `json:"roll_no,omitempty"`

	// StaffID is set when the role is teacher.
	StaffID int `json:"staff_id,omitempty"`

	// PendingQuiz marks that a generated quiz awaits answers. The quiz
	// itself lives in the quiz store, keyed by roll number.
	PendingQuiz bool `json:"pending_quiz,omitempty"`

	// History is the tutor conversation, most recent last.
	History []Turn `json:"history,omitempty"`
}

// NewSession creates an untagged session.
func NewSession(id string) *Session {
	return &Session{ID: id}
}

// AppendTurn records one history turn, dropping the oldest beyond the
// cap.
func (s *Session) AppendTurn(role, text string) {
	s.History = append(s.History, Turn{Role: role, Text: text})
	if len(s.History) > maxHistoryTurns {
		s.History = s.History[len(s.History)-maxHistoryTurns:]
	}
}

// Reset returns the session to role selection, clearing flow state.
func (s *Session) Reset() {
	s.Role = RoleUnset
	s.RollNo = 0
	s.StaffID = 0
	s.PendingQuiz = false
	s.History = nil
}

// ══════════════════════════════════════════════════════════════════════════════
// SESSION STORE
// ══════════════════════════════════════════════════════════════════════════════

// ErrSessionNotFound is returned when no session exists for an ID.
var ErrSessionNotFound = errors.New("chat: session not found")

// SessionStore persists sessions between requests.
type SessionStore interface {
	// Save stores a session.
	Save(ctx context.Context, session *Session) error

	// Load fetches a session by ID. Returns ErrSessionNotFound when the
	// session does not exist or has expired.
	Load(ctx context.Context, id string) (*Session, error)

	// Delete removes a session.
	Delete(ctx context.Context, id string) error
}

// ─────────────────────────────────────────────────────────────────────────────
// Redis-backed store
// ─────────────────────────────────────────────────────────────────────────────

// RedisSessionStore adapts the Redis blob store to the SessionStore
// port.
type RedisSessionStore struct {
	store *redis.SessionStore
}

// NewRedisSessionStore creates a new RedisSessionStore.
func NewRedisSessionStore(store *redis.SessionStore) *RedisSessionStore {
	return &RedisSessionStore{store: store}
}

// Save implements SessionStore.
func (r *RedisSessionStore) Save(ctx context.Context, session *Session) error {
	return r.store.Save(ctx, session.ID, session)
}

// Load implements SessionStore.
func (r *RedisSessionStore) Load(ctx context.Context, id string) (*Session, error) {
	var session Session
	if err := r.store.Load(ctx, id, &session); err != nil {
		if errors.Is(err, redis.ErrCacheMiss) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return &session, nil
}

// Delete implements SessionStore.
func (r *RedisSessionStore) Delete(ctx context.Context, id string) error {
	return r.store.Delete(ctx, id)
}

// ─────────────────────────────────────────────────────────────────────────────
// In-memory store
// ─────────────────────────────────────────────────────────────────────────────

// InMemorySessionStore keeps sessions in a map. Used when Redis is not
// configured and in tests. Entries expire by TTL on read.
type InMemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string]memorySession
	ttl      time.Duration
}

type memorySession struct {
	session Session
	savedAt time.Time
}

// NewInMemorySessionStore creates a new in-memory store. A TTL of zero
// means sessions never expire.
func NewInMemorySessionStore(ttl time.Duration) *InMemorySessionStore {
	return &InMemorySessionStore{
		sessions: make(map[string]memorySession),
		ttl:      ttl,
	}
}

// Save implements SessionStore.
func (m *InMemorySessionStore) Save(_ context.Context, session *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sessions[session.ID] = memorySession{session: *session, savedAt: time.Now()}
	return nil
}

// Load implements SessionStore.
func (m *InMemorySessionStore) Load(_ context.Context, id string) (*Session, error) {
	m.mu.RLock()
	entry, ok := m.sessions[id]
	m.mu.RUnlock()

	if !ok {
		return nil, ErrSessionNotFound
	}
	if m.ttl > 0 && time.Since(entry.savedAt) > m.ttl {
		m.mu.Lock()
		delete(m.sessions, id)
		m.mu.Unlock()
		return nil, ErrSessionNotFound
	}

	session := entry.session
	return &session, nil
}

// Delete implements SessionStore.
func (m *InMemorySessionStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.sessions, id)
	return nil
}
