// Package memory holds in-process stand-ins for the Redis-backed
// stores, used when Redis is disabled in development. State is lost on
// restart.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/study-buddy/study-buddy-backend/internal/domain/assessment"
)

// QuizStore keeps pending quizzes in process memory, one per student.
// Expiry is checked on read.
type QuizStore struct {
	mu      sync.Mutex
	pending map[int]pendingQuiz
}

type pendingQuiz struct {
	quiz      *assessment.Quiz
	expiresAt time.Time
}

// NewQuizStore creates a new in-memory QuizStore.
func NewQuizStore() *QuizStore {
	return &QuizStore{pending: make(map[int]pendingQuiz)}
}

// Save stores a quiz as the student's pending quiz, replacing any
// previous one.
func (s *QuizStore) Save(ctx context.Context, quiz *assessment.Quiz, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pending[quiz.RollNo] = pendingQuiz{
		quiz:      quiz,
		expiresAt: time.Now().Add(ttl),
	}
	return nil
}

// GetPending returns the student's pending quiz.
// Returns ErrQuizNotFound if none is stored or it expired.
func (s *QuizStore) GetPending(ctx context.Context, rollNo int) (*assessment.Quiz, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.pending[rollNo]
	if !ok {
		return nil, assessment.ErrQuizNotFound
	}
	if time.Now().After(p.expiresAt) {
		delete(s.pending, rollNo)
		return nil, assessment.ErrQuizNotFound
	}
	return p.quiz, nil
}

// Delete drops the student's pending quiz.
func (s *QuizStore) Delete(ctx context.Context, rollNo int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.pending, rollNo)
	return nil
}
