package redis

import (
	"context"
	"errors"
	"time"

	"github.com/study-buddy/study-buddy-backend/internal/domain/assessment"
)

// QuizStore implements assessment.QuizStore on top of the generic
// Cache. A student has at most one pending quiz; saving a new one
// replaces it, and the TTL drops quizzes that never get answered.
type QuizStore struct {
	cache *Cache
}

// NewQuizStore creates a new QuizStore.
func NewQuizStore(cache *Cache) *QuizStore {
	return &QuizStore{cache: cache}
}

// Save stores a generated quiz as the student's pending quiz.
func (s *QuizStore) Save(ctx context.Context, quiz *assessment.Quiz, ttl time.Duration) error {
	if quiz == nil {
		return ErrCacheNilValue
	}
	if ttl <= 0 {
		ttl = TTLPendingQuiz
	}
	return s.cache.Set(ctx, QuizKey(quiz.RollNo), quiz, ttl)
}

// GetPending returns the student's pending quiz.
// Returns assessment.ErrQuizNotFound if none is stored or it expired.
func (s *QuizStore) GetPending(ctx context.Context, rollNo int) (*assessment.Quiz, error) {
	var quiz assessment.Quiz
	err := s.cache.Get(ctx, QuizKey(rollNo), &quiz)
	if err != nil {
		if errors.Is(err, ErrCacheMiss) {
			return nil, assessment.ErrQuizNotFound
		}
		return nil, err
	}
	return &quiz, nil
}

// Delete drops the student's pending quiz after evaluation.
func (s *QuizStore) Delete(ctx context.Context, rollNo int) error {
	return s.cache.Delete(ctx, QuizKey(rollNo))
}
