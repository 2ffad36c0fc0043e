package eventhandler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/study-buddy/study-buddy-backend/internal/application/pipeline"
	"github.com/study-buddy/study-buddy-backend/internal/domain/recommendation"
	"github.com/study-buddy/study-buddy-backend/internal/domain/shared"
)

// ─────────────────────────────────────────────────────────────────────────────
// Recording mocks
// ─────────────────────────────────────────────────────────────────────────────

type MockRecCache struct {
	invalidated []int
	err         error
}

func (m *MockRecCache) Get(_ context.Context, _ int) ([]*recommendation.Recommendation, error) {
	return nil, errors.New("not cached")
}

func (m *MockRecCache) Set(_ context.Context, _ int, _ []*recommendation.Recommendation, _ time.Duration) error {
	return nil
}

func (m *MockRecCache) Invalidate(_ context.Context, rollNo int) error {
	m.invalidated = append(m.invalidated, rollNo)
	return m.err
}

type MockRefresher struct {
	runs []int
	err  error
}

func (m *MockRefresher) Run(_ context.Context, rollNo int) (*pipeline.Report, error) {
	m.runs = append(m.runs, rollNo)
	if m.err != nil {
		return nil, m.err
	}
	return &pipeline.Report{RollNo: rollNo}, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Recommendation cache handlers
// ─────────────────────────────────────────────────────────────────────────────

func TestOnRecommendationsRefreshed_InvalidatesCache(t *testing.T) {
	cache := &MockRecCache{}
	handler := NewOnRecommendationsRefreshedHandler(cache, nil)

	event := shared.NewRecommendationsRefreshedEvent(42, "run-1", 2, 4)
	require.NoError(t, handler.Handle(event))

	assert.Equal(t, []int{42}, cache.invalidated)
}

func TestOnRecommendationsRefreshed_CacheErrorIsSwallowed(t *testing.T) {
	cache := &MockRecCache{err: errors.New("redis down")}
	handler := NewOnRecommendationsRefreshedHandler(cache, nil)

	event := shared.NewRecommendationsRefreshedEvent(42, "run-1", 2, 4)
	assert.NoError(t, handler.Handle(event))
}

func TestOnRecommendationsRefreshed_IgnoresForeignEvents(t *testing.T) {
	cache := &MockRecCache{}
	handler := NewOnRecommendationsRefreshedHandler(cache, nil)

	event := shared.NewStudentUpdatedEvent(42, []string{"name"})
	require.NoError(t, handler.Handle(event))

	assert.Empty(t, cache.invalidated)
}

func TestOnRecommendationPruned_InvalidatesCache(t *testing.T) {
	cache := &MockRecCache{}
	handler := NewOnRecommendationPrunedHandler(cache, nil)

	event := shared.NewRecommendationPrunedEvent(7, "maths", "hindi", "https://youtube.com/watch?v=x")
	require.NoError(t, handler.Handle(event))

	assert.Equal(t, []int{7}, cache.invalidated)
}

// ─────────────────────────────────────────────────────────────────────────────
// Quiz evaluated handler
// ─────────────────────────────────────────────────────────────────────────────

func TestOnQuizEvaluated_WeakScoreTriggersRefresh(t *testing.T) {
	refresher := &MockRefresher{}
	handler := NewOnQuizEvaluatedHandler(refresher, nil, DefaultQuizEvaluatedConfig())

	event := shared.NewQuizEvaluatedEvent(42, "maths", 60, 58, 59)
	require.NoError(t, handler.Handle(event))

	assert.Equal(t, []int{42}, refresher.runs)
}

func TestOnQuizEvaluated_ThresholdScoreDoesNotTrigger(t *testing.T) {
	refresher := &MockRefresher{}
	handler := NewOnQuizEvaluatedHandler(refresher, nil, DefaultQuizEvaluatedConfig())

	event := shared.NewQuizEvaluatedEvent(42, "maths", 60, 60, 60)
	require.NoError(t, handler.Handle(event))

	assert.Empty(t, refresher.runs)
}

func TestOnQuizEvaluated_RefreshFailureIsSwallowed(t *testing.T) {
	refresher := &MockRefresher{err: errors.New("generator down")}
	handler := NewOnQuizEvaluatedHandler(refresher, nil, DefaultQuizEvaluatedConfig())

	event := shared.NewQuizEvaluatedEvent(42, "maths", 40, 40, 40)
	assert.NoError(t, handler.Handle(event))
	assert.Equal(t, []int{42}, refresher.runs)
}

func TestOnQuizEvaluated_NilRefresherOnlyLogs(t *testing.T) {
	handler := NewOnQuizEvaluatedHandler(nil, nil, DefaultQuizEvaluatedConfig())

	event := shared.NewQuizEvaluatedEvent(42, "maths", 40, 40, 40)
	assert.NoError(t, handler.Handle(event))
}
