// Package eventhandler contains the domain event handlers. Each handler
// reacts to one event type and keeps the read-side caches consistent
// with what just happened on the write side.
package eventhandler

import (
	"context"
	"log/slog"

	"github.com/study-buddy/study-buddy-backend/internal/domain/recommendation"
	"github.com/study-buddy/study-buddy-backend/internal/domain/shared"
)

// ═══════════════════════════════════════════════════════════════════════════
// ON RECOMMENDATIONS REFRESHED HANDLER
// A pipeline run replaced some of a student's stored materials, so any
// cached listing for that student is stale and has to go.
// ═══════════════════════════════════════════════════════════════════════════

// OnRecommendationsRefreshedHandler drops the cached recommendation
// listing of a student after a pipeline run.
type OnRecommendationsRefreshedHandler struct {
	recCache recommendation.Cache
	logger   *slog.Logger
}

// NewOnRecommendationsRefreshedHandler creates the handler. The cache
// may be nil, which turns the handler into a no-op.
func NewOnRecommendationsRefreshedHandler(recCache recommendation.Cache, logger *slog.Logger) *OnRecommendationsRefreshedHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return &OnRecommendationsRefreshedHandler{
		recCache: recCache,
		logger:   logger.With("handler", "on_recommendations_refreshed"),
	}
}

// Handle implements shared.EventHandler.
func (h *OnRecommendationsRefreshedHandler) Handle(event shared.Event) error {
	refreshed, ok := event.(shared.RecommendationsRefreshedEvent)
	if !ok {
		h.logger.Warn("received unexpected event type", "event_type", event.EventType())
		return nil
	}

	if h.recCache == nil {
		return nil
	}

	ctx := context.Background()
	if err := h.recCache.Invalidate(ctx, refreshed.RollNo); err != nil {
		// Cache entries expire on their own; a failed invalidation only
		// delays freshness.
		h.logger.Warn("failed to invalidate recommendation cache",
			"roll_no", refreshed.RollNo,
			"error", err,
		)
		return nil
	}

	h.logger.Debug("recommendation cache invalidated",
		"roll_no", refreshed.RollNo,
		"run_id", refreshed.RunID,
		"persisted", refreshed.Persisted,
	)

	return nil
}

// EventType returns the event type this handler reacts to.
func (h *OnRecommendationsRefreshedHandler) EventType() shared.EventType {
	return shared.EventRecommendationsRefreshed
}

// ═══════════════════════════════════════════════════════════════════════════
// ON RECOMMENDATION PRUNED HANDLER
// The dead-link sweep removed a stored material, so the student's cached
// listing no longer matches the table.
// ═══════════════════════════════════════════════════════════════════════════

// OnRecommendationPrunedHandler drops the cached recommendation listing
// of a student after the sweep pruned one of its rows.
type OnRecommendationPrunedHandler struct {
	recCache recommendation.Cache
	logger   *slog.Logger
}

// NewOnRecommendationPrunedHandler creates the handler.
func NewOnRecommendationPrunedHandler(recCache recommendation.Cache, logger *slog.Logger) *OnRecommendationPrunedHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return &OnRecommendationPrunedHandler{
		recCache: recCache,
		logger:   logger.With("handler", "on_recommendation_pruned"),
	}
}

// Handle implements shared.EventHandler.
func (h *OnRecommendationPrunedHandler) Handle(event shared.Event) error {
	pruned, ok := event.(shared.RecommendationPrunedEvent)
	if !ok {
		h.logger.Warn("received unexpected event type", "event_type", event.EventType())
		return nil
	}

	if h.recCache == nil {
		return nil
	}

	ctx := context.Background()
	if err := h.recCache.Invalidate(ctx, pruned.RollNo); err != nil {
		h.logger.Warn("failed to invalidate recommendation cache",
			"roll_no", pruned.RollNo,
			"error", err,
		)
		return nil
	}

	h.logger.Debug("recommendation cache invalidated after prune",
		"roll_no", pruned.RollNo,
		"subject", pruned.Subject,
		"language", pruned.Language,
	)

	return nil
}

// EventType returns the event type this handler reacts to.
func (h *OnRecommendationPrunedHandler) EventType() shared.EventType {
	return shared.EventRecommendationPruned
}
