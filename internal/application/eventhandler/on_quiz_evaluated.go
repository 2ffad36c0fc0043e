package eventhandler

import (
	"context"
	"log/slog"
	"time"

	"github.com/study-buddy/study-buddy-backend/internal/application/pipeline"
	"github.com/study-buddy/study-buddy-backend/internal/domain/shared"
)

// ═══════════════════════════════════════════════════════════════════════════
// ON QUIZ EVALUATED HANDLER
// A scored test is the freshest signal about where a student struggles.
// A weak total triggers a recommendation refresh so the stored study
// materials catch up without waiting for the nightly job.
// ═══════════════════════════════════════════════════════════════════════════

// RecommendationRefresher runs the recommendation pipeline for one
// student. Satisfied by pipeline.Runner.
type RecommendationRefresher interface {
	Run(ctx context.Context, rollNo int) (*pipeline.Report, error)
}

// QuizEvaluatedConfig tunes the handler.
type QuizEvaluatedConfig struct {
	// WeakScoreThreshold is the total score below which a refresh is
	// triggered. Scores at the threshold do not trigger.
	WeakScoreThreshold int

	// RefreshTimeout bounds the triggered pipeline run.
	RefreshTimeout time.Duration
}

// DefaultQuizEvaluatedConfig returns the default configuration.
func DefaultQuizEvaluatedConfig() QuizEvaluatedConfig {
	return QuizEvaluatedConfig{
		WeakScoreThreshold: 60,
		RefreshTimeout:     5 * time.Minute,
	}
}

// OnQuizEvaluatedHandler reacts to scored quiz submissions.
type OnQuizEvaluatedHandler struct {
	refresher RecommendationRefresher
	logger    *slog.Logger
	config    QuizEvaluatedConfig
}

// NewOnQuizEvaluatedHandler creates the handler. The refresher may be
// nil, which disables the weak-score refresh.
func NewOnQuizEvaluatedHandler(refresher RecommendationRefresher, logger *slog.Logger, config QuizEvaluatedConfig) *OnQuizEvaluatedHandler {
	if logger == nil {
		logger = slog.Default()
	}
	if config.WeakScoreThreshold <= 0 {
		config.WeakScoreThreshold = DefaultQuizEvaluatedConfig().WeakScoreThreshold
	}
	if config.RefreshTimeout <= 0 {
		config.RefreshTimeout = DefaultQuizEvaluatedConfig().RefreshTimeout
	}

	return &OnQuizEvaluatedHandler{
		refresher: refresher,
		logger:    logger.With("handler", "on_quiz_evaluated"),
		config:    config,
	}
}

// Handle implements shared.EventHandler.
func (h *OnQuizEvaluatedHandler) Handle(event shared.Event) error {
	evaluated, ok := event.(shared.QuizEvaluatedEvent)
	if !ok {
		h.logger.Warn("received unexpected event type", "event_type", event.EventType())
		return nil
	}

	h.logger.Info("quiz evaluated",
		"roll_no", evaluated.RollNo,
		"subject", evaluated.Subject,
		"quiz_score", evaluated.QuizScore,
		"evaluated_score", evaluated.EvaluatedScore,
		"total_score", evaluated.TotalScore,
	)

	if evaluated.TotalScore >= h.config.WeakScoreThreshold {
		return nil
	}
	if h.refresher == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.RefreshTimeout)
	defer cancel()

	report, err := h.refresher.Run(ctx, evaluated.RollNo)
	if err != nil {
		// The nightly refresh will retry; a failed eager run is not an
		// event delivery failure.
		h.logger.Warn("weak-score recommendation refresh failed",
			"roll_no", evaluated.RollNo,
			"subject", evaluated.Subject,
			"error", err,
		)
		return nil
	}

	h.logger.Info("weak-score recommendation refresh completed",
		"roll_no", evaluated.RollNo,
		"run_id", report.RunID,
		"persisted", report.Persisted,
	)

	return nil
}

// EventType returns the event type this handler reacts to.
func (h *OnQuizEvaluatedHandler) EventType() shared.EventType {
	return shared.EventQuizEvaluated
}
