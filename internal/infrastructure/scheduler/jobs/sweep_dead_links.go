package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/study-buddy/study-buddy-backend/internal/domain/recommendation"
	"github.com/study-buddy/study-buddy-backend/internal/domain/shared"
	"github.com/study-buddy/study-buddy-backend/internal/infrastructure/external/linkcheck"
)

// ══════════════════════════════════════════════════════════════════════════════
// SWEEP DEAD LINKS JOB
// ══════════════════════════════════════════════════════════════════════════════

// LinkProber probes a stored reference for reachability.
// Satisfied by linkcheck.Checker.
type LinkProber interface {
	Check(ctx context.Context, reference string) linkcheck.Result
}

// SweepDeadLinksJob reprobes stale recommendations and deletes rows
// whose links no longer resolve. The next pipeline run regenerates a
// fresh reference for the affected (student, subject, language) key.
type SweepDeadLinksJob struct {
	// Dependencies
	recRepo   recommendation.Repository
	prober    LinkProber
	publisher shared.EventPublisher
	logger    *slog.Logger

	// Configuration
	config SweepDeadLinksConfig

	// State (for metrics)
	lastStats atomic.Value // *SweepStats
}

// SweepDeadLinksConfig contains configuration for the sweep job.
type SweepDeadLinksConfig struct {
	// MinAge is how long a row must have gone unrefreshed before it is
	// reprobed. Keeps the sweep off rows the pipeline just validated.
	MinAge time.Duration

	// BatchLimit is the maximum number of rows to probe per run.
	BatchLimit int

	// Timeout is the maximum duration for the entire sweep.
	Timeout time.Duration
}

// DefaultSweepDeadLinksConfig returns sensible defaults.
func DefaultSweepDeadLinksConfig() SweepDeadLinksConfig {
	return SweepDeadLinksConfig{
		MinAge:     time.Hour,
		BatchLimit: 100,
		Timeout:    10 * time.Minute,
	}
}

// SweepStats contains statistics from one sweep run.
type SweepStats struct {
	StartedAt   time.Time
	CompletedAt time.Time
	Duration    time.Duration
	Probed      int
	Pruned      int
	Kept        int
	DeleteFails int
}

// NewSweepDeadLinksJob creates a new dead-link sweep job.
func NewSweepDeadLinksJob(
	recRepo recommendation.Repository,
	prober LinkProber,
	publisher shared.EventPublisher,
	logger *slog.Logger,
	config SweepDeadLinksConfig,
) *SweepDeadLinksJob {
	if logger == nil {
		logger = slog.Default()
	}
	if config.BatchLimit <= 0 {
		config.BatchLimit = 100
	}
	if config.MinAge <= 0 {
		config.MinAge = time.Hour
	}

	return &SweepDeadLinksJob{
		recRepo:   recRepo,
		prober:    prober,
		publisher: publisher,
		logger:    logger.With("job", "sweep_dead_links"),
		config:    config,
	}
}

// Name returns the job name.
func (j *SweepDeadLinksJob) Name() string {
	return "sweep_dead_links"
}

// Description returns a human-readable description.
func (j *SweepDeadLinksJob) Description() string {
	return "Reprobes stale recommendations and deletes rows whose links went dead"
}

// Run executes the sweep job. Probes run sequentially: the batch is
// small and the probe timeout already bounds each call.
func (j *SweepDeadLinksJob) Run(ctx context.Context) error {
	startedAt := time.Now()
	stats := &SweepStats{StartedAt: startedAt}

	j.logger.Info("starting dead-link sweep")

	if j.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, j.config.Timeout)
		defer cancel()
	}

	cutoff := time.Now().Add(-j.config.MinAge)
	stale, err := j.recRepo.GetStale(ctx, cutoff, j.config.BatchLimit)
	if err != nil {
		return fmt.Errorf("failed to load stale recommendations: %w", err)
	}

	j.logger.Info("found stale recommendations", "count", len(stale))

	for _, rec := range stale {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		stats.Probed++

		result := j.prober.Check(ctx, rec.Reference.String())
		if result.OK {
			stats.Kept++
			continue
		}

		if err := j.prune(ctx, rec, result.Reason); err != nil {
			stats.DeleteFails++
			j.logger.Error("failed to delete dead recommendation",
				"roll_no", rec.RollNo,
				"subject", rec.Subject,
				"language", rec.Language,
				"error", err,
			)
			continue
		}

		stats.Pruned++
	}

	stats.CompletedAt = time.Now()
	stats.Duration = stats.CompletedAt.Sub(startedAt)
	j.lastStats.Store(stats)

	j.logger.Info("dead-link sweep completed",
		"duration", stats.Duration.String(),
		"probed", stats.Probed,
		"pruned", stats.Pruned,
		"kept", stats.Kept,
		"delete_fails", stats.DeleteFails,
	)

	if stats.DeleteFails > 0 {
		return fmt.Errorf("sweep could not delete %d dead rows", stats.DeleteFails)
	}

	return nil
}

// prune deletes one dead row and announces the removal so caches drop
// the student's recommendation list.
func (j *SweepDeadLinksJob) prune(ctx context.Context, rec *recommendation.Recommendation, reason string) error {
	if err := j.recRepo.Delete(ctx, rec.RollNo, rec.Subject, rec.Language); err != nil {
		return err
	}

	j.logger.Info("pruned dead recommendation",
		"roll_no", rec.RollNo,
		"subject", rec.Subject,
		"language", rec.Language,
		"reason", reason,
	)

	if j.publisher != nil {
		event := shared.NewRecommendationPrunedEvent(rec.RollNo, rec.Subject, rec.Language, rec.Reference.String())
		if err := j.publisher.Publish(event); err != nil {
			j.logger.Warn("failed to publish prune event",
				"roll_no", rec.RollNo,
				"error", err,
			)
		}
	}

	return nil
}

// LastStats returns statistics from the last sweep run.
func (j *SweepDeadLinksJob) LastStats() *SweepStats {
	stats := j.lastStats.Load()
	if stats == nil {
		return nil
	}
	return stats.(*SweepStats)
}
