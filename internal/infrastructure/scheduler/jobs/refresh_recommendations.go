// Package jobs contains the scheduled jobs of the study buddy backend.
// Both jobs keep the recommendations table useful: one regenerates
// materials for weak subjects, the other removes rows whose links died.
package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/study-buddy/study-buddy-backend/internal/application/pipeline"
	"github.com/study-buddy/study-buddy-backend/internal/domain/student"
)

// ══════════════════════════════════════════════════════════════════════════════
// REFRESH RECOMMENDATIONS JOB
// ══════════════════════════════════════════════════════════════════════════════

// PipelineRunner runs the recommendation pipeline for one student.
// Satisfied by pipeline.Runner.
type PipelineRunner interface {
	Run(ctx context.Context, rollNo int) (*pipeline.Report, error)
}

// RefreshRecommendationsJob reruns the recommendation pipeline for every
// registered student. A failed run only skips that student; the job
// fails as a whole only when more than half the runs fail.
type RefreshRecommendationsJob struct {
	// Dependencies
	studentRepo student.Repository
	runner      PipelineRunner
	logger      *slog.Logger

	// Configuration
	config RefreshRecommendationsConfig

	// State (for metrics)
	lastStats atomic.Value // *RefreshStats
}

// RefreshRecommendationsConfig contains configuration for the refresh job.
type RefreshRecommendationsConfig struct {
	// Concurrency is the number of students to process in parallel.
	// Each run makes up to two LLM calls per weak subject, so this is
	// bounded by the Anthropic rate limit, not by the database.
	Concurrency int

	// BatchSize is the page size used when listing students.
	BatchSize int

	// Timeout is the maximum duration for the entire refresh.
	Timeout time.Duration
}

// DefaultRefreshRecommendationsConfig returns sensible defaults.
func DefaultRefreshRecommendationsConfig() RefreshRecommendationsConfig {
	return RefreshRecommendationsConfig{
		Concurrency: 3,
		BatchSize:   50,
		Timeout:     25 * time.Minute,
	}
}

// RefreshStats contains statistics from one refresh run.
type RefreshStats struct {
	StartedAt     time.Time
	CompletedAt   time.Time
	Duration      time.Duration
	TotalStudents int
	SucceededRuns int
	FailedRuns    int
	Persisted     int
	Errors        []RefreshError
}

// RefreshError records a failed pipeline run for one student.
type RefreshError struct {
	RollNo     int
	Error      error
	OccurredAt time.Time
}

// NewRefreshRecommendationsJob creates a new refresh job.
func NewRefreshRecommendationsJob(
	studentRepo student.Repository,
	runner PipelineRunner,
	logger *slog.Logger,
	config RefreshRecommendationsConfig,
) *RefreshRecommendationsJob {
	if logger == nil {
		logger = slog.Default()
	}
	if config.Concurrency <= 0 {
		config.Concurrency = 3
	}
	if config.BatchSize <= 0 {
		config.BatchSize = 50
	}

	return &RefreshRecommendationsJob{
		studentRepo: studentRepo,
		runner:      runner,
		logger:      logger.With("job", "refresh_recommendations"),
		config:      config,
	}
}

// Name returns the job name.
func (j *RefreshRecommendationsJob) Name() string {
	return "refresh_recommendations"
}

// Description returns a human-readable description.
func (j *RefreshRecommendationsJob) Description() string {
	return "Reruns the weak-subject recommendation pipeline for every registered student"
}

// Run executes the refresh job.
func (j *RefreshRecommendationsJob) Run(ctx context.Context) error {
	startedAt := time.Now()
	stats := &RefreshStats{
		StartedAt: startedAt,
		Errors:    make([]RefreshError, 0),
	}

	j.logger.Info("starting recommendation refresh")

	if j.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, j.config.Timeout)
		defer cancel()
	}

	rollNos, err := j.collectRollNos(ctx)
	if err != nil {
		return fmt.Errorf("failed to list students: %w", err)
	}

	stats.TotalStudents = len(rollNos)
	j.logger.Info("found students to refresh", "count", stats.TotalStudents)

	if stats.TotalStudents == 0 {
		stats.CompletedAt = time.Now()
		stats.Duration = stats.CompletedAt.Sub(startedAt)
		j.lastStats.Store(stats)
		return nil
	}

	j.runConcurrently(ctx, rollNos, stats)

	stats.CompletedAt = time.Now()
	stats.Duration = stats.CompletedAt.Sub(startedAt)
	j.lastStats.Store(stats)

	j.logger.Info("recommendation refresh completed",
		"duration", stats.Duration.String(),
		"total", stats.TotalStudents,
		"succeeded", stats.SucceededRuns,
		"failed", stats.FailedRuns,
		"persisted", stats.Persisted,
	)

	failureRate := float64(stats.FailedRuns) / float64(stats.TotalStudents)
	if failureRate > 0.5 {
		return fmt.Errorf("refresh failed for more than 50%% of students (%d/%d)",
			stats.FailedRuns, stats.TotalStudents)
	}

	return nil
}

// collectRollNos pages through the student table and returns every roll
// number. Roll numbers are collected up front so a profile edit during
// the run cannot shift pagination.
func (j *RefreshRecommendationsJob) collectRollNos(ctx context.Context) ([]int, error) {
	rollNos := make([]int, 0)
	opts := student.DefaultListOptions().WithLimit(j.config.BatchSize)

	for {
		page, err := j.studentRepo.GetAll(ctx, opts)
		if err != nil {
			return nil, err
		}

		for _, profile := range page {
			rollNos = append(rollNos, profile.RollNo.Int())
		}

		if len(page) < j.config.BatchSize {
			return rollNos, nil
		}
		opts = opts.WithOffset(opts.Offset + j.config.BatchSize)
	}
}

// runConcurrently runs the pipeline for each student using a worker pool.
func (j *RefreshRecommendationsJob) runConcurrently(ctx context.Context, rollNos []int, stats *RefreshStats) {
	var (
		wg        sync.WaitGroup
		semaphore = make(chan struct{}, j.config.Concurrency)
		mu        sync.Mutex
	)

	for _, rollNo := range rollNos {
		select {
		case <-ctx.Done():
			return
		default:
		}

		wg.Add(1)
		semaphore <- struct{}{} // Acquire

		go func(rollNo int) {
			defer wg.Done()
			defer func() { <-semaphore }() // Release

			report, err := j.runner.Run(ctx, rollNo)

			mu.Lock()
			defer mu.Unlock()

			if err != nil {
				stats.FailedRuns++
				stats.Errors = append(stats.Errors, RefreshError{
					RollNo:     rollNo,
					Error:      err,
					OccurredAt: time.Now(),
				})
				j.logger.Error("pipeline run failed",
					"roll_no", rollNo,
					"error", err,
				)
				return
			}

			stats.SucceededRuns++
			stats.Persisted += len(report.Persisted)
		}(rollNo)
	}

	wg.Wait()
}

// LastStats returns statistics from the last refresh run.
func (j *RefreshRecommendationsJob) LastStats() *RefreshStats {
	stats := j.lastStats.Load()
	if stats == nil {
		return nil
	}
	return stats.(*RefreshStats)
}

// RefreshSingleStudent reruns the pipeline for one student on demand,
// for example right after a score update from chat.
func (j *RefreshRecommendationsJob) RefreshSingleStudent(ctx context.Context, rollNo int) error {
	report, err := j.runner.Run(ctx, rollNo)
	if err != nil {
		return fmt.Errorf("pipeline run failed: %w", err)
	}

	j.logger.Info("on-demand refresh completed",
		"roll_no", rollNo,
		"persisted", len(report.Persisted),
	)

	return nil
}
