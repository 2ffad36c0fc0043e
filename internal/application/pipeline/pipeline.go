package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/study-buddy/study-buddy-backend/internal/domain/recommendation"
	"github.com/study-buddy/study-buddy-backend/internal/domain/shared"
	"github.com/study-buddy/study-buddy-backend/internal/domain/student"
)

// ══════════════════════════════════════════════════════════════════════════════
// COLLABORATOR PORTS
// The pipeline talks to two external collaborators: a content generator
// and the data store. Both are behind narrow interfaces so the
// verification entry point can run the pipeline against mocks.
// ══════════════════════════════════════════════════════════════════════════════

// ProfileSource loads student profiles from the data store.
type ProfileSource interface {
	// GetStudent returns the profile for a roll number.
	// Returns an error matching shared.ErrNotFound if no profile exists.
	GetStudent(ctx context.Context, rollNo int) (*student.StudentProfile, error)
}

// Generator produces one study material reference per call.
type Generator interface {
	// Generate returns a URI-shaped reference to material for the
	// subject in the given language. Arbitrary latency, non-deterministic
	// output; an empty string with a nil error is possible and becomes a
	// candidate that fails validation.
	Generate(ctx context.Context, subject, language string) (string, error)
}

// CheckResult is the link checker's verdict on one reference.
type CheckResult struct {
	// OK - the reference is well-formed and reachable.
	OK bool

	// Reason - short explanation when not OK, for the run report.
	Reason string
}

// LinkChecker decides whether a reference is acceptable. It is the
// single authority: candidates are never dropped before it rules.
type LinkChecker interface {
	// Check probes the reference for well-formedness and reachability.
	// Transient failures count as not reachable for this run; there are
	// no retries, the next pipeline run revalidates.
	Check(ctx context.Context, reference string) CheckResult
}

// RecommendationSink persists validated recommendations.
type RecommendationSink interface {
	// Upsert writes one recommendation, overwriting the row with the
	// same (roll number, subject, language) key.
	Upsert(ctx context.Context, rec *recommendation.Recommendation) error
}

// ══════════════════════════════════════════════════════════════════════════════
// RUN REPORT
// ══════════════════════════════════════════════════════════════════════════════

// SubjectFailure records a generation failure for one weak subject.
// Failures are isolated: other subjects keep processing.
type SubjectFailure struct {
	// Subject - the weak subject whose generation failed.
	Subject string

	// Language - the language of the failed call.
	Language string

	// Err - the collaborator error.
	Err error
}

// Report describes one pipeline run end to end.
type Report struct {
	// RunID - unique identifier of this run.
	RunID string

	// RollNo - the processed student.
	RollNo int

	// StudentName - display name, for logs and chat replies.
	StudentName string

	// Language - the student's preferred language.
	Language string

	// WeakSubjects - subjects below the threshold, in profile order.
	WeakSubjects []recommendation.WeakSubject

	// Candidates - every candidate constructed during the run,
	// including ones that failed validation.
	Candidates []*recommendation.Candidate

	// Persisted - recommendations written to the data store.
	Persisted []*recommendation.Recommendation

	// Failures - per-subject generation failures.
	Failures []SubjectFailure

	// StartedAt - when the run began.
	StartedAt time.Time

	// CompletedAt - when the run finished.
	CompletedAt time.Time
}

// Duration returns how long the run took.
func (r *Report) Duration() time.Duration {
	return r.CompletedAt.Sub(r.StartedAt)
}

// HasFailures reports whether any subject's generation failed.
func (r *Report) HasFailures() bool {
	return len(r.Failures) > 0
}

// ValidCount returns the number of candidates that passed validation.
func (r *Report) ValidCount() int {
	n := 0
	for _, c := range r.Candidates {
		if c.IsPersistable() {
			n++
		}
	}
	return n
}

// ══════════════════════════════════════════════════════════════════════════════
// RUNNER
// ══════════════════════════════════════════════════════════════════════════════

// Runner executes the recommendation pipeline for one student at a
// time. Runs are sequential and share no state, so a single Runner is
// safe to reuse across goroutines.
type Runner struct {
	source    ProfileSource
	generator Generator
	checker   LinkChecker
	sink      RecommendationSink
	publisher shared.EventPublisher
	logger    *slog.Logger
}

// NewRunner creates a pipeline runner.
func NewRunner(
	source ProfileSource,
	generator Generator,
	checker LinkChecker,
	sink RecommendationSink,
	publisher shared.EventPublisher,
	logger *slog.Logger,
) *Runner {
	if logger == nil {
		logger = slog.Default()
	}

	return &Runner{
		source:    source,
		generator: generator,
		checker:   checker,
		sink:      sink,
		publisher: publisher,
		logger:    logger.With("component", "pipeline"),
	}
}

// Run executes the full pipeline for one student.
//
// A missing student or a data store write error is fatal and surfaced
// to the caller; a generation failure only skips that subject; an
// invalid reference only excludes that candidate. The pipeline is
// idempotent: rerunning it on an unchanged profile overwrites the same
// rows.
func (r *Runner) Run(ctx context.Context, rollNo int) (*Report, error) {
	report := &Report{
		RunID:     uuid.New().String(),
		RollNo:    rollNo,
		StartedAt: time.Now().UTC(),
	}

	logger := r.logger.With("run_id", report.RunID, "roll_no", rollNo)

	// 1. Load the profile. NotFound aborts the run before any
	// generator or persister call.
	profile, err := r.source.GetStudent(ctx, rollNo)
	if err != nil {
		return nil, fmt.Errorf("pipeline: load profile: %w", err)
	}

	report.StudentName = profile.Name
	report.Language = profile.Language.String()

	// 2. Select weak subjects in profile order.
	report.WeakSubjects = WeakSubjects(profile)

	logger.Info("pipeline run started",
		"student", profile.Name,
		"subjects", profile.Scores.Len(),
		"weak_subjects", len(report.WeakSubjects),
	)

	if len(report.WeakSubjects) == 0 {
		report.CompletedAt = time.Now().UTC()
		logger.Info("no weak subjects, nothing to recommend")
		return report, nil
	}

	// 3. Generate candidates: English plus the native language for
	// every weak subject.
	r.generateCandidates(ctx, logger, profile, report)

	// 4. Validate every constructed candidate. Rejections are routine
	// filtering, not errors.
	r.validateCandidates(ctx, logger, report)

	// 5. Persist only validated candidates. A write error is fatal.
	if err := r.persistValidated(ctx, logger, report); err != nil {
		return nil, err
	}

	report.CompletedAt = time.Now().UTC()

	if r.publisher != nil {
		event := shared.NewRecommendationsRefreshedEvent(
			rollNo,
			report.RunID,
			len(report.WeakSubjects),
			len(report.Persisted),
		)
		_ = r.publisher.Publish(event)
	}

	logger.Info("pipeline run completed",
		"candidates", len(report.Candidates),
		"persisted", len(report.Persisted),
		"failed_subjects", len(report.Failures),
		"duration", report.Duration(),
	)

	return report, nil
}

// generateCandidates calls the generator twice per weak subject. A
// collaborator error aborts the remaining calls for that subject only;
// candidates already constructed for it still go through validation.
func (r *Runner) generateCandidates(
	ctx context.Context,
	logger *slog.Logger,
	profile *student.StudentProfile,
	report *Report,
) {
	languages := recommendation.TargetLanguages(profile.Language.String())

	for _, weak := range report.WeakSubjects {
		for _, language := range languages {
			reference, err := r.generator.Generate(ctx, weak.Subject, language)
			if err != nil {
				failure := SubjectFailure{
					Subject:  weak.Subject,
					Language: language,
					Err:      shared.WrapError("pipeline", "Generate", shared.ErrGeneration, "content generation failed", err),
				}
				report.Failures = append(report.Failures, failure)

				logger.Warn("generation failed, skipping subject",
					"subject", weak.Subject,
					"language", language,
					"error", err,
				)
				break
			}

			// An empty or malformed reference still becomes a
			// candidate; validation is the single authority on
			// acceptability.
			report.Candidates = append(report.Candidates, recommendation.NewCandidate(weak.Subject, language, reference))
		}
	}
}

// validateCandidates lets the checker rule on every candidate exactly
// once. A rejected candidate is an expected outcome and is logged at
// debug level only.
func (r *Runner) validateCandidates(ctx context.Context, logger *slog.Logger, report *Report) {
	for _, candidate := range report.Candidates {
		result := r.checker.Check(ctx, candidate.Reference.String())
		if result.OK {
			_ = candidate.MarkValid()
			continue
		}

		_ = candidate.MarkInvalid(result.Reason)
		logger.Debug("candidate rejected",
			"subject", candidate.Subject,
			"language", candidate.Language,
			"reason", result.Reason,
		)
	}
}

// persistValidated writes every validated candidate through the sink.
// Candidates that failed validation are filtered out here; the sink
// never sees them.
func (r *Runner) persistValidated(ctx context.Context, logger *slog.Logger, report *Report) error {
	for _, candidate := range report.Candidates {
		if !candidate.IsPersistable() {
			continue
		}

		rec, err := recommendation.NewRecommendation(report.RollNo, candidate)
		if err != nil {
			return fmt.Errorf("pipeline: build recommendation: %w", err)
		}

		if err := r.sink.Upsert(ctx, rec); err != nil {
			return shared.WrapError("pipeline", "Persist", shared.ErrPersistence, "data store write failed", err)
		}

		report.Persisted = append(report.Persisted, rec)

		logger.Debug("recommendation persisted",
			"subject", rec.Subject,
			"language", rec.Language,
		)
	}

	return nil
}
