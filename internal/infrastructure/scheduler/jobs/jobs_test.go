package jobs

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/study-buddy/study-buddy-backend/internal/application/pipeline"
	"github.com/study-buddy/study-buddy-backend/internal/domain/recommendation"
	"github.com/study-buddy/study-buddy-backend/internal/domain/shared"
	"github.com/study-buddy/study-buddy-backend/internal/domain/student"
	"github.com/study-buddy/study-buddy-backend/internal/infrastructure/external/linkcheck"
)

// ─────────────────────────────────────────────────────────────────────────────
// Recording mocks
// ─────────────────────────────────────────────────────────────────────────────

type MockStudentRepo struct {
	student.Repository
	profiles []*student.StudentProfile
	err      error
}

func (m *MockStudentRepo) GetAll(_ context.Context, opts student.ListOptions) ([]*student.StudentProfile, error) {
	if m.err != nil {
		return nil, m.err
	}

	if opts.Offset >= len(m.profiles) {
		return nil, nil
	}
	end := opts.Offset + opts.Limit
	if end > len(m.profiles) {
		end = len(m.profiles)
	}
	return m.profiles[opts.Offset:end], nil
}

type MockRunner struct {
	runs    []int
	failFor map[int]error
}

func (m *MockRunner) Run(_ context.Context, rollNo int) (*pipeline.Report, error) {
	m.runs = append(m.runs, rollNo)
	if err, ok := m.failFor[rollNo]; ok {
		return nil, err
	}
	return &pipeline.Report{
		RollNo:    rollNo,
		Persisted: []*recommendation.Recommendation{{RollNo: rollNo}},
	}, nil
}

type deletedKey struct {
	RollNo   int
	Subject  string
	Language string
}

type MockRecRepo struct {
	recommendation.Repository
	stale         []*recommendation.Recommendation
	staleErr      error
	deleted       []deletedKey
	deleteFailFor string
}

func (m *MockRecRepo) GetStale(_ context.Context, _ time.Time, _ int) ([]*recommendation.Recommendation, error) {
	if m.staleErr != nil {
		return nil, m.staleErr
	}
	return m.stale, nil
}

func (m *MockRecRepo) Delete(_ context.Context, rollNo int, subject, language string) error {
	if subject == m.deleteFailFor {
		return errors.New("delete failed")
	}
	m.deleted = append(m.deleted, deletedKey{RollNo: rollNo, Subject: subject, Language: language})
	return nil
}

type MockProber struct {
	deadContaining string
}

func (m *MockProber) Check(_ context.Context, reference string) linkcheck.Result {
	if m.deadContaining != "" && strings.Contains(reference, m.deadContaining) {
		return linkcheck.Result{OK: false, Reason: "dead"}
	}
	return linkcheck.Result{OK: true}
}

type MockEventPublisher struct {
	events []shared.Event
}

func (m *MockEventPublisher) Publish(event shared.Event) error {
	m.events = append(m.events, event)
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Builders
// ─────────────────────────────────────────────────────────────────────────────

func buildProfiles(t *testing.T, n int) []*student.StudentProfile {
	t.Helper()

	profiles := make([]*student.StudentProfile, 0, n)
	for i := 1; i <= n; i++ {
		profile, err := student.NewStudentProfile(student.NewStudentParams{
			RollNo:   student.RollNo(i),
			Name:     "Student",
			Grade:    8,
			Language: student.LanguageEnglish,
			Scores:   student.Scores{{Subject: "maths", Score: 40}},
		})
		require.NoError(t, err)
		profiles = append(profiles, profile)
	}
	return profiles
}

// ─────────────────────────────────────────────────────────────────────────────
// Refresh job
// ─────────────────────────────────────────────────────────────────────────────

func TestRefreshJob_RunsEveryStudent(t *testing.T) {
	repo := &MockStudentRepo{profiles: buildProfiles(t, 7)}
	runner := &MockRunner{}
	// BatchSize 3 forces pagination across three pages.
	job := NewRefreshRecommendationsJob(repo, runner, nil, RefreshRecommendationsConfig{
		Concurrency: 2,
		BatchSize:   3,
	})

	require.NoError(t, job.Run(context.Background()))

	assert.Len(t, runner.runs, 7)

	stats := job.LastStats()
	require.NotNil(t, stats)
	assert.Equal(t, 7, stats.TotalStudents)
	assert.Equal(t, 7, stats.SucceededRuns)
	assert.Equal(t, 7, stats.Persisted)
}

func TestRefreshJob_IsolatesFailedRuns(t *testing.T) {
	repo := &MockStudentRepo{profiles: buildProfiles(t, 5)}
	runner := &MockRunner{failFor: map[int]error{3: errors.New("generator down")}}
	job := NewRefreshRecommendationsJob(repo, runner, nil, DefaultRefreshRecommendationsConfig())

	require.NoError(t, job.Run(context.Background()))

	stats := job.LastStats()
	require.NotNil(t, stats)
	assert.Equal(t, 4, stats.SucceededRuns)
	assert.Equal(t, 1, stats.FailedRuns)
	require.Len(t, stats.Errors, 1)
	assert.Equal(t, 3, stats.Errors[0].RollNo)
}

func TestRefreshJob_FailsWhenMostRunsFail(t *testing.T) {
	repo := &MockStudentRepo{profiles: buildProfiles(t, 3)}
	runner := &MockRunner{failFor: map[int]error{
		1: errors.New("down"),
		2: errors.New("down"),
	}}
	job := NewRefreshRecommendationsJob(repo, runner, nil, DefaultRefreshRecommendationsConfig())

	err := job.Run(context.Background())
	assert.Error(t, err)
}

func TestRefreshJob_EmptyStudentTable(t *testing.T) {
	repo := &MockStudentRepo{}
	runner := &MockRunner{}
	job := NewRefreshRecommendationsJob(repo, runner, nil, DefaultRefreshRecommendationsConfig())

	require.NoError(t, job.Run(context.Background()))
	assert.Empty(t, runner.runs)
}

// ─────────────────────────────────────────────────────────────────────────────
// Sweep job
// ─────────────────────────────────────────────────────────────────────────────

func staleRec(rollNo int, subject, language, reference string) *recommendation.Recommendation {
	return &recommendation.Recommendation{
		RollNo:    rollNo,
		Subject:   subject,
		Language:  language,
		Reference: recommendation.Reference(reference),
	}
}

func TestSweepJob_KeepsLiveRowsAndPrunesDeadOnes(t *testing.T) {
	recRepo := &MockRecRepo{stale: []*recommendation.Recommendation{
		staleRec(42, "maths", "english", "https://youtube.com/watch?v=live-1"),
		staleRec(42, "maths", "hindi", "https://youtube.com/watch?v=gone-1"),
		staleRec(17, "science", "english", "https://youtube.com/watch?v=live-2"),
	}}
	publisher := &MockEventPublisher{}
	job := NewSweepDeadLinksJob(recRepo, &MockProber{deadContaining: "gone"}, publisher, nil, DefaultSweepDeadLinksConfig())

	require.NoError(t, job.Run(context.Background()))

	require.Len(t, recRepo.deleted, 1)
	assert.Equal(t, deletedKey{RollNo: 42, Subject: "maths", Language: "hindi"}, recRepo.deleted[0])

	stats := job.LastStats()
	require.NotNil(t, stats)
	assert.Equal(t, 3, stats.Probed)
	assert.Equal(t, 2, stats.Kept)
	assert.Equal(t, 1, stats.Pruned)
}

func TestSweepJob_PublishesPruneEvents(t *testing.T) {
	recRepo := &MockRecRepo{stale: []*recommendation.Recommendation{
		staleRec(42, "maths", "hindi", "https://youtube.com/watch?v=gone-1"),
	}}
	publisher := &MockEventPublisher{}
	job := NewSweepDeadLinksJob(recRepo, &MockProber{deadContaining: "gone"}, publisher, nil, DefaultSweepDeadLinksConfig())

	require.NoError(t, job.Run(context.Background()))

	require.Len(t, publisher.events, 1)
	pruned, ok := publisher.events[0].(shared.RecommendationPrunedEvent)
	require.True(t, ok)
	assert.Equal(t, 42, pruned.RollNo)
	assert.Equal(t, "maths", pruned.Subject)
	assert.Equal(t, "hindi", pruned.Language)
	assert.Equal(t, "https://youtube.com/watch?v=gone-1", pruned.Reference)
}

func TestSweepJob_ReportsDeleteFailures(t *testing.T) {
	recRepo := &MockRecRepo{
		stale: []*recommendation.Recommendation{
			staleRec(42, "maths", "hindi", "https://youtube.com/watch?v=gone-1"),
			staleRec(17, "science", "english", "https://youtube.com/watch?v=gone-2"),
		},
		deleteFailFor: "maths",
	}
	job := NewSweepDeadLinksJob(recRepo, &MockProber{deadContaining: "gone"}, nil, nil, DefaultSweepDeadLinksConfig())

	err := job.Run(context.Background())
	assert.Error(t, err)

	// The science row was still pruned despite the maths delete failing.
	require.Len(t, recRepo.deleted, 1)
	assert.Equal(t, "science", recRepo.deleted[0].Subject)

	stats := job.LastStats()
	require.NotNil(t, stats)
	assert.Equal(t, 1, stats.DeleteFails)
	assert.Equal(t, 1, stats.Pruned)
}

func TestSweepJob_NothingStale(t *testing.T) {
	recRepo := &MockRecRepo{}
	job := NewSweepDeadLinksJob(recRepo, &MockProber{}, nil, nil, DefaultSweepDeadLinksConfig())

	require.NoError(t, job.Run(context.Background()))
	assert.Empty(t, recRepo.deleted)
}
