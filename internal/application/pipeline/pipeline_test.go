package pipeline

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/study-buddy/study-buddy-backend/internal/domain/recommendation"
	"github.com/study-buddy/study-buddy-backend/internal/domain/shared"
	"github.com/study-buddy/study-buddy-backend/internal/domain/student"
)

// ─────────────────────────────────────────────────────────────────────────────
// Recording mocks
// ─────────────────────────────────────────────────────────────────────────────

type MockProfileSource struct {
	profile *student.StudentProfile
	err     error
	calls   int
}

func (m *MockProfileSource) GetStudent(_ context.Context, _ int) (*student.StudentProfile, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.profile, nil
}

type genCall struct {
	Subject  string
	Language string
}

// MockGenerator returns a deterministic reference per (subject, language)
// pair unless an error or empty reference is configured for it.
type MockGenerator struct {
	errs  map[genCall]error
	empty map[genCall]bool
	calls []genCall
}

func (m *MockGenerator) Generate(_ context.Context, subject, language string) (string, error) {
	call := genCall{Subject: subject, Language: language}
	m.calls = append(m.calls, call)

	if err, ok := m.errs[call]; ok {
		return "", err
	}
	if m.empty[call] {
		return "", nil
	}
	return fmt.Sprintf("https://example.org/%s/%s", subject, language), nil
}

// MockChecker accepts every reference except the configured rejects.
// The empty reference is always rejected.
type MockChecker struct {
	rejects map[string]string
	calls   []string
}

func (m *MockChecker) Check(_ context.Context, reference string) CheckResult {
	m.calls = append(m.calls, reference)

	if reference == "" {
		return CheckResult{OK: false, Reason: "empty reference"}
	}
	if reason, ok := m.rejects[reference]; ok {
		return CheckResult{OK: false, Reason: reason}
	}
	return CheckResult{OK: true}
}

type MockSink struct {
	upserts []*recommendation.Recommendation
	err     error
}

func (m *MockSink) Upsert(_ context.Context, rec *recommendation.Recommendation) error {
	if m.err != nil {
		return m.err
	}
	m.upserts = append(m.upserts, rec)
	return nil
}

// keys returns the distinct upsert keys, modelling what a keyed store
// would actually hold after the run.
func (m *MockSink) keys() map[string]int {
	keys := make(map[string]int)
	for _, rec := range m.upserts {
		keys[rec.Key()]++
	}
	return keys
}

type MockPublisher struct {
	events []shared.Event
}

func (m *MockPublisher) Publish(event shared.Event) error {
	m.events = append(m.events, event)
	return nil
}

func newTestRunner(source *MockProfileSource, gen *MockGenerator, checker *MockChecker, sink *MockSink, pub *MockPublisher) *Runner {
	var publisher shared.EventPublisher
	if pub != nil {
		publisher = pub
	}
	return NewRunner(source, gen, checker, sink, publisher, nil)
}

// ─────────────────────────────────────────────────────────────────────────────
// Tests
// ─────────────────────────────────────────────────────────────────────────────

func TestRunner_Run_EndToEnd(t *testing.T) {
	profile := buildProfile(t, []student.SubjectScore{
		{Subject: "math", Score: 45},
		{Subject: "english", Score: 75},
	})

	source := &MockProfileSource{profile: profile}
	gen := &MockGenerator{}
	checker := &MockChecker{}
	sink := &MockSink{}
	pub := &MockPublisher{}

	report, err := newTestRunner(source, gen, checker, sink, pub).Run(context.Background(), 1)
	require.NoError(t, err)
	require.NotNil(t, report)

	assert.NotEmpty(t, report.RunID)
	assert.Equal(t, 1, report.RollNo)
	assert.Equal(t, "Asha", report.StudentName)
	assert.Equal(t, "hindi", report.Language)

	// Only math is weak. English at 75 stays out.
	require.Len(t, report.WeakSubjects, 1)
	assert.Equal(t, "math", report.WeakSubjects[0].Subject)
	assert.Equal(t, 45, report.WeakSubjects[0].Score)

	// Exactly two generator calls: English first, then the native language.
	require.Len(t, gen.calls, 2)
	assert.Equal(t, genCall{Subject: "math", Language: "english"}, gen.calls[0])
	assert.Equal(t, genCall{Subject: "math", Language: "hindi"}, gen.calls[1])

	// Every candidate was checked and persisted.
	assert.Len(t, checker.calls, 2)
	require.Len(t, report.Candidates, 2)
	require.Len(t, report.Persisted, 2)
	assert.Len(t, sink.upserts, 2)
	assert.False(t, report.HasFailures())

	// One run event with the run's counts.
	require.Len(t, pub.events, 1)
	refreshed, ok := pub.events[0].(shared.RecommendationsRefreshedEvent)
	require.True(t, ok)
	assert.Equal(t, 1, refreshed.RollNo)
	assert.Equal(t, report.RunID, refreshed.RunID)
	assert.Equal(t, 1, refreshed.WeakSubjects)
	assert.Equal(t, 2, refreshed.Persisted)
}

func TestRunner_Run_StudentNotFound(t *testing.T) {
	source := &MockProfileSource{err: student.ErrStudentNotFound}
	gen := &MockGenerator{}
	checker := &MockChecker{}
	sink := &MockSink{}

	report, err := newTestRunner(source, gen, checker, sink, nil).Run(context.Background(), 404)

	require.Error(t, err)
	assert.Nil(t, report)
	assert.ErrorIs(t, err, student.ErrStudentNotFound)

	// The run aborts before touching any collaborator.
	assert.Empty(t, gen.calls)
	assert.Empty(t, checker.calls)
	assert.Empty(t, sink.upserts)
}

func TestRunner_Run_NoWeakSubjects(t *testing.T) {
	profile := buildProfile(t, []student.SubjectScore{
		{Subject: "math", Score: 60},
		{Subject: "english", Score: 92},
	})

	source := &MockProfileSource{profile: profile}
	gen := &MockGenerator{}
	checker := &MockChecker{}
	sink := &MockSink{}
	pub := &MockPublisher{}

	report, err := newTestRunner(source, gen, checker, sink, pub).Run(context.Background(), 1)
	require.NoError(t, err)

	assert.Empty(t, report.WeakSubjects)
	assert.Empty(t, gen.calls)
	assert.Empty(t, sink.upserts)
	assert.Empty(t, pub.events)
}

func TestRunner_Run_EmptyScores(t *testing.T) {
	profile := buildProfile(t, nil)

	source := &MockProfileSource{profile: profile}
	gen := &MockGenerator{}
	sink := &MockSink{}

	report, err := newTestRunner(source, gen, &MockChecker{}, sink, nil).Run(context.Background(), 1)
	require.NoError(t, err)

	assert.Empty(t, report.WeakSubjects)
	assert.Empty(t, report.Candidates)
	assert.Empty(t, gen.calls)
	assert.Empty(t, sink.upserts)
}

func TestRunner_Run_GenerationFailureIsolatesSubject(t *testing.T) {
	profile := buildProfile(t, []student.SubjectScore{
		{Subject: "math", Score: 40},
		{Subject: "science", Score: 50},
	})

	genErr := errors.New("model overloaded")
	source := &MockProfileSource{profile: profile}
	gen := &MockGenerator{
		errs: map[genCall]error{
			{Subject: "math", Language: "english"}: genErr,
		},
	}
	checker := &MockChecker{}
	sink := &MockSink{}

	report, err := newTestRunner(source, gen, checker, sink, nil).Run(context.Background(), 1)
	require.NoError(t, err)

	// Math failed on its first call, so its native call was skipped.
	require.Len(t, gen.calls, 3)
	assert.Equal(t, genCall{Subject: "math", Language: "english"}, gen.calls[0])
	assert.Equal(t, genCall{Subject: "science", Language: "english"}, gen.calls[1])
	assert.Equal(t, genCall{Subject: "science", Language: "hindi"}, gen.calls[2])

	// Science is unaffected: two candidates, both persisted.
	require.Len(t, report.Candidates, 2)
	assert.Len(t, report.Persisted, 2)

	require.True(t, report.HasFailures())
	require.Len(t, report.Failures, 1)
	assert.Equal(t, "math", report.Failures[0].Subject)
	assert.Equal(t, "english", report.Failures[0].Language)
	assert.ErrorIs(t, report.Failures[0].Err, genErr)
	assert.True(t, shared.IsGeneration(report.Failures[0].Err))
}

func TestRunner_Run_FailureOnSecondCallKeepsFirstCandidate(t *testing.T) {
	profile := buildProfile(t, []student.SubjectScore{
		{Subject: "math", Score: 40},
	})

	source := &MockProfileSource{profile: profile}
	gen := &MockGenerator{
		errs: map[genCall]error{
			{Subject: "math", Language: "hindi"}: errors.New("timeout"),
		},
	}
	checker := &MockChecker{}
	sink := &MockSink{}

	report, err := newTestRunner(source, gen, checker, sink, nil).Run(context.Background(), 1)
	require.NoError(t, err)

	// The English candidate was already constructed and still flows
	// through validation and persistence.
	require.Len(t, report.Candidates, 1)
	assert.Equal(t, "english", report.Candidates[0].Language)
	assert.Len(t, report.Persisted, 1)
	require.Len(t, report.Failures, 1)
	assert.Equal(t, "hindi", report.Failures[0].Language)
}

func TestRunner_Run_EmptyReferenceFailsValidationNotGeneration(t *testing.T) {
	profile := buildProfile(t, []student.SubjectScore{
		{Subject: "math", Score: 40},
	})

	source := &MockProfileSource{profile: profile}
	gen := &MockGenerator{
		empty: map[genCall]bool{
			{Subject: "math", Language: "english"}: true,
		},
	}
	checker := &MockChecker{}
	sink := &MockSink{}

	report, err := newTestRunner(source, gen, checker, sink, nil).Run(context.Background(), 1)
	require.NoError(t, err)

	// An empty reference is not a generation failure. The candidate is
	// constructed and the checker rules on it.
	assert.False(t, report.HasFailures())
	require.Len(t, report.Candidates, 2)
	assert.Contains(t, checker.calls, "")

	rejected := report.Candidates[0]
	assert.Equal(t, recommendation.ValidityInvalid, rejected.Validity)
	assert.Equal(t, "empty reference", rejected.Reason)

	// Only the non-empty reference was persisted.
	require.Len(t, report.Persisted, 1)
	assert.Equal(t, "hindi", report.Persisted[0].Language)
}

func TestRunner_Run_SinkOnlySeesValidated(t *testing.T) {
	profile := buildProfile(t, []student.SubjectScore{
		{Subject: "math", Score: 40},
		{Subject: "science", Score: 50},
	})

	source := &MockProfileSource{profile: profile}
	gen := &MockGenerator{}
	checker := &MockChecker{
		rejects: map[string]string{
			"https://example.org/math/hindi":      "unreachable",
			"https://example.org/science/english": "not a URL",
		},
	}
	sink := &MockSink{}

	report, err := newTestRunner(source, gen, checker, sink, nil).Run(context.Background(), 1)
	require.NoError(t, err)

	assert.Len(t, report.Candidates, 4)
	assert.Equal(t, 2, report.ValidCount())

	require.Len(t, sink.upserts, 2)
	for _, rec := range sink.upserts {
		assert.NotEmpty(t, rec.Reference.String())
		assert.NotContains(t, checker.rejects, rec.Reference.String())
	}
}

func TestRunner_Run_PersistenceFailureFatal(t *testing.T) {
	profile := buildProfile(t, []student.SubjectScore{
		{Subject: "math", Score: 40},
	})

	sinkErr := errors.New("connection refused")
	source := &MockProfileSource{profile: profile}
	sink := &MockSink{err: sinkErr}

	report, err := newTestRunner(source, &MockGenerator{}, &MockChecker{}, sink, nil).Run(context.Background(), 1)

	require.Error(t, err)
	assert.Nil(t, report)
	assert.ErrorIs(t, err, sinkErr)
	assert.True(t, shared.IsPersistence(err))
}

func TestRunner_Run_EnglishNativeCollapsesOnUpsertKey(t *testing.T) {
	profile, err := student.NewStudentProfile(student.NewStudentParams{
		RollNo:   2,
		Name:     "Rohan",
		Grade:    5,
		Language: student.LanguageEnglish,
		Scores: []student.SubjectScore{
			{Subject: "math", Score: 30},
		},
	})
	require.NoError(t, err)

	source := &MockProfileSource{profile: profile}
	sink := &MockSink{}

	report, err := newTestRunner(source, &MockGenerator{}, &MockChecker{}, sink, nil).Run(context.Background(), 2)
	require.NoError(t, err)

	// Two candidates are still generated, but they share one upsert key,
	// so a keyed store ends up with a single row.
	assert.Len(t, report.Candidates, 2)
	assert.Len(t, sink.upserts, 2)
	assert.Len(t, sink.keys(), 1)
}

func TestRunner_Run_RerunOverwritesSameKeys(t *testing.T) {
	profile := buildProfile(t, []student.SubjectScore{
		{Subject: "math", Score: 40},
	})

	source := &MockProfileSource{profile: profile}
	sink := &MockSink{}
	runner := newTestRunner(source, &MockGenerator{}, &MockChecker{}, sink, nil)

	first, err := runner.Run(context.Background(), 1)
	require.NoError(t, err)
	second, err := runner.Run(context.Background(), 1)
	require.NoError(t, err)

	assert.NotEqual(t, first.RunID, second.RunID)

	// Four upsert calls land on the same two keys. An unchanged profile
	// never grows the store.
	keys := sink.keys()
	assert.Len(t, keys, 2)
	for key, count := range keys {
		assert.Equal(t, 2, count, "key %s", key)
	}
}

func TestRunner_Run_CandidateCheckedExactlyOnce(t *testing.T) {
	profile := buildProfile(t, []student.SubjectScore{
		{Subject: "math", Score: 40},
	})

	source := &MockProfileSource{profile: profile}
	checker := &MockChecker{}

	report, err := newTestRunner(source, &MockGenerator{}, checker, &MockSink{}, nil).Run(context.Background(), 1)
	require.NoError(t, err)

	assert.Len(t, checker.calls, len(report.Candidates))
	for _, candidate := range report.Candidates {
		assert.True(t, candidate.Validity.IsChecked())
	}
}
