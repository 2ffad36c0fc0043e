// Package main is the pipeline verification harness.
//
// It runs the recommendation pipeline against in-memory mock
// collaborators — a recording generator, a scripted link checker and a
// map-backed sink — and checks the pipeline's observable guarantees:
// the strict weakness boundary, the two-candidates-per-subject rule,
// idempotent upserts, and failure isolation. No flags, no network, no
// database. Exit code 1 if any scenario fails.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/study-buddy/study-buddy-backend/internal/application/pipeline"
	"github.com/study-buddy/study-buddy-backend/internal/domain/recommendation"
	"github.com/study-buddy/study-buddy-backend/internal/domain/student"
)

func main() {
	scenarios := []struct {
		name string
		run  func() error
	}{
		{"score 60 is not weak, 59 is", checkWeaknessBoundary},
		{"exactly two candidates per weak subject", checkTwoCandidates},
		{"rerun on unchanged profile is idempotent", checkIdempotence},
		{"invalid candidates never reach the persister", checkInvalidNeverPersisted},
		{"math 45 / english 75, hindi speaker", checkMathHindiScenario},
		{"empty score map does nothing", checkEmptyScores},
		{"missing student aborts before any calls", checkNotFoundAbort},
		{"one subject's failure does not stop the others", checkFailureIsolation},
	}

	failed := 0
	for _, sc := range scenarios {
		if err := sc.run(); err != nil {
			fmt.Printf("FAIL  %s\n      %v\n", sc.name, err)
			failed++
		} else {
			fmt.Printf("ok    %s\n", sc.name)
		}
	}

	fmt.Printf("\n%d scenarios, %d failed\n", len(scenarios), failed)
	if failed > 0 {
		os.Exit(1)
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// MOCK COLLABORATORS
// ══════════════════════════════════════════════════════════════════════════════

// profileSource serves a single profile, or a scripted error.
type profileSource struct {
	profile *student.StudentProfile
	err     error
}

func (s *profileSource) GetStudent(_ context.Context, _ int) (*student.StudentProfile, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.profile, nil
}

// generatorCall records one Generate invocation.
type generatorCall struct {
	Subject  string
	Language string
}

// recordingGenerator returns a deterministic reference per
// (subject, language) pair and records every call. failFor marks
// subjects whose generation errors out.
type recordingGenerator struct {
	mu      sync.Mutex
	calls   []generatorCall
	failFor map[string]error
}

func (g *recordingGenerator) Generate(_ context.Context, subject, language string) (string, error) {
	g.mu.Lock()
	g.calls = append(g.calls, generatorCall{Subject: subject, Language: language})
	g.mu.Unlock()

	if err, ok := g.failFor[subject]; ok {
		return "", err
	}
	return fmt.Sprintf("https://youtube.com/watch?v=%s-%s", subject, language), nil
}

func (g *recordingGenerator) callCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.calls)
}

// scriptedChecker accepts everything except references containing one
// of the reject markers.
type scriptedChecker struct {
	rejectContaining []string
}

func (c *scriptedChecker) Check(_ context.Context, reference string) pipeline.CheckResult {
	for _, marker := range c.rejectContaining {
		if strings.Contains(reference, marker) {
			return pipeline.CheckResult{OK: false, Reason: "scripted rejection"}
		}
	}
	return pipeline.CheckResult{OK: true}
}

// mapSink stores rows keyed (roll number, subject, language), the same
// key the real repository upserts on. It also remembers every row it
// was ever handed, so a scenario can assert what crossed the boundary.
type mapSink struct {
	mu       sync.Mutex
	rows     map[string]*recommendation.Recommendation
	received []*recommendation.Recommendation
}

func newMapSink() *mapSink {
	return &mapSink{rows: make(map[string]*recommendation.Recommendation)}
}

func (s *mapSink) Upsert(_ context.Context, rec *recommendation.Recommendation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := fmt.Sprintf("%d/%s/%s", rec.RollNo, strings.ToLower(rec.Subject), rec.Language)
	s.rows[key] = rec
	s.received = append(s.received, rec)
	return nil
}

func (s *mapSink) rowCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rows)
}

func (s *mapSink) receivedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.received)
}

// ══════════════════════════════════════════════════════════════════════════════
// SCENARIO HELPERS
// ══════════════════════════════════════════════════════════════════════════════

func newProfile(rollNo int, language student.Language, scores map[string]int) (*student.StudentProfile, error) {
	var ss student.Scores
	for _, subject := range sortedKeys(scores) {
		ss = append(ss, student.SubjectScore{Subject: subject, Score: student.Score(scores[subject])})
	}

	return student.NewStudentProfile(student.NewStudentParams{
		RollNo:   student.RollNo(rollNo),
		Name:     "Verification Student",
		Grade:    8,
		Language: language,
		Scores:   ss,
	})
}

// sortedKeys keeps profile insertion order deterministic across runs.
func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	for i := 1; i < len(keys); i++ {
		for j := i; j > 0 && keys[j] < keys[j-1]; j-- {
			keys[j], keys[j-1] = keys[j-1], keys[j]
		}
	}
	return keys
}

func newHarness(source pipeline.ProfileSource, gen *recordingGenerator, checker *scriptedChecker, sink *mapSink) *pipeline.Runner {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	return pipeline.NewRunner(source, gen, checker, sink, nil, logger)
}

// ══════════════════════════════════════════════════════════════════════════════
// SCENARIOS
// ══════════════════════════════════════════════════════════════════════════════

func checkWeaknessBoundary() error {
	profile, err := newProfile(101, student.LanguageEnglish, map[string]int{
		"physics":   60,
		"chemistry": 59,
	})
	if err != nil {
		return err
	}

	gen := &recordingGenerator{}
	sink := newMapSink()
	runner := newHarness(&profileSource{profile: profile}, gen, &scriptedChecker{}, sink)

	report, err := runner.Run(context.Background(), 101)
	if err != nil {
		return err
	}

	if len(report.WeakSubjects) != 1 {
		return fmt.Errorf("expected 1 weak subject, got %d", len(report.WeakSubjects))
	}
	if report.WeakSubjects[0].Subject != "chemistry" {
		return fmt.Errorf("expected chemistry to be weak, got %q", report.WeakSubjects[0].Subject)
	}
	for _, call := range gen.calls {
		if call.Subject == "physics" {
			return fmt.Errorf("generator called for physics (score 60)")
		}
	}
	return nil
}

func checkTwoCandidates() error {
	profile, err := newProfile(102, student.LanguageTamil, map[string]int{"history": 30})
	if err != nil {
		return err
	}

	gen := &recordingGenerator{}
	sink := newMapSink()
	runner := newHarness(&profileSource{profile: profile}, gen, &scriptedChecker{}, sink)

	report, err := runner.Run(context.Background(), 102)
	if err != nil {
		return err
	}

	if len(report.Candidates) != 2 {
		return fmt.Errorf("expected 2 candidates, got %d", len(report.Candidates))
	}
	if gen.callCount() != 2 {
		return fmt.Errorf("expected 2 generator calls, got %d", gen.callCount())
	}
	return nil
}

func checkIdempotence() error {
	profile, err := newProfile(103, student.LanguageBengali, map[string]int{
		"maths":   40,
		"science": 55,
	})
	if err != nil {
		return err
	}

	gen := &recordingGenerator{}
	sink := newMapSink()
	runner := newHarness(&profileSource{profile: profile}, gen, &scriptedChecker{}, sink)

	if _, err := runner.Run(context.Background(), 103); err != nil {
		return err
	}
	after1 := sink.rowCount()

	if _, err := runner.Run(context.Background(), 103); err != nil {
		return err
	}
	after2 := sink.rowCount()

	if after1 != after2 {
		return fmt.Errorf("row count changed across reruns: %d then %d", after1, after2)
	}
	// 2 subjects x 2 languages.
	if after2 != 4 {
		return fmt.Errorf("expected 4 distinct rows, got %d", after2)
	}
	return nil
}

func checkInvalidNeverPersisted() error {
	profile, err := newProfile(104, student.LanguageTelugu, map[string]int{"geography": 20})
	if err != nil {
		return err
	}

	gen := &recordingGenerator{}
	sink := newMapSink()
	// Reject the Telugu reference; only the English one may land.
	checker := &scriptedChecker{rejectContaining: []string{"telugu"}}
	runner := newHarness(&profileSource{profile: profile}, gen, checker, sink)

	report, err := runner.Run(context.Background(), 104)
	if err != nil {
		return err
	}

	if report.ValidCount() != 1 {
		return fmt.Errorf("expected 1 valid candidate, got %d", report.ValidCount())
	}
	if sink.receivedCount() != 1 {
		return fmt.Errorf("persister received %d rows, expected 1", sink.receivedCount())
	}
	for _, rec := range sink.received {
		if rec.Language != "english" {
			return fmt.Errorf("rejected language %q reached the persister", rec.Language)
		}
	}
	return nil
}

func checkMathHindiScenario() error {
	profile, err := newProfile(105, student.LanguageHindi, map[string]int{
		"math":    45,
		"english": 75,
	})
	if err != nil {
		return err
	}

	gen := &recordingGenerator{}
	sink := newMapSink()
	runner := newHarness(&profileSource{profile: profile}, gen, &scriptedChecker{}, sink)

	report, err := runner.Run(context.Background(), 105)
	if err != nil {
		return err
	}

	if len(report.WeakSubjects) != 1 || report.WeakSubjects[0].Subject != "math" {
		return fmt.Errorf("expected weak = [math], got %v", report.WeakSubjects)
	}

	want := map[generatorCall]bool{
		{Subject: "math", Language: "english"}: false,
		{Subject: "math", Language: "hindi"}:   false,
	}
	for _, call := range gen.calls {
		if _, ok := want[call]; !ok {
			return fmt.Errorf("unexpected generator call %+v", call)
		}
		want[call] = true
	}
	for call, seen := range want {
		if !seen {
			return fmt.Errorf("missing generator call %+v", call)
		}
	}

	if sink.receivedCount() > 2 {
		return fmt.Errorf("persister received %d rows, expected at most 2", sink.receivedCount())
	}
	return nil
}

func checkEmptyScores() error {
	profile, err := newProfile(106, student.LanguageEnglish, nil)
	if err != nil {
		return err
	}

	gen := &recordingGenerator{}
	sink := newMapSink()
	runner := newHarness(&profileSource{profile: profile}, gen, &scriptedChecker{}, sink)

	if _, err := runner.Run(context.Background(), 106); err != nil {
		return err
	}

	if gen.callCount() != 0 {
		return fmt.Errorf("generator called %d times on an empty score map", gen.callCount())
	}
	if sink.receivedCount() != 0 {
		return fmt.Errorf("persister called %d times on an empty score map", sink.receivedCount())
	}
	return nil
}

func checkNotFoundAbort() error {
	gen := &recordingGenerator{}
	sink := newMapSink()
	runner := newHarness(&profileSource{err: student.ErrStudentNotFound}, gen, &scriptedChecker{}, sink)

	if _, err := runner.Run(context.Background(), 999); err == nil {
		return fmt.Errorf("expected an error for a missing student")
	}

	if gen.callCount() != 0 {
		return fmt.Errorf("generator called %d times after a failed profile load", gen.callCount())
	}
	if sink.receivedCount() != 0 {
		return fmt.Errorf("persister called %d times after a failed profile load", sink.receivedCount())
	}
	return nil
}

func checkFailureIsolation() error {
	profile, err := newProfile(107, student.LanguageMarathi, map[string]int{
		"biology": 35,
		"civics":  50,
	})
	if err != nil {
		return err
	}

	gen := &recordingGenerator{failFor: map[string]error{
		"biology": fmt.Errorf("scripted generation failure"),
	}}
	sink := newMapSink()
	runner := newHarness(&profileSource{profile: profile}, gen, &scriptedChecker{}, sink)

	report, err := runner.Run(context.Background(), 107)
	if err != nil {
		return fmt.Errorf("one subject's failure surfaced as a run error: %w", err)
	}

	if !report.HasFailures() {
		return fmt.Errorf("expected recorded failures for biology")
	}
	for _, f := range report.Failures {
		if f.Subject != "biology" {
			return fmt.Errorf("unexpected failure for %q", f.Subject)
		}
	}

	// civics still produced and persisted both languages.
	if sink.rowCount() != 2 {
		return fmt.Errorf("expected 2 rows for the healthy subject, got %d", sink.rowCount())
	}
	for _, rec := range sink.received {
		if !strings.EqualFold(rec.Subject, "civics") {
			return fmt.Errorf("row persisted for failed subject %q", rec.Subject)
		}
	}
	return nil
}
