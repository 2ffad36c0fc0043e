package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/study-buddy/study-buddy-backend/internal/domain/student"
)

func buildProfile(t *testing.T, scores []student.SubjectScore) *student.StudentProfile {
	t.Helper()

	profile, err := student.NewStudentProfile(student.NewStudentParams{
		RollNo:   1,
		Name:     "Asha",
		Grade:    7,
		Language: student.LanguageHindi,
		Scores:   scores,
	})
	require.NoError(t, err)
	return profile
}

func TestWeakSubjects_StrictThreshold(t *testing.T) {
	tests := []struct {
		name  string
		score student.Score
		weak  bool
	}{
		{name: "well below threshold", score: 45, weak: true},
		{name: "just below threshold", score: 59, weak: true},
		{name: "exactly at threshold", score: 60, weak: false},
		{name: "just above threshold", score: 61, weak: false},
		{name: "zero", score: 0, weak: true},
		{name: "full marks", score: 100, weak: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			profile := buildProfile(t, []student.SubjectScore{
				{Subject: "math", Score: tt.score},
			})

			weak := WeakSubjects(profile)

			if tt.weak {
				require.Len(t, weak, 1)
				assert.Equal(t, "math", weak[0].Subject)
				assert.Equal(t, tt.score.Int(), weak[0].Score)
			} else {
				assert.Empty(t, weak)
			}
		})
	}
}

func TestWeakSubjects_PreservesProfileOrder(t *testing.T) {
	profile := buildProfile(t, []student.SubjectScore{
		{Subject: "science", Score: 40},
		{Subject: "english", Score: 85},
		{Subject: "math", Score: 55},
		{Subject: "history", Score: 30},
	})

	weak := WeakSubjects(profile)

	require.Len(t, weak, 3)
	assert.Equal(t, "science", weak[0].Subject)
	assert.Equal(t, "math", weak[1].Subject)
	assert.Equal(t, "history", weak[2].Subject)
}

func TestWeakSubjects_EmptyScores(t *testing.T) {
	profile := buildProfile(t, nil)

	weak := WeakSubjects(profile)

	assert.NotNil(t, weak)
	assert.Empty(t, weak)
}

func TestWeakSubjects_NoneWeak(t *testing.T) {
	profile := buildProfile(t, []student.SubjectScore{
		{Subject: "math", Score: 72},
		{Subject: "english", Score: 60},
	})

	assert.Empty(t, WeakSubjects(profile))
}

func TestWeakSubjects_AllWeak(t *testing.T) {
	profile := buildProfile(t, []student.SubjectScore{
		{Subject: "math", Score: 12},
		{Subject: "english", Score: 59},
	})

	weak := WeakSubjects(profile)

	require.Len(t, weak, 2)
	assert.Equal(t, 12, weak[0].Score)
	assert.Equal(t, 59, weak[1].Score)
}
