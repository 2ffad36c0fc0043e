package student

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/study-buddy/study-buddy-backend/internal/domain/shared"
)

func validParams() NewStudentParams {
	return NewStudentParams{
		RollNo:   42,
		Name:     "Asha Verma",
		Grade:    8,
		Language: LanguageHindi,
		Scores: Scores{
			{Subject: "Maths", Score: 55},
			{Subject: "Science", Score: 72},
		},
	}
}

func TestScore_IsWeak(t *testing.T) {
	// Strictly below 60: the boundary itself is not weak, zero is.
	assert.True(t, Score(59).IsWeak())
	assert.True(t, Score(0).IsWeak())
	assert.False(t, Score(60).IsWeak())
	assert.False(t, Score(100).IsWeak())
}

func TestScores_SetKeepsPositionAndSpelling(t *testing.T) {
	var s Scores
	s.Set("Maths", 55)
	s.Set("Science", 72)
	s.Set("maths", 80)

	require.Equal(t, 2, s.Len())
	assert.Equal(t, []string{"Maths", "Science"}, s.Subjects())

	got, ok := s.Get("MATHS")
	require.True(t, ok)
	assert.Equal(t, Score(80), got)
}

func TestScores_GetUnknownSubject(t *testing.T) {
	s := Scores{{Subject: "Maths", Score: 55}}

	_, ok := s.Get("History")
	assert.False(t, ok)
	assert.False(t, s.Has("History"))
}

func TestScores_CloneIsIndependent(t *testing.T) {
	s := Scores{{Subject: "Maths", Score: 55}}
	clone := s.Clone()
	clone.Set("Maths", 90)

	got, _ := s.Get("Maths")
	assert.Equal(t, Score(55), got)
}

func TestNewStudentProfile(t *testing.T) {
	profile, err := NewStudentProfile(validParams())
	require.NoError(t, err)

	assert.Equal(t, RollNo(42), profile.RollNo)
	assert.Equal(t, "Asha Verma", profile.Name)
	assert.Equal(t, []string{"Maths", "Science"}, profile.Scores.Subjects())
	assert.Equal(t, profile.CreatedAt, profile.UpdatedAt)
}

func TestNewStudentProfile_Validation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*NewStudentParams)
		wantErr error
	}{
		{"zero roll number", func(p *NewStudentParams) { p.RollNo = 0 }, ErrInvalidRollNo},
		{"blank name", func(p *NewStudentParams) { p.Name = "   " }, ErrInvalidName},
		{"grade above range", func(p *NewStudentParams) { p.Grade = 11 }, ErrInvalidGrade},
		{"unsupported language", func(p *NewStudentParams) { p.Language = "latin" }, ErrInvalidLanguage},
		{"one-char subject", func(p *NewStudentParams) { p.Scores[0].Subject = "M" }, ErrInvalidSubject},
		{"score above range", func(p *NewStudentParams) { p.Scores[0].Score = 101 }, ErrInvalidScore},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := validParams()
			tt.mutate(&params)

			_, err := NewStudentProfile(params)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestRecordScore(t *testing.T) {
	profile, err := NewStudentProfile(validParams())
	require.NoError(t, err)

	require.NoError(t, profile.RecordScore("History", 48))

	got, ok := profile.ScoreFor("history")
	require.True(t, ok)
	assert.Equal(t, Score(48), got)
	assert.Equal(t, []string{"Maths", "Science", "History"}, profile.Scores.Subjects())

	assert.ErrorIs(t, profile.RecordScore("History", 150), ErrInvalidScore)
	assert.ErrorIs(t, profile.RecordScore("", 50), ErrInvalidSubject)
}

func TestProfileMutators(t *testing.T) {
	profile, err := NewStudentProfile(validParams())
	require.NoError(t, err)

	require.NoError(t, profile.Rename("A. Verma"))
	assert.Equal(t, "A. Verma", profile.Name)
	assert.ErrorIs(t, profile.Rename(""), ErrInvalidName)

	require.NoError(t, profile.ChangeGrade(9))
	assert.Equal(t, Grade(9), profile.Grade)
	assert.ErrorIs(t, profile.ChangeGrade(0), ErrInvalidGrade)

	require.NoError(t, profile.ChangeLanguage(LanguageTamil))
	assert.Equal(t, LanguageTamil, profile.Language)
	assert.ErrorIs(t, profile.ChangeLanguage("klingon"), ErrInvalidLanguage)
}

func TestSentinelErrors_CarrySharedKinds(t *testing.T) {
	// Repositories wrap the sentinels; the HTTP and chat layers branch
	// on the shared kind, so it must survive the wrapping.
	assert.True(t, shared.IsNotFound(fmt.Errorf("get_student: %w", ErrStudentNotFound)))
	assert.True(t, shared.IsAlreadyExists(fmt.Errorf("save_student: %w", ErrStudentAlreadyExists)))

	assert.ErrorIs(t, ErrStudentNotFound, shared.ErrNotFound)
	assert.ErrorIs(t, ErrStudentAlreadyExists, shared.ErrAlreadyExists)
}
