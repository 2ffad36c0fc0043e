package teacher

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/study-buddy/study-buddy-backend/internal/domain/shared"
)

func validTeacherParams() NewTeacherParams {
	return NewTeacherParams{
		StaffID: 7,
		Name:    "Meena Iyer",
		Grades:  Grades{7, 5, 5, 6},
		Subject: "Science",
	}
}

func TestNewTeacherProfile(t *testing.T) {
	profile, err := NewTeacherProfile(validTeacherParams())
	require.NoError(t, err)

	assert.Equal(t, StaffID(7), profile.StaffID)
	assert.Equal(t, Grades{5, 6, 7}, profile.Grades)
	assert.Equal(t, profile.CreatedAt, profile.UpdatedAt)
}

func TestNewTeacherProfile_Validation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*NewTeacherParams)
		wantErr error
	}{
		{name: "zero staff id", mutate: func(p *NewTeacherParams) { p.StaffID = 0 }, wantErr: ErrInvalidStaffID},
		{name: "blank name", mutate: func(p *NewTeacherParams) { p.Name = "   " }, wantErr: ErrInvalidName},
		{name: "no grades", mutate: func(p *NewTeacherParams) { p.Grades = nil }, wantErr: ErrInvalidGrades},
		{name: "grade out of range", mutate: func(p *NewTeacherParams) { p.Grades = Grades{5, 11} }, wantErr: ErrInvalidGrades},
		{name: "one-char subject", mutate: func(p *NewTeacherParams) { p.Subject = "S" }, wantErr: ErrInvalidSubject},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := validTeacherParams()
			tt.mutate(&params)

			_, err := NewTeacherProfile(params)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestCanViewGrade(t *testing.T) {
	profile, err := NewTeacherProfile(validTeacherParams())
	require.NoError(t, err)

	assert.NoError(t, profile.CanViewGrade(6))
	assert.ErrorIs(t, profile.CanViewGrade(9), ErrGradeNotTaught)
}

func TestSentinelErrors_CarrySharedKinds(t *testing.T) {
	// Repositories wrap the sentinels; the HTTP and chat layers branch
	// on the shared kind, so it must survive the wrapping.
	assert.True(t, shared.IsNotFound(fmt.Errorf("get_teacher: %w", ErrTeacherNotFound)))
	assert.True(t, shared.IsAlreadyExists(fmt.Errorf("save_teacher: %w", ErrTeacherAlreadyExists)))

	assert.ErrorIs(t, ErrTeacherNotFound, shared.ErrNotFound)
	assert.ErrorIs(t, ErrTeacherAlreadyExists, shared.ErrAlreadyExists)
}
