package query

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/study-buddy/study-buddy-backend/internal/domain/student"
	"github.com/study-buddy/study-buddy-backend/internal/domain/teacher"
)

// ─────────────────────────────────────────────────────────────────────────────
// Recording mocks
// ─────────────────────────────────────────────────────────────────────────────

type MockTeacherRepo struct {
	teacher.Repository
	profile *teacher.TeacherProfile
	err     error
}

func (m *MockTeacherRepo) GetByStaffID(_ context.Context, _ teacher.StaffID) (*teacher.TeacherProfile, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.profile, nil
}

type MockStudentRepo struct {
	student.Repository
	average      *student.ClassAverage
	err          error
	averageCalls int
}

func (m *MockStudentRepo) ClassAverage(_ context.Context, _ student.Grade, _ string) (*student.ClassAverage, error) {
	m.averageCalls++
	if m.err != nil {
		return nil, m.err
	}
	return m.average, nil
}

type MockAverageCache struct {
	cached   *student.ClassAverage
	set      *student.ClassAverage
	setTTL   time.Duration
	getCalls int
}

func (m *MockAverageCache) Get(_ context.Context, _ int, _ string) (*student.ClassAverage, error) {
	m.getCalls++
	if m.cached == nil {
		return nil, errors.New("not cached")
	}
	return m.cached, nil
}

func (m *MockAverageCache) Set(_ context.Context, avg *student.ClassAverage, ttl time.Duration) error {
	m.set = avg
	m.setTTL = ttl
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Builders
// ─────────────────────────────────────────────────────────────────────────────

func buildTeacher(t *testing.T, grades ...int) *teacher.TeacherProfile {
	t.Helper()

	profile, err := teacher.NewTeacherProfile(teacher.NewTeacherParams{
		StaffID: 501,
		Name:    "R. Iyer",
		Grades:  grades,
		Subject: "maths",
	})
	require.NoError(t, err)
	return profile
}

func sampleAverage() *student.ClassAverage {
	return &student.ClassAverage{
		Grade:   8,
		Subject: "maths",
		Average: 64.25,
		Count:   4,
		Min:     41,
		Max:     88,
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Tests
// ─────────────────────────────────────────────────────────────────────────────

func TestGetClassAverage_Handle(t *testing.T) {
	teacherRepo := &MockTeacherRepo{profile: buildTeacher(t, 7, 8)}
	studentRepo := &MockStudentRepo{average: sampleAverage()}
	handler := NewGetClassAverageHandler(teacherRepo, studentRepo, nil, 0)

	dto, err := handler.Handle(context.Background(), GetClassAverageQuery{StaffID: 501, Grade: 8, Subject: "maths"})
	require.NoError(t, err)

	assert.Equal(t, 8, dto.Grade)
	assert.Equal(t, 64.25, dto.Average)
	assert.Equal(t, 4, dto.Count)
	assert.Equal(t, 41, dto.Min)
	assert.Equal(t, 88, dto.Max)
}

func TestGetClassAverage_GradeNotTaught(t *testing.T) {
	teacherRepo := &MockTeacherRepo{profile: buildTeacher(t, 9, 10)}
	studentRepo := &MockStudentRepo{average: sampleAverage()}
	handler := NewGetClassAverageHandler(teacherRepo, studentRepo, nil, 0)

	_, err := handler.Handle(context.Background(), GetClassAverageQuery{StaffID: 501, Grade: 8, Subject: "maths"})
	assert.ErrorIs(t, err, teacher.ErrGradeNotTaught)

	// Access is checked before any aggregate work.
	assert.Zero(t, studentRepo.averageCalls)
}

func TestGetClassAverage_CacheHitSkipsRepository(t *testing.T) {
	teacherRepo := &MockTeacherRepo{profile: buildTeacher(t, 8)}
	studentRepo := &MockStudentRepo{}
	cache := &MockAverageCache{cached: sampleAverage()}
	handler := NewGetClassAverageHandler(teacherRepo, studentRepo, cache, 0)

	dto, err := handler.Handle(context.Background(), GetClassAverageQuery{StaffID: 501, Grade: 8, Subject: "maths"})
	require.NoError(t, err)

	assert.Equal(t, 64.25, dto.Average)
	assert.Zero(t, studentRepo.averageCalls)
}

func TestGetClassAverage_CacheMissFillsCache(t *testing.T) {
	teacherRepo := &MockTeacherRepo{profile: buildTeacher(t, 8)}
	studentRepo := &MockStudentRepo{average: sampleAverage()}
	cache := &MockAverageCache{}
	handler := NewGetClassAverageHandler(teacherRepo, studentRepo, cache, 2*time.Minute)

	_, err := handler.Handle(context.Background(), GetClassAverageQuery{StaffID: 501, Grade: 8, Subject: "maths"})
	require.NoError(t, err)

	assert.Equal(t, 1, studentRepo.averageCalls)
	assert.Same(t, studentRepo.average, cache.set)
	assert.Equal(t, 2*time.Minute, cache.setTTL)
}

func TestGetClassAverage_ValidationRejectsBadInput(t *testing.T) {
	handler := NewGetClassAverageHandler(&MockTeacherRepo{}, &MockStudentRepo{}, nil, 0)

	_, err := handler.Handle(context.Background(), GetClassAverageQuery{StaffID: 0, Grade: 8, Subject: "maths"})
	assert.Error(t, err)

	_, err = handler.Handle(context.Background(), GetClassAverageQuery{StaffID: 501, Grade: 11, Subject: "maths"})
	assert.Error(t, err)

	_, err = handler.Handle(context.Background(), GetClassAverageQuery{StaffID: 501, Grade: 8})
	assert.Error(t, err)
}
