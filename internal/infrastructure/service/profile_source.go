package service

import (
	"context"

	"github.com/study-buddy/study-buddy-backend/internal/domain/student"
)

// StudentProfileSource adapts the student repository to the pipeline's
// ProfileSource port, which speaks plain ints for roll numbers.
type StudentProfileSource struct {
	repo student.Repository
}

// NewStudentProfileSource creates a new StudentProfileSource.
func NewStudentProfileSource(repo student.Repository) *StudentProfileSource {
	return &StudentProfileSource{repo: repo}
}

// GetStudent implements pipeline.ProfileSource.
func (s *StudentProfileSource) GetStudent(ctx context.Context, rollNo int) (*student.StudentProfile, error) {
	return s.repo.GetByRollNo(ctx, student.RollNo(rollNo))
}
