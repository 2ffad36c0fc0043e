// Package pipeline implements the weak-subject recommendation pipeline:
// load a student profile, select subjects scored below the threshold,
// generate material references in English and the student's language,
// validate each reference, and persist only the validated ones.
package pipeline

import (
	"github.com/study-buddy/study-buddy-backend/internal/domain/recommendation"
	"github.com/study-buddy/study-buddy-backend/internal/domain/student"
)

// WeakSubjects selects the subjects of a profile scored strictly below
// the weak threshold, in profile insertion order. A score of exactly 60
// is not weak. A profile without scores yields an empty selection, not
// an error.
func WeakSubjects(profile *student.StudentProfile) []recommendation.WeakSubject {
	weak := make([]recommendation.WeakSubject, 0, len(profile.Scores))
	for _, ss := range profile.Scores {
		if ss.Score.IsWeak() {
			weak = append(weak, recommendation.WeakSubject{
				Subject: ss.Subject,
				Score:   ss.Score.Int(),
			})
		}
	}
	return weak
}
