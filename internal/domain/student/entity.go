// Package student contains the student domain model for the Study Buddy
// tutoring platform. This is the core of the business logic with no
// external dependencies.
package student

import (
	"errors"
	"strings"
	"time"

	"github.com/study-buddy/study-buddy-backend/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// VALUE OBJECTS
// ══════════════════════════════════════════════════════════════════════════════

// RollNo represents a student's roll number, the primary identifier
// a student uses when talking to the bot.
type RollNo int

// IsValid checks that the roll number is positive.
func (r RollNo) IsValid() bool {
	return r > 0
}

// Int returns the underlying int value.
func (r RollNo) Int() int {
	return int(r)
}

// Grade represents the school grade level (1 to 10).
type Grade int

// IsValid checks that the grade is within the school range.
func (g Grade) IsValid() bool {
	return g >= 1 && g <= 10
}

// Int returns the underlying int value.
func (g Grade) Int() int {
	return int(g)
}

// Score represents a recorded subject score on the 0-100 scale.
type Score int

// weakThreshold is the boundary below which a subject counts as weak.
const weakThreshold Score = 60

// IsValid checks that the score is within the 0-100 range.
func (s Score) IsValid() bool {
	return s >= 0 && s <= 100
}

// Int returns the underlying int value.
func (s Score) Int() int {
	return int(s)
}

// IsWeak reports whether the score is strictly below the weak threshold.
// A score of exactly 60 is not weak.
func (s Score) IsWeak() bool {
	return s < weakThreshold
}

// ══════════════════════════════════════════════════════════════════════════════
// ENUMS
// ══════════════════════════════════════════════════════════════════════════════

// Language is the student's preferred language of instruction.
type Language string

const (
	// LanguageEnglish - the default language of study materials.
	LanguageEnglish Language = "english"
	// LanguageHindi - Hindi medium of instruction.
	LanguageHindi Language = "hindi"
	// LanguageTamil - Tamil medium of instruction.
	LanguageTamil Language = "tamil"
	// LanguageTelugu - Telugu medium of instruction.
	LanguageTelugu Language = "telugu"
	// LanguageKannada - Kannada medium of instruction.
	LanguageKannada Language = "kannada"
	// LanguageMarathi - Marathi medium of instruction.
	LanguageMarathi Language = "marathi"
	// LanguageBengali - Bengali medium of instruction.
	LanguageBengali Language = "bengali"
)

// IsValid checks that the language is supported.
func (l Language) IsValid() bool {
	switch l {
	case LanguageEnglish, LanguageHindi, LanguageTamil, LanguageTelugu,
		LanguageKannada, LanguageMarathi, LanguageBengali:
		return true
	default:
		return false
	}
}

// IsEnglish returns true if the preferred language is English.
func (l Language) IsEnglish() bool {
	return l == LanguageEnglish
}

// String returns the string representation of the language.
func (l Language) String() string {
	return string(l)
}

// ══════════════════════════════════════════════════════════════════════════════
// SUBJECT SCORES
// ══════════════════════════════════════════════════════════════════════════════

// SubjectScore pairs a subject name with its recorded score.
type SubjectScore struct {
	// Subject - subject name as recorded in the profile (e.g. "Maths").
	Subject string
	// Score - latest recorded score for the subject.
	Score Score
}

// Scores is an ordered collection of subject scores. Order is the
// insertion order of subjects in the profile and is preserved across
// updates, so weak-subject selection is deterministic.
type Scores []SubjectScore

// Get returns the score for a subject. Matching is case-insensitive.
func (s Scores) Get(subject string) (Score, bool) {
	for _, ss := range s {
		if strings.EqualFold(ss.Subject, subject) {
			return ss.Score, true
		}
	}
	return 0, false
}

// Has reports whether a score is recorded for the subject.
func (s Scores) Has(subject string) bool {
	_, ok := s.Get(subject)
	return ok
}

// Set records a score for a subject. An existing subject keeps its
// position and original spelling; a new subject is appended.
func (s *Scores) Set(subject string, score Score) {
	for i, ss := range *s {
		if strings.EqualFold(ss.Subject, subject) {
			(*s)[i].Score = score
			return
		}
	}
	*s = append(*s, SubjectScore{Subject: subject, Score: score})
}

// Subjects returns the subject names in insertion order.
func (s Scores) Subjects() []string {
	names := make([]string, 0, len(s))
	for _, ss := range s {
		names = append(names, ss.Subject)
	}
	return names
}

// Len returns the number of recorded subjects.
func (s Scores) Len() int {
	return len(s)
}

// IsEmpty reports whether no scores are recorded.
func (s Scores) IsEmpty() bool {
	return len(s) == 0
}

// Clone returns a deep copy of the scores.
func (s Scores) Clone() Scores {
	if s == nil {
		return nil
	}
	out := make(Scores, len(s))
	copy(out, s)
	return out
}

// ══════════════════════════════════════════════════════════════════════════════
// STUDENT PROFILE (AGGREGATE ROOT)
// ══════════════════════════════════════════════════════════════════════════════

// StudentProfile is the aggregate root of the student domain.
// It is loaded read-only by the recommendation pipeline and mutated
// only through registration and profile-update flows.
type StudentProfile struct {
	// RollNo - unique roll number, the aggregate identifier.
	RollNo RollNo

	// Name - student's display name.
	Name string

	// Grade - school grade level (1-10), drives content difficulty.
	Grade Grade

	// Language - preferred language of instruction. Recommendations
	// are generated in English plus this language.
	Language Language

	// Scores - per-subject scores in profile insertion order.
	Scores Scores

	// CreatedAt - when the profile was registered.
	CreatedAt time.Time

	// UpdatedAt - when the profile was last modified.
	UpdatedAt time.Time
}

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN ERRORS
// ══════════════════════════════════════════════════════════════════════════════

var (
	// ErrInvalidRollNo - roll number must be positive.
	ErrInvalidRollNo = errors.New("invalid roll number: must be positive")

	// ErrInvalidName - name must be 1-100 characters.
	ErrInvalidName = errors.New("invalid name: must be 1-100 chars")

	// ErrInvalidGrade - grade must be within the school range.
	ErrInvalidGrade = errors.New("invalid grade: must be between 1 and 10")

	// ErrInvalidLanguage - unsupported language of instruction.
	ErrInvalidLanguage = errors.New("invalid language: not supported")

	// ErrInvalidSubject - subject name must be non-empty.
	ErrInvalidSubject = errors.New("invalid subject: must be 2-50 chars")

	// ErrInvalidScore - score must be within the 0-100 range.
	ErrInvalidScore = errors.New("invalid score: must be between 0 and 100")

	// ErrStudentNotFound - no profile recorded for the roll number.
	// Aliases the shared sentinel so errors.Is sees shared.ErrNotFound
	// through any wrapping.
	ErrStudentNotFound = shared.ErrStudentNotFound

	// ErrStudentAlreadyExists - a profile already exists for the roll number.
	ErrStudentAlreadyExists = shared.ErrStudentAlreadyExists

	// ErrNoScoresRecorded - no student of the grade has a score for the subject.
	ErrNoScoresRecorded = errors.New("no scores recorded for grade and subject")
)

// ══════════════════════════════════════════════════════════════════════════════
// FACTORY & VALIDATION
// ══════════════════════════════════════════════════════════════════════════════

// NewStudentParams contains the parameters for registering a student.
type NewStudentParams struct {
	RollNo   RollNo
	Name     string
	Grade    Grade
	Language Language
	Scores   Scores
}

// NewStudentProfile creates a new student profile with validation of all fields.
func NewStudentProfile(params NewStudentParams) (*StudentProfile, error) {
	if !params.RollNo.IsValid() {
		return nil, ErrInvalidRollNo
	}

	name := strings.TrimSpace(params.Name)
	if len(name) == 0 || len(name) > 100 {
		return nil, ErrInvalidName
	}

	if !params.Grade.IsValid() {
		return nil, ErrInvalidGrade
	}

	if !params.Language.IsValid() {
		return nil, ErrInvalidLanguage
	}

	scores := make(Scores, 0, len(params.Scores))
	for _, ss := range params.Scores {
		subject := strings.TrimSpace(ss.Subject)
		if len(subject) < 2 || len(subject) > 50 {
			return nil, ErrInvalidSubject
		}
		if !ss.Score.IsValid() {
			return nil, ErrInvalidScore
		}
		scores.Set(subject, ss.Score)
	}

	now := time.Now().UTC()

	return &StudentProfile{
		RollNo:    params.RollNo,
		Name:      name,
		Grade:     params.Grade,
		Language:  params.Language,
		Scores:    scores,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN METHODS (Business Logic)
// ══════════════════════════════════════════════════════════════════════════════

// RecordScore records or overwrites the score for a subject.
func (p *StudentProfile) RecordScore(subject string, score Score) error {
	subject = strings.TrimSpace(subject)
	if len(subject) < 2 || len(subject) > 50 {
		return ErrInvalidSubject
	}
	if !score.IsValid() {
		return ErrInvalidScore
	}

	p.Scores.Set(subject, score)
	p.UpdatedAt = time.Now().UTC()
	return nil
}

// ScoreFor returns the recorded score for a subject.
func (p *StudentProfile) ScoreFor(subject string) (Score, bool) {
	return p.Scores.Get(subject)
}

// Rename updates the student's display name.
func (p *StudentProfile) Rename(name string) error {
	name = strings.TrimSpace(name)
	if len(name) == 0 || len(name) > 100 {
		return ErrInvalidName
	}

	p.Name = name
	p.UpdatedAt = time.Now().UTC()
	return nil
}

// ChangeGrade moves the student to another grade, e.g. after promotion.
func (p *StudentProfile) ChangeGrade(grade Grade) error {
	if !grade.IsValid() {
		return ErrInvalidGrade
	}

	p.Grade = grade
	p.UpdatedAt = time.Now().UTC()
	return nil
}

// ChangeLanguage switches the preferred language of instruction.
func (p *StudentProfile) ChangeLanguage(language Language) error {
	if !language.IsValid() {
		return ErrInvalidLanguage
	}

	p.Language = language
	p.UpdatedAt = time.Now().UTC()
	return nil
}
