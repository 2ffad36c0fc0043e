// Package shared contains common domain types, errors, events, and value objects
// that are used across all domain packages.
package shared

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// ═══════════════════════════════════════════════════════════════════════════
// ID Value Objects
// ═══════════════════════════════════════════════════════════════════════════

// RollNo represents a unique student roll number within the school.
type RollNo int

// IsValid checks if the roll number is valid (positive number).
func (r RollNo) IsValid() bool {
	return r > 0
}

// Int returns the underlying int value.
func (r RollNo) Int() int {
	return int(r)
}

// String returns the string representation.
func (r RollNo) String() string {
	return fmt.Sprintf("%d", r)
}

// NewRollNo creates a new RollNo with validation.
func NewRollNo(n int) (RollNo, error) {
	if n <= 0 {
		return 0, ErrInvalidRollNo
	}
	return RollNo(n), nil
}

// StaffID represents a unique teacher staff identifier.
type StaffID int

// IsValid checks if the staff ID is valid (positive number).
func (s StaffID) IsValid() bool {
	return s > 0
}

// Int returns the underlying int value.
func (s StaffID) Int() int {
	return int(s)
}

// String returns the string representation.
func (s StaffID) String() string {
	return fmt.Sprintf("%d", s)
}

// NewStaffID creates a new StaffID with validation.
func NewStaffID(n int) (StaffID, error) {
	if n <= 0 {
		return 0, ErrInvalidStaffID
	}
	return StaffID(n), nil
}

// ═══════════════════════════════════════════════════════════════════════════
// Subject Value Object
// ═══════════════════════════════════════════════════════════════════════════

// Subject represents a school subject name as recorded in a student profile.
// Subject names are free-form (schools differ), only the shape is validated.
type Subject string

// Subject name format: letters and digits, may contain single spaces.
var subjectRegex = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9]*( [A-Za-z0-9]+)*$`)

// IsValid checks if the subject name has a valid shape.
func (s Subject) IsValid() bool {
	n := len(s)
	return n >= 2 && n <= 50 && subjectRegex.MatchString(string(s))
}

// String returns the string representation.
func (s Subject) String() string {
	return string(s)
}

// Canonical returns the lowercase form used for keying and comparison,
// so that "Maths" and "maths" address the same recommendation row.
func (s Subject) Canonical() Subject {
	return Subject(strings.ToLower(string(s)))
}

// Equal compares two subjects case-insensitively.
func (s Subject) Equal(other Subject) bool {
	return s.Canonical() == other.Canonical()
}

// NewSubject creates a new Subject with validation.
func NewSubject(name string) (Subject, error) {
	s := Subject(strings.TrimSpace(name))
	if !s.IsValid() {
		return "", ErrInvalidSubject
	}
	return s, nil
}

// ═══════════════════════════════════════════════════════════════════════════
// Language Value Object
// ═══════════════════════════════════════════════════════════════════════════

// Language represents a language of study materials or a student's
// preferred language of instruction.
type Language string

// Supported languages. English is always paired with the student's
// native language when recommendations are generated.
const (
	LanguageEnglish Language = "english"
	LanguageHindi   Language = "hindi"
	LanguageTamil   Language = "tamil"
	LanguageTelugu  Language = "telugu"
	LanguageKannada Language = "kannada"
	LanguageMarathi Language = "marathi"
	LanguageBengali Language = "bengali"
)

// SupportedLanguages returns all languages the platform can serve.
func SupportedLanguages() []Language {
	return []Language{
		LanguageEnglish,
		LanguageHindi,
		LanguageTamil,
		LanguageTelugu,
		LanguageKannada,
		LanguageMarathi,
		LanguageBengali,
	}
}

// IsValid checks if the language is one of the supported languages.
func (l Language) IsValid() bool {
	for _, s := range SupportedLanguages() {
		if l == s {
			return true
		}
	}
	return false
}

// IsEnglish reports whether the language is English.
func (l Language) IsEnglish() bool {
	return l == LanguageEnglish
}

// String returns the string representation.
func (l Language) String() string {
	return string(l)
}

// Title returns the language name capitalized for display and prompts.
func (l Language) Title() string {
	s := string(l)
	if s == "" {
		return ""
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// NewLanguage creates a new Language with validation.
func NewLanguage(value string) (Language, error) {
	l := Language(strings.ToLower(strings.TrimSpace(value)))
	if !l.IsValid() {
		return "", ErrInvalidLanguage
	}
	return l, nil
}

// ═══════════════════════════════════════════════════════════════════════════
// Score Value Object
// ═══════════════════════════════════════════════════════════════════════════

// Score represents a subject score on the 0-100 scale.
type Score int

const (
	MinScore Score = 0
	MaxScore Score = 100

	// WeakThreshold is the boundary below which a subject counts as weak.
	// The comparison is strict: a score of exactly 60 is NOT weak.
	WeakThreshold Score = 60
)

// IsValid checks if the score is within the valid range.
func (s Score) IsValid() bool {
	return s >= MinScore && s <= MaxScore
}

// Int returns the underlying int value.
func (s Score) Int() int {
	return int(s)
}

// IsWeak reports whether the score is strictly below the weak threshold.
func (s Score) IsWeak() bool {
	return s < WeakThreshold
}

// Band returns the performance band for the score.
func (s Score) Band() PerformanceBand {
	switch {
	case s < 60:
		return BandNeedsImprovement
	case s <= 75:
		return BandGood
	default:
		return BandExcellent
	}
}

// NewScore creates a new Score with validation.
func NewScore(value int) (Score, error) {
	s := Score(value)
	if !s.IsValid() {
		return 0, ErrInvalidScore
	}
	return s, nil
}

// PerformanceBand groups scores into pedagogical feedback bands.
type PerformanceBand string

const (
	BandNeedsImprovement PerformanceBand = "needs_improvement" // below 60
	BandGood             PerformanceBand = "good"              // 60 to 75
	BandExcellent        PerformanceBand = "excellent"         // above 75
)

// Feedback returns the encouraging message shown to the student.
func (b PerformanceBand) Feedback() string {
	switch b {
	case BandNeedsImprovement:
		return "You're still learning! Don't worry, with practice you'll improve. Watch the recommended tutorials and try again."
	case BandGood:
		return "Good effort! You understand the basics. Review the concepts you struggled with and practice more."
	case BandExcellent:
		return "Excellent work! You have a strong understanding of this subject. Keep it up!"
	default:
		return ""
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Grade Value Objects
// ═══════════════════════════════════════════════════════════════════════════

// Grade represents a school grade level.
type Grade int

const (
	MinGrade Grade = 1
	MaxGrade Grade = 10
)

// IsValid checks if the grade is within the valid range.
func (g Grade) IsValid() bool {
	return g >= MinGrade && g <= MaxGrade
}

// Int returns the underlying int value.
func (g Grade) Int() int {
	return int(g)
}

// String returns the string representation.
func (g Grade) String() string {
	return fmt.Sprintf("%d", g)
}

// Band returns the difficulty band for quiz generation.
func (g Grade) Band() GradeBand {
	switch {
	case g <= 3:
		return GradeBandFoundational
	case g <= 6:
		return GradeBandIntermediate
	default:
		return GradeBandAdvanced
	}
}

// NewGrade creates a new Grade with validation.
func NewGrade(value int) (Grade, error) {
	g := Grade(value)
	if !g.IsValid() {
		return 0, ErrInvalidGrade
	}
	return g, nil
}

// GradeBand groups grades into difficulty bands for content generation.
type GradeBand string

const (
	GradeBandFoundational GradeBand = "foundational" // grades 1-3
	GradeBandIntermediate GradeBand = "intermediate" // grades 4-6
	GradeBandAdvanced     GradeBand = "advanced"     // grades 7-10
)

// Description returns the difficulty guidance used in generation prompts.
func (b GradeBand) Description() string {
	switch b {
	case GradeBandFoundational:
		return "very simple, concrete questions with basic vocabulary and practical scenarios"
	case GradeBandIntermediate:
		return "moderate complexity with real-world word problems and application-based questions"
	case GradeBandAdvanced:
		return "complex conceptual questions requiring analytical thinking and multi-step reasoning"
	default:
		return ""
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// TimeRange Value Object
// ═══════════════════════════════════════════════════════════════════════════

// TimeRange represents a time period.
type TimeRange struct {
	From time.Time
	To   time.Time
}

// IsValid checks if the time range is valid.
func (t TimeRange) IsValid() bool {
	return !t.From.IsZero() && !t.To.IsZero() && !t.From.After(t.To)
}

// Duration returns the duration of the time range.
func (t TimeRange) Duration() time.Duration {
	return t.To.Sub(t.From)
}

// Contains checks if a time is within the range.
func (t TimeRange) Contains(tm time.Time) bool {
	return (tm.Equal(t.From) || tm.After(t.From)) && (tm.Equal(t.To) || tm.Before(t.To))
}

// NewTimeRange creates a new TimeRange with validation.
func NewTimeRange(from, to time.Time) (TimeRange, error) {
	tr := TimeRange{From: from, To: to}
	if !tr.IsValid() {
		return TimeRange{}, NewDomainError("shared", "NewTimeRange", ErrInvalidInput, "'from' must be before 'to'")
	}
	return tr, nil
}

// LastNDays returns a TimeRange for the last N days.
func LastNDays(n int) TimeRange {
	now := time.Now()
	return TimeRange{
		From: now.AddDate(0, 0, -n),
		To:   now,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Pagination Value Object
// ═══════════════════════════════════════════════════════════════════════════

// Pagination represents pagination parameters.
type Pagination struct {
	Page     int
	PageSize int
}

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Offset returns the offset for database queries.
func (p Pagination) Offset() int {
	if p.Page <= 0 {
		return 0
	}
	return (p.Page - 1) * p.Limit()
}

// Limit returns the limit for database queries.
func (p Pagination) Limit() int {
	if p.PageSize <= 0 {
		return DefaultPageSize
	}
	if p.PageSize > MaxPageSize {
		return MaxPageSize
	}
	return p.PageSize
}

// NewPagination creates a new Pagination with defaults.
func NewPagination(page, pageSize int) Pagination {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return Pagination{Page: page, PageSize: pageSize}
}

// DefaultPagination returns default pagination.
func DefaultPagination() Pagination {
	return NewPagination(1, DefaultPageSize)
}
