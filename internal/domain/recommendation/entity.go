// Package recommendation contains the domain model for study material
// recommendations: run-scoped candidates produced for weak subjects and
// the validated recommendations that get persisted.
package recommendation

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/study-buddy/study-buddy-backend/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// VALUE OBJECTS
// ══════════════════════════════════════════════════════════════════════════════

// Reference is an opaque, URI-shaped pointer to a study resource,
// usually a video link. The domain never interprets it; the link
// validator is the single authority on whether it is acceptable.
type Reference string

// IsEmpty reports whether the reference is blank.
func (r Reference) IsEmpty() bool {
	return strings.TrimSpace(string(r)) == ""
}

// String returns the string representation.
func (r Reference) String() string {
	return string(r)
}

// WeakSubject pairs a subject with the score that put it below the
// threshold. Weak subjects exist only within one pipeline run and are
// never persisted themselves.
type WeakSubject struct {
	// Subject - subject name as spelled in the student profile.
	Subject string

	// Score - the recorded score that made the subject weak.
	Score int
}

// String returns "Subject (score)" for reports and prompts.
func (w WeakSubject) String() string {
	return fmt.Sprintf("%s (%d)", w.Subject, w.Score)
}

// ══════════════════════════════════════════════════════════════════════════════
// ENUMS
// ══════════════════════════════════════════════════════════════════════════════

// Validity is the candidate's validation state. A candidate starts
// unchecked and is mutated exactly once by the link validator.
type Validity string

const (
	// ValidityUnchecked - the validator has not seen the candidate yet.
	ValidityUnchecked Validity = "unchecked"
	// ValidityValid - the reference is well-formed and reachable.
	ValidityValid Validity = "valid"
	// ValidityInvalid - the reference is malformed or unreachable.
	ValidityInvalid Validity = "invalid"
)

// IsChecked reports whether the validator has ruled on the candidate.
func (v Validity) IsChecked() bool {
	return v == ValidityValid || v == ValidityInvalid
}

// String returns the string representation.
func (v Validity) String() string {
	return string(v)
}

// ══════════════════════════════════════════════════════════════════════════════
// CANDIDATE (run-scoped)
// ══════════════════════════════════════════════════════════════════════════════

// Candidate is a not-yet-validated recommendation produced by the
// generator for one weak subject in one language. Candidates live only
// within a single pipeline run; only validated ones become
// recommendations.
type Candidate struct {
	// Subject - the weak subject the material is for.
	Subject string

	// Language - language of the material, lowercase tag.
	Language string

	// Reference - opaque resource reference returned by the generator.
	// May be empty or malformed; the validator decides.
	Reference Reference

	// Validity - validation state, unchecked until the validator rules.
	Validity Validity

	// Reason - why the candidate was rejected, empty while unchecked
	// or when valid. Informational only, never treated as an error.
	Reason string
}

// NewCandidate wraps a generator result as an unchecked candidate.
// The reference is accepted as-is: even an empty or malformed string
// becomes a candidate, so that validation remains the single authority
// on acceptability.
func NewCandidate(subject, language string, reference string) *Candidate {
	return &Candidate{
		Subject:   subject,
		Language:  strings.ToLower(strings.TrimSpace(language)),
		Reference: Reference(reference),
		Validity:  ValidityUnchecked,
	}
}

// MarkValid records that the reference is well-formed and reachable.
// Returns ErrAlreadyChecked if the validator already ruled.
func (c *Candidate) MarkValid() error {
	if c.Validity.IsChecked() {
		return ErrAlreadyChecked
	}
	c.Validity = ValidityValid
	return nil
}

// MarkInvalid records that the reference is malformed or unreachable.
// Returns ErrAlreadyChecked if the validator already ruled.
func (c *Candidate) MarkInvalid(reason string) error {
	if c.Validity.IsChecked() {
		return ErrAlreadyChecked
	}
	c.Validity = ValidityInvalid
	c.Reason = reason
	return nil
}

// IsPersistable reports whether the candidate may be handed to the
// persister. Only explicitly validated candidates qualify.
func (c *Candidate) IsPersistable() bool {
	return c.Validity == ValidityValid
}

// ══════════════════════════════════════════════════════════════════════════════
// RECOMMENDATION (AGGREGATE ROOT)
// ══════════════════════════════════════════════════════════════════════════════

// Recommendation is a validated study material reference stored for a
// student. Rows are keyed by (roll number, subject, language) and a
// later pipeline run overwrites the reference for the same key.
type Recommendation struct {
	// RollNo - roll number of the student the material is for.
	RollNo int

	// Subject - the weak subject, spelled as in the profile.
	Subject string

	// Language - language of the material, lowercase tag.
	Language string

	// Reference - the validated resource reference.
	Reference Reference

	// CreatedAt - when the row was first written.
	CreatedAt time.Time

	// UpdatedAt - when the reference was last overwritten.
	UpdatedAt time.Time
}

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN ERRORS
// ══════════════════════════════════════════════════════════════════════════════

var (
	// ErrInvalidRollNo - roll number must be positive.
	ErrInvalidRollNo = errors.New("invalid roll number: must be positive")

	// ErrInvalidSubject - subject must be non-empty.
	ErrInvalidSubject = errors.New("invalid subject: must not be empty")

	// ErrInvalidLanguage - language tag must be non-empty.
	ErrInvalidLanguage = errors.New("invalid language: must not be empty")

	// ErrAlreadyChecked - a candidate is mutated exactly once.
	ErrAlreadyChecked = errors.New("candidate validity already decided")

	// ErrCandidateNotValidated - only valid candidates become recommendations.
	ErrCandidateNotValidated = errors.New("candidate has not passed validation")

	// ErrRecommendationNotFound - no recommendation stored for the key.
	// Aliases the shared sentinel so errors.Is sees shared.ErrNotFound
	// through any wrapping.
	ErrRecommendationNotFound = shared.ErrRecommendationNotFound
)

// ══════════════════════════════════════════════════════════════════════════════
// FACTORY & VALIDATION
// ══════════════════════════════════════════════════════════════════════════════

// NewRecommendation promotes a validated candidate into a persistable
// recommendation for a student. Returns ErrCandidateNotValidated unless
// the candidate has explicitly passed validation, which keeps invalid
// references out of storage.
func NewRecommendation(rollNo int, c *Candidate) (*Recommendation, error) {
	if rollNo <= 0 {
		return nil, ErrInvalidRollNo
	}
	if !c.IsPersistable() {
		return nil, ErrCandidateNotValidated
	}

	subject := strings.TrimSpace(c.Subject)
	if subject == "" {
		return nil, ErrInvalidSubject
	}

	if c.Language == "" {
		return nil, ErrInvalidLanguage
	}

	now := time.Now().UTC()

	return &Recommendation{
		RollNo:    rollNo,
		Subject:   subject,
		Language:  c.Language,
		Reference: c.Reference,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN METHODS (Business Logic)
// ══════════════════════════════════════════════════════════════════════════════

// Key returns the canonical upsert key "rollno:subject:language".
// Subject is lowercased so that "Maths" and "maths" address one row.
func (r *Recommendation) Key() string {
	return fmt.Sprintf("%d:%s:%s", r.RollNo, strings.ToLower(r.Subject), r.Language)
}

// englishTag is the language every weak subject is always covered in,
// alongside the student's own language.
const englishTag = "english"

// TargetLanguages returns the languages to generate materials in for a
// student: always English first, then the native language. The pair is
// returned even when the native language is English; the upsert key
// collapses the duplicates at persistence time.
func TargetLanguages(native string) []string {
	return []string{englishTag, strings.ToLower(strings.TrimSpace(native))}
}
