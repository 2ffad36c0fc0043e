// Package shared contains common domain types, errors, and events
// that are used across all domain packages. This package has zero external dependencies.
package shared

import (
	"errors"
	"fmt"
)

// Base domain errors that can be used for error checking with errors.Is().
var (
	// Entity errors
	ErrNotFound      = errors.New("entity not found")
	ErrAlreadyExists = errors.New("entity already exists")
	ErrInvalidEntity = errors.New("invalid entity")

	// Validation errors
	ErrValidation      = errors.New("validation error")
	ErrInvalidID       = errors.New("invalid ID")
	ErrInvalidInput    = errors.New("invalid input")
	ErrEmptyValue      = errors.New("value cannot be empty")
	ErrValueOutOfRange = errors.New("value out of range")
	ErrInvalidFormat   = errors.New("invalid format")

	// Pipeline outcome errors
	ErrGeneration  = errors.New("content generation failed")
	ErrLinkInvalid = errors.New("link invalid or unreachable")
	ErrPersistence = errors.New("persistence failed")

	// External service errors
	ErrExternalService    = errors.New("external service error")
	ErrServiceUnavailable = errors.New("service unavailable")
	ErrTimeout            = errors.New("operation timeout")
	ErrRateLimited        = errors.New("rate limited")
)

// DomainError represents a domain-specific error with context.
type DomainError struct {
	Domain  string // e.g., "student", "recommendation", "assessment"
	Op      string // Operation that failed, e.g., "Create", "Upsert"
	Kind    error  // Base error type for errors.Is() checking
	Message string // Human-readable message
	Err     error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s.%s: %s: %v", e.Domain, e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s.%s: %s", e.Domain, e.Op, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap().
func (e *DomainError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return e.Kind
}

// Is implements errors.Is() matching.
func (e *DomainError) Is(target error) bool {
	if e.Kind != nil && errors.Is(e.Kind, target) {
		return true
	}
	if e.Err != nil && errors.Is(e.Err, target) {
		return true
	}
	return false
}

// NewDomainError creates a new domain error.
func NewDomainError(domain, op string, kind error, message string) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
	}
}

// WrapError wraps an existing error with domain context.
func WrapError(domain, op string, kind error, message string, err error) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
		Err:     err,
	}
}

// Student domain errors
var (
	ErrStudentNotFound      = NewDomainError("student", "Find", ErrNotFound, "student not found")
	ErrStudentAlreadyExists = NewDomainError("student", "Create", ErrAlreadyExists, "student already exists")
	ErrInvalidRollNo        = NewDomainError("student", "Validate", ErrInvalidID, "invalid roll number")
	ErrInvalidGrade         = NewDomainError("student", "Validate", ErrValueOutOfRange, "grade must be between 1 and 10")
	ErrInvalidLanguage      = NewDomainError("student", "Validate", ErrInvalidInput, "unsupported language")
	ErrInvalidScore         = NewDomainError("student", "Validate", ErrValueOutOfRange, "score must be between 0 and 100")
	ErrInvalidSubject       = NewDomainError("student", "Validate", ErrInvalidInput, "invalid subject name")
)

// Teacher domain errors
var (
	ErrTeacherNotFound      = NewDomainError("teacher", "Find", ErrNotFound, "teacher not found")
	ErrTeacherAlreadyExists = NewDomainError("teacher", "Create", ErrAlreadyExists, "teacher already exists")
	ErrInvalidStaffID       = NewDomainError("teacher", "Validate", ErrInvalidID, "invalid staff ID")
)

// Recommendation domain errors
var (
	ErrRecommendationNotFound = NewDomainError("recommendation", "Find", ErrNotFound, "recommendation not found")
	ErrCandidateNotValidated  = NewDomainError("recommendation", "Persist", ErrInvalidEntity, "candidate has not been validated")
	ErrEmptyReference         = NewDomainError("recommendation", "Validate", ErrEmptyValue, "reference cannot be empty")
)

// Assessment domain errors
var (
	ErrQuizNotFound        = NewDomainError("assessment", "Find", ErrNotFound, "quiz not found")
	ErrResultNotFound      = NewDomainError("assessment", "Find", ErrNotFound, "test result not found")
	ErrAnswerCountMismatch = NewDomainError("assessment", "Score", ErrInvalidInput, "answer count does not match question count")
)

// External service errors
var (
	ErrGeneratorUnavailable     = NewDomainError("generator", "Request", ErrServiceUnavailable, "content generator is unavailable")
	ErrGeneratorRateLimited     = NewDomainError("generator", "Request", ErrRateLimited, "content generator rate limit exceeded")
	ErrGeneratorTimeout         = NewDomainError("generator", "Request", ErrTimeout, "content generator request timeout")
	ErrGeneratorInvalidResponse = NewDomainError("generator", "Parse", ErrInvalidFormat, "invalid response from content generator")
)

// IsNotFound checks if the error is a "not found" error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsAlreadyExists checks if the error is an "already exists" error.
func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}

// IsValidation checks if the error is a validation error.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrInvalidID) ||
		errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrEmptyValue) ||
		errors.Is(err, ErrValueOutOfRange)
}

// IsGeneration checks if the error is a content generation failure.
func IsGeneration(err error) bool {
	return errors.Is(err, ErrGeneration)
}

// IsPersistence checks if the error is a data store write failure.
func IsPersistence(err error) bool {
	return errors.Is(err, ErrPersistence)
}

// IsExternalService checks if the error is from an external service.
func IsExternalService(err error) bool {
	return errors.Is(err, ErrExternalService) ||
		errors.Is(err, ErrServiceUnavailable) ||
		errors.Is(err, ErrTimeout) ||
		errors.Is(err, ErrRateLimited)
}

// IsRetryable checks if the operation can be retried.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrServiceUnavailable) ||
		errors.Is(err, ErrTimeout) ||
		errors.Is(err, ErrRateLimited)
}
