// Package shared contains common domain types, errors, and events
// that are used across all domain packages.
package shared

import (
	"encoding/json"
	"strconv"
	"time"
)

// EventType represents the type of domain event.
type EventType string

// Domain event types. Each event represents something significant
// that happened in the domain.
const (
	// Student events
	EventStudentRegistered EventType = "student.registered"
	EventStudentUpdated    EventType = "student.updated"

	// Teacher events
	EventTeacherRegistered EventType = "teacher.registered"
	EventTeacherUpdated    EventType = "teacher.updated"

	// Recommendation events
	EventRecommendationsRefreshed EventType = "recommendation.refreshed"
	EventRecommendationPruned     EventType = "recommendation.pruned"

	// Assessment events
	EventQuizEvaluated EventType = "assessment.quiz_evaluated"
)

// Event is the base interface for all domain events.
type Event interface {
	// EventType returns the type of the event.
	EventType() EventType

	// OccurredAt returns when the event occurred.
	OccurredAt() time.Time

	// AggregateID returns the ID of the aggregate that produced this event.
	AggregateID() string

	// Payload returns the event data as a map for serialization.
	Payload() map[string]interface{}
}

// BaseEvent provides common event functionality.
type BaseEvent struct {
	Type          EventType `json:"type"`
	Timestamp     time.Time `json:"timestamp"`
	AggregateId   string    `json:"aggregate_id"`
	Version       int       `json:"version"`
	CorrelationID string    `json:"correlation_id,omitempty"`
}

// EventType implements Event interface.
func (e BaseEvent) EventType() EventType {
	return e.Type
}

// OccurredAt implements Event interface.
func (e BaseEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// AggregateID implements Event interface.
func (e BaseEvent) AggregateID() string {
	return e.AggregateId
}

// NewBaseEvent creates a new base event.
func NewBaseEvent(eventType EventType, aggregateID string) BaseEvent {
	return BaseEvent{
		Type:        eventType,
		Timestamp:   time.Now(),
		AggregateId: aggregateID,
		Version:     1,
	}
}

// WithCorrelationID sets the correlation ID for tracing.
func (e BaseEvent) WithCorrelationID(id string) BaseEvent {
	e.CorrelationID = id
	return e
}

// ═══════════════════════════════════════════════════════════════════════════
// Student Events
// ═══════════════════════════════════════════════════════════════════════════

// StudentRegisteredEvent is emitted when a new student profile is saved.
type StudentRegisteredEvent struct {
	BaseEvent
	RollNo   int    `json:"roll_no"`
	Name     string `json:"name"`
	Grade    int    `json:"grade"`
	Language string `json:"language"`
}

// Payload implements Event interface.
func (e StudentRegisteredEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"roll_no":  e.RollNo,
		"name":     e.Name,
		"grade":    e.Grade,
		"language": e.Language,
	}
}

// NewStudentRegisteredEvent creates a new StudentRegisteredEvent.
func NewStudentRegisteredEvent(rollNo int, name string, grade int, language string) StudentRegisteredEvent {
	return StudentRegisteredEvent{
		BaseEvent: NewBaseEvent(EventStudentRegistered, strconv.Itoa(rollNo)),
		RollNo:    rollNo,
		Name:      name,
		Grade:     grade,
		Language:  language,
	}
}

// StudentUpdatedEvent is emitted when a student profile changes.
type StudentUpdatedEvent struct {
	BaseEvent
	RollNo        int      `json:"roll_no"`
	ChangedFields []string `json:"changed_fields"`
}

// Payload implements Event interface.
func (e StudentUpdatedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"roll_no":        e.RollNo,
		"changed_fields": e.ChangedFields,
	}
}

// NewStudentUpdatedEvent creates a new StudentUpdatedEvent.
func NewStudentUpdatedEvent(rollNo int, changedFields []string) StudentUpdatedEvent {
	return StudentUpdatedEvent{
		BaseEvent:     NewBaseEvent(EventStudentUpdated, strconv.Itoa(rollNo)),
		RollNo:        rollNo,
		ChangedFields: changedFields,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Teacher Events
// ═══════════════════════════════════════════════════════════════════════════

// TeacherRegisteredEvent is emitted when a new teacher profile is saved.
type TeacherRegisteredEvent struct {
	BaseEvent
	StaffID int    `json:"staff_id"`
	Name    string `json:"name"`
	Subject string `json:"subject"`
	Grades  []int  `json:"grades"`
}

// Payload implements Event interface.
func (e TeacherRegisteredEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"staff_id": e.StaffID,
		"name":     e.Name,
		"subject":  e.Subject,
		"grades":   e.Grades,
	}
}

// NewTeacherRegisteredEvent creates a new TeacherRegisteredEvent.
func NewTeacherRegisteredEvent(staffID int, name, subject string, grades []int) TeacherRegisteredEvent {
	return TeacherRegisteredEvent{
		BaseEvent: NewBaseEvent(EventTeacherRegistered, strconv.Itoa(staffID)),
		StaffID:   staffID,
		Name:      name,
		Subject:   subject,
		Grades:    grades,
	}
}

// TeacherUpdatedEvent is emitted when a teacher profile changes.
type TeacherUpdatedEvent struct {
	BaseEvent
	StaffID       int      `json:"staff_id"`
	ChangedFields []string `json:"changed_fields"`
}

// Payload implements Event interface.
func (e TeacherUpdatedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"staff_id":       e.StaffID,
		"changed_fields": e.ChangedFields,
	}
}

// NewTeacherUpdatedEvent creates a new TeacherUpdatedEvent.
func NewTeacherUpdatedEvent(staffID int, changedFields []string) TeacherUpdatedEvent {
	return TeacherUpdatedEvent{
		BaseEvent:     NewBaseEvent(EventTeacherUpdated, strconv.Itoa(staffID)),
		StaffID:       staffID,
		ChangedFields: changedFields,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Recommendation Events
// ═══════════════════════════════════════════════════════════════════════════

// RecommendationsRefreshedEvent is emitted after a pipeline run persists
// validated recommendations for a student.
type RecommendationsRefreshedEvent struct {
	BaseEvent
	RollNo       int    `json:"roll_no"`
	RunID        string `json:"run_id"`
	WeakSubjects int    `json:"weak_subjects"`
	Persisted    int    `json:"persisted"`
}

// Payload implements Event interface.
func (e RecommendationsRefreshedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"roll_no":       e.RollNo,
		"run_id":        e.RunID,
		"weak_subjects": e.WeakSubjects,
		"persisted":     e.Persisted,
	}
}

// NewRecommendationsRefreshedEvent creates a new RecommendationsRefreshedEvent.
func NewRecommendationsRefreshedEvent(rollNo int, runID string, weakSubjects, persisted int) RecommendationsRefreshedEvent {
	return RecommendationsRefreshedEvent{
		BaseEvent:    NewBaseEvent(EventRecommendationsRefreshed, strconv.Itoa(rollNo)),
		RollNo:       rollNo,
		RunID:        runID,
		WeakSubjects: weakSubjects,
		Persisted:    persisted,
	}
}

// RecommendationPrunedEvent is emitted when a stored recommendation is
// removed because its link went dead.
type RecommendationPrunedEvent struct {
	BaseEvent
	RollNo    int    `json:"roll_no"`
	Subject   string `json:"subject"`
	Language  string `json:"language"`
	Reference string `json:"reference"`
}

// Payload implements Event interface.
func (e RecommendationPrunedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"roll_no":   e.RollNo,
		"subject":   e.Subject,
		"language":  e.Language,
		"reference": e.Reference,
	}
}

// NewRecommendationPrunedEvent creates a new RecommendationPrunedEvent.
func NewRecommendationPrunedEvent(rollNo int, subject, language, reference string) RecommendationPrunedEvent {
	return RecommendationPrunedEvent{
		BaseEvent: NewBaseEvent(EventRecommendationPruned, strconv.Itoa(rollNo)),
		RollNo:    rollNo,
		Subject:   subject,
		Language:  language,
		Reference: reference,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Assessment Events
// ═══════════════════════════════════════════════════════════════════════════

// QuizEvaluatedEvent is emitted when a quiz submission has been scored
// and the result stored.
type QuizEvaluatedEvent struct {
	BaseEvent
	RollNo         int    `json:"roll_no"`
	Subject        string `json:"subject"`
	QuizScore      int    `json:"quiz_score"`
	EvaluatedScore int    `json:"evaluated_score"`
	TotalScore     int    `json:"total_score"`
}

// Payload implements Event interface.
func (e QuizEvaluatedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"roll_no":         e.RollNo,
		"subject":         e.Subject,
		"quiz_score":      e.QuizScore,
		"evaluated_score": e.EvaluatedScore,
		"total_score":     e.TotalScore,
	}
}

// NewQuizEvaluatedEvent creates a new QuizEvaluatedEvent.
func NewQuizEvaluatedEvent(rollNo int, subject string, quizScore, evaluatedScore, totalScore int) QuizEvaluatedEvent {
	return QuizEvaluatedEvent{
		BaseEvent:      NewBaseEvent(EventQuizEvaluated, strconv.Itoa(rollNo)),
		RollNo:         rollNo,
		Subject:        subject,
		QuizScore:      quizScore,
		EvaluatedScore: evaluatedScore,
		TotalScore:     totalScore,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Event Envelope (for serialization and transport)
// ═══════════════════════════════════════════════════════════════════════════

// EventEnvelope wraps an event for transport/storage.
type EventEnvelope struct {
	ID            string          `json:"id"`
	Type          EventType       `json:"type"`
	AggregateID   string          `json:"aggregate_id"`
	Timestamp     time.Time       `json:"timestamp"`
	Version       int             `json:"version"`
	CorrelationID string          `json:"correlation_id,omitempty"`
	Payload       json.RawMessage `json:"payload"`
}

// EventHandler is a function that handles an event.
type EventHandler func(event Event) error

// EventPublisher defines the interface for publishing events.
type EventPublisher interface {
	// Publish sends an event to subscribers.
	Publish(event Event) error
}

// EventSubscriber defines the interface for subscribing to events.
type EventSubscriber interface {
	// Subscribe registers a handler for an event type.
	Subscribe(eventType EventType, handler EventHandler) error

	// SubscribeAll registers a handler for all events.
	SubscribeAll(handler EventHandler) error
}

// EventBus combines publishing and subscribing.
type EventBus interface {
	EventPublisher
	EventSubscriber
}
