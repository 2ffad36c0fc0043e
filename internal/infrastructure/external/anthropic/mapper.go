// Package anthropic implements the Anthropic API client.
package anthropic

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/study-buddy/study-buddy-backend/internal/domain/assessment"
)

// ══════════════════════════════════════════════════════════════════════════════
// MAPPER - Model output to Domain Entity transformations
// ══════════════════════════════════════════════════════════════════════════════

// ErrNoJSONInResponse is returned when the model output holds no JSON object.
var ErrNoJSONInResponse = errors.New("no json object in model response")

// Mapper handles transformation between model output and domain
// entities. It protects the domain from the quirks of generated text:
// code fences, leading prose, and trailing commentary.
type Mapper struct{}

// NewMapper creates a new Mapper instance.
func NewMapper() *Mapper {
	return &Mapper{}
}

// ══════════════════════════════════════════════════════════════════════════════
// JSON EXTRACTION
// ══════════════════════════════════════════════════════════════════════════════

// ExtractJSON returns the outermost JSON object embedded in raw model
// output. Models wrap JSON in markdown fences or short prose despite
// instructions, so the mapper cuts from the first '{' to the last '}'.
func (m *Mapper) ExtractJSON(raw string) (string, error) {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")

	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start < 0 || end < start {
		return "", ErrNoJSONInResponse
	}

	return cleaned[start : end+1], nil
}

// ParseQuizResponse parses raw model output into a QuizDTO.
func (m *Mapper) ParseQuizResponse(raw string) (*QuizDTO, error) {
	payload, err := m.ExtractJSON(raw)
	if err != nil {
		return nil, err
	}

	var dto QuizDTO
	if err := json.Unmarshal([]byte(payload), &dto); err != nil {
		return nil, fmt.Errorf("parse quiz response: %w", err)
	}

	return &dto, nil
}

// ParseEvaluationResponse parses raw model output into an EvaluationDTO.
func (m *Mapper) ParseEvaluationResponse(raw string) (*EvaluationDTO, error) {
	payload, err := m.ExtractJSON(raw)
	if err != nil {
		return nil, err
	}

	var dto EvaluationDTO
	if err := json.Unmarshal([]byte(payload), &dto); err != nil {
		return nil, fmt.Errorf("parse evaluation response: %w", err)
	}

	return &dto, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// QUIZ MAPPING
// ══════════════════════════════════════════════════════════════════════════════

// QuizParams carries the request context a generated quiz belongs to.
type QuizParams struct {
	ID       string
	RollNo   int
	Subject  string
	Grade    int
	Language string
}

// QuizFromDTO converts a QuizDTO to a domain Quiz. The domain factory
// enforces structure, so a malformed generation fails here rather than
// reaching the student.
func (m *Mapper) QuizFromDTO(dto *QuizDTO, params QuizParams) (*assessment.Quiz, error) {
	if dto == nil {
		return nil, ErrNoJSONInResponse
	}

	multipleChoice := make([]assessment.Question, 0, len(dto.MultipleChoice))
	for _, q := range dto.MultipleChoice {
		multipleChoice = append(multipleChoice, assessment.Question{
			Number:        q.Number,
			Kind:          assessment.KindMultipleChoice,
			Text:          strings.TrimSpace(q.Question),
			Options:       optionsFromDTO(q.Options),
			CorrectAnswer: assessment.NormalizeAnswerKey(q.CorrectAnswer),
		})
	}

	scenarios := make([]assessment.Question, 0, len(dto.Scenarios))
	for _, q := range dto.Scenarios {
		scenarios = append(scenarios, assessment.Question{
			Number: q.Number,
			Kind:   assessment.KindScenario,
			Text:   strings.TrimSpace(q.Question),
		})
	}

	return assessment.NewQuiz(assessment.NewQuizParams{
		ID:             params.ID,
		RollNo:         params.RollNo,
		Subject:        params.Subject,
		Grade:          params.Grade,
		Language:       params.Language,
		MultipleChoice: multipleChoice,
		Scenarios:      scenarios,
	})
}

// optionsFromDTO converts the options map into ordered domain options.
func optionsFromDTO(options map[string]string) []assessment.Option {
	keys := make([]string, 0, len(options))
	for key := range options {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	result := make([]assessment.Option, 0, len(keys))
	for _, key := range keys {
		result = append(result, assessment.Option{
			Key:  assessment.NormalizeAnswerKey(key),
			Text: strings.TrimSpace(options[key]),
		})
	}
	return result
}

// ══════════════════════════════════════════════════════════════════════════════
// EVALUATION MAPPING
// ══════════════════════════════════════════════════════════════════════════════

// GradesFromDTO converts an EvaluationDTO to domain scenario grades.
func (m *Mapper) GradesFromDTO(dto *EvaluationDTO) ([]assessment.ScenarioGrade, error) {
	if dto == nil {
		return nil, ErrNoJSONInResponse
	}

	grades := make([]assessment.ScenarioGrade, 0, len(dto.Grades))
	for _, g := range dto.Grades {
		grade := assessment.ScenarioGrade{
			Number:  g.Number,
			Points:  g.Points,
			Comment: strings.TrimSpace(g.Comment),
		}
		if !grade.IsValid() {
			return nil, fmt.Errorf("grade for question %d: %w", g.Number, assessment.ErrInvalidScenarioPoints)
		}
		grades = append(grades, grade)
	}

	return grades, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// REFERENCE MAPPING
// ══════════════════════════════════════════════════════════════════════════════

// ReferenceFromResponse extracts a material reference from raw model
// output. The model is told to reply with a bare URL; this trims the
// decoration models add anyway. An empty result is returned as-is: the
// link validator rules on it, not the client.
func (m *Mapper) ReferenceFromResponse(raw string) string {
	reference := strings.TrimSpace(raw)
	reference = strings.Trim(reference, "`")
	reference = strings.TrimPrefix(reference, "<")
	reference = strings.TrimSuffix(reference, ">")

	// When prose sneaks in, keep the first URL-shaped token.
	if strings.ContainsAny(reference, " \n") {
		for _, field := range strings.Fields(reference) {
			if strings.HasPrefix(field, "http://") || strings.HasPrefix(field, "https://") {
				return strings.Trim(field, ".,;")
			}
		}
	}

	return reference
}
