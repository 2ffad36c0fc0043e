// Package anthropic implements the Anthropic API client.
// This package handles all content generation: material references,
// quiz papers, scenario answer evaluation, and tutoring replies.
package anthropic

// ══════════════════════════════════════════════════════════════════════════════
// QUIZ DTOs
// ══════════════════════════════════════════════════════════════════════════════

// QuizDTO represents a generated quiz as returned by the model.
// This is the external representation that needs to be mapped to our
// domain model.
type QuizDTO struct {
	// MultipleChoice holds the closed questions with options A to D.
	MultipleChoice []QuizQuestionDTO `json:"multiple_choice"`

	// Scenarios holds the open scenario questions.
	Scenarios []ScenarioQuestionDTO `json:"scenarios"`
}

// QuizQuestionDTO represents one multiple choice question.
type QuizQuestionDTO struct {
	// Number is the 1-based question number within its section.
	Number int `json:"number"`

	// Question is the question text.
	Question string `json:"question"`

	// Options maps option keys (A to D) to option text.
	Options map[string]string `json:"options"`

	// CorrectAnswer is the key of the correct option.
	CorrectAnswer string `json:"correct_answer"`
}

// ScenarioQuestionDTO represents one open scenario question.
type ScenarioQuestionDTO struct {
	// Number is the 1-based question number within its section.
	Number int `json:"number"`

	// Question is the scenario text.
	Question string `json:"question"`
}

// ══════════════════════════════════════════════════════════════════════════════
// EVALUATION DTOs
// ══════════════════════════════════════════════════════════════════════════════

// EvaluationDTO represents graded scenario answers as returned by the
// model.
type EvaluationDTO struct {
	// Grades holds one entry per scenario question.
	Grades []ScenarioGradeDTO `json:"grades"`
}

// ScenarioGradeDTO represents the grade for one scenario answer.
type ScenarioGradeDTO struct {
	// Number is the question number the grade belongs to.
	Number int `json:"number"`

	// Points awarded, 0 to 20 in steps of 5.
	Points int `json:"points"`

	// Comment is a short remark on the answer.
	Comment string `json:"comment"`
}
