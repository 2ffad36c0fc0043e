package command

import (
	"context"
	"fmt"
	"time"

	"github.com/study-buddy/study-buddy-backend/internal/domain/assessment"
	"github.com/study-buddy/study-buddy-backend/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// EVALUATE QUIZ COMMAND
// Scores a submitted answer sheet against the student's pending quiz:
// the multiple-choice section deterministically, the scenario section
// through the evaluator, then stores the combined result.
// ══════════════════════════════════════════════════════════════════════════════

// ScenarioEvaluator grades scenario answers on the 0-5-10-15-20 ladder.
// Implemented by the LLM client adapter.
type ScenarioEvaluator interface {
	EvaluateScenarios(ctx context.Context, quiz *assessment.Quiz, answers map[int]string) ([]assessment.ScenarioGrade, error)
}

// EvaluateQuizCommand contains the submitted answer sheet.
type EvaluateQuizCommand struct {
	// RollNo is the student submitting answers.
	RollNo int

	// Sheet is the student's submission for both sections.
	Sheet assessment.AnswerSheet
}

// Validate validates the command.
func (c EvaluateQuizCommand) Validate() error {
	if c.RollNo <= 0 {
		return shared.NewDomainError("assessment", "EvaluateQuiz", shared.ErrInvalidID, "roll number must be positive")
	}
	if len(c.Sheet.QuizAnswers) == 0 && len(c.Sheet.ScenarioAnswers) == 0 {
		return shared.NewDomainError("assessment", "EvaluateQuiz", shared.ErrEmptyValue, "answer sheet is empty")
	}
	return nil
}

// EvaluateQuizResult contains the scored outcome.
type EvaluateQuizResult struct {
	// Subject is the tested subject.
	Subject string

	// QuizScore is the multiple-choice section score, 0-100.
	QuizScore int

	// EvaluatedScore is the scenario section score, 0-100.
	EvaluatedScore int

	// TotalScore is the rounded average of both sections.
	TotalScore int

	// Feedback is the performance band text for the total score.
	Feedback string

	// ScenarioGrades are the per-answer judgements with comments.
	ScenarioGrades []assessment.ScenarioGrade

	// TestDate is when the evaluation was recorded.
	TestDate time.Time
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// EvaluateQuizHandler handles the EvaluateQuizCommand.
type EvaluateQuizHandler struct {
	quizStore      assessment.QuizStore
	evaluator      ScenarioEvaluator
	resultRepo     assessment.ResultRepository
	eventPublisher shared.EventPublisher
}

// NewEvaluateQuizHandler creates a new EvaluateQuizHandler.
func NewEvaluateQuizHandler(
	quizStore assessment.QuizStore,
	evaluator ScenarioEvaluator,
	resultRepo assessment.ResultRepository,
	eventPublisher shared.EventPublisher,
) *EvaluateQuizHandler {
	return &EvaluateQuizHandler{
		quizStore:      quizStore,
		evaluator:      evaluator,
		resultRepo:     resultRepo,
		eventPublisher: eventPublisher,
	}
}

// Handle executes the evaluate quiz command. The pending quiz is
// dropped only after the result is stored, so a failed evaluation can
// be resubmitted.
func (h *EvaluateQuizHandler) Handle(ctx context.Context, cmd EvaluateQuizCommand) (*EvaluateQuizResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, fmt.Errorf("evaluate_quiz: validation failed: %w", err)
	}

	quiz, err := h.quizStore.GetPending(ctx, cmd.RollNo)
	if err != nil {
		return nil, fmt.Errorf("evaluate_quiz: %w", err)
	}

	quizScore, err := quiz.ScoreMultipleChoice(cmd.Sheet)
	if err != nil {
		return nil, shared.WrapError("assessment", "EvaluateQuiz", shared.ErrInvalidInput, "multiple-choice scoring failed", err)
	}

	grades, err := h.evaluator.EvaluateScenarios(ctx, quiz, cmd.Sheet.ScenarioAnswers)
	if err != nil {
		return nil, shared.WrapError("assessment", "EvaluateQuiz", shared.ErrGeneration, "scenario evaluation failed", err)
	}

	evaluatedScore, err := quiz.SumScenarioGrades(grades)
	if err != nil {
		return nil, shared.WrapError("assessment", "EvaluateQuiz", shared.ErrInvalidInput, "scenario grades rejected", err)
	}

	result, err := assessment.NewResult(quiz.RollNo, quiz.Subject, quizScore, evaluatedScore)
	if err != nil {
		return nil, shared.WrapError("assessment", "EvaluateQuiz", shared.ErrValidation, "invalid result", err)
	}

	if err := h.resultRepo.Insert(ctx, result); err != nil {
		return nil, shared.WrapError("assessment", "EvaluateQuiz", shared.ErrPersistence, "failed to store result", err)
	}

	// The quiz is consumed. A delete failure is harmless: the TTL
	// drops it anyway.
	_ = h.quizStore.Delete(ctx, cmd.RollNo)

	if h.eventPublisher != nil {
		event := shared.NewQuizEvaluatedEvent(
			result.RollNo,
			result.Subject,
			result.QuizScore,
			result.EvaluatedScore,
			result.TotalScore,
		)
		_ = h.eventPublisher.Publish(event)
	}

	return &EvaluateQuizResult{
		Subject:        result.Subject,
		QuizScore:      result.QuizScore,
		EvaluatedScore: result.EvaluatedScore,
		TotalScore:     result.TotalScore,
		Feedback:       shared.Score(result.TotalScore).Band().Feedback(),
		ScenarioGrades: grades,
		TestDate:       result.TestDate,
	}, nil
}
