package command

import (
	"context"
	"fmt"
	"time"

	"github.com/study-buddy/study-buddy-backend/internal/domain/assessment"
	"github.com/study-buddy/study-buddy-backend/internal/domain/shared"
	"github.com/study-buddy/study-buddy-backend/internal/domain/student"
)

// ══════════════════════════════════════════════════════════════════════════════
// GENERATE QUIZ COMMAND
// Produces a pending quiz for one student and subject. Difficulty is
// banded by the student's grade and questions are phrased in the
// student's language.
// ══════════════════════════════════════════════════════════════════════════════

// QuizSpec describes the quiz to generate.
type QuizSpec struct {
	RollNo   int
	Subject  string
	Grade    int
	Language string
}

// QuizGenerator produces a structurally valid quiz. Implemented by the
// LLM client adapter; a malformed generation is an error here, never a
// half-built quiz.
type QuizGenerator interface {
	GenerateQuiz(ctx context.Context, spec QuizSpec) (*assessment.Quiz, error)
}

// GenerateQuizCommand contains the data needed to generate a quiz.
type GenerateQuizCommand struct {
	// RollNo is the student taking the quiz.
	RollNo int

	// Subject is the subject to test.
	Subject string
}

// Validate validates the command.
func (c GenerateQuizCommand) Validate() error {
	if c.RollNo <= 0 {
		return shared.NewDomainError("assessment", "GenerateQuiz", shared.ErrInvalidID, "roll number must be positive")
	}
	if c.Subject == "" {
		return shared.NewDomainError("assessment", "GenerateQuiz", shared.ErrEmptyValue, "subject is required")
	}
	return nil
}

// GenerateQuizResult contains the generated quiz.
type GenerateQuizResult struct {
	// Quiz is the pending quiz. Correct answers are included; the
	// presenter strips them before showing the quiz to the student.
	Quiz *assessment.Quiz

	// ExpiresIn is how long the student has to submit answers.
	ExpiresIn time.Duration
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// GenerateQuizHandler handles the GenerateQuizCommand.
type GenerateQuizHandler struct {
	studentRepo student.Repository
	generator   QuizGenerator
	quizStore   assessment.QuizStore
	quizTTL     time.Duration
}

// NewGenerateQuizHandler creates a new GenerateQuizHandler.
func NewGenerateQuizHandler(
	studentRepo student.Repository,
	generator QuizGenerator,
	quizStore assessment.QuizStore,
	quizTTL time.Duration,
) *GenerateQuizHandler {
	if quizTTL <= 0 {
		quizTTL = 30 * time.Minute
	}

	return &GenerateQuizHandler{
		studentRepo: studentRepo,
		generator:   generator,
		quizStore:   quizStore,
		quizTTL:     quizTTL,
	}
}

// Handle executes the generate quiz command. The quiz replaces any
// previous pending quiz of the student.
func (h *GenerateQuizHandler) Handle(ctx context.Context, cmd GenerateQuizCommand) (*GenerateQuizResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, fmt.Errorf("generate_quiz: validation failed: %w", err)
	}

	profile, err := h.studentRepo.GetByRollNo(ctx, student.RollNo(cmd.RollNo))
	if err != nil {
		return nil, fmt.Errorf("generate_quiz: %w", err)
	}

	quiz, err := h.generator.GenerateQuiz(ctx, QuizSpec{
		RollNo:   profile.RollNo.Int(),
		Subject:  cmd.Subject,
		Grade:    profile.Grade.Int(),
		Language: profile.Language.String(),
	})
	if err != nil {
		return nil, shared.WrapError("assessment", "GenerateQuiz", shared.ErrGeneration, "quiz generation failed", err)
	}

	if err := h.quizStore.Save(ctx, quiz, h.quizTTL); err != nil {
		return nil, shared.WrapError("assessment", "GenerateQuiz", shared.ErrPersistence, "failed to store pending quiz", err)
	}

	return &GenerateQuizResult{
		Quiz:      quiz,
		ExpiresIn: h.quizTTL,
	}, nil
}
