package service

import (
	"context"

	"github.com/study-buddy/study-buddy-backend/internal/application/command"
	"github.com/study-buddy/study-buddy-backend/internal/domain/assessment"
	"github.com/study-buddy/study-buddy-backend/internal/infrastructure/external/anthropic"
)

// QuizService adapts the LLM client to the assessment command ports:
// quiz generation and scenario evaluation.
type QuizService struct {
	client *anthropic.Client
}

// NewQuizService creates a new QuizService.
func NewQuizService(client *anthropic.Client) *QuizService {
	return &QuizService{client: client}
}

// GenerateQuiz implements command.QuizGenerator.
func (s *QuizService) GenerateQuiz(ctx context.Context, spec command.QuizSpec) (*assessment.Quiz, error) {
	return s.client.GenerateQuiz(ctx, anthropic.QuizRequest{
		RollNo:   spec.RollNo,
		Subject:  spec.Subject,
		Grade:    spec.Grade,
		Language: spec.Language,
	})
}

// EvaluateScenarios implements command.ScenarioEvaluator.
func (s *QuizService) EvaluateScenarios(ctx context.Context, quiz *assessment.Quiz, answers map[int]string) ([]assessment.ScenarioGrade, error) {
	return s.client.EvaluateAnswers(ctx, anthropic.EvaluationRequest{
		Subject:   quiz.Subject,
		Grade:     quiz.Grade,
		Questions: quiz.Scenarios,
		Answers:   answers,
	})
}
