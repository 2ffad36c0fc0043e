// Package anthropic implements the Anthropic API client.
// This package handles all content generation: material references,
// quiz papers, scenario answer evaluation, and tutoring replies.
package anthropic

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/google/uuid"

	"github.com/study-buddy/study-buddy-backend/internal/domain/assessment"
	"github.com/study-buddy/study-buddy-backend/internal/domain/shared"
	"github.com/study-buddy/study-buddy-backend/pkg/circuitbreaker"
	"github.com/study-buddy/study-buddy-backend/pkg/retry"
)

// ══════════════════════════════════════════════════════════════════════════════
// CONFIGURATION
// ══════════════════════════════════════════════════════════════════════════════

// ClientConfig contains configuration for the Anthropic client.
type ClientConfig struct {
	// APIKey authenticates against the Anthropic API
	APIKey string

	// Model is the model identifier used for all operations
	Model string

	// MaxTokens caps the response length per request
	MaxTokens int64

	// RequestTimeout is the per-request timeout
	RequestTimeout time.Duration

	// RateLimiterConfig for API rate limiting
	RateLimiterConfig RateLimiterConfig

	// Logger for structured logging
	Logger *slog.Logger

	// Debug enables debug logging of every request
	Debug bool
}

// DefaultClientConfig returns sensible defaults.
func DefaultClientConfig(apiKey string) ClientConfig {
	return ClientConfig{
		APIKey:            apiKey,
		Model:             string(sdk.ModelClaude4Sonnet20250514),
		MaxTokens:         4096,
		RequestTimeout:    60 * time.Second,
		RateLimiterConfig: DefaultRateLimiterConfig(),
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// CLIENT
// ══════════════════════════════════════════════════════════════════════════════

// Client is the Anthropic API client. All operations go through the
// same resilience stack: token bucket rate limiter, retry with
// exponential backoff, and a circuit breaker that fails fast when the
// API is down.
type Client struct {
	config      ClientConfig
	api         *sdk.Client
	mapper      *Mapper
	rateLimiter *RateLimiter
	breaker     *circuitbreaker.CircuitBreaker
	retrier     *retry.Retrier
	logger      *slog.Logger
}

// NewClient creates a new Anthropic API client.
func NewClient(config ClientConfig) *Client {
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	if config.Model == "" {
		config.Model = string(sdk.ModelClaude4Sonnet20250514)
	}
	if config.MaxTokens <= 0 {
		config.MaxTokens = 4096
	}
	if config.RequestTimeout <= 0 {
		config.RequestTimeout = 60 * time.Second
	}

	logger := config.Logger.With("component", "anthropic")
	api := sdk.NewClient(option.WithAPIKey(config.APIKey))

	return &Client{
		config:      config,
		api:         &api,
		mapper:      NewMapper(),
		rateLimiter: NewRateLimiter(config.RateLimiterConfig),
		breaker: circuitbreaker.AnthropicBreaker(func(name string, from, to circuitbreaker.State) {
			logger.Warn("circuit state changed", "breaker", name, "from", from.String(), "to", to.String())
		}),
		retrier: retry.AnthropicRetrier(),
		logger:  logger,
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// REFERENCE GENERATION
// ══════════════════════════════════════════════════════════════════════════════

// GenerateReference asks the model for one material reference for the
// subject in the given language. The returned string may be empty or
// malformed; the caller's link validator decides acceptability.
func (c *Client) GenerateReference(ctx context.Context, subject, language string) (string, error) {
	user, err := renderTemplate(referenceUserTmpl, referencePromptData{
		Subject:  subject,
		Language: language,
	})
	if err != nil {
		return "", err
	}

	raw, err := c.complete(ctx, "GenerateReference", referenceSystemPrompt, user)
	if err != nil {
		return "", fmt.Errorf("generate reference: %w", err)
	}

	return c.mapper.ReferenceFromResponse(raw), nil
}

// ══════════════════════════════════════════════════════════════════════════════
// QUIZ GENERATION
// ══════════════════════════════════════════════════════════════════════════════

// QuizRequest describes the quiz to generate.
type QuizRequest struct {
	RollNo   int
	Subject  string
	Grade    int
	Language string
}

// GenerateQuiz asks the model for a full assessment and maps it into a
// domain quiz. A structurally invalid generation is an error here, not
// later when the student answers.
func (c *Client) GenerateQuiz(ctx context.Context, req QuizRequest) (*assessment.Quiz, error) {
	difficulty := shared.Grade(req.Grade).Band().Description()

	user, err := renderTemplate(quizUserTmpl, quizPromptData{
		Subject:    req.Subject,
		Grade:      req.Grade,
		Language:   req.Language,
		Difficulty: difficulty,
		PerSection: assessment.QuestionsPerSection,
	})
	if err != nil {
		return nil, err
	}

	raw, err := c.complete(ctx, "GenerateQuiz", quizSystemPrompt, user)
	if err != nil {
		return nil, fmt.Errorf("generate quiz: %w", err)
	}

	dto, err := c.mapper.ParseQuizResponse(raw)
	if err != nil {
		return nil, shared.WrapError("generator", "GenerateQuiz", shared.ErrInvalidFormat, "unparseable quiz response", err)
	}

	quiz, err := c.mapper.QuizFromDTO(dto, QuizParams{
		ID:       uuid.New().String(),
		RollNo:   req.RollNo,
		Subject:  req.Subject,
		Grade:    req.Grade,
		Language: req.Language,
	})
	if err != nil {
		return nil, shared.WrapError("generator", "GenerateQuiz", shared.ErrInvalidFormat, "malformed quiz structure", err)
	}

	return quiz, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// ANSWER EVALUATION
// ══════════════════════════════════════════════════════════════════════════════

// EvaluationRequest carries scenario questions and the student's answers.
type EvaluationRequest struct {
	Subject   string
	Grade     int
	Questions []assessment.Question
	Answers   map[int]string
}

// EvaluateAnswers asks the model to grade scenario answers on the
// 0-5-10-15-20 ladder. An unanswered question is submitted as empty and
// graded accordingly.
func (c *Client) EvaluateAnswers(ctx context.Context, req EvaluationRequest) ([]assessment.ScenarioGrade, error) {
	answers := make([]scenarioAnswerData, 0, len(req.Questions))
	for _, q := range req.Questions {
		answers = append(answers, scenarioAnswerData{
			Number:   q.Number,
			Question: q.Text,
			Answer:   req.Answers[q.Number],
		})
	}

	user, err := renderTemplate(evaluationUserTmpl, evaluationPromptData{
		Subject: req.Subject,
		Grade:   req.Grade,
		Answers: answers,
	})
	if err != nil {
		return nil, err
	}

	raw, err := c.complete(ctx, "EvaluateAnswers", evaluationSystemPrompt, user)
	if err != nil {
		return nil, fmt.Errorf("evaluate answers: %w", err)
	}

	dto, err := c.mapper.ParseEvaluationResponse(raw)
	if err != nil {
		return nil, shared.WrapError("generator", "EvaluateAnswers", shared.ErrInvalidFormat, "unparseable evaluation response", err)
	}

	grades, err := c.mapper.GradesFromDTO(dto)
	if err != nil {
		return nil, shared.WrapError("generator", "EvaluateAnswers", shared.ErrInvalidFormat, "invalid grades", err)
	}

	return grades, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// TUTORING
// ══════════════════════════════════════════════════════════════════════════════

// ChatTurn is one prior turn of a tutoring conversation.
type ChatTurn struct {
	// Role is "user" or "assistant".
	Role string

	// Text is the turn's content.
	Text string
}

// TutorRequest carries the student's message and prior conversation.
type TutorRequest struct {
	Message string
	History []ChatTurn
}

// TutorReply answers a student's question in the tutor persona,
// continuing the given conversation.
func (c *Client) TutorReply(ctx context.Context, req TutorRequest) (string, error) {
	messages := make([]sdk.MessageParam, 0, len(req.History)+1)
	for _, turn := range req.History {
		switch turn.Role {
		case "assistant":
			messages = append(messages, sdk.NewAssistantMessage(sdk.ContentBlockParamUnion{
				OfText: &sdk.TextBlockParam{Text: turn.Text},
			}))
		default:
			messages = append(messages, sdk.NewUserMessage(sdk.NewTextBlock(turn.Text)))
		}
	}
	messages = append(messages, sdk.NewUserMessage(sdk.NewTextBlock(req.Message)))

	reply, err := c.completeMessages(ctx, "TutorReply", tutorSystemPrompt, messages)
	if err != nil {
		return "", fmt.Errorf("tutor reply: %w", err)
	}

	return strings.TrimSpace(reply), nil
}

// ══════════════════════════════════════════════════════════════════════════════
// REQUEST HELPERS
// ══════════════════════════════════════════════════════════════════════════════

// complete sends a single-turn prompt through the resilience stack.
func (c *Client) complete(ctx context.Context, op, system, user string) (string, error) {
	return c.completeMessages(ctx, op, system, []sdk.MessageParam{
		sdk.NewUserMessage(sdk.NewTextBlock(user)),
	})
}

// completeMessages performs one message call with rate limiting,
// circuit breaking, and retries, and returns the concatenated text
// blocks of the response.
func (c *Client) completeMessages(ctx context.Context, op, system string, messages []sdk.MessageParam) (string, error) {
	if err := c.rateLimiter.Allow(ctx); err != nil {
		return "", fmt.Errorf("rate limiter: %w", err)
	}

	if c.config.Debug {
		c.logger.Debug("anthropic request", "op", op, "model", c.config.Model, "turns", len(messages))
	}

	var text string
	err := c.breaker.Execute(ctx, func(ctx context.Context) error {
		return c.retrier.Do(ctx, func(ctx context.Context) error {
			out, err := c.completeOnce(ctx, system, messages)
			if err != nil {
				if isTransient(err) {
					return retry.Retryable(err)
				}
				return retry.Permanent(err)
			}
			text = out
			return nil
		})
	})
	if err != nil {
		return "", c.wrapAPIError(op, err)
	}

	return text, nil
}

// completeOnce performs a single Messages API call.
func (c *Client) completeOnce(ctx context.Context, system string, messages []sdk.MessageParam) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.config.RequestTimeout)
	defer cancel()

	message, err := c.api.Messages.New(ctx, sdk.MessageNewParams{
		Model:     sdk.Model(c.config.Model),
		MaxTokens: c.config.MaxTokens,
		System: []sdk.TextBlockParam{
			{Text: system},
		},
		Messages: messages,
	})
	if err != nil {
		return "", err
	}

	var builder strings.Builder
	for _, block := range message.Content {
		if textBlock, ok := block.AsAny().(sdk.TextBlock); ok {
			builder.WriteString(textBlock.Text)
		}
	}

	if builder.Len() == 0 {
		return "", shared.ErrGeneratorInvalidResponse
	}

	return builder.String(), nil
}

// isTransient reports whether an API error is worth retrying.
func isTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, marker := range []string{
		"overloaded", "rate limit", "429", "529", "500", "502", "503",
		"timeout", "connection reset", "connection refused", "eof", "temporarily",
	} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

// wrapAPIError maps a transport-level failure onto the domain's error
// kinds so callers can branch on errors.Is without knowing the SDK.
func (c *Client) wrapAPIError(op string, err error) error {
	if errors.Is(err, circuitbreaker.ErrCircuitOpen) {
		return shared.WrapError("generator", op, shared.ErrServiceUnavailable, "circuit open", err)
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "rate limit") || strings.Contains(msg, "429"):
		return shared.WrapError("generator", op, shared.ErrRateLimited, "api rate limit exceeded", err)
	case errors.Is(err, context.DeadlineExceeded) || strings.Contains(msg, "timeout"):
		return shared.WrapError("generator", op, shared.ErrTimeout, "request timed out", err)
	case strings.Contains(msg, "overloaded") || strings.Contains(msg, "529") || strings.Contains(msg, "503"):
		return shared.WrapError("generator", op, shared.ErrServiceUnavailable, "api overloaded", err)
	default:
		return shared.WrapError("generator", op, shared.ErrExternalService, "request failed", err)
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// STATUS
// ══════════════════════════════════════════════════════════════════════════════

// BreakerState returns the circuit breaker state for health reporting.
func (c *Client) BreakerState() string {
	return c.breaker.State().String()
}

// Reset resets the rate limiter and circuit breaker.
func (c *Client) Reset() {
	c.rateLimiter.Reset()
	c.breaker.Reset()
}
