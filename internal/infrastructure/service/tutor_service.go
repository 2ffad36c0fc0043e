package service

import (
	"context"

	"github.com/study-buddy/study-buddy-backend/internal/infrastructure/external/anthropic"
)

// TutorTurn is one prior exchange half passed to the tutor.
type TutorTurn struct {
	// Role is "user" or "assistant".
	Role string

	// Text is the turn's content.
	Text string
}

// TutorService adapts the LLM client to the chat tutor port.
type TutorService struct {
	client *anthropic.Client
}

// NewTutorService creates a new TutorService.
func NewTutorService(client *anthropic.Client) *TutorService {
	return &TutorService{client: client}
}

// Reply answers a message in the tutor persona, continuing the given
// conversation.
func (t *TutorService) Reply(ctx context.Context, history []TutorTurn, message string) (string, error) {
	turns := make([]anthropic.ChatTurn, 0, len(history))
	for _, h := range history {
		turns = append(turns, anthropic.ChatTurn{Role: h.Role, Text: h.Text})
	}

	return t.client.TutorReply(ctx, anthropic.TutorRequest{
		Message: message,
		History: turns,
	})
}
