package driving

import (
	"context"

	"github.com/custodia-labs/corpus/internal/core/domain"
)

// Answer is a generated response with the passages it was grounded on.
type Answer struct {
	Text string

	// Sources are the retrieved chunks included in the prompt.
	Sources []domain.ChunkResult

	// Grounded is false when retrieval returned nothing.
	Grounded bool
}

// AnswerService synthesises grounded answers.
type AnswerService interface {
	// Answer returns the assistant text for newMessage given the
	// conversation history. Gateway failures wrap
	// domain.ErrRetrievalUnavailable.
	Answer(ctx context.Context, projectID string, history []domain.Message, newMessage string) (string, error)

	// AnswerWithSources is Answer plus the supporting passages.
	AnswerWithSources(ctx context.Context, projectID string, history []domain.Message, newMessage string) (*Answer, error)
}

// ChatService runs a persisted conversation on top of AnswerService.
type ChatService interface {
	// Send stores the user message, answers it, stores and returns the
	// assistant message.
	Send(ctx context.Context, projectID, content string) (*domain.Message, error)

	// History returns the project's messages in conversation order.
	History(ctx context.Context, projectID string) ([]domain.Message, error)
}
