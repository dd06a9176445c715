// Package mock provides a deterministic, offline LLM service.
package mock

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/corpus/internal/core/ports/driven"
)

// Ensure LLMService implements the interface.
var _ driven.LLMService = (*LLMService)(nil)

// DefaultModel is the mock model name.
const DefaultModel = "echo"

// LLMService answers from the numbered passages in the system prompt.
type LLMService struct {
	model string
}

// NewLLMService creates a mock LLM service.
func NewLLMService(model string) *LLMService {
	if model == "" {
		model = DefaultModel
	}
	return &LLMService{model: model}
}

// Generate echoes the prompt.
func (s *LLMService) Generate(ctx context.Context, prompt string, _ driven.GenerateOptions) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return strings.TrimSpace(prompt), nil
}

// Chat quotes the first passage ("[1] ...") found in a system message, or
// says that nothing was found when there is none.
func (s *LLMService) Chat(ctx context.Context, messages []driven.ChatMessage, _ driven.ChatOptions) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	var question, passage string
	for _, m := range messages {
		switch m.Role {
		case driven.ChatRoleUser:
			question = m.Content
		case driven.ChatRoleSystem:
			if passage == "" {
				passage = firstPassage(m.Content)
			}
		}
	}

	if passage == "" {
		return fmt.Sprintf("No matching documents were found for %q.", strings.TrimSpace(question)), nil
	}
	return "According to [1]: " + passage, nil
}

func firstPassage(system string) string {
	for _, line := range strings.Split(system, "\n") {
		if rest, ok := strings.CutPrefix(strings.TrimSpace(line), "[1] "); ok {
			return strings.TrimSpace(rest)
		}
	}
	return ""
}

// ModelName returns the model name.
func (s *LLMService) ModelName() string {
	return s.model
}

// Ping always succeeds.
func (s *LLMService) Ping(context.Context) error {
	return nil
}

// Close releases resources.
func (s *LLMService) Close() error {
	return nil
}
