package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/custodia-labs/corpus/internal/core/domain"
	"github.com/custodia-labs/corpus/internal/core/ports/driven"
	"github.com/custodia-labs/corpus/internal/core/ports/driving"
	"github.com/custodia-labs/corpus/internal/logger"
	"github.com/custodia-labs/corpus/internal/metrics"
)

// Ensure AnswerService implements the interface.
var _ driving.AnswerService = (*AnswerService)(nil)

// AnswerService builds a prompt from retrieved passages and recent
// conversation history and asks the LLM for a reply.
type AnswerService struct {
	retrieval driving.RetrievalService
	llm       driven.LLMService
	prompts   driven.PromptStore
	settings  domain.AnswerSettings
	metrics   *metrics.Metrics
}

// NewAnswerService creates a new answer service.
func NewAnswerService(
	retrieval driving.RetrievalService,
	llm driven.LLMService,
	prompts driven.PromptStore,
	settings domain.AnswerSettings,
	m *metrics.Metrics,
) *AnswerService {
	if settings.HistoryLimit < 0 {
		settings.HistoryLimit = 0
	}
	return &AnswerService{
		retrieval: retrieval,
		llm:       llm,
		prompts:   prompts,
		settings:  settings,
		metrics:   m,
	}
}

// Answer returns only the generated text.
func (s *AnswerService) Answer(
	ctx context.Context, projectID string, history []domain.Message, newMessage string,
) (string, error) {
	answer, err := s.AnswerWithSources(ctx, projectID, history, newMessage)
	if err != nil {
		return "", err
	}
	return answer.Text, nil
}

// AnswerWithSources retrieves passages for newMessage, assembles the prompt
// and generates the reply. Nothing is fabricated when a gateway fails.
func (s *AnswerService) AnswerWithSources(
	ctx context.Context, projectID string, history []domain.Message, newMessage string,
) (*driving.Answer, error) {
	newMessage = strings.TrimSpace(newMessage)
	if newMessage == "" {
		return nil, fmt.Errorf("%w: message is empty", domain.ErrInvalidInput)
	}
	if s.llm == nil {
		return nil, domain.ErrLLMUnavailable
	}

	sources, err := s.retrieval.Retrieve(ctx, projectID, newMessage, 0)
	if err != nil {
		s.metrics.RecordAnswer(false, err)
		if errors.Is(err, domain.ErrInvalidInput) {
			return nil, err
		}
		logger.Warn("Answer: retrieval failed: %v", err)
		return nil, fmt.Errorf("%w: %w", domain.ErrRetrievalUnavailable, err)
	}
	grounded := len(sources) > 0

	messages, err := s.buildMessages(sources, history, newMessage)
	if err != nil {
		s.metrics.RecordAnswer(grounded, err)
		return nil, err
	}
	logger.Debug("Answer: %d sources, %d prompt messages", len(sources), len(messages))

	text, err := s.llm.Chat(ctx, messages, driven.ChatOptions{
		MaxTokens:   s.settings.MaxTokens,
		Temperature: s.settings.Temperature,
	})
	if err != nil {
		s.metrics.RecordAnswer(grounded, err)
		logger.Warn("Answer: generation failed: %v", err)
		return nil, fmt.Errorf("%w: %w: %w", domain.ErrRetrievalUnavailable, domain.ErrGeneration, err)
	}

	s.metrics.RecordAnswer(grounded, nil)
	return &driving.Answer{
		Text:     strings.TrimSpace(text),
		Sources:  sources,
		Grounded: grounded,
	}, nil
}

// buildMessages assembles the system instruction, the most recent history
// (oldest first) and the new user message.
func (s *AnswerService) buildMessages(
	sources []domain.ChunkResult, history []domain.Message, newMessage string,
) ([]driven.ChatMessage, error) {
	system, err := s.prompts.Load(driven.PromptAnswerSystem)
	if err != nil {
		return nil, fmt.Errorf("load prompt: %w", err)
	}

	var instruction strings.Builder
	instruction.WriteString(system)

	if len(sources) > 0 {
		tmpl, err := s.prompts.Load(driven.PromptAnswerContext)
		if err != nil {
			return nil, fmt.Errorf("load prompt: %w", err)
		}
		instruction.WriteString("\n\n")
		fmt.Fprintf(&instruction, tmpl, formatSources(sources))
	} else if s.settings.NoContextNotice {
		notice, err := s.prompts.Load(driven.PromptNoContext)
		if err != nil {
			return nil, fmt.Errorf("load prompt: %w", err)
		}
		instruction.WriteString("\n\n")
		instruction.WriteString(notice)
	}

	recent := recentHistory(history, s.settings.HistoryLimit)
	messages := make([]driven.ChatMessage, 0, len(recent)+2)
	messages = append(messages, driven.ChatMessage{Role: driven.ChatRoleSystem, Content: instruction.String()})
	for _, m := range recent {
		role := driven.ChatRoleUser
		if m.Role == domain.RoleAssistant {
			role = driven.ChatRoleAssistant
		}
		messages = append(messages, driven.ChatMessage{Role: role, Content: m.Content})
	}
	messages = append(messages, driven.ChatMessage{Role: driven.ChatRoleUser, Content: newMessage})
	return messages, nil
}

// formatSources numbers the passages in rank order.
func formatSources(sources []domain.ChunkResult) string {
	var b strings.Builder
	for i, src := range sources {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "[%d] %s", i+1, strings.TrimSpace(src.Text))
	}
	return b.String()
}

// recentHistory returns the last n messages in conversation order.
func recentHistory(history []domain.Message, n int) []domain.Message {
	if n <= 0 || len(history) == 0 {
		return nil
	}
	ordered := make([]domain.Message, len(history))
	copy(ordered, history)
	sort.SliceStable(ordered, func(i, j int) bool {
		if !ordered[i].CreatedAt.Equal(ordered[j].CreatedAt) {
			return ordered[i].CreatedAt.Before(ordered[j].CreatedAt)
		}
		return ordered[i].Seq < ordered[j].Seq
	})
	if len(ordered) > n {
		ordered = ordered[len(ordered)-n:]
	}
	return ordered
}
