package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/corpus/internal/core/domain"
	"github.com/custodia-labs/corpus/internal/core/ports/driven"
	"github.com/custodia-labs/corpus/internal/core/ports/driving"
	"github.com/custodia-labs/corpus/internal/logger"
)

// Ensure ChatService implements the interface.
var _ driving.ChatService = (*ChatService)(nil)

// ChatService persists a project's conversation around AnswerService.
type ChatService struct {
	projects     driven.ProjectStore
	messages     driven.MessageStore
	answers      driving.AnswerService
	historyLimit int
}

// NewChatService creates a new chat service. historyLimit bounds how many
// prior messages are loaded for each answer.
func NewChatService(
	projects driven.ProjectStore,
	messages driven.MessageStore,
	answers driving.AnswerService,
	historyLimit int,
) *ChatService {
	return &ChatService{
		projects:     projects,
		messages:     messages,
		answers:      answers,
		historyLimit: historyLimit,
	}
}

// Send stores the user message, generates a reply and stores it.
// If generation fails the user message stays and no reply is stored.
func (s *ChatService) Send(ctx context.Context, projectID, content string) (*domain.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, fmt.Errorf("%w: message is empty", domain.ErrInvalidInput)
	}
	if _, err := s.projects.GetProject(ctx, projectID); err != nil {
		return nil, fmt.Errorf("get project: %w", err)
	}

	var history []domain.Message
	if s.historyLimit > 0 {
		var err error
		history, err = s.messages.RecentMessages(ctx, projectID, s.historyLimit)
		if err != nil {
			return nil, fmt.Errorf("load history: %w", err)
		}
	}

	userMsg := &domain.Message{
		ID:        uuid.New().String(),
		ProjectID: projectID,
		Role:      domain.RoleUser,
		Content:   content,
		CreatedAt: time.Now(),
	}
	if err := s.messages.AppendMessage(ctx, userMsg); err != nil {
		return nil, fmt.Errorf("save message: %w", err)
	}

	text, err := s.answers.Answer(ctx, projectID, history, content)
	if err != nil {
		logger.Warn("Chat %s: no reply: %v", projectID, err)
		return nil, err
	}

	reply := &domain.Message{
		ID:        uuid.New().String(),
		ProjectID: projectID,
		Role:      domain.RoleAssistant,
		Content:   text,
		CreatedAt: time.Now(),
	}
	if err := s.messages.AppendMessage(ctx, reply); err != nil {
		return nil, fmt.Errorf("save reply: %w", err)
	}
	return reply, nil
}

// History returns the project's messages in conversation order.
func (s *ChatService) History(ctx context.Context, projectID string) ([]domain.Message, error) {
	if _, err := s.projects.GetProject(ctx, projectID); err != nil {
		return nil, fmt.Errorf("get project: %w", err)
	}
	return s.messages.ListMessages(ctx, projectID)
}
