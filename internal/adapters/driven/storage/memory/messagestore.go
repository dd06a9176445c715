package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/corpus/internal/core/domain"
	"github.com/custodia-labs/corpus/internal/core/ports/driven"
)

// Ensure MessageStore implements the interface.
var _ driven.MessageStore = (*MessageStore)(nil)

// MessageStore is an in-memory implementation of driven.MessageStore.
type MessageStore struct {
	mu       sync.RWMutex
	seq      int64
	messages map[string][]domain.Message
}

// NewMessageStore creates a new in-memory message store.
func NewMessageStore() *MessageStore {
	return &MessageStore{messages: make(map[string][]domain.Message)}
}

// AppendMessage stores a message and assigns its Seq.
func (s *MessageStore) AppendMessage(_ context.Context, msg *domain.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	msg.Seq = s.seq
	s.messages[msg.ProjectID] = append(s.messages[msg.ProjectID], *msg)
	return nil
}

// ListMessages returns a project's messages in conversation order.
func (s *MessageStore) ListMessages(_ context.Context, projectID string) ([]domain.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	msgs := append([]domain.Message(nil), s.messages[projectID]...)
	sort.SliceStable(msgs, func(i, j int) bool {
		if !msgs[i].CreatedAt.Equal(msgs[j].CreatedAt) {
			return msgs[i].CreatedAt.Before(msgs[j].CreatedAt)
		}
		return msgs[i].Seq < msgs[j].Seq
	})
	return msgs, nil
}

// RecentMessages returns the last n messages, oldest first.
func (s *MessageStore) RecentMessages(ctx context.Context, projectID string, n int) ([]domain.Message, error) {
	if n <= 0 {
		return nil, nil
	}
	msgs, err := s.ListMessages(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if len(msgs) > n {
		msgs = msgs[len(msgs)-n:]
	}
	return msgs, nil
}

// DeleteMessages removes every message of a project.
func (s *MessageStore) DeleteMessages(_ context.Context, projectID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.messages, projectID)
	return nil
}
