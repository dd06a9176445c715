package resilience

import (
	"context"

	"github.com/custodia-labs/corpus/internal/core/domain"
	"github.com/custodia-labs/corpus/internal/core/ports/driven"
)

// Ensure the decorators implement the interfaces.
var (
	_ driven.EmbeddingService = (*EmbeddingService)(nil)
	_ driven.LLMService       = (*LLMService)(nil)
)

// EmbeddingService guards every embedding call.
type EmbeddingService struct {
	inner driven.EmbeddingService
	guard *Guard
}

// WrapEmbedding decorates svc with guard.
func WrapEmbedding(svc driven.EmbeddingService, guard *Guard) *EmbeddingService {
	return &EmbeddingService{inner: svc, guard: guard}
}

// Embed embeds text under the guard.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	var out []float32
	err := s.guard.Do(ctx, func(ctx context.Context) error {
		v, err := s.inner.Embed(ctx, text)
		out = v
		return err
	})
	return out, err
}

// EmbedBatch embeds texts under the guard.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	var out [][]float32
	err := s.guard.Do(ctx, func(ctx context.Context) error {
		v, err := s.inner.EmbedBatch(ctx, texts)
		out = v
		return err
	})
	return out, err
}

// Dimensions returns the wrapped service's vector size.
func (s *EmbeddingService) Dimensions() int {
	return s.inner.Dimensions()
}

// ModelName returns the wrapped service's model.
func (s *EmbeddingService) ModelName() string {
	return s.inner.ModelName()
}

// Space returns the embedding space of the wrapped service, so vectors
// written through the guard are tagged the same as unguarded ones.
func (s *EmbeddingService) Space() domain.EmbeddingSpace {
	return s.inner.Space()
}

// Ping checks the provider directly. Health checks bypass the guard so an
// open breaker does not hide a recovered provider.
func (s *EmbeddingService) Ping(ctx context.Context) error {
	return s.inner.Ping(ctx)
}

// Close releases the wrapped service.
func (s *EmbeddingService) Close() error {
	return s.inner.Close()
}

// LLMService guards every generation call.
type LLMService struct {
	inner driven.LLMService
	guard *Guard
}

// WrapLLM decorates svc with guard.
func WrapLLM(svc driven.LLMService, guard *Guard) *LLMService {
	return &LLMService{inner: svc, guard: guard}
}

// Generate runs a completion under the guard.
func (s *LLMService) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	var out string
	err := s.guard.Do(ctx, func(ctx context.Context) error {
		v, err := s.inner.Generate(ctx, prompt, opts)
		out = v
		return err
	})
	return out, err
}

// Chat runs a conversation turn under the guard.
func (s *LLMService) Chat(ctx context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	var out string
	err := s.guard.Do(ctx, func(ctx context.Context) error {
		v, err := s.inner.Chat(ctx, messages, opts)
		out = v
		return err
	})
	return out, err
}

// ModelName returns the wrapped service's model.
func (s *LLMService) ModelName() string {
	return s.inner.ModelName()
}

// Ping checks the provider directly, bypassing the guard.
func (s *LLMService) Ping(ctx context.Context) error {
	return s.inner.Ping(ctx)
}

// Close releases the wrapped service.
func (s *LLMService) Close() error {
	return s.inner.Close()
}
