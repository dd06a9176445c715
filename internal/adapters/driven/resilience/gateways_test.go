package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/corpus/internal/adapters/driven/embedding/mock"
	llmmock "github.com/custodia-labs/corpus/internal/adapters/driven/llm/mock"
	"github.com/custodia-labs/corpus/internal/core/domain"
	"github.com/custodia-labs/corpus/internal/core/ports/driven"
)

func domainGatewaySettings() domain.GatewaySettings {
	return domain.DefaultAppSettings().Gateway
}

// flakyLLM fails the first n chat calls.
type flakyLLM struct {
	*llmmock.LLMService
	failures int
	calls    int
}

func (f *flakyLLM) Chat(ctx context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	f.calls++
	if f.calls <= f.failures {
		return "", errors.New("temporarily unavailable")
	}
	return f.LLMService.Chat(ctx, messages, opts)
}

func TestWrapEmbedding_DelegatesMetadata(t *testing.T) {
	inner := mock.NewEmbeddingService(mock.Config{})
	wrapped := WrapEmbedding(inner, NewGuard(Config{Name: GatewayEmbedding}))

	assert.Equal(t, inner.Space(), wrapped.Space())
	assert.Equal(t, inner.Dimensions(), wrapped.Dimensions())
	assert.Equal(t, inner.ModelName(), wrapped.ModelName())
	assert.NoError(t, wrapped.Ping(context.Background()))
	assert.NoError(t, wrapped.Close())

	want, _ := inner.EmbedBatch(context.Background(), []string{"a", "b"})
	got, err := wrapped.EmbedBatch(context.Background(), []string{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

// pingingLLM counts health checks and closes.
type pingingLLM struct {
	*llmmock.LLMService
	pingErr error
	pings   int
	closed  bool
}

func (p *pingingLLM) Ping(context.Context) error {
	p.pings++
	return p.pingErr
}

func (p *pingingLLM) Close() error {
	p.closed = true
	return nil
}

func TestWrapLLM_DelegatesMetadata(t *testing.T) {
	inner := &pingingLLM{LLMService: llmmock.NewLLMService(""), pingErr: errors.New("connection refused")}
	wrapped := WrapLLM(inner, NewGuard(Config{Name: GatewayLLM, MaxRetries: 3, InitialInterval: time.Millisecond}))

	assert.Equal(t, inner.ModelName(), wrapped.ModelName())
	assert.EqualError(t, wrapped.Ping(context.Background()), "connection refused")
	assert.Equal(t, 1, inner.pings, "health checks are not retried")
	require.NoError(t, wrapped.Close())
	assert.True(t, inner.closed)
}

func TestWrapLLM_RetriesChat(t *testing.T) {
	inner := &flakyLLM{LLMService: llmmock.NewLLMService(""), failures: 2}
	wrapped := WrapLLM(inner, NewGuard(Config{Name: GatewayLLM, MaxRetries: 3, InitialInterval: time.Millisecond}))

	reply, err := wrapped.Chat(context.Background(), []driven.ChatMessage{
		{Role: driven.ChatRoleUser, Content: "Hello"},
	}, driven.ChatOptions{})

	require.NoError(t, err)
	assert.Equal(t, 3, inner.calls)
	assert.Contains(t, reply, "Hello")
}
