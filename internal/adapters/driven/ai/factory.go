// Package ai provides factory functions for creating AI service adapters.
package ai

import (
	"fmt"
	"time"

	mockembed "github.com/custodia-labs/corpus/internal/adapters/driven/embedding/mock"
	ollamaembed "github.com/custodia-labs/corpus/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/custodia-labs/corpus/internal/adapters/driven/embedding/openai"
	anthropicllm "github.com/custodia-labs/corpus/internal/adapters/driven/llm/anthropic"
	mockllm "github.com/custodia-labs/corpus/internal/adapters/driven/llm/mock"
	ollamallm "github.com/custodia-labs/corpus/internal/adapters/driven/llm/ollama"
	openaillm "github.com/custodia-labs/corpus/internal/adapters/driven/llm/openai"
	"github.com/custodia-labs/corpus/internal/adapters/driven/resilience"
	"github.com/custodia-labs/corpus/internal/core/domain"
	"github.com/custodia-labs/corpus/internal/core/ports/driven"
	"github.com/custodia-labs/corpus/internal/logger"
	"github.com/custodia-labs/corpus/internal/metrics"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// Gateways holds the guarded embedding and LLM services. Either may be nil
// when its provider is not configured; the core services report
// ErrEmbeddingUnavailable or ErrLLMUnavailable in that case.
type Gateways struct {
	Embedding driven.EmbeddingService
	LLM       driven.LLMService

	// Warnings are non-fatal configuration issues.
	Warnings []string
}

// Close releases both services.
func (g *Gateways) Close() {
	if g.Embedding != nil {
		_ = g.Embedding.Close()
	}
	if g.LLM != nil {
		_ = g.LLM.Close()
	}
}

// NewGateways builds both gateways from settings and wraps each in its own
// rate limiter, retry policy and circuit breaker. Connectivity is not
// checked; failures surface on first use.
func NewGateways(settings *domain.AppSettings, m *metrics.Metrics) (*Gateways, error) {
	g := &Gateways{}

	embed, err := CreateEmbeddingService(&settings.Embedding)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrEmbeddingUnavailable, err)
	}
	if embed == nil {
		g.Warnings = append(g.Warnings,
			fmt.Sprintf("embedding provider %q is not configured", settings.Embedding.Provider))
	} else {
		guard := resilience.NewGuard(resilience.ConfigFromSettings(resilience.GatewayEmbedding, settings.Gateway, m))
		g.Embedding = resilience.WrapEmbedding(embed, guard)
		logger.Debug("Embedding gateway: %s", embed.Space())
	}

	llm, err := CreateLLMService(&settings.LLM)
	if err != nil {
		g.Close()
		return nil, fmt.Errorf("%w: %w", domain.ErrLLMUnavailable, err)
	}
	if llm == nil {
		g.Warnings = append(g.Warnings,
			fmt.Sprintf("LLM provider %q is not configured", settings.LLM.Provider))
	} else {
		guard := resilience.NewGuard(resilience.ConfigFromSettings(resilience.GatewayLLM, settings.Gateway, m))
		g.LLM = resilience.WrapLLM(llm, guard)
		logger.Debug("LLM gateway: %s/%s", settings.LLM.Provider, llm.ModelName())
	}

	for _, w := range g.Warnings {
		logger.Warn("%s", w)
	}
	return g, nil
}

// CreateEmbeddingService creates the embedding service selected by settings.
// Returns nil if the provider is not configured.
func CreateEmbeddingService(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	switch settings.Provider {
	case domain.AIProviderMock:
		return mockembed.NewEmbeddingService(mockembed.Config{
			Model:      settings.Model,
			Dimensions: domain.EmbeddingDimensions()[settings.Model],
			Space:      settings.Space,
		}), nil

	case domain.AIProviderOllama:
		return ollamaembed.NewEmbeddingService(ollamaembed.Config{
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
			Space:   settings.Space,
		}), nil

	case domain.AIProviderOpenAI:
		return openaiembed.NewEmbeddingService(openaiembed.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
			Space:   settings.Space,
		})

	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", settings.Provider)
	}
}

// CreateLLMService creates the LLM service selected by settings.
// Returns nil if the provider is not configured.
func CreateLLMService(settings *domain.LLMSettings) (driven.LLMService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	switch settings.Provider {
	case domain.AIProviderMock:
		return mockllm.NewLLMService(settings.Model), nil

	case domain.AIProviderOllama:
		return ollamallm.NewLLMService(ollamallm.Config{
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		}), nil

	case domain.AIProviderOpenAI:
		return openaillm.NewLLMService(openaillm.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})

	case domain.AIProviderAnthropic:
		return anthropicllm.NewLLMService(anthropicllm.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})

	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", settings.Provider)
	}
}
