package driven

import "github.com/custodia-labs/corpus/internal/core/domain"

// AIConfigValidator checks that a gateway configuration can reach its provider.
type AIConfigValidator interface {
	// ValidateEmbedding pings the configured embedding provider.
	ValidateEmbedding(config *domain.EmbeddingSettings) error

	// ValidateLLM pings the configured LLM provider.
	ValidateLLM(config *domain.LLMSettings) error
}
