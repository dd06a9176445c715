package ai

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/corpus/internal/core/domain"
	"github.com/custodia-labs/corpus/internal/core/ports/driven"
)

// Ensure ConfigValidator implements the interface.
var _ driven.AIConfigValidator = (*ConfigValidator)(nil)

// checkText is embedded to check the vectors a provider actually returns.
const checkText = "corpus configuration check"

// ConfigValidator checks provider settings before they are used: the
// provider must answer a ping, and a known embedding model must return
// vectors of its published size.
type ConfigValidator struct {
	timeout time.Duration
}

// NewConfigValidator creates a validator that gives each check pingTimeout.
func NewConfigValidator() *ConfigValidator {
	return &ConfigValidator{timeout: pingTimeout}
}

// ValidateEmbedding pings the provider and embeds a check text.
// Unconfigured settings are not an error.
func (v *ConfigValidator) ValidateEmbedding(config *domain.EmbeddingSettings) error {
	svc, err := CreateEmbeddingService(config)
	if err != nil || svc == nil {
		return err
	}
	defer svc.Close()

	ctx, cancel := context.WithTimeout(context.Background(), v.timeout)
	defer cancel()

	if err := svc.Ping(ctx); err != nil {
		return err
	}
	vec, err := svc.Embed(ctx, checkText)
	if err != nil {
		return fmt.Errorf("test embedding: %w", err)
	}
	if want, known := domain.EmbeddingDimensions()[svc.ModelName()]; known && len(vec) != want {
		return fmt.Errorf("%w: model %s returned %d dimensions, expected %d",
			domain.ErrEmbeddingSpaceMismatch, svc.ModelName(), len(vec), want)
	}
	return nil
}

// ValidateLLM pings the provider. Unconfigured settings are not an error.
func (v *ConfigValidator) ValidateLLM(config *domain.LLMSettings) error {
	svc, err := CreateLLMService(config)
	if err != nil || svc == nil {
		return err
	}
	defer svc.Close()

	ctx, cancel := context.WithTimeout(context.Background(), v.timeout)
	defer cancel()
	return svc.Ping(ctx)
}
