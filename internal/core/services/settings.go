package services

import (
	"fmt"
	"os"
	"slices"

	"github.com/custodia-labs/corpus/internal/core/domain"
	"github.com/custodia-labs/corpus/internal/core/ports/driven"
	"github.com/custodia-labs/corpus/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyEmbedProvider    = "embedding.provider"
	keyEmbedModel       = "embedding.model"
	keyEmbedBaseURL     = "embedding.base_url"
	keyEmbedAPIKey      = "embedding.api_key"
	keyEmbedSpace       = "embedding.space"
	keyLLMProvider      = "llm.provider"
	keyLLMModel         = "llm.model"
	keyLLMBaseURL       = "llm.base_url"
	keyLLMAPIKey        = "llm.api_key"
	keyChunkSize        = "ingest.chunk_size"
	keyChunkOverlap     = "ingest.overlap"
	keyIngestWorkers    = "ingest.workers"
	keyEmbedConcurrency = "ingest.embed_concurrency"
	keyDefaultK         = "retrieval.default_k"
	keyHistoryLimit     = "answer.history_limit"
	keyNoContextNotice  = "answer.no_context_notice"
	keyMaxTokens        = "answer.max_tokens"
	keyTemperature      = "answer.temperature"
	keyStorageBackend   = "storage.backend"
	keyDataDir          = "storage.data_dir"
	keyRequestsPerSec   = "gateway.requests_per_second"
	keyBurst            = "gateway.burst"
	keyMaxRetries       = "gateway.max_retries"
	keyGatewayTimeout   = "gateway.timeout_seconds"
	keyBreakerFailures  = "gateway.breaker_failures"
)

// Environment variables that fill in API keys missing from the config file.
//
//nolint:gosec // G101: variable names, not credentials.
const (
	EnvOpenAIAPIKey    = "CORPUS_OPENAI_API_KEY"
	EnvAnthropicAPIKey = "CORPUS_ANTHROPIC_API_KEY"
)

const defaultOllamaURL = "http://localhost:11434"

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore, aiValidator driven.AIConfigValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
	}
}

// Get retrieves current application settings.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		Embedding: domain.EmbeddingSettings{
			Provider: s.getProvider(keyEmbedProvider, defaults.Embedding.Provider),
			BaseURL:  s.configStore.GetString(keyEmbedBaseURL), // empty is valid for cloud providers
			APIKey:   s.configStore.GetString(keyEmbedAPIKey),
			Space:    s.configStore.GetString(keyEmbedSpace),
		},
		LLM: domain.LLMSettings{
			Provider: s.getProvider(keyLLMProvider, defaults.LLM.Provider),
			BaseURL:  s.configStore.GetString(keyLLMBaseURL),
			APIKey:   s.configStore.GetString(keyLLMAPIKey),
		},
		Ingest: domain.IngestSettings{
			ChunkSize:        s.getInt(keyChunkSize, defaults.Ingest.ChunkSize),
			Overlap:          s.getInt(keyChunkOverlap, defaults.Ingest.Overlap),
			Workers:          s.getInt(keyIngestWorkers, defaults.Ingest.Workers),
			EmbedConcurrency: s.getInt(keyEmbedConcurrency, defaults.Ingest.EmbedConcurrency),
		},
		Retrieval: domain.RetrievalSettings{
			DefaultK: s.getInt(keyDefaultK, defaults.Retrieval.DefaultK),
		},
		Answer: domain.AnswerSettings{
			HistoryLimit:    s.getInt(keyHistoryLimit, defaults.Answer.HistoryLimit),
			NoContextNotice: s.getBool(keyNoContextNotice, defaults.Answer.NoContextNotice),
			MaxTokens:       s.getInt(keyMaxTokens, defaults.Answer.MaxTokens),
			Temperature:     s.getFloat(keyTemperature, defaults.Answer.Temperature),
		},
		Storage: domain.StorageSettings{
			Backend: s.getBackend(defaults.Storage.Backend),
			DataDir: s.configStore.GetString(keyDataDir),
		},
		Gateway: domain.GatewaySettings{
			RequestsPerSecond: s.getFloat(keyRequestsPerSec, defaults.Gateway.RequestsPerSecond),
			Burst:             s.getInt(keyBurst, defaults.Gateway.Burst),
			MaxRetries:        s.getInt(keyMaxRetries, defaults.Gateway.MaxRetries),
			TimeoutSeconds:    s.getInt(keyGatewayTimeout, defaults.Gateway.TimeoutSeconds),
			BreakerFailures:   s.getInt(keyBreakerFailures, defaults.Gateway.BreakerFailures),
		},
	}

	// Unset models fall back to the provider default.
	settings.Embedding.Model = s.getString(keyEmbedModel, domain.DefaultEmbeddingModels()[settings.Embedding.Provider])
	settings.LLM.Model = s.getString(keyLLMModel, domain.DefaultLLMModels()[settings.LLM.Provider])

	if settings.Embedding.APIKey == "" && settings.Embedding.Provider == domain.AIProviderOpenAI {
		settings.Embedding.APIKey = os.Getenv(EnvOpenAIAPIKey)
	}
	if settings.LLM.APIKey == "" {
		switch settings.LLM.Provider {
		case domain.AIProviderOpenAI:
			settings.LLM.APIKey = os.Getenv(EnvOpenAIAPIKey)
		case domain.AIProviderAnthropic:
			settings.LLM.APIKey = os.Getenv(EnvAnthropicAPIKey)
		}
	}

	return settings, nil
}

// Save persists application settings.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	values := []struct {
		key string
		val any
	}{
		{keyEmbedProvider, settings.Embedding.Provider.String()},
		{keyEmbedModel, settings.Embedding.Model},
		{keyEmbedBaseURL, settings.Embedding.BaseURL},
		{keyEmbedSpace, settings.Embedding.Space},
		{keyLLMProvider, settings.LLM.Provider.String()},
		{keyLLMModel, settings.LLM.Model},
		{keyLLMBaseURL, settings.LLM.BaseURL},
		{keyChunkSize, settings.Ingest.ChunkSize},
		{keyChunkOverlap, settings.Ingest.Overlap},
		{keyIngestWorkers, settings.Ingest.Workers},
		{keyEmbedConcurrency, settings.Ingest.EmbedConcurrency},
		{keyDefaultK, settings.Retrieval.DefaultK},
		{keyHistoryLimit, settings.Answer.HistoryLimit},
		{keyNoContextNotice, settings.Answer.NoContextNotice},
		{keyMaxTokens, settings.Answer.MaxTokens},
		{keyTemperature, settings.Answer.Temperature},
		{keyStorageBackend, string(settings.Storage.Backend)},
		{keyDataDir, settings.Storage.DataDir},
		{keyRequestsPerSec, settings.Gateway.RequestsPerSecond},
		{keyBurst, settings.Gateway.Burst},
		{keyMaxRetries, settings.Gateway.MaxRetries},
		{keyGatewayTimeout, settings.Gateway.TimeoutSeconds},
		{keyBreakerFailures, settings.Gateway.BreakerFailures},
	}
	// API keys are only written when set so env-provided keys never land on disk.
	if settings.Embedding.APIKey != "" {
		values = append(values, struct {
			key string
			val any
		}{keyEmbedAPIKey, settings.Embedding.APIKey})
	}
	if settings.LLM.APIKey != "" {
		values = append(values, struct {
			key string
			val any
		}{keyLLMAPIKey, settings.LLM.APIKey})
	}

	for _, v := range values {
		if err := s.configStore.Set(v.key, v.val); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}
	return s.configStore.Save()
}

// SetEmbeddingProvider configures the embedding provider.
func (s *SettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("invalid embedding provider: %s", provider)
	}
	if !slices.Contains(domain.AllEmbeddingProviders(), provider) {
		return fmt.Errorf("provider %s does not support embeddings", provider)
	}
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("API key required for %s", provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.Embedding.Provider = provider
	settings.Embedding.Model = model
	if model == "" {
		settings.Embedding.Model = domain.DefaultEmbeddingModels()[provider]
	}
	settings.Embedding.BaseURL = baseURLFor(provider, settings.Embedding.BaseURL)
	settings.Embedding.APIKey = apiKey
	// A new provider or model is a new embedding space.
	settings.Embedding.Space = ""

	return s.Save(settings)
}

// SetLLMProvider configures the LLM provider.
func (s *SettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("invalid LLM provider: %s", provider)
	}
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("API key required for %s", provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.LLM.Provider = provider
	settings.LLM.Model = model
	if model == "" {
		settings.LLM.Model = domain.DefaultLLMModels()[provider]
	}
	settings.LLM.BaseURL = baseURLFor(provider, settings.LLM.BaseURL)
	settings.LLM.APIKey = apiKey

	return s.Save(settings)
}

// Validate checks that the current settings are usable.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	if !settings.Embedding.IsConfigured() {
		return fmt.Errorf("%w: embedding provider %q", domain.ErrEmbeddingUnavailable, settings.Embedding.Provider)
	}
	if !settings.LLM.IsConfigured() {
		return fmt.Errorf("%w: LLM provider %q", domain.ErrLLMUnavailable, settings.LLM.Provider)
	}
	if settings.Ingest.ChunkSize <= 0 || settings.Ingest.Overlap < 0 || settings.Ingest.Overlap >= settings.Ingest.ChunkSize {
		return fmt.Errorf("%w: chunk size %d with overlap %d",
			domain.ErrInvalidInput, settings.Ingest.ChunkSize, settings.Ingest.Overlap)
	}
	if settings.Retrieval.DefaultK <= 0 || settings.Retrieval.DefaultK > domain.MaxRetrievalK {
		return fmt.Errorf("%w: retrieval.default_k must be 1..%d", domain.ErrInvalidInput, domain.MaxRetrievalK)
	}
	if settings.Answer.HistoryLimit < 0 {
		return fmt.Errorf("%w: answer.history_limit must not be negative", domain.ErrInvalidInput)
	}

	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// ValidateEmbeddingConfig validates the current embedding configuration by pinging the provider.
func (s *SettingsService) ValidateEmbeddingConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateEmbedding(&settings.Embedding)
}

// ValidateLLMConfig validates the current LLM configuration by pinging the provider.
func (s *SettingsService) ValidateLLMConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateLLM(&settings.LLM)
}

func baseURLFor(provider domain.AIProvider, current string) string {
	switch provider {
	case domain.AIProviderOllama:
		if current == "" {
			return defaultOllamaURL
		}
		return current
	default:
		return ""
	}
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val == 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetFloat(key)
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetBool(key)
}

func (s *SettingsService) getProvider(key string, defaultVal domain.AIProvider) domain.AIProvider {
	provider := domain.AIProvider(s.configStore.GetString(key))
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}

func (s *SettingsService) getBackend(defaultVal domain.StorageBackend) domain.StorageBackend {
	backend := domain.StorageBackend(s.configStore.GetString(keyStorageBackend))
	if !backend.IsValid() {
		return defaultVal
	}
	return backend
}
