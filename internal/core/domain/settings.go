package domain

const unknownDescription = "Unknown"

// AIProvider identifies an AI service provider for embeddings or LLM.
type AIProvider string

// Available AI providers.
const (
	// AIProviderMock is a deterministic in-process provider for tests and
	// offline use.
	AIProviderMock AIProvider = "mock"

	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic is Anthropic cloud API.
	AIProviderAnthropic AIProvider = "anthropic"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderMock, AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI || p == AIProviderAnthropic
}

// IsLocal returns true if this provider runs locally.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama || p == AIProviderMock
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderMock:
		return "Mock (offline, deterministic)"
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	default:
		return unknownDescription
	}
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint (for Ollama).
	BaseURL string

	// APIKey is the API key (for OpenAI).
	APIKey string

	// Space overrides the embedding space id stored alongside vectors.
	// Empty means derive it from provider, model and dimensions.
	Space string
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() || e.Provider == AIProviderAnthropic {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// LLMSettings holds LLM provider configuration.
type LLMSettings struct {
	// Provider is the LLM service provider.
	Provider AIProvider

	// Model is the LLM model name.
	Model string

	// BaseURL is the API endpoint (for Ollama).
	BaseURL string

	// APIKey is the API key (for OpenAI/Anthropic).
	APIKey string
}

// IsConfigured returns true if the LLM provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.IsValid() {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// IngestSettings controls chunking and ingestion parallelism.
type IngestSettings struct {
	// ChunkSize is the target chunk size in characters.
	ChunkSize int

	// Overlap is the number of characters shared by adjacent chunks.
	Overlap int

	// Workers is the ingest queue worker count.
	Workers int

	// EmbedConcurrency bounds parallel embedding calls per document.
	EmbedConcurrency int
}

// RetrievalSettings controls the retrieval engine.
type RetrievalSettings struct {
	// DefaultK is used when a caller does not specify k.
	DefaultK int
}

// AnswerSettings controls answer synthesis.
type AnswerSettings struct {
	// HistoryLimit is the number of most recent messages included in the prompt.
	HistoryLimit int

	// NoContextNotice asks the model to say that no grounding documents were
	// found when retrieval comes back empty.
	NoContextNotice bool

	// MaxTokens caps the generated answer length.
	MaxTokens int

	// Temperature is the sampling temperature.
	Temperature float64
}

// StorageBackend selects where projects, documents and vectors live.
type StorageBackend string

// Available storage backends.
const (
	StorageSQLite StorageBackend = "sqlite"
	StorageMemory StorageBackend = "memory"
)

// IsValid returns true if the backend is recognised.
func (b StorageBackend) IsValid() bool {
	return b == StorageSQLite || b == StorageMemory
}

// StorageSettings holds persistence configuration.
type StorageSettings struct {
	Backend StorageBackend

	// DataDir holds the database and uploaded blobs. Empty means ~/.corpus/data.
	DataDir string
}

// GatewaySettings holds resilience limits applied to embedding and LLM calls.
type GatewaySettings struct {
	// RequestsPerSecond is the sustained call rate. Zero disables limiting.
	RequestsPerSecond float64

	// Burst is the rate limiter bucket size.
	Burst int

	// MaxRetries is the number of retries for transient failures.
	MaxRetries int

	// TimeoutSeconds bounds a single gateway call.
	TimeoutSeconds int

	// BreakerFailures is the consecutive failure count that opens the breaker.
	BreakerFailures int
}

// AppSettings holds all application settings.
type AppSettings struct {
	Embedding EmbeddingSettings
	LLM       LLMSettings
	Ingest    IngestSettings
	Retrieval RetrievalSettings
	Answer    AnswerSettings
	Storage   StorageSettings
	Gateway   GatewaySettings
}

// Default values for settings.
const (
	DefaultChunkSize        = 1000
	DefaultChunkOverlap     = 200
	DefaultIngestWorkers    = 4
	DefaultEmbedConcurrency = 4
	DefaultRetrievalK       = 5
	MaxRetrievalK           = 100
	DefaultHistoryLimit     = 10
	DefaultMaxTokens        = 1024
	DefaultTemperature      = 0.2
	DefaultRequestsPerSec   = 10
	DefaultBurst            = 10
	DefaultMaxRetries       = 3
	DefaultGatewayTimeout   = 30
	DefaultBreakerFailures  = 5
)

// DefaultAppSettings returns settings with sensible defaults.
// Both gateways start on the mock provider so the pipeline works offline.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Embedding: EmbeddingSettings{
			Provider: AIProviderMock,
			Model:    DefaultEmbeddingModels()[AIProviderMock],
		},
		LLM: LLMSettings{
			Provider: AIProviderMock,
			Model:    DefaultLLMModels()[AIProviderMock],
		},
		Ingest: IngestSettings{
			ChunkSize:        DefaultChunkSize,
			Overlap:          DefaultChunkOverlap,
			Workers:          DefaultIngestWorkers,
			EmbedConcurrency: DefaultEmbedConcurrency,
		},
		Retrieval: RetrievalSettings{DefaultK: DefaultRetrievalK},
		Answer: AnswerSettings{
			HistoryLimit:    DefaultHistoryLimit,
			NoContextNotice: true,
			MaxTokens:       DefaultMaxTokens,
			Temperature:     DefaultTemperature,
		},
		Storage: StorageSettings{Backend: StorageSQLite},
		Gateway: GatewaySettings{
			RequestsPerSecond: DefaultRequestsPerSec,
			Burst:             DefaultBurst,
			MaxRetries:        DefaultMaxRetries,
			TimeoutSeconds:    DefaultGatewayTimeout,
			BreakerFailures:   DefaultBreakerFailures,
		},
	}
}

// AllEmbeddingProviders returns providers that support embeddings.
func AllEmbeddingProviders() []AIProvider {
	return []AIProvider{
		AIProviderMock,
		AIProviderOllama,
		AIProviderOpenAI,
	}
}

// AllLLMProviders returns providers that support LLM operations.
func AllLLMProviders() []AIProvider {
	return []AIProvider{
		AIProviderMock,
		AIProviderOllama,
		AIProviderOpenAI,
		AIProviderAnthropic,
	}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderMock:   "hashed-bow",
		AIProviderOllama: "nomic-embed-text",
		AIProviderOpenAI: "text-embedding-3-small",
	}
}

// DefaultLLMModels returns default models for each LLM provider.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderMock:      "echo",
		AIProviderOllama:    "llama3.2",
		AIProviderOpenAI:    "gpt-4o-mini",
		AIProviderAnthropic: "claude-3-5-sonnet-latest",
	}
}

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		// Mock model
		"hashed-bow": 256,
		// Ollama models
		"nomic-embed-text":  768,
		"mxbai-embed-large": 1024,
		"all-minilm":        384,
		// OpenAI models
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
	}
}
