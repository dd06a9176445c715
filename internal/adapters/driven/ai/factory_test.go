package ai

import (
	"testing"

	"github.com/custodia-labs/corpus/internal/adapters/driven/resilience"
	"github.com/custodia-labs/corpus/internal/core/domain"
)

func TestCreateEmbeddingService(t *testing.T) {
	tests := []struct {
		name      string
		settings  *domain.EmbeddingSettings
		wantNil   bool
		wantErr   bool
		wantSpace domain.EmbeddingSpace
	}{
		{
			name:     "nil settings returns nil",
			settings: nil,
			wantNil:  true,
		},
		{
			name:     "unconfigured settings returns nil",
			settings: &domain.EmbeddingSettings{},
			wantNil:  true,
		},
		{
			name:      "mock provider",
			settings:  &domain.EmbeddingSettings{Provider: domain.AIProviderMock, Model: "hashed-bow"},
			wantSpace: "mock/hashed-bow@256",
		},
		{
			name:      "ollama provider",
			settings:  &domain.EmbeddingSettings{Provider: domain.AIProviderOllama, Model: "nomic-embed-text"},
			wantSpace: "ollama/nomic-embed-text@768",
		},
		{
			name: "openai provider",
			settings: &domain.EmbeddingSettings{
				Provider: domain.AIProviderOpenAI,
				APIKey:   "test-key",
				Model:    "text-embedding-3-small",
			},
			wantSpace: "openai/text-embedding-3-small@1536",
		},
		{
			name: "space override",
			settings: &domain.EmbeddingSettings{
				Provider: domain.AIProviderMock,
				Space:    "shared-v1",
			},
			wantSpace: "shared-v1",
		},
		{
			name:     "openai without key is not configured",
			settings: &domain.EmbeddingSettings{Provider: domain.AIProviderOpenAI},
			wantNil:  true,
		},
		{
			name:     "anthropic has no embeddings",
			settings: &domain.EmbeddingSettings{Provider: domain.AIProviderAnthropic, APIKey: "k"},
			wantNil:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := CreateEmbeddingService(tt.settings)
			if (err != nil) != tt.wantErr {
				t.Fatalf("CreateEmbeddingService() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantNil {
				if svc != nil {
					t.Errorf("CreateEmbeddingService() = %T, want nil", svc)
				}
				return
			}
			if svc == nil {
				t.Fatal("CreateEmbeddingService() returned nil")
			}
			if got := svc.Space(); got != tt.wantSpace {
				t.Errorf("Space() = %q, want %q", got, tt.wantSpace)
			}
		})
	}
}

func TestCreateLLMService(t *testing.T) {
	tests := []struct {
		name      string
		settings  *domain.LLMSettings
		wantNil   bool
		wantModel string
	}{
		{"nil settings", nil, true, ""},
		{"mock", &domain.LLMSettings{Provider: domain.AIProviderMock}, false, "echo"},
		{"ollama", &domain.LLMSettings{Provider: domain.AIProviderOllama, Model: "llama3.2"}, false, "llama3.2"},
		{"openai", &domain.LLMSettings{Provider: domain.AIProviderOpenAI, APIKey: "k"}, false, "gpt-4o-mini"},
		{"anthropic", &domain.LLMSettings{Provider: domain.AIProviderAnthropic, APIKey: "k"}, false, "claude-3-5-sonnet-latest"},
		{"anthropic without key", &domain.LLMSettings{Provider: domain.AIProviderAnthropic}, true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := CreateLLMService(tt.settings)
			if err != nil {
				t.Fatalf("CreateLLMService() error = %v", err)
			}
			if tt.wantNil {
				if svc != nil {
					t.Errorf("CreateLLMService() = %T, want nil", svc)
				}
				return
			}
			if svc == nil {
				t.Fatal("CreateLLMService() returned nil")
			}
			if got := svc.ModelName(); got != tt.wantModel {
				t.Errorf("ModelName() = %q, want %q", got, tt.wantModel)
			}
		})
	}
}

func TestNewGateways_Defaults(t *testing.T) {
	settings := domain.DefaultAppSettings()

	g, err := NewGateways(&settings, nil)
	if err != nil {
		t.Fatalf("NewGateways() error = %v", err)
	}
	defer g.Close()

	if _, ok := g.Embedding.(*resilience.EmbeddingService); !ok {
		t.Errorf("Embedding = %T, want guarded service", g.Embedding)
	}
	if _, ok := g.LLM.(*resilience.LLMService); !ok {
		t.Errorf("LLM = %T, want guarded service", g.LLM)
	}
	if len(g.Warnings) != 0 {
		t.Errorf("Warnings = %v, want none", g.Warnings)
	}
}

func TestNewGateways_UnconfiguredProviderWarns(t *testing.T) {
	settings := domain.DefaultAppSettings()
	settings.LLM = domain.LLMSettings{Provider: domain.AIProviderOpenAI}

	g, err := NewGateways(&settings, nil)
	if err != nil {
		t.Fatalf("NewGateways() error = %v", err)
	}

	if g.LLM != nil {
		t.Errorf("LLM = %T, want nil", g.LLM)
	}
	if len(g.Warnings) != 1 {
		t.Errorf("Warnings = %v, want one", g.Warnings)
	}
	g.Close()
}
