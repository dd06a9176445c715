// Package mock provides a deterministic, offline embedding service.
//
// Text is tokenised into lower-case words, each word is hashed into one of
// a fixed number of buckets and the counts are L2-normalised. Texts that
// share words have a positive cosine similarity; texts with no words in
// common score zero.
package mock

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
	"unicode"

	"github.com/custodia-labs/corpus/internal/core/domain"
	"github.com/custodia-labs/corpus/internal/core/ports/driven"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// Default configuration values.
const (
	DefaultModel      = "hashed-bow"
	DefaultDimensions = 256
)

// Config holds configuration for the mock embedding service.
type Config struct {
	Model      string
	Dimensions int

	// Space overrides the derived embedding space id.
	Space string
}

// EmbeddingService embeds text as a hashed bag of words.
type EmbeddingService struct {
	model      string
	dimensions int
	space      domain.EmbeddingSpace
}

// NewEmbeddingService creates a mock embedding service.
func NewEmbeddingService(cfg Config) *EmbeddingService {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Dimensions <= 0 {
		cfg.Dimensions = DefaultDimensions
	}
	space := domain.EmbeddingSpace(cfg.Space)
	if space == "" {
		space = domain.NewEmbeddingSpace(domain.AIProviderMock, cfg.Model, cfg.Dimensions)
	}
	return &EmbeddingService{
		model:      cfg.Model,
		dimensions: cfg.Dimensions,
		space:      space,
	}
}

// Embed returns the normalised bucket counts for text. Text without any
// words embeds as the zero vector.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	vec := make([]float32, s.dimensions)
	for _, word := range Tokenize(text) {
		vec[s.bucket(word)]++
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm == 0 {
		return vec, nil
	}
	norm = math.Sqrt(norm)
	for i := range vec {
		vec[i] = float32(float64(vec[i]) / norm)
	}
	return vec, nil
}

// EmbedBatch embeds each text in order.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		vec, err := s.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		out[i] = vec
	}
	return out, nil
}

func (s *EmbeddingService) bucket(word string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(word))
	return int(h.Sum32() % uint32(s.dimensions))
}

// Tokenize splits text into lower-case runs of letters and digits.
func Tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// Dimensions returns the embedding vector size.
func (s *EmbeddingService) Dimensions() int {
	return s.dimensions
}

// ModelName returns the model name.
func (s *EmbeddingService) ModelName() string {
	return s.model
}

// Space returns the embedding space id.
func (s *EmbeddingService) Space() domain.EmbeddingSpace {
	return s.space
}

// Ping always succeeds.
func (s *EmbeddingService) Ping(context.Context) error {
	return nil
}

// Close releases resources.
func (s *EmbeddingService) Close() error {
	return nil
}
