package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/corpus/internal/core/domain"
	"github.com/custodia-labs/corpus/internal/core/ports/driven"
	"github.com/custodia-labs/corpus/internal/core/ports/driving"
	"github.com/custodia-labs/corpus/internal/logger"
	"github.com/custodia-labs/corpus/internal/metrics"
)

// Ensure RetrievalService implements the interface.
var _ driving.RetrievalService = (*RetrievalService)(nil)

// RetrievalService embeds a query and ranks a project's chunks against it.
type RetrievalService struct {
	embedder driven.EmbeddingService
	vectors  driven.VectorStore
	defaultK int
	metrics  *metrics.Metrics
}

// NewRetrievalService creates a new retrieval service.
// defaultK is used when a caller passes k <= 0.
func NewRetrievalService(
	embedder driven.EmbeddingService,
	vectors driven.VectorStore,
	defaultK int,
	m *metrics.Metrics,
) *RetrievalService {
	if defaultK <= 0 {
		defaultK = domain.DefaultRetrievalK
	}
	return &RetrievalService{
		embedder: embedder,
		vectors:  vectors,
		defaultK: min(defaultK, domain.MaxRetrievalK),
		metrics:  m,
	}
}

// Retrieve returns at most k chunks from projectID, best first.
func (s *RetrievalService) Retrieve(ctx context.Context, projectID, query string, k int) ([]domain.ChunkResult, error) {
	started := time.Now()
	results, err := s.retrieve(ctx, projectID, query, k)
	s.metrics.RecordRetrieval(len(results), err, time.Since(started))
	return results, err
}

func (s *RetrievalService) retrieve(ctx context.Context, projectID, query string, k int) ([]domain.ChunkResult, error) {
	if projectID == "" {
		return nil, fmt.Errorf("%w: project id is required", domain.ErrInvalidInput)
	}
	if s.embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return []domain.ChunkResult{}, nil
	}

	k = s.effectiveK(k)
	logger.Debug("Retrieve: project=%s k=%d query=%q", projectID, k, query)

	vector, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: embed query: %w", domain.ErrEmbedding, err)
	}

	results, err := s.vectors.Query(ctx, projectID, vector, s.embedder.Space(), k)
	if err != nil {
		return nil, fmt.Errorf("query vectors: %w", err)
	}
	if results == nil {
		results = []domain.ChunkResult{}
	}
	logger.Debug("Retrieve: %d results", len(results))
	return results, nil
}

// effectiveK applies the default and the upper bound.
func (s *RetrievalService) effectiveK(k int) int {
	if k <= 0 {
		return s.defaultK
	}
	return min(k, domain.MaxRetrievalK)
}
