package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/custodia-labs/corpus/internal/core/domain"
	"github.com/custodia-labs/corpus/internal/core/ports/driven"
)

// Ensure VectorStore implements the interface.
var _ driven.VectorStore = (*VectorStore)(nil)

// VectorStore is an in-memory vector store using brute-force cosine similarity.
// Records are partitioned by project, then by document.
type VectorStore struct {
	mu       sync.RWMutex
	projects map[string]map[string][]domain.VectorRecord
}

// NewVectorStore creates an empty in-memory vector store.
func NewVectorStore() *VectorStore {
	return &VectorStore{projects: make(map[string]map[string][]domain.VectorRecord)}
}

// Upsert replaces a document's records in one step.
func (s *VectorStore) Upsert(_ context.Context, projectID, documentID string, records []domain.VectorRecord) error {
	copied := make([]domain.VectorRecord, len(records))
	for i, r := range records {
		r.ProjectID = projectID
		r.DocumentID = documentID
		r.Vector = append([]float32(nil), r.Vector...)
		copied[i] = r
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	docs := s.projects[projectID]
	if docs == nil {
		docs = make(map[string][]domain.VectorRecord)
		s.projects[projectID] = docs
	}
	if len(copied) == 0 {
		delete(docs, documentID)
		return nil
	}
	docs[documentID] = copied
	return nil
}

// DeleteDocument removes a document's records.
func (s *VectorStore) DeleteDocument(_ context.Context, projectID, documentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if docs := s.projects[projectID]; docs != nil {
		delete(docs, documentID)
	}
	return nil
}

// DeleteProject removes a project's records.
func (s *VectorStore) DeleteProject(_ context.Context, projectID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.projects, projectID)
	return nil
}

// Query scores every record of the project against vector.
func (s *VectorStore) Query(
	_ context.Context,
	projectID string,
	vector []float32,
	space domain.EmbeddingSpace,
	k int,
) ([]domain.ChunkResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var results []domain.ChunkResult
	for _, records := range s.projects[projectID] {
		for _, r := range records {
			if r.Space != space {
				return nil, fmt.Errorf("%w: project %s stores %s, query uses %s",
					domain.ErrEmbeddingSpaceMismatch, projectID, r.Space, space)
			}
			results = append(results, domain.ChunkResult{
				DocumentID:        r.DocumentID,
				ChunkID:           r.ChunkID,
				Position:          r.Position,
				Text:              r.Text,
				Score:             domain.CosineSimilarity(vector, r.Vector),
				DocumentCreatedAt: r.DocumentCreatedAt,
			})
		}
	}
	return domain.RankResults(results, k), nil
}

// Count returns the number of records for a document, or the whole project.
func (s *VectorStore) Count(_ context.Context, projectID, documentID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	docs := s.projects[projectID]
	if documentID != "" {
		return len(docs[documentID]), nil
	}
	n := 0
	for _, records := range docs {
		n += len(records)
	}
	return n, nil
}
