package driven

import (
	"context"

	"github.com/custodia-labs/corpus/internal/core/domain"
)

// VectorStore is the durable, project-scoped index of chunk vectors.
//
// Every read is filtered by project id. A single document's records are
// replaced atomically: readers see the old set or the new set, never a mix.
// Transient backend failures wrap domain.ErrStoreUnavailable.
type VectorStore interface {
	// Upsert replaces all records for (projectID, documentID) with records.
	// An empty records slice clears the document.
	Upsert(ctx context.Context, projectID, documentID string, records []domain.VectorRecord) error

	// DeleteDocument removes every record for the document. Deleting an
	// absent document is a no-op.
	DeleteDocument(ctx context.Context, projectID, documentID string) error

	// DeleteProject removes every record under the project.
	DeleteProject(ctx context.Context, projectID string) error

	// Query returns at most k records from projectID ranked by
	// domain.RankLess. Records stored under a different embedding space
	// than space cause domain.ErrEmbeddingSpaceMismatch.
	Query(ctx context.Context, projectID string, vector []float32, space domain.EmbeddingSpace, k int) ([]domain.ChunkResult, error)

	// Count returns the number of records for a document (empty documentID
	// counts the whole project).
	Count(ctx context.Context, projectID, documentID string) (int, error)
}
