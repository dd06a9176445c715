package driving

import (
	"context"

	"github.com/custodia-labs/corpus/internal/core/domain"
)

// RetrievalService finds the chunks most relevant to a query.
type RetrievalService interface {
	// Retrieve embeds query and returns at most k chunks from projectID.
	// k <= 0 uses the configured default. A project with nothing indexed
	// returns an empty slice.
	Retrieve(ctx context.Context, projectID, query string, k int) ([]domain.ChunkResult, error)
}
