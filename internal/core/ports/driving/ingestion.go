package driving

import (
	"context"

	"github.com/custodia-labs/corpus/internal/core/domain"
)

// IngestionService indexes one document at a time.
type IngestionService interface {
	// Ingest extracts, chunks, embeds and stores the document, returning
	// its final status (processed or failed). A failed ingestion also
	// returns an error describing the failure kind.
	Ingest(ctx context.Context, documentID string) (domain.DocumentStatus, error)
}

// IngestQueue runs ingestions on a bounded pool of workers.
type IngestQueue interface {
	// Submit schedules a document for ingestion.
	Submit(documentID string) error

	// Wait blocks until every submitted document has finished.
	Wait()

	// Close stops accepting work and waits for in-flight ingestions.
	Close()
}
