package driving

import (
	"context"

	"github.com/custodia-labs/corpus/internal/core/domain"
)

// UploadRequest describes a new document.
type UploadRequest struct {
	ProjectID string
	Name      string
	MIMEType  string
	Data      []byte
}

// DocumentService manages documents within projects.
type DocumentService interface {
	// Upload stores the bytes and creates the document in pending state.
	// The caller decides when to ingest it.
	Upload(ctx context.Context, req UploadRequest) (*domain.Document, error)

	// List returns all documents for a project, oldest first.
	List(ctx context.Context, projectID string) ([]domain.Document, error)

	// Get retrieves a document by ID.
	Get(ctx context.Context, documentID string) (*domain.Document, error)

	// Delete removes the document's vectors, then its bytes and record.
	// If vector removal fails the record is left untouched. Deleting an
	// absent document is a no-op.
	Delete(ctx context.Context, projectID, documentID string) error
}
