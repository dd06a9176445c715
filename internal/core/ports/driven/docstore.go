package driven

import (
	"context"

	"github.com/custodia-labs/corpus/internal/core/domain"
)

// ProjectStore persists projects.
type ProjectStore interface {
	// SaveProject stores or updates a project.
	SaveProject(ctx context.Context, project *domain.Project) error

	// GetProject retrieves a project by ID.
	GetProject(ctx context.Context, id string) (*domain.Project, error)

	// ListProjects returns projects for an owner, oldest first.
	// An empty ownerID lists every project.
	ListProjects(ctx context.Context, ownerID string) ([]domain.Project, error)

	// DeleteProject removes the project record. Its documents and messages
	// must already be gone.
	DeleteProject(ctx context.Context, id string) error
}

// DocumentStore persists document records and their status.
type DocumentStore interface {
	// SaveDocument stores or updates a document.
	SaveDocument(ctx context.Context, doc *domain.Document) error

	// GetDocument retrieves a document by ID.
	GetDocument(ctx context.Context, id string) (*domain.Document, error)

	// ListDocuments returns documents for a project, oldest first.
	ListDocuments(ctx context.Context, projectID string) ([]domain.Document, error)

	// DeleteDocument removes a document record.
	DeleteDocument(ctx context.Context, id string) error
}

// MessageStore persists conversation messages. Messages are immutable.
type MessageStore interface {
	// AppendMessage stores a new message and assigns its Seq.
	AppendMessage(ctx context.Context, msg *domain.Message) error

	// ListMessages returns every message of a project ordered by
	// creation time then insertion order.
	ListMessages(ctx context.Context, projectID string) ([]domain.Message, error)

	// RecentMessages returns the last n messages of a project, oldest first.
	RecentMessages(ctx context.Context, projectID string, n int) ([]domain.Message, error)

	// DeleteMessages removes every message of a project.
	DeleteMessages(ctx context.Context, projectID string) error
}
