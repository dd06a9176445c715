package driving

import (
	"context"

	"github.com/custodia-labs/corpus/internal/core/domain"
)

// ProjectService manages projects.
type ProjectService interface {
	// Create makes a new, empty project.
	Create(ctx context.Context, ownerID, name string) (*domain.Project, error)

	// Get retrieves a project by ID.
	Get(ctx context.Context, projectID string) (*domain.Project, error)

	// List returns the owner's projects. Empty ownerID lists all.
	List(ctx context.Context, ownerID string) ([]domain.Project, error)

	// Delete removes every document's vectors, then the documents,
	// messages and project. Partial failure returns
	// *domain.InconsistentDeleteError and leaves the project in place.
	Delete(ctx context.Context, projectID string) error
}
