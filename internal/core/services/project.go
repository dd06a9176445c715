package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/corpus/internal/core/domain"
	"github.com/custodia-labs/corpus/internal/core/ports/driven"
	"github.com/custodia-labs/corpus/internal/core/ports/driving"
	"github.com/custodia-labs/corpus/internal/logger"
)

// Ensure ProjectService implements the interface.
var _ driving.ProjectService = (*ProjectService)(nil)

// cascadeConcurrency bounds parallel document removal during project deletion.
const cascadeConcurrency = 4

// ProjectService manages projects and their cascading deletion.
type ProjectService struct {
	projects  driven.ProjectStore
	documents driven.DocumentStore
	messages  driven.MessageStore
	vectors   driven.VectorStore
	docs      *DocumentService
}

// NewProjectService creates a new project service. Document removal is
// delegated to docs so both paths share one lock table and one ordering.
func NewProjectService(
	projects driven.ProjectStore,
	documents driven.DocumentStore,
	messages driven.MessageStore,
	vectors driven.VectorStore,
	docs *DocumentService,
) *ProjectService {
	return &ProjectService{
		projects:  projects,
		documents: documents,
		messages:  messages,
		vectors:   vectors,
		docs:      docs,
	}
}

// Create makes a new, empty project.
func (s *ProjectService) Create(ctx context.Context, ownerID, name string) (*domain.Project, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: project name is required", domain.ErrInvalidInput)
	}

	project := &domain.Project{
		ID:        uuid.New().String(),
		OwnerID:   ownerID,
		Name:      name,
		CreatedAt: time.Now(),
	}
	if err := s.projects.SaveProject(ctx, project); err != nil {
		return nil, fmt.Errorf("save project: %w", err)
	}
	logger.Info("Created project %s (%s)", project.ID, name)
	return project, nil
}

// Get retrieves a project by ID.
func (s *ProjectService) Get(ctx context.Context, projectID string) (*domain.Project, error) {
	return s.projects.GetProject(ctx, projectID)
}

// List returns the owner's projects. Empty ownerID lists all.
func (s *ProjectService) List(ctx context.Context, ownerID string) ([]domain.Project, error) {
	return s.projects.ListProjects(ctx, ownerID)
}

// Delete removes every document, then the project's messages and record.
// It holds the project exclusively, so no document can be added meanwhile.
// If any document cannot be cleaned the project is kept and an
// *domain.InconsistentDeleteError names the documents to retry.
func (s *ProjectService) Delete(ctx context.Context, projectID string) error {
	unlockProject := s.docs.locks.LockProject(projectID)
	defer unlockProject()

	if _, err := s.projects.GetProject(ctx, projectID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("get project: %w", err)
	}

	docs, err := s.documents.ListDocuments(ctx, projectID)
	if err != nil {
		return fmt.Errorf("list documents: %w", err)
	}
	logger.Section("Delete project " + projectID)
	logger.Debug("Removing %d documents", len(docs))

	var (
		mu     sync.Mutex
		failed = make(map[string]error)
		g      errgroup.Group
	)
	g.SetLimit(cascadeConcurrency)
	for _, doc := range docs {
		g.Go(func() error {
			// Every document is attempted; failures are collected, not fatal.
			if err := s.docs.deleteInProject(ctx, projectID, doc.ID); err != nil {
				mu.Lock()
				failed[doc.ID] = err
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	if len(failed) > 0 {
		delErr := &domain.InconsistentDeleteError{ProjectID: projectID, Failed: failed}
		logger.Warn("%v", delErr)
		return delErr
	}

	// Sweep anything not tied to a listed document.
	if err := s.vectors.DeleteProject(ctx, projectID); err != nil {
		return fmt.Errorf("delete project vectors: %w", err)
	}
	if err := s.messages.DeleteMessages(ctx, projectID); err != nil {
		return fmt.Errorf("delete messages: %w", err)
	}
	if err := s.projects.DeleteProject(ctx, projectID); err != nil && !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("delete project record: %w", err)
	}

	logger.Info("Deleted project %s", projectID)
	return nil
}
