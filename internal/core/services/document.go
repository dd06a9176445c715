package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/corpus/internal/core/domain"
	"github.com/custodia-labs/corpus/internal/core/ports/driven"
	"github.com/custodia-labs/corpus/internal/core/ports/driving"
	"github.com/custodia-labs/corpus/internal/logger"
)

// Ensure DocumentService implements the interface.
var _ driving.DocumentService = (*DocumentService)(nil)

// DocumentService manages documents within projects.
type DocumentService struct {
	projects  driven.ProjectStore
	documents driven.DocumentStore
	blobs     driven.BlobStore
	vectors   driven.VectorStore
	locks     *DocumentLocks
}

// NewDocumentService creates a new document service.
func NewDocumentService(
	projects driven.ProjectStore,
	documents driven.DocumentStore,
	blobs driven.BlobStore,
	vectors driven.VectorStore,
	locks *DocumentLocks,
) *DocumentService {
	return &DocumentService{
		projects:  projects,
		documents: documents,
		blobs:     blobs,
		vectors:   vectors,
		locks:     locks,
	}
}

// Upload stores the bytes and creates a pending document.
func (s *DocumentService) Upload(ctx context.Context, req driving.UploadRequest) (*domain.Document, error) {
	name := strings.TrimSpace(req.Name)
	if req.ProjectID == "" || name == "" {
		return nil, fmt.Errorf("%w: project id and document name are required", domain.ErrInvalidInput)
	}

	unlockProject := s.locks.RLockProject(req.ProjectID)
	defer unlockProject()

	if _, err := s.projects.GetProject(ctx, req.ProjectID); err != nil {
		return nil, fmt.Errorf("get project: %w", err)
	}

	ref, err := s.blobs.Write(ctx, req.ProjectID, name, req.Data)
	if err != nil {
		return nil, fmt.Errorf("store content: %w", err)
	}

	now := time.Now()
	doc := &domain.Document{
		ID:         uuid.New().String(),
		ProjectID:  req.ProjectID,
		Name:       name,
		MIMEType:   req.MIMEType,
		ContentRef: ref,
		Status:     domain.StatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.documents.SaveDocument(ctx, doc); err != nil {
		if delErr := s.blobs.Delete(context.WithoutCancel(ctx), ref); delErr != nil {
			logger.Warn("Remove orphaned content %s: %v", ref, delErr)
		}
		return nil, fmt.Errorf("save document: %w", err)
	}

	logger.Info("Uploaded %s as document %s (%d bytes)", name, doc.ID, len(req.Data))
	return doc, nil
}

// List returns all documents for a project, oldest first.
func (s *DocumentService) List(ctx context.Context, projectID string) ([]domain.Document, error) {
	if _, err := s.projects.GetProject(ctx, projectID); err != nil {
		return nil, fmt.Errorf("get project: %w", err)
	}
	return s.documents.ListDocuments(ctx, projectID)
}

// Get retrieves a document by ID.
func (s *DocumentService) Get(ctx context.Context, documentID string) (*domain.Document, error) {
	return s.documents.GetDocument(ctx, documentID)
}

// Delete removes vectors first, then content, then the record.
// The record survives a vector failure so the caller can retry.
func (s *DocumentService) Delete(ctx context.Context, projectID, documentID string) error {
	unlockProject := s.locks.RLockProject(projectID)
	defer unlockProject()

	return s.deleteInProject(ctx, projectID, documentID)
}

// deleteInProject performs Delete; the caller holds the project's lock.
func (s *DocumentService) deleteInProject(ctx context.Context, projectID, documentID string) error {
	unlock := s.locks.Lock(documentID)
	defer unlock()

	return s.deleteLocked(ctx, projectID, documentID)
}

// deleteLocked performs Delete; the caller holds the document's lock.
func (s *DocumentService) deleteLocked(ctx context.Context, projectID, documentID string) error {
	doc, err := s.documents.GetDocument(ctx, documentID)
	if errors.Is(err, domain.ErrNotFound) {
		logger.Debug("Document %s already deleted", documentID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("get document: %w", err)
	}
	if doc.ProjectID != projectID {
		return fmt.Errorf("%w: document %s in project %s", domain.ErrNotFound, documentID, projectID)
	}

	if err := s.vectors.DeleteDocument(ctx, projectID, documentID); err != nil {
		logger.Warn("Document %s: vector removal failed, record kept: %v", documentID, err)
		return fmt.Errorf("delete vectors: %w", err)
	}
	logger.Debug("Document %s: vectors removed", documentID)

	if doc.ContentRef != "" {
		if err := s.blobs.Delete(ctx, doc.ContentRef); err != nil {
			logger.Warn("Document %s: content removal failed: %v", documentID, err)
		}
	}

	if err := s.documents.DeleteDocument(ctx, documentID); err != nil && !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("delete document record: %w", err)
	}
	logger.Info("Deleted document %s", documentID)
	return nil
}
