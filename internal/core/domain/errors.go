package domain

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates no extractor handles the document type.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrInvalidTransition indicates a document status change that the
	// lifecycle does not allow.
	ErrInvalidTransition = errors.New("invalid status transition")

	// Pipeline failure kinds.

	// ErrExtraction indicates the raw bytes could not be turned into text.
	// The document is marked failed and is not retried without a new upload.
	ErrExtraction = errors.New("extraction failed")

	// ErrEmbedding indicates the embedding gateway failed. Retryable.
	ErrEmbedding = errors.New("embedding failed")

	// ErrGeneration indicates the generation gateway failed. Retryable.
	ErrGeneration = errors.New("generation failed")

	// ErrStoreUnavailable indicates a transient storage failure.
	// No partial state was committed; the caller may retry.
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrEmbeddingSpaceMismatch indicates stored vectors were produced in a
	// different embedding space than the one used to query them.
	ErrEmbeddingSpaceMismatch = errors.New("embedding space mismatch")

	// ErrRetrievalUnavailable is returned by answer synthesis when a gateway
	// cannot be reached. No answer is fabricated.
	ErrRetrievalUnavailable = errors.New("retrieval unavailable")

	// ErrLLMUnavailable indicates the LLM service is not configured.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrQueueClosed indicates work was submitted after the ingest queue closed.
	ErrQueueClosed = errors.New("ingest queue closed")
)

// IngestError records why an ingestion failed.
// Kind is one of ErrExtraction, ErrEmbedding or ErrStoreUnavailable.
type IngestError struct {
	DocumentID string
	Kind       error
	Err        error
}

func (e *IngestError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("ingest %s: %v", e.DocumentID, e.Kind)
	}
	return fmt.Sprintf("ingest %s: %v: %v", e.DocumentID, e.Kind, e.Err)
}

// Unwrap exposes both the kind and the cause to errors.Is.
func (e *IngestError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// InconsistentDeleteError reports a project deletion that could not remove
// every document's vectors. The project record is left in place; retrying
// the deletion only needs to revisit the failed documents.
type InconsistentDeleteError struct {
	ProjectID string

	// Failed maps document id to the error that stopped its cleanup.
	Failed map[string]error
}

func (e *InconsistentDeleteError) Error() string {
	return fmt.Sprintf("delete project %s: %d document(s) not cleaned: %s",
		e.ProjectID, len(e.Failed), strings.Join(e.FailedDocumentIDs(), ", "))
}

// FailedDocumentIDs returns the failed document ids in sorted order.
func (e *InconsistentDeleteError) FailedDocumentIDs() []string {
	ids := make([]string, 0, len(e.Failed))
	for id := range e.Failed {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Unwrap returns the per-document causes.
func (e *InconsistentDeleteError) Unwrap() []error {
	errs := make([]error, 0, len(e.Failed))
	for _, id := range e.FailedDocumentIDs() {
		errs = append(errs, e.Failed[id])
	}
	return errs
}

// IsRetryable reports whether err is a transient failure that leaves
// existing state intact.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrExtraction) || errors.Is(err, ErrEmbeddingSpaceMismatch) ||
		errors.Is(err, context.Canceled) {
		return false
	}
	return errors.Is(err, ErrEmbedding) ||
		errors.Is(err, ErrGeneration) ||
		errors.Is(err, ErrStoreUnavailable) ||
		errors.Is(err, ErrRetrievalUnavailable) ||
		errors.Is(err, context.DeadlineExceeded)
}
