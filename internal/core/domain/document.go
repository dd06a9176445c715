package domain

import (
	"fmt"
	"time"
)

// DocumentStatus is the indexing state of a document.
type DocumentStatus string

// Document lifecycle states.
const (
	// StatusPending is the initial state after upload.
	StatusPending DocumentStatus = "pending"

	// StatusProcessing means an ingestion is in flight.
	StatusProcessing DocumentStatus = "processing"

	// StatusProcessed means the document's vectors are searchable.
	StatusProcessed DocumentStatus = "processed"

	// StatusFailed means the last ingestion failed. FailureReason explains why.
	StatusFailed DocumentStatus = "failed"
)

// IsValid returns true if the status is recognised.
func (s DocumentStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusProcessed, StatusFailed:
		return true
	default:
		return false
	}
}

// IsTerminal returns true for processed and failed.
func (s DocumentStatus) IsTerminal() bool {
	return s == StatusProcessed || s == StatusFailed
}

// String returns the string representation.
func (s DocumentStatus) String() string {
	return string(s)
}

// CanTransitionTo reports whether moving from s to next is allowed.
// Terminal states may re-enter processing for a re-index.
func (s DocumentStatus) CanTransitionTo(next DocumentStatus) bool {
	switch s {
	case StatusPending:
		return next == StatusProcessing
	case StatusProcessing:
		return next == StatusProcessed || next == StatusFailed
	case StatusProcessed, StatusFailed:
		return next == StatusProcessing
	default:
		return false
	}
}

// ValidateTransition returns ErrInvalidTransition if s cannot move to next.
func (s DocumentStatus) ValidateTransition(next DocumentStatus) error {
	if !s.CanTransitionTo(next) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, s, next)
	}
	return nil
}

// Document is an uploaded file within a project.
// Its vectors exist in the vector store if and only if Status is processed.
type Document struct {
	// ID is the unique identifier for the document.
	ID string

	// ProjectID links to the owning Project.
	ProjectID string

	// Name is the display name, usually the uploaded file name.
	Name string

	// MIMEType is the declared content type of the raw bytes.
	MIMEType string

	// ContentRef is an opaque handle to the raw bytes in the blob store.
	ContentRef string

	// Status is the indexing state.
	Status DocumentStatus

	// FailureReason is set when Status is failed.
	FailureReason string

	// ChunkCount is the number of chunks written by the last successful ingestion.
	ChunkCount int

	// CreatedAt is when the document was uploaded.
	CreatedAt time.Time

	// UpdatedAt is when the status last changed.
	UpdatedAt time.Time
}

// IsSearchable returns true if the document's vectors are visible to queries.
func (d *Document) IsSearchable() bool {
	return d.Status == StatusProcessed
}

// Chunk represents a searchable unit within a document.
type Chunk struct {
	// ID is the deterministic identifier for the chunk.
	ID string

	// DocumentID links to the parent Document.
	DocumentID string

	// Content is the text content of this chunk.
	Content string

	// Position is the ordinal position within the document.
	Position int

	// Embedding is the vector representation for semantic search.
	Embedding []float32
}

// RawContent is the input to text extraction: the uploaded bytes plus
// the hints used to pick an extractor.
type RawContent struct {
	// DocumentID identifies the document the bytes belong to.
	DocumentID string

	// Name is the uploaded file name. Its extension is a fallback type hint.
	Name string

	// MIMEType is the declared content type.
	MIMEType string

	// Data is the raw bytes.
	Data []byte
}
