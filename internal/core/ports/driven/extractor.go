package driven

import (
	"context"

	"github.com/custodia-labs/corpus/internal/core/domain"
)

// Extractor turns raw document bytes into plain text.
// Each extractor handles specific MIME types (e.g., PDF, Markdown).
type Extractor interface {
	// SupportedMIMETypes returns the MIME types this extractor handles.
	SupportedMIMETypes() []string

	// Priority returns the selection priority (higher = preferred).
	// Format-specific extractors should return 50-89.
	// Fallback extractors should return 1-9.
	Priority() int

	// Extract returns the document text. Corrupt input is an error;
	// empty input yields empty text.
	Extract(ctx context.Context, raw *domain.RawContent) (string, error)
}

// ExtractorRegistry selects the appropriate extractor for a document.
type ExtractorRegistry interface {
	// Extract runs the highest-priority extractor for the content type.
	// Returns an error wrapping domain.ErrUnsupportedType when nothing matches.
	Extract(ctx context.Context, raw *domain.RawContent) (string, error)

	// Register adds an extractor to the registry.
	Register(extractor Extractor)

	// SupportedMIMETypes returns all MIME types that can be extracted.
	SupportedMIMETypes() []string
}
