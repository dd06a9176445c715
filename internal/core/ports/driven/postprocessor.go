package driven

import (
	"context"

	"github.com/custodia-labs/corpus/internal/core/domain"
)

// PostProcessor processes extracted text to produce chunks.
// PostProcessors are chained in a pipeline.
type PostProcessor interface {
	// Name returns the processor name for logging and configuration.
	Name() string

	// Process receives the document, its extracted text and the chunks
	// produced so far. A chunk-creating processor receives nil chunks.
	Process(ctx context.Context, doc *domain.Document, text string, chunks []domain.Chunk) ([]domain.Chunk, error)
}

// PostProcessorPipeline chains multiple PostProcessors.
type PostProcessorPipeline interface {
	// Process runs the text through all processors in order.
	// The same input always yields the same chunks.
	Process(ctx context.Context, doc *domain.Document, text string) ([]domain.Chunk, error)
}
