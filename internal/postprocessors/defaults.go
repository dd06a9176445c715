package postprocessors

import (
	"github.com/custodia-labs/corpus/internal/core/domain"
	"github.com/custodia-labs/corpus/internal/core/ports/driven"
	"github.com/custodia-labs/corpus/internal/postprocessors/chunker"
	"github.com/custodia-labs/corpus/internal/postprocessors/filter"
)

// Built-in processor names.
const (
	ProcessorChunker = "chunker"
	ProcessorFilter  = "filter"
)

// RegisterDefaults registers the built-in processors.
func RegisterDefaults(r *Registry) {
	r.Register(ProcessorChunker, buildChunker)
	r.Register(ProcessorFilter, func(domain.IngestSettings) (driven.PostProcessor, error) {
		return filter.New(), nil
	})
}

// NewDefaultPipeline builds the ingest pipeline: fixed-size chunking with
// overlap, then removal of chunks that carry no words.
func NewDefaultPipeline(chunkSize, overlap int) (*Pipeline, error) {
	r := NewRegistry()
	RegisterDefaults(r)
	return r.BuildPipeline(domain.IngestSettings{ChunkSize: chunkSize, Overlap: overlap},
		ProcessorChunker, ProcessorFilter)
}

// buildChunker applies ChunkSize and Overlap. Without a chunk size the
// chunker defaults are used for both.
func buildChunker(settings domain.IngestSettings) (driven.PostProcessor, error) {
	if settings.ChunkSize <= 0 {
		return chunker.New(), nil
	}
	return chunker.New(
		chunker.WithChunkSize(settings.ChunkSize),
		chunker.WithOverlap(settings.Overlap),
	), nil
}
