// Package filter drops chunks that carry no words, such as page numbers,
// table rules or runs of punctuation left by extraction.
package filter

import (
	"context"
	"unicode"

	"github.com/custodia-labs/corpus/internal/core/domain"
	"github.com/custodia-labs/corpus/internal/core/ports/driven"
	"github.com/custodia-labs/corpus/internal/postprocessors/chunker"
)

// Ensure Processor implements the interface.
var _ driven.PostProcessor = (*Processor)(nil)

// DefaultMinLetters is the number of letters a chunk needs to be kept.
const DefaultMinLetters = 2

// Processor removes chunks with fewer than minLetters letters and
// renumbers the rest so positions stay contiguous.
type Processor struct {
	minLetters int
}

// New creates a filter keeping chunks with at least DefaultMinLetters letters.
func New() *Processor {
	return &Processor{minLetters: DefaultMinLetters}
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "filter"
}

// Process filters chunks. Kept chunks get new positions and ids.
func (p *Processor) Process(_ context.Context, doc *domain.Document, _ string, chunks []domain.Chunk) ([]domain.Chunk, error) {
	if len(chunks) == 0 {
		return chunks, nil
	}

	kept := chunks[:0:0]
	for _, c := range chunks {
		if countLetters(c.Content, p.minLetters) < p.minLetters {
			continue
		}
		c.Position = len(kept)
		c.ID = chunker.ChunkID(doc.ID, c.Position)
		kept = append(kept, c)
	}
	return kept, nil
}

// countLetters counts letters in s, stopping once limit is reached.
func countLetters(s string, limit int) int {
	n := 0
	for _, r := range s {
		if unicode.IsLetter(r) {
			n++
			if n >= limit {
				break
			}
		}
	}
	return n
}
