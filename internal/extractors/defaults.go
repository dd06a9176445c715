package extractors

import (
	"github.com/custodia-labs/corpus/internal/extractors/docx"
	"github.com/custodia-labs/corpus/internal/extractors/eml"
	"github.com/custodia-labs/corpus/internal/extractors/html"
	"github.com/custodia-labs/corpus/internal/extractors/markdown"
	"github.com/custodia-labs/corpus/internal/extractors/pdf"
	"github.com/custodia-labs/corpus/internal/extractors/plaintext"
)

// NewDefaultRegistry returns a registry with every built-in extractor.
func NewDefaultRegistry() *Registry {
	return NewRegistry(
		plaintext.New(),
		markdown.New(),
		html.New(),
		docx.New(),
		eml.New(),
		pdf.New(),
	)
}
