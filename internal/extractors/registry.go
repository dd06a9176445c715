package extractors

import (
	"context"
	"fmt"
	"mime"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/custodia-labs/corpus/internal/core/domain"
	"github.com/custodia-labs/corpus/internal/core/ports/driven"
	"github.com/custodia-labs/corpus/internal/logger"
)

// Ensure Registry implements the interface.
var _ driven.ExtractorRegistry = (*Registry)(nil)

// extensionTypes covers formats the system mime table often lacks.
var extensionTypes = map[string]string{
	".txt":      "text/plain",
	".text":     "text/plain",
	".log":      "text/plain",
	".md":       "text/markdown",
	".markdown": "text/markdown",
	".html":     "text/html",
	".htm":      "text/html",
	".pdf":      "application/pdf",
	".docx":     "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".eml":      "message/rfc822",
	".json":     "application/json",
	".csv":      "text/csv",
	".go":       "text/x-go",
	".py":       "text/x-python",
	".yaml":     "text/yaml",
	".yml":      "text/yaml",
	".toml":     "text/toml",
}

// genericTypes are declared types that carry no format information.
var genericTypes = map[string]bool{
	"":                         true,
	"application/octet-stream": true,
	"binary/octet-stream":      true,
}

// Registry selects extractors by MIME type.
type Registry struct {
	mu     sync.RWMutex
	byType map[string][]driven.Extractor
}

// NewRegistry creates an empty registry.
func NewRegistry(extractors ...driven.Extractor) *Registry {
	r := &Registry{byType: make(map[string][]driven.Extractor)}
	for _, e := range extractors {
		r.Register(e)
	}
	return r
}

// Register adds an extractor for each of its MIME types.
func (r *Registry) Register(extractor driven.Extractor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, mt := range extractor.SupportedMIMETypes() {
		list := append(r.byType[mt], extractor)
		sort.SliceStable(list, func(i, j int) bool {
			return list[i].Priority() > list[j].Priority()
		})
		r.byType[mt] = list
	}
}

// SupportedMIMETypes returns all registered MIME types, sorted.
func (r *Registry) SupportedMIMETypes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	types := make([]string, 0, len(r.byType))
	for mt := range r.byType {
		types = append(types, mt)
	}
	sort.Strings(types)
	return types
}

// Extract runs the best extractor for the content.
func (r *Registry) Extract(ctx context.Context, raw *domain.RawContent) (string, error) {
	if raw == nil {
		return "", domain.ErrInvalidInput
	}

	mt := ResolveMIMEType(raw.MIMEType, raw.Name)
	extractor := r.lookup(mt)
	if extractor == nil {
		return "", fmt.Errorf("%w: %q (%s)", domain.ErrUnsupportedType, mt, raw.Name)
	}

	logger.Debug("extracting %s as %s", raw.Name, mt)
	text, err := extractor.Extract(ctx, raw)
	if err != nil {
		return "", err
	}
	return text, nil
}

func (r *Registry) lookup(mt string) driven.Extractor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if list := r.byType[mt]; len(list) > 0 {
		return list[0]
	}
	return nil
}

// ResolveMIMEType normalises a declared MIME type, stripping parameters.
// When the declared type is missing or generic the file extension decides.
func ResolveMIMEType(declared, name string) string {
	mt := strings.ToLower(strings.TrimSpace(declared))
	if parsed, _, err := mime.ParseMediaType(mt); err == nil {
		mt = parsed
	}
	if !genericTypes[mt] {
		return mt
	}

	ext := strings.ToLower(filepath.Ext(name))
	if ext == "" {
		return mt
	}
	if t, ok := extensionTypes[ext]; ok {
		return t
	}
	if t := mime.TypeByExtension(ext); t != "" {
		if parsed, _, err := mime.ParseMediaType(t); err == nil {
			return parsed
		}
	}
	return mt
}
