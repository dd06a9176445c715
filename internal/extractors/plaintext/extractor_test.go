package plaintext

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/corpus/internal/core/domain"
	"github.com/custodia-labs/corpus/internal/core/ports/driven"
)

func TestNew(t *testing.T) {
	extractor := New()
	require.NotNil(t, extractor)
	assert.IsType(t, &Extractor{}, extractor)
}

func TestSupportedMIMETypes(t *testing.T) {
	mimeTypes := New().SupportedMIMETypes()

	require.NotEmpty(t, mimeTypes)
	assert.Contains(t, mimeTypes, "text/plain")
	assert.Contains(t, mimeTypes, "text/x-go")
	assert.Contains(t, mimeTypes, "application/json")
}

func TestPriority(t *testing.T) {
	assert.Equal(t, 5, New().Priority())
}

func TestExtract_Success(t *testing.T) {
	raw := &domain.RawContent{
		DocumentID: "doc-1",
		Name:       "notes.txt",
		MIMEType:   "text/plain",
		Data:       []byte("Cats are small domesticated mammals.\r\nThey purr.\r\n"),
	}

	text, err := New().Extract(context.Background(), raw)

	require.NoError(t, err)
	assert.Equal(t, "Cats are small domesticated mammals.\nThey purr.", text)
}

func TestExtract_StripsBOM(t *testing.T) {
	raw := &domain.RawContent{Name: "bom.txt", Data: []byte("\uFEFFhello")}

	text, err := New().Extract(context.Background(), raw)

	require.NoError(t, err)
	assert.Equal(t, "hello", text)
}

func TestExtract_Empty(t *testing.T) {
	text, err := New().Extract(context.Background(), &domain.RawContent{Name: "empty.txt"})

	require.NoError(t, err)
	assert.Empty(t, text)
}

func TestExtract_InvalidUTF8(t *testing.T) {
	raw := &domain.RawContent{Name: "bad.txt", Data: []byte{0xff, 0xfe, 0xfd}}

	_, err := New().Extract(context.Background(), raw)

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrExtraction)
}

func TestExtract_NilContent(t *testing.T) {
	_, err := New().Extract(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestInterfaceCompliance(t *testing.T) {
	var _ driven.Extractor = (*Extractor)(nil)
}
