package pdf

import (
	"context"
	"errors"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/corpus/internal/core/domain"
	"github.com/custodia-labs/corpus/internal/core/ports/driven"
)

// mockRunner is a test double for CommandRunner.
type mockRunner struct {
	output []byte
	err    error
	name   string
	args   []string
}

func (m *mockRunner) Run(_ context.Context, name string, args ...string) ([]byte, error) {
	m.name = name
	m.args = args
	return m.output, m.err
}

func withTool(e *Extractor) *Extractor {
	e.lookPath = func(string) (string, error) { return "/usr/bin/pdftotext", nil }
	return e
}

func withoutTool(e *Extractor) *Extractor {
	e.lookPath = func(string) (string, error) { return "", exec.ErrNotFound }
	return e
}

var pdfData = []byte("%PDF-1.4\n...")

func TestNew(t *testing.T) {
	extractor := New()
	require.NotNil(t, extractor)
	assert.IsType(t, execRunner{}, extractor.runner)
}

func TestSupportedMIMETypes(t *testing.T) {
	assert.Equal(t, []string{"application/pdf"}, New().SupportedMIMETypes())
	assert.Equal(t, 50, New().Priority())
}

func TestNewWithRunner(t *testing.T) {
	runner := &mockRunner{output: []byte("test output")}
	extractor := NewWithRunner(runner)

	assert.Equal(t, runner, extractor.runner)
}

func TestExtract_WithMockRunner(t *testing.T) {
	runner := &mockRunner{output: []byte("Cats Report   \n\fThis is the content of the PDF.  \n")}
	extractor := withTool(NewWithRunner(runner))

	text, err := extractor.Extract(context.Background(), &domain.RawContent{Name: "cats.pdf", Data: pdfData})

	require.NoError(t, err)
	assert.Equal(t, "Cats Report\n\nThis is the content of the PDF.", text)
	assert.Equal(t, "pdftotext", runner.name)
	assert.Equal(t, "-", runner.args[len(runner.args)-1])
}

func TestExtract_RunnerError(t *testing.T) {
	runner := &mockRunner{err: errors.New("pdftotext crashed")}
	extractor := withTool(NewWithRunner(runner))

	_, err := extractor.Extract(context.Background(), &domain.RawContent{Name: "bad.pdf", Data: pdfData})

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrExtraction)
	assert.Contains(t, err.Error(), "pdftotext failed")
}

func TestExtract_ToolMissing(t *testing.T) {
	extractor := withoutTool(NewWithRunner(&mockRunner{}))

	_, err := extractor.Extract(context.Background(), &domain.RawContent{Name: "a.pdf", Data: pdfData})

	assert.ErrorIs(t, err, ErrPDFToolNotFound)
	assert.ErrorIs(t, err, domain.ErrExtraction)
}

func TestExtract_NotPDF(t *testing.T) {
	runner := &mockRunner{}
	extractor := withTool(NewWithRunner(runner))

	_, err := extractor.Extract(context.Background(), &domain.RawContent{Name: "fake.pdf", Data: []byte("hello")})

	assert.ErrorIs(t, err, domain.ErrExtraction)
	assert.Empty(t, runner.name, "runner should not be invoked for non-PDF data")
}

func TestExtract_EmptyAndNil(t *testing.T) {
	extractor := withoutTool(New())

	text, err := extractor.Extract(context.Background(), &domain.RawContent{Name: "empty.pdf"})
	require.NoError(t, err)
	assert.Empty(t, text)

	_, err = extractor.Extract(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCheckAvailable(t *testing.T) {
	assert.NoError(t, withTool(New()).CheckAvailable())
	assert.ErrorIs(t, withoutTool(New()).CheckAvailable(), ErrPDFToolNotFound)
}

func TestErrPDFToolNotFound(t *testing.T) {
	assert.Contains(t, ErrPDFToolNotFound.Error(), "pdftotext")
}

func TestInstallInstructions(t *testing.T) {
	instructions := InstallInstructions()
	assert.Contains(t, instructions, "pdftotext")
	assert.Contains(t, instructions, "brew install poppler")
	assert.Contains(t, instructions, "apt install poppler-utils")
}

func TestInterfaceCompliance(t *testing.T) {
	var _ driven.Extractor = (*Extractor)(nil)
}
