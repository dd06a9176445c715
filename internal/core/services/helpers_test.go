package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/corpus/internal/adapters/driven/embedding/mock"
	"github.com/custodia-labs/corpus/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/corpus/internal/core/domain"
	"github.com/custodia-labs/corpus/internal/core/ports/driven"
	"github.com/custodia-labs/corpus/internal/core/ports/driving"
	"github.com/custodia-labs/corpus/internal/extractors"
	"github.com/custodia-labs/corpus/internal/postprocessors"
)

var errInjected = errors.New("injected failure")

// switchableEmbedder delegates to the mock embedder until fail is set.
type switchableEmbedder struct {
	*mock.EmbeddingService
	mu   sync.Mutex
	fail bool
}

func newEmbedder() *switchableEmbedder {
	return &switchableEmbedder{EmbeddingService: mock.NewEmbeddingService(mock.Config{})}
}

func (e *switchableEmbedder) setFail(v bool) {
	e.mu.Lock()
	e.fail = v
	e.mu.Unlock()
}

func (e *switchableEmbedder) failing() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.fail
}

func (e *switchableEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if e.failing() {
		return nil, errInjected
	}
	return e.EmbeddingService.Embed(ctx, text)
}

func (e *switchableEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if e.failing() {
		return nil, errInjected
	}
	return e.EmbeddingService.EmbedBatch(ctx, texts)
}

// blockingEmbedder parks every EmbedBatch call until release is closed.
type blockingEmbedder struct {
	*mock.EmbeddingService
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func newBlockingEmbedder() *blockingEmbedder {
	return &blockingEmbedder{
		EmbeddingService: mock.NewEmbeddingService(mock.Config{}),
		entered:          make(chan struct{}),
		release:          make(chan struct{}),
	}
}

func (e *blockingEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	e.once.Do(func() { close(e.entered) })
	select {
	case <-e.release:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return e.EmbeddingService.EmbedBatch(ctx, texts)
}

// faultyVectors wraps the memory vector store with injectable failures.
type faultyVectors struct {
	*memory.VectorStore
	mu         sync.Mutex
	failDelete map[string]bool
	failUpsert bool
	lastK      int
}

func newFaultyVectors() *faultyVectors {
	return &faultyVectors{VectorStore: memory.NewVectorStore(), failDelete: map[string]bool{}}
}

func (v *faultyVectors) setFailDelete(documentID string, fail bool) {
	v.mu.Lock()
	v.failDelete[documentID] = fail
	v.mu.Unlock()
}

func (v *faultyVectors) DeleteDocument(ctx context.Context, projectID, documentID string) error {
	v.mu.Lock()
	fail := v.failDelete[documentID]
	v.mu.Unlock()
	if fail {
		return errInjected
	}
	return v.VectorStore.DeleteDocument(ctx, projectID, documentID)
}

func (v *faultyVectors) Upsert(ctx context.Context, projectID, documentID string, records []domain.VectorRecord) error {
	v.mu.Lock()
	fail := v.failUpsert
	v.mu.Unlock()
	if fail {
		return errInjected
	}
	return v.VectorStore.Upsert(ctx, projectID, documentID, records)
}

func (v *faultyVectors) Query(
	ctx context.Context, projectID string, vector []float32, space domain.EmbeddingSpace, k int,
) ([]domain.ChunkResult, error) {
	v.mu.Lock()
	v.lastK = k
	v.mu.Unlock()
	return v.VectorStore.Query(ctx, projectID, vector, space, k)
}

// faultyDocuments fails SaveDocument for one target status and runs
// onList after each ListDocuments.
type faultyDocuments struct {
	*memory.DocumentStore
	failStatus domain.DocumentStatus
	onList     func(projectID string)
}

func (d *faultyDocuments) ListDocuments(ctx context.Context, projectID string) ([]domain.Document, error) {
	docs, err := d.DocumentStore.ListDocuments(ctx, projectID)
	if d.onList != nil {
		d.onList(projectID)
	}
	return docs, err
}

func (d *faultyDocuments) SaveDocument(ctx context.Context, doc *domain.Document) error {
	if d.failStatus != "" && doc.Status == d.failStatus {
		return errInjected
	}
	return d.DocumentStore.SaveDocument(ctx, doc)
}

// staticPrompts serves fixed templates.
type staticPrompts map[string]string

func (p staticPrompts) Load(name string) (string, error) {
	s, ok := p[name]
	if !ok {
		return "", errors.New("missing prompt " + name)
	}
	return s, nil
}

func (p staticPrompts) Reload() {}

func testPrompts() staticPrompts {
	return staticPrompts{
		driven.PromptAnswerSystem:  "SYSTEM",
		driven.PromptAnswerContext: "CONTEXT:\n%s",
		driven.PromptNoContext:     "NO CONTEXT",
	}
}

// recordingLLM returns reply (or err) and records the last conversation.
type recordingLLM struct {
	mu       sync.Mutex
	reply    string
	err      error
	messages []driven.ChatMessage
	opts     driven.ChatOptions
	calls    int
}

func (l *recordingLLM) Generate(context.Context, string, driven.GenerateOptions) (string, error) {
	return l.reply, l.err
}

func (l *recordingLLM) Chat(_ context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls++
	l.messages = append([]driven.ChatMessage(nil), messages...)
	l.opts = opts
	return l.reply, l.err
}

func (l *recordingLLM) ModelName() string { return "recording" }
func (l *recordingLLM) Ping(context.Context) error { return nil }
func (l *recordingLLM) Close() error { return nil }

// fixture wires the core services over in-memory stores.
type fixture struct {
	projectStore *memory.ProjectStore
	docStore     *faultyDocuments
	messageStore *memory.MessageStore
	blobs        *memory.BlobStore
	vectors      *faultyVectors
	embedder     *switchableEmbedder
	locks        *DocumentLocks

	projects  *ProjectService
	documents *DocumentService
	ingestion *IngestionService
	retrieval *RetrievalService
}

func newFixture(t *testing.T, opts ...IngestionOption) *fixture {
	t.Helper()

	pipeline, err := postprocessors.NewDefaultPipeline(200, 40)
	require.NoError(t, err)

	f := &fixture{
		projectStore: memory.NewProjectStore(),
		docStore:     &faultyDocuments{DocumentStore: memory.NewDocumentStore()},
		messageStore: memory.NewMessageStore(),
		blobs:        memory.NewBlobStore(),
		vectors:      newFaultyVectors(),
		embedder:     newEmbedder(),
		locks:        NewDocumentLocks(),
	}
	f.documents = NewDocumentService(f.projectStore, f.docStore, f.blobs, f.vectors, f.locks)
	f.projects = NewProjectService(f.projectStore, f.docStore, f.messageStore, f.vectors, f.documents)
	f.ingestion = NewIngestionService(f.projectStore, f.docStore, f.blobs, extractors.NewDefaultRegistry(), pipeline,
		f.embedder, f.vectors, f.locks, opts...)
	f.retrieval = NewRetrievalService(f.embedder, f.vectors, domain.DefaultRetrievalK, nil)
	return f
}

// ingestionWith builds an ingestion service over the fixture's stores and
// lock table using embedder.
func (f *fixture) ingestionWith(t *testing.T, embedder driven.EmbeddingService) *IngestionService {
	t.Helper()
	pipeline, err := postprocessors.NewDefaultPipeline(200, 40)
	require.NoError(t, err)
	return NewIngestionService(f.projectStore, f.docStore, f.blobs, extractors.NewDefaultRegistry(), pipeline,
		embedder, f.vectors, f.locks)
}

func (f *fixture) project(t *testing.T, name string) *domain.Project {
	t.Helper()
	p, err := f.projects.Create(context.Background(), "owner", name)
	require.NoError(t, err)
	return p
}

func (f *fixture) upload(t *testing.T, projectID, name, text string) *domain.Document {
	t.Helper()
	doc, err := f.documents.Upload(context.Background(), driving.UploadRequest{
		ProjectID: projectID,
		Name:      name,
		MIMEType:  "text/plain",
		Data:      []byte(text),
	})
	require.NoError(t, err)
	return doc
}

// indexed uploads and ingests a plain-text document.
func (f *fixture) indexed(t *testing.T, projectID, name, text string) *domain.Document {
	t.Helper()
	doc := f.upload(t, projectID, name, text)
	status, err := f.ingestion.Ingest(context.Background(), doc.ID)
	require.NoError(t, err)
	require.Equal(t, domain.StatusProcessed, status)
	return doc
}

func (f *fixture) vectorCount(t *testing.T, projectID, documentID string) int {
	t.Helper()
	n, err := f.vectors.Count(context.Background(), projectID, documentID)
	require.NoError(t, err)
	return n
}
