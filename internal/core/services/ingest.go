package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/corpus/internal/core/domain"
	"github.com/custodia-labs/corpus/internal/core/ports/driven"
	"github.com/custodia-labs/corpus/internal/core/ports/driving"
	"github.com/custodia-labs/corpus/internal/logger"
	"github.com/custodia-labs/corpus/internal/metrics"
)

// Ensure IngestionService implements the interface.
var _ driving.IngestionService = (*IngestionService)(nil)

// embedBatchSize is the number of chunks sent per EmbedBatch call.
const embedBatchSize = 16

// IngestionService runs the extract, chunk, embed and store pipeline
// for one document.
type IngestionService struct {
	projects   driven.ProjectStore
	documents  driven.DocumentStore
	blobs      driven.BlobStore
	extractors driven.ExtractorRegistry
	pipeline   driven.PostProcessorPipeline
	embedder   driven.EmbeddingService
	vectors    driven.VectorStore
	locks      *DocumentLocks
	metrics    *metrics.Metrics

	embedConcurrency int
}

// IngestionOption configures an IngestionService.
type IngestionOption func(*IngestionService)

// WithEmbedConcurrency bounds the number of concurrent embedding calls
// per document.
func WithEmbedConcurrency(n int) IngestionOption {
	return func(s *IngestionService) {
		if n > 0 {
			s.embedConcurrency = n
		}
	}
}

// WithIngestionMetrics records ingestion outcomes.
func WithIngestionMetrics(m *metrics.Metrics) IngestionOption {
	return func(s *IngestionService) {
		s.metrics = m
	}
}

// NewIngestionService creates a new ingestion service.
// The locks table must be shared with the DocumentService and ProjectService.
func NewIngestionService(
	projects driven.ProjectStore,
	documents driven.DocumentStore,
	blobs driven.BlobStore,
	extractors driven.ExtractorRegistry,
	pipeline driven.PostProcessorPipeline,
	embedder driven.EmbeddingService,
	vectors driven.VectorStore,
	locks *DocumentLocks,
	opts ...IngestionOption,
) *IngestionService {
	s := &IngestionService{
		projects:         projects,
		documents:        documents,
		blobs:            blobs,
		extractors:       extractors,
		pipeline:         pipeline,
		embedder:         embedder,
		vectors:          vectors,
		locks:            locks,
		embedConcurrency: domain.DefaultEmbedConcurrency,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Ingest indexes the document and returns its final status.
// At most one ingestion per document id runs at a time, and none runs
// while the document's project is being deleted.
func (s *IngestionService) Ingest(ctx context.Context, documentID string) (domain.DocumentStatus, error) {
	if s.embedder == nil {
		return "", domain.ErrEmbeddingUnavailable
	}

	doc, err := s.documents.GetDocument(ctx, documentID)
	if err != nil {
		return "", fmt.Errorf("get document: %w", err)
	}

	unlockProject := s.locks.RLockProject(doc.ProjectID)
	defer unlockProject()
	unlock := s.locks.Lock(documentID)
	defer unlock()

	// Reload under the locks: a delete may have won the race.
	doc, err = s.documents.GetDocument(ctx, documentID)
	if err != nil {
		return "", fmt.Errorf("get document: %w", err)
	}
	if _, err := s.projects.GetProject(ctx, doc.ProjectID); err != nil {
		return "", fmt.Errorf("get project: %w", err)
	}

	// A document left in processing by an interrupted run may be restarted.
	if doc.Status != domain.StatusProcessing {
		if err := doc.Status.ValidateTransition(domain.StatusProcessing); err != nil {
			return doc.Status, err
		}
	}

	started := time.Now()
	s.metrics.IngestStarted()
	logger.Section("Ingest " + doc.Name)

	doc.Status = domain.StatusProcessing
	doc.FailureReason = ""
	doc.UpdatedAt = time.Now()
	if err := s.documents.SaveDocument(ctx, doc); err != nil {
		s.metrics.IngestFinished(string(domain.StatusFailed), "store", 0, time.Since(started))
		return "", fmt.Errorf("mark processing: %w", err)
	}
	logger.Debug("Document %s: %s -> processing", doc.ID, doc.Name)

	count, ingestErr := s.index(ctx, doc)
	if ingestErr != nil {
		return s.fail(ctx, doc, ingestErr, started)
	}

	doc.Status = domain.StatusProcessed
	doc.ChunkCount = count
	doc.UpdatedAt = time.Now()
	if err := s.documents.SaveDocument(ctx, doc); err != nil {
		// Vectors must not outlive a document that never reached processed.
		if delErr := s.vectors.DeleteDocument(context.WithoutCancel(ctx), doc.ProjectID, doc.ID); delErr != nil {
			logger.Error("Document %s: rollback vectors after status write failure: %v", doc.ID, delErr)
		}
		return s.fail(ctx, doc, &domain.IngestError{
			DocumentID: doc.ID,
			Kind:       domain.ErrStoreUnavailable,
			Err:        fmt.Errorf("mark processed: %w", err),
		}, started)
	}

	logger.Info("Document %s processed: %d chunks", doc.ID, count)
	s.metrics.IngestFinished(string(domain.StatusProcessed), "", count, time.Since(started))
	return domain.StatusProcessed, nil
}

// index extracts, chunks, embeds and upserts. On failure nothing has been
// written to the vector store.
func (s *IngestionService) index(ctx context.Context, doc *domain.Document) (int, *domain.IngestError) {
	failure := func(kind, err error) *domain.IngestError {
		return &domain.IngestError{DocumentID: doc.ID, Kind: kind, Err: err}
	}

	data, err := s.blobs.Read(ctx, doc.ContentRef)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return 0, failure(domain.ErrExtraction, fmt.Errorf("read content: %w", err))
		}
		return 0, failure(domain.ErrStoreUnavailable, fmt.Errorf("read content: %w", err))
	}

	text, err := s.extractors.Extract(ctx, &domain.RawContent{
		DocumentID: doc.ID,
		Name:       doc.Name,
		MIMEType:   doc.MIMEType,
		Data:       data,
	})
	if err != nil {
		return 0, failure(domain.ErrExtraction, err)
	}
	logger.Debug("Extracted %d bytes of text", len(text))

	chunks, err := s.pipeline.Process(ctx, doc, text)
	if err != nil {
		return 0, failure(domain.ErrExtraction, fmt.Errorf("chunk: %w", err))
	}
	logger.Debug("Chunked into %d chunks", len(chunks))

	vectors, err := s.embed(ctx, chunks)
	if err != nil {
		return 0, failure(domain.ErrEmbedding, err)
	}

	space := s.embedder.Space()
	records := make([]domain.VectorRecord, len(chunks))
	for i, c := range chunks {
		records[i] = domain.VectorRecord{
			ProjectID:         doc.ProjectID,
			DocumentID:        doc.ID,
			ChunkID:           c.ID,
			Position:          c.Position,
			Vector:            vectors[i],
			Text:              c.Content,
			Space:             space,
			DocumentCreatedAt: doc.CreatedAt,
		}
	}

	// An empty record set clears any vectors from a previous ingestion.
	if err := s.vectors.Upsert(ctx, doc.ProjectID, doc.ID, records); err != nil {
		return 0, failure(domain.ErrStoreUnavailable, fmt.Errorf("upsert vectors: %w", err))
	}
	return len(records), nil
}

// embed returns one vector per chunk, in chunk order. Any failure aborts
// the whole set.
func (s *IngestionService) embed(ctx context.Context, chunks []domain.Chunk) ([][]float32, error) {
	vectors := make([][]float32, len(chunks))
	if len(chunks) == 0 {
		return vectors, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.embedConcurrency)

	for start := 0; start < len(chunks); start += embedBatchSize {
		end := min(start+embedBatchSize, len(chunks))
		g.Go(func() error {
			texts := make([]string, 0, end-start)
			for _, c := range chunks[start:end] {
				texts = append(texts, c.Content)
			}
			batch, err := s.embedder.EmbedBatch(gctx, texts)
			if err != nil {
				return fmt.Errorf("embed chunks %d-%d: %w", start, end-1, err)
			}
			if len(batch) != len(texts) {
				return fmt.Errorf("embed chunks %d-%d: got %d vectors for %d texts", start, end-1, len(batch), len(texts))
			}
			copy(vectors[start:end], batch)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	dims := len(vectors[0])
	for i, v := range vectors {
		if len(v) == 0 || len(v) != dims {
			return nil, fmt.Errorf("chunk %d: vector has %d dimensions, want %d", i, len(v), dims)
		}
	}
	return vectors, nil
}

// fail records the failure on the document. Prior vectors are removed so
// only processed documents are ever visible to retrieval.
func (s *IngestionService) fail(
	ctx context.Context, doc *domain.Document, ingestErr *domain.IngestError, started time.Time,
) (domain.DocumentStatus, error) {
	logger.Warn("Document %s failed: %v", doc.ID, ingestErr)

	// The outcome must be persisted even if the caller's context was cancelled.
	persistCtx := context.WithoutCancel(ctx)
	if err := s.vectors.DeleteDocument(persistCtx, doc.ProjectID, doc.ID); err != nil {
		logger.Error("Document %s: remove stale vectors: %v", doc.ID, err)
	}

	doc.Status = domain.StatusFailed
	doc.FailureReason = ingestErr.Error()
	doc.ChunkCount = 0
	doc.UpdatedAt = time.Now()
	if err := s.documents.SaveDocument(persistCtx, doc); err != nil {
		logger.Error("Document %s: record failure: %v", doc.ID, err)
	}

	s.metrics.IngestFinished(string(domain.StatusFailed), kindLabel(ingestErr.Kind), 0, time.Since(started))
	return domain.StatusFailed, ingestErr
}

func kindLabel(kind error) string {
	switch {
	case errors.Is(kind, domain.ErrExtraction):
		return "extraction"
	case errors.Is(kind, domain.ErrEmbedding):
		return "embedding"
	default:
		return "store"
	}
}
