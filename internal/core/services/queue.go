package services

import (
	"context"
	"sync"

	"github.com/custodia-labs/corpus/internal/core/domain"
	"github.com/custodia-labs/corpus/internal/core/ports/driving"
	"github.com/custodia-labs/corpus/internal/logger"
	"github.com/custodia-labs/corpus/internal/metrics"
)

// Ensure IngestQueue implements the interface.
var _ driving.IngestQueue = (*IngestQueue)(nil)

// IngestResult reports the outcome of one queued ingestion.
type IngestResult struct {
	DocumentID string
	Status     domain.DocumentStatus
	Err        error
}

// IngestQueue feeds document ids to a fixed pool of ingestion workers.
// Different documents are ingested in parallel; the ingestion service's
// lock table serialises repeated submissions of the same id.
type IngestQueue struct {
	ctx     context.Context
	ingest  driving.IngestionService
	jobs    chan string
	metrics *metrics.Metrics
	onDone  func(IngestResult)

	stateMu sync.RWMutex
	closed  bool

	pendingMu sync.Mutex
	pending   int
	idle      *sync.Cond

	workers sync.WaitGroup
}

// QueueOption configures an IngestQueue.
type QueueOption func(*IngestQueue)

// WithQueueMetrics records queue depth.
func WithQueueMetrics(m *metrics.Metrics) QueueOption {
	return func(q *IngestQueue) {
		q.metrics = m
	}
}

// WithResultHandler is called from the worker goroutine after each ingestion.
func WithResultHandler(fn func(IngestResult)) QueueOption {
	return func(q *IngestQueue) {
		q.onDone = fn
	}
}

// NewIngestQueue starts workers goroutines that ingest submitted documents
// using ctx. Cancelling ctx aborts in-flight ingestions.
func NewIngestQueue(ctx context.Context, ingest driving.IngestionService, workers int, opts ...QueueOption) *IngestQueue {
	if workers <= 0 {
		workers = domain.DefaultIngestWorkers
	}
	q := &IngestQueue{
		ctx:    ctx,
		ingest: ingest,
		jobs:   make(chan string, workers*4),
	}
	q.idle = sync.NewCond(&q.pendingMu)
	for _, opt := range opts {
		opt(q)
	}

	q.workers.Add(workers)
	for i := 0; i < workers; i++ {
		go q.work()
	}
	return q
}

// Submit schedules a document for ingestion. It blocks while the buffer is full.
func (q *IngestQueue) Submit(documentID string) error {
	q.stateMu.RLock()
	defer q.stateMu.RUnlock()
	if q.closed {
		return domain.ErrQueueClosed
	}

	q.pendingMu.Lock()
	q.pending++
	q.pendingMu.Unlock()
	q.metrics.QueueChanged(1)

	q.jobs <- documentID
	logger.Debug("Queued document %s", documentID)
	return nil
}

// Wait blocks until every submitted document has been ingested.
func (q *IngestQueue) Wait() {
	q.pendingMu.Lock()
	defer q.pendingMu.Unlock()
	for q.pending > 0 {
		q.idle.Wait()
	}
}

// Close stops accepting work, drains the queue and waits for the workers.
func (q *IngestQueue) Close() {
	q.stateMu.Lock()
	if q.closed {
		q.stateMu.Unlock()
		return
	}
	q.closed = true
	close(q.jobs)
	q.stateMu.Unlock()

	q.workers.Wait()
}

func (q *IngestQueue) work() {
	defer q.workers.Done()
	for id := range q.jobs {
		q.metrics.QueueChanged(-1)

		status, err := q.ingest.Ingest(q.ctx, id)
		if err != nil {
			logger.Debug("Ingest %s finished with error: %v", id, err)
		}
		if q.onDone != nil {
			q.onDone(IngestResult{DocumentID: id, Status: status, Err: err})
		}

		q.pendingMu.Lock()
		q.pending--
		if q.pending == 0 {
			q.idle.Broadcast()
		}
		q.pendingMu.Unlock()
	}
}
