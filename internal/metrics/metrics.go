// Package metrics provides Prometheus metrics for ingestion, retrieval,
// answer synthesis and the model gateways.
//
// A nil *Metrics is valid and records nothing, so services can be
// constructed without metrics in tests.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "corpus"

// Metrics holds all collectors, registered on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	// Ingestion
	IngestTotal      *prometheus.CounterVec
	IngestDuration   prometheus.Histogram
	ChunksIndexed    prometheus.Counter
	ActiveIngestions prometheus.Gauge
	QueueDepth       prometheus.Gauge

	// Retrieval and answers
	RetrievalTotal    *prometheus.CounterVec
	RetrievalDuration prometheus.Histogram
	RetrievalResults  prometheus.Histogram
	AnswersTotal      *prometheus.CounterVec

	// Gateways
	GatewayCalls    *prometheus.CounterVec
	GatewayDuration *prometheus.HistogramVec
	BreakerState    *prometheus.GaugeVec
}

// New creates and registers all metrics on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		IngestTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ingest_total",
			Help:      "Ingestions by final status and failure kind",
		}, []string{"status", "kind"}),
		IngestDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "ingest_duration_seconds",
			Help:      "Duration of document ingestion in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12), // 10ms to ~40s
		}),
		ChunksIndexed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chunks_indexed_total",
			Help:      "Chunks written to the vector store",
		}),
		ActiveIngestions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_ingestions",
			Help:      "Ingestions currently in flight",
		}),
		QueueDepth: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "ingest_queue_depth",
			Help:      "Documents waiting in the ingest queue",
		}),

		RetrievalTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "retrieval_total",
			Help:      "Retrieval requests by outcome",
		}, []string{"outcome"}),
		RetrievalDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "retrieval_duration_seconds",
			Help:      "Duration of retrieval in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12),
		}),
		RetrievalResults: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "retrieval_results",
			Help:      "Chunks returned per retrieval",
			Buckets:   []float64{0, 1, 2, 5, 10, 20, 50, 100},
		}),
		AnswersTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "answers_total",
			Help:      "Answers by grounding and outcome",
		}, []string{"grounded", "outcome"}),

		GatewayCalls: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "gateway_calls_total",
			Help:      "Model gateway calls by gateway and outcome",
		}, []string{"gateway", "outcome"}),
		GatewayDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "gateway_duration_seconds",
			Help:      "Model gateway call latency in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
		}, []string{"gateway"}),
		BreakerState: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "gateway_breaker_open",
			Help:      "1 when the gateway circuit breaker is open",
		}, []string{"gateway"}),
	}
}

// Registry returns the registry for exposition.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// IngestStarted marks an ingestion as in flight.
func (m *Metrics) IngestStarted() {
	if m == nil {
		return
	}
	m.ActiveIngestions.Inc()
}

// IngestFinished records a completed ingestion. kind is empty on success.
func (m *Metrics) IngestFinished(status, kind string, chunks int, d time.Duration) {
	if m == nil {
		return
	}
	m.ActiveIngestions.Dec()
	m.IngestTotal.WithLabelValues(status, kind).Inc()
	m.IngestDuration.Observe(d.Seconds())
	if chunks > 0 {
		m.ChunksIndexed.Add(float64(chunks))
	}
}

// QueueChanged adjusts the ingest queue depth.
func (m *Metrics) QueueChanged(delta int) {
	if m == nil {
		return
	}
	m.QueueDepth.Add(float64(delta))
}

// RecordRetrieval records a retrieval outcome.
func (m *Metrics) RecordRetrieval(results int, err error, d time.Duration) {
	if m == nil {
		return
	}
	outcome := "ok"
	switch {
	case err != nil:
		outcome = "error"
	case results == 0:
		outcome = "empty"
	}
	m.RetrievalTotal.WithLabelValues(outcome).Inc()
	m.RetrievalDuration.Observe(d.Seconds())
	if err == nil {
		m.RetrievalResults.Observe(float64(results))
	}
}

// RecordAnswer records an answer outcome.
func (m *Metrics) RecordAnswer(grounded bool, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.AnswersTotal.WithLabelValues(strconv.FormatBool(grounded), outcome).Inc()
}

// RecordGatewayCall records one call to a model gateway.
func (m *Metrics) RecordGatewayCall(gateway string, err error, d time.Duration) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.GatewayCalls.WithLabelValues(gateway, outcome).Inc()
	m.GatewayDuration.WithLabelValues(gateway).Observe(d.Seconds())
}

// SetBreakerOpen records whether a gateway's circuit breaker is open.
func (m *Metrics) SetBreakerOpen(gateway string, open bool) {
	if m == nil {
		return
	}
	v := 0.0
	if open {
		v = 1
	}
	m.BreakerState.WithLabelValues(gateway).Set(v)
}
