// Package metrics records finrag operational metrics with the Prometheus
// client and serves them in the text exposition format.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/custodia-labs/finrag/internal/core/ports/driven"
)

// Ensure Recorder implements the interface.
var _ driven.Recorder = (*Recorder)(nil)

const namespace = "finrag"

// Recorder holds finrag metrics on a private registry so several
// recorders can coexist in one process.
type Recorder struct {
	registry *prometheus.Registry

	questions      *prometheus.CounterVec
	toolCalls      *prometheus.CounterVec
	retrievals     *prometheus.CounterVec
	batches        *prometheus.CounterVec
	chunksIngested prometheus.Counter
	chatDuration   prometheus.Histogram
}

// NewRecorder creates and registers all metrics.
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		questions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "questions_total",
			Help:      "Questions answered, by outcome.",
		}, []string{"outcome"}),
		toolCalls: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tool_calls_total",
			Help:      "Tool invocations, by tool and whether they failed.",
		}, []string{"tool", "failed"}),
		retrievals: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "retrievals_total",
			Help:      "Searches, by whether the metadata filter fell back to unfiltered results.",
		}, []string{"fallback"}),
		batches: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ingest_batches_total",
			Help:      "Ingestion batches, by status.",
		}, []string{"status"}),
		chunksIngested: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ingest_chunks_total",
			Help:      "Chunks stored by successful ingestion batches.",
		}),
		chatDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "chat_duration_seconds",
			Help:      "Latency of generation model turns.",
			Buckets:   prometheus.ExponentialBuckets(0.25, 2, 8),
		}),
	}
}

// QuestionAnswered implements driven.Recorder.
func (r *Recorder) QuestionAnswered(outcome string) {
	r.questions.WithLabelValues(outcome).Inc()
}

// ToolInvoked implements driven.Recorder.
func (r *Recorder) ToolInvoked(tool string, failed bool) {
	r.toolCalls.WithLabelValues(tool, strconv.FormatBool(failed)).Inc()
}

// RetrievalCompleted implements driven.Recorder.
func (r *Recorder) RetrievalCompleted(fellBack bool) {
	r.retrievals.WithLabelValues(strconv.FormatBool(fellBack)).Inc()
}

// BatchIngested implements driven.Recorder.
func (r *Recorder) BatchIngested(size int, failed bool) {
	if failed {
		r.batches.WithLabelValues("failed").Inc()
		return
	}
	r.batches.WithLabelValues("ok").Inc()
	r.chunksIngested.Add(float64(size))
}

// ObserveChat implements driven.Recorder.
func (r *Recorder) ObserveChat(d time.Duration) {
	r.chatDuration.Observe(d.Seconds())
}

// Handler serves the registry for scraping.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}
