// Package prometheus registers and exposes the engine's operational
// metrics.  Components receive *EngineMetrics by injection; a nil receiver
// is valid and turns every observation into a no-op, so pure library use of
// the engine carries no metrics dependency at runtime.
package prometheus

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// EngineMetrics holds all engine-level collectors.
type EngineMetrics struct {
	DocumentsScanned  prometheus.Counter
	DocumentsFailed   prometheus.Counter
	CandidatesFound   prometheus.Counter
	AlignmentsScored  *prometheus.CounterVec // outcome: accepted|rejected
	PrototypesCreated prometheus.Counter
	PrototypesMerged  prometheus.Counter
	Resolutions       *prometheus.CounterVec // outcome: defined|resolved|unresolved
	ScanDuration      prometheus.Histogram
	RunDuration       prometheus.Histogram
}

// scanBuckets cover single-document scan latency; runs over whole corpora
// get coarser buckets.
var (
	scanBuckets = []float64{.001, .005, .01, .05, .1, .5, 1, 5}
	runBuckets  = []float64{.1, .5, 1, 5, 10, 30, 60, 300, 1800}
)

// NewEngineMetrics registers all engine collectors on reg under namespace.
func NewEngineMetrics(reg prometheus.Registerer, namespace string) *EngineMetrics {
	f := promauto.With(reg)
	return &EngineMetrics{
		DocumentsScanned: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "engine", Name: "documents_scanned_total",
			Help: "Documents successfully scanned for acronym candidates.",
		}),
		DocumentsFailed: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "engine", Name: "documents_failed_total",
			Help: "Documents whose scan failed and was isolated from the run.",
		}),
		CandidatesFound: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "engine", Name: "candidates_total",
			Help: "Acronym occurrences emitted by the candidate extractor.",
		}),
		AlignmentsScored: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "engine", Name: "alignments_total",
			Help: "Alignment scoring outcomes.",
		}, []string{"outcome"}),
		PrototypesCreated: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "registry", Name: "prototypes_created_total",
			Help: "Distinct expansion prototypes created.",
		}),
		PrototypesMerged: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "registry", Name: "prototypes_merged_total",
			Help: "Occurrences merged into existing prototypes.",
		}),
		Resolutions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "engine", Name: "resolutions_total",
			Help: "Occurrence resolution outcomes.",
		}, []string{"outcome"}),
		ScanDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "engine", Name: "scan_duration_seconds",
			Help: "Per-document scan duration.", Buckets: scanBuckets,
		}),
		RunDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "engine", Name: "run_duration_seconds",
			Help: "Whole-corpus run duration.", Buckets: runBuckets,
		}),
	}
}

// ObserveAlignment records one alignment outcome; safe on a nil receiver.
func (m *EngineMetrics) ObserveAlignment(accepted bool) {
	if m == nil {
		return
	}
	outcome := "rejected"
	if accepted {
		outcome = "accepted"
	}
	m.AlignmentsScored.WithLabelValues(outcome).Inc()
}

// ObservePrototype records one registry commit; safe on a nil receiver.
func (m *EngineMetrics) ObservePrototype(created bool) {
	if m == nil {
		return
	}
	if created {
		m.PrototypesCreated.Inc()
		return
	}
	m.PrototypesMerged.Inc()
}

// ObserveResolution records one resolution outcome; safe on a nil receiver.
func (m *EngineMetrics) ObserveResolution(outcome string) {
	if m == nil {
		return
	}
	m.Resolutions.WithLabelValues(outcome).Inc()
}
