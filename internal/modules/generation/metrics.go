package generation

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds pipeline collectors. A nil *Metrics records nothing.
type Metrics struct {
	extractions        *prometheus.CounterVec
	extractionLatency  *prometheus.HistogramVec
	generations        *prometheus.CounterVec
	generationLatency  prometheus.Histogram
	transitions        *prometheus.CounterVec
	runs               *prometheus.CounterVec
	runDuration        *prometheus.HistogramVec
	degradedLabelSlots prometheus.Counter
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		extractions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pictures2pages",
			Subsystem: "generation",
			Name:      "label_extractions_total",
			Help:      "Label extraction calls, partitioned by outcome.",
		}, []string{"outcome"}),
		extractionLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "pictures2pages",
			Subsystem: "generation",
			Name:      "label_extraction_seconds",
			Help:      "Latency of label detection calls.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"outcome"}),
		generations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pictures2pages",
			Subsystem: "generation",
			Name:      "narratives_total",
			Help:      "Narrative generation calls, partitioned by kind and outcome.",
		}, []string{"kind", "outcome"}),
		generationLatency: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: "pictures2pages",
			Subsystem: "generation",
			Name:      "narrative_seconds",
			Help:      "Latency of text generation calls.",
			Buckets:   []float64{0.5, 1, 2, 4, 8, 16, 32, 64},
		}),
		transitions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pictures2pages",
			Subsystem: "pipeline",
			Name:      "transitions_total",
			Help:      "Pipeline state transitions.",
		}, []string{"to"}),
		runs: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pictures2pages",
			Subsystem: "pipeline",
			Name:      "runs_total",
			Help:      "Completed pipeline runs by kind and terminal state.",
		}, []string{"kind", "state"}),
		runDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "pictures2pages",
			Subsystem: "pipeline",
			Name:      "run_seconds",
			Help:      "End-to-end pipeline duration.",
			Buckets:   []float64{0.5, 1, 2, 4, 8, 16, 32, 64, 128},
		}, []string{"kind", "state"}),
		degradedLabelSlots: f.NewCounter(prometheus.CounterOpts{
			Namespace: "pictures2pages",
			Subsystem: "pipeline",
			Name:      "degraded_label_sets_total",
			Help:      "Label sets replaced by an empty set after a soft extraction failure.",
		}),
	}
}

func (m *Metrics) observeExtraction(outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.extractions.WithLabelValues(outcome).Inc()
	if d > 0 {
		m.extractionLatency.WithLabelValues(outcome).Observe(d.Seconds())
	}
}

func (m *Metrics) observeGeneration(kind, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.generations.WithLabelValues(kind, outcome).Inc()
	m.generationLatency.Observe(d.Seconds())
}

func (m *Metrics) observeTransition(to State) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(string(to)).Inc()
}

func (m *Metrics) observeRun(kind string, final State, d time.Duration) {
	if m == nil {
		return
	}
	m.runs.WithLabelValues(kind, string(final)).Inc()
	m.runDuration.WithLabelValues(kind, string(final)).Observe(d.Seconds())
}

func (m *Metrics) observeDegraded() {
	if m == nil {
		return
	}
	m.degradedLabelSlots.Inc()
}
