// Package instrument records pipeline counters and call latencies with Prometheus.
package instrument

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Fallback stages.
const (
	StageAnnotation    = "annotation"
	StageSummarization = "summarization"
	StageAggregation   = "aggregation"
)

// External call names.
const (
	CallAnnotate  = "annotate"
	CallSummarize = "summarize"
	CallExecutive = "executive"
)

// Recorder holds the pipeline collectors. A nil *Recorder records nothing.
type Recorder struct {
	sections  *prometheus.CounterVec
	fallbacks *prometheus.CounterVec
	documents *prometheus.CounterVec
	calls     *prometheus.HistogramVec
}

// New creates a Recorder and registers its collectors with reg.
// A nil reg leaves the collectors unregistered.
func New(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		sections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lexsum",
			Name:      "sections_total",
			Help:      "Sections summarized, by category.",
		}, []string{"category"}),
		fallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lexsum",
			Name:      "fallbacks_total",
			Help:      "Locally recovered failures, by pipeline stage.",
		}, []string{"stage"}),
		documents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lexsum",
			Name:      "documents_total",
			Help:      "Documents processed, by outcome.",
		}, []string{"outcome"}),
		calls: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "lexsum",
			Name:      "external_call_duration_seconds",
			Help:      "Latency of annotator and summarizer calls.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
		}, []string{"call"}),
	}
	if reg != nil {
		reg.MustRegister(r.sections, r.fallbacks, r.documents, r.calls)
	}
	return r
}

// Section counts one summarized section.
func (r *Recorder) Section(category string) {
	if r == nil {
		return
	}
	r.sections.WithLabelValues(category).Inc()
}

// Fallback counts one recovered failure at stage.
func (r *Recorder) Fallback(stage string) {
	if r == nil {
		return
	}
	r.fallbacks.WithLabelValues(stage).Inc()
}

// Document counts one finished run; outcome is "ok" or an error class.
func (r *Recorder) Document(outcome string) {
	if r == nil {
		return
	}
	r.documents.WithLabelValues(outcome).Inc()
}

// ObserveCall records the duration of one external call started at start.
func (r *Recorder) ObserveCall(call string, start time.Time) {
	if r == nil {
		return
	}
	r.calls.WithLabelValues(call).Observe(time.Since(start).Seconds())
}

// Fallbacks exposes the fallback counter for stage.
func (r *Recorder) Fallbacks(stage string) prometheus.Counter {
	return r.fallbacks.WithLabelValues(stage)
}

// Sections exposes the section counter for category.
func (r *Recorder) Sections(category string) prometheus.Counter {
	return r.sections.WithLabelValues(category)
}
