// Package aggregate combines section summaries into one executive summary.
package aggregate

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cognicore/lexsum/pkg/lexsum/instrument"
	"github.com/cognicore/lexsum/pkg/lexsum/metrics"
	"github.com/cognicore/lexsum/pkg/lexsum/summarize"
)

// Defaults for executive summary construction.
const (
	DefaultWordThreshold = 300
	DefaultMaxLength     = 250
	DefaultSeparator     = " | "
	DefaultFallback      = "Multi-section legal document covering various contractual terms, obligations, and procedures as detailed in individual section summaries."

	// NoSections is returned when there is nothing to aggregate.
	NoSections = "No sections available for executive summary."
)

// Where the executive summary came from.
const (
	SourceNaive    = "naive"
	SourceModel    = "model"
	SourceFallback = "fallback"
	SourceEmpty    = "empty"
)

// Point is one section's contribution to the executive summary.
type Point struct {
	Title   string
	Summary string
}

// Executive is the aggregated summary and how it was obtained.
type Executive struct {
	Text   string
	Source string
}

// Config configures an Aggregator.
type Config struct {
	WordThreshold int
	MaxLength     int
	Separator     string
	Fallback      string
	Timeout       time.Duration
}

func (c *Config) defaults() {
	if c.WordThreshold <= 0 {
		c.WordThreshold = DefaultWordThreshold
	}
	if c.MaxLength <= 0 {
		c.MaxLength = DefaultMaxLength
	}
	if c.Separator == "" {
		c.Separator = DefaultSeparator
	}
	if strings.TrimSpace(c.Fallback) == "" {
		c.Fallback = DefaultFallback
	}
}

// Aggregator builds executive summaries.
type Aggregator struct {
	cfg      Config
	model    summarize.Summarizer
	logger   *slog.Logger
	recorder *instrument.Recorder
}

// New creates an Aggregator. model may be nil, in which case long documents
// get the fixed fallback sentence.
func New(cfg Config, model summarize.Summarizer, logger *slog.Logger, recorder *instrument.Recorder) *Aggregator {
	cfg.defaults()
	if logger == nil {
		logger = slog.Default()
	}
	return &Aggregator{cfg: cfg, model: model, logger: logger, recorder: recorder}
}

// Join renders the naive executive summary.
func (a *Aggregator) Join(points []Point) string {
	parts := make([]string, len(points))
	for i, p := range points {
		parts[i] = p.Title + ": " + p.Summary
	}
	return strings.Join(parts, a.cfg.Separator)
}

// Executive returns the naive join when it is within the word threshold and
// otherwise asks the model for a meta-summary, once.
func (a *Aggregator) Executive(ctx context.Context, points []Point) Executive {
	if len(points) == 0 {
		return Executive{Text: NoSections, Source: SourceEmpty}
	}

	combined := a.Join(points)
	words := metrics.WordCount(combined)
	if words <= a.cfg.WordThreshold {
		return Executive{Text: combined, Source: SourceNaive}
	}

	a.logger.Debug("naive executive summary over threshold, requesting meta-summary",
		"words", words, "threshold", a.cfg.WordThreshold)

	prompt := fmt.Sprintf("Create an executive summary of this legal document based on these section summaries:\n\n%s", combined)
	start := time.Now()
	res := summarize.Call(ctx, a.model, prompt, a.cfg.MaxLength, a.cfg.Timeout)
	a.recorder.ObserveCall(instrument.CallExecutive, start)
	if res.OK() {
		return Executive{Text: res.Text, Source: SourceModel}
	}

	a.logger.Warn("executive meta-summary failed, using generic summary", "error", res.Reason)
	a.recorder.Fallback(instrument.StageAggregation)
	return Executive{Text: a.cfg.Fallback, Source: SourceFallback}
}
