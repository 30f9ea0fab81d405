// Package lexsum produces hierarchical summaries of legal documents: one
// summary per recovered section plus an executive summary and quality figures.
//
// Usage:
//
//	engine := lexsum.New(lexsum.Options{Summarizer: model, Annotator: ner})
//	analysis, err := engine.AnalyzeText(ctx, "contract.txt", text)
package lexsum

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"golang.org/x/sync/errgroup"

	"github.com/cognicore/lexsum/pkg/lexsum/aggregate"
	"github.com/cognicore/lexsum/pkg/lexsum/annotate"
	"github.com/cognicore/lexsum/pkg/lexsum/classify"
	"github.com/cognicore/lexsum/pkg/lexsum/instrument"
	"github.com/cognicore/lexsum/pkg/lexsum/internalerr"
	"github.com/cognicore/lexsum/pkg/lexsum/metrics"
	"github.com/cognicore/lexsum/pkg/lexsum/segment"
	"github.com/cognicore/lexsum/pkg/lexsum/summarize"
)

// Defaults for the per-section stage.
const (
	DefaultWorkers     = 4
	DefaultCallTimeout = 30 * time.Second
)

// Engine is the summarization pipeline facade.
type Engine struct {
	segmenter  *segment.Engine
	classifier *classify.Classifier
	annotator  *annotate.SectionAnnotator
	summarizer *summarize.SectionSummarizer
	aggregator *aggregate.Aggregator
	workers    int
	logger     *slog.Logger
	recorder   *instrument.Recorder
	now        func() time.Time

	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

// Options configures an Engine. Zero values select defaults; a nil Summarizer
// makes every section use the extractive summary.
type Options struct {
	Segmenter  *segment.Engine
	Classifier *classify.Classifier
	Annotator  annotate.EntityAnnotator
	Summarizer summarize.Summarizer

	Summarization summarize.Config
	Aggregation   aggregate.Config

	// Workers bounds concurrent per-section processing.
	Workers int
	// CallTimeout bounds every external call that has no timeout of its own.
	CallTimeout time.Duration
	// AnnotationTimeout bounds each annotator call; zero uses CallTimeout.
	AnnotationTimeout time.Duration

	Logger   *slog.Logger
	Recorder *instrument.Recorder
	Now      func() time.Time
}

// New creates an Engine with the given dependencies.
func New(opts Options) *Engine {
	if opts.Segmenter == nil {
		opts.Segmenter = segment.NewDefault()
	}
	if opts.Classifier == nil {
		opts.Classifier = classify.Default()
	}
	if opts.Workers <= 0 {
		opts.Workers = DefaultWorkers
	}
	if opts.CallTimeout <= 0 {
		opts.CallTimeout = DefaultCallTimeout
	}
	if opts.AnnotationTimeout <= 0 {
		opts.AnnotationTimeout = opts.CallTimeout
	}
	if opts.Summarization.Timeout <= 0 {
		opts.Summarization.Timeout = opts.CallTimeout
	}
	if opts.Aggregation.Timeout <= 0 {
		opts.Aggregation.Timeout = opts.CallTimeout
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Engine{
		segmenter:  opts.Segmenter,
		classifier: opts.Classifier,
		annotator: annotate.NewSectionAnnotator(opts.Annotator, annotate.Options{
			Timeout:  opts.AnnotationTimeout,
			Logger:   opts.Logger,
			Recorder: opts.Recorder,
		}),
		summarizer: summarize.New(opts.Summarization, opts.Summarizer, opts.Logger, opts.Recorder),
		aggregator: aggregate.New(opts.Aggregation, opts.Summarizer, opts.Logger, opts.Recorder),
		workers:    opts.Workers,
		logger:     opts.Logger,
		recorder:   opts.Recorder,
		now:        opts.Now,
		entropy:    ulid.Monotonic(rand.Reader, 0),
	}
}

// AnalyzeText runs the pipeline over in-memory text.
func (e *Engine) AnalyzeText(ctx context.Context, name, text string) (*DocumentAnalysis, error) {
	return e.Analyze(ctx, Request{Name: name, Source: StringSource(text)})
}

// Analyze runs the full pipeline for one document. It returns either a
// complete analysis or an error; never a partial analysis.
func (e *Engine) Analyze(ctx context.Context, req Request) (*DocumentAnalysis, error) {
	analysis, err := e.analyze(ctx, req)
	switch {
	case err == nil:
		e.recorder.Document("ok")
	case errors.Is(err, internalerr.ErrEmptyDocument):
		e.recorder.Document("empty")
	case errors.Is(err, internalerr.ErrSourceUnavailable):
		e.recorder.Document("source_error")
	default:
		e.recorder.Document("cancelled")
	}
	return analysis, err
}

func (e *Engine) analyze(ctx context.Context, req Request) (*DocumentAnalysis, error) {
	if req.Source == nil {
		return nil, fmt.Errorf("%w: no text source", internalerr.ErrSourceUnavailable)
	}
	raw, err := req.Source.Text(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", internalerr.ErrSourceUnavailable, err)
	}
	text := StripBanner(raw)
	if text == "" {
		return nil, fmt.Errorf("%w: %s", internalerr.ErrEmptyDocument, displayName(req))
	}

	e.logger.Info("processing document sections", "document", displayName(req))

	sections := e.classified(e.segmenter.Segment(text))
	e.logger.Info("identified sections", "count", len(sections))

	summaries, err := e.summarizeAll(ctx, sections)
	if err != nil {
		return nil, err
	}

	points := make([]aggregate.Point, len(summaries))
	figures := make([]metrics.SectionFigures, len(summaries))
	for i, s := range summaries {
		points[i] = aggregate.Point{Title: s.Title, Summary: s.Summary}
		figures[i] = metrics.SectionFigures{
			OriginalWords:    s.OriginalWords,
			SummaryWords:     s.SummaryWords,
			CompressionRatio: s.CompressionRatio,
			Confidence:       s.Confidence,
			Fallback:         s.Fallback,
		}
	}
	exec := e.aggregator.Executive(ctx, points)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	now := e.now()
	analysis := &DocumentAnalysis{
		RunID:            e.newRunID(now),
		DocumentName:     displayName(req),
		DocumentPath:     req.Path,
		Sections:         summaries,
		ExecutiveSummary: exec.Text,
		ExecutiveSource:  exec.Source,
		Stats:            metrics.Collect(figures),
		ProcessedAt:      now,
	}
	e.logger.Info("section-wise processing completed",
		"document", analysis.DocumentName,
		"sections", analysis.TotalSections(),
		"fallbacks", analysis.Stats.Fallbacks,
		"executive_source", exec.Source)
	return analysis, nil
}

// classified returns copies of sections with their category assigned.
// The implicit leading section is always introduction, whatever the table says.
func (e *Engine) classified(sections []segment.Section) []segment.Section {
	out := make([]segment.Section, len(sections))
	for i, sec := range sections {
		switch {
		case sec.Kind == segment.KindIntro:
			sec.Category = classify.Introduction
		case sec.Category == "":
			sec.Category = e.classifier.Classify(sec.Title)
		}
		out[i] = sec
	}
	return out
}

// summarizeAll processes sections in a bounded pool, preserving order.
// Cancellation is honored between sections.
func (e *Engine) summarizeAll(ctx context.Context, sections []segment.Section) ([]SectionSummary, error) {
	results := make([]SectionSummary, len(sections))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for i, sec := range sections {
		if gctx.Err() != nil {
			break
		}
		i, sec := i, sec
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			e.logger.Info("processing section", "index", i+1, "total", len(sections), "title", sec.Title)
			results[i] = e.summarizeSection(gctx, sec)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

func (e *Engine) summarizeSection(ctx context.Context, sec segment.Section) SectionSummary {
	ann := e.annotator.Annotate(ctx, sec.Content)
	out := e.summarizer.Summarize(ctx, summarize.Request{
		SectionID:    sec.ID,
		Title:        sec.Title,
		Category:     sec.Category,
		EntityDigest: ann.Digest,
		Content:      sec.Content,
	})
	fig := metrics.Measure(sec.Content, out.Text, out.Confidence)
	e.recorder.Section(sec.Category)

	return SectionSummary{
		SectionID:        sec.ID,
		Title:            sec.Title,
		Category:         sec.Category,
		Summary:          out.Text,
		Entities:         ann.Entities,
		EntityDigest:     ann.Digest,
		Confidence:       out.Confidence,
		Fallback:         out.Fallback,
		OriginalWords:    fig.OriginalWords,
		SummaryWords:     fig.SummaryWords,
		CompressionRatio: fig.CompressionRatio,
		StartLine:        sec.StartLine,
		EndLine:          sec.EndLine,
	}
}

func (e *Engine) newRunID(now time.Time) string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(now), e.entropy).String()
}

func displayName(req Request) string {
	if name := strings.TrimSpace(req.Name); name != "" {
		return name
	}
	if req.Path != "" {
		return req.Path
	}
	return "document"
}
