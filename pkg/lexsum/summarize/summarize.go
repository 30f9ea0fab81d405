// Package summarize turns one section into a summary, through an external
// Summarizer when it cooperates and a local extractive summary when it does not.
package summarize

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cognicore/lexsum/pkg/lexsum/instrument"
	"github.com/cognicore/lexsum/pkg/lexsum/internalerr"
)

// Defaults for section summarization.
const (
	DefaultMaxLength          = 200
	DefaultSuccessConfidence  = 0.95
	DefaultFallbackConfidence = 0.6
)

// Summarizer is the external text-generation model.
// A failed call must return a non-nil error; an empty string is not a failure signal.
type Summarizer interface {
	Generate(ctx context.Context, prompt string, maxLength int) (string, error)
}

// SummarizerFunc adapts a function to Summarizer.
type SummarizerFunc func(ctx context.Context, prompt string, maxLength int) (string, error)

// Generate implements Summarizer.
func (f SummarizerFunc) Generate(ctx context.Context, prompt string, maxLength int) (string, error) {
	return f(ctx, prompt, maxLength)
}

// Result is the outcome of one model call: either text or the reason it failed.
type Result struct {
	Text   string
	Reason error
}

// Success wraps generated text.
func Success(text string) Result { return Result{Text: text} }

// Failed wraps the reason a call produced no usable text.
func Failed(reason error) Result {
	if reason == nil {
		reason = internalerr.ErrSummarizerFailed
	}
	return Result{Reason: reason}
}

// OK reports whether the call produced usable text.
func (r Result) OK() bool { return r.Reason == nil }

// Call invokes s once, bounded by timeout when positive. Errors, timeouts,
// panics and blank output all become a Failed result.
func Call(ctx context.Context, s Summarizer, prompt string, maxLength int, timeout time.Duration) Result {
	if s == nil {
		return Failed(fmt.Errorf("%w: no summarizer configured", internalerr.ErrSummarizerFailed))
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	done := make(chan Result, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- Failed(fmt.Errorf("%w: panic: %v", internalerr.ErrSummarizerFailed, r))
			}
		}()
		text, err := s.Generate(ctx, prompt, maxLength)
		switch {
		case err != nil:
			done <- Failed(fmt.Errorf("%w: %w", internalerr.ErrSummarizerFailed, err))
		case strings.TrimSpace(text) == "":
			done <- Failed(fmt.Errorf("%w: empty output", internalerr.ErrSummarizerFailed))
		default:
			done <- Success(text)
		}
	}()

	select {
	case <-ctx.Done():
		return Failed(fmt.Errorf("%w: %w", internalerr.ErrSummarizerFailed, ctx.Err()))
	case res := <-done:
		return res
	}
}

// BuildPrompt renders the enhanced section prompt.
func BuildPrompt(title, category, digest, content string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Provide a comprehensive summary of this %s section preserving all key legal information:\n\n", category)
	fmt.Fprintf(&b, "Section: %s\n", title)
	fmt.Fprintf(&b, "Type: %s\n", category)
	fmt.Fprintf(&b, "Key Entities: %s\n\n", digest)
	fmt.Fprintf(&b, "Content: %s", content)
	return b.String()
}

// Extractive returns the first three non-empty sentence fragments of content,
// joined with ". " and terminated by a period. Content without any fragment
// yields its own trimmed text, so empty content yields "".
func Extractive(content string) string {
	var picked []string
	for _, frag := range strings.Split(content, ".") {
		frag = strings.TrimSpace(frag)
		if frag == "" {
			continue
		}
		picked = append(picked, frag)
		if len(picked) == 3 {
			break
		}
	}
	if len(picked) == 0 {
		return strings.TrimSpace(content)
	}
	return strings.Join(picked, ". ") + "."
}

// Config configures a SectionSummarizer.
type Config struct {
	MaxLength          int
	SuccessConfidence  float64
	FallbackConfidence float64
	// Timeout bounds each model call; zero means no extra bound.
	Timeout time.Duration
}

func (c *Config) defaults() {
	if c.MaxLength <= 0 {
		c.MaxLength = DefaultMaxLength
	}
	if c.SuccessConfidence <= 0 {
		c.SuccessConfidence = DefaultSuccessConfidence
	}
	if c.FallbackConfidence <= 0 {
		c.FallbackConfidence = DefaultFallbackConfidence
	}
}

// Request carries what the prompt needs to know about one section.
type Request struct {
	SectionID    string
	Title        string
	Category     string
	EntityDigest string
	Content      string
}

// Outcome is the summary of one section.
type Outcome struct {
	Text       string
	Confidence float64
	Fallback   bool
}

// SectionSummarizer produces section summaries.
type SectionSummarizer struct {
	cfg      Config
	model    Summarizer
	logger   *slog.Logger
	recorder *instrument.Recorder
}

// New creates a SectionSummarizer. A nil model forces the extractive path.
func New(cfg Config, model Summarizer, logger *slog.Logger, recorder *instrument.Recorder) *SectionSummarizer {
	cfg.defaults()
	if logger == nil {
		logger = slog.Default()
	}
	return &SectionSummarizer{cfg: cfg, model: model, logger: logger, recorder: recorder}
}

// Summarize asks the model for a summary and falls back to Extractive on any failure.
func (s *SectionSummarizer) Summarize(ctx context.Context, req Request) Outcome {
	prompt := BuildPrompt(req.Title, req.Category, req.EntityDigest, req.Content)

	start := time.Now()
	res := Call(ctx, s.model, prompt, s.cfg.MaxLength, s.cfg.Timeout)
	s.recorder.ObserveCall(instrument.CallSummarize, start)
	if res.OK() {
		return Outcome{Text: res.Text, Confidence: s.cfg.SuccessConfidence}
	}

	level := slog.LevelWarn
	if errors.Is(res.Reason, context.Canceled) {
		level = slog.LevelDebug
	}
	s.logger.Log(ctx, level, "section summarization failed, using extractive summary",
		"section", req.SectionID, "error", res.Reason)
	s.recorder.Fallback(instrument.StageSummarization)
	return Outcome{
		Text:       Extractive(req.Content),
		Confidence: s.cfg.FallbackConfidence,
		Fallback:   true,
	}
}
