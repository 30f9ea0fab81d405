// Package annotate attaches extracted legal entities and a readable entity
// digest to a section.
package annotate

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cognicore/lexsum/pkg/lexsum/instrument"
	"github.com/cognicore/lexsum/pkg/lexsum/internalerr"
)

// NoEntitiesDigest is the digest used when nothing was found or the annotator failed.
const NoEntitiesDigest = "No key entities identified"

// Entity is one recognized mention. The pipeline treats it as opaque.
type Entity struct {
	Type  string  `json:"type"`
	Value string  `json:"value"`
	Score float64 `json:"score,omitempty"`
}

// EntityAnnotator is the external named-entity recognizer.
type EntityAnnotator interface {
	Extract(ctx context.Context, text string) ([]Entity, error)
	Summarize(entities []Entity) string
}

// Annotation is the per-section result. Failed records that the annotator
// could not be used and the fallback digest was substituted.
type Annotation struct {
	Entities []Entity
	Digest   string
	Failed   bool
}

// SectionAnnotator wraps an EntityAnnotator so that no failure of it can
// abort section processing.
type SectionAnnotator struct {
	annotator EntityAnnotator
	timeout   time.Duration
	logger    *slog.Logger
	recorder  *instrument.Recorder
}

// Options configures a SectionAnnotator.
type Options struct {
	// Timeout bounds each Extract call; zero means no extra bound.
	Timeout  time.Duration
	Logger   *slog.Logger
	Recorder *instrument.Recorder
}

// NewSectionAnnotator creates a SectionAnnotator. A nil annotator always
// yields the no-entities digest.
func NewSectionAnnotator(a EntityAnnotator, opts Options) *SectionAnnotator {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &SectionAnnotator{
		annotator: a,
		timeout:   opts.Timeout,
		logger:    opts.Logger,
		recorder:  opts.Recorder,
	}
}

// Annotate extracts entities from content and renders their digest.
func (s *SectionAnnotator) Annotate(ctx context.Context, content string) Annotation {
	if s.annotator == nil {
		return Annotation{Digest: NoEntitiesDigest}
	}

	start := time.Now()
	entities, err := s.extract(ctx, content)
	s.recorder.ObserveCall(instrument.CallAnnotate, start)
	if err != nil {
		s.logger.Warn("entity annotation failed, continuing without entities", "error", err)
		s.recorder.Fallback(instrument.StageAnnotation)
		return Annotation{Digest: NoEntitiesDigest, Failed: true}
	}

	entities = dropBlank(entities)
	if len(entities) == 0 {
		return Annotation{Digest: NoEntitiesDigest}
	}

	digest, err := s.summarize(entities)
	if err != nil || strings.TrimSpace(digest) == "" {
		if err != nil {
			s.logger.Warn("entity digest failed", "error", err)
			s.recorder.Fallback(instrument.StageAnnotation)
		}
		digest = Digest(entities, 0)
	}
	return Annotation{Entities: entities, Digest: digest}
}

func (s *SectionAnnotator) extract(ctx context.Context, content string) (entities []Entity, err error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	type result struct {
		entities []Entity
		err      error
	}
	done := make(chan result, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- result{err: fmt.Errorf("%w: panic: %v", internalerr.ErrAnnotatorFailed, r)}
			}
		}()
		ents, err := s.annotator.Extract(ctx, content)
		done <- result{entities: ents, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %v", internalerr.ErrAnnotatorFailed, ctx.Err())
	case res := <-done:
		if res.err != nil {
			return nil, fmt.Errorf("%w: %v", internalerr.ErrAnnotatorFailed, res.err)
		}
		return res.entities, nil
	}
}

func (s *SectionAnnotator) summarize(entities []Entity) (digest string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: digest panic: %v", internalerr.ErrAnnotatorFailed, r)
		}
	}()
	return s.annotator.Summarize(entities), nil
}

func dropBlank(entities []Entity) []Entity {
	out := entities[:0:0]
	for _, e := range entities {
		if strings.TrimSpace(e.Value) == "" {
			continue
		}
		out = append(out, e)
	}
	return out
}
