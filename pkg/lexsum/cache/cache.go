// Package cache memoizes model outputs so that re-running a document does not
// pay for identical prompts twice. Only generated text is stored, never the
// documents themselves.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"strconv"

	"github.com/cognicore/lexsum/pkg/lexsum/summarize"
)

// Store persists generated text by prompt key.
type Store interface {
	Close() error

	Get(ctx context.Context, key string) (string, bool, error)
	Put(ctx context.Context, key, text string) error
}

// Key derives the cache key for one model call.
func Key(model string, maxLength int, prompt string) string {
	h := sha256.New()
	h.Write([]byte(model))
	h.Write([]byte{0})
	h.Write([]byte(strconv.Itoa(maxLength)))
	h.Write([]byte{0})
	h.Write([]byte(prompt))
	return hex.EncodeToString(h.Sum(nil))
}

// Summarizer wraps a summarize.Summarizer with a Store. Store errors are
// logged and never fail the call; only successful outputs are stored.
type Summarizer struct {
	next   summarize.Summarizer
	store  Store
	model  string
	logger *slog.Logger
}

// NewSummarizer wraps next. model namespaces the keys so that switching
// models does not serve stale text.
func NewSummarizer(next summarize.Summarizer, store Store, model string, logger *slog.Logger) *Summarizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Summarizer{next: next, store: store, model: model, logger: logger}
}

// Generate implements summarize.Summarizer.
func (s *Summarizer) Generate(ctx context.Context, prompt string, maxLength int) (string, error) {
	key := Key(s.model, maxLength, prompt)

	text, ok, err := s.store.Get(ctx, key)
	switch {
	case err != nil:
		s.logger.Warn("summary cache read failed", "error", err)
	case ok:
		s.logger.Debug("summary cache hit", "key", key[:12])
		return text, nil
	}

	text, err = s.next.Generate(ctx, prompt, maxLength)
	if err != nil {
		return "", err
	}
	if text != "" {
		if err := s.store.Put(ctx, key, text); err != nil {
			s.logger.Warn("summary cache write failed", "error", err)
		}
	}
	return text, nil
}
