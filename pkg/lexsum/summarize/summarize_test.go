package summarize

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/lexsum/pkg/lexsum/internalerr"
)

func fixed(text string, err error) Summarizer {
	return SummarizerFunc(func(ctx context.Context, prompt string, maxLength int) (string, error) {
		return text, err
	})
}

func TestExtractive(t *testing.T) {
	cases := []struct {
		name    string
		content string
		want    string
	}{
		{"three of four", "First clause. Second clause. Third clause. Fourth clause.", "First clause. Second clause. Third clause."},
		{"no period", "Only one sentence without a stop", "Only one sentence without a stop."},
		{"skips empty fragments", "...Alpha.. Beta . . Gamma. Delta", "Alpha. Beta. Gamma."},
		{"empty", "", ""},
		{"whitespace", "   \n ", ""},
		{"periods only", "...", "..."},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Extractive(tc.content))
		})
	}
}

func TestExtractiveDeterministic(t *testing.T) {
	content := "The Supplier warrants the goods. The warranty lasts one year. Claims must be written."
	assert.Equal(t, Extractive(content), Extractive(content))
}

func TestBuildPrompt(t *testing.T) {
	p := BuildPrompt("1. Payment Terms", "payment", "MONEY: $5", "Pay within 30 days.")
	assert.True(t, strings.HasPrefix(p, "Provide a comprehensive summary of this payment section preserving all key legal information:"))
	assert.Contains(t, p, "Section: 1. Payment Terms\n")
	assert.Contains(t, p, "Type: payment\n")
	assert.Contains(t, p, "Key Entities: MONEY: $5\n")
	assert.Contains(t, p, "Content: Pay within 30 days.")
}

func TestCall(t *testing.T) {
	ctx := context.Background()

	res := Call(ctx, fixed("  summary  ", nil), "p", 10, 0)
	require.True(t, res.OK())
	assert.Equal(t, "  summary  ", res.Text, "model output is returned as produced")

	res = Call(ctx, fixed("", errors.New("boom")), "p", 10, 0)
	assert.False(t, res.OK())
	assert.ErrorIs(t, res.Reason, internalerr.ErrSummarizerFailed)

	res = Call(ctx, fixed("   ", nil), "p", 10, 0)
	assert.False(t, res.OK(), "blank output is a failure")

	res = Call(ctx, nil, "p", 10, 0)
	assert.False(t, res.OK())

	panicky := SummarizerFunc(func(ctx context.Context, prompt string, maxLength int) (string, error) {
		panic("model crashed")
	})
	res = Call(ctx, panicky, "p", 10, 0)
	assert.False(t, res.OK())
}

func TestCallTimeout(t *testing.T) {
	slow := SummarizerFunc(func(ctx context.Context, prompt string, maxLength int) (string, error) {
		select {
		case <-time.After(time.Second):
			return "late", nil
		case <-ctx.Done():
			return "", ctx.Err()
		}
	})
	res := Call(context.Background(), slow, "p", 10, 10*time.Millisecond)
	assert.False(t, res.OK())
	assert.ErrorIs(t, res.Reason, context.DeadlineExceeded)
}

func TestCallPassesMaxLength(t *testing.T) {
	var got int
	s := SummarizerFunc(func(ctx context.Context, prompt string, maxLength int) (string, error) {
		got = maxLength
		return "ok", nil
	})
	Call(context.Background(), s, "p", 42, 0)
	assert.Equal(t, 42, got)
}

func TestFailedDefaultsReason(t *testing.T) {
	assert.ErrorIs(t, Failed(nil).Reason, internalerr.ErrSummarizerFailed)
}

func TestSectionSummarizerSuccess(t *testing.T) {
	var prompt string
	model := SummarizerFunc(func(ctx context.Context, p string, maxLength int) (string, error) {
		prompt = p
		assert.Equal(t, DefaultMaxLength, maxLength)
		return "Invoices are due in 30 days.", nil
	})
	s := New(Config{}, model, nil, nil)
	out := s.Summarize(context.Background(), Request{
		SectionID:    "section_1",
		Title:        "1. Payment Terms",
		Category:     "payment",
		EntityDigest: "DURATION: 30 days",
		Content:      "The Customer shall pay every invoice within 30 days.",
	})
	assert.Equal(t, "Invoices are due in 30 days.", out.Text)
	assert.Equal(t, DefaultSuccessConfidence, out.Confidence)
	assert.False(t, out.Fallback)
	assert.Contains(t, prompt, "this payment section")
}

func TestSectionSummarizerFallback(t *testing.T) {
	s := New(Config{FallbackConfidence: 0.5}, fixed("", errors.New("unavailable")), nil, nil)
	out := s.Summarize(context.Background(), Request{
		SectionID: "section_1",
		Content:   "One. Two. Three. Four.",
	})
	assert.True(t, out.Fallback)
	assert.Equal(t, 0.5, out.Confidence)
	assert.Equal(t, "One. Two. Three.", out.Text)
}

func TestSectionSummarizerNilModel(t *testing.T) {
	out := New(Config{}, nil, nil, nil).Summarize(context.Background(), Request{Content: "Alpha beta."})
	assert.True(t, out.Fallback)
	assert.Equal(t, DefaultFallbackConfidence, out.Confidence)
	assert.Equal(t, "Alpha beta.", out.Text)
}
