package lexsum

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/lexsum/pkg/lexsum/aggregate"
	"github.com/cognicore/lexsum/pkg/lexsum/annotate"
	"github.com/cognicore/lexsum/pkg/lexsum/classify"
	"github.com/cognicore/lexsum/pkg/lexsum/instrument"
	"github.com/cognicore/lexsum/pkg/lexsum/internalerr"
	"github.com/cognicore/lexsum/pkg/lexsum/segment"
	"github.com/cognicore/lexsum/pkg/lexsum/summarize"
)

const twoSectionContract = `1. Payment Terms
The Customer shall pay each invoice within thirty days of receipt by wire transfer.
2. Termination
Either party may terminate this Agreement on ninety days written notice to the other.`

func modelFunc(fn func(prompt string) (string, error)) summarize.Summarizer {
	return summarize.SummarizerFunc(func(ctx context.Context, prompt string, maxLength int) (string, error) {
		return fn(prompt)
	})
}

func TestAnalyzeTwoSections(t *testing.T) {
	model := modelFunc(func(prompt string) (string, error) {
		switch {
		case strings.Contains(prompt, "Section: 1. Payment Terms"):
			return "Invoices are due in thirty days.", nil
		case strings.Contains(prompt, "Section: 2. Termination"):
			return "Ninety days notice ends the deal.", nil
		}
		return "", errors.New("unexpected prompt")
	})
	engine := New(Options{Summarizer: model, Annotator: annotate.NewRuleAnnotator()})

	analysis, err := engine.AnalyzeText(context.Background(), "contract.txt", twoSectionContract)
	require.NoError(t, err)
	require.Len(t, analysis.Sections, 2)

	first, second := analysis.Sections[0], analysis.Sections[1]
	assert.Equal(t, "section_1", first.SectionID)
	assert.Equal(t, "1. Payment Terms", first.Title)
	assert.Equal(t, "payment", first.Category)
	assert.Equal(t, summarize.DefaultSuccessConfidence, first.Confidence)
	assert.Equal(t, "section_2", second.SectionID)
	assert.Equal(t, "termination", second.Category)

	assert.Equal(t, "1. Payment Terms: Invoices are due in thirty days. | 2. Termination: Ninety days notice ends the deal.",
		analysis.ExecutiveSummary)
	assert.Equal(t, aggregate.SourceNaive, analysis.ExecutiveSource)
	assert.Equal(t, 2, analysis.Stats.Sections)
	assert.Equal(t, 0, analysis.Stats.Fallbacks)
	assert.NotEmpty(t, analysis.RunID)
	assert.Equal(t, "contract.txt", analysis.DocumentName)
}

func TestAnalyzeModelAlwaysFails(t *testing.T) {
	rec := instrument.New(nil)
	model := modelFunc(func(string) (string, error) { return "", errors.New("model offline") })
	engine := New(Options{Summarizer: model, Recorder: rec})

	analysis, err := engine.AnalyzeText(context.Background(), "contract.txt", twoSectionContract)
	require.NoError(t, err)
	require.Len(t, analysis.Sections, 2)
	for _, s := range analysis.Sections {
		assert.True(t, s.Fallback)
		assert.Equal(t, summarize.DefaultFallbackConfidence, s.Confidence)
		assert.NotEmpty(t, s.Summary)
	}
	assert.Equal(t, "The Customer shall pay each invoice within thirty days of receipt by wire transfer.",
		analysis.Sections[0].Summary)
	assert.InDelta(t, summarize.DefaultFallbackConfidence, analysis.Stats.AverageConfidence, 1e-9)
	assert.Equal(t, 2, analysis.Stats.Fallbacks)
	assert.Equal(t, 2.0, testutil.ToFloat64(rec.Fallbacks(instrument.StageSummarization)))
}

func TestAnalyzeWithoutModel(t *testing.T) {
	analysis, err := New(Options{}).AnalyzeText(context.Background(), "doc", twoSectionContract)
	require.NoError(t, err)
	assert.Len(t, analysis.Sections, 2)
	assert.Equal(t, 2, analysis.Stats.Fallbacks)
	assert.Equal(t, annotate.NoEntitiesDigest, analysis.Sections[0].EntityDigest)
}

func TestAnalyzeHeaderlessDocument(t *testing.T) {
	text := "This agreement is made between the parties named below and binds them for its whole term."
	analysis, err := New(Options{}).AnalyzeText(context.Background(), "memo", text)
	require.NoError(t, err)
	require.Len(t, analysis.Sections, 1)
	assert.Equal(t, "Complete Document", analysis.Sections[0].Title)
	assert.Equal(t, "general", analysis.Sections[0].Category)
}

func TestAnalyzeIntroductionCategoryFollowsKind(t *testing.T) {
	text := "This preamble names the parties and explains the purpose of the whole agreement.\n" +
		"Introduction\n" +
		"This clause was given its own heading by a custom rule and names the context."
	rules, err := segment.CompileRules([]segment.RuleSpec{
		{Name: "intro-heading", Kind: segment.KindCaps, Pattern: `^(Introduction)$`},
	})
	require.NoError(t, err)

	engine := New(Options{Segmenter: segment.New(segment.Config{Rules: rules})})
	analysis, err := engine.AnalyzeText(context.Background(), "doc", text)
	require.NoError(t, err)
	require.Len(t, analysis.Sections, 2)

	assert.Equal(t, segment.IntroductionID, analysis.Sections[0].SectionID)
	assert.Equal(t, classify.Introduction, analysis.Sections[0].Category)
	assert.Equal(t, "section_1", analysis.Sections[1].SectionID)
	assert.Equal(t, "Introduction", analysis.Sections[1].Title)
	assert.Equal(t, classify.General, analysis.Sections[1].Category)
}

func TestAnalyzeEmptyDocument(t *testing.T) {
	engine := New(Options{})
	for _, text := range []string{"", "   \n\t ", ExtractionBanner + "\n\n"} {
		analysis, err := engine.AnalyzeText(context.Background(), "empty", text)
		assert.Nil(t, analysis)
		assert.ErrorIs(t, err, internalerr.ErrEmptyDocument)
	}
}

type failingSource struct{}

func (failingSource) Text(ctx context.Context) (string, error) {
	return "", errors.New("disk gone")
}

func TestAnalyzeSourceUnavailable(t *testing.T) {
	engine := New(Options{})
	_, err := engine.Analyze(context.Background(), Request{Name: "x", Source: failingSource{}})
	assert.ErrorIs(t, err, internalerr.ErrSourceUnavailable)

	_, err = engine.Analyze(context.Background(), Request{Name: "x"})
	assert.ErrorIs(t, err, internalerr.ErrSourceUnavailable)
}

func TestAnalyzeStripsBanner(t *testing.T) {
	analysis, err := New(Options{}).AnalyzeText(context.Background(), "doc", ExtractionBanner+"\n"+twoSectionContract)
	require.NoError(t, err)
	require.Len(t, analysis.Sections, 2)
	assert.NotContains(t, analysis.Sections[0].Summary, ExtractionBanner)
}

func TestAnalyzeExecutiveMetaSummary(t *testing.T) {
	var calls atomic.Int32
	model := modelFunc(func(prompt string) (string, error) {
		if strings.HasPrefix(prompt, "Create an executive summary") {
			calls.Add(1)
			return "A short overview.", nil
		}
		return "A long and detailed section summary that easily exceeds a tiny threshold.", nil
	})
	engine := New(Options{Summarizer: model, Aggregation: aggregate.Config{WordThreshold: 5}})

	analysis, err := engine.AnalyzeText(context.Background(), "doc", twoSectionContract)
	require.NoError(t, err)
	assert.Equal(t, "A short overview.", analysis.ExecutiveSummary)
	assert.Equal(t, aggregate.SourceModel, analysis.ExecutiveSource)
	assert.Equal(t, int32(1), calls.Load())
}

func TestAnalyzePreservesOrderUnderConcurrency(t *testing.T) {
	var b strings.Builder
	for i := 1; i <= 12; i++ {
		b.WriteString(strconv.Itoa(i) + ". Clause Heading\n")
		b.WriteString("Body text for clause " + strconv.Itoa(i) + " that is comfortably longer than fifty characters.\n")
	}
	model := modelFunc(func(prompt string) (string, error) {
		// Later sections answer first.
		if strings.Contains(prompt, "Section: 1. ") {
			time.Sleep(20 * time.Millisecond)
		}
		return "ok", nil
	})
	analysis, err := New(Options{Summarizer: model, Workers: 4}).AnalyzeText(context.Background(), "doc", b.String())
	require.NoError(t, err)
	require.Len(t, analysis.Sections, 12)
	for i, s := range analysis.Sections {
		assert.Equal(t, "section_"+strconv.Itoa(i+1), s.SectionID)
	}
}

func TestAnalyzeCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	model := modelFunc(func(string) (string, error) {
		cancel()
		return "ok", nil
	})
	analysis, err := New(Options{Summarizer: model, Workers: 1}).Analyze(ctx, Request{Name: "doc", Source: StringSource(twoSectionContract)})
	assert.Nil(t, analysis)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAnalyzeDeterministic(t *testing.T) {
	model := modelFunc(func(string) (string, error) { return "same", nil })
	engine := New(Options{Summarizer: model})
	a, err := engine.AnalyzeText(context.Background(), "doc", twoSectionContract)
	require.NoError(t, err)
	b, err := engine.AnalyzeText(context.Background(), "doc", twoSectionContract)
	require.NoError(t, err)

	assert.Equal(t, a.Sections, b.Sections)
	assert.Equal(t, a.ExecutiveSummary, b.ExecutiveSummary)
	assert.Equal(t, a.Stats, b.Stats)
	assert.NotEqual(t, a.RunID, b.RunID)
}

func TestStripBanner(t *testing.T) {
	assert.Equal(t, "body", StripBanner("  --- Extracted Text ---\n\nbody\n"))
	assert.Equal(t, "body", StripBanner("body"))
}
