package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/lexsum/pkg/lexsum"
	"github.com/cognicore/lexsum/pkg/lexsum/annotate"
	"github.com/cognicore/lexsum/pkg/lexsum/metrics"
)

func sampleAnalysis() *lexsum.DocumentAnalysis {
	return &lexsum.DocumentAnalysis{
		RunID:        "01HZY3J5W1ABCDEFGHJKMNPQRS",
		DocumentName: "contract.txt",
		Sections: []lexsum.SectionSummary{
			{
				SectionID:     "section_1",
				Title:         "1. Payment Terms",
				Category:      "payment",
				Summary:       "Invoices are due in 30 days.",
				EntityDigest:  "DURATION: 30 days",
				Confidence:    0.95,
				OriginalWords: 40,
				SummaryWords:  6,
			},
			{
				SectionID:     "section_2",
				Title:         "2. Termination",
				Category:      "termination",
				Summary:       "Either party may end it.",
				EntityDigest:  annotate.NoEntitiesDigest,
				Confidence:    0.6,
				Fallback:      true,
				OriginalWords: 20,
				SummaryWords:  5,
			},
		},
		ExecutiveSummary: "1. Payment Terms: Invoices are due in 30 days. | 2. Termination: Either party may end it.",
		ExecutiveSource:  "naive",
		Stats: metrics.Stats{
			TotalOriginalWords: 60,
			TotalSummaryWords:  11,
			AverageCompression: 0.2,
			AverageConfidence:  0.5,
			Sections:           2,
			Fallbacks:          1,
		},
		ProcessedAt: time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Text(&buf, sampleAnalysis()))
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, strings.Repeat("=", 80)+"\nCOMPREHENSIVE LEGAL DOCUMENT ANALYSIS REPORT\n"))
	assert.Contains(t, out, "Document: contract.txt\n")
	assert.Contains(t, out, "Total Sections: 2\n")
	assert.Contains(t, out, "Average Confidence: 0.50\n")
	assert.Contains(t, out, "Average Compression: 0.20\n")
	assert.Contains(t, out, "EXECUTIVE SUMMARY\n"+strings.Repeat("-", 50)+"\n")
	assert.Contains(t, out, "\n1. 1. PAYMENT TERMS\n   Type: payment\n   Confidence: 0.95\n   Compression: 40 → 6 words\n")
	assert.Contains(t, out, "   Key Entities: DURATION: 30 days\n")
	assert.Contains(t, out, "\n2. 2. TERMINATION\n")

	// Sections appear in order.
	assert.Less(t, strings.Index(out, "PAYMENT TERMS"), strings.Index(out, "TERMINATION"))
}

func TestJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, JSON(&buf, sampleAnalysis()))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "contract.txt", decoded["document_name"])
	assert.Len(t, decoded["section_summaries"], 2)
	assert.Contains(t, buf.String(), "\n  \"run_id\"")
}

func TestConsoleOmitsEmptyEntities(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Console(&buf, sampleAnalysis()))
	out := buf.String()

	assert.Contains(t, out, "• 1. Payment Terms (payment)\n")
	assert.Contains(t, out, "Key Entities: DURATION: 30 days")
	assert.NotContains(t, out, annotate.NoEntitiesDigest)
}
