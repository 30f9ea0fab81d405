// Package report renders a DocumentAnalysis as a text report, JSON, or a short
// console view.
package report

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/cognicore/lexsum/pkg/lexsum"
	"github.com/cognicore/lexsum/pkg/lexsum/annotate"
)

var (
	banner = strings.Repeat("=", 80)
	rule   = strings.Repeat("-", 50)
)

// Text writes the detailed section-by-section report.
func Text(w io.Writer, a *lexsum.DocumentAnalysis) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintln(bw, banner)
	fmt.Fprintln(bw, "COMPREHENSIVE LEGAL DOCUMENT ANALYSIS REPORT")
	fmt.Fprintln(bw, banner)
	fmt.Fprintln(bw)

	fmt.Fprintf(bw, "Document: %s\n", a.DocumentName)
	fmt.Fprintf(bw, "Run ID: %s\n", a.RunID)
	fmt.Fprintf(bw, "Total Sections: %d\n", a.TotalSections())
	fmt.Fprintf(bw, "Average Confidence: %.2f\n", a.Stats.AverageConfidence)
	fmt.Fprintf(bw, "Average Compression: %.2f\n", a.Stats.AverageCompression)
	fmt.Fprintf(bw, "Words: %d → %d\n", a.Stats.TotalOriginalWords, a.Stats.TotalSummaryWords)
	if a.Stats.Fallbacks > 0 {
		fmt.Fprintf(bw, "Extractive Fallbacks: %d\n", a.Stats.Fallbacks)
	}
	fmt.Fprintln(bw)

	fmt.Fprintln(bw, "EXECUTIVE SUMMARY")
	fmt.Fprintln(bw, rule)
	fmt.Fprintln(bw, a.ExecutiveSummary)
	fmt.Fprintln(bw)

	fmt.Fprintln(bw, "SECTION-BY-SECTION ANALYSIS")
	fmt.Fprintln(bw, rule)
	for i, s := range a.Sections {
		fmt.Fprintf(bw, "\n%d. %s\n", i+1, strings.ToUpper(s.Title))
		fmt.Fprintf(bw, "   Type: %s\n", s.Category)
		fmt.Fprintf(bw, "   Confidence: %.2f\n", s.Confidence)
		fmt.Fprintf(bw, "   Compression: %d → %d words\n", s.OriginalWords, s.SummaryWords)
		fmt.Fprintf(bw, "   Key Entities: %s\n", s.EntityDigest)
		fmt.Fprintf(bw, "   Summary: %s\n", s.Summary)
	}
	return bw.Flush()
}

// JSON writes the structured analysis, indented.
func JSON(w io.Writer, a *lexsum.DocumentAnalysis) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(a)
}

// Console writes the short view: executive summary and one bullet per section.
func Console(w io.Writer, a *lexsum.DocumentAnalysis) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintln(bw, "SECTION-WISE ANALYSIS RESULTS:")
	fmt.Fprintf(bw, "Document: %s\n", a.DocumentName)
	fmt.Fprintf(bw, "Sections: %d\n", a.TotalSections())
	fmt.Fprintf(bw, "Average Confidence: %.2f\n", a.Stats.AverageConfidence)

	fmt.Fprintln(bw, "\nEXECUTIVE SUMMARY:")
	fmt.Fprintln(bw, a.ExecutiveSummary)

	fmt.Fprintln(bw, "\nINDIVIDUAL SECTIONS:")
	for _, s := range a.Sections {
		fmt.Fprintf(bw, "\n• %s (%s)\n", s.Title, s.Category)
		fmt.Fprintf(bw, "  %s\n", s.Summary)
		if s.EntityDigest != "" && s.EntityDigest != annotate.NoEntitiesDigest {
			fmt.Fprintf(bw, "  Key Entities: %s\n", s.EntityDigest)
		}
	}
	return bw.Flush()
}
