// Package metrics computes per-section and document-level quality figures.
package metrics

import "strings"

// WordCount counts whitespace-separated words.
func WordCount(text string) int {
	return len(strings.Fields(text))
}

// CompressionRatio is summaryWords / originalWords, and 0 when originalWords is 0.
func CompressionRatio(originalWords, summaryWords int) float64 {
	if originalWords <= 0 {
		return 0
	}
	return float64(summaryWords) / float64(originalWords)
}

// SectionFigures are the quality figures of one summarized section.
type SectionFigures struct {
	OriginalWords    int
	SummaryWords     int
	CompressionRatio float64
	Confidence       float64
	Fallback         bool
}

// Measure computes the figures for one section.
func Measure(content, summary string, confidence float64) SectionFigures {
	orig := WordCount(content)
	sum := WordCount(summary)
	return SectionFigures{
		OriginalWords:    orig,
		SummaryWords:     sum,
		CompressionRatio: CompressionRatio(orig, sum),
		Confidence:       confidence,
	}
}

// Stats aggregates figures over a document.
type Stats struct {
	TotalOriginalWords int     `json:"total_original_words"`
	TotalSummaryWords  int     `json:"total_summary_words"`
	AverageCompression float64 `json:"average_compression"`
	AverageConfidence  float64 `json:"average_confidence"`
	Sections           int     `json:"sections"`
	Fallbacks          int     `json:"fallbacks"`
}

// Collect sums word counts and averages compression and confidence.
// Averages are 0 for an empty slice.
func Collect(figures []SectionFigures) Stats {
	var st Stats
	var compression, confidence float64
	for _, f := range figures {
		st.TotalOriginalWords += f.OriginalWords
		st.TotalSummaryWords += f.SummaryWords
		compression += f.CompressionRatio
		confidence += f.Confidence
		if f.Fallback {
			st.Fallbacks++
		}
	}
	st.Sections = len(figures)
	if n := float64(len(figures)); n > 0 {
		st.AverageCompression = compression / n
		st.AverageConfidence = confidence / n
	}
	return st
}
