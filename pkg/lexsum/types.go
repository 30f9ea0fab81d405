package lexsum

import (
	"context"
	"strings"
	"time"

	"github.com/cognicore/lexsum/pkg/lexsum/annotate"
	"github.com/cognicore/lexsum/pkg/lexsum/metrics"
)

// ExtractionBanner is the marker the upstream extraction step writes at the top of its output.
const ExtractionBanner = "--- Extracted Text ---"

// TextSource supplies the raw text of one document.
type TextSource interface {
	Text(ctx context.Context) (string, error)
}

// StringSource is a TextSource over an in-memory string.
type StringSource string

// Text implements TextSource.
func (s StringSource) Text(ctx context.Context) (string, error) {
	return string(s), nil
}

// StripBanner removes a leading extraction banner and surrounding whitespace.
func StripBanner(text string) string {
	trimmed := strings.TrimSpace(text)
	trimmed = strings.TrimPrefix(trimmed, ExtractionBanner)
	return strings.TrimSpace(trimmed)
}

// Request identifies the document to analyze.
type Request struct {
	Name   string
	Path   string
	Source TextSource
}

// SectionSummary is the summary of one section.
type SectionSummary struct {
	SectionID        string            `json:"section_id"`
	Title            string            `json:"title"`
	Category         string            `json:"section_type"`
	Summary          string            `json:"summary"`
	Entities         []annotate.Entity `json:"entities"`
	EntityDigest     string            `json:"entity_summary"`
	Confidence       float64           `json:"confidence"`
	Fallback         bool              `json:"fallback"`
	OriginalWords    int               `json:"original_length"`
	SummaryWords     int               `json:"summary_length"`
	CompressionRatio float64           `json:"compression_ratio"`
	StartLine        int               `json:"start_line"`
	EndLine          int               `json:"end_line"`
}

// DocumentAnalysis is the complete result for one document.
type DocumentAnalysis struct {
	RunID            string           `json:"run_id"`
	DocumentName     string           `json:"document_name"`
	DocumentPath     string           `json:"document_path,omitempty"`
	Sections         []SectionSummary `json:"section_summaries"`
	ExecutiveSummary string           `json:"executive_summary"`
	ExecutiveSource  string           `json:"executive_source"`
	Stats            metrics.Stats    `json:"processing_stats"`
	ProcessedAt      time.Time        `json:"processed_at"`
}

// TotalSections is the number of summarized sections.
func (d *DocumentAnalysis) TotalSections() int {
	return len(d.Sections)
}
