// Package segment recovers the section structure of plain legal text.
//
// No markup tells the engine where sections start; it scans line by line and
// treats any line matching one of its ordered header rules as the start of a
// new section.
package segment

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	// IntroductionTitle is the synthetic title of content preceding the first header.
	IntroductionTitle = "Introduction"
	// CompleteDocumentTitle is the synthetic title of the whole-document fallback.
	CompleteDocumentTitle = "Complete Document"

	IntroductionID = "section_intro"

	// GeneralCategory is assigned to the whole-document fallback.
	GeneralCategory = "general"

	DefaultMinSectionLength = 50
	DefaultMaxHeaderLength  = 100

	// KeepAllSections as MinSectionLength retains every section with non-blank content.
	KeepAllSections = -1
)

// Section is a contiguous span of document text under one detected or synthetic heading.
type Section struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	Category  string `json:"category,omitempty"`
	Kind      string `json:"kind"`
	StartLine int    `json:"start_line"`
	EndLine   int    `json:"end_line"`
}

// Config configures an Engine.
type Config struct {
	// Rules in priority order. Empty means DefaultRules.
	Rules []Rule
	// MinSectionLength is the trimmed content length a section must exceed to be
	// kept. Zero means DefaultMinSectionLength.
	MinSectionLength int
	// MaxHeaderLength bounds header candidates; longer lines are always content.
	MaxHeaderLength int
}

func (c *Config) defaults() {
	if len(c.Rules) == 0 {
		c.Rules = DefaultRules()
	}
	if c.MinSectionLength == 0 {
		c.MinSectionLength = DefaultMinSectionLength
	}
	if c.MaxHeaderLength <= 0 {
		c.MaxHeaderLength = DefaultMaxHeaderLength
	}
}

// Engine partitions raw text into sections.
type Engine struct {
	cfg Config
}

// New creates an Engine with the given configuration.
func New(cfg Config) *Engine {
	cfg.defaults()
	return &Engine{cfg: cfg}
}

// NewDefault creates an Engine with the built-in rules and thresholds.
func NewDefault() *Engine {
	return New(Config{})
}

type scanState int

const (
	noOpenSection scanState = iota
	sectionOpen
)

// openSection accumulates the body of the section being scanned.
// first and last are line indices of the first and last non-blank body line.
type openSection struct {
	title string
	kind  string
	start int
	first int
	last  int
}

type scanner struct {
	engine  *Engine
	lines   []string
	state   scanState
	current openSection
	kept    []Section
	headed  int
	headers int
}

// Segment scans text and returns the retained sections in document order.
// Non-empty text always yields at least one section. Text without any
// recognizable header, or whose sections were all discarded, becomes a single
// "Complete Document" section.
func (e *Engine) Segment(text string) []Section {
	if text == "" {
		return nil
	}

	s := &scanner{engine: e, lines: strings.Split(text, "\n")}
	for i, raw := range s.lines {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		if title, kind, ok := e.header(line); ok {
			s.onHeader(i, title, kind)
			continue
		}
		s.onContent(i)
	}
	s.close()

	if len(s.kept) == 0 || s.headers == 0 {
		return []Section{{
			ID:        "section_1",
			Title:     CompleteDocumentTitle,
			Content:   text,
			Category:  GeneralCategory,
			Kind:      KindDocument,
			StartLine: 0,
			EndLine:   len(s.lines) - 1,
		}}
	}
	return s.kept
}

// header tests line against the rules in declaration order; first match wins.
func (e *Engine) header(line string) (title, kind string, ok bool) {
	if utf8.RuneCountInString(line) > e.cfg.MaxHeaderLength {
		return "", "", false
	}
	for _, rule := range e.cfg.Rules {
		if t := rule.match(line); t != "" {
			return t, rule.Kind, true
		}
	}
	return "", "", false
}

func (s *scanner) onHeader(i int, title, kind string) {
	s.close()
	s.headers++
	s.current = openSection{title: title, kind: kind, start: i, first: -1, last: -1}
	s.state = sectionOpen
}

func (s *scanner) onContent(i int) {
	if s.state == noOpenSection {
		s.current = openSection{title: IntroductionTitle, kind: KindIntro, start: i, first: -1, last: -1}
		s.state = sectionOpen
	}
	if s.current.first < 0 {
		s.current.first = i
	}
	s.current.last = i
}

// close finalizes the open section, keeping it only above the length threshold.
func (s *scanner) close() {
	if s.state != sectionOpen {
		return
	}
	cur := s.current
	s.state = noOpenSection
	s.current = openSection{}

	if cur.first < 0 {
		return
	}
	content := strings.Join(s.lines[cur.first:cur.last+1], "\n")
	if utf8.RuneCountInString(strings.TrimSpace(content)) <= s.engine.cfg.MinSectionLength {
		return
	}

	var id string
	if cur.kind == KindIntro {
		id = IntroductionID
	} else {
		s.headed++
		id = fmt.Sprintf("section_%d", s.headed)
	}
	s.kept = append(s.kept, Section{
		ID:        id,
		Title:     cur.title,
		Content:   content,
		Kind:      cur.kind,
		StartLine: cur.start,
		EndLine:   cur.last,
	})
}
