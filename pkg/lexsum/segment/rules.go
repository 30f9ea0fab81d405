package segment

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/cognicore/lexsum/pkg/lexsum/internalerr"
)

// Header kinds produced by the default rules and by the scanner itself.
const (
	KindNumbered = "numbered"
	KindSection  = "section"
	KindArticle  = "article"
	KindClause   = "clause"
	KindCaps     = "caps"
	KindIntro    = "intro"
	KindDocument = "document"
)

// Rule is one entry of the ordered header-recognition list.
// The first capture group, when present, is the section title.
type Rule struct {
	Name    string
	Kind    string
	Pattern *regexp.Regexp
}

// RuleSpec is the uncompiled, configuration-friendly form of a Rule.
type RuleSpec struct {
	Name    string `yaml:"name"`
	Kind    string `yaml:"kind"`
	Pattern string `yaml:"pattern"`
}

// DefaultRuleSpecs returns the built-in header patterns in priority order.
func DefaultRuleSpecs() []RuleSpec {
	return []RuleSpec{
		{Name: "numbered-heading", Kind: KindNumbered, Pattern: `^(\d+(?:\.\d+)*\.?\s*[A-Z][^.]*?)\.?\s*$`},
		{Name: "section-heading", Kind: KindSection, Pattern: `^((?i:section)\s+\d+(?:\.\d+)*\s*[^.]*?)\.?\s*$`},
		{Name: "article-heading", Kind: KindArticle, Pattern: `^((?i:article)\s+\d+(?:\.\d+)*\s*[^.]*?)\.?\s*$`},
		{Name: "clause-heading", Kind: KindClause, Pattern: `^((?i:clause)\s+\d+(?:\.\d+)*\s*[^.]*?)\.?\s*$`},
		{Name: "caps-heading", Kind: KindCaps, Pattern: `^([A-Z][A-Z\s]{3,})\s*$`},
	}
}

// DefaultRules returns the compiled built-in header patterns.
func DefaultRules() []Rule {
	rules, err := CompileRules(DefaultRuleSpecs())
	if err != nil {
		panic(err)
	}
	return rules
}

// CompileRules compiles specs in order. Order is priority.
func CompileRules(specs []RuleSpec) ([]Rule, error) {
	rules := make([]Rule, 0, len(specs))
	for i, spec := range specs {
		if strings.TrimSpace(spec.Pattern) == "" {
			return nil, fmt.Errorf("%w: header pattern %d is empty", internalerr.ErrInvalidConfig, i)
		}
		re, err := regexp.Compile(spec.Pattern)
		if err != nil {
			return nil, fmt.Errorf("%w: header pattern %q: %v", internalerr.ErrInvalidConfig, spec.Name, err)
		}
		name := spec.Name
		if name == "" {
			name = fmt.Sprintf("rule-%d", i+1)
		}
		kind := spec.Kind
		if kind == "" {
			kind = name
		}
		rules = append(rules, Rule{Name: name, Kind: kind, Pattern: re})
	}
	return rules, nil
}

// match returns the heading captured by the rule, or "" when the line is not a header.
func (r Rule) match(line string) string {
	m := r.Pattern.FindStringSubmatch(line)
	if m == nil {
		return ""
	}
	if len(m) > 1 {
		return strings.TrimSpace(m[1])
	}
	return strings.TrimSpace(m[0])
}
