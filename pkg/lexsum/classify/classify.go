// Package classify assigns a semantic category to a section from its title.
package classify

import (
	"strings"

	"github.com/cognicore/lexsum/pkg/lexsum/segment"
)

const (
	// Introduction is reserved for the synthetic leading section. Callers
	// assign it from the section kind; Classify never returns it.
	Introduction = "introduction"
	// General is the default when no keyword group matches.
	General = segment.GeneralCategory
)

// Group is a category with the keywords that select it.
type Group struct {
	Category string   `yaml:"category"`
	Keywords []string `yaml:"keywords"`
}

// DefaultGroups returns the built-in keyword table in priority order.
func DefaultGroups() []Group {
	return []Group{
		{Category: "payment", Keywords: []string{"payment", "fee", "compensation", "billing"}},
		{Category: "termination", Keywords: []string{"termination", "end", "expiry", "dissolution"}},
		{Category: "liability", Keywords: []string{"liability", "damages", "responsible", "indemnity"}},
		{Category: "confidentiality", Keywords: []string{"confidential", "proprietary", "non-disclosure"}},
		{Category: "conduct", Keywords: []string{"conduct", "behavior", "ethics", "standards"}},
		{Category: "intellectual_property", Keywords: []string{"intellectual", "property", "ip", "copyright"}},
		{Category: "force_majeure", Keywords: []string{"force majeure", "circumstances", "events"}},
		{Category: "data_protection", Keywords: []string{"data", "privacy", "protection", "gdpr"}},
	}
}

// Classifier maps titles to categories. It is immutable after construction
// and safe for concurrent use.
type Classifier struct {
	groups []Group
}

// New creates a classifier; groups are tested in the given order.
func New(groups []Group) *Classifier {
	normalized := make([]Group, 0, len(groups))
	for _, g := range groups {
		if g.Category == "" {
			continue
		}
		kws := make([]string, 0, len(g.Keywords))
		for _, kw := range g.Keywords {
			kw = strings.ToLower(strings.TrimSpace(kw))
			if kw != "" {
				kws = append(kws, kw)
			}
		}
		normalized = append(normalized, Group{Category: g.Category, Keywords: kws})
	}
	return &Classifier{groups: normalized}
}

// Default creates a classifier with DefaultGroups.
func Default() *Classifier {
	return New(DefaultGroups())
}

// Classify returns the category of the first group with a keyword contained
// in title, case-insensitively.
func (c *Classifier) Classify(title string) string {
	lower := strings.ToLower(title)
	for _, g := range c.groups {
		for _, kw := range g.Keywords {
			if strings.Contains(lower, kw) {
				return g.Category
			}
		}
	}
	return General
}
