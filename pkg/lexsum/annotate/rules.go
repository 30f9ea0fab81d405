package annotate

import (
	"context"
	"regexp"
	"sort"
	"strings"
)

// Entity types recognized by RuleAnnotator's patterns.
const (
	TypeMoney    = "MONEY"
	TypeDate     = "DATE"
	TypeDuration = "DURATION"
	TypePercent  = "PERCENT"
)

// DefaultMaxPerType caps how many values of one type a digest lists.
const DefaultMaxPerType = 5

const months = `(?:January|February|March|April|May|June|July|August|September|October|November|December)`

type patternRule struct {
	typ string
	re  *regexp.Regexp
}

var defaultPatterns = []patternRule{
	{TypeMoney, regexp.MustCompile(`(?:[$€£]\s?\d[\d,]*(?:\.\d+)?(?:\s?(?:million|billion|thousand))?)|(?:\b\d[\d,]*(?:\.\d+)?\s?(?:USD|EUR|GBP|dollars|euros|pounds)\b)`)},
	{TypePercent, regexp.MustCompile(`\b\d+(?:\.\d+)?\s?(?:%|percent\b)`)},
	{TypeDate, regexp.MustCompile(`\b` + months + `\s+\d{1,2},\s+\d{4}\b|\b\d{1,2}\s+` + months + `\s+\d{4}\b|\b\d{4}-\d{2}-\d{2}\b|\b\d{1,2}/\d{1,2}/\d{2,4}\b`)},
	{TypeDuration, regexp.MustCompile(`(?i)\b(?:\d+|one|two|three|four|five|six|seven|eight|nine|ten|twelve|fifteen|thirty|sixty|ninety)\s+(?:\(\d+\)\s+)?(?:business\s+|calendar\s+|working\s+)?(?:days?|weeks?|months?|years?)\b`)},
}

// RuleAnnotator is a local, deterministic EntityAnnotator. It recognizes
// amounts, dates, durations and percentages by pattern, and named entities
// (parties, statutes, ...) from a keyword table.
type RuleAnnotator struct {
	entities   map[string]map[string][]string // type → name → keywords (lowercase)
	maxPerType int
}

// NewRuleAnnotator creates an annotator with no keyword entities.
func NewRuleAnnotator() *RuleAnnotator {
	return &RuleAnnotator{
		entities:   make(map[string]map[string][]string),
		maxPerType: DefaultMaxPerType,
	}
}

// SetMaxPerType changes the digest cap; n <= 0 restores the default.
func (a *RuleAnnotator) SetMaxPerType(n int) {
	if n <= 0 {
		n = DefaultMaxPerType
	}
	a.maxPerType = n
}

// AddEntity adds a named entity of entityType matched by any of keywords.
func (a *RuleAnnotator) AddEntity(entityType, name string, keywords []string) {
	if a.entities[entityType] == nil {
		a.entities[entityType] = make(map[string][]string)
	}
	normalized := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		if kw = strings.ToLower(strings.TrimSpace(kw)); kw != "" {
			normalized = append(normalized, kw)
		}
	}
	a.entities[entityType][name] = normalized
}

type positioned struct {
	pos    int
	entity Entity
}

// Extract implements EntityAnnotator. Entities are ordered by first position in text.
func (a *RuleAnnotator) Extract(ctx context.Context, text string) ([]Entity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var found []positioned
	for _, p := range defaultPatterns {
		for _, loc := range p.re.FindAllStringIndex(text, -1) {
			value := strings.TrimSpace(text[loc[0]:loc[1]])
			found = append(found, positioned{pos: loc[0], entity: Entity{Type: p.typ, Value: value, Score: 1}})
		}
	}

	lower := strings.ToLower(text)
	for _, typ := range sortedKeys(a.entities) {
		named := a.entities[typ]
		for _, name := range sortedKeys(named) {
			first := -1
			for _, kw := range named[name] {
				if idx := strings.Index(lower, kw); idx >= 0 && (first < 0 || idx < first) {
					first = idx
				}
			}
			if first >= 0 {
				found = append(found, positioned{pos: first, entity: Entity{Type: typ, Value: name, Score: 1}})
			}
		}
	}

	sort.SliceStable(found, func(i, j int) bool { return found[i].pos < found[j].pos })
	out := make([]Entity, len(found))
	for i, f := range found {
		out[i] = f.entity
	}
	return out, nil
}

// Summarize implements EntityAnnotator.
func (a *RuleAnnotator) Summarize(entities []Entity) string {
	return Digest(entities, a.maxPerType)
}

// Digest renders entities grouped by type, in order of first appearance,
// without duplicates, listing at most maxPerType values per type.
func Digest(entities []Entity, maxPerType int) string {
	if maxPerType <= 0 {
		maxPerType = DefaultMaxPerType
	}
	var order []string
	values := make(map[string][]string)
	seen := make(map[string]struct{})
	for _, e := range entities {
		v := strings.TrimSpace(e.Value)
		if v == "" {
			continue
		}
		typ := e.Type
		if typ == "" {
			typ = "ENTITY"
		}
		key := typ + "\x00" + strings.ToLower(v)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		if _, ok := values[typ]; !ok {
			order = append(order, typ)
			values[typ] = nil
		}
		if len(values[typ]) < maxPerType {
			values[typ] = append(values[typ], v)
		}
	}
	if len(order) == 0 {
		return NoEntitiesDigest
	}
	parts := make([]string, 0, len(order))
	for _, typ := range order {
		parts = append(parts, typ+": "+strings.Join(values[typ], ", "))
	}
	return strings.Join(parts, "; ")
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
