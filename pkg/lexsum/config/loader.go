package config

import (
	"context"
	"fmt"

	"github.com/cognicore/lexsum/pkg/lexsum/aggregate"
	"github.com/cognicore/lexsum/pkg/lexsum/annotate"
	"github.com/cognicore/lexsum/pkg/lexsum/cache"
	"github.com/cognicore/lexsum/pkg/lexsum/cache/memstore"
	"github.com/cognicore/lexsum/pkg/lexsum/cache/sqlite"
	"github.com/cognicore/lexsum/pkg/lexsum/classify"
	"github.com/cognicore/lexsum/pkg/lexsum/segment"
	"github.com/cognicore/lexsum/pkg/lexsum/summarize"
)

// Loader loads the configuration file and constructs components
type Loader struct {
	// Path of the YAML file; empty uses Default.
	Path string
}

// Components holds the components built from one configuration
type Components struct {
	File       *File
	Segmenter  *segment.Engine
	Classifier *classify.Classifier
	Annotator  *annotate.RuleAnnotator
	// Cache is nil when caching is disabled.
	Cache cache.Store
}

// Close releases the cache store, if any.
func (c *Components) Close() error {
	if c.Cache == nil {
		return nil
	}
	return c.Cache.Close()
}

// SummarizeConfig returns the section summarizer settings.
func (c *Components) SummarizeConfig() summarize.Config {
	s := c.File.Summarization
	return summarize.Config{
		MaxLength:          s.MaxLength,
		SuccessConfidence:  s.SuccessConfidence,
		FallbackConfidence: s.FallbackConfidence,
	}
}

// AggregateConfig returns the executive summary settings.
func (c *Components) AggregateConfig() aggregate.Config {
	a := c.File.Aggregation
	return aggregate.Config{
		WordThreshold: a.WordThreshold,
		MaxLength:     a.MaxLength,
		Separator:     a.Separator,
		Fallback:      a.FallbackSummary,
	}
}

// Load reads the configuration and returns initialized components
func (l *Loader) Load(ctx context.Context) (*Components, error) {
	f := Default()
	if l.Path != "" {
		loaded, err := Load(l.Path)
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		f = loaded
	} else {
		f.applyEnv()
		if err := f.Validate(); err != nil {
			return nil, err
		}
	}

	rules, err := segment.CompileRules(f.Segmentation.HeaderPatterns)
	if err != nil {
		return nil, err
	}
	minLength := f.Segmentation.MinSectionLength
	if minLength == 0 {
		minLength = segment.KeepAllSections
	}
	comp := &Components{
		File: f,
		Segmenter: segment.New(segment.Config{
			Rules:            rules,
			MinSectionLength: minLength,
			MaxHeaderLength:  f.Segmentation.MaxHeaderLength,
		}),
		Classifier: classify.New(f.Classification.Groups),
	}

	comp.Annotator = annotate.NewRuleAnnotator()
	comp.Annotator.SetMaxPerType(f.Annotation.MaxPerType)
	for entityType, entities := range f.Annotation.Entities {
		for name, keywords := range entities {
			comp.Annotator.AddEntity(entityType, name, keywords)
		}
	}
	if f.Annotation.Dictionary != "" {
		entries, err := LoadDict(f.Annotation.Dictionary)
		if err != nil {
			return nil, fmt.Errorf("load dictionary: %w", err)
		}
		for _, e := range entries {
			keywords := append([]string{e.Canonical}, e.Variants...)
			comp.Annotator.AddEntity(e.Type, e.Canonical, keywords)
		}
	}

	switch f.Cache.Driver {
	case CacheMemory:
		comp.Cache = memstore.New()
	case CacheSQLite:
		st, err := sqlite.OpenSQLite(ctx, f.Cache.Path)
		if err != nil {
			return nil, fmt.Errorf("open cache: %w", err)
		}
		comp.Cache = st
	}

	return comp, nil
}
