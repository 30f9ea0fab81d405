package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/cognicore/lexsum/pkg/lexsum/aggregate"
	"github.com/cognicore/lexsum/pkg/lexsum/annotate"
	"github.com/cognicore/lexsum/pkg/lexsum/classify"
	"github.com/cognicore/lexsum/pkg/lexsum/internalerr"
	"github.com/cognicore/lexsum/pkg/lexsum/segment"
	"github.com/cognicore/lexsum/pkg/lexsum/summarize"
)

// Cache drivers.
const (
	CacheNone   = "none"
	CacheMemory = "memory"
	CacheSQLite = "sqlite"
)

// File is the YAML configuration file.
type File struct {
	Segmentation   Segmentation   `yaml:"segmentation"`
	Classification Classification `yaml:"classification"`
	Annotation     Annotation     `yaml:"annotation"`
	Summarization  Summarization  `yaml:"summarization"`
	Aggregation    Aggregation    `yaml:"aggregation"`
	Pipeline       Pipeline       `yaml:"pipeline"`
	LLM            LLM            `yaml:"llm"`
	Cache          Cache          `yaml:"cache"`
}

// Segmentation configures header detection.
type Segmentation struct {
	MinSectionLength int                `yaml:"min_section_length"`
	MaxHeaderLength  int                `yaml:"max_header_length"`
	HeaderPatterns   []segment.RuleSpec `yaml:"header_patterns"`
}

// Classification configures the title keyword table.
type Classification struct {
	Groups []classify.Group `yaml:"groups"`
}

// Annotation configures the built-in rule annotator.
type Annotation struct {
	Timeout    time.Duration `yaml:"timeout"`
	MaxPerType int           `yaml:"max_per_type"`
	// Entities maps type -> canonical name -> keywords.
	Entities map[string]map[string][]string `yaml:"entities"`
	// Dictionary is an optional file of "canonical|variant|...|TYPE" lines.
	Dictionary string `yaml:"dictionary"`
}

// Summarization configures per-section summaries.
type Summarization struct {
	MaxLength          int     `yaml:"max_length"`
	SuccessConfidence  float64 `yaml:"success_confidence"`
	FallbackConfidence float64 `yaml:"fallback_confidence"`
}

// Aggregation configures the executive summary.
type Aggregation struct {
	WordThreshold   int    `yaml:"word_threshold"`
	MaxLength       int    `yaml:"max_length"`
	Separator       string `yaml:"separator"`
	FallbackSummary string `yaml:"fallback_summary"`
}

// Pipeline configures concurrency and call bounds.
type Pipeline struct {
	Workers     int           `yaml:"workers"`
	CallTimeout time.Duration `yaml:"call_timeout"`
}

// LLM configures the OpenAI-compatible summarizer endpoint.
type LLM struct {
	BaseURL     string        `yaml:"base_url"`
	Model       string        `yaml:"model"`
	APIKey      string        `yaml:"api_key"`
	Timeout     time.Duration `yaml:"timeout"`
	MaxAttempts int           `yaml:"max_attempts"`
}

// Cache configures the summary cache.
type Cache struct {
	Driver string `yaml:"driver"`
	Path   string `yaml:"path"`
}

// Default returns the built-in configuration.
func Default() *File {
	return &File{
		Segmentation: Segmentation{
			MinSectionLength: segment.DefaultMinSectionLength,
			MaxHeaderLength:  segment.DefaultMaxHeaderLength,
			HeaderPatterns:   segment.DefaultRuleSpecs(),
		},
		Classification: Classification{Groups: classify.DefaultGroups()},
		Annotation: Annotation{
			Timeout:    30 * time.Second,
			MaxPerType: annotate.DefaultMaxPerType,
		},
		Summarization: Summarization{
			MaxLength:          summarize.DefaultMaxLength,
			SuccessConfidence:  summarize.DefaultSuccessConfidence,
			FallbackConfidence: summarize.DefaultFallbackConfidence,
		},
		Aggregation: Aggregation{
			WordThreshold:   aggregate.DefaultWordThreshold,
			MaxLength:       aggregate.DefaultMaxLength,
			Separator:       aggregate.DefaultSeparator,
			FallbackSummary: aggregate.DefaultFallback,
		},
		Pipeline: Pipeline{Workers: 4, CallTimeout: 30 * time.Second},
		LLM: LLM{
			BaseURL:     "http://localhost:11434/v1",
			Model:       "llama3.2",
			Timeout:     60 * time.Second,
			MaxAttempts: 3,
		},
		Cache: Cache{Driver: CacheNone},
	}
}

// Load reads a YAML file over the defaults and validates the result.
// Keys absent from the file keep their default values.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	f := Default()
	if err := yaml.Unmarshal(data, f); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", internalerr.ErrInvalidConfig, path, err)
	}
	f.applyEnv()
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return f, nil
}

// APIKeyEnv supplies llm.api_key when the file leaves it empty.
const APIKeyEnv = "LEXSUM_LLM_API_KEY"

func (f *File) applyEnv() {
	if key := os.Getenv(APIKeyEnv); key != "" && f.LLM.APIKey == "" {
		f.LLM.APIKey = key
	}
}

// Validate checks value ranges and compiles the header patterns.
func (f *File) Validate() error {
	var problems []string
	check := func(ok bool, format string, args ...any) {
		if !ok {
			problems = append(problems, fmt.Sprintf(format, args...))
		}
	}

	check(f.Segmentation.MinSectionLength >= 0, "segmentation.min_section_length must be >= 0")
	check(f.Segmentation.MaxHeaderLength > 0, "segmentation.max_header_length must be > 0")
	if _, err := segment.CompileRules(f.Segmentation.HeaderPatterns); err != nil {
		problems = append(problems, err.Error())
	}
	for i, g := range f.Classification.Groups {
		check(strings.TrimSpace(g.Category) != "", "classification.groups[%d]: empty category", i)
	}
	check(f.Annotation.Timeout >= 0, "annotation.timeout must be >= 0")
	check(f.Summarization.MaxLength > 0, "summarization.max_length must be > 0")
	check(inUnit(f.Summarization.SuccessConfidence), "summarization.success_confidence must be in (0,1]")
	check(inUnit(f.Summarization.FallbackConfidence), "summarization.fallback_confidence must be in (0,1]")
	check(f.Aggregation.WordThreshold > 0, "aggregation.word_threshold must be > 0")
	check(f.Aggregation.MaxLength > 0, "aggregation.max_length must be > 0")
	check(f.Pipeline.Workers > 0, "pipeline.workers must be > 0")
	check(f.Pipeline.CallTimeout > 0, "pipeline.call_timeout must be > 0")
	check(f.LLM.MaxAttempts >= 0, "llm.max_attempts must be >= 0")

	switch f.Cache.Driver {
	case "", CacheNone, CacheMemory:
	case CacheSQLite:
		check(f.Cache.Path != "", "cache.path is required for the sqlite driver")
	default:
		problems = append(problems, fmt.Sprintf("cache.driver %q is not one of none, memory, sqlite", f.Cache.Driver))
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", internalerr.ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}

func inUnit(v float64) bool { return v > 0 && v <= 1 }

// DictEntry is one line of an entity dictionary.
type DictEntry struct {
	Canonical string
	Variants  []string
	Type      string
}

// LoadDict loads an entity dictionary.
// Format: canonical|variant1|variant2|TYPE
func LoadDict(path string) ([]DictEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var entries []DictEntry
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.Split(line, "|")
		if len(parts) < 2 {
			continue
		}
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}

		entries = append(entries, DictEntry{
			Canonical: parts[0],
			Variants:  parts[1 : len(parts)-1],
			Type:      parts[len(parts)-1],
		})
	}
	return entries, nil
}
