package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/cognicore/lexsum/internal/llm"
	"github.com/cognicore/lexsum/internal/source"
	"github.com/cognicore/lexsum/pkg/lexsum"
	"github.com/cognicore/lexsum/pkg/lexsum/cache"
	"github.com/cognicore/lexsum/pkg/lexsum/config"
	"github.com/cognicore/lexsum/pkg/lexsum/instrument"
	"github.com/cognicore/lexsum/pkg/lexsum/report"
	"github.com/cognicore/lexsum/pkg/lexsum/summarize"
)

type analyzeOptions struct {
	configPath  string
	reportPath  string
	jsonPath    string
	metricsFile string
	workers     int
	offline     bool
}

func analyze(ctx context.Context, path string, opts analyzeOptions, stdout io.Writer, logger *slog.Logger) error {
	comp, err := (&config.Loader{Path: opts.configPath}).Load(ctx)
	if err != nil {
		return err
	}
	defer comp.Close()
	f := comp.File

	reg := prometheus.NewRegistry()
	recorder := instrument.New(reg)
	if opts.metricsFile != "" {
		defer func() {
			if werr := prometheus.WriteToTextfile(opts.metricsFile, reg); werr != nil {
				logger.Warn("write metrics textfile failed", "path", opts.metricsFile, "error", werr)
			}
		}()
	}

	var model summarize.Summarizer
	if !opts.offline {
		client := &llm.Client{
			BaseURL:    f.LLM.BaseURL,
			APIKey:     f.LLM.APIKey,
			Model:      f.LLM.Model,
			HTTPClient: &http.Client{Timeout: f.LLM.Timeout},
			Retry:      llm.RetryConfig{MaxAttempts: f.LLM.MaxAttempts},
			Logger:     logger,
		}
		model = client
		if comp.Cache != nil {
			model = cache.NewSummarizer(client, comp.Cache, f.LLM.Model, logger)
		}
	}

	workers := f.Pipeline.Workers
	if opts.workers > 0 {
		workers = opts.workers
	}

	engine := lexsum.New(lexsum.Options{
		Segmenter:         comp.Segmenter,
		Classifier:        comp.Classifier,
		Annotator:         comp.Annotator,
		Summarizer:        model,
		Summarization:     comp.SummarizeConfig(),
		Aggregation:       comp.AggregateConfig(),
		Workers:           workers,
		CallTimeout:       f.Pipeline.CallTimeout,
		AnnotationTimeout: f.Annotation.Timeout,
		Logger:            logger,
		Recorder:          recorder,
	})

	analysis, err := engine.Analyze(ctx, lexsum.Request{
		Name:   filepath.Base(path),
		Path:   path,
		Source: source.Open(path),
	})
	if err != nil {
		return err
	}

	if err := report.Console(stdout, analysis); err != nil {
		return err
	}

	reportPath := opts.reportPath
	if reportPath == "" {
		reportPath = defaultReportPath(path)
	}
	if err := writeFile(reportPath, analysis, report.Text); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	logger.Info("detailed report saved", "path", reportPath)

	if opts.jsonPath != "" {
		if err := writeFile(opts.jsonPath, analysis, report.JSON); err != nil {
			return fmt.Errorf("write json: %w", err)
		}
		logger.Info("json analysis saved", "path", opts.jsonPath)
	}
	return nil
}

// defaultReportPath places the report beside the input: contract.txt -> contract_SECTION_ANALYSIS.txt
func defaultReportPath(path string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + "_SECTION_ANALYSIS.txt"
}

func writeFile(path string, a *lexsum.DocumentAnalysis, render func(io.Writer, *lexsum.DocumentAnalysis) error) error {
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := render(out, a); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
