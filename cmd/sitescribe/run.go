package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/amosWeiskopf/sitescribe/internal/config"
	"github.com/amosWeiskopf/sitescribe/internal/logger"
	"github.com/amosWeiskopf/sitescribe/internal/models"
	"github.com/amosWeiskopf/sitescribe/pkg/crawler"
	"github.com/amosWeiskopf/sitescribe/pkg/links"
	"github.com/amosWeiskopf/sitescribe/pkg/llm"
	"github.com/amosWeiskopf/sitescribe/pkg/output"
	"github.com/amosWeiskopf/sitescribe/pkg/pipeline"
	"github.com/amosWeiskopf/sitescribe/pkg/reporter"
)

type runOptions struct {
	configPath   string
	verbose      bool
	outputDir    string
	reportPath   string
	reportFormat string
	skipEmpty    bool
	skipEmptySet bool
}

type linkSelection struct {
	discovered []string
	filtered   []string
	unique     []string
}

// selectLinks discovers the seed's links and narrows them to unique
// same-site URLs.
func selectLinks(ctx context.Context, d crawler.LinkDiscoverer, seed string) linkSelection {
	discovered := d.DiscoverLinks(ctx, seed)
	filtered := links.FilterByDomain(discovered, seed)
	return linkSelection{
		discovered: discovered,
		filtered:   filtered,
		unique:     links.Dedupe(filtered),
	}
}

// run executes one crawl of seed and prints the outcome table to stdout.
func run(ctx context.Context, seed string, opts runOptions, stdout io.Writer) (*models.RunSummary, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if opts.outputDir != "" {
		cfg.Output.Dir = opts.outputDir
	}
	if opts.skipEmptySet {
		cfg.Output.SkipEmpty = opts.skipEmpty
	}
	if opts.verbose {
		cfg.Logging.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	log, err := logger.New(logger.Config{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		OutputPath: cfg.Logging.OutputPath,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	filename, err := links.Filename(seed)
	if err != nil {
		return nil, err
	}

	c, err := crawler.New(crawler.Options{
		UserAgent:         cfg.Crawler.UserAgent,
		Timeout:           cfg.Crawler.Timeout,
		RequestsPerSecond: cfg.Crawler.RequestsPerSecond,
		FollowRobotsTxt:   cfg.Crawler.FollowRobotsTxt,
	}, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create crawler: %w", err)
	}
	defer c.Close()

	w, err := output.Open(cfg.Output.Dir, filename)
	if err != nil {
		return nil, err
	}
	defer w.Close()

	log.Info("Starting crawl", logger.String("seed", seed), logger.String("output", w.Path()))

	sel := selectLinks(ctx, c, seed)
	log.Info("Links selected",
		logger.Int("discovered", len(sel.discovered)),
		logger.Int("same_domain", len(sel.filtered)),
		logger.Int("unique", len(sel.unique)))

	client, err := llm.New(ctx, llm.Config{
		APIKey:   cfg.LLM.APIKey,
		Endpoint: cfg.LLM.Endpoint,
		Model:    cfg.LLM.Model,
		Timeout:  cfg.LLM.Timeout,
	}, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}

	proc := pipeline.New(c, client, w, log, pipeline.Options{SkipEmpty: cfg.Output.SkipEmpty})
	summary := proc.Run(ctx, sel.unique)
	summary.Seed = seed
	summary.OutputFile = w.Path()
	summary.Discovered = len(sel.discovered)
	summary.Filtered = len(sel.filtered)

	if err := w.Close(); err != nil {
		return summary, fmt.Errorf("close output: %w", err)
	}

	log.Info("Crawl finished",
		logger.Int("succeeded", summary.Succeeded),
		logger.Int("failed", summary.Failed),
		logger.Int("skipped", summary.Skipped),
		logger.Duration("elapsed", summary.Elapsed()))

	r := reporter.New()
	tbl, err := r.Generate(summary, "table")
	if err != nil {
		return summary, err
	}
	fmt.Fprintln(stdout, tbl)

	if opts.reportPath != "" {
		report, err := r.Generate(summary, opts.reportFormat)
		if err != nil {
			return summary, fmt.Errorf("report generation failed: %w", err)
		}
		if err := os.WriteFile(opts.reportPath, []byte(report), 0o644); err != nil {
			return summary, fmt.Errorf("failed to write report: %w", err)
		}
		log.Info("Report saved", logger.String("path", opts.reportPath))
	}

	return summary, nil
}
