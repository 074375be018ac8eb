// Package pipeline runs each discovered link through render, reformat and
// append, one at a time, and accounts for every outcome.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/amosWeiskopf/sitescribe/internal/logger"
	"github.com/amosWeiskopf/sitescribe/internal/models"
)

// Renderer fetches a page and returns its text content.
type Renderer interface {
	Render(ctx context.Context, pageURL string) (*models.Page, error)
}

// Reformatter rewrites raw text as Markdown.
type Reformatter interface {
	Reformat(ctx context.Context, text string) (string, error)
}

// Sink receives finished entries.
type Sink interface {
	WriteEntry(pageURL, markdown string) (int, error)
}

// Options tunes the processor.
type Options struct {
	// SkipEmpty records empty reformat results as skipped instead of
	// appending an empty block.
	SkipEmpty bool
}

// Processor is the per-link orchestrator.
type Processor struct {
	renderer    Renderer
	reformatter Reformatter
	sink        Sink
	logger      logger.Logger
	opts        Options
	now         func() time.Time
}

// New wires a Processor. A nil logger discards output.
func New(renderer Renderer, reformatter Reformatter, sink Sink, log logger.Logger, opts Options) *Processor {
	if log == nil {
		log = logger.NewNop()
	}
	return &Processor{
		renderer:    renderer,
		reformatter: reformatter,
		sink:        sink,
		logger:      log,
		opts:        opts,
		now:         time.Now,
	}
}

// Run processes links sequentially. A failing link is recorded and the loop
// moves on; only a cancelled context stops it early, in which case the
// remaining links are recorded as skipped.
func (p *Processor) Run(ctx context.Context, links []string) *models.RunSummary {
	summary := &models.RunSummary{
		RunID:     uuid.NewString(),
		Unique:    len(links),
		StartedAt: p.now().UTC(),
		Outcomes:  make([]models.LinkOutcome, 0, len(links)),
	}
	log := p.logger.With(logger.String("run_id", summary.RunID))

	for i, link := range links {
		if err := ctx.Err(); err != nil {
			log.Warn("Run interrupted", logger.Int("remaining", len(links)-i), logger.Error(err))
			for _, rest := range links[i:] {
				summary.Record(models.LinkOutcome{URL: rest, Status: models.StatusSkipped, Reason: "interrupted"})
			}
			break
		}

		log.Info("Processing", logger.String("url", link), logger.Int("index", i+1), logger.Int("total", len(links)))
		outcome := p.Process(ctx, link)
		summary.Record(outcome)

		switch outcome.Status {
		case models.StatusSucceeded:
			log.Info("Saved content", logger.String("url", link), logger.Int("bytes", outcome.Bytes))
		case models.StatusSkipped:
			log.Info("Skipped", logger.String("url", link), logger.String("reason", outcome.Reason))
		case models.StatusFailed:
			log.Error("Failed to process", logger.String("url", link), logger.String("reason", outcome.Reason))
		}
	}

	summary.FinishedAt = p.now().UTC()
	return summary
}

// Process handles a single link and never panics on collaborator failure.
func (p *Processor) Process(ctx context.Context, link string) models.LinkOutcome {
	start := p.now()
	outcome := models.LinkOutcome{URL: link}
	fail := func(stage string, err error) models.LinkOutcome {
		outcome.Status = models.StatusFailed
		outcome.Reason = fmt.Sprintf("%s: %v", stage, err)
		outcome.Duration = p.now().Sub(start)
		return outcome
	}

	page, err := p.renderer.Render(ctx, link)
	if err != nil {
		return fail("render", err)
	}

	markdown, err := p.reformatter.Reformat(ctx, page.Markdown)
	if err != nil {
		return fail("reformat", err)
	}

	if markdown == "" && p.opts.SkipEmpty {
		outcome.Status = models.StatusSkipped
		outcome.Reason = "empty reformat result"
		outcome.Duration = p.now().Sub(start)
		return outcome
	}

	n, err := p.sink.WriteEntry(link, markdown)
	if err != nil {
		return fail("write", err)
	}

	outcome.Status = models.StatusSucceeded
	outcome.Bytes = n
	outcome.Duration = p.now().Sub(start)
	return outcome
}
