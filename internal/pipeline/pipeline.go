// Package pipeline orchestrates the query fan-out stages: expansion,
// routing, and competitive profiling. Each stage degrades to annotated
// fallback output on collaborator failure, so a run always completes and
// produces a record for every input sub-query.
package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/intentlab/fanout-cli/internal/cost"
	"github.com/intentlab/fanout-cli/internal/model"
	"github.com/intentlab/fanout-cli/internal/resilience"
	"github.com/intentlab/fanout-cli/internal/scrape"
	"github.com/intentlab/fanout-cli/pkg/firecrawl"
	"github.com/intentlab/fanout-cli/pkg/textgen"
)

// Scraper fetches one URL's readable content. *scrape.Chain satisfies it.
type Scraper interface {
	Scrape(ctx context.Context, url string) (*scrape.Result, error)
}

// Options carries the tunable knobs for a pipeline run. Zero-valued fields
// fall back to the package defaults.
type Options struct {
	Model                 string
	MaxSearchResults      int
	MinScrapableResults   int
	InitialScrapeAttempts int
	MaxContentChars       int
	Concurrency           int
	Retry                 resilience.RetryConfig
}

// Pipeline runs the fan-out stages for a single query.
type Pipeline struct {
	expander *Expander
	router   *Router
	profiler *Profiler
}

// New creates a Pipeline with all collaborators wired.
func New(gen textgen.Client, search firecrawl.Client, scraper Scraper, ledger *cost.Ledger, opts Options) *Pipeline {
	return &Pipeline{
		expander: &Expander{
			Gen:    gen,
			Model:  opts.Model,
			Retry:  opts.Retry,
			Ledger: ledger,
		},
		router: &Router{
			Gen:    gen,
			Model:  opts.Model,
			Retry:  opts.Retry,
			Ledger: ledger,
		},
		profiler: &Profiler{
			Gen:                   gen,
			Search:                search,
			Scraper:               scraper,
			Model:                 opts.Model,
			Retry:                 opts.Retry,
			Ledger:                ledger,
			MaxSearchResults:      opts.MaxSearchResults,
			MinScrapableResults:   opts.MinScrapableResults,
			InitialScrapeAttempts: opts.InitialScrapeAttempts,
			MaxContentChars:       opts.MaxContentChars,
			Concurrency:           opts.Concurrency,
		},
	}
}

// Run executes expansion, routing, and profiling for one query and returns
// the run record. Stage failures are recorded on the affected items rather
// than returned; only context cancellation aborts a run.
func (p *Pipeline) Run(ctx context.Context, query, location string) (*model.Record, error) {
	log := zap.L().With(zap.String("query", query))
	log.Info("pipeline: starting fan-out run", zap.String("location", location))

	record := &model.Record{
		RunID:         uuid.New().String(),
		OriginalQuery: query,
		Location:      location,
		GeneratedAt:   time.Now().UTC(),
	}

	stage := func(name string, fn func()) error {
		start := time.Now()
		fn()
		duration := time.Since(start)
		if err := ctx.Err(); err != nil {
			log.Warn("pipeline: stage aborted",
				zap.String("stage", name),
				zap.Duration("duration", duration),
			)
			return eris.Wrapf(err, "pipeline: %s aborted", name)
		}
		log.Info("pipeline: stage complete",
			zap.String("stage", name),
			zap.Duration("duration", duration),
		)
		return nil
	}

	if err := stage("expand", func() {
		record.Expansion = p.expander.Expand(ctx, query)
	}); err != nil {
		return record, err
	}

	if err := stage("route", func() {
		record.RoutedAndProfiled = p.router.Route(ctx, record.Expansion)
	}); err != nil {
		return record, err
	}

	if err := stage("profile", func() {
		record.RoutedAndProfiled = p.profiler.Profile(ctx, record.RoutedAndProfiled, location)
	}); err != nil {
		return record, err
	}

	log.Info("pipeline: fan-out run complete",
		zap.String("run_id", record.RunID),
		zap.Int("sub_queries", len(record.RoutedAndProfiled)),
	)
	return record, nil
}

// generateJSON performs one retry-wrapped structured generation call and
// records its token usage on the ledger.
func generateJSON(ctx context.Context, gen textgen.Client, modelID string, retry resilience.RetryConfig, ledger *cost.Ledger, operation, prompt string) (string, error) {
	if gen == nil {
		return "", eris.New("pipeline: no text generation client configured")
	}
	if retry.OnRetry == nil {
		retry.OnRetry = resilience.RetryLogger("textgen", operation)
	}

	resp, err := resilience.DoVal(ctx, retry, func(ctx context.Context) (*textgen.Response, error) {
		return gen.Generate(ctx, textgen.Request{
			Model:      modelID,
			Prompt:     prompt,
			JSONOutput: true,
		})
	})
	if err != nil {
		return "", err
	}

	if ledger != nil {
		ledger.TrackUsage(modelID, resp.Usage.InputTokens, resp.Usage.OutputTokens)
	}
	return resp.Text, nil
}
