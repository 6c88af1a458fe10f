package main

import (
	"context"

	"go.uber.org/zap"

	"github.com/intentlab/fanout-cli/internal/cost"
	"github.com/intentlab/fanout-cli/internal/model"
	"github.com/intentlab/fanout-cli/internal/pipeline"
	"github.com/intentlab/fanout-cli/internal/plan"
	"github.com/intentlab/fanout-cli/internal/registry"
	"github.com/intentlab/fanout-cli/internal/resilience"
	"github.com/intentlab/fanout-cli/internal/scrape"
	"github.com/intentlab/fanout-cli/pkg/firecrawl"
	"github.com/intentlab/fanout-cli/pkg/notion"
	"github.com/intentlab/fanout-cli/pkg/textgen"
)

// fanoutEnv holds all initialized clients, the resolved cluster definitions,
// the cost ledger, and the pipeline needed by the run and serve commands.
type fanoutEnv struct {
	Pipeline  *pipeline.Pipeline
	Gen       textgen.Client
	Firecrawl firecrawl.Client
	Notion    notion.Client // nil unless configured
	Clusters  []model.ClusterDefinition
	Ledger    *cost.Ledger
}

// initFanout validates the config for mode, sets up the text-generation,
// search, and Notion clients, resolves the cluster registry, and builds the
// Pipeline.
func initFanout(ctx context.Context, mode string) (*fanoutEnv, error) {
	if err := cfg.Validate(mode); err != nil {
		return nil, err
	}

	gen, err := textgen.New(ctx, cfg.TextGen.Provider, cfg.TextGenKey())
	if err != nil {
		return nil, err
	}

	searchClient := firecrawl.NewClient(cfg.Firecrawl.APIKey, firecrawl.WithBaseURL(cfg.Firecrawl.BaseURL))

	var notionClient notion.Client
	if cfg.Notion.APIKey != "" {
		notionClient = notion.NewClient(cfg.Notion.APIKey)
	} else {
		zap.L().Debug("FANOUT_NOTION_API_KEY not set, notion integration disabled")
	}

	clusters, err := registry.Resolve(ctx, notionClient, cfg.Notion.ClustersDBID, cfg.Clusters.File)
	if err != nil {
		return nil, err
	}

	zap.L().Info("cluster definitions resolved", zap.Int("clusters", len(clusters)))

	// Scrape chain: Firecrawl primary, local readability extraction fallback.
	chain := scrape.NewChain(
		scrape.NewExcludeMatcher(cfg.Scrape.ExcludePaths),
		scrape.NewFirecrawlAdapter(searchClient),
		scrape.NewLocalScraper(),
	)

	ledger := cost.NewLedger(cost.DefaultRates())

	p := pipeline.New(gen, searchClient, chain, ledger, pipeline.Options{
		Model:                 cfg.TextGen.Model,
		MaxSearchResults:      cfg.Pipeline.MaxSearchResults,
		MinScrapableResults:   cfg.Pipeline.MinScrapableResults,
		InitialScrapeAttempts: cfg.Pipeline.InitialScrapeAttempts,
		MaxContentChars:       cfg.Pipeline.MaxContentChars,
		Concurrency:           cfg.Pipeline.Concurrency,
		Retry:                 retryPolicy(),
	})

	return &fanoutEnv{
		Pipeline:  p,
		Gen:       gen,
		Firecrawl: searchClient,
		Notion:    notionClient,
		Clusters:  clusters,
		Ledger:    ledger,
	}, nil
}

// retryPolicy maps the config retry knobs onto the shared backoff policy.
func retryPolicy() resilience.RetryConfig {
	return resilience.RetryConfig{
		MaxAttempts:    cfg.Retry.MaxRetries,
		InitialBackoff: cfg.Retry.InitialDelay,
	}
}

// synthesizer builds the per-cluster brief writer. Briefs run on the flash
// tier, which keeps their cost marginal next to the pipeline itself.
func synthesizer(gen textgen.Client, ledger *cost.Ledger) *plan.Synthesizer {
	return &plan.Synthesizer{
		Gen:    gen,
		Model:  cfg.TextGen.FlashModel,
		Retry:  retryPolicy(),
		Ledger: ledger,
	}
}
