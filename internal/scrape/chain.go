// Package scrape provides chained web scraping for search-result content
// profiling. Firecrawl runs first for fidelity; a free local extractor
// picks up pages Firecrawl cannot fetch.
package scrape

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Chain tries scrapers in priority order, returning the first success.
type Chain struct {
	exclude  *ExcludeMatcher
	scrapers []Scraper
}

// NewChain creates a Chain with the given exclude matcher and scrapers.
// Scrapers are tried in order; the first successful result is returned.
func NewChain(exclude *ExcludeMatcher, scrapers ...Scraper) *Chain {
	return &Chain{
		exclude:  exclude,
		scrapers: scrapers,
	}
}

// Scrape tries each scraper in order for a single URL.
// Returns the first successful result, or an error if all fail. An
// excluded URL errors without touching the network, so callers count it
// like any other failed attempt.
func (c *Chain) Scrape(ctx context.Context, targetURL string) (*Result, error) {
	if c.exclude.IsExcluded(targetURL) {
		return nil, eris.Errorf("scrape: url excluded: %s", targetURL)
	}

	var lastErr error
	for _, s := range c.scrapers {
		if !s.Supports(targetURL) {
			continue
		}
		result, err := s.Scrape(ctx, targetURL)
		if err == nil && result != nil {
			return result, nil
		}
		if err != nil {
			zap.L().Debug("scrape: scraper failed, trying next",
				zap.String("scraper", s.Name()),
				zap.String("url", targetURL),
				zap.Error(err),
			)
			lastErr = err
		}
	}
	if lastErr != nil {
		return nil, eris.Wrap(lastErr, "scrape: all scrapers failed")
	}
	return nil, eris.Errorf("scrape: no suitable scraper for url: %s", targetURL)
}
