package scrape

import (
	"context"

	"github.com/intentlab/fanout-cli/internal/model"
)

// Result holds a scraped page with its source.
type Result struct {
	Page   model.ScrapedPage
	Source string // e.g. "local_http", "firecrawl"
}

// Scraper fetches a single URL and returns its readable content.
type Scraper interface {
	Scrape(ctx context.Context, url string) (*Result, error)
	Name() string
	Supports(url string) bool
}
