package scrape

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/intentlab/fanout-cli/internal/model"
	"github.com/intentlab/fanout-cli/pkg/firecrawl"
)

// FirecrawlAdapter wraps a Firecrawl client as a Scraper for single-page
// scrapes.
type FirecrawlAdapter struct {
	client firecrawl.Client
}

// NewFirecrawlAdapter creates a FirecrawlAdapter from a Firecrawl client.
func NewFirecrawlAdapter(client firecrawl.Client) *FirecrawlAdapter {
	return &FirecrawlAdapter{client: client}
}

// Name implements Scraper.
func (f *FirecrawlAdapter) Name() string { return "firecrawl" }

// Supports returns true. Firecrawl can attempt any URL.
func (f *FirecrawlAdapter) Supports(_ string) bool { return true }

// Scrape fetches a single URL via Firecrawl's scrape API, asking for the
// main content only.
func (f *FirecrawlAdapter) Scrape(ctx context.Context, targetURL string) (*Result, error) {
	resp, err := f.client.Scrape(ctx, firecrawl.ScrapeRequest{
		URL:             targetURL,
		Formats:         []string{"markdown"},
		OnlyMainContent: true,
	})
	if err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, eris.New("firecrawl: scrape not successful")
	}
	if resp.Data.Markdown == "" {
		return nil, eris.New("firecrawl: scrape returned no content")
	}

	pageURL := resp.Data.URL
	if pageURL == "" {
		pageURL = targetURL
	}

	return &Result{
		Page: model.ScrapedPage{
			URL:     pageURL,
			Content: resp.Data.Markdown,
		},
		Source: "firecrawl",
	}, nil
}
