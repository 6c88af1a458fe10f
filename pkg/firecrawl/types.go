package firecrawl

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/rotisserie/eris"
)

// SearchRequest is the body for POST /search.
type SearchRequest struct {
	Query    string   `json:"query"`
	Limit    int      `json:"limit,omitempty"`
	Location string   `json:"location,omitempty"`
	Sources  []string `json:"sources,omitempty"`
}

// SearchResponse is the response from POST /search.
type SearchResponse struct {
	Success bool       `json:"success"`
	Data    SearchData `json:"data"`
}

// SearchResult is one search hit.
type SearchResult struct {
	URL         string `json:"url"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
}

// SearchData normalizes the reply shapes the search endpoint has used over
// time: an object keyed by source category ({"web": [...]}), a bare array of
// result objects, or a bare array of URL strings. Whatever the wire shape,
// consumers only ever see the flat Web slice.
type SearchData struct {
	Web []SearchResult
}

// UnmarshalJSON is the single conversion point from the wire shapes to the
// normalized form. Unknown source categories are ignored.
func (d *SearchData) UnmarshalJSON(b []byte) error {
	trimmed := bytes.TrimSpace(b)
	if len(trimmed) == 0 || string(trimmed) == "null" {
		d.Web = nil
		return nil
	}

	// Wrapped object: {"web": [...], "news": [...], ...}
	if trimmed[0] == '{' {
		var wrapped struct {
			Web []SearchResult `json:"web"`
		}
		if err := json.Unmarshal(b, &wrapped); err != nil {
			return eris.Wrap(err, "firecrawl: decode wrapped search data")
		}
		d.Web = wrapped.Web
		return nil
	}

	// Bare array of result objects.
	var results []SearchResult
	if err := json.Unmarshal(b, &results); err == nil {
		d.Web = results
		return nil
	}

	// Bare array of URL strings.
	var urls []string
	if err := json.Unmarshal(b, &urls); err == nil {
		d.Web = make([]SearchResult, len(urls))
		for i, u := range urls {
			d.Web[i] = SearchResult{URL: u}
		}
		return nil
	}

	return eris.New("firecrawl: search data is not a recognized shape")
}

// URLs returns the result URLs in rank order, skipping empty entries.
func (d SearchData) URLs() []string {
	urls := make([]string, 0, len(d.Web))
	for _, r := range d.Web {
		if r.URL != "" {
			urls = append(urls, r.URL)
		}
	}
	return urls
}

// ScrapeRequest is the body for POST /scrape.
type ScrapeRequest struct {
	URL             string   `json:"url"`
	Formats         []string `json:"formats,omitempty"`
	OnlyMainContent bool     `json:"onlyMainContent"`
}

// ScrapeResponse is the response from POST /scrape.
type ScrapeResponse struct {
	Success bool     `json:"success"`
	Data    PageData `json:"data"`
}

// PageData represents a single scraped page.
type PageData struct {
	URL        string `json:"url"`
	Markdown   string `json:"markdown"`
	Title      string `json:"title"`
	StatusCode int    `json:"statusCode"`
}

// creditUsageResponse is the response from GET /team/credit-usage.
type creditUsageResponse struct {
	Success bool `json:"success"`
	Data    struct {
		RemainingCredits int `json:"remainingCredits"`
	} `json:"data"`
}

// APIError is returned when Firecrawl responds with a non-2xx status.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("firecrawl: HTTP %d: %s", e.StatusCode, e.Body)
}
