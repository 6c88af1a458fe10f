package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/intentlab/fanout-cli/internal/cost"
	"github.com/intentlab/fanout-cli/internal/model"
	"github.com/intentlab/fanout-cli/internal/resilience"
	"github.com/intentlab/fanout-cli/internal/scrape"
	"github.com/intentlab/fanout-cli/pkg/firecrawl"
	"github.com/intentlab/fanout-cli/pkg/textgen"
)

// Defaults for the profiling stage knobs, applied when the corresponding
// Profiler field is zero.
const (
	DefaultMaxSearchResults      = 10
	DefaultMinScrapableResults   = 2
	DefaultInitialScrapeAttempts = 3
	DefaultMaxContentChars       = 12000
	DefaultConcurrency           = 4
)

const profilePrompt = `You are a world-class SEO and Content Strategist specializing in Generative Engine Optimization (GEO). Your task is to analyze the content of the top-ranking web pages for a given search query and synthesize an "ideal content profile" that would be competitive and likely to rank.

**Search Query:** "%s"
**Target Location:** %s

**Analysis Context (Content from Top %d Ranking Pages):**
` + "```json\n%s\n```" + `

**Your Task:**
Based *only* on the provided context from the top-ranking pages, identify their common strengths and define the ideal content profile for a new piece of content intended to outperform them. The profile must be based on these six criteria:

1. **extractability**: Based on the successful structures in the context, what is the best format? (e.g., "A mix of H2/H3 sections for key questions, a data table comparing features, and a final summary checklist.")
2. **evidence_density**: What kind of specific, fact-rich information do these pages provide? (e.g., "High. They consistently cite specific statistics, include dollar amounts, and reference named experts.")
3. **scope_clarity**: How do the top pages define their audience and applicability? (e.g., "They all explicitly state 'for beginners' and include a 'who this is for' section.")
4. **authority_signals**: What common sources, experts, or data points do they reference to build trust? (e.g., "Frequent mentions of government sources, university studies, and named industry professionals.")
5. **freshness**: What is the required recency of the information based on the content? (e.g., "The content includes market data and product models from the current year, indicating high freshness is required.")
6. **target_keywords_and_phrasings**: Which keywords and phrasings do the top pages target that the new content must also cover? Provide an array of strings.

**Instructions:**
- You MUST return the output as a single, valid JSON object.
- The object must contain a single key: "ideal_content_profile".
- The value must be an object with the six criteria above as its keys, written exactly as shown (lower-case with underscores).`

// Profiler runs the competitive profiling stage: for each routed sub-query
// it searches the web, scrapes top results to a threshold, and synthesizes
// the ideal content profile from the scraped pages.
type Profiler struct {
	Gen     textgen.Client
	Search  firecrawl.Client
	Scraper Scraper
	Model   string
	Retry   resilience.RetryConfig
	Ledger  *cost.Ledger

	// Zero values fall back to the package defaults.
	MaxSearchResults      int
	MinScrapableResults   int
	InitialScrapeAttempts int
	MaxContentChars       int
	Concurrency           int
}

// Profile augments each routed sub-query with its ideal content profile.
// Items run on a bounded worker pool; one item's failure never aborts the
// rest, and output order matches input order.
func (p *Profiler) Profile(ctx context.Context, routed []model.RoutedSubQuery, location string) []model.RoutedSubQuery {
	if len(routed) == 0 {
		zap.L().Warn("pipeline: no routed sub-queries to profile")
		return routed
	}

	out := make([]model.RoutedSubQuery, len(routed))
	copy(out, routed)

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency())
	for i := range out {
		g.Go(func() error {
			if out[i].SubQuery == "" {
				return nil
			}
			out[i].IdealContentProfile = p.profileOne(gCtx, out[i].SubQuery, location)
			return nil
		})
	}
	_ = g.Wait()

	return out
}

// profileOne runs search, scrape-to-threshold, and synthesis for a single
// sub-query. Every failure path returns an error profile instead of nil.
func (p *Profiler) profileOne(ctx context.Context, subQuery, location string) *model.ContentProfile {
	log := zap.L().With(zap.String("sub_query", subQuery))
	log.Info("pipeline: profiling sub-query")

	urls, err := p.searchTopURLs(ctx, subQuery, location)
	if err != nil {
		log.Error("pipeline: search failed", zap.Error(err))
		return model.ErrorProfile(err.Error())
	}
	if len(urls) == 0 {
		log.Warn("pipeline: no search results for sub-query")
		return model.ErrorProfile("no search results found to analyze")
	}

	pages := p.scrapeToThreshold(ctx, urls)
	if len(pages) == 0 {
		log.Warn("pipeline: no search results could be scraped")
		return model.ErrorProfile("could not scrape top search results")
	}

	profile, err := p.synthesize(ctx, subQuery, location, pages)
	if err != nil {
		log.Error("pipeline: profile synthesis failed", zap.Error(err))
		return model.ErrorProfile(err.Error())
	}

	log.Info("pipeline: profile complete", zap.Int("pages_analyzed", len(pages)))
	return profile
}

// searchTopURLs runs the web search for a sub-query and returns result URLs
// in rank order. The sub-query is wrapped in double quotes for exact-phrase
// matching.
func (p *Profiler) searchTopURLs(ctx context.Context, subQuery, location string) ([]string, error) {
	req := firecrawl.SearchRequest{
		Query:    `"` + subQuery + `"`,
		Limit:    p.maxSearchResults(),
		Location: location,
	}

	resp, err := resilience.DoVal(ctx, p.retryFor("firecrawl", "search"), func(ctx context.Context) (*firecrawl.SearchResponse, error) {
		return p.Search.Search(ctx, req)
	})
	if err != nil {
		return nil, err
	}
	return resp.Data.URLs(), nil
}

// scrapeToThreshold implements the bounded widening scrape loop. Starting
// with the first InitialScrapeAttempts URLs, it scrapes not-yet-attempted
// URLs in search order, widening the per-pass budget by one whenever a pass
// ends below MinScrapableResults, until the threshold is met or the URL
// budget is exhausted.
func (p *Profiler) scrapeToThreshold(ctx context.Context, urls []string) []model.ScrapedPage {
	maxResults := p.maxSearchResults()
	minScrapable := p.minScrapableResults()
	if len(urls) > maxResults {
		urls = urls[:maxResults]
	}

	var scraped []model.ScrapedPage
	attempted := make(map[string]bool, len(urls))

	for count := p.initialScrapeAttempts(); count <= maxResults; count++ {
		batch := nextUnattempted(urls, attempted, count)
		if len(batch) == 0 {
			break
		}
		for _, u := range batch {
			attempted[u] = true
			page, err := p.scrapeOne(ctx, u)
			if err != nil {
				zap.L().Warn("pipeline: scrape failed", zap.String("url", u), zap.Error(err))
				continue
			}
			scraped = append(scraped, *page)
			if len(scraped) >= minScrapable {
				return scraped
			}
		}
		zap.L().Debug("pipeline: scrape pass below threshold, widening",
			zap.Int("scraped", len(scraped)),
			zap.Int("attempted", len(attempted)),
		)
	}

	return scraped
}

// nextUnattempted returns up to limit not-yet-attempted URLs in search order.
func nextUnattempted(urls []string, attempted map[string]bool, limit int) []string {
	var batch []string
	for _, u := range urls {
		if attempted[u] {
			continue
		}
		batch = append(batch, u)
		if len(batch) == limit {
			break
		}
	}
	return batch
}

// scrapeOne fetches one URL through the scrape chain and truncates the
// content to the prompt-size bound. Empty content counts as a failure.
func (p *Profiler) scrapeOne(ctx context.Context, url string) (*model.ScrapedPage, error) {
	result, err := resilience.DoVal(ctx, p.retryFor("scrape", "scrape url"), func(ctx context.Context) (*scrape.Result, error) {
		return p.Scraper.Scrape(ctx, url)
	})
	if err != nil {
		return nil, err
	}

	page := result.Page
	if page.URL == "" {
		page.URL = url
	}
	page.Content = strings.TrimSpace(page.Content)
	if page.Content == "" {
		return nil, eris.Errorf("pipeline: empty content from %s", url)
	}
	if limit := p.maxContentChars(); len(page.Content) > limit {
		page.Content = page.Content[:limit]
	}
	return &page, nil
}

// synthesize asks the text generation collaborator for the ideal content
// profile given the scraped competitor pages.
func (p *Profiler) synthesize(ctx context.Context, subQuery, location string, pages []model.ScrapedPage) (*model.ContentProfile, error) {
	if location == "" {
		location = "Global"
	}
	contextJSON, err := json.MarshalIndent(pages, "", "  ")
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: encode scraped pages")
	}

	prompt := fmt.Sprintf(profilePrompt, subQuery, location, len(pages), contextJSON)
	text, err := generateJSON(ctx, p.Gen, p.Model, p.Retry, p.Ledger, "synthesize profile", prompt)
	if err != nil {
		return nil, err
	}

	var reply struct {
		IdealContentProfile *model.ContentProfile `json:"ideal_content_profile"`
	}
	if err := json.Unmarshal([]byte(cleanJSON(text)), &reply); err != nil {
		return nil, eris.Wrap(err, "pipeline: decode profile reply")
	}
	if reply.IdealContentProfile == nil {
		return nil, eris.New("pipeline: profile reply missing ideal_content_profile key")
	}
	return reply.IdealContentProfile, nil
}

func (p *Profiler) retryFor(service, operation string) resilience.RetryConfig {
	cfg := p.Retry
	if cfg.OnRetry == nil {
		cfg.OnRetry = resilience.RetryLogger(service, operation)
	}
	return cfg
}

func (p *Profiler) maxSearchResults() int {
	if p.MaxSearchResults > 0 {
		return p.MaxSearchResults
	}
	return DefaultMaxSearchResults
}

func (p *Profiler) minScrapableResults() int {
	if p.MinScrapableResults > 0 {
		return p.MinScrapableResults
	}
	return DefaultMinScrapableResults
}

func (p *Profiler) initialScrapeAttempts() int {
	if p.InitialScrapeAttempts > 0 {
		return p.InitialScrapeAttempts
	}
	return DefaultInitialScrapeAttempts
}

func (p *Profiler) maxContentChars() int {
	if p.MaxContentChars > 0 {
		return p.MaxContentChars
	}
	return DefaultMaxContentChars
}

func (p *Profiler) concurrency() int {
	if p.Concurrency > 0 {
		return p.Concurrency
	}
	return DefaultConcurrency
}
