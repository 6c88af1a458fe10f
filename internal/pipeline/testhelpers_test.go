package pipeline

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/intentlab/fanout-cli/internal/model"
	"github.com/intentlab/fanout-cli/internal/resilience"
	"github.com/intentlab/fanout-cli/internal/scrape"
	"github.com/intentlab/fanout-cli/pkg/firecrawl"
	"github.com/intentlab/fanout-cli/pkg/textgen"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

// quickRetry keeps retry tests fast: the standard policy shape with
// millisecond backoff.
func quickRetry(attempts int) resilience.RetryConfig {
	return resilience.RetryConfig{
		MaxAttempts:    attempts,
		InitialBackoff: time.Millisecond,
	}
}

func genResponse(text string, inputTokens, outputTokens int) *textgen.Response {
	return &textgen.Response{
		Text: text,
		Usage: textgen.Usage{
			InputTokens:  inputTokens,
			OutputTokens: outputTokens,
		},
	}
}

func searchResponse(urls ...string) *firecrawl.SearchResponse {
	results := make([]firecrawl.SearchResult, len(urls))
	for i, u := range urls {
		results[i] = firecrawl.SearchResult{URL: u}
	}
	return &firecrawl.SearchResponse{
		Success: true,
		Data:    firecrawl.SearchData{Web: results},
	}
}

func routedItems(subQueries ...string) []model.RoutedSubQuery {
	items := make([]model.RoutedSubQuery, len(subQueries))
	for i, sq := range subQueries {
		items[i] = model.RoutedSubQuery{
			SubQuery:             sq,
			PredictedSourceTypes: []string{"Coaching blogs"},
			PredictedModality:    "structured schedules",
		}
	}
	return items
}

// stubScraper serves canned content by URL and records attempt order.
// URLs absent from the content map fail; present-but-empty content is
// returned as-is so empty-page handling can be exercised.
type stubScraper struct {
	mu       sync.Mutex
	content  map[string]string
	attempts []string
}

func (s *stubScraper) Scrape(ctx context.Context, url string) (*scrape.Result, error) {
	s.mu.Lock()
	s.attempts = append(s.attempts, url)
	s.mu.Unlock()

	c, ok := s.content[url]
	if !ok {
		return nil, errors.New("connection refused")
	}
	return &scrape.Result{
		Page:   model.ScrapedPage{URL: url, Content: c},
		Source: "stub",
	}, nil
}

func (s *stubScraper) attemptedURLs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.attempts...)
}

const workedExpansionJSON = `{
  "original_query": "best half marathon training plan for beginners",
  "classified_intent": "plan/guide",
  "domain": "sports and fitness",
  "subdomain": "running",
  "risk_profile": "low with safety component (injury prevention)",
  "identified_slots": {
    "explicit": {"distance": "half marathon", "audience": "beginners"},
    "implicit": {"training_timeframe": "unknown", "runner_fitness_level": "unknown", "runner_age_group": "unknown", "goal": "finish vs. personal record"}
  },
  "projected_latent_intents": ["16-week beginner training schedule", "run-walk method for half marathon", "cross-training for new runners", "gear checklist for long distance running", "hydration strategies for beginners", "how to avoid shin splints when training", "what to eat before a long run"],
  "rewrites_and_diversifications": ["12-week half marathon plan for beginners over 40", "printable beginner half marathon schedule", "easy half marathon training plan", "first half marathon training guide pdf"],
  "speculative_sub_questions": ["What shoes are best for half marathon training?", "How many miles should I run each week for a half marathon?", "What is a good pace for a beginner half marathon runner?", "How to prevent injuries during half marathon training?"]
}`

const profileReplyJSON = `{
  "ideal_content_profile": {
    "extractability": "A week-by-week table with H2 sections per training phase and a final checklist.",
    "evidence_density": "High. Pages cite named coaches, race statistics, and specific pace targets.",
    "scope_clarity": "All pages explicitly scope to beginners and state who the plan is for.",
    "authority_signals": "RRCA-certified coaches and links to published training studies.",
    "freshness": "Updated for the current race season.",
    "target_keywords_and_phrasings": ["half marathon training plan", "beginner half marathon schedule", "12 week half marathon plan"]
  }
}`
