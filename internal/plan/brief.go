package plan

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/intentlab/fanout-cli/internal/cost"
	"github.com/intentlab/fanout-cli/internal/model"
	"github.com/intentlab/fanout-cli/internal/resilience"
	"github.com/intentlab/fanout-cli/pkg/textgen"
)

const briefPrompt = `You are a world-class SEO and Content Strategist. Your task is to write one actionable content brief for a cluster of related search sub-queries, using the aggregated competitive profile below.

**Cluster:** %q

**Member Sub-Queries:**
%s

**Aggregated Competitive Profile (union across every member's top-ranking pages):**
%s

**Target Keywords and Phrasings:**
%s

**Instructions:**
- Recommend one coherent piece of content (or a tightly scoped series) that covers every member sub-query.
- Ground every recommendation in the aggregated profile above; do not invent new criteria.
- Respond with plain text only: two to four short paragraphs, no markdown headings.`

// Synthesizer produces per-cluster content briefs. Gen may be nil, in which
// case every brief uses the deterministic local aggregation.
type Synthesizer struct {
	Gen    textgen.Client
	Model  string
	Retry  resilience.RetryConfig
	Ledger *cost.Ledger
}

// ClusterBrief is one cluster's entry in the content plan.
type ClusterBrief struct {
	Cluster  model.Cluster
	Text     string
	Keywords []string
}

// Synthesize produces a brief for every cluster. A failed or empty
// generation call degrades to the local aggregation for that cluster, so the
// report always renders.
func (s *Synthesizer) Synthesize(ctx context.Context, clusters []model.Cluster) []ClusterBrief {
	briefs := make([]ClusterBrief, 0, len(clusters))
	for _, c := range clusters {
		agg := aggregate(c)
		briefs = append(briefs, ClusterBrief{
			Cluster:  c,
			Text:     s.briefText(ctx, c, agg),
			Keywords: agg.keywords,
		})
	}
	return briefs
}

func (s *Synthesizer) briefText(ctx context.Context, c model.Cluster, agg clusterAggregate) string {
	if s.Gen == nil {
		return localBrief(c, agg)
	}

	prompt := fmt.Sprintf(briefPrompt,
		c.Name,
		bulleted(agg.subQueries),
		agg.profileLines(),
		strings.Join(agg.keywords, ", "),
	)

	cfg := s.Retry
	if cfg.OnRetry == nil {
		cfg.OnRetry = resilience.RetryLogger("textgen", "synthesize brief")
	}
	resp, err := resilience.DoVal(ctx, cfg, func(ctx context.Context) (*textgen.Response, error) {
		return s.Gen.Generate(ctx, textgen.Request{Model: s.Model, Prompt: prompt})
	})
	if err != nil {
		zap.L().Warn("plan: brief synthesis failed, using local aggregation",
			zap.String("cluster", c.Name),
			zap.Error(err),
		)
		return localBrief(c, agg)
	}
	if s.Ledger != nil {
		s.Ledger.TrackUsage(s.Model, resp.Usage.InputTokens, resp.Usage.OutputTokens)
	}

	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return localBrief(c, agg)
	}
	return text
}

// clusterAggregate is the union of a cluster's member profiles: the five
// profile fields concatenated (unique values, member order) and every unique
// target keyword. Keywords are deduplicated within the cluster only.
type clusterAggregate struct {
	subQueries       []string
	extractability   []string
	evidenceDensity  []string
	scopeClarity     []string
	authoritySignals []string
	freshness        []string
	keywords         []string
}

func aggregate(c model.Cluster) clusterAggregate {
	var agg clusterAggregate
	seenKw := make(map[string]bool)

	for _, m := range c.Members {
		agg.subQueries = append(agg.subQueries, m.SubQuery)

		p := m.IdealContentProfile
		if p == nil {
			continue
		}
		agg.extractability = appendUnique(agg.extractability, p.Extractability)
		agg.evidenceDensity = appendUnique(agg.evidenceDensity, p.EvidenceDensity)
		agg.scopeClarity = appendUnique(agg.scopeClarity, p.ScopeClarity)
		agg.authoritySignals = appendUnique(agg.authoritySignals, p.AuthoritySignals)
		agg.freshness = appendUnique(agg.freshness, p.Freshness)

		for _, kw := range p.TargetKeywordsAndPhrasings {
			kw = strings.TrimSpace(kw)
			key := strings.ToLower(kw)
			if kw == "" || seenKw[key] {
				continue
			}
			seenKw[key] = true
			agg.keywords = append(agg.keywords, kw)
		}
	}

	return agg
}

func appendUnique(dst []string, v string) []string {
	v = strings.TrimSpace(v)
	if v == "" {
		return dst
	}
	for _, existing := range dst {
		if existing == v {
			return dst
		}
	}
	return append(dst, v)
}

// profileLines renders the aggregated five fields as labeled lines.
func (a clusterAggregate) profileLines() string {
	var b strings.Builder
	writeLine := func(label string, vals []string) {
		if len(vals) == 0 {
			fmt.Fprintf(&b, "%s: N/A\n", label)
			return
		}
		fmt.Fprintf(&b, "%s: %s\n", label, strings.Join(vals, " | "))
	}
	writeLine("Extractability", a.extractability)
	writeLine("Evidence Density", a.evidenceDensity)
	writeLine("Scope Clarity", a.scopeClarity)
	writeLine("Authority Signals", a.authoritySignals)
	writeLine("Freshness", a.freshness)
	return strings.TrimRight(b.String(), "\n")
}

// localBrief is the deterministic fallback used when no generation client is
// configured or the call fails.
func localBrief(c model.Cluster, agg clusterAggregate) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Create content for the %q theme covering %d related queries: %s.\n\n",
		c.Name, len(agg.subQueries), strings.Join(agg.subQueries, "; "))
	b.WriteString(agg.profileLines())
	if len(agg.keywords) > 0 {
		fmt.Fprintf(&b, "\nTarget keywords: %s", strings.Join(agg.keywords, ", "))
	}
	return b.String()
}

func bulleted(items []string) string {
	var b strings.Builder
	for _, it := range items {
		fmt.Fprintf(&b, "- %s\n", it)
	}
	return strings.TrimRight(b.String(), "\n")
}
