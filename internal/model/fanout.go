package model

import "time"

// ExpansionResult is the structured output of the query expansion stage.
type ExpansionResult struct {
	OriginalQuery               string   `json:"original_query"`
	ClassifiedIntent            string   `json:"classified_intent"`
	Domain                      string   `json:"domain"`
	Subdomain                   string   `json:"subdomain"`
	RiskProfile                 string   `json:"risk_profile"`
	IdentifiedSlots             Slots    `json:"identified_slots"`
	ProjectedLatentIntents      []string `json:"projected_latent_intents"`
	RewritesAndDiversifications []string `json:"rewrites_and_diversifications"`
	SpeculativeSubQuestions     []string `json:"speculative_sub_questions"`
	Error                       string   `json:"error,omitempty"`
}

// Slots holds the explicit and implicit slot values identified in a query.
type Slots struct {
	Explicit map[string]string `json:"explicit"`
	Implicit map[string]string `json:"implicit"`
}

// Normalize ensures every collection field is non-nil so downstream stages
// never branch on missing keys. Safe to call on any ExpansionResult,
// including the zero value and values freshly decoded from JSON.
func (e *ExpansionResult) Normalize() {
	if e.IdentifiedSlots.Explicit == nil {
		e.IdentifiedSlots.Explicit = map[string]string{}
	}
	if e.IdentifiedSlots.Implicit == nil {
		e.IdentifiedSlots.Implicit = map[string]string{}
	}
	if e.ProjectedLatentIntents == nil {
		e.ProjectedLatentIntents = []string{}
	}
	if e.RewritesAndDiversifications == nil {
		e.RewritesAndDiversifications = []string{}
	}
	if e.SpeculativeSubQuestions == nil {
		e.SpeculativeSubQuestions = []string{}
	}
}

// SubQueries returns the deduplicated union of rewrites, speculative
// sub-questions, and projected latent intents, preserving first-seen order.
// This is the routing stage's input set.
func (e *ExpansionResult) SubQueries() []string {
	seen := make(map[string]bool)
	var out []string
	for _, group := range [][]string{
		e.RewritesAndDiversifications,
		e.SpeculativeSubQuestions,
		e.ProjectedLatentIntents,
	} {
		for _, sq := range group {
			if sq == "" || seen[sq] {
				continue
			}
			seen[sq] = true
			out = append(out, sq)
		}
	}
	return out
}

// RoutedSubQuery is one sub-query mapped to its predicted source types and
// content modality, and later augmented with its ideal content profile.
type RoutedSubQuery struct {
	SubQuery             string          `json:"sub_query"`
	PredictedSourceTypes []string        `json:"predicted_source_types"`
	PredictedModality    string          `json:"predicted_modality"`
	Error                string          `json:"error,omitempty"`
	IdealContentProfile  *ContentProfile `json:"ideal_content_profile,omitempty"`
}

// FallbackRoute builds the degraded routing entry used when the routing
// collaborator fails or omits a sub-query from its reply. Output cardinality
// must always match input cardinality, so every unrouted sub-query gets one.
func FallbackRoute(subQuery, reason string) RoutedSubQuery {
	return RoutedSubQuery{
		SubQuery:             subQuery,
		PredictedSourceTypes: []string{Unknown},
		PredictedModality:    Unknown,
		Error:                reason,
	}
}

// ContentProfile describes the ideal shape of content that would
// competitively answer a sub-query, synthesized from top-ranking pages.
type ContentProfile struct {
	Extractability             string   `json:"extractability,omitempty"`
	EvidenceDensity            string   `json:"evidence_density,omitempty"`
	ScopeClarity               string   `json:"scope_clarity,omitempty"`
	AuthoritySignals           string   `json:"authority_signals,omitempty"`
	Freshness                  string   `json:"freshness,omitempty"`
	TargetKeywordsAndPhrasings []string `json:"target_keywords_and_phrasings,omitempty"`
	Error                      string   `json:"error,omitempty"`
}

// ErrorProfile builds a profile carrying only a failure annotation.
func ErrorProfile(reason string) *ContentProfile {
	return &ContentProfile{Error: reason}
}

// ScrapedPage is one successfully scraped search result. It exists only
// within a single profiling attempt and is never persisted standalone.
type ScrapedPage struct {
	URL     string `json:"url"`
	Content string `json:"content"`
}

// Record is the persisted output of one fan-out run. Its field set is the
// compatibility contract for downstream consumers.
type Record struct {
	RunID             string           `json:"run_id"`
	OriginalQuery     string           `json:"original_query"`
	Location          string           `json:"location,omitempty"`
	GeneratedAt       time.Time        `json:"generated_at"`
	Expansion         ExpansionResult  `json:"expansion"`
	RoutedAndProfiled []RoutedSubQuery `json:"routed_and_profiled"`
}
