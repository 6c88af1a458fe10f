package pipeline

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/intentlab/fanout-cli/internal/cost"
	"github.com/intentlab/fanout-cli/internal/model"
	"github.com/intentlab/fanout-cli/internal/resilience"
	"github.com/intentlab/fanout-cli/pkg/textgen"
)

const routePrompt = `You are an expert in information retrieval and search algorithms.
Your task is to analyze a list of sub-queries and determine the most appropriate source types and content modalities for finding the best answers.

Adhere to the following rules:
1. For each sub-query, select one or more source types from this list: %s
2. For each sub-query, select the single most appropriate modality from this list: %s
3. You MUST return the output as a valid JSON array of objects, one per input sub-query, where each object has the keys "sub_query", "predicted_source_types", and "predicted_modality". The "sub_query" value must be copied verbatim from the input list.

Here is the list of sub-queries:
%s

Example Output Format:
[
  {
    "sub_query": "16-week beginner half marathon training plan",
    "predicted_source_types": ["Coaching blogs", "training websites"],
    "predicted_modality": "structured schedules"
  },
  {
    "sub_query": "Half marathon gear checklist",
    "predicted_source_types": ["E-commerce sites", "product review sites"],
    "predicted_modality": "Listicles"
  }
]`

// Router runs the sub-query routing stage: one batched generation call
// mapping every expanded sub-query to source types and a content modality
// from the controlled vocabularies.
type Router struct {
	Gen    textgen.Client
	Model  string
	Retry  resilience.RetryConfig
	Ledger *cost.Ledger
}

// Route maps the expansion's deduplicated sub-queries to routed entries.
// Output cardinality always equals input cardinality: sub-queries the
// collaborator misses get fallback entries, and a failed call produces a
// fallback entry for every input. An empty input short-circuits without a
// collaborator call.
func (r *Router) Route(ctx context.Context, expansion model.ExpansionResult) []model.RoutedSubQuery {
	subQueries := expansion.SubQueries()
	if len(subQueries) == 0 {
		zap.L().Warn("pipeline: no sub-queries to route")
		return []model.RoutedSubQuery{}
	}

	sourceTypes, _ := json.Marshal(model.SourceTypes)
	modalities, _ := json.Marshal(model.ModalityTypes)
	inputs, _ := json.MarshalIndent(subQueries, "", "  ")
	prompt := fmt.Sprintf(routePrompt, sourceTypes, modalities, inputs)

	zap.L().Info("pipeline: routing sub-queries", zap.Int("count", len(subQueries)))
	text, err := generateJSON(ctx, r.Gen, r.Model, r.Retry, r.Ledger, "route sub-queries", prompt)
	if err != nil {
		zap.L().Error("pipeline: routing call failed, falling back for all sub-queries", zap.Error(err))
		return fallbackRoutes(subQueries, err)
	}

	var entries []model.RoutedSubQuery
	if err := json.Unmarshal([]byte(cleanJSON(text)), &entries); err != nil {
		zap.L().Error("pipeline: routing reply is not valid JSON", zap.Error(err))
		return fallbackRoutes(subQueries, eris.Wrap(err, "pipeline: decode routing reply"))
	}

	inputSet := make(map[string]bool, len(subQueries))
	for _, sq := range subQueries {
		inputSet[sq] = true
	}

	// Match reply entries to inputs by sub-query text. Entries naming
	// unknown sub-queries are dropped; duplicate entries keep the first.
	byQuery := make(map[string]model.RoutedSubQuery, len(entries))
	for _, entry := range entries {
		if !inputSet[entry.SubQuery] {
			zap.L().Warn("pipeline: routing reply names unknown sub-query",
				zap.String("sub_query", entry.SubQuery),
			)
			continue
		}
		if _, ok := byQuery[entry.SubQuery]; !ok {
			byQuery[entry.SubQuery] = entry
		}
	}

	routed := make([]model.RoutedSubQuery, 0, len(subQueries))
	for _, sq := range subQueries {
		entry, ok := byQuery[sq]
		if !ok {
			zap.L().Warn("pipeline: sub-query missing from routing reply", zap.String("sub_query", sq))
			routed = append(routed, model.FallbackRoute(sq, "missing from routing reply"))
			continue
		}
		routed = append(routed, sanitizeRoute(entry))
	}

	zap.L().Info("pipeline: routing complete",
		zap.Int("routed", len(byQuery)),
		zap.Int("fallbacks", len(subQueries)-len(byQuery)),
	)
	return routed
}

// sanitizeRoute coerces out-of-vocabulary predictions to the fallback value
// and clears any fields later stages own.
func sanitizeRoute(entry model.RoutedSubQuery) model.RoutedSubQuery {
	if !model.ValidModality(entry.PredictedModality) {
		zap.L().Warn("pipeline: modality outside vocabulary",
			zap.String("sub_query", entry.SubQuery),
			zap.String("modality", entry.PredictedModality),
		)
		entry.PredictedModality = model.Unknown
	}

	var kept []string
	for _, st := range entry.PredictedSourceTypes {
		if model.ValidSourceType(st) {
			kept = append(kept, st)
			continue
		}
		zap.L().Warn("pipeline: source type outside vocabulary",
			zap.String("sub_query", entry.SubQuery),
			zap.String("source_type", st),
		)
	}
	if len(kept) == 0 {
		kept = []string{model.Unknown}
	}
	entry.PredictedSourceTypes = kept

	// The profiling stage attaches this; a routing reply must not.
	entry.IdealContentProfile = nil
	return entry
}

func fallbackRoutes(subQueries []string, err error) []model.RoutedSubQuery {
	routed := make([]model.RoutedSubQuery, len(subQueries))
	for i, sq := range subQueries {
		routed[i] = model.FallbackRoute(sq, err.Error())
	}
	return routed
}
