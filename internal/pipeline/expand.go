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

const expandPrompt = `You are an expert in search query understanding and latent intent mining.
Your task is to deconstruct a search query the way a generative search engine would: classify its intent, identify explicit and implicit slots, project latent intents the user did not state, and generate rewrites and speculative follow-up questions.

Adhere to the following rules:
1. Classify the query's task type ("classified_intent"), domain, subdomain, and risk profile.
2. Identify explicit slots (stated directly in the query) and implicit slots (implied but unstated; use "unknown" when a value cannot be inferred).
3. Project latent intents: related needs the user will likely have but did not express.
4. Generate rewrites and diversifications: alternative phrasings and more specific variations of the query.
5. Generate speculative sub-questions: likely follow-up questions.
6. You MUST return the output as a single, valid JSON object with exactly these keys: "original_query", "classified_intent", "domain", "subdomain", "risk_profile", "identified_slots" (an object with "explicit" and "implicit" string-to-string maps), "projected_latent_intents", "rewrites_and_diversifications", and "speculative_sub_questions" (arrays of strings).

Here is a worked example for the query "best half marathon training plan for beginners":
{
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
}

Now expand this query:
"%s"`

// Expander runs the query expansion stage: one structured generation call
// that deconstructs the original query into intent, slots, latent intents,
// rewrites, and speculative sub-questions.
type Expander struct {
	Gen    textgen.Client
	Model  string
	Retry  resilience.RetryConfig
	Ledger *cost.Ledger
}

// Expand never fails. Any collaborator error or malformed reply degrades to
// an ExpansionResult carrying the error with empty sub-query sequences,
// which the routing stage treats as an empty input.
func (e *Expander) Expand(ctx context.Context, query string) model.ExpansionResult {
	log := zap.L().With(zap.String("query", query))
	log.Info("pipeline: expanding query")

	prompt := fmt.Sprintf(expandPrompt, query)
	text, err := generateJSON(ctx, e.Gen, e.Model, e.Retry, e.Ledger, "expand query", prompt)
	if err != nil {
		log.Error("pipeline: expansion call failed", zap.Error(err))
		return failedExpansion(query, err)
	}

	var result model.ExpansionResult
	if err := json.Unmarshal([]byte(cleanJSON(text)), &result); err != nil {
		log.Error("pipeline: expansion reply is not valid JSON", zap.Error(err))
		return failedExpansion(query, eris.Wrap(err, "pipeline: decode expansion reply"))
	}

	result.OriginalQuery = query
	result.Normalize()
	log.Info("pipeline: expansion complete",
		zap.Int("latent_intents", len(result.ProjectedLatentIntents)),
		zap.Int("rewrites", len(result.RewritesAndDiversifications)),
		zap.Int("speculative_questions", len(result.SpeculativeSubQuestions)),
	)
	return result
}

func failedExpansion(query string, err error) model.ExpansionResult {
	result := model.ExpansionResult{
		OriginalQuery: query,
		Error:         err.Error(),
	}
	result.Normalize()
	return result
}
