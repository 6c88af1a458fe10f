package output

import (
	"time"

	"go.uber.org/zap"

	"github.com/intentlab/fanout-cli/internal/model"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

func sampleRecord() *model.Record {
	rec := &model.Record{
		RunID:         "run-123",
		OriginalQuery: "best half marathon training plan for beginners",
		GeneratedAt:   time.Date(2025, 8, 14, 9, 30, 0, 0, time.UTC),
		Expansion: model.ExpansionResult{
			OriginalQuery:    "best half marathon training plan for beginners",
			ClassifiedIntent: "plan/guide",
			RewritesAndDiversifications: []string{
				"half marathon training schedule",
				"gear checklist for race day",
			},
		},
		RoutedAndProfiled: []model.RoutedSubQuery{
			{
				SubQuery:             "half marathon training schedule",
				PredictedSourceTypes: []string{"Coaching blogs", "Running magazines"},
				PredictedModality:    "structured schedules",
				IdealContentProfile: &model.ContentProfile{
					Extractability:             "A week-by-week table.",
					EvidenceDensity:            "High, with named coaches.",
					ScopeClarity:               "Scoped to beginners.",
					AuthoritySignals:           "Certified coaches.",
					Freshness:                  "Updated this season.",
					TargetKeywordsAndPhrasings: []string{"12 week half marathon plan", "beginner pace chart"},
				},
			},
			model.FallbackRoute("gear checklist for race day", "missing from routing reply"),
		},
	}
	rec.Expansion.Normalize()
	return rec
}
