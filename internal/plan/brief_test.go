package plan

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/intentlab/fanout-cli/internal/cost"
	"github.com/intentlab/fanout-cli/internal/model"
	"github.com/intentlab/fanout-cli/internal/resilience"
	"github.com/intentlab/fanout-cli/pkg/textgen"
	textgenmocks "github.com/intentlab/fanout-cli/pkg/textgen/mocks"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

func profiledCluster() model.Cluster {
	return model.Cluster{
		Name: "Training Plans & Schedules",
		Members: []model.RoutedSubQuery{
			{
				SubQuery:             "easy half marathon training plan",
				PredictedSourceTypes: []string{"Coaching blogs"},
				PredictedModality:    "structured schedules",
				IdealContentProfile: &model.ContentProfile{
					Extractability:             "Weekly table with one row per week.",
					EvidenceDensity:            "Cites named coaches.",
					ScopeClarity:               "Explicit beginner scoping.",
					AuthoritySignals:           "RRCA-certified authors.",
					Freshness:                  "Updated for the current season.",
					TargetKeywordsAndPhrasings: []string{"half marathon plan", "beginner schedule"},
				},
			},
			{
				SubQuery:             "printable beginner half marathon schedule",
				PredictedSourceTypes: []string{"training websites"},
				PredictedModality:    "structured schedules",
				IdealContentProfile: &model.ContentProfile{
					Extractability:             "Weekly table with one row per week.",
					EvidenceDensity:            "Links to published training studies.",
					ScopeClarity:               "Explicit beginner scoping.",
					AuthoritySignals:           "Named running coaches.",
					Freshness:                  "Current-year race calendar.",
					TargetKeywordsAndPhrasings: []string{"Half Marathon Plan", "printable schedule"},
				},
			},
		},
	}
}

func TestSynthesize_NilGenUsesLocalAggregation(t *testing.T) {
	s := &Synthesizer{}

	briefs := s.Synthesize(context.Background(), []model.Cluster{profiledCluster()})
	require.Len(t, briefs, 1)

	text := briefs[0].Text
	assert.Contains(t, text, `"Training Plans & Schedules"`)
	assert.Contains(t, text, "2 related queries")
	assert.Contains(t, text, "easy half marathon training plan; printable beginner half marathon schedule")
	assert.Contains(t, text, "Evidence Density: Cites named coaches. | Links to published training studies.")
	assert.Contains(t, text, "Target keywords: half marathon plan, beginner schedule, printable schedule")
}

func TestSynthesize_DeduplicatesFieldsAndKeywords(t *testing.T) {
	s := &Synthesizer{}

	briefs := s.Synthesize(context.Background(), []model.Cluster{profiledCluster()})
	require.Len(t, briefs, 1)

	// Identical field text across members appears once.
	assert.Contains(t, briefs[0].Text, "Extractability: Weekly table with one row per week.\n")

	// Keywords are case-insensitively unique within the cluster, first
	// casing preserved.
	assert.Equal(t,
		[]string{"half marathon plan", "beginner schedule", "printable schedule"},
		briefs[0].Keywords,
	)
}

func TestSynthesize_GenProducesBriefAndTracksUsage(t *testing.T) {
	gen := textgenmocks.NewMockClient(t)
	ledger := cost.NewLedger(cost.DefaultRates())

	gen.On("Generate", mock.Anything, mock.MatchedBy(func(req textgen.Request) bool {
		return req.Model == "gemini-1.5-pro-latest" &&
			!req.JSONOutput &&
			strings.Contains(req.Prompt, "Training Plans & Schedules") &&
			strings.Contains(req.Prompt, "- easy half marathon training plan")
	})).Return(&textgen.Response{
		Text:  "Build one definitive beginner training hub.",
		Usage: textgen.Usage{InputTokens: 500, OutputTokens: 60},
	}, nil).Once()

	s := &Synthesizer{Gen: gen, Model: "gemini-1.5-pro-latest", Ledger: ledger}
	briefs := s.Synthesize(context.Background(), []model.Cluster{profiledCluster()})

	require.Len(t, briefs, 1)
	assert.Equal(t, "Build one definitive beginner training hub.", briefs[0].Text)

	in, out := ledger.TokenUsage()
	assert.Equal(t, int64(500), in)
	assert.Equal(t, int64(60), out)
}

func TestSynthesize_GenFailureFallsBackToLocal(t *testing.T) {
	gen := textgenmocks.NewMockClient(t)
	gen.On("Generate", mock.Anything, mock.AnythingOfType("textgen.Request")).
		Return(nil, assert.AnError).Once()

	s := &Synthesizer{Gen: gen, Model: "gemini-1.5-pro-latest"}
	briefs := s.Synthesize(context.Background(), []model.Cluster{profiledCluster()})

	require.Len(t, briefs, 1)
	assert.Contains(t, briefs[0].Text, "Create content for the")
}

func TestSynthesize_GenRetriesRateLimit(t *testing.T) {
	gen := textgenmocks.NewMockClient(t)
	gen.On("Generate", mock.Anything, mock.AnythingOfType("textgen.Request")).
		Return(nil, resilience.NewRateLimitError(assert.AnError, 429)).Once()
	gen.On("Generate", mock.Anything, mock.AnythingOfType("textgen.Request")).
		Return(&textgen.Response{Text: "Recovered brief."}, nil).Once()

	s := &Synthesizer{
		Gen:   gen,
		Model: "gemini-1.5-pro-latest",
		Retry: resilience.RetryConfig{MaxAttempts: 2, InitialBackoff: time.Millisecond},
	}
	briefs := s.Synthesize(context.Background(), []model.Cluster{profiledCluster()})

	require.Len(t, briefs, 1)
	assert.Equal(t, "Recovered brief.", briefs[0].Text)
}

func TestSynthesize_EmptyGenTextFallsBack(t *testing.T) {
	gen := textgenmocks.NewMockClient(t)
	gen.On("Generate", mock.Anything, mock.AnythingOfType("textgen.Request")).
		Return(&textgen.Response{Text: "   \n"}, nil).Once()

	s := &Synthesizer{Gen: gen, Model: "gemini-1.5-pro-latest"}
	briefs := s.Synthesize(context.Background(), []model.Cluster{profiledCluster()})

	require.Len(t, briefs, 1)
	assert.Contains(t, briefs[0].Text, "Create content for the")
}

func TestSynthesize_MembersWithoutProfiles(t *testing.T) {
	s := &Synthesizer{}
	cluster := model.Cluster{
		Name: "General Content Opportunities",
		Members: []model.RoutedSubQuery{
			{SubQuery: "unprofiled query one"},
			{SubQuery: "unprofiled query two", IdealContentProfile: model.ErrorProfile("scrape failed")},
		},
	}

	briefs := s.Synthesize(context.Background(), []model.Cluster{cluster})
	require.Len(t, briefs, 1)

	assert.Contains(t, briefs[0].Text, "unprofiled query one; unprofiled query two")
	assert.Contains(t, briefs[0].Text, "Extractability: N/A")
	assert.Empty(t, briefs[0].Keywords)
}
