package registry

import "github.com/intentlab/fanout-cli/internal/model"

// DefaultClusters returns the built-in cluster definitions used when neither
// a Notion database nor a definitions file is configured. They group
// sub-queries by content angle rather than by subject, so they work for any
// query domain. Intent words (comparisons, costs, problems) are stronger
// signals than format or audience words, so those definitions come first.
func DefaultClusters() []model.ClusterDefinition {
	return []model.ClusterDefinition{
		{
			Name:     "Comparisons & Alternatives",
			Keywords: []string{"vs", "versus", "compare", "comparison", "alternative", "alternatives", "best", "top", "review", "reviews"},
		},
		{
			Name:     "Pricing & Cost",
			Keywords: []string{"cost", "costs", "price", "pricing", "fee", "fees", "budget", "affordable", "free"},
		},
		{
			Name:     "Problems & Troubleshooting",
			Keywords: []string{"avoid", "prevent", "fix", "problem", "problems", "mistake", "mistakes", "injury", "injuries", "pain", "troubleshoot"},
		},
		{
			Name:     "Plans & Schedules",
			Keywords: []string{"plan", "plans", "schedule", "schedules", "program", "template", "printable", "calendar", "checklist", "routine"},
		},
		{
			Name:     "How-To Guides & Tutorials",
			Keywords: []string{"how to", "guide", "guides", "tutorial", "tutorials", "steps", "step-by-step", "instructions", "method"},
		},
		{
			Name:     "Beginner Fundamentals",
			Keywords: []string{"beginner", "beginners", "basics", "fundamentals", "introduction", "start", "starting", "first"},
		},
	}
}
