package plan

import (
	"fmt"
	"strings"

	"github.com/intentlab/fanout-cli/internal/model"
)

// Render produces the human-readable content plan for one run: a section per
// cluster carrying the synthesized brief and keyword list, then one entry per
// member sub-query with its routing and competitive profile.
func Render(originalQuery string, briefs []ClusterBrief) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Content Plan for %q\n\n", originalQuery)

	if len(briefs) == 0 {
		b.WriteString("No profiled sub-queries to plan.\n")
		return b.String()
	}

	total := 0
	for _, cb := range briefs {
		total += len(cb.Cluster.Members)
	}
	fmt.Fprintf(&b, "%d sub-queries in %d clusters.\n\n", total, len(briefs))

	for _, cb := range briefs {
		fmt.Fprintf(&b, "## %s (%d queries)\n\n", cb.Cluster.Name, len(cb.Cluster.Members))
		b.WriteString(cb.Text)
		b.WriteString("\n\n")
		if len(cb.Keywords) > 0 {
			fmt.Fprintf(&b, "**Target keywords:** %s\n\n", strings.Join(cb.Keywords, ", "))
		}
		for _, m := range cb.Cluster.Members {
			writeMember(&b, m)
		}
	}

	return b.String()
}

func writeMember(b *strings.Builder, m model.RoutedSubQuery) {
	fmt.Fprintf(b, "### Query: %s\n", m.SubQuery)
	fmt.Fprintf(b, "- **Brief:** Create content answering '%s'.\n", m.SubQuery)
	fmt.Fprintf(b, "  - **Ideal Format:** %s\n", m.PredictedModality)
	fmt.Fprintf(b, "  - **Target Sources:** %s\n", strings.Join(m.PredictedSourceTypes, ", "))
	b.WriteString("  - **Content Profile:**\n")
	writeProfile(b, m.IdealContentProfile)
	b.WriteString("\n")
}

func writeProfile(b *strings.Builder, p *model.ContentProfile) {
	if p == nil {
		b.WriteString("    - **Error:** no profile generated\n")
		return
	}

	writeField := func(label, v string) {
		if v == "" {
			return
		}
		fmt.Fprintf(b, "    - **%s:** %s\n", label, v)
	}
	writeField("Extractability", p.Extractability)
	writeField("Evidence Density", p.EvidenceDensity)
	writeField("Scope Clarity", p.ScopeClarity)
	writeField("Authority Signals", p.AuthoritySignals)
	writeField("Freshness", p.Freshness)
	if len(p.TargetKeywordsAndPhrasings) > 0 {
		fmt.Fprintf(b, "    - **Target Keywords And Phrasings:** %s\n", strings.Join(p.TargetKeywordsAndPhrasings, ", "))
	}
	writeField("Error", p.Error)
}
