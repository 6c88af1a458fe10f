// Package plan turns a run's routed and profiled sub-queries into a content
// plan: it groups them into thematic clusters, synthesizes an aggregate brief
// per cluster, and renders the human-readable report.
package plan

import (
	"regexp"
	"strings"

	"github.com/intentlab/fanout-cli/internal/model"
)

// CatchAllCluster receives every sub-query that matches no cluster
// definition's keywords.
const CatchAllCluster = "General Content Opportunities"

// Assign groups routed sub-queries into clusters in a single pass. Each
// sub-query is matched case-insensitively on word boundaries against every
// definition's keywords in declaration order; the first definition with a
// matching keyword wins, and items matching none land in the catch-all
// cluster. Every input lands in exactly one cluster. The returned clusters
// keep definition order with the catch-all last; definitions that attract no
// members are omitted.
func Assign(defs []model.ClusterDefinition, routed []model.RoutedSubQuery) []model.Cluster {
	matchers := make([]*regexp.Regexp, len(defs))
	for i, d := range defs {
		matchers[i] = keywordPattern(d.Keywords)
	}

	members := make([][]model.RoutedSubQuery, len(defs))
	var catchAll []model.RoutedSubQuery

	for _, r := range routed {
		assigned := false
		for i, m := range matchers {
			if m != nil && m.MatchString(r.SubQuery) {
				members[i] = append(members[i], r)
				assigned = true
				break
			}
		}
		if !assigned {
			catchAll = append(catchAll, r)
		}
	}

	var clusters []model.Cluster
	for i, d := range defs {
		if len(members[i]) == 0 {
			continue
		}
		clusters = append(clusters, model.Cluster{Name: d.Name, Members: members[i]})
	}
	if len(catchAll) > 0 {
		clusters = append(clusters, model.Cluster{Name: CatchAllCluster, Members: catchAll})
	}

	return clusters
}

// keywordPattern compiles one case-insensitive pattern matching any of the
// keywords on word boundaries. Multi-word keywords match as phrases. Returns
// nil when no keyword is usable.
func keywordPattern(keywords []string) *regexp.Regexp {
	var quoted []string
	for _, k := range keywords {
		k = strings.TrimSpace(k)
		if k == "" {
			continue
		}
		quoted = append(quoted, regexp.QuoteMeta(k))
	}
	if len(quoted) == 0 {
		return nil
	}
	return regexp.MustCompile(`(?i)\b(?:` + strings.Join(quoted, "|") + `)\b`)
}
