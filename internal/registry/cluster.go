package registry

import (
	"context"
	"strings"

	"github.com/jomei/notionapi"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/intentlab/fanout-cli/internal/model"
	"github.com/intentlab/fanout-cli/pkg/notion"
)

// LoadClusterRegistry queries the Notion cluster-definition database and
// returns the definitions in priority order (the query sorts by the
// "Priority" number property, and that order is what the clustering pass
// uses to break keyword ties).
func LoadClusterRegistry(ctx context.Context, client notion.Client, dbID string) ([]model.ClusterDefinition, error) {
	pages, err := notion.QueryClusterPages(ctx, client, dbID)
	if err != nil {
		return nil, eris.Wrap(err, "registry: load cluster registry")
	}

	var clusters []model.ClusterDefinition
	for _, p := range pages {
		c, err := parseClusterPage(p)
		if err != nil {
			zap.L().Warn("registry: skipping malformed cluster page",
				zap.String("page_id", string(p.ID)),
				zap.Error(err),
			)
			continue
		}
		clusters = append(clusters, c)
	}

	return clusters, nil
}

func parseClusterPage(p notionapi.Page) (model.ClusterDefinition, error) {
	var c model.ClusterDefinition

	// Name (title)
	if prop, ok := p.Properties["Name"]; ok {
		if tp, ok := prop.(*notionapi.TitleProperty); ok {
			c.Name = plainText(tp.Title)
		}
	}

	// Keywords (rich_text, comma separated)
	if prop, ok := p.Properties["Keywords"]; ok {
		if rtp, ok := prop.(*notionapi.RichTextProperty); ok {
			c.Keywords = splitKeywords(plainText(rtp.RichText))
		}
	}

	if c.Name == "" {
		return c, eris.New("missing Name property")
	}
	if len(c.Keywords) == 0 {
		return c, eris.New("missing Keywords property")
	}

	return c, nil
}

// plainText concatenates the plain_text values from a slice of RichText.
func plainText(rts []notionapi.RichText) string {
	var s string
	for _, rt := range rts {
		s += rt.PlainText
	}
	return s
}

// splitKeywords splits a comma-separated keyword list, trimming whitespace
// and dropping empty entries.
func splitKeywords(s string) []string {
	var out []string
	for _, k := range strings.Split(s, ",") {
		if k = strings.TrimSpace(k); k != "" {
			out = append(out, k)
		}
	}
	return out
}
