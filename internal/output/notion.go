package output

import (
	"context"
	"strings"

	"github.com/jomei/notionapi"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/intentlab/fanout-cli/internal/plan"
	"github.com/intentlab/fanout-cli/pkg/notion"
)

// Notion rejects rich text items over 2000 characters.
const notionTextLimit = 2000

// PublishBriefs creates one Notion page per cluster brief under the given
// parent page. Returns the number of pages created; a failed create aborts
// the remainder.
func PublishBriefs(ctx context.Context, client notion.Client, parentPageID, originalQuery string, briefs []plan.ClusterBrief) (int, error) {
	created := 0
	for _, brief := range briefs {
		if ctx.Err() != nil {
			return created, eris.Wrap(ctx.Err(), "output: publish briefs cancelled")
		}

		req := briefPageRequest(parentPageID, originalQuery, brief)
		if _, err := client.CreatePage(ctx, req); err != nil {
			return created, eris.Wrapf(err, "output: publish brief %q", brief.Cluster.Name)
		}
		created++
	}

	zap.L().Info("output: briefs published",
		zap.Int("pages", created),
		zap.String("query", originalQuery),
	)
	return created, nil
}

func briefPageRequest(parentPageID, originalQuery string, brief plan.ClusterBrief) *notionapi.PageCreateRequest {
	children := []notionapi.Block{
		paragraphBlock("Content brief for " + `"` + originalQuery + `"` + "."),
		headingBlock("Brief"),
	}
	for _, para := range splitParagraphs(brief.Text) {
		children = append(children, paragraphBlock(para))
	}
	if len(brief.Keywords) > 0 {
		children = append(children,
			headingBlock("Target Keywords"),
			paragraphBlock(strings.Join(brief.Keywords, ", ")),
		)
	}
	children = append(children, headingBlock("Member Sub-Queries"))
	for _, m := range brief.Cluster.Members {
		children = append(children, bulletBlock(m.SubQuery))
	}

	return &notionapi.PageCreateRequest{
		Parent: notionapi.Parent{
			Type:   notionapi.ParentTypePageID,
			PageID: notionapi.PageID(parentPageID),
		},
		Properties: notionapi.Properties{
			"title": notionapi.TitleProperty{
				Type:  notionapi.PropertyTypeTitle,
				Title: richText(brief.Cluster.Name),
			},
		},
		Children: children,
	}
}

func headingBlock(text string) notionapi.Block {
	return notionapi.Heading2Block{
		BasicBlock: notionapi.BasicBlock{
			Object: notionapi.ObjectTypeBlock,
			Type:   notionapi.BlockTypeHeading2,
		},
		Heading2: notionapi.Heading{RichText: richText(text)},
	}
}

func paragraphBlock(text string) notionapi.Block {
	return notionapi.ParagraphBlock{
		BasicBlock: notionapi.BasicBlock{
			Object: notionapi.ObjectTypeBlock,
			Type:   notionapi.BlockTypeParagraph,
		},
		Paragraph: notionapi.Paragraph{RichText: richText(text)},
	}
}

func bulletBlock(text string) notionapi.Block {
	return notionapi.BulletedListItemBlock{
		BasicBlock: notionapi.BasicBlock{
			Object: notionapi.ObjectTypeBlock,
			Type:   notionapi.BlockTypeBulletedListItem,
		},
		BulletedListItem: notionapi.ListItem{RichText: richText(text)},
	}
}

// richText wraps s as Notion rich text, split to honor notionTextLimit.
func richText(s string) []notionapi.RichText {
	var out []notionapi.RichText
	for _, chunk := range chunkRunes(s, notionTextLimit) {
		out = append(out, notionapi.RichText{
			Type: notionapi.ObjectTypeText,
			Text: &notionapi.Text{Content: chunk},
		})
	}
	return out
}

// splitParagraphs breaks brief text on blank lines.
func splitParagraphs(text string) []string {
	var out []string
	for _, p := range strings.Split(text, "\n\n") {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// chunkRunes splits s into pieces of at most limit runes.
func chunkRunes(s string, limit int) []string {
	if s == "" {
		return []string{""}
	}
	runes := []rune(s)
	var chunks []string
	for len(runes) > limit {
		chunks = append(chunks, string(runes[:limit]))
		runes = runes[limit:]
	}
	return append(chunks, string(runes))
}
