package promptbank

import (
	"context"

	"github.com/jomei/notionapi"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/aide-analytics/aide-cli/internal/model"
	"github.com/aide-analytics/aide-cli/pkg/notion"
)

// FromNotion loads the prompt bank from a Notion database holding one
// page per phrasing with a "Text" title, a "QID" rich_text property,
// and a "Status" status property. Only Active pages are loaded;
// malformed pages are skipped with a warning.
func FromNotion(ctx context.Context, client notion.Client, dbID string) (*Bank, error) {
	filter := &notionapi.DatabaseQueryRequest{
		Filter: notionapi.PropertyFilter{
			Property: "Status",
			Status: &notionapi.StatusFilterCondition{
				Equals: "Active",
			},
		},
	}

	pages, err := notion.QueryAll(ctx, client, dbID, filter)
	if err != nil {
		return nil, eris.Wrap(err, "promptbank: load from notion")
	}

	var entries []model.PromptEntry
	for _, p := range pages {
		e, err := parsePromptPage(p)
		if err != nil {
			zap.L().Warn("promptbank: skipping malformed prompt page",
				zap.String("page_id", string(p.ID)),
				zap.Error(err),
			)
			continue
		}
		entries = append(entries, e)
	}

	if len(entries) == 0 {
		return nil, eris.New("promptbank: notion database has no active prompts")
	}
	return New(entries), nil
}

func parsePromptPage(p notionapi.Page) (model.PromptEntry, error) {
	var e model.PromptEntry

	if prop, ok := p.Properties["Text"]; ok {
		if tp, ok := prop.(*notionapi.TitleProperty); ok {
			e.Text = plainText(tp.Title)
		}
	}
	if prop, ok := p.Properties["QID"]; ok {
		if rtp, ok := prop.(*notionapi.RichTextProperty); ok {
			e.QID = plainText(rtp.RichText)
		}
	}

	if e.Text == "" {
		return e, eris.New("missing Text property")
	}
	if e.QID == "" {
		return e, eris.New("missing QID property")
	}
	return e, nil
}

// plainText concatenates the plain_text values from a slice of RichText.
func plainText(rts []notionapi.RichText) string {
	var s string
	for _, rt := range rts {
		s += rt.PlainText
	}
	return s
}
