// Package narrative turns a computed result into a short prose summary
// via the Anthropic API. It is strictly optional: any failure leaves
// the result's tables untouched and the narrative empty.
package narrative

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/aide-analytics/aide-cli/internal/model"
	"github.com/aide-analytics/aide-cli/pkg/anthropic"
)

const systemPrompt = "You are a financial analyst. Summarize the tables below in at most " +
	"three sentences of plain business English. State the headline number and the " +
	"direction of movement; do not restate every row."

// Narrator writes a prose summary onto a Result.
type Narrator struct {
	client    anthropic.Client
	model     string
	maxTokens int64
}

// New builds a narrator. model defaults to a small fast model when
// empty.
func New(client anthropic.Client, model string) *Narrator {
	if model == "" {
		model = "claude-haiku-4-5-20251001"
	}
	return &Narrator{client: client, model: model, maxTokens: 512}
}

// Annotate fills res.Narrative from the result's tables. Errors are
// logged and swallowed; the tabular answer stands on its own.
func (n *Narrator) Annotate(ctx context.Context, question string, res *model.Result) {
	if n == nil || n.client == nil || len(res.Tables) == 0 {
		return
	}

	resp, err := n.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:     n.model,
		MaxTokens: n.maxTokens,
		System:    systemPrompt,
		Messages: []anthropic.Message{
			{Role: "user", Content: renderPrompt(question, res)},
		},
	})
	if err != nil {
		zap.L().Warn("narrative generation failed", zap.Error(err))
		return
	}
	resp.Usage.LogCost(n.model, "narrative")
	res.Narrative = strings.TrimSpace(resp.Text())
}

// renderPrompt flattens the result tables into a plain-text prompt.
func renderPrompt(question string, res *model.Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Question: %s\n\n", question)
	for _, t := range res.Tables {
		if t.Title != "" {
			fmt.Fprintf(&b, "%s\n", t.Title)
		}
		fmt.Fprintln(&b, strings.Join(t.Columns, " | "))
		for _, row := range t.Rows {
			fmt.Fprintln(&b, strings.Join(row, " | "))
		}
		fmt.Fprintln(&b)
	}
	for _, notice := range res.Notices {
		fmt.Fprintf(&b, "Note: %s\n", notice)
	}
	return b.String()
}
