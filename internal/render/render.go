package render

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/aide-analytics/aide-cli/internal/model"
)

// Result writes a routing result as plain text: mode line, notices,
// tables, and narrative.
func Result(w io.Writer, res *model.Result) {
	switch res.Mode {
	case model.ModePrebuilt:
		fmt.Fprintf(w, "Answered by prebuilt analysis %s (matched %q, score %.2f)\n",
			res.QID, res.Prompt, res.Score)
	default:
		fmt.Fprintln(w, "Answered by generic summary")
	}

	for _, n := range res.Notices {
		fmt.Fprintf(w, "note: %s\n", n)
	}

	for i := range res.Tables {
		fmt.Fprintln(w)
		Table(w, &res.Tables[i])
	}

	if res.Narrative != "" {
		fmt.Fprintln(w)
		fmt.Fprintln(w, res.Narrative)
	}
}

// Table writes one table with tab-aligned columns.
func Table(w io.Writer, t *model.Table) {
	if t.Title != "" {
		fmt.Fprintln(w, t.Title)
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(t.Columns, "\t"))
	for _, row := range t.Rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	tw.Flush() //nolint:errcheck
}
