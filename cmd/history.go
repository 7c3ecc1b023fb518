package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/aide-analytics/aide-cli/internal/model"
	"github.com/aide-analytics/aide-cli/internal/store"
)

var (
	historyLimit int
	historyMode  string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect the question history",
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recently asked questions",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openHistory(cmd.Context())
		if err != nil {
			return err
		}
		if s == nil {
			return fmt.Errorf("history store is disabled (store.driver=%q)", cfg.Store.Driver)
		}
		defer s.Close()

		recs, err := s.ListAsks(cmd.Context(), store.Filter{
			Mode:  model.Mode(historyMode),
			Limit: historyLimit,
		})
		if err != nil {
			return err
		}

		tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ASKED\tMODE\tQID\tSCORE\tQUESTION")
		for _, r := range recs {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%.2f\t%s\n",
				r.CreatedAt.Format("2006-01-02 15:04"), r.Mode, r.QID, r.Score, r.Question)
		}
		return tw.Flush()
	},
}

func init() {
	historyListCmd.Flags().IntVar(&historyLimit, "limit", 20, "maximum records to list")
	historyListCmd.Flags().StringVar(&historyMode, "mode", "", "filter by mode (prebuilt|fallback)")
	historyCmd.AddCommand(historyListCmd)
	rootCmd.AddCommand(historyCmd)
}
