package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/aide-analytics/aide-cli/internal/store"
)

var datasetsSnapshot bool

var datasetsCmd = &cobra.Command{
	Use:   "datasets",
	Short: "Load and summarize the configured datasets",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := initEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer e.Close()

		tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "DATASET\tROWS\tCOLUMNS")
		fmt.Fprintf(tw, "P&L\t%d\t%s\n", e.PNL.Len(), strings.Join(e.PNL.Columns(), ", "))
		if e.UT != nil {
			fmt.Fprintf(tw, "UT\t%d\t%s\n", e.UT.Len(), strings.Join(e.UT.Columns(), ", "))
		} else {
			fmt.Fprintf(tw, "UT\t-\tunavailable: %s\n", e.UTReason)
		}
		if err := tw.Flush(); err != nil {
			return err
		}

		if !datasetsSnapshot {
			return nil
		}
		pg, ok := e.History.(*store.PostgresStore)
		if !ok {
			return fmt.Errorf("--snapshot requires store.driver=postgres")
		}
		n, err := pg.SnapshotFrame(cmd.Context(), "pnl_snapshot", e.PNL)
		if err != nil {
			return err
		}
		fmt.Printf("snapshotted %d P&L rows\n", n)
		if e.UT != nil {
			n, err = pg.SnapshotFrame(cmd.Context(), "ut_snapshot", e.UT)
			if err != nil {
				return err
			}
			fmt.Printf("snapshotted %d UT rows\n", n)
		}
		return nil
	},
}

func init() {
	datasetsCmd.Flags().BoolVar(&datasetsSnapshot, "snapshot", false, "copy the normalized frames into postgres snapshot tables")
	rootCmd.AddCommand(datasetsCmd)
}
