package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var promptsCmd = &cobra.Command{
	Use:   "prompts",
	Short: "List the prompt bank the semantic matcher is built from",
	RunE: func(cmd *cobra.Command, args []string) error {
		bank, err := loadBank(cmd.Context())
		if err != nil {
			return err
		}

		tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "QID\tPROMPT")
		for _, e := range bank.Entries() {
			fmt.Fprintf(tw, "%s\t%s\n", e.QID, e.Text)
		}
		return tw.Flush()
	},
}

func init() {
	rootCmd.AddCommand(promptsCmd)
}
