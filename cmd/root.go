package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/aide-analytics/aide-cli/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "aide",
	Short: "Conversational analytics over P&L and utilization data",
	Long:  "Routes natural-language business questions to prebuilt financial reports or a generic data summarizer, over P&L and utilization spreadsheets.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
