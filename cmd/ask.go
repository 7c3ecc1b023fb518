package main

import (
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/aide-analytics/aide-cli/internal/model"
	"github.com/aide-analytics/aide-cli/internal/render"
)

var askNoNarrative bool

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Answer one business question from the loaded datasets",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		question := strings.Join(args, " ")

		e, err := initEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer e.Close()

		res := e.Router.Route(cmd.Context(), question, e.PNL, e.UT)
		if !askNoNarrative {
			e.Narrator.Annotate(cmd.Context(), question, res)
		}
		render.Result(os.Stdout, res)

		if e.History != nil {
			rec := model.AskRecord{
				Question: question,
				Mode:     res.Mode,
				QID:      res.QID,
				Score:    res.Score,
			}
			if err := e.History.SaveAsk(cmd.Context(), rec); err != nil {
				zap.L().Warn("save ask failed", zap.Error(err))
			}
		}
		return nil
	},
}

func init() {
	askCmd.Flags().BoolVar(&askNoNarrative, "no-narrative", false, "skip the prose summary even when the Anthropic key is configured")
	rootCmd.AddCommand(askCmd)
}
