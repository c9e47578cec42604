package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sohail300/pipeline/internal/presentation/tui"
	"github.com/sohail300/pipeline/pkg/submit"
)

var submitCmd = &cobra.Command{
	Use:   "submit <graph.json>",
	Short: "Submit a saved graph to the validation service",
	Long:  `Loads a saved graph, submits it to the validation service and prints the analysis dialog.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), cfg.SubmitTimeout)
		defer cancel()

		ed, cleanup, err := newEditor(ctx, cfg, newLogger(cfg), nil)
		if err != nil {
			return err
		}
		defer cleanup()

		if err := importGraph(ed, args[0]); err != nil {
			return err
		}

		d := ed.Submit(ctx)
		out, err := tui.NewRenderer(isPlain(cmd))(tui.DialogMarkdown(d))
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), out)

		if d.Variant == submit.VariantError {
			return fmt.Errorf("submission failed: %s", d.Error)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(submitCmd)
}
