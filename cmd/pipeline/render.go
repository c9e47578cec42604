package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sohail300/pipeline/internal/presentation/tui"
)

var renderCmd = &cobra.Command{
	Use:   "render <graph.json> [node-id...]",
	Short: "Render node cards",
	Long:  `Loads a saved graph and prints each node as it would be drawn: title, field controls and handles.`,
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		ed, cleanup, err := newEditor(cmd.Context(), cfg, newLogger(cfg), nil)
		if err != nil {
			return err
		}
		defer cleanup()

		if err := importGraph(ed, args[0]); err != nil {
			return err
		}

		var cards []string
		if ids := args[1:]; len(ids) > 0 {
			for _, id := range ids {
				v, err := ed.View(id)
				if err != nil {
					return err
				}
				cards = append(cards, tui.NodeCardMarkdown(v))
			}
		} else {
			for _, v := range ed.Views() {
				cards = append(cards, tui.NodeCardMarkdown(v))
			}
		}

		out, err := tui.NewRenderer(isPlain(cmd))(strings.Join(cards, "\n---\n\n"))
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), out)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(renderCmd)
}
