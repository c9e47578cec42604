package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sohail300/pipeline/internal/presentation/graph"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph <graph.json>",
	Short: "Export the pipeline graph visualization",
	Long:  `Loads a saved graph and outputs a Mermaid diagram (graph LR) of its nodes and edges.`,
	Args:  cobra.ExactArgs(1),
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

		highlight, _ := cmd.Flags().GetStringSlice("highlight")
		snap := ed.Graph()
		fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(snap.Nodes, snap.Edges, &graph.GraphOverlay{
			Registry:  ed.Registry(),
			Highlight: highlight,
		}))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().StringSlice("highlight", nil, "Node ids to highlight")
}
