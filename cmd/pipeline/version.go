package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sohail300/pipeline"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of pipeline",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "pipeline version %s\n", strings.TrimSpace(pipeline.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
