package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sohail300/pipeline/pkg/nodetype"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Inspect node type catalogs",
}

var catalogDumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Print the node types as a YAML catalog",
	Long:  `Prints the builtin node types, plus those of --node-types, in the catalog format accepted by --node-types.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		reg, err := newRegistry(cfg)
		if err != nil {
			return err
		}
		return nodetype.WriteCatalog(cmd.OutOrStdout(), reg)
	},
}

var catalogValidateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Check a node type catalog",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		c, err := nodetype.LoadCatalog(f)
		if err != nil {
			var cerr *nodetype.CatalogError
			if errors.As(err, &cerr) {
				for _, e := range cerr.Errors {
					fmt.Fprintf(cmd.ErrOrStderr(), "  - %v\n", e)
				}
			}
			return fmt.Errorf("catalog %s is invalid", args[0])
		}

		// Types must not collide with the builtin ones.
		if err := c.RegisterInto(nodetype.Builtin()); err != nil {
			return fmt.Errorf("catalog %s: %w", args[0], err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Catalog is valid! ✅ (%d node types)\n", len(c.NodeTypes))
		return nil
	},
}

func init() {
	catalogCmd.AddCommand(catalogDumpCmd, catalogValidateCmd)
	rootCmd.AddCommand(catalogCmd)
}
