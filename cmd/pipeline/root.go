package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/sohail300/pipeline"
	"github.com/sohail300/pipeline/internal/config"
	"github.com/sohail300/pipeline/internal/logging"
	"github.com/sohail300/pipeline/pkg/adapters/redis"
	"github.com/sohail300/pipeline/pkg/nodetype"
)

var rootCmd = &cobra.Command{
	Use:   "pipeline",
	Short: "Pipeline is a headless visual pipeline editor",
	Long: `Pipeline builds node graphs from a palette of node types, renders their
fields and handles, and submits the result to a validation service that
reports node and edge counts and whether the graph is a DAG.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands). Empty values fall back to the environment.
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error (env "+config.EnvLogLevel+")")
	rootCmd.PersistentFlags().String("validator-url", "", "Validation service root (env "+config.EnvValidatorURL+")")
	rootCmd.PersistentFlags().String("node-types", "", "YAML catalog of extra node types (env "+config.EnvNodeTypes+")")
	rootCmd.PersistentFlags().String("redis-addr", "", "Redis address for shared node ids (env "+config.EnvRedisAddr+")")
	rootCmd.PersistentFlags().Bool("single-flight", false, "Reject a submission while another is in flight")
	rootCmd.PersistentFlags().Bool("plain", false, "Disable colors and markdown styling")
}

// loadConfig resolves the environment and applies flag overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	flags := cmd.Flags()
	if v, _ := flags.GetString("log-level"); v != "" {
		cfg.LogLevel = v
	}
	if v, _ := flags.GetString("validator-url"); v != "" {
		cfg.ValidatorURL = v
	}
	if v, _ := flags.GetString("node-types"); v != "" {
		cfg.NodeTypes = v
	}
	if v, _ := flags.GetString("redis-addr"); v != "" {
		cfg.RedisAddr = v
	}
	if v, _ := flags.GetBool("single-flight"); v {
		cfg.SingleFlight = true
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) *slog.Logger {
	level, _ := logging.ParseLevel(cfg.LogLevel)
	return logging.New(level)
}

// newRegistry returns the builtin node types plus the catalog, if any.
func newRegistry(cfg *config.Config) (*nodetype.Registry, error) {
	reg := nodetype.Builtin()
	if cfg.NodeTypes != "" {
		if err := nodetype.LoadCatalogFile(reg, cfg.NodeTypes); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

// newEditor wires an editor from the configuration.
// metrics may be nil. The returned cleanup closes the editor and any Redis client.
func newEditor(ctx context.Context, cfg *config.Config, logger *slog.Logger, metrics prometheus.Registerer) (*pipeline.Editor, func(), error) {
	reg, err := newRegistry(cfg)
	if err != nil {
		return nil, nil, err
	}

	opts := []pipeline.Option{
		pipeline.WithRegistry(reg),
		pipeline.WithLogger(logger),
		pipeline.WithValidatorURL(cfg.ValidatorURL),
	}
	if cfg.SingleFlight {
		opts = append(opts, pipeline.WithSingleFlight())
	}
	if metrics != nil {
		opts = append(opts, pipeline.WithMetrics(metrics))
	}

	var alloc *redis.Allocator
	if cfg.RedisAddr != "" {
		alloc = redis.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err := alloc.Ping(ctx); err != nil {
			_ = alloc.Close()
			return nil, nil, fmt.Errorf("redis unavailable at %s: %w", cfg.RedisAddr, err)
		}
		logger.Info("Using Redis for node ids", "addr", cfg.RedisAddr)
		opts = append(opts, pipeline.WithIDAllocator(alloc))
	}

	ed, err := pipeline.New(opts...)
	if err != nil {
		if alloc != nil {
			_ = alloc.Close()
		}
		return nil, nil, err
	}
	return ed, func() {
		_ = ed.Close()
		if alloc != nil {
			_ = alloc.Close()
		}
	}, nil
}

// isPlain reports whether output should skip colors and markdown styling.
func isPlain(cmd *cobra.Command) bool {
	if plain, _ := cmd.Flags().GetBool("plain"); plain {
		return true
	}
	return !term.IsTerminal(int(os.Stdout.Fd()))
}
