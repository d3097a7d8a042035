// Package main provides the resume_agent CLI and HTTP API server.
package main

import (
	"fmt"
	"os"

	"github.com/jonathan/resume-rag/internal/config"
	"github.com/jonathan/resume-rag/internal/observability"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// cli carries the state shared by every command of one invocation.
type cli struct {
	v          *viper.Viper
	configPath string
	cfg        *config.Config
	logger     *zap.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{v: config.NewViper()}

	root := &cobra.Command{
		Use:           "resume_agent",
		Short:         "Hybrid retrieval and selection engine for resume bullets",
		Long:          "resume_agent indexes resume points, ranks them against job descriptions with hybrid semantic and keyword scoring, selects the best bullets per section and rewrites them with an LLM.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.load()
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			if c.logger != nil {
				_ = c.logger.Sync()
			}
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&c.configPath, "config", "", "Path to a YAML, JSON or TOML config file")
	flags.Bool("debug", false, "Enable debug logging")
	flags.Bool("json", false, "Log as JSON")
	_ = c.v.BindPFlag("debug", flags.Lookup("debug"))
	_ = c.v.BindPFlag("json", flags.Lookup("json"))

	root.AddCommand(
		newIndexCmd(c),
		newClearCmd(c),
		newRankCmd(c),
		newSelectCmd(c),
		newOptimizeCmd(c),
		newOptimizeFlatCmd(c),
		newStatsCmd(c),
		newServeCmd(c),
		newHashPasswordCmd(c),
	)
	return root
}

// load reads the configuration and builds the logger.
func (c *cli) load() error {
	cfg, err := config.Load(c.v, c.configPath)
	if err != nil {
		return err
	}
	logger, err := observability.NewLogger(cfg.JSON, cfg.Debug)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	c.cfg = cfg
	c.logger = logger
	return nil
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
