// Package cmd contains all the CLI commands for the application,
// built using the Cobra library.
package cmd

import (
	"context"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/naka-gawa/contrib-tracker/internal/config"
	"github.com/naka-gawa/contrib-tracker/internal/gateway"
	"github.com/naka-gawa/contrib-tracker/internal/usecase"
)

var rootCmd = &cobra.Command{
	Use:   "github-stats",
	Short: "A CLI tool to track GitHub user contributions.",
	Long: `github-stats tracks a list of GitHub users and shows their contribution
counts (commits, issues, pull requests, reviews, repositories created)
for a date range.

Configuration is read from an optional YAML file (--config) and the
environment: GITHUB_TOKEN, GITHUB_STATS_USERS, GITHUB_STATS_GRAPHQL_URL,
GITHUB_STATS_REQUEST_TIMEOUT.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
// Interrupts cancel in-flight requests through the command context.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		stop()
		os.Exit(1)
	}
}

func init() {
	// Add a persistent flag for verbose output, available to all commands.
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose/debug logging")
	rootCmd.PersistentFlags().StringP("config", "c", "", "Path to a YAML config file")
}

// newLogger discards all logs unless --verbose is set, then logs to standard error.
func newLogger(cmd *cobra.Command) *log.Logger {
	verbose, _ := cmd.Flags().GetBool("verbose")
	logger := log.New(io.Discard, "", log.LstdFlags)
	if verbose {
		logger.SetOutput(cmd.ErrOrStderr())
	}
	return logger
}

// setup loads the configuration and wires the gateway into a workflow seeded from it.
func setup(cmd *cobra.Command, logger *log.Logger) (*config.Config, *usecase.StatsWorkflow, error) {
	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}

	fetcher, err := gateway.NewGitHubGateway(cfg.Token, cfg.GraphQLURL, logger)
	if err != nil {
		return nil, nil, err
	}
	workflow := usecase.NewStatsWorkflow(fetcher, logger, usecase.WithRequestTimeout(cfg.RequestTimeout))
	workflow.Seed(cfg.Users)
	return cfg, workflow, nil
}
