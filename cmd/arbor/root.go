package main

import (
	"fmt"
	"log/slog"

	"github.com/aretw0/arbor/internal/config"
	"github.com/aretw0/arbor/internal/logging"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "arbor",
		Short: "Arbor builds and renders small labeled trees",
		Long: `Arbor incrementally registers branch and leaf nodes into a tree and
renders the result as a DOT or Mermaid graph description.

Trees live in memory only. Use 'build' to replay a plan file, 'serve' for the
JSON API and 'mcp' to expose the tree tools to AI agents.`,
		SilenceUsage: true,
	}

	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn or error")
	rootCmd.PersistentFlags().String("config", "", "Path to an arbor.yaml configuration file")

	rootCmd.AddCommand(
		newBuildCmd(),
		newDemoCmd(),
		newServeCmd(),
		newMCPCmd(),
		newErrorCmd(),
		newVersionCmd(),
	)
	return rootCmd
}

// settings loads the config file and applies the flags that override it.
// Logs always go to stderr so stdout stays clean for renders and stdio transports.
func settings(cmd *cobra.Command) (config.Config, *slog.Logger, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, nil, err
	}

	if cmd.Flags().Changed("log-level") {
		cfg.LogLevel, _ = cmd.Flags().GetString("log-level")
	}
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return cfg, nil, fmt.Errorf("invalid --log-level: %w", err)
	}

	return cfg, logging.NewWithWriter(cmd.ErrOrStderr(), level), nil
}
