package main

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/quantor-labs/quantor/pkg/agent"
	"github.com/quantor-labs/quantor/pkg/config"
	"github.com/quantor-labs/quantor/pkg/version"
)

type rootOptions struct {
	envFile   string
	mcpConfig string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           version.AppName,
		Short:         "Multi-agent LLM market analysis orchestrator",
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	cmd.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env",
		"path to the .env file (missing file is not an error)")
	cmd.PersistentFlags().StringVar(&opts.mcpConfig, "mcp-config",
		envOr("MCP_CONFIG_PATH", "./mcp_servers.json"),
		"path to the MCP servers configuration file")

	cmd.AddCommand(newAnalyzeCmd(opts))
	cmd.AddCommand(newServeCmd(opts))
	return cmd
}

// loadConfig loads the .env file, initializes the configuration, and
// installs the configured log level.
func (o *rootOptions) loadConfig() (*config.Config, error) {
	if err := godotenv.Load(o.envFile); err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("could not load .env file", "path", o.envFile, "error", err)
		}
	} else {
		slog.Info("loaded environment", "path", o.envFile)
	}

	cfg, err := config.Initialize(o.mcpConfig, agent.Names())
	if err != nil {
		return nil, err
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.LogLevel(),
	})))
	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
