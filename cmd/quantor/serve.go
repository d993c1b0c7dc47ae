package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/quantor-labs/quantor/pkg/api"
	"github.com/quantor-labs/quantor/pkg/orchestrator"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			server := api.NewServer(cfg, orchestrator.New(cfg))
			return server.Run(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", envOr("HTTP_ADDR", ":8080"),
		"listen address for the HTTP API")
	return cmd
}
