package main

import (
	"fmt"
	"log/slog"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/quantor-labs/quantor/pkg/models"
	"github.com/quantor-labs/quantor/pkg/orchestrator"
)

func newAnalyzeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "analyze <query>",
		Short: "Run one full analysis for the given query",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			query := strings.Join(args, " ")
			state, err := orchestrator.New(cfg).RunAnalysis(ctx, query)
			if state != nil {
				printOutcome(cmd, state)
			}
			return err
		},
	}
}

// printOutcome writes the run's decisive fields to stdout; errors and
// warnings go to the logger.
func printOutcome(cmd *cobra.Command, state *models.AnalysisState) {
	for _, w := range state.Warnings {
		slog.Warn(w)
	}
	for _, e := range state.Errors {
		slog.Error(e.Message, "agent", e.Agent)
	}

	sections := []struct {
		title string
		field models.ReportField
	}{
		{"Investment Plan", models.FieldInvestmentPlan},
		{"Trader Investment Plan", models.FieldTraderInvestmentPlan},
		{"Final Trade Decision", models.FieldFinalTradeDecision},
	}
	for _, s := range sections {
		if value := state.Field(s.field); value != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "## %s\n\n%s\n\n", s.title, value)
		}
	}
}
