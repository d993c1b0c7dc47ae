// Quantor — multi-agent market analysis orchestrator. Runs a fixed
// workflow of prompt-specialized LLM agents over MCP-provided tools and
// records every session to disk.
package main

import (
	"context"
	"errors"
	"os"

	"github.com/quantor-labs/quantor/pkg/config"
)

// Exit codes: 0 success, 1 configuration error, 2 runtime failure with
// partial state, 130 interrupted.
const (
	exitOK          = 0
	exitConfig      = 1
	exitFailure     = 2
	exitInterrupted = 130
)

func main() {
	os.Exit(exitCode(newRootCmd().Execute()))
}

// exitCode maps a command error onto the process exit code.
func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return exitInterrupted
	case errors.Is(err, config.ErrMissingAPIKey), errors.Is(err, config.ErrInvalidMCPConfig):
		return exitConfig
	default:
		return exitFailure
	}
}
