// Package orchestrator exposes the one-call entry point for a full
// market analysis run: session setup, tool broker bring-up, the
// workflow walk, and final status accounting.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/quantor-labs/quantor/pkg/agent"
	"github.com/quantor-labs/quantor/pkg/config"
	"github.com/quantor-labs/quantor/pkg/llm"
	"github.com/quantor-labs/quantor/pkg/mcp"
	"github.com/quantor-labs/quantor/pkg/models"
	"github.com/quantor-labs/quantor/pkg/recorder"
	"github.com/quantor-labs/quantor/pkg/workflow"
)

// ErrEmptyQuery is returned before any session is created.
var ErrEmptyQuery = errors.New("user query is empty")

// Orchestrator wires the configured LLM client, tool broker, and
// session recorder into the workflow engine.
type Orchestrator struct {
	cfg    *config.Config
	llm    llm.Client
	logger *slog.Logger
}

// New builds an orchestrator with the OpenAI-compatible client from the
// configuration.
func New(cfg *config.Config) *Orchestrator {
	return NewWithClient(cfg, llm.NewOpenAIClient(cfg.LLM))
}

// NewWithClient builds an orchestrator around an explicit LLM client.
func NewWithClient(cfg *config.Config, client llm.Client) *Orchestrator {
	return &Orchestrator{
		cfg:    cfg,
		llm:    client,
		logger: slog.Default().With("component", "orchestrator"),
	}
}

// RunAnalysis executes the full workflow for one user query. The state
// is returned even on failure or cancellation, holding everything the
// run produced up to that point. The returned error is non-nil only for
// an empty query, cancellation, or an engine-level fault; individual
// agent failures are captured inside the state.
func (o *Orchestrator) RunAnalysis(ctx context.Context, query string) (*models.AnalysisState, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}

	state := models.NewAnalysisState(query)

	rec := o.openSession(query, state)
	broker := o.openBroker(ctx, rec, state)
	defer func() {
		if broker != nil {
			if err := broker.Close(); err != nil {
				o.logger.Warn("closing MCP broker", "error", err)
			}
		}
	}()

	engine := workflow.New(o.cfg, agent.Build(), &agent.Deps{
		Recorder: rec,
		Broker:   broker,
		LLM:      o.llm,
	})

	err := engine.Run(ctx, state)
	o.finish(rec, state, err)
	return state, err
}

// openSession creates the session recorder. Recorder trouble degrades
// to an unrecorded run rather than aborting the analysis.
func (o *Orchestrator) openSession(query string, state *models.AnalysisState) *recorder.Recorder {
	rec, err := recorder.New(o.cfg.DumpDir, recorder.GenerateSessionID())
	if err != nil {
		warning := fmt.Sprintf("session recording disabled: %v", err)
		o.logger.Warn("failed to create session recorder", "error", err)
		state.AddWarning(warning)
		return nil
	}
	rec.SetUserQuery(query)
	rec.SetStatus(models.SessionStatusRunning)
	o.logger.Info("session started", "session_id", rec.SessionID(), "path", rec.Path())
	return rec
}

// openBroker brings up the MCP tool broker. Any failure here leaves the
// run in no-tool mode with a warning; transport failures per server are
// surfaced individually.
func (o *Orchestrator) openBroker(ctx context.Context, rec *recorder.Recorder, state *models.AnalysisState) *mcp.Broker {
	if o.cfg.MCPServers == nil || o.cfg.MCPServers.Len() == 0 {
		return nil
	}

	broker := mcp.NewBroker(o.cfg.MCPServers, models.AgentPermissions(o.cfg.AgentMCP))
	if err := broker.Initialize(ctx); err != nil {
		warning := fmt.Sprintf("MCP broker unavailable, continuing without tools: %v", err)
		o.logger.Warn("MCP broker initialization failed", "error", err)
		o.warn(rec, state, warning)
		_ = broker.Close()
		return nil
	}
	for server, reason := range broker.FailedServers() {
		o.warn(rec, state, fmt.Sprintf("MCP server %q unreachable: %s", server, reason))
	}
	return broker
}

// finish maps the engine outcome onto the session status and records
// the run summary.
func (o *Orchestrator) finish(rec *recorder.Recorder, state *models.AnalysisState, err error) {
	switch {
	case err == nil:
		if rec != nil {
			rec.SetFinalResults(finalResults(state))
			rec.SetStatus(models.SessionStatusCompleted)
		}
		o.logger.Info("analysis completed")
	case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
		o.warn(rec, state, fmt.Sprintf("analysis cancelled: %v", err))
		if rec != nil {
			rec.SetStatus(models.SessionStatusCancelled)
		}
		o.logger.Warn("analysis cancelled", "error", err)
	default:
		state.AddError("", err.Error())
		if rec != nil {
			rec.AddError(err.Error(), "")
			rec.SetStatus(models.SessionStatusFailed)
		}
		o.logger.Error("analysis failed", "error", err)
	}
}

func (o *Orchestrator) warn(rec *recorder.Recorder, state *models.AnalysisState, warning string) {
	state.AddWarning(warning)
	if rec != nil {
		rec.AddWarning(warning, "")
	}
}

// finalResults distills the run down to the fields a reader cares
// about; empty fields are omitted.
func finalResults(state *models.AnalysisState) map[string]string {
	results := make(map[string]string)
	for _, field := range []models.ReportField{
		models.FieldInvestmentPlan,
		models.FieldTraderInvestmentPlan,
		models.FieldFinalTradeDecision,
	} {
		if value := state.Field(field); value != "" {
			results[string(field)] = value
		}
	}
	return results
}
