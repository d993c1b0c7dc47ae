package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/quantor-labs/quantor/pkg/llm"
	"github.com/quantor-labs/quantor/pkg/models"
)

// harness executes one Spec through the shared pipeline: validate,
// compose prompts, decide tooling, call the model, record, and write the
// result (or the captured error) into the state.
type harness struct {
	spec   Spec
	logger *slog.Logger
	now    func() time.Time
}

// New builds an agent from its spec.
func New(spec Spec) Agent {
	return &harness{
		spec:   spec,
		logger: slog.Default().With("agent", spec.Name),
		now:    time.Now,
	}
}

func (h *harness) Name() string { return h.spec.Name }

func (h *harness) Process(ctx context.Context, state *models.AnalysisState, deps *Deps) error {
	started := h.now().UTC()
	system := h.spec.Role + "\n\nCurrent time: " + started.Format(time.RFC3339)
	user := h.contextPrompt(state, started)

	// The record opens before validation so a precondition failure still
	// leaves a start/complete pair in the session log.
	if deps.Recorder != nil {
		deps.Recorder.StartAgent(h.spec.Name, h.spec.Action, system, user)
	}

	if err := h.validate(state); err != nil {
		h.capture(state, deps, started, err)
		return nil
	}

	var tools []models.ToolDefinition
	var executor llm.ToolExecutor
	if deps.Broker != nil {
		tools = deps.Broker.ToolsForAgent(h.spec.Name)
		if len(tools) > 0 {
			executor = deps.Broker.ExecutorForAgent(h.spec.Name, func(rec models.ToolCallRecord) {
				state.RecordToolCall(rec)
				if deps.Recorder != nil {
					deps.Recorder.AddMCPToolCall(rec.Agent, rec.Tool, rec.Arguments, rec.Result, rec.IsError)
				}
			})
		}
	}

	result, err := deps.LLM.Chat(ctx, &llm.ChatRequest{
		Agent:    h.spec.Name,
		System:   system,
		User:     user,
		Tools:    tools,
		Executor: executor,
	})
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			if deps.Recorder != nil {
				deps.Recorder.CompleteAgent(h.spec.Name, err.Error(), false)
			}
			return err
		}
		h.capture(state, deps, started, err)
		return nil
	}

	if result.Truncated {
		warning := fmt.Sprintf("%s: tool loop reached the iteration cap; answer may be incomplete", h.spec.Name)
		state.AddWarning(warning)
		if deps.Recorder != nil {
			deps.Recorder.AddWarning(warning, h.spec.Name)
		}
	}

	h.write(state, result.Content)

	completed := h.now().UTC()
	state.AppendExecution(models.AgentExecution{
		Agent:       h.spec.Name,
		Action:      h.spec.Action,
		MCPUsed:     result.ToolCalls > 0,
		Success:     true,
		StartedAt:   started,
		CompletedAt: completed,
	})
	if deps.Recorder != nil {
		deps.Recorder.CompleteAgent(h.spec.Name, result.Content, true)
		if result.ToolCalls > 0 {
			deps.Recorder.AddAgentAction(h.spec.Name, "tool_calls", fmt.Sprintf("%d tool call(s) executed", result.ToolCalls))
		}
	}
	h.logger.Debug("agent completed", "tool_calls", result.ToolCalls, "duration", completed.Sub(started))
	return nil
}

// validate checks the agent's declared preconditions against the state.
func (h *harness) validate(state *models.AnalysisState) error {
	if strings.TrimSpace(state.UserQuery) == "" {
		return errors.New("user query is empty")
	}
	for _, field := range h.spec.Requires {
		if strings.TrimSpace(state.Field(field)) == "" {
			return fmt.Errorf("required input %q is empty", field)
		}
	}
	return nil
}

// write lands the content in the state, either through the spec's custom
// apply hook or the designated write-once field.
func (h *harness) write(state *models.AnalysisState, content string) {
	if h.spec.Apply != nil {
		h.spec.Apply(state, content)
		return
	}
	if err := state.WriteField(h.spec.OutputField, content); err != nil {
		h.logger.Warn("discarding duplicate field write", "field", h.spec.OutputField, "error", err)
	}
}

// capture converts an agent failure into data: the error text lands in
// the agent's output slot so downstream agents see it, and the run
// continues.
func (h *harness) capture(state *models.AnalysisState, deps *Deps, started time.Time, err error) {
	msg := fmt.Sprintf("%s error: %v", h.spec.ErrorLabel, err)
	h.logger.Error("agent failed", "error", err)

	h.write(state, msg)
	state.AddError(h.spec.Name, msg)
	state.AppendExecution(models.AgentExecution{
		Agent:       h.spec.Name,
		Action:      h.spec.Action,
		Success:     false,
		Error:       msg,
		StartedAt:   started,
		CompletedAt: h.now().UTC(),
	})
	if deps.Recorder != nil {
		deps.Recorder.CompleteAgent(h.spec.Name, msg, false)
		deps.Recorder.AddError(msg, h.spec.Name)
	}
}

// contextPrompt assembles the shared context block in a fixed order:
// timestamp, user query, accumulated reports, debate summaries, then
// plans. Empty sections collapse entirely.
func (h *harness) contextPrompt(state *models.AnalysisState, now time.Time) string {
	var b strings.Builder
	b.WriteString("Current time: ")
	b.WriteString(now.Format(time.RFC3339))
	b.WriteString("\n")
	b.WriteString("User query: ")
	b.WriteString(state.UserQuery)
	b.WriteString("\n")

	for _, section := range state.AnalystReports() {
		fmt.Fprintf(&b, "\n## %s\n%s\n", section.Label, section.Text)
	}

	if state.InvestmentDebate.History != "" {
		fmt.Fprintf(&b, "\n## Investment Debate\n%s\n", state.InvestmentDebate.History)
	}
	if state.RiskDebate.History != "" {
		fmt.Fprintf(&b, "\n## Risk Debate\n%s\n", state.RiskDebate.History)
	}
	if state.InvestmentPlan != "" {
		fmt.Fprintf(&b, "\n## Investment Plan\n%s\n", state.InvestmentPlan)
	}
	if state.TraderInvestmentPlan != "" {
		fmt.Fprintf(&b, "\n## Trader Investment Plan\n%s\n", state.TraderInvestmentPlan)
	}

	if h.spec.ExtraContext != nil {
		if extra := h.spec.ExtraContext(state); extra != "" {
			b.WriteString("\n")
			b.WriteString(extra)
			b.WriteString("\n")
		}
	}
	return b.String()
}
