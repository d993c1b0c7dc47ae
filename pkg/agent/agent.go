// Package agent provides the agent execution harness and the catalog of
// concrete agents. Each agent is a prompt specialization with a single
// output-field contract; the shared harness handles prompt assembly,
// the LLM call, session recording, and error capture.
package agent

import (
	"context"

	"github.com/quantor-labs/quantor/pkg/llm"
	"github.com/quantor-labs/quantor/pkg/mcp"
	"github.com/quantor-labs/quantor/pkg/models"
	"github.com/quantor-labs/quantor/pkg/recorder"
)

// Agent names. These are the workflow node identifiers, the session-log
// agent keys, and the stems of the <NAME>_MCP_ENABLED env toggles.
const (
	MarketAnalyst          = "market_analyst"
	SentimentAnalyst       = "sentiment_analyst"
	NewsAnalyst            = "news_analyst"
	FundamentalsAnalyst    = "fundamentals_analyst"
	CompanyOverviewAnalyst = "company_overview_analyst"
	ShareholderAnalyst     = "shareholder_analyst"
	ProductAnalyst         = "product_analyst"
	BullResearcher         = "bull_researcher"
	BearResearcher         = "bear_researcher"
	ResearchManager        = "research_manager"
	Trader                 = "trader"
	AggressiveRiskAnalyst  = "aggressive_risk_analyst"
	SafeRiskAnalyst        = "safe_risk_analyst"
	NeutralRiskAnalyst     = "neutral_risk_analyst"
	RiskManager            = "risk_manager"
)

// Deps bundles the execution dependencies every agent needs.
// Broker may be nil (no-tool mode); Recorder and LLM are required.
type Deps struct {
	Recorder *recorder.Recorder
	Broker   *mcp.Broker
	LLM      llm.Client
}

// Spec declares one agent: its prompts, its preconditions, and how its
// result lands in the analysis state.
type Spec struct {
	// Name is the node/agent identifier (snake_case).
	Name string

	// Role is the system-prompt role description.
	Role string

	// Action is the recorded description of what the agent does.
	Action string

	// ErrorLabel prefixes captured failures, e.g. "news analysis"
	// yields "news analysis error: ...".
	ErrorLabel string

	// OutputField receives the result for plain agents. Empty when
	// Apply is set (debate agents append to a substate instead).
	OutputField models.ReportField

	// Requires lists upstream fields that must be non-empty before the
	// agent runs. A violation is captured as an agent failure.
	Requires []models.ReportField

	// Apply writes the result into the state. Nil means write
	// OutputField via the write-once setter.
	Apply func(state *models.AnalysisState, content string)

	// ExtraContext appends per-agent material to the context prompt
	// (e.g. the opponent's latest debate argument). Nil for none.
	ExtraContext func(state *models.AnalysisState) string
}

// Agent is one node in the workflow graph.
type Agent interface {
	// Name returns the node identifier.
	Name() string

	// Process runs the agent against the shared state. Agent-level
	// failures are captured into the state and never returned; the only
	// non-nil errors are context cancellation/expiry, which the engine
	// uses to stop the run.
	Process(ctx context.Context, state *models.AnalysisState, deps *Deps) error
}
