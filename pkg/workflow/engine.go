// Package workflow drives the analysis graph: a fixed sequence of
// analyst nodes, two bounded debate loops with counter-based routing,
// and the manager nodes that close each phase.
package workflow

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/quantor-labs/quantor/pkg/agent"
	"github.com/quantor-labs/quantor/pkg/config"
	"github.com/quantor-labs/quantor/pkg/models"
)

// nodeDone terminates the graph walk.
const nodeDone = ""

// Stage names recorded as the walk crosses phase boundaries.
const (
	StageAnalysis         = "analysis"
	StageInvestmentDebate = "investment_debate"
	StageResearchDecision = "research_decision"
	StageTrading          = "trading"
	StageRiskDebate       = "risk_debate"
	StageFinalDecision    = "final_decision"
)

// Engine walks the agent graph over a shared analysis state. Routing
// depends only on the debate counters, never on wall-clock time, so a
// run is fully reproducible given deterministic agents.
type Engine struct {
	maxDebateRounds     int
	maxRiskDebateRounds int
	agents              map[string]agent.Agent
	deps                *agent.Deps
	logger              *slog.Logger
}

// New builds an engine over the given agent set.
func New(cfg *config.Config, agents map[string]agent.Agent, deps *agent.Deps) *Engine {
	return &Engine{
		maxDebateRounds:     cfg.MaxDebateRounds,
		maxRiskDebateRounds: cfg.MaxRiskDebateRounds,
		agents:              agents,
		deps:                deps,
		logger:              slog.Default().With("component", "workflow"),
	}
}

// Run executes the graph from the first analyst to the risk manager.
// It returns a context error when cancelled between or inside nodes, or
// an engine error when the graph reaches an unregistered node; agent
// failures are captured into the state and do not stop the walk.
func (e *Engine) Run(ctx context.Context, state *models.AnalysisState) error {
	node := agent.MarketAnalyst
	stage := ""
	for node != nodeDone {
		if err := ctx.Err(); err != nil {
			return err
		}
		if next := stageOf(node); next != stage {
			stage = next
			if e.deps.Recorder != nil {
				e.deps.Recorder.StartStage(stage, stageDescription(stage))
			}
		}

		ag, ok := e.agents[node]
		if !ok {
			return fmt.Errorf("workflow: no agent registered for node %q", node)
		}
		e.logger.Debug("executing node", "node", node, "stage", stage)
		if err := ag.Process(ctx, state, e.deps); err != nil {
			return err
		}
		node = e.next(node, state)
	}
	return nil
}

// next selects the successor of the node that just ran.
func (e *Engine) next(current string, state *models.AnalysisState) string {
	switch current {
	case agent.MarketAnalyst:
		return agent.SentimentAnalyst
	case agent.SentimentAnalyst:
		return agent.NewsAnalyst
	case agent.NewsAnalyst:
		return agent.FundamentalsAnalyst
	case agent.FundamentalsAnalyst:
		return agent.CompanyOverviewAnalyst
	case agent.CompanyOverviewAnalyst:
		return agent.ShareholderAnalyst
	case agent.ShareholderAnalyst:
		return agent.ProductAnalyst
	case agent.ProductAnalyst:
		return agent.BullResearcher
	case agent.BullResearcher, agent.BearResearcher:
		return nextInvestmentNode(state.InvestmentDebate.Count, e.maxDebateRounds)
	case agent.ResearchManager:
		return agent.Trader
	case agent.Trader:
		return agent.AggressiveRiskAnalyst
	case agent.AggressiveRiskAnalyst, agent.SafeRiskAnalyst, agent.NeutralRiskAnalyst:
		return nextRiskNode(state.RiskDebate.Count, e.maxRiskDebateRounds)
	case agent.RiskManager:
		return nodeDone
	}
	return nodeDone
}

// nextInvestmentNode routes the bull/bear loop. The opening bull turn
// makes count 1, so odd count means the bear replies next; once the
// bound is reached the research manager adjudicates. A bound of zero
// still lets the opening bull turn through before completing.
func nextInvestmentNode(count, maxRounds int) string {
	if count >= maxRounds {
		return agent.ResearchManager
	}
	if count%2 == 1 {
		return agent.BearResearcher
	}
	return agent.BullResearcher
}

// nextRiskNode routes the aggressive/safe/neutral round-robin by the
// residue of count modulo 3, handing off to the risk manager once the
// bound is reached.
func nextRiskNode(count, maxRounds int) string {
	if count >= maxRounds {
		return agent.RiskManager
	}
	switch count % 3 {
	case 1:
		return agent.SafeRiskAnalyst
	case 2:
		return agent.NeutralRiskAnalyst
	default:
		return agent.AggressiveRiskAnalyst
	}
}

func stageOf(node string) string {
	switch node {
	case agent.MarketAnalyst, agent.SentimentAnalyst, agent.NewsAnalyst,
		agent.FundamentalsAnalyst, agent.CompanyOverviewAnalyst,
		agent.ShareholderAnalyst, agent.ProductAnalyst:
		return StageAnalysis
	case agent.BullResearcher, agent.BearResearcher:
		return StageInvestmentDebate
	case agent.ResearchManager:
		return StageResearchDecision
	case agent.Trader:
		return StageTrading
	case agent.AggressiveRiskAnalyst, agent.SafeRiskAnalyst, agent.NeutralRiskAnalyst:
		return StageRiskDebate
	case agent.RiskManager:
		return StageFinalDecision
	}
	return ""
}

func stageDescription(stage string) string {
	switch stage {
	case StageAnalysis:
		return "analyst agents gather reports"
	case StageInvestmentDebate:
		return "bull and bear researchers debate the investment case"
	case StageResearchDecision:
		return "research manager adjudicates the debate"
	case StageTrading:
		return "trader drafts the executable plan"
	case StageRiskDebate:
		return "risk analysts debate the trader's plan"
	case StageFinalDecision:
		return "risk manager issues the final decision"
	}
	return ""
}
