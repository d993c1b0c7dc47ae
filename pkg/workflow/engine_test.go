package workflow

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantor-labs/quantor/pkg/agent"
	"github.com/quantor-labs/quantor/pkg/config"
	"github.com/quantor-labs/quantor/pkg/llm"
	"github.com/quantor-labs/quantor/pkg/models"
)

func testConfig(debateRounds, riskRounds int) *config.Config {
	return &config.Config{
		MaxDebateRounds:     debateRounds,
		MaxRiskDebateRounds: riskRounds,
	}
}

func runEngine(t *testing.T, cfg *config.Config, client llm.Client) *models.AnalysisState {
	t.Helper()
	state := models.NewAnalysisState("analyze AAPL")
	engine := New(cfg, agent.Build(), &agent.Deps{LLM: client})
	require.NoError(t, engine.Run(context.Background(), state))
	return state
}

func executionOrder(state *models.AnalysisState) []string {
	order := make([]string, 0, len(state.AgentExecutions))
	for _, exec := range state.AgentExecutions {
		order = append(order, exec.Agent)
	}
	return order
}

var analystPrefix = []string{
	agent.MarketAnalyst, agent.SentimentAnalyst, agent.NewsAnalyst,
	agent.FundamentalsAnalyst, agent.CompanyOverviewAnalyst,
	agent.ShareholderAnalyst, agent.ProductAnalyst,
}

func TestNextInvestmentNode(t *testing.T) {
	tests := []struct {
		count, max int
		want       string
	}{
		{1, 0, agent.ResearchManager},
		{1, 1, agent.ResearchManager},
		{1, 2, agent.BearResearcher},
		{2, 2, agent.ResearchManager},
		{1, 3, agent.BearResearcher},
		{2, 3, agent.BullResearcher},
		{3, 3, agent.ResearchManager},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, nextInvestmentNode(tt.count, tt.max),
			"count=%d max=%d", tt.count, tt.max)
	}
}

func TestNextRiskNode(t *testing.T) {
	tests := []struct {
		count, max int
		want       string
	}{
		{1, 1, agent.RiskManager},
		{1, 2, agent.SafeRiskAnalyst},
		{2, 2, agent.RiskManager},
		{1, 6, agent.SafeRiskAnalyst},
		{2, 6, agent.NeutralRiskAnalyst},
		{3, 6, agent.AggressiveRiskAnalyst},
		{4, 6, agent.SafeRiskAnalyst},
		{6, 6, agent.RiskManager},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, nextRiskNode(tt.count, tt.max),
			"count=%d max=%d", tt.count, tt.max)
	}
}

func TestEngine_FullRun_DefaultBounds(t *testing.T) {
	state := runEngine(t, testConfig(3, 2), llm.NewStubClient())

	want := append(append([]string{}, analystPrefix...),
		agent.BullResearcher, agent.BearResearcher, agent.BullResearcher,
		agent.ResearchManager, agent.Trader,
		agent.AggressiveRiskAnalyst, agent.SafeRiskAnalyst,
		agent.RiskManager)
	assert.Equal(t, want, executionOrder(state))

	assert.Equal(t, 3, state.InvestmentDebate.Count)
	assert.Equal(t, 2, state.RiskDebate.Count)
	assert.Equal(t, "OK from research_manager", state.InvestmentPlan)
	assert.Equal(t, "OK from trader", state.TraderInvestmentPlan)
	assert.Equal(t, "OK from risk_manager", state.FinalTradeDecision)
	assert.Empty(t, state.Errors)
}

func TestEngine_DebateBounds(t *testing.T) {
	tests := []struct {
		name       string
		maxRounds  int
		wantDebate []string
	}{
		{"zero still opens with bull", 0, []string{agent.BullResearcher}},
		{"one", 1, []string{agent.BullResearcher}},
		{"two", 2, []string{agent.BullResearcher, agent.BearResearcher}},
		{"three", 3, []string{agent.BullResearcher, agent.BearResearcher, agent.BullResearcher}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := runEngine(t, testConfig(tt.maxRounds, 1), llm.NewStubClient())

			order := executionOrder(state)
			debate := order[len(analystPrefix) : len(order)-4] // strip analysts, manager, trader, risk loop, risk manager
			assert.Equal(t, tt.wantDebate, debate)
			assert.Equal(t, len(tt.wantDebate), state.InvestmentDebate.Count)
			assert.Equal(t, len(tt.wantDebate),
				strings.Count(state.InvestmentDebate.History, "【"),
				"history markers match count")
		})
	}
}

func TestEngine_RiskBoundOne(t *testing.T) {
	state := runEngine(t, testConfig(1, 1), llm.NewStubClient())

	order := executionOrder(state)
	assert.Equal(t, agent.AggressiveRiskAnalyst, order[len(order)-2])
	assert.Equal(t, agent.RiskManager, order[len(order)-1])
	assert.Equal(t, 1, state.RiskDebate.Count)
}

func TestEngine_CancellationBetweenNodes(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	stub := &llm.StubClient{RespondFn: func(req *llm.ChatRequest) (string, error) {
		if req.Agent == agent.MarketAnalyst {
			defer cancel() // fires after this agent completes
		}
		return "OK from " + req.Agent, nil
	}}

	state := models.NewAnalysisState("analyze AAPL")
	engine := New(testConfig(3, 2), agent.Build(), &agent.Deps{LLM: stub})
	err := engine.Run(ctx, state)

	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, "OK from market_analyst", state.MarketReport)
	assert.Empty(t, state.SentimentReport)
	assert.Empty(t, state.FinalTradeDecision)
}

func TestEngine_CancellationMidDebate(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	stub := &llm.StubClient{RespondFn: func(req *llm.ChatRequest) (string, error) {
		if req.Agent == agent.BearResearcher {
			cancel() // cancellation lands while the bear is speaking
			return "", ctx.Err()
		}
		return "OK from " + req.Agent, nil
	}}

	state := models.NewAnalysisState("analyze AAPL")
	engine := New(testConfig(3, 2), agent.Build(), &agent.Deps{LLM: stub})
	err := engine.Run(ctx, state)

	require.ErrorIs(t, err, context.Canceled)
	assert.Contains(t, []int{1, 2}, state.InvestmentDebate.Count)
	assert.Empty(t, state.InvestmentPlan)
	assert.Empty(t, state.FinalTradeDecision)
}

func TestEngine_AgentFailureDoesNotStopRun(t *testing.T) {
	stub := &llm.StubClient{RespondFn: func(req *llm.ChatRequest) (string, error) {
		if req.Agent == agent.NewsAnalyst {
			return "", assert.AnError
		}
		return "OK from " + req.Agent, nil
	}}
	state := runEngine(t, testConfig(1, 1), stub)

	assert.Contains(t, state.NewsReport, "news analysis error:")
	assert.Equal(t, "OK from risk_manager", state.FinalTradeDecision,
		"run completes past a failed analyst")
	require.Len(t, state.Errors, 1)
	assert.Equal(t, agent.NewsAnalyst, state.Errors[0].Agent)
}

func TestEngine_Deterministic(t *testing.T) {
	run := func() *models.AnalysisState {
		return runEngine(t, testConfig(3, 2), llm.NewStubClient())
	}
	a, b := run(), run()

	assert.Equal(t, executionOrder(a), executionOrder(b))
	assert.Equal(t, a.InvestmentDebate, b.InvestmentDebate)
	assert.Equal(t, a.RiskDebate, b.RiskDebate)
	assert.Equal(t, a.FinalTradeDecision, b.FinalTradeDecision)
}

func TestEngine_UnknownNodeFails(t *testing.T) {
	agents := agent.Build()
	delete(agents, agent.Trader)

	state := models.NewAnalysisState("analyze AAPL")
	engine := New(testConfig(1, 1), agents, &agent.Deps{LLM: llm.NewStubClient()})
	err := engine.Run(context.Background(), state)
	assert.ErrorContains(t, err, "no agent registered")
}
