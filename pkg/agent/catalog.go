package agent

import (
	"fmt"
	"strings"

	"github.com/quantor-labs/quantor/pkg/models"
)

// analystRequires is shared by every debate participant and manager:
// they run after the analyst fan-in, so the four core reports must be
// populated (an errored analyst leaves its error text in the field,
// which still satisfies the precondition and keeps the run moving).
var analystRequires = []models.ReportField{
	models.FieldMarketReport,
	models.FieldSentimentReport,
	models.FieldNewsReport,
	models.FieldFundamentalsReport,
}

// Catalog returns every agent spec in workflow order. The workflow
// engine indexes these by name; the config layer uses the names to
// resolve per-agent MCP permissions.
func Catalog() []Spec {
	return []Spec{
		{
			Name:        MarketAnalyst,
			Role:        marketAnalystRole,
			Action:      "analyze market data and technicals",
			ErrorLabel:  "market analysis",
			OutputField: models.FieldMarketReport,
		},
		{
			Name:        SentimentAnalyst,
			Role:        sentimentAnalystRole,
			Action:      "analyze investor and social sentiment",
			ErrorLabel:  "sentiment analysis",
			OutputField: models.FieldSentimentReport,
		},
		{
			Name:        NewsAnalyst,
			Role:        newsAnalystRole,
			Action:      "analyze recent news and macro events",
			ErrorLabel:  "news analysis",
			OutputField: models.FieldNewsReport,
		},
		{
			Name:        FundamentalsAnalyst,
			Role:        fundamentalsAnalystRole,
			Action:      "analyze financial fundamentals",
			ErrorLabel:  "fundamentals analysis",
			OutputField: models.FieldFundamentalsReport,
		},
		{
			Name:        CompanyOverviewAnalyst,
			Role:        companyOverviewAnalystRole,
			Action:      "profile the company and its business",
			ErrorLabel:  "company overview analysis",
			OutputField: models.FieldCompanyOverviewReport,
		},
		{
			Name:        ShareholderAnalyst,
			Role:        shareholderAnalystRole,
			Action:      "analyze ownership structure",
			ErrorLabel:  "shareholder analysis",
			OutputField: models.FieldShareholderReport,
		},
		{
			Name:        ProductAnalyst,
			Role:        productAnalystRole,
			Action:      "analyze products and competitive position",
			ErrorLabel:  "product analysis",
			OutputField: models.FieldProductReport,
		},
		{
			Name:       BullResearcher,
			Role:       bullResearcherRole,
			Action:     "argue the bull case",
			ErrorLabel: "bull research",
			Requires:   analystRequires,
			Apply: func(state *models.AnalysisState, content string) {
				state.InvestmentDebate.AppendTurn(models.SpeakerBull, content)
			},
			ExtraContext: opponentArgument,
		},
		{
			Name:       BearResearcher,
			Role:       bearResearcherRole,
			Action:     "argue the bear case",
			ErrorLabel: "bear research",
			Requires:   analystRequires,
			Apply: func(state *models.AnalysisState, content string) {
				state.InvestmentDebate.AppendTurn(models.SpeakerBear, content)
			},
			ExtraContext: opponentArgument,
		},
		{
			Name:        ResearchManager,
			Role:        researchManagerRole,
			Action:      "adjudicate the investment debate",
			ErrorLabel:  "research management",
			OutputField: models.FieldInvestmentPlan,
			Requires:    analystRequires,
		},
		{
			Name:        Trader,
			Role:        traderRole,
			Action:      "build the executable trading plan",
			ErrorLabel:  "trading plan",
			OutputField: models.FieldTraderInvestmentPlan,
			Requires:    []models.ReportField{models.FieldInvestmentPlan},
		},
		{
			Name:       AggressiveRiskAnalyst,
			Role:       aggressiveRiskAnalystRole,
			Action:     "argue the risk-seeking position",
			ErrorLabel: "aggressive risk analysis",
			Requires:   []models.ReportField{models.FieldTraderInvestmentPlan},
			Apply: func(state *models.AnalysisState, content string) {
				state.RiskDebate.AppendTurn(models.SpeakerAggressive, content)
			},
			ExtraContext: riskOpponents(models.SpeakerSafe, models.SpeakerNeutral),
		},
		{
			Name:       SafeRiskAnalyst,
			Role:       safeRiskAnalystRole,
			Action:     "argue the risk-averse position",
			ErrorLabel: "safe risk analysis",
			Requires:   []models.ReportField{models.FieldTraderInvestmentPlan},
			Apply: func(state *models.AnalysisState, content string) {
				state.RiskDebate.AppendTurn(models.SpeakerSafe, content)
			},
			ExtraContext: riskOpponents(models.SpeakerAggressive, models.SpeakerNeutral),
		},
		{
			Name:       NeutralRiskAnalyst,
			Role:       neutralRiskAnalystRole,
			Action:     "weigh both risk positions",
			ErrorLabel: "neutral risk analysis",
			Requires:   []models.ReportField{models.FieldTraderInvestmentPlan},
			Apply: func(state *models.AnalysisState, content string) {
				state.RiskDebate.AppendTurn(models.SpeakerNeutral, content)
			},
			ExtraContext: riskOpponents(models.SpeakerAggressive, models.SpeakerSafe),
		},
		{
			Name:        RiskManager,
			Role:        riskManagerRole,
			Action:      "issue the final trade decision",
			ErrorLabel:  "risk management",
			OutputField: models.FieldFinalTradeDecision,
			Requires:    []models.ReportField{models.FieldTraderInvestmentPlan},
		},
	}
}

// Names returns the catalog's agent names in workflow order.
func Names() []string {
	specs := Catalog()
	names := make([]string, 0, len(specs))
	for _, spec := range specs {
		names = append(names, spec.Name)
	}
	return names
}

// Build instantiates the full catalog keyed by agent name.
func Build() map[string]Agent {
	agents := make(map[string]Agent)
	for _, spec := range Catalog() {
		agents[spec.Name] = New(spec)
	}
	return agents
}

// opponentArgument surfaces the latest turn from the other side of the
// investment debate so the speaker can rebut it directly.
func opponentArgument(state *models.AnalysisState) string {
	if state.InvestmentDebate.CurrentResponse == "" {
		return ""
	}
	return "Your opponent's latest argument:\n" + state.InvestmentDebate.CurrentResponse
}

// riskOpponents surfaces the latest turns from the other two risk
// analysts, skipping any who have not spoken yet.
func riskOpponents(others ...models.RiskSpeaker) func(*models.AnalysisState) string {
	return func(state *models.AnalysisState) string {
		var parts []string
		for _, speaker := range others {
			if current := state.RiskDebate.CurrentOf(speaker); current != "" {
				parts = append(parts, fmt.Sprintf("Latest %s analyst argument:\n%s", speaker, current))
			}
		}
		return strings.Join(parts, "\n\n")
	}
}
