// Package models defines the shared data types threaded through an
// analysis run: the typed analysis state, the debate substates, and the
// on-disk session document schema.
package models

import (
	"fmt"
	"time"
)

// ReportField names a single-author output slot in AnalysisState.
// Every agent writes exactly one field, identified by these constants.
type ReportField string

const (
	FieldMarketReport          ReportField = "market_report"
	FieldSentimentReport       ReportField = "sentiment_report"
	FieldNewsReport            ReportField = "news_report"
	FieldFundamentalsReport    ReportField = "fundamentals_report"
	FieldCompanyOverviewReport ReportField = "company_overview_report"
	FieldShareholderReport     ReportField = "shareholder_report"
	FieldProductReport         ReportField = "product_report"
	FieldInvestmentPlan        ReportField = "investment_plan"
	FieldTraderInvestmentPlan  ReportField = "trader_investment_plan"
	FieldFinalTradeDecision    ReportField = "final_trade_decision"
)

// AnalysisState is the single mutable record carried along the workflow
// graph. Each node receives exclusive access during its process call;
// report fields are write-once (enforced by WriteField).
type AnalysisState struct {
	UserQuery string `json:"user_query"`

	// Analyst reports — one author each.
	MarketReport          string `json:"market_report,omitempty"`
	SentimentReport       string `json:"sentiment_report,omitempty"`
	NewsReport            string `json:"news_report,omitempty"`
	FundamentalsReport    string `json:"fundamentals_report,omitempty"`
	CompanyOverviewReport string `json:"company_overview_report,omitempty"`
	ShareholderReport     string `json:"shareholder_report,omitempty"`
	ProductReport         string `json:"product_report,omitempty"`

	InvestmentDebate InvestmentDebateState `json:"investment_debate_state"`

	InvestmentPlan       string `json:"investment_plan,omitempty"`
	TraderInvestmentPlan string `json:"trader_investment_plan,omitempty"`

	RiskDebate RiskDebateState `json:"risk_debate_state"`

	FinalTradeDecision string `json:"final_trade_decision,omitempty"`

	// Observability — ordered, append-only.
	AgentExecutions []AgentExecution `json:"agent_execution_history"`
	MCPToolCalls    []ToolCallRecord `json:"mcp_tool_calls"`
	Errors          []StateError     `json:"errors"`
	Warnings        []string         `json:"warnings"`
}

// NewAnalysisState creates an empty state for the given query.
func NewAnalysisState(query string) *AnalysisState {
	return &AnalysisState{UserQuery: query}
}

// AgentExecution is one entry of the ordered agent execution history.
type AgentExecution struct {
	Agent       string    `json:"agent"`
	Action      string    `json:"action"`
	MCPUsed     bool      `json:"mcp_used"`
	Success     bool      `json:"success"`
	Error       string    `json:"error,omitempty"`
	StartedAt   time.Time `json:"started_at"`
	CompletedAt time.Time `json:"completed_at"`
}

// ToolCallRecord is one entry of the ordered MCP tool call history.
type ToolCallRecord struct {
	Agent     string         `json:"agent"`
	Tool      string         `json:"tool"`
	Arguments map[string]any `json:"arguments,omitempty"`
	Result    string         `json:"result"`
	IsError   bool           `json:"is_error,omitempty"`
	At        time.Time      `json:"at"`
}

// StateError attributes a captured failure to the agent that produced it.
type StateError struct {
	Agent   string `json:"agent,omitempty"`
	Message string `json:"message"`
}

// fieldPtr resolves a ReportField to its storage slot.
// Returns nil for unknown fields.
func (s *AnalysisState) fieldPtr(field ReportField) *string {
	switch field {
	case FieldMarketReport:
		return &s.MarketReport
	case FieldSentimentReport:
		return &s.SentimentReport
	case FieldNewsReport:
		return &s.NewsReport
	case FieldFundamentalsReport:
		return &s.FundamentalsReport
	case FieldCompanyOverviewReport:
		return &s.CompanyOverviewReport
	case FieldShareholderReport:
		return &s.ShareholderReport
	case FieldProductReport:
		return &s.ProductReport
	case FieldInvestmentPlan:
		return &s.InvestmentPlan
	case FieldTraderInvestmentPlan:
		return &s.TraderInvestmentPlan
	case FieldFinalTradeDecision:
		return &s.FinalTradeDecision
	default:
		return nil
	}
}

// WriteField writes a report/plan field, enforcing the once-written rule:
// a non-empty field is read-only for the remainder of the run.
func (s *AnalysisState) WriteField(field ReportField, value string) error {
	ptr := s.fieldPtr(field)
	if ptr == nil {
		return fmt.Errorf("unknown state field %q", field)
	}
	if *ptr != "" {
		return fmt.Errorf("state field %q already written", field)
	}
	*ptr = value
	return nil
}

// Field reads a report/plan field by name. Unknown fields read as empty.
func (s *AnalysisState) Field(field ReportField) string {
	if ptr := s.fieldPtr(field); ptr != nil {
		return *ptr
	}
	return ""
}

// AppendExecution records one agent execution in graph order.
func (s *AnalysisState) AppendExecution(exec AgentExecution) {
	s.AgentExecutions = append(s.AgentExecutions, exec)
}

// RecordToolCall appends an MCP tool call in emission order.
func (s *AnalysisState) RecordToolCall(rec ToolCallRecord) {
	s.MCPToolCalls = append(s.MCPToolCalls, rec)
}

// AddError appends an agent-attributed error. The run proceeds; errors
// propagate as data only.
func (s *AnalysisState) AddError(agent, message string) {
	s.Errors = append(s.Errors, StateError{Agent: agent, Message: message})
}

// AddWarning appends a warning message.
func (s *AnalysisState) AddWarning(message string) {
	s.Warnings = append(s.Warnings, message)
}

// AnalystReports returns the non-empty analyst reports in the fixed
// context-assembly order, paired with their display headings.
func (s *AnalysisState) AnalystReports() []LabeledSection {
	all := []LabeledSection{
		{Label: "Market Analysis", Text: s.MarketReport},
		{Label: "Sentiment Analysis", Text: s.SentimentReport},
		{Label: "News Analysis", Text: s.NewsReport},
		{Label: "Fundamentals Analysis", Text: s.FundamentalsReport},
		{Label: "Company Overview", Text: s.CompanyOverviewReport},
		{Label: "Shareholder Analysis", Text: s.ShareholderReport},
		{Label: "Product Analysis", Text: s.ProductReport},
	}
	out := make([]LabeledSection, 0, len(all))
	for _, sec := range all {
		if sec.Text != "" {
			out = append(out, sec)
		}
	}
	return out
}

// LabeledSection pairs a context heading with its body text.
type LabeledSection struct {
	Label string
	Text  string
}
