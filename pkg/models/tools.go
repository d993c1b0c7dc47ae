package models

import "encoding/json"

// ToolCatalogEntry describes one tool in the broker's flat catalog,
// annotated with its originating server. Tool names are unique across
// servers — a collision is a configuration error at broker init.
type ToolCatalogEntry struct {
	Server      string          `json:"server"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	InputSchema json.RawMessage `json:"input_schema,omitempty"`
}

// ToolDefinition is the provider-facing tool description handed to the
// LLM (name, description, JSON Schema for arguments).
type ToolDefinition struct {
	Name             string
	Description      string
	ParametersSchema json.RawMessage
}

// ToolCall is an LLM's request to invoke a tool.
type ToolCall struct {
	ID        string
	Name      string
	Arguments string // raw JSON/text as emitted by the model
}

// ToolResult is the outcome of executing one tool call.
// Errors are carried as content with IsError set, never as Go errors —
// the model sees them as tool-result messages and may retry or abandon.
type ToolResult struct {
	CallID  string
	Name    string
	Content string
	IsError bool
}

// CatalogSummary is a structured view of the tool catalog grouped by
// server, for diagnostics and the UI.
type CatalogSummary struct {
	Servers []ServerTools `json:"servers"`
	Total   int           `json:"total_tools"`
}

// ServerTools lists one server's tools in the catalog summary.
type ServerTools struct {
	Server string             `json:"server"`
	Tools  []ToolCatalogEntry `json:"tools"`
}

// AgentPermissions maps agent name to its MCP toggle.
// Sourced from configuration; immutable for the run.
type AgentPermissions map[string]bool

// Allowed reports whether the named agent may use MCP tools.
// Unknown agents default to false.
func (p AgentPermissions) Allowed(agent string) bool {
	return p[agent]
}
