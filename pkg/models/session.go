package models

import "time"

// SessionStatus is the lifecycle state of a recorded session.
// Transitions are forward-only (see statusRank).
type SessionStatus string

const (
	SessionStatusActive    SessionStatus = "active"
	SessionStatusRunning   SessionStatus = "running"
	SessionStatusCompleted SessionStatus = "completed"
	SessionStatusFailed    SessionStatus = "failed"
	SessionStatusCancelled SessionStatus = "cancelled"
)

// statusRank orders session statuses for forward-only transitions.
// completed, failed and cancelled are all terminal (equal rank).
var statusRank = map[SessionStatus]int{
	SessionStatusActive:    0,
	SessionStatusRunning:   1,
	SessionStatusCompleted: 2,
	SessionStatusFailed:    2,
	SessionStatusCancelled: 2,
}

// CanTransition reports whether moving from s to next goes forward.
func (s SessionStatus) CanTransition(next SessionStatus) bool {
	from, ok := statusRank[s]
	if !ok {
		return false
	}
	to, ok := statusRank[next]
	if !ok {
		return false
	}
	if from == to {
		return s == next || from < 2 // no switching between terminal states
	}
	return to > from
}

// SessionDocument is the on-disk JSON schema for one analysis run.
// Keys are stable; field ordering is not significant. The file is
// live-consumed by readers while the engine writes it.
type SessionDocument struct {
	SessionID    string            `json:"session_id"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
	Status       SessionStatus     `json:"status"`
	UserQuery    string            `json:"user_query"`
	Stages       []StageRecord     `json:"stages"`
	Agents       []AgentRecord     `json:"agents"`
	MCPCalls     []MCPCallRecord   `json:"mcp_calls"`
	Errors       []ErrorRecord     `json:"errors"`
	Warnings     []ErrorRecord     `json:"warnings"`
	FinalResults map[string]string `json:"final_results"`
}

// StageRecord marks the start of a named workflow stage.
type StageRecord struct {
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	StartedAt   time.Time `json:"started_at"`
}

// AgentStatus tracks one agent's progress inside a session.
type AgentStatus string

const (
	AgentStatusRunning   AgentStatus = "running"
	AgentStatusCompleted AgentStatus = "completed"
	AgentStatusFailed    AgentStatus = "failed"
)

// AgentRecord is the per-agent subdocument of the session log.
type AgentRecord struct {
	Name      string              `json:"name"`
	Status    AgentStatus         `json:"status"`
	Action    string              `json:"action,omitempty"`
	Prompts   []string            `json:"prompts,omitempty"`
	Actions   []AgentActionRecord `json:"actions,omitempty"`
	StartTime time.Time           `json:"start_time"`
	EndTime   *time.Time          `json:"end_time,omitempty"`
	Result    string              `json:"result,omitempty"`
}

// AgentActionRecord is one intermediate action of an agent.
type AgentActionRecord struct {
	Action  string    `json:"action"`
	Details string    `json:"details,omitempty"`
	At      time.Time `json:"at"`
}

// MCPCallRecord is one MCP tool invocation in the session log.
type MCPCallRecord struct {
	Agent     string         `json:"agent"`
	Tool      string         `json:"tool"`
	Arguments map[string]any `json:"arguments,omitempty"`
	Result    string         `json:"result"`
	IsError   bool           `json:"is_error,omitempty"`
	At        time.Time      `json:"at"`
}

// ErrorRecord is an error or warning entry with optional agent attribution.
type ErrorRecord struct {
	Message string    `json:"message"`
	Agent   string    `json:"agent,omitempty"`
	At      time.Time `json:"at"`
}
