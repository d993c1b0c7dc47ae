// Package llm adapts OpenAI-compatible chat endpoints behind a single
// round-trip interface that hides the tool-calling loop.
package llm

import (
	"context"

	"github.com/quantor-labs/quantor/pkg/models"
)

// MaxToolIterations caps the tool-call loop inside one Chat call.
// Exceeding it returns the last assistant content with Truncated set;
// the caller records a warning.
const MaxToolIterations = 8

// Message roles, matching the chat-completions wire format.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// Message is one conversation entry.
type Message struct {
	Role    string
	Content string
}

// ToolExecutor executes tool calls the model requests during a Chat.
// Implemented by mcp.AgentExecutor; results are always non-nil with
// failures carried as content.
type ToolExecutor interface {
	Execute(ctx context.Context, call models.ToolCall) *models.ToolResult
}

// ChatRequest describes one agent round-trip.
type ChatRequest struct {
	Agent    string // calling agent, for stubs and diagnostics
	System   string
	History  []Message
	User     string
	Tools    []models.ToolDefinition
	Executor ToolExecutor // required when Tools is non-empty
}

// ChatResult is the outcome of one Chat call.
type ChatResult struct {
	Content   string
	ToolCalls int  // tool invocations executed during the loop
	Truncated bool // the iteration cap was hit
}

// Client is the LLM-call contract shared by every agent. A Chat call
// sends [system, history..., user] with the tool schemas, transparently
// executes any tool-call loop the model initiates (sequentially, in the
// order given), and returns the final assistant content.
//
// Cancellation is checked before each model call and each tool
// invocation; on cancel, Chat returns whatever content exists alongside
// the context error.
type Client interface {
	Chat(ctx context.Context, req *ChatRequest) (*ChatResult, error)
}
