package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/quantor-labs/quantor/pkg/config"
	"github.com/quantor-labs/quantor/pkg/models"
)

// ErrDuplicateTool is returned from Initialize when two servers expose
// the same tool name. Tool names must be unique across servers because
// routing is by name lookup in the flat catalog.
var ErrDuplicateTool = errors.New("duplicate tool name across MCP servers")

// defaultGroup is the presentational bucket for tools whose server
// annotation is absent. Grouping never affects routing.
const defaultGroup = "default"

// Broker aggregates the tool catalogs of all configured MCP servers and
// gates invocations by the per-agent permission table. Permissions are
// per-agent booleans, not per-tool: an enabled agent sees the entire
// catalog. This coarse grain is intended.
type Broker struct {
	client *Client
	perms  models.AgentPermissions

	mu      sync.RWMutex
	catalog []models.ToolCatalogEntry
	origin  map[string]string // tool name → server

	logger *slog.Logger
}

// NewBroker creates a broker over the given registry and permissions.
func NewBroker(registry *config.MCPServerRegistry, perms models.AgentPermissions) *Broker {
	return newBroker(NewClient(registry), perms)
}

func newBroker(client *Client, perms models.AgentPermissions) *Broker {
	return &Broker{
		client: client,
		perms:  perms,
		origin: make(map[string]string),
		logger: slog.Default(),
	}
}

// Initialize connects the underlying client and aggregates the flat
// catalog. Per-server connect failures degrade to an empty contribution
// from that server; a duplicate tool name is a configuration error.
func (b *Broker) Initialize(ctx context.Context) error {
	if err := b.client.Initialize(ctx); err != nil {
		return err
	}

	servers := b.client.ConnectedServers()
	sort.Strings(servers)

	b.mu.Lock()
	defer b.mu.Unlock()
	b.catalog = nil
	b.origin = make(map[string]string)

	for _, server := range servers {
		tools, err := b.client.ListTools(ctx, server)
		if err != nil {
			b.logger.Warn("Failed to list tools from MCP server",
				"server", server, "error", err)
			continue
		}
		for _, tool := range tools {
			if prev, ok := b.origin[tool.Name]; ok {
				return fmt.Errorf("%w: %q provided by both %q and %q",
					ErrDuplicateTool, tool.Name, prev, server)
			}
			b.origin[tool.Name] = server
			b.catalog = append(b.catalog, models.ToolCatalogEntry{
				Server:      server,
				Name:        tool.Name,
				Description: tool.Description,
				InputSchema: marshalSchema(tool.InputSchema),
			})
		}
	}

	b.logger.Info("MCP tool catalog assembled",
		"servers", len(servers), "tools", len(b.catalog))
	return nil
}

// ToolsForAgent returns the flat catalog as provider-facing definitions
// if the agent is permitted, nil otherwise.
func (b *Broker) ToolsForAgent(agent string) []models.ToolDefinition {
	if !b.perms.Allowed(agent) {
		return nil
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	if len(b.catalog) == 0 {
		return nil
	}
	defs := make([]models.ToolDefinition, len(b.catalog))
	for i, entry := range b.catalog {
		defs[i] = models.ToolDefinition{
			Name:             entry.Name,
			Description:      entry.Description,
			ParametersSchema: entry.InputSchema,
		}
	}
	return defs
}

// CallToolForAgent checks permission, resolves the tool to its origin
// server, and forwards the call. Failures come back as structured error
// payloads in the result content — never as a Go error — so the model
// sees them as tool-result messages and may retry or abandon.
func (b *Broker) CallToolForAgent(ctx context.Context, agent, tool string, args map[string]any) *models.ToolResult {
	if !b.perms.Allowed(agent) {
		return errorResult(tool, fmt.Sprintf("agent %q is not permitted to use MCP tools", agent))
	}

	b.mu.RLock()
	server, ok := b.origin[tool]
	b.mu.RUnlock()
	if !ok {
		return errorResult(tool, fmt.Sprintf("unknown tool %q", tool))
	}

	result, err := b.client.CallTool(ctx, server, tool, args)
	if err != nil {
		return errorResult(tool, err.Error())
	}

	return &models.ToolResult{
		Name:    tool,
		Content: extractTextContent(result),
		IsError: result.IsError,
	}
}

// ToolsInfo returns the catalog grouped by server for diagnostics and
// the UI. Entries without a server annotation fall into the default
// bucket; grouping is presentational only.
func (b *Broker) ToolsInfo() models.CatalogSummary {
	b.mu.RLock()
	defer b.mu.RUnlock()

	groups := make(map[string][]models.ToolCatalogEntry)
	for _, entry := range b.catalog {
		group := entry.Server
		if group == "" {
			group = defaultGroup
		}
		groups[group] = append(groups[group], entry)
	}

	names := make([]string, 0, len(groups))
	for name := range groups {
		names = append(names, name)
	}
	sort.Strings(names)

	summary := models.CatalogSummary{Total: len(b.catalog)}
	for _, name := range names {
		summary.Servers = append(summary.Servers, models.ServerTools{
			Server: name,
			Tools:  groups[name],
		})
	}
	return summary
}

// FailedServers exposes the underlying client's failed-server map.
func (b *Broker) FailedServers() map[string]string {
	return b.client.FailedServers()
}

// Close releases all server handles.
func (b *Broker) Close() error {
	return b.client.Close()
}

// ExecutorForAgent returns a per-agent executor for the LLM tool loop.
// observe is invoked after every call with the full record; nil disables
// observation.
func (b *Broker) ExecutorForAgent(agent string, observe func(models.ToolCallRecord)) *AgentExecutor {
	return &AgentExecutor{broker: b, agent: agent, observe: observe}
}

// AgentExecutor executes tool calls on behalf of one agent. It parses
// model-emitted arguments, routes through the broker, and reports every
// call to the observer for session recording.
type AgentExecutor struct {
	broker  *Broker
	agent   string
	observe func(models.ToolCallRecord)
}

// Execute runs a single tool call. The result is always non-nil;
// failures are carried in the content with IsError set.
func (e *AgentExecutor) Execute(ctx context.Context, call models.ToolCall) *models.ToolResult {
	args := ParseToolArguments(call.Arguments)
	result := e.broker.CallToolForAgent(ctx, e.agent, call.Name, args)
	result.CallID = call.ID

	if e.observe != nil {
		e.observe(models.ToolCallRecord{
			Agent:     e.agent,
			Tool:      call.Name,
			Arguments: args,
			Result:    result.Content,
			IsError:   result.IsError,
			At:        time.Now().UTC(),
		})
	}
	return result
}

// errorResult wraps an error message as a structured tool payload.
func errorResult(tool, message string) *models.ToolResult {
	payload, _ := json.Marshal(map[string]string{"error": message})
	return &models.ToolResult{
		Name:    tool,
		Content: string(payload),
		IsError: true,
	}
}

// extractTextContent concatenates the text items of an MCP result.
// Non-text content (images, embedded resources) is skipped.
func extractTextContent(result *mcpsdk.CallToolResult) string {
	var parts []string
	for _, c := range result.Content {
		if tc, ok := c.(*mcpsdk.TextContent); ok {
			parts = append(parts, tc.Text)
		} else {
			slog.Debug("MCP tool returned non-text content, skipping",
				"content_type", fmt.Sprintf("%T", c))
		}
	}
	return strings.Join(parts, "\n")
}

// marshalSchema serializes a tool's input schema to raw JSON.
func marshalSchema(schema any) json.RawMessage {
	if schema == nil {
		return nil
	}
	data, err := json.Marshal(schema)
	if err != nil {
		slog.Debug("Failed to marshal tool input schema", "error", err)
		return nil
	}
	return data
}
