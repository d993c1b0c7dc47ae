// Package mcp provides the MCP (Model Context Protocol) client
// infrastructure and the tool broker: multi-server discovery, a flat
// tool catalog, per-agent permission gating, and uniform invocation.
package mcp

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/quantor-labs/quantor/pkg/config"
	"github.com/quantor-labs/quantor/pkg/version"
)

// initTimeout bounds the connect handshake per server.
const initTimeout = 30 * time.Second

// Client manages MCP SDK sessions for multiple servers. One Client is
// held for the lifetime of a run; sessions are shared across agents and
// reused sequentially.
type Client struct {
	registry *config.MCPServerRegistry

	mu            sync.RWMutex
	sessions      map[string]*mcpsdk.ClientSession
	clients       map[string]*mcpsdk.Client
	failedServers map[string]string // server → error message

	toolCacheMu sync.RWMutex
	toolCache   map[string][]*mcpsdk.Tool

	logger *slog.Logger
}

// NewClient creates a Client over the given server registry.
func NewClient(registry *config.MCPServerRegistry) *Client {
	return &Client{
		registry:      registry,
		sessions:      make(map[string]*mcpsdk.ClientSession),
		clients:       make(map[string]*mcpsdk.Client),
		failedServers: make(map[string]string),
		toolCache:     make(map[string][]*mcpsdk.Tool),
		logger:        slog.Default(),
	}
}

// Initialize connects to every configured server. A single-server
// failure degrades to "no tools from that server" and is recorded in
// FailedServers; Initialize itself never fails on connect errors.
func (c *Client) Initialize(ctx context.Context) error {
	for _, server := range c.registry.Names() {
		if err := c.initializeServer(ctx, server); err != nil {
			c.mu.Lock()
			c.failedServers[server] = err.Error()
			c.mu.Unlock()
			c.logger.Warn("MCP server failed to initialize",
				"server", server, "error", err)
		}
	}
	return nil
}

func (c *Client) initializeServer(ctx context.Context, server string) error {
	c.mu.RLock()
	if _, ok := c.sessions[server]; ok {
		c.mu.RUnlock()
		return nil
	}
	c.mu.RUnlock()

	serverCfg, err := c.registry.Get(server)
	if err != nil {
		return err
	}

	transport, err := createTransport(serverCfg)
	if err != nil {
		return fmt.Errorf("create transport for %q: %w", server, err)
	}

	initCtx, cancel := context.WithTimeout(ctx, initTimeout)
	defer cancel()

	client := mcpsdk.NewClient(&mcpsdk.Implementation{
		Name:    version.AppName,
		Version: version.Version,
	}, nil)

	session, err := client.Connect(initCtx, transport, nil)
	if err != nil {
		// Close the transport if it holds resources (stdio child processes).
		if closer, ok := transport.(io.Closer); ok {
			_ = closer.Close()
		}
		return fmt.Errorf("connect to %q: %w", server, err)
	}

	c.mu.Lock()
	c.sessions[server] = session
	c.clients[server] = client
	delete(c.failedServers, server)
	c.mu.Unlock()

	c.logger.Info("MCP server connected", "server", server)
	return nil
}

// ListTools returns the tools of one server, using the per-run cache.
func (c *Client) ListTools(ctx context.Context, server string) ([]*mcpsdk.Tool, error) {
	c.toolCacheMu.RLock()
	if cached, ok := c.toolCache[server]; ok {
		c.toolCacheMu.RUnlock()
		return cached, nil
	}
	c.toolCacheMu.RUnlock()

	c.mu.RLock()
	session, ok := c.sessions[server]
	c.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("no session for server %q", server)
	}

	opCtx, cancel := c.callContext(ctx, server)
	defer cancel()

	result, err := session.ListTools(opCtx, nil)
	if err != nil {
		return nil, fmt.Errorf("list tools from %q: %w", server, err)
	}

	tools := result.Tools
	if tools == nil {
		tools = []*mcpsdk.Tool{}
	}
	c.toolCacheMu.Lock()
	c.toolCache[server] = tools
	c.toolCacheMu.Unlock()
	return tools, nil
}

// CallTool executes one tool call on the given server. No retry loop:
// transport and tool errors surface to the caller, which converts them
// into structured payloads for the model.
func (c *Client) CallTool(ctx context.Context, server, tool string, args map[string]any) (*mcpsdk.CallToolResult, error) {
	c.mu.RLock()
	session, ok := c.sessions[server]
	c.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("no session for server %q", server)
	}

	opCtx, cancel := c.callContext(ctx, server)
	defer cancel()

	return session.CallTool(opCtx, &mcpsdk.CallToolParams{
		Name:      tool,
		Arguments: args,
	})
}

// callContext applies the per-server call timeout from configuration.
func (c *Client) callContext(ctx context.Context, server string) (context.Context, context.CancelFunc) {
	timeout := config.DefaultMCPCallTimeout
	if cfg, err := c.registry.Get(server); err == nil {
		timeout = cfg.CallTimeout()
	}
	return context.WithTimeout(ctx, timeout)
}

// ConnectedServers returns the servers with live sessions (unordered).
func (c *Client) ConnectedServers() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	servers := make([]string, 0, len(c.sessions))
	for server := range c.sessions {
		servers = append(servers, server)
	}
	return servers
}

// FailedServers returns a copy of the server → error map for servers
// that failed to initialize.
func (c *Client) FailedServers() map[string]string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	result := make(map[string]string, len(c.failedServers))
	for k, v := range c.failedServers {
		result[k] = v
	}
	return result
}

// Close shuts down all sessions.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var firstErr error
	for server, session := range c.sessions {
		if err := session.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("close session %q: %w", server, err)
		}
	}
	c.sessions = make(map[string]*mcpsdk.ClientSession)
	c.clients = make(map[string]*mcpsdk.Client)
	c.failedServers = make(map[string]string)

	c.toolCacheMu.Lock()
	c.toolCache = make(map[string][]*mcpsdk.Tool)
	c.toolCacheMu.Unlock()

	return firstErr
}
