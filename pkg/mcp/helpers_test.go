package mcp

import (
	"context"
	"encoding/json"
	"testing"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/require"

	"github.com/quantor-labs/quantor/pkg/config"
)

// emptySchema is a minimal valid JSON Schema for test tools.
var emptySchema = json.RawMessage(`{"type":"object"}`)

// textResult builds a single-text-item tool result.
func textResult(text string) *mcpsdk.CallToolResult {
	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{&mcpsdk.TextContent{Text: text}},
	}
}

// startTestServer runs an in-memory MCP server with the given tools and
// returns the client-side transport.
func startTestServer(t *testing.T, name string, tools map[string]mcpsdk.ToolHandler) *mcpsdk.InMemoryTransport {
	t.Helper()

	server := mcpsdk.NewServer(&mcpsdk.Implementation{
		Name: name, Version: "test",
	}, nil)
	for toolName, handler := range tools {
		server.AddTool(&mcpsdk.Tool{
			Name:        toolName,
			Description: "test tool: " + toolName,
			InputSchema: emptySchema,
		}, handler)
	}

	clientTransport, serverTransport := mcpsdk.NewInMemoryTransports()
	go func() {
		_ = server.Run(context.Background(), serverTransport)
	}()
	return clientTransport
}

// connectClientDirect wires a Client to pre-started in-memory servers,
// bypassing the registry transport path.
func connectClientDirect(t *testing.T, transports map[string]*mcpsdk.InMemoryTransport) *Client {
	t.Helper()
	ctx := context.Background()

	client := NewClient(config.NewMCPServerRegistry(nil))
	for server, transport := range transports {
		sdkClient := mcpsdk.NewClient(&mcpsdk.Implementation{
			Name: "quantor-test", Version: "test",
		}, nil)
		session, err := sdkClient.Connect(ctx, transport, nil)
		require.NoError(t, err)
		client.InjectSession(server, sdkClient, session)
	}

	t.Cleanup(func() { _ = client.Close() })
	return client
}

// newTestBroker builds a broker over in-memory servers with the given
// per-agent permissions.
func newTestBroker(t *testing.T, transports map[string]*mcpsdk.InMemoryTransport, perms map[string]bool) *Broker {
	t.Helper()
	client := connectClientDirect(t, transports)
	broker := newBroker(client, perms)
	require.NoError(t, broker.Initialize(context.Background()))
	return broker
}
