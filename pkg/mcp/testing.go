package mcp

import (
	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/quantor-labs/quantor/pkg/models"
)

// InjectSession wires a pre-connected MCP SDK session into the Client.
// Test infrastructure: lets tests use in-memory MCP servers without the
// transport creation path.
func (c *Client) InjectSession(server string, sdkClient *mcpsdk.Client, session *mcpsdk.ClientSession) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sessions[server] = session
	c.clients[server] = sdkClient
}

// NewBrokerWithClient creates a broker over a pre-built client. Test
// infrastructure for pairing with InjectSession.
func NewBrokerWithClient(client *Client, perms models.AgentPermissions) *Broker {
	return newBroker(client, perms)
}
