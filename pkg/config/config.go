// Package config loads and validates configuration from environment
// variables and the MCP server JSON file.
package config

import (
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Config is the umbrella configuration object returned by Initialize()
// and used throughout the application.
type Config struct {
	LLM LLMConfig

	// Debate bounds.
	MaxDebateRounds     int
	MaxRiskDebateRounds int

	// Per-agent MCP toggles (agent name → enabled).
	AgentMCP map[string]bool

	// Session log directory.
	DumpDir string

	DebugMode      bool
	VerboseLogging bool

	MCPServers *MCPServerRegistry
}

// LLMConfig holds the LLM endpoint settings.
type LLMConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float32
	MaxTokens   int
}

// TransportType selects how an MCP server is reached.
type TransportType string

const (
	TransportTypeStdio TransportType = "stdio"
	TransportTypeSSE   TransportType = "sse"
	TransportTypeHTTP  TransportType = "http"
)

// MCPServerConfig defines one MCP server entry from the JSON config file.
type MCPServerConfig struct {
	URL       string            `json:"url,omitempty"`
	Transport TransportType     `json:"transport"`
	Timeout   int               `json:"timeout,omitempty"` // seconds, per-call
	Command   string            `json:"command,omitempty"` // stdio only
	Args      []string          `json:"args,omitempty"`    // stdio only
	Env       map[string]string `json:"env,omitempty"`     // stdio only
}

// CallTimeout returns the per-call timeout, applying the default.
func (c *MCPServerConfig) CallTimeout() time.Duration {
	if c.Timeout <= 0 {
		return DefaultMCPCallTimeout
	}
	return time.Duration(c.Timeout) * time.Second
}

// Validate checks a single server entry for structural errors.
func (c *MCPServerConfig) Validate(name string) error {
	switch c.Transport {
	case TransportTypeStdio:
		if c.Command == "" {
			return fmt.Errorf("%w: server %q: stdio transport requires command", ErrInvalidMCPConfig, name)
		}
	case TransportTypeSSE, TransportTypeHTTP:
		if c.URL == "" {
			return fmt.Errorf("%w: server %q: %s transport requires url", ErrInvalidMCPConfig, name, c.Transport)
		}
	default:
		return fmt.Errorf("%w: server %q: unsupported transport %q", ErrInvalidMCPConfig, name, c.Transport)
	}
	return nil
}

// MCPServerRegistry stores MCP server configurations with thread-safe access.
type MCPServerRegistry struct {
	mu      sync.RWMutex
	servers map[string]*MCPServerConfig
}

// NewMCPServerRegistry creates a registry from the given server map.
func NewMCPServerRegistry(servers map[string]*MCPServerConfig) *MCPServerRegistry {
	if servers == nil {
		servers = make(map[string]*MCPServerConfig)
	}
	return &MCPServerRegistry{servers: servers}
}

// Get retrieves a server configuration by name.
func (r *MCPServerRegistry) Get(name string) (*MCPServerConfig, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	server, ok := r.servers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMCPServerNotFound, name)
	}
	return server, nil
}

// Has reports whether a server exists in the registry.
func (r *MCPServerRegistry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.servers[name]
	return ok
}

// Names returns all configured server names (unordered).
func (r *MCPServerRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.servers))
	for name := range r.servers {
		names = append(names, name)
	}
	return names
}

// Len returns the number of configured servers.
func (r *MCPServerRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.servers)
}

// LogLevel maps the debug/verbose toggles onto a slog level.
func (c *Config) LogLevel() slog.Level {
	switch {
	case c.DebugMode:
		return slog.LevelDebug
	case c.VerboseLogging:
		return slog.LevelInfo
	default:
		return slog.LevelWarn
	}
}
