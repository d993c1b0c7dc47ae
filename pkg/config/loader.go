package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"dario.cat/mergo"
)

// Defaults applied before environment overrides.
const (
	DefaultTemperature       = 0.1
	DefaultMaxTokens         = 4000
	DefaultMaxDebateRounds   = 3
	DefaultMaxRiskRounds     = 2
	DefaultModel             = "gpt-4o"
	DefaultDumpDir           = "./sessions"
	DefaultMCPCallTimeout    = 600 * time.Second
	defaultMCPTimeoutSeconds = 600
)

// mcpFileConfig is the JSON shape of the MCP config file.
type mcpFileConfig struct {
	Servers     map[string]MCPServerConfig `json:"servers"`
	Permissions map[string]bool            `json:"permissions,omitempty"`
}

// Initialize loads configuration from the environment plus the optional
// MCP config file, applies defaults, and validates. agentNames drives the
// per-agent MCP toggle scan (<AGENT_NAME_UPPERCASED>_MCP_ENABLED).
//
// Configuration errors are fatal at startup; callers must not create a
// session log when this returns an error.
func Initialize(mcpConfigPath string, agentNames []string) (*Config, error) {
	apiKey := os.Getenv("LLM_API_KEY")
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	cfg := &Config{
		LLM: LLMConfig{
			APIKey:      apiKey,
			BaseURL:     os.Getenv("LLM_BASE_URL"),
			Model:       envString("LLM_MODEL", DefaultModel),
			Temperature: envFloat32("LLM_TEMPERATURE", DefaultTemperature),
			MaxTokens:   envInt("LLM_MAX_TOKENS", DefaultMaxTokens),
		},
		MaxDebateRounds:     envInt("MAX_DEBATE_ROUNDS", DefaultMaxDebateRounds),
		MaxRiskDebateRounds: envInt("MAX_RISK_DEBATE_ROUNDS", DefaultMaxRiskRounds),
		DumpDir:             envString("DUMP_DIR", DefaultDumpDir),
		DebugMode:           envBool("DEBUG_MODE"),
		VerboseLogging:      envBool("VERBOSE_LOGGING"),
	}

	if cfg.MaxDebateRounds < 0 || cfg.MaxRiskDebateRounds < 0 {
		return nil, fmt.Errorf("%w: debate round bounds must be non-negative", ErrInvalidMCPConfig)
	}

	servers, filePerms, err := loadMCPFile(mcpConfigPath)
	if err != nil {
		return nil, err
	}
	cfg.MCPServers = NewMCPServerRegistry(servers)

	// File-level permissions first, env toggles win.
	perms := make(map[string]bool, len(agentNames))
	for _, name := range agentNames {
		if v, ok := filePerms[name]; ok {
			perms[name] = v
		}
		key := strings.ToUpper(name) + "_MCP_ENABLED"
		if raw := os.Getenv(key); raw != "" {
			perms[name] = parseBool(raw)
		}
	}
	cfg.AgentMCP = perms

	slog.Debug("Configuration initialized",
		"model", cfg.LLM.Model,
		"mcp_servers", cfg.MCPServers.Len(),
		"max_debate_rounds", cfg.MaxDebateRounds,
		"max_risk_debate_rounds", cfg.MaxRiskDebateRounds)

	return cfg, nil
}

// loadMCPFile parses the MCP JSON config file. A missing path means no
// servers (tool-free mode); a malformed file is a fatal config error.
func loadMCPFile(path string) (map[string]*MCPServerConfig, map[string]bool, error) {
	if path == "" {
		return nil, nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			slog.Warn("MCP config file not found, running without tools", "path", path)
			return nil, nil, nil
		}
		return nil, nil, fmt.Errorf("%w: read %s: %v", ErrInvalidMCPConfig, path, err)
	}

	var file mcpFileConfig
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, nil, fmt.Errorf("%w: parse %s: %v", ErrInvalidMCPConfig, path, err)
	}

	defaults := MCPServerConfig{Timeout: defaultMCPTimeoutSeconds}
	servers := make(map[string]*MCPServerConfig, len(file.Servers))
	for name, server := range file.Servers {
		merged := server
		if err := mergo.Merge(&merged, defaults); err != nil {
			return nil, nil, fmt.Errorf("%w: apply defaults for server %q: %v", ErrInvalidMCPConfig, name, err)
		}
		if err := merged.Validate(name); err != nil {
			return nil, nil, err
		}
		servers[name] = &merged
	}
	return servers, file.Permissions, nil
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
		slog.Warn("Ignoring non-integer environment value", "key", key, "value", v)
	}
	return fallback
}

func envFloat32(key string, fallback float32) float32 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 32); err == nil {
			return float32(f)
		}
		slog.Warn("Ignoring non-float environment value", "key", key, "value", v)
	}
	return fallback
}

func envBool(key string) bool {
	return parseBool(os.Getenv(key))
}

func parseBool(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "true", "1", "yes", "on":
		return true
	default:
		return false
	}
}
