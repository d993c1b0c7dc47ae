package config

import "errors"

// Sentinel errors for configuration failures. All are fatal at startup:
// no session log is created when Initialize returns one of these.
var (
	ErrMissingAPIKey     = errors.New("LLM_API_KEY is required")
	ErrInvalidMCPConfig  = errors.New("invalid MCP configuration")
	ErrMCPServerNotFound = errors.New("MCP server not found")
)
