// Package version holds build metadata injected at link time.
package version

// AppName identifies this service to MCP servers and in logs.
const AppName = "quantor"

// Version is overridden via -ldflags at release build time.
var Version = "dev"
