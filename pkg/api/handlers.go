package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/quantor-labs/quantor/pkg/mcp"
	"github.com/quantor-labs/quantor/pkg/models"
	"github.com/quantor-labs/quantor/pkg/version"
)

// healthHandler handles GET /health. External dependencies (MCP servers,
// the LLM endpoint) are deliberately excluded so process supervisors do
// not restart us when an upstream is down.
func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": version.AppName,
		"version": version.Version,
	})
}

// toolsHandler handles GET /api/v1/tools. It brings up a short-lived
// broker connection to report the aggregated catalog grouped by server.
func (s *Server) toolsHandler(c *gin.Context) {
	if s.cfg.MCPServers == nil || s.cfg.MCPServers.Len() == 0 {
		c.JSON(http.StatusOK, models.CatalogSummary{})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
	defer cancel()

	broker := mcp.NewBroker(s.cfg.MCPServers, models.AgentPermissions(s.cfg.AgentMCP))
	if err := broker.Initialize(ctx); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	defer broker.Close()

	c.JSON(http.StatusOK, broker.ToolsInfo())
}

// AnalyzeRequest is the POST /api/v1/analyze payload.
type AnalyzeRequest struct {
	Query string `json:"query" binding:"required"`
}

// analyzeHandler handles POST /api/v1/analyze. The run is synchronous;
// closing the client connection cancels it.
func (s *Server) analyzeHandler(c *gin.Context) {
	var req AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	state, err := s.analyzer.RunAnalysis(c.Request.Context(), req.Query)
	if err != nil {
		status := http.StatusInternalServerError
		if c.Request.Context().Err() != nil {
			status = http.StatusRequestTimeout
		}
		c.JSON(status, gin.H{"error": err.Error(), "state": state})
		return
	}
	c.JSON(http.StatusOK, state)
}
