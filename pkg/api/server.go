// Package api serves the HTTP surface: session browsing for the
// sessions directory, tool catalog inspection, health, and a synchronous
// analyze endpoint.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/quantor-labs/quantor/pkg/config"
	"github.com/quantor-labs/quantor/pkg/models"
)

// Analyzer runs one full analysis. Satisfied by orchestrator.Orchestrator.
type Analyzer interface {
	RunAnalysis(ctx context.Context, query string) (*models.AnalysisState, error)
}

// Server exposes the REST API.
type Server struct {
	cfg      *config.Config
	analyzer Analyzer
	logger   *slog.Logger
}

// NewServer builds the API server.
func NewServer(cfg *config.Config, analyzer Analyzer) *Server {
	return &Server{
		cfg:      cfg,
		analyzer: analyzer,
		logger:   slog.Default().With("component", "api"),
	}
}

// Router assembles the gin engine with all routes registered.
func (s *Server) Router() *gin.Engine {
	if !s.cfg.DebugMode {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/health", s.healthHandler)

	v1 := r.Group("/api/v1")
	{
		v1.GET("/sessions", s.listSessionsHandler)
		v1.GET("/sessions/:id", s.getSessionHandler)
		v1.GET("/tools", s.toolsHandler)
		v1.POST("/analyze", s.analyzeHandler)
	}
	return r
}

// Run serves until the context is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("API server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		<-errCh
		return nil
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}
