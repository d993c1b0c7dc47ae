package api

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/quantor-labs/quantor/pkg/models"
)

// sessionIDPattern guards the :id path parameter against traversal.
var sessionIDPattern = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

// SessionSummary is one row in the session listing.
type SessionSummary struct {
	SessionID string               `json:"session_id"`
	Status    models.SessionStatus `json:"status"`
	UserQuery string               `json:"user_query"`
	CreatedAt time.Time            `json:"created_at"`
	UpdatedAt time.Time            `json:"updated_at"`
	Errors    int                  `json:"errors"`
	Warnings  int                  `json:"warnings"`
}

// listSessionsHandler handles GET /api/v1/sessions. It scans the dump
// directory; unreadable or malformed files are skipped, not fatal.
func (s *Server) listSessionsHandler(c *gin.Context) {
	entries, err := os.ReadDir(s.cfg.DumpDir)
	if err != nil {
		if os.IsNotExist(err) {
			c.JSON(http.StatusOK, gin.H{"sessions": []SessionSummary{}})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	summaries := make([]SessionSummary, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, "session_") || !strings.HasSuffix(name, ".json") {
			continue
		}
		doc, err := s.readSessionFile(name)
		if err != nil {
			s.logger.Warn("skipping unreadable session file", "file", name, "error", err)
			continue
		}
		summaries = append(summaries, SessionSummary{
			SessionID: doc.SessionID,
			Status:    doc.Status,
			UserQuery: doc.UserQuery,
			CreatedAt: doc.CreatedAt,
			UpdatedAt: doc.UpdatedAt,
			Errors:    len(doc.Errors),
			Warnings:  len(doc.Warnings),
		})
	}

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].CreatedAt.After(summaries[j].CreatedAt)
	})
	c.JSON(http.StatusOK, gin.H{"sessions": summaries})
}

// getSessionHandler handles GET /api/v1/sessions/:id, returning the full
// session document.
func (s *Server) getSessionHandler(c *gin.Context) {
	id := c.Param("id")
	if !sessionIDPattern.MatchString(id) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid session id"})
		return
	}

	doc, err := s.readSessionFile("session_" + id + ".json")
	if err != nil {
		if os.IsNotExist(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, doc)
}

func (s *Server) readSessionFile(name string) (*models.SessionDocument, error) {
	data, err := os.ReadFile(filepath.Join(s.cfg.DumpDir, name))
	if err != nil {
		return nil, err
	}
	var doc models.SessionDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}
