// Package recorder owns the on-disk JSON session log for one analysis
// run. Every mutation is serialized through a single Recorder instance;
// writes are atomic (temp file + rename) so concurrent readers always
// observe a consistent snapshot.
package recorder

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/quantor-labs/quantor/pkg/models"
)

const (
	// createRetries bounds session-ID regeneration on path collisions.
	createRetries = 5

	// replaceRetries and replaceBackoffMin bound the rename retry loop.
	// Renames can transiently fail when a reader holds the target open
	// (sharing violation); we back off geometrically and finally fall
	// back to a direct overwrite — the file is live-consumed by the UI,
	// so a rare non-atomic write beats a failed one.
	replaceRetries    = 6
	replaceBackoffMin = 250 * time.Millisecond
)

// Recorder owns one session JSON file. All methods are safe for
// concurrent use; mutations are serialized internally. Write failures
// are logged, never returned — the recorder must not crash the workflow.
type Recorder struct {
	path string

	mu  sync.Mutex
	doc models.SessionDocument
	now func() time.Time
}

// New creates a Recorder with a fresh, exclusively-created session file.
// If sessionID is empty one is generated; on a path collision the ID is
// regenerated up to a bounded number of attempts.
func New(dumpDir, sessionID string) (*Recorder, error) {
	if err := os.MkdirAll(dumpDir, 0o755); err != nil {
		return nil, fmt.Errorf("create session directory %s: %w", dumpDir, err)
	}

	for attempt := 0; attempt < createRetries; attempt++ {
		id := sessionID
		if id == "" || attempt > 0 {
			id = GenerateSessionID()
		}
		path := filepath.Join(dumpDir, "session_"+id+".json")

		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err != nil {
			if os.IsExist(err) {
				continue
			}
			return nil, fmt.Errorf("create session file %s: %w", path, err)
		}

		r := &Recorder{
			path: path,
			now:  time.Now,
		}
		now := r.now().UTC()
		r.doc = models.SessionDocument{
			SessionID:    id,
			CreatedAt:    now,
			UpdatedAt:    now,
			Status:       models.SessionStatusActive,
			Stages:       []models.StageRecord{},
			Agents:       []models.AgentRecord{},
			MCPCalls:     []models.MCPCallRecord{},
			Errors:       []models.ErrorRecord{},
			Warnings:     []models.ErrorRecord{},
			FinalResults: map[string]string{},
		}

		data, merr := json.MarshalIndent(&r.doc, "", "  ")
		if merr == nil {
			if _, werr := f.Write(data); werr != nil {
				slog.Warn("Initial session write failed", "path", path, "error", werr)
			}
		}
		if cerr := f.Close(); cerr != nil {
			slog.Warn("Closing session file failed", "path", path, "error", cerr)
		}
		return r, nil
	}
	return nil, fmt.Errorf("could not create a unique session file in %s after %d attempts", dumpDir, createRetries)
}

// GenerateSessionID builds a high-resolution timestamp suffixed with a
// random short token, unique under concurrent runs.
func GenerateSessionID() string {
	ts := time.Now().UTC().Format("20060102_150405.000000000")
	return ts + "_" + uuid.NewString()[:8]
}

// Path returns the session file path.
func (r *Recorder) Path() string { return r.path }

// SessionID returns the session identifier.
func (r *Recorder) SessionID() string { return r.doc.SessionID }

// Document returns a deep-enough copy of the current in-memory document
// for inspection (slices are copied; record values are plain data).
func (r *Recorder) Document() models.SessionDocument {
	r.mu.Lock()
	defer r.mu.Unlock()
	doc := r.doc
	doc.Stages = append([]models.StageRecord(nil), r.doc.Stages...)
	doc.Agents = append([]models.AgentRecord(nil), r.doc.Agents...)
	doc.MCPCalls = append([]models.MCPCallRecord(nil), r.doc.MCPCalls...)
	doc.Errors = append([]models.ErrorRecord(nil), r.doc.Errors...)
	doc.Warnings = append([]models.ErrorRecord(nil), r.doc.Warnings...)
	doc.FinalResults = make(map[string]string, len(r.doc.FinalResults))
	for k, v := range r.doc.FinalResults {
		doc.FinalResults[k] = v
	}
	return doc
}

// SetUserQuery records the user query.
func (r *Recorder) SetUserQuery(query string) {
	r.mutate(func(doc *models.SessionDocument) {
		doc.UserQuery = query
	})
}

// SetStatus transitions the session status. Backward transitions are
// ignored with a log entry (status moves forward only).
func (r *Recorder) SetStatus(status models.SessionStatus) {
	r.mutate(func(doc *models.SessionDocument) {
		if !doc.Status.CanTransition(status) {
			slog.Warn("Ignoring backward session status transition",
				"session_id", doc.SessionID, "from", doc.Status, "to", status)
			return
		}
		doc.Status = status
	})
}

// StartStage appends a stage marker.
func (r *Recorder) StartStage(name, description string) {
	r.mutate(func(doc *models.SessionDocument) {
		doc.Stages = append(doc.Stages, models.StageRecord{
			Name:        name,
			Description: description,
			StartedAt:   r.now().UTC(),
		})
	})
}

// StartAgent appends a running agent record.
func (r *Recorder) StartAgent(name, action string, prompts ...string) {
	r.mutate(func(doc *models.SessionDocument) {
		doc.Agents = append(doc.Agents, models.AgentRecord{
			Name:      name,
			Status:    models.AgentStatusRunning,
			Action:    action,
			Prompts:   prompts,
			StartTime: r.now().UTC(),
		})
	})
}

// CompleteAgent closes the most recent record for the named agent.
func (r *Recorder) CompleteAgent(name, result string, success bool) {
	r.mutate(func(doc *models.SessionDocument) {
		rec := lastAgentRecord(doc, name)
		if rec == nil {
			slog.Warn("CompleteAgent without StartAgent", "agent", name)
			return
		}
		end := r.now().UTC()
		rec.EndTime = &end
		rec.Result = result
		if success {
			rec.Status = models.AgentStatusCompleted
		} else {
			rec.Status = models.AgentStatusFailed
		}
	})
}

// AddAgentAction appends an intermediate action to the named agent's
// most recent record.
func (r *Recorder) AddAgentAction(name, action, details string) {
	r.mutate(func(doc *models.SessionDocument) {
		rec := lastAgentRecord(doc, name)
		if rec == nil {
			slog.Warn("AddAgentAction without StartAgent", "agent", name)
			return
		}
		rec.Actions = append(rec.Actions, models.AgentActionRecord{
			Action:  action,
			Details: details,
			At:      r.now().UTC(),
		})
	})
}

// AddMCPToolCall appends one MCP invocation record.
func (r *Recorder) AddMCPToolCall(agent, tool string, args map[string]any, result string, isError bool) {
	r.mutate(func(doc *models.SessionDocument) {
		doc.MCPCalls = append(doc.MCPCalls, models.MCPCallRecord{
			Agent:     agent,
			Tool:      tool,
			Arguments: args,
			Result:    result,
			IsError:   isError,
			At:        r.now().UTC(),
		})
	})
}

// AddError appends an error entry. agent may be empty.
func (r *Recorder) AddError(message, agent string) {
	r.mutate(func(doc *models.SessionDocument) {
		doc.Errors = append(doc.Errors, models.ErrorRecord{
			Message: message, Agent: agent, At: r.now().UTC(),
		})
	})
}

// AddWarning appends a warning entry. agent may be empty.
func (r *Recorder) AddWarning(message, agent string) {
	r.mutate(func(doc *models.SessionDocument) {
		doc.Warnings = append(doc.Warnings, models.ErrorRecord{
			Message: message, Agent: agent, At: r.now().UTC(),
		})
	})
}

// SetFinalResults stores the structured run summary.
func (r *Recorder) SetFinalResults(results map[string]string) {
	r.mutate(func(doc *models.SessionDocument) {
		doc.FinalResults = make(map[string]string, len(results))
		for k, v := range results {
			doc.FinalResults[k] = v
		}
	})
}

// mutate applies fn to the in-memory document and flushes it to disk,
// all under the recorder lock.
func (r *Recorder) mutate(fn func(doc *models.SessionDocument)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fn(&r.doc)
	r.doc.UpdatedAt = r.now().UTC()
	r.flushLocked()
}

// flushLocked writes the document atomically: marshal, write to a
// temp file beside the target, then rename over it. Rename is retried
// with geometric backoff; on exhaustion we overwrite the target
// directly and best-effort delete the temp file.
func (r *Recorder) flushLocked() {
	data, err := json.MarshalIndent(&r.doc, "", "  ")
	if err != nil {
		slog.Error("Session document marshal failed",
			"session_id", r.doc.SessionID, "error", err)
		return
	}

	tmp := fmt.Sprintf("%s.%08x.tmp", r.path, rand.Uint32())
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		slog.Warn("Session temp write failed", "path", tmp, "error", err)
		return
	}

	backoff := replaceBackoffMin
	for attempt := 1; attempt <= replaceRetries; attempt++ {
		if err := os.Rename(tmp, r.path); err == nil {
			return
		} else if attempt == replaceRetries {
			slog.Warn("Session rename exhausted retries, overwriting directly",
				"path", r.path, "error", err)
			break
		}
		time.Sleep(backoff)
		backoff *= 2
	}

	if err := os.WriteFile(r.path, data, 0o644); err != nil {
		slog.Error("Session direct overwrite failed", "path", r.path, "error", err)
	}
	if err := os.Remove(tmp); err != nil && !os.IsNotExist(err) {
		slog.Debug("Session temp cleanup failed", "path", tmp, "error", err)
	}
}

// lastAgentRecord finds the most recent record for an agent name.
func lastAgentRecord(doc *models.SessionDocument, name string) *models.AgentRecord {
	for i := len(doc.Agents) - 1; i >= 0; i-- {
		if doc.Agents[i].Name == name {
			return &doc.Agents[i]
		}
	}
	return nil
}
