package recorder

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantor-labs/quantor/pkg/models"
)

func readDoc(t *testing.T, path string) models.SessionDocument {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var doc models.SessionDocument
	require.NoError(t, json.Unmarshal(data, &doc))
	return doc
}

func TestNew_CreatesSessionFile(t *testing.T) {
	dir := t.TempDir()
	rec, err := New(dir, "")
	require.NoError(t, err)

	assert.NotEmpty(t, rec.SessionID())
	assert.Equal(t, filepath.Join(dir, "session_"+rec.SessionID()+".json"), rec.Path())

	doc := readDoc(t, rec.Path())
	assert.Equal(t, rec.SessionID(), doc.SessionID)
	assert.Equal(t, models.SessionStatusActive, doc.Status)
	assert.NotNil(t, doc.Errors)
	assert.NotNil(t, doc.Warnings)
}

func TestNew_RegeneratesIDOnCollision(t *testing.T) {
	dir := t.TempDir()
	first, err := New(dir, "fixed-id")
	require.NoError(t, err)

	second, err := New(dir, "fixed-id")
	require.NoError(t, err)
	assert.NotEqual(t, first.SessionID(), second.SessionID())
	assert.NotEqual(t, first.Path(), second.Path())
}

func TestRecorder_SetStatus_ForwardOnly(t *testing.T) {
	rec, err := New(t.TempDir(), "")
	require.NoError(t, err)

	rec.SetStatus(models.SessionStatusRunning)
	rec.SetStatus(models.SessionStatusCompleted)
	rec.SetStatus(models.SessionStatusRunning) // ignored
	rec.SetStatus(models.SessionStatusFailed)  // terminal switch, ignored

	doc := readDoc(t, rec.Path())
	assert.Equal(t, models.SessionStatusCompleted, doc.Status)
}

func TestRecorder_AgentLifecycle(t *testing.T) {
	rec, err := New(t.TempDir(), "")
	require.NoError(t, err)

	rec.SetUserQuery("analyze AAPL")
	rec.StartStage("analysis", "analyst agents gather reports")
	rec.StartAgent("market_analyst", "analyze market data", "system prompt", "user prompt")
	rec.AddAgentAction("market_analyst", "llm_call", "chat round trip")
	rec.CompleteAgent("market_analyst", "uptrend confirmed", true)

	doc := readDoc(t, rec.Path())
	assert.Equal(t, "analyze AAPL", doc.UserQuery)
	require.Len(t, doc.Stages, 1)
	assert.Equal(t, "analysis", doc.Stages[0].Name)

	require.Len(t, doc.Agents, 1)
	agent := doc.Agents[0]
	assert.Equal(t, "market_analyst", agent.Name)
	assert.Equal(t, models.AgentStatusCompleted, agent.Status)
	assert.Equal(t, "uptrend confirmed", agent.Result)
	assert.Equal(t, []string{"system prompt", "user prompt"}, agent.Prompts)
	require.NotNil(t, agent.EndTime)
	require.Len(t, agent.Actions, 1)
	assert.Equal(t, "llm_call", agent.Actions[0].Action)
}

func TestRecorder_FailedAgent(t *testing.T) {
	rec, err := New(t.TempDir(), "")
	require.NoError(t, err)

	rec.StartAgent("news_analyst", "analyze news")
	rec.CompleteAgent("news_analyst", "news analysis error: upstream 500", false)
	rec.AddError("news analysis error: upstream 500", "news_analyst")

	doc := readDoc(t, rec.Path())
	require.Len(t, doc.Agents, 1)
	assert.Equal(t, models.AgentStatusFailed, doc.Agents[0].Status)
	require.Len(t, doc.Errors, 1)
	assert.Equal(t, "news_analyst", doc.Errors[0].Agent)
}

func TestRecorder_MCPCallsAndFinalResults(t *testing.T) {
	rec, err := New(t.TempDir(), "")
	require.NoError(t, err)

	rec.AddMCPToolCall("market_analyst", "get_quote",
		map[string]any{"symbol": "AAPL"}, "AAPL: 231.50", false)
	rec.AddMCPToolCall("market_analyst", "get_quote",
		nil, `{"error": "quota exceeded"}`, true)
	rec.SetFinalResults(map[string]string{"final_trade_decision": "approve"})

	doc := readDoc(t, rec.Path())
	require.Len(t, doc.MCPCalls, 2)
	assert.Equal(t, "get_quote", doc.MCPCalls[0].Tool)
	assert.False(t, doc.MCPCalls[0].IsError)
	assert.True(t, doc.MCPCalls[1].IsError)
	assert.Equal(t, map[string]string{"final_trade_decision": "approve"}, doc.FinalResults)
}

func TestRecorder_EveryMutationFlushesValidJSON(t *testing.T) {
	rec, err := New(t.TempDir(), "")
	require.NoError(t, err)

	rec.SetUserQuery("q")
	readDoc(t, rec.Path())
	rec.StartAgent("market_analyst", "a")
	readDoc(t, rec.Path())
	rec.AddWarning("slow tool", "market_analyst")
	doc := readDoc(t, rec.Path())
	require.Len(t, doc.Warnings, 1)
}

func TestRecorder_ConcurrentMutations(t *testing.T) {
	rec, err := New(t.TempDir(), "")
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				rec.AddWarning("w", "")
			}
		}()
	}
	wg.Wait()

	doc := readDoc(t, rec.Path())
	assert.Len(t, doc.Warnings, 80)
}

func TestRecorder_NoTempFilesLeftBehind(t *testing.T) {
	dir := t.TempDir()
	rec, err := New(dir, "")
	require.NoError(t, err)

	rec.SetUserQuery("q")
	rec.SetStatus(models.SessionStatusRunning)
	rec.SetStatus(models.SessionStatusCompleted)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, entry := range entries {
		assert.False(t, strings.HasSuffix(entry.Name(), ".tmp"),
			"leftover temp file %s", entry.Name())
	}
}

func TestGenerateSessionID_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := GenerateSessionID()
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}
