package llm

import (
	"context"
	"log/slog"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantor-labs/quantor/pkg/models"
)

// fakeAPI scripts CreateChatCompletion responses in order.
type fakeAPI struct {
	responses []openai.ChatCompletionResponse
	errs      []error
	requests  []openai.ChatCompletionRequest
}

func (f *fakeAPI) CreateChatCompletion(_ context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	f.requests = append(f.requests, req)
	i := len(f.requests) - 1
	if i < len(f.errs) && f.errs[i] != nil {
		return openai.ChatCompletionResponse{}, f.errs[i]
	}
	if i < len(f.responses) {
		return f.responses[i], nil
	}
	return f.responses[len(f.responses)-1], nil
}

func newTestClient(api completionAPI) *OpenAIClient {
	return &OpenAIClient{
		api:         api,
		model:       "test-model",
		temperature: 0.1,
		maxTokens:   100,
		logger:      slog.Default(),
	}
}

// scriptedExecutor returns canned content per tool name.
type scriptedExecutor struct {
	results map[string]string
	calls   []models.ToolCall
}

func (s *scriptedExecutor) Execute(_ context.Context, call models.ToolCall) *models.ToolResult {
	s.calls = append(s.calls, call)
	return &models.ToolResult{
		CallID:  call.ID,
		Name:    call.Name,
		Content: s.results[call.Name],
	}
}

func assistantMessage(content string, toolCalls ...openai.ToolCall) openai.ChatCompletionResponse {
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{{
			Message: openai.ChatCompletionMessage{
				Role:      openai.ChatMessageRoleAssistant,
				Content:   content,
				ToolCalls: toolCalls,
			},
		}},
	}
}

func toolCall(id, name, args string) openai.ToolCall {
	return openai.ToolCall{
		ID:   id,
		Type: openai.ToolTypeFunction,
		Function: openai.FunctionCall{
			Name:      name,
			Arguments: args,
		},
	}
}

func TestOpenAIClient_Chat_NoTools(t *testing.T) {
	api := &fakeAPI{responses: []openai.ChatCompletionResponse{
		assistantMessage("the market looks stable"),
	}}
	client := newTestClient(api)

	result, err := client.Chat(context.Background(), &ChatRequest{
		Agent:  "market_analyst",
		System: "you are a market analyst",
		User:   "analyze AAPL",
	})
	require.NoError(t, err)
	assert.Equal(t, "the market looks stable", result.Content)
	assert.Zero(t, result.ToolCalls)
	assert.False(t, result.Truncated)

	require.Len(t, api.requests, 1)
	msgs := api.requests[0].Messages
	require.Len(t, msgs, 2)
	assert.Equal(t, openai.ChatMessageRoleSystem, msgs[0].Role)
	assert.Equal(t, openai.ChatMessageRoleUser, msgs[1].Role)
	assert.Empty(t, api.requests[0].Tools)
}

func TestOpenAIClient_Chat_ToolLoop(t *testing.T) {
	api := &fakeAPI{responses: []openai.ChatCompletionResponse{
		assistantMessage("", toolCall("c1", "get_quote", `{"symbol":"AAPL"}`)),
		assistantMessage("AAPL trades at 231.50"),
	}}
	client := newTestClient(api)
	executor := &scriptedExecutor{results: map[string]string{"get_quote": "231.50"}}

	result, err := client.Chat(context.Background(), &ChatRequest{
		Agent: "market_analyst",
		User:  "analyze AAPL",
		Tools: []models.ToolDefinition{
			{Name: "get_quote", ParametersSchema: []byte(`{"type":"object"}`)},
		},
		Executor: executor,
	})
	require.NoError(t, err)
	assert.Equal(t, "AAPL trades at 231.50", result.Content)
	assert.Equal(t, 1, result.ToolCalls)

	require.Len(t, executor.calls, 1)
	assert.Equal(t, "get_quote", executor.calls[0].Name)

	// Second request must carry assistant tool-call and tool-result messages.
	require.Len(t, api.requests, 2)
	msgs := api.requests[1].Messages
	last := msgs[len(msgs)-1]
	assert.Equal(t, openai.ChatMessageRoleTool, last.Role)
	assert.Equal(t, "231.50", last.Content)
	assert.Equal(t, "c1", last.ToolCallID)
}

func TestOpenAIClient_Chat_SequentialMultiToolTurn(t *testing.T) {
	api := &fakeAPI{responses: []openai.ChatCompletionResponse{
		assistantMessage("",
			toolCall("c1", "get_quote", `{}`),
			toolCall("c2", "get_headlines", `{}`)),
		assistantMessage("done"),
	}}
	client := newTestClient(api)
	executor := &scriptedExecutor{results: map[string]string{
		"get_quote":     "231.50",
		"get_headlines": "earnings beat",
	}}

	result, err := client.Chat(context.Background(), &ChatRequest{
		Agent:    "market_analyst",
		User:     "analyze",
		Tools:    []models.ToolDefinition{{Name: "get_quote"}, {Name: "get_headlines"}},
		Executor: executor,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, result.ToolCalls)
	require.Len(t, executor.calls, 2)
	assert.Equal(t, "get_quote", executor.calls[0].Name, "execution preserves request order")
	assert.Equal(t, "get_headlines", executor.calls[1].Name)
}

func TestOpenAIClient_Chat_IterationCap(t *testing.T) {
	// Every response demands another tool call; the loop must stop at the
	// cap and return truncated.
	api := &fakeAPI{responses: []openai.ChatCompletionResponse{
		assistantMessage("partial", toolCall("c", "get_quote", `{}`)),
	}}
	client := newTestClient(api)
	executor := &scriptedExecutor{results: map[string]string{"get_quote": "x"}}

	result, err := client.Chat(context.Background(), &ChatRequest{
		Agent:    "market_analyst",
		User:     "analyze",
		Tools:    []models.ToolDefinition{{Name: "get_quote"}},
		Executor: executor,
	})
	require.NoError(t, err)
	assert.True(t, result.Truncated)
	assert.Equal(t, "partial", result.Content)
	assert.Equal(t, MaxToolIterations, result.ToolCalls)
	assert.Len(t, api.requests, MaxToolIterations+1)
}

func TestOpenAIClient_Chat_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := newTestClient(&fakeAPI{responses: []openai.ChatCompletionResponse{
		assistantMessage("never"),
	}})
	result, err := client.Chat(ctx, &ChatRequest{Agent: "market_analyst", User: "q"})
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, result.Content)
}

func TestOpenAIClient_Chat_NoChoices(t *testing.T) {
	client := newTestClient(&fakeAPI{responses: []openai.ChatCompletionResponse{{}}})
	_, err := client.Chat(context.Background(), &ChatRequest{Agent: "a", User: "q"})
	assert.ErrorContains(t, err, "no choices")
}

func TestConvertTools_BadSchemaDegrades(t *testing.T) {
	tools := convertTools([]models.ToolDefinition{
		{Name: "good", ParametersSchema: []byte(`{"type":"object","properties":{"s":{"type":"string"}}}`)},
		{Name: "bad", ParametersSchema: []byte(`{broken`)},
	})
	require.Len(t, tools, 2)
	assert.Equal(t, "good", tools[0].Function.Name)
	assert.Equal(t,
		map[string]any{"type": "object", "properties": map[string]any{}},
		tools[1].Function.Parameters)
}

func TestStubClient_Default(t *testing.T) {
	stub := NewStubClient()
	result, err := stub.Chat(context.Background(), &ChatRequest{Agent: "risk_manager"})
	require.NoError(t, err)
	assert.Equal(t, "OK from risk_manager", result.Content)
	assert.Len(t, stub.Calls(), 1)
}
