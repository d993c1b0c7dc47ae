package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	openai "github.com/sashabaranov/go-openai"

	"github.com/quantor-labs/quantor/pkg/config"
	"github.com/quantor-labs/quantor/pkg/models"
)

// completionAPI is the slice of the OpenAI SDK the client depends on.
// *openai.Client satisfies it; tests substitute a fake.
type completionAPI interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// OpenAIClient implements Client against any OpenAI-compatible endpoint
// (LLM_BASE_URL selects the host). Stateless per call — safe for
// sequential reuse across agents.
type OpenAIClient struct {
	api         completionAPI
	model       string
	temperature float32
	maxTokens   int
	logger      *slog.Logger
}

// NewOpenAIClient creates a client from the resolved LLM configuration.
func NewOpenAIClient(cfg config.LLMConfig) *OpenAIClient {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}
	return &OpenAIClient{
		api:         openai.NewClientWithConfig(clientConfig),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		logger:      slog.Default(),
	}
}

// Chat performs the round-trip described by the Client contract.
func (c *OpenAIClient) Chat(ctx context.Context, req *ChatRequest) (*ChatResult, error) {
	messages := buildMessages(req)
	tools := convertTools(req.Tools)

	result := &ChatResult{}
	for iteration := 0; iteration <= MaxToolIterations; iteration++ {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		chatReq := openai.ChatCompletionRequest{
			Model:       c.model,
			Messages:    messages,
			Temperature: c.temperature,
		}
		if c.maxTokens > 0 {
			chatReq.MaxTokens = c.maxTokens
		}
		if len(tools) > 0 {
			chatReq.Tools = tools
		}

		resp, err := c.api.CreateChatCompletion(ctx, chatReq)
		if err != nil {
			return result, fmt.Errorf("chat completion: %w", err)
		}
		if len(resp.Choices) == 0 {
			return result, fmt.Errorf("chat completion returned no choices")
		}

		msg := resp.Choices[0].Message
		if msg.Content != "" {
			result.Content = msg.Content
		}

		if len(msg.ToolCalls) == 0 {
			return result, nil
		}
		if iteration == MaxToolIterations {
			break
		}
		if req.Executor == nil {
			return result, fmt.Errorf("model requested tools but no executor is configured")
		}

		messages = append(messages, msg)

		// Execute requested tools sequentially, results appended in
		// matching order — deterministic transcripts.
		for _, tc := range msg.ToolCalls {
			if err := ctx.Err(); err != nil {
				return result, err
			}
			toolResult := req.Executor.Execute(ctx, models.ToolCall{
				ID:        tc.ID,
				Name:      tc.Function.Name,
				Arguments: tc.Function.Arguments,
			})
			result.ToolCalls++
			messages = append(messages, openai.ChatCompletionMessage{
				Role:       openai.ChatMessageRoleTool,
				Content:    toolResult.Content,
				ToolCallID: tc.ID,
			})
		}
	}

	c.logger.Warn("Tool-call loop hit iteration cap",
		"agent", req.Agent, "cap", MaxToolIterations)
	result.Truncated = true
	return result, nil
}

func buildMessages(req *ChatRequest) []openai.ChatCompletionMessage {
	messages := make([]openai.ChatCompletionMessage, 0, len(req.History)+2)
	if req.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.System,
		})
	}
	for _, m := range req.History {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    m.Role,
			Content: m.Content,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: req.User,
	})
	return messages
}

func convertTools(defs []models.ToolDefinition) []openai.Tool {
	if len(defs) == 0 {
		return nil
	}
	tools := make([]openai.Tool, len(defs))
	for i, def := range defs {
		var schema map[string]any
		if err := json.Unmarshal(def.ParametersSchema, &schema); err != nil || schema == nil {
			// Graceful degradation: a bad schema must not break the
			// remaining tools.
			schema = map[string]any{"type": "object", "properties": map[string]any{}}
		}
		tools[i] = openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        def.Name,
				Description: def.Description,
				Parameters:  schema,
			},
		}
	}
	return tools
}
