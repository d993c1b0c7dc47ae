package llm

import (
	"context"
	"sync"
)

// StubClient returns canned responses for testing and dry runs.
// By default every agent receives "OK from <agent>"; RespondFn
// overrides the behavior per request.
type StubClient struct {
	// RespondFn, when set, produces the response for each request.
	RespondFn func(req *ChatRequest) (string, error)

	mu    sync.Mutex
	calls []ChatRequest
}

// NewStubClient creates a stub with the default echo behavior.
func NewStubClient() *StubClient {
	return &StubClient{}
}

// Chat records the request and returns the canned response.
// Cancellation is honored like the real client: checked up front.
func (s *StubClient) Chat(ctx context.Context, req *ChatRequest) (*ChatResult, error) {
	if err := ctx.Err(); err != nil {
		return &ChatResult{}, err
	}

	s.mu.Lock()
	s.calls = append(s.calls, *req)
	s.mu.Unlock()

	if s.RespondFn != nil {
		content, err := s.RespondFn(req)
		if err != nil {
			return &ChatResult{}, err
		}
		return &ChatResult{Content: content}, nil
	}
	return &ChatResult{Content: "OK from " + req.Agent}, nil
}

// Calls returns a copy of all recorded requests in order.
func (s *StubClient) Calls() []ChatRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]ChatRequest(nil), s.calls...)
}
