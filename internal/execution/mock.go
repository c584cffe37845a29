package execution

import (
	"context"
	"sync"
)

// DefaultMockOutput is returned by a MockEngine with no scripted outputs.
const DefaultMockOutput = "Answer: mock response"

// MockEngine is a scripted Engine for dry runs and tests. It returns its
// outputs in order and then keeps repeating the last one.
type MockEngine struct {
	mu       sync.Mutex
	outputs  []string
	err      error
	calls    int
	requests []CompletionRequest
}

// NewMockEngine creates a MockEngine that returns outputs in order.
func NewMockEngine(outputs ...string) *MockEngine {
	return &MockEngine{outputs: outputs}
}

// FailWith makes every subsequent call return err.
func (m *MockEngine) FailWith(err error) *MockEngine {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
	return m
}

func (m *MockEngine) Complete(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.requests = append(m.requests, *req)
	if m.err != nil {
		return nil, m.err
	}

	text := DefaultMockOutput
	if len(m.outputs) > 0 {
		i := min(m.calls, len(m.outputs)-1)
		text = m.outputs[i]
	}
	m.calls++

	return &CompletionResponse{
		Choices:  []Choice{{Text: text}},
		RawUsage: map[string]any{"prompt_tokens": len(req.Prompt), "completion_tokens": len(text)},
		Usage:    Usage{PromptTokens: len(req.Prompt), CompletionTokens: len(text), TotalTokens: len(req.Prompt) + len(text)},
	}, nil
}

// Requests returns copies of all requests received so far.
func (m *MockEngine) Requests() []CompletionRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]CompletionRequest(nil), m.requests...)
}
