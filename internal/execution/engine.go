package execution

import (
	"context"
)

// Defaults for a completion request.
const (
	DefaultMaxTokens = 512
	DefaultN         = 1
)

// DefaultStop ends generation at the tool-call arrow or at the start of the
// next question, so each response covers one reasoning step.
var DefaultStop = []string{"->", "\n\nQuestion"}

// Engine sends completion requests to a language model.
type Engine interface {
	Complete(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error)
}

// CompletionRequest is the exact payload sent to the model API. It is also
// written verbatim to the audit log.
type CompletionRequest struct {
	Model       string   `json:"model"`
	Prompt      string   `json:"prompt"`
	MaxTokens   int      `json:"max_tokens"`
	Temperature float64  `json:"temperature"`
	Stop        []string `json:"stop"`
	N           int      `json:"n"`
}

// NewCompletionRequest returns a deterministic single-choice request.
func NewCompletionRequest(model, prompt string, maxTokens int) *CompletionRequest {
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	return &CompletionRequest{
		Model:       model,
		Prompt:      prompt,
		MaxTokens:   maxTokens,
		Temperature: 0,
		Stop:        append([]string(nil), DefaultStop...),
		N:           DefaultN,
	}
}

// Choice is one generated completion.
type Choice struct {
	Text         string `json:"text"`
	FinishReason string `json:"finish_reason,omitempty"`
}

// Usage is the decoded form of the API's usage accounting.
type Usage struct {
	PromptTokens     int     `mapstructure:"prompt_tokens"`
	CompletionTokens int     `mapstructure:"completion_tokens"`
	TotalTokens      int     `mapstructure:"total_tokens"`
	Cost             float64 `mapstructure:"cost"`
}

// CompletionResponse is a model API response.
type CompletionResponse struct {
	Choices []Choice
	// RawUsage is the usage object exactly as the API returned it, or nil.
	RawUsage map[string]any
	Usage    Usage
}

// Text returns the first choice's text.
func (r *CompletionResponse) Text() string {
	if r == nil || len(r.Choices) == 0 {
		return ""
	}
	return r.Choices[0].Text
}
