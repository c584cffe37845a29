package execution

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
)

//go:generate go tool mockgen -source=openrouter.go -destination=doer_mock_test.go -package=execution

const (
	DefaultOpenRouterBaseURL = "https://openrouter.ai/api/v1"
	defaultTimeout           = 2 * time.Minute
)

// httpDoer is the subset of [*http.Client] the engine uses.
type httpDoer interface {
	// Do maps to [http.Client.Do]
	Do(req *http.Request) (*http.Response, error)
}

// OpenRouterEngine calls the OpenRouter text completions endpoint.
type OpenRouterEngine struct {
	apiKey  string
	baseURL string
	client  httpDoer
}

// OpenRouterOptions configures NewOpenRouterEngine. Zero values use defaults.
type OpenRouterOptions struct {
	BaseURL string
	Timeout time.Duration

	// Doer replaces the HTTP client, mostly for tests.
	Doer httpDoer
}

// NewOpenRouterEngine creates an engine authenticated with apiKey.
func NewOpenRouterEngine(apiKey string, opts *OpenRouterOptions) (*OpenRouterEngine, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("openrouter: API key is empty")
	}
	if opts == nil {
		opts = &OpenRouterOptions{}
	}

	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultOpenRouterBaseURL
	}

	client := opts.Doer
	if client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		client = &http.Client{Timeout: timeout}
	}

	return &OpenRouterEngine{apiKey: apiKey, baseURL: baseURL, client: client}, nil
}

// Complete sends req and returns the decoded response. Transport failures,
// non-2xx statuses, and responses without choices are errors.
func (e *OpenRouterEngine) Complete(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("openrouter: encoding request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/completions", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("openrouter: building request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+e.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("openrouter: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, fmt.Errorf("openrouter: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var decoded struct {
		Choices []Choice       `json:"choices"`
		Usage   map[string]any `json:"usage"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("openrouter: decoding response: %w", err)
	}
	if len(decoded.Choices) == 0 {
		return nil, errors.New("openrouter: response has no choices")
	}

	out := &CompletionResponse{Choices: decoded.Choices, RawUsage: decoded.Usage}
	if decoded.Usage != nil {
		// Usage is informational; RawUsage keeps whatever the API sent.
		usage, err := decodeUsage(decoded.Usage)
		if err != nil {
			slog.Debug("openrouter: ignoring undecodable usage", "error", err)
		} else {
			out.Usage = usage
		}
	}
	return out, nil
}

func decodeUsage(raw map[string]any) (Usage, error) {
	var u Usage
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &u,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return u, err
	}
	err = dec.Decode(raw)
	return u, err
}
