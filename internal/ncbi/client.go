package ncbi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	// DefaultFetchDelay is waited before every request to an NCBI service.
	DefaultFetchDelay = time.Second
	defaultTimeout    = 2 * time.Minute
	userAgent         = "genegpt/1.0"
)

// Sleeper waits for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// Sleep is the default Sleeper.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Client fetches raw response bodies from NCBI services.
type Client struct {
	httpClient *http.Client
	delay      time.Duration
	sleep      Sleeper
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(cl *Client) {
		if c != nil {
			cl.httpClient = c
		}
	}
}

// WithFetchDelay sets the wait before each request. Zero disables it.
func WithFetchDelay(d time.Duration) ClientOption {
	return func(cl *Client) { cl.delay = d }
}

// WithSleeper replaces the function used to wait.
func WithSleeper(s Sleeper) ClientOption {
	return func(cl *Client) {
		if s != nil {
			cl.sleep = s
		}
	}
}

// NewClient creates a Client with the default delay and timeout.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: defaultTimeout},
		delay:      DefaultFetchDelay,
		sleep:      Sleep,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Fetch waits the fetch delay, then GETs rawURL and returns the body.
// Non-2xx responses are errors.
func (c *Client) Fetch(ctx context.Context, rawURL string) (string, error) {
	target := Normalize(rawURL)
	if target == "" {
		return "", errors.New("fetch url is empty")
	}

	if err := c.sleep(ctx, c.delay); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return "", fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetching %s: %w", target, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("fetch http %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}
	return string(body), nil
}
