package braintrust

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultTimeout = 60 * time.Second

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	apiKey     string
	timeout    time.Duration
	httpClient *http.Client
}

// WithAPIKey sets the Bearer token sent with every request.
func WithAPIKey(key string) Option {
	return optionFunc(func(c *clientConfig) {
		c.apiKey = key
	})
}

// WithTimeout sets the per-request timeout. Defaults to 60s, which covers
// generation-backed endpoints.
func WithTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.timeout = d
	})
}

// WithHTTPClient replaces the underlying HTTP client. The timeout option is
// ignored when a custom client is supplied.
func WithHTTPClient(hc *http.Client) Option {
	return optionFunc(func(c *clientConfig) {
		c.httpClient = hc
	})
}

// Client is the braintrust API client.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// New creates a braintrust API client for the given base URL.
func New(baseURL string, opts ...Option) *Client {
	cfg := &clientConfig{timeout: defaultTimeout}
	for _, o := range opts {
		o.apply(cfg)
	}

	hc := cfg.httpClient
	if hc == nil {
		hc = &http.Client{Timeout: cfg.timeout}
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     cfg.apiKey,
		httpClient: hc,
	}
}

// Ask sends a question through the answer pipeline. topK bounds retrieval;
// pass 0 for the server default.
func (c *Client) Ask(ctx context.Context, question string, topK int) (AskResult, error) {
	req := askRequest{Question: question}
	if topK > 0 {
		req.TopK = &topK
	}

	var result AskResult
	if err := c.post(ctx, "/api/assistant/ask", req, &result); err != nil {
		return AskResult{}, err
	}
	return result, nil
}

// Similar returns threads similar to the query, ranked by similarity.
func (c *Client) Similar(ctx context.Context, query string, topK int) ([]SimilarThread, error) {
	req := similarRequest{Query: query}
	if topK > 0 {
		req.TopK = &topK
	}

	var result struct {
		Threads []SimilarThread `json:"threads"`
	}
	if err := c.post(ctx, "/api/assistant/similar", req, &result); err != nil {
		return nil, err
	}
	return result.Threads, nil
}

// Summarize returns a structured summary of a thread and its replies.
func (c *Client) Summarize(ctx context.Context, threadID string) (ThreadSummary, error) {
	var result ThreadSummary
	if err := c.post(ctx, "/api/assistant/summarize", summarizeRequest{ThreadID: threadID}, &result); err != nil {
		return ThreadSummary{}, err
	}
	return result, nil
}

// Experts returns community members recommended for the given tags.
func (c *Client) Experts(ctx context.Context, tags []string, topK int) ([]Expert, error) {
	req := expertsRequest{Tags: tags}
	if topK > 0 {
		req.TopK = &topK
	}

	var result struct {
		Experts []Expert `json:"experts"`
	}
	if err := c.post(ctx, "/api/assistant/experts", req, &result); err != nil {
		return nil, err
	}
	return result.Experts, nil
}

// Health reports service health. A degraded service returns a report with
// Status != "ok" and a nil error.
func (c *Client) Health(ctx context.Context) (HealthStatus, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return HealthStatus{}, fmt.Errorf("braintrust: build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return HealthStatus{}, fmt.Errorf("braintrust: health request: %w", err)
	}
	defer resp.Body.Close()

	// 200 and 503 both carry the report body.
	var status HealthStatus
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return HealthStatus{}, fmt.Errorf("braintrust: decode health response: %w", err)
	}
	return status, nil
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("braintrust: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("braintrust: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("braintrust: request %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return parseAPIError(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("braintrust: decode response from %s: %w", path, err)
	}
	return nil
}

func parseAPIError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	apiErr := &APIError{StatusCode: resp.StatusCode}
	if err := json.Unmarshal(body, apiErr); err != nil || apiErr.Code == "" {
		apiErr.Code = "unknown_error"
		apiErr.Message = strings.TrimSpace(string(body))
	}
	return apiErr
}
