// Package community implements the HTTP client for the community service,
// the system of record for threads, posts and expert rankings.
package community

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/community-brain/braintrust/internal/domain"
)

const defaultTimeout = 10 * time.Second

// Client is a JSON HTTP client for the community service.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *zap.Logger
}

// Config holds the community service client settings.
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
	Logger  *zap.Logger
}

// NewClient creates a community service client.
func NewClient(cfg *Config) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: timeout},
		logger:     cfg.Logger,
	}
}

// GetThread implements domain.ContentStore. A 404 maps to domain.ErrThreadNotFound.
func (c *Client) GetThread(ctx context.Context, id string) (domain.Thread, error) {
	var thread domain.Thread
	path := "/api/threads/" + url.PathEscape(id)
	if err := c.getJSON(ctx, path, nil, &thread); err != nil {
		return domain.Thread{}, err
	}
	return thread, nil
}

// GetThreadPosts implements domain.ContentStore.
func (c *Client) GetThreadPosts(ctx context.Context, id string) ([]domain.Post, error) {
	var posts []domain.Post
	path := "/api/threads/" + url.PathEscape(id) + "/posts"
	if err := c.getJSON(ctx, path, nil, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// GetExpertsByTags implements domain.ContentStore.
func (c *Client) GetExpertsByTags(ctx context.Context, tags []string, limit int) ([]domain.Expert, error) {
	query := url.Values{}
	query.Set("tags", strings.Join(tags, ","))
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}

	var experts []domain.Expert
	if err := c.getJSON(ctx, "/api/experts", query, &experts); err != nil {
		return nil, err
	}
	return experts, nil
}

// Close implements domain.ContentStore.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("building request for %s: %w", path, err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("requesting %s: %w", path, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return domain.ErrThreadNotFound
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("community service returned %d for %s: %s", resp.StatusCode, path, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response from %s: %w", path, err)
	}
	return nil
}
