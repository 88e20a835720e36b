// Package client is an HTTP client for the pawswap REST API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/paw-chain/pawswap/api"
)

// DefaultBaseURL is the address of a locally running pawswapd.
const DefaultBaseURL = "http://localhost:5000"

// Client talks to the /api/v1 endpoints of a pawswapd server.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Config holds client configuration.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// New creates a new API client.
func New(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = DefaultBaseURL
	}
	return &Client{
		baseURL:    base,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Error is a non-2xx API response.
type Error struct {
	Status    int
	Code      string
	Message   string
	Retryable bool
	RequestID string
}

func (e *Error) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("request failed: %d %s", e.Status, e.Message)
	}
	return fmt.Sprintf("request failed: %d %s: %s", e.Status, e.Code, e.Message)
}

// IsCode reports whether err is an API error with the given code.
func IsCode(err error, code string) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Code == code
}

// Get sends a GET request and decodes the JSON response into out.
func (c *Client) Get(ctx context.Context, path string, query url.Values, out interface{}) error {
	return c.do(ctx, http.MethodGet, path, query, nil, out)
}

// Post sends body as JSON and decodes the JSON response into out.
func (c *Client) Post(ctx context.Context, path string, body, out interface{}) error {
	return c.do(ctx, http.MethodPost, path, nil, body, out)
}

// Put sends body as JSON and decodes the JSON response into out.
func (c *Client) Put(ctx context.Context, path string, body, out interface{}) error {
	return c.do(ctx, http.MethodPut, path, nil, body, out)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	target := c.baseURL + "/api/v1" + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		bz, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(bz)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set(api.RequestIDHeader, uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &Error{Status: resp.StatusCode, RequestID: resp.Header.Get(api.RequestIDHeader)}
		var er api.ErrorResponse
		if json.Unmarshal(respBody, &er) == nil && er.Error != "" {
			apiErr.Code, apiErr.Message, apiErr.Retryable = er.Code, er.Error, er.Retryable
		} else {
			apiErr.Message = strings.TrimSpace(string(respBody))
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}

// PoolPath returns the path of a pool resource.
func PoolPath(poolID uint64, rest ...string) string {
	return resourcePath("/pools", poolID, rest...)
}

// FarmPath returns the path of a farm resource.
func FarmPath(farmID uint64, rest ...string) string {
	return resourcePath("/farms", farmID, rest...)
}

func resourcePath(base string, id uint64, rest ...string) string {
	parts := append([]string{base, strconv.FormatUint(id, 10)}, rest...)
	for i := 1; i < len(parts); i++ {
		parts[i] = url.PathEscape(parts[i])
	}
	return strings.Join(parts, "/")
}

// Quote asks for an exact-in or exact-out quote between two tokens.
func (c *Client) Quote(ctx context.Context, tokenIn, tokenOut, amount string, exactOut bool) (api.QuoteResponse, error) {
	var q api.QuoteResponse
	err := c.Get(ctx, "/swap/quote", url.Values{
		"tokenIn":  {tokenIn},
		"tokenOut": {tokenOut},
		"amount":   {amount},
		"exactOut": {strconv.FormatBool(exactOut)},
	}, &q)
	return q, err
}

// Swap executes an exact-in swap.
func (c *Client) Swap(ctx context.Context, req api.SwapRequest) (json.RawMessage, error) {
	var out json.RawMessage
	err := c.Post(ctx, "/swap", req, &out)
	return out, err
}

// Pool fetches one pool.
func (c *Client) Pool(ctx context.Context, poolID uint64) (api.PoolResponse, error) {
	var p api.PoolResponse
	err := c.Get(ctx, PoolPath(poolID), nil, &p)
	return p, err
}
