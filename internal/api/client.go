// Package api is the HTTP client for the SkillQuest backend.
package api

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

// DefaultTimeout bounds a single request when no http.Client is supplied.
const DefaultTimeout = 30 * time.Second

// TokenSource supplies the bearer token attached to requests. A 401
// response calls Invalidate so the rejected token is never reused.
type TokenSource interface {
	Token() string
	Set(ctx context.Context, token string) error
	Invalidate()
}

// Client talks to the backend on behalf of one credential slot.
type Client struct {
	baseURL string
	http    *http.Client
	creds   TokenSource
	cache   *responseCache
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithCache enables the TTL cache for catalog-style reads (shop items and
// the leaderboard). A zero ttl disables caching.
func WithCache(ttl time.Duration) Option {
	return func(c *Client) { c.cache = newResponseCache(ttl) }
}

// New creates a Client for baseURL. creds may be nil for anonymous use.
func New(baseURL string, creds TokenSource, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: DefaultTimeout},
		creds:   creds,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the server root the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// do sends a JSON request and decodes a JSON response into out (if non-nil).
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	raw, err := c.doRaw(ctx, method, path, in)
	if err != nil {
		return err
	}
	return decode(path, raw, out)
}

// doRaw sends a JSON request and returns the raw 2xx response body.
func (c *Client) doRaw(ctx context.Context, method, path string, in any) ([]byte, error) {
	var body io.Reader
	contentType := ""
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(b)
		contentType = "application/json"
	}
	return c.send(ctx, method, path, body, contentType)
}

// send performs the request and maps non-2xx statuses to *StatusError.
func (c *Client) send(ctx context.Context, method, path string, body io.Reader, contentType string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if tok := c.token(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s %s: %w", method, path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if resp.StatusCode == http.StatusUnauthorized && c.creds != nil {
			c.creds.Invalidate()
		}
		return nil, newStatusError(method, path, resp.StatusCode, raw)
	}
	return raw, nil
}

func (c *Client) token() string {
	if c.creds == nil {
		return ""
	}
	return c.creds.Token()
}

// setToken stores a token issued by a login endpoint.
func (c *Client) setToken(ctx context.Context, token string) error {
	if token == "" {
		return &ErrInvalidPayload{Err: fmt.Errorf("empty token")}
	}
	if c.creds == nil {
		return nil
	}
	return c.creds.Set(ctx, token)
}

func decode(path string, raw []byte, out any) error {
	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &ErrInvalidPayload{Path: path, Body: raw, Err: err}
	}
	return nil
}
