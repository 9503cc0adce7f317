package backend

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"github.com/custodia-labs/omniq-cli/internal/core/domain"
	"github.com/custodia-labs/omniq-cli/internal/core/ports/driven"
	"github.com/custodia-labs/omniq-cli/internal/logger"
)

// Ensure Client implements the interfaces.
var (
	_ driven.BackendClient = (*Client)(nil)
	_ driven.TokenHolder   = (*Client)(nil)
)

// API paths, relative to the base URL.
const (
	pathChat         = "api/v1/chat"
	pathDocuments    = "api/v1/documents"
	pathLogin        = "api/v1/login"
	pathImages       = "api/images"
	pathEnableLogout = "api/enableLogout"
)

// Config holds how the client reaches the backend.
type Config struct {
	// BaseURL is the root every API path is resolved against (required).
	BaseURL string

	// Timeout bounds each request. Zero disables it.
	Timeout time.Duration

	// RequestsPerSecond throttles outgoing requests. Zero is unlimited.
	RequestsPerSecond float64

	// Token is the initial bearer token.
	Token string

	// Transport overrides the underlying round tripper. Used by tests.
	Transport http.RoundTripper
}

// ConfigFromSettings builds a client configuration from application settings.
func ConfigFromSettings(s domain.BackendSettings) Config {
	return Config{
		BaseURL:           s.BaseURL,
		Timeout:           s.Timeout(),
		RequestsPerSecond: s.RequestsPerSecond,
		Token:             s.Token,
	}
}

// Client talks to the backend API.
type Client struct {
	http    *http.Client
	baseURL *url.URL
	limiter *rate.Limiter

	mu    sync.RWMutex
	token string
}

// NewClient creates a client for the configured backend.
func NewClient(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("backend: %w: base URL is required", domain.ErrInvalidInput)
	}
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("backend: parse base URL: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("backend: %w: base URL must be http or https, got %q", domain.ErrInvalidInput, cfg.BaseURL)
	}
	if !strings.HasSuffix(base.Path, "/") {
		base.Path += "/"
	}

	transport := cfg.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}

	c := &Client{
		baseURL: base,
		token:   cfg.Token,
	}
	c.http = &http.Client{
		Timeout: cfg.Timeout,
		Transport: &bearerTransport{
			client: c,
			base:   transport,
			oauth: &oauth2.Transport{
				Source: tokenSource{client: c},
				Base:   transport,
			},
		},
	}
	if cfg.RequestsPerSecond > 0 {
		burst := int(cfg.RequestsPerSecond)
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}

	return c, nil
}

// BaseURL returns the resolved base URL.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// SetToken replaces the bearer token. Empty clears it.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

// Token returns the current bearer token.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// endpoint resolves an API path against the base URL.
func (c *Client) endpoint(path string) string {
	return c.baseURL.ResolveReference(&url.URL{Path: path}).String()
}

// do sends one request after waiting for the rate limiter.
func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string) (*http.Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path), body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		logger.Warn("%s /%s failed: %v", method, path, err)
		return nil, err
	}
	logger.Debug("%s /%s -> %d (%s)", method, path, resp.StatusCode, time.Since(start).Round(time.Millisecond))
	return resp, nil
}

func isSuccess(code int) bool {
	return code >= 200 && code < 300
}

// reasonPhrase extracts "Not Found" from "404 Not Found".
func reasonPhrase(resp *http.Response) string {
	reason := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if reason == "" {
		reason = http.StatusText(resp.StatusCode)
	}
	return reason
}

// drain discards the rest of the body so the connection can be reused.
func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
	_ = resp.Body.Close()
}

// bearerTransport attaches the bearer token through oauth2 when one is set.
type bearerTransport struct {
	client *Client
	base   http.RoundTripper
	oauth  *oauth2.Transport
}

// RoundTrip implements http.RoundTripper.
func (t *bearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.client.Token() == "" {
		return t.base.RoundTrip(req)
	}
	return t.oauth.RoundTrip(req)
}

var errNoToken = errors.New("no bearer token set")

// tokenSource serves the client's current token to oauth2.
type tokenSource struct {
	client *Client
}

// Token implements oauth2.TokenSource.
func (s tokenSource) Token() (*oauth2.Token, error) {
	token := s.client.Token()
	if token == "" {
		return nil, errNoToken
	}
	return &oauth2.Token{AccessToken: token, TokenType: "Bearer"}, nil
}
