package fetch

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

const (
	// defaultTimeout bounds a single request to the render gateway.
	// Rendering JavaScript-heavy pages routinely takes tens of seconds,
	// so this is much longer than a plain HTTP timeout.
	defaultTimeout = 60 * time.Second

	// defaultMaxBodySize caps how much of a response body is read.
	// 5MB covers any realistic page while preventing memory exhaustion
	// from a hostile or misconfigured endpoint.
	defaultMaxBodySize = 5 * 1024 * 1024

	// defaultUserAgent identifies this tool honestly to servers.
	defaultUserAgent = "Spindle/1.0 (+https://github.com/nao1215/spindle)"
)

// Client fetches pages through the remote render gateway. The gateway
// runs the browser, executes JavaScript, and returns extracted content
// as JSON; the client is a thin HTTP wrapper around it.
type Client struct {
	httpClient  *http.Client
	endpoint    string
	apiKey      string
	userAgent   string
	maxBodySize int64
	timeout     time.Duration
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithAPIKey sets the bearer token sent to the gateway.
func WithAPIKey(key string) ClientOption {
	return func(c *Client) {
		c.apiKey = key
	}
}

// WithClientTimeout overrides the default gateway request timeout.
func WithClientTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// WithClientUserAgent overrides the default User-Agent header.
func WithClientUserAgent(ua string) ClientOption {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// WithClientMaxBodySize overrides the response body read cap.
func WithClientMaxBodySize(size int64) ClientOption {
	return func(c *Client) {
		c.maxBodySize = size
	}
}

// WithHTTPClient replaces the underlying HTTP client, mainly for tests.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = client
	}
}

// NewClient creates a gateway client for the given endpoint, for example
// "https://render.example.com". It returns ErrMissingEndpoint when the
// endpoint is empty.
func NewClient(endpoint string, opts ...ClientOption) (*Client, error) {
	if strings.TrimSpace(endpoint) == "" {
		return nil, ErrMissingEndpoint
	}

	c := &Client{
		endpoint:    strings.TrimRight(endpoint, "/"),
		userAgent:   defaultUserAgent,
		maxBodySize: defaultMaxBodySize,
		timeout:     defaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: c.timeout}
	}
	return c, nil
}

// fetchRequest is the JSON body for the gateway fetch endpoint.
type fetchRequest struct {
	URL       string         `json:"url"`
	SessionID string         `json:"session_id,omitempty"`
	CacheMode string         `json:"cache_mode,omitempty"`
	Render    *renderRequest `json:"render,omitempty"`
}

// renderRequest carries rendering settings on the wire. The timeout is
// serialized as milliseconds because JSON has no duration type.
type renderRequest struct {
	WaitUntil string `json:"wait_until,omitempty"`
	TimeoutMS int64  `json:"timeout_ms,omitempty"`
	MaxDepth  int    `json:"max_depth,omitempty"`
}

// fetchResponse mirrors the gateway fetch reply.
type fetchResponse struct {
	Success        bool     `json:"success"`
	Error          string   `json:"error,omitempty"`
	Title          string   `json:"title,omitempty"`
	TextContent    string   `json:"text_content,omitempty"`
	RawMarkup      string   `json:"raw_markup,omitempty"`
	FilteredMarkup string   `json:"filtered_markup,omitempty"`
	InternalLinks  []string `json:"internal_links,omitempty"`
	ExternalLinks  []string `json:"external_links,omitempty"`
}

type probeRequest struct {
	URL string `json:"url"`
}

type probeResponse struct {
	ContentType string `json:"content_type"`
}

// Fetch retrieves rawURL through the gateway. Gateway-side page failures
// come back as a Result with Success false; transport and protocol
// failures are returned as errors.
func (c *Client) Fetch(ctx context.Context, rawURL string, opts Options) (*Result, error) {
	target, err := ParseTarget(rawURL)
	if err != nil {
		return nil, err
	}

	reqBody := fetchRequest{
		URL:       target.String(),
		SessionID: opts.SessionID,
		CacheMode: opts.CacheMode,
	}
	if opts.Render != (RenderOptions{}) {
		reqBody.Render = &renderRequest{
			WaitUntil: opts.Render.WaitUntil,
			TimeoutMS: opts.Render.Timeout.Milliseconds(),
			MaxDepth:  opts.Render.MaxDepth,
		}
	}

	var resp fetchResponse
	if err := c.post(ctx, "/fetch", reqBody, &resp); err != nil {
		return nil, err
	}

	return &Result{
		Success:        resp.Success,
		Title:          resp.Title,
		TextContent:    resp.TextContent,
		RawMarkup:      resp.RawMarkup,
		FilteredMarkup: resp.FilteredMarkup,
		InternalLinks:  resp.InternalLinks,
		ExternalLinks:  resp.ExternalLinks,
		ErrorMessage:   resp.Error,
	}, nil
}

// Probe asks the gateway for the content type of rawURL without a full
// render.
func (c *Client) Probe(ctx context.Context, rawURL string) (string, error) {
	target, err := ParseTarget(rawURL)
	if err != nil {
		return "", err
	}

	var resp probeResponse
	if err := c.post(ctx, "/probe", probeRequest{URL: target.String()}, &resp); err != nil {
		return "", err
	}
	return resp.ContentType, nil
}

// post sends one JSON request to the gateway and decodes the reply into
// out.
func (c *Client) post(ctx context.Context, path string, in, out any) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("failed to encode gateway request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create gateway request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBodySize))
	if err != nil {
		return fmt.Errorf("failed to read gateway response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: %d %s on %s", ErrGatewayStatus, resp.StatusCode, http.StatusText(resp.StatusCode), path)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: %v", ErrEmptyResponse, err)
	}
	return nil
}
