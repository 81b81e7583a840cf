package fetch

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"golang.org/x/net/proxy"
)

// Direct fetches pages with plain HTTP and extracts content locally. It
// does not execute JavaScript, so script-rendered pages come back mostly
// empty; use the gateway or browser backend for those.
type Direct struct {
	httpClient  *http.Client
	userAgent   string
	maxBodySize int64
	timeout     time.Duration
	socksProxy  string
	headers     map[string]string
}

// DirectOption configures a Direct fetcher.
type DirectOption func(*Direct)

// WithDirectTimeout overrides the default request timeout.
func WithDirectTimeout(timeout time.Duration) DirectOption {
	return func(d *Direct) {
		d.timeout = timeout
	}
}

// WithDirectUserAgent overrides the default User-Agent header.
func WithDirectUserAgent(ua string) DirectOption {
	return func(d *Direct) {
		d.userAgent = ua
	}
}

// WithDirectMaxBodySize overrides the response body read cap.
func WithDirectMaxBodySize(size int64) DirectOption {
	return func(d *Direct) {
		d.maxBodySize = size
	}
}

// WithSOCKSProxy routes all requests through a SOCKS5 proxy at addr,
// for example "127.0.0.1:9050".
func WithSOCKSProxy(addr string) DirectOption {
	return func(d *Direct) {
		d.socksProxy = addr
	}
}

// WithExtraHeaders adds headers to every request, typically cookies or
// authentication from a per-host profile.
func WithExtraHeaders(headers map[string]string) DirectOption {
	return func(d *Direct) {
		d.headers = headers
	}
}

// WithDirectHTTPClient replaces the underlying HTTP client, mainly for
// tests.
func WithDirectHTTPClient(client *http.Client) DirectOption {
	return func(d *Direct) {
		d.httpClient = client
	}
}

// NewDirect creates a plain HTTP fetcher. It returns an error when a
// SOCKS proxy is configured but the dialer cannot be created.
func NewDirect(opts ...DirectOption) (*Direct, error) {
	d := &Direct{
		userAgent:   defaultUserAgent,
		maxBodySize: defaultMaxBodySize,
		timeout:     defaultTimeout,
	}
	for _, opt := range opts {
		opt(d)
	}

	if d.httpClient == nil {
		client, err := d.buildHTTPClient()
		if err != nil {
			return nil, err
		}
		d.httpClient = client
	}
	return d, nil
}

// buildHTTPClient assembles the transport chain: base transport,
// optional SOCKS5 dialer, optional header injection.
func (d *Direct) buildHTTPClient() (*http.Client, error) {
	transport := &http.Transport{
		TLSHandshakeTimeout: 10 * time.Second,
		IdleConnTimeout:     30 * time.Second,
		MaxIdleConns:        10,
	}

	if d.socksProxy != "" {
		dialer, err := proxy.SOCKS5("tcp", d.socksProxy, nil, proxy.Direct)
		if err != nil {
			return nil, fmt.Errorf("failed to create socks5 dialer for %s: %w", d.socksProxy, err)
		}
		transport.DialContext = func(ctx context.Context, network, addr string) (net.Conn, error) {
			return dialer.Dial(network, addr)
		}
	}

	var rt http.RoundTripper = transport
	if len(d.headers) > 0 {
		rt = &headerTransport{base: transport, headers: d.headers}
	}

	return &http.Client{
		Transport: rt,
		Timeout:   d.timeout,
	}, nil
}

// headerTransport injects fixed headers into every outgoing request.
// Per-host profiles use this to carry cookies and auth tokens without
// each call site remembering to set them.
type headerTransport struct {
	base    http.RoundTripper
	headers map[string]string
}

// RoundTrip implements http.RoundTripper.
func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	for k, v := range t.headers {
		req.Header.Set(k, v)
	}
	return t.base.RoundTrip(req)
}

// Fetch retrieves rawURL with a plain GET and extracts content from the
// body. Non-2xx target statuses are reported through Result, not as
// errors, so traversal can record the page and move on.
func (d *Direct) Fetch(ctx context.Context, rawURL string, opts Options) (*Result, error) {
	target, err := ParseTarget(rawURL)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", d.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request to %s failed: %w", target.String(), err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, d.maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("failed to read response from %s: %w", target.String(), err)
	}

	contentType := resp.Header.Get("Content-Type")
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &Result{
			Success:      false,
			RawMarkup:    string(body),
			ErrorMessage: fmt.Sprintf("http status %d %s", resp.StatusCode, http.StatusText(resp.StatusCode)),
		}, nil
	}

	if isHTMLType(contentType) {
		extraction, err := NewExtractor(target).Extract(bytes.NewReader(body))
		if err != nil {
			return &Result{
				Success:      false,
				RawMarkup:    string(body),
				ErrorMessage: fmt.Sprintf("html extraction failed: %v", err),
			}, nil
		}
		return &Result{
			Success:        true,
			Title:          extraction.Title,
			TextContent:    extraction.Text,
			RawMarkup:      string(body),
			FilteredMarkup: extraction.FilteredMarkup,
			InternalLinks:  extraction.InternalLinks,
			ExternalLinks:  extraction.ExternalLinks,
		}, nil
	}

	result := &Result{
		Success:   true,
		RawMarkup: string(body),
	}
	if isTextualType(contentType) {
		result.TextContent = string(body)
	}
	return result, nil
}

// Probe issues a HEAD request and returns the Content-Type header. When
// the server rejects HEAD, it falls back to a GET whose body is
// discarded unread.
func (d *Direct) Probe(ctx context.Context, rawURL string) (string, error) {
	target, err := ParseTarget(rawURL)
	if err != nil {
		return "", err
	}

	contentType, err := d.probeOnce(ctx, http.MethodHead, target.String())
	if err == nil && contentType != "" {
		return contentType, nil
	}

	return d.probeOnce(ctx, http.MethodGet, target.String())
}

func (d *Direct) probeOnce(ctx context.Context, method, targetURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, method, targetURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create probe request: %w", err)
	}
	req.Header.Set("User-Agent", d.userAgent)

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("probe of %s failed: %w", targetURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("%w: status %d from %s", ErrProbeFailed, resp.StatusCode, targetURL)
	}
	return resp.Header.Get("Content-Type"), nil
}

// isHTMLType reports whether the Content-Type names an HTML document.
func isHTMLType(contentType string) bool {
	ct := strings.ToLower(contentType)
	return strings.Contains(ct, "text/html") || strings.Contains(ct, "application/xhtml")
}

// isTextualType reports whether the body is readable text worth exposing
// as extracted content.
func isTextualType(contentType string) bool {
	ct := strings.ToLower(contentType)
	if strings.HasPrefix(ct, "text/") {
		return true
	}
	for _, marker := range []string{"json", "xml", "javascript", "yaml"} {
		if strings.Contains(ct, marker) {
			return true
		}
	}
	return false
}
