package fetch

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Fetcher retrieves the content of a single page.
//
// Design decision: We model fetching as a small interface rather than a
// concrete client because:
// 1. The traversal engine and dispatcher must not care whether pages come
//    from the render gateway, a plain HTTP GET, or a headless browser
// 2. Tests can substitute an in-memory fake and count exact fetch calls
// 3. New backends (for example a caching decorator) slot in without
//    touching any caller
type Fetcher interface {
	// Fetch retrieves rawURL and returns the extracted content. Transport
	// failures (DNS, dial, gateway unreachable) are returned as errors.
	// Page-level failures (4xx/5xx target status, render timeout) are
	// reported through Result with Success set to false.
	Fetch(ctx context.Context, rawURL string, opts Options) (*Result, error)

	// Probe asks only for the content type of rawURL without retrieving
	// the body. The returned string is a MIME type such as "text/html",
	// possibly with parameters. An empty string means the type is unknown.
	Probe(ctx context.Context, rawURL string) (string, error)
}

// Options carries per-request settings shared by every Fetcher backend.
type Options struct {
	// SessionID names a persistent browsing session on the render gateway.
	// Empty means a one-off stateless fetch.
	SessionID string

	// CacheMode controls gateway-side caching: "enabled", "bypass", or
	// "only". Empty leaves the gateway default in place. Backends without
	// a cache ignore this field.
	CacheMode string

	// Render holds settings for backends that execute JavaScript.
	Render RenderOptions
}

// RenderOptions tunes JavaScript rendering for gateway and browser fetches.
type RenderOptions struct {
	// WaitUntil names the readiness milestone to wait for before
	// extracting content, such as "load" or "networkidle". Empty uses the
	// backend default.
	WaitUntil string

	// Timeout bounds a single render. Zero uses the backend default.
	Timeout time.Duration

	// MaxDepth is forwarded to the gateway so smart extraction can bound
	// how far it follows embedded resources. Zero uses the gateway default.
	MaxDepth int
}

// Result is the outcome of fetching a single page.
type Result struct {
	// Success reports whether the page was retrieved and rendered. When
	// false, ErrorMessage explains what went wrong.
	Success bool `json:"success"`

	// Title is the page title, if one was found.
	Title string `json:"title,omitempty"`

	// TextContent is the readable text extracted from the page.
	TextContent string `json:"text_content,omitempty"`

	// RawMarkup is the page markup exactly as retrieved.
	RawMarkup string `json:"raw_markup,omitempty"`

	// FilteredMarkup is the markup with scripts, styles, and other
	// non-content elements removed.
	FilteredMarkup string `json:"filtered_markup,omitempty"`

	// InternalLinks are absolute URLs on the same host as the page.
	InternalLinks []string `json:"internal_links,omitempty"`

	// ExternalLinks are absolute URLs pointing at other hosts.
	ExternalLinks []string `json:"external_links,omitempty"`

	// ErrorMessage describes a page-level failure. Empty on success.
	ErrorMessage string `json:"error_message,omitempty"`
}

// Content returns the best available body for the result, preferring
// extracted text, then raw markup, then filtered markup. It returns the
// empty string when the result carries no content at all.
func (r *Result) Content() string {
	if r.TextContent != "" {
		return r.TextContent
	}
	if r.RawMarkup != "" {
		return r.RawMarkup
	}
	return r.FilteredMarkup
}

// ParseTarget validates rawURL as a fetchable target and returns the
// parsed form. It wraps ErrInvalidURL for empty input, relative URLs, and
// schemes other than http and https.
func ParseTarget(rawURL string) (*url.URL, error) {
	trimmed := strings.TrimSpace(rawURL)
	if trimmed == "" {
		return nil, fmt.Errorf("%w: empty url", ErrInvalidURL)
	}

	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidURL, trimmed)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%w: unsupported scheme %q", ErrInvalidURL, u.Scheme)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("%w: missing host in %s", ErrInvalidURL, trimmed)
	}
	return u, nil
}

// NormalizeURL produces the canonical form used for deduplication during
// traversal: the fragment is dropped, the scheme and host are lowercased,
// and a trailing slash on the root path is removed.
func NormalizeURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	u.Fragment = ""
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	if u.Path == "/" {
		u.Path = ""
	}
	return u.String()
}
