package fetch

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

func TestNewClient(t *testing.T) {
	t.Parallel()

	t.Run("empty endpoint is rejected", func(t *testing.T) {
		t.Parallel()

		if _, err := NewClient(""); !errors.Is(err, ErrMissingEndpoint) {
			t.Errorf("expected ErrMissingEndpoint, got %v", err)
		}
		if _, err := NewClient("   "); !errors.Is(err, ErrMissingEndpoint) {
			t.Errorf("expected ErrMissingEndpoint for whitespace, got %v", err)
		}
	})

	t.Run("trailing slash is trimmed", func(t *testing.T) {
		t.Parallel()

		c, err := NewClient("https://gw.example.com/")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if c.endpoint != "https://gw.example.com" {
			t.Errorf("expected trimmed endpoint, got %q", c.endpoint)
		}
	})
}

func TestClientFetch(t *testing.T) {
	t.Parallel()

	t.Run("successful fetch maps all fields", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				t.Errorf("expected POST, got %s", r.Method)
			}
			if r.URL.Path != "/fetch" {
				t.Errorf("expected path /fetch, got %s", r.URL.Path)
			}
			if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
				t.Errorf("expected bearer auth, got %q", got)
			}
			if got := r.Header.Get("Content-Type"); got != "application/json" {
				t.Errorf("expected json content type, got %q", got)
			}

			var req fetchRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				t.Errorf("failed to decode request: %v", err)
			}
			if req.URL != "https://target.example.com/page" {
				t.Errorf("unexpected target url %q", req.URL)
			}
			if req.SessionID != "session_123" {
				t.Errorf("unexpected session id %q", req.SessionID)
			}
			if req.CacheMode != "bypass" {
				t.Errorf("unexpected cache mode %q", req.CacheMode)
			}
			if req.Render == nil || req.Render.MaxDepth != 2 {
				t.Errorf("expected render options with max depth 2, got %+v", req.Render)
			}

			json.NewEncoder(w).Encode(fetchResponse{
				Success:        true,
				Title:          "Target Page",
				TextContent:    "hello",
				RawMarkup:      "<html>hello</html>",
				FilteredMarkup: "<html>hello</html>",
				InternalLinks:  []string{"https://target.example.com/a"},
				ExternalLinks:  []string{"https://other.org/b"},
			})
		}))
		defer server.Close()

		c, err := NewClient(server.URL, WithAPIKey("test-key"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		result, err := c.Fetch(context.Background(), "https://target.example.com/page", Options{
			SessionID: "session_123",
			CacheMode: "bypass",
			Render:    RenderOptions{MaxDepth: 2},
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !result.Success {
			t.Error("expected success")
		}
		if result.Title != "Target Page" {
			t.Errorf("expected title %q, got %q", "Target Page", result.Title)
		}
		if result.TextContent != "hello" {
			t.Errorf("expected text content %q, got %q", "hello", result.TextContent)
		}
		if len(result.InternalLinks) != 1 || result.InternalLinks[0] != "https://target.example.com/a" {
			t.Errorf("unexpected internal links: %v", result.InternalLinks)
		}
		if len(result.ExternalLinks) != 1 || result.ExternalLinks[0] != "https://other.org/b" {
			t.Errorf("unexpected external links: %v", result.ExternalLinks)
		}
	})

	t.Run("service-level failure is not a go error", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(fetchResponse{
				Success: false,
				Error:   "render timeout after 60s",
			})
		}))
		defer server.Close()

		c, err := NewClient(server.URL)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		result, err := c.Fetch(context.Background(), "https://target.example.com/slow", Options{})
		if err != nil {
			t.Fatalf("service failure should not be a go error, got %v", err)
		}
		if result.Success {
			t.Error("expected failure result")
		}
		if result.ErrorMessage != "render timeout after 60s" {
			t.Errorf("unexpected error message %q", result.ErrorMessage)
		}
	})

	t.Run("non-2xx gateway status is an error", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusBadGateway)
		}))
		defer server.Close()

		c, err := NewClient(server.URL)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if _, err := c.Fetch(context.Background(), "https://target.example.com/x", Options{}); !errors.Is(err, ErrGatewayStatus) {
			t.Errorf("expected ErrGatewayStatus, got %v", err)
		}
	})

	t.Run("invalid url is rejected before any request", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int64
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
		}))
		defer server.Close()

		c, err := NewClient(server.URL)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if _, err := c.Fetch(context.Background(), "ftp://bad.example.com", Options{}); !errors.Is(err, ErrInvalidURL) {
			t.Errorf("expected ErrInvalidURL, got %v", err)
		}
		if calls.Load() != 0 {
			t.Errorf("expected no gateway calls, got %d", calls.Load())
		}
	})

	t.Run("zero render options are omitted from the wire", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var raw map[string]json.RawMessage
			if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
				t.Errorf("failed to decode request: %v", err)
			}
			if _, ok := raw["render"]; ok {
				t.Error("expected render to be omitted for zero options")
			}
			json.NewEncoder(w).Encode(fetchResponse{Success: true})
		}))
		defer server.Close()

		c, err := NewClient(server.URL)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, err := c.Fetch(context.Background(), "https://target.example.com/", Options{}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})
}

func TestClientProbe(t *testing.T) {
	t.Parallel()

	t.Run("returns content type from gateway", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/probe" {
				t.Errorf("expected path /probe, got %s", r.URL.Path)
			}
			var req probeRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				t.Errorf("failed to decode request: %v", err)
			}
			if req.URL != "https://target.example.com/sitemap.xml" {
				t.Errorf("unexpected probe url %q", req.URL)
			}
			json.NewEncoder(w).Encode(probeResponse{ContentType: "application/xml"})
		}))
		defer server.Close()

		c, err := NewClient(server.URL)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		contentType, err := c.Probe(context.Background(), "https://target.example.com/sitemap.xml")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if contentType != "application/xml" {
			t.Errorf("expected %q, got %q", "application/xml", contentType)
		}
	})

	t.Run("gateway error surfaces", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "down", http.StatusServiceUnavailable)
		}))
		defer server.Close()

		c, err := NewClient(server.URL)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if _, err := c.Probe(context.Background(), "https://target.example.com/x"); !errors.Is(err, ErrGatewayStatus) {
			t.Errorf("expected ErrGatewayStatus, got %v", err)
		}
	})
}
