package fetch

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/chromedp"
)

const (
	// defaultSettleDelay is how long to wait after the body is ready so
	// late JavaScript can finish populating the page.
	defaultSettleDelay = 2 * time.Second
)

// Browser fetches pages by driving a local headless Chrome instance.
// One Chrome process is shared across fetches; each fetch runs in its
// own tab so page state does not leak between requests.
type Browser struct {
	allocCtx      context.Context
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc
	probe         *Direct
	timeout       time.Duration
	settleDelay   time.Duration
	userAgent     string

	mu     sync.Mutex
	closed bool
}

// BrowserOption configures a Browser.
type BrowserOption func(*Browser)

// WithBrowserTimeout overrides the default per-page render timeout.
func WithBrowserTimeout(timeout time.Duration) BrowserOption {
	return func(b *Browser) {
		b.timeout = timeout
	}
}

// WithSettleDelay overrides how long to wait after body readiness before
// extracting content.
func WithSettleDelay(delay time.Duration) BrowserOption {
	return func(b *Browser) {
		b.settleDelay = delay
	}
}

// WithBrowserUserAgent overrides the User-Agent Chrome presents.
func WithBrowserUserAgent(ua string) BrowserOption {
	return func(b *Browser) {
		b.userAgent = ua
	}
}

// NewBrowser starts a headless Chrome allocator. Chrome itself is only
// launched on the first fetch. Callers must Close the browser to release
// the process.
func NewBrowser(opts ...BrowserOption) (*Browser, error) {
	b := &Browser{
		timeout:     defaultTimeout,
		settleDelay: defaultSettleDelay,
		userAgent:   defaultUserAgent,
	}
	for _, opt := range opts {
		opt(b)
	}

	execOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.DisableGPU,
		chromedp.NoSandbox,
		chromedp.Headless,
		chromedp.UserAgent(b.userAgent),
	)
	b.allocCtx, b.allocCancel = chromedp.NewExecAllocator(context.Background(), execOpts...)
	b.browserCtx, b.browserCancel = chromedp.NewContext(b.allocCtx)

	// Content-type probes don't need a browser; a plain HEAD is cheaper
	// and avoids spinning up a tab.
	probe, err := NewDirect(WithDirectUserAgent(b.userAgent))
	if err != nil {
		b.browserCancel()
		b.allocCancel()
		return nil, err
	}
	b.probe = probe

	return b, nil
}

// Fetch renders rawURL in a fresh tab and extracts content from the
// rendered DOM. Render timeouts are page-level failures reported through
// Result; caller context cancellation is returned as an error.
func (b *Browser) Fetch(ctx context.Context, rawURL string, opts Options) (*Result, error) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil, ErrBrowserClosed
	}
	b.mu.Unlock()

	target, err := ParseTarget(rawURL)
	if err != nil {
		return nil, err
	}

	timeout := b.timeout
	if opts.Render.Timeout > 0 {
		timeout = opts.Render.Timeout
	}
	settle := b.settleDelay
	if opts.Render.WaitUntil == "networkidle" {
		// chromedp has no first-class network-idle wait in the action
		// API; doubling the settle delay approximates it well enough
		// for content extraction.
		settle = 2 * b.settleDelay
	}

	tabCtx, tabCancel := chromedp.NewContext(b.browserCtx)
	defer tabCancel()
	tabCtx, timeoutCancel := context.WithTimeout(tabCtx, timeout)
	defer timeoutCancel()

	// Propagate caller cancellation into the tab. chromedp contexts
	// descend from the browser context, not from the caller's.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			tabCancel()
		case <-done:
		}
	}()

	err = chromedp.Run(tabCtx,
		chromedp.Navigate(target.String()),
		chromedp.WaitReady("body"),
		chromedp.Sleep(settle),
	)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return &Result{
			Success:      false,
			ErrorMessage: fmt.Sprintf("render failed: %v", err),
		}, nil
	}

	var title string
	if err := chromedp.Run(tabCtx, chromedp.Title(&title)); err != nil {
		title = ""
	}

	var rendered string
	if err := chromedp.Run(tabCtx, chromedp.OuterHTML("html", &rendered)); err != nil {
		return &Result{
			Success:      false,
			ErrorMessage: fmt.Sprintf("failed to capture rendered markup: %v", err),
		}, nil
	}

	extraction, err := NewExtractor(target).Extract(strings.NewReader(rendered))
	if err != nil {
		return &Result{
			Success:      false,
			RawMarkup:    rendered,
			ErrorMessage: fmt.Sprintf("html extraction failed: %v", err),
		}, nil
	}

	result := &Result{
		Success:        true,
		Title:          title,
		TextContent:    extraction.Text,
		RawMarkup:      rendered,
		FilteredMarkup: extraction.FilteredMarkup,
		InternalLinks:  extraction.InternalLinks,
		ExternalLinks:  extraction.ExternalLinks,
	}
	if result.Title == "" {
		result.Title = extraction.Title
	}
	return result, nil
}

// Probe delegates to a plain HTTP HEAD; content types don't require
// rendering.
func (b *Browser) Probe(ctx context.Context, rawURL string) (string, error) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return "", ErrBrowserClosed
	}
	b.mu.Unlock()

	return b.probe.Probe(ctx, rawURL)
}

// Close shuts down the Chrome process. It is safe to call more than
// once.
func (b *Browser) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	b.browserCancel()
	b.allocCancel()
	return nil
}
