package traverse

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"time"

	"github.com/nao1215/spindle/internal/fetch"
	"github.com/nao1215/spindle/internal/model"
)

// defaultMaxPages bounds a run when the caller gives no budget. This
// prevents runaway traversal on large sites.
const defaultMaxPages = 50

// Toucher marks a session as used. The session registry satisfies this;
// the engine only needs the one method.
type Toucher interface {
	Touch(ctx context.Context, id string) (bool, error)
}

// Engine crawls a site breadth-first through a Fetcher.
//
// Design decision: We require an external Fetcher rather than building
// HTTP access in because:
//  1. Backend selection (gateway, direct, browser) is handled by the
//     fetch package
//  2. Tests substitute a scripted fetcher and count exact fetch calls
//  3. The engine stays a pure queue-and-filter algorithm
type Engine struct {
	// fetcher retrieves the pages.
	fetcher fetch.Fetcher

	// toucher, when set, marks the request's session as used once per
	// run.
	toucher Toucher

	// logger reports per-page progress and failures.
	logger *slog.Logger

	// delay is the politeness pause between consecutive fetches.
	delay time.Duration
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithEngineLogger sets the logger for traversal progress.
func WithEngineLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithDelay sets a politeness pause between consecutive fetches. Zero
// means no pause.
func WithDelay(d time.Duration) EngineOption {
	return func(e *Engine) {
		e.delay = d
	}
}

// WithSessionToucher sets the registry that records session use.
func WithSessionToucher(t Toucher) EngineOption {
	return func(e *Engine) {
		e.toucher = t
	}
}

// NewEngine creates a traversal engine on top of fetcher.
func NewEngine(fetcher fetch.Fetcher, opts ...EngineOption) *Engine {
	e := &Engine{
		fetcher: fetcher,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Request describes one traversal run.
type Request struct {
	// StartURL is the page traversal begins from. It is always fetched,
	// regardless of the filter patterns.
	StartURL string

	// MaxDepth is how many link levels to follow. Zero fetches only the
	// start page. Negative is an error.
	MaxDepth int

	// MaxPages caps the total number of pages fetched, the start page
	// included. Zero or negative uses the default budget.
	MaxPages int

	// IncludePattern, when set, is a regular expression a discovered
	// URL must match to be followed.
	IncludePattern string

	// ExcludePattern, when set, is a regular expression that drops any
	// matching discovered URL. Exclusion wins over inclusion.
	ExcludePattern string

	// SessionID routes all fetches through a gateway session and marks
	// it used.
	SessionID string

	// CacheMode is forwarded to the fetcher for every page.
	CacheMode string

	// Render carries per-fetch render settings (wait condition, timeout)
	// forwarded to the fetcher for every page.
	Render fetch.RenderOptions
}

// Run traverses the site and returns everything it fetched.
//
// A start page that fails to fetch is not an error: the result comes
// back with zero pages crawled and the failure recorded, so callers
// report it like any other empty run. Errors are reserved for requests
// that cannot be executed at all.
func (e *Engine) Run(ctx context.Context, req Request) (*model.TraversalResult, error) {
	start, err := fetch.ParseTarget(req.StartURL)
	if err != nil {
		return nil, err
	}
	if req.MaxDepth < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidDepth, req.MaxDepth)
	}

	include, exclude, err := compilePatterns(req.IncludePattern, req.ExcludePattern)
	if err != nil {
		return nil, err
	}

	maxPages := req.MaxPages
	if maxPages <= 0 {
		maxPages = defaultMaxPages
	}

	e.touchSession(ctx, req.SessionID)

	opts := fetch.Options{
		SessionID: req.SessionID,
		CacheMode: req.CacheMode,
		Render:    req.Render,
	}

	startedAt := time.Now()
	result := &model.TraversalResult{
		StartURL:  start.String(),
		StartedAt: startedAt,
	}

	// seen covers both fetched and queued URLs so the page budget gates
	// enqueueing: once len(seen) hits maxPages, nothing new enters the
	// queue and the run performs at most maxPages fetches.
	seen := map[string]bool{fetch.NormalizeURL(start.String()): true}
	queue := []model.CrawlTarget{{URL: start.String(), Depth: 0}}

	for len(queue) > 0 {
		select {
		case <-ctx.Done():
			result.Elapsed = time.Since(startedAt)
			return result, ctx.Err()
		default:
		}

		target := queue[0]
		queue = queue[1:]

		page := e.fetchPage(ctx, target, opts)
		result.Pages = append(result.Pages, page)
		if page.Failed() {
			continue
		}
		result.PagesCrawled++
		if page.Depth > result.MaxDepthReached {
			result.MaxDepthReached = page.Depth
		}

		if target.Depth < req.MaxDepth {
			queue = e.enqueueLinks(queue, seen, page, target, include, exclude, maxPages)
		}

		if e.delay > 0 && len(queue) > 0 {
			select {
			case <-ctx.Done():
				result.Elapsed = time.Since(startedAt)
				return result, ctx.Err()
			case <-time.After(e.delay):
			}
		}
	}

	result.Elapsed = time.Since(startedAt)
	e.logger.Info("traversal finished",
		"start_url", result.StartURL,
		"pages_crawled", result.PagesCrawled,
		"max_depth_reached", result.MaxDepthReached,
		"elapsed", result.Elapsed)
	return result, nil
}

// fetchPage fetches one page and converts the outcome into a
// PageResult. Both transport errors and page-level failures land in the
// page's Err field; the traversal continues either way.
func (e *Engine) fetchPage(ctx context.Context, target model.CrawlTarget, opts fetch.Options) *model.PageResult {
	page := &model.PageResult{
		URL:       target.URL,
		Depth:     target.Depth,
		Parent:    target.Parent,
		FetchedAt: time.Now(),
	}

	result, err := e.fetcher.Fetch(ctx, target.URL, opts)
	if err != nil {
		page.Err = err.Error()
		e.logger.Warn("page fetch failed", "url", target.URL, "depth", target.Depth, "error", err)
		return page
	}
	if !result.Success {
		msg := result.ErrorMessage
		if msg == "" {
			msg = "fetch failed"
		}
		page.Err = msg
		e.logger.Warn("page fetch failed", "url", target.URL, "depth", target.Depth, "error", msg)
		return page
	}

	page.Title = result.Title
	page.Content = result.Content()
	page.InternalLinks = result.InternalLinks
	page.ExternalLinks = result.ExternalLinks
	page.ComputeHash()
	page.TruncateContent()

	e.logger.Debug("page crawled", "url", target.URL, "depth", target.Depth, "links", len(page.InternalLinks))
	return page
}

// enqueueLinks adds the page's internal links to the queue, applying
// deduplication, the filter patterns, and the page budget. Only
// http(s) links survive; anything else is dropped without comment.
func (e *Engine) enqueueLinks(queue []model.CrawlTarget, seen map[string]bool, page *model.PageResult, target model.CrawlTarget, include, exclude *regexp.Regexp, maxPages int) []model.CrawlTarget {
	for _, link := range page.InternalLinks {
		if _, err := fetch.ParseTarget(link); err != nil {
			continue
		}
		norm := fetch.NormalizeURL(link)
		if seen[norm] {
			continue
		}
		if !allowed(link, include, exclude) {
			e.logger.Debug("link filtered", "url", link)
			continue
		}
		if len(seen) >= maxPages {
			e.logger.Debug("page budget reached", "budget", maxPages)
			break
		}
		seen[norm] = true
		queue = append(queue, model.CrawlTarget{
			URL:    link,
			Depth:  target.Depth + 1,
			Parent: target.URL,
		})
	}
	return queue
}

// touchSession marks the session as used. Touch problems are logged and
// ignored; a stale last-used time must not fail a crawl.
func (e *Engine) touchSession(ctx context.Context, sessionID string) {
	if sessionID == "" || e.toucher == nil {
		return
	}
	found, err := e.toucher.Touch(ctx, sessionID)
	if err != nil {
		e.logger.Warn("failed to touch session", "session_id", sessionID, "error", err)
		return
	}
	if !found {
		e.logger.Debug("session not found on touch", "session_id", sessionID)
	}
}

// compilePatterns compiles the include and exclude filters up front so
// a bad pattern fails before any network traffic.
func compilePatterns(includePattern, excludePattern string) (include, exclude *regexp.Regexp, err error) {
	if includePattern != "" {
		include, err = regexp.Compile(includePattern)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: include %q: %v", ErrInvalidPattern, includePattern, err)
		}
	}
	if excludePattern != "" {
		exclude, err = regexp.Compile(excludePattern)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: exclude %q: %v", ErrInvalidPattern, excludePattern, err)
		}
	}
	return include, exclude, nil
}

// allowed applies the filter patterns to a discovered URL. Exclusion
// wins over inclusion.
func allowed(rawURL string, include, exclude *regexp.Regexp) bool {
	if exclude != nil && exclude.MatchString(rawURL) {
		return false
	}
	if include != nil && !include.MatchString(rawURL) {
		return false
	}
	return true
}
