package dispatch

import (
	"context"
	"log/slog"
	"time"

	"github.com/nao1215/spindle/internal/fetch"
	"github.com/nao1215/spindle/internal/model"
)

const (
	// defaultSmartDepth is the render depth forwarded to the gateway
	// for smart fetches. Two levels picks up content behind one
	// client-side redirect without letting the gateway wander.
	defaultSmartDepth = 2

	// maxFollowLinks caps how many sitemap entries are fetched when
	// link following is on. Ten is enough to sample a site; full
	// coverage is the traversal engine's job.
	maxFollowLinks = 10
)

// strategy handles one content label. Fetch problems are recorded on
// the report, never returned, so a broken page still produces a report.
type strategy func(ctx context.Context, req Request, report *model.DispatchReport)

// Dispatcher probes a URL's content type and routes it to the matching
// strategy.
type Dispatcher struct {
	fetcher    fetch.Fetcher
	logger     *slog.Logger
	smartDepth int
	strategies map[model.Label]strategy
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithDispatcherLogger sets the logger for dispatch decisions.
func WithDispatcherLogger(logger *slog.Logger) DispatcherOption {
	return func(d *Dispatcher) {
		d.logger = logger
	}
}

// WithSmartDepth overrides the render depth forwarded to the gateway.
func WithSmartDepth(depth int) DispatcherOption {
	return func(d *Dispatcher) {
		if depth > 0 {
			d.smartDepth = depth
		}
	}
}

// NewDispatcher creates a dispatcher on top of fetcher.
func NewDispatcher(fetcher fetch.Fetcher, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		fetcher:    fetcher,
		logger:     slog.Default(),
		smartDepth: defaultSmartDepth,
	}
	for _, opt := range opts {
		opt(d)
	}

	// Feeds, JSON, and plain text share the generic strategy: fetch
	// once and keep the best content the result carries. Only sitemaps
	// need different handling.
	d.strategies = map[model.Label]strategy{
		model.LabelHTML:    d.runGeneric,
		model.LabelFeed:    d.runGeneric,
		model.LabelJSON:    d.runGeneric,
		model.LabelText:    d.runGeneric,
		model.LabelSitemap: d.runSitemap,
	}
	return d
}

// Request describes one smart fetch.
type Request struct {
	// URL is the target to probe and fetch.
	URL string

	// SessionID routes the fetches through a gateway session.
	SessionID string

	// CacheMode is forwarded to the fetcher.
	CacheMode string

	// WaitUntil, when set, overrides the fetcher's render wait condition.
	WaitUntil string

	// RenderTimeout, when set, overrides the fetcher's render timeout.
	RenderTimeout time.Duration

	// FollowLinks, for sitemaps, fetches a sample of the listed URLs.
	// Other labels ignore it.
	FollowLinks bool
}

// Run probes, classifies, and executes the matching strategy.
//
// A failed probe is not fatal: the target degrades to html, which is
// the right treatment for almost anything a server refuses to describe.
// Only an unusable URL is an error.
func (d *Dispatcher) Run(ctx context.Context, req Request) (*model.DispatchReport, error) {
	target, err := fetch.ParseTarget(req.URL)
	if err != nil {
		return nil, err
	}

	report := &model.DispatchReport{
		URL:       target.String(),
		FetchedAt: time.Now(),
	}

	probedType, err := d.fetcher.Probe(ctx, target.String())
	if err != nil {
		report.Degraded = true
		d.logger.Warn("content-type probe failed, defaulting to html", "url", target.String(), "error", err)
	}
	report.ProbedType = probedType
	report.Label = Classify(probedType, target.String())

	d.logger.Info("dispatching by content type",
		"url", target.String(),
		"probed_type", probedType,
		"label", report.Label.String(),
		"degraded", report.Degraded)

	d.strategies[report.Label](ctx, req, report)
	return report, nil
}

// fetchOptions builds the per-request fetch options shared by all
// strategies.
func (d *Dispatcher) fetchOptions(req Request) fetch.Options {
	return fetch.Options{
		SessionID: req.SessionID,
		CacheMode: req.CacheMode,
		Render: fetch.RenderOptions{
			WaitUntil: req.WaitUntil,
			Timeout:   req.RenderTimeout,
			MaxDepth:  d.smartDepth,
		},
	}
}

// runGeneric is the strategy for html, feed, json, and text targets:
// one fetch, best available content.
func (d *Dispatcher) runGeneric(ctx context.Context, req Request, report *model.DispatchReport) {
	result, err := d.fetcher.Fetch(ctx, report.URL, d.fetchOptions(req))
	if err != nil {
		report.Err = err.Error()
		return
	}
	if !result.Success {
		msg := result.ErrorMessage
		if msg == "" {
			msg = "fetch failed"
		}
		report.Err = msg
		return
	}

	report.Title = result.Title
	report.Content = result.Content()
}
