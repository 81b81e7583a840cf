package model

import "time"

// CrawlTarget is a URL queued for traversal together with its position in
// the crawl tree. The traversal engine works through a queue of these.
type CrawlTarget struct {
	// URL is the normalized URL to fetch.
	URL string `json:"url"`

	// Depth is the distance from the start URL.
	Depth int `json:"depth"`

	// Parent is the URL of the page that linked here.
	// Empty for the start URL.
	Parent string `json:"parent,omitempty"`
}

// TraversalResult is the aggregate outcome of a recursive crawl.
//
// Design decision: PagesCrawled counts only successful fetches while Pages
// holds every attempted URL (including failures) because:
// 1. The summary line "Pages crawled: N" must reflect real content
// 2. Operators still need to see which URLs failed and why
// 3. A zero count is the signal that the whole run failed
type TraversalResult struct {
	// StartURL is the URL the traversal began from.
	StartURL string `json:"start_url"`

	// PagesCrawled is the number of pages fetched successfully.
	PagesCrawled int `json:"pages_crawled"`

	// MaxDepthReached is the deepest level at which a page was
	// successfully fetched. Zero when only the start URL succeeded.
	MaxDepthReached int `json:"max_depth_reached"`

	// Pages contains the per-URL results in the order they were attempted.
	Pages []*PageResult `json:"pages,omitempty"`

	// StartedAt is when the traversal began.
	StartedAt time.Time `json:"started_at"`

	// Elapsed is the total wall-clock duration of the traversal.
	Elapsed time.Duration `json:"elapsed_ns"`
}

// Failed returns true if no pages could be crawled at all.
// This happens when the initial fetch fails.
func (r *TraversalResult) Failed() bool {
	return r.PagesCrawled == 0
}

// FailedPages returns the number of attempted pages whose fetch failed.
func (r *TraversalResult) FailedPages() int {
	count := 0
	for _, p := range r.Pages {
		if p.Failed() {
			count++
		}
	}
	return count
}
