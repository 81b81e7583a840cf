package model

import "time"

// DispatchReport is the result of a content-type aware smart crawl.
// Exactly one of the strategy sections is populated: Sitemap for sitemap
// URLs, Content for everything else.
type DispatchReport struct {
	// URL is the validated URL that was crawled.
	URL string `json:"url"`

	// Label is the content classification that selected the strategy.
	Label Label `json:"label"`

	// ProbedType is the raw content type reported by the probe.
	// Empty when the probe failed.
	ProbedType string `json:"probed_type,omitempty"`

	// Degraded is true when the probe failed and the label fell back
	// to html. The crawl still proceeds with the generic strategy.
	Degraded bool `json:"degraded,omitempty"`

	// Title is the page title, when the fetch produced one.
	Title string `json:"title,omitempty"`

	// Content is the extracted content for non-sitemap strategies.
	// Empty when extraction produced nothing or the fetch failed.
	Content string `json:"content,omitempty"`

	// Sitemap holds the parsed URL set for the sitemap strategy.
	Sitemap *SitemapSummary `json:"sitemap,omitempty"`

	// Err is the fetch error message when the strategy's fetch failed.
	// Strategy-level failures are reported, not raised.
	Err string `json:"error,omitempty"`

	// FetchedAt is when the dispatch completed.
	FetchedAt time.Time `json:"fetched_at"`
}

// SitemapSummary holds the URL set parsed from a sitemap, plus the results
// of following a bounded number of those URLs when requested.
type SitemapSummary struct {
	// URLs is the deduplicated, sanitized URL set in document order.
	URLs []string `json:"urls"`

	// TotalURLs is len(URLs). Kept explicit so truncated displays can
	// still show the full count.
	TotalURLs int `json:"total_urls"`

	// IsIndex is true when the document was a sitemap index rather than
	// a URL set.
	IsIndex bool `json:"is_index,omitempty"`

	// Followed holds per-URL results when link following was requested.
	Followed []FollowedLink `json:"followed,omitempty"`
}

// FollowedLink is the outcome of fetching a single sitemap URL.
type FollowedLink struct {
	// URL is the sitemap entry that was fetched.
	URL string `json:"url"`

	// Title is the fetched page title, when available.
	Title string `json:"title,omitempty"`

	// Err is the fetch error message for failed follows.
	Err string `json:"error,omitempty"`
}

// OK returns true if the follow fetch succeeded.
func (f *FollowedLink) OK() bool {
	return f.Err == ""
}

// FollowStats returns the number of successful and failed follows.
func (s *SitemapSummary) FollowStats() (succeeded, failed int) {
	for i := range s.Followed {
		if s.Followed[i].OK() {
			succeeded++
		} else {
			failed++
		}
	}
	return succeeded, failed
}
