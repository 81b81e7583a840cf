package model

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// PageResult holds the outcome of fetching a single page during a traversal.
// Both successful and failed fetches produce a PageResult; a failed fetch has
// Err set and empty content.
//
// Design decision: We record failures as results rather than aborting the
// traversal because:
// 1. A single broken link should not discard pages already collected
// 2. The final report needs to show which URLs failed and why
// 3. Downstream consumers can filter with Failed() when they only want content
type PageResult struct {
	// URL is the normalized URL that was fetched.
	URL string `json:"url"`

	// Depth is the distance from the start URL. The start URL is depth 0.
	Depth int `json:"depth"`

	// Parent is the URL of the page that linked to this one.
	// Empty for the start URL.
	Parent string `json:"parent,omitempty"`

	// Title is the page title when the fetch backend extracted one.
	Title string `json:"title,omitempty"`

	// Content is the extracted page content.
	// Limited to MaxContentSize bytes to prevent memory issues.
	Content string `json:"content,omitempty"`

	// ContentHash is the SHA-256 hash of Content.
	// Used for deduplication and change detection between runs.
	ContentHash string `json:"content_hash,omitempty"`

	// InternalLinks contains same-host links discovered on the page.
	// These are candidates for further traversal.
	InternalLinks []string `json:"internal_links,omitempty"`

	// ExternalLinks contains links pointing to other hosts.
	// Recorded for reporting but never enqueued.
	ExternalLinks []string `json:"external_links,omitempty"`

	// Err is the fetch error message for failed pages.
	// Empty for successful fetches.
	Err string `json:"error,omitempty"`

	// FetchedAt is when the fetch completed.
	FetchedAt time.Time `json:"fetched_at"`
}

// MaxContentSize is the maximum size of extracted page content in bytes.
// We limit this to prevent memory issues with very large pages.
const MaxContentSize = 512 * 1024 // 512 KB

// Failed returns true if the fetch for this page failed.
func (p *PageResult) Failed() bool {
	return p.Err != ""
}

// ComputeHash calculates and sets the SHA-256 hash of the page content.
// This should be called after setting the Content field.
func (p *PageResult) ComputeHash() {
	if p.Content == "" {
		p.ContentHash = ""
		return
	}

	hash := sha256.Sum256([]byte(p.Content))
	p.ContentHash = hex.EncodeToString(hash[:])
}

// TruncateContent ensures the content doesn't exceed MaxContentSize.
// Call this after setting Content to enforce the size limit.
func (p *PageResult) TruncateContent() {
	if len(p.Content) > MaxContentSize {
		p.Content = p.Content[:MaxContentSize]
	}
}
