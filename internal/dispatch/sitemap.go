package dispatch

import (
	"context"
	"encoding/xml"
	"strings"

	"github.com/nao1215/spindle/internal/fetch"
	"github.com/nao1215/spindle/internal/model"
)

// urlsetXML mirrors the standard sitemap urlset document.
type urlsetXML struct {
	XMLName xml.Name `xml:"urlset"`
	URLs    []struct {
		Loc string `xml:"loc"`
	} `xml:"url"`
}

// sitemapIndexXML mirrors a sitemap index, whose entries are further
// sitemaps rather than pages.
type sitemapIndexXML struct {
	XMLName  xml.Name `xml:"sitemapindex"`
	Sitemaps []struct {
		Loc string `xml:"loc"`
	} `xml:"sitemap"`
}

// runSitemap is the strategy for sitemap targets: fetch the document,
// collect every listed URL, and optionally fetch a sample of them.
func (d *Dispatcher) runSitemap(ctx context.Context, req Request, report *model.DispatchReport) {
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

	// The gateway may deliver the sitemap body as raw markup or as
	// extracted text depending on how it rendered the document; take
	// whichever is present.
	body := result.RawMarkup
	if body == "" {
		body = result.TextContent
	}

	urls, isIndex := parseSitemap(body)
	report.Title = result.Title
	report.Sitemap = &model.SitemapSummary{
		URLs:      urls,
		TotalURLs: len(urls),
		IsIndex:   isIndex,
	}

	if req.FollowLinks && len(urls) > 0 {
		report.Sitemap.Followed = d.followLinks(ctx, req, urls)
	}
}

// followLinks fetches up to maxFollowLinks of the sitemap's URLs and
// records how each one fared. Results keep sitemap order.
func (d *Dispatcher) followLinks(ctx context.Context, req Request, urls []string) []model.FollowedLink {
	sample := urls
	if len(sample) > maxFollowLinks {
		sample = sample[:maxFollowLinks]
		d.logger.Debug("sitemap follow capped", "total", len(urls), "followed", maxFollowLinks)
	}

	multi := fetch.NewMultiFetcher(d.fetcher, fetch.WithMultiLogger(d.logger))
	results := multi.FetchAll(ctx, sample, d.fetchOptions(req))

	followed := make([]model.FollowedLink, 0, len(results))
	for _, r := range results {
		link := model.FollowedLink{URL: r.URL}
		switch {
		case r.Err != nil:
			link.Err = r.Err.Error()
		case r.Result != nil && !r.Result.Success:
			msg := r.Result.ErrorMessage
			if msg == "" {
				msg = "fetch failed"
			}
			link.Err = msg
		case r.Result != nil:
			link.Title = r.Result.Title
		}
		followed = append(followed, link)
	}
	return followed
}

// parseSitemap extracts URLs from a sitemap document. It understands
// the standard urlset and sitemapindex forms; anything else is split
// into lines and checked for bare URLs, which covers plain-text
// sitemaps. Entries that are not absolute http(s) URLs are dropped and
// duplicates are collapsed, keeping document order.
func parseSitemap(body string) (urls []string, isIndex bool) {
	var urlset urlsetXML
	if err := xml.Unmarshal([]byte(body), &urlset); err == nil && len(urlset.URLs) > 0 {
		locs := make([]string, 0, len(urlset.URLs))
		for _, entry := range urlset.URLs {
			locs = append(locs, entry.Loc)
		}
		return sanitizeURLs(locs), false
	}

	var index sitemapIndexXML
	if err := xml.Unmarshal([]byte(body), &index); err == nil && len(index.Sitemaps) > 0 {
		locs := make([]string, 0, len(index.Sitemaps))
		for _, entry := range index.Sitemaps {
			locs = append(locs, entry.Loc)
		}
		return sanitizeURLs(locs), true
	}

	// Lines may be arbitrarily long; the body is bounded upstream by the
	// fetch layer's size cap. ParseTarget trims the whitespace around
	// each line, including a trailing \r.
	return sanitizeURLs(strings.Split(body, "\n")), false
}

// sanitizeURLs keeps the entries that parse as absolute http(s) URLs
// and drops duplicates, preserving first-seen order.
func sanitizeURLs(locs []string) []string {
	var urls []string
	seen := make(map[string]bool, len(locs))
	for _, loc := range locs {
		target, err := fetch.ParseTarget(loc)
		if err != nil {
			continue
		}
		u := target.String()
		if seen[u] {
			continue
		}
		seen[u] = true
		urls = append(urls, u)
	}
	return urls
}
