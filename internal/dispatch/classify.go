package dispatch

import (
	"net/url"
	"path"
	"strings"

	"github.com/nao1215/spindle/internal/model"
)

// Classify maps a probed content type and the target URL to a handling
// label.
//
// Feed markers are checked before the xml check because feed types like
// "application/rss+xml" would otherwise classify as sitemaps. When the
// content type carries no format signal (missing, or a generic byte
// stream), a sitemap-looking path still routes to the sitemap strategy;
// everything else degrades to html.
func Classify(contentType, rawURL string) model.Label {
	ct := strings.ToLower(strings.TrimSpace(contentType))

	for _, marker := range []string{"rss", "atom", "feed"} {
		if strings.Contains(ct, marker) {
			return model.LabelFeed
		}
	}
	if strings.Contains(ct, "xml") && !strings.Contains(ct, "xhtml") {
		return model.LabelSitemap
	}
	if strings.Contains(ct, "json") {
		return model.LabelJSON
	}
	if strings.HasPrefix(ct, "text/plain") {
		return model.LabelText
	}
	if strings.Contains(ct, "html") {
		return model.LabelHTML
	}

	if inconclusiveType(ct) && pathHintsSitemap(rawURL) {
		return model.LabelSitemap
	}
	return model.LabelHTML
}

// inconclusiveType reports whether a probed content type commits to
// nothing about the payload format. A generic byte-stream type carries
// as little signal as a missing header, so the sitemap path heuristic
// still applies to it.
func inconclusiveType(ct string) bool {
	return ct == "" || strings.Contains(ct, "octet-stream")
}

// pathHintsSitemap reports whether the URL path alone suggests a
// sitemap, for targets whose probe gave no usable content type. The
// basename match covers sitemap.xml, sitemap_index.xml, prefixed forms
// like sitemap-products.xml, numbered shards like sitemap1.xml, and a
// bare trailing sitemap segment.
func pathHintsSitemap(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	base := strings.ToLower(path.Base(u.Path))
	if base == "sitemap" {
		return true
	}
	return strings.HasPrefix(base, "sitemap") && strings.HasSuffix(base, ".xml")
}
