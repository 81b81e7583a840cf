package model

// Label classifies the content behind a URL. The dispatcher probes the URL
// and assigns exactly one label, which selects the crawl strategy.
type Label string

// Content classification labels.
const (
	// LabelHTML represents regular web pages. This is also the degraded
	// default when the probe fails or reports an unknown content type.
	LabelHTML Label = "html"
	// LabelSitemap represents XML sitemaps and sitemap indexes.
	LabelSitemap Label = "sitemap"
	// LabelFeed represents RSS and Atom feeds.
	LabelFeed Label = "feed"
	// LabelJSON represents JSON documents and API responses.
	LabelJSON Label = "json"
	// LabelText represents plain text documents.
	LabelText Label = "text"
)

// String returns the string representation of the Label.
func (l Label) String() string {
	if l == "" {
		return string(LabelHTML)
	}
	return string(l)
}

// IsValid returns true if this is a known label.
func (l Label) IsValid() bool {
	switch l {
	case LabelHTML, LabelSitemap, LabelFeed, LabelJSON, LabelText:
		return true
	default:
		return false
	}
}

// ParseLabel converts a string to a Label.
// Unknown values fall back to LabelHTML, mirroring the dispatcher's
// degraded default.
func ParseLabel(s string) Label {
	switch s {
	case "html":
		return LabelHTML
	case "sitemap":
		return LabelSitemap
	case "feed":
		return LabelFeed
	case "json":
		return LabelJSON
	case "text":
		return LabelText
	default:
		return LabelHTML
	}
}
