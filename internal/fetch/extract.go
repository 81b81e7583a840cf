package fetch

import (
	"bytes"
	"fmt"
	"io"
	"net/url"
	"strings"

	"golang.org/x/net/html"
)

// Extraction holds the content pulled out of one HTML page.
type Extraction struct {
	// Title is the text of the first <title> element.
	Title string

	// Text is the readable body text with markup removed, one line per
	// text node.
	Text string

	// FilteredMarkup is the document re-serialized with scripts, styles,
	// and other non-content elements stripped.
	FilteredMarkup string

	// InternalLinks are absolute links on the same host as the page.
	InternalLinks []string

	// ExternalLinks are absolute links to other hosts.
	ExternalLinks []string
}

// strippedElements are removed from the document before text extraction
// and re-serialization. They carry no readable content.
var strippedElements = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
	"iframe":   true,
	"template": true,
}

// Extractor parses one HTML page and extracts title, text, and links.
type Extractor struct {
	base *url.URL
	seen map[string]bool
}

// NewExtractor creates an extractor that resolves relative links against
// base.
func NewExtractor(base *url.URL) *Extractor {
	return &Extractor{base: base}
}

// Extract parses the HTML document from r and returns its content.
func (e *Extractor) Extract(r io.Reader) (*Extraction, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse html: %w", err)
	}

	e.seen = make(map[string]bool)
	stripNodes(doc)

	result := &Extraction{}
	var text strings.Builder
	e.walk(doc, result, &text, false)
	result.Text = strings.TrimSpace(text.String())

	var buf bytes.Buffer
	if err := html.Render(&buf, doc); err != nil {
		return nil, fmt.Errorf("failed to render filtered markup: %w", err)
	}
	result.FilteredMarkup = buf.String()

	return result, nil
}

// walk visits every node, collecting the title, link targets, and body
// text. inHead suppresses text collection inside <head> so the title is
// not duplicated into the body text.
func (e *Extractor) walk(n *html.Node, result *Extraction, text *strings.Builder, inHead bool) {
	switch n.Type {
	case html.ElementNode:
		switch n.Data {
		case "head":
			inHead = true
		case "title":
			if result.Title == "" {
				result.Title = strings.TrimSpace(textContent(n))
			}
		case "a":
			e.collectLink(n, result)
		}
	case html.TextNode:
		if !inHead {
			if t := strings.TrimSpace(n.Data); t != "" {
				if text.Len() > 0 {
					text.WriteByte('\n')
				}
				text.WriteString(t)
			}
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		e.walk(c, result, text, inHead)
	}
}

// collectLink resolves an anchor's href and files it as internal or
// external, skipping duplicates and non-navigable targets.
func (e *Extractor) collectLink(n *html.Node, result *Extraction) {
	href := getAttr(n, "href")
	resolved, ok := e.resolveURL(href)
	if !ok || e.seen[resolved] {
		return
	}
	e.seen[resolved] = true

	if e.isInternal(resolved) {
		result.InternalLinks = append(result.InternalLinks, resolved)
	} else {
		result.ExternalLinks = append(result.ExternalLinks, resolved)
	}
}

// resolveURL turns href into an absolute http(s) URL against the page
// base. It reports false for fragments, javascript:, mailto:, tel:, and
// data: targets, which are not crawlable pages.
func (e *Extractor) resolveURL(href string) (string, bool) {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") {
		return "", false
	}

	lower := strings.ToLower(href)
	for _, prefix := range []string{"javascript:", "mailto:", "tel:", "data:"} {
		if strings.HasPrefix(lower, prefix) {
			return "", false
		}
	}

	ref, err := url.Parse(href)
	if err != nil {
		return "", false
	}
	resolved := e.base.ResolveReference(ref)
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return "", false
	}
	resolved.Fragment = ""
	return resolved.String(), true
}

// isInternal reports whether the absolute URL points at the same host as
// the page. Subdomains count as external.
func (e *Extractor) isInternal(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return strings.EqualFold(u.Host, e.base.Host)
}

// stripNodes removes non-content elements and comments from the tree in
// place.
func stripNodes(n *html.Node) {
	var doomed []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.CommentNode || (c.Type == html.ElementNode && strippedElements[c.Data]) {
			doomed = append(doomed, c)
			continue
		}
		stripNodes(c)
	}
	for _, c := range doomed {
		n.RemoveChild(c)
	}
}

// textContent concatenates all text nodes under n.
func textContent(n *html.Node) string {
	var sb strings.Builder
	var collect func(*html.Node)
	collect = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			collect(c)
		}
	}
	collect(n)
	return sb.String()
}

// getAttr returns the value of the named attribute, or the empty string.
func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}
