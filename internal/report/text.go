package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/nao1215/spindle/internal/model"
)

const (
	// sectionWidth is the width of the separator lines between report
	// sections.
	sectionWidth = 70

	// maxListedURLs caps how many discovered URLs a report lists in full.
	// Large sitemaps routinely carry thousands of entries; listing them
	// all would drown the rest of the report. The total count is always
	// shown, and a trailing marker states how many were omitted.
	maxListedURLs = 100

	// contentPreviewSize is how much page content the non-verbose report
	// shows per page.
	contentPreviewSize = 500
)

// TextWriter generates human-readable plain text reports.
// This is the default format for terminal output.
type TextWriter struct {
	baseWriter
	verbose bool
}

// TextWriterOption configures a TextWriter.
type TextWriterOption func(*TextWriter)

// WithTextVerbose controls whether page content is printed in full.
// When false, content is truncated to a short preview per page.
func WithTextVerbose(verbose bool) TextWriterOption {
	return func(w *TextWriter) {
		w.verbose = verbose
	}
}

// NewTextWriter creates a plain text report writer.
func NewTextWriter(output io.Writer, opts ...TextWriterOption) *TextWriter {
	w := &TextWriter{
		baseWriter: newBaseWriter(output),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// WriteTraversal outputs the result of a recursive crawl as plain text.
// A run in which nothing could be fetched reports "No pages could be
// crawled" instead of an empty page list.
func (w *TextWriter) WriteTraversal(result *model.TraversalResult) (int, error) {
	var sb strings.Builder

	w.writeTitle(&sb, "CRAWL REPORT")
	fmt.Fprintf(&sb, "Start URL: %s\n", result.StartURL)
	fmt.Fprintf(&sb, "Pages crawled: %d\n", result.PagesCrawled)
	fmt.Fprintf(&sb, "Max depth reached: %d\n", result.MaxDepthReached)
	if result.Elapsed > 0 {
		fmt.Fprintf(&sb, "Elapsed: %s\n", result.Elapsed.Round(time.Millisecond))
	}
	if failed := result.FailedPages(); failed > 0 {
		fmt.Fprintf(&sb, "Failed fetches: %d\n", failed)
	}
	sb.WriteString("\n")

	if result.Failed() {
		sb.WriteString("No pages could be crawled\n")
		w.writeFailures(&sb, result.Pages)
		return fmt.Fprint(w.output, sb.String())
	}

	w.writeSectionHeader(&sb, "PAGES")
	for i, page := range result.Pages {
		w.writePage(&sb, i+1, page)
	}

	return fmt.Fprint(w.output, sb.String())
}

// WriteDispatch outputs a smart-crawl report as plain text.
// The detected content type is always stated, even when the crawl
// produced no content.
func (w *TextWriter) WriteDispatch(report *model.DispatchReport) (int, error) {
	var sb strings.Builder

	w.writeTitle(&sb, "SMART CRAWL REPORT")
	fmt.Fprintf(&sb, "URL: %s\n", report.URL)
	fmt.Fprintf(&sb, "Smart crawl detected content type: %s\n", report.Label)
	if report.Degraded {
		sb.WriteString("(content-type probe failed, defaulting to html)\n")
	}
	sb.WriteString("\n")

	if report.Err != "" {
		fmt.Fprintf(&sb, "Error: %s\n", report.Err)
		return fmt.Fprint(w.output, sb.String())
	}

	if report.Sitemap != nil {
		w.writeSitemap(&sb, report.Sitemap)
		return fmt.Fprint(w.output, sb.String())
	}

	if report.Title != "" {
		fmt.Fprintf(&sb, "Title: %s\n\n", report.Title)
	}
	if report.Content == "" {
		sb.WriteString("No content extracted\n")
	} else {
		sb.WriteString(w.clipContent(report.Content))
		sb.WriteString("\n")
	}

	return fmt.Fprint(w.output, sb.String())
}

// WriteSessions outputs the session listing as plain text.
func (w *TextWriter) WriteSessions(sessions []model.SessionSummary) (int, error) {
	var sb strings.Builder

	w.writeTitle(&sb, "ACTIVE SESSIONS")
	if len(sessions) == 0 {
		sb.WriteString("No active sessions\n")
		return fmt.Fprint(w.output, sb.String())
	}

	fmt.Fprintf(&sb, "Sessions: %d\n\n", len(sessions))
	for i, s := range sessions {
		fmt.Fprintf(&sb, "[%d] %s\n", i+1, s.ID)
		if s.InitialURL != "" {
			fmt.Fprintf(&sb, "    Initial URL: %s\n", s.InitialURL)
		}
		if s.BrowserType != "" {
			fmt.Fprintf(&sb, "    Browser: %s\n", s.BrowserType)
		}
		fmt.Fprintf(&sb, "    Created: %s (%.1f minutes ago)\n",
			s.CreatedAt.Format(time.RFC3339), s.AgeMinutes)
		fmt.Fprintf(&sb, "    Last used: %s (idle %.1f minutes)\n",
			s.LastUsed.Format(time.RFC3339), s.IdleMinutes)
		sb.WriteString("\n")
	}

	return fmt.Fprint(w.output, sb.String())
}

// WritePages outputs a flat page list as plain text.
func (w *TextWriter) WritePages(pages []*model.PageResult) (int, error) {
	var sb strings.Builder

	w.writeTitle(&sb, "FETCH RESULTS")
	fmt.Fprintf(&sb, "URLs fetched: %d\n\n", len(pages))
	for i, page := range pages {
		w.writePage(&sb, i+1, page)
	}

	return fmt.Fprint(w.output, sb.String())
}

// writeTitle writes the top banner of a report.
func (w *TextWriter) writeTitle(sb *strings.Builder, title string) {
	sb.WriteString(strings.Repeat("=", sectionWidth) + "\n")
	padding := (sectionWidth - len(title)) / 2
	if padding > 0 {
		sb.WriteString(strings.Repeat(" ", padding))
	}
	sb.WriteString(title + "\n")
	sb.WriteString(strings.Repeat("=", sectionWidth) + "\n\n")
}

// writeSectionHeader writes a separator line followed by the section name.
func (w *TextWriter) writeSectionHeader(sb *strings.Builder, name string) {
	sb.WriteString(strings.Repeat("-", sectionWidth) + "\n")
	sb.WriteString(name + "\n")
	sb.WriteString(strings.Repeat("-", sectionWidth) + "\n\n")
}

// writePage writes one page entry, numbered within its section.
func (w *TextWriter) writePage(sb *strings.Builder, num int, page *model.PageResult) {
	fmt.Fprintf(sb, "[%d] %s (depth %d)\n", num, page.URL, page.Depth)
	if page.Failed() {
		fmt.Fprintf(sb, "    Error: %s\n\n", page.Err)
		return
	}
	if page.Title != "" {
		fmt.Fprintf(sb, "    Title: %s\n", page.Title)
	}
	if w.verbose {
		if len(page.InternalLinks) > 0 || len(page.ExternalLinks) > 0 {
			fmt.Fprintf(sb, "    Links: %d internal, %d external\n",
				len(page.InternalLinks), len(page.ExternalLinks))
		}
		if page.ContentHash != "" {
			fmt.Fprintf(sb, "    Content hash: %s\n", page.ContentHash)
		}
	}
	if page.Content == "" {
		sb.WriteString("    No content extracted\n\n")
		return
	}
	sb.WriteString(indent(w.clipContent(page.Content), "    "))
	sb.WriteString("\n\n")
}

// writeFailures lists the failed pages of a traversal with their errors.
func (w *TextWriter) writeFailures(sb *strings.Builder, pages []*model.PageResult) {
	for _, page := range pages {
		if page.Failed() {
			fmt.Fprintf(sb, "  %s: %s\n", page.URL, page.Err)
		}
	}
}

// writeSitemap writes the URL set section of a sitemap crawl, listing at
// most maxListedURLs entries, and the followed-link results when link
// following was requested.
func (w *TextWriter) writeSitemap(sb *strings.Builder, sm *model.SitemapSummary) {
	if sm.IsIndex {
		sb.WriteString("Sitemap index detected\n")
	}
	fmt.Fprintf(sb, "Total URLs found: %d\n", sm.TotalURLs)

	if len(sm.URLs) > 0 {
		sb.WriteString("Filtered URLs:\n")
		listed := sm.URLs
		if len(listed) > maxListedURLs {
			listed = listed[:maxListedURLs]
		}
		for _, u := range listed {
			fmt.Fprintf(sb, "  %s\n", u)
		}
		if rest := len(sm.URLs) - len(listed); rest > 0 {
			fmt.Fprintf(sb, "... and %d more\n", rest)
		}
	}

	if len(sm.Followed) == 0 {
		return
	}

	sb.WriteString("\n")
	fmt.Fprintf(sb, "Followed %d links:\n", len(sm.Followed))
	for _, link := range sm.Followed {
		switch {
		case !link.OK():
			fmt.Fprintf(sb, "  %s - error: %s\n", link.URL, link.Err)
		case link.Title != "":
			fmt.Fprintf(sb, "  %s (%s)\n", link.URL, link.Title)
		default:
			fmt.Fprintf(sb, "  %s\n", link.URL)
		}
	}
	succeeded, failed := sm.FollowStats()
	fmt.Fprintf(sb, "(%d succeeded, %d failed)\n", succeeded, failed)
}

// clipContent truncates content to the preview size unless the writer is
// verbose.
func (w *TextWriter) clipContent(content string) string {
	if w.verbose {
		return content
	}
	return truncateString(content, contentPreviewSize)
}

// truncateString truncates a string to maxLen characters with ellipsis.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}

// indent prefixes every line of s with the given prefix.
func indent(s, prefix string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if line == "" {
			continue
		}
		lines[i] = prefix + line
	}
	return strings.Join(lines, "\n")
}
