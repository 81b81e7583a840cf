package report

import (
	"io"
	"strconv"
	"time"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/nao1215/spindle/internal/model"
)

// MarkdownWriter outputs reports in Markdown format.
// This format is designed for documentation and sharing.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
// 1. Type-safe markdown generation
// 2. Support for tables, lists, and code blocks
// 3. GitHub-flavored markdown alerts
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// WriteTraversal outputs the traversal result in Markdown format.
func (w *MarkdownWriter) WriteTraversal(result *model.TraversalResult) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Crawl Report")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Start URL", "`" + result.StartURL + "`"},
			{"Pages crawled", strconv.Itoa(result.PagesCrawled)},
			{"Max depth reached", strconv.Itoa(result.MaxDepthReached)},
			{"Elapsed", result.Elapsed.Round(time.Millisecond).String()},
			{"Status", w.traversalStatus(result)},
		},
	})
	md.PlainText("")

	w.writeTraversalAlert(md, result)

	if failed := result.FailedPages(); failed > 0 && result.PagesCrawled > 0 {
		w.writeOutcomeChart(md, result.PagesCrawled, failed)
	}

	w.writePageTable(md, "Pages", result.Pages)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// traversalStatus returns the status cell text for the summary table.
func (w *MarkdownWriter) traversalStatus(result *model.TraversalResult) string {
	if result.Failed() {
		return "❌ No pages could be crawled"
	}
	if failed := result.FailedPages(); failed > 0 {
		return "⚠️ Partial - " + strconv.Itoa(failed) + " fetch(es) failed"
	}
	return "✅ Complete"
}

// writeTraversalAlert writes an alert matching the traversal outcome.
func (w *MarkdownWriter) writeTraversalAlert(md *markdown.Markdown, result *model.TraversalResult) {
	switch {
	case result.Failed():
		md.Cautionf("No pages could be crawled from %s.", result.StartURL)
	case result.FailedPages() > 0:
		md.Warningf(
			"%d of %d attempted fetches failed. See the pages table for details.",
			result.FailedPages(), len(result.Pages),
		)
	default:
		md.Tip("All pages fetched successfully.")
	}
	md.PlainText("")
}

// writeOutcomeChart writes a mermaid pie chart of fetch outcomes.
func (w *MarkdownWriter) writeOutcomeChart(md *markdown.Markdown, succeeded, failed int) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Fetch Outcomes"),
		piechart.WithShowData(true),
	)
	chart.LabelAndIntValue("Succeeded", uint64(succeeded))
	chart.LabelAndIntValue("Failed", uint64(failed))

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// WriteDispatch outputs the dispatch report in Markdown format.
func (w *MarkdownWriter) WriteDispatch(report *model.DispatchReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Smart Crawl Report")
	md.PlainText("")

	probed := report.ProbedType
	if probed == "" {
		probed = "-"
	}
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"URL", "`" + report.URL + "`"},
			{"Detected type", string(report.Label)},
			{"Probed type", probed},
			{"Fetched at", report.FetchedAt.Format("2006-01-02 15:04:05 MST")},
		},
	})
	md.PlainText("")

	if report.Degraded {
		md.Warning("Content-type probe failed; defaulted to the html strategy.")
		md.PlainText("")
	}

	switch {
	case report.Err != "":
		md.Cautionf("Crawl failed: %s", report.Err)
		md.PlainText("")
	case report.Sitemap != nil:
		w.writeSitemapSection(md, report.Sitemap)
	default:
		w.writeContentSection(md, report)
	}

	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeSitemapSection writes the URL set and followed-link results.
func (w *MarkdownWriter) writeSitemapSection(md *markdown.Markdown, sm *model.SitemapSummary) {
	md.H2("Sitemap URLs")
	md.PlainText("")
	if sm.IsIndex {
		md.Note("This document is a sitemap index; the listed URLs are child sitemaps.")
		md.PlainText("")
	}
	md.PlainTextf("Total URLs found: %d", sm.TotalURLs)
	md.PlainText("")

	listed := sm.URLs
	if len(listed) > maxListedURLs {
		listed = listed[:maxListedURLs]
	}
	if len(listed) > 0 {
		md.BulletList(listed...)
		md.PlainText("")
	}
	if rest := len(sm.URLs) - len(listed); rest > 0 {
		md.PlainTextf("... and %d more", rest)
		md.PlainText("")
	}

	if len(sm.Followed) == 0 {
		return
	}

	md.H2("Followed Links")
	md.PlainText("")
	rows := make([][]string, len(sm.Followed))
	for i, link := range sm.Followed {
		title := link.Title
		if title == "" {
			title = "-"
		}
		status := "✅ OK"
		if !link.OK() {
			status = "❌ " + truncateString(link.Err, 60)
		}
		rows[i] = []string{
			truncateString(link.URL, 60),
			truncateString(title, 40),
			status,
		}
	}
	md.Table(markdown.TableSet{
		Header: []string{"URL", "Title", "Result"},
		Rows:   rows,
	})
	md.PlainText("")

	succeeded, failed := sm.FollowStats()
	md.PlainTextf("%d succeeded, %d failed.", succeeded, failed)
	md.PlainText("")
}

// writeContentSection writes the extracted content of a generic crawl.
func (w *MarkdownWriter) writeContentSection(md *markdown.Markdown, report *model.DispatchReport) {
	md.H2("Content")
	md.PlainText("")
	if report.Title != "" {
		md.PlainTextf("**%s**", report.Title)
		md.PlainText("")
	}
	if report.Content == "" {
		md.PlainText("No content extracted")
		md.PlainText("")
		return
	}
	md.Details("Extracted content", truncateString(report.Content, 2000))
	md.PlainText("")
}

// WriteSessions outputs the session listing in Markdown format.
func (w *MarkdownWriter) WriteSessions(sessions []model.SessionSummary) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Active Sessions")
	md.PlainText("")

	if len(sessions) == 0 {
		md.PlainText("No active sessions")
		md.PlainText("")
		w.writeFooter(md)
		return len(md.String()), md.Build()
	}

	rows := make([][]string, len(sessions))
	for i, s := range sessions {
		initial := s.InitialURL
		if initial == "" {
			initial = "-"
		}
		rows[i] = []string{
			"`" + s.ID + "`",
			browserDisplayName(s.BrowserType),
			truncateString(initial, 50),
			strconv.FormatFloat(s.AgeMinutes, 'f', 1, 64),
			strconv.FormatFloat(s.IdleMinutes, 'f', 1, 64),
		}
	}
	md.Table(markdown.TableSet{
		Header: []string{"ID", "Browser", "Initial URL", "Age (min)", "Idle (min)"},
		Rows:   rows,
	})
	md.PlainText("")

	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// WritePages outputs a flat page list in Markdown format.
func (w *MarkdownWriter) WritePages(pages []*model.PageResult) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Fetch Results")
	md.PlainText("")
	w.writePageTable(md, "Pages", pages)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writePageTable writes a table of page results with per-page content in
// collapsible details blocks.
func (w *MarkdownWriter) writePageTable(md *markdown.Markdown, header string, pages []*model.PageResult) {
	md.H2(header)
	md.PlainText("")

	if len(pages) == 0 {
		md.PlainText("No pages.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(pages))
	for i, page := range pages {
		title := page.Title
		if title == "" {
			title = "-"
		}
		status := "✅ OK"
		if page.Failed() {
			status = "❌ " + truncateString(page.Err, 60)
		}
		rows[i] = []string{
			truncateString(page.URL, 60),
			strconv.Itoa(page.Depth),
			truncateString(title, 40),
			status,
		}
	}
	md.Table(markdown.TableSet{
		Header: []string{"URL", "Depth", "Title", "Status"},
		Rows:   rows,
	})
	md.PlainText("")

	for _, page := range pages {
		if page.Content != "" {
			md.Details(page.URL, truncateString(page.Content, 2000))
		}
	}
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [spindle](https://github.com/nao1215/spindle)*")
}

// browserDisplayName returns a human-readable name for a browser type.
func browserDisplayName(browserType string) string {
	if browserType == "" {
		return "-"
	}

	names := map[string]string{
		"chromium": "Chromium",
		"firefox":  "Firefox",
		"webkit":   "WebKit",
	}
	if name, ok := names[browserType]; ok {
		return name
	}
	return cases.Title(language.English).String(browserType)
}
