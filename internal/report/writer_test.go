package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/nao1215/spindle/internal/model"
)

// createCrawlResult creates a traversal result with sample data for testing.
func createCrawlResult() *model.TraversalResult {
	started := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	return &model.TraversalResult{
		StartURL:        "https://site.example/",
		PagesCrawled:    2,
		MaxDepthReached: 1,
		Pages: []*model.PageResult{
			{
				URL:       "https://site.example/",
				Depth:     0,
				Title:     "Home",
				Content:   "Welcome to the front page.",
				FetchedAt: started,
			},
			{
				URL:       "https://site.example/about",
				Depth:     1,
				Parent:    "https://site.example/",
				Title:     "About",
				Content:   "All about us.",
				FetchedAt: started,
			},
			{
				URL:       "https://site.example/broken",
				Depth:     1,
				Parent:    "https://site.example/",
				Err:       "http status 500 Internal Server Error",
				FetchedAt: started,
			},
		},
		StartedAt: started,
		Elapsed:   1500 * time.Millisecond,
	}
}

// createSitemapReport creates a smart-crawl report for a sitemap with
// followed links.
func createSitemapReport() *model.DispatchReport {
	return &model.DispatchReport{
		URL:        "https://map.example/sitemap.xml",
		Label:      model.LabelSitemap,
		ProbedType: "application/xml",
		Sitemap: &model.SitemapSummary{
			URLs: []string{
				"https://map.example/alpha",
				"https://map.example/beta",
			},
			TotalURLs: 2,
			Followed: []model.FollowedLink{
				{URL: "https://map.example/alpha", Title: "Alpha"},
				{URL: "https://map.example/beta", Title: "Beta"},
			},
		},
		FetchedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

// createSessionList creates a session listing with one entry.
func createSessionList() []model.SessionSummary {
	created := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	return []model.SessionSummary{
		{
			ID:          "session_1748779200000_ab12cd34",
			InitialURL:  "https://site.example/",
			BrowserType: "chromium",
			CreatedAt:   created,
			LastUsed:    created.Add(10 * time.Minute),
			AgeMinutes:  30,
			IdleMinutes: 20,
		},
	}
}

// TestTextWriterTraversal tests the plain text traversal report.
func TestTextWriterTraversal(t *testing.T) {
	t.Parallel()

	t.Run("writes summary with crawl counts", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewTextWriter(&buf)

		_, err := w.WriteTraversal(createCrawlResult())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "CRAWL REPORT") {
			t.Error("expected output to contain header")
		}
		if !strings.Contains(output, "Pages crawled: 2") {
			t.Error("expected output to contain pages crawled count")
		}
		if !strings.Contains(output, "Max depth reached: 1") {
			t.Error("expected output to contain max depth")
		}
		if !strings.Contains(output, "Failed fetches: 1") {
			t.Error("expected output to contain failed fetch count")
		}
	})

	t.Run("lists every page with its content", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewTextWriter(&buf)

		_, err := w.WriteTraversal(createCrawlResult())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "[1] https://site.example/ (depth 0)") {
			t.Error("expected output to contain numbered start page")
		}
		if !strings.Contains(output, "Title: Home") {
			t.Error("expected output to contain page title")
		}
		if !strings.Contains(output, "Welcome to the front page.") {
			t.Error("expected output to contain page content")
		}
		if !strings.Contains(output, "Error: http status 500 Internal Server Error") {
			t.Error("expected output to contain failed page error")
		}
	})

	t.Run("failed traversal reports no pages could be crawled", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewTextWriter(&buf)
		result := &model.TraversalResult{
			StartURL:     "https://down.example/",
			PagesCrawled: 0,
			Pages: []*model.PageResult{
				{URL: "https://down.example/", Err: "connection refused"},
			},
		}

		_, err := w.WriteTraversal(result)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "No pages could be crawled") {
			t.Error("expected output to report that nothing was crawled")
		}
		if !strings.Contains(output, "https://down.example/: connection refused") {
			t.Error("expected output to contain the failure reason")
		}
		if strings.Contains(output, "PAGES") {
			t.Error("expected no page section for a failed traversal")
		}
	})

	t.Run("content is truncated to a preview by default", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewTextWriter(&buf)
		result := &model.TraversalResult{
			StartURL:     "https://host.test/",
			PagesCrawled: 1,
			Pages: []*model.PageResult{
				{URL: "https://host.test/", Content: strings.Repeat("y", 600)},
			},
		}

		_, err := w.WriteTraversal(result)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if strings.Contains(output, strings.Repeat("y", 498)) {
			t.Error("expected content to be truncated")
		}
		if !strings.Contains(output, strings.Repeat("y", 400)) {
			t.Error("expected truncated content to retain a preview")
		}
		if !strings.Contains(output, "...") {
			t.Error("expected truncation marker")
		}
	})

	t.Run("verbose mode keeps full content and adds link counts", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewTextWriter(&buf, WithTextVerbose(true))
		result := &model.TraversalResult{
			StartURL:     "https://host.test/",
			PagesCrawled: 1,
			Pages: []*model.PageResult{
				{
					URL:           "https://host.test/",
					Content:       strings.Repeat("y", 600),
					ContentHash:   "abc123",
					InternalLinks: []string{"https://host.test/a", "https://host.test/b"},
					ExternalLinks: []string{"https://other.test/"},
				},
			},
		}

		_, err := w.WriteTraversal(result)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, strings.Repeat("y", 600)) {
			t.Error("expected verbose output to keep full content")
		}
		if !strings.Contains(output, "Links: 2 internal, 1 external") {
			t.Error("expected verbose output to contain link counts")
		}
		if !strings.Contains(output, "Content hash: abc123") {
			t.Error("expected verbose output to contain content hash")
		}
	})

	t.Run("page without content reports no content extracted", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewTextWriter(&buf)
		result := &model.TraversalResult{
			StartURL:     "https://host.test/",
			PagesCrawled: 1,
			Pages: []*model.PageResult{
				{URL: "https://host.test/", Title: "Empty"},
			},
		}

		_, err := w.WriteTraversal(result)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !strings.Contains(buf.String(), "No content extracted") {
			t.Error("expected output to report missing content")
		}
	})
}

// TestTextWriterDispatch tests the plain text smart-crawl report.
func TestTextWriterDispatch(t *testing.T) {
	t.Parallel()

	t.Run("states the detected content type", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewTextWriter(&buf)
		report := &model.DispatchReport{
			URL:        "https://site.example/",
			Label:      model.LabelHTML,
			ProbedType: "text/html",
			Title:      "Front",
			Content:    "Body text.",
		}

		_, err := w.WriteDispatch(report)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "Smart crawl detected content type: html") {
			t.Error("expected output to state the detected content type")
		}
		if !strings.Contains(output, "Title: Front") {
			t.Error("expected output to contain the page title")
		}
		if !strings.Contains(output, "Body text.") {
			t.Error("expected output to contain the content")
		}
	})

	t.Run("degraded probe is noted", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewTextWriter(&buf)
		report := &model.DispatchReport{
			URL:      "https://site.example/",
			Label:    model.LabelHTML,
			Degraded: true,
			Content:  "Body text.",
		}

		_, err := w.WriteDispatch(report)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "Smart crawl detected content type: html") {
			t.Error("expected the content type line even for a degraded probe")
		}
		if !strings.Contains(output, "probe failed, defaulting to html") {
			t.Error("expected output to note the degraded probe")
		}
	})

	t.Run("empty content reports no content extracted", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewTextWriter(&buf)
		report := &model.DispatchReport{
			URL:   "https://site.example/empty",
			Label: model.LabelText,
		}

		_, err := w.WriteDispatch(report)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "Smart crawl detected content type: text") {
			t.Error("expected the content type line even without content")
		}
		if !strings.Contains(output, "No content extracted") {
			t.Error("expected output to report missing content")
		}
	})

	t.Run("fetch failure is reported as text", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewTextWriter(&buf)
		report := &model.DispatchReport{
			URL:   "https://site.example/",
			Label: model.LabelHTML,
			Err:   "connection reset by peer",
		}

		_, err := w.WriteDispatch(report)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !strings.Contains(buf.String(), "Error: connection reset by peer") {
			t.Error("expected output to contain the fetch error")
		}
	})
}

// TestTextWriterSitemap tests the sitemap section of the text report.
func TestTextWriterSitemap(t *testing.T) {
	t.Parallel()

	t.Run("lists urls with total count", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewTextWriter(&buf)

		_, err := w.WriteDispatch(createSitemapReport())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "Smart crawl detected content type: sitemap") {
			t.Error("expected output to state the sitemap content type")
		}
		if !strings.Contains(output, "Total URLs found: 2") {
			t.Error("expected output to contain the total URL count")
		}
		if !strings.Contains(output, "Filtered URLs:") {
			t.Error("expected output to contain the URL list header")
		}
		if !strings.Contains(output, "https://map.example/alpha") {
			t.Error("expected output to list the first URL")
		}
		if !strings.Contains(output, "https://map.example/beta") {
			t.Error("expected output to list the second URL")
		}
	})

	t.Run("followed links are listed in order", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewTextWriter(&buf)

		_, err := w.WriteDispatch(createSitemapReport())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		start := strings.Index(output, "Followed 2 links:")
		if start < 0 {
			t.Fatal("expected output to contain the followed links header")
		}

		followed := output[start:]
		alpha := strings.Index(followed, "https://map.example/alpha")
		beta := strings.Index(followed, "https://map.example/beta")
		if alpha < 0 || beta < 0 {
			t.Fatal("expected both followed URLs to be listed")
		}
		if alpha > beta {
			t.Error("expected followed URLs to keep sitemap order")
		}
		if !strings.Contains(followed, "(Alpha)") {
			t.Error("expected followed entry to include the page title")
		}
		if !strings.Contains(followed, "(2 succeeded, 0 failed)") {
			t.Error("expected follow statistics line")
		}
	})

	t.Run("followed failure is shown inline", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewTextWriter(&buf)
		report := createSitemapReport()
		report.Sitemap.Followed = []model.FollowedLink{
			{URL: "https://map.example/alpha", Title: "Alpha"},
			{URL: "https://map.example/beta", Err: "timeout"},
		}

		_, err := w.WriteDispatch(report)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "https://map.example/beta - error: timeout") {
			t.Error("expected failed follow to be listed with its error")
		}
		if !strings.Contains(output, "(1 succeeded, 1 failed)") {
			t.Error("expected follow statistics to count the failure")
		}
	})

	t.Run("listing is capped with a truncation marker", func(t *testing.T) {
		t.Parallel()

		urls := make([]string, 0, 120)
		for i := 0; i < 120; i++ {
			urls = append(urls, fmt.Sprintf("https://map.example/page-%d", i))
		}

		var buf bytes.Buffer
		w := NewTextWriter(&buf)
		report := &model.DispatchReport{
			URL:   "https://map.example/sitemap.xml",
			Label: model.LabelSitemap,
			Sitemap: &model.SitemapSummary{
				URLs:      urls,
				TotalURLs: len(urls),
			},
		}

		_, err := w.WriteDispatch(report)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "Total URLs found: 120") {
			t.Error("expected the total to reflect all URLs")
		}
		if got := strings.Count(output, "https://map.example/page-"); got != maxListedURLs {
			t.Errorf("expected %d listed URLs, got %d", maxListedURLs, got)
		}
		if !strings.Contains(output, "... and 20 more") {
			t.Error("expected truncation marker with remainder count")
		}
	})

	t.Run("sitemap index is labeled", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewTextWriter(&buf)
		report := createSitemapReport()
		report.Sitemap.IsIndex = true
		report.Sitemap.Followed = nil

		_, err := w.WriteDispatch(report)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !strings.Contains(buf.String(), "Sitemap index detected") {
			t.Error("expected output to label the sitemap index")
		}
	})
}

// TestTextWriterSessions tests the plain text session listing.
func TestTextWriterSessions(t *testing.T) {
	t.Parallel()

	t.Run("empty listing reports no active sessions", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewTextWriter(&buf)

		_, err := w.WriteSessions(nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !strings.Contains(buf.String(), "No active sessions") {
			t.Error("expected output to report no active sessions")
		}
	})

	t.Run("lists sessions with derived ages", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewTextWriter(&buf)

		_, err := w.WriteSessions(createSessionList())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "session_1748779200000_ab12cd34") {
			t.Error("expected output to contain the session id")
		}
		if !strings.Contains(output, "(30.0 minutes ago)") {
			t.Error("expected output to contain the session age")
		}
		if !strings.Contains(output, "(idle 20.0 minutes)") {
			t.Error("expected output to contain the idle time")
		}
		if !strings.Contains(output, "Browser: chromium") {
			t.Error("expected output to contain the browser type")
		}
	})
}

// TestTextWriterPages tests the flat page list output.
func TestTextWriterPages(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	w := NewTextWriter(&buf)
	pages := []*model.PageResult{
		{URL: "https://a.example/", Title: "A", Content: "First."},
		{URL: "https://b.example/", Err: "not found"},
	}

	_, err := w.WritePages(pages)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	output := buf.String()
	if !strings.Contains(output, "URLs fetched: 2") {
		t.Error("expected output to contain the URL count")
	}
	if !strings.Contains(output, "[1] https://a.example/") {
		t.Error("expected output to contain the first page")
	}
	if !strings.Contains(output, "Error: not found") {
		t.Error("expected output to contain the failed page error")
	}
}

// TestJSONWriter tests the JSON report writer.
func TestJSONWriter(t *testing.T) {
	t.Parallel()

	t.Run("outputs valid JSON", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewJSONWriter(&buf)

		_, err := w.WriteTraversal(createCrawlResult())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var parsed model.TraversalResult
		if err := json.Unmarshal(buf.Bytes(), &parsed); err != nil {
			t.Fatalf("output is not valid JSON: %v", err)
		}

		if parsed.PagesCrawled != 2 {
			t.Errorf("expected pages crawled 2, got %d", parsed.PagesCrawled)
		}
		if len(parsed.Pages) != 3 {
			t.Errorf("expected 3 pages, got %d", len(parsed.Pages))
		}
	})

	t.Run("compact output by default", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewJSONWriter(&buf)

		_, err := w.WriteTraversal(createCrawlResult())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
		if len(lines) > 1 {
			t.Errorf("expected compact output (1 line), got %d lines", len(lines))
		}
	})

	t.Run("pretty print with indent", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewJSONWriter(&buf, WithPrettyPrint())

		_, err := w.WriteTraversal(createCrawlResult())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
		if len(lines) < 5 {
			t.Errorf("expected multi-line output, got %d lines", len(lines))
		}
	})

	t.Run("empty session listing is an array", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewJSONWriter(&buf)

		_, err := w.WriteSessions(nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if got := strings.TrimSpace(buf.String()); got != "[]" {
			t.Errorf("expected empty array, got %q", got)
		}
	})

	t.Run("dispatch report round-trips", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewJSONWriter(&buf)

		_, err := w.WriteDispatch(createSitemapReport())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var parsed model.DispatchReport
		if err := json.Unmarshal(buf.Bytes(), &parsed); err != nil {
			t.Fatalf("output is not valid JSON: %v", err)
		}

		if parsed.Label != model.LabelSitemap {
			t.Errorf("expected label %q, got %q", model.LabelSitemap, parsed.Label)
		}
		if parsed.Sitemap == nil || parsed.Sitemap.TotalURLs != 2 {
			t.Error("expected sitemap summary to survive the round trip")
		}
	})
}

// TestFullJSONWriter tests the JSON writer with metadata envelope.
func TestFullJSONWriter(t *testing.T) {
	t.Parallel()

	t.Run("includes version and kind in output", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewFullJSONWriter(&buf, "1.2.3", WithPrettyPrint())

		_, err := w.WriteTraversal(createCrawlResult())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var parsed JSONEnvelope
		if err := json.Unmarshal(buf.Bytes(), &parsed); err != nil {
			t.Fatalf("output is not valid JSON: %v", err)
		}

		if parsed.Version != "1.2.3" {
			t.Errorf("expected version %q, got %q", "1.2.3", parsed.Version)
		}
		if parsed.Kind != "traversal" {
			t.Errorf("expected kind %q, got %q", "traversal", parsed.Kind)
		}
	})

	t.Run("dispatch reports use the smart_crawl kind", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewFullJSONWriter(&buf, "1.2.3")

		_, err := w.WriteDispatch(createSitemapReport())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var parsed JSONEnvelope
		if err := json.Unmarshal(buf.Bytes(), &parsed); err != nil {
			t.Fatalf("output is not valid JSON: %v", err)
		}

		if parsed.Kind != "smart_crawl" {
			t.Errorf("expected kind %q, got %q", "smart_crawl", parsed.Kind)
		}
	})
}

// TestMultiWriter tests writing to multiple outputs.
func TestMultiWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes to all writers", func(t *testing.T) {
		t.Parallel()

		var buf1, buf2 bytes.Buffer
		w1 := NewTextWriter(&buf1)
		w2 := NewJSONWriter(&buf2)

		multi := NewMultiWriter(w1, w2)

		_, err := multi.WriteTraversal(createCrawlResult())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if buf1.Len() == 0 {
			t.Error("expected buf1 to have content")
		}
		if buf2.Len() == 0 {
			t.Error("expected buf2 to have content")
		}

		if strings.Contains(buf1.String(), "{") {
			t.Error("expected buf1 (text) to not be JSON")
		}
		if !strings.Contains(buf2.String(), "{") {
			t.Error("expected buf2 (JSON) to contain JSON")
		}
	})

	t.Run("session listing reaches every writer", func(t *testing.T) {
		t.Parallel()

		var buf1, buf2 bytes.Buffer
		multi := NewMultiWriter(NewTextWriter(&buf1), NewJSONWriter(&buf2))

		_, err := multi.WriteSessions(createSessionList())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !strings.Contains(buf1.String(), "session_1748779200000_ab12cd34") {
			t.Error("expected text output to contain the session id")
		}
		if !strings.Contains(buf2.String(), "session_1748779200000_ab12cd34") {
			t.Error("expected JSON output to contain the session id")
		}
	})
}

// TestMarkdownWriterTraversal tests the Markdown traversal report.
func TestMarkdownWriterTraversal(t *testing.T) {
	t.Parallel()

	t.Run("writes report header and summary table", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewMarkdownWriter(&buf)

		_, err := w.WriteTraversal(createCrawlResult())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "# Crawl Report") {
			t.Error("expected output to contain H1 header")
		}
		if !strings.Contains(output, "https://site.example/") {
			t.Error("expected output to contain the start URL")
		}
		if !strings.Contains(output, "Pages crawled") {
			t.Error("expected output to contain the crawl count row")
		}
	})

	t.Run("partial failure produces warning and pie chart", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewMarkdownWriter(&buf)

		_, err := w.WriteTraversal(createCrawlResult())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "1 of 3 attempted fetches failed") {
			t.Error("expected warning about failed fetches")
		}
		if !strings.Contains(output, "mermaid") {
			t.Error("expected mermaid chart for fetch outcomes")
		}
		if !strings.Contains(output, "Fetch Outcomes") {
			t.Error("expected chart title")
		}
	})

	t.Run("failed traversal produces caution alert", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewMarkdownWriter(&buf)
		result := &model.TraversalResult{
			StartURL:     "https://down.example/",
			PagesCrawled: 0,
			Pages: []*model.PageResult{
				{URL: "https://down.example/", Err: "connection refused"},
			},
		}

		_, err := w.WriteTraversal(result)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "No pages could be crawled") {
			t.Error("expected caution alert for a failed traversal")
		}
	})

	t.Run("clean traversal produces tip alert", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewMarkdownWriter(&buf)
		result := &model.TraversalResult{
			StartURL:     "https://site.example/",
			PagesCrawled: 1,
			Pages: []*model.PageResult{
				{URL: "https://site.example/", Title: "Home", Content: "Hi."},
			},
		}

		_, err := w.WriteTraversal(result)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !strings.Contains(buf.String(), "All pages fetched successfully") {
			t.Error("expected tip alert for a clean traversal")
		}
	})
}

// TestMarkdownWriterDispatch tests the Markdown smart-crawl report.
func TestMarkdownWriterDispatch(t *testing.T) {
	t.Parallel()

	t.Run("writes sitemap url list and followed links", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewMarkdownWriter(&buf)

		_, err := w.WriteDispatch(createSitemapReport())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "# Smart Crawl Report") {
			t.Error("expected output to contain H1 header")
		}
		if !strings.Contains(output, "## Sitemap URLs") {
			t.Error("expected output to contain sitemap section")
		}
		if !strings.Contains(output, "Total URLs found: 2") {
			t.Error("expected output to contain the total URL count")
		}
		if !strings.Contains(output, "- https://map.example/alpha") {
			t.Error("expected output to list sitemap URLs as bullets")
		}
		if !strings.Contains(output, "## Followed Links") {
			t.Error("expected output to contain followed links section")
		}
	})

	t.Run("degraded probe produces warning alert", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewMarkdownWriter(&buf)
		report := &model.DispatchReport{
			URL:      "https://site.example/",
			Label:    model.LabelHTML,
			Degraded: true,
			Content:  "Body.",
		}

		_, err := w.WriteDispatch(report)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !strings.Contains(buf.String(), "Content-type probe failed") {
			t.Error("expected warning about the degraded probe")
		}
	})

	t.Run("empty content reports no content extracted", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewMarkdownWriter(&buf)
		report := &model.DispatchReport{
			URL:   "https://site.example/",
			Label: model.LabelText,
		}

		_, err := w.WriteDispatch(report)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !strings.Contains(buf.String(), "No content extracted") {
			t.Error("expected output to report missing content")
		}
	})

	t.Run("fetch failure produces caution alert", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewMarkdownWriter(&buf)
		report := &model.DispatchReport{
			URL:   "https://site.example/",
			Label: model.LabelHTML,
			Err:   "connection reset",
		}

		_, err := w.WriteDispatch(report)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !strings.Contains(buf.String(), "Crawl failed: connection reset") {
			t.Error("expected caution alert with the fetch error")
		}
	})
}

// TestMarkdownWriterSessions tests the Markdown session listing.
func TestMarkdownWriterSessions(t *testing.T) {
	t.Parallel()

	t.Run("empty listing reports no active sessions", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewMarkdownWriter(&buf)

		_, err := w.WriteSessions(nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !strings.Contains(buf.String(), "No active sessions") {
			t.Error("expected output to report no active sessions")
		}
	})

	t.Run("lists sessions with display browser name", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewMarkdownWriter(&buf)

		_, err := w.WriteSessions(createSessionList())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "session_1748779200000_ab12cd34") {
			t.Error("expected output to contain the session id")
		}
		if !strings.Contains(output, "Chromium") {
			t.Error("expected browser type to use its display name")
		}
	})
}

// TestBrowserDisplayName tests browser type display names.
func TestBrowserDisplayName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    string
		expected string
	}{
		{"chromium", "Chromium"},
		{"firefox", "Firefox"},
		{"webkit", "WebKit"},
		{"edge", "Edge"},
		{"", "-"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			if got := browserDisplayName(tt.input); got != tt.expected {
				t.Errorf("browserDisplayName(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

// TestTruncateString tests string truncation with ellipsis.
func TestTruncateString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    string
		maxLen   int
		expected string
	}{
		{"short", 10, "short"},
		{"exactly10!", 10, "exactly10!"},
		{"this is a longer string", 10, "this is..."},
		{"abc", 3, "abc"},
		{"abcd", 3, "abc"},
		{"ab", 5, "ab"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			result := truncateString(tt.input, tt.maxLen)
			if result != tt.expected {
				t.Errorf("truncateString(%q, %d) = %q, want %q",
					tt.input, tt.maxLen, result, tt.expected)
			}
		})
	}
}

// TestIndent tests line prefixing for nested content.
func TestIndent(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		prefix   string
		expected string
	}{
		{"single line", "hello", "  ", "  hello"},
		{"multiple lines", "a\nb", "> ", "> a\n> b"},
		{"blank lines kept bare", "a\n\nb", "  ", "  a\n\n  b"},
		{"empty input", "", "  ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := indent(tt.input, tt.prefix); got != tt.expected {
				t.Errorf("indent(%q, %q) = %q, want %q",
					tt.input, tt.prefix, got, tt.expected)
			}
		})
	}
}
