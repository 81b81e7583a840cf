package report

import (
	"encoding/json"
	"io"

	"github.com/nao1215/spindle/internal/model"
)

// JSONWriter outputs reports in JSON format.
// This format is designed for tool integration and programmatic processing.
//
// Design decision: We use standard encoding/json rather than a third-party
// JSON library because:
// 1. It's part of the standard library (no extra dependencies)
// 2. It's sufficient for our needs
// 3. It provides consistent behavior across Go versions
type JSONWriter struct {
	baseWriter

	// indent enables pretty-printed JSON output.
	// When false, output is compact (no extra whitespace).
	indent bool

	// indentPrefix is the prefix for each line in indented output.
	indentPrefix string

	// indentString is the indentation string (typically "  " or "\t").
	indentString string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent enables pretty-printed JSON output.
// The prefix is prepended to each line, and indent is used for each level.
func WithIndent(prefix, indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = prefix
		w.indentString = indent
	}
}

// WithPrettyPrint enables pretty-printed JSON with default indentation.
// This is a convenience wrapper for WithIndent("", "  ").
func WithPrettyPrint() JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = ""
		w.indentString = "  "
	}
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{
		baseWriter:   newBaseWriter(output),
		indent:       false,
		indentPrefix: "",
		indentString: "",
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// WriteTraversal outputs the traversal result in JSON format.
func (w *JSONWriter) WriteTraversal(result *model.TraversalResult) (int, error) {
	return w.writeJSON(result)
}

// WriteDispatch outputs the dispatch report in JSON format.
func (w *JSONWriter) WriteDispatch(report *model.DispatchReport) (int, error) {
	return w.writeJSON(report)
}

// WriteSessions outputs the session listing in JSON format.
// An empty listing is written as an empty array, not null.
func (w *JSONWriter) WriteSessions(sessions []model.SessionSummary) (int, error) {
	if sessions == nil {
		sessions = []model.SessionSummary{}
	}
	return w.writeJSON(sessions)
}

// WritePages outputs the page list in JSON format.
func (w *JSONWriter) WritePages(pages []*model.PageResult) (int, error) {
	if pages == nil {
		pages = []*model.PageResult{}
	}
	return w.writeJSON(pages)
}

// writeJSON marshals the given value to JSON and writes it to the output.
func (w *JSONWriter) writeJSON(v interface{}) (int, error) {
	var data []byte
	var err error

	if w.indent {
		data, err = json.MarshalIndent(v, w.indentPrefix, w.indentString)
	} else {
		data, err = json.Marshal(v)
	}

	if err != nil {
		return 0, err
	}

	// Add trailing newline for better terminal output
	data = append(data, '\n')

	return w.output.Write(data)
}

// JSONEnvelope wraps a report payload with output metadata.
//
// Design decision: We wrap the payload rather than adding version fields
// to each model type because this allows us to add output-specific fields
// without polluting the core data structures.
type JSONEnvelope struct {
	// Version is the spindle version that generated this report.
	Version string `json:"version"`

	// Kind identifies the payload type: "traversal", "smart_crawl",
	// "sessions", or "pages".
	Kind string `json:"kind"`

	// Data is the report payload.
	Data interface{} `json:"data"`
}

// NewJSONEnvelope creates a JSONEnvelope with version information.
func NewJSONEnvelope(kind string, data interface{}, version string) *JSONEnvelope {
	return &JSONEnvelope{
		Version: version,
		Kind:    kind,
		Data:    data,
	}
}

// FullJSONWriter outputs complete reports with a metadata wrapper.
type FullJSONWriter struct {
	*JSONWriter

	// version is the spindle version string.
	version string
}

// NewFullJSONWriter creates a writer for complete reports with metadata.
func NewFullJSONWriter(output io.Writer, version string, opts ...JSONWriterOption) *FullJSONWriter {
	return &FullJSONWriter{
		JSONWriter: NewJSONWriter(output, opts...),
		version:    version,
	}
}

// WriteTraversal outputs the traversal result wrapped with metadata.
func (w *FullJSONWriter) WriteTraversal(result *model.TraversalResult) (int, error) {
	return w.writeJSON(NewJSONEnvelope("traversal", result, w.version))
}

// WriteDispatch outputs the dispatch report wrapped with metadata.
func (w *FullJSONWriter) WriteDispatch(report *model.DispatchReport) (int, error) {
	return w.writeJSON(NewJSONEnvelope("smart_crawl", report, w.version))
}

// WriteSessions outputs the session listing wrapped with metadata.
func (w *FullJSONWriter) WriteSessions(sessions []model.SessionSummary) (int, error) {
	if sessions == nil {
		sessions = []model.SessionSummary{}
	}
	return w.writeJSON(NewJSONEnvelope("sessions", sessions, w.version))
}

// WritePages outputs the page list wrapped with metadata.
func (w *FullJSONWriter) WritePages(pages []*model.PageResult) (int, error) {
	if pages == nil {
		pages = []*model.PageResult{}
	}
	return w.writeJSON(NewJSONEnvelope("pages", pages, w.version))
}
