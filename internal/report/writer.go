package report

import (
	"io"

	"github.com/nao1215/spindle/internal/model"
)

// Writer defines the interface for report output.
// Implementations render the same results in different formats.
//
// Design decision: We use an interface to allow different output formats
// and destinations. This enables writing to files, stdout, or network
// connections with the same API.
type Writer interface {
	// WriteTraversal outputs the result of a recursive crawl.
	// Returns the number of bytes written and any error encountered.
	WriteTraversal(result *model.TraversalResult) (int, error)

	// WriteDispatch outputs a smart-crawl report.
	WriteDispatch(report *model.DispatchReport) (int, error)

	// WriteSessions outputs a session listing.
	WriteSessions(sessions []model.SessionSummary) (int, error)

	// WritePages outputs a flat page list, as produced by multi-URL
	// fetches.
	WritePages(pages []*model.PageResult) (int, error)
}

// MultiWriter writes to multiple Writers simultaneously.
// This is useful for outputting to both terminal and file.
//
// Design decision: We implement this as a separate type rather than
// using io.MultiWriter because our Writer interface is different
// from io.Writer - we write reports, not raw bytes.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// WriteTraversal outputs the traversal result to all configured
// Writers. Returns the total bytes written; stops on the first error.
func (m *MultiWriter) WriteTraversal(result *model.TraversalResult) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.WriteTraversal(result)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// WriteDispatch outputs the dispatch report to all configured Writers.
func (m *MultiWriter) WriteDispatch(report *model.DispatchReport) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.WriteDispatch(report)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// WriteSessions outputs the session listing to all configured Writers.
func (m *MultiWriter) WriteSessions(sessions []model.SessionSummary) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.WriteSessions(sessions)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// WritePages outputs the page list to all configured Writers.
func (m *MultiWriter) WritePages(pages []*model.PageResult) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.WritePages(pages)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}
