package report

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/b3rt1ng/octocrawl/internal/model"
)

// JSONWriter outputs the sitemap tree as indented JSON, nested objects
// keyed by path segment with page records under "_data". The shape is
// machine-readable input for external tooling and mirrors the tree
// report's hierarchy.
type JSONWriter struct {
	baseWriter
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer) *JSONWriter {
	return &JSONWriter{baseWriter: newBaseWriter(output)}
}

// Write implements Writer.
func (w *JSONWriter) Write(crawl *model.CrawlContext) (int, error) {
	data, err := json.MarshalIndent(crawl.Tree, "", "    ")
	if err != nil {
		return 0, fmt.Errorf("marshal sitemap: %w", err)
	}
	data = append(data, '\n')

	n, err := w.output.Write(data)
	if err != nil {
		return n, fmt.Errorf("write json report: %w", err)
	}
	return n, nil
}
