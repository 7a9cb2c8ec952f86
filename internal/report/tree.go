package report

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/b3rt1ng/octocrawl/internal/model"
)

// TreeWriter renders the sitemap tree as an indented box-drawing tree,
// one line per discovered URL with its status code and keyword hits.
type TreeWriter struct {
	baseWriter

	showFullURL bool
	ignoreExts  []string
	displayExts []string

	statusOK   *color.Color
	statusWarn *color.Color
	statusErr  *color.Color
	dirColor   *color.Color
	keywords   *color.Color
}

// TreeOption configures a TreeWriter.
type TreeOption func(*TreeWriter)

// WithFullURL renders each entry as its absolute URL instead of the bare
// path segment.
func WithFullURL(show bool) TreeOption {
	return func(w *TreeWriter) {
		w.showFullURL = show
	}
}

// WithIgnoreExtensions hides leaf entries whose name ends with one of the
// given extensions. Mutually exclusive with WithDisplayExtensions; the
// config layer enforces that.
func WithIgnoreExtensions(exts []string) TreeOption {
	return func(w *TreeWriter) {
		w.ignoreExts = exts
	}
}

// WithDisplayExtensions hides every leaf entry whose name does not end
// with one of the given extensions. Directories stay visible so the
// remaining leaves keep their place in the hierarchy.
func WithDisplayExtensions(exts []string) TreeOption {
	return func(w *TreeWriter) {
		w.displayExts = exts
	}
}

// NewTreeWriter creates a TreeWriter that outputs to the given writer.
// Color output follows the fatih/color global settings, so piping to a
// file yields plain text.
func NewTreeWriter(output io.Writer, opts ...TreeOption) *TreeWriter {
	w := &TreeWriter{
		baseWriter: newBaseWriter(output),
		statusOK:   color.New(color.FgGreen),
		statusWarn: color.New(color.FgYellow),
		statusErr:  color.New(color.FgRed),
		dirColor:   color.New(color.FgCyan),
		keywords:   color.New(color.FgYellow),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write implements Writer.
func (w *TreeWriter) Write(crawl *model.CrawlContext) (int, error) {
	var b strings.Builder

	b.WriteString(crawl.StartURL + "\n")
	baseURL := strings.TrimRight(crawl.StartURL, "/")
	w.writeChildren(&b, crawl.Tree.Root(), "", baseURL)
	b.WriteString(fmt.Sprintf("\n%d URLs in %s\n", crawl.TotalURLs, crawl.Duration.Round(time.Millisecond)))

	n, err := io.WriteString(w.output, b.String())
	if err != nil {
		return n, fmt.Errorf("write tree report: %w", err)
	}
	return n, nil
}

// writeChildren renders one tree level.
func (w *TreeWriter) writeChildren(b *strings.Builder, node *model.SitemapNode, prefix, baseURL string) {
	segments := w.visibleChildren(node)

	for i, segment := range segments {
		child := node.Children[segment]
		last := i == len(segments)-1

		pointer := "├── "
		extension := "│   "
		if last {
			pointer = "└── "
			extension = "    "
		}

		childURL := baseURL + "/" + segment
		if segment == model.RootKey {
			childURL = baseURL + "/"
		}
		name := segment
		if w.showFullURL {
			name = childURL
		}

		b.WriteString(prefix + pointer + name + " " + w.statusLabel(child) + w.keywordLabel(child) + "\n")

		if child.IsDirectory() {
			w.writeChildren(b, child, prefix+extension, childURL)
		}
	}
}

// visibleChildren returns the node's child segments after extension
// filtering, sorted for deterministic output.
func (w *TreeWriter) visibleChildren(node *model.SitemapNode) []string {
	segments := make([]string, 0, len(node.Children))
	for segment, child := range node.Children {
		if w.hidden(segment, child) {
			continue
		}
		segments = append(segments, segment)
	}
	sort.Strings(segments)
	return segments
}

// hidden applies the ignore/display extension rules to leaf entries.
func (w *TreeWriter) hidden(segment string, node *model.SitemapNode) bool {
	if node.IsDirectory() {
		return false
	}

	lower := strings.ToLower(segment)
	for _, ext := range w.ignoreExts {
		if strings.HasSuffix(lower, strings.ToLower(ext)) {
			return true
		}
	}
	if len(w.displayExts) > 0 {
		for _, ext := range w.displayExts {
			if strings.HasSuffix(lower, strings.ToLower(ext)) {
				return false
			}
		}
		return true
	}
	return false
}

// statusLabel renders the bracketed status for one node.
func (w *TreeWriter) statusLabel(node *model.SitemapNode) string {
	if node.Data == nil {
		return w.dirColor.Sprint("[DIR]")
	}

	code := node.Data.StatusCode
	switch {
	case code == 0:
		return w.statusErr.Sprint("[ERR]")
	case code >= 200 && code < 300:
		return w.statusOK.Sprint("[" + strconv.Itoa(code) + "]")
	case code >= 300 && code < 400:
		return w.statusWarn.Sprint("[" + strconv.Itoa(code) + "]")
	default:
		return w.statusErr.Sprint("[" + strconv.Itoa(code) + "]")
	}
}

// keywordLabel renders the keyword hits for one node, empty when none.
func (w *TreeWriter) keywordLabel(node *model.SitemapNode) string {
	if node.Data == nil || len(node.Data.Keywords) == 0 {
		return ""
	}

	keys := make([]string, 0, len(node.Data.Keywords))
	for k := range node.Data.Keywords {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %d", k, node.Data.Keywords[k]))
	}
	return " " + w.keywords.Sprintf("{%s}", strings.Join(parts, ", "))
}
