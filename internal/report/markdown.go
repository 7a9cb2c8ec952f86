package report

import (
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/nao1215/markdown"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/b3rt1ng/octocrawl/internal/model"
)

// MarkdownWriter outputs the crawl summary in Markdown format.
// This format is designed for documentation and sharing.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
// 1. Type-safe markdown generation
// 2. Support for tables, lists, and code blocks
// 3. GitHub-flavored markdown alerts
type MarkdownWriter struct {
	baseWriter

	caser cases.Caser
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given
// writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
		caser:      cases.Title(language.English),
	}
}

// Write implements Writer.
func (w *MarkdownWriter) Write(crawl *model.CrawlContext) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, crawl)
	w.writeStatusSummary(md, crawl)
	w.writeTechnologies(md, crawl)
	w.writeKeywordHits(md, crawl)

	return len(md.String()), md.Build()
}

// writeHeader writes the report header with crawl information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, crawl *model.CrawlContext) {
	md.H1("OctoCrawl Report")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Start URL", "`" + crawl.StartURL + "`"},
			{"Domain", "`" + crawl.Domain + "`"},
			{"URLs Gathered", strconv.Itoa(crawl.TotalURLs)},
			{"Duration", crawl.Duration.Round(time.Millisecond).String()},
		},
	})
	md.PlainText("")
}

// writeStatusSummary writes the response class breakdown.
func (w *MarkdownWriter) writeStatusSummary(md *markdown.Markdown, crawl *model.CrawlContext) {
	classes := map[string]int{}
	for _, page := range crawl.Pages {
		classes[statusClass(page)]++
	}

	md.H2("Response Summary")
	md.PlainText("")

	var rows [][]string
	for _, class := range []string{"success", "redirect", "client error", "server error", "failed"} {
		if count, ok := classes[class]; ok {
			rows = append(rows, []string{w.caser.String(class), strconv.Itoa(count)})
		}
	}
	if len(rows) == 0 {
		md.PlainText("No pages fetched.")
		md.PlainText("")
		return
	}
	md.Table(markdown.TableSet{
		Header: []string{"Class", "Count"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeTechnologies writes the detected technology signals.
func (w *MarkdownWriter) writeTechnologies(md *markdown.Markdown, crawl *model.CrawlContext) {
	md.H2("Detected Technologies")
	md.PlainText("")

	if len(crawl.Technologies) == 0 {
		md.PlainText("No technology signals detected.")
		md.PlainText("")
		return
	}

	names := make([]string, 0, len(crawl.Technologies))
	for name := range crawl.Technologies {
		names = append(names, name)
	}
	sort.Strings(names)

	rows := make([][]string, 0, len(names))
	for _, name := range names {
		rows = append(rows, []string{name, "`" + crawl.Technologies[name] + "`"})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Signal", "Value"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeKeywordHits lists the pages that matched requested keywords.
func (w *MarkdownWriter) writeKeywordHits(md *markdown.Markdown, crawl *model.CrawlContext) {
	urls := crawl.URLsWithKeywords()
	if len(urls) == 0 {
		return
	}

	md.H2("Keyword Matches")
	md.PlainText("")

	rows := make([][]string, 0, len(urls))
	for _, u := range urls {
		page := crawl.Pages[u]
		keys := make([]string, 0, len(page.Keywords))
		for k := range page.Keywords {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, k+" ("+strconv.Itoa(page.Keywords[k])+")")
		}
		rows = append(rows, []string{"`" + u + "`", strings.Join(parts, ", ")})
	}
	md.Table(markdown.TableSet{
		Header: []string{"URL", "Keywords"},
		Rows:   rows,
	})
	md.PlainText("")
}

// statusClass buckets a page result for the summary table.
func statusClass(page *model.PageResult) string {
	switch {
	case page.StatusCode == 0:
		return "failed"
	case page.StatusCode < 300:
		return "success"
	case page.StatusCode < 400:
		return "redirect"
	case page.StatusCode < 500:
		return "client error"
	default:
		return "server error"
	}
}
