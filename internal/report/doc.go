// Package report renders crawl results in multiple output formats:
// a colorized terminal tree, indented JSON of the sitemap hierarchy,
// and a Markdown summary. All writers implement the same Writer
// interface and can be fanned out through MultiWriter.
package report
