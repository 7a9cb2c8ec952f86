// Package main provides the entry point for the OctoCrawl CLI.
//
// OctoCrawl is a concurrent website crawler that maps a site's URL space
// into a sitemap tree, fingerprints server-side technologies, and runs
// optional post-crawl analysis modules.
//
// Usage:
//
//	octocrawl crawl <url>
//	octocrawl crawl --workers 120 --keywords admin,login <url>
//
// See --help for all available options.
package main

// main is the entry point for OctoCrawl.
func main() {
	Execute()
}
