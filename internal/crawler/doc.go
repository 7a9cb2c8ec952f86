// Package crawler implements the concurrent crawl engine: a deduplicating
// URL frontier with a join barrier, content-type-driven link extractors,
// and the discovery loop that re-probes directory URLs implied by the
// sitemap tree until the crawl reaches a fixpoint.
package crawler
