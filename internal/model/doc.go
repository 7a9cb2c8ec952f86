// Package model defines the core data structures used throughout octocrawl.
//
// This package contains the following main types:
//   - PageResult: The record created for every fetched URL
//   - Sitemap: The path-segment tree accumulating one record per URL
//   - CrawlContext: The final crawl artifact handed to reports and modules
//
// Design decision: We separate models into their own package to avoid circular
// dependencies. Multiple packages (crawler, report, module) need to use these
// types, so centralizing them prevents import cycles.
//
// The models are designed to be serializable to JSON for report output.
package model
