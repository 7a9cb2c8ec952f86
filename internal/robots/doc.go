// Package robots discovers crawl seeds before the main crawl starts: it
// parses /robots.txt for path rules and sitemap references, probes the
// conventional sitemap locations, and resolves sitemap XML (including
// nested sitemap indexes) into concrete page URLs.
package robots
