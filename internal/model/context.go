package model

import (
	"sort"
	"strings"
	"time"
)

// CrawlContext is the aggregate crawl result handed to report writers and
// post-crawl modules once the discovery loop terminates. All fields are
// read-only from the consumer's point of view.
type CrawlContext struct {
	// StartURL is the seed URL the crawl began from.
	StartURL string `json:"start_url"`

	// Domain is the host portion of the start URL. Only links on this
	// host were followed.
	Domain string `json:"domain"`

	// Pages maps each canonical URL to its result record.
	Pages map[string]*PageResult `json:"pages"`

	// Tree is the sitemap tree built from every discovered URL.
	Tree *Sitemap `json:"sitemap"`

	// Technologies maps detected technology signal names to their values,
	// merged union-wise across all responses.
	Technologies map[string]string `json:"technologies"`

	// TotalURLs is the number of unique canonical URLs gathered.
	TotalURLs int `json:"total_urls"`

	// Duration is the wall-clock time the crawl took.
	Duration time.Duration `json:"duration"`
}

// URLsByStatus returns all canonical URLs whose result carries the given
// HTTP status code, sorted for deterministic output.
func (c *CrawlContext) URLsByStatus(statusCode int) []string {
	var urls []string
	for rawURL, result := range c.Pages {
		if result.StatusCode == statusCode {
			urls = append(urls, rawURL)
		}
	}
	sort.Strings(urls)
	return urls
}

// URLsByContentType returns all canonical URLs whose content type contains
// the given substring (case-insensitive), sorted.
func (c *CrawlContext) URLsByContentType(contentType string) []string {
	needle := strings.ToLower(contentType)
	var urls []string
	for rawURL, result := range c.Pages {
		if strings.Contains(strings.ToLower(result.ContentType), needle) {
			urls = append(urls, rawURL)
		}
	}
	sort.Strings(urls)
	return urls
}

// URLsWithKeywords returns all canonical URLs whose page matched at least
// one requested keyword, sorted.
func (c *CrawlContext) URLsWithKeywords() []string {
	var urls []string
	for rawURL, result := range c.Pages {
		if len(result.Keywords) > 0 {
			urls = append(urls, rawURL)
		}
	}
	sort.Strings(urls)
	return urls
}
