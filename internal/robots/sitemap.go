package robots

import (
	"context"
	"encoding/xml"
	"net/url"
	"regexp"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"
)

// maxSitemapDepth bounds recursion through nested sitemap indexes.
const maxSitemapDepth = 3

// commonSitemapPaths are the conventional locations probed when robots.txt
// names no sitemap.
var commonSitemapPaths = []string{
	"/sitemap.xml",
	"/sitemap_index.xml",
	"/sitemap1.xml",
	"/sitemaps.xml",
	"/sitemap/sitemap.xml",
	"/sitemap/index.xml",
	"/sitemaps/sitemap.xml",
}

// locPattern is the fallback extractor for sitemap documents that fail
// strict XML parsing but still carry <loc> entries.
var locPattern = regexp.MustCompile(`(?is)<loc>(.*?)</loc>`)

// sitemapIndex is the subset of the sitemapindex schema we read.
type sitemapIndex struct {
	XMLName  xml.Name `xml:"sitemapindex"`
	Sitemaps []struct {
		Loc string `xml:"loc"`
	} `xml:"sitemap"`
}

// urlSet is the subset of the urlset schema we read.
type urlSet struct {
	XMLName xml.Name `xml:"urlset"`
	URLs    []struct {
		Loc string `xml:"loc"`
	} `xml:"url"`
}

// DiscoverSitemaps probes the conventional sitemap locations concurrently
// and returns the URLs that answered with XML content.
func DiscoverSitemaps(ctx context.Context, fetcher Fetcher, startURL string) []string {
	base, err := url.Parse(startURL)
	if err != nil {
		return nil
	}

	var mu sync.Mutex
	found := make(map[string]bool)

	g, ctx := errgroup.WithContext(ctx)
	for _, path := range commonSitemapPaths {
		sitemapURL := base.ResolveReference(&url.URL{Path: path}).String()
		g.Go(func() error {
			resp := fetcher.Fetch(ctx, sitemapURL)
			if !resp.Done || resp.StatusCode != 200 {
				return nil
			}
			if !strings.Contains(strings.ToLower(resp.ContentType), "xml") &&
				!strings.HasPrefix(strings.TrimSpace(resp.Body), "<?xml") {
				return nil
			}
			mu.Lock()
			found[sitemapURL] = true
			mu.Unlock()
			return nil
		})
	}
	g.Wait()

	ordered := make([]string, 0, len(found))
	for _, path := range commonSitemapPaths {
		sitemapURL := base.ResolveReference(&url.URL{Path: path}).String()
		if found[sitemapURL] {
			ordered = append(ordered, sitemapURL)
		}
	}
	return ordered
}

// ResolveSitemap fetches a sitemap and returns the page URLs it lists,
// restricted to the given host. Sitemap indexes are followed recursively
// up to a fixed depth.
func ResolveSitemap(ctx context.Context, fetcher Fetcher, sitemapURL, host string) []string {
	return resolveSitemap(ctx, fetcher, sitemapURL, host, 0)
}

func resolveSitemap(ctx context.Context, fetcher Fetcher, sitemapURL, host string, depth int) []string {
	if depth >= maxSitemapDepth {
		return nil
	}

	resp := fetcher.Fetch(ctx, sitemapURL)
	if !resp.Done || resp.StatusCode != 200 {
		return nil
	}
	body := resp.Body

	var index sitemapIndex
	if err := xml.Unmarshal([]byte(body), &index); err == nil && len(index.Sitemaps) > 0 {
		var urls []string
		for _, sub := range index.Sitemaps {
			loc := strings.TrimSpace(sub.Loc)
			if loc == "" {
				continue
			}
			urls = append(urls, resolveSitemap(ctx, fetcher, loc, host, depth+1)...)
		}
		return urls
	}

	var set urlSet
	if err := xml.Unmarshal([]byte(body), &set); err == nil && len(set.URLs) > 0 {
		var urls []string
		for _, entry := range set.URLs {
			if loc := filterHost(entry.Loc, host); loc != "" {
				urls = append(urls, loc)
			}
		}
		return urls
	}

	// Malformed XML still often carries usable <loc> entries.
	var urls []string
	for _, m := range locPattern.FindAllStringSubmatch(body, -1) {
		if loc := filterHost(m[1], host); loc != "" {
			urls = append(urls, loc)
		}
	}
	return urls
}

// ResolveAll resolves every sitemap in the list and returns the combined,
// deduplicated page URLs.
func ResolveAll(ctx context.Context, fetcher Fetcher, sitemapURLs []string, host string) []string {
	seen := make(map[string]struct{})
	var urls []string
	for _, sm := range sitemapURLs {
		for _, u := range ResolveSitemap(ctx, fetcher, sm, host) {
			if _, dup := seen[u]; dup {
				continue
			}
			seen[u] = struct{}{}
			urls = append(urls, u)
		}
	}
	return urls
}

// filterHost trims the URL and keeps it only when it lives on the crawl
// host; an empty host keeps everything.
func filterHost(rawURL, host string) string {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return ""
	}
	if host == "" {
		return rawURL
	}
	u, err := url.Parse(rawURL)
	if err != nil || !strings.EqualFold(u.Host, host) {
		return ""
	}
	return rawURL
}
