package robots

import (
	"context"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/temoto/robotstxt"

	"github.com/b3rt1ng/octocrawl/internal/fetch"
)

// Fetcher is the HTTP dependency of this package. *fetch.Client satisfies
// it; tests substitute stubs.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) *fetch.Response
}

// Info is the parsed content of a site's robots.txt. The path lists are
// informational, resolved to absolute URLs with trailing wildcards
// removed; Allowed-path URLs double as crawl seeds since they often name
// sections the site wants indexed.
type Info struct {
	// Found reports whether a robots.txt was served with status 200.
	Found bool

	// DisallowedPaths holds every Disallow rule as an absolute URL.
	DisallowedPaths []string

	// AllowedPaths holds every Allow rule as an absolute URL.
	AllowedPaths []string

	// Sitemaps holds every Sitemap directive verbatim.
	Sitemaps []string

	// CrawlDelay is the delay requested for the crawling agent, zero when
	// absent.
	CrawlDelay time.Duration

	group *robotstxt.Group
}

// Allows reports whether the site's rules permit fetching the path. With
// no robots.txt (or no matching group) everything is allowed.
func (i *Info) Allows(path string) bool {
	if i.group == nil {
		return true
	}
	return i.group.Test(path)
}

// FetchInfo retrieves and parses the robots.txt of the start URL's site.
// Any failure, including a missing file, yields an empty permissive Info
// rather than an error; robots handling must never abort a crawl.
func FetchInfo(ctx context.Context, fetcher Fetcher, startURL, userAgent string) *Info {
	info := &Info{}

	base, err := url.Parse(startURL)
	if err != nil {
		return info
	}
	robotsURL := base.ResolveReference(&url.URL{Path: "/robots.txt"})

	resp := fetcher.Fetch(ctx, robotsURL.String())
	if !resp.Done || resp.StatusCode != 200 {
		return info
	}
	info.Found = true

	if data, err := robotstxt.FromStatusAndBytes(resp.StatusCode, []byte(resp.Body)); err == nil {
		info.group = data.FindGroup(userAgent)
		if info.group != nil {
			info.CrawlDelay = info.group.CrawlDelay
		}
	}

	// The library answers Test() queries but does not expose the raw
	// rule lists, so the informational lists come from a line scan.
	info.scanDirectives(base, resp.Body)
	return info
}

// scanDirectives collects the directive lists across every agent group.
func (i *Info) scanDirectives(base *url.URL, body string) {
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		directive, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		directive = strings.ToLower(strings.TrimSpace(directive))
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}

		switch directive {
		case "disallow":
			if u, ok := resolveRulePath(base, value); ok {
				i.DisallowedPaths = append(i.DisallowedPaths, u)
			}
		case "allow":
			if u, ok := resolveRulePath(base, value); ok {
				i.AllowedPaths = append(i.AllowedPaths, u)
			}
		case "sitemap":
			i.Sitemaps = append(i.Sitemaps, value)
		case "crawl-delay":
			if i.CrawlDelay == 0 {
				if seconds, err := strconv.ParseFloat(value, 64); err == nil {
					i.CrawlDelay = time.Duration(seconds * float64(time.Second))
				}
			}
		}
	}
}

// resolveRulePath turns a Disallow/Allow rule value into an absolute URL,
// dropping trailing wildcards. Rules not rooted at "/" are skipped.
func resolveRulePath(base *url.URL, value string) (string, bool) {
	if !strings.HasPrefix(value, "/") {
		return "", false
	}
	ref, err := url.Parse(strings.TrimRight(value, "*"))
	if err != nil {
		return "", false
	}
	return base.ResolveReference(ref).String(), true
}
