package crawler

import (
	"encoding/json"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// DirectoryListingMarker is the title fragment used to recognize
// auto-generated directory index pages. This is a weak, server-dependent
// heuristic (Apache/nginx English default), kept deliberately as-is: a
// miss only means the page is parsed as ordinary HTML.
const DirectoryListingMarker = "Index of /"

// maxJSONDepth bounds recursion when walking JSON documents for links.
const maxJSONDepth = 10

// jsonLinkKeys are the object keys whose string values are treated as
// candidate links in JSON responses.
var jsonLinkKeys = map[string]bool{
	"href":     true,
	"url":      true,
	"src":      true,
	"link":     true,
	"guid":     true,
	"uri":      true,
	"path":     true,
	"location": true,
}

// styleURLPattern matches url(...) references inside CSS, with optional
// quoting.
var styleURLPattern = regexp.MustCompile(`(?i)url\(\s*["']?([^"')]+?)["']?\s*\)`)

// linkAttributes maps the HTML tags scanned for links to the attribute
// carrying the reference.
var linkAttributes = map[string]string{
	"a":      "href",
	"link":   "href",
	"img":    "src",
	"script": "src",
	"iframe": "src",
	"source": "src",
	"video":  "src",
	"audio":  "src",
	"embed":  "src",
}

// Extractor produces same-domain links and keyword occurrence counts from
// a fetched response body. Results are computed at most once per response
// and cached, since both capabilities may be invoked on the same page.
type Extractor interface {
	// InternalLinks returns every same-host link found in the body,
	// resolved against the page URL, with fragments stripped.
	InternalLinks() []string

	// FindKeywords counts case-insensitive occurrences of each keyword
	// in the page's plain-text content, omitting zero counts.
	FindKeywords(keywords []string) map[string]int
}

// NewExtractor selects an extractor for the response by content type:
// HTML bodies get the markup extractor (or the directory-listing variant
// when the title carries the listing marker), JSON bodies get the JSON
// walker, anything else gets nil and no links are followed.
func NewExtractor(body, contentType, pageURL string) Extractor {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil
	}

	switch {
	case strings.Contains(contentType, "html"):
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
		if err != nil {
			return nil
		}
		if strings.Contains(doc.Find("title").First().Text(), DirectoryListingMarker) {
			return &dirListingExtractor{doc: doc, base: base, raw: body}
		}
		return &htmlExtractor{doc: doc, base: base}
	case strings.Contains(contentType, "json"):
		return newJSONExtractor(body, base)
	default:
		return nil
	}
}

// htmlExtractor extracts links from ordinary HTML markup.
type htmlExtractor struct {
	doc  *goquery.Document
	base *url.URL

	links  []string
	parsed bool
}

// InternalLinks implements Extractor.
func (e *htmlExtractor) InternalLinks() []string {
	if e.parsed {
		return e.links
	}
	e.parsed = true

	seen := make(map[string]struct{})

	for tag, attr := range linkAttributes {
		e.doc.Find(tag + "[" + attr + "]").Each(func(_ int, sel *goquery.Selection) {
			href, _ := sel.Attr(attr)
			if link, ok := resolveSameHost(e.base, href); ok {
				seen[link] = struct{}{}
			}
		})
	}

	// url(...) references inside <style> blocks and style attributes.
	var styleContent strings.Builder
	e.doc.Find("style").Each(func(_ int, sel *goquery.Selection) {
		styleContent.WriteString(sel.Text())
		styleContent.WriteString(" ")
	})
	e.doc.Find("[style]").Each(func(_ int, sel *goquery.Selection) {
		style, _ := sel.Attr("style")
		styleContent.WriteString(style)
		styleContent.WriteString(" ")
	})
	for _, m := range styleURLPattern.FindAllStringSubmatch(styleContent.String(), -1) {
		if link, ok := resolveSameHost(e.base, m[1]); ok {
			seen[link] = struct{}{}
		}
	}

	e.links = setToSlice(seen)
	return e.links
}

// FindKeywords implements Extractor using the tag-stripped page text.
func (e *htmlExtractor) FindKeywords(keywords []string) map[string]int {
	return countKeywords(e.doc.Text(), keywords)
}

// dirListingExtractor treats the page as an auto-generated directory
// index: only anchors count, and parent-directory plus sort-query links
// are ignored.
type dirListingExtractor struct {
	doc  *goquery.Document
	base *url.URL
	raw  string

	links  []string
	parsed bool
}

// InternalLinks implements Extractor.
func (e *dirListingExtractor) InternalLinks() []string {
	if e.parsed {
		return e.links
	}
	e.parsed = true

	seen := make(map[string]struct{})
	e.doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		if href == "" || href == "/" || href == "../" || strings.HasPrefix(href, "?") {
			return
		}
		if link, ok := resolveSameHost(e.base, href); ok {
			seen[link] = struct{}{}
		}
	})

	e.links = setToSlice(seen)
	return e.links
}

// FindKeywords implements Extractor using the raw body; listing pages
// carry no meaningful prose, so tag stripping is not worth a second pass.
func (e *dirListingExtractor) FindKeywords(keywords []string) map[string]int {
	return countKeywords(e.raw, keywords)
}

// jsonExtractor recursively walks a JSON document for link-like values.
type jsonExtractor struct {
	base *url.URL
	raw  string
	data any

	links  []string
	parsed bool
}

// newJSONExtractor parses the body; a malformed document yields an
// extractor with no data and therefore no links, never a failure.
func newJSONExtractor(body string, base *url.URL) *jsonExtractor {
	e := &jsonExtractor{base: base, raw: body}
	if err := json.Unmarshal([]byte(body), &e.data); err != nil {
		e.data = nil
	}
	return e
}

// InternalLinks implements Extractor.
func (e *jsonExtractor) InternalLinks() []string {
	if e.parsed {
		return e.links
	}
	e.parsed = true

	candidates := make(map[string]struct{})
	e.walk(e.data, 0, candidates)

	seen := make(map[string]struct{})
	for candidate := range candidates {
		cleaned := strings.Trim(candidate, "\"',\\()")
		if cleaned == "" {
			continue
		}
		if link, ok := resolveSameHost(e.base, cleaned); ok {
			seen[link] = struct{}{}
		}
	}

	e.links = setToSlice(seen)
	return e.links
}

// walk collects candidate link strings from maps and sequences, bounded
// by maxJSONDepth.
func (e *jsonExtractor) walk(node any, depth int, out map[string]struct{}) {
	if depth > maxJSONDepth {
		return
	}

	switch v := node.(type) {
	case map[string]any:
		for key, value := range v {
			if s, ok := value.(string); ok && jsonLinkKeys[key] {
				out[s] = struct{}{}
				continue
			}
			e.walk(value, depth+1, out)
		}
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok {
				if looksLikeLink(s) {
					out[s] = struct{}{}
				}
				continue
			}
			e.walk(item, depth+1, out)
		}
	}
}

// FindKeywords implements Extractor using the raw body.
func (e *jsonExtractor) FindKeywords(keywords []string) map[string]int {
	return countKeywords(e.raw, keywords)
}

// looksLikeLink reports whether a bare string element is plausibly a URL
// or an absolute path.
func looksLikeLink(s string) bool {
	return strings.HasPrefix(s, "/") ||
		strings.HasPrefix(s, "http://") ||
		strings.HasPrefix(s, "https://")
}

// resolveSameHost resolves href against base and returns it with the
// fragment stripped, accepting only http(s) links on the same host.
func resolveSameHost(base *url.URL, href string) (string, bool) {
	href = strings.TrimSpace(href)
	if href == "" || href == "#" {
		return "", false
	}
	for _, prefix := range []string{"mailto:", "tel:", "javascript:", "data:", "#"} {
		if strings.HasPrefix(href, prefix) {
			return "", false
		}
	}

	u, err := url.Parse(href)
	if err != nil {
		return "", false
	}

	resolved := base.ResolveReference(u)
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return "", false
	}
	if !strings.EqualFold(resolved.Host, base.Host) {
		return "", false
	}

	resolved.Fragment = ""
	resolved.RawFragment = ""
	return resolved.String(), true
}

// countKeywords counts case-insensitive substring occurrences, omitting
// keywords that never appear.
func countKeywords(text string, keywords []string) map[string]int {
	found := make(map[string]int)
	if text == "" || len(keywords) == 0 {
		return found
	}

	lower := strings.ToLower(text)
	for _, keyword := range keywords {
		if keyword == "" {
			continue
		}
		if n := strings.Count(lower, strings.ToLower(keyword)); n > 0 {
			found[keyword] = n
		}
	}
	return found
}

// setToSlice returns the set's members in arbitrary order. Order is not
// significant to callers; the frontier deduplicates anyway.
func setToSlice(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for item := range set {
		out = append(out, item)
	}
	return out
}
