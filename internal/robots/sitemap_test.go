package robots

import (
	"context"
	"testing"

	"github.com/b3rt1ng/octocrawl/internal/fetch"
)

func TestDiscoverSitemaps(t *testing.T) {
	t.Parallel()

	stub := &stubFetcher{responses: map[string]*fetch.Response{
		"http://example.com/sitemap.xml": okResponse(
			`<?xml version="1.0"?><urlset></urlset>`, "application/xml"),
		// Answers 200 but is not XML; must be skipped.
		"http://example.com/sitemap1.xml": okResponse(
			`<html>soft 404</html>`, "text/html"),
		// No declared type but an XML prolog; must be kept.
		"http://example.com/sitemaps.xml": okResponse(
			`<?xml version="1.0"?><urlset></urlset>`, "unknown"),
	}}

	got := DiscoverSitemaps(context.Background(), stub, "http://example.com/")

	want := []string{
		"http://example.com/sitemap.xml",
		"http://example.com/sitemaps.xml",
	}
	if len(got) != len(want) {
		t.Fatalf("DiscoverSitemaps() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("sitemap[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestResolveSitemapURLSet(t *testing.T) {
	t.Parallel()

	stub := &stubFetcher{responses: map[string]*fetch.Response{
		"http://example.com/sitemap.xml": okResponse(`<?xml version="1.0"?>
<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
  <url><loc>http://example.com/page1</loc></url>
  <url><loc> http://example.com/page2 </loc></url>
  <url><loc>http://other.example.org/elsewhere</loc></url>
</urlset>`, "application/xml"),
	}}

	got := ResolveSitemap(context.Background(), stub, "http://example.com/sitemap.xml", "example.com")

	want := []string{"http://example.com/page1", "http://example.com/page2"}
	if len(got) != len(want) {
		t.Fatalf("ResolveSitemap() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("url[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestResolveSitemapIndex(t *testing.T) {
	t.Parallel()

	stub := &stubFetcher{responses: map[string]*fetch.Response{
		"http://example.com/sitemap_index.xml": okResponse(`<?xml version="1.0"?>
<sitemapindex xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
  <sitemap><loc>http://example.com/sitemap-posts.xml</loc></sitemap>
  <sitemap><loc>http://example.com/sitemap-pages.xml</loc></sitemap>
</sitemapindex>`, "application/xml"),
		"http://example.com/sitemap-posts.xml": okResponse(`<?xml version="1.0"?>
<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
  <url><loc>http://example.com/post/1</loc></url>
</urlset>`, "application/xml"),
		"http://example.com/sitemap-pages.xml": okResponse(`<?xml version="1.0"?>
<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
  <url><loc>http://example.com/about</loc></url>
</urlset>`, "application/xml"),
	}}

	got := ResolveSitemap(context.Background(), stub, "http://example.com/sitemap_index.xml", "example.com")

	want := []string{"http://example.com/post/1", "http://example.com/about"}
	if len(got) != len(want) {
		t.Fatalf("ResolveSitemap() = %v, want %v", got, want)
	}
}

func TestResolveSitemapDepthBound(t *testing.T) {
	t.Parallel()

	// A sitemap index referencing itself must terminate.
	stub := &stubFetcher{responses: map[string]*fetch.Response{
		"http://example.com/loop.xml": okResponse(`<?xml version="1.0"?>
<sitemapindex xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
  <sitemap><loc>http://example.com/loop.xml</loc></sitemap>
</sitemapindex>`, "application/xml"),
	}}

	if got := ResolveSitemap(context.Background(), stub, "http://example.com/loop.xml", "example.com"); len(got) != 0 {
		t.Errorf("ResolveSitemap() = %v, want none", got)
	}
}

func TestResolveSitemapRegexFallback(t *testing.T) {
	t.Parallel()

	// Unclosed root element defeats the XML parser; <loc> extraction
	// still works.
	stub := &stubFetcher{responses: map[string]*fetch.Response{
		"http://example.com/broken.xml": okResponse(
			`<urlset><url><loc>http://example.com/rescued</loc></url>`,
			"application/xml"),
	}}

	got := ResolveSitemap(context.Background(), stub, "http://example.com/broken.xml", "example.com")
	if len(got) != 1 || got[0] != "http://example.com/rescued" {
		t.Errorf("ResolveSitemap() = %v, want the rescued URL", got)
	}
}

func TestResolveAllDeduplicates(t *testing.T) {
	t.Parallel()

	body := `<?xml version="1.0"?>
<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
  <url><loc>http://example.com/shared</loc></url>
</urlset>`
	stub := &stubFetcher{responses: map[string]*fetch.Response{
		"http://example.com/a.xml": okResponse(body, "application/xml"),
		"http://example.com/b.xml": okResponse(body, "application/xml"),
	}}

	got := ResolveAll(context.Background(), stub,
		[]string{"http://example.com/a.xml", "http://example.com/b.xml"}, "example.com")
	if len(got) != 1 {
		t.Errorf("ResolveAll() = %v, want one deduplicated URL", got)
	}
}
