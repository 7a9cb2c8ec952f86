package crawler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/b3rt1ng/octocrawl/internal/fetch"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// countingHandler wraps an http.Handler and records how many times each
// path was requested.
type countingHandler struct {
	mu     sync.Mutex
	counts map[string]int
	next   http.Handler
}

func newCountingHandler(next http.Handler) *countingHandler {
	return &countingHandler{counts: make(map[string]int), next: next}
}

func (h *countingHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	h.counts[r.URL.Path]++
	h.mu.Unlock()
	h.next.ServeHTTP(w, r)
}

func (h *countingHandler) count(path string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.counts[path]
}

func newTestSite() *countingHandler {
	mux := http.NewServeMux()

	serveHTML := func(body string) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			w.Header().Set("X-Powered-By", "test-stack/1.0")
			io.WriteString(w, body)
		}
	}

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		serveHTML(`<html><head><title>Home</title>
			<meta name="generator" content="SiteBuilder 4.2">
		</head><body>
			<a href="/a">a</a>
			<a href="/b?x=1#frag">b</a>
			<a href="/missing">missing</a>
		</body></html>`)(w, r)
	})
	mux.Handle("/a", serveHTML(`<html><body>
		<a href="/">home</a>
		<a href="/dir/file.txt">file</a>
	</body></html>`))
	mux.HandleFunc("/b", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "teapot", http.StatusTeapot)
	})
	mux.Handle("/dir/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/dir/":
			serveHTML(`<html><head><title>Index of /dir</title></head><body>
				<a href="../">Parent Directory</a>
				<a href="file.txt">file.txt</a>
				<a href="extra.txt">extra.txt</a>
			</body></html>`)(w, r)
		case "/dir/file.txt", "/dir/extra.txt":
			w.Header().Set("Content-Type", "text/plain")
			io.WriteString(w, "plain contents with secret inside")
		default:
			http.NotFound(w, r)
		}
	}))

	return newCountingHandler(mux)
}

func TestEngineRun(t *testing.T) {
	t.Parallel()

	site := newTestSite()
	srv := httptest.NewServer(site)
	defer srv.Close()

	engine := NewEngine(fetch.New(),
		WithWorkers(8),
		WithKeywords([]string{"secret"}),
		WithLogger(discardLogger()))

	result, err := engine.Run(context.Background(), srv.URL+"/")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	wantPages := []string{
		srv.URL + "/",
		srv.URL + "/a",
		srv.URL + "/b",
		srv.URL + "/missing",
		srv.URL + "/dir/",
		srv.URL + "/dir/file.txt",
		srv.URL + "/dir/extra.txt",
	}
	if result.TotalURLs != len(wantPages) {
		t.Errorf("TotalURLs = %d, want %d (pages: %v)", result.TotalURLs, len(wantPages), result.Pages)
	}
	for _, u := range wantPages {
		if _, ok := result.Pages[u]; !ok {
			t.Errorf("page %q missing from result", u)
		}
	}

	// The query/fragment variant collapses onto the canonical URL.
	if page := result.Pages[srv.URL+"/b"]; page == nil || page.StatusCode != http.StatusTeapot {
		t.Errorf("page /b = %+v, want status %d", page, http.StatusTeapot)
	}

	// Fetch-once: every path requested exactly once, including "/"
	// which is linked again from /a, and "/dir/" which only the
	// discovery pass produces.
	for _, path := range []string{"/", "/a", "/b", "/dir/", "/dir/file.txt", "/dir/extra.txt"} {
		if n := site.count(path); n != 1 {
			t.Errorf("path %q fetched %d times, want 1", path, n)
		}
	}

	// Keyword counting on the fetched text files does not happen (no
	// extractor for text/plain); HTML pages carry no "secret".
	if urls := result.URLsWithKeywords(); len(urls) != 0 {
		t.Errorf("URLsWithKeywords() = %v, want none", urls)
	}

	if got := result.Technologies["X-Powered-By"]; got != "test-stack/1.0" {
		t.Errorf(`Technologies["X-Powered-By"] = %q, want "test-stack/1.0"`, got)
	}
	if got := result.Technologies["Generator (Meta)"]; got != "SiteBuilder 4.2" {
		t.Errorf(`Technologies["Generator (Meta)"] = %q, want "SiteBuilder 4.2"`, got)
	}

	if result.Duration <= 0 {
		t.Error("Duration not recorded")
	}
}

// stubFetcher serves canned responses and can panic or block on demand.
type stubFetcher struct {
	responses map[string]*fetch.Response
	panicOn   string
	blockOn   string
}

func (s *stubFetcher) Fetch(ctx context.Context, rawURL string) *fetch.Response {
	if rawURL == s.panicOn {
		panic("malformed response")
	}
	if rawURL == s.blockOn {
		<-ctx.Done()
		return &fetch.Response{ContentType: "error", Headers: http.Header{}}
	}
	if resp, ok := s.responses[rawURL]; ok {
		return resp
	}
	return &fetch.Response{StatusCode: 404, ContentType: "unknown", Headers: http.Header{}}
}

func htmlResponse(body string) *fetch.Response {
	return &fetch.Response{
		Done:        true,
		StatusCode:  200,
		ContentType: "text/html",
		Body:        body,
		Headers:     http.Header{},
	}
}

func TestEnginePanicContainment(t *testing.T) {
	t.Parallel()

	stub := &stubFetcher{
		responses: map[string]*fetch.Response{
			"http://example.com/": htmlResponse(
				`<html><body><a href="/boom">boom</a><a href="/ok">ok</a></body></html>`),
			"http://example.com/ok": htmlResponse(`<html><body>fine</body></html>`),
		},
		panicOn: "http://example.com/boom",
	}

	engine := NewEngine(stub, WithWorkers(4), WithLogger(discardLogger()))
	result, err := engine.Run(context.Background(), "http://example.com/")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	boom := result.Pages["http://example.com/boom"]
	if boom == nil {
		t.Fatal("panicking page missing from result")
	}
	if !boom.Failed() {
		t.Errorf("panicking page not recorded as failed: %+v", boom)
	}
	if result.Pages["http://example.com/ok"] == nil {
		t.Error("healthy page missing; panic leaked past one worker")
	}
}

func TestEngineCancellation(t *testing.T) {
	t.Parallel()

	stub := &stubFetcher{
		responses: map[string]*fetch.Response{
			"http://example.com/": htmlResponse(
				`<html><body><a href="/slow">slow</a></body></html>`),
		},
		blockOn: "http://example.com/slow",
	}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(30 * time.Millisecond)
		cancel()
	}()

	engine := NewEngine(stub, WithWorkers(2), WithLogger(discardLogger()))
	result, err := engine.Run(ctx, "http://example.com/")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Run() error = %v, want context.Canceled", err)
	}
	if result == nil {
		t.Fatal("cancelled Run returned no partial result")
	}
	if _, ok := result.Pages["http://example.com/"]; !ok {
		t.Error("partial result missing the page fetched before cancellation")
	}
}

// gateFetcher serves one root page, then parks every other fetch until
// the context is cancelled, signalling the first time that happens.
type gateFetcher struct {
	root     string
	rootBody *fetch.Response

	once    sync.Once
	blocked chan struct{}
}

func (g *gateFetcher) Fetch(ctx context.Context, rawURL string) *fetch.Response {
	if rawURL == g.root {
		return g.rootBody
	}
	g.once.Do(func() { close(g.blocked) })
	<-ctx.Done()
	return &fetch.Response{ContentType: "error", Headers: http.Header{}}
}

func TestEngineCancellationDropsUnprobedURLs(t *testing.T) {
	t.Parallel()

	var links strings.Builder
	for i := 0; i < 50; i++ {
		fmt.Fprintf(&links, `<a href="/child-%d">c</a>`, i)
	}

	stub := &gateFetcher{
		root:     "http://example.com/",
		rootBody: htmlResponse(`<html><body>` + links.String() + `</body></html>`),
		blocked:  make(chan struct{}),
	}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-stub.blocked
		cancel()
	}()

	engine := NewEngine(stub, WithWorkers(2), WithLogger(discardLogger()))
	result, err := engine.Run(ctx, "http://example.com/")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Run() error = %v, want context.Canceled", err)
	}

	// Only the root was actually probed; the enqueued children must not
	// surface as error-status pages in the partial result.
	if _, ok := result.Pages["http://example.com/"]; !ok {
		t.Error("partial result missing the page fetched before cancellation")
	}
	for u, page := range result.Pages {
		if u != "http://example.com/" {
			t.Errorf("never-probed URL %q recorded as %+v", u, page)
		}
	}
}

func TestEngineSeeds(t *testing.T) {
	t.Parallel()

	stub := &stubFetcher{
		responses: map[string]*fetch.Response{
			"http://example.com/":       htmlResponse(`<html><body>home</body></html>`),
			"http://example.com/hidden": htmlResponse(`<html><body>hidden</body></html>`),
		},
	}

	engine := NewEngine(stub, WithWorkers(2), WithLogger(discardLogger()))
	result, err := engine.Run(context.Background(),
		"http://example.com/", "http://example.com/hidden")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if _, ok := result.Pages["http://example.com/hidden"]; !ok {
		t.Error("seed URL not crawled")
	}
	if !strings.HasPrefix(result.Domain, "example.com") {
		t.Errorf("Domain = %q, want example.com", result.Domain)
	}
}
