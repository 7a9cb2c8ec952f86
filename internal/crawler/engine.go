package crawler

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/b3rt1ng/octocrawl/internal/fetch"
	"github.com/b3rt1ng/octocrawl/internal/fingerprint"
	"github.com/b3rt1ng/octocrawl/internal/model"
)

// DefaultWorkers is the worker count used when none is configured.
const DefaultWorkers = 80

// Fetcher is the engine's view of the HTTP layer. *fetch.Client satisfies
// it; tests substitute stubs.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) *fetch.Response
}

// Engine runs a bounded-concurrency crawl of a single host: a pool of
// workers drains the frontier, each fetched page is recorded in the page
// map and the sitemap tree, and a discovery loop re-probes tree-implied
// directory URLs until no new URL is produced.
type Engine struct {
	fetcher  Fetcher
	workers  int
	keywords []string
	logger   *slog.Logger

	frontier *Frontier
	tech     *technologyAccumulator

	mu    sync.Mutex
	pages map[string]*model.PageResult
	tree  *model.Sitemap
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithWorkers sets the worker pool size. Values below one fall back to
// the default.
func WithWorkers(n int) EngineOption {
	return func(e *Engine) {
		if n > 0 {
			e.workers = n
		}
	}
}

// WithKeywords sets the keywords counted on every parsed page.
func WithKeywords(keywords []string) EngineOption {
	return func(e *Engine) {
		e.keywords = keywords
	}
}

// WithLogger sets the structured logger the engine reports progress to.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		e.logger = logger
	}
}

// NewEngine creates a crawl engine using the given fetcher.
func NewEngine(fetcher Fetcher, opts ...EngineOption) *Engine {
	e := &Engine{
		fetcher:  fetcher,
		workers:  DefaultWorkers,
		logger:   slog.Default(),
		frontier: NewFrontier(),
		tech:     newTechnologyAccumulator(),
		pages:    make(map[string]*model.PageResult),
		tree:     model.NewSitemap(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run crawls the start URL's host to a fixpoint and returns the aggregate
// result. Extra seed URLs (from robots.txt, sitemaps, or configuration)
// join the initial frontier alongside the start URL.
//
// On context cancellation Run drains promptly and returns the partial
// result together with ctx.Err(), so callers can still report what was
// gathered.
func (e *Engine) Run(ctx context.Context, startURL string, seeds ...string) (*model.CrawlContext, error) {
	base, err := url.Parse(startURL)
	if err != nil {
		return nil, fmt.Errorf("parse start url %q: %w", startURL, err)
	}

	start := time.Now()

	e.frontier.Enqueue(startURL)
	for _, seed := range seeds {
		e.frontier.Enqueue(seed)
	}

	// A cancelled context closes the frontier, which unblocks every
	// worker and the discovery loop's join barrier.
	watcherDone := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			e.frontier.Close()
		case <-watcherDone:
		}
	}()

	var wg sync.WaitGroup
	for i := 0; i < e.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			e.worker(ctx)
		}()
	}

	e.discoveryLoop(ctx, base)

	e.frontier.Close()
	wg.Wait()
	close(watcherDone)

	result := &model.CrawlContext{
		StartURL:     startURL,
		Domain:       base.Host,
		Pages:        e.pages,
		Tree:         e.tree,
		Technologies: e.tech.Snapshot(),
		TotalURLs:    len(e.pages),
		Duration:     time.Since(start),
	}

	e.logger.Info("crawl finished",
		"domain", result.Domain,
		"urls", result.TotalURLs,
		"duration", result.Duration.Round(time.Millisecond))

	return result, ctx.Err()
}

// discoveryLoop waits for the frontier to drain, then enqueues every
// directory URL implied by the tree that has not been visited yet. It
// returns once a full pass produces no new work, the crawl's fixpoint.
func (e *Engine) discoveryLoop(ctx context.Context, base *url.URL) {
	for pass := 1; ; pass++ {
		e.frontier.Wait()
		if ctx.Err() != nil {
			return
		}

		enqueued := 0
		for _, dir := range e.tree.DirectoryURLs(base) {
			if e.frontier.Enqueue(dir) {
				enqueued++
			}
		}
		if enqueued == 0 {
			return
		}
		e.logger.Debug("discovery pass", "pass", pass, "new_urls", enqueued)
	}
}

// worker drains the frontier until it is closed and empty.
func (e *Engine) worker(ctx context.Context) {
	for {
		rawURL, ok := e.frontier.Dequeue()
		if !ok {
			return
		}
		e.process(ctx, rawURL)
		e.frontier.Done()
	}
}

// process fetches one URL and records the outcome. A panic while parsing
// a hostile response body is contained here: it fails that one page, not
// the crawl.
func (e *Engine) process(ctx context.Context, rawURL string) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("worker panic recovered", "url", rawURL, "panic", r)
			e.record(rawURL, &model.PageResult{URL: rawURL, ContentType: "error"})
		}
	}()

	resp := e.fetcher.Fetch(ctx, rawURL)

	// An item in flight when the crawl is cancelled is abandoned, not
	// recorded as a failure of that URL.
	if !resp.Done && ctx.Err() != nil {
		return
	}

	page := &model.PageResult{
		URL:         rawURL,
		StatusCode:  resp.StatusCode,
		ContentType: resp.ContentType,
	}

	if resp.Done {
		e.tech.Merge(fingerprint.Detect(resp.Headers, resp.Body))

		if extractor := NewExtractor(resp.Body, resp.ContentType, rawURL); extractor != nil {
			if len(e.keywords) > 0 {
				page.Keywords = extractor.FindKeywords(e.keywords)
			}
			for _, link := range extractor.InternalLinks() {
				e.frontier.Enqueue(link)
			}
		}
	} else {
		e.logger.Debug("fetch failed", "url", rawURL, "status", resp.StatusCode)
	}

	e.record(rawURL, page)
}

// record stores the page result in the map and the tree as one atomic
// step, so no observer ever sees a URL in one structure but not the other.
func (e *Engine) record(rawURL string, page *model.PageResult) {
	canonical := Canonicalize(rawURL)

	e.mu.Lock()
	defer e.mu.Unlock()
	e.pages[canonical] = page
	e.tree.Insert(canonical, page)
}
