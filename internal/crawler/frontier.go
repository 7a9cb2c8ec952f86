package crawler

import "sync"

// Frontier is the work queue of URLs awaiting fetch, combined with the set
// of every canonical URL ever enqueued. The visited set guarantees each
// canonical URL is scheduled at most once across the whole crawl lifetime,
// including across discovery passes that refill the same frontier.
//
// Dequeue blocks until an item is available or the frontier is closed.
// Wait is a join barrier: it returns once the queue is empty and every
// dequeued item has been marked done, which lets the discovery loop run
// discrete passes over a long-lived frontier (the semantics of an
// asyncio-style queue join).
type Frontier struct {
	mu   sync.Mutex
	cond *sync.Cond

	queue    []string
	visited  map[string]struct{}
	inflight int
	closed   bool
}

// NewFrontier creates an empty frontier.
func NewFrontier() *Frontier {
	f := &Frontier{
		visited: make(map[string]struct{}),
	}
	f.cond = sync.NewCond(&f.mu)
	return f
}

// Enqueue canonicalizes the URL and appends it to the queue unless its
// canonical form was ever enqueued before or the frontier is closed.
// Reports whether the URL was accepted.
func (f *Frontier) Enqueue(rawURL string) bool {
	canonical := Canonicalize(rawURL)

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return false
	}
	if _, seen := f.visited[canonical]; seen {
		return false
	}
	f.visited[canonical] = struct{}{}
	f.queue = append(f.queue, canonical)
	f.cond.Broadcast()
	return true
}

// Dequeue removes and returns the oldest queued URL, blocking until one is
// available. It returns ok=false as soon as the frontier is closed, even
// if a backlog remains: a cancelled crawl must not hand out URLs that were
// queued but never probed. Every successful Dequeue must be paired with a
// Done call.
func (f *Frontier) Dequeue() (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for len(f.queue) == 0 && !f.closed {
		f.cond.Wait()
	}
	if f.closed || len(f.queue) == 0 {
		return "", false
	}

	item := f.queue[0]
	f.queue = f.queue[1:]
	f.inflight++
	return item, true
}

// Done marks a previously dequeued item as fully processed.
func (f *Frontier) Done() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.inflight--
	f.cond.Broadcast()
}

// Wait blocks until the queue is empty and no dequeued item is still in
// flight, or until the frontier is closed. This is the barrier between
// discovery passes.
func (f *Frontier) Wait() {
	f.mu.Lock()
	defer f.mu.Unlock()

	for (len(f.queue) > 0 || f.inflight > 0) && !f.closed {
		f.cond.Wait()
	}
}

// Close stops intake, discards any queued backlog, and wakes all blocked
// workers. Enqueue becomes a no-op and Dequeue returns ok=false
// immediately.
func (f *Frontier) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.closed = true
	f.queue = nil
	f.cond.Broadcast()
}

// Seen reports whether the canonical form of the URL was ever enqueued.
func (f *Frontier) Seen(rawURL string) bool {
	canonical := Canonicalize(rawURL)

	f.mu.Lock()
	defer f.mu.Unlock()

	_, ok := f.visited[canonical]
	return ok
}

// VisitedCount returns the number of distinct canonical URLs ever
// enqueued.
func (f *Frontier) VisitedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.visited)
}
