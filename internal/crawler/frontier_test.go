package crawler

import (
	"sync"
	"testing"
	"time"
)

func TestFrontierDedup(t *testing.T) {
	t.Parallel()

	f := NewFrontier()

	if !f.Enqueue("http://example.com/page") {
		t.Fatal("first Enqueue rejected")
	}
	if f.Enqueue("http://example.com/page") {
		t.Error("duplicate Enqueue accepted")
	}
	if f.Enqueue("http://example.com/page?sort=asc") {
		t.Error("query variant of visited URL accepted")
	}
	if f.Enqueue("http://example.com/page#top") {
		t.Error("fragment variant of visited URL accepted")
	}

	if got := f.VisitedCount(); got != 1 {
		t.Errorf("VisitedCount() = %d, want 1", got)
	}
	if !f.Seen("http://example.com/page?anything=1") {
		t.Error("Seen() = false for canonical variant")
	}
}

func TestFrontierFIFO(t *testing.T) {
	t.Parallel()

	f := NewFrontier()
	urls := []string{
		"http://example.com/a",
		"http://example.com/b",
		"http://example.com/c",
	}
	for _, u := range urls {
		f.Enqueue(u)
	}

	for _, want := range urls {
		got, ok := f.Dequeue()
		if !ok {
			t.Fatal("Dequeue() ok = false with items queued")
		}
		if got != want {
			t.Errorf("Dequeue() = %q, want %q", got, want)
		}
		f.Done()
	}
}

func TestFrontierWaitBarrier(t *testing.T) {
	t.Parallel()

	f := NewFrontier()
	f.Enqueue("http://example.com/a")

	processed := make(chan struct{})
	go func() {
		u, ok := f.Dequeue()
		if !ok || u != "http://example.com/a" {
			t.Errorf("Dequeue() = %q, %v", u, ok)
		}
		time.Sleep(20 * time.Millisecond)
		close(processed)
		f.Done()
	}()

	f.Wait()

	select {
	case <-processed:
	default:
		t.Error("Wait() returned before in-flight item was done")
	}
}

func TestFrontierWaitSpansRefill(t *testing.T) {
	t.Parallel()

	f := NewFrontier()
	f.Enqueue("http://example.com/a")

	// Worker that discovers one more URL while processing the first.
	go func() {
		for {
			_, ok := f.Dequeue()
			if !ok {
				return
			}
			if f.VisitedCount() == 1 {
				f.Enqueue("http://example.com/b")
			}
			f.Done()
		}
	}()

	f.Wait()
	if got := f.VisitedCount(); got != 2 {
		t.Errorf("VisitedCount() after Wait = %d, want 2", got)
	}
	f.Close()
}

func TestFrontierClose(t *testing.T) {
	t.Parallel()

	f := NewFrontier()

	unblocked := make(chan struct{})
	go func() {
		if _, ok := f.Dequeue(); ok {
			t.Error("Dequeue() ok = true after Close on empty frontier")
		}
		close(unblocked)
	}()

	time.Sleep(10 * time.Millisecond)
	f.Close()

	select {
	case <-unblocked:
	case <-time.After(time.Second):
		t.Fatal("Dequeue() still blocked after Close")
	}

	if f.Enqueue("http://example.com/late") {
		t.Error("Enqueue accepted after Close")
	}
}

func TestFrontierCloseDiscardsBacklog(t *testing.T) {
	t.Parallel()

	f := NewFrontier()
	f.Enqueue("http://example.com/a")
	f.Enqueue("http://example.com/b")
	f.Enqueue("http://example.com/c")

	f.Close()

	if u, ok := f.Dequeue(); ok {
		t.Errorf("Dequeue() after Close handed out backlog item %q", u)
	}
}

func TestFrontierConcurrentEnqueue(t *testing.T) {
	t.Parallel()

	f := NewFrontier()

	var wg sync.WaitGroup
	accepted := make(chan bool, 50)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			accepted <- f.Enqueue("http://example.com/contended")
		}()
	}
	wg.Wait()
	close(accepted)

	wins := 0
	for ok := range accepted {
		if ok {
			wins++
		}
	}
	if wins != 1 {
		t.Errorf("concurrent Enqueue of same URL accepted %d times, want 1", wins)
	}
}
