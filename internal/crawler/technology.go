package crawler

import "sync"

// technologyAccumulator collects fingerprint signals from every fetched
// page under the first-writer-wins rule: once a signal is recorded its
// value never changes, so the snapshot reflects the first page that
// exposed it.
type technologyAccumulator struct {
	mu      sync.Mutex
	signals map[string]string
}

func newTechnologyAccumulator() *technologyAccumulator {
	return &technologyAccumulator{signals: make(map[string]string)}
}

// Merge records every signal not already present.
func (a *technologyAccumulator) Merge(signals map[string]string) {
	if len(signals) == 0 {
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	for name, value := range signals {
		if _, ok := a.signals[name]; !ok {
			a.signals[name] = value
		}
	}
}

// Snapshot returns a copy of the accumulated signals.
func (a *technologyAccumulator) Snapshot() map[string]string {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := make(map[string]string, len(a.signals))
	for name, value := range a.signals {
		out[name] = value
	}
	return out
}
