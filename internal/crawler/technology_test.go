package crawler

import (
	"sync"
	"testing"
)

func TestTechnologyAccumulatorFirstWriterWins(t *testing.T) {
	t.Parallel()

	acc := newTechnologyAccumulator()
	acc.Merge(map[string]string{"Server": "nginx/1.24"})
	acc.Merge(map[string]string{"Server": "apache/2.4", "X-Powered-By": "PHP/8.2"})

	got := acc.Snapshot()
	if got["Server"] != "nginx/1.24" {
		t.Errorf(`Server = %q, want first-recorded "nginx/1.24"`, got["Server"])
	}
	if got["X-Powered-By"] != "PHP/8.2" {
		t.Errorf(`X-Powered-By = %q, want "PHP/8.2"`, got["X-Powered-By"])
	}
}

func TestTechnologyAccumulatorSnapshotIsCopy(t *testing.T) {
	t.Parallel()

	acc := newTechnologyAccumulator()
	acc.Merge(map[string]string{"Server": "nginx"})

	snap := acc.Snapshot()
	snap["Server"] = "mutated"

	if acc.Snapshot()["Server"] != "nginx" {
		t.Error("Snapshot() shares state with the accumulator")
	}
}

func TestTechnologyAccumulatorConcurrent(t *testing.T) {
	t.Parallel()

	acc := newTechnologyAccumulator()
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			acc.Merge(map[string]string{"Server": "nginx"})
		}()
	}
	wg.Wait()

	if len(acc.Snapshot()) != 1 {
		t.Errorf("Snapshot() = %v, want one signal", acc.Snapshot())
	}
}
