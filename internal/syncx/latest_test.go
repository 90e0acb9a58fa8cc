package syncx

import (
	"sync"
	"testing"
)

func TestLatestFreshness(t *testing.T) {
	l := NewLatest[int]()

	l.Publish(1)
	l.Publish(2)

	v, ok := l.TryTake()
	if !ok || v != 2 {
		t.Fatalf("TryTake() = %d, %v, want 2, true", v, ok)
	}

	if _, ok := l.TryTake(); ok {
		t.Error("second TryTake should find nothing")
	}
}

func TestLatestEmpty(t *testing.T) {
	l := NewLatest[string]()
	if v, ok := l.TryTake(); ok {
		t.Errorf("TryTake on empty cell = %q, want nothing", v)
	}
}

func TestLatestPublishNeverBlocks(t *testing.T) {
	l := NewLatest[int]()

	// No reader: every publish must return immediately.
	for i := 0; i < 1000; i++ {
		l.Publish(i)
	}

	v, ok := l.TryTake()
	if !ok || v != 999 {
		t.Fatalf("TryTake() = %d, %v, want 999, true", v, ok)
	}
}

func TestLatestConcurrent(t *testing.T) {
	l := NewLatest[int]()
	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 10000; i++ {
			l.Publish(i)
		}
	}()
	go func() {
		defer wg.Done()
		last := -1
		for i := 0; i < 10000; i++ {
			if v, ok := l.TryTake(); ok {
				if v < last {
					t.Errorf("value went backwards: %d after %d", v, last)
					return
				}
				last = v
			}
		}
	}()
	wg.Wait()
}

func TestGuardScoped(t *testing.T) {
	g := NewGuard(map[string]int{})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = g.Do(func(m map[string]int) error {
				m["n"]++
				return nil
			})
		}()
	}
	wg.Wait()

	_ = g.Do(func(m map[string]int) error {
		if m["n"] != 50 {
			t.Errorf("n = %d, want 50", m["n"])
		}
		return nil
	})
}
