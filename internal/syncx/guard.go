package syncx

import "sync"

// Guard wraps a value behind a mutex with scoped acquisition. Callers get
// the value only inside Do, which keeps lock windows explicit and short.
// The guarded OCR engine is slow and must never be held across unrelated
// work.
type Guard[T any] struct {
	mu    sync.Mutex
	value T
}

// NewGuard creates a guarded value.
func NewGuard[T any](value T) *Guard[T] {
	return &Guard[T]{value: value}
}

// Do runs fn while holding the lock and returns its error.
func (g *Guard[T]) Do(fn func(T) error) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return fn(g.value)
}
