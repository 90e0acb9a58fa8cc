// Package syncx provides extended synchronization primitives
package syncx

// Latest is a capacity-one, latest-value-wins cell. Publish never blocks:
// if an unread value is pending it is discarded and replaced. TryTake never
// blocks either, so readers may permanently miss overwritten values. Only
// the freshest one is retrievable.
type Latest[T any] struct {
	ch chan T
}

// NewLatest creates an empty cell.
func NewLatest[T any]() *Latest[T] {
	return &Latest[T]{ch: make(chan T, 1)}
}

// Publish stores v, dropping any pending unread value first.
func (l *Latest[T]) Publish(v T) {
	for {
		select {
		case l.ch <- v:
			return
		default:
		}
		// Slot occupied: drain the stale value and retry. A concurrent
		// reader may win the race, in which case the send succeeds next
		// iteration.
		select {
		case <-l.ch:
		default:
		}
	}
}

// TryTake removes and returns the pending value, if any.
func (l *Latest[T]) TryTake() (T, bool) {
	select {
	case v := <-l.ch:
		return v, true
	default:
		var zero T
		return zero, false
	}
}
