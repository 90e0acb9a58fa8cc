package ocr

import (
	"image"
	"log/slog"
	"sync/atomic"
)

// Scheduler owns at most one in-flight extraction. Trigger starts a pass on
// a background goroutine when idle and is a no-op while one is running;
// that is the backpressure strategy, there is no queueing and no
// cancellation. Poll is a cheap non-blocking check that consumes the result
// exactly once and returns the scheduler to idle, on success or failure.
type Scheduler struct {
	extractor *Extractor
	running   atomic.Bool
	done      chan outcome
}

type outcome struct {
	res *Results
	err error
}

// NewScheduler creates an idle scheduler around an extractor.
func NewScheduler(extractor *Extractor) *Scheduler {
	return &Scheduler{
		extractor: extractor,
		done:      make(chan outcome, 1),
	}
}

// Trigger starts an extraction if none is running. Returns false when a
// pass is already in flight and the trigger is ignored; at most one OCR
// computation ever runs concurrently.
func (s *Scheduler) Trigger(img *image.RGBA, bounds image.Rectangle, gapThreshold float32) bool {
	if !s.running.CompareAndSwap(false, true) {
		return false
	}
	go func() {
		res, err := s.extractor.Extract(img, bounds, gapThreshold)
		if res != nil {
			slog.Debug("ocr pass finished", "elapsed", res.Elapsed, "items", len(res.Items))
		}
		s.done <- outcome{res: res, err: err}
	}()
	return true
}

// Poll checks for a completed pass without blocking. done is true exactly
// once per pass; ownership of the results transfers to the caller.
func (s *Scheduler) Poll() (res *Results, done bool, err error) {
	select {
	case o := <-s.done:
		s.running.Store(false)
		return o.res, true, o.err
	default:
		return nil, false, nil
	}
}

// Running reports whether a pass is in flight.
func (s *Scheduler) Running() bool { return s.running.Load() }
