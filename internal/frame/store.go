package frame

import (
	"image"
	"log/slog"
)

// Store is the consumer-side pairing of the latest frame bytes with the
// latest metadata. It is owned by a single polling goroutine. Because the
// two channel cells update independently, the pairing can be momentarily
// inconsistent; TakeRGBA treats any mismatch as "not yet usable" rather
// than faulting.
type Store struct {
	data []byte
	meta Meta
}

// NewStore creates an empty store.
func NewStore() *Store { return &Store{} }

// Poll drains the channel cells into the store, non-blocking.
func (s *Store) Poll(ch *Channel) {
	if m, ok := ch.TryTakeMeta(); ok {
		slog.Info("frame meta changed",
			"width", m.Width, "height", m.Height, "format", string(m.Format))
		s.meta = m
	}
	if d, ok := ch.TryTakeData(); ok {
		s.data = d
	}
}

// TakeRGBA normalizes and moves the stored frame out as an RGBA image.
// Returns false when no usable frame is held: fewer than 4 bytes means no
// frame at all, and a buffer/metadata length mismatch or an unsupported
// format means the frame is skipped. The buffer is consumed either way a
// conversion is attempted, so the next take needs a fresh publish.
func (s *Store) TakeRGBA() (*image.RGBA, bool) {
	if len(s.data) < 4 {
		return nil, false
	}
	data := s.data
	s.data = nil

	m := s.meta
	pix, ok := NormalizeRGBA(data, m)
	if !ok {
		return nil, false
	}
	return &image.RGBA{
		Pix:    pix[:m.Width*m.Height*4],
		Stride: 4 * m.Width,
		Rect:   image.Rect(0, 0, m.Width, m.Height),
	}, true
}
