// Package trace provides lightweight operation spans on top of slog.
package trace

import (
	"crypto/rand"
	"encoding/hex"
	"log/slog"
	"time"
)

// Span is a timed operation. End logs the duration and any attributes at
// debug level.
type Span struct {
	name  string
	id    string
	start time.Time
	attrs []any
}

// Start begins a span with a fresh 64-bit ID.
func Start(name string) *Span {
	return &Span{name: name, id: newID(), start: time.Now()}
}

// Attr records a key/value pair to be logged when the span ends.
func (s *Span) Attr(key string, val any) {
	s.attrs = append(s.attrs, key, val)
}

// End closes the span.
func (s *Span) End() {
	args := make([]any, 0, len(s.attrs)+4)
	args = append(args, "span_id", s.id, "elapsed", time.Since(s.start))
	args = append(args, s.attrs...)
	slog.Debug(s.name, args...)
}

// Logger returns a logger carrying the span ID, for log lines emitted
// while the span is open.
func (s *Span) Logger() *slog.Logger {
	return slog.Default().With("span_id", s.id)
}

func newID() string {
	b := make([]byte, 8)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
