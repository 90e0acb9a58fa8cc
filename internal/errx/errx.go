// Package errx provides structured errors with domain error kinds.
package errx

import (
	"errors"
	"fmt"
)

// Kind classifies a failure. The idle conditions (NoFrame, NoLayoutMatch)
// are represented as kinds too so callers can log-and-skip them uniformly.
type Kind int

const (
	KindUnknown Kind = iota
	KindNoFrame
	KindNoLayoutMatch
	KindDegenerateCrop
	KindEngineFailure
	KindUnsupportedPixelFormat
	KindMarketUnavailable
	KindMarketDecode
	KindConfigInvalid
)

func (k Kind) String() string {
	switch k {
	case KindNoFrame:
		return "no_frame"
	case KindNoLayoutMatch:
		return "no_layout_match"
	case KindDegenerateCrop:
		return "degenerate_crop"
	case KindEngineFailure:
		return "engine_failure"
	case KindUnsupportedPixelFormat:
		return "unsupported_pixel_format"
	case KindMarketUnavailable:
		return "market_unavailable"
	case KindMarketDecode:
		return "market_decode"
	case KindConfigInvalid:
		return "config_invalid"
	default:
		return "unknown"
	}
}

// Error is the base error type with a kind and optional metadata.
type Error struct {
	Kind     Kind
	Message  string
	Metadata map[string]string
	Cause    error
}

func (e *Error) Error() string {
	s := fmt.Sprintf("[%s] %s", e.Kind, e.Message)
	if len(e.Metadata) > 0 {
		s += fmt.Sprintf(" %v", e.Metadata)
	}
	if e.Cause != nil {
		s += ": " + e.Cause.Error()
	}
	return s
}

// Unwrap returns the underlying cause for errors.Is/As.
func (e *Error) Unwrap() error { return e.Cause }

// New creates an error with the given kind and message.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// Newf creates an error with a formatted message.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap wraps an existing error.
func Wrap(err error, kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg, Cause: err}
}

// Wrapf wraps an existing error with a formatted message.
func Wrapf(err error, kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Cause: err}
}

// WithMetadata attaches a key/value pair.
func (e *Error) WithMetadata(key, value string) *Error {
	if e.Metadata == nil {
		e.Metadata = make(map[string]string)
	}
	e.Metadata[key] = value
	return e
}

// IsKind reports whether err (or anything it wraps) carries the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// KindOf returns the kind of err, or KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// IsRetryable reports whether retrying the operation could help. Only
// transient market failures qualify; pipeline errors are retried by the next
// external trigger, never automatically.
func IsRetryable(err error) bool {
	return IsKind(err, KindMarketUnavailable)
}
