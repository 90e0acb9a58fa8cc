// Package capture produces screen frames for the detection loop using the
// platform's native screenshot tooling.
package capture

import (
	"crypto/md5"
	"os"
)

// Capturer grabs screenshots with cheap change detection.
type Capturer interface {
	// Capture returns PNG bytes of the primary display, or ok=false when
	// the screen has not visibly changed since the last grab.
	Capture() (data []byte, ok bool)
	// CaptureAlways grabs regardless of change detection.
	CaptureAlways() []byte
	Close()
}

// backend implements platform-specific raw capture
type backend interface {
	captureRaw() []byte
	cleanup()
}

// baseCapturer provides shared hash-based change detection
type baseCapturer struct {
	backend
	lastHash [16]byte
	tempDir  string
}

func newBase(b backend, tempDir string) *baseCapturer {
	return &baseCapturer{backend: b, tempDir: tempDir}
}

func (c *baseCapturer) Capture() ([]byte, bool) {
	data := c.captureRaw()
	if data == nil {
		return nil, false
	}
	// Hash the first 4KB only; enough to catch real changes cheaply.
	hash := md5.Sum(data[:min(len(data), 4096)])
	if hash == c.lastHash {
		return nil, false
	}
	c.lastHash = hash
	return data, true
}

func (c *baseCapturer) CaptureAlways() []byte {
	data := c.captureRaw()
	if data != nil {
		c.lastHash = md5.Sum(data[:min(len(data), 4096)])
	}
	return data
}

func (c *baseCapturer) Close() {
	c.cleanup()
	if c.tempDir != "" {
		os.RemoveAll(c.tempDir)
	}
}
