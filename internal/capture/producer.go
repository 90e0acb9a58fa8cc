package capture

import (
	"bytes"
	"context"
	"image"
	"image/draw"
	"image/png"
	"log/slog"
	"time"

	"github.com/lootlens/platform/internal/frame"
)

// Producer pumps decoded screenshots into the frame channel at a fixed
// cadence. It never blocks on the consumer; stale frames are overwritten.
type Producer struct {
	capturer Capturer
	ch       *frame.Channel
	interval time.Duration
}

// NewProducer wires a capturer to a frame channel at rateHz frames per
// second.
func NewProducer(c Capturer, ch *frame.Channel, rateHz float64) *Producer {
	if rateHz <= 0 {
		rateHz = 1
	}
	return &Producer{
		capturer: c,
		ch:       ch,
		interval: time.Duration(float64(time.Second) / rateHz),
	}
}

// Run captures until ctx is cancelled.
func (p *Producer) Run(ctx context.Context) {
	slog.Info("capture producer started", "interval", p.interval)
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("capture producer stopped")
			return
		case <-ticker.C:
			p.captureOnce()
		}
	}
}

// captureOnce grabs, decodes, and publishes a single frame. Unchanged
// screens and decode failures publish nothing.
func (p *Producer) captureOnce() bool {
	data, ok := p.capturer.Capture()
	if !ok {
		return false
	}

	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		slog.Warn("screenshot decode failed", "error", err)
		return false
	}

	rgba, ok := img.(*image.RGBA)
	if !ok {
		b := img.Bounds()
		rgba = image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	}

	p.ch.Publish(frame.Frame{
		Data: rgba.Pix,
		Meta: frame.Meta{
			Width:  rgba.Bounds().Dx(),
			Height: rgba.Bounds().Dy(),
			Format: frame.FormatRGBA,
		},
	})
	return true
}
