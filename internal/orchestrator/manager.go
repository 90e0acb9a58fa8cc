// Package orchestrator drives the detection loop: it pairs incoming frames
// with trigger requests, runs layout selection, hands crops to the OCR
// scheduler, and fans results and price decorations out as events.
package orchestrator

import (
	"context"
	"image"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/corona10/goimagehash"

	"github.com/lootlens/platform/internal/config"
	"github.com/lootlens/platform/internal/errx"
	"github.com/lootlens/platform/internal/frame"
	"github.com/lootlens/platform/internal/layout"
	"github.com/lootlens/platform/internal/market"
	"github.com/lootlens/platform/internal/ocr"
	"github.com/lootlens/platform/internal/viewport"
)

// eventBuffer bounds the fan-out queue; a slow consumer drops events rather
// than stalling the loop.
const eventBuffer = 64

// PriceResolver maps a recognized item name to a market quote.
type PriceResolver interface {
	Resolve(ctx context.Context, name string) (market.Price, error)
}

// Manager owns the tick loop. All pipeline state is confined to the loop
// goroutine; Trigger and Events are the only cross-goroutine surfaces.
type Manager struct {
	cfg      *config.Config
	ch       *frame.Channel
	frames   *frame.Store
	sched    *ocr.Scheduler
	prices   PriceResolver
	events   chan Event
	triggers chan struct{}

	lastHash *goimagehash.ImageHash
	pending  image.Point

	mu     sync.RWMutex
	latest []ocr.Item
}

// New wires the loop. prices may be nil when pricing is disabled.
func New(cfg *config.Config, ch *frame.Channel, sched *ocr.Scheduler, prices PriceResolver) *Manager {
	return &Manager{
		cfg:      cfg,
		ch:       ch,
		frames:   frame.NewStore(),
		sched:    sched,
		prices:   prices,
		events:   make(chan Event, eventBuffer),
		triggers: make(chan struct{}, 1),
	}
}

// Trigger requests a detection pass. Returns false when one is already
// queued; requests never stack.
func (m *Manager) Trigger() bool {
	select {
	case m.triggers <- struct{}{}:
		return true
	default:
		return false
	}
}

// Events returns the output stream. Single consumer expected.
func (m *Manager) Events() <-chan Event { return m.events }

// LatestItems returns a copy of the most recent item set.
func (m *Manager) LatestItems() []ocr.Item {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]ocr.Item, len(m.latest))
	copy(out, m.latest)
	return out
}

// Run ticks until ctx is cancelled.
func (m *Manager) Run(ctx context.Context) {
	slog.Info("orchestrator started", "poll_interval", m.cfg.OCR.PollInterval)
	ticker := time.NewTicker(m.cfg.OCR.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("orchestrator stopped")
			return
		case <-ticker.C:
			m.tick(ctx)
		}
	}
}

// tick is one loop iteration: ingest frames, collect finished passes, then
// start a new pass if one was requested.
func (m *Manager) tick(ctx context.Context) {
	m.frames.Poll(m.ch)
	m.collect(ctx)

	select {
	case <-m.triggers:
		m.startPass()
	default:
	}
}

// startPass runs the frame-to-scheduler leg of a cycle. Skips are reported
// as status events, not errors; the overlay stays idle until the next
// trigger.
func (m *Manager) startPass() {
	if m.sched.Running() {
		m.emit(Event{Status: &StatusEvent{State: "busy"}})
		return
	}

	img, ok := m.frames.TakeRGBA()
	if !ok {
		slog.Warn("trigger with no usable frame")
		m.emit(Event{Status: &StatusEvent{State: "skipped", Detail: errx.KindNoFrame.String()}})
		return
	}

	if m.cfg.Capture.SkipUnchanged && m.unchanged(img) {
		slog.Debug("frame unchanged since last pass, skipping")
		m.emit(Event{Status: &StatusEvent{State: "skipped", Detail: "unchanged"}})
		return
	}

	lay := layout.Select(img, m.cfg.Layouts)
	if lay == nil {
		slog.Warn("no layout matched frame",
			"width", img.Bounds().Dx(), "height", img.Bounds().Dy())
		m.emit(Event{Status: &StatusEvent{State: "skipped", Detail: errx.KindNoLayoutMatch.String()}})
		return
	}

	dims := image.Pt(img.Bounds().Dx(), img.Bounds().Dy())
	bounds, err := lay.OCRBounds(dims)
	if err != nil {
		slog.Warn("ocr bounds rejected", "error", err)
		m.emit(Event{Status: &StatusEvent{State: "skipped", Detail: errx.KindOf(err).String()}})
		return
	}

	if m.cfg.Capture.SaveCaptures {
		m.saveCrop(img, bounds)
	}

	m.pending = dims
	if m.sched.Trigger(img, bounds, m.cfg.OCR.GapThreshold) {
		m.emit(Event{Status: &StatusEvent{State: "running"}})
	}
}

// collect picks up a finished pass, maps it to world space, and fans it
// out. Price decorations resolve asynchronously so a slow market API never
// delays the item boxes.
func (m *Manager) collect(ctx context.Context) {
	res, done, err := m.sched.Poll()
	if !done {
		return
	}
	if err != nil {
		slog.Error("detection pass failed", "error", err)
		m.emit(Event{Status: &StatusEvent{State: "failed", Detail: errx.KindOf(err).String()}})
		return
	}

	viewport.NewProjection(m.pending.X, m.pending.Y).Apply(res)

	m.mu.Lock()
	m.latest = res.Items
	m.mu.Unlock()

	m.emit(Event{Items: &ItemsEvent{
		CycleID: res.CycleID,
		Region:  res.Region,
		Items:   res.Items,
		Elapsed: res.Elapsed,
	}})

	if m.prices != nil {
		go m.resolvePrices(ctx, res.CycleID, res.Items)
	}
}

func (m *Manager) resolvePrices(ctx context.Context, cycleID string, items []ocr.Item) {
	for _, it := range items {
		p, err := m.prices.Resolve(ctx, it.Name)
		if err != nil {
			slog.Warn("price lookup failed", "item", it.Name, "error", err)
			continue
		}
		m.emit(Event{Price: &PriceEvent{CycleID: cycleID, Item: it.Name, Price: p}})
	}
}

// unchanged compares the frame's perceptual hash to the previous pass.
func (m *Manager) unchanged(img *image.RGBA) bool {
	hash, err := goimagehash.AverageHash(img)
	if err != nil {
		return false
	}
	prev := m.lastHash
	m.lastHash = hash
	if prev == nil {
		return false
	}
	dist, err := prev.Distance(hash)
	return err == nil && dist == 0
}

// saveCrop dumps the OCR region as a PNG for offline inspection.
func (m *Manager) saveCrop(img *image.RGBA, bounds image.Rectangle) {
	if err := os.MkdirAll(m.cfg.Capture.SaveDir, 0o755); err != nil {
		slog.Warn("capture dir", "error", err)
		return
	}
	stamp := strings.ReplaceAll(time.Now().Format("20060102_150405.000"), ".", "_")
	path := filepath.Join(m.cfg.Capture.SaveDir, "crop_"+stamp+".png")

	crop := img.SubImage(bounds.Intersect(img.Bounds()))
	f, err := os.Create(path)
	if err != nil {
		slog.Warn("capture dump", "error", err)
		return
	}
	defer f.Close()
	if err := png.Encode(f, crop); err != nil {
		slog.Warn("capture dump encode", "error", err)
	}
}

// emit never blocks; under backpressure the event is dropped.
func (m *Manager) emit(ev Event) {
	select {
	case m.events <- ev:
	default:
		slog.Debug("event dropped, consumer behind")
	}
}
