package orchestrator

import (
	"context"
	"image"
	"testing"
	"time"

	"github.com/lootlens/platform/internal/config"
	"github.com/lootlens/platform/internal/frame"
	"github.com/lootlens/platform/internal/layout"
	"github.com/lootlens/platform/internal/market"
	"github.com/lootlens/platform/internal/ocr"
	"github.com/lootlens/platform/internal/syncx"
)

type identityPre struct{}

func (identityPre) Process(src *image.RGBA) (*image.RGBA, error) { return src, nil }

// stubEngine recognizes one fixed word anywhere.
type stubEngine struct{}

func (stubEngine) PrepareInput(img *image.RGBA) (ocr.Input, error) { return struct{}{}, nil }

func (stubEngine) DetectWords(in ocr.Input) ([]image.Rectangle, error) {
	return []image.Rectangle{image.Rect(0, 0, 4, 2)}, nil
}

func (stubEngine) FindTextLines(in ocr.Input, words []image.Rectangle) []ocr.LineRegion {
	return []ocr.LineRegion{{Bounds: image.Rect(0, 0, 4, 2), Words: words}}
}

func (stubEngine) RecognizeText(in ocr.Input, lines []ocr.LineRegion) ([]*ocr.LineText, error) {
	return []*ocr.LineText{{
		Text:   "Forma",
		Bounds: image.Rect(0, 0, 4, 2),
		Words:  []ocr.WordText{{Text: "Forma", Bounds: image.Rect(0, 0, 4, 2)}},
	}}, nil
}

type stubResolver struct {
	price market.Price
}

func (r stubResolver) Resolve(ctx context.Context, name string) (market.Price, error) {
	p := r.price
	p.Name = name
	return p, nil
}

func testConfig() *config.Config {
	return &config.Config{
		Capture: config.CaptureConfig{RateHz: 1},
		OCR: config.OCRConfig{
			GapThreshold: 15,
			PollInterval: time.Millisecond,
		},
		Layouts: []layout.Option{{
			AspectRatio: [2]int{2, 1},
			Layout: layout.Layout{
				Offset:              image.Pt(1, 1),
				Size:                image.Pt(4, 2),
				ReferenceResolution: image.Pt(8, 4),
				ItemNameDistance:    90,
			},
		}},
	}
}

func testManager(cfg *config.Config, prices PriceResolver) (*Manager, *frame.Channel) {
	ch := frame.NewChannel()
	sched := ocr.NewScheduler(ocr.NewExtractor(syncx.NewGuard[ocr.Engine](stubEngine{}), identityPre{}))
	return New(cfg, ch, sched, prices), ch
}

func publishFrame(ch *frame.Channel, w, h int) {
	ch.Publish(frame.Frame{
		Data: make([]byte, w*h*4),
		Meta: frame.Meta{Width: w, Height: h, Format: frame.FormatRGBA},
	})
}

// pump ticks until an event satisfying pred arrives.
func pump(t *testing.T, m *Manager, pred func(Event) bool) Event {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		m.tick(context.Background())
		select {
		case ev := <-m.Events():
			if pred(ev) {
				return ev
			}
		case <-deadline:
			t.Fatal("expected event never arrived")
		case <-time.After(time.Millisecond):
		}
	}
}

func TestManagerFullCycle(t *testing.T) {
	m, ch := testManager(testConfig(), nil)
	publishFrame(ch, 8, 4)

	if !m.Trigger() {
		t.Fatal("trigger rejected")
	}

	ev := pump(t, m, func(ev Event) bool { return ev.Items != nil })
	if len(ev.Items.Items) != 1 || ev.Items.Items[0].Name != "Forma" {
		t.Fatalf("items = %+v", ev.Items.Items)
	}
	if ev.Items.CycleID == "" {
		t.Error("cycle id missing")
	}

	// Crop offset (1,1) plus world mapping for an 8x4 frame.
	b := ev.Items.Items[0].Bounds
	if b.Min.X != -3 || b.Min.Y != -1 || b.Max.X != 1 || b.Max.Y != 1 {
		t.Errorf("world bounds = %+v, want (-3,-1)-(1,1)", b)
	}

	if got := m.LatestItems(); len(got) != 1 || got[0].Name != "Forma" {
		t.Errorf("LatestItems = %+v", got)
	}
}

func TestManagerTriggerWithoutFrame(t *testing.T) {
	m, _ := testManager(testConfig(), nil)

	m.Trigger()
	ev := pump(t, m, func(ev Event) bool { return ev.Status != nil })
	if ev.Status.State != "skipped" || ev.Status.Detail != "no_frame" {
		t.Errorf("status = %+v", ev.Status)
	}
}

func TestManagerNoLayoutMatch(t *testing.T) {
	m, ch := testManager(testConfig(), nil)
	publishFrame(ch, 9, 4) // 9:4 matches nothing

	m.Trigger()
	ev := pump(t, m, func(ev Event) bool { return ev.Status != nil })
	if ev.Status.Detail != "no_layout_match" {
		t.Errorf("status = %+v", ev.Status)
	}
}

func TestManagerSkipsUnchangedFrame(t *testing.T) {
	cfg := testConfig()
	cfg.Capture.SkipUnchanged = true
	m, ch := testManager(cfg, nil)

	publishFrame(ch, 8, 4)
	m.Trigger()
	pump(t, m, func(ev Event) bool { return ev.Items != nil })

	// Same all-zero frame again: identical hash, skipped.
	publishFrame(ch, 8, 4)
	m.Trigger()
	ev := pump(t, m, func(ev Event) bool { return ev.Status != nil && ev.Status.State == "skipped" })
	if ev.Status.Detail != "unchanged" {
		t.Errorf("status = %+v", ev.Status)
	}
}

func TestManagerPriceDecoration(t *testing.T) {
	resolver := stubResolver{price: market.Price{AvgPlatinum: 12, Known: true}}
	m, ch := testManager(testConfig(), resolver)
	publishFrame(ch, 8, 4)

	m.Trigger()
	items := pump(t, m, func(ev Event) bool { return ev.Items != nil })
	price := pump(t, m, func(ev Event) bool { return ev.Price != nil })

	if price.Price.CycleID != items.Items.CycleID {
		t.Errorf("price cycle %q != items cycle %q", price.Price.CycleID, items.Items.CycleID)
	}
	if price.Price.Item != "Forma" || price.Price.Price.AvgPlatinum != 12 {
		t.Errorf("price event = %+v", price.Price)
	}
}

func TestManagerTriggerDoesNotStack(t *testing.T) {
	m, _ := testManager(testConfig(), nil)

	if !m.Trigger() {
		t.Fatal("first trigger rejected")
	}
	if m.Trigger() {
		t.Error("second trigger should be rejected while one is queued")
	}
}
