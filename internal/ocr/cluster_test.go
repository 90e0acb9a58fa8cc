package ocr

import (
	"testing"

	"github.com/lootlens/platform/internal/geom"
)

func word(text string, minX, maxX float32) Word {
	return Word{
		Text:   text,
		Bounds: geom.AABB{Min: geom.Vec2{X: minX, Y: 0}, Max: geom.Vec2{X: maxX, Y: 10}},
	}
}

func TestDetectColumnsGapSegmentation(t *testing.T) {
	words := []Word{
		word("Lith", 0, 10),
		word("G1", 12, 20),
		word("Relic", 100, 110),
	}

	items := DetectColumns(words, 15)
	if len(items) != 2 {
		t.Fatalf("got %d items, want 2", len(items))
	}
	if items[0].Name != "Lith G1" {
		t.Errorf("items[0].Name = %q, want %q", items[0].Name, "Lith G1")
	}
	if items[1].Name != "Relic" {
		t.Errorf("items[1].Name = %q, want %q", items[1].Name, "Relic")
	}
	// Merged box spans both words of the first column.
	if items[0].Bounds.Min.X != 0 || items[0].Bounds.Max.X != 20 {
		t.Errorf("items[0].Bounds = %+v, want x range [0,20]", items[0].Bounds)
	}
	// Left-to-right ordering.
	if items[0].Bounds.Min.X > items[1].Bounds.Min.X {
		t.Error("items must come back in ascending x order")
	}
}

func TestDetectColumnsEmpty(t *testing.T) {
	if items := DetectColumns(nil, 15); len(items) != 0 {
		t.Errorf("empty input should produce no items, got %d", len(items))
	}
}

func TestDetectColumnsSingleWord(t *testing.T) {
	items := DetectColumns([]Word{word("Forma", 5, 50)}, 15)
	if len(items) != 1 || items[0].Name != "Forma" {
		t.Fatalf("items = %+v, want one Forma item", items)
	}
}

func TestDetectColumnsPreservesDetectionOrder(t *testing.T) {
	// Detection order differs from x order within a column: the name is
	// joined in detection order, not re-sorted.
	words := []Word{
		word("Blueprint", 40, 80),
		word("Forma", 0, 38),
	}
	items := DetectColumns(words, 15)
	if len(items) != 1 {
		t.Fatalf("got %d items, want 1", len(items))
	}
	if items[0].Name != "Blueprint Forma" {
		t.Errorf("Name = %q, want detection order %q", items[0].Name, "Blueprint Forma")
	}
}

func TestDetectColumnsGapEqualThresholdJoins(t *testing.T) {
	// A gap exactly equal to the threshold does not split.
	words := []Word{
		word("Neo", 0, 10),
		word("N9", 25, 35), // gap = 15
	}
	items := DetectColumns(words, 15)
	if len(items) != 1 {
		t.Fatalf("got %d items, want 1 (gap == threshold must not split)", len(items))
	}
}

func TestDetectColumnsThreeColumns(t *testing.T) {
	words := []Word{
		word("Axi", 0, 10),
		word("A1", 12, 22),
		word("Meso", 60, 80),
		word("Z4", 82, 90),
		word("Forma", 200, 240),
	}
	items := DetectColumns(words, 15)
	if len(items) != 3 {
		t.Fatalf("got %d items, want 3", len(items))
	}
	want := []string{"Axi A1", "Meso Z4", "Forma"}
	for i, w := range want {
		if items[i].Name != w {
			t.Errorf("items[%d].Name = %q, want %q", i, items[i].Name, w)
		}
	}
}
