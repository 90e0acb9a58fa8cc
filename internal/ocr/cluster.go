package ocr

import (
	"sort"
	"strings"
)

// DetectColumns segments words into items by horizontal gap analysis. Words
// are sorted by left edge; every gap wider than gapThreshold becomes a
// column boundary at its midpoint. Each word joins the column containing
// its horizontal center, names are space-joined in original detection
// order, and boxes are merged. Items come back in left-to-right column
// order. This is 1-D segmentation on purpose: the target layouts are a
// single row of horizontally separated fields.
func DetectColumns(words []Word, gapThreshold float32) []Item {
	if len(words) == 0 {
		return nil
	}

	sorted := make([]Word, len(words))
	copy(sorted, words)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Bounds.Min.X < sorted[j].Bounds.Min.X
	})

	var boundaries []float32
	for i := 0; i < len(sorted)-1; i++ {
		gap := sorted[i+1].Bounds.Min.X - sorted[i].Bounds.Max.X
		if gap > gapThreshold {
			boundaries = append(boundaries, (sorted[i].Bounds.Max.X+sorted[i+1].Bounds.Min.X)/2)
		}
	}

	// Column index = number of boundaries strictly left of the word center.
	columns := make([][]Word, len(boundaries)+1)
	for _, w := range words {
		x := w.Bounds.Center().X
		idx := 0
		for _, b := range boundaries {
			if x > b {
				idx++
			}
		}
		columns[idx] = append(columns[idx], w)
	}

	items := make([]Item, 0, len(columns))
	for _, col := range columns {
		if len(col) == 0 {
			continue
		}
		parts := make([]string, len(col))
		bounds := col[0].Bounds
		for i, w := range col {
			parts[i] = w.Text
			bounds = bounds.Merge(w.Bounds)
		}
		items = append(items, Item{Name: strings.Join(parts, " "), Bounds: bounds})
	}
	return items
}
