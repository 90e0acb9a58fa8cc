// Package ocr turns a cropped frame region into ordered item records: it
// preprocesses the crop, drives the recognition engine under a scoped lock,
// and clusters recognized words into columns.
package ocr

import (
	"time"

	"github.com/lootlens/platform/internal/geom"
)

// Word is a single recognized token with its box in absolute image pixels.
type Word struct {
	Text   string
	Bounds geom.AABB
}

// Line groups a contiguous range of words sharing a baseline. Words[0] is
// the index of the first word, Words[1] one past the last, into the result
// set's word slice.
type Line struct {
	Bounds geom.AABB
	Words  [2]int
}

// Item is one clustered column of words interpreted as one semantic text
// entry. Items live for a single cycle; each result set fully replaces the
// previous one.
type Item struct {
	Name   string
	Bounds geom.AABB
}

// Results is everything one completed extraction produced. It is owned by
// the scheduler until polled, then ownership transfers to the consumer.
type Results struct {
	// CycleID identifies this extraction pass so consumers can discard
	// late-arriving decorations (prices) for superseded sets.
	CycleID string
	// Region is the detection-region box the crop covered.
	Region  geom.AABB
	Words   []Word
	Lines   []Line
	Items   []Item
	Elapsed time.Duration
}
