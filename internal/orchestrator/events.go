package orchestrator

import (
	"time"

	"github.com/lootlens/platform/internal/geom"
	"github.com/lootlens/platform/internal/market"
	"github.com/lootlens/platform/internal/ocr"
)

// ItemsEvent is one completed detection cycle, boxes already in world
// coordinates.
type ItemsEvent struct {
	CycleID string
	Region  geom.AABB
	Items   []ocr.Item
	Elapsed time.Duration
}

// PriceEvent decorates one item of a cycle with its market quote. Quotes
// arrive after the items; consumers match them up by CycleID and drop
// decorations for superseded cycles.
type PriceEvent struct {
	CycleID string
	Item    string
	Price   market.Price
}

// StatusEvent reports pipeline state changes: skipped cycles, failures,
// pass starts.
type StatusEvent struct {
	State  string
	Detail string
}

// Event is the orchestrator's output union; exactly one field is set.
type Event struct {
	Items  *ItemsEvent
	Price  *PriceEvent
	Status *StatusEvent
}
