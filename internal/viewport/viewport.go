// Package viewport maps detection coordinates into the overlay's world
// space. Capture coordinates have the origin at the top-left with y growing
// downward; the renderer's world has the origin at the viewport center with
// y growing upward.
package viewport

import (
	"github.com/lootlens/platform/internal/geom"
	"github.com/lootlens/platform/internal/ocr"
)

// Projection converts between the capture's pixel space and world space for
// one viewport size. It is a pure value; rebuild it when the viewport
// resizes.
type Projection struct {
	halfW float32
	halfH float32
}

// NewProjection builds a projection for a viewport of the given pixel size.
func NewProjection(width, height int) Projection {
	return Projection{halfW: float32(width) / 2, halfH: float32(height) / 2}
}

// Map converts a single capture-space point into world space.
func (p Projection) Map(v geom.Vec2) geom.Vec2 {
	return geom.Vec2{X: v.X - p.halfW, Y: p.halfH - v.Y}
}

// MapBox converts a capture-space box into world space. The y flip swaps
// which corner is minimal, so the result is re-normalized.
func (p Projection) MapBox(b geom.AABB) geom.AABB {
	return geom.AABB{Min: p.Map(b.Min), Max: p.Map(b.Max)}.Normalize()
}

// Apply rewrites every box in res into world space. Each box is transformed
// exactly once; call this on a result set only when it still carries capture
// coordinates.
func (p Projection) Apply(res *ocr.Results) {
	res.Region = p.MapBox(res.Region)
	for i := range res.Words {
		res.Words[i].Bounds = p.MapBox(res.Words[i].Bounds)
	}
	for i := range res.Lines {
		res.Lines[i].Bounds = p.MapBox(res.Lines[i].Bounds)
	}
	for i := range res.Items {
		res.Items[i].Bounds = p.MapBox(res.Items[i].Bounds)
	}
}
