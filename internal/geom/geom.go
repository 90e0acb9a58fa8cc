// Package geom provides the small 2D float geometry the pipeline works in.
package geom

import "image"

// Vec2 is a 2D point or offset.
type Vec2 struct {
	X, Y float32
}

// Add returns v + o.
func (v Vec2) Add(o Vec2) Vec2 { return Vec2{v.X + o.X, v.Y + o.Y} }

// AABB is an axis-aligned bounding box. Min is the top-left corner in image
// space (y-down) and the bottom-left corner in world space (y-up).
type AABB struct {
	Min, Max Vec2
}

// FromRect converts an integer pixel rectangle.
func FromRect(r image.Rectangle) AABB {
	return AABB{
		Min: Vec2{float32(r.Min.X), float32(r.Min.Y)},
		Max: Vec2{float32(r.Max.X), float32(r.Max.Y)},
	}
}

// Merge returns the smallest box containing both a and b.
func (a AABB) Merge(b AABB) AABB {
	return AABB{
		Min: Vec2{min(a.Min.X, b.Min.X), min(a.Min.Y, b.Min.Y)},
		Max: Vec2{max(a.Max.X, b.Max.X), max(a.Max.Y, b.Max.Y)},
	}
}

// Center returns the box midpoint.
func (a AABB) Center() Vec2 {
	return Vec2{(a.Min.X + a.Max.X) / 2, (a.Min.Y + a.Max.Y) / 2}
}

// Translate shifts the box by off.
func (a AABB) Translate(off Vec2) AABB {
	return AABB{Min: a.Min.Add(off), Max: a.Max.Add(off)}
}

// Width returns Max.X - Min.X.
func (a AABB) Width() float32 { return a.Max.X - a.Min.X }

// Height returns Max.Y - Min.Y.
func (a AABB) Height() float32 { return a.Max.Y - a.Min.Y }

// Normalize reorders Min/Max per component so Min <= Max. Coordinate
// transforms that flip an axis produce inverted boxes; callers normalize
// once after transforming.
func (a AABB) Normalize() AABB {
	if a.Min.X > a.Max.X {
		a.Min.X, a.Max.X = a.Max.X, a.Min.X
	}
	if a.Min.Y > a.Max.Y {
		a.Min.Y, a.Max.Y = a.Max.Y, a.Min.Y
	}
	return a
}
