package geom

import (
	"image"
	"testing"
)

func TestMerge(t *testing.T) {
	a := AABB{Min: Vec2{0, 0}, Max: Vec2{10, 5}}
	b := AABB{Min: Vec2{8, -2}, Max: Vec2{20, 4}}

	got := a.Merge(b)
	want := AABB{Min: Vec2{0, -2}, Max: Vec2{20, 5}}
	if got != want {
		t.Errorf("Merge = %+v, want %+v", got, want)
	}
}

func TestCenter(t *testing.T) {
	a := AABB{Min: Vec2{0, 0}, Max: Vec2{10, 20}}
	if c := a.Center(); c != (Vec2{5, 10}) {
		t.Errorf("Center = %+v, want {5 10}", c)
	}
}

func TestFromRect(t *testing.T) {
	a := FromRect(image.Rect(478, 411, 1443, 460))
	if a.Min != (Vec2{478, 411}) || a.Max != (Vec2{1443, 460}) {
		t.Errorf("FromRect = %+v", a)
	}
}

func TestTranslate(t *testing.T) {
	a := AABB{Min: Vec2{1, 2}, Max: Vec2{3, 4}}
	got := a.Translate(Vec2{10, 20})
	want := AABB{Min: Vec2{11, 22}, Max: Vec2{13, 24}}
	if got != want {
		t.Errorf("Translate = %+v, want %+v", got, want)
	}
}

func TestNormalize(t *testing.T) {
	a := AABB{Min: Vec2{5, 10}, Max: Vec2{1, -3}}
	got := a.Normalize()
	want := AABB{Min: Vec2{1, -3}, Max: Vec2{5, 10}}
	if got != want {
		t.Errorf("Normalize = %+v, want %+v", got, want)
	}
}
