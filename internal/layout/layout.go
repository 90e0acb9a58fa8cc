// Package layout matches captured frames against configured screen-region
// templates and scales their OCR regions to the captured resolution.
package layout

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"strconv"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/lootlens/platform/internal/errx"
)

// Layout is a named screen-region template: where the item row sits on the
// reference resolution it was authored against, plus rendering hints for
// consumers.
type Layout struct {
	Offset              image.Point
	Size                image.Point
	ReferenceResolution image.Point
	ThemeTextColor      color.RGBA
	// ItemNameDistance is the minimum horizontal gap, in reference pixels,
	// separating two item-name columns.
	ItemNameDistance int
}

// OCRBounds rescales the layout region to the actual captured resolution.
// The per-axis factor is the integer ratio actual/reference; a factor of
// zero (capture smaller than the reference) or a zero-area result is
// rejected as degenerate.
func (l Layout) OCRBounds(actual image.Point) (image.Rectangle, error) {
	if l.ReferenceResolution.X <= 0 || l.ReferenceResolution.Y <= 0 {
		return image.Rectangle{}, errx.Newf(errx.KindConfigInvalid,
			"layout reference resolution %v is not positive", l.ReferenceResolution)
	}
	fx := actual.X / l.ReferenceResolution.X
	fy := actual.Y / l.ReferenceResolution.Y
	if fx <= 0 || fy <= 0 {
		return image.Rectangle{}, errx.Newf(errx.KindDegenerateCrop,
			"capture %v smaller than reference %v", actual, l.ReferenceResolution)
	}

	min := image.Pt(l.Offset.X*fx, l.Offset.Y*fy)
	size := image.Pt(l.Size.X*fx, l.Size.Y*fy)
	r := image.Rectangle{Min: min, Max: min.Add(size)}
	if r.Dx() <= 0 || r.Dy() <= 0 {
		return image.Rectangle{}, errx.Newf(errx.KindDegenerateCrop,
			"ocr bounds %v have zero area", r)
	}
	return r, nil
}

// PixelCheck probes one pixel for an expected color.
type PixelCheck struct {
	X, Y      int
	Color     color.RGBA
	Tolerance float64
}

// matchesColor reports whether the sampled pixel is close enough to the
// expected color. Tolerance 0 requires bit-exact equality; otherwise the
// Euclidean RGB distance in 8-bit channel units must not exceed it.
func (p PixelCheck) matchesColor(c color.RGBA) bool {
	if p.Tolerance == 0 {
		return p.Color.R == c.R && p.Color.G == c.G && p.Color.B == c.B
	}
	dr := float64(p.Color.R) - float64(c.R)
	dg := float64(p.Color.G) - float64(c.G)
	db := float64(p.Color.B) - float64(c.B)
	return math.Sqrt(dr*dr+dg*dg+db*db) <= p.Tolerance
}

// Option is a Layout plus the conditions selecting it: an exact aspect
// ratio and zero or more pixel probes.
type Option struct {
	// AspectRatio is [width, height], e.g. [16, 9].
	AspectRatio [2]int
	PixelChecks []PixelCheck
	Layout      Layout
}

// aspectMatches uses integer cross-multiplication to avoid float error:
// w:h matches a:b iff a*h == b*w.
func (o Option) aspectMatches(w, h int) bool {
	return o.AspectRatio[0]*h == o.AspectRatio[1]*w
}

func (o Option) checksPass(img *image.RGBA) bool {
	b := img.Bounds()
	for _, pc := range o.PixelChecks {
		// Probes outside the frame fail the check, they are not errors.
		if pc.X < b.Min.X || pc.X >= b.Max.X || pc.Y < b.Min.Y || pc.Y >= b.Max.Y {
			return false
		}
		if !pc.matchesColor(img.RGBAAt(pc.X, pc.Y)) {
			return false
		}
	}
	return true
}

// Matches reports whether the frame satisfies this option.
func (o Option) Matches(img *image.RGBA) bool {
	b := img.Bounds()
	return o.aspectMatches(b.Dx(), b.Dy()) && o.checksPass(img)
}

// ParseHexColor parses "#rrggbb" into an opaque RGBA.
func ParseHexColor(s string) (color.RGBA, error) {
	c, err := colorful.Hex(strings.TrimSpace(s))
	if err != nil {
		return color.RGBA{}, errx.Wrapf(err, errx.KindConfigInvalid, "invalid hex color %q", s)
	}
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}, nil
}

// ParseAspectRatio parses "W:H", e.g. "16:9".
func ParseAspectRatio(s string) ([2]int, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return [2]int{}, errx.Newf(errx.KindConfigInvalid,
			"aspect ratio must be 'width:height', got %q", s)
	}
	w, errW := strconv.Atoi(strings.TrimSpace(parts[0]))
	h, errH := strconv.Atoi(strings.TrimSpace(parts[1]))
	if errW != nil || errH != nil || w <= 0 || h <= 0 {
		return [2]int{}, errx.Newf(errx.KindConfigInvalid, "invalid aspect ratio %q", s)
	}
	return [2]int{w, h}, nil
}

// ParsePixelCheck parses the compact "x,y,#rrggbb,tolerance" encoding.
func ParsePixelCheck(s string) (PixelCheck, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return PixelCheck{}, errx.Newf(errx.KindConfigInvalid,
			"pixel check must be 'x,y,#hexcolor,tolerance', got %q", s)
	}
	x, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return PixelCheck{}, errx.Wrapf(err, errx.KindConfigInvalid, "invalid x in %q", s)
	}
	y, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return PixelCheck{}, errx.Wrapf(err, errx.KindConfigInvalid, "invalid y in %q", s)
	}
	c, err := ParseHexColor(parts[2])
	if err != nil {
		return PixelCheck{}, err
	}
	tol, err := strconv.ParseFloat(strings.TrimSpace(parts[3]), 64)
	if err != nil || tol < 0 {
		return PixelCheck{}, errx.Newf(errx.KindConfigInvalid, "invalid tolerance in %q", s)
	}
	return PixelCheck{X: x, Y: y, Color: c, Tolerance: tol}, nil
}

// String renders the check back into its compact form.
func (p PixelCheck) String() string {
	return fmt.Sprintf("%d,%d,#%02x%02x%02x,%g", p.X, p.Y, p.Color.R, p.Color.G, p.Color.B, p.Tolerance)
}
