package layout

import (
	"image"
	"image/color"
	"testing"

	"github.com/lootlens/platform/internal/errx"
)

func solidFrame(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func TestAspectRatioMatching(t *testing.T) {
	opt := Option{AspectRatio: [2]int{16, 9}}

	cases := []struct {
		w, h int
		want bool
	}{
		{1920, 1080, true},
		{2560, 1440, true},
		{3840, 2160, true},
		{1920, 1200, false},
		{2560, 1080, false},
	}
	for _, c := range cases {
		if got := opt.aspectMatches(c.w, c.h); got != c.want {
			t.Errorf("aspectMatches(%d, %d) = %v, want %v", c.w, c.h, got, c.want)
		}
	}
}

func TestPixelCheckExact(t *testing.T) {
	img := solidFrame(4, 4, color.RGBA{R: 0xFE, G: 0xFE, B: 0xFE, A: 255})

	white := color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 255}
	exact := Option{
		AspectRatio: [2]int{1, 1},
		PixelChecks: []PixelCheck{{X: 0, Y: 0, Color: white, Tolerance: 0}},
	}
	if exact.Matches(img) {
		t.Error("tolerance 0 requires bit-exact equality, #FEFEFE != #FFFFFF")
	}

	loose := exact
	loose.PixelChecks = []PixelCheck{{X: 0, Y: 0, Color: white, Tolerance: 3}}
	// Distance is sqrt(3) ≈ 1.73 <= 3.
	if !loose.Matches(img) {
		t.Error("tolerance 3 should accept #FEFEFE against #FFFFFF")
	}
}

func TestPixelCheckOutOfBounds(t *testing.T) {
	img := solidFrame(4, 4, color.RGBA{A: 255})
	opt := Option{
		AspectRatio: [2]int{1, 1},
		PixelChecks: []PixelCheck{{X: 10, Y: 0, Color: color.RGBA{A: 255}, Tolerance: 5}},
	}
	if opt.Matches(img) {
		t.Error("out-of-bounds probe must fail the check, not match")
	}
}

func TestSelectFirstMatchWins(t *testing.T) {
	img := solidFrame(16, 9, color.RGBA{R: 1, G: 2, B: 3, A: 255})
	options := []Option{
		{AspectRatio: [2]int{4, 3}, Layout: Layout{ItemNameDistance: 1}},
		{AspectRatio: [2]int{16, 9}, Layout: Layout{ItemNameDistance: 2}},
		{AspectRatio: [2]int{16, 9}, Layout: Layout{ItemNameDistance: 3}},
	}

	got := Select(img, options)
	if got == nil || got.ItemNameDistance != 2 {
		t.Fatalf("Select = %+v, want the first 16:9 option", got)
	}

	all := SelectAll(img, options)
	if len(all) != 2 {
		t.Errorf("SelectAll found %d options, want 2", len(all))
	}
}

func TestSelectNoMatch(t *testing.T) {
	img := solidFrame(16, 10, color.RGBA{A: 255})
	options := []Option{{AspectRatio: [2]int{16, 9}}}
	if got := Select(img, options); got != nil {
		t.Errorf("Select = %+v, want nil", got)
	}
}

func TestOCRBoundsIdentityScale(t *testing.T) {
	l := Layout{
		Offset:              image.Pt(478, 411),
		Size:                image.Pt(965, 49),
		ReferenceResolution: image.Pt(1920, 1080),
	}
	r, err := l.OCRBounds(image.Pt(1920, 1080))
	if err != nil {
		t.Fatalf("OCRBounds: %v", err)
	}
	want := image.Rect(478, 411, 478+965, 411+49)
	if r != want {
		t.Errorf("OCRBounds = %v, want %v", r, want)
	}
}

func TestOCRBoundsIntegerScale(t *testing.T) {
	l := Layout{
		Offset:              image.Pt(100, 50),
		Size:                image.Pt(200, 25),
		ReferenceResolution: image.Pt(1920, 1080),
	}
	r, err := l.OCRBounds(image.Pt(3840, 2160))
	if err != nil {
		t.Fatalf("OCRBounds: %v", err)
	}
	want := image.Rect(200, 100, 200+400, 100+50)
	if r != want {
		t.Errorf("OCRBounds = %v, want %v", r, want)
	}
}

func TestOCRBoundsDegenerate(t *testing.T) {
	l := Layout{
		Offset:              image.Pt(100, 50),
		Size:                image.Pt(200, 25),
		ReferenceResolution: image.Pt(1920, 1080),
	}
	// Capture smaller than the reference: integer factor collapses to zero.
	_, err := l.OCRBounds(image.Pt(1280, 720))
	if !errx.IsKind(err, errx.KindDegenerateCrop) {
		t.Errorf("err = %v, want KindDegenerateCrop", err)
	}
}

func TestParseAspectRatio(t *testing.T) {
	got, err := ParseAspectRatio("16:9")
	if err != nil || got != [2]int{16, 9} {
		t.Errorf("ParseAspectRatio = %v, %v", got, err)
	}
	if _, err := ParseAspectRatio("16x9"); err == nil {
		t.Error("missing colon should fail")
	}
	if _, err := ParseAspectRatio("0:9"); err == nil {
		t.Error("zero component should fail")
	}
}

func TestParseHexColor(t *testing.T) {
	c, err := ParseHexColor("#bea966")
	if err != nil {
		t.Fatalf("ParseHexColor: %v", err)
	}
	if c != (color.RGBA{R: 0xBE, G: 0xA9, B: 0x66, A: 255}) {
		t.Errorf("ParseHexColor = %+v", c)
	}
	if _, err := ParseHexColor("bad"); err == nil {
		t.Error("invalid hex should fail")
	}
}

func TestParsePixelCheckRoundTrip(t *testing.T) {
	pc, err := ParsePixelCheck("12, 34, #ff00aa, 2.5")
	if err != nil {
		t.Fatalf("ParsePixelCheck: %v", err)
	}
	if pc.X != 12 || pc.Y != 34 || pc.Tolerance != 2.5 {
		t.Errorf("ParsePixelCheck = %+v", pc)
	}
	if pc.Color != (color.RGBA{R: 0xFF, G: 0x00, B: 0xAA, A: 255}) {
		t.Errorf("color = %+v", pc.Color)
	}
	if s := pc.String(); s != "12,34,#ff00aa,2.5" {
		t.Errorf("String = %q", s)
	}

	if _, err := ParsePixelCheck("1,2,#ffffff"); err == nil {
		t.Error("three fields should fail")
	}
}
