package ocr

import (
	"image"

	"gocv.io/x/gocv"

	"github.com/lootlens/platform/internal/errx"
)

// Preprocessor transforms the cropped region before recognition. It runs
// outside the engine lock.
type Preprocessor interface {
	Process(src *image.RGBA) (*image.RGBA, error)
}

// OverlayTextPipeline is the fixed preprocessing sequence tuned for the
// small, low-contrast overlay text the target UI renders: sharpen hard,
// boost contrast, soften ringing with a light blur, sharpen again gently,
// invert to dark-on-light, then pull brightness down and contrast up once
// more. Order and amounts follow the shipped tuning; changing them shifts
// recognition accuracy and the fixtures that assert on it.
type OverlayTextPipeline struct{}

func (OverlayTextPipeline) Process(src *image.RGBA) (*image.RGBA, error) {
	w, h := src.Rect.Dx(), src.Rect.Dy()
	mat, err := gocv.NewMatFromBytes(h, w, gocv.MatTypeCV8UC4, src.Pix)
	if err != nil {
		return nil, errx.Wrap(err, errx.KindEngineFailure, "mat from frame bytes")
	}
	defer mat.Close()

	unsharpen(&mat, 20.0, 15)
	contrast(&mat, 20)
	blur(&mat, 1.0)
	unsharpen(&mat, 5.0, 15)
	invert(&mat)
	brighten(&mat, -30)
	contrast(&mat, 20)

	out, err := mat.ToBytes()
	if err != nil {
		return nil, errx.Wrap(err, errx.KindEngineFailure, "mat to bytes")
	}
	return &image.RGBA{Pix: out, Stride: 4 * w, Rect: image.Rect(0, 0, w, h)}, nil
}

// unsharpen applies an unsharp mask: dst = src*(1+amount) - blurred*amount.
// radius is the Gaussian kernel size and must be odd.
func unsharpen(m *gocv.Mat, amount float64, radius int) {
	if radius%2 == 0 {
		radius++
	}
	blurred := gocv.NewMat()
	defer blurred.Close()
	gocv.GaussianBlur(*m, &blurred, image.Pt(radius, radius), 0, 0, gocv.BorderDefault)
	gocv.AddWeighted(*m, 1+amount, blurred, -amount, 0, m)
}

// contrast scales channel values around the 128 midpoint by percent.
func contrast(m *gocv.Mat, percent float64) {
	alpha := (100 + percent) / 100
	gocv.ConvertScaleAbs(*m, m, alpha, 128*(1-alpha))
}

// blur applies a small Gaussian with the given sigma.
func blur(m *gocv.Mat, sigma float64) {
	gocv.GaussianBlur(*m, m, image.Pt(3, 3), sigma, sigma, gocv.BorderDefault)
}

func invert(m *gocv.Mat) {
	gocv.BitwiseNot(*m, m)
}

func brighten(m *gocv.Mat, delta float64) {
	gocv.ConvertScaleAbs(*m, m, 1, delta)
}
