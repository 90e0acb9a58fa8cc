package ocr

import (
	"image"
	"image/draw"
	"time"

	"github.com/google/uuid"

	"github.com/lootlens/platform/internal/errx"
	"github.com/lootlens/platform/internal/geom"
	"github.com/lootlens/platform/internal/syncx"
	"github.com/lootlens/platform/internal/trace"
)

// Extractor runs one full OCR pass: crop, preprocess, recognize, assemble.
// The engine is shared and lockable; the extractor holds it only around the
// four engine calls.
type Extractor struct {
	engine *syncx.Guard[Engine]
	pre    Preprocessor
}

// NewExtractor wraps a guarded engine. A nil preprocessor selects the
// overlay text pipeline.
func NewExtractor(engine *syncx.Guard[Engine], pre Preprocessor) *Extractor {
	if pre == nil {
		pre = OverlayTextPipeline{}
	}
	return &Extractor{engine: engine, pre: pre}
}

// Extract crops img to bounds, recognizes text, and clusters the words into
// items using gapThreshold. All returned coordinates are absolute image
// pixels. Failures are never retried here; the next external trigger is the
// retry.
func (x *Extractor) Extract(img *image.RGBA, bounds image.Rectangle, gapThreshold float32) (*Results, error) {
	start := time.Now()
	span := trace.Start("ocr_extract")
	defer span.End()

	crop := bounds.Intersect(img.Bounds())
	if crop.Dx() == 0 || crop.Dy() == 0 {
		return nil, errx.Newf(errx.KindDegenerateCrop,
			"crop %v has zero width or height", bounds)
	}

	// Tight copy so the preprocessor sees a zero-origin buffer.
	cropped := image.NewRGBA(image.Rect(0, 0, crop.Dx(), crop.Dy()))
	draw.Draw(cropped, cropped.Rect, img, crop.Min, draw.Src)

	processed, err := x.pre.Process(cropped)
	if err != nil {
		return nil, err
	}

	var texts []*LineText
	// Lock scope: exactly the prepare/detect/find-lines/recognize window.
	err = x.engine.Do(func(eng Engine) error {
		in, err := eng.PrepareInput(processed)
		if err != nil {
			return errx.Wrap(err, errx.KindEngineFailure, "prepare input")
		}
		wordRects, err := eng.DetectWords(in)
		if err != nil {
			return errx.Wrap(err, errx.KindEngineFailure, "detect words")
		}
		lineRegions := eng.FindTextLines(in, wordRects)
		texts, err = eng.RecognizeText(in, lineRegions)
		if err != nil {
			return errx.Wrap(err, errx.KindEngineFailure, "recognize text")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	offset := geom.Vec2{X: float32(crop.Min.X), Y: float32(crop.Min.Y)}
	res := &Results{
		CycleID: uuid.NewString(),
		Region:  geom.FromRect(crop),
	}
	for _, line := range texts {
		if line == nil {
			// Recognition produced no output for this line.
			continue
		}
		first := len(res.Words)
		for _, w := range line.Words {
			if w.Text == "" {
				continue
			}
			res.Words = append(res.Words, Word{
				Text:   w.Text,
				Bounds: geom.FromRect(w.Bounds).Translate(offset),
			})
		}
		if len(res.Words) == first && line.Text == "" {
			continue
		}
		res.Lines = append(res.Lines, Line{
			Bounds: geom.FromRect(line.Bounds).Translate(offset),
			Words:  [2]int{first, len(res.Words)},
		})
	}
	res.Items = DetectColumns(res.Words, gapThreshold)
	res.Elapsed = time.Since(start)
	span.Attr("words", len(res.Words))
	span.Attr("items", len(res.Items))
	return res, nil
}
