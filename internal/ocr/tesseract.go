package ocr

import (
	"bytes"
	"image"
	"image/png"

	"github.com/otiai10/gosseract/v2"

	"github.com/lootlens/platform/internal/errx"
)

// Tesseract adapts a gosseract client to the Engine interface. The client
// is stateful (SetImage mutates it), so the adapter relies on the caller's
// engine lock for exclusion; it performs no locking of its own.
type Tesseract struct {
	client *gosseract.Client
}

// NewTesseract creates a client configured for the overlay's single-row
// text band.
func NewTesseract(languages ...string) (*Tesseract, error) {
	c := gosseract.NewClient()
	if len(languages) > 0 {
		if err := c.SetLanguage(languages...); err != nil {
			c.Close()
			return nil, errx.Wrap(err, errx.KindEngineFailure, "set languages")
		}
	}
	if err := c.SetPageSegMode(gosseract.PSM_SPARSE_TEXT); err != nil {
		c.Close()
		return nil, errx.Wrap(err, errx.KindEngineFailure, "set page seg mode")
	}
	return &Tesseract{client: c}, nil
}

// Close releases the underlying client.
func (t *Tesseract) Close() error { return t.client.Close() }

// tessInput caches per-image recognition state between the Engine calls.
type tessInput struct {
	words []gosseract.BoundingBox
}

// PrepareInput encodes the image and loads it into the client.
func (t *Tesseract) PrepareInput(img *image.RGBA) (Input, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, errx.Wrap(err, errx.KindEngineFailure, "encode input image")
	}
	if err := t.client.SetImageFromBytes(buf.Bytes()); err != nil {
		return nil, errx.Wrap(err, errx.KindEngineFailure, "set image")
	}
	return &tessInput{}, nil
}

// DetectWords returns the word boxes tesseract found, caching the full
// word records (text included) for RecognizeText.
func (t *Tesseract) DetectWords(in Input) ([]image.Rectangle, error) {
	ti := in.(*tessInput)
	boxes, err := t.client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return nil, errx.Wrap(err, errx.KindEngineFailure, "word boxes")
	}
	ti.words = boxes
	rects := make([]image.Rectangle, len(boxes))
	for i, b := range boxes {
		rects[i] = b.Box
	}
	return rects, nil
}

// FindTextLines groups the detected word boxes into tesseract's text
// lines. Words whose box overlaps a line box belong to that line.
func (t *Tesseract) FindTextLines(in Input, words []image.Rectangle) []LineRegion {
	lineBoxes, err := t.client.GetBoundingBoxes(gosseract.RIL_TEXTLINE)
	if err != nil || len(lineBoxes) == 0 {
		if len(words) == 0 {
			return nil
		}
		// No line structure: treat all words as one line.
		merged := words[0]
		for _, w := range words[1:] {
			merged = merged.Union(w)
		}
		return []LineRegion{{Bounds: merged, Words: words}}
	}

	regions := make([]LineRegion, 0, len(lineBoxes))
	for _, lb := range lineBoxes {
		region := LineRegion{Bounds: lb.Box}
		for _, w := range words {
			if w.Overlaps(lb.Box) {
				region.Words = append(region.Words, w)
			}
		}
		regions = append(regions, region)
	}
	return regions
}

// RecognizeText assembles per-line text from the cached word records. A
// line none of whose words carry text yields a nil entry.
func (t *Tesseract) RecognizeText(in Input, lines []LineRegion) ([]*LineText, error) {
	ti := in.(*tessInput)
	out := make([]*LineText, len(lines))
	for i, line := range lines {
		lt := &LineText{Bounds: line.Bounds}
		var joined []byte
		for _, rect := range line.Words {
			for _, rec := range ti.words {
				if rec.Box == rect && rec.Word != "" {
					lt.Words = append(lt.Words, WordText{Text: rec.Word, Bounds: rec.Box})
					if len(joined) > 0 {
						joined = append(joined, ' ')
					}
					joined = append(joined, rec.Word...)
					break
				}
			}
		}
		if len(lt.Words) == 0 {
			continue
		}
		lt.Text = string(joined)
		out[i] = lt
	}
	return out, nil
}
