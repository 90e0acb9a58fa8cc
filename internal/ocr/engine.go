package ocr

import "image"

// Input is an engine-specific handle for a prepared image. It is only
// meaningful while the engine lock is held.
type Input interface{}

// LineRegion is a detected text line before recognition: its box plus the
// word boxes grouped into it, in crop-relative pixels.
type LineRegion struct {
	Bounds image.Rectangle
	Words  []image.Rectangle
}

// WordText is one recognized word within a line.
type WordText struct {
	Text   string
	Bounds image.Rectangle
}

// LineText is the recognition output for one line. A nil entry in the
// returned slice means recognition produced nothing for that line.
type LineText struct {
	Text   string
	Bounds image.Rectangle
	Words  []WordText
}

// Engine is the stateful recognition backend. It is a scarce, shared,
// lockable resource: callers acquire it only around the prepare/detect/
// find-lines/recognize window, never across preprocessing. Implementations
// need not be safe for concurrent use.
type Engine interface {
	PrepareInput(img *image.RGBA) (Input, error)
	DetectWords(in Input) ([]image.Rectangle, error)
	FindTextLines(in Input, words []image.Rectangle) []LineRegion
	RecognizeText(in Input, lines []LineRegion) ([]*LineText, error)
}
