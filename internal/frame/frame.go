// Package frame bridges the external capture producer to the polling
// consumer: latest-wins transport, pixel-format normalization, and the
// consumer-side store that pairs frame bytes with format metadata.
package frame

// PixelFormat tags the byte layout of a captured frame. Capture backends
// report arbitrary strings; anything not listed here is treated as an
// unsupported "other" format.
type PixelFormat string

const (
	FormatBGRA PixelFormat = "BGRA"
	FormatRGBA PixelFormat = "RGBA"
	FormatBGRx PixelFormat = "BGRx"
	FormatRGBx PixelFormat = "RGBx"
)

// Meta describes the geometry and layout of the frame bytes currently being
// produced. It arrives on its own channel and may momentarily disagree with
// the latest frame buffer.
type Meta struct {
	Width  int
	Height int
	Format PixelFormat
}

// Frame is one captured raster plus its declared layout. Data is owned by
// the holder and moved, not copied, when consumed.
type Frame struct {
	Data []byte
	Meta Meta
}
