package frame

import (
	"encoding/binary"
	"log/slog"
	"math/bits"
	"sync"
)

// unsupportedLogged tracks which unknown format strings were already
// reported, so a misbehaving capture backend cannot flood the log.
var unsupportedLogged sync.Map

// NormalizeRGBA converts raw frame bytes into RGBA byte order. BGRA and
// BGRx are rewritten in place; RGBA and RGBx pass through unchanged (the
// x/alpha byte is ignored by consumers and not zeroed). Returns false when
// the buffer is shorter than width*height*4 or the format is unsupported.
func NormalizeRGBA(data []byte, m Meta) ([]byte, bool) {
	if len(data) < m.Width*m.Height*4 {
		return nil, false
	}
	switch m.Format {
	case FormatBGRA, FormatBGRx:
		swapBGRA(data[:m.Width*m.Height*4])
		return data, true
	case FormatRGBA, FormatRGBx:
		return data, true
	default:
		if _, seen := unsupportedLogged.LoadOrStore(string(m.Format), true); !seen {
			slog.Error("unsupported capture pixel format", "format", string(m.Format))
		}
		return nil, false
	}
}

// swapBGRA maps BGRA byte order to RGBA in place. Each 4-byte pixel is read
// as a big-endian 32-bit word, byte-swapped, and rotated left by 8 bits:
// BGRA -> ARGB -> RGBA, with no per-channel branching.
func swapBGRA(p []byte) {
	for i := 0; i+4 <= len(p); i += 4 {
		bgra := binary.BigEndian.Uint32(p[i:])
		rgba := bits.RotateLeft32(bits.ReverseBytes32(bgra), 8)
		binary.BigEndian.PutUint32(p[i:], rgba)
	}
}
