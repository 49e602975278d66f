package color

import (
	"fmt"
	"image/color"
	"math"
)

// Packed is a 32-bit color whose bytes are R, G, B, A from least to most
// significant, the little-endian RGBA layout shared with common pixel
// formats.
type Packed uint32

// Pack builds a Packed color from 8-bit channels.
func Pack(r, g, b, a uint8) Packed {
	return Packed(uint32(r) | uint32(g)<<8 | uint32(b)<<16 | uint32(a)<<24)
}

func (p Packed) R() uint8 { return uint8(p) }
func (p Packed) G() uint8 { return uint8(p >> 8) }
func (p Packed) B() uint8 { return uint8(p >> 16) }
func (p Packed) A() uint8 { return uint8(p >> 24) }

// NRGBA returns the packed color as a standard library non-premultiplied
// RGBA color.
func (p Packed) NRGBA() color.NRGBA {
	return color.NRGBA{R: p.R(), G: p.G(), B: p.B(), A: p.A()}
}

// String formats the color as #rrggbbaa.
func (p Packed) String() string {
	return fmt.Sprintf("#%02x%02x%02x%02x", p.R(), p.G(), p.B(), p.A())
}

// ToPacked converts a parsed color to packed form: the color is brought
// into sRGB, each channel is quantized to 8 bits with rounding and
// clamping, and the bytes are packed least-significant-first as R,G,B,A.
func ToPacked(c Color) Packed {
	s := ToSRGB(c)
	return Pack(
		quantize(s.C0),
		quantize(s.C1),
		quantize(s.C2),
		quantize(s.Alpha),
	)
}

func quantize(v float64) uint8 {
	return uint8(math.Round(clamp(v, 0, 1) * 255))
}
