// Package color parses CSS color notations into a structured color and
// converts it between color spaces and a packed 32-bit RGBA form.
package color

import "math"

// Space identifies the color space a Color's components live in. The set
// is closed; conversion code switches exhaustively over it.
type Space int

const (
	SpaceSRGB Space = iota
	SpaceHSL
	SpaceHWB
	SpaceLab
	SpaceLCh
	SpaceOkLab
	SpaceOkLCh
	SpaceSRGBLinear
	SpaceDisplayP3
	SpaceA98RGB
	SpaceProPhotoRGB
	SpaceRec2020
	SpaceXYZD50
	SpaceXYZD65
)

// String returns the CSS name of the color space.
func (s Space) String() string {
	switch s {
	case SpaceSRGB:
		return "srgb"
	case SpaceHSL:
		return "hsl"
	case SpaceHWB:
		return "hwb"
	case SpaceLab:
		return "lab"
	case SpaceLCh:
		return "lch"
	case SpaceOkLab:
		return "oklab"
	case SpaceOkLCh:
		return "oklch"
	case SpaceSRGBLinear:
		return "srgb-linear"
	case SpaceDisplayP3:
		return "display-p3"
	case SpaceA98RGB:
		return "a98-rgb"
	case SpaceProPhotoRGB:
		return "prophoto-rgb"
	case SpaceRec2020:
		return "rec2020"
	case SpaceXYZD50:
		return "xyz-d50"
	case SpaceXYZD65:
		return "xyz-d65"
	}
	return "srgb"
}

// Color is a parsed absolute color. The meaning and range of C0..C2
// depend on Space: sRGB-family components are 0..1, HSL/HWB carry hue in
// degrees and percentages as 0..100, Lab/LCh carry CIE lightness 0..100,
// OkLab/OkLCh lightness 0..1. Alpha is always in [0,1].
type Color struct {
	Space      Space
	C0, C1, C2 float64
	Alpha      float64
}

// clamp returns v limited to [lo, hi].
func clamp(v, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, v))
}

// normHue reduces a hue angle in degrees into [0, 360).
func normHue(h float64) float64 {
	h = math.Mod(h, 360)
	if h < 0 {
		h += 360
	}
	return h
}
