package color

import "math"

// White points and Lab constants (CSS Color 4).
var (
	whiteD50 = [3]float64{0.9642956764295677, 1.0, 0.8251046025104602}
)

const (
	labEpsilon = 216.0 / 24389.0
	labKappa   = 24389.0 / 27.0
)

// mul3 applies a row-major 3x3 matrix to a column vector.
func mul3(m [9]float64, v [3]float64) [3]float64 {
	return [3]float64{
		m[0]*v[0] + m[1]*v[1] + m[2]*v[2],
		m[3]*v[0] + m[4]*v[1] + m[5]*v[2],
		m[6]*v[0] + m[7]*v[1] + m[8]*v[2],
	}
}

// Linear-light RGB to/from XYZ matrices.
var (
	xyzD65FromLinearSRGB = [9]float64{
		0.41239079926595934, 0.357584339383878, 0.1804807884018343,
		0.21263900587151027, 0.715168678767756, 0.07219231536073371,
		0.01933081871559182, 0.11919477979462598, 0.9505321522496607,
	}
	linearSRGBFromXYZD65 = [9]float64{
		3.2409699419045226, -1.537383177570094, -0.4986107602930034,
		-0.9692436362808796, 1.8759675015077202, 0.04155505740717559,
		0.05563007969699366, -0.20397695888897652, 1.0569715142428786,
	}
	xyzD65FromDisplayP3 = [9]float64{
		0.4865709486482162, 0.26566769316909306, 0.19821728523436247,
		0.2289745640697488, 0.6917385218365064, 0.079286914093745,
		0.0, 0.04511338185890264, 1.043944368900976,
	}
	xyzD65FromA98 = [9]float64{
		0.5766690429101305, 0.1855582379065463, 0.1882286462349947,
		0.29734497525053605, 0.6273635662554661, 0.07529145849399788,
		0.02703136138641234, 0.07068885253582723, 0.9913375368376388,
	}
	xyzD50FromProPhoto = [9]float64{
		0.7977604896723027, 0.13518583717574031, 0.0313493495815248,
		0.2880711282292934, 0.7118432178101014, 0.00008565396060525902,
		0.0, 0.0, 0.8251046025104602,
	}
	xyzD65FromRec2020 = [9]float64{
		0.6369580483012914, 0.14461690358620832, 0.16888097516417205,
		0.2627002120112671, 0.6779980715188708, 0.05930171646986196,
		0.0, 0.028072693049087428, 1.060985057710791,
	}
	// Bradford chromatic adaptation.
	xyzD65FromXYZD50 = [9]float64{
		0.9554734527042182, -0.023098536874261423, 0.0632593086610217,
		-0.028369706963208136, 1.0099954580058226, 0.021041398966943008,
		0.012314001688319899, -0.020507696433477912, 1.3303659366080753,
	}
)

// srgbGamma applies the sRGB transfer function to a linear channel,
// mirroring the curve for negative values as CSS Color 4 does.
func srgbGamma(v float64) float64 {
	sign := 1.0
	if v < 0 {
		sign, v = -1, -v
	}
	if v <= 0.0031308 {
		return sign * 12.92 * v
	}
	return sign * (1.055*math.Pow(v, 1/2.4) - 0.055)
}

// srgbLinearize inverts srgbGamma.
func srgbLinearize(v float64) float64 {
	sign := 1.0
	if v < 0 {
		sign, v = -1, -v
	}
	if v <= 0.04045 {
		return sign * v / 12.92
	}
	return sign * math.Pow((v+0.055)/1.055, 2.4)
}

// ToSRGB converts any parsed color to gamma-encoded sRGB. The switch is
// exhaustive over the closed Space enumeration; adding a space without a
// conversion is a compile-time-visible omission here.
func ToSRGB(c Color) Color {
	out := func(r, g, b float64) Color {
		return Color{Space: SpaceSRGB, C0: r, C1: g, C2: b, Alpha: c.Alpha}
	}
	fromLinear := func(v [3]float64) Color {
		return out(srgbGamma(v[0]), srgbGamma(v[1]), srgbGamma(v[2]))
	}
	fromXYZD65 := func(v [3]float64) Color {
		return fromLinear(mul3(linearSRGBFromXYZD65, v))
	}
	fromXYZD50 := func(v [3]float64) Color {
		return fromXYZD65(mul3(xyzD65FromXYZD50, v))
	}

	switch c.Space {
	case SpaceSRGB:
		return c

	case SpaceHSL:
		r, g, b := hslToRGB(c.C0, c.C1/100, c.C2/100)
		return out(r, g, b)

	case SpaceHWB:
		r, g, b := hwbToRGB(c.C0, c.C1/100, c.C2/100)
		return out(r, g, b)

	case SpaceSRGBLinear:
		return fromLinear([3]float64{c.C0, c.C1, c.C2})

	case SpaceDisplayP3:
		lin := [3]float64{srgbLinearize(c.C0), srgbLinearize(c.C1), srgbLinearize(c.C2)}
		return fromXYZD65(mul3(xyzD65FromDisplayP3, lin))

	case SpaceA98RGB:
		lin := [3]float64{a98Linearize(c.C0), a98Linearize(c.C1), a98Linearize(c.C2)}
		return fromXYZD65(mul3(xyzD65FromA98, lin))

	case SpaceProPhotoRGB:
		lin := [3]float64{prophotoLinearize(c.C0), prophotoLinearize(c.C1), prophotoLinearize(c.C2)}
		return fromXYZD50(mul3(xyzD50FromProPhoto, lin))

	case SpaceRec2020:
		lin := [3]float64{rec2020Linearize(c.C0), rec2020Linearize(c.C1), rec2020Linearize(c.C2)}
		return fromXYZD65(mul3(xyzD65FromRec2020, lin))

	case SpaceXYZD65:
		return fromXYZD65([3]float64{c.C0, c.C1, c.C2})

	case SpaceXYZD50:
		return fromXYZD50([3]float64{c.C0, c.C1, c.C2})

	case SpaceLab:
		return fromXYZD50(labToXYZ(c.C0, c.C1, c.C2))

	case SpaceLCh:
		a, b := chToAB(c.C1, c.C2)
		return fromXYZD50(labToXYZ(c.C0, a, b))

	case SpaceOkLab:
		return fromLinear(oklabToLinearSRGB(c.C0, c.C1, c.C2))

	case SpaceOkLCh:
		a, b := chToAB(c.C1, c.C2)
		return fromLinear(oklabToLinearSRGB(c.C0, a, b))
	}
	return c
}

// hslToRGB converts hue in degrees and s,l in [0,1] to sRGB channels.
func hslToRGB(h, s, l float64) (float64, float64, float64) {
	f := func(n float64) float64 {
		k := math.Mod(n+h/30, 12)
		a := s * math.Min(l, 1-l)
		return l - a*math.Max(-1, math.Min(1, math.Min(k-3, 9-k)))
	}
	return f(0), f(8), f(4)
}

// hwbToRGB converts hue in degrees and whiteness/blackness in [0,1].
func hwbToRGB(h, w, b float64) (float64, float64, float64) {
	if w+b >= 1 {
		gray := w / (w + b)
		return gray, gray, gray
	}
	r, g, bl := hslToRGB(h, 1, 0.5)
	scale := 1 - w - b
	return r*scale + w, g*scale + w, bl*scale + w
}

// chToAB converts chroma/hue polar coordinates to a/b axes.
func chToAB(c, hDeg float64) (float64, float64) {
	h := hDeg * math.Pi / 180
	return c * math.Cos(h), c * math.Sin(h)
}

// labToXYZ converts CIE Lab (D50) to XYZ (D50).
func labToXYZ(l, a, b float64) [3]float64 {
	fy := (l + 16) / 116
	fx := fy + a/500
	fz := fy - b/200

	finv := func(t float64) float64 {
		if t3 := t * t * t; t3 > labEpsilon {
			return t3
		}
		return (116*t - 16) / labKappa
	}

	var y float64
	if l > labKappa*labEpsilon {
		y = fy * fy * fy
	} else {
		y = l / labKappa
	}

	return [3]float64{
		finv(fx) * whiteD50[0],
		y * whiteD50[1],
		finv(fz) * whiteD50[2],
	}
}

// oklabToLinearSRGB converts OkLab to linear-light sRGB.
func oklabToLinearSRGB(l, a, b float64) [3]float64 {
	l_ := l + 0.3963377774*a + 0.2158037573*b
	m_ := l - 0.1055613458*a - 0.0638541728*b
	s_ := l - 0.0894841775*a - 1.2914855480*b

	l3 := l_ * l_ * l_
	m3 := m_ * m_ * m_
	s3 := s_ * s_ * s_

	return [3]float64{
		4.0767416621*l3 - 3.3077115913*m3 + 0.2309699292*s3,
		-1.2684380046*l3 + 2.6097574011*m3 - 0.3413193965*s3,
		-0.0041960863*l3 - 0.7034186147*m3 + 1.7076147010*s3,
	}
}

// a98Linearize inverts the Adobe RGB (1998) transfer function.
func a98Linearize(v float64) float64 {
	sign := 1.0
	if v < 0 {
		sign, v = -1, -v
	}
	return sign * math.Pow(v, 563.0/256.0)
}

// prophotoLinearize inverts the ProPhoto RGB transfer function.
func prophotoLinearize(v float64) float64 {
	sign := 1.0
	if v < 0 {
		sign, v = -1, -v
	}
	if v <= 16.0/512.0 {
		return sign * v / 16
	}
	return sign * math.Pow(v, 1.8)
}

// rec2020Linearize inverts the Rec. 2020 transfer function.
func rec2020Linearize(v float64) float64 {
	const (
		alpha = 1.09929682680944
		beta  = 0.018053968510807
	)
	sign := 1.0
	if v < 0 {
		sign, v = -1, -v
	}
	if v < beta*4.5 {
		return sign * v / 4.5
	}
	return sign * math.Pow((v+alpha-1)/alpha, 1/0.45)
}
