package value

import "fmt"

// CSS reference pixel densities.
const (
	pxPerInch = 96.0
	pxPerCm   = 96.0 / 2.54
	pxPerMm   = 96.0 / 25.4
	pxPerQ    = 96.0 / 101.6
	pxPerPt   = 96.0 / 72.0
	pxPerPc   = 16.0
)

// Context supplies the reference sizes needed to resolve font-relative
// units and percentages.
type Context struct {
	FontSizePx     float64 // reference font size for em/ex/ch/%
	RootFontSizePx float64 // reference root font size for rem
}

// ResolveLength converts a numeric value with a CSS unit to pixels.
// Percentages resolve against the context font size. An empty unit is
// returned unchanged (a bare number).
func ResolveLength(v float64, unit string, ctx Context) (float64, error) {
	switch unit {
	case "", "px":
		return v, nil
	case "pt":
		return v * pxPerPt, nil
	case "pc":
		return v * pxPerPc, nil
	case "in":
		return v * pxPerInch, nil
	case "cm":
		return v * pxPerCm, nil
	case "mm":
		return v * pxPerMm, nil
	case "q":
		return v * pxPerQ, nil
	case "em":
		return v * ctx.FontSizePx, nil
	case "rem":
		root := ctx.RootFontSizePx
		if root == 0 {
			root = ctx.FontSizePx
		}
		return v * root, nil
	case "ex", "ch":
		// Approximated at half the font size, as engines do without
		// font metrics.
		return v * ctx.FontSizePx * 0.5, nil
	case "%":
		return v / 100 * ctx.FontSizePx, nil
	default:
		return 0, fmt.Errorf("unsupported unit %q", unit)
	}
}
