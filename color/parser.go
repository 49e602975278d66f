package color

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
	"go.uber.org/zap"
)

// Parser parses CSS color notations.
type Parser struct {
	log *zap.Logger
}

// NewParser creates a new color parser.
func NewParser(log *zap.Logger) *Parser {
	if log == nil {
		log = zap.NewNop()
	}
	return &Parser{log: log.Named("color-parser")}
}

// compKind discriminates the argument tokens inside a color function.
type compKind int

const (
	compNumber compKind = iota
	compPercent
	compAngle // dimension with an angle unit, already in degrees
	compIdent
	compSlash
	compComma
)

type comp struct {
	kind compKind
	num  float64
	text string // ident text, or the raw token for diagnostics
}

// Parse parses color text into a Color. Out-of-range numeric components
// are clamped or (for hues) reduced modulo 360; syntactically malformed
// input and unknown names are errors.
func (p *Parser) Parse(text string) (Color, error) {
	s := strings.TrimSpace(text)
	if s == "" {
		return Color{}, fmt.Errorf("empty color value")
	}

	lexer := css.NewLexer(parse.NewInputString(s))

	tt, data := nextSignificant(lexer)
	switch tt {
	case css.HashToken:
		c, err := parseHex(strings.TrimPrefix(string(data), "#"))
		if err != nil {
			return Color{}, err
		}
		if err := expectEOF(lexer, s); err != nil {
			return Color{}, err
		}
		return c, nil

	case css.IdentToken:
		name := strings.ToLower(string(data))
		if err := expectEOF(lexer, s); err != nil {
			return Color{}, err
		}
		if name == "currentcolor" {
			return Color{}, fmt.Errorf("currentcolor cannot be resolved to an absolute color")
		}
		c, ok := namedColor(name)
		if !ok {
			return Color{}, fmt.Errorf("unknown color name %q", name)
		}
		return c, nil

	case css.FunctionToken:
		name := strings.ToLower(strings.TrimSuffix(string(data), "("))
		args, err := collectArgs(lexer, name)
		if err != nil {
			return Color{}, err
		}
		if err := expectEOF(lexer, s); err != nil {
			return Color{}, err
		}
		c, err := p.parseFunction(name, args)
		if err != nil {
			return Color{}, err
		}
		p.log.Debug("parsed color function",
			zap.String("function", name),
			zap.String("space", c.Space.String()))
		return c, nil

	default:
		return Color{}, fmt.Errorf("unexpected token %q in color %q", string(data), s)
	}
}

func nextSignificant(lexer *css.Lexer) (css.TokenType, []byte) {
	for {
		tt, data := lexer.Next()
		if tt == css.WhitespaceToken || tt == css.CommentToken {
			continue
		}
		return tt, data
	}
}

func expectEOF(lexer *css.Lexer, text string) error {
	tt, data := nextSignificant(lexer)
	if tt != css.ErrorToken {
		return fmt.Errorf("unexpected %q after color in %q", string(data), text)
	}
	if lexer.Err() != io.EOF {
		return fmt.Errorf("invalid color %q: %w", text, lexer.Err())
	}
	return nil
}

// collectArgs reads function arguments up to the closing parenthesis.
func collectArgs(lexer *css.Lexer, fn string) ([]comp, error) {
	var args []comp
	for {
		tt, data := lexer.Next()
		switch tt {
		case css.ErrorToken:
			return nil, fmt.Errorf("unterminated %s() function", fn)
		case css.RightParenthesisToken:
			return args, nil
		case css.WhitespaceToken, css.CommentToken:
			continue
		case css.NumberToken:
			v, err := strconv.ParseFloat(string(data), 64)
			if err != nil {
				return nil, fmt.Errorf("invalid number %q in %s()", string(data), fn)
			}
			args = append(args, comp{kind: compNumber, num: v, text: string(data)})
		case css.PercentageToken:
			v, err := strconv.ParseFloat(strings.TrimSuffix(string(data), "%"), 64)
			if err != nil {
				return nil, fmt.Errorf("invalid percentage %q in %s()", string(data), fn)
			}
			args = append(args, comp{kind: compPercent, num: v, text: string(data)})
		case css.DimensionToken:
			deg, err := angleDegrees(string(data))
			if err != nil {
				return nil, fmt.Errorf("%w in %s()", err, fn)
			}
			args = append(args, comp{kind: compAngle, num: deg, text: string(data)})
		case css.IdentToken:
			args = append(args, comp{kind: compIdent, text: strings.ToLower(string(data))})
		case css.CommaToken:
			args = append(args, comp{kind: compComma, text: ","})
		case css.DelimToken:
			if string(data) == "/" {
				args = append(args, comp{kind: compSlash, text: "/"})
				continue
			}
			return nil, fmt.Errorf("unexpected %q in %s()", string(data), fn)
		case css.FunctionToken:
			return nil, fmt.Errorf("nested function %q is not supported in %s()", string(data), fn)
		default:
			return nil, fmt.Errorf("unexpected token %q in %s()", string(data), fn)
		}
	}
}

// angleDegrees converts an angle dimension token to degrees.
func angleDegrees(tok string) (float64, error) {
	numEnd := 0
	for i, r := range tok {
		if r == '.' || r == '-' || r == '+' || r == 'e' || r == 'E' || (r >= '0' && r <= '9') {
			numEnd = i + 1
		} else {
			break
		}
	}
	v, err := strconv.ParseFloat(tok[:numEnd], 64)
	if err != nil {
		return 0, fmt.Errorf("invalid angle %q", tok)
	}
	switch strings.ToLower(tok[numEnd:]) {
	case "deg":
		return v, nil
	case "grad":
		return v * 0.9, nil
	case "rad":
		return v * 180 / math.Pi, nil
	case "turn":
		return v * 360, nil
	default:
		return 0, fmt.Errorf("invalid angle unit in %q", tok)
	}
}

// parseHex parses 3, 4, 6, and 8 digit hex notations.
func parseHex(hex string) (Color, error) {
	var r, g, b, a uint8
	a = 255

	digit := func(i int) (uint8, error) {
		v, err := strconv.ParseUint(hex[i:i+1], 16, 8)
		if err != nil {
			return 0, fmt.Errorf("invalid hex color #%s", hex)
		}
		return uint8(v*16 + v), nil
	}
	pair := func(i int) (uint8, error) {
		v, err := strconv.ParseUint(hex[i:i+2], 16, 8)
		if err != nil {
			return 0, fmt.Errorf("invalid hex color #%s", hex)
		}
		return uint8(v), nil
	}

	var err error
	switch len(hex) {
	case 3, 4:
		if r, err = digit(0); err == nil {
			if g, err = digit(1); err == nil {
				b, err = digit(2)
			}
		}
		if err == nil && len(hex) == 4 {
			a, err = digit(3)
		}
	case 6, 8:
		if r, err = pair(0); err == nil {
			if g, err = pair(2); err == nil {
				b, err = pair(4)
			}
		}
		if err == nil && len(hex) == 8 {
			a, err = pair(6)
		}
	default:
		return Color{}, fmt.Errorf("invalid hex color #%s: need 3, 4, 6 or 8 digits", hex)
	}
	if err != nil {
		return Color{}, err
	}

	return Color{
		Space: SpaceSRGB,
		C0:    float64(r) / 255,
		C1:    float64(g) / 255,
		C2:    float64(b) / 255,
		Alpha: float64(a) / 255,
	}, nil
}

func (p *Parser) parseFunction(name string, args []comp) (Color, error) {
	switch name {
	case "rgb", "rgba":
		return parseRGB(name, args)
	case "hsl", "hsla":
		return parseHueFunction(name, args, SpaceHSL)
	case "hwb":
		return parseHueFunction(name, args, SpaceHWB)
	case "lab":
		return parseLabLike(name, args, SpaceLab, 100, 125)
	case "oklab":
		return parseLabLike(name, args, SpaceOkLab, 1, 0.4)
	case "lch":
		return parseLChLike(name, args, SpaceLCh, 100, 150)
	case "oklch":
		return parseLChLike(name, args, SpaceOkLCh, 1, 0.4)
	case "color":
		return parseColorFunction(args)
	default:
		return Color{}, fmt.Errorf("unsupported color function %q", name+"(")
	}
}

// splitChannels normalizes both the legacy comma form and the modern
// space/slash form into exactly three channel components plus an optional
// alpha component.
func splitChannels(fn string, args []comp) (chans [3]comp, alpha *comp, err error) {
	hasComma := false
	for _, a := range args {
		if a.kind == compComma {
			hasComma = true
			break
		}
	}

	var fields []comp
	if hasComma {
		// Legacy form: every group between commas is exactly one component.
		expectComp := true
		for _, a := range args {
			if a.kind == compComma {
				if expectComp {
					return chans, nil, fmt.Errorf("missing component in %s()", fn)
				}
				expectComp = true
				continue
			}
			if a.kind == compSlash {
				return chans, nil, fmt.Errorf("unexpected %q in legacy %s() syntax", "/", fn)
			}
			if !expectComp {
				return chans, nil, fmt.Errorf("expected %q in %s()", ",", fn)
			}
			fields = append(fields, a)
			expectComp = false
		}
		if expectComp {
			return chans, nil, fmt.Errorf("trailing %q in %s()", ",", fn)
		}
	} else {
		// Modern form: three components, then an optional "/ alpha".
		seenSlash := false
		for _, a := range args {
			if a.kind == compSlash {
				if seenSlash || len(fields) != 3 {
					return chans, nil, fmt.Errorf("misplaced %q in %s()", "/", fn)
				}
				seenSlash = true
				continue
			}
			fields = append(fields, a)
		}
		if seenSlash && len(fields) != 4 {
			return chans, nil, fmt.Errorf("expected alpha after %q in %s()", "/", fn)
		}
	}

	switch len(fields) {
	case 3:
		copy(chans[:], fields)
		return chans, nil, nil
	case 4:
		copy(chans[:], fields[:3])
		return chans, &fields[3], nil
	default:
		return chans, nil, fmt.Errorf("%s() takes 3 or 4 components, got %d", fn, len(fields))
	}
}

// parseAlpha clamps an alpha component into [0,1].
func parseAlpha(fn string, a *comp) (float64, error) {
	if a == nil {
		return 1, nil
	}
	switch a.kind {
	case compNumber:
		return clamp(a.num, 0, 1), nil
	case compPercent:
		return clamp(a.num/100, 0, 1), nil
	case compIdent:
		if a.text == "none" {
			return 0, nil
		}
	}
	return 0, fmt.Errorf("invalid alpha %q in %s()", a.text, fn)
}

// channelValue interprets a channel as number-or-none, with percentages
// scaled so that 100% maps to pctRef.
func channelValue(fn string, c comp, pctRef float64) (float64, error) {
	switch c.kind {
	case compNumber:
		return c.num, nil
	case compPercent:
		return c.num / 100 * pctRef, nil
	case compIdent:
		if c.text == "none" {
			return 0, nil
		}
	}
	return 0, fmt.Errorf("invalid component %q in %s()", c.text, fn)
}

// hueValue interprets a hue channel: a plain number is degrees, angles
// convert, and the result is reduced into [0,360).
func hueValue(fn string, c comp) (float64, error) {
	switch c.kind {
	case compNumber, compAngle:
		return normHue(c.num), nil
	case compIdent:
		if c.text == "none" {
			return 0, nil
		}
	}
	return 0, fmt.Errorf("invalid hue %q in %s()", c.text, fn)
}

func parseRGB(fn string, args []comp) (Color, error) {
	chans, alphaComp, err := splitChannels(fn, args)
	if err != nil {
		return Color{}, err
	}
	alpha, err := parseAlpha(fn, alphaComp)
	if err != nil {
		return Color{}, err
	}

	var rgb [3]float64
	for i, c := range chans {
		v, err := channelValue(fn, c, 255)
		if err != nil {
			return Color{}, err
		}
		rgb[i] = clamp(v, 0, 255) / 255
	}
	return Color{Space: SpaceSRGB, C0: rgb[0], C1: rgb[1], C2: rgb[2], Alpha: alpha}, nil
}

// parseHueFunction handles hsl()/hsla() and hwb(): a hue plus two
// percentage channels clamped into [0,100].
func parseHueFunction(fn string, args []comp, space Space) (Color, error) {
	chans, alphaComp, err := splitChannels(fn, args)
	if err != nil {
		return Color{}, err
	}
	alpha, err := parseAlpha(fn, alphaComp)
	if err != nil {
		return Color{}, err
	}

	h, err := hueValue(fn, chans[0])
	if err != nil {
		return Color{}, err
	}
	c1, err := channelValue(fn, chans[1], 100)
	if err != nil {
		return Color{}, err
	}
	c2, err := channelValue(fn, chans[2], 100)
	if err != nil {
		return Color{}, err
	}
	return Color{
		Space: space,
		C0:    h,
		C1:    clamp(c1, 0, 100),
		C2:    clamp(c2, 0, 100),
		Alpha: alpha,
	}, nil
}

// parseLabLike handles lab() and oklab(): lightness clamped to
// [0, lRef], then two unbounded axes whose percentage reference is abRef.
func parseLabLike(fn string, args []comp, space Space, lRef, abRef float64) (Color, error) {
	chans, alphaComp, err := splitChannels(fn, args)
	if err != nil {
		return Color{}, err
	}
	alpha, err := parseAlpha(fn, alphaComp)
	if err != nil {
		return Color{}, err
	}

	l, err := channelValue(fn, chans[0], lRef)
	if err != nil {
		return Color{}, err
	}
	a, err := channelValue(fn, chans[1], abRef)
	if err != nil {
		return Color{}, err
	}
	b, err := channelValue(fn, chans[2], abRef)
	if err != nil {
		return Color{}, err
	}
	return Color{Space: space, C0: clamp(l, 0, lRef), C1: a, C2: b, Alpha: alpha}, nil
}

// parseLChLike handles lch() and oklch(): lightness, non-negative chroma
// (percentage reference cRef), and a hue angle.
func parseLChLike(fn string, args []comp, space Space, lRef, cRef float64) (Color, error) {
	chans, alphaComp, err := splitChannels(fn, args)
	if err != nil {
		return Color{}, err
	}
	alpha, err := parseAlpha(fn, alphaComp)
	if err != nil {
		return Color{}, err
	}

	l, err := channelValue(fn, chans[0], lRef)
	if err != nil {
		return Color{}, err
	}
	c, err := channelValue(fn, chans[1], cRef)
	if err != nil {
		return Color{}, err
	}
	h, err := hueValue(fn, chans[2])
	if err != nil {
		return Color{}, err
	}
	return Color{
		Space: space,
		C0:    clamp(l, 0, lRef),
		C1:    math.Max(c, 0),
		C2:    h,
		Alpha: alpha,
	}, nil
}

// colorFunctionSpaces maps color() space identifiers to Space values.
var colorFunctionSpaces = map[string]Space{
	"srgb":         SpaceSRGB,
	"srgb-linear":  SpaceSRGBLinear,
	"display-p3":   SpaceDisplayP3,
	"a98-rgb":      SpaceA98RGB,
	"prophoto-rgb": SpaceProPhotoRGB,
	"rec2020":      SpaceRec2020,
	"xyz":          SpaceXYZD65,
	"xyz-d50":      SpaceXYZD50,
	"xyz-d65":      SpaceXYZD65,
}

func parseColorFunction(args []comp) (Color, error) {
	if len(args) == 0 || args[0].kind != compIdent {
		return Color{}, fmt.Errorf("color() requires a color space identifier")
	}
	space, ok := colorFunctionSpaces[args[0].text]
	if !ok {
		return Color{}, fmt.Errorf("unknown color space %q in color()", args[0].text)
	}

	chans, alphaComp, err := splitChannels("color", args[1:])
	if err != nil {
		return Color{}, err
	}
	alpha, err := parseAlpha("color", alphaComp)
	if err != nil {
		return Color{}, err
	}

	var vals [3]float64
	for i, c := range chans {
		v, err := channelValue("color", c, 1)
		if err != nil {
			return Color{}, err
		}
		vals[i] = v
	}
	return Color{Space: space, C0: vals[0], C1: vals[1], C2: vals[2], Alpha: alpha}, nil
}
