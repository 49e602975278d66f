// Package style bundles the selector, color, value, and calc components
// behind a single engine with a shared logger, mirroring how a host
// embeds the library.
package style

import (
	"fmt"
	"strings"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"cssengine/calc"
	"cssengine/color"
	"cssengine/selector"
	"cssengine/sheet"
	"cssengine/value"
)

// Engine is the top-level entry point. It is safe for concurrent use:
// all methods are read-only once the engine is constructed.
type Engine struct {
	log       *zap.Logger
	selectors *selector.Parser
	colors    *color.Parser
	values    *value.Parser
	calc      *calc.Evaluator
	sheets    *sheet.Parser
}

// New creates an engine. A nil logger disables logging.
func New(log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("css")
	return &Engine{
		log:       log,
		selectors: selector.NewParser(log),
		colors:    color.NewParser(log),
		values:    value.NewParser(log),
		calc:      calc.NewEvaluator(log),
		sheets:    sheet.NewParser(log),
	}
}

// ParseStylesheet parses stylesheet text; the base URL resolves @import
// targets. Malformed rules become warnings on the returned sheet.
func (e *Engine) ParseStylesheet(text, baseURL string) (*sheet.Stylesheet, error) {
	return e.sheets.Parse(text, baseURL)
}

// ParseMediaQuery parses and validates a media query.
func (e *Engine) ParseMediaQuery(text string) (sheet.MediaQuery, error) {
	return e.sheets.ParseMediaQuery(text)
}

// ParseSelector parses a single complex selector.
func (e *Engine) ParseSelector(text string) (selector.Selector, error) {
	return e.selectors.Parse(text)
}

// ParseSelectorList parses a comma-separated selector list. Invalid
// members are dropped and their errors accumulated; the valid members
// are returned alongside the combined error.
func (e *Engine) ParseSelectorList(text string) ([]selector.Selector, error) {
	var sels []selector.Selector
	var errs error
	for _, part := range strings.Split(text, ",") {
		if strings.TrimSpace(part) == "" {
			errs = multierr.Append(errs, fmt.Errorf("empty selector in list %q", text))
			continue
		}
		sel, err := e.selectors.Parse(part)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		sels = append(sels, sel)
	}
	return sels, errs
}

// MatchSelector parses the selector and matches it against the element.
func (e *Engine) MatchSelector(text string, el selector.Element) (bool, error) {
	sel, err := e.selectors.Parse(text)
	if err != nil {
		return false, err
	}
	return selector.Matches(sel, el), nil
}

// ParseColor parses a CSS color into its declared color space.
func (e *Engine) ParseColor(text string) (color.Color, error) {
	return e.colors.Parse(text)
}

// ParseColorToPacked parses a CSS color and converts it to packed
// 8-bit sRGB.
func (e *Engine) ParseColorToPacked(text string) (color.Packed, error) {
	c, err := e.colors.Parse(text)
	if err != nil {
		return 0, err
	}
	return color.ToPacked(c), nil
}

// EvaluateCalc evaluates a dimensionless calc() expression or bare
// numeric literal.
func (e *Engine) EvaluateCalc(text string) (float64, error) {
	return e.calc.Evaluate(text)
}

// ParseValue parses a generic property value.
func (e *Engine) ParseValue(text, property string) (value.Value, error) {
	return e.values.ParseValue(text, property)
}

// ComputedValue resolves a length-valued property to pixels against a
// reference font size. calc() expressions are evaluated; plain values
// have their unit resolved directly.
func (e *Engine) ComputedValue(text, property string, refFontSizePx float64) (value.Value, error) {
	ctx := value.Context{FontSizePx: refFontSizePx, RootFontSizePx: refFontSizePx}

	s := strings.TrimSpace(text)
	var px float64
	if strings.HasPrefix(strings.ToLower(s), "calc(") {
		var err error
		px, err = e.calc.EvaluateLength(s, ctx)
		if err != nil {
			return value.Value{}, fmt.Errorf("computing %q for property %q: %w", text, property, err)
		}
	} else {
		v, err := value.ParseNumeric(s)
		if err != nil {
			return value.Value{}, fmt.Errorf("computing %q for property %q: %w", text, property, err)
		}
		px, err = value.ResolveLength(v.Value, v.Unit, ctx)
		if err != nil {
			return value.Value{}, fmt.Errorf("computing %q for property %q: %w", text, property, err)
		}
	}

	e.log.Debug("computed value",
		zap.String("property", property),
		zap.String("value", s),
		zap.Float64("px", px))
	// Raw is left empty so the value stringifies as the resolved pixels,
	// not the input text.
	return value.Value{Value: px, Unit: "px"}, nil
}
