// Package value tokenizes CSS numeric and keyword values and resolves
// length units against a reference context.
package value

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"

	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
	"go.uber.org/zap"
)

// Value represents a parsed CSS property value.
type Value struct {
	Raw     string  // Original CSS value string (e.g., "1.2em", "bold", "#ff0000")
	Value   float64 // Numeric value if applicable
	Unit    string  // Unit if applicable: "em", "px", "%", "pt", etc.
	Keyword string  // Keyword if applicable: "bold", "italic", "center", etc.
}

// IsNumeric returns true if the value has a numeric component.
func (v Value) IsNumeric() bool {
	if v.Unit != "" {
		return true
	}
	if v.Keyword != "" {
		return false
	}
	if v.Raw == "" {
		return false
	}
	first := rune(v.Raw[0])
	return unicode.IsDigit(first) || first == '.' || first == '-' || first == '+'
}

// IsKeyword returns true if the value is a keyword with no numeric component.
func (v Value) IsKeyword() bool {
	return v.Keyword != "" && v.Unit == ""
}

// String returns the CSS text of the value.
func (v Value) String() string {
	if v.Raw != "" {
		return v.Raw
	}
	if v.Keyword != "" {
		return v.Keyword
	}
	return strconv.FormatFloat(v.Value, 'g', -1, 64) + v.Unit
}

// ParseNumeric lexes a single number, percentage, or dimension token.
// Anything else, including trailing garbage, is an error.
func ParseNumeric(text string) (Value, error) {
	s := strings.TrimSpace(text)
	if s == "" {
		return Value{}, fmt.Errorf("empty numeric value")
	}

	lexer := css.NewLexer(parse.NewInputString(s))

	v := Value{Raw: s}
	seen := false
	for {
		tt, data := lexer.Next()
		switch tt {
		case css.ErrorToken:
			if lexer.Err() != io.EOF {
				return Value{}, fmt.Errorf("invalid numeric value %q: %w", s, lexer.Err())
			}
			if !seen {
				return Value{}, fmt.Errorf("expected a number in %q", s)
			}
			return v, nil
		case css.WhitespaceToken:
			continue
		case css.NumberToken:
			if seen {
				return Value{}, fmt.Errorf("unexpected %q after number in %q", string(data), s)
			}
			v.Value, _ = strconv.ParseFloat(string(data), 64)
			seen = true
		case css.PercentageToken:
			if seen {
				return Value{}, fmt.Errorf("unexpected %q after number in %q", string(data), s)
			}
			v.Value, _ = strconv.ParseFloat(strings.TrimSuffix(string(data), "%"), 64)
			v.Unit = "%"
			seen = true
		case css.DimensionToken:
			if seen {
				return Value{}, fmt.Errorf("unexpected %q after number in %q", string(data), s)
			}
			v.Value, v.Unit = SplitDimension(string(data))
			seen = true
		default:
			return Value{}, fmt.Errorf("unexpected token %q in numeric value %q", string(data), s)
		}
	}
}

// SplitDimension separates a dimension token like "12.5px" into its
// numeric value and lower-cased unit. An e/E is part of the number only
// when it starts a real exponent; otherwise it begins the unit, so
// "1.2em" splits as 1.2 + "em" and "1e2px" as 100 + "px".
func SplitDimension(s string) (float64, string) {
	numEnd := 0
scan:
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c >= '0' && c <= '9', c == '.':
			numEnd = i + 1
		case (c == '+' || c == '-') && i == 0:
			numEnd = i + 1
		case c == 'e' || c == 'E':
			j := i + 1
			if j < len(s) && (s[j] == '+' || s[j] == '-') {
				j++
			}
			if j >= len(s) || s[j] < '0' || s[j] > '9' {
				break scan
			}
			numEnd = j + 1
			i = j
		default:
			break scan
		}
	}
	if numEnd == 0 {
		return 0, ""
	}
	num, err := strconv.ParseFloat(s[:numEnd], 64)
	if err != nil {
		return 0, ""
	}
	return num, strings.ToLower(s[numEnd:])
}

// Parser parses generic property values.
type Parser struct {
	log *zap.Logger
}

// NewParser creates a new value parser.
func NewParser(log *zap.Logger) *Parser {
	if log == nil {
		log = zap.NewNop()
	}
	return &Parser{log: log.Named("value-parser")}
}

// ParseValue parses a property value without applying a per-property
// grammar: single tokens become typed values, function and multi-token
// values are normalized to keyword text. Malformed token streams are
// rejected. The property name is used for diagnostics only.
func (p *Parser) ParseValue(text, property string) (Value, error) {
	s := strings.TrimSpace(text)
	if s == "" {
		return Value{}, fmt.Errorf("empty value for property %q", property)
	}

	lexer := css.NewLexer(parse.NewInputString(s))

	var tokens []css.TokenType
	var parts []string
	depth := 0
	for {
		tt, data := lexer.Next()
		if tt == css.ErrorToken {
			if lexer.Err() != io.EOF {
				return Value{}, fmt.Errorf("invalid value %q for property %q: %w", s, property, lexer.Err())
			}
			break
		}
		switch tt {
		case css.BadStringToken, css.BadURLToken:
			return Value{}, fmt.Errorf("malformed token %q in value for property %q", string(data), property)
		case css.FunctionToken, css.LeftParenthesisToken:
			depth++
		case css.RightParenthesisToken:
			depth--
			if depth < 0 {
				return Value{}, fmt.Errorf("unbalanced parentheses in value %q for property %q", s, property)
			}
		case css.WhitespaceToken:
			if len(parts) > 0 {
				parts = append(parts, " ")
			}
			continue
		}
		tokens = append(tokens, tt)
		parts = append(parts, string(data))
	}
	if depth != 0 {
		return Value{}, fmt.Errorf("unbalanced parentheses in value %q for property %q", s, property)
	}
	if len(tokens) == 0 {
		return Value{}, fmt.Errorf("empty value for property %q", property)
	}

	raw := strings.TrimSpace(strings.Join(parts, ""))
	v := Value{Raw: raw}

	if len(tokens) == 1 {
		switch tokens[0] {
		case css.NumberToken:
			v.Value, _ = strconv.ParseFloat(raw, 64)
		case css.PercentageToken:
			v.Value, _ = strconv.ParseFloat(strings.TrimSuffix(raw, "%"), 64)
			v.Unit = "%"
		case css.DimensionToken:
			v.Value, v.Unit = SplitDimension(raw)
		case css.IdentToken:
			v.Keyword = strings.ToLower(raw)
		case css.StringToken:
			v.Keyword = unquote(raw)
		case css.HashToken:
			v.Keyword = raw
		default:
			v.Keyword = raw
		}
		return v, nil
	}

	// Function values (rgb(), calc(), url()) and multi-token values keep
	// their normalized text.
	v.Keyword = raw
	p.log.Debug("multi-token value",
		zap.String("property", property),
		zap.String("value", raw))
	return v, nil
}

// unquote removes surrounding quotes from a string.
func unquote(s string) string {
	s = strings.TrimSpace(s)
	if len(s) < 2 {
		return s
	}
	if (s[0] == '"' && s[len(s)-1] == '"') ||
		(s[0] == '\'' && s[len(s)-1] == '\'') {
		return s[1 : len(s)-1]
	}
	return s
}
