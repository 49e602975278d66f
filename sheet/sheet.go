// Package sheet parses CSS stylesheets into rules and media blocks,
// using the selector and value packages for the rule contents.
package sheet

import (
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"

	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
	"go.uber.org/zap"

	"cssengine/selector"
	"cssengine/value"
)

// Declaration is a single property: value pair inside a rule.
type Declaration struct {
	Property string
	Value    value.Value
}

// Rule is a ruleset: the selectors of its prelude and its declarations.
type Rule struct {
	Selectors    []selector.Selector
	Declarations []Declaration
}

// MediaFeature is one parenthesized feature of a media query. Value is
// the zero Value for boolean features like "(monochrome)".
type MediaFeature struct {
	Name    string
	Negated bool
	Value   value.Value
}

// MediaQuery is a parsed media query. Type defaults to "all" when the
// query consists only of features.
type MediaQuery struct {
	Raw      string
	Negated  bool
	Only     bool
	Type     string
	Features []MediaFeature
}

// MediaBlock groups the rules of an @media block with its query.
type MediaBlock struct {
	Query MediaQuery
	Rules []Rule
}

// Stylesheet is the parsed form of a stylesheet. Constructs the engine
// does not understand are reported in Warnings rather than aborting the
// parse, so one bad rule never loses the rest of the sheet.
type Stylesheet struct {
	Rules       []Rule
	MediaBlocks []MediaBlock
	Imports     []string
	Warnings    []string
}

// Parser parses stylesheet text and media queries.
type Parser struct {
	log       *zap.Logger
	selectors *selector.Parser
	values    *value.Parser
}

// NewParser creates a new stylesheet parser.
func NewParser(log *zap.Logger) *Parser {
	if log == nil {
		log = zap.NewNop()
	}
	return &Parser{
		log:       log.Named("sheet-parser"),
		selectors: selector.NewParser(log),
		values:    value.NewParser(log),
	}
}

// Parse parses stylesheet text. The base URL resolves @import targets
// and must be absolute; an invalid base URL is an error, while malformed
// rules inside the sheet degrade to warnings.
func (p *Parser) Parse(text, baseURL string) (*Stylesheet, error) {
	base, err := url.Parse(baseURL)
	if err != nil || !base.IsAbs() {
		return nil, fmt.Errorf("invalid base URL %q", baseURL)
	}

	sheet := &Stylesheet{}
	parser := css.NewParser(parse.NewInputString(text), false)

	var pending []string
	for {
		gt, _, data := parser.Next()
		switch gt {
		case css.ErrorGrammar:
			if parser.Err() != io.EOF {
				sheet.Warnings = append(sheet.Warnings, parser.Err().Error())
			}
			p.log.Debug("parsed stylesheet",
				zap.Int("rules", len(sheet.Rules)),
				zap.Int("media_blocks", len(sheet.MediaBlocks)),
				zap.Int("warnings", len(sheet.Warnings)))
			return sheet, nil

		case css.BeginAtRuleGrammar:
			switch at := strings.ToLower(string(data)); at {
			case "@media":
				q, err := p.ParseMediaQuery(tokensText(parser.Values()))
				if err != nil {
					sheet.Warnings = append(sheet.Warnings, err.Error())
					p.skipBlock(parser)
					continue
				}
				rules := p.blockRules(parser, sheet)
				sheet.MediaBlocks = append(sheet.MediaBlocks, MediaBlock{Query: q, Rules: rules})
			default:
				p.log.Debug("skipping at-rule", zap.String("rule", at))
				p.skipBlock(parser)
			}

		case css.AtRuleGrammar:
			if strings.ToLower(string(data)) == "@import" {
				if u := importURL(parser.Values()); u != "" {
					ref, err := url.Parse(u)
					if err != nil {
						sheet.Warnings = append(sheet.Warnings, "invalid @import URL "+strconv.Quote(u))
						continue
					}
					sheet.Imports = append(sheet.Imports, base.ResolveReference(ref).String())
				}
			}

		case css.QualifiedRuleGrammar:
			pending = append(pending, selectorTexts(data, parser.Values())...)

		case css.BeginRulesetGrammar:
			pending = append(pending, selectorTexts(data, parser.Values())...)
			if r, ok := p.rule(pending, parser, sheet); ok {
				sheet.Rules = append(sheet.Rules, r)
			}
			pending = nil
		}
	}
}

// rule parses the declarations of the ruleset the parser is inside and
// pairs them with the prelude selectors. Rules whose every selector is
// rejected are dropped.
func (p *Parser) rule(selTexts []string, parser *css.Parser, sheet *Stylesheet) (Rule, bool) {
	var r Rule
	for _, s := range selTexts {
		sel, err := p.selectors.Parse(s)
		if err != nil {
			sheet.Warnings = append(sheet.Warnings, err.Error())
			continue
		}
		r.Selectors = append(r.Selectors, sel)
	}
	r.Declarations = p.declarations(parser, sheet)
	return r, len(r.Selectors) > 0
}

// declarations consumes property declarations until the ruleset ends.
func (p *Parser) declarations(parser *css.Parser, sheet *Stylesheet) []Declaration {
	var decls []Declaration
	for {
		gt, _, data := parser.Next()
		switch gt {
		case css.ErrorGrammar, css.EndRulesetGrammar:
			return decls

		case css.DeclarationGrammar:
			prop := strings.ToLower(string(data))
			v, err := p.values.ParseValue(tokensText(parser.Values()), prop)
			if err != nil {
				sheet.Warnings = append(sheet.Warnings, err.Error())
				continue
			}
			decls = append(decls, Declaration{Property: prop, Value: v})

		case css.CustomPropertyGrammar:
			// Custom properties (--var) are not part of the value model.
			continue
		}
	}
}

// blockRules parses the rulesets inside an @media block.
func (p *Parser) blockRules(parser *css.Parser, sheet *Stylesheet) []Rule {
	var rules []Rule
	var pending []string
	for {
		gt, _, data := parser.Next()
		switch gt {
		case css.ErrorGrammar, css.EndAtRuleGrammar:
			return rules

		case css.QualifiedRuleGrammar:
			pending = append(pending, selectorTexts(data, parser.Values())...)

		case css.BeginRulesetGrammar:
			pending = append(pending, selectorTexts(data, parser.Values())...)
			if r, ok := p.rule(pending, parser, sheet); ok {
				rules = append(rules, r)
			}
			pending = nil
		}
	}
}

// skipBlock skips tokens until the matching end of an at-rule block.
func (p *Parser) skipBlock(parser *css.Parser) {
	depth := 1
	for depth > 0 {
		gt, _, _ := parser.Next()
		switch gt {
		case css.ErrorGrammar:
			return
		case css.BeginAtRuleGrammar, css.BeginRulesetGrammar:
			depth++
		case css.EndAtRuleGrammar, css.EndRulesetGrammar:
			depth--
		}
	}
}

// importURL extracts the target from @import prelude tokens.
// Handles: @import "url"; @import url("url"); @import url(url);
func importURL(tokens []css.Token) string {
	for _, t := range tokens {
		switch t.TokenType {
		case css.StringToken:
			return unquote(string(t.Data))
		case css.URLToken:
			s := strings.TrimSuffix(strings.TrimPrefix(string(t.Data), "url("), ")")
			return unquote(strings.TrimSpace(s))
		}
	}
	return ""
}

// selectorTexts rebuilds the prelude text and splits it into the
// comma-separated selector group members.
func selectorTexts(data []byte, tokens []css.Token) []string {
	var sb strings.Builder
	sb.Write(data)
	for _, t := range tokens {
		sb.Write(t.Data)
	}
	var out []string
	for _, s := range strings.Split(sb.String(), ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// tokensText joins token data with single spaces where the source had
// whitespace.
func tokensText(tokens []css.Token) string {
	var parts []string
	for _, t := range tokens {
		if t.TokenType != css.WhitespaceToken {
			parts = append(parts, string(t.Data))
		} else if len(parts) > 0 {
			parts = append(parts, " ")
		}
	}
	return strings.TrimSpace(strings.Join(parts, ""))
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

// ParseMediaQuery parses and validates a single media query:
// "[not|only] type { and [not] feature }" or a bare feature chain like
// "(min-width: 768px) and (orientation: portrait)".
func (p *Parser) ParseMediaQuery(text string) (MediaQuery, error) {
	s := strings.TrimSpace(text)
	if s == "" {
		return MediaQuery{}, fmt.Errorf("empty media query")
	}
	mq := MediaQuery{Raw: s, Type: "all"}

	toks, err := lexTokens(s)
	if err != nil {
		return MediaQuery{}, fmt.Errorf("invalid media query %q: %w", s, err)
	}

	i := 0
	ident := func() (string, bool) {
		if i < len(toks) && toks[i].TokenType == css.IdentToken {
			return strings.ToLower(string(toks[i].Data)), true
		}
		return "", false
	}

	feature := func(negated bool) error {
		if i >= len(toks) || toks[i].TokenType != css.LeftParenthesisToken {
			return fmt.Errorf("expected media feature in %q", s)
		}
		i++
		name, ok := ident()
		if !ok {
			return fmt.Errorf("expected feature name in media query %q", s)
		}
		f := MediaFeature{Name: name, Negated: negated}
		i++
		if i < len(toks) && toks[i].TokenType == css.ColonToken {
			i++
			if i >= len(toks) {
				return fmt.Errorf("missing value for feature %q in %q", name, s)
			}
			v, err := featureValue(toks[i])
			if err != nil {
				return fmt.Errorf("feature %q in %q: %w", name, s, err)
			}
			f.Value = v
			i++
		}
		if i >= len(toks) || toks[i].TokenType != css.RightParenthesisToken {
			return fmt.Errorf("unterminated media feature %q in %q", name, s)
		}
		i++
		mq.Features = append(mq.Features, f)
		return nil
	}

	switch name, ok := ident(); {
	case ok && name == "not":
		mq.Negated = true
		i++
	case ok && name == "only":
		mq.Only = true
		i++
	}

	if name, ok := ident(); ok {
		if name == "and" || name == "not" || name == "only" {
			return MediaQuery{}, fmt.Errorf("media query %q is missing its media type", s)
		}
		mq.Type = name
		i++
	} else if err := feature(false); err != nil {
		return MediaQuery{}, err
	}

	for i < len(toks) {
		name, ok := ident()
		if !ok || name != "and" {
			return MediaQuery{}, fmt.Errorf("unexpected %q in media query %q", string(toks[i].Data), s)
		}
		i++

		negated := false
		if name, ok := ident(); ok && name == "not" {
			negated = true
			i++
		}
		if name, ok := ident(); ok {
			// Bare ident feature, the form reader media uses
			// ("screen and amzn-kf8").
			mq.Features = append(mq.Features, MediaFeature{Name: name, Negated: negated})
			i++
			continue
		}
		if err := feature(negated); err != nil {
			return MediaQuery{}, err
		}
	}

	p.log.Debug("parsed media query",
		zap.String("query", s),
		zap.String("type", mq.Type),
		zap.Int("features", len(mq.Features)))
	return mq, nil
}

// featureValue types a media feature value token.
func featureValue(t css.Token) (value.Value, error) {
	s := string(t.Data)
	switch t.TokenType {
	case css.NumberToken:
		v, _ := strconv.ParseFloat(s, 64)
		return value.Value{Raw: s, Value: v}, nil
	case css.PercentageToken:
		v, _ := strconv.ParseFloat(strings.TrimSuffix(s, "%"), 64)
		return value.Value{Raw: s, Value: v, Unit: "%"}, nil
	case css.DimensionToken:
		v, unit := value.SplitDimension(s)
		return value.Value{Raw: s, Value: v, Unit: unit}, nil
	case css.IdentToken:
		return value.Value{Raw: s, Keyword: strings.ToLower(s)}, nil
	default:
		return value.Value{}, fmt.Errorf("unsupported feature value %q", s)
	}
}

// lexTokens collects the significant tokens of a media query.
func lexTokens(s string) ([]css.Token, error) {
	lexer := css.NewLexer(parse.NewInputString(s))
	var toks []css.Token
	for {
		tt, data := lexer.Next()
		switch tt {
		case css.ErrorToken:
			if lexer.Err() != io.EOF {
				return nil, lexer.Err()
			}
			return toks, nil
		case css.WhitespaceToken, css.CommentToken:
			continue
		default:
			toks = append(toks, css.Token{TokenType: tt, Data: data})
		}
	}
}
