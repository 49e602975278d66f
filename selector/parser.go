package selector

import (
	"fmt"
	"io"
	"strings"

	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
	"go.uber.org/zap"
)

// maxCompounds bounds the combinator chain length so that matching
// recursion depth is bounded by the parse, not by hostile input.
const maxCompounds = 64

// Parser parses selector text into a Selector AST.
type Parser struct {
	log *zap.Logger
}

// NewParser creates a new selector parser.
func NewParser(log *zap.Logger) *Parser {
	if log == nil {
		log = zap.NewNop()
	}
	return &Parser{log: log.Named("selector-parser")}
}

// Parse parses a single complex selector. Selector lists (comma-separated
// groups) are split by the caller; a comma here is a parse error.
func (p *Parser) Parse(text string) (Selector, error) {
	sel := Selector{Raw: text}

	lexer := css.NewLexer(parse.NewInputString(text))

	var (
		cur             Compound
		pending         Combinator
		pendingOpen     bool // a combinator is waiting for its right-hand compound
		pendingExplicit bool // the pending combinator was written, not inferred from whitespace
	)

	// commit moves the current compound into the selector.
	commit := func() error {
		if len(sel.Compounds) == maxCompounds {
			return fmt.Errorf("selector %q exceeds %d compound selectors", text, maxCompounds)
		}
		sel.Compounds = append(sel.Compounds, cur)
		cur = Compound{}
		return nil
	}

	// bind attaches the pending combinator once its right-hand side begins.
	bind := func() {
		if pendingOpen {
			sel.Combinators = append(sel.Combinators, pending)
			pendingOpen = false
			pendingExplicit = false
		}
	}

	// explicit registers a written combinator (>, +, ~).
	explicit := func(c Combinator, tok string) error {
		if pendingOpen {
			if pendingExplicit {
				return fmt.Errorf("unexpected combinator %q after another combinator", tok)
			}
			// Whitespace before a written combinator is just spacing.
			pending = c
			pendingExplicit = true
			return nil
		}
		if len(cur.Parts) == 0 {
			return fmt.Errorf("selector cannot start with combinator %q", tok)
		}
		if err := commit(); err != nil {
			return err
		}
		pending = c
		pendingOpen = true
		pendingExplicit = true
		return nil
	}

	// simple appends a simple selector to the current compound.
	simple := func(s SimpleSelector) error {
		if len(cur.Parts) == 0 && len(sel.Compounds) > 0 {
			bind()
		}
		cur.Parts = append(cur.Parts, s)
		return nil
	}

	for {
		tt, data := lexer.Next()
		switch tt {
		case css.ErrorToken:
			if lexer.Err() != io.EOF {
				return sel, fmt.Errorf("invalid selector %q: %w", text, lexer.Err())
			}
			if pendingOpen && pendingExplicit {
				return sel, fmt.Errorf("selector %q ends with a combinator", text)
			}
			if len(cur.Parts) > 0 {
				if err := commit(); err != nil {
					return sel, err
				}
			}
			if len(sel.Compounds) == 0 {
				return sel, fmt.Errorf("empty selector")
			}
			p.log.Debug("parsed selector",
				zap.String("selector", text),
				zap.Int("compounds", len(sel.Compounds)))
			return sel, nil

		case css.WhitespaceToken:
			if len(cur.Parts) > 0 && !pendingOpen {
				if err := commit(); err != nil {
					return sel, err
				}
				pending = Descendant
				pendingOpen = true
			}

		case css.IdentToken:
			if err := simple(SimpleSelector{Kind: KindType, Name: string(data)}); err != nil {
				return sel, err
			}

		case css.HashToken:
			id := strings.TrimPrefix(string(data), "#")
			if id == "" {
				return sel, fmt.Errorf("empty id selector in %q", text)
			}
			if err := simple(SimpleSelector{Kind: KindID, Name: id}); err != nil {
				return sel, err
			}

		case css.ColonToken:
			nt, ndata := lexer.Next()
			if nt == css.ColonToken {
				return sel, fmt.Errorf("pseudo-element selectors are not supported in %q", text)
			}
			if nt == css.FunctionToken {
				name := strings.TrimSuffix(string(ndata), "(")
				return sel, fmt.Errorf("unsupported functional pseudo-class %q in %q", ":"+name, text)
			}
			if nt != css.IdentToken {
				return sel, fmt.Errorf("unterminated pseudo-class in %q", text)
			}
			name := strings.ToLower(string(ndata))
			pc, ok := pseudoClassNames[name]
			if !ok {
				return sel, fmt.Errorf("unknown pseudo-class %q", ":"+name)
			}
			if err := simple(SimpleSelector{Kind: KindPseudoClass, Pseudo: pc}); err != nil {
				return sel, err
			}

		case css.DelimToken:
			switch string(data) {
			case "*":
				if err := simple(SimpleSelector{Kind: KindUniversal}); err != nil {
					return sel, err
				}
			case ".":
				nt, ndata := lexer.Next()
				if nt != css.IdentToken {
					return sel, fmt.Errorf("expected class name after %q in %q", ".", text)
				}
				if err := simple(SimpleSelector{Kind: KindClass, Name: string(ndata)}); err != nil {
					return sel, err
				}
			case ">":
				if err := explicit(Child, ">"); err != nil {
					return sel, err
				}
			case "+":
				if err := explicit(NextSibling, "+"); err != nil {
					return sel, err
				}
			case "~":
				if err := explicit(SubsequentSibling, "~"); err != nil {
					return sel, err
				}
			default:
				return sel, fmt.Errorf("unexpected %q in selector %q", string(data), text)
			}

		default:
			return sel, fmt.Errorf("unsupported token %q in selector %q", string(data), text)
		}
	}
}
