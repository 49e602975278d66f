// Package calc parses and evaluates CSS calc() expressions.
package calc

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
	"go.uber.org/zap"

	"cssengine/value"
)

// maxDepth bounds grouping/nesting so pathological input becomes a parse
// error instead of stack exhaustion.
const maxDepth = 32

// NodeKind discriminates the variants of Node.
type NodeKind int

const (
	KindLiteral NodeKind = iota
	KindBinary
	KindGroup
)

// Node is one node of a parsed calc() expression tree.
type Node struct {
	Kind NodeKind

	// Literal
	Value float64
	Unit  string

	// Binary
	Op          byte // '+', '-', '*', '/'
	Left, Right *Node

	// Group: a parenthesized or nested calc() subexpression.
	Inner *Node
}

// Evaluator parses and evaluates calc() expressions.
type Evaluator struct {
	log *zap.Logger
}

// NewEvaluator creates a new calc evaluator.
func NewEvaluator(log *zap.Logger) *Evaluator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Evaluator{log: log.Named("calc")}
}

// Evaluate evaluates a dimensionless expression: either a bare numeric
// literal or a calc() expression over plain numbers. Operands with units
// are an error in this mode.
func (e *Evaluator) Evaluate(expr string) (float64, error) {
	q, err := e.eval(expr, nil)
	if err != nil {
		return 0, err
	}
	if q.length {
		return 0, fmt.Errorf("expression %q has a length result in a numeric context", expr)
	}
	return q.val, nil
}

// EvaluateLength evaluates a unit-aware expression, resolving length
// operands to pixels against the context. Additive operands must agree on
// being lengths; multiplication takes at most one length factor and
// division a scalar divisor.
func (e *Evaluator) EvaluateLength(expr string, ctx value.Context) (float64, error) {
	q, err := e.eval(expr, &ctx)
	if err != nil {
		return 0, err
	}
	return q.val, nil
}

// quantity is an evaluated operand: a magnitude and whether it is a length.
type quantity struct {
	val    float64
	length bool
}

func (e *Evaluator) eval(expr string, ctx *value.Context) (quantity, error) {
	s := strings.TrimSpace(expr)
	if s == "" {
		return quantity{}, fmt.Errorf("empty calc expression")
	}

	// Literal fallback: no calc() wrapper means the text must be a plain
	// numeric value.
	if !strings.HasPrefix(strings.ToLower(s), "calc(") {
		v, err := value.ParseNumeric(s)
		if err != nil {
			return quantity{}, err
		}
		return resolveLiteral(v.Value, v.Unit, ctx)
	}

	p := &parser{lexer: css.NewLexer(parse.NewInputString(s))}

	tt, data := p.next()
	if tt != css.FunctionToken || strings.ToLower(string(data)) != "calc(" {
		return quantity{}, fmt.Errorf("expected calc( in %q", s)
	}
	root, err := p.parseSum(1)
	if err != nil {
		return quantity{}, err
	}
	if tt, data := p.next(); tt != css.RightParenthesisToken {
		return quantity{}, fmt.Errorf("expected ) in %q, got %q", s, string(data))
	}
	if tt, data := p.next(); tt != css.ErrorToken {
		return quantity{}, fmt.Errorf("unexpected %q after calc() in %q", string(data), s)
	}
	if p.lexer.Err() != io.EOF {
		return quantity{}, fmt.Errorf("invalid calc expression %q: %w", s, p.lexer.Err())
	}

	q, err := evalNode(root, ctx)
	if err != nil {
		return quantity{}, err
	}
	e.log.Debug("evaluated calc expression",
		zap.String("expr", s),
		zap.Float64("value", q.val))
	return q, nil
}

// parser is a one-token-lookahead reader over the CSS lexer.
type parser struct {
	lexer *css.Lexer

	peeked   bool
	peekType css.TokenType
	peekData []byte
}

func (p *parser) next() (css.TokenType, []byte) {
	if p.peeked {
		p.peeked = false
		return p.peekType, p.peekData
	}
	for {
		tt, data := p.lexer.Next()
		if tt == css.WhitespaceToken || tt == css.CommentToken {
			continue
		}
		return tt, data
	}
}

func (p *parser) peek() (css.TokenType, []byte) {
	if !p.peeked {
		p.peekType, p.peekData = p.next()
		p.peeked = true
	}
	return p.peekType, p.peekData
}

// parseSum parses addition and subtraction.
func (p *parser) parseSum(depth int) (*Node, error) {
	left, err := p.parseProduct(depth)
	if err != nil {
		return nil, err
	}
	for {
		tt, data := p.peek()
		var op byte
		switch {
		case tt == css.DelimToken && (string(data) == "+" || string(data) == "-"):
			op = data[0]
			p.next()
			right, err := p.parseProduct(depth)
			if err != nil {
				return nil, err
			}
			left = &Node{Kind: KindBinary, Op: op, Left: left, Right: right}

		case signedNumeric(tt, data):
			// "1 -2" lexes the sign into the number; treat it as
			// subtraction of the magnitude.
			p.next()
			val, unit, err := numericToken(tt, data)
			if err != nil {
				return nil, err
			}
			right := &Node{Kind: KindLiteral, Value: val, Unit: unit}
			left = &Node{Kind: KindBinary, Op: '+', Left: left, Right: right}

		default:
			return left, nil
		}
	}
}

// parseProduct parses multiplication and division.
func (p *parser) parseProduct(depth int) (*Node, error) {
	left, err := p.parseOperand(depth)
	if err != nil {
		return nil, err
	}
	for {
		tt, data := p.peek()
		if tt != css.DelimToken || (string(data) != "*" && string(data) != "/") {
			return left, nil
		}
		op := data[0]
		p.next()
		right, err := p.parseOperand(depth)
		if err != nil {
			return nil, err
		}
		left = &Node{Kind: KindBinary, Op: op, Left: left, Right: right}
	}
}

// parseOperand parses a literal, a parenthesized group, or a nested calc().
func (p *parser) parseOperand(depth int) (*Node, error) {
	if depth > maxDepth {
		return nil, fmt.Errorf("calc() nesting exceeds depth %d", maxDepth)
	}

	tt, data := p.next()
	switch tt {
	case css.NumberToken, css.PercentageToken, css.DimensionToken:
		val, unit, err := numericToken(tt, data)
		if err != nil {
			return nil, err
		}
		return &Node{Kind: KindLiteral, Value: val, Unit: unit}, nil

	case css.LeftParenthesisToken:
		return p.parseGroup(depth)

	case css.FunctionToken:
		if strings.ToLower(string(data)) != "calc(" {
			return nil, fmt.Errorf("unsupported function %q in calc expression", string(data))
		}
		// Nested calc() is plain grouping.
		return p.parseGroup(depth)

	case css.ErrorToken:
		return nil, fmt.Errorf("unexpected end of calc expression")

	default:
		return nil, fmt.Errorf("unexpected token %q in calc expression", string(data))
	}
}

func (p *parser) parseGroup(depth int) (*Node, error) {
	inner, err := p.parseSum(depth + 1)
	if err != nil {
		return nil, err
	}
	if tt, data := p.next(); tt != css.RightParenthesisToken {
		return nil, fmt.Errorf("expected ) in calc expression, got %q", string(data))
	}
	return &Node{Kind: KindGroup, Inner: inner}, nil
}

// signedNumeric reports whether a numeric token carries an explicit sign,
// which in operator position means the whitespace-separated form "a -b".
func signedNumeric(tt css.TokenType, data []byte) bool {
	switch tt {
	case css.NumberToken, css.PercentageToken, css.DimensionToken:
		return len(data) > 0 && (data[0] == '+' || data[0] == '-')
	}
	return false
}

func numericToken(tt css.TokenType, data []byte) (float64, string, error) {
	s := string(data)
	switch tt {
	case css.NumberToken:
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, "", fmt.Errorf("invalid number %q: %w", s, err)
		}
		return v, "", nil
	case css.PercentageToken:
		v, err := strconv.ParseFloat(strings.TrimSuffix(s, "%"), 64)
		if err != nil {
			return 0, "", fmt.Errorf("invalid percentage %q: %w", s, err)
		}
		return v, "%", nil
	default:
		v, unit := value.SplitDimension(s)
		if unit == "" {
			return 0, "", fmt.Errorf("invalid dimension %q", s)
		}
		return v, unit, nil
	}
}

// evalNode evaluates a parsed tree. With a nil context only plain numbers
// are legal operands; with a context, dimensions and percentages resolve
// to pixels.
func evalNode(n *Node, ctx *value.Context) (quantity, error) {
	switch n.Kind {
	case KindLiteral:
		return resolveLiteral(n.Value, n.Unit, ctx)

	case KindGroup:
		return evalNode(n.Inner, ctx)

	case KindBinary:
		left, err := evalNode(n.Left, ctx)
		if err != nil {
			return quantity{}, err
		}
		right, err := evalNode(n.Right, ctx)
		if err != nil {
			return quantity{}, err
		}
		switch n.Op {
		case '+', '-':
			if left.length != right.length {
				return quantity{}, fmt.Errorf("cannot add a length and a number in calc()")
			}
			if n.Op == '+' {
				return quantity{left.val + right.val, left.length}, nil
			}
			return quantity{left.val - right.val, left.length}, nil
		case '*':
			if left.length && right.length {
				return quantity{}, fmt.Errorf("cannot multiply two lengths in calc()")
			}
			return quantity{left.val * right.val, left.length || right.length}, nil
		case '/':
			if right.length {
				return quantity{}, fmt.Errorf("divisor must be a number in calc()")
			}
			if right.val == 0 {
				return quantity{}, fmt.Errorf("division by zero in calc()")
			}
			return quantity{left.val / right.val, left.length}, nil
		}
	}
	return quantity{}, fmt.Errorf("malformed calc expression tree")
}

func resolveLiteral(v float64, unit string, ctx *value.Context) (quantity, error) {
	if unit == "" {
		return quantity{v, false}, nil
	}
	if ctx == nil {
		return quantity{}, fmt.Errorf("unexpected unit %q in numeric context", unit)
	}
	px, err := value.ResolveLength(v, unit, *ctx)
	if err != nil {
		return quantity{}, err
	}
	return quantity{px, true}, nil
}
