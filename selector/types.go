// Package selector parses CSS selectors and matches them against a host
// document tree reached through the Element capability interface.
package selector

import "strings"

// Combinator relates two compound selectors by tree position.
type Combinator int

const (
	Descendant        Combinator = iota // whitespace
	Child                               // >
	NextSibling                         // +
	SubsequentSibling                   // ~
)

// String returns the CSS form of the combinator, padded for joining.
func (c Combinator) String() string {
	switch c {
	case Child:
		return " > "
	case NextSibling:
		return " + "
	case SubsequentSibling:
		return " ~ "
	default:
		return " "
	}
}

// PseudoClass identifies one of the supported pseudo-classes.
type PseudoClass int

const (
	PseudoHover PseudoClass = iota
	PseudoActive
	PseudoFocus
	PseudoEnabled
	PseudoDisabled
	PseudoChecked
	PseudoIndeterminate
	PseudoPlaceholderShown
	PseudoTarget
	PseudoVisited
	PseudoLink
	PseudoRoot
	PseudoEmpty
)

var pseudoClassNames = map[string]PseudoClass{
	"hover":             PseudoHover,
	"active":            PseudoActive,
	"focus":             PseudoFocus,
	"enabled":           PseudoEnabled,
	"disabled":          PseudoDisabled,
	"checked":           PseudoChecked,
	"indeterminate":     PseudoIndeterminate,
	"placeholder-shown": PseudoPlaceholderShown,
	"target":            PseudoTarget,
	"visited":           PseudoVisited,
	"link":              PseudoLink,
	"root":              PseudoRoot,
	"empty":             PseudoEmpty,
}

// String returns the CSS form of the pseudo-class, including the colon.
func (p PseudoClass) String() string {
	for name, pc := range pseudoClassNames {
		if pc == p {
			return ":" + name
		}
	}
	return ":unknown"
}

// SimpleKind discriminates the variants of SimpleSelector.
type SimpleKind int

const (
	KindUniversal SimpleKind = iota // *
	KindType                        // element name
	KindID                          // #id
	KindClass                       // .class
	KindPseudoClass                 // :hover etc.
)

// SimpleSelector is a single constraint within a compound selector.
// Name holds the type/id/class name; Pseudo is set for KindPseudoClass.
type SimpleSelector struct {
	Kind   SimpleKind
	Name   string
	Pseudo PseudoClass
}

// String returns the CSS form of the simple selector.
func (s SimpleSelector) String() string {
	switch s.Kind {
	case KindUniversal:
		return "*"
	case KindType:
		return s.Name
	case KindID:
		return "#" + s.Name
	case KindClass:
		return "." + s.Name
	case KindPseudoClass:
		return s.Pseudo.String()
	}
	return ""
}

// Compound is a conjunction of simple selectors that must all match the
// same element. A parsed compound always has at least one part.
type Compound struct {
	Parts []SimpleSelector
}

// String returns the CSS form of the compound selector.
func (c Compound) String() string {
	var b strings.Builder
	for _, p := range c.Parts {
		b.WriteString(p.String())
	}
	return b.String()
}

// Selector is a complex selector: compounds in source order with the
// combinator between each adjacent pair. Matching walks it right to left.
// Invariant: len(Combinators) == len(Compounds)-1.
type Selector struct {
	Raw         string
	Compounds   []Compound
	Combinators []Combinator
}

// String reassembles the selector from its parsed form.
func (s Selector) String() string {
	var b strings.Builder
	for i, c := range s.Compounds {
		if i > 0 {
			b.WriteString(s.Combinators[i-1].String())
		}
		b.WriteString(c.String())
	}
	return b.String()
}
