package selector_test

import (
	"strings"
	"testing"

	"cssengine/selector"
)

func mustParse(t *testing.T, text string) selector.Selector {
	t.Helper()
	p := selector.NewParser(nil)
	sel, err := p.Parse(text)
	if err != nil {
		t.Fatalf("Parse(%q) failed: %v", text, err)
	}
	return sel
}

func TestParser_TypeSelector(t *testing.T) {
	sel := mustParse(t, "div")

	if len(sel.Compounds) != 1 {
		t.Fatalf("expected 1 compound, got %d", len(sel.Compounds))
	}
	parts := sel.Compounds[0].Parts
	if len(parts) != 1 || parts[0].Kind != selector.KindType || parts[0].Name != "div" {
		t.Errorf("expected type selector 'div', got %+v", parts)
	}
}

func TestParser_CompoundSelector(t *testing.T) {
	sel := mustParse(t, "input.primary#submit:checked")

	parts := sel.Compounds[0].Parts
	if len(parts) != 4 {
		t.Fatalf("expected 4 simple selectors, got %d: %+v", len(parts), parts)
	}

	want := []struct {
		kind selector.SimpleKind
		name string
	}{
		{selector.KindType, "input"},
		{selector.KindClass, "primary"},
		{selector.KindID, "submit"},
		{selector.KindPseudoClass, ""},
	}
	for i, w := range want {
		if parts[i].Kind != w.kind {
			t.Errorf("part %d: expected kind %v, got %v", i, w.kind, parts[i].Kind)
		}
		if w.name != "" && parts[i].Name != w.name {
			t.Errorf("part %d: expected name %q, got %q", i, w.name, parts[i].Name)
		}
	}
	if parts[3].Pseudo != selector.PseudoChecked {
		t.Errorf("expected :checked, got %v", parts[3].Pseudo)
	}
}

func TestParser_Combinators(t *testing.T) {
	tests := []struct {
		name  string
		input string
		combs []selector.Combinator
	}{
		{"descendant", "div .leaf", []selector.Combinator{selector.Descendant}},
		{"child", "div > .my-class", []selector.Combinator{selector.Child}},
		{"child_tight", "div>.my-class", []selector.Combinator{selector.Child}},
		{"next_sibling", "h1 + p", []selector.Combinator{selector.NextSibling}},
		{"subsequent_sibling", "h1 ~ p", []selector.Combinator{selector.SubsequentSibling}},
		{"mixed", "ul > li a", []selector.Combinator{selector.Child, selector.Descendant}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sel := mustParse(t, tt.input)
			if len(sel.Compounds) != len(tt.combs)+1 {
				t.Fatalf("expected %d compounds, got %d", len(tt.combs)+1, len(sel.Compounds))
			}
			for i, c := range tt.combs {
				if sel.Combinators[i] != c {
					t.Errorf("combinator %d: expected %v, got %v", i, c, sel.Combinators[i])
				}
			}
		})
	}
}

func TestParser_PseudoClasses(t *testing.T) {
	sel := mustParse(t, "div > .my-class:hover")

	last := sel.Compounds[len(sel.Compounds)-1].Parts
	if len(last) != 2 {
		t.Fatalf("expected 2 parts in rightmost compound, got %d", len(last))
	}
	if last[1].Kind != selector.KindPseudoClass || last[1].Pseudo != selector.PseudoHover {
		t.Errorf("expected :hover, got %+v", last[1])
	}
}

func TestParser_Universal(t *testing.T) {
	sel := mustParse(t, "* > span")
	if sel.Compounds[0].Parts[0].Kind != selector.KindUniversal {
		t.Errorf("expected universal selector, got %+v", sel.Compounds[0].Parts[0])
	}
}

func TestParser_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string // substring of the error message
	}{
		{"leading_combinators", ">>>invalid", "combinator"},
		{"leading_plus", "+ p", "combinator"},
		{"double_combinator", "div > > span", "combinator"},
		{"trailing_combinator", "div >", "combinator"},
		{"unknown_pseudo", "a:frobnicate", "unknown pseudo-class"},
		{"functional_pseudo", "li:nth-child(2)", "functional pseudo-class"},
		{"functional_pseudo_not", "a:not(.x)", "functional pseudo-class"},
		{"unterminated_pseudo", "a:", "unterminated pseudo-class"},
		{"pseudo_element", "p::before", "pseudo-element"},
		{"empty", "", "empty selector"},
		{"whitespace_only", "   ", "empty selector"},
		{"bare_dot", "div.", "class name"},
		{"attribute_selector", "a[href]", "unsupported"},
	}

	p := selector.NewParser(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := p.Parse(tt.input)
			if err == nil {
				t.Fatalf("Parse(%q) should have failed", tt.input)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Parse(%q) error %q does not mention %q", tt.input, err, tt.want)
			}
		})
	}
}

func TestSelector_String(t *testing.T) {
	tests := []string{
		"div",
		"div > .my-class:hover",
		"h1 + p",
		"ul > li a",
		"#main .item ~ span",
	}
	for _, input := range tests {
		sel := mustParse(t, input)
		if got := sel.String(); got != input {
			t.Errorf("String() = %q, want %q", got, input)
		}
	}
}
