package selector_test

import (
	"testing"

	"cssengine/selector"
)

// callCount records how many capability calls the matcher performed, so
// tests can assert on short-circuit behavior.
type callCount struct {
	parent, prevSibling int
}

// node is a minimal host tree implementing the capability interface.
// A nil *node is the null handle.
type node struct {
	name    string
	id      string
	classes []string
	state   selector.ElementState

	parent, prev, next, first *node

	link  bool
	root  bool
	empty bool

	calls *callCount
}

func (n *node) IsNull() bool { return n == nil }

func (n *node) State() selector.ElementState {
	if n == nil {
		return 0
	}
	return n.state
}

func (n *node) DocumentState() selector.DocumentState { return 0 }

func (n *node) Parent() selector.Element {
	if n != nil && n.calls != nil {
		n.calls.parent++
	}
	if n == nil {
		return (*node)(nil)
	}
	return n.parent
}

func (n *node) PrevSibling() selector.Element {
	if n != nil && n.calls != nil {
		n.calls.prevSibling++
	}
	if n == nil {
		return (*node)(nil)
	}
	return n.prev
}

func (n *node) NextSibling() selector.Element {
	if n == nil {
		return (*node)(nil)
	}
	return n.next
}

func (n *node) FirstChild() selector.Element {
	if n == nil {
		return (*node)(nil)
	}
	return n.first
}

func (n *node) HasLocalName(name string) bool { return n != nil && n.name == name }

func (n *node) HasNamespace(ns string) bool { return n != nil && ns == "" }

func (n *node) HasID(id string) bool { return n != nil && n.id == id }

func (n *node) HasClass(name string) bool {
	if n == nil {
		return false
	}
	for _, c := range n.classes {
		if c == name {
			return true
		}
	}
	return false
}

func (n *node) IsLink() bool { return n != nil && n.link }

func (n *node) IsRoot() bool { return n != nil && n.root }

func (n *node) IsEmpty() bool { return n != nil && n.empty }

func match(t *testing.T, text string, e selector.Element) bool {
	t.Helper()
	sel := mustParse(t, text)
	return selector.Matches(sel, e)
}

func TestMatches_TypeSelector(t *testing.T) {
	div := &node{name: "div"}
	if !match(t, "div", div) {
		t.Error(`"div" should match a div element`)
	}
	if match(t, "span", div) {
		t.Error(`"span" should not match a div element`)
	}
}

func TestMatches_RightmostShortCircuit(t *testing.T) {
	// The rightmost compound fails on the target, so the matcher must not
	// traverse anywhere.
	calls := &callCount{}
	button := &node{name: "button", parent: &node{name: "div"}, calls: calls}

	if match(t, "span.primary", button) {
		t.Error(`"span.primary" should not match a button`)
	}
	if calls.parent != 0 || calls.prevSibling != 0 {
		t.Errorf("expected no traversal, got %d parent and %d sibling calls",
			calls.parent, calls.prevSibling)
	}
}

func TestMatches_Compound(t *testing.T) {
	el := &node{name: "input", id: "submit", classes: []string{"primary", "wide"}}

	tests := []struct {
		sel  string
		want bool
	}{
		{"input.primary", true},
		{"input#submit", true},
		{"input.primary.wide#submit", true},
		{".primary", true},
		{"*", true},
		{"input.missing", false},
		{"input#other", false},
		{"span.primary", false},
	}
	for _, tt := range tests {
		if got := match(t, tt.sel, el); got != tt.want {
			t.Errorf("Matches(%q) = %v, want %v", tt.sel, got, tt.want)
		}
	}
}

func TestMatches_DescendantAnyDepth(t *testing.T) {
	root := &node{name: "div", root: true}
	mid := &node{name: "section", parent: root}
	leaf := &node{name: "p", classes: []string{"leaf"}, parent: mid}

	// div is two levels up; descendant matching must reach it.
	if !match(t, "div .leaf", leaf) {
		t.Error(`"div .leaf" should match through a grandparent`)
	}
	// The immediate parent also works as a descendant anchor.
	if !match(t, "section .leaf", leaf) {
		t.Error(`"section .leaf" should match through the parent`)
	}
	if match(t, "article .leaf", leaf) {
		t.Error(`"article .leaf" should not match`)
	}
}

func TestMatches_ChildRequiresImmediateParent(t *testing.T) {
	root := &node{name: "div", root: true}
	mid := &node{name: "section", parent: root}
	leaf := &node{name: "p", classes: []string{"leaf"}, parent: mid}

	if match(t, "div > .leaf", leaf) {
		t.Error(`"div > .leaf" should not match when div is a grandparent`)
	}
	if !match(t, "section > .leaf", leaf) {
		t.Error(`"section > .leaf" should match the immediate parent`)
	}
	// Three-level chain anchored at the root.
	if !match(t, "div > section > .leaf", leaf) {
		t.Error(`"div > section > .leaf" should match the full chain`)
	}
}

func TestMatches_Siblings(t *testing.T) {
	h1 := &node{name: "h1"}
	p1 := &node{name: "p", prev: h1}
	p2 := &node{name: "p", prev: p1}
	h1.next = p1
	p1.next = p2

	if !match(t, "h1 + p", p1) {
		t.Error(`"h1 + p" should match the immediately following paragraph`)
	}
	if match(t, "h1 + p", p2) {
		t.Error(`"h1 + p" should not match a later paragraph`)
	}
	if !match(t, "h1 ~ p", p2) {
		t.Error(`"h1 ~ p" should match any following paragraph`)
	}
	if match(t, "ul + p", p1) {
		t.Error(`"ul + p" should not match`)
	}
}

func TestMatches_PseudoClasses(t *testing.T) {
	tests := []struct {
		sel  string
		el   *node
		want bool
	}{
		{"a:hover", &node{name: "a", state: selector.StateHover}, true},
		{"a:hover", &node{name: "a"}, false},
		{"button:active", &node{name: "button", state: selector.StateActive}, true},
		{"input:focus", &node{name: "input", state: selector.StateFocus}, true},
		{"input:disabled", &node{name: "input", state: selector.StateDisabled}, true},
		{"input:disabled", &node{name: "input", state: selector.StateEnabled}, false},
		{"input:checked", &node{name: "input", state: selector.StateChecked}, true},
		{"a:link", &node{name: "a", link: true}, true},
		{"a:link", &node{name: "a"}, false},
		{"html:root", &node{name: "html", root: true}, true},
		{"div:empty", &node{name: "div", empty: true}, true},
		{"div:empty", &node{name: "div"}, false},
	}
	for _, tt := range tests {
		if got := match(t, tt.sel, tt.el); got != tt.want {
			t.Errorf("Matches(%q) = %v, want %v", tt.sel, got, tt.want)
		}
	}
}

func TestMatches_NullElement(t *testing.T) {
	sel := mustParse(t, "div")

	if selector.Matches(sel, nil) {
		t.Error("matching a nil element should be false")
	}
	if selector.Matches(sel, (*node)(nil)) {
		t.Error("matching a null handle should be false")
	}
}

func TestMatches_NullTraversalIsMismatch(t *testing.T) {
	// No parent: descendant and child paths must fail, not crash.
	orphan := &node{name: "p"}
	if match(t, "div p", orphan) {
		t.Error("descendant match without ancestors should fail")
	}
	if match(t, "div > p", orphan) {
		t.Error("child match without a parent should fail")
	}
	if match(t, "h1 + p", orphan) {
		t.Error("sibling match without siblings should fail")
	}
}

func TestMatches_Idempotent(t *testing.T) {
	root := &node{name: "div", root: true}
	leaf := &node{name: "span", classes: []string{"x"}, parent: root}
	sel := mustParse(t, "div > span.x")

	first := selector.Matches(sel, leaf)
	second := selector.Matches(sel, leaf)
	if first != second {
		t.Errorf("matching is not idempotent: %v then %v", first, second)
	}
	if !first {
		t.Error(`"div > span.x" should match`)
	}
	// The tree is untouched as observed through capability calls.
	if !leaf.HasClass("x") || !root.IsRoot() {
		t.Error("matching must not mutate the tree")
	}
}
