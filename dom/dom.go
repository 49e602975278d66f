// Package dom adapts a golang.org/x/net/html document to the selector
// capability interface, serving as the reference host implementation.
package dom

import (
	"io"
	"strings"

	"golang.org/x/net/html"

	"cssengine/selector"
)

// Tree wraps a parsed HTML document and the dynamic state the host tracks
// for its elements. The tree is read-only during matching; state setters
// must not run concurrently with matching.
type Tree struct {
	doc      *html.Node
	states   map[*html.Node]selector.ElementState
	docState selector.DocumentState
}

// NewTree wraps an already parsed document node.
func NewTree(doc *html.Node) *Tree {
	return &Tree{
		doc:    doc,
		states: make(map[*html.Node]selector.ElementState),
	}
}

// Parse reads and parses an HTML document into a Tree.
func Parse(r io.Reader) (*Tree, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, err
	}
	return NewTree(doc), nil
}

// SetState records dynamic state flags (hover, focus, …) for an element.
func (t *Tree) SetState(n *html.Node, state selector.ElementState) {
	t.states[n] = state
}

// SetStateByID records state flags for the element with the given id.
// Unknown ids are ignored.
func (t *Tree) SetStateByID(id string, state selector.ElementState) {
	if e, ok := t.ElementByID(id).(element); ok && e.node != nil {
		t.states[e.node] = state
	}
}

// SetDocumentState records document-wide state flags.
func (t *Tree) SetDocumentState(state selector.DocumentState) {
	t.docState = state
}

// Element returns a capability handle for the given node. A nil node
// yields the null handle.
func (t *Tree) Element(n *html.Node) selector.Element {
	return element{tree: t, node: n}
}

// Root returns the handle of the document's root element, usually <html>.
func (t *Tree) Root() selector.Element {
	for c := t.doc.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			return t.Element(c)
		}
	}
	return t.Element(nil)
}

// ElementByID walks the document for the element with the given id.
func (t *Tree) ElementByID(id string) selector.Element {
	var find func(n *html.Node) *html.Node
	find = func(n *html.Node) *html.Node {
		if n.Type == html.ElementNode && attr(n, "id") == id {
			return n
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if found := find(c); found != nil {
				return found
			}
		}
		return nil
	}
	return t.Element(find(t.doc))
}

// element is a capability handle into a Tree. A nil node is the null
// handle.
type element struct {
	tree *Tree
	node *html.Node
}

func (e element) IsNull() bool { return e.node == nil }

func (e element) State() selector.ElementState {
	if e.node == nil {
		return 0
	}
	return e.tree.states[e.node]
}

func (e element) DocumentState() selector.DocumentState {
	if e.node == nil {
		return 0
	}
	return e.tree.docState
}

func (e element) Parent() selector.Element {
	if e.node == nil {
		return element{tree: e.tree}
	}
	p := e.node.Parent
	if p == nil || p.Type != html.ElementNode {
		return element{tree: e.tree}
	}
	return element{tree: e.tree, node: p}
}

func (e element) PrevSibling() selector.Element {
	if e.node == nil {
		return element{tree: e.tree}
	}
	for s := e.node.PrevSibling; s != nil; s = s.PrevSibling {
		if s.Type == html.ElementNode {
			return element{tree: e.tree, node: s}
		}
	}
	return element{tree: e.tree}
}

func (e element) NextSibling() selector.Element {
	if e.node == nil {
		return element{tree: e.tree}
	}
	for s := e.node.NextSibling; s != nil; s = s.NextSibling {
		if s.Type == html.ElementNode {
			return element{tree: e.tree, node: s}
		}
	}
	return element{tree: e.tree}
}

func (e element) FirstChild() selector.Element {
	if e.node == nil {
		return element{tree: e.tree}
	}
	for c := e.node.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			return element{tree: e.tree, node: c}
		}
	}
	return element{tree: e.tree}
}

func (e element) HasLocalName(name string) bool {
	return e.node != nil && strings.EqualFold(e.node.Data, name)
}

func (e element) HasNamespace(ns string) bool {
	return e.node != nil && e.node.Namespace == ns
}

func (e element) HasID(id string) bool {
	return e.node != nil && attr(e.node, "id") == id
}

func (e element) HasClass(name string) bool {
	if e.node == nil {
		return false
	}
	for _, c := range strings.Fields(attr(e.node, "class")) {
		if c == name {
			return true
		}
	}
	return false
}

func (e element) IsLink() bool {
	if e.node == nil {
		return false
	}
	switch e.node.Data {
	case "a", "area":
		return hasAttr(e.node, "href")
	}
	return false
}

func (e element) IsRoot() bool {
	return e.node != nil && e.node.Parent != nil && e.node.Parent.Type == html.DocumentNode
}

func (e element) IsEmpty() bool {
	if e.node == nil {
		return false
	}
	for c := e.node.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.ElementNode, html.TextNode:
			return false
		}
	}
	return true
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasAttr(n *html.Node, key string) bool {
	for _, a := range n.Attr {
		if a.Key == key {
			return true
		}
	}
	return false
}
