package selector

// ElementState is a bit set describing the dynamic state of an element.
// The bit positions form a closed enumeration; hosts report whichever
// bits they track and leave the rest zero.
type ElementState uint64

const (
	StateActive ElementState = 1 << iota
	StateFocus
	StateHover
	StateEnabled
	StateDisabled
	StateChecked
	StateIndeterminate
	StatePlaceholderShown
	StateTarget
	StateVisited
)

// DocumentState is a bit set describing document-wide state.
type DocumentState uint64

const (
	DocumentWindowInactive DocumentState = 1 << iota
	DocumentRTLLocale
)

// Element is the capability surface a host tree exposes for selector
// matching. The engine never owns or mutates the referent; it only asks
// questions through these operations. Traversal operations return another
// handle, which may be a null handle when the requested relative does not
// exist. Implementations must be safe for concurrent read access if
// matching runs from multiple goroutines against the same tree.
type Element interface {
	// State returns the element's dynamic state flags.
	State() ElementState
	// DocumentState returns state flags of the owning document.
	DocumentState() DocumentState

	// Parent returns the parent element, or a null handle at the root.
	Parent() Element
	// PrevSibling returns the preceding sibling element, or a null handle.
	PrevSibling() Element
	// NextSibling returns the following sibling element, or a null handle.
	NextSibling() Element
	// FirstChild returns the first child element, or a null handle.
	FirstChild() Element

	// IsNull reports whether this handle refers to no element.
	IsNull() bool

	HasLocalName(name string) bool
	HasNamespace(ns string) bool
	HasID(id string) bool
	HasClass(name string) bool

	IsLink() bool
	IsRoot() bool
	IsEmpty() bool
}

// isNull treats both a nil interface and an explicit null handle as
// "no element".
func isNull(e Element) bool {
	return e == nil || e.IsNull()
}
