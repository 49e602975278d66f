package selector

// Matches reports whether the element satisfies the selector.
//
// Evaluation is right-to-left: the rightmost compound is checked against
// the target element first, and only if it holds does matching traverse
// the tree according to the combinators. A null handle never matches, and
// traversal reaching a null handle fails that path without further
// capability calls. The function is pure; nothing is cached or mutated.
func Matches(sel Selector, e Element) bool {
	if len(sel.Compounds) == 0 || isNull(e) {
		return false
	}
	return matchFrom(sel, len(sel.Compounds)-1, e)
}

// matchFrom matches sel.Compounds[idx] against e, then walks left.
func matchFrom(sel Selector, idx int, e Element) bool {
	if !matchCompound(sel.Compounds[idx], e) {
		return false
	}
	if idx == 0 {
		return true
	}

	switch sel.Combinators[idx-1] {
	case Child:
		p := e.Parent()
		return !isNull(p) && matchFrom(sel, idx-1, p)

	case Descendant:
		// Every ancestor is a candidate; the chain itself is the search
		// space, so there is nothing to backtrack beyond it.
		for p := e.Parent(); !isNull(p); p = p.Parent() {
			if matchFrom(sel, idx-1, p) {
				return true
			}
		}
		return false

	case NextSibling:
		s := e.PrevSibling()
		return !isNull(s) && matchFrom(sel, idx-1, s)

	case SubsequentSibling:
		for s := e.PrevSibling(); !isNull(s); s = s.PrevSibling() {
			if matchFrom(sel, idx-1, s) {
				return true
			}
		}
		return false
	}
	return false
}

// matchCompound reports whether every simple selector in the compound
// holds for the element.
func matchCompound(c Compound, e Element) bool {
	for _, s := range c.Parts {
		if !matchSimple(s, e) {
			return false
		}
	}
	return true
}

func matchSimple(s SimpleSelector, e Element) bool {
	switch s.Kind {
	case KindUniversal:
		return true
	case KindType:
		return e.HasLocalName(s.Name)
	case KindID:
		return e.HasID(s.Name)
	case KindClass:
		return e.HasClass(s.Name)
	case KindPseudoClass:
		return matchPseudoClass(s.Pseudo, e)
	}
	return false
}

func matchPseudoClass(p PseudoClass, e Element) bool {
	switch p {
	case PseudoHover:
		return e.State()&StateHover != 0
	case PseudoActive:
		return e.State()&StateActive != 0
	case PseudoFocus:
		return e.State()&StateFocus != 0
	case PseudoEnabled:
		return e.State()&StateEnabled != 0
	case PseudoDisabled:
		return e.State()&StateDisabled != 0
	case PseudoChecked:
		return e.State()&StateChecked != 0
	case PseudoIndeterminate:
		return e.State()&StateIndeterminate != 0
	case PseudoPlaceholderShown:
		return e.State()&StatePlaceholderShown != 0
	case PseudoTarget:
		return e.State()&StateTarget != 0
	case PseudoVisited:
		return e.State()&StateVisited != 0
	case PseudoLink:
		return e.IsLink()
	case PseudoRoot:
		return e.IsRoot()
	case PseudoEmpty:
		return e.IsEmpty()
	}
	return false
}
