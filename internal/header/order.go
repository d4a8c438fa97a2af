package header

// Ordering is the result of comparing two headers under the partial order.
type Ordering int

const (
	// Incomparable means neither header dominates the other.
	Incomparable Ordering = iota
	Less
	Equal
	Greater
)

// String returns the lowercase name of the ordering.
func (o Ordering) String() string {
	switch o {
	case Less:
		return "less"
	case Equal:
		return "equal"
	case Greater:
		return "greater"
	default:
		return "incomparable"
	}
}

// Compare orders h against other.
//
// Headers of different categories are incomparable. Within a category the
// order is inclusion of covered elements: a header covering a strict superset
// of the other's elements is Greater. The body path plays no part, so two
// headers can be Equal while having different identities.
//
// Both headers must be normalized.
func (h Header) Compare(other Header) Ordering {
	if h.Category != other.Category {
		return Incomparable
	}
	hInOther := subset(h.CoveredElements, other.CoveredElements)
	otherInH := subset(other.CoveredElements, h.CoveredElements)
	switch {
	case hInOther && otherInH:
		return Equal
	case hInOther:
		return Less
	case otherInH:
		return Greater
	default:
		return Incomparable
	}
}

// subset reports whether every element of a is in b. Both must be sorted.
func subset(a, b []string) bool {
	if len(a) > len(b) {
		return false
	}
	j := 0
	for _, x := range a {
		for j < len(b) && b[j] < x {
			j++
		}
		if j == len(b) || b[j] != x {
			return false
		}
		j++
	}
	return true
}
