// Package dominance reduces a header set to its Pareto-maximal subset.
//
// A header survives unless some other header is strictly greater under
// header.Compare. Equal headers and mutually incomparable headers all
// survive, so the result is the set of maximal elements, which can hold
// several headers even when the order has a unique top.
package dominance

import "github.com/roach88/idorch/internal/header"

// Maximal returns the headers of hs not strictly dominated by any other
// header of hs, in deterministic order. Pairwise, O(n²).
func Maximal(hs []header.Header) []header.Header {
	out := make([]header.Header, 0, len(hs))
	for i, h := range hs {
		if !dominated(h, i, hs) {
			out = append(out, h)
		}
	}
	header.Sort(out)
	return out
}

// Filter returns a new set holding the maximal headers of s.
func Filter(s *header.Set) *header.Set {
	return header.NewSet(Maximal(s.Headers())...)
}

func dominated(h header.Header, self int, hs []header.Header) bool {
	for j, o := range hs {
		if j == self {
			continue
		}
		if h.Compare(o) == header.Less {
			return true
		}
	}
	return false
}
