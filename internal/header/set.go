package header

import (
	"cmp"
	"slices"
	"strings"
)

// Set is a collection of headers deduplicated by ID.
// The zero value is not usable; call NewSet.
//
// Set is not safe for concurrent mutation.
type Set struct {
	byID map[string]Header
}

// NewSet returns a set holding the given headers.
func NewSet(headers ...Header) *Set {
	s := &Set{byID: make(map[string]Header, len(headers))}
	for _, h := range headers {
		s.Add(h)
	}
	return s
}

// Add inserts h and reports whether it was not already present.
// Adding a header whose identity is already present leaves the set unchanged.
func (s *Set) Add(h Header) bool {
	id := h.ID()
	if _, ok := s.byID[id]; ok {
		return false
	}
	s.byID[id] = h
	return true
}

// Union adds every header of other and returns how many were new.
func (s *Set) Union(other *Set) int {
	if other == nil {
		return 0
	}
	added := 0
	for id, h := range other.byID {
		if _, ok := s.byID[id]; ok {
			continue
		}
		s.byID[id] = h
		added++
	}
	return added
}

// Contains reports whether a header with the same identity is present.
func (s *Set) Contains(h Header) bool {
	_, ok := s.byID[h.ID()]
	return ok
}

// Len returns the number of distinct headers.
func (s *Set) Len() int {
	return len(s.byID)
}

// Headers returns the headers in deterministic order: category, then covered
// elements, then identity.
func (s *Set) Headers() []Header {
	out := make([]Header, 0, len(s.byID))
	for _, h := range s.byID {
		out = append(out, h)
	}
	Sort(out)
	return out
}

// Sort orders headers by category, then covered elements, then identity.
func Sort(headers []Header) {
	slices.SortFunc(headers, func(a, b Header) int {
		if c := cmp.Compare(a.Category, b.Category); c != 0 {
			return c
		}
		if c := cmp.Compare(strings.Join(a.CoveredElements, "\x00"), strings.Join(b.CoveredElements, "\x00")); c != 0 {
			return c
		}
		return cmp.Compare(a.ID(), b.ID())
	})
}
