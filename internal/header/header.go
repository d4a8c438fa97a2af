package header

import (
	"slices"

	"golang.org/x/text/unicode/norm"
)

// Header is one identified decision model header.
//
// CoveredElements is kept sorted and free of duplicates; use New or Decode to
// obtain a normalized value.
type Header struct {
	Category        string   `msgpack:"category" json:"category"`
	BodyPath        *string  `msgpack:"body_path" json:"body_path"`
	CoveredElements []string `msgpack:"covered_elements" json:"covered_elements"`
}

// New builds a normalized header. An empty bodyPath means the header has no
// body file.
func New(category string, elements []string, bodyPath string) Header {
	h := Header{
		Category:        category,
		CoveredElements: elements,
	}
	if bodyPath != "" {
		h.BodyPath = &bodyPath
	}
	return h.normalize()
}

// Body returns the body path or "" when the header has none.
func (h Header) Body() string {
	if h.BodyPath == nil {
		return ""
	}
	return *h.BodyPath
}

// normalize returns a copy with NFC strings and a sorted, deduplicated
// element list. The receiver's slice is never modified.
func (h Header) normalize() Header {
	out := Header{Category: norm.NFC.String(h.Category)}
	if h.BodyPath != nil {
		p := norm.NFC.String(*h.BodyPath)
		out.BodyPath = &p
	}
	elems := make([]string, 0, len(h.CoveredElements))
	for _, e := range h.CoveredElements {
		elems = append(elems, norm.NFC.String(e))
	}
	slices.Sort(elems)
	out.CoveredElements = slices.Compact(elems)
	return out
}
