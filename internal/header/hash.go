package header

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// DomainHeader prefixes every header identity hash.
// The version suffix leaves room for a future change of the canonical form.
const DomainHeader = "idorch/header/v1"

// hashWithDomain computes SHA256(domain + 0x00 + data).
// The null byte keeps the domain/data boundary unambiguous.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// ID returns the content-addressed identity of the header.
// Equal IDs mean the same fact; the ID is stable across runs and processes.
func (h Header) ID() string {
	return hashWithDomain(DomainHeader, h.canonical())
}

// canonical renders the header as JSON with keys in sorted order and no HTML
// escaping. The header must already be normalized.
func (h Header) canonical() []byte {
	var buf bytes.Buffer
	buf.WriteByte('{')
	if h.BodyPath != nil {
		buf.WriteString(`"body_path":`)
		buf.Write(canonicalString(*h.BodyPath))
		buf.WriteByte(',')
	}
	buf.WriteString(`"category":`)
	buf.Write(canonicalString(h.Category))
	buf.WriteString(`,"covered_elements":[`)
	for i, e := range h.CoveredElements {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.Write(canonicalString(e))
	}
	buf.WriteString("]}")
	return buf.Bytes()
}

func canonicalString(s string) []byte {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	// Encoding a string cannot fail.
	_ = enc.Encode(s)
	return bytes.TrimSuffix(buf.Bytes(), []byte{'\n'})
}
