package header

import (
	"errors"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
	"github.com/vmihailenco/msgpack/v5/msgpcode"
)

// ErrMalformed is returned when bytes cannot be decoded into a header.
var ErrMalformed = errors.New("malformed header record")

// wireFields is the map encoding of a header record.
type wireFields struct {
	Category        string   `msgpack:"category"`
	BodyPath        *string  `msgpack:"body_path"`
	CoveredElements []string `msgpack:"covered_elements"`
}

// wireTuple is the positional encoding: [category, body_path, covered_elements].
// Some module toolchains serialize structs this way by default.
type wireTuple struct {
	_msgpack        struct{} `msgpack:",as_array"`
	Category        string
	BodyPath        *string
	CoveredElements []string
}

// DecodeMsgpack accepts both the map and the positional encodings.
func (h *Header) DecodeMsgpack(dec *msgpack.Decoder) error {
	c, err := dec.PeekCode()
	if err != nil {
		return err
	}
	var raw Header
	switch {
	case msgpcode.IsFixedArray(c) || c == msgpcode.Array16 || c == msgpcode.Array32:
		var t wireTuple
		if err := dec.Decode(&t); err != nil {
			return err
		}
		raw = Header{Category: t.Category, BodyPath: t.BodyPath, CoveredElements: t.CoveredElements}
	case msgpcode.IsFixedMap(c) || c == msgpcode.Map16 || c == msgpcode.Map32:
		var f wireFields
		if err := dec.Decode(&f); err != nil {
			return err
		}
		raw = Header{Category: f.Category, BodyPath: f.BodyPath, CoveredElements: f.CoveredElements}
	default:
		return fmt.Errorf("%w: unexpected msgpack code 0x%02x", ErrMalformed, c)
	}
	if raw.Category == "" {
		return fmt.Errorf("%w: missing category", ErrMalformed)
	}
	*h = raw.normalize()
	return nil
}

// Decode parses one binary header record.
func Decode(data []byte) (Header, error) {
	var h Header
	if err := msgpack.Unmarshal(data, &h); err != nil {
		if errors.Is(err, ErrMalformed) {
			return Header{}, err
		}
		return Header{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return h, nil
}

// Encode renders the header in the map encoding.
func Encode(h Header) ([]byte, error) {
	b, err := msgpack.Marshal(wireFields{
		Category:        h.Category,
		BodyPath:        h.BodyPath,
		CoveredElements: h.CoveredElements,
	})
	if err != nil {
		return nil, fmt.Errorf("encode header: %w", err)
	}
	return b, nil
}
