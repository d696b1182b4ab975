// Package trickname builds the counted UTF-16 names handed to the native
// registry API.
//
// A hidden name is the requested name prefixed with one zero code unit. The
// declared byte length covers that prefix, so the native API addresses the
// full name while any API that stops at the first zero unit sees an empty
// string. A visible name is the plain UTF-16 encoding.
//
//	raw "Y", hidden:  units [0x0000 'Y'] 0x0000, Length 4
//	raw "Y", visible: units ['Y'] 0x0000,        Length 2
//
// The trailing terminator unit is never counted in Length.
package trickname

import (
	"unicode/utf16"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"

	"github.com/joshuapare/invisreg/internal/format"
	"github.com/joshuapare/invisreg/pkg/types"
)

// Name is an encoded registry name ready for the provider.
type Name struct {
	Raw     string
	Hidden  bool
	Encoded []uint16 // significant units followed by one zero terminator
	Length  uint16   // significant bytes, terminator excluded
}

var utf16le = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)

// Encode converts raw to UTF-16, prefixing a zero unit when hidden.
// Invalid UTF-8 is rejected with ErrInvalidType rather than replaced.
func Encode(raw string, hidden bool) (Name, error) {
	if !utf8.ValidString(raw) {
		return Name{}, types.ErrInvalidType.With("encode name", "")
	}

	b, err := utf16le.NewEncoder().Bytes([]byte(raw))
	if err != nil {
		return Name{}, types.ErrInvalidType.With("encode name", "").Wrap(err)
	}

	offset := 0
	if hidden {
		offset = 1
	}
	count := len(b) / 2
	size := 2 * (count + offset)
	if size > format.MaxNameBytes {
		return Name{}, types.ErrInvalidKey.With("encode name", "")
	}

	encoded := make([]uint16, offset+count+1)
	units, err := format.UnitsFromBytes(b)
	if err != nil {
		return Name{}, types.ErrInvalidType.With("encode name", "").Wrap(err)
	}
	copy(encoded[offset:], units)

	return Name{
		Raw:     raw,
		Hidden:  hidden,
		Encoded: encoded,
		Length:  uint16(size),
	}, nil
}

// MustEncode is Encode for names known to be valid; it panics otherwise.
func MustEncode(raw string, hidden bool) Name {
	n, err := Encode(raw, hidden)
	if err != nil {
		panic(err)
	}
	return n
}

// Units returns the significant code units.
func (n Name) Units() []uint16 {
	return n.Encoded[:n.Length/2]
}

// Decode turns counted name units back into text. A leading zero unit marks
// the name hidden and exactly that one unit is stripped.
func Decode(units []uint16) (name string, hidden bool) {
	if len(units) > 0 && units[0] == 0 {
		hidden = true
		units = units[1:]
	}
	return string(utf16.Decode(units)), hidden
}
