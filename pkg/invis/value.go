package invis

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"

	"github.com/joshuapare/invisreg/pkg/types"
)

var utf16le = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)

// ParseValue converts command-line text to the payload of a value of type
// typ. REG_SZ is stored as UTF-16LE with a terminator, REG_DWORD and
// REG_QWORD accept any strconv base prefix, and REG_BINARY takes hex.
func ParseValue(typ types.RegType, s string) ([]byte, error) {
	switch typ {
	case types.REG_SZ:
		return EncodeString(s)

	case types.REG_DWORD:
		v, err := strconv.ParseUint(s, 0, 32)
		if err != nil {
			return nil, types.ErrInvalidArgument.With("parse value", "").
				Wrap(fmt.Errorf("invalid DWORD value: %w", err))
		}
		data := make([]byte, 4)
		binary.LittleEndian.PutUint32(data, uint32(v))
		return data, nil

	case types.REG_QWORD:
		v, err := strconv.ParseUint(s, 0, 64)
		if err != nil {
			return nil, types.ErrInvalidArgument.With("parse value", "").
				Wrap(fmt.Errorf("invalid QWORD value: %w", err))
		}
		data := make([]byte, 8)
		binary.LittleEndian.PutUint64(data, v)
		return data, nil

	case types.REG_BINARY:
		return ParseHex(s)

	default:
		return nil, types.ErrInvalidType.With("parse value", "").Wrap(fmt.Errorf("%s", typ))
	}
}

// EncodeString returns s as UTF-16LE followed by a zero terminator.
func EncodeString(s string) ([]byte, error) {
	if !utf8.ValidString(s) {
		return nil, types.ErrInvalidType.With("encode string", "")
	}
	b, err := utf16le.NewEncoder().Bytes([]byte(s))
	if err != nil {
		return nil, types.ErrInvalidType.With("encode string", "").Wrap(err)
	}
	return append(b, 0, 0), nil
}

// DecodeString reads REG_SZ data. Everything from the first zero unit on is
// dropped; an odd trailing byte is ignored.
func DecodeString(data []byte) string {
	n := len(data) &^ 1
	for i := 0; i+1 < n; i += 2 {
		if data[i] == 0 && data[i+1] == 0 {
			n = i
			break
		}
	}
	out, err := utf16le.NewDecoder().Bytes(data[:n])
	if err != nil {
		return ""
	}
	return string(out)
}

// ParseHex parses a hex byte string. A "0x" prefix and space, comma, colon
// or dash separators are accepted.
func ParseHex(s string) ([]byte, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "0x")
	s = strings.NewReplacer(" ", "", ",", "", ":", "", "-", "").Replace(s)
	if len(s)%2 != 0 {
		return nil, types.ErrInvalidArgument.With("parse hex", "").
			Wrap(errors.New("hex string must have an even number of digits"))
	}

	data := make([]byte, len(s)/2)
	for i := range data {
		v, err := strconv.ParseUint(s[i*2:i*2+2], 16, 8)
		if err != nil {
			return nil, types.ErrInvalidArgument.With("parse hex", "").
				Wrap(fmt.Errorf("invalid hex at position %d: %w", i*2, err))
		}
		data[i] = byte(v)
	}
	return data, nil
}
