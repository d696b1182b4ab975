package trickname

import (
	"slices"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"

	"github.com/joshuapare/invisreg/pkg/types"
)

// codepages maps the accepted codepage names to decoders. Empty and "utf-8"
// mean the input is already UTF-8.
var codepages = map[string]encoding.Encoding{
	"ibm437":       charmap.CodePage437,
	"cp437":        charmap.CodePage437,
	"oem":          charmap.CodePage437,
	"ibm850":       charmap.CodePage850,
	"cp850":        charmap.CodePage850,
	"windows-1252": charmap.Windows1252,
	"cp1252":       charmap.Windows1252,
	"iso-8859-1":   charmap.ISO8859_1,
}

// FromCodepage converts command-line bytes in a legacy codepage to UTF-8.
// Bytes the codepage leaves undefined are rejected with ErrInvalidType.
func FromCodepage(b []byte, codepage string) (string, error) {
	cp := strings.ToLower(codepage)
	if cp == "" || cp == "utf-8" || cp == "utf8" {
		if !utf8.Valid(b) {
			return "", types.ErrInvalidType.With("decode", "").Wrap(errInvalidUTF8)
		}
		return string(b), nil
	}

	enc, ok := codepages[cp]
	if !ok {
		return "", types.ErrInvalidArgument.With("decode", "").Wrap(unknownCodepage(codepage))
	}

	out, err := enc.NewDecoder().Bytes(b)
	if err != nil {
		return "", types.ErrInvalidType.With("decode", "").Wrap(err)
	}
	// Undefined code points decode to U+FFFD; treat them as invalid input.
	if strings.ContainsRune(string(out), utf8.RuneError) {
		return "", types.ErrInvalidType.With("decode", "").Wrap(errUndefinedByte)
	}
	return string(out), nil
}

// Codepages lists the accepted codepage names.
func Codepages() []string {
	names := make([]string, 0, len(codepages)+1)
	names = append(names, "utf-8")
	for name := range codepages {
		names = append(names, name)
	}
	slices.Sort(names[1:])
	return names
}
