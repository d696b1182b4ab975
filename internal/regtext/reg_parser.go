// Package regtext reads Windows .reg files as a list of registry edits.
//
// Besides the usual syntax it understands the hidden marker written by
// invisreg's .reg export: a comment line starting with "; hidden:" makes the
// key header or value line that follows refer to the NUL-prefixed name.
package regtext

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/joshuapare/invisreg/pkg/types"
)

// Action is what a record asks for.
type Action int

const (
	ActionSet    Action = iota + 1 // create a key or write a value
	ActionDelete                   // [-Key] or "Name"=-
)

// Record is one edit read from a .reg file.
type Record struct {
	Line   int
	Action Action
	Key    bool   // a key header rather than a value line
	Hidden bool   // preceded by the hidden marker
	Path   string // "HKCU:\..." form; for values the last segment is the name
	Type   types.RegType
	Text   string // REG_SZ written as a quoted string
	Data   []byte // payload of dword: and hex lines
}

var (
	errNoKey        = errors.New("value line before any key header")
	errHiddenParent = errors.New("values of a hidden key cannot be addressed by path")
	errDefaultValue = errors.New("the default value has no name to address")
	errBadLine      = errors.New("unrecognized line")
)

// Parse reads a .reg file. UTF-16 input is recognised by its byte order
// mark; anything else is read as UTF-8. The header line is optional.
func Parse(r io.Reader) ([]Record, error) {
	decoded := transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))

	scanner := bufio.NewScanner(decoded)
	buf := make([]byte, 0, ScannerInitialBufferSize)
	scanner.Buffer(buf, ScannerMaxLineSize)

	var (
		records []Record
		key     string // current key in HKCU:\... form, "" before the first header
		keyHide bool
		hidden  bool
		lineNo  int
	)

	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		start := lineNo

		if line == "" || strings.HasPrefix(line, RegFileHeader) {
			continue
		}
		if strings.HasPrefix(line, CommentPrefix) {
			if strings.HasPrefix(line, hiddenMarker) {
				hidden = true
			}
			continue
		}

		if strings.HasPrefix(line, KeyOpenBracket) && strings.HasSuffix(line, KeyCloseBracket) {
			inner := strings.TrimSuffix(strings.TrimPrefix(line, KeyOpenBracket), KeyCloseBracket)
			del := strings.HasPrefix(inner, DeleteKeyPrefix)
			path, root, err := convertKeyPath(strings.TrimPrefix(inner, DeleteKeyPrefix))
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", start, err)
			}
			key, keyHide = path, hidden
			hidden = false
			if root {
				if del {
					return nil, fmt.Errorf("line %d: %w", start,
						types.ErrInvalidKey.With("parse reg", inner).Wrap(errors.New("cannot delete a hive root")))
				}
				continue
			}
			action := ActionSet
			if del {
				action = ActionDelete
				key = ""
			}
			records = append(records, Record{Line: start, Action: action, Key: true, Hidden: keyHide, Path: path})
			continue
		}

		// Join continuation lines of long hex data.
		for strings.HasSuffix(line, Backslash) && scanner.Scan() {
			lineNo++
			line = strings.TrimSuffix(line, Backslash) + strings.TrimSpace(scanner.Text())
		}

		rec, err := parseValueLine(line, key, keyHide)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", start, err)
		}
		rec.Line = start
		rec.Hidden = hidden
		hidden = false
		records = append(records, rec)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning .reg file: %w", err)
	}
	return records, nil
}

// parseValueLine parses "Name"=data under key.
func parseValueLine(line, key string, keyHidden bool) (Record, error) {
	if strings.HasPrefix(line, DefaultValuePrefix) {
		return Record{}, types.ErrInvalidKey.With("parse reg", key).Wrap(errDefaultValue)
	}
	if !strings.HasPrefix(line, Quote) {
		return Record{}, types.ErrInvalidArgument.With("parse reg", key).Wrap(fmt.Errorf("%w: %q", errBadLine, line))
	}
	switch {
	case keyHidden:
		return Record{}, types.ErrInvalidKey.With("parse reg", key).Wrap(errHiddenParent)
	case key == "":
		return Record{}, types.ErrInvalidKey.With("parse reg", "").Wrap(errNoKey)
	}

	closing := findClosingQuote(line)
	if closing == -1 || closing+1 >= len(line) || line[closing+1] != '=' {
		return Record{}, types.ErrInvalidArgument.With("parse reg", key).Wrap(fmt.Errorf("%w: %q", errBadLine, line))
	}
	name := unescapeRegString(line[1:closing])
	if name == "" || strings.Contains(name, Backslash) {
		return Record{}, types.ErrInvalidKey.With("parse reg", key).
			Wrap(fmt.Errorf("value name %q cannot be addressed by path", name))
	}

	rec := Record{Action: ActionSet, Path: key + Backslash + name}
	data := strings.TrimSpace(line[closing+2:])
	var err error
	switch {
	case data == DeleteValueData:
		rec.Action = ActionDelete

	case strings.HasPrefix(data, Quote):
		end := findClosingQuote(data)
		if end != len(data)-1 {
			return Record{}, types.ErrInvalidArgument.With("parse reg", rec.Path).Wrap(errors.New("unterminated string"))
		}
		rec.Type = types.REG_SZ
		rec.Text = unescapeRegString(data[1:end])

	case strings.HasPrefix(data, DWORDPrefix):
		v, perr := strconv.ParseUint(strings.TrimPrefix(data, DWORDPrefix), 16, 32)
		if perr != nil {
			return Record{}, types.ErrInvalidArgument.With("parse reg", rec.Path).Wrap(perr)
		}
		rec.Type = types.REG_DWORD
		rec.Data = binary.LittleEndian.AppendUint32(nil, uint32(v))

	case strings.HasPrefix(data, HexPrefix):
		rec.Type = types.REG_BINARY
		rec.Data, err = parseHexBytes(data)

	case strings.HasPrefix(data, HexTypedPrefix):
		typ, ok := parseHexValueType(data)
		if !ok || !typ.Writable() {
			return Record{}, types.ErrInvalidType.With("parse reg", rec.Path).Wrap(fmt.Errorf("%q", data[:strings.IndexByte(data, ':')+1]))
		}
		rec.Type = typ
		rec.Data, err = parseHexBytes(data)
		if err == nil && typ.FixedSize() != 0 && len(rec.Data) != typ.FixedSize() {
			err = fmt.Errorf("%s needs %d bytes, got %d", typ, typ.FixedSize(), len(rec.Data))
		}

	default:
		return Record{}, types.ErrInvalidType.With("parse reg", rec.Path).Wrap(fmt.Errorf("%w: %q", errBadLine, data))
	}
	if err != nil {
		return Record{}, types.ErrInvalidArgument.With("parse reg", rec.Path).Wrap(err)
	}
	return rec, nil
}

// convertKeyPath rewrites HKEY_CURRENT_USER\SOFTWARE\X as HKCU:\SOFTWARE\X.
// root reports a bare hive name, returned as "HKCU:" so that appending
// \Name yields a valid value path.
func convertKeyPath(p string) (path string, root bool, err error) {
	name, rest, _ := strings.Cut(p, Backslash)
	for _, h := range types.Hives {
		if strings.EqualFold(name, h.String()) || name == h.Token() {
			if rest == "" {
				return h.Token() + ":", true, nil
			}
			return h.Token() + `:\` + rest, false, nil
		}
	}
	return "", false, types.ErrInvalidHive.With("parse reg", p)
}
