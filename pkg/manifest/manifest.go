package manifest

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/joshuapare/invisreg/internal/regtext"
	"github.com/joshuapare/invisreg/pkg/invis"
	"github.com/joshuapare/invisreg/pkg/types"
)

// Manifest is a parsed batch file.
type Manifest struct {
	Operations []Entry `yaml:"operations" json:"operations"`

	// dir resolves relative payload files. Empty means the working directory.
	dir string
}

// Entry is one operation. Exactly one of Create, Edit, Delete and Query is
// set. Value, Hex and File are alternative payload sources for a value
// create; Hex and File are only valid with binary.
type Entry struct {
	Create  string `yaml:"create,omitempty" json:"create,omitempty"`
	Edit    string `yaml:"edit,omitempty" json:"edit,omitempty"`
	Delete  string `yaml:"delete,omitempty" json:"delete,omitempty"`
	Query   string `yaml:"query,omitempty" json:"query,omitempty"`
	Key     bool   `yaml:"key,omitempty" json:"key,omitempty"`
	Visible bool   `yaml:"visible,omitempty" json:"visible,omitempty"`
	Type    string `yaml:"type,omitempty" json:"type,omitempty"`
	Value   string `yaml:"value,omitempty" json:"value,omitempty"`
	Hex     string `yaml:"hex,omitempty" json:"hex,omitempty"`
	File    string `yaml:"file,omitempty" json:"file,omitempty"`

	// Line is the entry's line in a YAML manifest, 0 for JSON.
	Line int `yaml:"-" json:"-"`
}

// FromFile loads a manifest, auto-detecting format by extension.
// Supported extensions: .yaml, .yml, .json, .reg
func FromFile(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	var m *Manifest
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		m, err = FromYAML(data)
	case ".json":
		m, err = FromJSON(data)
	case ".reg":
		m, err = FromReg(data)
	default:
		return nil, types.ErrInvalidArgument.With("manifest", path).
			Wrap(fmt.Errorf("unsupported manifest extension: %q", ext))
	}
	if err != nil {
		return nil, err
	}
	m.dir = filepath.Dir(path)
	return m, nil
}

// FromYAML parses YAML data into a Manifest.
func FromYAML(data []byte) (*Manifest, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	if err := checkYAMLDuplicates(&doc); err != nil {
		return nil, err
	}

	var raw struct {
		Operations []yaml.Node `yaml:"operations"`
	}
	if err := doc.Decode(&raw); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}

	m := &Manifest{Operations: make([]Entry, 0, len(raw.Operations))}
	for i := range raw.Operations {
		n := &raw.Operations[i]
		var e Entry
		if err := n.Decode(&e); err != nil {
			return nil, fmt.Errorf("parse yaml: operations[%d]: %w", i, err)
		}
		e.Line = n.Line
		m.Operations = append(m.Operations, e)
	}
	return m, nil
}

// FromJSON parses JSON data into a Manifest.
func FromJSON(data []byte) (*Manifest, error) {
	if err := checkJSONDuplicates(data); err != nil {
		return nil, err
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse json: %w", err)
	}
	return &m, nil
}

// FromReg reads a .reg file. Key headers create keys, "Name"=data lines
// write values and the "-" forms delete. Lines preceded by the hidden marker
// comment of a .reg export refer to hidden names; all others are visible.
func FromReg(data []byte) (*Manifest, error) {
	recs, err := regtext.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse reg: %w", err)
	}

	m := &Manifest{Operations: make([]Entry, 0, len(recs))}
	for _, rec := range recs {
		e := Entry{Key: rec.Key, Visible: !rec.Hidden, Line: rec.Line}
		if rec.Action == regtext.ActionDelete {
			e.Delete = rec.Path
			m.Operations = append(m.Operations, e)
			continue
		}
		e.Create = rec.Path
		if !rec.Key {
			e.Type = rec.Type.String()
			switch rec.Type {
			case types.REG_SZ:
				e.Value = rec.Text
				if rec.Data != nil {
					e.Value = invis.DecodeString(rec.Data)
				}
			case types.REG_DWORD:
				e.Value = strconv.FormatUint(uint64(binary.LittleEndian.Uint32(rec.Data)), 10)
			case types.REG_QWORD:
				e.Value = strconv.FormatUint(binary.LittleEndian.Uint64(rec.Data), 10)
			default:
				e.Hex = hex.EncodeToString(rec.Data)
			}
		}
		m.Operations = append(m.Operations, e)
	}
	return m, nil
}

// Requests validates every entry and converts it to an engine request.
// The first invalid entry stops the conversion.
func (m *Manifest) Requests() ([]invis.Request, error) {
	reqs := make([]invis.Request, 0, len(m.Operations))
	for i, e := range m.Operations {
		req, err := e.Request(m.dir)
		if err != nil {
			where := fmt.Sprintf("operations[%d]", i)
			if e.Line > 0 {
				where += fmt.Sprintf(" (line %d)", e.Line)
			}
			return nil, fmt.Errorf("manifest %s: %w", where, err)
		}
		reqs = append(reqs, req)
	}
	return reqs, nil
}

// Request validates e and converts it to an engine request. dir resolves a
// relative File; empty means the working directory.
func (e Entry) Request(dir string) (invis.Request, error) {
	req := invis.Request{Container: e.Key, Visible: e.Visible}

	var named []string
	for _, op := range []struct {
		name string
		path string
		op   invis.Operation
	}{
		{"create", e.Create, invis.OpCreateOrSet},
		{"edit", e.Edit, invis.OpCreateOrSet},
		{"delete", e.Delete, invis.OpDelete},
		{"query", e.Query, invis.OpQuery},
	} {
		if op.path == "" {
			continue
		}
		named = append(named, op.name)
		req.Op = op.op
		req.Path = op.path
	}
	switch len(named) {
	case 0:
		return invis.Request{}, types.ErrMissingArgValue.With("manifest", "").
			Wrap(errors.New("entry names no operation"))
	case 1:
	default:
		return invis.Request{}, types.ErrMultipleOps.With("manifest", req.Path).
			Wrap(fmt.Errorf("entry names %s", strings.Join(named, ", ")))
	}

	if req.Op != invis.OpCreateOrSet || req.Container {
		return req, nil
	}

	typ, err := types.ParseRegType(e.Type)
	if err != nil {
		return invis.Request{}, err
	}
	req.Type = typ
	req.Data, err = e.payload(typ, dir)
	if err != nil {
		return invis.Request{}, err
	}
	return req, nil
}

// payload resolves the single payload source of a value create.
func (e Entry) payload(typ types.RegType, dir string) ([]byte, error) {
	sources := 0
	for _, s := range []string{e.Value, e.Hex, e.File} {
		if s != "" {
			sources++
		}
	}
	switch {
	case sources == 0:
		return nil, types.ErrNeedValue.With("manifest", e.Create+e.Edit)
	case sources > 1:
		return nil, types.ErrTooMany.With("manifest", e.Create+e.Edit).
			Wrap(errors.New("value, hex and file are mutually exclusive"))
	}

	if (e.Hex != "" || e.File != "") && typ != types.REG_BINARY {
		return nil, types.ErrInvalidArgument.With("manifest", e.Create+e.Edit).
			Wrap(fmt.Errorf("hex and file payloads need binary, not %s", typ))
	}

	switch {
	case e.Hex != "":
		return invis.ParseHex(e.Hex)
	case e.File != "":
		path := e.File
		if !filepath.IsAbs(path) && dir != "" {
			path = filepath.Join(dir, path)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read payload: %w", err)
		}
		return data, nil
	default:
		return invis.ParseValue(typ, e.Value)
	}
}

// checkYAMLDuplicates rejects mappings that repeat a key.
func checkYAMLDuplicates(n *yaml.Node) error {
	if n.Kind == yaml.MappingNode {
		seen := make(map[string]int, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			k := n.Content[i]
			if first, dup := seen[k.Value]; dup {
				return types.ErrTooMany.With("manifest", "").
					Wrap(fmt.Errorf("key %q on line %d repeats line %d", k.Value, k.Line, first))
			}
			seen[k.Value] = k.Line
		}
	}
	for _, c := range n.Content {
		if err := checkYAMLDuplicates(c); err != nil {
			return err
		}
	}
	return nil
}

// checkJSONDuplicates walks the token stream and rejects objects that repeat
// a key.
func checkJSONDuplicates(data []byte) error {
	type frame struct {
		object    bool
		expectKey bool
		seen      map[string]bool
	}
	var stack []*frame

	dec := json.NewDecoder(bytes.NewReader(data))
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("parse json: %w", err)
		}

		var top *frame
		if len(stack) > 0 {
			top = stack[len(stack)-1]
		}

		if d, ok := tok.(json.Delim); ok {
			switch d {
			case '{', '[':
				if top != nil && top.object {
					top.expectKey = true
				}
				stack = append(stack, &frame{object: d == '{', expectKey: d == '{', seen: map[string]bool{}})
			case '}', ']':
				stack = stack[:len(stack)-1]
			}
			continue
		}

		if top == nil || !top.object {
			continue
		}
		if !top.expectKey {
			top.expectKey = true
			continue
		}
		key, _ := tok.(string)
		if top.seen[key] {
			return types.ErrTooMany.With("manifest", "").
				Wrap(fmt.Errorf("key %q repeated", key))
		}
		top.seen[key] = true
		top.expectKey = false
	}
}
