package printer

import (
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/joshuapare/invisreg/internal/regpath"
	"github.com/joshuapare/invisreg/pkg/invis"
	"github.com/joshuapare/invisreg/pkg/types"
)

// jsonRecord represents a value in JSON format.
type jsonRecord struct {
	Name   string `json:"name"`
	Type   string `json:"type,omitempty"`
	Hidden bool   `json:"hidden"`
	Data   any    `json:"data"`
}

type jsonResult struct {
	Key     string       `json:"key"`
	Value   *jsonRecord  `json:"value,omitempty"`
	Records []jsonRecord `json:"records,omitempty"`
}

type jsonSubkey struct {
	Name   string `json:"name"`
	Hidden bool   `json:"hidden"`
}

type jsonKeyInfo struct {
	Path      string       `json:"path"`
	Hidden    bool         `json:"hidden"`
	LastWrite string       `json:"last_write,omitempty"`
	Values    uint32       `json:"values"`
	Subkeys   []jsonSubkey `json:"subkeys"`
}

func (p *Printer) printResultJSON(key regpath.Path, res invis.Result) error {
	out := jsonResult{Key: keyPath(key)}
	if res.Value != nil {
		rec := p.toJSON(*res.Value)
		out.Value = &rec
	} else {
		out.Records = make([]jsonRecord, 0, len(res.Records))
		for _, rec := range res.Records {
			out.Records = append(out.Records, p.toJSON(rec))
		}
	}
	return p.writeJSON(out)
}

func (p *Printer) printKeyInfoJSON(info invis.KeyInfo) error {
	out := jsonKeyInfo{
		Path:    info.Path,
		Hidden:  info.Invisible,
		Values:  info.Values,
		Subkeys: make([]jsonSubkey, 0, len(info.Subkeys)),
	}
	if !info.LastWrite.IsZero() {
		out.LastWrite = info.LastWrite.Format(time.RFC3339)
	}
	for _, sk := range info.Subkeys {
		out.Subkeys = append(out.Subkeys, jsonSubkey{Name: sk.Name, Hidden: sk.Invisible})
	}
	return p.writeJSON(out)
}

func (p *Printer) toJSON(rec invis.Record) jsonRecord {
	out := jsonRecord{
		Name:   rec.Name,
		Hidden: rec.Invisible,
		Data:   p.decodeValueJSON(rec),
	}
	if p.opts.ShowValueTypes {
		out.Type = rec.Type.String()
	}
	return out
}

func (p *Printer) decodeValueJSON(rec invis.Record) any {
	switch {
	case rec.Type == types.REG_SZ || rec.Type == types.REG_EXPAND_SZ:
		return invis.DecodeString(rec.Data)
	case rec.Type == types.REG_DWORD && len(rec.Data) == 4:
		return binary.LittleEndian.Uint32(rec.Data)
	case rec.Type == types.REG_QWORD && len(rec.Data) == 8:
		return binary.LittleEndian.Uint64(rec.Data)
	default:
		data, truncated := p.clip(rec.Data)
		s := hex.EncodeToString(data)
		if truncated {
			s += fmt.Sprintf(" (truncated, %d total bytes)", len(rec.Data))
		}
		return s
	}
}

func (p *Printer) writeJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(p.writer, "%s\n", data)
	return err
}
