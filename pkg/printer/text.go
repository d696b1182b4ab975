package printer

import (
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/joshuapare/invisreg/internal/regpath"
	"github.com/joshuapare/invisreg/pkg/invis"
	"github.com/joshuapare/invisreg/pkg/types"
)

func (p *Printer) printResultText(key regpath.Path, records []invis.Record) error {
	if _, err := fmt.Fprintf(p.writer, "[%s]\n", keyPath(key)); err != nil {
		return err
	}
	if len(records) == 0 {
		_, err := fmt.Fprintf(p.writer, "%s<no values>\n", p.indent(1))
		return err
	}
	for _, rec := range records {
		if err := p.printRecordText(rec, 1); err != nil {
			return err
		}
	}
	return nil
}

// printRecordText prints one record as: "Name" [REG_X] = value (hidden)
func (p *Printer) printRecordText(rec invis.Record, depth int) error {
	var b strings.Builder
	b.WriteString(p.indent(depth))

	name := rec.Name
	if name == "" {
		name = "(Default)"
	}
	fmt.Fprintf(&b, "%q", name)

	if p.opts.ShowValueTypes {
		fmt.Fprintf(&b, " [%s]", rec.Type)
	}
	b.WriteString(" = ")
	b.WriteString(p.formatDataText(rec))
	if rec.Invisible {
		b.WriteString(" (hidden)")
	}
	b.WriteByte('\n')

	_, err := fmt.Fprint(p.writer, b.String())
	return err
}

func (p *Printer) formatDataText(rec invis.Record) string {
	switch {
	case rec.Type == types.REG_SZ || rec.Type == types.REG_EXPAND_SZ:
		return fmt.Sprintf("%q", invis.DecodeString(rec.Data))

	case rec.Type == types.REG_DWORD && len(rec.Data) == 4:
		v := binary.LittleEndian.Uint32(rec.Data)
		return fmt.Sprintf("0x%08X (%d)", v, v)

	case rec.Type == types.REG_QWORD && len(rec.Data) == 8:
		v := binary.LittleEndian.Uint64(rec.Data)
		return fmt.Sprintf("0x%016X (%d)", v, v)

	default:
		data, truncated := p.clip(rec.Data)
		if len(data) == 0 {
			return "<empty>"
		}
		s := fmt.Sprintf("%X", data)
		if truncated {
			s += fmt.Sprintf(" (truncated, %d total bytes)", len(rec.Data))
		}
		return s
	}
}

func (p *Printer) printKeyInfoText(info invis.KeyInfo) error {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s]", info.Path)
	if info.Invisible {
		b.WriteString(" (hidden)")
	}
	b.WriteByte('\n')
	if !info.LastWrite.IsZero() {
		fmt.Fprintf(&b, "%sLast Write: %s\n", p.indent(1), info.LastWrite.Format("2006-01-02 15:04:05"))
	}
	fmt.Fprintf(&b, "%sSubkeys: %d, Values: %d\n", p.indent(1), len(info.Subkeys), info.Values)
	for _, sk := range info.Subkeys {
		fmt.Fprintf(&b, "%s%s", p.indent(2), sk.Name)
		if sk.Invisible {
			b.WriteString(" (hidden)")
		}
		b.WriteByte('\n')
	}
	_, err := fmt.Fprint(p.writer, b.String())
	return err
}

func (p *Printer) indent(depth int) string {
	return strings.Repeat(" ", depth*p.opts.IndentSize)
}
