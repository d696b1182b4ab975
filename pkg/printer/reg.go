package printer

import (
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/joshuapare/invisreg/internal/regpath"
	"github.com/joshuapare/invisreg/internal/regtext"
	"github.com/joshuapare/invisreg/pkg/invis"
	"github.com/joshuapare/invisreg/pkg/types"
)

// printResultReg prints records in Windows .reg file format.
func (p *Printer) printResultReg(key regpath.Path, records []invis.Record) error {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n\n", regtext.RegFileHeader)
	fmt.Fprintf(&b, "[%s]\n", keyPath(key))
	for _, rec := range records {
		if rec.Invisible {
			// regedit cannot import NUL-prefixed names; the marker lets invisreg do it.
			b.WriteString(regtext.HiddenComment + "\n")
		}
		b.WriteString(formatRegValue(rec))
		b.WriteByte('\n')
	}
	_, err := fmt.Fprint(p.writer, b.String())
	return err
}

// formatRegValue renders one name=data line.
func formatRegValue(rec invis.Record) string {
	name := `@`
	if rec.Name != "" {
		name = `"` + escapeRegString(rec.Name) + `"`
	}

	switch {
	case rec.Type == types.REG_SZ:
		return fmt.Sprintf(`%s="%s"`, name, escapeRegString(invis.DecodeString(rec.Data)))
	case rec.Type == types.REG_DWORD && len(rec.Data) == 4:
		return fmt.Sprintf("%s=dword:%08x", name, binary.LittleEndian.Uint32(rec.Data))
	case rec.Type == types.REG_BINARY:
		return fmt.Sprintf("%s=hex:%s", name, formatHexBytes(rec.Data))
	default:
		// REG_QWORD is hex(b) in .reg files; other types use their number.
		return fmt.Sprintf("%s=hex(%x):%s", name, uint32(rec.Type), formatHexBytes(rec.Data))
	}
}

// escapeRegString escapes special characters in .reg file strings.
func escapeRegString(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return s
}

// formatHexBytes formats bytes as comma-separated hex values for .reg format.
func formatHexBytes(data []byte) string {
	if len(data) == 0 {
		return ""
	}
	parts := make([]string, len(data))
	for i, b := range data {
		parts[i] = fmt.Sprintf("%02x", b)
	}
	return strings.Join(parts, ",")
}
