package printer

import (
	"fmt"
	"io"
	"strings"

	"github.com/joshuapare/invisreg/internal/regpath"
	"github.com/joshuapare/invisreg/pkg/invis"
	"github.com/joshuapare/invisreg/pkg/types"
)

const (
	DefaultIndentSize    = 2
	DefaultMaxValueBytes = 32
)

// Format specifies the output format for printing.
type Format string

const (
	// FormatText outputs human-readable text format.
	FormatText Format = "text"

	// FormatJSON outputs JSON format.
	FormatJSON Format = "json"

	// FormatReg outputs Windows .reg file format.
	FormatReg Format = "reg"
)

// ParseFormat maps a --format flag to a Format.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatText, FormatJSON, FormatReg:
		return f, nil
	case "":
		return FormatText, nil
	default:
		return "", types.ErrInvalidArgument.With("format", "").
			Wrap(fmt.Errorf("unknown output format %q (want text, json or reg)", s))
	}
}

// Options controls printing behavior.
type Options struct {
	// Format specifies output format (text, json, reg).
	// Default: FormatText
	Format Format

	// IndentSize is the number of spaces per indent level (text format only).
	// Default: 2
	IndentSize int

	// ShowValueTypes includes REG_* type names.
	// Default: true
	ShowValueTypes bool

	// MaxValueBytes limits how many bytes of binary values to display in
	// text and JSON output. Set to 0 for no limit. .reg output is never
	// truncated.
	// Default: 32
	MaxValueBytes int
}

// DefaultOptions returns sensible defaults for printing.
func DefaultOptions() Options {
	return Options{
		Format:         FormatText,
		IndentSize:     DefaultIndentSize,
		ShowValueTypes: true,
		MaxValueBytes:  DefaultMaxValueBytes,
	}
}

// Printer renders query results and key summaries.
type Printer struct {
	opts   Options
	writer io.Writer
}

// New creates a new Printer writing to w.
//
// Example:
//
//	res, _ := eng.Query(ctx, `HKCU:\SOFTWARE\X`)
//	defer res.Release()
//	p := printer.New(os.Stdout, printer.DefaultOptions())
//	p.PrintResult(`HKCU:\SOFTWARE\X`, res)
func New(w io.Writer, opts Options) *Printer {
	return &Printer{writer: w, opts: opts}
}

// PrintResult prints the outcome of a query on path. A direct hit is printed
// as a single value of the key holding it; a key listing prints every record
// under path itself.
func (p *Printer) PrintResult(path string, res invis.Result) error {
	rp, err := regpath.Resolve(path)
	if err != nil {
		return err
	}
	key := rp
	if res.Value != nil {
		key = regpath.Path{Hive: rp.Hive}
		if parent, ok := rp.Parent(); ok {
			key = parent
		}
	}

	switch p.opts.Format {
	case FormatJSON:
		return p.printResultJSON(key, res)
	case FormatReg:
		return p.printResultReg(key, res.All())
	default:
		return p.printResultText(key, res.All())
	}
}

// PrintKeyInfo prints a key summary produced by Engine.Stat.
func (p *Printer) PrintKeyInfo(info invis.KeyInfo) error {
	switch p.opts.Format {
	case FormatJSON:
		return p.printKeyInfoJSON(info)
	default:
		return p.printKeyInfoText(info)
	}
}

// keyPath renders the key holding the printed records in .reg and text
// headers. The hive root has no Leaf.
func keyPath(k regpath.Path) string {
	full := k.Full()
	if full == "" {
		return k.Hive.String()
	}
	return k.Hive.String() + `\` + full
}

// clip limits data to MaxValueBytes and reports whether it was cut.
func (p *Printer) clip(data []byte) ([]byte, bool) {
	limit := p.opts.MaxValueBytes
	if limit == 0 || limit >= len(data) {
		return data, false
	}
	return data[:limit], true
}
