package printer

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/invisreg/internal/regtext"
	"github.com/joshuapare/invisreg/pkg/invis"
	"github.com/joshuapare/invisreg/pkg/types"
)

func listing() invis.Result {
	return invis.Result{Records: []invis.Record{
		{Type: types.REG_DWORD, Name: "Y", Data: []byte{0x39, 0x05, 0, 0}, Invisible: true},
		{Type: types.REG_SZ, Name: "Path", Data: []byte{'C', 0, ':', 0, '\\', 0, 0, 0}},
		{Type: types.REG_QWORD, Name: "Q", Data: []byte{1, 0, 0, 0, 0, 0, 0, 0}},
		{Type: types.REG_BINARY, Name: "", Data: []byte{0xde, 0xad}},
	}}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatText, false},
		{"text", FormatText, false},
		{"JSON", FormatJSON, false},
		{"reg", FormatReg, false},
		{"xml", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				require.ErrorIs(t, err, types.ErrInvalidArgument)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPrintResult_Text(t *testing.T) {
	var buf bytes.Buffer
	p := New(&buf, DefaultOptions())
	require.NoError(t, p.PrintResult(`HKCU:\SOFTWARE\X`, listing()))

	out := buf.String()
	t.Logf("Text output:\n%s", out)
	require.Contains(t, out, `[HKEY_CURRENT_USER\SOFTWARE\X]`)
	require.Contains(t, out, `"Y" [REG_DWORD] = 0x00000539 (1337) (hidden)`)
	require.Contains(t, out, `"Path" [REG_SZ] = "C:\\"`)
	require.Contains(t, out, `"(Default)" [REG_BINARY] = DEAD`)
}

func TestPrintResult_TextDirectHit(t *testing.T) {
	var buf bytes.Buffer
	p := New(&buf, DefaultOptions())
	rec := invis.Record{Type: types.REG_DWORD, Name: "Y", Data: []byte{1, 0, 0, 0}, Invisible: true}
	require.NoError(t, p.PrintResult(`HKCU:\SOFTWARE\X\Y`, invis.Result{Value: &rec}))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, `[HKEY_CURRENT_USER\SOFTWARE\X]`, lines[0])
}

func TestPrintResult_TextTruncatesBinary(t *testing.T) {
	var buf bytes.Buffer
	opts := DefaultOptions()
	opts.MaxValueBytes = 2
	p := New(&buf, opts)
	res := invis.Result{Records: []invis.Record{{Type: types.REG_BINARY, Name: "b", Data: []byte{1, 2, 3, 4}}}}
	require.NoError(t, p.PrintResult(`HKLM\A`, res))
	assert.Contains(t, buf.String(), "0102 (truncated, 4 total bytes)")
}

func TestPrintResult_JSON(t *testing.T) {
	var buf bytes.Buffer
	opts := DefaultOptions()
	opts.Format = FormatJSON
	p := New(&buf, opts)
	require.NoError(t, p.PrintResult(`HKCU:\SOFTWARE\X`, listing()))

	var got struct {
		Key     string `json:"key"`
		Records []struct {
			Name   string `json:"name"`
			Type   string `json:"type"`
			Hidden bool   `json:"hidden"`
			Data   any    `json:"data"`
		} `json:"records"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, `HKEY_CURRENT_USER\SOFTWARE\X`, got.Key)
	require.Len(t, got.Records, 4)
	assert.True(t, got.Records[0].Hidden)
	assert.Equal(t, "REG_DWORD", got.Records[0].Type)
	assert.InDelta(t, 1337, got.Records[0].Data, 0)
	assert.Equal(t, `C:\`, got.Records[1].Data)
	assert.Equal(t, "dead", got.Records[3].Data)
}

func TestPrintResult_Reg(t *testing.T) {
	var buf bytes.Buffer
	opts := DefaultOptions()
	opts.Format = FormatReg
	p := New(&buf, opts)
	require.NoError(t, p.PrintResult(`HKCU:\SOFTWARE\X`, listing()))

	want := strings.Join([]string{
		"Windows Registry Editor Version 5.00",
		"",
		`[HKEY_CURRENT_USER\SOFTWARE\X]`,
		regtext.HiddenComment,
		`"Y"=dword:00000539`,
		`"Path"="C:\\"`,
		`"Q"=hex(b):01,00,00,00,00,00,00,00`,
		`@=hex:de,ad`,
		"",
	}, "\n")
	assert.Equal(t, want, buf.String())
}

func TestPrintResult_RootValue(t *testing.T) {
	var buf bytes.Buffer
	opts := DefaultOptions()
	opts.Format = FormatReg
	p := New(&buf, opts)
	rec := invis.Record{Type: types.REG_BINARY, Name: "Top", Data: []byte{1}}
	require.NoError(t, p.PrintResult(`HKLM:\Top`, invis.Result{Value: &rec}))
	assert.Contains(t, buf.String(), "[HKEY_LOCAL_MACHINE]\n")
}

func TestPrintKeyInfo(t *testing.T) {
	info := invis.KeyInfo{
		Path:      `HKCU:\SOFTWARE\X\K`,
		LastWrite: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
		Values:    2,
		Subkeys:   []invis.KeyName{{Name: "H", Invisible: true}, {Name: "V"}},
	}

	var text bytes.Buffer
	require.NoError(t, New(&text, DefaultOptions()).PrintKeyInfo(info))
	assert.Contains(t, text.String(), "Subkeys: 2, Values: 2")
	assert.Contains(t, text.String(), "H (hidden)")
	assert.Contains(t, text.String(), "Last Write: 2024-01-02 03:04:05")

	var js bytes.Buffer
	opts := DefaultOptions()
	opts.Format = FormatJSON
	require.NoError(t, New(&js, opts).PrintKeyInfo(info))
	var got map[string]any
	require.NoError(t, json.Unmarshal(js.Bytes(), &got))
	assert.Equal(t, "2024-01-02T03:04:05Z", got["last_write"])
	assert.Len(t, got["subkeys"], 2)
}
