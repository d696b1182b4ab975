package regtext

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/unicode"

	"github.com/joshuapare/invisreg/pkg/types"
)

const exported = `Windows Registry Editor Version 5.00

[HKEY_CURRENT_USER\SOFTWARE\X]
; hidden: stored name is prefixed with a NUL code unit
"Y"=dword:00000539
"Plain"="C:\\Temp \"quoted\""
; hidden: stored name is prefixed with a NUL code unit
"Q"=hex(b):01,00,00,00,00,00,00,00
"Blob"=hex:de,ad,\
  be,ef
"Gone"=-

[-HKEY_LOCAL_MACHINE\SOFTWARE\Old]
`

func TestParse(t *testing.T) {
	recs, err := Parse(strings.NewReader(exported))
	require.NoError(t, err)
	require.Len(t, recs, 7)

	assert.Equal(t, Record{Line: 3, Action: ActionSet, Key: true, Path: `HKCU:\SOFTWARE\X`}, recs[0])
	assert.Equal(t, Record{
		Line: 5, Action: ActionSet, Hidden: true, Path: `HKCU:\SOFTWARE\X\Y`,
		Type: types.REG_DWORD, Data: []byte{0x39, 0x05, 0, 0},
	}, recs[1])
	assert.Equal(t, `C:\Temp "quoted"`, recs[2].Text)
	assert.False(t, recs[2].Hidden, "the marker applies to one line only")
	assert.Equal(t, types.REG_QWORD, recs[3].Type)
	assert.True(t, recs[3].Hidden)
	assert.Equal(t, []byte{0xde, 0xad, 0xbe, 0xef}, recs[4].Data)
	assert.Equal(t, 9, recs[4].Line)
	assert.Equal(t, ActionDelete, recs[5].Action)
	assert.Equal(t, `HKCU:\SOFTWARE\X\Gone`, recs[5].Path)
	assert.Equal(t, Record{Line: 13, Action: ActionDelete, Key: true, Path: `HKLM:\SOFTWARE\Old`}, recs[6])
}

func TestParse_UTF16WithBOM(t *testing.T) {
	enc := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder()
	data, err := enc.Bytes([]byte("Windows Registry Editor Version 5.00\r\n\r\n[HKEY_USERS\\S]\r\n\"Café\"=\"ü\"\r\n"))
	require.NoError(t, err)

	recs, err := Parse(strings.NewReader(string(data)))
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, `HKU:\S\Café`, recs[1].Path)
	assert.Equal(t, "ü", recs[1].Text)
}

func TestParse_RootKey(t *testing.T) {
	recs, err := Parse(strings.NewReader("[HKEY_CURRENT_USER]\n\"V\"=dword:1\n"))
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, `HKCU:\V`, recs[0].Path)
	assert.Equal(t, []byte{1, 0, 0, 0}, recs[0].Data)
}

func TestParse_HiddenKeyHeader(t *testing.T) {
	recs, err := Parse(strings.NewReader("; hidden: x\n[HKEY_CURRENT_USER\\SOFTWARE\\K]\n"))
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.True(t, recs[0].Hidden)
	assert.True(t, recs[0].Key)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  *types.Error
		line  string
	}{
		{"value before key", "\"V\"=dword:1\n", types.ErrInvalidKey, "line 1"},
		{"unknown hive", "[HKEY_NOWHERE\\A]\n", types.ErrInvalidHive, "line 1"},
		{"delete root", "[-HKEY_USERS]\n", types.ErrInvalidKey, "line 1"},
		{"default value", "[HKCU\\A]\n@=\"x\"\n", types.ErrInvalidKey, "line 2"},
		{"value of hidden key", "; hidden:\n[HKCU\\A]\n\"V\"=dword:1\n", types.ErrInvalidKey, "line 3"},
		{"name with separator", "[HKCU\\A]\n\"a\\\\b\"=dword:1\n", types.ErrInvalidKey, "line 2"},
		{"unwritable type", "[HKCU\\A]\n\"V\"=hex(7):00,00\n", types.ErrInvalidType, "line 2"},
		{"short qword", "[HKCU\\A]\n\"V\"=hex(b):01\n", types.ErrInvalidArgument, "line 2"},
		{"bad dword", "[HKCU\\A]\n\"V\"=dword:xyz\n", types.ErrInvalidArgument, "line 2"},
		{"bad hex", "[HKCU\\A]\n\"V\"=hex:zz\n", types.ErrInvalidArgument, "line 2"},
		{"unterminated string", "[HKCU\\A]\n\"V\"=\"abc\n", types.ErrInvalidArgument, "line 2"},
		{"garbage", "[HKCU\\A]\nnonsense\n", types.ErrInvalidArgument, "line 2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
			assert.Contains(t, err.Error(), tt.line)
		})
	}
}

func TestParseHexBytes(t *testing.T) {
	tests := []struct {
		in   string
		want []byte
	}{
		{"hex:01,02,03", []byte{1, 2, 3}},
		{"hex:1,a,ff", []byte{1, 0x0a, 0xff}},
		{"hex(b):00, 01 ,\\ 02", []byte{0, 1, 2}},
		{"hex:", []byte{}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseHexBytes(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
	_, err := parseHexBytes("01,02")
	assert.Error(t, err)
}
