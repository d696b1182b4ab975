package invis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/invisreg/pkg/types"
)

func TestParseValue(t *testing.T) {
	tests := []struct {
		name    string
		typ     types.RegType
		in      string
		want    []byte
		wantErr *types.Error
	}{
		{"sz", types.REG_SZ, "ab", []byte{'a', 0, 'b', 0, 0, 0}, nil},
		{"sz empty", types.REG_SZ, "", []byte{0, 0}, nil},
		{"dword decimal", types.REG_DWORD, "1337", []byte{0x39, 0x05, 0, 0}, nil},
		{"dword hex", types.REG_DWORD, "0xdeadbeef", []byte{0xef, 0xbe, 0xad, 0xde}, nil},
		{"dword overflow", types.REG_DWORD, "4294967296", nil, types.ErrInvalidArgument},
		{"dword junk", types.REG_DWORD, "abc", nil, types.ErrInvalidArgument},
		{"qword", types.REG_QWORD, "1", []byte{1, 0, 0, 0, 0, 0, 0, 0}, nil},
		{"binary", types.REG_BINARY, "01 02 ff", []byte{1, 2, 0xff}, nil},
		{"binary odd", types.REG_BINARY, "012", nil, types.ErrInvalidArgument},
		{"multi sz", types.REG_MULTI_SZ, "a", nil, types.ErrInvalidType},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseValue(tt.typ, tt.in)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseHex(t *testing.T) {
	for _, in := range []string{"deadbeef", "0xdeadbeef", "de:ad:be:ef", "de,ad,be,ef", "de-ad-be-ef", " DE AD BE EF "} {
		got, err := ParseHex(in)
		require.NoError(t, err, in)
		assert.Equal(t, []byte{0xde, 0xad, 0xbe, 0xef}, got, in)
	}

	_, err := ParseHex("zz")
	assert.ErrorIs(t, err, types.ErrInvalidArgument)
}

func TestDecodeString(t *testing.T) {
	enc, err := EncodeString("grüße")
	require.NoError(t, err)
	assert.Equal(t, "grüße", DecodeString(enc))

	assert.Equal(t, "ab", DecodeString([]byte{'a', 0, 'b', 0, 0, 0, 'c', 0}))
	assert.Equal(t, "a", DecodeString([]byte{'a', 0, 'b'}))
	assert.Equal(t, "", DecodeString(nil))
}

func TestEncodeStringRejectsInvalidUTF8(t *testing.T) {
	_, err := EncodeString("\xff")
	assert.ErrorIs(t, err, types.ErrInvalidType)
}
