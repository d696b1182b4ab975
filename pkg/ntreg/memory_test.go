package ntreg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/invisreg/internal/format"
	"github.com/joshuapare/invisreg/internal/trickname"
	"github.com/joshuapare/invisreg/pkg/ntstatus"
	"github.com/joshuapare/invisreg/pkg/types"
)

func us(raw string, hidden bool) UnicodeString {
	n := trickname.MustEncode(raw, hidden)
	return UnicodeString{Length: n.Length, Buffer: n.Encoded}
}

func openSoftware(t *testing.T, m *Memory, access AccessMask) Handle {
	t.Helper()
	m.MkdirAll(types.HiveCurrentUser, `SOFTWARE\X`)
	root, st := m.OpenRoot(types.HiveCurrentUser, KeyRead)
	require.Equal(t, ntstatus.Success, st)
	defer m.Close(root)
	h, st := m.OpenKey(root, us(`SOFTWARE\X`, false), access)
	require.Equal(t, ntstatus.Success, st)
	return h
}

func TestMemory_HiddenValueInvisibleToZeroTerminatedView(t *testing.T) {
	m := NewMemory()
	h := openSoftware(t, m, KeyAllAccess)
	defer m.Close(h)

	require.Equal(t, ntstatus.Success, m.SetValueKey(h, us("Y", true), uint32(types.REG_DWORD), []byte{0x39, 0x05, 0, 0}))
	require.Equal(t, ntstatus.Success, m.SetValueKey(h, us("Y", false), uint32(types.REG_SZ), []byte{'a', 0, 0, 0}))

	names, ok := m.VisibleValueNames(types.HiveCurrentUser, `SOFTWARE\X`)
	require.True(t, ok)
	assert.Equal(t, []string{"", "Y"}, names)

	typ, data, ok := m.LookupValueZ(types.HiveCurrentUser, `SOFTWARE\X`, "Y")
	require.True(t, ok)
	assert.Equal(t, uint32(types.REG_SZ), typ, "zero-terminated lookup must find only the visible twin")
	assert.Equal(t, []byte{'a', 0, 0, 0}, data)
}

func TestMemory_QueryValueNegotiation(t *testing.T) {
	m := NewMemory()
	h := openSoftware(t, m, KeyAllAccess)
	defer m.Close(h)

	name := us("Y", true)
	require.Equal(t, ntstatus.Success, m.SetValueKey(h, name, uint32(types.REG_DWORD), []byte{1, 2, 3, 4}))

	need, st := m.QueryValueKey(h, name, KeyValueFullInformation, nil)
	require.Equal(t, ntstatus.BufferTooSmall, st)
	require.Equal(t, uint32(format.KeyValueFullSize(2, 4)), need)

	n, st := m.QueryValueKey(h, name, KeyValueFullInformation, make([]byte, format.KVFullHeaderSize))
	require.Equal(t, ntstatus.BufferOverflow, st)
	require.Equal(t, need, n)

	buf := make([]byte, need)
	n, st = m.QueryValueKey(h, name, KeyValueFullInformation, buf)
	require.Equal(t, ntstatus.Success, st)
	require.Equal(t, need, n)

	kv, err := format.DecodeKeyValueFull(buf)
	require.NoError(t, err)
	assert.Equal(t, []uint16{0, 'Y'}, kv.Name)
	assert.Equal(t, []byte{1, 2, 3, 4}, kv.Data)

	_, st = m.QueryValueKey(h, us("Y", false), KeyValueFullInformation, nil)
	assert.Equal(t, ntstatus.ObjectNameNotFound, st)
}

func TestMemory_NamesCompareCaseInsensitively(t *testing.T) {
	m := NewMemory()
	h := openSoftware(t, m, KeyAllAccess)
	defer m.Close(h)

	require.Equal(t, ntstatus.Success, m.SetValueKey(h, us("Name", false), uint32(types.REG_BINARY), []byte{1}))
	require.Equal(t, ntstatus.Success, m.SetValueKey(h, us("NAME", false), uint32(types.REG_BINARY), []byte{2}))

	names, _ := m.VisibleValueNames(types.HiveCurrentUser, `SOFTWARE\X`)
	assert.Equal(t, []string{"Name"}, names)
	_, data, ok := m.LookupValueZ(types.HiveCurrentUser, `SOFTWARE\X`, "name")
	require.True(t, ok)
	assert.Equal(t, []byte{2}, data)
}

func TestMemory_CreateKeyDisposition(t *testing.T) {
	m := NewMemory()
	parent := openSoftware(t, m, KeyAllAccess)
	defer m.Close(parent)

	h, disp, st := m.CreateKey(parent, us("Hidden", true), KeyAllAccess, OptionNonVolatile)
	require.Equal(t, ntstatus.Success, st)
	assert.Equal(t, CreatedNewKey, disp)
	require.Equal(t, ntstatus.Success, m.Close(h))

	h, disp, st = m.CreateKey(parent, us("Hidden", true), KeyAllAccess, OptionNonVolatile)
	require.Equal(t, ntstatus.Success, st)
	assert.Equal(t, OpenedExistingKey, disp)
	require.Equal(t, ntstatus.Success, m.Close(h))

	names, _ := m.VisibleSubkeyNames(types.HiveCurrentUser, `SOFTWARE\X`)
	assert.Equal(t, []string{""}, names)

	_, _, st = m.CreateKey(parent, us(`Missing\Leaf`, false), KeyAllAccess, OptionNonVolatile)
	assert.Equal(t, ntstatus.ObjectNameNotFound, st)
}

func TestMemory_OpenKeyStatuses(t *testing.T) {
	m := NewMemory()
	m.MkdirAll(types.HiveLocalMachine, `A\B`)
	root, st := m.OpenRoot(types.HiveLocalMachine, KeyRead)
	require.Equal(t, ntstatus.Success, st)
	defer m.Close(root)

	tests := []struct {
		name string
		path string
		want ntstatus.Status
	}{
		{"exists", `A\B`, ntstatus.Success},
		{"root reopen", ``, ntstatus.Success},
		{"missing leaf", `A\C`, ntstatus.ObjectNameNotFound},
		{"missing intermediate", `Z\B`, ntstatus.ObjectPathNotFound},
		{"leading separator", `\A`, ntstatus.ObjectPathSyntaxBad},
		{"empty component", `A\\B`, ntstatus.ObjectNameInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, st := m.OpenKey(root, us(tt.path, false), KeyRead)
			assert.Equal(t, tt.want, st)
			if st == ntstatus.Success {
				require.Equal(t, ntstatus.Success, m.Close(h))
			}
		})
	}
}

func TestMemory_DeleteKey(t *testing.T) {
	m := NewMemory()
	m.MkdirAll(types.HiveCurrentUser, `P\C`)
	root, _ := m.OpenRoot(types.HiveCurrentUser, KeyAllAccess)
	defer m.Close(root)

	assert.Equal(t, ntstatus.CannotDelete, m.DeleteKey(root), "hive roots cannot be deleted")

	p, st := m.OpenKey(root, us("P", false), KeyAllAccess)
	require.Equal(t, ntstatus.Success, st)
	defer m.Close(p)
	assert.Equal(t, ntstatus.CannotDelete, m.DeleteKey(p), "keys with subkeys cannot be deleted")

	c, st := m.OpenKey(p, us("C", false), KeyAllAccess)
	require.Equal(t, ntstatus.Success, st)
	require.Equal(t, ntstatus.Success, m.DeleteKey(c))

	_, st = m.QueryKey(c, KeyFullInformation, make([]byte, format.KeyFullHeaderSize))
	assert.Equal(t, ntstatus.KeyDeleted, st)
	require.Equal(t, ntstatus.Success, m.Close(c))

	require.Equal(t, ntstatus.Success, m.DeleteKey(p))
}

func TestMemory_Enumeration(t *testing.T) {
	m := NewMemory()
	h := openSoftware(t, m, KeyAllAccess)
	defer m.Close(h)

	require.Equal(t, ntstatus.Success, m.SetValueKey(h, us("a", false), uint32(types.REG_BINARY), []byte{1}))
	require.Equal(t, ntstatus.Success, m.SetValueKey(h, us("b", true), uint32(types.REG_BINARY), nil))

	var names [][]uint16
	for i := uint32(0); ; i++ {
		need, st := m.EnumerateValueKey(h, i, KeyValueFullInformation, nil)
		if st == ntstatus.NoMoreEntries {
			break
		}
		require.Equal(t, ntstatus.BufferTooSmall, st)
		buf := make([]byte, need)
		_, st = m.EnumerateValueKey(h, i, KeyValueFullInformation, buf)
		require.Equal(t, ntstatus.Success, st)
		kv, err := format.DecodeKeyValueFull(buf)
		require.NoError(t, err)
		names = append(names, kv.Name)
	}
	assert.Equal(t, [][]uint16{{'a'}, {0, 'b'}}, names)

	buf := make([]byte, format.KeyFullHeaderSize)
	_, st := m.QueryKey(h, KeyFullInformation, buf)
	require.Equal(t, ntstatus.Success, st)
	kf, err := format.DecodeKeyFull(buf)
	require.NoError(t, err)
	assert.Equal(t, uint32(2), kf.Values)
	assert.Equal(t, uint32(4), kf.MaxValueNameLen)
	assert.Equal(t, uint32(1), kf.MaxValueDataLen)
}

func TestMemory_AccessAndHandles(t *testing.T) {
	m := NewMemory()
	h := openSoftware(t, m, KeyQueryValue)

	assert.Equal(t, ntstatus.AccessDenied, m.SetValueKey(h, us("v", false), uint32(types.REG_SZ), []byte{0, 0}))
	assert.Equal(t, ntstatus.AccessDenied, m.DeleteKey(h))

	assert.Equal(t, 1, m.OpenHandles())
	require.Equal(t, ntstatus.Success, m.Close(h))
	assert.Equal(t, ntstatus.InvalidHandle, m.Close(h))
	assert.Equal(t, 0, m.OpenHandles())
}

func TestNative_ImplementsProvider(t *testing.T) {
	var p Provider = NewNative()
	assert.NotNil(t, p)
}
