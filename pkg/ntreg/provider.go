package ntreg

import (
	"github.com/joshuapare/invisreg/pkg/ntstatus"
	"github.com/joshuapare/invisreg/pkg/types"
)

// Handle is an open registry key.
type Handle uintptr

// UnicodeString is a counted UTF-16 name. Only the first Length bytes of
// Buffer are significant; zero units inside that range are part of the name.
type UnicodeString struct {
	Length uint16
	Buffer []uint16
}

// Units returns the significant code units.
func (s UnicodeString) Units() []uint16 {
	n := int(s.Length / 2)
	if n > len(s.Buffer) {
		n = len(s.Buffer)
	}
	return s.Buffer[:n]
}

// AccessMask holds the KEY_* access rights requested on open.
type AccessMask uint32

const (
	KeyQueryValue       AccessMask = 0x0001
	KeySetValue         AccessMask = 0x0002
	KeyCreateSubKey     AccessMask = 0x0004
	KeyEnumerateSubKeys AccessMask = 0x0008
	KeyDelete           AccessMask = 0x00010000
	KeyRead             AccessMask = 0x00020019
	KeyAllAccess        AccessMask = 0x000F003F
)

// Disposition reports what CreateKey did.
type Disposition uint32

const (
	CreatedNewKey     Disposition = 1
	OpenedExistingKey Disposition = 2
)

func (d Disposition) String() string {
	switch d {
	case CreatedNewKey:
		return "created"
	case OpenedExistingKey:
		return "opened"
	default:
		return "unknown"
	}
}

// OptionNonVolatile is REG_OPTION_NON_VOLATILE: the key survives reboot.
const OptionNonVolatile uint32 = 0

// KeyInformationClass selects the record shape for QueryKey / EnumerateKey.
type KeyInformationClass uint32

const (
	KeyBasicInformation KeyInformationClass = 0
	KeyFullInformation  KeyInformationClass = 2
)

// KeyValueInformationClass selects the record shape for QueryValueKey /
// EnumerateValueKey.
type KeyValueInformationClass uint32

const (
	KeyValueFullInformation KeyValueInformationClass = 1
)

// Provider exposes the native registry entry points used by the engine.
// Sizes are always bytes. Query methods return the number of bytes written,
// or the number required when the status asks for a larger buffer.
type Provider interface {
	// OpenRoot opens a real handle to one of the predefined hives.
	OpenRoot(hive types.Hive, access AccessMask) (Handle, ntstatus.Status)

	// CreateKey opens the key name relative to root, creating the last
	// path component if missing (NtCreateKey).
	CreateKey(root Handle, name UnicodeString, access AccessMask, options uint32) (Handle, Disposition, ntstatus.Status)

	// OpenKey opens an existing key relative to root (NtOpenKey). An empty
	// name opens a second handle to root itself.
	OpenKey(root Handle, name UnicodeString, access AccessMask) (Handle, ntstatus.Status)

	// SetValueKey creates or replaces a value (NtSetValueKey).
	SetValueKey(key Handle, name UnicodeString, valueType uint32, data []byte) ntstatus.Status

	// DeleteKey deletes the key behind the handle, which must have no
	// subkeys (NtDeleteKey).
	DeleteKey(key Handle) ntstatus.Status

	// DeleteValueKey removes one value (NtDeleteValueKey).
	DeleteValueKey(key Handle, name UnicodeString) ntstatus.Status

	// QueryKey returns key metadata (NtQueryKey).
	QueryKey(key Handle, class KeyInformationClass, buf []byte) (uint32, ntstatus.Status)

	// QueryValueKey returns one named value (NtQueryValueKey).
	QueryValueKey(key Handle, name UnicodeString, class KeyValueInformationClass, buf []byte) (uint32, ntstatus.Status)

	// EnumerateKey returns the index-th subkey (NtEnumerateKey).
	EnumerateKey(key Handle, index uint32, class KeyInformationClass, buf []byte) (uint32, ntstatus.Status)

	// EnumerateValueKey returns the index-th value (NtEnumerateValueKey).
	EnumerateValueKey(key Handle, index uint32, class KeyValueInformationClass, buf []byte) (uint32, ntstatus.Status)

	// Close releases a handle (NtClose).
	Close(h Handle) ntstatus.Status
}

var (
	_ Provider = (*Native)(nil)
	_ Provider = (*Memory)(nil)
)
