//go:build !windows

package ntreg

import (
	"errors"

	"github.com/joshuapare/invisreg/pkg/ntstatus"
	"github.com/joshuapare/invisreg/pkg/types"
)

// ErrUnsupportedPlatform is returned by Native.Init off Windows.
var ErrUnsupportedPlatform = errors.New("ntreg: the native registry is only available on Windows")

// Native reports STATUS_NOT_SUPPORTED for every call off Windows.
type Native struct{}

// NewNative returns the non-Windows stand-in.
func NewNative() *Native {
	return &Native{}
}

// Init always fails off Windows.
func (*Native) Init() error { return ErrUnsupportedPlatform }

func (*Native) OpenRoot(types.Hive, AccessMask) (Handle, ntstatus.Status) {
	return 0, ntstatus.NotSupported
}

func (*Native) CreateKey(Handle, UnicodeString, AccessMask, uint32) (Handle, Disposition, ntstatus.Status) {
	return 0, 0, ntstatus.NotSupported
}

func (*Native) OpenKey(Handle, UnicodeString, AccessMask) (Handle, ntstatus.Status) {
	return 0, ntstatus.NotSupported
}

func (*Native) SetValueKey(Handle, UnicodeString, uint32, []byte) ntstatus.Status {
	return ntstatus.NotSupported
}

func (*Native) DeleteKey(Handle) ntstatus.Status { return ntstatus.NotSupported }

func (*Native) DeleteValueKey(Handle, UnicodeString) ntstatus.Status {
	return ntstatus.NotSupported
}

func (*Native) QueryKey(Handle, KeyInformationClass, []byte) (uint32, ntstatus.Status) {
	return 0, ntstatus.NotSupported
}

func (*Native) QueryValueKey(Handle, UnicodeString, KeyValueInformationClass, []byte) (uint32, ntstatus.Status) {
	return 0, ntstatus.NotSupported
}

func (*Native) EnumerateKey(Handle, uint32, KeyInformationClass, []byte) (uint32, ntstatus.Status) {
	return 0, ntstatus.NotSupported
}

func (*Native) EnumerateValueKey(Handle, uint32, KeyValueInformationClass, []byte) (uint32, ntstatus.Status) {
	return 0, ntstatus.NotSupported
}

func (*Native) Close(Handle) ntstatus.Status { return ntstatus.NotSupported }
