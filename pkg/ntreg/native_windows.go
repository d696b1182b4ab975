//go:build windows

package ntreg

import (
	"errors"
	"fmt"
	"runtime"
	"sync"
	"syscall"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/joshuapare/invisreg/pkg/ntstatus"
	"github.com/joshuapare/invisreg/pkg/types"
)

var (
	modntdll = windows.NewLazySystemDLL("ntdll.dll")

	procNtCreateKey         = modntdll.NewProc("NtCreateKey")
	procNtOpenKey           = modntdll.NewProc("NtOpenKey")
	procNtSetValueKey       = modntdll.NewProc("NtSetValueKey")
	procNtDeleteKey         = modntdll.NewProc("NtDeleteKey")
	procNtDeleteValueKey    = modntdll.NewProc("NtDeleteValueKey")
	procNtQueryKey          = modntdll.NewProc("NtQueryKey")
	procNtQueryValueKey     = modntdll.NewProc("NtQueryValueKey")
	procNtEnumerateKey      = modntdll.NewProc("NtEnumerateKey")
	procNtEnumerateValueKey = modntdll.NewProc("NtEnumerateValueKey")
	procNtClose             = modntdll.NewProc("NtClose")

	allProcs = []*windows.LazyProc{
		procNtCreateKey, procNtOpenKey, procNtSetValueKey, procNtDeleteKey,
		procNtDeleteValueKey, procNtQueryKey, procNtQueryValueKey,
		procNtEnumerateKey, procNtEnumerateValueKey, procNtClose,
	}
)

// STATUS_UNSUCCESSFUL, used when a Win32 error has no better NTSTATUS.
const statusUnsuccessful ntstatus.Status = 0xC0000001

// Native calls the ntdll registry entry points.
type Native struct {
	once sync.Once
	err  error
}

// NewNative returns a provider backed by ntdll.dll. Entry points are
// resolved on first use.
func NewNative() *Native {
	return &Native{}
}

// Init resolves every entry point. It is idempotent and safe for concurrent
// callers; later calls return the first result.
func (n *Native) Init() error {
	n.once.Do(func() {
		if err := modntdll.Load(); err != nil {
			n.err = fmt.Errorf("ntreg: load ntdll: %w", err)
			return
		}
		for _, p := range allProcs {
			if err := p.Find(); err != nil {
				n.err = fmt.Errorf("ntreg: resolve %s: %w", p.Name, err)
				return
			}
		}
	})
	return n.err
}

func (n *Native) ready() bool {
	return n.Init() == nil
}

// OpenRoot reopens a predefined HKEY as a real key handle. Predefined
// handles are advapi32 pseudo handles and cannot be used as the root
// directory of a native call.
func (n *Native) OpenRoot(hive types.Hive, access AccessMask) (Handle, ntstatus.Status) {
	if !hive.Valid() {
		return 0, ntstatus.InvalidParameter
	}
	var h windows.Handle
	err := windows.RegOpenKeyEx(windows.Handle(hive), nil, 0, uint32(access), &h)
	if err != nil {
		return 0, win32ToStatus(err)
	}
	return Handle(h), ntstatus.Success
}

func (n *Native) CreateKey(root Handle, name UnicodeString, access AccessMask, options uint32) (Handle, Disposition, ntstatus.Status) {
	if !n.ready() {
		return 0, 0, ntstatus.ProcedureNotFound
	}
	us := ntString(name)
	oa := objectAttributes(root, &us)
	var h windows.Handle
	var disp uint32
	r0, _, _ := syscall.SyscallN(procNtCreateKey.Addr(),
		uintptr(unsafe.Pointer(&h)),
		uintptr(access),
		uintptr(unsafe.Pointer(&oa)),
		0, // TitleIndex
		0, // Class
		uintptr(options),
		uintptr(unsafe.Pointer(&disp)))
	runtime.KeepAlive(name.Buffer)
	return Handle(h), Disposition(disp), ntstatus.Status(uint32(r0))
}

func (n *Native) OpenKey(root Handle, name UnicodeString, access AccessMask) (Handle, ntstatus.Status) {
	if !n.ready() {
		return 0, ntstatus.ProcedureNotFound
	}
	us := ntString(name)
	oa := objectAttributes(root, &us)
	var h windows.Handle
	r0, _, _ := syscall.SyscallN(procNtOpenKey.Addr(),
		uintptr(unsafe.Pointer(&h)),
		uintptr(access),
		uintptr(unsafe.Pointer(&oa)))
	runtime.KeepAlive(name.Buffer)
	return Handle(h), ntstatus.Status(uint32(r0))
}

func (n *Native) SetValueKey(key Handle, name UnicodeString, valueType uint32, data []byte) ntstatus.Status {
	if !n.ready() {
		return ntstatus.ProcedureNotFound
	}
	us := ntString(name)
	r0, _, _ := syscall.SyscallN(procNtSetValueKey.Addr(),
		uintptr(key),
		uintptr(unsafe.Pointer(&us)),
		0, // TitleIndex
		uintptr(valueType),
		uintptr(bytePointer(data)),
		uintptr(len(data)))
	runtime.KeepAlive(name.Buffer)
	runtime.KeepAlive(data)
	return ntstatus.Status(uint32(r0))
}

func (n *Native) DeleteKey(key Handle) ntstatus.Status {
	if !n.ready() {
		return ntstatus.ProcedureNotFound
	}
	r0, _, _ := syscall.SyscallN(procNtDeleteKey.Addr(), uintptr(key))
	return ntstatus.Status(uint32(r0))
}

func (n *Native) DeleteValueKey(key Handle, name UnicodeString) ntstatus.Status {
	if !n.ready() {
		return ntstatus.ProcedureNotFound
	}
	us := ntString(name)
	r0, _, _ := syscall.SyscallN(procNtDeleteValueKey.Addr(),
		uintptr(key),
		uintptr(unsafe.Pointer(&us)))
	runtime.KeepAlive(name.Buffer)
	return ntstatus.Status(uint32(r0))
}

func (n *Native) QueryKey(key Handle, class KeyInformationClass, buf []byte) (uint32, ntstatus.Status) {
	if !n.ready() {
		return 0, ntstatus.ProcedureNotFound
	}
	var resultLen uint32
	r0, _, _ := syscall.SyscallN(procNtQueryKey.Addr(),
		uintptr(key),
		uintptr(class),
		uintptr(bytePointer(buf)),
		uintptr(len(buf)),
		uintptr(unsafe.Pointer(&resultLen)))
	runtime.KeepAlive(buf)
	return resultLen, ntstatus.Status(uint32(r0))
}

func (n *Native) QueryValueKey(key Handle, name UnicodeString, class KeyValueInformationClass, buf []byte) (uint32, ntstatus.Status) {
	if !n.ready() {
		return 0, ntstatus.ProcedureNotFound
	}
	us := ntString(name)
	var resultLen uint32
	r0, _, _ := syscall.SyscallN(procNtQueryValueKey.Addr(),
		uintptr(key),
		uintptr(unsafe.Pointer(&us)),
		uintptr(class),
		uintptr(bytePointer(buf)),
		uintptr(len(buf)),
		uintptr(unsafe.Pointer(&resultLen)))
	runtime.KeepAlive(name.Buffer)
	runtime.KeepAlive(buf)
	return resultLen, ntstatus.Status(uint32(r0))
}

func (n *Native) EnumerateKey(key Handle, index uint32, class KeyInformationClass, buf []byte) (uint32, ntstatus.Status) {
	if !n.ready() {
		return 0, ntstatus.ProcedureNotFound
	}
	var resultLen uint32
	r0, _, _ := syscall.SyscallN(procNtEnumerateKey.Addr(),
		uintptr(key),
		uintptr(index),
		uintptr(class),
		uintptr(bytePointer(buf)),
		uintptr(len(buf)),
		uintptr(unsafe.Pointer(&resultLen)))
	runtime.KeepAlive(buf)
	return resultLen, ntstatus.Status(uint32(r0))
}

func (n *Native) EnumerateValueKey(key Handle, index uint32, class KeyValueInformationClass, buf []byte) (uint32, ntstatus.Status) {
	if !n.ready() {
		return 0, ntstatus.ProcedureNotFound
	}
	var resultLen uint32
	r0, _, _ := syscall.SyscallN(procNtEnumerateValueKey.Addr(),
		uintptr(key),
		uintptr(index),
		uintptr(class),
		uintptr(bytePointer(buf)),
		uintptr(len(buf)),
		uintptr(unsafe.Pointer(&resultLen)))
	runtime.KeepAlive(buf)
	return resultLen, ntstatus.Status(uint32(r0))
}

func (n *Native) Close(h Handle) ntstatus.Status {
	if !n.ready() {
		return ntstatus.ProcedureNotFound
	}
	r0, _, _ := syscall.SyscallN(procNtClose.Addr(), uintptr(h))
	return ntstatus.Status(uint32(r0))
}

// ntString builds the UNICODE_STRING view of s. Length is passed through
// verbatim; it alone decides how many bytes of the name are significant.
func ntString(s UnicodeString) windows.NTUnicodeString {
	us := windows.NTUnicodeString{Length: s.Length, MaximumLength: s.Length}
	if len(s.Buffer) > 0 {
		us.Buffer = &s.Buffer[0]
		if size := len(s.Buffer) * 2; size <= 0xFFFF && uint16(size) > us.MaximumLength {
			us.MaximumLength = uint16(size)
		}
	}
	return us
}

func objectAttributes(root Handle, name *windows.NTUnicodeString) windows.OBJECT_ATTRIBUTES {
	return windows.OBJECT_ATTRIBUTES{
		Length:        uint32(unsafe.Sizeof(windows.OBJECT_ATTRIBUTES{})),
		RootDirectory: windows.Handle(root),
		ObjectName:    name,
		Attributes:    windows.OBJ_CASE_INSENSITIVE,
	}
}

func bytePointer(b []byte) unsafe.Pointer {
	if len(b) == 0 {
		return nil
	}
	return unsafe.Pointer(&b[0])
}

// win32ToStatus maps the handful of Win32 errors RegOpenKeyEx reports.
func win32ToStatus(err error) ntstatus.Status {
	var errno syscall.Errno
	if !errors.As(err, &errno) {
		return statusUnsuccessful
	}
	switch errno {
	case windows.ERROR_FILE_NOT_FOUND, windows.ERROR_PATH_NOT_FOUND:
		return ntstatus.ObjectNameNotFound
	case windows.ERROR_ACCESS_DENIED:
		return ntstatus.AccessDenied
	case windows.ERROR_INVALID_HANDLE:
		return ntstatus.InvalidHandle
	case windows.ERROR_NOT_ENOUGH_MEMORY, windows.ERROR_OUTOFMEMORY:
		return ntstatus.NoMemory
	case windows.ERROR_INVALID_PARAMETER:
		return ntstatus.InvalidParameter
	default:
		return statusUnsuccessful
	}
}
