package types

import (
	"fmt"
	"strings"
)

// RegType enumerates Windows registry value types.
// (The numbers align with Windows definitions.)
type RegType uint32

const (
	REG_NONE      RegType = 0
	REG_SZ        RegType = 1
	REG_EXPAND_SZ RegType = 2
	REG_BINARY    RegType = 3
	REG_DWORD     RegType = 4
	REG_DWORD_BE  RegType = 5
	REG_LINK      RegType = 6
	REG_MULTI_SZ  RegType = 7
	REG_QWORD     RegType = 11
)

// String implements the Stringer interface for RegType
func (t RegType) String() string {
	switch t {
	case REG_NONE:
		return "REG_NONE"
	case REG_SZ:
		return "REG_SZ"
	case REG_EXPAND_SZ:
		return "REG_EXPAND_SZ"
	case REG_BINARY:
		return "REG_BINARY"
	case REG_DWORD:
		return "REG_DWORD"
	case REG_DWORD_BE:
		return "REG_DWORD_BE"
	case REG_LINK:
		return "REG_LINK"
	case REG_MULTI_SZ:
		return "REG_MULTI_SZ"
	case REG_QWORD:
		return "REG_QWORD"
	default:
		// Signed, so garbage type fields read back from the registry stay recognizable.
		return fmt.Sprintf("UNKNOWN_TYPE_%d", int32(t))
	}
}

// Writable reports whether values of this type can be created.
// Only the four scalar kinds are supported for writing.
func (t RegType) Writable() bool {
	switch t {
	case REG_SZ, REG_DWORD, REG_QWORD, REG_BINARY:
		return true
	default:
		return false
	}
}

// FixedSize returns the exact payload size required by t, or 0 when the
// type is variable length.
func (t RegType) FixedSize() int {
	switch t {
	case REG_DWORD, REG_DWORD_BE:
		return 4
	case REG_QWORD:
		return 8
	default:
		return 0
	}
}

// ParseRegType maps a type name to a writable RegType. Both the Windows
// spelling ("REG_DWORD") and the short form ("dword") are accepted,
// case-insensitively.
func ParseRegType(s string) (RegType, error) {
	switch strings.TrimPrefix(strings.ToUpper(s), "REG_") {
	case "SZ":
		return REG_SZ, nil
	case "DWORD":
		return REG_DWORD, nil
	case "QWORD":
		return REG_QWORD, nil
	case "BINARY":
		return REG_BINARY, nil
	default:
		return REG_NONE, &Error{Kind: ErrKindInvalidType, Msg: ErrInvalidType.Msg, Err: fmt.Errorf("%q", s)}
	}
}
