package types

import "fmt"

// Hive identifies one of the predefined registry roots. Values match the
// Windows HKEY_* pseudo-handle constants.
type Hive uint32

const (
	HiveInvalid       Hive = 0
	HiveClassesRoot   Hive = 0x80000000
	HiveCurrentUser   Hive = 0x80000001
	HiveLocalMachine  Hive = 0x80000002
	HiveUsers         Hive = 0x80000003
	HiveCurrentConfig Hive = 0x80000005
)

// hiveTokens maps the short path prefix to the hive. Matching is
// case-sensitive. "HCU" is kept for compatibility with older scripts.
var hiveTokens = map[string]Hive{
	"HKLM": HiveLocalMachine,
	"HKCU": HiveCurrentUser,
	"HCU":  HiveCurrentUser,
	"HKCR": HiveClassesRoot,
	"HKCC": HiveCurrentConfig,
	"HKU":  HiveUsers,
}

// Hives lists every supported hive in a stable order.
var Hives = []Hive{
	HiveLocalMachine,
	HiveCurrentUser,
	HiveClassesRoot,
	HiveCurrentConfig,
	HiveUsers,
}

// LookupHive resolves a case-sensitive prefix token such as "HKLM".
func LookupHive(token string) (Hive, bool) {
	h, ok := hiveTokens[token]
	return h, ok
}

// Token returns the canonical short prefix ("HKCU").
func (h Hive) Token() string {
	switch h {
	case HiveLocalMachine:
		return "HKLM"
	case HiveCurrentUser:
		return "HKCU"
	case HiveClassesRoot:
		return "HKCR"
	case HiveCurrentConfig:
		return "HKCC"
	case HiveUsers:
		return "HKU"
	default:
		return ""
	}
}

// String returns the full root key name.
func (h Hive) String() string {
	switch h {
	case HiveLocalMachine:
		return "HKEY_LOCAL_MACHINE"
	case HiveCurrentUser:
		return "HKEY_CURRENT_USER"
	case HiveClassesRoot:
		return "HKEY_CLASSES_ROOT"
	case HiveCurrentConfig:
		return "HKEY_CURRENT_CONFIG"
	case HiveUsers:
		return "HKEY_USERS"
	default:
		return fmt.Sprintf("HIVE_0x%08X", uint32(h))
	}
}

// Valid reports whether h is one of the five supported hives.
func (h Hive) Valid() bool {
	return h.Token() != ""
}
