// Package invis creates, deletes and queries registry entries whose stored
// names begin with a zero UTF-16 code unit.
//
// The native registry API addresses names by explicit byte length, so such
// an entry is fully usable through it. Tools that read names up to the first
// zero unit (regedit, reg.exe, the Win32 Reg* functions) see an empty name or
// nothing at all.
//
// Basic usage:
//
//	eng := invis.New(ntreg.NewNative(), invis.WithLogger(logger))
//
//	// Create a hidden DWORD value.
//	err := eng.Set(ctx, `HKCU:\SOFTWARE\X\Y`, types.REG_DWORD, []byte{0x39, 0x05, 0, 0})
//
//	// Query it back. A path naming a key instead of a value returns every
//	// value in that key.
//	res, err := eng.Query(ctx, `HKCU:\SOFTWARE\X\Y`)
//	defer res.Release()
//
// Every handle opened for an operation is closed before the operation
// returns. Engines hold no handles between calls and may be shared between
// goroutines when the provider allows it.
package invis
