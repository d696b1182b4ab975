// Package types defines the shared vocabulary of invisreg: registry value
// types, the five predefined hives, and the typed error taxonomy every
// operation reports through.
//
// Design goals:
//   - Numbering matches the Windows definitions so values pass straight
//     through to the native API.
//   - Errors carry a stable Kind so callers branch on intent, not text.
//   - Sentinels compare by Kind, so errors.Is works on wrapped errors that
//     carry extra context (operation, path, raw NTSTATUS).
//
// This package has no dependencies beyond the standard library.
package types
