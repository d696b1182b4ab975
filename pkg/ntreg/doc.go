// Package ntreg is the native registry provider: the low-level entry points
// beneath the documented Win32 registry API that accept explicit-length
// (counted) names.
//
// The Provider interface is a service object. Build one at process start and
// pass it into the engine; nothing here is global state.
//
//   - Native calls ntdll.dll through golang.org/x/sys/windows. The entry
//     points are resolved once, on first use, behind a sync.Once, so
//     concurrent first use is safe. On other platforms every call reports
//     STATUS_NOT_SUPPORTED.
//   - Memory is an in-process registry with the same counted-name
//     semantics, used by tests and by dry runs on machines without a
//     registry.
//
// # Handles
//
// Every Handle returned by OpenRoot, OpenKey or CreateKey is owned by the
// caller and must be passed to Close exactly once.
//
// # Buffers
//
// Query and enumerate calls follow the NT size-negotiation protocol: a call
// with a buffer too small for the record returns STATUS_BUFFER_TOO_SMALL (or
// STATUS_BUFFER_OVERFLOW once the fixed header fits) together with the exact
// byte count required.
package ntreg
