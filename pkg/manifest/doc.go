// Package manifest loads batch files of invisreg operations.
//
// A manifest lists operations in order. Each entry names exactly one
// operation by its key, the path being its value:
//
//	operations:
//	  - create: HKCU:\SOFTWARE\X\Y
//	    type: dword
//	    value: "1337"
//	  - create: HKCU:\SOFTWARE\X\Blob
//	    type: binary
//	    file: payload.bin      # relative to the manifest
//	  - create: HKCU:\SOFTWARE\X\K
//	    key: true
//	  - query: HKCU:\SOFTWARE\X
//	  - delete: HKCU:\SOFTWARE\X\Old
//	    visible: true
//
// "edit" is accepted as a synonym of "create". YAML (.yaml, .yml) and JSON
// (.json) files are supported. Repeating a key inside one mapping is an
// error rather than last-one-wins.
//
// A .reg file, such as one written by "invisreg query --format reg", is
// accepted as well and converted entry by entry.
package manifest
