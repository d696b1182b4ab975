// Package regpath splits hive-qualified registry paths.
//
// Two spellings are accepted:
//
//	HKCU:\SOFTWARE\X\Y
//	HKCU\SOFTWARE\X\Y
//
// The hive token is matched case-sensitively. The leaf is the text after
// the final backslash; a path with a single segment ("HKCU:\Foo") resolves
// to the hive root as container and "Foo" as leaf.
package regpath

import (
	"strings"

	"github.com/joshuapare/invisreg/pkg/types"
)

// Separator is the registry path separator.
const Separator = `\`

// Path is a resolved registry path. Container never includes the leaf.
type Path struct {
	Hive      types.Hive
	Container string // "" means the hive root
	Leaf      string
}

// Resolve parses s into a Path. Hive errors take precedence over key errors
// so that "XYZ:\" reports an invalid hive.
func Resolve(s string) (Path, error) {
	token, rest, ok := cutHive(s)
	hive, known := types.LookupHive(token)
	if !known {
		return Path{}, types.ErrInvalidHive.With("resolve", s)
	}
	if !ok || rest == "" {
		return Path{}, types.ErrInvalidKey.With("resolve", s)
	}

	for seg := range strings.SplitSeq(rest, Separator) {
		if seg == "" {
			return Path{}, types.ErrInvalidKey.With("resolve", s)
		}
	}

	p := Path{Hive: hive}
	if i := strings.LastIndex(rest, Separator); i >= 0 {
		p.Container = rest[:i]
		p.Leaf = rest[i+1:]
	} else {
		p.Leaf = rest
	}
	return p, nil
}

// cutHive separates the hive token from the remainder. ok is false when no
// separator follows the token.
func cutHive(s string) (token, rest string, ok bool) {
	i := strings.IndexAny(s, `:\`)
	if i < 0 {
		return s, "", false
	}
	token = s[:i]
	rest = s[i+1:]
	if s[i] == ':' {
		// "HKCU:\..." needs the backslash after the colon.
		if !strings.HasPrefix(rest, Separator) {
			return token, "", false
		}
		rest = rest[1:]
	}
	return token, rest, true
}

// Full returns the container with the leaf re-attached.
func (p Path) Full() string {
	return Join(p.Container, p.Leaf)
}

// Parent returns the path of the container as its own Path, with the
// container's last segment as leaf. ok is false for the hive root.
func (p Path) Parent() (Path, bool) {
	if p.Container == "" {
		return Path{}, false
	}
	parent := Path{Hive: p.Hive}
	if i := strings.LastIndex(p.Container, Separator); i >= 0 {
		parent.Container = p.Container[:i]
		parent.Leaf = p.Container[i+1:]
	} else {
		parent.Leaf = p.Container
	}
	return parent, true
}

// String renders the canonical "HKCU:\..." form.
func (p Path) String() string {
	return p.Hive.Token() + `:\` + p.Full()
}

// Join concatenates path segments, skipping empty ones.
func Join(parts ...string) string {
	var b strings.Builder
	for _, part := range parts {
		if part == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteString(Separator)
		}
		b.WriteString(part)
	}
	return b.String()
}
