package ntreg

import (
	"slices"
	"sync"
	"time"
	"unicode"
	"unicode/utf16"

	"github.com/joshuapare/invisreg/internal/format"
	"github.com/joshuapare/invisreg/pkg/ntstatus"
	"github.com/joshuapare/invisreg/pkg/types"
)

// Memory is an in-process registry that honours explicit-length names the
// way the kernel does: a name's significant units are exactly Length/2, and
// zero units inside them are ordinary characters. Names compare
// case-insensitively. Handles are numbered and must be closed.
//
// Memory is safe for concurrent use.
type Memory struct {
	mu      sync.Mutex
	roots   map[types.Hive]*memKey
	handles map[Handle]memHandle
	next    Handle
	now     func() time.Time
}

type memKey struct {
	name      []uint16
	parent    *memKey
	subkeys   []*memKey
	values    []*memValue
	lastWrite time.Time
	deleted   bool
}

type memValue struct {
	name []uint16
	typ  uint32
	data []byte
}

type memHandle struct {
	key    *memKey
	access AccessMask
}

// NewMemory returns an empty registry with all five hive roots present.
func NewMemory() *Memory {
	m := &Memory{
		roots:   make(map[types.Hive]*memKey, len(types.Hives)),
		handles: make(map[Handle]memHandle),
		next:    0x100,
		now:     time.Now,
	}
	for _, h := range types.Hives {
		m.roots[h] = &memKey{lastWrite: m.now()}
	}
	return m
}

func (m *Memory) OpenRoot(hive types.Hive, access AccessMask) (Handle, ntstatus.Status) {
	m.mu.Lock()
	defer m.mu.Unlock()

	root, ok := m.roots[hive]
	if !ok {
		return 0, ntstatus.InvalidParameter
	}
	return m.issue(root, access), ntstatus.Success
}

func (m *Memory) CreateKey(root Handle, name UnicodeString, access AccessMask, _ uint32) (Handle, Disposition, ntstatus.Status) {
	m.mu.Lock()
	defer m.mu.Unlock()

	base, st := m.lookup(root)
	if st != ntstatus.Success {
		return 0, 0, st
	}
	parts, st := splitName(name.Units())
	if st != ntstatus.Success {
		return 0, 0, st
	}
	if len(parts) == 0 {
		return m.issue(base, access), OpenedExistingKey, ntstatus.Success
	}

	parent, st := walk(base, parts[:len(parts)-1])
	if st != ntstatus.Success {
		return 0, 0, ntstatus.ObjectNameNotFound
	}
	leaf := parts[len(parts)-1]
	if child := parent.child(leaf); child != nil {
		return m.issue(child, access), OpenedExistingKey, ntstatus.Success
	}

	child := &memKey{name: slices.Clone(leaf), parent: parent, lastWrite: m.now()}
	parent.subkeys = append(parent.subkeys, child)
	parent.lastWrite = child.lastWrite
	return m.issue(child, access), CreatedNewKey, ntstatus.Success
}

func (m *Memory) OpenKey(root Handle, name UnicodeString, access AccessMask) (Handle, ntstatus.Status) {
	m.mu.Lock()
	defer m.mu.Unlock()

	base, st := m.lookup(root)
	if st != ntstatus.Success {
		return 0, st
	}
	parts, st := splitName(name.Units())
	if st != ntstatus.Success {
		return 0, st
	}
	k, st := walk(base, parts)
	if st != ntstatus.Success {
		return 0, st
	}
	return m.issue(k, access), ntstatus.Success
}

func (m *Memory) SetValueKey(key Handle, name UnicodeString, valueType uint32, data []byte) ntstatus.Status {
	m.mu.Lock()
	defer m.mu.Unlock()

	k, st := m.lookupAccess(key, KeySetValue)
	if st != ntstatus.Success {
		return st
	}
	units := name.Units()
	if v := k.value(units); v != nil {
		v.typ = valueType
		v.data = slices.Clone(data)
	} else {
		k.values = append(k.values, &memValue{
			name: slices.Clone(units),
			typ:  valueType,
			data: slices.Clone(data),
		})
	}
	k.lastWrite = m.now()
	return ntstatus.Success
}

func (m *Memory) DeleteKey(key Handle) ntstatus.Status {
	m.mu.Lock()
	defer m.mu.Unlock()

	k, st := m.lookupAccess(key, KeyDelete)
	if st != ntstatus.Success {
		return st
	}
	if k.parent == nil || len(k.subkeys) > 0 {
		return ntstatus.CannotDelete
	}
	p := k.parent
	p.subkeys = slices.DeleteFunc(p.subkeys, func(c *memKey) bool { return c == k })
	p.lastWrite = m.now()
	k.deleted = true
	k.values = nil
	return ntstatus.Success
}

func (m *Memory) DeleteValueKey(key Handle, name UnicodeString) ntstatus.Status {
	m.mu.Lock()
	defer m.mu.Unlock()

	k, st := m.lookupAccess(key, KeySetValue)
	if st != ntstatus.Success {
		return st
	}
	units := name.Units()
	i := slices.IndexFunc(k.values, func(v *memValue) bool { return equalFold(v.name, units) })
	if i < 0 {
		return ntstatus.ObjectNameNotFound
	}
	k.values = slices.Delete(k.values, i, i+1)
	k.lastWrite = m.now()
	return ntstatus.Success
}

func (m *Memory) QueryKey(key Handle, class KeyInformationClass, buf []byte) (uint32, ntstatus.Status) {
	m.mu.Lock()
	defer m.mu.Unlock()

	k, st := m.lookupAccess(key, KeyQueryValue)
	if st != ntstatus.Success {
		return 0, st
	}
	switch class {
	case KeyBasicInformation:
		need := format.EncodeKeyBasic(buf, filetime(k.lastWrite), k.name)
		return sized(buf, need, format.KeyBasicHeaderSize)
	case KeyFullInformation:
		need := format.EncodeKeyFull(buf, k.full())
		return sized(buf, need, format.KeyFullHeaderSize)
	default:
		return 0, ntstatus.InvalidParameter
	}
}

func (m *Memory) QueryValueKey(key Handle, name UnicodeString, class KeyValueInformationClass, buf []byte) (uint32, ntstatus.Status) {
	m.mu.Lock()
	defer m.mu.Unlock()

	k, st := m.lookupAccess(key, KeyQueryValue)
	if st != ntstatus.Success {
		return 0, st
	}
	if class != KeyValueFullInformation {
		return 0, ntstatus.InvalidParameter
	}
	v := k.value(name.Units())
	if v == nil {
		return 0, ntstatus.ObjectNameNotFound
	}
	need := format.EncodeKeyValueFull(buf, v.typ, v.name, v.data)
	return sized(buf, need, format.KVFullHeaderSize)
}

func (m *Memory) EnumerateKey(key Handle, index uint32, class KeyInformationClass, buf []byte) (uint32, ntstatus.Status) {
	m.mu.Lock()
	defer m.mu.Unlock()

	k, st := m.lookupAccess(key, KeyEnumerateSubKeys)
	if st != ntstatus.Success {
		return 0, st
	}
	if class != KeyBasicInformation {
		return 0, ntstatus.InvalidParameter
	}
	if int(index) >= len(k.subkeys) {
		return 0, ntstatus.NoMoreEntries
	}
	c := k.subkeys[index]
	need := format.EncodeKeyBasic(buf, filetime(c.lastWrite), c.name)
	return sized(buf, need, format.KeyBasicHeaderSize)
}

func (m *Memory) EnumerateValueKey(key Handle, index uint32, class KeyValueInformationClass, buf []byte) (uint32, ntstatus.Status) {
	m.mu.Lock()
	defer m.mu.Unlock()

	k, st := m.lookupAccess(key, KeyQueryValue)
	if st != ntstatus.Success {
		return 0, st
	}
	if class != KeyValueFullInformation {
		return 0, ntstatus.InvalidParameter
	}
	if int(index) >= len(k.values) {
		return 0, ntstatus.NoMoreEntries
	}
	v := k.values[index]
	need := format.EncodeKeyValueFull(buf, v.typ, v.name, v.data)
	return sized(buf, need, format.KVFullHeaderSize)
}

func (m *Memory) Close(h Handle) ntstatus.Status {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.handles[h]; !ok {
		return ntstatus.InvalidHandle
	}
	delete(m.handles, h)
	return ntstatus.Success
}

// OpenHandles reports how many handles are currently open.
func (m *Memory) OpenHandles() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.handles)
}

// MkdirAll creates every visible key along path (separated by backslashes)
// under hive.
func (m *Memory) MkdirAll(hive types.Hive, path string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	k := m.roots[hive]
	if k == nil {
		return
	}
	parts, _ := splitName(utf16.Encode([]rune(path)))
	for _, part := range parts {
		child := k.child(part)
		if child == nil {
			child = &memKey{name: slices.Clone(part), parent: k, lastWrite: m.now()}
			k.subkeys = append(k.subkeys, child)
		}
		k = child
	}
}

// VisibleValueNames lists the value names under path as a tool that reads
// names up to the first zero unit would see them. Hidden names show up as
// empty strings.
func (m *Memory) VisibleValueNames(hive types.Hive, path string) ([]string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	k := m.find(hive, path)
	if k == nil {
		return nil, false
	}
	out := make([]string, 0, len(k.values))
	for _, v := range k.values {
		out = append(out, zeroTerminated(v.name))
	}
	return out, true
}

// VisibleSubkeyNames is VisibleValueNames for subkeys.
func (m *Memory) VisibleSubkeyNames(hive types.Hive, path string) ([]string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	k := m.find(hive, path)
	if k == nil {
		return nil, false
	}
	out := make([]string, 0, len(k.subkeys))
	for _, c := range k.subkeys {
		out = append(out, zeroTerminated(c.name))
	}
	return out, true
}

// LookupValueZ looks a value up the way RegQueryValueExW does: the name is
// compared only up to its first zero unit. Hidden values are never found by
// their plain name.
func (m *Memory) LookupValueZ(hive types.Hive, path, name string) (uint32, []byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	k := m.find(hive, path)
	if k == nil {
		return 0, nil, false
	}
	want := utf16.Encode([]rune(name))
	for _, v := range k.values {
		if equalFold(truncateAtZero(v.name), want) {
			return v.typ, slices.Clone(v.data), true
		}
	}
	return 0, nil, false
}

func (m *Memory) issue(k *memKey, access AccessMask) Handle {
	h := m.next
	m.next += 4
	m.handles[h] = memHandle{key: k, access: access}
	return h
}

func (m *Memory) lookup(h Handle) (*memKey, ntstatus.Status) {
	mh, ok := m.handles[h]
	if !ok {
		return nil, ntstatus.InvalidHandle
	}
	if mh.key.deleted {
		return nil, ntstatus.KeyDeleted
	}
	return mh.key, ntstatus.Success
}

func (m *Memory) lookupAccess(h Handle, want AccessMask) (*memKey, ntstatus.Status) {
	mh, ok := m.handles[h]
	if !ok {
		return nil, ntstatus.InvalidHandle
	}
	if mh.access&want != want {
		return nil, ntstatus.AccessDenied
	}
	if mh.key.deleted {
		return nil, ntstatus.KeyDeleted
	}
	return mh.key, ntstatus.Success
}

// find resolves a plain visible path; only used by the inspection helpers.
func (m *Memory) find(hive types.Hive, path string) *memKey {
	k := m.roots[hive]
	if k == nil {
		return nil
	}
	parts, st := splitName(utf16.Encode([]rune(path)))
	if st != ntstatus.Success {
		return nil
	}
	k, st = walk(k, parts)
	if st != ntstatus.Success {
		return nil
	}
	return k
}

func (k *memKey) child(name []uint16) *memKey {
	for _, c := range k.subkeys {
		if equalFold(c.name, name) {
			return c
		}
	}
	return nil
}

func (k *memKey) value(name []uint16) *memValue {
	for _, v := range k.values {
		if equalFold(v.name, name) {
			return v
		}
	}
	return nil
}

func (k *memKey) full() format.KeyFull {
	kf := format.KeyFull{
		LastWriteTime: filetime(k.lastWrite),
		SubKeys:       uint32(len(k.subkeys)),
		Values:        uint32(len(k.values)),
	}
	for _, c := range k.subkeys {
		kf.MaxNameLen = max(kf.MaxNameLen, uint32(len(c.name)*2))
	}
	for _, v := range k.values {
		kf.MaxValueNameLen = max(kf.MaxValueNameLen, uint32(len(v.name)*2))
		kf.MaxValueDataLen = max(kf.MaxValueDataLen, uint32(len(v.data)))
	}
	return kf
}

// walk follows parts from base. A missing final component is
// OBJECT_NAME_NOT_FOUND, a missing intermediate one OBJECT_PATH_NOT_FOUND.
func walk(base *memKey, parts [][]uint16) (*memKey, ntstatus.Status) {
	k := base
	for i, part := range parts {
		next := k.child(part)
		if next == nil {
			if i == len(parts)-1 {
				return nil, ntstatus.ObjectNameNotFound
			}
			return nil, ntstatus.ObjectPathNotFound
		}
		k = next
	}
	return k, ntstatus.Success
}

// splitName splits a relative key name on backslashes. Relative names may not
// start with a separator, and no component may be empty.
func splitName(units []uint16) ([][]uint16, ntstatus.Status) {
	if len(units) == 0 {
		return nil, ntstatus.Success
	}
	if units[0] == '\\' {
		return nil, ntstatus.ObjectPathSyntaxBad
	}
	var parts [][]uint16
	start := 0
	for i := 0; i <= len(units); i++ {
		if i < len(units) && units[i] != '\\' {
			continue
		}
		if i == start {
			return nil, ntstatus.ObjectNameInvalid
		}
		parts = append(parts, units[start:i])
		start = i + 1
	}
	return parts, ntstatus.Success
}

func equalFold(a, b []uint16) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] && foldUnit(a[i]) != foldUnit(b[i]) {
			return false
		}
	}
	return true
}

// foldUnit upcases one code unit. Surrogates pass through unchanged.
func foldUnit(u uint16) uint16 {
	if u >= 'a' && u <= 'z' {
		return u - 'a' + 'A'
	}
	if u < 0x80 || utf16.IsSurrogate(rune(u)) {
		return u
	}
	if up := unicode.ToUpper(rune(u)); up <= 0xFFFF {
		return uint16(up)
	}
	return u
}

func truncateAtZero(units []uint16) []uint16 {
	if i := slices.Index(units, 0); i >= 0 {
		return units[:i]
	}
	return units
}

func zeroTerminated(units []uint16) string {
	return string(utf16.Decode(truncateAtZero(units)))
}

// sized turns an encoder's required size into the provider contract: no room
// for the header is BUFFER_TOO_SMALL, room for the header but not the rest is
// BUFFER_OVERFLOW.
func sized(buf []byte, need, header int) (uint32, ntstatus.Status) {
	switch {
	case len(buf) < header:
		return uint32(need), ntstatus.BufferTooSmall
	case len(buf) < need:
		return uint32(need), ntstatus.BufferOverflow
	default:
		return uint32(need), ntstatus.Success
	}
}

// filetime converts t to 100ns intervals since 1601-01-01.
func filetime(t time.Time) uint64 {
	const epochDelta = 116444736000000000
	return uint64(t.UnixNano()/100) + epochDelta
}
