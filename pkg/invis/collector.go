package invis

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/joshuapare/invisreg/internal/format"
	"github.com/joshuapare/invisreg/internal/regpath"
	"github.com/joshuapare/invisreg/internal/trickname"
	"github.com/joshuapare/invisreg/pkg/ntreg"
	"github.com/joshuapare/invisreg/pkg/ntstatus"
	"github.com/joshuapare/invisreg/pkg/types"
)

const (
	// MaxQueryBuffer caps the record size a provider may ask for. Larger
	// requests fail with ErrOutOfMemory instead of being allocated.
	MaxQueryBuffer = 64 << 20

	// maxRenegotiations bounds how often a fetch may come back "too small"
	// after being given the size the provider asked for. This only happens
	// when the entry grows between calls.
	maxRenegotiations = 4

	// preallocLimit caps the record slice pre-sized from a key's value count.
	preallocLimit = 1024

	pooledBufferSize = 512
	maxPooledBuffer  = 64 << 10
)

var scratchPool = sync.Pool{
	New: func() any {
		b := make([]byte, pooledBufferSize)
		return &b
	},
}

// getScratch returns a buffer of exactly n bytes.
func getScratch(n int) *[]byte {
	buf, ok := scratchPool.Get().(*[]byte)
	if !ok {
		panic("scratchPool returned unexpected type")
	}
	if cap(*buf) < n {
		*buf = make([]byte, n)
	}
	*buf = (*buf)[:n]
	return buf
}

// putScratch wipes buf and returns it to the pool. Oversized buffers are
// dropped.
func putScratch(buf *[]byte) {
	if buf == nil {
		return
	}
	*buf = (*buf)[:cap(*buf)]
	clear(*buf)
	if cap(*buf) > maxPooledBuffer {
		return
	}
	scratchPool.Put(buf)
}

type fetchFunc func(buf []byte) (uint32, ntstatus.Status)

// negotiate runs the size-then-fetch protocol: one probe with no buffer, then
// fetches with exactly the size the provider reported. On success it returns
// the filled scratch buffer, which the caller must put back. Any other
// status from the provider is returned with a nil buffer for the caller to
// interpret.
func (e *Engine) negotiate(op, path, call string, fetch fetchFunc) (*[]byte, ntstatus.Status, error) {
	need, st := fetch(nil)
	e.log.Debug("provider call", "call", call, "path", path, "size", 0, "status", st.String())
	if st == ntstatus.Success {
		// No record fits in zero bytes.
		return nil, st, types.ErrBufferSize.With(op, path).
			Wrap(fmt.Errorf("%s succeeded with an empty buffer", call))
	}

	var scratch *[]byte
	for attempt := 0; st.NeedsBuffer(); attempt++ {
		putScratch(scratch)
		scratch = nil
		switch {
		case attempt > maxRenegotiations:
			return nil, st, sizeError(op, path, st, fmt.Errorf("still too small after %d fetches", attempt))
		case need == 0:
			return nil, st, sizeError(op, path, st, fmt.Errorf("%s reported a zero size", call))
		case need > MaxQueryBuffer:
			oom := types.ErrOutOfMemory.With(op, path).
				Wrap(fmt.Errorf("%s needs %d bytes", call, need))
			oom.Status = uint32(st)
			return nil, st, oom
		}

		scratch = getScratch(int(need))
		need, st = fetch(*scratch)
		e.log.Debug("provider call", "call", call, "path", path, "size", len(*scratch), "status", st.String())
	}

	if st != ntstatus.Success {
		putScratch(scratch)
		return nil, st, nil
	}
	if int(need) > len(*scratch) {
		putScratch(scratch)
		return nil, st, sizeError(op, path, st, fmt.Errorf("%s wrote %d bytes into %d", call, need, len(*scratch)))
	}
	*scratch = (*scratch)[:need]
	return scratch, st, nil
}

func sizeError(op, path string, st ntstatus.Status, cause error) error {
	e := types.ErrBufferSize.With(op, path).Wrap(cause)
	e.Status = uint32(st)
	return e
}

// query answers a QUERY request. A direct hit on the value returns it; if no
// such value exists, the path is reopened as a key and its values are
// listed.
func (e *Engine) query(ctx context.Context, p regpath.Path, visible bool) (res Result, err error) {
	const op = "query"
	name, err := trickname.Encode(p.Leaf, !visible)
	if err != nil {
		return Result{}, err
	}

	h, err := e.openContainer(ctx, op, p, queryAccess)
	if err != nil {
		return Result{}, err
	}
	defer func() {
		e.closeHandle(op, p.String(), h, &err)
		if err != nil {
			res.Release()
		}
	}()

	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	rec, found, err := e.queryValue(h, name, p.String())
	if err != nil {
		return Result{}, err
	}
	if found {
		return Result{Value: &rec}, nil
	}

	e.log.Debug("value not found, listing key", "path", p.String())
	records, err := e.queryKey(ctx, h, p, visible)
	if err != nil {
		return Result{}, err
	}
	return Result{Records: records}, nil
}

// queryValue fetches one value. found is false only when the provider
// reports the name does not exist.
func (e *Engine) queryValue(h ntreg.Handle, name trickname.Name, path string) (Record, bool, error) {
	us := unicodeString(name)
	scratch, st, err := e.negotiate("query", path, "QueryValueKey", func(buf []byte) (uint32, ntstatus.Status) {
		return e.p.QueryValueKey(h, us, ntreg.KeyValueFullInformation, buf)
	})
	if err != nil {
		return Record{}, false, err
	}
	if st == ntstatus.ObjectNameNotFound {
		return Record{}, false, nil
	}
	if st != ntstatus.Success {
		return Record{}, false, ntstatus.TranslatePath("query", path, st)
	}
	defer putScratch(scratch)

	rec, err := decodeRecord(*scratch)
	if err != nil {
		return Record{}, false, types.ErrBufferSize.With("query", path).Wrap(err)
	}
	return rec, true, nil
}

// queryKey opens the key named by p's leaf under parent and lists its values.
func (e *Engine) queryKey(ctx context.Context, parent ntreg.Handle, p regpath.Path, visible bool) (records []Record, err error) {
	h, err := e.openLeafKey(parent, p, visible, ntreg.KeyQueryValue)
	if err != nil {
		return nil, err
	}
	defer func() {
		e.closeHandle("query", p.String(), h, &err)
		if err != nil {
			Release(records)
			records = nil
		}
	}()

	return e.enumerateValues(ctx, h, p.String())
}

// openLeafKey opens p's leaf as a key under parent: by its visible name
// first, then by its hidden name unless visible is set.
func (e *Engine) openLeafKey(parent ntreg.Handle, p regpath.Path, visible bool, access ntreg.AccessMask) (ntreg.Handle, error) {
	plain, err := trickname.Encode(p.Leaf, false)
	if err != nil {
		return 0, err
	}
	h, st := e.p.OpenKey(parent, unicodeString(plain), access)
	e.trace("OpenKey", p, st)
	if st == ntstatus.ObjectNameNotFound && !visible {
		hidden, err := trickname.Encode(p.Leaf, true)
		if err != nil {
			return 0, err
		}
		h, st = e.p.OpenKey(parent, unicodeString(hidden), access)
		e.trace("OpenKey", p, st)
	}
	if st != ntstatus.Success {
		return 0, ntstatus.TranslatePath("query", p.String(), st)
	}
	return h, nil
}

// enumerateValues reads every value of key in provider order. On any failure
// the records gathered so far are wiped and dropped.
func (e *Engine) enumerateValues(ctx context.Context, key ntreg.Handle, path string) (_ []Record, err error) {
	info, err := e.keyInfo(key, path)
	if err != nil {
		return nil, err
	}
	e.log.Debug("enumerating values", "path", path, "values", info.Values)

	records := make([]Record, 0, min(int(info.Values), preallocLimit))
	defer func() {
		if err != nil {
			Release(records)
		}
	}()

	for index := uint32(0); ; index++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		scratch, st, err := e.negotiate("query", path, "EnumerateValueKey", func(buf []byte) (uint32, ntstatus.Status) {
			return e.p.EnumerateValueKey(key, index, ntreg.KeyValueFullInformation, buf)
		})
		if err != nil {
			return nil, err
		}
		if st == ntstatus.NoMoreEntries {
			return records, nil
		}
		if st != ntstatus.Success {
			return nil, ntstatus.TranslatePath("query", path, st)
		}

		rec, err := decodeRecord(*scratch)
		putScratch(scratch)
		if err != nil {
			return nil, types.ErrBufferSize.With("query", path).Wrap(err)
		}
		records = append(records, rec)
	}
}

// keyInfo reads KEY_FULL_INFORMATION for key.
func (e *Engine) keyInfo(key ntreg.Handle, path string) (format.KeyFull, error) {
	scratch, st, err := e.negotiate("query key", path, "QueryKey", func(buf []byte) (uint32, ntstatus.Status) {
		return e.p.QueryKey(key, ntreg.KeyFullInformation, buf)
	})
	if err != nil {
		return format.KeyFull{}, err
	}
	if st != ntstatus.Success {
		return format.KeyFull{}, ntstatus.TranslatePath("query key", path, st)
	}
	defer putScratch(scratch)

	kf, err := format.DecodeKeyFull(*scratch)
	if err != nil {
		return format.KeyFull{}, types.ErrBufferSize.With("query key", path).Wrap(err)
	}
	return kf, nil
}

// subkeyAt returns the raw name of the index-th subkey of key. ok is false
// once the index runs past the last subkey.
func (e *Engine) subkeyAt(key ntreg.Handle, index uint32, path string) (name []uint16, ok bool, err error) {
	scratch, st, err := e.negotiate("enumerate keys", path, "EnumerateKey", func(buf []byte) (uint32, ntstatus.Status) {
		return e.p.EnumerateKey(key, index, ntreg.KeyBasicInformation, buf)
	})
	if err != nil {
		return nil, false, err
	}
	if st == ntstatus.NoMoreEntries {
		return nil, false, nil
	}
	if st != ntstatus.Success {
		return nil, false, ntstatus.TranslatePath("enumerate keys", path, st)
	}
	defer putScratch(scratch)

	kb, err := format.DecodeKeyBasic(*scratch)
	if err != nil {
		return nil, false, types.ErrBufferSize.With("enumerate keys", path).Wrap(err)
	}
	return kb.Name, true, nil
}

// KeyName is a subkey name as listed by Stat.
type KeyName struct {
	Name      string
	Invisible bool
}

// KeyInfo summarises a key.
type KeyInfo struct {
	Path            string
	Invisible       bool
	LastWrite       time.Time
	Values          uint32
	MaxValueDataLen uint32
	Subkeys         []KeyName
}

// Stat opens the key at path (by its plain name, then by its hidden name
// unless visible is set) and reports its metadata and subkeys.
func (e *Engine) Stat(ctx context.Context, path string, visible bool) (info KeyInfo, err error) {
	const op = "stat"
	if err := ctx.Err(); err != nil {
		return KeyInfo{}, err
	}
	p, err := regpath.Resolve(path)
	if err != nil {
		return KeyInfo{}, err
	}

	parent, err := e.openContainer(ctx, op, p, ntreg.KeyRead)
	if err != nil {
		return KeyInfo{}, err
	}
	defer e.closeHandle(op, p.String(), parent, &err)

	h, err := e.openLeafKey(parent, p, visible, ntreg.KeyRead)
	if err != nil {
		return KeyInfo{}, err
	}
	defer e.closeHandle(op, p.String(), h, &err)

	kb, err := e.keyBasic(h, p.String())
	if err != nil {
		return KeyInfo{}, err
	}
	kf, err := e.keyInfo(h, p.String())
	if err != nil {
		return KeyInfo{}, err
	}
	_, hidden := trickname.Decode(kb.Name)
	info = KeyInfo{
		Path:            p.String(),
		Invisible:       hidden,
		LastWrite:       fromFiletime(kf.LastWriteTime),
		Values:          kf.Values,
		MaxValueDataLen: kf.MaxValueDataLen,
		Subkeys:         make([]KeyName, 0, min(int(kf.SubKeys), preallocLimit)),
	}

	for index := uint32(0); ; index++ {
		if err := ctx.Err(); err != nil {
			return KeyInfo{}, err
		}
		name, ok, err := e.subkeyAt(h, index, p.String())
		if err != nil {
			return KeyInfo{}, err
		}
		if !ok {
			break
		}
		n, hidden := trickname.Decode(name)
		info.Subkeys = append(info.Subkeys, KeyName{Name: n, Invisible: hidden})
	}
	return info, nil
}

// keyBasic reads KEY_BASIC_INFORMATION for key.
func (e *Engine) keyBasic(key ntreg.Handle, path string) (format.KeyBasic, error) {
	scratch, st, err := e.negotiate("stat", path, "QueryKey", func(buf []byte) (uint32, ntstatus.Status) {
		return e.p.QueryKey(key, ntreg.KeyBasicInformation, buf)
	})
	if err != nil {
		return format.KeyBasic{}, err
	}
	if st != ntstatus.Success {
		return format.KeyBasic{}, ntstatus.TranslatePath("stat", path, st)
	}
	defer putScratch(scratch)

	kb, err := format.DecodeKeyBasic(*scratch)
	if err != nil {
		return format.KeyBasic{}, types.ErrBufferSize.With("stat", path).Wrap(err)
	}
	return kb, nil
}

// fromFiletime converts 100ns intervals since 1601-01-01 to a time.Time.
func fromFiletime(ft uint64) time.Time {
	const epochDelta = 116444736000000000
	if ft < epochDelta {
		return time.Time{}
	}
	return time.Unix(0, int64(ft-epochDelta)*100).UTC()
}
