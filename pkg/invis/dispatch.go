package invis

import (
	"context"

	"github.com/joshuapare/invisreg/internal/regpath"
	"github.com/joshuapare/invisreg/internal/trickname"
	"github.com/joshuapare/invisreg/pkg/ntreg"
	"github.com/joshuapare/invisreg/pkg/ntstatus"
	"github.com/joshuapare/invisreg/pkg/types"
)

// Access masks requested for each role a handle plays.
const (
	rootAccess   = ntreg.KeyRead
	createAccess = ntreg.KeyCreateSubKey | ntreg.KeyQueryValue
	setAccess    = ntreg.KeySetValue
	queryAccess  = ntreg.KeyQueryValue | ntreg.KeyEnumerateSubKeys
	deleteAccess = ntreg.KeyDelete | ntreg.KeyQueryValue | ntreg.KeyEnumerateSubKeys
)

// Perform validates req and runs it. Validation failures are returned before
// any provider call. For queries the caller owns the returned Result and must
// Release it; other operations return a zero Result.
func (e *Engine) Perform(ctx context.Context, req Request) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	p, err := req.validate()
	if err != nil {
		return Result{}, err
	}
	hidden := !req.Visible

	switch {
	case req.Op == OpCreateOrSet && req.Container:
		err = e.createKey(ctx, p, hidden)
	case req.Op == OpCreateOrSet:
		err = e.setValue(ctx, p, hidden, req.Type, req.Data)
	case req.Op == OpDelete && req.Container:
		err = e.deleteKey(ctx, p, hidden)
	case req.Op == OpDelete:
		err = e.deleteValue(ctx, p, hidden)
	case req.Op == OpQuery:
		var res Result
		res, err = e.query(ctx, p, req.Visible)
		if err == nil {
			e.log.Info("query complete", "path", p.String(), "records", res.Len())
		}
		return res, err
	}
	if err == nil {
		e.log.Info("operation complete", "op", req.Op.String(), "path", p.String(),
			"container", req.Container, "hidden", hidden)
	}
	return Result{}, err
}

func (e *Engine) createKey(ctx context.Context, p regpath.Path, hidden bool) (err error) {
	const op = "create key"
	name, err := trickname.Encode(p.Leaf, hidden)
	if err != nil {
		return err
	}

	parent, err := e.openContainer(ctx, op, p, createAccess)
	if err != nil {
		return err
	}
	defer e.closeHandle(op, p.String(), parent, &err)

	if err := ctx.Err(); err != nil {
		return err
	}
	h, disp, st := e.p.CreateKey(parent, unicodeString(name), ntreg.KeyQueryValue, ntreg.OptionNonVolatile)
	e.trace("CreateKey", p, st)
	if st != ntstatus.Success {
		return ntstatus.TranslatePath(op, p.String(), st)
	}
	defer e.closeHandle(op, p.String(), h, &err)

	e.log.Debug("key ready", "path", p.String(), "disposition", disp.String())
	return nil
}

func (e *Engine) setValue(ctx context.Context, p regpath.Path, hidden bool, typ types.RegType, data []byte) (err error) {
	const op = "set value"
	name, err := trickname.Encode(p.Leaf, hidden)
	if err != nil {
		return err
	}

	h, err := e.openContainer(ctx, op, p, setAccess)
	if err != nil {
		return err
	}
	defer e.closeHandle(op, p.String(), h, &err)

	if err := ctx.Err(); err != nil {
		return err
	}
	st := e.p.SetValueKey(h, unicodeString(name), uint32(typ), data)
	e.trace("SetValueKey", p, st)
	return ntstatus.TranslatePath(op, p.String(), st)
}

func (e *Engine) deleteValue(ctx context.Context, p regpath.Path, hidden bool) (err error) {
	const op = "delete value"
	name, err := trickname.Encode(p.Leaf, hidden)
	if err != nil {
		return err
	}

	h, err := e.openContainer(ctx, op, p, setAccess)
	if err != nil {
		return err
	}
	defer e.closeHandle(op, p.String(), h, &err)

	if err := ctx.Err(); err != nil {
		return err
	}
	st := e.p.DeleteValueKey(h, unicodeString(name))
	e.trace("DeleteValueKey", p, st)
	return ntstatus.TranslatePath(op, p.String(), st)
}

func (e *Engine) deleteKey(ctx context.Context, p regpath.Path, hidden bool) (err error) {
	const op = "delete key"
	name, err := trickname.Encode(p.Leaf, hidden)
	if err != nil {
		return err
	}

	parent, err := e.openContainer(ctx, op, p, rootAccess)
	if err != nil {
		return err
	}
	defer e.closeHandle(op, p.String(), parent, &err)

	if err := ctx.Err(); err != nil {
		return err
	}
	h, st := e.p.OpenKey(parent, unicodeString(name), deleteAccess)
	e.trace("OpenKey", p, st)
	if st != ntstatus.Success {
		return ntstatus.TranslatePath(op, p.String(), st)
	}
	defer e.closeHandle(op, p.String(), h, &err)

	return e.deleteTree(ctx, h, p.String())
}

// deleteTree removes every subkey of key depth-first and then key itself.
// Subkeys are always taken at index 0 since each deletion shifts the rest
// down. Names come back with their explicit length, so hidden children are
// opened and removed like any other.
func (e *Engine) deleteTree(ctx context.Context, key ntreg.Handle, path string) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		name, ok, err := e.subkeyAt(key, 0, path)
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		if err := e.deleteChild(ctx, key, name, path); err != nil {
			return err
		}
	}

	st := e.p.DeleteKey(key)
	e.log.Debug("provider call", "call", "DeleteKey", "path", path, "status", st.String())
	return ntstatus.TranslatePath("delete key", path, st)
}

func (e *Engine) deleteChild(ctx context.Context, parent ntreg.Handle, name []uint16, path string) (err error) {
	display, _ := trickname.Decode(name)
	child := regpath.Join(path, display)

	h, st := e.p.OpenKey(parent, ntreg.UnicodeString{Length: uint16(len(name) * 2), Buffer: name}, deleteAccess)
	e.log.Debug("provider call", "call", "OpenKey", "path", child, "status", st.String())
	if st != ntstatus.Success {
		return ntstatus.TranslatePath("delete key", child, st)
	}
	defer e.closeHandle("delete key", child, h, &err)

	return e.deleteTree(ctx, h, child)
}

// openContainer opens the key holding p's leaf by its visible path. The hive
// root is opened directly when the path has a single segment. Any failure is
// reported as ErrOpenKey wrapping the translated status.
func (e *Engine) openContainer(ctx context.Context, op string, p regpath.Path, access ntreg.AccessMask) (h ntreg.Handle, err error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if p.Container == "" {
		root, st := e.p.OpenRoot(p.Hive, access)
		e.trace("OpenRoot", p, st)
		if st != ntstatus.Success {
			return 0, openKeyError(op, p, st)
		}
		return root, nil
	}

	name, err := trickname.Encode(p.Container, false)
	if err != nil {
		return 0, err
	}
	root, st := e.p.OpenRoot(p.Hive, rootAccess)
	e.trace("OpenRoot", p, st)
	if st != ntstatus.Success {
		return 0, openKeyError(op, p, st)
	}

	h, st = e.p.OpenKey(root, unicodeString(name), access)
	e.trace("OpenKey", p, st)
	if st != ntstatus.Success {
		err = openKeyError(op, p, st)
	}
	e.closeHandle(op, p.String(), root, &err)
	if err != nil {
		if st == ntstatus.Success {
			e.closeHandle(op, p.String(), h, &err)
		}
		return 0, err
	}
	return h, nil
}

func openKeyError(op string, p regpath.Path, st ntstatus.Status) error {
	e := types.ErrOpenKey.With(op, p.String()).Wrap(ntstatus.Translate(op, st))
	e.Status = uint32(st)
	return e
}

// closeHandle releases h. A close failure replaces a nil *err; when the
// operation has already failed the close failure is only logged.
func (e *Engine) closeHandle(op, path string, h ntreg.Handle, err *error) {
	st := e.p.Close(h)
	if st == ntstatus.Success {
		return
	}
	cerr := ntstatus.TranslatePath(op, path, st)
	if *err == nil {
		*err = cerr
		return
	}
	e.log.Warn("close handle failed", "op", op, "path", path, "status", st.String(), "error", cerr)
}

func (e *Engine) trace(call string, p regpath.Path, st ntstatus.Status) {
	e.log.Debug("provider call", "call", call, "path", p.String(), "status", st.String())
}

func unicodeString(n trickname.Name) ntreg.UnicodeString {
	return ntreg.UnicodeString{Length: n.Length, Buffer: n.Encoded}
}
