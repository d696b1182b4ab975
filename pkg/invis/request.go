package invis

import (
	"fmt"

	"github.com/joshuapare/invisreg/internal/regpath"
	"github.com/joshuapare/invisreg/pkg/types"
)

// Operation is the base operation of a Request.
type Operation int

const (
	OpCreateOrSet Operation = iota + 1
	OpDelete
	OpQuery
)

func (o Operation) String() string {
	switch o {
	case OpCreateOrSet:
		return "create"
	case OpDelete:
		return "delete"
	case OpQuery:
		return "query"
	default:
		return fmt.Sprintf("op(%d)", int(o))
	}
}

// Request describes one operation.
//
// Container selects a key rather than a value. Visible stores or looks up
// the plain name instead of the hidden one. Type and Data are required when
// setting a value and ignored otherwise.
type Request struct {
	Op        Operation
	Container bool
	Visible   bool
	Path      string
	Type      types.RegType
	Data      []byte
}

// validate checks everything that can be checked without the provider.
func (r Request) validate() (regpath.Path, error) {
	switch r.Op {
	case OpCreateOrSet, OpDelete, OpQuery:
	default:
		return regpath.Path{}, types.ErrInvalidArgument.With(r.Op.String(), r.Path).
			Wrap(fmt.Errorf("unknown operation %d", int(r.Op)))
	}

	p, err := regpath.Resolve(r.Path)
	if err != nil {
		return regpath.Path{}, err
	}

	if r.Op != OpCreateOrSet || r.Container {
		return p, nil
	}
	op := r.Op.String()
	if !r.Type.Writable() {
		return regpath.Path{}, types.ErrInvalidType.With(op, r.Path).Wrap(fmt.Errorf("%s", r.Type))
	}
	if len(r.Data) == 0 {
		return regpath.Path{}, types.ErrNeedValue.With(op, r.Path)
	}
	if n := r.Type.FixedSize(); n != 0 && len(r.Data) != n {
		return regpath.Path{}, types.ErrInvalidArgument.With(op, r.Path).
			Wrap(fmt.Errorf("%s needs %d bytes, got %d", r.Type, n, len(r.Data)))
	}
	return p, nil
}
