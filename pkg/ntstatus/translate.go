package ntstatus

import "github.com/joshuapare/invisreg/pkg/types"

// Translate maps a provider status to the error taxonomy. Success yields nil.
// STATUS_NO_MORE_ENTRIES is reported as unavailable here; enumeration loops
// treat it as their terminal condition before calling Translate.
func Translate(op string, st Status) error {
	if st == Success {
		return nil
	}
	base := kindFor(st)
	e := base.With(op, "")
	e.Status = uint32(st)
	return e
}

// TranslatePath is Translate with the registry path attached to the error.
func TranslatePath(op, path string, st Status) error {
	if st == Success {
		return nil
	}
	e := kindFor(st).With(op, path)
	e.Status = uint32(st)
	return e
}

func kindFor(st Status) *types.Error {
	switch st {
	case CannotDelete, KeyDeleted:
		return types.ErrDelete
	case AccessDenied:
		return types.ErrPermission
	case InvalidHandle:
		return types.ErrHandle
	case ObjectNameNotFound, ObjectPathNotFound, NoMoreEntries:
		return types.ErrUnavailable
	case BufferOverflow, BufferTooSmall:
		return types.ErrBufferSize
	case InvalidParameter, ObjectNameInvalid, ObjectPathSyntaxBad:
		return types.ErrInvalidArgument
	case NoMemory, InsufficientResource:
		return types.ErrOutOfMemory
	default:
		return types.ErrUnknownStatus
	}
}
