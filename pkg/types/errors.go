package types

import (
	"errors"
	"fmt"
)

// ErrKind classifies errors so callers can branch on intent rather than text.
type ErrKind int

const (
	ErrKindTooMany         ErrKind = iota + 1 // same argument given more than once
	ErrKindMultipleOps                        // more than one of create/delete/query
	ErrKindMissingArgValue                    // argument expects a value, none given
	ErrKindInvalidType                        // unsupported value type or undecodable text
	ErrKindInvalidKey                         // malformed key path
	ErrKindInvalidHive                        // unknown hive token
	ErrKindNeedValue                          // value type given without data
	ErrKindOpenKey                            // the containing key could not be opened
	ErrKindUnknownStatus                      // NTSTATUS outside the known mapping
	ErrKindUnavailable                        // key or value does not exist
	ErrKindBufferSize                         // query buffer negotiation failed
	ErrKindDelete                             // the provider refused the delete
	ErrKindHandle                             // invalid handle
	ErrKindInvalidArgument                    // bad parameter or programming error
	ErrKindPermission                         // access denied
	ErrKindOutOfMemory                        // allocation refused or failed
)

var kindNames = map[ErrKind]string{
	ErrKindTooMany:         "too-many",
	ErrKindMultipleOps:     "multiple-operations",
	ErrKindMissingArgValue: "missing-argument-value",
	ErrKindInvalidType:     "invalid-type",
	ErrKindInvalidKey:      "invalid-key",
	ErrKindInvalidHive:     "invalid-hive",
	ErrKindNeedValue:       "needs-value",
	ErrKindOpenKey:         "open-key-failed",
	ErrKindUnknownStatus:   "unknown-status",
	ErrKindUnavailable:     "unavailable",
	ErrKindBufferSize:      "buffer-size",
	ErrKindDelete:          "delete-refused",
	ErrKindHandle:          "bad-handle",
	ErrKindInvalidArgument: "invalid-argument",
	ErrKindPermission:      "permission-denied",
	ErrKindOutOfMemory:     "out-of-memory",
}

func (k ErrKind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Error is a typed error with optional context and underlying cause.
type Error struct {
	Kind   ErrKind
	Msg    string
	Op     string // operation that failed ("set", "query", ...), optional
	Path   string // registry path involved, optional
	Status uint32 // raw NTSTATUS when the error came from the provider
	Err    error  // optional underlying cause
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	msg := e.Msg
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Path != "" {
		msg += " (" + e.Path + ")"
	}
	if e.Status != 0 {
		msg += fmt.Sprintf(" [status 0x%08X]", e.Status)
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same Kind, so the sentinels below work with
// errors.Is regardless of the context attached.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) || t == nil {
		return false
	}
	return e.Kind == t.Kind
}

// With returns a copy of e annotated with an operation and path.
func (e *Error) With(op, path string) *Error {
	c := *e
	c.Op = op
	c.Path = path
	return &c
}

// Wrap returns a copy of e with cause attached.
func (e *Error) Wrap(cause error) *Error {
	c := *e
	c.Err = cause
	return &c
}

// Sentinels, one per kind. Messages follow the wording of the command-line tool.
var (
	ErrTooMany         = &Error{Kind: ErrKindTooMany, Msg: "too many of the same argument specified"}
	ErrMultipleOps     = &Error{Kind: ErrKindMultipleOps, Msg: "too many operations specified"}
	ErrMissingArgValue = &Error{Kind: ErrKindMissingArgValue, Msg: "argument expecting value, none provided"}
	ErrInvalidType     = &Error{Kind: ErrKindInvalidType, Msg: "invalid registry value type provided"}
	ErrInvalidKey      = &Error{Kind: ErrKindInvalidKey, Msg: "invalid registry key"}
	ErrInvalidHive     = &Error{Kind: ErrKindInvalidHive, Msg: "invalid hive provided"}
	ErrNeedValue       = &Error{Kind: ErrKindNeedValue, Msg: "specified type expects a value"}
	ErrOpenKey         = &Error{Kind: ErrKindOpenKey, Msg: "failed to open the registry key"}
	ErrUnknownStatus   = &Error{Kind: ErrKindUnknownStatus, Msg: "unknown error from the ntdll API"}
	ErrUnavailable     = &Error{Kind: ErrKindUnavailable, Msg: "registry key is unavailable"}
	ErrBufferSize      = &Error{Kind: ErrKindBufferSize, Msg: "the query buffer is too small"}
	ErrDelete          = &Error{Kind: ErrKindDelete, Msg: "unable to delete the registry key"}
	ErrHandle          = &Error{Kind: ErrKindHandle, Msg: "invalid handle"}
	ErrInvalidArgument = &Error{Kind: ErrKindInvalidArgument, Msg: "invalid argument"}
	ErrPermission      = &Error{Kind: ErrKindPermission, Msg: "permission denied"}
	ErrOutOfMemory     = &Error{Kind: ErrKindOutOfMemory, Msg: "out of memory"}
)

// KindOf returns the Kind of the outermost *Error in err's chain, or 0.
func KindOf(err error) ErrKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}
