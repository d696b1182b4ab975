// Package ntstatus names the NTSTATUS codes the registry provider reports and
// translates them into the invisreg error taxonomy.
package ntstatus

import "fmt"

// Status is a raw NTSTATUS value as returned by ntdll.
type Status uint32

const (
	Success              Status = 0x00000000
	BufferOverflow       Status = 0x80000005
	NoMoreEntries        Status = 0x8000001A
	InvalidHandle        Status = 0xC0000008
	InvalidParameter     Status = 0xC000000D
	NoMemory             Status = 0xC0000017
	AccessDenied         Status = 0xC0000022
	BufferTooSmall       Status = 0xC0000023
	ObjectNameInvalid    Status = 0xC0000033
	ObjectNameNotFound   Status = 0xC0000034
	ObjectPathNotFound   Status = 0xC000003A
	ObjectPathSyntaxBad  Status = 0xC000003B
	ProcedureNotFound    Status = 0xC000007A
	InsufficientResource Status = 0xC000009A
	NotSupported         Status = 0xC00000BB
	CannotDelete         Status = 0xC0000121
	KeyDeleted           Status = 0xC000017C
)

var names = map[Status]string{
	Success:              "STATUS_SUCCESS",
	BufferOverflow:       "STATUS_BUFFER_OVERFLOW",
	NoMoreEntries:        "STATUS_NO_MORE_ENTRIES",
	InvalidHandle:        "STATUS_INVALID_HANDLE",
	InvalidParameter:     "STATUS_INVALID_PARAMETER",
	NoMemory:             "STATUS_NO_MEMORY",
	AccessDenied:         "STATUS_ACCESS_DENIED",
	BufferTooSmall:       "STATUS_BUFFER_TOO_SMALL",
	ObjectNameInvalid:    "STATUS_OBJECT_NAME_INVALID",
	ObjectNameNotFound:   "STATUS_OBJECT_NAME_NOT_FOUND",
	ObjectPathNotFound:   "STATUS_OBJECT_PATH_NOT_FOUND",
	ObjectPathSyntaxBad:  "STATUS_OBJECT_PATH_SYNTAX_BAD",
	ProcedureNotFound:    "STATUS_PROCEDURE_NOT_FOUND",
	InsufficientResource: "STATUS_INSUFFICIENT_RESOURCES",
	NotSupported:         "STATUS_NOT_SUPPORTED",
	CannotDelete:         "STATUS_CANNOT_DELETE",
	KeyDeleted:           "STATUS_KEY_DELETED",
}

func (s Status) String() string {
	if n, ok := names[s]; ok {
		return n
	}
	return fmt.Sprintf("NTSTATUS(0x%08X)", uint32(s))
}

// IsSuccess reports whether s is in the success range (severity 0).
func (s Status) IsSuccess() bool {
	return s>>30 == 0
}

// NeedsBuffer reports whether s asks the caller to retry with a larger
// buffer. Both codes carry the required size in ResultLength.
func (s Status) NeedsBuffer() bool {
	return s == BufferTooSmall || s == BufferOverflow
}

// NotFound reports whether s means the named object does not exist.
func (s Status) NotFound() bool {
	return s == ObjectNameNotFound || s == ObjectPathNotFound
}
