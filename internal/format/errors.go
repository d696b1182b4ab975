package format

import "errors"

var (
	// ErrTruncated indicates the buffer lacked the bytes required for a structure.
	ErrTruncated = errors.New("format: truncated buffer")
	// ErrBadLength indicates a declared length or offset is inconsistent.
	ErrBadLength = errors.New("format: inconsistent length")
	// ErrOddLength indicates a UTF-16 name with an odd byte count.
	ErrOddLength = errors.New("format: odd UTF-16 byte length")
)
