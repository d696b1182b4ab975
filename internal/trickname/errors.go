package trickname

import (
	"errors"
	"fmt"
)

var (
	errInvalidUTF8   = errors.New("trickname: invalid UTF-8")
	errUndefinedByte = errors.New("trickname: byte undefined in codepage")
)

type unknownCodepage string

func (c unknownCodepage) Error() string {
	return fmt.Sprintf("trickname: unknown codepage %q", string(c))
}
