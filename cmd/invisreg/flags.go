package main

import (
	"github.com/joshuapare/invisreg/pkg/types"
)

// onceString is a string flag that may be given at most once. Repeating it
// fails with ErrTooMany instead of keeping the last value.
type onceString struct {
	name  string
	value string
	set   bool
}

func (o *onceString) String() string { return o.value }

func (o *onceString) Set(s string) error {
	if o.set {
		return types.ErrTooMany.With("--"+o.name, "")
	}
	o.value = s
	o.set = true
	return nil
}

func (o *onceString) Type() string { return "string" }

func (o *onceString) reset() {
	o.value = ""
	o.set = false
}
