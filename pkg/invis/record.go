package invis

import (
	"bytes"
	"fmt"

	"github.com/joshuapare/invisreg/internal/format"
	"github.com/joshuapare/invisreg/internal/trickname"
	"github.com/joshuapare/invisreg/pkg/types"
)

// Record is one value returned by a query. Name has the hidden prefix
// stripped; Invisible reports whether it was there.
type Record struct {
	Type      types.RegType
	Name      string
	Data      []byte
	Invisible bool
}

// Result holds the outcome of a query: Value on a direct hit, Records when
// the path named a key. Exactly one is set.
type Result struct {
	Value   *Record
	Records []Record
}

// Release wipes every data buffer and drops the records. It is safe on a
// zero Result.
func (r *Result) Release() {
	if r == nil {
		return
	}
	if r.Value != nil {
		clear(r.Value.Data)
		r.Value.Data = nil
		r.Value = nil
	}
	Release(r.Records)
	r.Records = nil
}

// Release wipes the data buffers of records. A nil or empty slice is a no-op.
func Release(records []Record) {
	for i := range records {
		clear(records[i].Data)
		records[i].Data = nil
	}
}

// Len returns the number of records held.
func (r Result) Len() int {
	if r.Value != nil {
		return 1
	}
	return len(r.Records)
}

// All returns the held records as one slice.
func (r Result) All() []Record {
	if r.Value != nil {
		return []Record{*r.Value}
	}
	return r.Records
}

// decodeRecord turns a KEY_VALUE_FULL_INFORMATION record into a Record. The
// data is copied so the scratch buffer can be reused.
func decodeRecord(b []byte) (Record, error) {
	kv, err := format.DecodeKeyValueFull(b)
	if err != nil {
		return Record{}, fmt.Errorf("decode value: %w", err)
	}
	name, hidden := trickname.Decode(kv.Name)
	return Record{
		Type:      types.RegType(kv.Type),
		Name:      name,
		Data:      bytes.Clone(kv.Data),
		Invisible: hidden,
	}, nil
}
