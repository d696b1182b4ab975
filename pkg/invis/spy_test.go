package invis

import (
	"sync"

	"github.com/joshuapare/invisreg/pkg/ntreg"
	"github.com/joshuapare/invisreg/pkg/ntstatus"
	"github.com/joshuapare/invisreg/pkg/types"
)

// spy wraps a provider, counts calls by name and lets tests rewrite the
// answers of the query entry points.
type spy struct {
	ntreg.Provider

	mu    sync.Mutex
	calls map[string]int

	queryValue  func(n uint32, st ntstatus.Status) (uint32, ntstatus.Status)
	enumValue   func(index, n uint32, st ntstatus.Status) (uint32, ntstatus.Status)
	closeStatus ntstatus.Status
}

func newSpy(p ntreg.Provider) *spy {
	return &spy{Provider: p, calls: make(map[string]int)}
}

func (s *spy) count(name string) {
	s.mu.Lock()
	s.calls[name]++
	s.mu.Unlock()
}

func (s *spy) Calls(name string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[name]
}

func (s *spy) Total() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, n := range s.calls {
		total += n
	}
	return total
}

func (s *spy) OpenRoot(hive types.Hive, access ntreg.AccessMask) (ntreg.Handle, ntstatus.Status) {
	s.count("OpenRoot")
	return s.Provider.OpenRoot(hive, access)
}

func (s *spy) CreateKey(root ntreg.Handle, name ntreg.UnicodeString, access ntreg.AccessMask, options uint32) (ntreg.Handle, ntreg.Disposition, ntstatus.Status) {
	s.count("CreateKey")
	return s.Provider.CreateKey(root, name, access, options)
}

func (s *spy) OpenKey(root ntreg.Handle, name ntreg.UnicodeString, access ntreg.AccessMask) (ntreg.Handle, ntstatus.Status) {
	s.count("OpenKey")
	return s.Provider.OpenKey(root, name, access)
}

func (s *spy) SetValueKey(key ntreg.Handle, name ntreg.UnicodeString, valueType uint32, data []byte) ntstatus.Status {
	s.count("SetValueKey")
	return s.Provider.SetValueKey(key, name, valueType, data)
}

func (s *spy) DeleteKey(key ntreg.Handle) ntstatus.Status {
	s.count("DeleteKey")
	return s.Provider.DeleteKey(key)
}

func (s *spy) DeleteValueKey(key ntreg.Handle, name ntreg.UnicodeString) ntstatus.Status {
	s.count("DeleteValueKey")
	return s.Provider.DeleteValueKey(key, name)
}

func (s *spy) QueryKey(key ntreg.Handle, class ntreg.KeyInformationClass, buf []byte) (uint32, ntstatus.Status) {
	s.count("QueryKey")
	return s.Provider.QueryKey(key, class, buf)
}

func (s *spy) QueryValueKey(key ntreg.Handle, name ntreg.UnicodeString, class ntreg.KeyValueInformationClass, buf []byte) (uint32, ntstatus.Status) {
	s.count("QueryValueKey")
	n, st := s.Provider.QueryValueKey(key, name, class, buf)
	if s.queryValue != nil {
		return s.queryValue(n, st)
	}
	return n, st
}

func (s *spy) EnumerateKey(key ntreg.Handle, index uint32, class ntreg.KeyInformationClass, buf []byte) (uint32, ntstatus.Status) {
	s.count("EnumerateKey")
	return s.Provider.EnumerateKey(key, index, class, buf)
}

func (s *spy) EnumerateValueKey(key ntreg.Handle, index uint32, class ntreg.KeyValueInformationClass, buf []byte) (uint32, ntstatus.Status) {
	s.count("EnumerateValueKey")
	n, st := s.Provider.EnumerateValueKey(key, index, class, buf)
	if s.enumValue != nil {
		return s.enumValue(index, n, st)
	}
	return n, st
}

func (s *spy) Close(h ntreg.Handle) ntstatus.Status {
	s.count("Close")
	st := s.Provider.Close(h)
	if s.closeStatus != ntstatus.Success {
		return s.closeStatus
	}
	return st
}
