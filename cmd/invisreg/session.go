package main

import (
	"context"

	"github.com/joshuapare/invisreg/cmd/invisreg/logger"
	"github.com/joshuapare/invisreg/internal/regpath"
	"github.com/joshuapare/invisreg/pkg/invis"
	"github.com/joshuapare/invisreg/pkg/ntreg"
)

// newProvider returns the registry backend for a command. Tests replace it.
var newProvider = func() (ntreg.Provider, error) {
	if simulate {
		return ntreg.NewMemory(), nil
	}
	n := ntreg.NewNative()
	if err := n.Init(); err != nil {
		return nil, err
	}
	return n, nil
}

// session is one command's engine. When simulating, containers are created
// on demand so a dry run exercises the operation itself.
type session struct {
	eng *invis.Engine
	mem *ntreg.Memory
}

func openSession() (*session, error) {
	p, err := newProvider()
	if err != nil {
		return nil, err
	}
	s := &session{eng: invis.New(p, invis.WithLogger(logger.L))}
	if m, ok := p.(*ntreg.Memory); ok && simulate {
		s.mem = m
		printVerbose("Simulating against an in-memory registry\n")
	}
	return s, nil
}

func (s *session) run(ctx context.Context, req invis.Request) (invis.Result, error) {
	s.seed(req.Path)
	return s.eng.Perform(ctx, req)
}

func (s *session) stat(ctx context.Context, path string, visible bool) (invis.KeyInfo, error) {
	if p, err := regpath.Resolve(path); err == nil && s.mem != nil {
		s.mem.MkdirAll(p.Hive, p.Full())
	}
	return s.eng.Stat(ctx, path, visible)
}

func (s *session) seed(path string) {
	if s.mem == nil {
		return
	}
	p, err := regpath.Resolve(path)
	if err != nil || p.Container == "" {
		return
	}
	s.mem.MkdirAll(p.Hive, p.Container)
}
