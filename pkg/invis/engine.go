package invis

import (
	"context"
	"io"
	"log/slog"

	"github.com/joshuapare/invisreg/pkg/ntreg"
	"github.com/joshuapare/invisreg/pkg/types"
)

// Engine performs operations against a registry provider.
type Engine struct {
	p   ntreg.Provider
	log *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger provider calls and completed operations are
// reported to. The default discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// New returns an Engine bound to p.
func New(p ntreg.Provider, opts ...Option) *Engine {
	e := &Engine{
		p:   p,
		log: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Set creates or replaces a hidden value.
func (e *Engine) Set(ctx context.Context, path string, typ types.RegType, data []byte) error {
	_, err := e.Perform(ctx, Request{Op: OpCreateOrSet, Path: path, Type: typ, Data: data})
	return err
}

// CreateKey opens or creates a hidden key.
func (e *Engine) CreateKey(ctx context.Context, path string) error {
	_, err := e.Perform(ctx, Request{Op: OpCreateOrSet, Container: true, Path: path})
	return err
}

// Delete removes a hidden value.
func (e *Engine) Delete(ctx context.Context, path string) error {
	_, err := e.Perform(ctx, Request{Op: OpDelete, Path: path})
	return err
}

// DeleteKey removes a hidden key and everything beneath it.
func (e *Engine) DeleteKey(ctx context.Context, path string) error {
	_, err := e.Perform(ctx, Request{Op: OpDelete, Container: true, Path: path})
	return err
}

// Query looks path up as a hidden value, falling back to listing the values
// of the key at path. The caller must Release the result.
func (e *Engine) Query(ctx context.Context, path string) (Result, error) {
	return e.Perform(ctx, Request{Op: OpQuery, Path: path})
}
