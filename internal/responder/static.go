package responder

import (
	"context"

	"github.com/kotori-ai/kotori/internal/promptctx"
)

// StaticResponder returns a fixed answer or error. It stands in for a
// real responder in tests and for catalog entries whose backing
// capability is not yet wired.
type StaticResponder struct {
	id   string
	text string
	err  error
}

// NewStaticResponder creates a responder that always returns text.
func NewStaticResponder(id, text string) *StaticResponder {
	return &StaticResponder{id: id, text: text}
}

// NewFailingResponder creates a responder that always returns err.
func NewFailingResponder(id string, err error) *StaticResponder {
	return &StaticResponder{id: id, err: err}
}

// ID returns the responder's registry id.
func (r *StaticResponder) ID() string {
	return r.id
}

// Invoke returns the configured text or error, honoring ctx cancellation.
func (r *StaticResponder) Invoke(ctx context.Context, _ promptctx.Payload) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	default:
	}
	if r.err != nil {
		return "", r.err
	}
	return r.text, nil
}

// FuncResponder adapts a function to the Responder interface.
type FuncResponder struct {
	id string
	fn func(ctx context.Context, payload promptctx.Payload) (string, error)
}

// NewFuncResponder creates a responder backed by fn.
func NewFuncResponder(id string, fn func(ctx context.Context, payload promptctx.Payload) (string, error)) *FuncResponder {
	return &FuncResponder{id: id, fn: fn}
}

// ID returns the responder's registry id.
func (r *FuncResponder) ID() string {
	return r.id
}

// Invoke calls the wrapped function.
func (r *FuncResponder) Invoke(ctx context.Context, payload promptctx.Payload) (string, error) {
	return r.fn(ctx, payload)
}
