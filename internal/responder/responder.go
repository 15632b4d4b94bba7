// Package responder defines the responder capability interface and its
// implementations. Real and placeholder responders are interchangeable
// to the routing pipeline.
package responder

import (
	"context"
	"fmt"
	"sync"

	"github.com/kotori-ai/kotori/internal/promptctx"
)

// Responder produces a domain-specific answer for an assembled payload.
type Responder interface {
	// ID returns the responder's registry id.
	ID() string
	// Invoke produces the raw answer text. Latency is opaque to the
	// caller; cancellation is signalled through ctx.
	Invoke(ctx context.Context, payload promptctx.Payload) (string, error)
}

// Invoker dispatches a payload to the responder registered under an id.
type Invoker interface {
	Invoke(ctx context.Context, responderID string, payload promptctx.Payload) (string, error)
}

// Mux routes invocations to registered Responder implementations.
// It implements Invoker.
type Mux struct {
	responders map[string]Responder
	mu         sync.RWMutex
}

// NewMux creates an empty Mux.
func NewMux() *Mux {
	return &Mux{responders: make(map[string]Responder)}
}

// Register adds a responder implementation, replacing any previous one
// under the same id.
func (m *Mux) Register(r Responder) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responders[r.ID()] = r
}

// Invoke dispatches to the responder registered under responderID.
func (m *Mux) Invoke(ctx context.Context, responderID string, payload promptctx.Payload) (string, error) {
	m.mu.RLock()
	r, ok := m.responders[responderID]
	m.mu.RUnlock()

	if !ok {
		return "", fmt.Errorf("invoke: no responder implementation for %q", responderID)
	}
	return r.Invoke(ctx, payload)
}

// Has reports whether an implementation is registered for the id.
func (m *Mux) Has(responderID string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.responders[responderID]
	return ok
}
