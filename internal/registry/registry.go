// Package registry provides the capability registry: the static catalog
// of responders and their routing metadata.
package registry

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/kotori-ai/kotori/pkg/models"
)

// ErrNotFound is returned when a responder id is not registered.
var ErrNotFound = errors.New("responder not found")

// Registry is the catalog of responders. It is built once at startup and
// read-only thereafter; registration is idempotent by id and safe for
// concurrent readers.
type Registry struct {
	// byID maps responder id to its descriptor.
	byID map[string]models.Descriptor
	// order preserves registration order for keyword tie-breaking.
	order []string
	// defaultID is the generalist responder substituted for unresolvable ids.
	defaultID string
	// mu protects byID and order.
	mu sync.RWMutex
}

// New creates an empty registry with the given default responder id.
func New(defaultID string) *Registry {
	return &Registry{
		byID:      make(map[string]models.Descriptor),
		defaultID: defaultID,
	}
}

// Register adds a descriptor to the registry. Registering an id that
// already exists replaces its descriptor without changing its position
// in the registration order.
func (r *Registry) Register(d models.Descriptor) error {
	if d.ID == "" {
		return fmt.Errorf("register: descriptor has empty id")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[d.ID]; !exists {
		r.order = append(r.order, d.ID)
	}
	r.byID[d.ID] = d.Clone()
	return nil
}

// Describe returns the descriptor for the given id. Repeated calls return
// an identical descriptor absent re-registration.
func (r *Registry) Describe(id string) (models.Descriptor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.byID[id]
	if !ok {
		return models.Descriptor{}, fmt.Errorf("describe %q: %w", id, ErrNotFound)
	}
	return d.Clone(), nil
}

// Has reports whether the id resolves in the registry.
func (r *Registry) Has(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.byID[id]
	return ok
}

// DefaultID returns the generalist responder id used for substitution.
func (r *Registry) DefaultID() string {
	return r.defaultID
}

// Resolve returns id if it is registered, otherwise the default id.
func (r *Registry) Resolve(id string) string {
	if r.Has(id) {
		return id
	}
	return r.defaultID
}

// ResolveKeywords returns the ids of all responders whose keyword set has
// at least one case-normalized substring match in text, in registration order.
func (r *Registry) ResolveKeywords(text string) []string {
	lower := strings.ToLower(text)

	r.mu.RLock()
	defer r.mu.RUnlock()

	var ids []string
	for _, id := range r.order {
		d := r.byID[id]
		for _, kw := range d.Keywords {
			if kw != "" && strings.Contains(lower, strings.ToLower(kw)) {
				ids = append(ids, id)
				break
			}
		}
	}
	return ids
}

// All returns copies of every registered descriptor in registration order.
func (r *Registry) All() []models.Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.Descriptor, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.byID[id].Clone())
	}
	return out
}

// Count returns the number of registered responders.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID)
}
