// Package source defines the contract every exchange integration
// implements and the registry the orchestrator runs them from.
package source

import (
	"context"

	"DerivPulse/internal/domain/models"
)

// Adapter is a single exchange integration. Fetch returns the normalized
// records for one data kind:
//
//   - an empty slice means "no data" (health: empty), not an error;
//   - a non-nil error means unrecoverable source failure (health: error);
//   - adapters perform all HTTP through the resilient client and must not
//     mutate shared state.
//
// A kind the adapter does not serve returns an empty slice.
type Adapter interface {
	Name() string
	Fetch(ctx context.Context, kind models.Kind) ([]models.NormalizedRecord, error)
}

// Registry holds adapters in registration order. The order is the merge
// order of the orchestrator, so it must be deterministic.
type Registry struct {
	adapters []Adapter
}

// NewRegistry creates a registry with the given adapters, in order.
func NewRegistry(adapters ...Adapter) *Registry {
	return &Registry{adapters: adapters}
}

// Register appends an adapter.
func (r *Registry) Register(a Adapter) {
	r.adapters = append(r.adapters, a)
}

// Adapters returns the registered adapters in registration order.
func (r *Registry) Adapters() []Adapter {
	return r.adapters
}

// Len returns the number of registered adapters.
func (r *Registry) Len() int { return len(r.adapters) }
