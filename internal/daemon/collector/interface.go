// Package collector provides the workers that fetch lists from the backend
// and emit store updates.
package collector

import (
	"context"

	"github.com/grovetools/casemgmt/internal/daemon/store"
)

// Collector fetches data and emits updates.
type Collector interface {
	// Name returns the collector's name for logging.
	Name() string

	// Run performs one fetch and emits at most one update per list it owns.
	// On error nothing is emitted, so the store keeps its previous list.
	// It can read from the store (thread-safe) for context.
	Run(ctx context.Context, st *store.Store, updates chan<- store.Update) error
}
