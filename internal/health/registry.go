// Package health tracks per-rail connector status for the smart resolver's
// health factor. Real connector monitors push status changes in; the engine
// only ever reads a snapshot.
package health

import (
	"context"
	"sync"

	"github.com/hazman-azhar/kitapay/backend/internal/domain"
)

// Registry is a mutex-guarded in-memory view of connector health, keyed by
// rail name. All catalog rails start healthy.
type Registry struct {
	mu       sync.RWMutex
	statuses map[string]domain.HealthStatus
}

// NewRegistry instantiates a registry with every catalog rail healthy.
func NewRegistry() *Registry {
	statuses := make(map[string]domain.HealthStatus)
	for _, r := range domain.Catalog() {
		statuses[r.Name] = domain.HealthHealthy
	}
	return &Registry{statuses: statuses}
}

// Set records a new status for the named rail.
func (r *Registry) Set(rail string, status domain.HealthStatus) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statuses[rail] = status
}

// Status returns the current status for one rail. Unknown rails are
// reported healthy so a missing monitor never blocks a payment.
func (r *Registry) Status(rail string) domain.HealthStatus {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if s, ok := r.statuses[rail]; ok {
		return s
	}
	return domain.HealthHealthy
}

// Statuses returns a copy of the full status map.
func (r *Registry) Statuses(context.Context) (map[string]domain.HealthStatus, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]domain.HealthStatus, len(r.statuses))
	for k, v := range r.statuses {
		out[k] = v
	}
	return out, nil
}
