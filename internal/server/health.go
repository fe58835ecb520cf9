package server

import "context"

// HealthProbe defines behaviour for readiness probes.
type HealthProbe interface {
	Probe(ctx context.Context) error
}

// ProbeFunc adapts a function to the HealthProbe interface.
type ProbeFunc func(ctx context.Context) error

// Probe implements the HealthProbe interface.
func (f ProbeFunc) Probe(ctx context.Context) error {
	return f(ctx)
}
