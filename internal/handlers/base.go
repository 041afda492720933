// Package handlers provides HTTP handlers for the alert-service API.
package handlers

// Handlers wraps dependencies for HTTP handlers.
type Handlers struct {
	alerts  AlertService
	sweeps  SweepService
	metrics MetricsSource
}

// NewHandlers creates a new handlers instance. metrics may be nil, in
// which case the metrics endpoint reports zeroes.
func NewHandlers(alerts AlertService, sweeps SweepService, metrics MetricsSource) *Handlers {
	return &Handlers{
		alerts:  alerts,
		sweeps:  sweeps,
		metrics: metrics,
	}
}
