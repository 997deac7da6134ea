// Package metrics exposes Prometheus collectors for the authorization
// pipeline. Collectors are owned by the app and injected, never package
// globals, so tests can construct isolated registries.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Pipeline holds the counters incremented by the middleware chain.
type Pipeline struct {
	registry *prometheus.Registry

	// RateLimitDecisions counts admissions and rejections per traffic class.
	RateLimitDecisions *prometheus.CounterVec

	// AuthOutcomes counts authentication outcomes: authenticated, anonymous,
	// rejected.
	AuthOutcomes *prometheus.CounterVec

	// OwnershipDenied counts 403s issued by the ownership guard.
	OwnershipDenied prometheus.Counter
}

// NewPipeline creates and registers the pipeline collectors on a fresh
// registry.
func NewPipeline() *Pipeline {
	registry := prometheus.NewRegistry()

	p := &Pipeline{
		registry: registry,
		RateLimitDecisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "feeling_ratelimit_decisions_total",
			Help: "Rate limiter admissions and rejections by traffic class.",
		}, []string{"class", "decision"}),
		AuthOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "feeling_auth_outcomes_total",
			Help: "Token authentication outcomes.",
		}, []string{"outcome"}),
		OwnershipDenied: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "feeling_ownership_denied_total",
			Help: "Mutations denied by the resource ownership guard.",
		}),
	}

	registry.MustRegister(p.RateLimitDecisions, p.AuthOutcomes, p.OwnershipDenied)
	return p
}

// Handler returns the HTTP handler serving the /metrics endpoint.
func (p *Pipeline) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}
