// Package metrics exposes prometheus instrumentation for the admission
// pipeline and the grant scheduler.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/fx"
)

type Metrics struct {
	AdmissionDecisions *prometheus.CounterVec
	GrantResults       *prometheus.CounterVec
	HTTPRequests       *prometheus.CounterVec
}

// New registers the collectors on the default registry.
func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

// NewWithRegisterer registers on a caller-supplied registry; tests use
// a private one so parallel packages do not collide.
func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		AdmissionDecisions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "deckforge_admission_decisions_total",
			Help: "Admission pipeline outcomes by decision.",
		}, []string{"decision", "policy"}),
		GrantResults: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "deckforge_grant_results_total",
			Help: "Monthly grant job results per bucket.",
		}, []string{"result"}),
		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "deckforge_http_requests_total",
			Help: "HTTP requests by route and status.",
		}, []string{"method", "route", "status"}),
	}
}

const (
	DecisionAdmitted     = "admitted"
	DecisionQueued       = "queued"
	DecisionBypassed     = "bypassed"
	DecisionTierDenied   = "tier_denied"
	DecisionNoCredits    = "no_credits"
	DecisionLimitReached = "limit_reached"
	DecisionError        = "error"

	GrantResultGranted = "granted"
	GrantResultSkipped = "skipped"
	GrantResultFailed  = "failed"
)

// Module provides the shared metrics handle.
var Module = fx.Module("metrics",
	fx.Provide(New),
)
