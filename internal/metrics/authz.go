package metrics

import "github.com/prometheus/client_golang/prometheus"

// Authorization Prometheus metrics.
var (
	AuthzDecisionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "annodex",
			Name:      "authz_decisions_total",
			Help:      "Authorization guard decisions",
		},
		[]string{"decision"}, // "allowed" / "forbidden" / "key_restricted"
	)

	AuthnRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "annodex",
			Name:      "authn_requests_total",
			Help:      "Authenticated requests by credential kind",
		},
		[]string{"kind"}, // "token" / "api_key" / "guest" / "no_auth"
	)
)

var authzMetricsRegistered bool

// RegisterAuthzMetrics registers Prometheus authorization metrics. Must be called once from main.
func RegisterAuthzMetrics() {
	if authzMetricsRegistered {
		return
	}
	prometheus.MustRegister(AuthzDecisionsTotal)
	prometheus.MustRegister(AuthnRequestsTotal)
	authzMetricsRegistered = true
}
