// Package metrics holds Prometheus instruments used across the service.  All
// collectors are registered with the global registry, so mounting
// promhttp.Handler() in main.go is enough to expose them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	SubmissionsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "ponto_submissions_total",
			Help: "Cumulative number of disposal points submitted for review.",
		})

	ApprovalsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "ponto_approvals_total",
			Help: "Cumulative number of disposal points moved from pending to approved.",
		})

	DeletionsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "ponto_deletions_total",
			Help: "Cumulative number of disposal points deleted.",
		})

	AdminAuthDeniedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "admin_auth_denied_total",
			Help: "Admin credential checks that did not authorize, by reason.",
		}, []string{"reason"})

	RateLimitedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "rate_limited_total",
			Help: "Requests rejected by the per-client rate limiter.",
		})

	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests served, by method and status code.",
		}, []string{"method", "status"})
)

func init() {
	prometheus.MustRegister(
		SubmissionsTotal,
		ApprovalsTotal,
		DeletionsTotal,
		AdminAuthDeniedTotal,
		RateLimitedTotal,
		HTTPRequestsTotal,
	)
}
