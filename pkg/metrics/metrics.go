package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	UpstreamRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "accountgate", Name: "upstream_requests_total", Help: "Upstream API requests by client kind and status code."},
		[]string{"client", "code"},
	)
	RefreshAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "accountgate", Name: "token_refresh_total", Help: "Token refresh attempts by outcome (success|failure)."},
		[]string{"outcome"},
	)
	ProfileCache = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "accountgate", Name: "profile_cache_total", Help: "Profile cache lookups by result (hit|miss)."},
		[]string{"result"},
	)
	RateLimitAllowed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "accountgate", Name: "rate_limit_allowed_total", Help: "Number of allowed requests by limiter type."},
		[]string{"limiter"},
	)
	RateLimitRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "accountgate", Name: "rate_limit_rejected_total", Help: "Number of rejected requests by limiter type."},
		[]string{"limiter"},
	)
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(UpstreamRequests)
	reg.MustRegister(RefreshAttempts)
	reg.MustRegister(ProfileCache)
	reg.MustRegister(RateLimitAllowed)
	reg.MustRegister(RateLimitRejected)
}
