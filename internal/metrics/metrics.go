package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	PermissionChecks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rolechat_permission_checks_total",
			Help: "Permission checks by required role and outcome.",
		},
		[]string{"required", "result"},
	)

	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rolechat_http_requests_total",
			Help: "HTTP requests by method, route and status code.",
		},
		[]string{"method", "route", "status"},
	)

	HTTPLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "rolechat_http_request_duration_seconds",
			Help:    "HTTP request latency by method and route.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	SweptRecords = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rolechat_swept_records_total",
			Help: "Expired credentials removed by the sweeper.",
		},
		[]string{"kind"},
	)
)

func init() {
	prometheus.MustRegister(PermissionChecks)
	prometheus.MustRegister(HTTPRequests)
	prometheus.MustRegister(HTTPLatency)
	prometheus.MustRegister(SweptRecords)
}

func Handler() http.Handler {
	return promhttp.Handler()
}
