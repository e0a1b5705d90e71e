// Package metrics exposes Prometheus collectors for the service.
package metrics

import (
	"strconv"
	"time"

	"alcyxob/gym-manager/internal/domain"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gym_manager_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gym_manager_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	EnrollmentsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gym_manager_enrollments_total",
			Help: "Members enrolled, by outcome",
		},
		[]string{"outcome"},
	)

	RenewalsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gym_manager_renewals_total",
			Help: "Membership renewals, by renewal type",
		},
		[]string{"renewal_type"},
	)

	PaymentsCollected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gym_manager_payments_collected_minor_units_total",
			Help: "Money collected in minor currency units",
		},
		[]string{"transaction_type", "payment_mode"},
	)

	DashboardCacheTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gym_manager_dashboard_cache_total",
			Help: "Dashboard cache lookups, by result",
		},
		[]string{"result"},
	)

	DashboardComputeDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "gym_manager_dashboard_compute_seconds",
			Help:    "Time spent recomputing a dashboard on cache miss",
			Buckets: prometheus.DefBuckets,
		},
	)
)

// RecordHTTPRequest records an HTTP request metric
func RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordEnrollment counts an enrollment attempt. outcome is "ok", "partial" or "failed".
func RecordEnrollment(outcome string) {
	EnrollmentsTotal.WithLabelValues(outcome).Inc()
}

func RecordRenewal(t domain.RenewalType) {
	RenewalsTotal.WithLabelValues(string(t)).Inc()
}

// RecordPayment adds a ledger entry's amount to the collected total.
func RecordPayment(t domain.TransactionType, mode domain.PaymentMode, amount domain.Money) {
	if amount <= 0 {
		return
	}
	PaymentsCollected.WithLabelValues(string(t), string(mode)).Add(float64(amount))
}

func RecordCacheHit()  { DashboardCacheTotal.WithLabelValues("hit").Inc() }
func RecordCacheMiss() { DashboardCacheTotal.WithLabelValues("miss").Inc() }
