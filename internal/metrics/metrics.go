// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	NotificationEmailsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notification_emails_total",
			Help: "Notification emails by job and outcome",
		},
		[]string{"job", "outcome"}, // "sent", "failed"
	)

	NotificationBooksSelected = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "notification_books_selected",
			Help: "Books selected by the most recent run of each notification job",
		},
		[]string{"job"},
	)

	TokensRevokedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "auth_tokens_revoked_total",
			Help: "Refresh tokens added to the blacklist",
		},
	)
)

// RecordHTTPRequest records one served request.
func RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordEmail records the outcome of one notification delivery.
func RecordEmail(job string, err error) {
	outcome := "sent"
	if err != nil {
		outcome = "failed"
	}
	NotificationEmailsTotal.WithLabelValues(job, outcome).Inc()
}

// RecordBooksSelected stores how many books a notification run picked.
func RecordBooksSelected(job string, n int) {
	NotificationBooksSelected.WithLabelValues(job).Set(float64(n))
}
