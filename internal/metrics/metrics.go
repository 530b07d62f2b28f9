package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Business metrics for the captive-portal login pipeline
var (
	OtpIssued = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hotspot",
			Subsystem: "portal",
			Name:      "otp_issued_total",
			Help:      "Total number of OTP challenges issued",
		},
		[]string{"kind"}, // request, resend
	)

	OtpVerifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hotspot",
			Subsystem: "portal",
			Name:      "otp_verifications_total",
			Help:      "Total number of OTP verification attempts",
		},
		[]string{"result"}, // success, mismatch, expired, exhausted, not_found
	)

	SessionsBound = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hotspot",
			Subsystem: "portal",
			Name:      "sessions_bound_total",
			Help:      "Total number of session bindings committed",
		},
		[]string{"kind"}, // standard, link, federated
	)

	DeviceConflicts = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "hotspot",
			Subsystem: "portal",
			Name:      "device_conflicts_total",
			Help:      "Total number of logins that hit a device conflict",
		},
	)

	LinkLogins = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hotspot",
			Subsystem: "portal",
			Name:      "link_logins_total",
			Help:      "Total number of link login verifications",
		},
		[]string{"result"}, // success, invalid, expired
	)

	FederationLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hotspot",
			Subsystem: "portal",
			Name:      "federation_lookups_total",
			Help:      "Total number of cross-operator username lookups",
		},
		[]string{"outcome"}, // federated, local, unknown
	)

	RadiusSyncFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "hotspot",
			Subsystem: "portal",
			Name:      "radius_sync_failures_total",
			Help:      "Total number of failed RADIUS pushes or teardowns",
		},
	)
)

var (
	requestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "hotspot",
			Subsystem: "portal",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latencies",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	requestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "hotspot",
			Subsystem: "portal",
			Name:      "http_requests_in_flight",
			Help:      "Number of HTTP requests currently being served",
		},
	)
)

// Middleware records request duration and in-flight counts per route
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		requestsInFlight.Inc()

		c.Next()

		requestsInFlight.Dec()
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		requestDuration.WithLabelValues(
			c.Request.Method,
			path,
			strconv.Itoa(c.Writer.Status()),
		).Observe(time.Since(start).Seconds())
	}
}
