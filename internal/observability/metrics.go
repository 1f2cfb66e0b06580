package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "attendance"

// HTTPRequestsTotal counts served requests by route, method and status.
var HTTPRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests served.",
	},
	[]string{"route", "method", "status"},
)

// HTTPRequestDuration measures handler latency.
var HTTPRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "Duration of HTTP requests.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"route", "method"},
)

// HTTPErrorsTotal counts error envelopes by stable error code.
var HTTPErrorsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_errors_total",
		Help:      "Total number of error responses, by error code.",
	},
	[]string{"route", "method", "code"},
)

// LoginsTotal counts login attempts.
// Labels:
//   - role: "employee" or "admin"
//   - result: "success" or the rejection code
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by role and result.",
	},
	[]string{"role", "result"},
)

// GuardRejectionsTotal counts requests refused by the authentication guard.
// Labels:
//   - role: the role the route requires
//   - reason: "missing_token", "no_session", "role_mismatch", "bad_signature",
//     "subject_mismatch", "identity_missing", "identity_disabled"
var GuardRejectionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "guard_rejections_total",
		Help:      "Total number of requests rejected by the authentication guard.",
	},
	[]string{"role", "reason"},
)

// SessionsRevokedTotal counts sessions dropped by forced logout.
var SessionsRevokedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sessions_revoked_total",
		Help:      "Total number of sessions revoked, by role and trigger.",
	},
	[]string{"role", "trigger"},
)

// CheckInsTotal counts check-in attempts by outcome.
var CheckInsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "checkins_total",
		Help:      "Total number of check-in attempts, by result.",
	},
	[]string{"result"},
)

// GeocodeCacheTotal counts reverse-geocode cache lookups.
// Label:
//   - result: "hit" or "miss"
var GeocodeCacheTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "geocode_cache_total",
		Help:      "Total number of reverse-geocode cache lookups, by result.",
	},
	[]string{"result"},
)

// OnlineCounter reports distinct online subjects for a role label.
type OnlineCounter func(role string) int

// RegisterOnlineGauge exposes a per-role gauge evaluated at scrape time.
// Call once at startup.
func RegisterOnlineGauge(reg prometheus.Registerer, roles []string, count OnlineCounter) {
	for _, role := range roles {
		role := role
		reg.MustRegister(prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Namespace:   namespace,
				Name:        "online_sessions",
				Help:        "Distinct subjects holding an unexpired session.",
				ConstLabels: prometheus.Labels{"role": role},
			},
			func() float64 { return float64(count(role)) },
		))
	}
}

// RecordRequest observes a finished HTTP request.
func RecordRequest(route, method string, status int, duration time.Duration) {
	HTTPRequestsTotal.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	HTTPRequestDuration.WithLabelValues(route, method).Observe(duration.Seconds())
}

// RecordError increments error counters.
func RecordError(route, method, code string) {
	HTTPErrorsTotal.WithLabelValues(route, method, code).Inc()
}
