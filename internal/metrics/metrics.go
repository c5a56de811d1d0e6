package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "pastebin"

var (
	// Paste metrics

	PastesCreatedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "pastes_created_total",
		Help:      "Total pastes created, by owner kind.",
	}, []string{"owner"})

	QuotaDeniedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "quota_denied_total",
		Help:      "Paste creations rejected by the quota policy, by reason.",
	}, []string{"reason"})

	ViewIncrementsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "view_increments_total",
		Help:      "View counter increments, by outcome.",
	}, []string{"outcome"})

	// Auth metrics

	LoginLockoutsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "login_lockouts_total",
		Help:      "Magic-link requests rejected by the lockout limiter.",
	})

	EmailsSentTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "emails_sent_total",
		Help:      "Transactional emails, by category and outcome.",
	}, []string{"category", "outcome"})

	// Billing metrics

	WebhookEventsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "billing_webhook_events_total",
		Help:      "Payment webhook events received, by event type and outcome.",
	}, []string{"type", "outcome"})

	// Social event metrics

	EventsPublishedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "social_events_published_total",
		Help:      "Social events published, by type and outcome.",
	}, []string{"type", "outcome"})

	NotificationsCreatedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_created_total",
		Help:      "Notifications written by the notifier, by type.",
	}, []string{"type"})

	// Sweeper metrics

	SweepRowsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sweep_rows_total",
		Help:      "Rows changed by sweeper jobs.",
	}, []string{"job"})

	SweepDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "sweep_duration_seconds",
		Help:      "Time taken for one sweeper job run.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"job"})

	// HTTP metrics

	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Total HTTP requests.",
	}, []string{"method", "path", "status"})
)

func Register() {
	prometheus.MustRegister(
		PastesCreatedTotal,
		QuotaDeniedTotal,
		ViewIncrementsTotal,
		LoginLockoutsTotal,
		EmailsSentTotal,
		WebhookEventsTotal,
		EventsPublishedTotal,
		NotificationsCreatedTotal,
		SweepRowsTotal,
		SweepDuration,
		HTTPRequestDuration,
		HTTPRequestsTotal,
	)
}

// NewServer serves /metrics and, when probes is non-nil, the probe handlers.
func NewServer(addr string, probes http.Handler) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	if probes != nil {
		mux.Handle("/healthz", probes)
		mux.Handle("/readyz", probes)
	}
	return &http.Server{Addr: addr, Handler: mux}
}
