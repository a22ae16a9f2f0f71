package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	// Votes
	MetricVotesRecorded = "roti_votes_recorded_total"
	MetricVotesRejected = "roti_votes_rejected_total"
	MetricVotesReset    = "roti_votes_reset_total"
	// Admin
	MetricAdminLogins  = "roti_admin_logins_total"
	MetricAuthFailures = "roti_admin_auth_failures_total"
	// HTTP
	MetricRequestDuration = "roti_http_request_duration_seconds"
)

// Rejection reasons
const (
	ReasonValidation   = "validation"
	ReasonAlreadyVoted = "already_voted"
	ReasonInternal     = "internal"
)

// MetricService owns a private registry so several routers can coexist in one
// process (tests build many).
type MetricService struct {
	registry *prometheus.Registry

	votesRecorded   *prometheus.CounterVec
	votesRejected   *prometheus.CounterVec
	votesReset      prometheus.Counter
	adminLogins     *prometheus.CounterVec
	authFailures    prometheus.Counter
	requestDuration *prometheus.HistogramVec
}

func NewMetricService() *MetricService {
	reg := prometheus.NewRegistry()

	m := &MetricService{
		registry: reg,
		votesRecorded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: MetricVotesRecorded,
			Help: "Votes recorded, by rating",
		}, []string{"rating"}),
		votesRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: MetricVotesRejected,
			Help: "Vote submissions rejected, by reason",
		}, []string{"reason"}),
		votesReset: prometheus.NewCounter(prometheus.CounterOpts{
			Name: MetricVotesReset,
			Help: "Bulk resets performed by an admin",
		}),
		adminLogins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: MetricAdminLogins,
			Help: "Admin login attempts, by result",
		}, []string{"result"}),
		authFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: MetricAuthFailures,
			Help: "Requests refused by the admin token gate",
		}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    MetricRequestDuration,
			Help:    "HTTP request duration by route and status",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "status"}),
	}

	reg.MustRegister(
		m.votesRecorded,
		m.votesRejected,
		m.votesReset,
		m.adminLogins,
		m.authFailures,
		m.requestDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// Handler serves the registry in the Prometheus text format
func (m *MetricService) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry exposes the underlying registry, for tests
func (m *MetricService) Registry() *prometheus.Registry {
	return m.registry
}

// Votes
func (m *MetricService) VoteRecorded(rating int) {
	m.votesRecorded.WithLabelValues(strconv.Itoa(rating)).Inc()
}

func (m *MetricService) VoteRejected(reason string) {
	m.votesRejected.WithLabelValues(reason).Inc()
}

func (m *MetricService) VotesReset() {
	m.votesReset.Inc()
}

// Admin
func (m *MetricService) AdminLogin(success bool) {
	result := "failure"
	if success {
		result = "success"
	}
	m.adminLogins.WithLabelValues(result).Inc()
}

func (m *MetricService) AuthFailure() {
	m.authFailures.Inc()
}

// HTTP
func (m *MetricService) ObserveRequest(route string, status int, d time.Duration) {
	m.requestDuration.WithLabelValues(route, strconv.Itoa(status)).Observe(d.Seconds())
}
