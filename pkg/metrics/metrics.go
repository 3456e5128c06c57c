package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Storefront records cart, form and HTTP activity.
type Storefront struct {
	cartMutations   *prometheus.CounterVec
	cartPersistFail prometheus.Counter
	formSubmissions *prometheus.CounterVec
	uploads         *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
	jobRuns         *prometheus.CounterVec
	jobDuration     *prometheus.HistogramVec
	gatherer        prometheus.Gatherer
}

// New registers the storefront metrics on the provided registry. A nil
// registry yields a recorder whose methods are no-ops.
func New(reg *prometheus.Registry) *Storefront {
	if reg == nil {
		return &Storefront{}
	}
	cartMutations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_mutations_total",
		Help: "Cart mutations by operation.",
	}, []string{"op"})
	cartPersistFail := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cart_persist_failures_total",
		Help: "Cart writes that failed to reach the durable store.",
	})
	formSubmissions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "form_submissions_total",
		Help: "Admin form submissions by resource and outcome.",
	}, []string{"resource", "outcome"})
	uploads := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "media_uploads_total",
		Help: "Image uploads by outcome.",
	}, []string{"outcome"})
	httpDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
	jobRuns := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cron_job_runs_total",
		Help: "Housekeeping job runs by job and outcome.",
	}, []string{"job", "outcome"})
	jobDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "cron_job_duration_seconds",
		Help:    "Duration of housekeeping job runs in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"job"})
	reg.MustRegister(cartMutations, cartPersistFail, formSubmissions, uploads, httpDuration, jobRuns, jobDuration)
	return &Storefront{
		cartMutations:   cartMutations,
		cartPersistFail: cartPersistFail,
		formSubmissions: formSubmissions,
		uploads:         uploads,
		httpDuration:    httpDuration,
		jobRuns:         jobRuns,
		jobDuration:     jobDuration,
		gatherer:        reg,
	}
}

// CartMutation counts one cart operation (add, remove, update, clear).
func (s *Storefront) CartMutation(op string) {
	if s == nil || s.cartMutations == nil {
		return
	}
	s.cartMutations.WithLabelValues(normalizeLabel(op)).Inc()
}

// CartPersistFailure counts a write that could not be stored.
func (s *Storefront) CartPersistFailure() {
	if s == nil || s.cartPersistFail == nil {
		return
	}
	s.cartPersistFail.Inc()
}

// FormSubmission counts a submit attempt; outcome is "invalid", "saved" or "failed".
func (s *Storefront) FormSubmission(resource, outcome string) {
	if s == nil || s.formSubmissions == nil {
		return
	}
	s.formSubmissions.WithLabelValues(normalizeLabel(resource), normalizeLabel(outcome)).Inc()
}

// Upload counts an image upload attempt.
func (s *Storefront) Upload(outcome string) {
	if s == nil || s.uploads == nil {
		return
	}
	s.uploads.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// ObserveRequest records the duration for one served request.
func (s *Storefront) ObserveRequest(method, route, status string, duration time.Duration) {
	if s == nil || s.httpDuration == nil {
		return
	}
	s.httpDuration.WithLabelValues(method, normalizeLabel(route), status).Observe(duration.Seconds())
}

// JobRun records one housekeeping job execution.
func (s *Storefront) JobRun(job, outcome string, duration time.Duration) {
	if s == nil || s.jobRuns == nil {
		return
	}
	s.jobRuns.WithLabelValues(normalizeLabel(job), normalizeLabel(outcome)).Inc()
	s.jobDuration.WithLabelValues(normalizeLabel(job)).Observe(duration.Seconds())
}

// Handler exposes the registry in the Prometheus text format.
func (s *Storefront) Handler() http.Handler {
	if s == nil || s.gatherer == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
