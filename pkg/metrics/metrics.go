package metrics

import (
	"bufio"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dmitrymomot/notifykit/pkg/lifecycle"
	"github.com/dmitrymomot/notifykit/pkg/notifications"
)

const namespace = "notifykit"

// Collector holds the engine and HTTP metrics on its own registry.
type Collector struct {
	registry *prometheus.Registry

	dispatched       *prometheus.CounterVec
	failed           *prometheus.CounterVec
	dropped          *prometheus.CounterVec
	deferred         prometheus.Counter
	dispatchDuration *prometheus.HistogramVec

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
}

// New creates a collector with a fresh registry that also exposes the Go
// runtime and process collectors.
func New() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		dispatched: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_dispatched_total",
			Help:      "Notifications delivered by a channel.",
		}, []string{"channel"}),
		failed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_failed_total",
			Help:      "Notifications a channel failed to deliver.",
		}, []string{"channel"}),
		dropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_dropped_total",
			Help:      "Notifications dropped before delivery.",
		}, []string{"reason"}),
		deferred: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_deferred_total",
			Help:      "Notifications moved to the deferred queue.",
		}),
		dispatchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "dispatch_duration_seconds",
			Help:      "Time spent in channel Send.",
			Buckets:   []float64{.01, .05, .1, .25, .5, 1, 2, 5, 15},
		}, []string{"channel"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests.",
		}, []string{"method", "path", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path"}),
	}

	c.registry.MustRegister(
		c.dispatched,
		c.failed,
		c.dropped,
		c.deferred,
		c.dispatchDuration,
		c.httpRequests,
		c.httpDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return c
}

// Registry returns the underlying registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

// TrackDepth exposes the number of scheduled and deferred notifications as
// gauges read at scrape time.
func (c *Collector) TrackDepth(scheduled, deferred func() int) {
	c.registry.MustRegister(
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "scheduled_notifications",
			Help:      "Notifications waiting in the trigger store.",
		}, func() float64 { return float64(scheduled()) }),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "deferred_notifications",
			Help:      "Notifications waiting in the deferred queue.",
		}, func() float64 { return float64(deferred()) }),
	)
}

func (c *Collector) Dispatched(channel notifications.DeliveryType, took time.Duration) {
	c.dispatched.WithLabelValues(string(channel)).Inc()
	c.dispatchDuration.WithLabelValues(string(channel)).Observe(took.Seconds())
}

func (c *Collector) Failed(channel notifications.DeliveryType, took time.Duration) {
	c.failed.WithLabelValues(string(channel)).Inc()
	c.dispatchDuration.WithLabelValues(string(channel)).Observe(took.Seconds())
}

func (c *Collector) Dropped(reason lifecycle.DropReason) {
	c.dropped.WithLabelValues(string(reason)).Inc()
}

func (c *Collector) Deferred() {
	c.deferred.Inc()
}

// Middleware records request count and latency labelled by chi route pattern.
func (c *Collector) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		path := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				path = pattern
			}
		}

		c.httpRequests.WithLabelValues(r.Method, path, strconv.Itoa(rec.status)).Inc()
		c.httpDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// Hijack hands the connection to websocket upgrades.
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	conn, rw, err := http.NewResponseController(r.ResponseWriter).Hijack()
	if err == nil {
		r.status = http.StatusSwitchingProtocols
	}
	return conn, rw, err
}
