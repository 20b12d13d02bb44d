package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrymomot/notifykit/pkg/channels/inapp"
	"github.com/dmitrymomot/notifykit/pkg/httpserver"
	"github.com/dmitrymomot/notifykit/pkg/lifecycle"
	"github.com/dmitrymomot/notifykit/pkg/logger"
	"github.com/dmitrymomot/notifykit/pkg/metrics"
	"github.com/dmitrymomot/notifykit/pkg/notifications"
	"github.com/dmitrymomot/notifykit/pkg/policy"
	"github.com/dmitrymomot/notifykit/pkg/ratelimiter"
	"github.com/dmitrymomot/notifykit/pkg/requestid"
)

// Engine is the part of the coordinator exposed over HTTP.
type Engine interface {
	ScheduleNotification(ctx context.Context, n notifications.Notification, at time.Time) error
	SendImmediate(ctx context.Context, n notifications.Notification) error
	CancelNotification(ctx context.Context, id string)
	CancelAllNotifications(ctx context.Context)
	Status(id string) (lifecycle.Status, error)
}

// Preferences reads and replaces the policy document.
type Preferences interface {
	Snapshot() policy.Preferences
	Replace(ctx context.Context, prefs policy.Preferences) error
}

// Inbox is the in-app channel surface.
type Inbox interface {
	List(ctx context.Context, userID string, opts notifications.ListOptions) ([]notifications.Notification, error)
	MarkRead(ctx context.Context, userID string, ids ...string) error
	Dismiss(ctx context.Context, userID string, ids ...string) error
	CountUnread(ctx context.Context, userID string) (int, error)
	Subscribe(ctx context.Context, userID string) *inapp.Subscription
}

// API serves the notification engine over HTTP.
type API struct {
	engine         Engine
	prefs          Preferences
	inbox          Inbox
	metrics        *metrics.Collector
	limiter        *ratelimiter.Bucket
	checks         map[string]httpserver.Check
	allowedOrigins []string
	now            func() time.Time
	logger         *slog.Logger
}

// Option configures an API.
type Option func(*API)

// WithInbox enables the inbox routes.
func WithInbox(inbox Inbox) Option {
	return func(a *API) { a.inbox = inbox }
}

// WithMetrics enables /metrics and request instrumentation.
func WithMetrics(c *metrics.Collector) Option {
	return func(a *API) { a.metrics = c }
}

// WithRateLimit throttles the mutating routes per client IP.
func WithRateLimit(b *ratelimiter.Bucket) Option {
	return func(a *API) { a.limiter = b }
}

// WithReadinessCheck adds a named dependency check to /readyz.
func WithReadinessCheck(name string, check httpserver.Check) Option {
	return func(a *API) {
		if name != "" && check != nil {
			a.checks[name] = check
		}
	}
}

// WithAllowedOrigins lists origins accepted for websocket streams.
// Without it only same-origin upgrades are allowed.
func WithAllowedOrigins(origins ...string) Option {
	return func(a *API) { a.allowedOrigins = append(a.allowedOrigins, origins...) }
}

// WithClock sets the time source for relative schedules.
func WithClock(now func() time.Time) Option {
	return func(a *API) {
		if now != nil {
			a.now = now
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(a *API) {
		if l != nil {
			a.logger = l
		}
	}
}

// New creates the API.
func New(engine Engine, prefs Preferences, opts ...Option) *API {
	a := &API{
		engine: engine,
		prefs:  prefs,
		checks: make(map[string]httpserver.Check),
		now:    time.Now,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.logger = a.logger.With(logger.Component("api"))
	return a
}

// Router builds the HTTP handler.
func (a *API) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(requestid.Middleware)
	r.Use(middleware.Recoverer)
	if a.metrics != nil {
		r.Use(a.metrics.Middleware)
		r.Method(http.MethodGet, "/metrics", a.metrics.Handler())
	}

	r.Get("/healthz", httpserver.HealthCheckHandler(a.logger, 0, nil))
	r.Get("/readyz", httpserver.HealthCheckHandler(a.logger, 5*time.Second, a.checks))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) { respondError(w, ErrNotFound) })

	r.Route("/v1", func(r chi.Router) {
		r.Route("/notifications", func(r chi.Router) {
			r.Get("/{id}/status", a.status)

			r.Group(func(r chi.Router) {
				r.Use(a.rateLimit)
				r.Post("/", a.sendImmediate)
				r.Post("/schedule", a.schedule)
				r.Delete("/", a.cancelAll)
				r.Delete("/{id}", a.cancel)
			})
		})

		r.Get("/preferences", a.getPreferences)
		r.With(a.rateLimit).Put("/preferences", a.putPreferences)

		if a.inbox != nil {
			r.Route("/inbox/{userID}", func(r chi.Router) {
				r.Get("/", a.listInbox)
				r.Post("/read", a.markRead)
				r.Post("/dismiss", a.dismiss)
				r.Get("/stream", a.stream)
			})
		}
	})

	return r
}

// rateLimit is a no-op without WithRateLimit. Limiter failures let the
// request through.
func (a *API) rateLimit(next http.Handler) http.Handler {
	if a.limiter == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		res, err := a.limiter.Allow(r.Context(), ratelimiter.ClientIP(r))
		if err != nil {
			a.logger.WarnContext(r.Context(), "rate limiter unavailable", logger.Error(err))
			next.ServeHTTP(w, r)
			return
		}
		ratelimiter.SetHeaders(w, res, a.now())
		if !res.Allowed() {
			respondError(w, ErrTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}
