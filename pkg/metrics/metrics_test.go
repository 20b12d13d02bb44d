package metrics_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/notifykit/pkg/lifecycle"
	"github.com/dmitrymomot/notifykit/pkg/metrics"
	"github.com/dmitrymomot/notifykit/pkg/notifications"
)

func TestCollectorCounters(t *testing.T) {
	t.Parallel()

	c := metrics.New()
	c.Dispatched(notifications.DeliveryPush, 20*time.Millisecond)
	c.Dispatched(notifications.DeliveryPush, 30*time.Millisecond)
	c.Failed(notifications.DeliveryEmail, time.Second)
	c.Dropped(lifecycle.ReasonQueueFull)
	c.Deferred()

	expected := `
# HELP notifykit_notifications_dispatched_total Notifications delivered by a channel.
# TYPE notifykit_notifications_dispatched_total counter
notifykit_notifications_dispatched_total{channel="push"} 2
`
	require.NoError(t, testutil.GatherAndCompare(c.Registry(), strings.NewReader(expected), "notifykit_notifications_dispatched_total"))

	count, err := testutil.GatherAndCount(c.Registry(),
		"notifykit_notifications_failed_total",
		"notifykit_notifications_dropped_total",
		"notifykit_notifications_deferred_total",
	)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestTrackDepth(t *testing.T) {
	t.Parallel()

	c := metrics.New()
	c.TrackDepth(func() int { return 4 }, func() int { return 2 })

	expected := `
# HELP notifykit_deferred_notifications Notifications waiting in the deferred queue.
# TYPE notifykit_deferred_notifications gauge
notifykit_deferred_notifications 2
# HELP notifykit_scheduled_notifications Notifications waiting in the trigger store.
# TYPE notifykit_scheduled_notifications gauge
notifykit_scheduled_notifications 4
`
	require.NoError(t, testutil.GatherAndCompare(c.Registry(), strings.NewReader(expected),
		"notifykit_scheduled_notifications", "notifykit_deferred_notifications"))
}

func TestMiddlewareAndHandler(t *testing.T) {
	t.Parallel()

	c := metrics.New()
	r := chi.NewRouter()
	r.Use(c.Middleware)
	r.Get("/v1/items/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	r.Handle("/metrics", c.Handler())

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/items/42", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `notifykit_http_requests_total{method="GET",path="/v1/items/{id}",status="404"} 1`)
}
