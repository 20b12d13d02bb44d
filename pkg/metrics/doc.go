// Package metrics exposes engine and HTTP metrics through Prometheus.
//
// A Collector owns a private registry. The coordinator reports outcomes to it
// (Dispatched, Failed, Dropped, Deferred), TrackDepth publishes the trigger
// store and deferred queue sizes, and Middleware instruments chi routes.
// Handler serves everything at /metrics.
package metrics
