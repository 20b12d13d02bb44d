// Package httpserver runs the API listener with context-driven graceful
// shutdown, configurable timeouts and health-check probes.
//
//	srv := httpserver.NewFromConfig(cfg, httpserver.WithLogger(log))
//	g.Go(func() error { return srv.Run(ctx, router) })
//
// Run binds the listener, serves until ctx is done and then shuts down
// within the shutdown timeout. Signal handling belongs to the caller, usually
// through signal.NotifyContext. Listen errors wrap ErrStart; shutdown errors
// wrap ErrShutdown.
//
// HealthCheckHandler answers liveness probes without checks and readiness
// probes with a named set of dependency checks.
package httpserver
