// Command notifyd runs the notification engine with its HTTP API.
package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/notifykit/pkg/api"
	"github.com/dmitrymomot/notifykit/pkg/config"
	"github.com/dmitrymomot/notifykit/pkg/coordinator"
	"github.com/dmitrymomot/notifykit/pkg/httpserver"
	"github.com/dmitrymomot/notifykit/pkg/logger"
	"github.com/dmitrymomot/notifykit/pkg/metrics"
	"github.com/dmitrymomot/notifykit/pkg/policy"
	"github.com/dmitrymomot/notifykit/pkg/ratelimiter"
	"github.com/dmitrymomot/notifykit/pkg/requestid"
)

func main() {
	if err := run(); err != nil {
		slog.Error("notifyd stopped with error", logger.Error(err))
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		appCfg    appConfig
		policyCfg policy.Config
		engineCfg coordinator.Config
		httpCfg   httpserver.Config
		limitCfg  ratelimiter.Config
	)
	for _, load := range []func() error{
		func() error { return config.Load(&appCfg) },
		func() error { return config.Load(&policyCfg) },
		func() error { return config.Load(&engineCfg) },
		func() error { return config.Load(&httpCfg) },
		func() error { return config.Load(&limitCfg) },
	} {
		if err := load(); err != nil {
			return err
		}
	}

	log := logger.New(
		logger.WithEnvironment(appCfg.Env, appCfg.ServiceName),
		logger.WithContextExtractors(requestid.LoggerExtractor()),
	)
	logger.SetAsDefault(log)

	be, err := openBackend(ctx, policyCfg.Backend, log)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := be.close(closeCtx); err != nil {
			log.Error("failed to close policy backend", logger.Error(err))
		}
	}()

	prefs, err := policy.New(be.repo, policy.WithConfig(policyCfg), policy.WithLogger(log))
	if err != nil {
		return err
	}
	if err := prefs.Load(ctx); err != nil {
		// Defaults stay active; the next successful save repairs the document.
		log.WarnContext(ctx, "using default preferences", logger.Error(err))
	}

	channels, err := buildChannels(appCfg, prefs, log)
	if err != nil {
		return err
	}
	defer channels.close(context.Background(), log)

	collector := metrics.New()
	engine, err := coordinator.New(prefs, append([]coordinator.Option{
		coordinator.WithConfig(engineCfg),
		coordinator.WithLogger(log),
		coordinator.WithObserver(collector),
	}, channels.options...)...)
	if err != nil {
		return err
	}
	collector.TrackDepth(engine.ScheduledCount, engine.DeferredCount)

	apiOpts := []api.Option{
		api.WithMetrics(collector),
		api.WithLogger(log),
		api.WithAllowedOrigins(appCfg.AllowedOrigins...),
	}
	if channels.inbox != nil {
		apiOpts = append(apiOpts, api.WithInbox(channels.inbox))
	}
	if be.check != nil {
		apiOpts = append(apiOpts, api.WithReadinessCheck(be.name, be.check))
	}
	if appCfg.RateLimit {
		store := be.limits
		if store == nil {
			mem := ratelimiter.NewMemoryStore()
			defer mem.Close()
			store = mem
		}
		bucket, err := ratelimiter.NewBucket(store, limitCfg)
		if err != nil {
			return err
		}
		apiOpts = append(apiOpts, api.WithRateLimit(bucket))
	}
	router := api.New(engine, prefs, apiOpts...).Router()

	srv := httpserver.NewFromConfig(httpCfg, httpserver.WithLogger(log))

	log.InfoContext(ctx, "notifyd starting",
		slog.String("policy_backend", be.name),
		slog.Any("channels", appCfg.Channels))

	g, ctx := errgroup.WithContext(ctx)
	g.Go(engine.Run(ctx))
	g.Go(func() error { return srv.Run(ctx, router) })

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	log.Info("notifyd stopped")
	return nil
}
