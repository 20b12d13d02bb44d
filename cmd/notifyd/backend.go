package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dmitrymomot/notifykit/pkg/config"
	"github.com/dmitrymomot/notifykit/pkg/httpserver"
	"github.com/dmitrymomot/notifykit/pkg/logger"
	"github.com/dmitrymomot/notifykit/pkg/mongo"
	"github.com/dmitrymomot/notifykit/pkg/pg"
	"github.com/dmitrymomot/notifykit/pkg/policy"
	"github.com/dmitrymomot/notifykit/pkg/ratelimiter"
	"github.com/dmitrymomot/notifykit/pkg/redis"
)

// backend is the policy repository chosen by NOTIFY_POLICY_BACKEND together
// with its readiness check and cleanup. limits is set when the backend can
// share rate limit buckets between replicas.
type backend struct {
	name   string
	repo   policy.Repository
	limits ratelimiter.Store
	check  httpserver.Check
	close  func(context.Context) error
}

func openBackend(ctx context.Context, kind string, log *slog.Logger) (*backend, error) {
	log = log.With(logger.Component("policy-backend"), slog.String("backend", kind))

	switch kind {
	case "", "memory":
		return &backend{
			name:  "memory",
			repo:  policy.NewMemoryRepository(),
			close: func(context.Context) error { return nil },
		}, nil

	case "redis":
		var cfg redis.Config
		if err := config.Load(&cfg); err != nil {
			return nil, err
		}
		client, err := redis.Connect(ctx, cfg)
		if err != nil {
			return nil, err
		}
		log.InfoContext(ctx, "policy backend connected")
		return &backend{
			name:   "redis",
			repo:   policy.NewRedisRepository(client, cfg.KeyPrefix),
			limits: ratelimiter.NewRedisStore(client, "notifykit:ratelimit:"),
			check:  redis.Healthcheck(client),
			close:  func(context.Context) error { return client.Close() },
		}, nil

	case "mongo":
		var cfg mongo.Config
		if err := config.Load(&cfg); err != nil {
			return nil, err
		}
		client, err := mongo.New(ctx, cfg)
		if err != nil {
			return nil, err
		}
		coll := client.Database(cfg.Database).Collection(cfg.Collection)
		log.InfoContext(ctx, "policy backend connected")
		return &backend{
			name:  "mongo",
			repo:  policy.NewMongoRepository(coll),
			check: mongo.Healthcheck(client),
			close: client.Disconnect,
		}, nil

	case "postgres":
		var cfg pg.Config
		if err := config.Load(&cfg); err != nil {
			return nil, err
		}
		pool, err := pg.Connect(ctx, cfg)
		if err != nil {
			return nil, err
		}
		if err := pg.Migrate(ctx, pool, policy.Migrations, "migrations", cfg, log); err != nil {
			pool.Close()
			return nil, err
		}
		log.InfoContext(ctx, "policy backend connected")
		return &backend{
			name:  "postgres",
			repo:  policy.NewPostgresRepository(pool),
			check: pg.Healthcheck(pool),
			close: func(context.Context) error { pool.Close(); return nil },
		}, nil
	}

	return nil, fmt.Errorf("unknown policy backend %q", kind)
}
