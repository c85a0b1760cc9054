package main

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"minhasfinancas/internal/domain/entry"
	"minhasfinancas/internal/domain/user"
	"minhasfinancas/internal/infrastructure/postgres"
	httphandlers "minhasfinancas/internal/interfaces/http"
	"minhasfinancas/internal/shared/auth"
	"minhasfinancas/internal/shared/config"
	"minhasfinancas/internal/shared/logging"
	"minhasfinancas/internal/shared/ratelimit"
)

// Dependencies holds all initialized application components.
type Dependencies struct {
	DB    *postgres.DB
	Redis *redis.Client

	// Handlers
	UserHandler   *httphandlers.UserHandler
	EntryHandler  *httphandlers.EntryHandler
	HealthHandler *httphandlers.HealthHandler

	JWT *auth.JWT

	// LoginLimiter is nil when rate limiting is disabled.
	LoginLimiter ratelimit.Limiter
}

// NewDependencies initializes all application dependencies.
func NewDependencies(ctx context.Context, cfg *config.Config, log logging.Logger) (*Dependencies, error) {
	db, err := postgres.New(ctx, cfg.Database.ConnectionString())
	if err != nil {
		return nil, err
	}
	log.Info(ctx, "connected to database", "host", cfg.Database.Host, "db", cfg.Database.DBName)

	// Repositories
	userRepo := postgres.NewUserRepository(db)
	entryRepo := postgres.NewEntryRepository(db)

	// Services
	userService := user.NewService(userRepo)
	entryService := entry.NewService(entryRepo, userRepo)

	jwt := auth.NewJWTWithTTL(cfg.JWT.Secret, cfg.JWT.TTL)

	deps := &Dependencies{
		DB:            db,
		UserHandler:   httphandlers.NewUserHandler(userService, entryService, jwt, log),
		EntryHandler:  httphandlers.NewEntryHandler(entryService, log),
		HealthHandler: httphandlers.NewHealthHandler(db, log),
		JWT:           jwt,
	}

	if cfg.RateLimit.Enabled {
		if err := deps.initLimiter(ctx, cfg, log); err != nil {
			deps.Close()
			return nil, err
		}
	}

	return deps, nil
}

// initLimiter prefers a shared Redis counter when REDIS_ADDR is set and
// falls back to per-process token buckets.
func (d *Dependencies) initLimiter(ctx context.Context, cfg *config.Config, log logging.Logger) error {
	if cfg.Redis.Addr == "" {
		store := ratelimit.NewMemoryStore(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
		store.StartJanitor(ctx)
		d.LoginLimiter = store
		log.Info(ctx, "login rate limit enabled", "backend", "memory",
			"rps", cfg.RateLimit.RPS, "burst", cfg.RateLimit.Burst,
			"trust_proxy_headers", cfg.RateLimit.TrustProxyHeaders)
		return nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return fmt.Errorf("failed to connect to redis: %w", err)
	}

	store, err := ratelimit.NewRedisStore(rdb, cfg.RateLimit.Burst, cfg.RateLimit.Window)
	if err != nil {
		rdb.Close()
		return err
	}

	d.Redis = rdb
	d.LoginLimiter = store
	log.Info(ctx, "login rate limit enabled", "backend", "redis",
		"limit", cfg.RateLimit.Burst, "window", cfg.RateLimit.Window,
		"trust_proxy_headers", cfg.RateLimit.TrustProxyHeaders)
	return nil
}

func (d *Dependencies) Close() {
	if d.Redis != nil {
		d.Redis.Close()
	}
	if d.DB != nil {
		d.DB.Close()
	}
}
