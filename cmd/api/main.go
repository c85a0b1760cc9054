package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"minhasfinancas/internal/infrastructure/postgres/migrations"
	"minhasfinancas/internal/shared/config"
	"minhasfinancas/internal/shared/logging"
	"minhasfinancas/internal/shared/telemetry"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Application error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log := logging.New(cfg.Log.Level, cfg.Log.Format)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Telemetry.Enabled {
		shutdownTelemetry, err := telemetry.Init(ctx, telemetry.Config{
			ServiceName:  cfg.Telemetry.ServiceName,
			Environment:  cfg.Telemetry.Environment,
			OTLPEndpoint: cfg.Telemetry.OTLPEndpoint,
			MetricsPort:  cfg.Telemetry.MetricsPort,
		}, log)
		if err != nil {
			return fmt.Errorf("failed to init telemetry: %w", err)
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdownTelemetry(shutdownCtx); err != nil {
				log.Error(shutdownCtx, "telemetry shutdown failed", "error", err)
			}
		}()
	}

	deps, err := NewDependencies(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer deps.Close()

	if cfg.Database.MigrateOnStart {
		if err := migrations.Run(ctx, deps.DB.DB, migrations.Up); err != nil {
			return err
		}
		log.Info(ctx, "database migrations applied")
	}

	handler := SetupRoutes(deps, cfg, log)

	srv, redirectSrv := StartServers(NewServerConfigFromConfig(handler, cfg), log)

	<-ctx.Done()

	GracefulShutdown(srv, redirectSrv, 30*time.Second, log)
	return nil
}
