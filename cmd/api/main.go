// @title CryptoWatcher API
// @version 1.0
// @description Proxy for CoinGecko Pro market data with a background market snapshot refresh.
// @BasePath /
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"crypto-watcher/internal/application/lifecycle"
	"crypto-watcher/internal/application/services"
	"crypto-watcher/internal/infrastructure/config"
	"crypto-watcher/internal/infrastructure/logging"
	"crypto-watcher/internal/infrastructure/metrics"
	"crypto-watcher/internal/infrastructure/repositories/snapshot"
	"crypto-watcher/internal/infrastructure/upstream/coingecko"
	"crypto-watcher/internal/infrastructure/web/router"
	"crypto-watcher/internal/infrastructure/web/server"
	"crypto-watcher/internal/infrastructure/web/stream"
)

const serviceName = "crypto-watcher"

var version = "1.0.0"

// errTaskStopped is returned when the refresh loop exits without being cancelled
var errTaskStopped = errors.New("market refresh task stopped unexpectedly")

func main() {
	if err := run(); err != nil {
		logging.Error(context.Background(), "Service terminated with error", logging.Fields{
			logging.FieldError: err.Error(),
		})
		_ = logging.SyncGlobalLoggers()
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.NewLoader().Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := setupLogging(cfg.Logging); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer func() { _ = logging.SyncGlobalLoggers() }()

	if config.NeedsSecretResolution(cfg) {
		ssmClient, err := config.NewSSMClient(ctx)
		if err != nil {
			return err
		}
		if err := config.ResolveSecrets(ctx, cfg, ssmClient); err != nil {
			return err
		}
		logging.Info(ctx, "Upstream API key loaded from SSM", logging.Fields{
			"parameter": cfg.Upstream.APIKeySSMParameter,
		})
	}

	if err := config.NewValidator().Validate(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if cfg.Upstream.APIKey == "" {
		logging.Warn(ctx, "No CoinGecko API key configured, upstream calls will be rejected", nil)
	}

	metrics.SetApplicationInfo(version, runtime.Version())

	store, err := snapshot.NewFactory().CreateStore(ctx, cfg.Snapshot)
	if err != nil {
		return fmt.Errorf("failed to create snapshot store: %w", err)
	}

	client := coingecko.NewClientWithConfig(cfg.Upstream)
	hub := stream.NewHub(cfg.CORS.AllowedOrigins)
	refresher := services.NewRefresher(client, store, cfg.Refresh, hub)

	app := lifecycle.NewApp(client, refresher)
	app.AddCloser("snapshot store", store)
	app.AddCloser("stream hub", hub)

	srv := server.NewServer(router.New(router.Dependencies{
		Markets:        services.NewMarketService(client, store),
		Stream:         hub,
		CORS:           cfg.CORS,
		RateLimit:      cfg.RateLimit,
		SnapshotMaxAge: 2 * cfg.Refresh.Interval,
	}), cfg.Server.Port)

	// la tarea solo se detiene desde Shutdown, no con la señal
	app.Startup(context.Background())

	logging.Info(ctx, "CryptoWatcher is running", logging.Fields{
		"port":                  cfg.Server.Port,
		"snapshot_backend":      cfg.Snapshot.Backend,
		logging.FieldInterval:   cfg.Refresh.Interval.String(),
		logging.FieldVsCurrency: cfg.Refresh.VsCurrency,
	})

	group, gctx := errgroup.WithContext(ctx)

	group.Go(srv.Start)

	group.Go(func() error {
		select {
		case <-app.TaskDone():
			return errTaskStopped
		case <-gctx.Done():
			return nil
		}
	})

	group.Go(func() error {
		<-gctx.Done()
		return shutdown(srv, app, cfg.Server.ShutdownTimeout)
	})

	return group.Wait()
}

// shutdown stops accepting requests first, then stops the task and closes the session
func shutdown(srv *server.Server, app *lifecycle.App, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	logging.Info(ctx, "Shutting down", logging.Fields{
		"timeout": timeout.String(),
	})

	var errs []error
	if err := srv.Stop(ctx); err != nil {
		errs = append(errs, fmt.Errorf("http server: %w", err))
	}
	if err := app.Shutdown(ctx); err != nil {
		errs = append(errs, err)
	}

	if len(errs) == 0 {
		logging.Info(ctx, "Shutdown completed", nil)
	}
	return errors.Join(errs...)
}

func setupLogging(cfg config.LoggingConfig) error {
	environment := os.Getenv("ENVIRONMENT")
	if environment == "" {
		environment = "production"
	}

	logCfg := logging.NewConfig(serviceName, version, environment).
		WithLevel(logging.LogLevelFromString(cfg.Level)).
		WithFormat(logging.LogFormatFromString(cfg.Format))
	if cfg.OutputFile != "" {
		logCfg = logCfg.WithOutputFile(cfg.OutputFile, logging.Rotation{
			MaxSizeMB:  cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAgeDays: cfg.MaxAgeDays,
			Compress:   cfg.Compress,
		})
	}

	return logging.InitializeGlobalLoggers(logCfg)
}
