package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"DerivPulse/internal/domain/repository"
	pkgcache "DerivPulse/pkg/cache"
	"DerivPulse/pkg/config"
	xhttp "DerivPulse/pkg/http"
	applogger "DerivPulse/pkg/logger"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg        *config.Config
	log        *applogger.Logger
	handler    xhttp.Handler
	httpServer *xhttp.Server
	snapshots  repository.SnapshotPublisher
	redis      *pkgcache.RedisCache
}

// New creates a new App instance with all dependencies.
func New(cfg *config.Config, log *applogger.Logger, handler xhttp.Handler) *App {
	return &App{cfg: cfg, log: log, handler: handler}
}

// SetSnapshotPublisher attaches the Kafka snapshot publisher for closing
// on shutdown.
func (a *App) SetSnapshotPublisher(p repository.SnapshotPublisher) { a.snapshots = p }

// SetRedis attaches the Redis client for closing on shutdown.
func (a *App) SetRedis(r *pkgcache.RedisCache) { a.redis = r }

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	a.httpServer = xhttp.NewServer(a.handler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
		xhttp.WithLogger(a.log),
	)

	if err := a.httpServer.Start(); err != nil {
		a.log.Error("http server start error", applogger.Error(err))
		return err
	}
	a.log.Info("server started", applogger.Int("port", a.cfg.Server.Port))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.log.Info("shutdown signal received")
	return a.shutdown()
}

// shutdown gracefully stops all services.
func (a *App) shutdown() error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.log.Error("http shutdown error", applogger.Error(err))
	}

	if a.snapshots != nil {
		if err := a.snapshots.Close(); err != nil {
			a.log.Warn("snapshot publisher close error", applogger.Error(err))
		}
	}

	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.log.Warn("redis close error", applogger.Error(err))
		}
	}

	a.log.Info("shutdown complete")
	return nil
}
