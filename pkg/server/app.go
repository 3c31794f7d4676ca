package server

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"FilingLens/internal/domain/repository"
	"FilingLens/internal/middleware"
	"FilingLens/internal/usecase"
	"FilingLens/pkg/cache"
	"FilingLens/pkg/config"
	xhttp "FilingLens/pkg/http"
	"FilingLens/pkg/logger"
)

// App owns the lifecycle of one dashboard process.
type App struct {
	cfg        *config.Config
	root       *logger.Logger
	log        *logger.Logger
	dash       *usecase.Dashboard
	pipeline   *middleware.EventPipeline
	publisher  repository.EventPublisher
	httpServer *xhttp.Server
	cache      cache.Service
}

func New(
	cfg *config.Config,
	l *logger.Logger,
	dash *usecase.Dashboard,
	pipeline *middleware.EventPipeline,
	publisher repository.EventPublisher,
	httpServer *xhttp.Server,
	c cache.Service,
) *App {
	return &App{
		cfg:        cfg,
		root:       l,
		log:        l.Component("app"),
		dash:       dash,
		pipeline:   pipeline,
		publisher:  publisher,
		httpServer: httpServer,
		cache:      c,
	}
}

func (a *App) Dashboard() *usecase.Dashboard { return a.dash }

// Run starts the event pipeline, the HTTP server and the bootstrap load, then
// blocks until ctx is cancelled or SIGINT/SIGTERM arrives.
func (a *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Shutdown ends the pipeline, after the dashboard has stopped emitting
	a.pipeline.Start(context.WithoutCancel(ctx))

	if err := a.httpServer.Start(); err != nil {
		return fmt.Errorf("http server: %w", err)
	}
	a.log.Info("dashboard service started",
		logger.String("env", a.cfg.Environment),
		logger.String("engine", a.cfg.Engine.BaseURL),
		logger.String("session", a.dash.Session()),
	)

	// the service stays up without bounds; POST /api/reload retries
	if err := a.dash.Start(ctx); err != nil {
		a.log.Warn("bootstrap load failed", logger.Error(err))
	}

	<-ctx.Done()
	a.log.Info("shutdown signal received")
	return a.Shutdown(context.Background())
}

// Shutdown stops accepting requests, then drains background work and events.
func (a *App) Shutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancel()

	var errs []error
	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.log.Error("http shutdown error", logger.Error(err))
		errs = append(errs, err)
	}

	a.dash.Close()
	a.pipeline.Stop()
	// the log collector publishes through the same producer
	a.root.RemoveCollector()

	if err := a.publisher.Close(); err != nil {
		a.log.Warn("event publisher close error", logger.Error(err))
		errs = append(errs, err)
	}
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.log.Warn("cache close error", logger.Error(err))
			errs = append(errs, err)
		}
	}

	a.log.Info("shutdown complete")
	return errors.Join(errs...)
}
