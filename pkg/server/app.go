package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ETFSheet/internal/usecase"
	pkgch "ETFSheet/pkg/clickhouse"
	"ETFSheet/pkg/config"
	xhttp "ETFSheet/pkg/http"
	applogger "ETFSheet/pkg/logger"
)

// App encapsulates the entire application lifecycle: the HTTP server
// and the periodic sheet refresh loop.
type App struct {
	cfg        *config.Config
	refresher  *usecase.SheetRefresher
	handler    xhttp.Handler
	chClient   *pkgch.Client
	logger     *applogger.Logger
	httpServer *xhttp.Server
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	refresher *usecase.SheetRefresher,
	handler xhttp.Handler,
	chClient *pkgch.Client,
	logger *applogger.Logger,
) *App {
	return &App{
		cfg:       cfg,
		refresher: refresher,
		handler:   handler,
		chClient:  chClient,
		logger:    logger,
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a.httpServer = xhttp.NewServer(a.handler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
	)
	if err := a.httpServer.Start(); err != nil {
		a.logger.Error("http server start error", applogger.Error(err))
		return err
	}

	go a.refreshLoop(ctx)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.logger.Info("shutdown signal received")
	cancel()
	return a.shutdown()
}

// refreshLoop runs one refresh at startup, then on every interval
// tick. With no interval configured only the startup refresh runs.
func (a *App) refreshLoop(ctx context.Context) {
	a.refresh(ctx)

	interval := a.cfg.Sheet.RefreshInterval
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.refresh(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (a *App) refresh(ctx context.Context) {
	if _, err := a.refresher.Refresh(ctx); err != nil {
		a.logger.Error("scheduled refresh failed", applogger.Error(err))
	}
}

// shutdown gracefully stops all services.
func (a *App) shutdown() error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.logger.Error("http shutdown error", applogger.Error(err))
	}

	if a.refresher != nil {
		a.refresher.Close()
	}
	if a.chClient != nil {
		if err := a.chClient.Close(); err != nil {
			a.logger.Warn("clickhouse close error", applogger.Error(err))
		}
	}

	a.logger.Info("shutdown complete")
	return nil
}
