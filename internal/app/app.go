package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"gorm.io/gorm"

	"github.com/m3dev4/essenz/internal/config"
	"github.com/m3dev4/essenz/internal/database"
)

// App owns the process lifecycle: serve until a signal arrives, then
// drain in stages so in-flight requests and telemetry both finish.
type App struct {
	cfg    *config.Config
	log    *slog.Logger
	db     *gorm.DB
	server *http.Server

	// shutdowns run in order after the HTTP server has drained.
	shutdowns []func(context.Context) error
}

func New(cfg *config.Config, log *slog.Logger, db *gorm.DB, server *http.Server, shutdowns ...func(context.Context) error) *App {
	return &App{cfg: cfg, log: log, db: db, server: server, shutdowns: shutdowns}
}

func (a *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		a.log.Info("server listening", slog.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	a.log.Info("shutdown started")
	return a.shutdown()
}

func (a *App) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	drainCtx, drainCancel := context.WithTimeout(ctx, a.cfg.ShutdownHTTPDrainTimeout)
	defer drainCancel()
	if err := a.server.Shutdown(drainCtx); err != nil {
		a.log.Error("http drain failed", slog.String("error", err.Error()))
	}

	obsCtx, obsCancel := context.WithTimeout(ctx, a.cfg.ShutdownObservabilityTimeout)
	defer obsCancel()
	for _, fn := range a.shutdowns {
		if err := fn(obsCtx); err != nil {
			a.log.Error("shutdown hook failed", slog.String("error", err.Error()))
		}
	}

	if err := database.Close(a.db); err != nil {
		a.log.Error("database close failed", slog.String("error", err.Error()))
	}

	a.log.Info("shutdown complete")
	return nil
}
