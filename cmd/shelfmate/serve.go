package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/shelfmate/shelfmate/internal/metrics"
	"github.com/shelfmate/shelfmate/internal/transport/httpapi"
	"github.com/shelfmate/shelfmate/internal/version"
)

const shutdownTimeout = 10 * time.Second

func (a *app) cmdServe(args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	addr := fs.String("addr", a.cfg.HTTPAddr, "listen address")
	if err := fs.Parse(args); err != nil {
		return err
	}

	metrics.Register()

	a.logger.Info("starting shelfmate API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("addr", *addr),
		zap.String("data_dir", a.cfg.DataDir),
	)

	server := httpapi.NewServer(a.reads, a.recommend, a.lookup, a.db, a.logger)
	srv := &http.Server{
		Addr:         *addr,
		Handler:      server.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: time.Duration(a.cfg.RequestTimeoutSec+15) * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-quit:
	}
	a.logger.Info("received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("error during shutdown", zap.Error(err))
		return err
	}

	a.logger.Info("server stopped gracefully")
	return nil
}
