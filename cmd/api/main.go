package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/mohammadpnp/csv-user-import/internal/bootstrap"
	"github.com/mohammadpnp/csv-user-import/internal/config"
	"github.com/mohammadpnp/csv-user-import/internal/logging"
)

func main() {
	configPath := flag.String("config", ".", "directory containing an optional config.yaml")
	flag.Parse()

	if err := run(*configPath); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger := logging.Setup(cfg.Log.Level, cfg.Log.Format)
	logger.Info("starting", "config", cfg.String())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	stores, err := bootstrap.OpenStores(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer stores.Close()

	importLock, closeLock, err := bootstrap.NewImportLock(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("import lock: %w", err)
	}
	defer closeLock()

	sources, err := bootstrap.NewSources(ctx, cfg, true)
	if err != nil {
		return fmt.Errorf("import sources: %w", err)
	}

	server := bootstrap.NewHTTPServer(cfg, logger, stores.DB, stores.Pool, importLock, sources)

	serverErr := make(chan error, 1)
	go func() {
		addr := ":" + strconv.Itoa(cfg.Server.Port)
		logger.Info("http server listening", "addr", addr)
		if err := server.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	logger.Info("server stopped")
	return nil
}
