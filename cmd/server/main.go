package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/JonMunkholm/supplierdb/internal/config"
	"github.com/JonMunkholm/supplierdb/internal/core"
	"github.com/JonMunkholm/supplierdb/internal/logging"
	"github.com/JonMunkholm/supplierdb/internal/store"
	"github.com/JonMunkholm/supplierdb/internal/web"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("configuration loaded", "config", cfg.String())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	service := core.NewService(st, core.Options{
		MaxUploadBytes:       cfg.Upload.MaxFileSize,
		PreviewRows:          cfg.Upload.PreviewRows,
		SessionTTL:           cfg.Upload.SessionTTL,
		MaxConcurrentImports: cfg.Upload.MaxConcurrent,
		ImportWait:           cfg.Upload.MaxWaitTime,
		DefaultDatasetName:   cfg.Datasets.DefaultName,
	})
	ds, err := service.EnsureDefaultDataset(ctx)
	if err != nil {
		return err
	}
	slog.Info("default dataset ready", "dataset_id", ds.ID, "name", ds.Name)

	server := web.NewServer(service, cfg)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		service.StartSessionSweeper(gctx, cfg.Upload.SweepInterval)
		return nil
	})
	g.Go(func() error {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		// Let in-flight imports finish before connections are cut
		if status := service.ImportStatus(); status.Active > 0 {
			slog.Info("waiting for imports to complete", "active", status.Active)
			if err := service.WaitForImports(shutdownCtx); err != nil {
				slog.Warn("imports did not complete in time", "error", err)
			}
		}
		return server.Shutdown(shutdownCtx)
	})

	err = g.Wait()
	slog.Info("server stopped")
	return err
}

// openStore connects the configured backend, creating tables when asked.
func openStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	if strings.EqualFold(cfg.Store.Backend, config.BackendMemory) {
		slog.Warn("using in-memory store; data is lost on exit")
		return store.NewMemory(), nil
	}

	pg, err := store.Open(ctx, cfg.Store.URL, store.PoolOptions{
		MaxConns:        cfg.Store.MaxConns,
		MinConns:        cfg.Store.MinConns,
		MaxConnLifetime: cfg.Store.MaxConnLifetime,
		MaxConnIdleTime: cfg.Store.MaxConnIdleTime,
	})
	if err != nil {
		return nil, err
	}

	// Log which database we connected to
	if u, err := url.Parse(cfg.Store.URL); err == nil {
		slog.Info("connected to database", "name", strings.TrimPrefix(u.Path, "/"))
	}

	if cfg.Store.Migrate {
		if err := pg.Migrate(ctx); err != nil {
			pg.Close()
			return nil, err
		}
		slog.Info("database schema up to date")
	}
	return pg, nil
}
