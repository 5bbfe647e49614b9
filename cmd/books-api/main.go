// main is the entry point of the books API.
//
// STARTUP SEQUENCE:
//  1. Load configuration from a YAML file
//  2. Initialise the logger
//  3. Open the configured book storage and seed the product catalog
//  4. Register all HTTP routes
//  5. Run the HTTP server and the rate-limiter janitor in an errgroup
//  6. On SIGINT/SIGTERM, shut down gracefully: finish in-flight requests,
//     close storage, exit
//
// RUNNING THE SERVER:
//
//	go run ./cmd/books-api --config=config/local.yaml
//
// or (with the environment variable):
//
//	CONFIG_PATH=config/local.yaml go run ./cmd/books-api
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/aanand-mishra/books-api/internal/config"
	"github.com/aanand-mishra/books-api/internal/http/middleware"
	"github.com/aanand-mishra/books-api/internal/http/router"
	"github.com/aanand-mishra/books-api/internal/logger"
	"github.com/aanand-mishra/books-api/internal/storage"
	"github.com/aanand-mishra/books-api/internal/storage/memory"
	"github.com/aanand-mishra/books-api/internal/storage/postgres"
	"github.com/aanand-mishra/books-api/internal/storage/sqlite"
)

const shutdownTimeout = 5 * time.Second

func main() {
	cfg := config.MustLoad()

	log := logger.New(cfg.Env, os.Stdout)
	slog.SetDefault(log)

	log.Info("starting books-api",
		slog.String("env", cfg.Env),
		slog.String("storage", cfg.Storage.Driver),
	)

	if err := run(cfg, log); err != nil {
		log.Error("books-api stopped with error", slog.String("error", err.Error()))
		os.Exit(1)
	}
	log.Info("server stopped gracefully")
}

func run(cfg *config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	books, closeBooks, err := openBooks(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialise storage: %w", err)
	}
	defer func() {
		if err := closeBooks(); err != nil {
			log.Error("failed to close storage", slog.String("error", err.Error()))
		}
	}()

	products := memory.NewProductStore(memory.DefaultProducts(), cfg.Storage.UniqueIDs)

	var limiter *middleware.RateLimiter
	if cfg.RateLimit.RPS > 0 {
		limiter = middleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst, 3*time.Minute)
	}

	server := &http.Server{
		Addr: cfg.HTTPServer.Addr,
		Handler: router.New(router.Deps{
			Books:    books,
			Products: products,
			Limiter:  limiter,
		}),
		ReadTimeout:  cfg.HTTPServer.ReadTimeout,
		WriteTimeout: cfg.HTTPServer.WriteTimeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
		ErrorLog:     slog.NewLogLogger(log.Handler(), slog.LevelError),
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("server started", slog.String("address", server.Addr))
		// ErrServerClosed is the expected result of Shutdown.
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server encountered an error: %w", err)
		}
		return nil
	})

	if limiter != nil {
		g.Go(func() error {
			limiter.Run(gctx, time.Minute)
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutdown signal received, stopping server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shutdown server gracefully: %w", err)
		}
		return nil
	})

	return g.Wait()
}

// openBooks builds the book storage selected by cfg.Storage.Driver along
// with the func that releases it.
func openBooks(ctx context.Context, cfg *config.Config) (storage.BookStorage, func() error, error) {
	switch cfg.Storage.Driver {
	case config.DriverSQLite:
		db, err := sqlite.New(cfg)
		if err != nil {
			return nil, nil, err
		}
		slog.Info("storage initialised", slog.String("path", cfg.Storage.Path))
		return db, db.Close, nil
	case config.DriverPostgres:
		db, err := postgres.New(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		slog.Info("storage initialised", slog.String("driver", config.DriverPostgres))
		return db, db.Close, nil
	default:
		return memory.NewBookStore(cfg.Storage.UniqueIDs), func() error { return nil }, nil
	}
}
