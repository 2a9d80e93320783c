// Command libraryd serves the library over HTTP, backed by PostgreSQL.
//
// Flags:
//
//	-addr          listen address (default :7777)
//	-reset-schema  drop and recreate all tables before serving
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/librarium/library-service-go/config"
	"github.com/librarium/library-service-go/httpapi"
	"github.com/librarium/library-service-go/library/oteladapters"
	"github.com/librarium/library-service-go/library/postgresengine"
)

const (
	defaultListenAddr = ":7777"
	shutdownTimeout   = 10 * time.Second
	readHeaderTimeout = 5 * time.Second
	idleConnTimeout   = 2 * time.Minute
)

func main() {
	var (
		addr        = flag.String("addr", defaultListenAddr, "HTTP listen address")
		resetSchema = flag.Bool("reset-schema", false, "Drop and recreate all library tables before serving")
	)

	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	poolConfig, err := config.PostgresPGXPoolConfig()
	if err != nil {
		log.Fatalf("Failed to build pgx pool config: %v", err)
	}

	pgxPool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		log.Fatalf("Failed to create pgx pool: %v", err)
	}
	defer pgxPool.Close()

	if err := pgxPool.Ping(ctx); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	lib, err := postgresengine.NewLibraryFromPGXPool(
		pgxPool,
		postgresengine.WithContextualLogger(
			oteladapters.NewSlogBridgeLoggerWithHandler(logger.Handler())),
	)
	if err != nil {
		log.Fatalf("Failed to create library engine: %v", err)
	}

	if *resetSchema {
		if err := lib.ResetSchema(ctx); err != nil {
			log.Fatalf("Failed to reset schema: %v", err)
		}

		logger.Info("schema reset complete")
	}

	server := &http.Server{
		Addr:              *addr,
		Handler:           httpapi.NewServer(lib, logger),
		ReadHeaderTimeout: readHeaderTimeout,
		IdleTimeout:       idleConnTimeout,
	}

	errChan := make(chan error, 1)
	go func() {
		if serveErr := server.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			errChan <- serveErr
		}
	}()

	logger.Info("library service started", "addr", *addr)

	select {
	case sig := <-sigChan:
		logger.Info("shutdown signal received", "signal", sig.String())
	case err := <-errChan:
		logger.Error("server failed", "error", err.Error())
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("error during shutdown", "error", err.Error())
	}

	logger.Info("library service stopped")
}
