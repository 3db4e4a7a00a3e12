package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/spec-kit/revdup-client/internal/config"
	"github.com/spec-kit/revdup-client/internal/devbackend"
	"github.com/spec-kit/revdup-client/internal/observability"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	repo := devbackend.NewMemoryRepository()
	if dsn := cfg.DevBackend.PostgresDSN; dsn != "" {
		pool, err := pgxpool.New(ctx, dsn)
		if err != nil {
			logger.Fatal("failed to connect postgres", zap.Error(err))
		}
		defer pool.Close()

		if err := devbackend.EnsureSchema(ctx, pool); err != nil {
			logger.Fatal("failed to ensure schema", zap.Error(err))
		}
		repo = devbackend.NewPostgresRepository(pool)
		logger.Info("using postgres account repository")
	} else {
		logger.Info("using in-memory account repository")
	}

	handler := devbackend.NewHandler(cfg.DevBackend, repo, logger)
	app := devbackend.NewApp(cfg.Backend, handler, logger)

	go func() {
		if err := app.Listen(cfg.DevBackend.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
