package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bookstore/internal/auth"
	"bookstore/internal/book"
	"bookstore/internal/config"
	applog "bookstore/internal/platform/logger"
	"bookstore/internal/user"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

func main() {
	config.LoadEnvFiles()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := applog.New(applog.Config{Debug: cfg.Debug})
	if err != nil {
		fmt.Fprintf(os.Stderr, "cannot build logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func run(ctx context.Context, cfg config.Config, logger *zap.Logger) error {
	svc, closeStore, err := openServices(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      newHandler(ctx, cfg, logger, svc),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("starting server", zap.String("addr", cfg.Addr), zap.String("storage", cfg.Storage))
		serveErr <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func openServices(ctx context.Context, cfg config.Config, logger *zap.Logger) (services, func(), error) {
	var (
		bookRepo book.Repository
		userRepo user.Repository
		ready    func(context.Context) error
		closeFn  = func() {}
	)

	switch cfg.Storage {
	case config.StorageMemory:
		logger.Warn("using in-memory storage, data is lost on restart")
		bookRepo = book.NewMemoryRepo()
		userRepo = user.NewMemoryRepo()
		ready = func(context.Context) error { return nil }
	default:
		pool, err := openDB(ctx, cfg.DatabaseDSN)
		if err != nil {
			return services{}, nil, err
		}
		logger.Info("database connection OK", zap.String("dsn", config.RedactDSN(cfg.DatabaseDSN)))
		bookRepo = book.NewPostgresRepo(pool, cfg.DBTimeout)
		userRepo = user.NewPostgresRepo(pool, cfg.DBTimeout)
		ready = pool.Ping
		closeFn = pool.Close
	}

	userService := user.NewService(userRepo)
	return services{
		books: book.NewService(bookRepo),
		users: userService,
		auth:  auth.NewService(cfg.JWTSecret, cfg.TokenTTL, userService),
		ready: ready,
	}, closeFn, nil
}

func openDB(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("cannot create db pool: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("cannot ping database (%s): %w", config.RedactDSN(dsn), err)
	}
	return pool, nil
}
