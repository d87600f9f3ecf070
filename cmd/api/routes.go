package main

import (
	"context"
	"net/http"
	"time"

	"bookstore/internal/auth"
	"bookstore/internal/book"
	"bookstore/internal/config"
	"bookstore/internal/httpx"
	"bookstore/internal/user"

	"go.uber.org/zap"
)

type services struct {
	books *book.Service
	users *user.Service
	auth  *auth.Service
	// ready reports whether the storage backend can serve requests.
	ready func(ctx context.Context) error
}

func newRouter(cfg config.Config, logger *zap.Logger, svc services, metrics *httpx.Metrics) *http.ServeMux {
	bookHandler := book.NewHTTPHandler(svc.books, logger)
	userHandler := user.NewHTTPHandler(svc.users)
	authHandler := auth.NewHTTPHandler(svc.auth, logger)
	protected := httpx.AuthMiddleware(cfg.JWTSecret)

	router := http.NewServeMux()

	router.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	router.HandleFunc("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 500*time.Millisecond)
		defer cancel()
		if err := svc.ready(ctx); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})
	router.Handle("GET /metrics", metrics.Handler())

	router.HandleFunc("GET /v1/books", bookHandler.List)
	router.HandleFunc("POST /v1/books/search", bookHandler.Search)
	router.HandleFunc("GET /v1/books/{id}", bookHandler.Get)
	router.Handle("POST /v1/books", protected(http.HandlerFunc(bookHandler.Create)))
	router.Handle("PATCH /v1/books/{id}", protected(http.HandlerFunc(bookHandler.Update)))
	router.Handle("DELETE /v1/books/{id}", protected(http.HandlerFunc(bookHandler.Delete)))

	router.HandleFunc("POST /v1/users/register", userHandler.RegisterUser)
	router.HandleFunc("POST /v1/users/login", authHandler.Login)
	router.Handle("GET /v1/me", protected(http.HandlerFunc(userHandler.GetCurrentUser)))

	return router
}

// newHandler wraps the router with the middleware stack. The metrics
// middleware must stay innermost so it sees the matched route pattern.
func newHandler(ctx context.Context, cfg config.Config, logger *zap.Logger, svc services) http.Handler {
	metrics := httpx.NewMetrics()
	rateLimiter := httpx.NewRateLimitMiddleware(ctx, cfg.RateLimitRPS, cfg.RateLimitBurst, cfg.TrustedProxies...)

	return httpx.Chain(newRouter(cfg, logger, svc, metrics),
		httpx.RecoveryMiddleware(logger),
		httpx.RequestIDMiddleware,
		httpx.AccessLogMiddleware(logger),
		httpx.SecurityHeadersMiddleware(cfg.EnableHSTS),
		httpx.CORSMiddleware(cfg.AllowedOrigins),
		rateLimiter.Middleware,
		httpx.RequestSizeLimitMiddleware(cfg.MaxBodyBytes),
		metrics.Middleware,
	)
}
