package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/annodex-io/annodex/internal/config"
	dbRedis "github.com/annodex-io/annodex/internal/db/redis"
	logpkg "github.com/annodex-io/annodex/internal/logger"
	"github.com/annodex-io/annodex/internal/metrics"
	documentrepo "github.com/annodex-io/annodex/internal/repository/document"
	projectrepo "github.com/annodex-io/annodex/internal/repository/project"
	requestrepo "github.com/annodex-io/annodex/internal/repository/requests"
	rolesrepo "github.com/annodex-io/annodex/internal/repository/roles"
	chiTransport "github.com/annodex-io/annodex/internal/transport/chi"
	documentuc "github.com/annodex-io/annodex/internal/usecase/document"
	guarduc "github.com/annodex-io/annodex/internal/usecase/guard"
	healthuc "github.com/annodex-io/annodex/internal/usecase/health"
	projectuc "github.com/annodex-io/annodex/internal/usecase/project"
	requestuc "github.com/annodex-io/annodex/internal/usecase/request"
	resolveruc "github.com/annodex-io/annodex/internal/usecase/resolver"
	rolesuc "github.com/annodex-io/annodex/internal/usecase/roles"
	"github.com/annodex-io/annodex/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting annodex API server",
		zap.String("build", version.String()),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("db_addrs", cfg.Database.Addrs),
		zap.Bool("no_auth", cfg.Auth.NoAuth),
		zap.Bool("allow_guests", cfg.Auth.AllowGuests),
	)

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Username: cfg.Database.Username,
		Password: cfg.Database.Password,
		DB:       cfg.Database.DB,
	})
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	// Wait for database to be ready
	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	logger.Info("Connected to database")

	// Register metrics explicitly (no init())
	metrics.RegisterAuthzMetrics()
	metrics.RegisterHTTPMetrics()

	// Create repositories and their search indexes
	roleRepo := rolesrepo.New(store)
	reqRepo := requestrepo.New(store)
	projRepo := projectrepo.New(store)
	docRepo := documentrepo.New(store)

	if err := roleRepo.EnsureIndex(ctx); err != nil {
		logger.Fatal("Failed to create role index", zap.Error(err))
	}
	if err := reqRepo.EnsureIndex(ctx); err != nil {
		logger.Fatal("Failed to create request index", zap.Error(err))
	}

	// Create use case services
	resolverSvc := resolveruc.New(roleRepo)
	guardSvc := guarduc.New(resolverSvc, metrics.AuthzDecisionsTotal)
	rolesSvc := rolesuc.New(roleRepo, guardSvc, resolverSvc)
	projSvc := projectuc.New(projRepo, roleRepo, guardSvc, resolverSvc)
	reqSvc := requestuc.New(reqRepo, roleRepo, projSvc, guardSvc)
	docSvc := documentuc.New(docRepo, guardSvc, resolverSvc)
	healthSvc := healthuc.New(store)

	// Create chi server
	server := chiTransport.NewServer(projSvc, rolesSvc, reqSvc, docSvc, healthSvc, logger).
		WithPagination(cfg.Search.DefaultPageSize, cfg.Search.MaxPageSize)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.AuthMiddleware(cfg.Auth, metrics.AuthnRequestsTotal))
	r.Use(metrics.Middleware())
	r.Handle("/metrics", promhttp.Handler())
	server.Register(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"code":    "internal_error",
						"message": "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// chi.middleware.RequestID already placed request_id in context
			requestID := chiMiddleware.GetReqID(r.Context())

			// Set X-Request-ID in response header
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			// Per-request logger with request_id
			ctx, reqLogger := logpkg.WithRequestID(r.Context(), logger, requestID)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line — one line per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
