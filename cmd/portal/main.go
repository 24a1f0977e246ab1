package main

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/carebridge/portal/internal/api/router"
	appconfig "github.com/carebridge/portal/internal/config"
	"github.com/carebridge/portal/internal/http/handlers"
	"github.com/carebridge/portal/internal/observability/metrics"
	"github.com/carebridge/portal/internal/session"
	"github.com/carebridge/portal/internal/upstream"
	"github.com/carebridge/portal/pkg/logging"
)

func main() {
	// Load .env if present; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := appconfig.Load()

	logger := logging.NewWithWriter(cfg.LogLevel, cfg.LogFormat, os.Stdout)
	logger.Info("starting carebridge portal",
		"env", cfg.Env,
		"port", cfg.Port,
		"upstream", cfg.UpstreamBaseURL,
	)

	reg := prometheus.NewRegistry()
	m := metrics.NewPortalMetrics(reg)

	// Sessions live in Redis when an address is configured, otherwise in
	// process memory (single-instance dev setups).
	var store session.Store
	var cache session.Cache
	if cfg.RedisAddr != "" {
		opts := &redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		}
		if cfg.RedisTLS {
			opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
		}
		rdb := redis.NewClient(opts)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := rdb.Ping(ctx).Err(); err != nil {
			cancel()
			logger.Error("redis unreachable", "addr", cfg.RedisAddr, "error", err)
			os.Exit(1)
		}
		cancel()

		store = session.NewRedisStore(rdb)
		cache = session.NewRedisCache(rdb)
		logger.Info("sessions backed by redis", "addr", cfg.RedisAddr)
	} else {
		store = session.NewMemoryStore()
		cache = session.NewMemoryCache()
		logger.Warn("sessions backed by process memory; set REDIS_ADDR for anything beyond a single instance")
	}

	sessions := session.NewManager(store, cfg.SessionCookie, cfg.SessionTTL, cfg.SecureCookies)
	client := upstream.NewClient(cfg.UpstreamBaseURL, cfg.UpstreamTimeout, logger, m)

	render, err := handlers.NewRenderer(logger, m)
	if err != nil {
		logger.Error("template parse failed", "error", err)
		os.Exit(1)
	}

	routerCfg := &router.Config{
		Logger:         logger,
		Sessions:       sessions,
		Home:           handlers.NewHomeHandler(render),
		Auth:           handlers.NewAuthHandler(client, sessions, render, logger),
		Patient:        handlers.NewPatientHandler(client, sessions, cache, render, logger, cfg.DirectoryPageSize, cfg.CacheTTL),
		Doctor:         handlers.NewDoctorHandler(client, sessions, cache, render, logger, cfg.CacheTTL),
		MetricsHandler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
	}
	r := router.New(routerCfg)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
	fmt.Println("Server exited gracefully")
}
