package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"lanagate/internal/api"
	"lanagate/internal/config"
	"lanagate/internal/logger"
	"lanagate/internal/observability"
	"lanagate/internal/ratelimit"
	"lanagate/internal/storage"
	"lanagate/internal/upstream"
	"lanagate/internal/version"
)

var (
	configFile  = flag.String("config", "", "Path to configuration file")
	showVersion = flag.Bool("version", false, "Print version information and exit")
)

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Println(version.GetInfo().String())
		os.Exit(0)
	}

	// Load configuration
	cfg, err := config.Load(*configFile)
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	ver := version.GetInfo()

	// Initialize structured logging
	log, closer, err := logger.Setup(cfg.Logging, ver)
	if err != nil {
		slog.Error("Failed to initialize logger", "error", err)
		os.Exit(1)
	}
	if closer != nil {
		defer closer.Close()
	}
	slog.SetDefault(log)

	// Initialize observability (OpenTelemetry)
	otelProvider, err := observability.Setup(cfg.Metrics, cfg.Observability, ver)
	if err != nil {
		slog.Error("Failed to initialize observability", "error", err)
		os.Exit(1)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := otelProvider.Shutdown(shutdownCtx); err != nil {
			slog.Error("Failed to shutdown observability", "error", err)
		}
	}()

	// Initialize the admission event store
	factory := storage.NewFactory()
	store, err := factory.Create(cfg.Storage)
	if err != nil {
		slog.Error("Failed to initialize event store", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	// Wrap the store with instrumentation if metrics are enabled
	var activeStore storage.EventStore = store
	if cfg.Metrics.Enabled {
		instrumented, err := observability.NewInstrumentedStore(store)
		if err != nil {
			slog.Error("Failed to create instrumented store", "error", err)
			os.Exit(1)
		}
		activeStore = instrumented
	}

	// Backend client for admitted requests
	backend := upstream.NewClient(cfg.Upstream)

	handlers := api.NewHandlers(activeStore, backend)

	routeOpts := []api.RouteOption{}
	if cfg.Observability.Tracing.Enabled {
		routeOpts = append(routeOpts, api.WithOTelMiddleware(cfg.Observability.ServiceName))
	}

	// Wire the admission limiter and local pre-filter if enabled
	var limit api.LimiterFunc
	if cfg.RateLimit.Enabled {
		table := ratelimit.NewPolicyTable(cfg.RateLimit.Mode, cfg.RateLimit.Overrides)

		limiter := ratelimit.NewAdmissionLimiter(activeStore, table,
			ratelimit.WithStoreTimeout(cfg.RateLimit.StoreTimeout),
		)

		var local *ratelimit.LocalLimiter
		if cfg.RateLimit.Local.Enabled {
			local = ratelimit.NewLocalLimiter(
				cfg.RateLimit.Local.RequestsPerMinute,
				cfg.RateLimit.Local.BurstSize,
				cfg.RateLimit.Local.CleanupInterval,
			)
			defer local.Close()
		}

		limit = func(endpoint string) mux.MiddlewareFunc {
			return mux.MiddlewareFunc(ratelimit.Middleware(limiter, local, endpoint))
		}

		// Prune events that have aged out of every quota window. Double the
		// longest window keeps a margin for clock skew between instances.
		pruner := storage.NewPruner(activeStore, 2*table.MaxWindow(), 10*time.Minute)
		pruner.Start()
		defer pruner.Stop()
	}

	router := api.SetupRoutes(handlers, limit, routeOpts...)

	// Start metrics server if enabled
	var metricsServer *observability.MetricsServer
	if cfg.Metrics.Enabled {
		metricsServer = observability.NewMetricsServer(cfg.Metrics.Port, cfg.Metrics.Path, otelProvider)
		go func() {
			if err := metricsServer.Start(); err != nil && err != http.ErrServerClosed {
				slog.Error("Metrics server failed", "error", err)
			}
		}()
	}

	// Create HTTP server
	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server in a goroutine
	go func() {
		slog.Info("Starting server", "addr", server.Addr, "mode", cfg.RateLimit.Mode)

		var err error
		if cfg.Server.TLSEnabled {
			slog.Info("Starting HTTPS server with TLS")
			err = server.ListenAndServeTLS(cfg.Server.TLSCertFile, cfg.Server.TLSKeyFile)
		} else {
			slog.Info("Starting HTTP server")
			err = server.ListenAndServe()
		}

		if err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Shutting down server")

	// Create a deadline to wait for shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Shutdown metrics server
	if metricsServer != nil {
		if err := metricsServer.Shutdown(ctx); err != nil {
			slog.Error("Metrics server forced to shutdown", "error", err)
		}
	}

	// Attempt graceful shutdown
	if err := server.Shutdown(ctx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
	}

	slog.Info("Server shutdown complete")
}
