package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"

	"github.com/fadhlanhapp/tripplanner-backend/auth"
	"github.com/fadhlanhapp/tripplanner-backend/config"
	"github.com/fadhlanhapp/tripplanner-backend/handlers"
	"github.com/fadhlanhapp/tripplanner-backend/logging"
	"github.com/fadhlanhapp/tripplanner-backend/middleware"
	"github.com/fadhlanhapp/tripplanner-backend/repository"
	"github.com/fadhlanhapp/tripplanner-backend/routes"
)

func main() {
	// Load environment variables
	envErr := godotenv.Load()
	logging.Setup()
	if envErr != nil {
		slog.Warn(".env file not found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	decimal.MarshalJSONWithoutQuotes = true
	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize New Relic
	var app *newrelic.Application
	if cfg.NewRelicLicenseKey != "" {
		app, err = newrelic.NewApplication(
			newrelic.ConfigAppName(cfg.NewRelicAppName),
			newrelic.ConfigLicense(cfg.NewRelicLicenseKey),
			newrelic.ConfigDistributedTracerEnabled(true),
		)
		if err != nil {
			slog.Warn("failed to initialize New Relic", "error", err)
			app = nil
		}
	}

	store, ping, err := openStore(ctx, cfg)
	if err != nil {
		slog.Error("failed to initialize store", "backend", cfg.StoreBackend, "error", err)
		os.Exit(1)
	}
	defer store.Close()

	tokens := auth.NewTokenManager(cfg.AccessTokenSecret, cfg.AccessTokenTTL, cfg.RefreshTokenSecret, cfg.RefreshTokenTTL)
	h := handlers.NewHandler(handlers.NewHandlerServices(store, tokens, cfg.ReportLocation), cfg.RequestTimeout, ping)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics, err := middleware.NewMetrics(registry)
	if err != nil {
		slog.Error("failed to register metrics", "error", err)
		os.Exit(1)
	}

	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestID(), middleware.Logger(slog.Default()), metrics.Handler())
	if app != nil {
		router.Use(nrgin.Middleware(app))
	}
	router.Use(cors.New(corsConfig(cfg)))

	routes.SetupRoutes(router, h, promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      cfg.RequestTimeout + 15*time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		slog.Info("server starting", "port", cfg.Port, "store", cfg.StoreBackend)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("graceful shutdown failed", "error", err)
	}
	if app != nil {
		app.Shutdown(5 * time.Second)
	}
}

// openStore returns the configured store and a health probe for it
func openStore(ctx context.Context, cfg *config.Config) (repository.LedgerStore, func(context.Context) error, error) {
	if cfg.StoreBackend == config.StoreMemory {
		slog.Warn("using in-memory store, data is lost on restart")
		return repository.NewMemoryStore(), nil, nil
	}

	db, err := repository.Open(ctx, cfg.DB)
	if err != nil {
		return nil, nil, err
	}
	if cfg.DB.AutoSchema {
		if err := repository.EnsureSchema(ctx, db); err != nil {
			db.Close()
			return nil, nil, err
		}
	}
	return repository.NewPostgresStore(db), db.PingContext, nil
}

func corsConfig(cfg *config.Config) cors.Config {
	c := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if cfg.AllowsAnyOrigin() {
		// echo the caller's origin so cookies still work
		c.AllowOriginFunc = func(string) bool { return true }
	} else {
		c.AllowOrigins = cfg.CORSAllowedOrigins
	}
	return c
}
