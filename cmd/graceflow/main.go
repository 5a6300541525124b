package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/graceflow/graceflow-api/internal/config"
	"github.com/graceflow/graceflow-api/internal/domain"
	"github.com/graceflow/graceflow-api/internal/handler"
	"github.com/graceflow/graceflow-api/internal/infra/cache"
	"github.com/graceflow/graceflow-api/internal/infra/client"
	"github.com/graceflow/graceflow-api/internal/infra/memstore"
	"github.com/graceflow/graceflow-api/internal/infra/observability"
	"github.com/graceflow/graceflow-api/internal/infra/resilience"
	"github.com/graceflow/graceflow-api/internal/infra/supabase"
	"github.com/graceflow/graceflow-api/internal/port"
	"github.com/graceflow/graceflow-api/internal/service"

	"go.uber.org/zap"
)

func main() {
	// --- Load .env file (for local development) ---
	_ = config.LoadDotEnv(".env")

	// --- Config ---
	cfg := config.Load()

	// --- Logger ---
	logger := observability.NewLogger(cfg.LogLevel)
	defer logger.Sync()

	logger.Info("configuration loaded",
		zap.Int("port", cfg.Port),
		zap.String("log_level", cfg.LogLevel),
		zap.Bool("use_supabase", cfg.UseSupabase()),
		zap.Duration("http_timeout", cfg.HTTPTimeout),
		zap.Duration("cache_ttl", cfg.CacheTTL),
		zap.Int("max_retries", cfg.MaxRetries),
		zap.Duration("initial_backoff", cfg.InitialBackoff),
		zap.Duration("jwt_access_ttl", cfg.JWTAccessTTL),
		zap.Strings("cors_origins", cfg.AllowedOrigins),
	)

	// "none" rejects users without a profile row
	fallbackRole := domain.Role(cfg.FallbackRole)
	if fallbackRole == "none" {
		fallbackRole = ""
	}
	if fallbackRole != "" && !fallbackRole.Valid() {
		logger.Fatal("invalid FALLBACK_ROLE", zap.String("role", cfg.FallbackRole))
	}

	// --- Tracing ---
	shutdown, err := observability.InitTracer(cfg.OTLPEndpoint, "graceflow-api")
	if err != nil {
		logger.Fatal("failed to init tracer", zap.Error(err))
	}
	defer shutdown(context.Background())

	// --- Metrics ---
	metrics := observability.NewMetrics()

	// --- Cache ---
	profileCache := cache.New[*domain.Profile](cfg.CacheTTL)
	defer profileCache.Close()

	// --- Resilience ---
	resilienceCfg := resilience.Config{
		MaxRetries:     cfg.MaxRetries,
		InitialBackoff: cfg.InitialBackoff,
		MaxConcurrency: cfg.MaxConcurrency,
	}
	storeCB := resilience.NewCircuitBreaker("supabase", logger)
	smsCB := resilience.NewCircuitBreaker("sms", logger)

	// --- Clients ---
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}

	var store port.Store
	mode := "supabase"
	if cfg.UseSupabase() {
		logger.Info("using Supabase as record store",
			zap.String("supabase_url", cfg.SupabaseURL),
		)
		store = supabase.NewClient(
			httpClient,
			cfg.SupabaseURL,
			cfg.SupabaseAnonKey,
			cfg.SupabaseServiceKey,
			cfg.LoginEmailDomain,
			storeCB,
			resilienceCfg,
			logger,
		)
	} else {
		mode = "simulation"
		mem := memstore.New()
		if _, err := mem.AddProfile(cfg.DevAdminUsername, "Administrator", cfg.DevAdminPassword, domain.RoleAdmin); err != nil {
			logger.Fatal("failed to seed simulation admin", zap.Error(err))
		}
		logger.Warn("SUPABASE_URL not set, running in simulation mode on an in-memory store",
			zap.String("admin_username", cfg.DevAdminUsername),
		)
		store = mem
	}

	notifier := client.NewNotifier(httpClient, cfg.SMSAPIURL, cfg.SMSAPIKey, cfg.SMSSender, smsCB, metrics, logger)
	if notifier.Simulated() {
		logger.Warn("NEXTSMS_API_KEY not set, SMS sends are simulated")
	}

	// --- Services ---
	services := &handler.Services{
		Auth:      service.NewAuthService(store, profileCache, cfg.JWTSecret, cfg.JWTAccessTTL, fallbackRole, metrics, logger),
		Ledger:    service.NewLedgerService(store, metrics, logger),
		Approvals: service.NewApprovalQueue(store, metrics, logger),
		Finance:   service.NewFinanceService(store, metrics, logger),
		People:    service.NewPeopleService(store, notifier, cfg.MaxConcurrency, metrics, logger),
		Dashboard: service.NewDashboardService(store, metrics, logger),
		Ministry:  service.NewMinistryService(store, metrics, logger),
		Store:     store,
		Mode:      mode,
	}

	// --- Router ---
	router := handler.NewRouter(services, cfg.AllowedOrigins, metrics, logger)

	// --- Server ---
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// --- Graceful shutdown ---
	go func() {
		logger.Info("server starting", zap.Int("port", cfg.Port), zap.String("mode", mode))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("server shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server forced shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}
