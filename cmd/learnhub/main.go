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
	"go.uber.org/zap"

	"github.com/learnhub-cloud/learnhub/internal/config"
	dbPostgres "github.com/learnhub-cloud/learnhub/internal/db/postgres"
	dbRedis "github.com/learnhub-cloud/learnhub/internal/db/redis"
	"github.com/learnhub-cloud/learnhub/internal/domain"
	"github.com/learnhub-cloud/learnhub/internal/domain/search/request"
	logpkg "github.com/learnhub-cloud/learnhub/internal/logger"
	"github.com/learnhub-cloud/learnhub/internal/metrics"
	budgetrepo "github.com/learnhub-cloud/learnhub/internal/repository/budget"
	contentrepo "github.com/learnhub-cloud/learnhub/internal/repository/content"
	"github.com/learnhub-cloud/learnhub/internal/repository/enhcache"
	querylogrepo "github.com/learnhub-cloud/learnhub/internal/repository/querylog"
	chiTransport "github.com/learnhub-cloud/learnhub/internal/transport/chi"
	"github.com/learnhub-cloud/learnhub/internal/transport/deepseek"
	"github.com/learnhub-cloud/learnhub/internal/transport/serper"
	completionuc "github.com/learnhub-cloud/learnhub/internal/usecase/completion"
	generateuc "github.com/learnhub-cloud/learnhub/internal/usecase/generate"
	healthuc "github.com/learnhub-cloud/learnhub/internal/usecase/health"
	resourcesuc "github.com/learnhub-cloud/learnhub/internal/usecase/resources"
	searchuc "github.com/learnhub-cloud/learnhub/internal/usecase/search"
	usageuc "github.com/learnhub-cloud/learnhub/internal/usecase/usage"
	"github.com/learnhub-cloud/learnhub/internal/version"
)

const resourceCacheTTL = 24 * time.Hour

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

	logger.Info("Starting learnhub API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("ai_provider", cfg.AI.Provider),
	)

	ctx := context.Background()

	// Durable store: content collections and the query log.
	pg, err := dbPostgres.NewStore(ctx, dbPostgres.Config{
		DSN:      cfg.Database.DSN,
		MaxConns: cfg.Database.MaxConns,
	})
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer pg.Close()

	if err := pg.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	logger.Info("Connected to database")

	// Cache store: enhancement cache, budget counters, resource cache.
	// Optional — with no addrs configured the service runs uncached.
	var cache *dbRedis.Store
	if len(cfg.Cache.Addrs) > 0 {
		cache, err = dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Cache.Addrs,
			Password: cfg.Cache.Password,
		})
		if err != nil {
			logger.Fatal("Failed to create cache store", zap.Error(err))
		}
		defer cache.Close()

		if err := cache.WaitForReady(ctx, time.Duration(cfg.Cache.ReadinessTimeout)*time.Second); err != nil {
			logger.Fatal("Cache not ready", zap.Error(err))
		}
		logger.Info("Connected to cache")
	}

	// Register LLM metrics explicitly (no init())
	metrics.RegisterLLMMetrics()

	// Single BudgetTracker shared across all completers and the usage service.
	var budget *completionuc.BudgetTracker
	budgetCfg := cfg.AI.Budget
	if budgetCfg.DailyTokenLimit > 0 || budgetCfg.MonthlyTokenLimit > 0 {
		action := completionuc.BudgetActionWarn
		if budgetCfg.Action == "reject" {
			action = completionuc.BudgetActionReject
		}
		budget = completionuc.NewBudgetTracker(
			cfg.AI.Provider, budgetCfg.DailyTokenLimit, budgetCfg.MonthlyTokenLimit, action, logger,
		)
		// Connect persistence store — loads current counters from cache.
		if cache != nil {
			budgetStore := budgetrepo.New(cache, 48*time.Hour, 62*24*time.Hour)
			budget.WithStore(ctx, budgetStore)
		}
	}

	// Pass nil interface (not typed nil pointer!) if budget is not configured.
	// Go gotcha: (*BudgetTracker)(nil) wrapped in BudgetChecker != nil.
	var budgetChecker completionuc.BudgetChecker
	if budget != nil {
		budgetChecker = budget
	}

	// Completer chain: DeepSeek -> Instrumented (budget + metrics).
	dsClient := deepseek.NewClient(&deepseek.Config{
		APIKey:       cfg.AI.APIKey,
		BaseURL:      cfg.AI.BaseURL,
		DefaultModel: cfg.AI.ChatModel,
		Provider:     cfg.AI.Provider,
		Timeout:      time.Duration(cfg.AI.TimeoutSec) * time.Second,
		Logger:       logger,
	})
	var completer domain.Completer = completionuc.NewInstrumentedCompleter(
		dsClient, cfg.AI.Provider, budgetChecker, logger,
	)

	// Enhancer chain: AI enhancer -> cached (when a cache store is available).
	var enhancer domain.Enhancer = searchuc.NewAIEnhancer(completer, cfg.AI.ChatModel)
	if cache != nil {
		enhancer = enhcache.New(
			enhancer, cache,
			time.Duration(cfg.Cache.EnhancementTTLSec)*time.Second,
			metrics.EnhancementCacheTotal, logger,
		)
	}

	// Repositories
	contentRepo := contentrepo.New(pg.Pool())
	logRepo := querylogrepo.New(pg.Pool())

	// Use case services
	searchSvc := searchuc.New(contentRepo, logRepo, logRepo, enhancer, searchuc.Config{
		PerSourceLimit:       cfg.Search.PerSourceLimit,
		SourceTimeout:        time.Duration(cfg.Search.SourceTimeoutSec) * time.Second,
		LogTimeout:           time.Duration(cfg.Search.LogTimeoutSec) * time.Second,
		CostPerMillionTokens: budgetCfg.CostPerMillionTokens,
		ModelUsed:            cfg.AI.ChatModel,
	}, logger)

	generateSvc := generateuc.New(completer, contentRepo, logRepo, generateuc.Config{
		ChatModel:              cfg.AI.ChatModel,
		ReasonerModel:          cfg.AI.ReasonerModel,
		ChatCostPerMillion:     budgetCfg.CostPerMillionTokens,
		ReasonerCostPerMillion: budgetCfg.ReasonerCostPerMillionTokens,
	}, logger)

	serperClient := serper.NewClient(&serper.Config{
		APIKey:  cfg.Serper.APIKey,
		BaseURL: cfg.Serper.BaseURL,
		Timeout: time.Duration(cfg.Serper.TimeoutSec) * time.Second,
		Logger:  logger,
	})

	resourcesCfg := resourcesuc.Config{
		Model:          cfg.AI.ReasonerModel,
		CostPerMillion: budgetCfg.ReasonerCostPerMillionTokens,
		CacheTTL:       resourceCacheTTL,
	}
	var resourcesSvc *resourcesuc.Service
	if cache != nil {
		resourcesSvc = resourcesuc.New(completer, serperClient, cache, logRepo, resourcesCfg, logger)
	} else {
		resourcesSvc = resourcesuc.New(completer, serperClient, nil, logRepo, resourcesCfg, logger)
	}

	// Usage service — reads from shared BudgetTracker and the analytics rows
	var budgetReader usageuc.BudgetReader
	if budget != nil {
		budgetReader = budget
	}
	usageSvc := usageuc.New(budgetReader, logRepo)

	// Health service
	var cachePinger healthuc.CachePinger
	if cache != nil {
		cachePinger = cache
	}
	healthSvc := healthuc.New(pg, cachePinger, dsClient)

	// Create chi server
	server := chiTransport.NewServer(
		searchSvc, generateSvc, resourcesSvc, usageSvc, healthSvc,
		request.Limits{DefaultLimit: cfg.Search.DefaultLimit, MaxLimit: cfg.Search.MaxLimit},
		logger,
	)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
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
			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

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
