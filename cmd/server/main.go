// Compliance Engine - Server Entry Point
//
// This is the main entry point for the content compliance service.
// It initializes all dependencies and starts the HTTP server.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jarvish/compliance-engine/internal/ai"
	"github.com/jarvish/compliance-engine/internal/cache"
	"github.com/jarvish/compliance-engine/internal/config"
	"github.com/jarvish/compliance-engine/internal/handler"
	"github.com/jarvish/compliance-engine/internal/logger"
	"github.com/jarvish/compliance-engine/internal/metrics"
	"github.com/jarvish/compliance-engine/internal/rules"
	"github.com/jarvish/compliance-engine/internal/score"
	"github.com/jarvish/compliance-engine/internal/service"
	"github.com/jarvish/compliance-engine/pkg/normalize"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	// Load .env file if it exists (development)
	_ = godotenv.Load()

	// Determine if we're in development mode
	isDev := os.Getenv("GIN_MODE") != "release"

	// Initialize logger
	zapLogger, err := logger.New(isDev)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer zapLogger.Sync()

	zapLogger.Info("starting compliance engine",
		zap.Bool("development", isDev),
	)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		zapLogger.Fatal("failed to load configuration", zap.Error(err))
	}

	zapLogger.Info("configuration loaded",
		zap.String("port", cfg.Server.Port),
		zap.String("model", cfg.Model.Model),
		zap.Bool("mock_mode", cfg.Model.MockMode),
		zap.Int("risk_threshold", cfg.Compliance.RiskThreshold),
		zap.Bool("redis_enabled", cfg.Cache.RedisAddr != ""),
	)

	// Initialize metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(registry)

	// Initialize model client
	var modelClient ai.Client
	if cfg.Model.MockMode {
		zapLogger.Warn("running in mock mode - model responses are simulated")
		modelClient = ai.NewMockClient(zapLogger)
	} else {
		promptBuilder, err := ai.NewDefaultPromptBuilder()
		if err != nil {
			zapLogger.Fatal("failed to create prompt builder", zap.Error(err))
		}

		validator := ai.NewDefaultValidator()

		modelClient = ai.NewOpenAIClient(&cfg.Model, promptBuilder, validator, zapLogger)
	}

	// Initialize cache store
	var store cache.Store
	if cfg.Cache.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Cache.RedisAddr,
			Password: cfg.Cache.RedisPassword,
			DB:       cfg.Cache.RedisDB,
		})
		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := redisClient.Ping(pingCtx).Err(); err != nil {
			zapLogger.Warn("redis unreachable at startup, continuing anyway", zap.Error(err))
		}
		cancel()
		store = cache.NewRedisStore(redisClient)
	} else {
		zapLogger.Warn("REDIS_ADDR not set, using in-memory cache store")
		store = cache.NewMemoryStore()
	}
	cacheLayer := cache.NewLayer(store, cfg.Cache.DefaultTTL, zapLogger)

	// Initialize pipeline components
	ruleEngine := rules.NewEngine(rules.DefaultRules(), zapLogger)
	aggregator := score.NewAggregator(cfg.Compliance.RiskThreshold, zapLogger)
	normalizer := normalize.New(cfg.Compliance.MaxContentLength)

	// Initialize checker service
	checker := service.NewChecker(
		modelClient,
		ruleEngine,
		aggregator,
		cacheLayer,
		normalizer,
		m,
		service.CheckerConfig{
			MinConfidence:  cfg.Compliance.MinConfidence,
			FixableCeiling: cfg.Compliance.FixableCeiling,
			ModelTimeout:   cfg.Model.Timeout,
		},
		zapLogger,
	)

	// Initialize handlers
	complianceHandler := handler.NewComplianceHandler(checker, zapLogger)
	healthHandler := handler.NewHealthHandler(zapLogger)
	readyHandler := handler.NewReadyHandler(checker, zapLogger)

	// Setup Gin router
	if !isDev {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Apply middleware
	router.Use(handler.RecoveryMiddleware(zapLogger))
	router.Use(handler.RequestIDMiddleware())
	router.Use(handler.LoggingMiddleware(zapLogger))
	router.Use(handler.CORSMiddleware())
	// Content ceiling plus JSON envelope headroom.
	router.Use(handler.BodyLimitMiddleware(int64(cfg.Compliance.MaxContentLength) + 4096))

	// Register routes
	router.GET("/health", healthHandler.Handle)
	router.GET("/ready", readyHandler.Handle)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		v1.POST("/compliance/check", complianceHandler.Check)
		v1.POST("/compliance/autofix", complianceHandler.AutoFix)
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in goroutine
	go func() {
		zapLogger.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("server failed", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("shutting down server...")

	// Give the server 10 seconds to finish processing
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Error("server forced to shutdown", zap.Error(err))
	}

	zapLogger.Info("server stopped")
}
