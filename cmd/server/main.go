package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-sales-ledger/internal/ai"
	"go-sales-ledger/internal/auth"
	"go-sales-ledger/internal/config"
	"go-sales-ledger/internal/database"
	"go-sales-ledger/internal/handlers"
	"go-sales-ledger/internal/logger"
	"go-sales-ledger/internal/middleware"
	"go-sales-ledger/internal/sales"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Invalid configuration: ", err)
	}

	zlog, err := logger.New(logger.Config{Level: cfg.LogLevel, Development: cfg.LogDevelopment})
	if err != nil {
		log.Fatal("Failed to build logger: ", err)
	}
	defer func() { _ = zlog.Sync() }()

	// Money goes out as JSON numbers
	decimal.MarshalJSONWithoutQuotes = true

	db, err := database.Open(cfg.DBDriver, cfg.DBDSN, cfg.DBLogLevel, zlog)
	if err != nil {
		zlog.Fatalw("database connection failed", "error", err)
	}
	if err := database.Migrate(db); err != nil {
		zlog.Fatalw("database migration failed", "error", err)
	}
	store := database.NewStore(db)

	policy, err := sales.ParseCashPolicy(cfg.CashReceivedPolicy)
	if err != nil {
		zlog.Fatalw("invalid cash policy", "error", err)
	}
	svc := sales.NewService(store, store, store, sales.Options{
		CashPolicy:   policy,
		RequirePlate: cfg.SaleRequirePlate,
	}, zlog)

	var assistant handlers.Assistant
	if cfg.AssistantEnabled() {
		assistant = ai.NewAgent(cfg.GeminiAPIKey, cfg.GeminiModel, store)
	} else {
		zlog.Info("GEMINI_API_KEY not set, /api/ask is disabled")
	}

	if !cfg.LogDevelopment {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID(zlog))
	r.Use(middleware.Logger(zlog))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(middleware.ErrorHandler())

	h := handlers.New(store, svc, auth.NewTokens(cfg.JWTSecret, cfg.JWTTTL), assistant)
	h.Routes(r, handlers.RouteOptions{AllowRegistration: cfg.AllowRegistration})
	if cfg.AllowRegistration {
		zlog.Warn("registration route is OPEN, disable ALLOW_REGISTRATION in production")
	}

	server := &http.Server{
		Addr:         cfg.Addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		zlog.Infow("server starting", "addr", cfg.Addr, "base_url", cfg.BaseURL, "db", cfg.DBDriver)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Fatalw("server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zlog.Info("shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		zlog.Errorw("server forced to shutdown", "error", err)
	}
	if err := database.Close(db); err != nil {
		zlog.Errorw("closing database", "error", err)
	}
	zlog.Info("server stopped")
}
