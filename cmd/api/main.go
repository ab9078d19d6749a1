package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/Dan9191/finance-service/internal/config"
	"github.com/Dan9191/finance-service/internal/handler"
	"github.com/Dan9191/finance-service/internal/integrations/ecb"
	"github.com/Dan9191/finance-service/internal/integrations/frankfurter"
	"github.com/Dan9191/finance-service/internal/middleware"
	"github.com/Dan9191/finance-service/internal/repository"
	"github.com/Dan9191/finance-service/internal/repository/memory"
	"github.com/Dan9191/finance-service/internal/scheduler"
	"github.com/Dan9191/finance-service/internal/service"
	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	// Load configuration
	cfg, err := config.NewConfig()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}
	logLevel, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize storage
	var store service.Store
	switch cfg.DataBackend {
	case "memory":
		logger.Warn("Using in-memory storage; data is lost on restart")
		store = memory.New()
	default:
		if err := repository.RunMigrations(cfg.DBConn); err != nil {
			logger.Fatalf("Failed to apply migrations: %v", err)
		}
		db, err := sql.Open("postgres", cfg.DBConn)
		if err != nil {
			logger.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()
		if err := db.PingContext(ctx); err != nil {
			logger.Fatalf("Failed to ping database: %v", err)
		}
		store = repository.NewRepository(db)
	}

	// Initialize rate provider
	var rates service.RateProvider
	switch cfg.RatesProvider {
	case "frankfurter":
		rates = frankfurter.NewClient(cfg.FrankfurterURL, cfg.RatesTimeout, logger)
	default:
		rates = ecb.NewClient(cfg.ECBURL, cfg.RatesTimeout, logger)
	}
	if cfg.RatesCacheTTL > 0 {
		rates = service.NewCachedRateProvider(rates, cfg.RatesCacheTTL)
	}

	// Initialize layers
	svc := service.NewService(store, rates, logger, cfg)
	h := handler.NewHandler(svc, logger)

	sweeps, err := scheduler.New(cfg.SweepSchedule, svc.Alerts, logger)
	if err != nil {
		logger.Fatalf("Failed to start scheduler: %v", err)
	}

	// Setup router
	r := h.Router(cfg.JWTSecret,
		middleware.RequestLogger(logger),
		middleware.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst),
	)

	addr := fmt.Sprintf(":%s", cfg.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Infof("Starting server on %s", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		sweeps.Start()
		<-gctx.Done()
		<-sweeps.Stop().Done()
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Fatalf("Service stopped with error: %v", err)
	}
	logger.Info("Service stopped")
}
