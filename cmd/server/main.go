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

	"github.com/gin-gonic/gin"
	"github.com/inquirygate/inquirygate/internal/config"
	"github.com/inquirygate/inquirygate/internal/handler"
	"github.com/inquirygate/inquirygate/internal/pkg/logger"
	"github.com/inquirygate/inquirygate/internal/repository"
	"github.com/inquirygate/inquirygate/internal/service"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 2. Initialize Logger
	logger.Init(cfg.Log.Level)

	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}

	// 3. Initialize Persistence (SQL > Redis > Memory)
	logRepo, closeRepo := openInquiryLogRepo(cfg)
	defer closeRepo()

	// 4. Initialize Core Services
	inquiryLogs := service.NewInquiryLogger(logRepo, cfg.Audit.BufferSize, cfg.Audit.WriteTimeout())
	relay := service.NewInquiryRelay(cfg.Upstream, inquiryLogs)
	if cfg.Upstream.Token == "" {
		logger.Warn("upstream token is empty, upstream calls will likely be rejected")
	}

	// 5. Setup Router
	r := handler.NewRouter(cfg, relay, inquiryLogs)

	// 6. Start Server with Graceful Shutdown
	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("inquirygate started", "port", cfg.Server.Port, "upstream", cfg.Upstream.BaseURL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server listen failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	logger.Info("Server exiting")
}

func openInquiryLogRepo(cfg *config.Config) (service.InquiryLogRepo, func()) {
	if cfg.Database.DSN != "" {
		db, err := repository.NewDB(cfg.Database)
		if err == nil {
			logger.Info("Connected to database", "driver", cfg.Database.Driver)
			closeDB := func() {
				if sqlDB, err := db.DB(); err == nil {
					_ = sqlDB.Close()
				}
			}
			return repository.NewSQLInquiryLogRepo(db), closeDB
		}
		logger.Error("Failed to connect to database, trying redis", "error", err)
	}

	if cfg.Redis.Addr != "" {
		client, err := repository.NewRedisClient(cfg.Redis)
		if err == nil {
			logger.Info("Connected to Redis", "addr", cfg.Redis.Addr)
			repo := repository.NewRedisInquiryLogRepo(client, cfg.Redis.AuditListKey, cfg.Redis.AuditListMax)
			return repo, func() { _ = client.Close() }
		}
		logger.Error("Failed to connect to Redis, inquiry logs will be memory-only", "error", err)
	}

	logger.Warn("No inquiry log store configured, keeping recent records in memory only")
	return nil, func() {}
}
