package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"judicial-archive/internal/app"
	"judicial-archive/internal/config"
	"judicial-archive/internal/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	log, err := utils.NewLogger(cfg.AppEnv, cfg.LogLevel, &utils.LogFile{
		Path:       cfg.LogFile,
		MaxSizeMB:  cfg.LogMaxSizeMB,
		MaxBackups: cfg.LogMaxBackups,
		MaxAgeDays: cfg.LogMaxAgeDays,
	})
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	if err := cfg.Validate(); err != nil {
		log.Fatal("invalid configuration", zap.Error(err))
	}

	ctx := context.Background()
	a, err := app.New(ctx, cfg, log)
	if err != nil {
		log.Fatal("failed to initialize archive", zap.Error(err))
	}
	defer func() { _ = a.Close() }()

	if cfg.SeedDemoData {
		res, err := a.Seed(ctx, 0)
		if err != nil {
			log.Fatal("failed to seed demo data", zap.Error(err))
		}
		if res.Skipped {
			log.Info("store already populated; seeding skipped")
		} else {
			log.Info("demo data seeded",
				zap.Int("users", res.Users),
				zap.Int("documents", res.Documents),
				zap.Int("papers", res.Papers),
			)
		}
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           a.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("api server starting", zap.String("addr", srv.Addr), zap.String("store", cfg.StoreDriver))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("api server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	log.Info("api server shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("api server shutdown error", zap.Error(err))
	}
}
