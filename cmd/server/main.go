package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"blogicum/internal/config"
	"blogicum/internal/db"
	"blogicum/internal/logger"
	"blogicum/internal/router"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Errorw("config_load_failed", "error", err)
		os.Exit(1)
	}
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	defer func() { _ = logger.Z().Sync() }()

	if isWeakSecret(cfg.Session.Secret) {
		if cfg.Server.Mode == "release" {
			logger.Errorw("session_secret_weak", "hint", "set SESSION_SECRET to a long random value")
			os.Exit(1)
		}
		logger.Warnw("session_secret_weak", "hint", "建议在生产环境中更换 SESSION_SECRET")
	}

	switch cfg.Server.Mode {
	case "release":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	}

	// SQLite 数据库文件所在目录需要提前创建
	if cfg.Database.Driver == "" || cfg.Database.Driver == "sqlite" {
		if dir := filepath.Dir(cfg.Database.DSN); dir != "." && !strings.HasPrefix(cfg.Database.DSN, "file:") {
			if err := os.MkdirAll(dir, 0755); err != nil {
				logger.Errorw("db_dir_create_failed", "dir", dir, "error", err)
				os.Exit(1)
			}
		}
	}

	conn, err := db.Open(cfg.Database)
	if err != nil {
		logger.Errorw("db_open_failed", "error", err)
		os.Exit(1)
	}
	if err := db.Migrate(conn); err != nil {
		logger.Errorw("db_migrate_failed", "error", err)
		os.Exit(1)
	}
	if cfg.Blog.SeedCategories {
		if err := db.SeedCategories(conn); err != nil {
			logger.Warnw("db_seed_failed", "error", err)
		}
	}

	svc, err := router.NewServices(cfg, conn)
	if err != nil {
		logger.Errorw("services_init_failed", "error", err)
		os.Exit(1)
	}
	engine, err := router.New(cfg, svc)
	if err != nil {
		logger.Errorw("router_init_failed", "error", err)
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Infow("server_starting", "addr", srv.Addr, "mode", cfg.Server.Mode)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Errorw("server_failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Errorw("server_shutdown_failed", "error", err)
	}
	logger.Infow("server_stopped")
}

func isWeakSecret(secret string) bool {
	if len(secret) < 32 {
		return true
	}
	normalized := strings.ToLower(secret)
	return strings.Contains(normalized, "change_me") || strings.Contains(normalized, "change-me")
}
