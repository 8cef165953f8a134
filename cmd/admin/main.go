package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "go.uber.org/automaxprocs"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"user-role-admin/internal/core/bootstrap"
	"user-role-admin/internal/core/config"
	"user-role-admin/internal/core/logger"
	"user-role-admin/internal/core/server"
	"user-role-admin/internal/service"
	"user-role-admin/internal/transport/http/handler"
	"user-role-admin/internal/transport/http/router"
)

func main() {
	_ = godotenv.Load()
	cfg := config.MustLoad(os.Getenv("CONFIG_PATH"))
	log, cleanup := newLogger(cfg)
	defer cleanup()
	undo := logger.RedirectStdLog(log, zap.InfoLevel)
	defer undo()

	if cfg.App.Env != "local" {
		gin.SetMode(gin.ReleaseMode)
	}

	// 数据源（失败直接 Fatal）
	stores, err := bootstrap.OpenStores(context.Background(), cfg, log)
	if err != nil {
		log.Fatal("open stores", zap.Error(err))
	}
	defer func() { _ = stores.Close() }()

	// 依赖
	userEd := service.NewUserEditor(stores.Users, log.Named("users"))
	roleEd := service.NewRoleEditor(stores.Roles, stores.Users, log.Named("roles"))
	reg := router.NewRegistry(
		handler.NewUserHandler(userEd, cfg.View.PageSize),
		handler.NewRoleHandler(roleEd),
		handler.OptionsHandler{PageSize: cfg.View.PageSize},
	)

	// 路由（后台端）
	r := router.NewAdminEngine(log, reg, router.EngineOptions{
		CORSOrigins: cfg.App.HTTP.CORSOrigins,
		Health:      stores.Health,
	})

	// HTTP Server
	h := cfg.App.HTTP
	addr := server.Addr(h.Host, h.Port)
	srv := server.BuildServer(addr, r,
		time.Duration(h.ReadTimeoutSec)*time.Second,
		time.Duration(h.WriteTimeoutSec)*time.Second,
		time.Duration(h.IdleTimeoutSec)*time.Second,
	)
	if el, err := logger.ToStdLogger(log, zap.WarnLevel); err == nil {
		srv.ErrorLog = el
	}

	// 启动前打印可点击地址
	host4human := h.Host
	if host4human == "" || host4human == "0.0.0.0" {
		host4human = "127.0.0.1"
	}
	baseURL := "http://" + host4human + ":" + fmt.Sprint(h.Port)
	log.Info("admin api starting",
		zap.String("addr", addr),
		zap.String("open", baseURL),
		zap.String("health", baseURL+"/health"),
		zap.String("admin_v1", baseURL+"/admin/v1"),
		zap.String("store", cfg.Store.Driver),
	)

	// 异步启动；失败立即退出
	go func() {
		if err := server.StartHTTP(srv, log); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("admin api start FAILED", zap.Error(err))
		}
	}()

	// 关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Warn("shutdown", zap.Error(err))
	}
	log.Info("admin api stopped gracefully")
}

func newLogger(cfg *config.Config) (*zap.Logger, func()) {
	lc := cfg.Log
	if lc.File == "" {
		return logger.New(lc.Level, lc.JSON)
	}
	return logger.NewWithRotate(lc.Level, lc.JSON, lc.File, lc.MaxSizeMB, lc.MaxBackups, lc.MaxAgeDays, lc.Compress)
}
