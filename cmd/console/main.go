package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"user-role-admin/internal/console"
	"user-role-admin/internal/core/bootstrap"
	"user-role-admin/internal/core/config"
	"user-role-admin/internal/core/logger"
	"user-role-admin/internal/dashboard"
	"user-role-admin/internal/service"
)

// 终端版管理台：stdout 给表格，日志走 stderr（或配置里的文件）
func main() {
	_ = godotenv.Load()
	cfg := config.MustLoad(os.Getenv("CONFIG_PATH"))

	opts := logger.Options{Level: "warn", Out: zapcore.AddSync(os.Stderr)}
	if cfg.Log.File != "" {
		opts.Level = cfg.Log.Level
		opts.JSON = true
		opts.Out = zapcore.AddSync(io.Discard)
		opts.Rotate = logger.FileRotate{
			Enable:     true,
			Filename:   cfg.Log.File,
			MaxSizeMB:  cfg.Log.MaxSizeMB,
			MaxBackups: cfg.Log.MaxBackups,
			MaxAgeDays: cfg.Log.MaxAgeDays,
			Compress:   cfg.Log.Compress,
		}
	}
	log, cleanup := logger.Build(opts)
	defer cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	stores, err := bootstrap.OpenStores(ctx, cfg, log)
	if err != nil {
		log.Fatal("open stores", zap.Error(err))
	}
	defer func() { _ = stores.Close() }()

	vopts := dashboard.Options{PageSize: cfg.View.PageSize, NoticeTTL: cfg.View.NoticeTTL()}
	users := dashboard.NewUsersView(service.NewUserEditor(stores.Users, log), vopts)
	roles := dashboard.NewRolesView(service.NewRoleEditor(stores.Roles, stores.Users, log), vopts)

	sh := console.New(users, roles, os.Stdout)
	if err := sh.Run(ctx, os.Stdin); err != nil && ctx.Err() == nil {
		log.Error("console", zap.Error(err))
		os.Exit(1)
	}
}
