package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"user-role-admin/internal/core/cache"
	"user-role-admin/internal/core/config"
	"user-role-admin/internal/core/database"
	"user-role-admin/internal/domain"
	"user-role-admin/internal/repo"
)

// Stores 按配置装配好的数据源
type Stores struct {
	Users domain.UserStore
	Roles domain.RoleStore
	Cache *cache.Cache
	close []func() error
}

// Health /health 用：redis 配了就 ping
func (s *Stores) Health(ctx context.Context) error {
	if s.Cache == nil {
		return nil
	}
	return s.Cache.Ping(ctx)
}

func (s *Stores) Close() error {
	var errs []error
	for i := len(s.close) - 1; i >= 0; i-- {
		errs = append(errs, s.close[i]())
	}
	return errors.Join(errs...)
}

// OpenStores memory 走模拟存储；postgres/mysql/sqlite 走 gorm，按需建表并灌初始数据
func OpenStores(ctx context.Context, cfg *config.Config, l *zap.Logger) (*Stores, error) {
	seed, err := repo.LoadUserSeed(cfg.Store.SeedFile)
	if err != nil {
		return nil, err
	}

	s := &Stores{}
	switch cfg.Store.Driver {
	case "", "memory":
		s.Users = repo.NewMemUserStore(seed, cfg.Store.Delay())
		s.Roles = repo.NewMemRoleStore(domain.DefaultRoles(), cfg.Store.Delay())
		l.Info("store ready", zap.String("driver", "memory"),
			zap.Int("users", len(seed)), zap.Duration("delay", cfg.Store.Delay()))
	default:
		db, err := database.NewGorm(database.Opts{
			Driver:             cfg.Store.Driver,
			DSN:                cfg.DB.DSN,
			Username:           cfg.DB.Username,
			Password:           cfg.DB.Password,
			MaxOpenConns:       cfg.DB.MaxOpenConns,
			MaxIdleConns:       cfg.DB.MaxIdleConns,
			ConnMaxLifetimeMin: cfg.DB.ConnMaxLifetimeMin,
			LogLevel:           cfg.DB.LogLevel,
			Logger:             l,
		})
		if err != nil {
			return nil, fmt.Errorf("open db: %w", err)
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		s.close = append(s.close, sqlDB.Close)

		if cfg.DB.AutoMigrate {
			if err := db.WithContext(ctx).AutoMigrate(repo.Models()...); err != nil {
				_ = s.Close()
				return nil, fmt.Errorf("migrate: %w", err)
			}
		}
		if err := repo.SeedRoles(ctx, db, domain.DefaultRoles()); err != nil {
			_ = s.Close()
			return nil, err
		}
		if err := repo.SeedUsers(ctx, db, seed); err != nil {
			_ = s.Close()
			return nil, err
		}
		s.Users = repo.NewGormUserStore(db)
		s.Roles = repo.NewGormRoleStore(db)
		l.Info("store ready", zap.String("driver", cfg.Store.Driver), zap.String("dsn", database.MaskDSN(cfg.DB.DSN)))
	}

	// 列表读穿缓存；没配 redis 时只合并并发回源
	if cfg.Store.CacheTTL() > 0 {
		s.Cache = cache.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		s.close = append(s.close, s.Cache.Close)
		s.Users = repo.NewCachedUserStore(s.Users, s.Cache, cfg.Store.CacheTTL())
		l.Info("user list cache enabled",
			zap.Bool("redis", cfg.Redis.Addr != ""), zap.Duration("ttl", cfg.Store.CacheTTL()))
	}
	return s, nil
}
