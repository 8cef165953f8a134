package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type HTTP struct {
	Host            string   `mapstructure:"host"`
	Port            int      `mapstructure:"port"`
	ReadTimeoutSec  int      `mapstructure:"read_timeout_sec"`
	WriteTimeoutSec int      `mapstructure:"write_timeout_sec"`
	IdleTimeoutSec  int      `mapstructure:"idle_timeout_sec"`
	CORSOrigins     []string `mapstructure:"cors_origins"` // 空 = 允许所有来源
}

type App struct {
	Name string `mapstructure:"name"`
	Env  string `mapstructure:"env"`
	HTTP HTTP   `mapstructure:"http"`
}

type Log struct {
	Level      string `mapstructure:"level"`
	JSON       bool   `mapstructure:"json"`
	File       string `mapstructure:"file"` // 非空则同时写文件并切割
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

// Store 数据源：memory 为模拟存储，postgres/mysql/sqlite 走 gorm
type Store struct {
	Driver      string `mapstructure:"driver"`
	DelayMS     int    `mapstructure:"delay_ms"`
	SeedFile    string `mapstructure:"seed_file"`
	CacheTTLSec int    `mapstructure:"cache_ttl_sec"`
}

func (s Store) Delay() time.Duration    { return time.Duration(s.DelayMS) * time.Millisecond }
func (s Store) CacheTTL() time.Duration { return time.Duration(s.CacheTTLSec) * time.Second }

type DB struct {
	DSN                string `mapstructure:"dsn"`
	Username           string `mapstructure:"username"`
	Password           string `mapstructure:"password"`
	MaxOpenConns       int    `mapstructure:"max_open_conns"`
	MaxIdleConns       int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetimeMin int    `mapstructure:"conn_max_lifetime_min"`
	AutoMigrate        bool   `mapstructure:"auto_migrate"`
	LogLevel           string `mapstructure:"log_level"`
}

type Redis struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// View 列表页与提示条
type View struct {
	PageSize    int `mapstructure:"page_size"`
	NoticeTTLMS int `mapstructure:"notice_ttl_ms"`
}

func (v View) NoticeTTL() time.Duration { return time.Duration(v.NoticeTTLMS) * time.Millisecond }

type Config struct {
	App   App   `mapstructure:"app"`
	Log   Log   `mapstructure:"log"`
	Store Store `mapstructure:"store"`
	DB    DB    `mapstructure:"db"`
	Redis Redis `mapstructure:"redis"`
	View  View  `mapstructure:"view"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "user-role-admin")
	v.SetDefault("app.env", "local")
	v.SetDefault("app.http.host", "0.0.0.0")
	v.SetDefault("app.http.port", 8081)
	v.SetDefault("app.http.read_timeout_sec", 5)
	v.SetDefault("app.http.write_timeout_sec", 10)
	v.SetDefault("app.http.idle_timeout_sec", 60)
	v.SetDefault("app.http.cors_origins", []string{})

	v.SetDefault("log.level", "info")
	v.SetDefault("log.json", false)
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", 100)
	v.SetDefault("log.max_backups", 5)
	v.SetDefault("log.max_age_days", 14)
	v.SetDefault("log.compress", true)

	v.SetDefault("store.driver", "memory")
	v.SetDefault("store.delay_ms", 500)
	v.SetDefault("store.seed_file", "")
	v.SetDefault("store.cache_ttl_sec", 30)

	v.SetDefault("db.dsn", "")
	v.SetDefault("db.username", "")
	v.SetDefault("db.password", "")
	v.SetDefault("db.max_open_conns", 20)
	v.SetDefault("db.max_idle_conns", 5)
	v.SetDefault("db.conn_max_lifetime_min", 30)
	v.SetDefault("db.auto_migrate", true)
	v.SetDefault("db.log_level", "warn")

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("view.page_size", 15)
	v.SetDefault("view.notice_ttl_ms", 3000)
}

// Load 读 YAML（可缺省）+ APP_ 前缀环境变量覆盖
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
		if path == "" {
			path = "./configs/config.local.yaml"
		}
	}
	v.SetConfigType("yaml")
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("stat config: %w", err)
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// MustLoad 失败直接退出
func MustLoad(path string) *Config {
	c, err := Load(path)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	return c
}

func (c *Config) validate() error {
	switch c.Store.Driver {
	case "memory":
	case "postgres", "mysql", "sqlite":
		if c.DB.DSN == "" {
			return fmt.Errorf("db.dsn is required for store.driver=%s", c.Store.Driver)
		}
	default:
		return fmt.Errorf("unknown store.driver %q", c.Store.Driver)
	}
	if c.View.PageSize < 1 {
		return fmt.Errorf("view.page_size must be at least 1")
	}
	if c.Store.DelayMS < 0 {
		return fmt.Errorf("store.delay_ms must not be negative")
	}
	return nil
}
