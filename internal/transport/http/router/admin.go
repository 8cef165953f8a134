package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"user-role-admin/internal/core/server"
	mdw "user-role-admin/internal/transport/http/middleware"
)

// EngineOptions 中间件参数；零值走默认
type EngineOptions struct {
	CORSOrigins    []string
	RPS            rate.Limit
	Burst          int
	MaxInFlight    int64
	MaxBodyBytes   int64
	RequestTimeout time.Duration
	// Gatherer 为空时用 prometheus 默认注册表
	Gatherer prometheus.Gatherer
	// Health 额外的健康检查（如 redis ping），可为空
	Health func(ctx context.Context) error
}

func (o EngineOptions) withDefaults() EngineOptions {
	if o.RPS <= 0 {
		o.RPS = 200
	}
	if o.Burst <= 0 {
		o.Burst = 400
	}
	if o.MaxInFlight <= 0 {
		o.MaxInFlight = 300
	}
	if o.MaxBodyBytes <= 0 {
		o.MaxBodyBytes = 1 << 20
	}
	if o.RequestTimeout <= 0 {
		o.RequestTimeout = 10 * time.Second
	}
	if o.Gatherer == nil {
		o.Gatherer = prometheus.DefaultGatherer
	}
	return o
}

func NewAdminEngine(l *zap.Logger, reg *Registry, o EngineOptions) *gin.Engine {
	o = o.withDefaults()
	r := server.NewRouter(l, o.CORSOrigins)

	r.Use(
		mdw.RequestID(),
		mdw.RateLimit(o.RPS, o.Burst),
		mdw.ConcurrencyLimit(o.MaxInFlight),
		mdw.MaxBodyBytes(o.MaxBodyBytes),
		mdw.Timeout(o.RequestTimeout),
		mdw.Metrics(),
		mdw.AccessLog(l),
	)

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		if o.Health != nil {
			if err := o.Health(c.Request.Context()); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"ok": 0, "error": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"ok": 1})
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(o.Gatherer, promhttp.HandlerOpts{})))

	// 管理端 v1
	admin := r.Group("/admin/v1")
	if reg != nil {
		reg.MountAll(admin)
	}
	return r
}
