package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"user-resource-service/internal/core/server"
	"user-resource-service/internal/transport/http/handler"
	mdw "user-resource-service/internal/transport/http/middleware"
)

// Options 入口中间件的限流/超时参数
type Options struct {
	RPS           float64
	Burst         int
	PerIP         bool          // 按 IP 限速，否则全局一个令牌桶
	PerIPIdle     time.Duration // 闲置多久回收 IP 的令牌桶
	MaxConcurrent int64
	MaxBodyBytes  int64
	Timeout       time.Duration
}

func DefaultOptions() Options {
	return Options{
		RPS:           200,
		Burst:         400,
		PerIPIdle:     10 * time.Minute,
		MaxConcurrent: 300,
		MaxBodyBytes:  1 << 20,
		Timeout:       10 * time.Second,
	}
}

func NewAPIEngine(l *zap.Logger, users *handler.UserHandler, o Options) *gin.Engine {
	r := server.NewRouter(l)

	limit := mdw.RateLimit(rate.Limit(o.RPS), o.Burst)
	if o.PerIP {
		limit = mdw.RateLimitPerIP(rate.Limit(o.RPS), o.Burst, o.PerIPIdle)
	}

	// 中间件
	r.Use(
		mdw.RequestID(),
		limit,
		mdw.ConcurrencyLimit(o.MaxConcurrent),
		mdw.MaxBodyBytes(o.MaxBodyBytes),
		mdw.Timeout(o.Timeout),
		mdw.Metrics(),
		mdw.AccessLog(l),
	)

	// 健康检查 / 指标
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": 1}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	users.Mount(r.Group("/users"))
	return r
}
