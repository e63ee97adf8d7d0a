package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/inquirygate/inquirygate/internal/catalog"
	"github.com/inquirygate/inquirygate/internal/config"
	"github.com/inquirygate/inquirygate/internal/middleware"
	"github.com/inquirygate/inquirygate/internal/pkg/logger"
	"github.com/inquirygate/inquirygate/internal/service"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const serviceName = "inquirygate"

// NewRouter wires every route and the global middleware chain.
func NewRouter(cfg *config.Config, relay *service.InquiryRelay, logs *service.InquiryLogger) *gin.Engine {
	r := gin.New()
	// 默认不信任任何代理，ClientIP 取连接地址
	if err := r.SetTrustedProxies(cfg.Server.TrustedProxies); err != nil {
		logger.Error("invalid server.trusted_proxies, trusting none", "error", err)
		_ = r.SetTrustedProxies(nil)
	}

	// Global Middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger())
	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware())
	}
	// 必须在 Metrics 之后注册，延迟直方图才能拿到最终状态码
	r.Use(middleware.ErrorHandler())

	r.GET("/health", Health)

	if cfg.Metrics.Enabled {
		path := cfg.Metrics.Path
		if path == "" {
			path = "/metrics"
		}
		r.GET(path, gin.WrapH(promhttp.Handler()))
	}

	inquiryHandler := NewInquiryHandler(relay)
	logHandler := NewInquiryLogHandler(logs)

	v1 := r.Group("/api/v1")
	v1.Use(middleware.RateLimitMiddleware(cfg.RateLimit))

	inquiry := v1.Group("/inquiry")
	if cfg.Auth.Enabled {
		inquiry.Use(middleware.AuthMiddleware(cfg.Auth))
	}
	{
		inquiry.GET("/methods", inquiryHandler.Methods)
		inquiry.GET("/methods/categories", inquiryHandler.Categories)
		inquiry.POST("/:method", inquiryHandler.Inquire)
	}

	admin := v1.Group("/inquiry-logs")
	admin.Use(middleware.AdminMiddleware(cfg.Auth))
	{
		admin.GET("", logHandler.List)
		admin.GET("/:request_id", logHandler.Get)
	}

	return r
}

func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "service": serviceName, "version": catalog.Version})
}
