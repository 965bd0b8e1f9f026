package server

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"antiproxy-go/internal/config"
	"antiproxy-go/internal/dispatch"
	ph "antiproxy-go/internal/handlers/proxy"
	mw "antiproxy-go/internal/middleware"
)

// BuildEngine constructs the Gin engine serving the forwarding routes.
func BuildEngine(cfg *config.Config, dispatcher *dispatch.Dispatcher) *gin.Engine {
	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	_ = engine.SetTrustedProxies([]string{})

	engine.Use(mw.Recovery(), mw.RequestID(), mw.Metrics(), mw.CORS(), mw.RequestLogger())
	if cfg.InboundRateLimitEnabled {
		engine.Use(mw.RateLimiter(cfg.InboundRateLimitRPS, cfg.InboundRateLimitBurst))
	}

	handler := ph.New(dispatcher)
	engine.POST("/proxy", handler.Proxy)
	engine.GET("/health", handler.Health)
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return engine
}
