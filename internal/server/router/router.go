package router

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/mamadbah2/proporco/internal/auth"
	"github.com/mamadbah2/proporco/internal/server/handlers"
	"github.com/mamadbah2/proporco/internal/service/livestock"
)

// Options carries everything the router mounts. Webhook is optional.
type Options struct {
	Livestock      *livestock.Service
	Reports        *handlers.ReportHandler
	Webhook        *handlers.WebhookHandler
	Ping           func(ctx context.Context) error
	JWTSecret      string
	AllowedOrigins []string
	Registry       *prometheus.Registry
	Logger         *zap.Logger
}

// New wires the Gin engine with required routes and middlewares.
func New(opts Options) *gin.Engine {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	registry := opts.Registry
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(zapLoggerMiddleware(logger))
	r.Use(metricsMiddleware(newRequestMetrics(registry)))
	r.Use(cors.New(corsConfig(opts.AllowedOrigins)))

	r.GET("/healthz", func(c *gin.Context) {
		if opts.Ping != nil {
			if err := opts.Ping(c.Request.Context()); err != nil {
				logger.Warn("health check failed", zap.Error(err))
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	if opts.Webhook != nil {
		r.GET("/webhook", opts.Webhook.Verify)
		r.POST("/webhook", opts.Webhook.Receive)
	}

	api := r.Group("/api/v1", authMiddleware(opts.JWTSecret, logger))
	if opts.Livestock != nil {
		handlers.RegisterLivestock(api, opts.Livestock, logger.Named("handlers.livestock"))
	}
	if opts.Reports != nil {
		opts.Reports.Register(api)
	}

	logger.Info("router initialized", zap.Bool("webhook", opts.Webhook != nil))

	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.DefaultConfig()
	cfg.AllowHeaders = append(cfg.AllowHeaders, "Authorization")
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}

// authMiddleware accepts a bearer token signed with secret and stores its
// subject under handlers.AccountKey.
func authMiddleware(secret string, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		accountID, err := auth.Parse(secret, raw)
		if err != nil {
			logger.Debug("rejected token", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set(handlers.AccountKey, accountID)
		c.Next()
	}
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request completed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()))
	}
}
