package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/glossary/api/internal/auth"
	"github.com/glossary/api/internal/glossary"
	"github.com/glossary/api/internal/middleware"
	"github.com/glossary/api/internal/ratelimit"
	"github.com/glossary/api/internal/scheduler"
)

// StatusReporter is implemented by background jobs.
type StatusReporter interface {
	GetStatus() scheduler.Status
}

type RouterConfig struct {
	Service        *glossary.Service
	Authn          *auth.Authenticator
	Limiter        *ratelimit.Limiter
	Audit          AuditReader
	GitHub         RepoChecker
	Scheduler      StatusReporter
	Logger         *zap.Logger
	MaxUploadBytes int64
	SecureCookie   bool
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(cfg.Logger), middleware.MetricsMiddleware())

	// CORS middleware
	r.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})

	glossaryHandler := NewGlossaryHandler(cfg.Service)
	authHandler := NewAuthHandler(cfg.Authn, cfg.SecureCookie, cfg.Logger)
	exportHandler := NewExportHandler(cfg.Service)
	adminHandler := NewAdminHandler(cfg.Service, AdminOptions{
		Audit:          cfg.Audit,
		GitHub:         cfg.GitHub,
		MaxUploadBytes: cfg.MaxUploadBytes,
		Logger:         cfg.Logger,
	})

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "backend": cfg.Service.Backend()})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.GET("/scheduler/status", func(c *gin.Context) {
		if cfg.Scheduler != nil {
			c.JSON(http.StatusOK, cfg.Scheduler.GetStatus())
		} else {
			c.JSON(http.StatusOK, gin.H{"enabled": false, "message": "Scheduler is disabled"})
		}
	})

	g := r.Group("/glossary")
	{
		g.GET("", glossaryHandler.List)
		g.GET("/groups", glossaryHandler.Groups)
		g.GET("/letter/:letter", glossaryHandler.ByLetter)
		g.GET("/search", glossaryHandler.Search)
		g.GET("/terms/:term", glossaryHandler.Term)
	}

	requireAdmin := middleware.AdminMiddleware(cfg.Authn)
	r.GET("/download-glossary", requireAdmin, exportHandler.Download)

	admin := r.Group("/admin")
	{
		admin.POST("/login", middleware.RateLimit(cfg.Limiter, ratelimit.ActionLogin, cfg.Logger), authHandler.Login)
		admin.POST("/logout", authHandler.Logout)
		admin.GET("/session", authHandler.Session)

		protected := admin.Group("", requireAdmin, middleware.RateLimit(cfg.Limiter, ratelimit.ActionAdmin, cfg.Logger))
		protected.POST("/terms", adminHandler.AddTerm)
		protected.PUT("/terms", adminHandler.EditTerm)
		protected.DELETE("/terms", adminHandler.DeleteTerm)
		protected.POST("/upload-csv", middleware.RateLimit(cfg.Limiter, ratelimit.ActionUpload, cfg.Logger), adminHandler.UploadCSV)
		protected.GET("/stats", adminHandler.GetStats)
		protected.GET("/audit", adminHandler.ListAudit)
		protected.GET("/github/status", adminHandler.GitHubStatus)
	}

	return r
}
