package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/glossary/api/internal/app"
	"github.com/glossary/api/internal/auth"
	"github.com/glossary/api/internal/cache"
	"github.com/glossary/api/internal/config"
	"github.com/glossary/api/internal/database"
	"github.com/glossary/api/internal/glossary"
	"github.com/glossary/api/internal/handler"
	"github.com/glossary/api/internal/logging"
	"github.com/glossary/api/internal/ratelimit"
	"github.com/glossary/api/internal/scheduler"
	"github.com/glossary/api/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()

	if err := cfg.Validate(); err != nil {
		logger.Fatal("invalid configuration", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	backend, err := app.OpenBackend(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to open store", zap.Error(err))
	}
	st := backend.Store

	// Redis is optional: snapshot cache and shared rate-limit counters
	var counter ratelimit.Counter = ratelimit.NewMemoryCounter()
	if cfg.RedisURL != "" {
		redisCache, err := cache.NewRedisCache(cfg.RedisURL)
		if err != nil {
			logger.Warn("redis unavailable, continuing without cache", zap.Error(err))
		} else {
			defer redisCache.Close()
			st = store.NewCachedStore(st, redisCache, cfg.CacheTTL, logger)
			counter = redisCache
		}
	}

	svcOpts := glossary.Options{
		Logger:           logger,
		SampleFallback:   cfg.SampleFallback,
		UploadErrorLimit: cfg.UploadErrorLimit,
	}
	routerCfg := handler.RouterConfig{
		Authn:          auth.NewAuthenticator(cfg.AdminPassword, cfg.JWTSecret, cfg.SessionTTL),
		Limiter:        ratelimit.NewLimiter(counter, nil),
		Logger:         logger,
		MaxUploadBytes: cfg.MaxUploadBytes,
		SecureCookie:   gin.Mode() == gin.ReleaseMode,
	}

	if cfg.DatabaseURL != "" {
		db, err := database.Connect(cfg.DatabaseURL)
		if err != nil {
			logger.Fatal("failed to connect to database", zap.Error(err))
		}
		if err := database.Migrate(db); err != nil {
			logger.Fatal("failed to migrate database", zap.Error(err))
		}
		auditRepo := database.NewAuditRepository(db)
		svcOpts.Audit = auditRepo
		routerCfg.Audit = auditRepo
	}

	if backend.GitHub != nil {
		routerCfg.GitHub = backend.GitHub
	}

	if backend.Local != nil && cfg.Backup.PruneInterval > 0 {
		pruner := scheduler.NewBackupPruner(scheduler.PrunerConfig{
			DataPath: backend.Local.Path(),
			Keep:     cfg.Backup.Keep,
			MaxAge:   cfg.Backup.MaxAge,
			Interval: cfg.Backup.PruneInterval,
		}, logger)
		go pruner.Start(ctx)
		defer pruner.Stop()
		routerCfg.Scheduler = pruner
	}

	routerCfg.Service = glossary.NewService(st, svcOpts)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler.NewRouter(routerCfg),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("API server starting", zap.String("port", cfg.Port), zap.String("store", st.Name()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}
