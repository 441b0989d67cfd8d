package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/statusboard/statusboard/handlers"
	"github.com/statusboard/statusboard/internal/backend"
	"github.com/statusboard/statusboard/internal/config"
	"github.com/statusboard/statusboard/internal/status"
	"github.com/statusboard/statusboard/internal/status/handler"
	"github.com/statusboard/statusboard/pkg/logger"
	"github.com/statusboard/statusboard/pkg/metrics"
	"github.com/statusboard/statusboard/pkg/middleware"
)

// shutdownTimeout is how long in-flight requests get after SIGINT/SIGTERM.
const shutdownTimeout = 10 * time.Second

func main() {
	// LOG_LEVEL: debug|info|warn|error|fatal
	logger.Init(os.Getenv("LOG_LEVEL"))

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	logger.Init(cfg.LogLevel)
	logger.Infof("config loaded: backend=%s prefix=%q secret_set=%v rate_limit=%v",
		cfg.Storage.Backend, cfg.Status.KeyPrefix, cfg.Status.Secret != "", cfg.RateLimit.Enabled)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	be, err := backend.Open(ctx, cfg)
	if err != nil {
		logger.Fatalf("failed to open %s storage: %v", cfg.Storage.Backend, err)
	}
	defer func() {
		if err := be.Close(); err != nil {
			logger.Warnf("closing storage: %v", err)
		}
	}()

	store := status.NewStore(be.KV, status.WithVersionPrefix(cfg.Status.KeyPrefix))

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      newRouter(cfg, be, store),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("status API listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Errorf("server failed: %v", err)
		}
	case <-ctx.Done():
		logger.Infof("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("graceful shutdown failed: %v", err)
	}
}

func newRouter(cfg *config.Config, be *backend.Backend, store *status.Store) *gin.Engine {
	gin.SetMode(cfg.Server.GinMode)
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(), middleware.Metrics())

	handlers.RegisterHealth(r, be.Name, be.KV)
	handlers.RegisterSwagger(r)
	metrics.RegisterCollectors(prometheus.DefaultRegisterer)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	var extra []gin.HandlerFunc
	if cfg.RateLimit.Enabled {
		if cfg.RateLimit.UseRedis && be.Redis != nil {
			win := time.Duration(cfg.RateLimit.WindowSeconds) * time.Second
			extra = append(extra, middleware.RedisRateLimitMiddleware(be.Redis, cfg.RateLimit.RPS, cfg.RateLimit.Burst, win))
		} else {
			extra = append(extra, middleware.RateLimitMiddleware(cfg.RateLimit.RPS, cfg.RateLimit.Burst))
		}
	}

	handler.RegisterStatusRoutes(r, store, handler.Options{
		Secret:      cfg.Status.Secret,
		RejectEmpty: cfg.Status.RejectEmpty,
		Middleware:  extra,
	})
	return r
}
