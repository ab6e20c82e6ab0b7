package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"hypoforum/internal/config"
	"hypoforum/internal/db"
	"hypoforum/internal/logger"
	"hypoforum/internal/notify"
	"hypoforum/internal/router"
	"hypoforum/internal/services"
	"hypoforum/internal/utils"

	"github.com/gin-contrib/gzip"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := bootstrap()
			if err != nil {
				return err
			}
			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()
			return serve(ctx, cfg)
		},
	}
}

func serve(ctx context.Context, cfg *config.Config) error {
	defer func() { _ = logger.L.Sync() }()

	// Initialize Database
	if err := db.Init(cfg.DatabaseDriver, cfg.DatabaseURL); err != nil {
		return err
	}

	// 通知分发：数据库收件箱 + 可选 redis 推送
	sinks := []notify.Sink{notify.NewDBSink(db.DB)}
	if cfg.RedisURL != "" {
		redisSink, err := notify.NewRedisSink(cfg.RedisURL)
		if err != nil {
			return err
		}
		defer redisSink.Close()
		sinks = append(sinks, redisSink)
	}
	dispatcher := notify.NewDispatcher(cfg.NotifyQueueSize, sinks...)
	dispatcher.Start()
	defer dispatcher.Close()

	core := services.NewCore(db.DB, services.Options{
		Notifier: dispatcher,
		Cache:    utils.NewCache(cfg.TreeCacheSize),
		CacheTTL: cfg.TreeCacheTTL,
	})
	core.Auditor.Start(ctx)

	if cfg.AuditSchedule != "" {
		c := cron.New()
		if _, err := c.AddFunc(cfg.AuditSchedule, func() { runAudit(ctx, core.Auditor) }); err != nil {
			return err
		}
		c.Start()
		defer func() { <-c.Stop().Done() }()
	}

	gin.SetMode(cfg.GinMode)
	r := gin.New()
	r.Use(logger.GinMiddleware(logger.L), gin.Recovery())
	// promhttp 自己处理压缩
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/metrics"})))

	// Setup Sessions
	store := cookie.NewStore([]byte(cfg.SessionSecret))
	r.Use(sessions.Sessions("hypoforum_session", store))

	if err := router.RegisterRoutes(r, db.DB, core); err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logger.L.Info("hypoforum server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.L.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// runAudit 定时全量对账 + 刷新热度
func runAudit(ctx context.Context, auditor *services.Auditor) {
	report, err := auditor.AuditAll(ctx)
	if err != nil {
		logger.L.Error("scheduled audit failed", zap.Error(err))
		return
	}
	logger.L.Info("scheduled audit finished",
		zap.Int("drifts", len(report.Drifts)), zap.Duration("took", report.Took))

	n, err := auditor.RefreshRecentHotScores(ctx)
	if err != nil {
		logger.L.Error("hot score refresh failed", zap.Error(err))
		return
	}
	logger.L.Debug("hot scores refreshed", zap.Int("threads", n))
}
