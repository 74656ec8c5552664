package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"Articulate/cache"
	"Articulate/config"
	"Articulate/core/auth"
	"Articulate/core/numbering"
	"Articulate/core/practice"
	"Articulate/core/recording"
	"Articulate/core/timebucket"
	"Articulate/db"
	"Articulate/logger"
	"Articulate/repository"
	"Articulate/storage"

	"github.com/getsentry/sentry-go"
)

// Start initializes and starts the HTTP server, blocking until SIGINT/SIGTERM.
func Start(cfg *config.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	timebucket.Configure(cfg.ReferenceTimezone)

	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			Environment:      cfg.SentryEnvironment,
			AttachStacktrace: true,
		}); err != nil {
			logger.Error("sentry init failed", logger.ErrorField(err))
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	// Connect to the database
	if err := db.ConnectGormDB(cfg); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.CloseGormDB()

	if err := db.AutoMigrateModels(); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	// Redis 只用于练习集编号的跨进程锁
	var locker numbering.Locker = numbering.NoopLocker{}
	if cfg.RedisEnabled {
		if err := db.ConnectRedis(cfg); err != nil {
			return fmt.Errorf("failed to connect to Redis: %w", err)
		}
		defer db.CloseRedis()
		locker = cache.NewScopeLock(db.Redis())
		logger.Info("Successfully connected to Redis", logger.String("addr", cfg.RedisAddr()))
	}

	store, err := storage.NewMinioStore(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize object storage: %w", err)
	}
	ensureCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := store.EnsureBucket(ensureCtx); err != nil {
		// 存储暂不可用时仍然启动，预签名不需要联网
		logger.Warn("bucket check failed", logger.String("bucket", store.Bucket()), logger.ErrorField(err))
	}
	cancel()

	gdb := db.DB()
	struggleRepo := repository.NewGormStruggleRepository(gdb)
	setRepo := repository.NewGormPracticeSetRepository(gdb)
	cardRepo := repository.NewGormPracticeCardRepository(gdb)
	recordingRepo := repository.NewGormRecordingRepository(gdb)
	annotationRepo := repository.NewGormAnnotationRepository(gdb)

	tokens := auth.NewTokenService(cfg.JWTSecret, cfg.JWTTTL, auth.NewAllowlist(cfg.AllowedEmails))
	apiHandler := NewAPIHandler(
		tokens,
		practice.NewService(struggleRepo, setRepo, cardRepo, locker),
		recording.NewService(recordingRepo, annotationRepo, store),
		Counters{Struggles: struggleRepo, Sets: setRepo, Recordings: recordingRepo},
		func(ctx context.Context) error { return db.Ping() },
	)

	// 设置服务器超时
	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      NewRouter(apiHandler, NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server starting", logger.String("addr", cfg.HTTPAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// 等待中断信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-quit:
		logger.Info("Shutting down server...", logger.String("signal", sig.String()))
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	}

	ctx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info("Server exited")
	return nil
}
