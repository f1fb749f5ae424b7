package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "go.uber.org/automaxprocs"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"user-resource-service/internal/core/cache"
	"user-resource-service/internal/core/config"
	"user-resource-service/internal/core/database"
	"user-resource-service/internal/core/logger"
	"user-resource-service/internal/core/server"
	"user-resource-service/internal/domain"
	"user-resource-service/internal/feature/user"
	"user-resource-service/internal/repo"
	"user-resource-service/internal/transport/http/handler"
	"user-resource-service/internal/transport/http/router"
	"user-resource-service/pkg/utils"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load(os.Getenv("CONFIG_PATH"))

	log, cleanup := newLogger(cfg)
	defer cleanup()
	defer logger.RedirectStdLog(log, zapcore.InfoLevel)()

	users, closeRepo := mustOpenRepo(cfg, log)
	defer closeRepo()

	ctrl := user.NewController(users, utils.NewHasher(0), cfg.Users.Limits(), log)
	if n, err := ctrl.Seed(context.Background(), cfg.Users.Seed); err != nil {
		log.Fatal("seed users failed", zap.Error(err))
	} else if n > 0 {
		log.Info("seed users done", zap.Int("count", n))
	}

	r := router.NewAPIEngine(log, handler.NewUserHandler(ctrl, log), router.Options{
		RPS:           cfg.Limits.RPS,
		Burst:         cfg.Limits.Burst,
		PerIP:         cfg.Limits.PerIP,
		PerIPIdle:     time.Duration(cfg.Limits.PerIPIdleSec) * time.Second,
		MaxConcurrent: cfg.Limits.MaxConcurrent,
		MaxBodyBytes:  cfg.Limits.MaxBodyBytes,
		Timeout:       time.Duration(cfg.Limits.TimeoutSec) * time.Second,
	})

	addr := server.Addr(cfg.App.HTTP.Host, cfg.App.HTTP.Port)
	srv := server.BuildServer(
		addr, r,
		time.Duration(cfg.App.HTTP.ReadTimeoutSec)*time.Second,
		time.Duration(cfg.App.HTTP.WriteTimeoutSec)*time.Second,
		time.Duration(cfg.App.HTTP.IdleTimeoutSec)*time.Second,
	)

	host4human := cfg.App.HTTP.Host
	if host4human == "" || host4human == "0.0.0.0" {
		host4human = "127.0.0.1"
	}
	baseURL := "http://" + host4human + ":" + fmt.Sprint(cfg.App.HTTP.Port)
	log.Info("user api starting",
		zap.String("open", baseURL),
		zap.String("health", baseURL+"/health"),
		zap.String("users", baseURL+"/users/all"),
		zap.String("db", cfg.DB.Driver),
	)

	go func() {
		if err := server.StartHTTP(srv, log); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("user api start FAILED", zap.Error(err))
		}
	}()

	// 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Warn("shutdown", zap.Error(err))
	}
	log.Info("user api stopped gracefully")
}

// newLogger log.file.enable 时同时写切割文件
func newLogger(cfg *config.Config) (*zap.Logger, func()) {
	var (
		l       *zap.Logger
		cleanup func()
	)
	if f := cfg.Log.File; f.Enable {
		l, cleanup = logger.NewWithRotate(cfg.Log.Level, cfg.Log.JSON, logger.FileRotate{
			Filename:   f.Filename,
			MaxSizeMB:  f.MaxSizeMB,
			MaxBackups: f.MaxBackups,
			MaxAgeDays: f.MaxAgeDays,
			Compress:   f.Compress,
		})
	} else {
		l, cleanup = logger.New(cfg.Log.Level, cfg.Log.JSON)
	}
	return l.With(zap.String("service", cfg.App.Name)), cleanup
}

// mustOpenRepo memory / gorm 存储；配置了 redis 时按 id 读缓存
func mustOpenRepo(cfg *config.Config, l *zap.Logger) (domain.UserRepository, func()) {
	if cfg.DB.Driver == "memory" {
		l.Warn("using in-memory user store, data is lost on restart")
		return withCache(cfg, l, repo.NewMemoryUserRepo())
	}

	db, err := database.NewGorm(database.Opts{
		Driver:             cfg.DB.Driver,
		DSN:                cfg.DB.DSN,
		Username:           cfg.DB.Username,
		Password:           cfg.DB.Password,
		MaxOpenConns:       cfg.DB.MaxOpenConns,
		MaxIdleConns:       cfg.DB.MaxIdleConns,
		ConnMaxLifetimeMin: cfg.DB.ConnMaxLifetimeMin,
		LogLevel:           cfg.DB.LogLevel,
	}, l)
	if err != nil {
		l.Fatal("db open", zap.Error(err))
	}
	l.Info("database connected", zap.String("driver", cfg.DB.Driver))

	if cfg.DB.AutoMigrate {
		if err := database.Migrate(db, &domain.User{}); err != nil {
			l.Fatal("automigrate failed", zap.Error(err))
		}
		l.Info("automigrate done")
	}

	users, closeCache := withCache(cfg, l, repo.NewUserRepo(db))
	return users, func() {
		closeCache()
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
}

func withCache(cfg *config.Config, l *zap.Logger, next domain.UserRepository) (domain.UserRepository, func()) {
	if cfg.Redis.Addr == "" {
		return next, func() {}
	}
	c := cache.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := c.Ping(ctx); err != nil {
		// 缓存不可用时请求直接回源
		l.Warn("redis unreachable", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
	}
	ttl := time.Duration(cfg.Redis.TTLSec) * time.Second
	return repo.NewCachedUserRepo(next, c, ttl, l), func() { _ = c.Close() }
}
