package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "go.uber.org/automaxprocs"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/gorm"

	"go-user-admin/internal/core/auth"
	"go-user-admin/internal/core/cache"
	"go-user-admin/internal/core/config"
	"go-user-admin/internal/core/database"
	"go-user-admin/internal/core/logger"
	"go-user-admin/internal/core/server"
	"go-user-admin/internal/repo"
	"go-user-admin/internal/service"
	"go-user-admin/internal/transport/http/handler"
	"go-user-admin/internal/transport/http/router"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load(os.Getenv("CONFIG_PATH"))
	log, cleanup := logger.FromConfig(cfg.Log, false)
	defer cleanup()
	defer logger.RedirectStdLog(log, zapcore.InfoLevel)()

	if cfg.JWT.Secret == "" {
		log.Fatal("jwt.secret is empty; set APP_JWT_SECRET")
	}

	// DB 连接（失败直接 Fatal）
	db := mustOpenDB(cfg, log)
	log.Info("database connected", zap.String("driver", cfg.DB.Driver))
	prepareSchema(cfg, db, log)

	// 依赖
	jwter := auth.New(cfg.JWT)
	svcOpts := []service.Option{
		service.WithLogger(log),
		service.WithProtectedIDs(cfg.Policy.ProtectedIDs...),
	}
	if rc := mustOpenCache(cfg, log); rc != nil {
		defer rc.Close()
		svcOpts = append(svcOpts, service.WithCache(rc, time.Duration(cfg.Redis.TTLSec)*time.Second))
	}
	userSvc := service.NewUserService(repo.NewUserRepo(db), svcOpts...)

	reg := router.NewRegistry(
		handler.NewAuthHandler(userSvc, jwter),
		handler.NewUserHandler(userSvc),
	)

	// 路由（后台端）
	r := router.NewAdminEngine(log, jwter, reg, router.Options{})
	srv := server.FromConfig(cfg.App.Admin, r)

	// 启动前打印可点击地址
	baseURL := server.HumanURL(cfg.App.Admin.Host, cfg.App.Admin.Port)
	log.Info("admin api starting",
		zap.String("addr", srv.Addr),
		zap.String("open", baseURL),
		zap.String("health", baseURL+"/health"),
		zap.String("admin_v1", baseURL+router.AdminPrefix),
	)

	// 异步启动；失败立即标红退出
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("admin api start FAILED", zap.Error(err))
		}
	}()
	log.Info("admin api started SUCCESS")

	// 关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Warn("admin api shutdown", zap.Error(err))
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	log.Info("admin api stopped gracefully")
}

func mustOpenDB(cfg *config.Config, l *zap.Logger) *gorm.DB {
	db, err := database.NewGorm(database.OptsFromConfig(cfg.DB, l))
	if err != nil {
		l.Fatal("db open", zap.Error(err))
	}
	return db
}

// prepareSchema 按配置迁移表结构并写入种子数据
func prepareSchema(cfg *config.Config, db *gorm.DB, l *zap.Logger) {
	if cfg.DB.AutoMigrate {
		if err := repo.Migrate(db); err != nil {
			l.Fatal("automigrate failed", zap.Error(err))
		}
		l.Info("automigrate done")
	}
	if cfg.DB.Seed {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		seeded, err := repo.Seed(ctx, db)
		if err != nil {
			l.Fatal("seed failed", zap.Error(err))
		}
		l.Info("seed checked", zap.Bool("inserted", seeded))
	}
}

// mustOpenCache redis 未启用返回 nil；启用但连不上则退出
func mustOpenCache(cfg *config.Config, l *zap.Logger) *cache.Cache {
	rc := cache.FromConfig(cfg.Redis, cfg.App.Name)
	if rc == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rc.Ping(ctx); err != nil {
		l.Fatal("redis ping", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
	}
	l.Info("redis connected", zap.String("addr", cfg.Redis.Addr))
	return rc
}
