package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpadp "hr-admin-backend/internal/adapter/http"
	"hr-admin-backend/internal/adapter/repository/mysql"
	"hr-admin-backend/internal/auth"
	"hr-admin-backend/internal/config"
	"hr-admin-backend/internal/infrastructure/cache"
	"hr-admin-backend/internal/infrastructure/db"
	"hr-admin-backend/internal/infrastructure/logging"
	ucApproval "hr-admin-backend/internal/usecase/approval"
	ucUser "hr-admin-backend/internal/usecase/user"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

func main() {
	cfg := config.Load()
	if err := logging.Setup(cfg.LogLevel, cfg.LogFormat); err != nil {
		log.WithError(err).Fatal("logging setup")
	}
	if err := cfg.Validate(); err != nil {
		log.WithError(err).Fatal("invalid configuration")
	}

	gdb, err := db.OpenGorm(cfg)
	if err != nil {
		log.WithError(err).Fatal("open database")
	}
	if cfg.DBAutoMigrate {
		if err := db.Migrate(gdb); err != nil {
			log.WithError(err).Fatal("migrate database")
		}
	}

	// Redis is optional: without it there is no stats cache and no
	// Idempotency-Key handling.
	var (
		rdb        *redis.Client
		statsCache ucApproval.Cache
	)
	if cfg.RedisAddr != "" {
		rdb, err = cache.OpenRedis(cfg.RedisAddr, cfg.RedisDB)
		if err != nil {
			log.WithError(err).Fatal("open redis")
		}
		defer rdb.Close()
		statsCache = cache.NewJSON(rdb, "hradmin:")
	} else {
		log.Warn("REDIS_ADDR not set; idempotency and stats cache disabled")
	}

	issuer := auth.NewIssuer(cfg.JWTSecret, cfg.JWTTTL())
	repos := mysql.Repos(gdb)
	users := ucUser.NewUsecase(repos.Users, issuer)
	approvals := ucApproval.NewUsecase(mysql.NewGormUoW(gdb), repos, statsCache, ucApproval.Options{
		AllowRedecide:   cfg.AllowRedecide,
		DefaultCurrency: cfg.DefaultCurrency,
		StatsTTL:        cfg.StatsCacheTTL(),
	})

	if cfg.BootstrapAdminEmail != "" && cfg.BootstrapAdminPassword != "" {
		created, err := users.EnsureSuperAdmin(context.Background(),
			cfg.BootstrapAdminEmail, cfg.BootstrapAdminPassword, cfg.BootstrapAdminName)
		if err != nil {
			log.WithError(err).Fatal("bootstrap super admin")
		}
		if created {
			log.WithField("email", cfg.BootstrapAdminEmail).Info("bootstrap super admin created")
		}
	}

	e := httpadp.NewServer(httpadp.Deps{
		Users:          users,
		Approvals:      approvals,
		Tokens:         issuer,
		Redis:          rdb,
		IdempotencyTTL: cfg.IdempotencyTTL(),
	})

	addr := ":" + cfg.AppPort
	go func() {
		log.WithField("addr", addr).Info("listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.WithError(err).Error("graceful shutdown")
	}
	if sqlDB, err := gdb.DB(); err == nil {
		_ = sqlDB.Close()
	}
	log.Info("bye")
}
