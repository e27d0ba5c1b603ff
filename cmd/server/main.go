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

	"github.com/qs3c/account_go_server/config"
	"github.com/qs3c/account_go_server/internal/api"
	"github.com/qs3c/account_go_server/internal/api/handler"
	"github.com/qs3c/account_go_server/internal/api/middleware"
	"github.com/qs3c/account_go_server/internal/database"
	"github.com/qs3c/account_go_server/internal/pkg/avatar"
	"github.com/qs3c/account_go_server/internal/pkg/cron"
	"github.com/qs3c/account_go_server/internal/pkg/email"
	"github.com/qs3c/account_go_server/internal/pkg/logger"
	"github.com/qs3c/account_go_server/internal/pkg/oss"
	"github.com/qs3c/account_go_server/internal/pkg/ratelimit"
	"github.com/qs3c/account_go_server/internal/pkg/s3client"
	"github.com/qs3c/account_go_server/internal/repository"
	"github.com/qs3c/account_go_server/internal/service"
)

const shutdownTimeout = 10 * time.Second

func main() {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}

	// 加载配置
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.App.Env)

	if err := run(cfg); err != nil {
		logger.GetLogger().Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	log := logger.GetLogger()

	if cfg.JWT.Secret == "" {
		return errors.New("jwt.secret is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 初始化数据库
	db, err := database.NewDB(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect database: %w", err)
	}
	log.Info("database connected", "driver", cfg.Database.Driver)

	// Redis 只用于限流，未配置时跳过
	var limiter middleware.RateLimiter
	if cfg.Redis.Enabled() {
		rdb, err := database.NewRedis(&cfg.Redis)
		if err != nil {
			return fmt.Errorf("failed to connect redis: %w", err)
		}
		defer rdb.Close()
		limiter = ratelimit.NewLimiter(rdb, cfg.RateLimit.Requests, cfg.RateLimit.Window)
		log.Info("redis connected, rate limit enabled",
			"requests", cfg.RateLimit.Requests,
			"window", cfg.RateLimit.Window,
		)
	}

	store, err := newAvatarStore(ctx, cfg)
	if err != nil {
		return err
	}

	sender, err := email.NewSender(&cfg.Email, cfg.App.Env)
	if err != nil {
		return err
	}

	// 清理上传残留的临时文件
	janitor := cron.NewService(cfg.Avatar.TempDir, cfg.Avatar.TempExpire)
	janitor.Start()
	defer janitor.Stop()

	// 初始化 Repository
	userRepo := repository.NewUserRepository(db)

	// 初始化 Service
	authService := service.NewAuthService(userRepo, email.NewService(sender, cfg.App.PublicURL), cfg)
	userService := service.NewUserService(userRepo, avatar.NewProcessor(cfg.Avatar.Size, cfg.Avatar.Fit), store)

	// 初始化 Handler
	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService, &cfg.Avatar)

	// 初始化 Router
	router := api.NewRouter(authHandler, userHandler, authService, limiter, cfg)

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: router.Setup(),
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server starting", "addr", srv.Addr, "env", cfg.App.Env)
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

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// newAvatarStore 按 avatar.backend 选择头像存储
func newAvatarStore(ctx context.Context, cfg *config.Config) (avatar.Store, error) {
	switch cfg.Avatar.Backend {
	case "", "local":
		return avatar.NewLocalStore(cfg.Avatar.PublicDir, cfg.Avatar.Folder), nil
	case "oss":
		client, err := oss.NewClient(&cfg.OSS)
		if err != nil {
			return nil, err
		}
		return avatar.NewRemoteStore(client), nil
	case "s3":
		client, err := s3client.NewClient(ctx, &cfg.S3)
		if err != nil {
			return nil, err
		}
		return avatar.NewRemoteStore(client), nil
	default:
		return nil, fmt.Errorf("unknown avatar backend: %s", cfg.Avatar.Backend)
	}
}
