package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jaekwang-park/taskboard-api/internal/auth"
	"github.com/jaekwang-park/taskboard-api/internal/config"
	taskhttp "github.com/jaekwang-park/taskboard-api/internal/http"
	"github.com/jaekwang-park/taskboard-api/internal/middleware"
	"github.com/jaekwang-park/taskboard-api/internal/ratelimit"
	"github.com/jaekwang-park/taskboard-api/internal/service"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func run(ctx context.Context) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}

	logger.Info("config loaded",
		"env", cfg.AppEnv,
		"port", cfg.ServerPort,
		"store", cfg.StoreDriver,
		"log_level", cfg.LogLevel,
	)

	secret, err := signingSecret(ctx, cfg, logger)
	if err != nil {
		return err
	}
	tokens, err := auth.NewTokenManager(auth.TokenConfig{
		Secret: secret,
		TTL:    cfg.JWT.TTL,
		Issuer: cfg.JWT.Issuer,
	})
	if err != nil {
		return err
	}
	hasher := auth.NewPasswordHasher(cfg.BcryptCost)

	st, err := openStores(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer st.close()

	// Services
	authSvc := service.NewAuthService(st.users, hasher, tokens, cfg.AllowAdminSignup)
	userSvc := service.NewUserService(st.users, hasher)
	taskSvc := service.NewTaskService(st.tasks, st.users)

	if cfg.SeedAdmin.Email != "" {
		if err := seedAdmin(ctx, userSvc, cfg.SeedAdmin, logger); err != nil {
			return err
		}
	}

	guard, err := middleware.NewAuth(middleware.AuthConfig{
		Verifier: tokens,
		Resolver: taskhttp.NewIdentityResolver(st.users),
		Logger:   logger,
	})
	if err != nil {
		return fmt.Errorf("failed to create auth middleware: %w", err)
	}

	deps := taskhttp.Deps{
		Auth:   authSvc,
		Tasks:  taskSvc,
		Users:  userSvc,
		Guard:  guard,
		Logger: logger,
	}

	if cfg.Redis.Enabled() {
		client, err := ratelimit.NewRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return err
		}
		defer client.Close()

		limiter, err := ratelimit.New(client, ratelimit.Config{
			Prefix: "taskboard:login:",
			Limit:  cfg.LoginRateLimit.Limit,
			Window: cfg.LoginRateLimit.Window,
		})
		if err != nil {
			return err
		}
		deps.LoginLimiter = limiter
		logger.Info("login rate limiting enabled",
			"limit", cfg.LoginRateLimit.Limit,
			"window", cfg.LoginRateLimit.Window.String(),
		)
	} else {
		logger.Warn("login rate limiting disabled: REDIS_ADDR not set")
	}

	// HTTP Server
	srv := taskhttp.NewServer(cfg.ServerPort, logger, deps)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	logger.Info("server stopped gracefully")
	return nil
}

func seedAdmin(ctx context.Context, users *service.UserService, seed config.SeedAdminConfig, logger *slog.Logger) error {
	admin, created, err := users.EnsureAdmin(ctx, seed.Email, seed.Password, "")
	if err != nil {
		return fmt.Errorf("failed to seed admin: %w", err)
	}
	if created {
		logger.Info("admin created", "user_id", admin.ID, "email", admin.Email)
	}
	return nil
}
