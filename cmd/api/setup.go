package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/jaekwang-park/taskboard-api/internal/config"
	"github.com/jaekwang-park/taskboard-api/internal/repository"
	"github.com/jaekwang-park/taskboard-api/internal/secrets"
)

func loadConfig() (config.Config, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, nil, err
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.ParseLogLevel(),
	}))
	slog.SetDefault(logger)
	return cfg, logger, nil
}

// signingSecret returns JWT_SECRET_KEY unless JWT_SECRET_ID names a secret
// in AWS Secrets Manager.
func signingSecret(ctx context.Context, cfg config.Config, logger *slog.Logger) (string, error) {
	if cfg.JWT.SecretID == "" {
		if cfg.JWT.SecretKey == config.DefaultJWTSecret {
			logger.Warn("using the development JWT secret")
		}
		return cfg.JWT.SecretKey, nil
	}

	provider, err := secrets.NewAWSProvider(ctx, cfg.AWSRegion)
	if err != nil {
		return "", err
	}
	ref := secrets.ParseReference(cfg.JWT.SecretID)
	secret, err := provider.Get(ctx, ref)
	if err != nil {
		return "", fmt.Errorf("failed to load JWT secret: %w", err)
	}
	logger.Info("JWT secret loaded from secrets manager", "secret", ref.String(), "region", cfg.AWSRegion)
	return secret, nil
}

// stores holds the repositories behind the configured driver. close releases
// the database pool when there is one.
type stores struct {
	users repository.UserRepository
	tasks repository.TaskRepository
	close func() error
}

func openStores(ctx context.Context, cfg config.Config, logger *slog.Logger) (stores, error) {
	if cfg.StoreDriver == config.StoreDriverMemory {
		logger.Warn("using in-memory store; data is lost on exit")
		mem := repository.NewMemoryStore()
		return stores{users: mem.Users(), tasks: mem.Tasks(), close: func() error { return nil }}, nil
	}

	db, err := repository.NewDB(cfg.DB.DSN())
	if err != nil {
		return stores{}, err
	}
	logger.Info("database connected")

	if cfg.DB.AutoMigrate {
		if err := repository.Migrate(ctx, db); err != nil {
			db.Close()
			return stores{}, err
		}
		logger.Info("database schema applied")
	}

	return stores{
		users: repository.NewPostgresUser(db),
		tasks: repository.NewPostgresTask(db),
		close: db.Close,
	}, nil
}
