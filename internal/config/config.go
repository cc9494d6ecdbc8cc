package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

var validEnvs = map[string]bool{
	"local": true,
	"alpha": true,
	"beta":  true,
	"prod":  true,
}

const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"

	// DefaultJWTSecret is the known development secret. It is refused
	// outside APP_ENV=local unless JWT_SECRET_ID supplies the real one.
	DefaultJWTSecret = "thisissecretkey"
)

type Config struct {
	ServerPort  string
	AppEnv      string
	LogLevel    string
	StoreDriver string
	DB          DBConfig
	JWT         JWTConfig
	AWSRegion   string
	BcryptCost  int
	// AllowAdminSignup lets the public signup endpoint create admins.
	AllowAdminSignup bool
	Redis            RedisConfig
	LoginRateLimit   RateLimitConfig
	SeedAdmin        SeedAdminConfig
}

func (c Config) ParseLogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func (c Config) Validate() error {
	if _, err := strconv.Atoi(c.ServerPort); err != nil {
		return fmt.Errorf("invalid SERVER_PORT %q: %w", c.ServerPort, err)
	}
	if !validEnvs[c.AppEnv] {
		return fmt.Errorf("invalid APP_ENV %q: must be one of local, alpha, beta, prod", c.AppEnv)
	}
	switch c.StoreDriver {
	case StoreDriverPostgres:
	case StoreDriverMemory:
		if c.AppEnv == "prod" {
			return fmt.Errorf("STORE_DRIVER=memory must not be used in prod environment")
		}
	default:
		return fmt.Errorf("invalid STORE_DRIVER %q: must be postgres or memory", c.StoreDriver)
	}
	if c.JWT.SecretKey == DefaultJWTSecret && c.JWT.SecretID == "" && c.AppEnv != "local" {
		return fmt.Errorf("JWT_SECRET_KEY must be changed (or JWT_SECRET_ID set) in %s environment", c.AppEnv)
	}
	if c.JWT.TTL <= 0 {
		return fmt.Errorf("JWT_TTL must be positive, got %s", c.JWT.TTL)
	}
	if c.BcryptCost < 4 || c.BcryptCost > 31 {
		return fmt.Errorf("BCRYPT_COST must be between 4 and 31, got %d", c.BcryptCost)
	}
	if c.Redis.Enabled() {
		if c.LoginRateLimit.Limit <= 0 {
			return fmt.Errorf("LOGIN_RATE_LIMIT must be positive, got %d", c.LoginRateLimit.Limit)
		}
		if c.LoginRateLimit.Window <= 0 {
			return fmt.Errorf("LOGIN_RATE_WINDOW must be positive, got %s", c.LoginRateLimit.Window)
		}
	}
	if (c.SeedAdmin.Email == "") != (c.SeedAdmin.Password == "") {
		return fmt.Errorf("SEED_ADMIN_EMAIL and SEED_ADMIN_PASSWORD must be set together")
	}
	return nil
}

type DBConfig struct {
	Host        string
	Port        string
	User        string
	Password    string
	Name        string
	SSLMode     string
	AutoMigrate bool
}

func (d DBConfig) DSN() string {
	u := &url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     net.JoinHostPort(d.Host, d.Port),
		Path:     d.Name,
		RawQuery: fmt.Sprintf("sslmode=%s", url.QueryEscape(d.SSLMode)),
	}
	return u.String()
}

type JWTConfig struct {
	SecretKey string
	// SecretID is an AWS Secrets Manager reference ("id" or "id#field").
	// When set it replaces SecretKey at startup.
	SecretID string
	TTL      time.Duration
	Issuer   string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// Enabled reports whether login rate limiting has a Redis to talk to.
func (r RedisConfig) Enabled() bool {
	return r.Addr != ""
}

type RateLimitConfig struct {
	Limit  int
	Window time.Duration
}

type SeedAdminConfig struct {
	Email    string
	Password string
}

// Load reads the environment. Malformed numbers, booleans and durations are
// reported together; range checks belong to Validate.
func Load() (Config, error) {
	p := &parser{}

	cfg := Config{
		ServerPort:  envOrDefault("SERVER_PORT", "8080"),
		AppEnv:      envOrDefault("APP_ENV", "local"),
		LogLevel:    envOrDefault("LOG_LEVEL", "info"),
		StoreDriver: strings.ToLower(envOrDefault("STORE_DRIVER", StoreDriverPostgres)),
		DB: DBConfig{
			Host:        envOrDefault("DB_HOST", "localhost"),
			Port:        envOrDefault("DB_PORT", "5432"),
			User:        envOrDefault("DB_USER", "taskboard"),
			Password:    envOrDefault("DB_PASSWORD", "taskboard"),
			Name:        envOrDefault("DB_NAME", "taskboard"),
			SSLMode:     envOrDefault("DB_SSLMODE", "disable"),
			AutoMigrate: p.bool("DB_AUTO_MIGRATE", true),
		},
		JWT: JWTConfig{
			SecretKey: envOrDefault("JWT_SECRET_KEY", DefaultJWTSecret),
			SecretID:  os.Getenv("JWT_SECRET_ID"),
			TTL:       p.duration("JWT_TTL", 24*time.Hour),
			Issuer:    envOrDefault("JWT_ISSUER", "taskboard"),
		},
		AWSRegion:        envOrDefault("AWS_REGION", "ap-northeast-1"),
		BcryptCost:       p.int("BCRYPT_COST", 10),
		AllowAdminSignup: p.bool("ALLOW_ADMIN_SIGNUP", false),
		Redis: RedisConfig{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       p.int("REDIS_DB", 0),
		},
		LoginRateLimit: RateLimitConfig{
			Limit:  p.int("LOGIN_RATE_LIMIT", 10),
			Window: p.duration("LOGIN_RATE_WINDOW", time.Minute),
		},
		SeedAdmin: SeedAdminConfig{
			Email:    os.Getenv("SEED_ADMIN_EMAIL"),
			Password: os.Getenv("SEED_ADMIN_PASSWORD"),
		},
	}

	return cfg, errors.Join(p.errs...)
}

type parser struct {
	errs []error
}

func (p *parser) int(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("invalid %s %q: %w", key, v, err))
		return def
	}
	return n
}

func (p *parser) bool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("invalid %s %q: %w", key, v, err))
		return def
	}
	return b
}

func (p *parser) duration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("invalid %s %q: %w", key, v, err))
		return def
	}
	return d
}

func envOrDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}
