// config/config.go - Runtime configuration (YAML file overlaid by environment)
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type ServerConfig struct {
	Addr      string `yaml:"addr"`
	StaticDir string `yaml:"static_dir"`
	// PublicURL is used to build absolute redirect URLs (Stripe success/cancel)
	PublicURL string `yaml:"public_url"`
	// AssetRoot is where the image presets write their output
	AssetRoot string `yaml:"asset_root"`
}

type BackendConfig struct {
	BaseURL       string        `yaml:"base_url"`
	SessionCookie string        `yaml:"session_cookie"`
	Timeout       time.Duration `yaml:"timeout"`
}

type CacheConfig struct {
	StaleTime  time.Duration `yaml:"stale_time"`
	RenderWait time.Duration `yaml:"render_wait"`
}

type SessionConfig struct {
	Driver     string `yaml:"driver"` // sqlite or redis
	SQLitePath string `yaml:"sqlite_path"`
	RedisAddr  string `yaml:"redis_addr"`
	RedisPass  string `yaml:"redis_password"`
	RedisDB    int    `yaml:"redis_db"`
}

type StripeConfig struct {
	SecretKey     string `yaml:"secret_key"`
	WebhookSecret string `yaml:"webhook_secret"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // json or console
}

type Config struct {
	Server      ServerConfig  `yaml:"server"`
	Backend     BackendConfig `yaml:"backend"`
	Cache       CacheConfig   `yaml:"cache"`
	Session     SessionConfig `yaml:"session"`
	Stripe      StripeConfig  `yaml:"stripe"`
	Log         LogConfig     `yaml:"log"`
	Maintenance bool          `yaml:"maintenance"`
}

// Default returns the configuration used when nothing is set
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:      ":8080",
			StaticDir: "web/static",
			PublicURL: "http://localhost:8080",
			AssetRoot: ".",
		},
		Backend: BackendConfig{
			BaseURL:       "http://localhost:5000",
			SessionCookie: "connect.sid",
			Timeout:       10 * time.Second,
		},
		Cache: CacheConfig{
			StaleTime:  30 * time.Second,
			RenderWait: 300 * time.Millisecond,
		},
		Session: SessionConfig{
			Driver:     "sqlite",
			SQLitePath: "data/portal.db",
		},
		Log: LogConfig{Level: "info", Format: "json"},
	}
}

// Load reads the YAML file at path (a missing file is fine) and applies env overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	raw, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("read config: %w", err)
	default:
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	overrideFromEnv(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Backend.BaseURL == "" {
		return errors.New("config: backend base_url is required")
	}
	switch c.Session.Driver {
	case "sqlite":
		if c.Session.SQLitePath == "" {
			return errors.New("config: session sqlite_path is required")
		}
	case "redis":
		if c.Session.RedisAddr == "" {
			return errors.New("config: session redis_addr is required")
		}
	default:
		return fmt.Errorf("config: unknown session driver %q", c.Session.Driver)
	}
	if c.Stripe.SecretKey != "" && c.Stripe.WebhookSecret == "" {
		return errors.New("config: stripe webhook_secret is required when secret_key is set")
	}
	return nil
}

// StripeEnabled reports whether invoice payments are offered
func (c *Config) StripeEnabled() bool {
	return c.Stripe.SecretKey != ""
}

func overrideFromEnv(cfg *Config) {
	cfg.Server.Addr = getEnv("LEFLOW_ADDR", cfg.Server.Addr)
	cfg.Server.StaticDir = getEnv("LEFLOW_STATIC_DIR", cfg.Server.StaticDir)
	cfg.Server.PublicURL = getEnv("LEFLOW_PUBLIC_URL", cfg.Server.PublicURL)
	cfg.Server.AssetRoot = getEnv("LEFLOW_ASSET_ROOT", cfg.Server.AssetRoot)

	cfg.Backend.BaseURL = getEnv("LEFLOW_BACKEND_URL", cfg.Backend.BaseURL)
	cfg.Backend.SessionCookie = getEnv("LEFLOW_BACKEND_COOKIE", cfg.Backend.SessionCookie)
	cfg.Backend.Timeout = getDuration("LEFLOW_BACKEND_TIMEOUT", cfg.Backend.Timeout)

	cfg.Cache.StaleTime = getDuration("LEFLOW_CACHE_STALE", cfg.Cache.StaleTime)
	cfg.Cache.RenderWait = getDuration("LEFLOW_RENDER_WAIT", cfg.Cache.RenderWait)

	cfg.Session.Driver = getEnv("LEFLOW_SESSION_DRIVER", cfg.Session.Driver)
	cfg.Session.SQLitePath = getEnv("LEFLOW_SQLITE_PATH", cfg.Session.SQLitePath)
	cfg.Session.RedisAddr = getEnv("REDIS_ADDR", cfg.Session.RedisAddr)
	cfg.Session.RedisPass = getEnv("REDIS_PASSWORD", cfg.Session.RedisPass)
	cfg.Session.RedisDB = getInt("REDIS_DB", cfg.Session.RedisDB)

	cfg.Stripe.SecretKey = getEnv("STRIPE_SECRET_KEY", cfg.Stripe.SecretKey)
	cfg.Stripe.WebhookSecret = getEnv("STRIPE_WEBHOOK_SECRET", cfg.Stripe.WebhookSecret)

	cfg.Log.Level = getEnv("LOG_LEVEL", cfg.Log.Level)
	cfg.Log.Format = getEnv("LOG_FORMAT", cfg.Log.Format)

	cfg.Maintenance = getBool("MAINTENANCE_MODE", cfg.Maintenance)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
