// Package config loads the application configuration from a YAML file,
// an optional .env file and environment variable overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents the overall application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Auth     AuthConfig     `yaml:"auth"`
	Socket   SocketConfig   `yaml:"socket"`
	Features FeatureConfig  `yaml:"features"`
	Site     SiteConfig     `yaml:"site"`
	Alerts   AlertConfig    `yaml:"alerts"`
	Trivia   TriviaConfig   `yaml:"trivia"`
}

// ServerConfig holds the HTTP server configuration.
type ServerConfig struct {
	Port                  int      `yaml:"port"`
	PublicURL             string   `yaml:"public_url"`
	RateLimitPerSec       float64  `yaml:"rate_limit_per_sec"`
	RateLimitBurst        int      `yaml:"rate_limit_burst"`
	StatusCacheTTLSeconds int      `yaml:"status_cache_ttl_seconds"`
	AllowedOrigins        []string `yaml:"allowed_origins"`
}

// DatabaseConfig holds the database connection configuration.
type DatabaseConfig struct {
	Driver                 string `yaml:"driver"` // sqlite, postgres or mysql
	DSN                    string `yaml:"dsn"`
	MaxOpenConns           int    `yaml:"max_open_conns"`
	MaxIdleConns           int    `yaml:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `yaml:"conn_max_lifetime_minutes"`
	LogSQL                 bool   `yaml:"log_sql"`
}

// RedisConfig configures the optional event mirror. An empty Addr disables it.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Channel  string `yaml:"channel"`
}

// AuthConfig holds the shared host credential and the session signing secret.
type AuthConfig struct {
	AdminUsername        string `yaml:"admin_username"`
	AdminPassword        string `yaml:"admin_password"`
	AdminPasswordHash    string `yaml:"admin_password_hash"`
	SessionSecret        string `yaml:"session_secret"`
	SessionLifetimeHours int    `yaml:"session_lifetime_hours"`
	SecureCookies        bool   `yaml:"secure_cookies"`

	SessionLifetime time.Duration `yaml:"-"`
}

// SocketConfig controls WebSocket keep-alive and buffering.
type SocketConfig struct {
	PingTimeoutSeconds  int   `yaml:"ping_timeout_seconds"`
	PingIntervalSeconds int   `yaml:"ping_interval_seconds"`
	SendBuffer          int   `yaml:"send_buffer"`
	MaxFrameBytes       int64 `yaml:"max_frame_bytes"`

	PingTimeout  time.Duration `yaml:"-"`
	PingInterval time.Duration `yaml:"-"`
}

// FeatureConfig holds behaviour switches.
type FeatureConfig struct {
	RequireNames     bool `yaml:"require_names"`
	LogVisits        bool `yaml:"log_visits"`
	RequireApproval  bool `yaml:"require_approval"`
	MaxMessageLength int  `yaml:"max_message_length"`
	ChatHistoryLimit int  `yaml:"chat_history_limit"`
}

// SiteConfig holds the public site information.
type SiteConfig struct {
	Name     string `yaml:"name"`
	Tagline  string `yaml:"tagline"`
	HostName string `yaml:"host_name"`
}

// AlertConfig configures host alerts for new access requests.
type AlertConfig struct {
	Workers         int    `yaml:"workers"`
	QueueSize       int    `yaml:"queue_size"`
	VAPIDPublicKey  string `yaml:"vapid_public_key"`
	VAPIDPrivateKey string `yaml:"vapid_private_key"`
	Subject         string `yaml:"subject"`
	TTL             int    `yaml:"ttl"`
	TelegramToken   string `yaml:"telegram_bot_token"`
	TelegramChatID  int64  `yaml:"telegram_chat_id"`
}

// TriviaConfig configures the Open Trivia DB client.
type TriviaConfig struct {
	BaseURL        string `yaml:"base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// Load reads the configuration from the given path. A missing file is not an
// error: defaults and environment variables are used instead.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("WARN: [Config] failed to load .env file: %v", err)
	}

	cfg := Config{Features: FeatureConfig{LogVisits: true, RequireApproval: true}}
	f, err := os.Open(path)
	switch {
	case err == nil:
		defer f.Close()
		if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist):
		log.Printf("WARN: [Config] %s not found, using defaults and environment", path)
	default:
		return nil, err
	}

	applyEnv(&cfg)
	applyDefaults(&cfg)
	return &cfg, nil
}

func applyEnv(cfg *Config) {
	setString := func(dst *string, key string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	setString(&cfg.Database.Driver, "DATABASE_DRIVER")
	setString(&cfg.Database.DSN, "DATABASE_URL")
	setString(&cfg.Redis.Addr, "REDIS_ADDR")
	setString(&cfg.Auth.AdminUsername, "ADMIN_USERNAME")
	setString(&cfg.Auth.AdminPassword, "ADMIN_PASSWORD")
	setString(&cfg.Auth.SessionSecret, "SECRET_KEY")
	setString(&cfg.Alerts.TelegramToken, "TELEGRAM_BOT_TOKEN")
	setString(&cfg.Alerts.VAPIDPublicKey, "VAPID_PUBLIC_KEY")
	setString(&cfg.Alerts.VAPIDPrivateKey, "VAPID_PRIVATE_KEY")

	if v := os.Getenv("PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = p
		}
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Alerts.TelegramChatID = id
		}
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 5000
	}
	if cfg.Server.RateLimitPerSec <= 0 {
		cfg.Server.RateLimitPerSec = 10
	}
	if cfg.Server.RateLimitBurst <= 0 {
		cfg.Server.RateLimitBurst = 5
	}
	if cfg.Server.StatusCacheTTLSeconds <= 0 {
		cfg.Server.StatusCacheTTLSeconds = 2
	}

	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "sqlite"
	}
	if cfg.Database.DSN == "" && cfg.Database.Driver == "sqlite" {
		cfg.Database.DSN = "welcome_window.db"
	}
	if cfg.Database.MaxOpenConns <= 0 {
		cfg.Database.MaxOpenConns = 10
	}
	if cfg.Database.MaxIdleConns <= 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetimeMinutes <= 0 {
		cfg.Database.ConnMaxLifetimeMinutes = 30
	}

	if cfg.Redis.Channel == "" {
		cfg.Redis.Channel = "welcome_window:events"
	}

	if cfg.Auth.AdminUsername == "" {
		cfg.Auth.AdminUsername = "admin"
	}
	if cfg.Auth.AdminPassword == "" && cfg.Auth.AdminPasswordHash == "" {
		log.Printf("WARN: [Config] no admin password configured, falling back to the development default")
		cfg.Auth.AdminPassword = "changeme123"
	}
	if cfg.Auth.SessionSecret == "" {
		log.Printf("WARN: [Config] no session secret configured, falling back to the development default")
		cfg.Auth.SessionSecret = "dev-secret-key-change-in-production"
	}
	if cfg.Auth.SessionLifetimeHours <= 0 {
		cfg.Auth.SessionLifetime = DefaultSessionLifetime
	} else {
		cfg.Auth.SessionLifetime = time.Duration(cfg.Auth.SessionLifetimeHours) * time.Hour
	}

	if cfg.Socket.PingTimeoutSeconds <= 0 {
		cfg.Socket.PingTimeout = DefaultPingTimeout
	} else {
		cfg.Socket.PingTimeout = time.Duration(cfg.Socket.PingTimeoutSeconds) * time.Second
	}
	if cfg.Socket.PingIntervalSeconds <= 0 {
		cfg.Socket.PingInterval = DefaultPingInterval
	} else {
		cfg.Socket.PingInterval = time.Duration(cfg.Socket.PingIntervalSeconds) * time.Second
	}
	if cfg.Socket.PingInterval >= cfg.Socket.PingTimeout {
		log.Printf("WARN: [Config] socket ping interval must be shorter than the timeout; using 9/10 of the timeout")
		cfg.Socket.PingInterval = (cfg.Socket.PingTimeout * 9) / 10
	}
	if cfg.Socket.SendBuffer <= 0 {
		cfg.Socket.SendBuffer = DefaultSendBuffer
	}
	if cfg.Socket.MaxFrameBytes <= 0 {
		cfg.Socket.MaxFrameBytes = DefaultMaxFrameSize
	}

	if cfg.Features.MaxMessageLength <= 0 {
		cfg.Features.MaxMessageLength = DefaultMaxMessageLength
	}
	if cfg.Features.ChatHistoryLimit <= 0 {
		cfg.Features.ChatHistoryLimit = DefaultChatHistoryLimit
	}

	if cfg.Site.Name == "" {
		cfg.Site.Name = "Diane's Welcome Window"
	}
	if cfg.Site.Tagline == "" {
		cfg.Site.Tagline = "Drop by for a chat when the light is on"
	}
	if cfg.Site.HostName == "" {
		cfg.Site.HostName = HostDisplayName
	}

	if cfg.Alerts.Workers <= 0 {
		cfg.Alerts.Workers = 1
	}
	if cfg.Alerts.QueueSize <= 0 {
		cfg.Alerts.QueueSize = 32
	}
	if cfg.Alerts.TTL <= 0 {
		cfg.Alerts.TTL = 3600
	}

	if cfg.Trivia.BaseURL == "" {
		cfg.Trivia.BaseURL = "https://opentdb.com/api.php"
	}
	if cfg.Trivia.TimeoutSeconds <= 0 {
		cfg.Trivia.TimeoutSeconds = 5
	}
}

// Default returns a configuration with every default applied. It does not
// read the environment.
func Default() *Config {
	cfg := Config{Features: FeatureConfig{LogVisits: true, RequireApproval: true}}
	applyDefaults(&cfg)
	return &cfg
}
