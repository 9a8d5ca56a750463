package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const minSecretLen = 16

// Config holds all configuration for the crisis API server.
type Config struct {
	Server    ServerConfig
	Security  SecurityConfig
	Session   SessionConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Mail      MailConfig
	RateLimit RateLimitConfig
}

type ServerConfig struct {
	Port               int
	Env                string
	PublicBaseURL      string
	CORSAllowedOrigins []string
}

// SecurityConfig carries the server-side secrets. Both must stay stable across
// restarts: rotating them invalidates every docs cookie and every stored email hash.
type SecurityConfig struct {
	Secret        string
	EncryptionKey string
}

type SessionConfig struct {
	TTL          time.Duration
	CookieSecure bool
}

type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type RedisConfig struct {
	URL string
}

type MailConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type RateLimitConfig struct {
	RequestsPerMinute      int
	LoginRequestsPerMinute int
}

// Load reads configuration from environment variables and returns a validated Config.
// Returns an error with a descriptive message if any required value is missing or invalid.
func Load() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	cfg := &Config{
		Server: ServerConfig{
			Port:               v.GetInt("PORT"),
			Env:                v.GetString("APP_ENV"),
			PublicBaseURL:      strings.TrimRight(v.GetString("PUBLIC_BASE_URL"), "/"),
			CORSAllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		},
		Security: SecurityConfig{
			Secret:        v.GetString("APP_SECRET"),
			EncryptionKey: v.GetString("APP_ENCRYPTION_KEY"),
		},
		Session: SessionConfig{
			TTL:          v.GetDuration("SESSION_TTL"),
			CookieSecure: v.GetBool("SESSION_COOKIE_SECURE"),
		},
		Database: DatabaseConfig{
			URL:             v.GetString("DATABASE_URL"),
			MaxOpenConns:    v.GetInt("DATABASE_MAX_OPEN_CONNS"),
			MaxIdleConns:    v.GetInt("DATABASE_MAX_IDLE_CONNS"),
			ConnMaxLifetime: v.GetDuration("DATABASE_CONN_MAX_LIFETIME"),
		},
		Redis: RedisConfig{
			URL: v.GetString("REDIS_URL"),
		},
		Mail: MailConfig{
			Host:     v.GetString("SMTP_HOST"),
			Port:     v.GetInt("SMTP_PORT"),
			Username: v.GetString("SMTP_USERNAME"),
			Password: v.GetString("SMTP_PASSWORD"),
			From:     v.GetString("MAIL_FROM"),
		},
		RateLimit: RateLimitConfig{
			RequestsPerMinute:      v.GetInt("RATE_LIMIT_PER_MINUTE"),
			LoginRequestsPerMinute: v.GetInt("LOGIN_RATE_LIMIT_PER_MINUTE"),
		},
	}

	// A single secret is enough; the email hashing key only differs when set explicitly.
	if cfg.Security.EncryptionKey == "" {
		cfg.Security.EncryptionKey = cfg.Security.Secret
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", 8080)
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("PUBLIC_BASE_URL", "http://localhost:8080")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:8080")
	v.SetDefault("SESSION_TTL", 24*time.Hour)
	v.SetDefault("SESSION_COOKIE_SECURE", false)
	v.SetDefault("DATABASE_MAX_OPEN_CONNS", 25)
	v.SetDefault("DATABASE_MAX_IDLE_CONNS", 5)
	v.SetDefault("DATABASE_CONN_MAX_LIFETIME", 5*time.Minute)
	v.SetDefault("SMTP_HOST", "localhost")
	v.SetDefault("SMTP_PORT", 25)
	v.SetDefault("MAIL_FROM", "no-reply@localhost")
	v.SetDefault("RATE_LIMIT_PER_MINUTE", 60)
	v.SetDefault("LOGIN_RATE_LIMIT_PER_MINUTE", 10)
}

func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535, got %d", c.Server.Port)
	}

	if c.Security.Secret == "" {
		return fmt.Errorf("APP_SECRET is required")
	}
	if len(c.Security.Secret) < minSecretLen {
		return fmt.Errorf("APP_SECRET must be at least %d characters", minSecretLen)
	}

	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.Redis.URL == "" {
		return fmt.Errorf("REDIS_URL is required")
	}

	u, err := url.Parse(c.Server.PublicBaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("PUBLIC_BASE_URL must be an absolute http(s) URL, got %q", c.Server.PublicBaseURL)
	}

	if c.Session.TTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive")
	}

	if c.Mail.From == "" {
		return fmt.Errorf("MAIL_FROM is required")
	}

	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
