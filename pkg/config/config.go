package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// DefaultSecret is the placeholder auth.secret shipped for local runs
const DefaultSecret = "change-me"

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Auth      AuthConfig
	Cache     CacheConfig
	Storage   StorageConfig
	Kafka     KafkaConfig
	SMTP      SMTPConfig
	Outbox    OutboxConfig
	Logging   LoggingConfig
	Telemetry TelemetryConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string
	Port         int
	PostsPerPage int
	BaseURL      string // absolute links in notification mail
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Driver       string // mysql, postgres or memory
	DSN          string
	MaxIdleConns int
	MaxOpenConns int
	AutoMigrate  bool
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	URL     string
	Enabled bool
}

// AuthConfig holds session token settings
type AuthConfig struct {
	Secret      string
	TokenTTL    time.Duration // sliding session lifetime
	MaxAge      time.Duration // hard token lifetime
	CookieName  string
	LoginURL    string
	MaxSessions int // in-process session store bound, 0 is unbounded
}

// CacheConfig holds page cache settings
type CacheConfig struct {
	IndexTTL time.Duration
	Size     int
}

// StorageConfig holds image storage settings
type StorageConfig struct {
	Backend  string // local or s3
	Dir      string
	Bucket   string
	Region   string
	MediaURL string
}

// KafkaConfig holds the social event producer settings
type KafkaConfig struct {
	Enabled bool
	Brokers []string
	Topic   string
}

// SMTPConfig holds notification mail settings
type SMTPConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// OutboxConfig holds relayer settings
type OutboxConfig struct {
	Enabled   bool
	BatchSize int
	Interval  time.Duration
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string
	Format string // "json" or "text"
}

// TelemetryConfig holds observability configuration
type TelemetryConfig struct {
	Enabled           bool
	JaegerURL         string
	PrometheusEnabled bool
	ServiceName       string
}

const envPrefix = "YATUBE"

// Load reads configuration from defaults, an optional config file and
// YATUBE_* environment variables. An empty path searches the usual locations.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.yatube")
		v.AddConfigPath("/etc/yatube")
	}

	if err := v.ReadInConfig(); err != nil {
		// Config file not found; this is OK if we have env vars
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := &Config{
		Server: ServerConfig{
			Host:         v.GetString("server.host"),
			Port:         v.GetInt("server.port"),
			PostsPerPage: v.GetInt("server.posts_per_page"),
			BaseURL:      v.GetString("server.base_url"),
		},
		Database: DatabaseConfig{
			Driver:       v.GetString("database.driver"),
			DSN:          v.GetString("database.dsn"),
			MaxIdleConns: v.GetInt("database.max_idle_conns"),
			MaxOpenConns: v.GetInt("database.max_open_conns"),
			AutoMigrate:  v.GetBool("database.auto_migrate"),
		},
		Redis: RedisConfig{
			URL:     v.GetString("redis.url"),
			Enabled: v.GetString("redis.url") != "",
		},
		Auth: AuthConfig{
			Secret:      v.GetString("auth.secret"),
			TokenTTL:    v.GetDuration("auth.token_ttl"),
			MaxAge:      v.GetDuration("auth.max_age"),
			CookieName:  v.GetString("auth.cookie_name"),
			LoginURL:    v.GetString("auth.login_url"),
			MaxSessions: v.GetInt("auth.max_sessions"),
		},
		Cache: CacheConfig{
			IndexTTL: v.GetDuration("cache.index_ttl"),
			Size:     v.GetInt("cache.size"),
		},
		Storage: StorageConfig{
			Backend:  v.GetString("storage.backend"),
			Dir:      v.GetString("storage.dir"),
			Bucket:   v.GetString("storage.bucket"),
			Region:   v.GetString("storage.region"),
			MediaURL: v.GetString("storage.media_url"),
		},
		Kafka: KafkaConfig{
			Enabled: v.GetBool("kafka.enabled"),
			Brokers: splitList(v.GetString("kafka.brokers")),
			Topic:   v.GetString("kafka.topic"),
		},
		SMTP: SMTPConfig{
			Enabled:  v.GetBool("smtp.enabled"),
			Host:     v.GetString("smtp.host"),
			Port:     v.GetInt("smtp.port"),
			Username: v.GetString("smtp.username"),
			Password: v.GetString("smtp.password"),
			From:     v.GetString("smtp.from"),
		},
		Outbox: OutboxConfig{
			Enabled:   v.GetBool("outbox.enabled"),
			BatchSize: v.GetInt("outbox.batch_size"),
			Interval:  v.GetDuration("outbox.interval"),
		},
		Logging: LoggingConfig{
			Level:  v.GetString("logging.level"),
			Format: v.GetString("logging.format"),
		},
		Telemetry: TelemetryConfig{
			Enabled:           v.GetBool("telemetry.enabled"),
			JaegerURL:         v.GetString("telemetry.jaeger_url"),
			PrometheusEnabled: v.GetBool("telemetry.prometheus_enabled"),
			ServiceName:       v.GetString("telemetry.service_name"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.posts_per_page", 10)
	v.SetDefault("server.base_url", "http://localhost:8080")
	v.SetDefault("database.driver", "mysql")
	v.SetDefault("database.dsn", "user:password@tcp(127.0.0.1:3306)/yatube?charset=utf8mb4&parseTime=True")
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.max_open_conns", 100)
	v.SetDefault("database.auto_migrate", true)
	v.SetDefault("redis.url", "")
	v.SetDefault("auth.secret", DefaultSecret)
	v.SetDefault("auth.token_ttl", 30*time.Minute)
	v.SetDefault("auth.max_age", 24*time.Hour)
	v.SetDefault("auth.cookie_name", "yatube_session")
	v.SetDefault("auth.login_url", "/auth/login/")
	v.SetDefault("auth.max_sessions", 0)
	v.SetDefault("cache.index_ttl", 20*time.Second)
	v.SetDefault("cache.size", 1024)
	v.SetDefault("storage.backend", "local")
	v.SetDefault("storage.dir", "media")
	v.SetDefault("storage.region", "us-west-1")
	v.SetDefault("storage.media_url", "/media/")
	v.SetDefault("kafka.enabled", false)
	v.SetDefault("kafka.brokers", "127.0.0.1:9092")
	v.SetDefault("kafka.topic", "yatube.social")
	v.SetDefault("smtp.enabled", false)
	v.SetDefault("smtp.port", 587)
	v.SetDefault("smtp.from", "Yatube <no-reply@yatube.local>")
	v.SetDefault("outbox.enabled", false)
	v.SetDefault("outbox.batch_size", 200)
	v.SetDefault("outbox.interval", time.Second)
	v.SetDefault("logging.level", "INFO")
	v.SetDefault("logging.format", "json")
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.jaeger_url", "http://localhost:14268/api/traces")
	v.SetDefault("telemetry.prometheus_enabled", true)
	v.SetDefault("telemetry.service_name", "yatube")
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

// Validate validates the configuration
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "mysql", "postgres":
		if c.Database.DSN == "" {
			return fmt.Errorf("database.dsn is required for driver %s", c.Database.Driver)
		}
	case "memory":
	default:
		return fmt.Errorf("unknown database.driver %q", c.Database.Driver)
	}
	if c.Auth.Secret == "" {
		return fmt.Errorf("auth.secret is required")
	}
	if c.Auth.Secret == DefaultSecret && strings.HasPrefix(c.Server.BaseURL, "https://") {
		return fmt.Errorf("auth.secret must be changed from the default when server.base_url is https")
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("auth.token_ttl must be positive")
	}
	if c.Auth.MaxSessions < 0 {
		return fmt.Errorf("auth.max_sessions must not be negative")
	}
	if c.Auth.MaxAge < c.Auth.TokenTTL {
		return fmt.Errorf("auth.max_age must not be shorter than auth.token_ttl")
	}
	if c.Server.PostsPerPage <= 0 || c.Server.PostsPerPage > 100 {
		return fmt.Errorf("server.posts_per_page must be between 1 and 100")
	}
	switch c.Storage.Backend {
	case "local":
	case "s3":
		if c.Storage.Bucket == "" {
			return fmt.Errorf("storage.bucket is required for the s3 backend")
		}
	default:
		return fmt.Errorf("unknown storage.backend %q", c.Storage.Backend)
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers is required when kafka is enabled")
	}
	return nil
}

// Warnings lists settings that are accepted but unsafe outside local development
func (c *Config) Warnings() []string {
	var warnings []string
	if c.Auth.Secret == DefaultSecret {
		warnings = append(warnings, "auth.secret is the default placeholder; set YATUBE_AUTH_SECRET")
	}
	return warnings
}
