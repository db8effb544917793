// Package config loads the service configuration from YAML with
// environment-variable overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultReadTimeoutSeconds is the default read timeout in seconds
	DefaultReadTimeoutSeconds = 10
	// DefaultWriteTimeoutSeconds is the default write timeout in seconds
	DefaultWriteTimeoutSeconds = 30
	// DefaultShutdownTimeoutSeconds is the default shutdown timeout in seconds
	DefaultShutdownTimeoutSeconds = 30
)

type Config struct {
	Debug      bool             `yaml:"debug"` // Application debug mode (controls log level and format)
	Server     ServerConfig     `yaml:"server"`
	Postgres   PostgresConfig   `yaml:"postgres"`
	Redis      RedisConfig      `yaml:"redis"`
	Cache      CacheConfig      `yaml:"cache"`
	Worker     WorkerConfig     `yaml:"worker"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
}

type ServerConfig struct {
	Address      string        `yaml:"address"`       // e.g., ":8080"
	ReadTimeout  time.Duration `yaml:"read_timeout"`  // Default: 10s
	WriteTimeout time.Duration `yaml:"write_timeout"` // Default: 30s
}

type PostgresConfig struct {
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type CacheConfig struct {
	KeyPrefix string        `yaml:"key_prefix"` // Default: "feedgate"
	TTL       time.Duration `yaml:"ttl"`        // Destination cache TTL, default: 1h
}

type WorkerConfig struct {
	MaxAttempts             int           `yaml:"max_attempts"`              // Retry budget per job, default: 3
	RetryProtocolRejections bool          `yaml:"retry_protocol_rejections"` // Requeue destination-rejected payloads
	DequeueTimeout          time.Duration `yaml:"dequeue_timeout"`           // Default: 5s
	PublishTimeout          time.Duration `yaml:"publish_timeout"`           // Default: 30s
	QueueKey                string        `yaml:"queue_key"`
}

type MonitoringConfig struct {
	FailureThreshold int           `yaml:"failure_threshold"` // Failures per hour before warning, default: 5
	MinSuccessRate   float64       `yaml:"min_success_rate"`  // 24h percentage below which is critical, default: 80
	CheckInterval    time.Duration `yaml:"check_interval"`    // Default: 15m
}

// Validate checks if the server configuration is valid and sets defaults.
func (c *ServerConfig) Validate() error {
	if c.Address == "" {
		c.Address = ":8080" // Default port
	}
	if c.ReadTimeout <= 0 {
		c.ReadTimeout = DefaultReadTimeoutSeconds * time.Second
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = DefaultWriteTimeoutSeconds * time.Second
	}
	return nil
}

// Validate checks if the configuration is valid and returns an error if not.
func (c *Config) Validate() error {
	if c.Postgres.Host == "" {
		return errors.New("postgres.host is required")
	}
	if c.Postgres.User == "" {
		return errors.New("postgres.user is required")
	}
	if c.Postgres.DBName == "" {
		return errors.New("postgres.dbname is required")
	}
	if c.Redis.Addr == "" {
		return errors.New("redis.addr is required")
	}
	if c.Worker.MaxAttempts <= 0 {
		return fmt.Errorf("worker.max_attempts must be positive, got %d", c.Worker.MaxAttempts)
	}
	if c.Monitoring.MinSuccessRate < 0 || c.Monitoring.MinSuccessRate > 100 {
		return fmt.Errorf("monitoring.min_success_rate must be within [0, 100], got %v", c.Monitoring.MinSuccessRate)
	}
	return nil
}

// setDefaults sets default values for configuration fields
func setDefaults(cfg *Config) {
	if cfg.Postgres.Port == "" {
		cfg.Postgres.Port = "5432"
	}
	if cfg.Postgres.SSLMode == "" {
		cfg.Postgres.SSLMode = "disable"
	}
	if cfg.Cache.KeyPrefix == "" {
		cfg.Cache.KeyPrefix = "feedgate"
	}
	if cfg.Cache.TTL == 0 {
		cfg.Cache.TTL = time.Hour
	}
	if cfg.Worker.MaxAttempts == 0 {
		cfg.Worker.MaxAttempts = 3
	}
	if cfg.Worker.DequeueTimeout == 0 {
		cfg.Worker.DequeueTimeout = 5 * time.Second
	}
	if cfg.Worker.PublishTimeout == 0 {
		cfg.Worker.PublishTimeout = 30 * time.Second
	}
	if cfg.Monitoring.FailureThreshold == 0 {
		cfg.Monitoring.FailureThreshold = 5
	}
	if cfg.Monitoring.MinSuccessRate == 0 {
		cfg.Monitoring.MinSuccessRate = 80
	}
	if cfg.Monitoring.CheckInterval == 0 {
		cfg.Monitoring.CheckInterval = 15 * time.Minute
	}
}

// overrideWithEnvVars overrides configuration with environment variables
func overrideWithEnvVars(cfg *Config) {
	if host := os.Getenv("POSTGRES_HOST"); host != "" {
		cfg.Postgres.Host = host
	}
	if user := os.Getenv("POSTGRES_USER"); user != "" {
		cfg.Postgres.User = user
	}
	if password := os.Getenv("POSTGRES_PASSWORD"); password != "" {
		cfg.Postgres.Password = password
	}
	if dbname := os.Getenv("POSTGRES_DB"); dbname != "" {
		cfg.Postgres.DBName = dbname
	}
	if redisAddr := os.Getenv("REDIS_ADDR"); redisAddr != "" {
		cfg.Redis.Addr = redisAddr
	}
	if redisPassword := os.Getenv("REDIS_PASSWORD"); redisPassword != "" {
		cfg.Redis.Password = redisPassword
	}
	if retryRejections := os.Getenv("RETRY_PROTOCOL_REJECTIONS"); retryRejections != "" {
		cfg.Worker.RetryProtocolRejections = parseBool(retryRejections)
	}
	// Parse APP_DEBUG environment variable
	if appDebug := os.Getenv("APP_DEBUG"); appDebug != "" {
		cfg.Debug = parseBool(appDebug)
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	// Set defaults
	setDefaults(&cfg)

	// Override with environment variables if present
	overrideWithEnvVars(&cfg)

	// Set server defaults
	if err := cfg.Server.Validate(); err != nil {
		return nil, fmt.Errorf("server config validation: %w", err)
	}

	// Override server config with environment variable if present
	if port := os.Getenv("FEEDGATE_PORT"); port != "" {
		cfg.Server.Address = ":" + port
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// parseBool parses a string value as a boolean.
// Returns true for "true", "1", "yes" (case-insensitive), false otherwise.
func parseBool(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "true" || s == "1" || s == "yes"
}
