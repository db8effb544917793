package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return path
}

const minimalConfig = `
postgres:
  host: "localhost"
  user: "feedgate"
  dbname: "feedgate"
redis:
  addr: "localhost:6379"
`

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfigFile(t, minimalConfig))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Address != ":8080" {
		t.Errorf("Server.Address = %q, want :8080", cfg.Server.Address)
	}
	if cfg.Server.ReadTimeout != 10*time.Second {
		t.Errorf("Server.ReadTimeout = %v, want 10s", cfg.Server.ReadTimeout)
	}
	if cfg.Postgres.Port != "5432" {
		t.Errorf("Postgres.Port = %q, want 5432", cfg.Postgres.Port)
	}
	if cfg.Postgres.SSLMode != "disable" {
		t.Errorf("Postgres.SSLMode = %q, want disable", cfg.Postgres.SSLMode)
	}
	if cfg.Cache.KeyPrefix != "feedgate" {
		t.Errorf("Cache.KeyPrefix = %q, want feedgate", cfg.Cache.KeyPrefix)
	}
	if cfg.Cache.TTL != time.Hour {
		t.Errorf("Cache.TTL = %v, want 1h", cfg.Cache.TTL)
	}
	if cfg.Worker.MaxAttempts != 3 {
		t.Errorf("Worker.MaxAttempts = %d, want 3", cfg.Worker.MaxAttempts)
	}
	if cfg.Worker.RetryProtocolRejections {
		t.Error("Worker.RetryProtocolRejections = true, want false by default")
	}
	if cfg.Worker.DequeueTimeout != 5*time.Second {
		t.Errorf("Worker.DequeueTimeout = %v, want 5s", cfg.Worker.DequeueTimeout)
	}
	if cfg.Monitoring.FailureThreshold != 5 {
		t.Errorf("Monitoring.FailureThreshold = %d, want 5", cfg.Monitoring.FailureThreshold)
	}
	if cfg.Monitoring.MinSuccessRate != 80 {
		t.Errorf("Monitoring.MinSuccessRate = %v, want 80", cfg.Monitoring.MinSuccessRate)
	}
	if cfg.Monitoring.CheckInterval != 15*time.Minute {
		t.Errorf("Monitoring.CheckInterval = %v, want 15m", cfg.Monitoring.CheckInterval)
	}
}

func TestLoadExplicitValues(t *testing.T) {
	content := `
debug: true
server:
  address: ":9090"
  read_timeout: 20s
postgres:
  host: "db.internal"
  port: "5433"
  user: "svc"
  dbname: "syndication"
  sslmode: "require"
redis:
  addr: "redis.internal:6379"
  db: 2
cache:
  key_prefix: "syndication"
  ttl: 30m
worker:
  max_attempts: 5
  retry_protocol_rejections: true
  queue_key: "syndication:jobs"
monitoring:
  failure_threshold: 10
  min_success_rate: 95
  check_interval: 5m
`
	cfg, err := Load(writeConfigFile(t, content))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if !cfg.Debug {
		t.Error("Debug = false, want true")
	}
	if cfg.Server.Address != ":9090" {
		t.Errorf("Server.Address = %q, want :9090", cfg.Server.Address)
	}
	if cfg.Cache.TTL != 30*time.Minute {
		t.Errorf("Cache.TTL = %v, want 30m", cfg.Cache.TTL)
	}
	if cfg.Worker.MaxAttempts != 5 {
		t.Errorf("Worker.MaxAttempts = %d, want 5", cfg.Worker.MaxAttempts)
	}
	if !cfg.Worker.RetryProtocolRejections {
		t.Error("Worker.RetryProtocolRejections = false, want true")
	}
	if cfg.Worker.QueueKey != "syndication:jobs" {
		t.Errorf("Worker.QueueKey = %q, want syndication:jobs", cfg.Worker.QueueKey)
	}
	if cfg.Monitoring.MinSuccessRate != 95 {
		t.Errorf("Monitoring.MinSuccessRate = %v, want 95", cfg.Monitoring.MinSuccessRate)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("POSTGRES_HOST", "override-host")
	t.Setenv("POSTGRES_PASSWORD", "secret")
	t.Setenv("REDIS_ADDR", "override-redis:6380")
	t.Setenv("RETRY_PROTOCOL_REJECTIONS", "yes")
	t.Setenv("APP_DEBUG", "1")
	t.Setenv("FEEDGATE_PORT", "8070")

	cfg, err := Load(writeConfigFile(t, minimalConfig))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Postgres.Host != "override-host" {
		t.Errorf("Postgres.Host = %q, want override-host", cfg.Postgres.Host)
	}
	if cfg.Postgres.Password != "secret" {
		t.Errorf("Postgres.Password = %q, want secret", cfg.Postgres.Password)
	}
	if cfg.Redis.Addr != "override-redis:6380" {
		t.Errorf("Redis.Addr = %q, want override-redis:6380", cfg.Redis.Addr)
	}
	if !cfg.Worker.RetryProtocolRejections {
		t.Error("Worker.RetryProtocolRejections = false, want true from env")
	}
	if !cfg.Debug {
		t.Error("Debug = false, want true from env")
	}
	if cfg.Server.Address != ":8070" {
		t.Errorf("Server.Address = %q, want :8070 from FEEDGATE_PORT", cfg.Server.Address)
	}
}

func TestLoadValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name: "missing postgres host",
			content: `
postgres:
  user: "feedgate"
  dbname: "feedgate"
redis:
  addr: "localhost:6379"
`,
			wantErr: "postgres.host is required",
		},
		{
			name: "missing redis addr",
			content: `
postgres:
  host: "localhost"
  user: "feedgate"
  dbname: "feedgate"
`,
			wantErr: "redis.addr is required",
		},
		{
			name: "negative max attempts",
			content: minimalConfig + `
worker:
  max_attempts: -1
`,
			wantErr: "worker.max_attempts must be positive",
		},
		{
			name: "success rate out of range",
			content: minimalConfig + `
monitoring:
  min_success_rate: 150
`,
			wantErr: "monitoring.min_success_rate must be within [0, 100]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfigFile(t, tt.content))
			if err == nil {
				t.Fatal("Load() error = nil, want validation error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Load() error = %v, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yml")); err == nil {
		t.Fatal("Load() error = nil, want file error")
	}
}

func TestParseBool(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{"true", true},
		{"TRUE", true},
		{"1", true},
		{"yes", true},
		{" yes ", true},
		{"false", false},
		{"0", false},
		{"no", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := parseBool(tt.value); got != tt.want {
			t.Errorf("parseBool(%q) = %v, want %v", tt.value, got, tt.want)
		}
	}
}
