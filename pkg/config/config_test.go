package config

import (
	"testing"
	"time"

	"github.com/bylinehq/byline/pkg/observability"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("BYLINE_POSTGRES_URL", "postgres://localhost/byline")
	t.Setenv("BYLINE_REDIS_URL", "redis://localhost:6379")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Server.Port != "8080" {
		t.Errorf("Expected default port 8080, got %s", cfg.Server.Port)
	}
	if cfg.Server.HealthPort != "9090" {
		t.Errorf("Expected default health port 9090, got %s", cfg.Server.HealthPort)
	}
	if cfg.Observability.LogLevel != observability.InfoLevel {
		t.Errorf("Expected default log level info, got %v", cfg.Observability.LogLevel)
	}
	if !cfg.Observability.MetricsEnabled {
		t.Error("Expected metrics enabled by default")
	}
	if cfg.Observability.OTelEnabled {
		t.Error("Expected OTel disabled by default")
	}
	if cfg.Maintenance.TokenCleanupSchedule != "@hourly" {
		t.Errorf("Expected hourly cleanup schedule, got %s", cfg.Maintenance.TokenCleanupSchedule)
	}
	if !cfg.Storage.CacheEnabled {
		t.Error("Expected cache enabled by default")
	}
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("BYLINE_POSTGRES_URL", "postgres://localhost/byline")
	t.Setenv("BYLINE_REDIS_URL", "redis://localhost:6379")
	t.Setenv("BYLINE_PORT", "3000")
	t.Setenv("BYLINE_LOG_LEVEL", "debug")
	t.Setenv("BYLINE_READ_TIMEOUT", "5s")
	t.Setenv("BYLINE_POSTGRES_MAX_CONNS", "50")
	t.Setenv("BYLINE_CACHE_ENABLED", "false")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Server.Port != "3000" {
		t.Errorf("Expected port 3000, got %s", cfg.Server.Port)
	}
	if cfg.Observability.LogLevel != observability.DebugLevel {
		t.Errorf("Expected debug log level, got %v", cfg.Observability.LogLevel)
	}
	if cfg.Server.ReadTimeout != 5*time.Second {
		t.Errorf("Expected 5s read timeout, got %v", cfg.Server.ReadTimeout)
	}
	if cfg.Storage.PostgresMaxConns != 50 {
		t.Errorf("Expected 50 max conns, got %d", cfg.Storage.PostgresMaxConns)
	}
	if cfg.Storage.CacheEnabled {
		t.Error("Expected cache disabled")
	}
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config {
		cfg := &Config{
			Server:      ServerConfig{Port: "8080", HealthPort: "9090"},
			Maintenance: MaintenanceConfig{TokenCleanupSchedule: "@hourly"},
		}
		cfg.Storage.PostgresURL = "postgres://localhost/byline"
		cfg.Storage.CacheEnabled = true
		cfg.Storage.RedisURL = "redis://localhost:6379"
		return cfg
	}

	if err := valid().Validate(); err != nil {
		t.Fatalf("Expected valid config, got %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing port", func(c *Config) { c.Server.Port = "" }},
		{"same ports", func(c *Config) { c.Server.HealthPort = c.Server.Port }},
		{"missing postgres URL", func(c *Config) { c.Storage.PostgresURL = "" }},
		{"cache without redis", func(c *Config) { c.Storage.RedisURL = "" }},
		{"otel without endpoint", func(c *Config) {
			c.Observability.OTelEnabled = true
			c.Observability.OTelEndpoint = ""
		}},
		{"missing cleanup schedule", func(c *Config) { c.Maintenance.TokenCleanupSchedule = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Expected validation error")
			}
		})
	}
}
