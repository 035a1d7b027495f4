package config

import (
	"testing"
	"time"
)

func validConfig() *Config {
	return &Config{
		Port:          "8080",
		SQLiteDBPath:  "./portfolio.db",
		SessionSecret: "0123456789abcdef",
		SessionTTL:    time.Hour,
		ForecastTrees: 100,
		SyncBatchSize: 10,
		SyncInterval:  30 * time.Second,
	}
}

func TestValidateOK(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
}

func TestValidateFailures(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad port", func(c *Config) { c.Port = "http" }},
		{"port out of range", func(c *Config) { c.Port = "70000" }},
		{"empty db path", func(c *Config) { c.SQLiteDBPath = "" }},
		{"missing secret", func(c *Config) { c.SessionSecret = "" }},
		{"short secret", func(c *Config) { c.SessionSecret = "short" }},
		{"tiny session ttl", func(c *Config) { c.SessionTTL = time.Second }},
		{"zero trees", func(c *Config) { c.ForecastTrees = 0 }},
		{"bad amqp scheme", func(c *Config) { c.AMQPURL = "http://localhost" }},
		{"amqp without queue", func(c *Config) { c.AMQPURL = "amqp://localhost"; c.AMQPQueue = "" }},
		{"zero batch size", func(c *Config) { c.SyncBatchSize = 0 }},
		{"tiny sync interval", func(c *Config) { c.SyncInterval = time.Millisecond }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg := Load()
	if cfg.Port != "8080" {
		t.Errorf("default port = %s, want 8080", cfg.Port)
	}
	if cfg.ForecastTrees != 100 {
		t.Errorf("default forecast trees = %d, want 100", cfg.ForecastTrees)
	}
	if cfg.AMQPQueue != "sync_entries" {
		t.Errorf("default queue = %s, want sync_entries", cfg.AMQPQueue)
	}
}
