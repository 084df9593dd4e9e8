package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Redis:        RedisConfig{Addrs: []string{"localhost:6379"}},
		KeyPattern:   DefaultKeyPattern,
		MetricPort:   DefaultMetricPort,
		PollInterval: DefaultPollInterval,
		GracePeriod:  DefaultGracePeriod,
	}
}

func TestValidate(t *testing.T) {
	assert.NoError(t, validConfig().validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"no redis address", func(c *Config) { c.Redis.Addrs = nil }},
		{"empty key pattern", func(c *Config) { c.KeyPattern = "" }},
		{"zero metric port", func(c *Config) { c.MetricPort = 0 }},
		{"metric port too large", func(c *Config) { c.MetricPort = 70000 }},
		{"zero poll interval", func(c *Config) { c.PollInterval = 0 }},
		{"negative grace period", func(c *Config) { c.GracePeriod = -time.Second }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.validate())
		})
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, []string{"localhost:6379"}, cfg.Redis.Addrs)
	assert.Equal(t, 0, cfg.Redis.DB)
	assert.False(t, cfg.Redis.TLS)
	assert.Equal(t, DefaultKeyPattern, cfg.KeyPattern)
	assert.Equal(t, DefaultMetricPort, cfg.MetricPort)
	assert.Equal(t, DefaultPollInterval, cfg.PollInterval)
	assert.Equal(t, DefaultGracePeriod, cfg.GracePeriod)
	assert.Empty(t, cfg.Filter)
}

func TestLoadConfigRedisEnv(t *testing.T) {
	t.Setenv("REDIS_ADDR", "redis-1:6379, redis-2:6379,redis-3:6379")
	t.Setenv("REDIS_PASSWORD", "hunter2")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("REDIS_TLS", "true")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, []string{"redis-1:6379", "redis-2:6379", "redis-3:6379"}, cfg.Redis.Addrs)
	assert.Equal(t, "hunter2", cfg.Redis.Password)
	assert.Equal(t, 3, cfg.Redis.DB)
	assert.True(t, cfg.Redis.TLS)
}

func TestLoadConfigRejectsBadEnv(t *testing.T) {
	t.Setenv("REDIS_DB", "three")
	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestLoadConfigRejectsBadTLS(t *testing.T) {
	t.Setenv("REDIS_TLS", "yep")
	_, err := LoadConfig()
	assert.Error(t, err)
}
