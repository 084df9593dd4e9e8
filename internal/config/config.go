package config

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultKeyPattern   = "*:*:*"
	DefaultMetricPort   = 8881
	DefaultPollInterval = 5 * time.Second
	DefaultGracePeriod  = 30 * time.Second
)

var (
	keyPattern   = flag.String("key-pattern", DefaultKeyPattern, "glob pattern selecting rate-limit window keys in the store")
	filterExpr   = flag.String("filter", "", "optional boolean expression over {Entity, WindowSize, Timestamp} narrowing the exported windows")
	metricPort   = flag.Int("metric-port", DefaultMetricPort, "port to expose /metrics on")
	pollInterval = flag.Duration("poll-interval", DefaultPollInterval, "delay between collection ticks")
	gracePeriod  = flag.Duration("grace-period", DefaultGracePeriod, "how long a vanished identifier keeps reporting zero before its series is dropped")
)

type Config struct {
	Redis        RedisConfig
	KeyPattern   string
	Filter       string
	MetricPort   int
	PollInterval time.Duration
	GracePeriod  time.Duration
}

type RedisConfig struct {
	Addrs    []string
	Password string
	DB       int
	TLS      bool
}

// LoadConfig reads the command-line flags and the REDIS_* environment
// variables. flag.Parse must have been called by the caller.
func LoadConfig() (*Config, error) {
	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}

	redisDB := 0
	if raw := os.Getenv("REDIS_DB"); raw != "" {
		db, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid REDIS_DB %q: %w", raw, err)
		}
		redisDB = db
	}

	redisTLS := false
	if raw := os.Getenv("REDIS_TLS"); raw != "" {
		tls, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid REDIS_TLS %q: %w", raw, err)
		}
		redisTLS = tls
	}

	cfg := &Config{
		Redis: RedisConfig{
			Addrs:    splitAddrs(redisAddr),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
			TLS:      redisTLS,
		},
		KeyPattern:   *keyPattern,
		Filter:       *filterExpr,
		MetricPort:   *metricPort,
		PollInterval: *pollInterval,
		GracePeriod:  *gracePeriod,
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if len(c.Redis.Addrs) == 0 {
		return fmt.Errorf("no redis address configured")
	}
	if c.KeyPattern == "" {
		return fmt.Errorf("key pattern must not be empty")
	}
	if c.MetricPort <= 0 || c.MetricPort > 65535 {
		return fmt.Errorf("invalid metric port %d", c.MetricPort)
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("poll interval must be positive, got %s", c.PollInterval)
	}
	if c.GracePeriod <= 0 {
		return fmt.Errorf("grace period must be positive, got %s", c.GracePeriod)
	}
	return nil
}

func splitAddrs(raw string) []string {
	var addrs []string
	for _, addr := range strings.Split(raw, ",") {
		addr = strings.TrimSpace(addr)
		if addr != "" {
			addrs = append(addrs, addr)
		}
	}
	return addrs
}
