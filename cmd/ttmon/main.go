package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	log "github.com/golang/glog"

	"github.com/hugomfc/ttmon/internal/aggregator"
	"github.com/hugomfc/ttmon/internal/config"
	"github.com/hugomfc/ttmon/internal/metrics"
	"github.com/hugomfc/ttmon/internal/storage"
)

func main() {
	flag.Parse()
	defer log.Flush()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Errorf("failed to load configuration: %v", err)
		os.Exit(1)
	}

	filter, err := aggregator.CompileFilter(cfg.Filter)
	if err != nil {
		log.Errorf("invalid -filter expression: %v", err)
		os.Exit(1)
	}

	redisStorage, err := storage.NewRedis(cfg.Redis.Addrs, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.TLS)
	if err != nil {
		log.Errorf("failed to connect to redis at %v: %v", cfg.Redis.Addrs, err)
		os.Exit(1)
	}
	defer redisStorage.Close()

	exporter := metrics.NewExporter(cfg.KeyPattern)
	go func() {
		log.Infof("metrics listening on :%d", cfg.MetricPort)
		if err := exporter.Serve(cfg.MetricPort); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Errorf("metrics server: %v", err)
			os.Exit(1)
		}
	}()

	agg := aggregator.New(redisStorage, cfg.KeyPattern, filter, cfg.GracePeriod)
	collector := aggregator.NewCollector(agg, exporter, cfg.PollInterval)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Infof("collecting %q every %s, grace period %s", cfg.KeyPattern, cfg.PollInterval, cfg.GracePeriod)
	collector.Run(ctx)
	log.Info("shutdown complete")
}
