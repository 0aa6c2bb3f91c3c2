package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"agroeye/internal/api"
	"agroeye/internal/config"
	"agroeye/internal/ingest"
	"agroeye/internal/logging"
	"agroeye/internal/snapshot"
	"agroeye/internal/storage"
)

var version = "dev"

func main() {
	configPath := flag.String("config", "", "path to config file (YAML or JSON)")
	flag.Parse()

	cfgManager, err := newConfigManager(*configPath)
	if err != nil {
		slog.Error("config load failed", "err", err)
		os.Exit(1)
	}
	cfg := cfgManager.Get()
	logger := logging.NewLogger(cfg.LogLevel, cfg.LogFormat)
	logger.Info("agroeye starting", "version", version, "config", cfgManager.Path())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	snap, err := storage.LoadSnapshot(ctx, cfg.Source, logger)
	if err != nil {
		logger.Error("record source failed", "driver", cfg.Source.Driver, "err", err)
		os.Exit(1)
	}
	store := snapshot.NewStore(snap)

	server, err := api.NewServer(cfgManager, store, logger, version)
	if err != nil {
		logger.Error("api setup failed", "err", err)
		os.Exit(1)
	}
	api.Start(ctx, server, logger)
	ingest.StartKafka(ctx, cfg.Ingest.Kafka, store, logger)

	stop := make(chan struct{})
	if cfgManager.Path() != "" {
		go cfgManager.Watch(2*time.Second, func(next *config.Config) {
			if err := server.UpdateConfig(next); err != nil {
				logger.Warn("thresholds not reloaded", "err", err)
				return
			}
			logger.Info("config reloaded", "path", cfgManager.Path())
		}, func(err error) {
			logger.Warn("config reload failed", "err", err)
		}, stop)
	}

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs
	logger.Info("shutting down")
	close(stop)
	cancel()
	// give the http server and kafka reader a moment to drain
	time.Sleep(500 * time.Millisecond)
	logger.Info("exited")
}

// newConfigManager serves built-in defaults when no config file is given.
func newConfigManager(path string) (*config.Manager, error) {
	resolved := config.ResolvePath(path)
	if resolved == "" {
		return config.NewStaticManager(config.DefaultConfig()), nil
	}
	return config.NewManager(resolved)
}
