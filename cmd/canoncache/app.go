package main

import (
	"os"

	"canoncache/internal/cache"
	"canoncache/internal/canon"
	"canoncache/internal/config"
	"canoncache/internal/logs"
	"canoncache/internal/metrics"
)

// app bundles the components shared by every subcommand.
type app struct {
	cfg     *config.Config
	logger  *logs.Logger
	metrics *metrics.Registry
	cache   *cache.ExpiringCache
	canon   *canon.Canonicalizer
}

func newApp() (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	level, err := logs.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	logger := logs.NewLogger(cfg.Log.BufferSize, level)
	logger.SetOutput(os.Stderr)

	reg := metrics.NewRegistry()
	c := cache.NewWithConfig(cfg.CacheOptions(), reg, logger)

	return &app{
		cfg:     cfg,
		logger:  logger,
		metrics: reg,
		cache:   c,
		canon:   canon.New(c, canon.DefaultResolver, reg, logger),
	}, nil
}
