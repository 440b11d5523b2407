package main

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"carestay-backend/config"
	"carestay-backend/internal/db"
	"carestay-backend/internal/logger"
	"carestay-backend/internal/persist"
)

// app holds what every command needs: config, logger and the snapshot slot.
type app struct {
	cfg  *config.Config
	log  *zap.Logger
	db   *gorm.DB
	slot persist.Slot

	closers []func() error
}

// newApp loads the configuration and opens the snapshot slot. The database
// is opened when it backs the slot, or when withPush is set and push
// notifications are enabled, since subscriptions live there.
func newApp(ctx context.Context, configPath string, withPush bool) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration from %s: %w", configPath, err)
	}

	log, err := logger.New(cfg.Log.Level, cfg.Log.Format, "staysd")
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	log.Info("configuration loaded", zap.String("path", configPath))

	a := &app{cfg: cfg, log: log}
	a.closers = append(a.closers, func() error {
		_ = log.Sync()
		return nil
	})

	if cfg.Snapshot.Backend == "database" || (withPush && cfg.Push.Enabled) {
		gormDB, err := db.Init(&cfg.Database, log)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		a.db = gormDB
		if sqlDB, err := gormDB.DB(); err == nil {
			a.closers = append(a.closers, sqlDB.Close)
		}
	}

	switch cfg.Snapshot.Backend {
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		a.closers = append(a.closers, client.Close)

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to reach redis at %s: %w", cfg.Redis.Addr, err)
		}
		a.slot = persist.NewRedisSlot(client, cfg.Snapshot.Key)
	default:
		a.slot = persist.NewGormSlot(a.db, cfg.Snapshot.Key)
	}
	log.Info("snapshot slot ready",
		zap.String("backend", cfg.Snapshot.Backend), zap.String("key", cfg.Snapshot.Key))

	return a, nil
}

// Close releases resources in reverse order of acquisition.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.log.Warn("close failed", zap.Error(err))
		}
	}
}
