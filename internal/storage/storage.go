package storage

import (
	"context"
	"fmt"

	"banyan/internal/config"
	"banyan/internal/core/ports"

	"go.uber.org/zap"
)

// Open builds the key-value backend selected by cfg.Type.
func Open(ctx context.Context, cfg config.StorageConfig, log *zap.Logger) (ports.KeyValue, error) {
	switch cfg.Type {
	case "json", "":
		return NewJSONStorage(cfg.Path, cfg.MaxBytes)
	case "pebble":
		return NewPebbleStorage(cfg.Path, log)
	case "postgres":
		return NewPostgresStorage(ctx, cfg.DSN)
	case "sqlite":
		return NewSQLiteStorage(cfg.Path)
	case "memory":
		return NewMemoryStorage(), nil
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.Type)
	}
}
