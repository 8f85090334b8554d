package persistence

import (
	"context"
	"fmt"

	"physiobill/internal/config"
	"physiobill/internal/infra/persistence/fs"
	"physiobill/internal/infra/persistence/memory"
	"physiobill/internal/infra/persistence/postgres"
	"physiobill/internal/infra/persistence/sqlite"
	"physiobill/pkg/domain"
)

// OpenKeyValueStore selects a backend from the storage settings. An empty
// driver defaults to sqlite.
func OpenKeyValueStore(ctx context.Context, cfg config.Storage) (domain.KeyValueStore, error) {
	driver := cfg.Driver
	if driver == "" {
		driver = domain.StorageSQLite
	}
	switch driver {
	case domain.StorageMemory:
		return memory.NewStore(), nil
	case domain.StorageSQLite:
		s, err := sqlite.NewStore(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return s, nil
	case domain.StoragePostgres:
		s, err := postgres.NewStore(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		return s, nil
	case domain.StorageFS:
		s, err := fs.NewStore(cfg.FSRoot)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %s", driver)
	}
}

// Open builds an Adapter over the configured backend.
func Open(ctx context.Context, cfg config.Storage) (*Adapter, error) {
	kv, err := OpenKeyValueStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return NewAdapter(kv), nil
}
