// Package backend открывает реализацию storage.Store по имени драйвера
package backend

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/iudanet/phoneauth/internal/config"
	"github.com/iudanet/phoneauth/internal/server/storage"
	"github.com/iudanet/phoneauth/internal/server/storage/badger"
	"github.com/iudanet/phoneauth/internal/server/storage/boltdb"
	"github.com/iudanet/phoneauth/internal/server/storage/memory"
	"github.com/iudanet/phoneauth/internal/server/storage/sqlite"
)

// Open creates the Store selected by cfg.Driver.
func Open(ctx context.Context, cfg config.StorageConfig, logger *slog.Logger) (storage.Store, error) {
	switch cfg.Driver {
	case config.DriverMemory:
		return memory.New(), nil
	case config.DriverBoltDB:
		s, err := boltdb.New(ctx, cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("open boltdb storage: %w", err)
		}
		return s, nil
	case config.DriverSQLite:
		s, err := sqlite.New(ctx, cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("open sqlite storage: %w", err)
		}
		return s, nil
	case config.DriverBadger:
		s, err := badger.New(cfg.Path, logger)
		if err != nil {
			return nil, fmt.Errorf("open badger storage: %w", err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
