package store

import (
	"fmt"

	"github.com/ahmetcoskunkizilkaya/cabinet-backend/internal/config"
	"gorm.io/gorm"
)

// OpenPersister returns the persister selected by STORE_BACKEND. db is only
// used by the postgres backend and may be nil otherwise.
func OpenPersister(cfg *config.Config, db *gorm.DB) (Persister, error) {
	switch cfg.StoreBackend {
	case config.BackendMemory:
		return NewMemoryPersister(), nil
	case config.BackendFile:
		return NewFilePersister(cfg.StorePath)
	case config.BackendLevelDB:
		return NewLevelDBPersister(cfg.StorePath, cfg.StoreKey)
	case config.BackendSQLite:
		return NewSQLitePersister(cfg.StorePath, cfg.StoreKey)
	case config.BackendPostgres:
		return NewGormPersister(db, cfg.StoreKey)
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}
