// internal/storage/factory.go
package storage

import (
	"fmt"

	"github.com/MrMark1127/arma-tactical/internal/config"
	"github.com/MrMark1127/arma-tactical/internal/storage/gormstore"
	"github.com/MrMark1127/arma-tactical/internal/storage/memory"
)

// NewBackend creates a storage backend based on configuration.
func NewBackend(cfg config.StorageConfig) (Backend, error) {
	switch cfg.Type {
	case "gorm", "postgres", "sqlite":
		// One GORM backend covers both databases; the connection layer
		// picks Postgres and falls back to SQLite on its own.
		return gormstore.New(gormstore.Dependencies{}), nil
	case "memory":
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
	}
}
