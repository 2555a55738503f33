// Package store persists embate records. Every backend satisfies the same
// four-operation contract; none adds transactions or optimistic locking.
package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/Promptonauts/embate/pkg/models"
)

// Store persists embate records.
//
// Save assigns an id when the record has none and overwrites any record with
// the same id (last write wins). Get returns (nil, nil) for an absent id.
// Delete of an absent id is a no-op.
type Store interface {
	Save(ctx context.Context, rec *models.EmbateRecord) error
	Get(ctx context.Context, id string) (*models.EmbateRecord, error)
	List(ctx context.Context) ([]*models.EmbateRecord, error)
	Delete(ctx context.Context, id string) error
	Close() error
}

const (
	DriverMemory = "memory"
	DriverSQLite = "sqlite"
)

type Config struct {
	Driver    string `yaml:"driver"`
	Path      string `yaml:"path"`
	CacheSize int    `yaml:"cache_size"`
}

// Open builds the store described by cfg, wrapping it in an LRU cache when
// CacheSize is positive and the backend is not already in memory.
func Open(cfg Config) (Store, error) {
	switch cfg.Driver {
	case "", DriverMemory:
		return NewMemoryStore(), nil
	case DriverSQLite:
		s, err := NewSQLiteStore(cfg.Path)
		if err != nil {
			return nil, err
		}
		if err := s.Migrate(); err != nil {
			s.Close()
			return nil, err
		}
		if cfg.CacheSize > 0 {
			return NewCachedStore(s, cfg.CacheSize)
		}
		return s, nil
	}
	return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
}

func assignID(rec *models.EmbateRecord) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
}
