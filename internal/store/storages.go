package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/MKhiriev/go-kitchen-sync/internal/config"
	"github.com/MKhiriev/go-kitchen-sync/internal/logger"
)

// Storages groups the server-side repositories.
type Storages struct {
	EntityRepository EntityRepository

	db *DB
}

// NewStorages connects to Postgres, applies the migrations and builds the
// server repositories.
func NewStorages(ctx context.Context, cfg config.DB, log *logger.Logger) (*Storages, error) {
	log.Info().Msg("creating new storages...")

	db, err := NewConnectPostgres(ctx, cfg, log)
	if err != nil {
		return nil, fmt.Errorf("postgres connection error: %w", err)
	}

	if err = db.Migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	return &Storages{
		EntityRepository: NewEntityRepository(db, log),
		db:               db,
	}, nil
}

// Close closes the database connection.
func (s *Storages) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// ClientStorages groups the client-side stores.
type ClientStorages struct {
	LocalStore LocalStore
}

// NewClientStorages opens the local store selected by cfg.DSN:
//   - ":memory:" for a volatile in-memory store;
//   - a path ending in ".json" for an in-memory store persisted to that file;
//   - "badger://<dir>" for a Badger key-value store in dir;
//   - any other path for a SQLite database, migrated on open.
func NewClientStorages(ctx context.Context, cfg config.Local, log *logger.Logger) (*ClientStorages, error) {
	log.Info().Str("dsn", cfg.DSN).Msg("creating new client storages...")

	if strings.HasPrefix(cfg.DSN, BadgerScheme) {
		local, err := NewBadgerStore(cfg.DSN, log)
		if err != nil {
			return nil, fmt.Errorf("badger store error: %w", err)
		}
		return &ClientStorages{LocalStore: local}, nil
	}

	if cfg.DSN == MemoryDSN || strings.HasSuffix(strings.ToLower(cfg.DSN), ".json") {
		local, err := NewMemoryStore(cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("memory store error: %w", err)
		}
		return &ClientStorages{LocalStore: local}, nil
	}

	db, err := NewConnectSQLite(ctx, cfg, log)
	if err != nil {
		return nil, fmt.Errorf("sqlite connection error: %w", err)
	}

	if err = db.Migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	return &ClientStorages{
		LocalStore: NewLocalEntityRepository(db, log),
	}, nil
}
