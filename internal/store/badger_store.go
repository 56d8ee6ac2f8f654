package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v3"

	"github.com/MKhiriev/go-kitchen-sync/internal/logger"
	"github.com/MKhiriev/go-kitchen-sync/models"
)

// BadgerScheme prefixes a local store DSN that selects the Badger store,
// e.g. "badger://./kitchen-data". "badger://:memory:" keeps the data in
// memory.
const BadgerScheme = "badger://"

// badgerStore is a [LocalStore] on an embedded Badger key-value database.
// Every entity is one JSON value under "e/<user>/<collection>/<key>", so a
// prefix scan returns a collection ordered by key.
type badgerStore struct {
	db *badger.DB

	logger *logger.Logger
}

// NewBadgerStore opens the Badger database named by dsn, which is a
// directory with an optional [BadgerScheme] prefix.
func NewBadgerStore(dsn string, log *logger.Logger) (LocalStore, error) {
	dir := strings.TrimPrefix(dsn, BadgerScheme)
	if dir == "" {
		return nil, errors.New("badger: dir is required")
	}

	var opts badger.Options
	if dir == MemoryDSN {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		opts = badger.DefaultOptions(dir)
	}
	opts.Logger = &badgerLogger{logger: log}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("badger: open db: %w", err)
	}

	log.Info().Str("dir", dir).Msg("badger store opened")

	return &badgerStore{db: db, logger: log}, nil
}

func (s *badgerStore) Snapshot(_ context.Context, userID int64, collection models.Collection) ([]models.Entity, error) {
	return s.scan(userID, collection, func(models.Entity) bool { return true })
}

func (s *badgerStore) List(_ context.Context, userID int64, collection models.Collection) ([]models.Entity, error) {
	return s.scan(userID, collection, func(e models.Entity) bool {
		return e.EffectiveStatus() != models.StatusDeleted
	})
}

func (s *badgerStore) Pending(_ context.Context, userID int64, collection models.Collection) ([]models.Entity, error) {
	return s.scan(userID, collection, func(e models.Entity) bool {
		return e.Status.IsPending()
	})
}

func (s *badgerStore) Get(_ context.Context, userID int64, collection models.Collection, key string) (models.Entity, error) {
	var e models.Entity
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		e, err = getEntity(txn, userID, collection, key)
		return err
	})
	if err != nil {
		return models.Entity{}, err
	}
	return e, nil
}

func (s *badgerStore) Put(_ context.Context, entity models.Entity) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return setEntity(txn, entity)
	})
}

func (s *badgerStore) MarkSynced(_ context.Context, userID int64, collection models.Collection, keys []string, at time.Time) error {
	return s.db.Update(func(txn *badger.Txn) error {
		for _, key := range keys {
			e, err := getEntity(txn, userID, collection, key)
			if errors.Is(err, ErrEntityNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			if err = setEntity(txn, markedSynced(e, at)); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *badgerStore) MarkFailed(_ context.Context, userID int64, collection models.Collection, keys []string, cause string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		for _, key := range keys {
			e, err := getEntity(txn, userID, collection, key)
			if errors.Is(err, ErrEntityNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			if !e.Status.IsPending() {
				continue
			}
			if err = setEntity(txn, markedFailed(e, cause)); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *badgerStore) Purge(_ context.Context, userID int64, collection models.Collection, keys []string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		for _, key := range keys {
			if err := txn.Delete(entityKey(userID, collection, key)); err != nil {
				return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
			}
		}
		return nil
	})
}

// WithinTx runs fn in one Badger read-write transaction. A panic in fn
// discards the transaction before it propagates.
func (s *badgerStore) WithinTx(ctx context.Context, fn func(tx LocalTx) error) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrTransaction, err)
	}

	err := s.db.Update(func(txn *badger.Txn) error {
		return fn(&badgerTx{txn: txn})
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrTransaction, err)
	}
	return nil
}

func (s *badgerStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("badger: close db: %w", err)
	}
	return nil
}

func (s *badgerStore) scan(userID int64, collection models.Collection, keep func(models.Entity) bool) ([]models.Entity, error) {
	out := make([]models.Entity, 0)

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = collectionPrefix(userID, collection)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			e, err := decodeItem(it.Item())
			if err != nil {
				return err
			}
			if keep(e) {
				out = append(out, e)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}

// badgerTx implements [LocalTx] on an open Badger transaction.
type badgerTx struct {
	txn *badger.Txn
}

func (t *badgerTx) Insert(_ context.Context, entity models.Entity) error {
	_, err := t.txn.Get(entityKey(entity.UserID, entity.Collection, entity.Key))
	switch {
	case err == nil:
		return fmt.Errorf("%w: %s/%s", ErrEntityExists, entity.Collection, entity.Key)
	case !errors.Is(err, badger.ErrKeyNotFound):
		return fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	return setEntity(t.txn, entity)
}

func (t *badgerTx) Delete(_ context.Context, userID int64, collection models.Collection, key string) error {
	if err := t.txn.Delete(entityKey(userID, collection, key)); err != nil {
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	return nil
}

func (t *badgerTx) Replace(_ context.Context, entity models.Entity) error {
	return setEntity(t.txn, entity)
}

func collectionPrefix(userID int64, collection models.Collection) []byte {
	return []byte("e/" + strconv.FormatInt(userID, 10) + "/" + string(collection) + "/")
}

func entityKey(userID int64, collection models.Collection, key string) []byte {
	return append(collectionPrefix(userID, collection), key...)
}

func getEntity(txn *badger.Txn, userID int64, collection models.Collection, key string) (models.Entity, error) {
	item, err := txn.Get(entityKey(userID, collection, key))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return models.Entity{}, fmt.Errorf("%w: %s/%s", ErrEntityNotFound, collection, key)
	}
	if err != nil {
		return models.Entity{}, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	return decodeItem(item)
}

func setEntity(txn *badger.Txn, e models.Entity) error {
	value, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode entity %s/%s: %w", e.Collection, e.Key, err)
	}
	if err = txn.Set(entityKey(e.UserID, e.Collection, e.Key), value); err != nil {
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	return nil
}

func decodeItem(item *badger.Item) (models.Entity, error) {
	var e models.Entity
	err := item.Value(func(val []byte) error {
		return json.Unmarshal(val, &e)
	})
	if err != nil {
		return models.Entity{}, fmt.Errorf("%w: %s: %w", ErrScanningRow, item.Key(), err)
	}
	return e, nil
}

// badgerLogger routes Badger's own log lines into the application logger,
// one level lower for info and debug lines.
type badgerLogger struct {
	logger *logger.Logger
}

func (l *badgerLogger) Errorf(format string, args ...any) {
	l.logger.Error().Str("component", "badger").Msg(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (l *badgerLogger) Warningf(format string, args ...any) {
	l.logger.Warn().Str("component", "badger").Msg(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (l *badgerLogger) Infof(format string, args ...any) {
	l.logger.Debug().Str("component", "badger").Msg(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (l *badgerLogger) Debugf(format string, args ...any) {
	l.logger.Trace().Str("component", "badger").Msg(strings.TrimSpace(fmt.Sprintf(format, args...)))
}
