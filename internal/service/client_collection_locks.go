package service

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/MKhiriev/go-kitchen-sync/models"
)

// CollectionLocks holds one single-writer lock per collection. The entity
// service and the sync service of one local store share a single instance:
// a sync pass and a local edit of the same collection never interleave.
type CollectionLocks struct {
	mu    sync.Mutex
	locks map[models.Collection]*semaphore.Weighted
}

func NewCollectionLocks() *CollectionLocks {
	return &CollectionLocks{locks: make(map[models.Collection]*semaphore.Weighted)}
}

func locksOrNew(l *CollectionLocks) *CollectionLocks {
	if l == nil {
		return NewCollectionLocks()
	}
	return l
}

// acquire blocks until the collection lock is free or ctx is done.
func (l *CollectionLocks) acquire(ctx context.Context, collection models.Collection) (func(), error) {
	l.mu.Lock()
	sem, ok := l.locks[collection]
	if !ok {
		sem = semaphore.NewWeighted(1)
		l.locks[collection] = sem
	}
	l.mu.Unlock()

	if err := sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	return func() { sem.Release(1) }, nil
}
