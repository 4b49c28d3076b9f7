package badger

import (
	"context"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/tributary/core"
	"github.com/poiesic/tributary/storage"
)

// SyncStatusRepository implements storage.SyncStatusRepository for BadgerDB.
type SyncStatusRepository struct {
	backend *Backend
}

var _ storage.SyncStatusRepository = (*SyncStatusRepository)(nil)

// NewSyncStatusRepository creates a new SyncStatusRepository.
func NewSyncStatusRepository(backend *Backend) *SyncStatusRepository {
	return &SyncStatusRepository{
		backend: backend,
	}
}

// Close releases repository resources. The shared backend stays open.
func (r *SyncStatusRepository) Close() error {
	return nil
}

// WithTransaction delegates to the backend.
func (r *SyncStatusRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// SaveSyncStatus persists the sync timestamp for a source.
func (r *SyncStatusRepository) SaveSyncStatus(ctx context.Context, status *core.SyncStatus) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		status.UpdatedAt = time.Now().UTC()
		key := makeSyncStatusKey(status.Source)
		value := storage.MarshalSyncStatus(status)
		if err := tx.Set(key, value); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// LoadSyncStatus retrieves the sync status for a source.
// Returns nil, nil if the source has never synced.
func (r *SyncStatusRepository) LoadSyncStatus(ctx context.Context, source core.Source) (*core.SyncStatus, error) {
	var status *core.SyncStatus
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeSyncStatusKey(source))
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return nil
			}
			return err
		}

		return item.Value(func(val []byte) error {
			var unmarshalErr error
			status, unmarshalErr = storage.UnmarshalSyncStatus(val)
			return unmarshalErr
		})
	}, false)

	return status, err
}

// ListSyncStatuses retrieves the sync status of every source that has synced.
func (r *SyncStatusRepository) ListSyncStatuses(ctx context.Context) ([]*core.SyncStatus, error) {
	var statuses []*core.SyncStatus

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(syncStatusPrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			err := iter.Item().Value(func(val []byte) error {
				status, err := storage.UnmarshalSyncStatus(val)
				if err != nil {
					return err
				}
				statuses = append(statuses, status)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	}, false)

	if err != nil {
		return nil, err
	}
	return statuses, nil
}
