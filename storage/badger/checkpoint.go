// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package badger

import (
	"context"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/tributary/core"
	"github.com/poiesic/tributary/storage"
)

// CheckpointRepository implements storage.CheckpointRepository for BadgerDB.
type CheckpointRepository struct {
	backend *Backend
}

var _ storage.CheckpointRepository = (*CheckpointRepository)(nil)

// NewCheckpointRepository creates a new CheckpointRepository.
func NewCheckpointRepository(backend *Backend) *CheckpointRepository {
	return &CheckpointRepository{
		backend: backend,
	}
}

// Close releases repository resources. The shared backend stays open.
func (r *CheckpointRepository) Close() error {
	return nil
}

// WithTransaction delegates to the backend.
func (r *CheckpointRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// SaveCheckpoint persists a checkpoint row keyed by (source, batch_id).
// A row that already reached completed is immutable; writes against it
// return storage.ErrCompletedCheckpoint.
func (r *CheckpointRepository) SaveCheckpoint(ctx context.Context, checkpoint *core.Checkpoint) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeCheckpointKey(checkpoint.Source, checkpoint.BatchID)

		existing, err := readCheckpoint(tx, key)
		if err != nil {
			return err
		}
		if existing != nil && existing.Terminal() {
			return storage.ErrCompletedCheckpoint
		}

		checkpoint.UpdatedAt = time.Now().UTC()
		value := storage.MarshalCheckpoint(checkpoint)
		if err := tx.Set(key, value); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// LoadCheckpoint retrieves the checkpoint for a batch.
// Returns nil, nil if no checkpoint exists.
func (r *CheckpointRepository) LoadCheckpoint(ctx context.Context, source core.Source, batchID string) (*core.Checkpoint, error) {
	var checkpoint *core.Checkpoint
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		checkpoint, err = readCheckpoint(tx, makeCheckpointKey(source, batchID))
		return err
	}, false)

	return checkpoint, err
}

// ListCheckpoints retrieves all checkpoints for a source, ordered by key.
func (r *CheckpointRepository) ListCheckpoints(ctx context.Context, source core.Source) ([]*core.Checkpoint, error) {
	var checkpoints []*core.Checkpoint

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeCheckpointScanPrefix(source)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			err := iter.Item().Value(func(val []byte) error {
				checkpoint, err := storage.UnmarshalCheckpoint(val)
				if err != nil {
					return err
				}
				checkpoints = append(checkpoints, checkpoint)
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
	return checkpoints, nil
}

// readCheckpoint reads and unmarshals a checkpoint inside a transaction.
// Returns nil, nil when the key is absent.
func readCheckpoint(tx *badger.Txn, key []byte) (*core.Checkpoint, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var checkpoint *core.Checkpoint
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		checkpoint, unmarshalErr = storage.UnmarshalCheckpoint(val)
		return unmarshalErr
	})
	return checkpoint, err
}
