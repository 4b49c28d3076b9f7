package badger

import (
	"context"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/tributary/core"
	"github.com/poiesic/tributary/storage"
)

// IdentityRepository implements storage.IdentityRepository for BadgerDB.
// Only resolved identities land here; the unresolved sentinel is cached
// in memory by the resolver and deliberately not persisted.
type IdentityRepository struct {
	backend *Backend
}

var _ storage.IdentityRepository = (*IdentityRepository)(nil)

// NewIdentityRepository creates a new IdentityRepository.
func NewIdentityRepository(backend *Backend) *IdentityRepository {
	return &IdentityRepository{
		backend: backend,
	}
}

// Close releases repository resources. The shared backend stays open.
func (r *IdentityRepository) Close() error {
	return nil
}

// WithTransaction delegates to the backend.
func (r *IdentityRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// SaveIdentity persists a resolved identity keyed by (kind, raw id).
func (r *IdentityRepository) SaveIdentity(ctx context.Context, identity *core.Identity) error {
	if identity.Unresolved() {
		return fmt.Errorf("refusing to persist unresolved identity %s/%s", identity.Kind, identity.RawID)
	}
	return r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeIdentityKey(identity.Kind, identity.RawID)
		value := storage.MarshalIdentity(identity)
		if err := tx.Set(key, value); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// LoadIdentity retrieves a stored identity.
// Returns nil, nil if the (kind, raw id) pair has never resolved.
func (r *IdentityRepository) LoadIdentity(ctx context.Context, kind core.IdentityKind, rawID string) (*core.Identity, error) {
	var identity *core.Identity
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeIdentityKey(kind, rawID))
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return nil
			}
			return err
		}

		return item.Value(func(val []byte) error {
			var unmarshalErr error
			identity, unmarshalErr = storage.UnmarshalIdentity(val)
			return unmarshalErr
		})
	}, false)

	return identity, err
}
