package storage

import (
	"context"

	"github.com/poiesic/tributary/core"
)

// Repository provides common storage operations shared across all repositories.
// Implementations must be thread-safe and support concurrent access.
type Repository interface {
	// WithTransaction executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	// The context passed to fn may contain transaction state.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	// Close closes the storage backend and releases resources.
	Close() error
}

// CheckpointRepository provides durable progress rows for backfill batches.
// Rows are keyed by (source, batch_id); a completed row is terminal.
type CheckpointRepository interface {
	Repository

	// SaveCheckpoint persists a checkpoint, updating UpdatedAt.
	// The same (source, batch_id) key always maps to the same row.
	SaveCheckpoint(ctx context.Context, checkpoint *core.Checkpoint) error

	// LoadCheckpoint retrieves the checkpoint for a batch.
	// Returns nil, nil if no checkpoint exists.
	LoadCheckpoint(ctx context.Context, source core.Source, batchID string) (*core.Checkpoint, error)

	// ListCheckpoints retrieves all checkpoints for a source, ordered by key.
	// An empty source lists every checkpoint.
	ListCheckpoints(ctx context.Context, source core.Source) ([]*core.Checkpoint, error)
}

// SyncStatusRepository tracks the last successful incremental sync per source.
type SyncStatusRepository interface {
	Repository

	// SaveSyncStatus persists the sync timestamp for a source.
	SaveSyncStatus(ctx context.Context, status *core.SyncStatus) error

	// LoadSyncStatus retrieves the sync status for a source.
	// Returns nil, nil if the source has never synced.
	LoadSyncStatus(ctx context.Context, source core.Source) (*core.SyncStatus, error)

	// ListSyncStatuses retrieves the sync status of every source that has synced.
	ListSyncStatuses(ctx context.Context) ([]*core.SyncStatus, error)
}

// IdentityRepository persists successful authoritative resolutions so later
// runs can warm their caches without repeating lookups. Unresolved
// sentinels are never stored; a run must re-attempt those itself.
type IdentityRepository interface {
	Repository

	// SaveIdentity persists a resolved identity keyed by (kind, raw id).
	SaveIdentity(ctx context.Context, identity *core.Identity) error

	// LoadIdentity retrieves a stored identity.
	// Returns nil, nil if the (kind, raw id) pair has never resolved.
	LoadIdentity(ctx context.Context, kind core.IdentityKind, rawID string) (*core.Identity, error)
}
