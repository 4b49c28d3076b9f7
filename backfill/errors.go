package backfill

import "errors"

// ErrRegistryRequired indicates an empty connector registry.
var ErrRegistryRequired = errors.New("connector registry is required")

// ErrResolverRequired indicates a nil resolver was provided.
var ErrResolverRequired = errors.New("resolver is required")

// ErrSinkRequired indicates a nil ingestion sink was provided.
var ErrSinkRequired = errors.New("ingestion sink is required")

// ErrCheckpointsRequired indicates a nil checkpoint repository.
var ErrCheckpointsRequired = errors.New("checkpoint repository is required")

// ErrSyncStatusRequired indicates incremental sync was requested
// without a sync status repository.
var ErrSyncStatusRequired = errors.New("sync status repository is required")

// ErrBatchIDRequired indicates a job without a batch id.
var ErrBatchIDRequired = errors.New("batch id is required")

// ErrInvalidWindow indicates a job window whose start does not precede
// its end.
var ErrInvalidWindow = errors.New("window start must precede end")

// ErrInvalidInterval indicates a non-positive checkpoint interval.
var ErrInvalidInterval = errors.New("checkpoint interval must be positive")

// ErrInvalidLookback indicates a non-positive sync lookback.
var ErrInvalidLookback = errors.New("lookback must be positive")

// ErrInvalidChunkDays indicates a non-positive chunk size.
var ErrInvalidChunkDays = errors.New("chunk days must be positive")
