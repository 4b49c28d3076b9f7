package server

import "errors"

var (
	// ErrAddrRequired is returned when a listen address is not provided.
	ErrAddrRequired = errors.New("listen address is required")

	// ErrHandlersRequired is returned when handlers are not provided.
	ErrHandlersRequired = errors.New("handlers are required")

	// ErrRunnerRequired is returned when a job runner is not provided.
	ErrRunnerRequired = errors.New("job runner is required")

	// ErrTasksRequired is returned when a task registry is not provided.
	ErrTasksRequired = errors.New("task registry is required")

	// ErrSearcherRequired is returned when a searcher is not provided.
	ErrSearcherRequired = errors.New("searcher is required")

	// ErrCheckpointsRequired is returned when a checkpoint repository is not provided.
	ErrCheckpointsRequired = errors.New("checkpoint repository is required")

	// ErrSyncStatusRequired is returned when a sync status repository is not provided.
	ErrSyncStatusRequired = errors.New("sync status repository is required")

	// ErrStoreRequired is returned when a vector store is not provided.
	ErrStoreRequired = errors.New("vector store is required")
)
