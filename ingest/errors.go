package ingest

import "errors"

// ErrStoreRequired indicates a nil vector store was provided.
var ErrStoreRequired = errors.New("vector store is required")

// ErrEmbedderRequired indicates a nil embedder was provided.
var ErrEmbedderRequired = errors.New("embedder is required")

// ErrCacheRequired indicates a nil resolver cache was provided.
var ErrCacheRequired = errors.New("resolver cache is required")

// ErrInvalidBatchSize indicates a non-positive batch size.
var ErrInvalidBatchSize = errors.New("batch size must be positive")

// ErrInvalidMaxEmbedChars indicates a non-positive embed limit.
var ErrInvalidMaxEmbedChars = errors.New("max embed chars must be positive")
