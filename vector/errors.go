package vector

import "errors"

var (
	// ErrNotFound is returned by Get for an unknown document id.
	ErrNotFound = errors.New("document not found")

	// ErrEmbeddingRequired is returned when a query embedding is empty.
	ErrEmbeddingRequired = errors.New("embedding required")

	// ErrDimensionMismatch is returned when an embedding's length does
	// not match the store's configured dimension.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
)
