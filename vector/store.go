package vector

import (
	"context"
	"slices"
	"time"

	"github.com/poiesic/tributary/core"
)

// DefaultTopK is the result count used when a caller passes topK <= 0.
const DefaultTopK = 10

// Store is a vector document store.
type Store interface {
	// Upsert writes documents keyed by id. Re-ingesting a document with
	// the same id replaces the stored row, so repeated runs over the
	// same window never grow the store.
	Upsert(ctx context.Context, docs []core.Document) error

	// Query returns the topK documents most similar to the embedding,
	// ordered by score descending. Only documents passing the filter
	// are considered.
	Query(ctx context.Context, embedding []float32, filter Filter, topK int) ([]core.Match, error)

	// Get returns the document stored under id, or ErrNotFound.
	Get(ctx context.Context, id string) (*core.Document, error)

	// Count returns the number of stored documents.
	Count(ctx context.Context) (int, error)

	// Close releases the store's resources.
	Close() error
}

// Filter narrows a query to a slice of the stored corpus. Zero-valued
// fields match everything.
type Filter struct {
	// Source restricts matches to documents from one source system.
	Source core.Source `json:"source,omitempty"`

	// Kinds restricts matches to the given record kinds.
	Kinds []core.Kind `json:"kinds,omitempty"`

	// Project restricts matches to one project.
	Project string `json:"project,omitempty"`

	// Since and Until bound the document metadata timestamp. A zero
	// bound leaves that side open.
	Since time.Time `json:"since,omitempty"`
	Until time.Time `json:"until,omitempty"`

	// AccessibleBy names a principal; matches are limited to documents
	// that principal may read. Empty skips access checks entirely.
	AccessibleBy string `json:"accessible_by,omitempty"`
}

// Matches reports whether a stored document passes the filter. Stores
// that cannot push filtering into their query engine apply it per
// document before scoring.
func (f Filter) Matches(doc *core.Document) bool {
	if f.Source != "" && doc.Source != f.Source {
		return false
	}
	if len(f.Kinds) > 0 && !slices.Contains(f.Kinds, doc.Kind) {
		return false
	}
	if f.Project != "" && doc.Metadata.Project != f.Project {
		return false
	}
	if !f.Since.IsZero() && doc.Metadata.Timestamp.Before(f.Since) {
		return false
	}
	if !f.Until.IsZero() && doc.Metadata.Timestamp.After(f.Until) {
		return false
	}
	if f.AccessibleBy != "" && !readable(doc, f.AccessibleBy) {
		return false
	}
	return true
}

// readable applies the stored access metadata. A document with no
// access list and no public flag carries no restriction and is
// readable by anyone.
func readable(doc *core.Document, principal string) bool {
	if doc.Metadata.Public {
		return true
	}
	if len(doc.Metadata.AccessList) == 0 {
		return true
	}
	return slices.Contains(doc.Metadata.AccessList, principal)
}
