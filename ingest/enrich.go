package ingest

import (
	"context"

	"github.com/poiesic/tributary/core"
	"github.com/poiesic/tributary/resolve"
)

// Enricher decorates documents with identities beyond the primary key:
// team and epic labels on issues, display names on worklogs. Enrichment
// is best effort; a failed or unresolved lookup leaves the document as
// built. It never touches access metadata.
type Enricher struct {
	cache *resolve.Cache
}

// NewEnricher creates an enricher over the given resolver cache.
func NewEnricher(cache *resolve.Cache) (*Enricher, error) {
	if cache == nil {
		return nil, ErrCacheRequired
	}
	return &Enricher{cache: cache}, nil
}

// Enrich decorates doc in place from the record it was built from.
func (e *Enricher) Enrich(ctx context.Context, record core.Record, doc *core.Document) {
	switch r := record.(type) {
	case core.Issue:
		if team := e.resolveKey(ctx, core.IdentityUserTeam, r.Assignee); team != "" {
			doc.Metadata.Labels = append(doc.Metadata.Labels, "team:"+team)
		}
		if epic := e.resolveKey(ctx, core.IdentityEpic, r.EpicID); epic != "" {
			doc.Metadata.Labels = append(doc.Metadata.Labels, "epic:"+epic)
		}
	case core.Worklog:
		name := e.resolveKey(ctx, core.IdentityDisplayName, r.Author)
		if name != "" && len(doc.Metadata.Participants) > 0 {
			doc.Metadata.Participants[0] = name
		}
	}
}

// resolveKey returns the resolved key, or "" when the lookup failed or
// the id is unknown.
func (e *Enricher) resolveKey(ctx context.Context, kind core.IdentityKind, rawID string) string {
	if rawID == "" {
		return ""
	}
	ident, err := e.cache.Resolve(ctx, kind, rawID)
	if err != nil || ident.Unresolved() {
		return ""
	}
	return ident.ResolvedKey
}
