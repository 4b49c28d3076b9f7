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


package resolve

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/poiesic/tributary/core"
)

// Resolver maps raw records to identities. It tries a cheap local
// heuristic first and falls back to the throttled cache only when the
// record carries no usable anchor. A record neither path can resolve
// yields the unresolved sentinel, not an error; the caller skips it.
type Resolver struct {
	cache *Cache
}

// NewResolver creates a resolver over the given cache.
func NewResolver(cache *Cache) (*Resolver, error) {
	if cache == nil {
		return nil, ErrCacheRequired
	}
	return &Resolver{cache: cache}, nil
}

// Cache returns the cache backing the slow path.
func (r *Resolver) Cache() *Cache { return r.cache }

// Resolve returns the identity anchoring the record. The switch is
// exhaustive over the closed record set.
func (r *Resolver) Resolve(ctx context.Context, record core.Record) (core.Identity, error) {
	if record == nil {
		return core.Identity{}, ErrNilRecord
	}

	switch rec := record.(type) {
	case core.Issue:
		if core.IsTicketKey(rec.Key) {
			return fast(core.IdentityIssueKey, rec.ID, strings.ToUpper(rec.Key)), nil
		}
		if key, ok := extractKey(rec.Summary + " " + rec.Body); ok {
			return fast(core.IdentityIssueKey, rec.ID, key), nil
		}
		return r.cache.Resolve(ctx, core.IdentityIssueKey, rec.ID)

	case core.Worklog:
		if core.IsTicketKey(rec.IssueKey) {
			return fast(core.IdentityIssueKey, rec.ID, strings.ToUpper(rec.IssueKey)), nil
		}
		if key, ok := extractKey(rec.Comment); ok {
			return fast(core.IdentityIssueKey, rec.ID, key), nil
		}
		return r.cache.Resolve(ctx, core.IdentityIssueKey, rec.IssueID)

	case core.Transcript:
		if key, ok := extractKey(rec.Title); ok {
			return fast(core.IdentityIssueKey, rec.ID, key), nil
		}
		return r.cache.Resolve(ctx, core.IdentityMeeting, rec.ID)

	case core.Page:
		if rec.Slug == "" {
			return unresolved(core.IdentityPageSlug, rec.ID), nil
		}
		return fast(core.IdentityPageSlug, rec.ID, rec.Slug), nil

	case core.Message:
		if rec.Channel == "" || rec.Posted.IsZero() {
			return unresolved(core.IdentityChatAnchor, rec.ID), nil
		}
		return fast(core.IdentityChatAnchor, rec.ID, rec.Channel+"/"+rec.ID), nil

	default:
		return core.Identity{}, fmt.Errorf("%w: %T", ErrUnknownRecordType, record)
	}
}

// fast builds an identity resolved without network.
func fast(kind core.IdentityKind, rawID, key string) core.Identity {
	return core.Identity{
		Kind:        kind,
		Source:      kind.System(),
		RawID:       rawID,
		ResolvedKey: key,
		Path:        core.PathFast,
		ResolvedAt:  time.Now().UTC(),
	}
}

// extractKey returns the first well-formed ticket key in text,
// uppercased to its canonical form.
func extractKey(text string) (string, bool) {
	for _, token := range strings.Fields(text) {
		token = strings.Trim(token, ".,;:()[]{}<>'\"!?")
		if core.IsTicketKey(token) {
			return strings.ToUpper(token), true
		}
	}
	return "", false
}
