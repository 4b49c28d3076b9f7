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
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/poiesic/tributary/core"
	"github.com/poiesic/tributary/storage"
)

// defaultMinInterval is the minimum spacing between authoritative
// lookups across all callers.
const defaultMinInterval = 100 * time.Millisecond

// Lookup answers authoritative identity queries. Implementations return
// an empty key with a nil error when the remote does not know the id;
// errors are reserved for calls that failed after retries.
type Lookup interface {
	LookupIdentity(ctx context.Context, kind core.IdentityKind, rawID string) (string, error)
}

// KindStats counts cache traffic for one identity kind.
type KindStats struct {
	Hits     int64 `json:"hits"`
	Misses   int64 `json:"misses"`
	Failures int64 `json:"failures"`
}

// Stats is a point-in-time snapshot of cache effectiveness. Failures
// count lookups that errored after retries; their sentinels are cached
// so a run never retries the same dead id.
type Stats struct {
	Hits     int64                           `json:"hits"`
	Misses   int64                           `json:"misses"`
	Failures int64                           `json:"failures"`
	PerKind  map[core.IdentityKind]KindStats `json:"per_kind,omitempty"`
}

// Cache memoizes identity resolutions for the process lifetime. Entries
// are never evicted; unresolved outcomes are cached as sentinels so a
// dead id costs one network call per run, not one per record.
//
// A shared limiter (burst 1) keeps authoritative lookups at least
// MinInterval apart across all callers, and concurrent misses for the
// same id coalesce into a single lookup.
type Cache struct {
	lookup  Lookup
	repo    storage.IdentityRepository // optional durable warm store
	limiter *rate.Limiter
	logger  *slog.Logger
	flight  singleflight.Group

	mu      sync.Mutex
	entries map[core.IdentityKind]map[string]core.Identity
	stats   Stats
}

// CacheOption configures a Cache.
type CacheOption func(*Cache) error

// WithMinInterval sets the minimum spacing between lookups.
// Default is 100ms.
func WithMinInterval(interval time.Duration) CacheOption {
	return func(c *Cache) error {
		if interval <= 0 {
			return ErrInvalidInterval
		}
		c.limiter = rate.NewLimiter(rate.Every(interval), 1)
		return nil
	}
}

// WithRepository sets a durable identity store consulted before the
// network and written through on successful resolution. Sentinels are
// never persisted.
func WithRepository(repo storage.IdentityRepository) CacheOption {
	return func(c *Cache) error {
		c.repo = repo
		return nil
	}
}

// WithCacheLogger sets a custom logger.
// Default is slog.Default().
func WithCacheLogger(logger *slog.Logger) CacheOption {
	return func(c *Cache) error {
		if logger == nil {
			logger = slog.Default()
		}
		c.logger = logger
		return nil
	}
}

// NewCache creates a resolver cache over the given lookup client.
func NewCache(lookup Lookup, opts ...CacheOption) (*Cache, error) {
	if lookup == nil {
		return nil, ErrLookupRequired
	}

	c := &Cache{
		lookup:  lookup,
		limiter: rate.NewLimiter(rate.Every(defaultMinInterval), 1),
		logger:  slog.Default().With("component", "resolve-cache"),
		entries: make(map[core.IdentityKind]map[string]core.Identity),
		stats:   Stats{PerKind: make(map[core.IdentityKind]KindStats)},
	}

	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Resolve returns the identity for (kind, rawID). A cache hit, cached
// sentinel included, returns immediately with zero network calls. A
// miss performs exactly one authoritative lookup and caches the
// outcome, success or sentinel, before returning. The error return is
// reserved for context cancellation.
func (c *Cache) Resolve(ctx context.Context, kind core.IdentityKind, rawID string) (core.Identity, error) {
	if rawID == "" {
		return unresolved(kind, rawID), nil
	}

	if ident, ok := c.cached(kind, rawID); ok {
		return ident, nil
	}
	if err := ctx.Err(); err != nil {
		return core.Identity{}, err
	}

	v, err, _ := c.flight.Do(string(kind)+"\x00"+rawID, func() (any, error) {
		// A queued caller may find the entry already filled.
		if ident, ok := c.cached(kind, rawID); ok {
			return ident, nil
		}
		// The lookup runs detached: it serves every coalesced waiter,
		// so the leader's cancellation must not fail the others. Each
		// caller observes its own context below.
		return c.resolveMiss(context.WithoutCancel(ctx), kind, rawID)
	})
	if err != nil {
		return core.Identity{}, err
	}
	if err := ctx.Err(); err != nil {
		return core.Identity{}, err
	}
	return v.(core.Identity), nil
}

func (c *Cache) resolveMiss(ctx context.Context, kind core.IdentityKind, rawID string) (core.Identity, error) {
	c.count(kind, func(s *KindStats, t *Stats) { s.Misses++; t.Misses++ })

	if c.repo != nil {
		stored, err := c.repo.LoadIdentity(ctx, kind, rawID)
		if err != nil {
			c.logger.Warn("stored identity load failed", "kind", kind, "rawID", rawID, "err", err)
		} else if stored != nil {
			c.store(kind, rawID, *stored)
			return *stored, nil
		}
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return core.Identity{}, err
	}

	key, err := c.lookup.LookupIdentity(ctx, kind, rawID)
	if err != nil {
		c.count(kind, func(s *KindStats, t *Stats) { s.Failures++; t.Failures++ })
		c.logger.Warn("identity lookup failed, caching sentinel",
			"kind", kind, "rawID", rawID, "err", err)
		ident := unresolved(kind, rawID)
		c.store(kind, rawID, ident)
		return ident, nil
	}

	ident := core.Identity{
		Kind:        kind,
		Source:      kind.System(),
		RawID:       rawID,
		ResolvedKey: key,
		Path:        core.PathAuthoritative,
		ResolvedAt:  time.Now().UTC(),
	}
	if key == "" {
		ident = unresolved(kind, rawID)
	}
	c.store(kind, rawID, ident)

	if c.repo != nil && !ident.Unresolved() {
		if err := c.repo.SaveIdentity(ctx, &ident); err != nil {
			c.logger.Warn("identity persist failed", "kind", kind, "rawID", rawID, "err", err)
		}
	}
	return ident, nil
}

// cached returns the memoized identity and counts the hit.
func (c *Cache) cached(kind core.IdentityKind, rawID string) (core.Identity, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	ident, ok := c.entries[kind][rawID]
	if ok {
		ks := c.stats.PerKind[kind]
		ks.Hits++
		c.stats.PerKind[kind] = ks
		c.stats.Hits++
	}
	return ident, ok
}

func (c *Cache) store(kind core.IdentityKind, rawID string, ident core.Identity) {
	c.mu.Lock()
	defer c.mu.Unlock()
	m, ok := c.entries[kind]
	if !ok {
		m = make(map[string]core.Identity)
		c.entries[kind] = m
	}
	m[rawID] = ident
}

func (c *Cache) count(kind core.IdentityKind, f func(*KindStats, *Stats)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	ks := c.stats.PerKind[kind]
	f(&ks, &c.stats)
	c.stats.PerKind[kind] = ks
}

// Stats returns a snapshot of the counters.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	snap := c.stats
	snap.PerKind = make(map[core.IdentityKind]KindStats, len(c.stats.PerKind))
	for k, v := range c.stats.PerKind {
		snap.PerKind[k] = v
	}
	return snap
}

// Len returns the number of cached entries across all kinds.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, m := range c.entries {
		n += len(m)
	}
	return n
}

// unresolved builds the sentinel identity for (kind, rawID).
func unresolved(kind core.IdentityKind, rawID string) core.Identity {
	return core.Identity{
		Kind:       kind,
		Source:     kind.System(),
		RawID:      rawID,
		Path:       core.PathNone,
		ResolvedAt: time.Now().UTC(),
	}
}
