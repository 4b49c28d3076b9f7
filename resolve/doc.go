// Package resolve maps raw source records to canonical identities.
//
// Resolution is dual-path: a cheap local heuristic (the record's own key
// field or a ticket-key pattern scan of its text) answers most records
// without network; the remainder fall back to an authoritative lookup
// through a process-lifetime cache. The cache throttles lookups to a
// minimum inter-call interval shared across all callers, memoizes
// unresolved outcomes as sentinels, and optionally warm-starts from and
// writes through to a durable identity store.
//
// A record neither path can anchor is skipped by callers, never treated
// as an error.
package resolve
