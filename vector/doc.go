// Package vector defines the document store contract shared by the
// ingestion sink and search.
//
// Two implementations exist: vector/local is an embedded BadgerDB
// store for single-node deployments and tests, vector/pg targets
// Postgres with the pgvector extension. Both key documents by their
// deterministic id, so upserts are idempotent.
package vector
