// Package pg implements vector.Store on Postgres. The target database
// must have the pgvector extension installed; the store creates its
// own table and indexes on startup. Similarity is cosine, reported as
// 1 - distance so scores line up with the local store's dot products.
package pg
