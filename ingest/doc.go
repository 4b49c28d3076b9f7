// Package ingest turns resolved records into embedded documents and
// writes them to a vector store.
//
// The sink builds one document per record, fills in missing embeddings
// through an ai.Embedder with the input bounded to a configurable
// character limit, and upserts in fixed-size batches under the shared
// retry envelope. Failures degrade to skips: a record that cannot be
// embedded and a batch that cannot be written are logged and excluded
// from the returned count without aborting the rest of the run.
package ingest
