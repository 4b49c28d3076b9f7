// Package backfill orchestrates checkpointed ingestion batches.
//
// A batch is one (source, batch id, date window) triple. The
// orchestrator fetches the window's records, collapses duplicate
// transcripts, resolves identities, and hands the survivors to the
// ingestion sink, persisting a checkpoint row as it goes. Completed
// batches are terminal: re-running the same batch id returns the stored
// result without touching any external system, which makes long
// backfills safely resumable chunk by chunk.
//
// RunChunked splits a long range into date-disjoint chunks that run as
// independent batches; RunIncremental extends a source forward from its
// last successful sync mark.
package backfill
