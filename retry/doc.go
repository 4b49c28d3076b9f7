// Package retry provides the jittered exponential backoff envelope used
// by every outbound call in the pipeline.
//
// Transient failures (connection errors, timeouts, and a configurable
// set of HTTP status codes) are retried up to a bounded number of
// attempts; everything else propagates to the caller immediately.
package retry
