// Package server implements the HTTP API: job submission and status,
// checkpoint and sync inspection, search, and health.
//
// Jobs are accepted with a 202 and run on a bounded worker pool; their
// outcome is only ever visible through the task status endpoint.
package server
