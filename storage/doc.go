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


// Package storage provides the durable state abstraction for tributary.
//
// This package defines repository interfaces that decouple pipeline logic
// from the storage engine. Three kinds of durable state exist:
//
//   - CheckpointRepository: progress rows for backfill batches, keyed by
//     (source, batch_id). The orchestrator reads-then-writes its own row;
//     a completed row short-circuits re-execution.
//   - SyncStatusRepository: per-source last-sync timestamps, written only
//     by successful incremental syncs.
//   - IdentityRepository: resolved canonical identities, the warm-start
//     layer under the in-process resolver cache. Sentinels are never
//     persisted here.
//
// # Constructor Return Type Pattern
//
// Public constructors in implementation packages return these interfaces
// rather than concrete types:
//
//	repos, err := badger.NewRepositories(path)
//
// which keeps callers decoupled from the engine and lets tests substitute
// in-memory implementations without modification.
//
// # Serialization
//
// Stored values are serialized with the MUS format. The serializers are
// generated into the core package by cmd/musgen (go generate ./core) and
// wrapped here by Marshal*/Unmarshal* helpers.
//
// # Thread Safety
//
// All repository implementations must be thread-safe and support
// concurrent access from multiple goroutines.
package storage
