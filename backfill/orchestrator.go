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


package backfill

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"time"

	"github.com/poiesic/tributary/core"
	"github.com/poiesic/tributary/dedup"
	"github.com/poiesic/tributary/ingest"
	"github.com/poiesic/tributary/resolve"
	"github.com/poiesic/tributary/source"
	"github.com/poiesic/tributary/storage"
)

const (
	// defaultCheckpointInterval is how many processed records sit
	// between progress persists.
	defaultCheckpointInterval = 500

	// defaultLookback is the incremental sync window for a source that
	// has never synced.
	defaultLookback = 7 * 24 * time.Hour
)

// Orchestrator drives backfill batches through the full pipeline:
// fetch, collapse duplicates, resolve identities, embed and upsert.
// Progress is persisted as a checkpoint row per (source, batch id), so
// an interrupted batch can be re-run and a completed one is never
// executed twice.
type Orchestrator struct {
	connectors  source.Registry
	resolver    *resolve.Resolver
	sink        *ingest.Sink
	checkpoints storage.CheckpointRepository
	syncs       storage.SyncStatusRepository
	dedup       *dedup.Engine
	interval    int
	lookback    time.Duration
	progress    io.Writer
	logger      *slog.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator) error

// WithSyncStatus sets the repository recording incremental sync marks.
// Required for RunIncremental only.
func WithSyncStatus(repo storage.SyncStatusRepository) Option {
	return func(o *Orchestrator) error {
		o.syncs = repo
		return nil
	}
}

// WithDedup replaces the default deduplication engine.
func WithDedup(engine *dedup.Engine) Option {
	return func(o *Orchestrator) error {
		if engine != nil {
			o.dedup = engine
		}
		return nil
	}
}

// WithCheckpointInterval sets how many processed records sit between
// progress persists. Default is 500.
func WithCheckpointInterval(n int) Option {
	return func(o *Orchestrator) error {
		if n < 1 {
			return ErrInvalidInterval
		}
		o.interval = n
		return nil
	}
}

// WithLookback sets the incremental sync window used when a source has
// never synced. Default is 7 days.
func WithLookback(d time.Duration) Option {
	return func(o *Orchestrator) error {
		if d <= 0 {
			return ErrInvalidLookback
		}
		o.lookback = d
		return nil
	}
}

// WithProgressWriter sets where batch progress lines are written,
// typically os.Stderr for CLI runs. Default discards them.
func WithProgressWriter(w io.Writer) Option {
	return func(o *Orchestrator) error {
		if w == nil {
			w = io.Discard
		}
		o.progress = w
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) error {
		if logger == nil {
			logger = slog.Default()
		}
		o.logger = logger.With("component", "backfill")
		return nil
	}
}

// NewOrchestrator creates a backfill orchestrator.
func NewOrchestrator(connectors source.Registry, resolver *resolve.Resolver, sink *ingest.Sink, checkpoints storage.CheckpointRepository, opts ...Option) (*Orchestrator, error) {
	if len(connectors) == 0 {
		return nil, ErrRegistryRequired
	}
	if resolver == nil {
		return nil, ErrResolverRequired
	}
	if sink == nil {
		return nil, ErrSinkRequired
	}
	if checkpoints == nil {
		return nil, ErrCheckpointsRequired
	}

	engine, err := dedup.NewEngine()
	if err != nil {
		return nil, err
	}

	o := &Orchestrator{
		connectors:  connectors,
		resolver:    resolver,
		sink:        sink,
		checkpoints: checkpoints,
		dedup:       engine,
		interval:    defaultCheckpointInterval,
		lookback:    defaultLookback,
		progress:    io.Discard,
		logger:      slog.Default().With("component", "backfill"),
	}
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	return o, nil
}

// Run executes one batch. A batch whose checkpoint already reached
// completed returns its stored result immediately, touching neither the
// connector nor the store. Anything else claims (or re-claims) a
// running checkpoint, processes the window, and lands on completed or
// failed.
func (o *Orchestrator) Run(ctx context.Context, job Job) (*Result, error) {
	if err := job.Validate(); err != nil {
		return nil, err
	}

	logger := o.logger.With("source", job.Source, "batch_id", job.BatchID)

	cp, err := o.checkpoints.LoadCheckpoint(ctx, job.Source, job.BatchID)
	if err != nil {
		return nil, fmt.Errorf("load checkpoint: %w", err)
	}
	if cp != nil && cp.Terminal() {
		logger.Info("batch already completed, skipping",
			"ingested", cp.IngestedItems)
		return completedResult(job, cp), nil
	}

	if cp == nil {
		cp = &core.Checkpoint{Source: job.Source, BatchID: job.BatchID}
	}
	cp.StartDate = job.From
	cp.EndDate = job.To
	cp.Status = core.StatusRunning
	cp.StartedAt = time.Now().UTC()
	cp.ErrorMessage = ""
	if err := o.checkpoints.SaveCheckpoint(ctx, cp); err != nil {
		return nil, fmt.Errorf("claim checkpoint: %w", err)
	}

	logger.Info("starting batch", "from", job.From, "to", job.To)

	result, err := o.process(ctx, job, cp, logger)
	if err != nil {
		cp.Status = core.StatusFailed
		cp.ErrorMessage = err.Error()
		if saveErr := o.checkpoints.SaveCheckpoint(ctx, cp); saveErr != nil {
			logger.Error("failed status not persisted", "err", saveErr)
		}
		return nil, err
	}

	cp.Status = core.StatusCompleted
	cp.CompletedAt = time.Now().UTC()
	if err := o.checkpoints.SaveCheckpoint(ctx, cp); err != nil {
		return nil, fmt.Errorf("complete checkpoint: %w", err)
	}

	logger.Info("batch completed",
		"total", result.Total,
		"ingested", result.Ingested,
		"skipped", result.Skipped,
		"duplicates", result.Duplicates)
	return result, nil
}

// process runs the pipeline for one claimed batch. The caller owns the
// checkpoint's terminal transition; process only advances counters.
func (o *Orchestrator) process(ctx context.Context, job Job, cp *core.Checkpoint, logger *slog.Logger) (*Result, error) {
	connector, err := o.connectors.Connector(job.Source)
	if err != nil {
		return nil, err
	}

	it, err := connector.Fetch(ctx, job.From, job.To)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", job.Source, err)
	}
	defer it.Close()

	var records []core.Record
	for it.Next() {
		records = append(records, it.Record())
	}
	if err := it.Err(); err != nil {
		return nil, fmt.Errorf("fetch %s: %w", job.Source, err)
	}

	// Oldest first, so same-id rewrites always leave the newest content
	// in the store no matter what order the source returned.
	slices.SortStableFunc(records, func(a, b core.Record) int {
		return a.RecordTime().Compare(b.RecordTime())
	})

	cp.TotalItems = len(records)
	if err := o.checkpoints.SaveCheckpoint(ctx, cp); err != nil {
		logger.Warn("total not persisted", "err", err)
	}

	// Duplicates are collapsed before resolution so slow-path lookups
	// are never spent on records that will be dropped anyway. Survivor
	// choice does not depend on identities, so the outcome is the same.
	survivors, groups := o.dedup.Collapse(records)

	result := &Result{
		Source:     job.Source,
		BatchID:    job.BatchID,
		Total:      len(records),
		Duplicates: len(records) - len(survivors),
		Processed:  len(records) - len(survivors),
	}

	tracker := NewTracker(o.progress, result.Total, o.interval)
	tracker.Start()
	tracker.Update(result.Processed)

	resolved := make([]ingest.Resolved, 0, len(survivors))
	for _, rec := range survivors {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		ident, err := o.resolver.Resolve(ctx, rec)
		if err != nil {
			return nil, fmt.Errorf("resolve %s: %w", rec.RecordID(), err)
		}

		result.Processed++
		switch {
		case ident.Unresolved():
			result.Skipped++
			logger.Debug("record skipped, no identity", "record_id", rec.RecordID())
		case ident.Path == core.PathFast:
			result.FastPath++
			resolved = append(resolved, ingest.Resolved{Record: rec, Identity: ident})
		default:
			result.SlowPath++
			resolved = append(resolved, ingest.Resolved{Record: rec, Identity: ident})
		}

		tracker.Update(result.Processed)
		if result.Processed%o.interval == 0 {
			cp.ProcessedItems = result.Processed
			if err := o.checkpoints.SaveCheckpoint(ctx, cp); err != nil {
				logger.Warn("progress not persisted", "err", err)
			}
		}
	}

	ingested, err := o.sink.Upsert(ctx, resolved)
	if err != nil {
		return nil, fmt.Errorf("ingest: %w", err)
	}
	result.Ingested = ingested
	if dropped := len(resolved) - ingested; dropped > 0 {
		result.Errors = append(result.Errors,
			fmt.Sprintf("%d records dropped during embedding or upsert", dropped))
		logger.Warn("records dropped in sink", "dropped", dropped)
	}
	for _, g := range groups {
		logger.Debug("collapsed duplicates",
			"phase", g.Phase, "survivor", g.SurvivorID, "dropped", len(g.DroppedIDs))
	}

	tracker.Finish()
	cp.ProcessedItems = result.Processed
	cp.IngestedItems = result.Ingested
	result.CacheStats = o.resolver.Cache().Stats()
	return result, nil
}
