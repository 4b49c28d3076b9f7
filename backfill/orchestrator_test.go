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
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/tributary/ai/mock"
	"github.com/poiesic/tributary/core"
	"github.com/poiesic/tributary/ingest"
	"github.com/poiesic/tributary/resolve"
	"github.com/poiesic/tributary/source"
	"github.com/poiesic/tributary/storage"
	badgerstore "github.com/poiesic/tributary/storage/badger"
	"github.com/poiesic/tributary/vector/local"
)

var testWindow = struct{ from, to time.Time }{
	from: time.Date(2024, 11, 1, 0, 0, 0, 0, time.UTC),
	to:   time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC),
}

// stubLookup never resolves anything, so slow-path records end up
// skipped.
type stubLookup struct{}

func (stubLookup) LookupIdentity(context.Context, core.IdentityKind, string) (string, error) {
	return "", nil
}

// fakeConnector serves a fixed record set and counts fetches. Safe for
// the concurrent chunked runner.
type fakeConnector struct {
	src     core.Source
	records []core.Record
	err     error

	mu       sync.Mutex
	fetches  int
	lastFrom time.Time
	lastTo   time.Time
}

func (c *fakeConnector) Source() core.Source { return c.src }

func (c *fakeConnector) Fetch(_ context.Context, from, to time.Time) (source.Iterator, error) {
	c.mu.Lock()
	c.fetches++
	c.lastFrom, c.lastTo = from, to
	c.mu.Unlock()

	if c.err != nil {
		return nil, c.err
	}
	return source.FromRecords(c.records...), nil
}

func (c *fakeConnector) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fetches
}

func (c *fakeConnector) window() (time.Time, time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastFrom, c.lastTo
}

// spyCheckpoints records every save passing through to the real
// repository. Sequential tests only.
type spyCheckpoints struct {
	storage.CheckpointRepository
	saves []core.Checkpoint
}

func (s *spyCheckpoints) SaveCheckpoint(ctx context.Context, cp *core.Checkpoint) error {
	if err := s.CheckpointRepository.SaveCheckpoint(ctx, cp); err != nil {
		return err
	}
	s.saves = append(s.saves, *cp)
	return nil
}

type rig struct {
	orch        *Orchestrator
	store       *local.Store
	embedder    *mock.Embedder
	checkpoints storage.CheckpointRepository
	syncs       storage.SyncStatusRepository
}

func newRig(t *testing.T, connector source.Connector, opts ...Option) *rig {
	t.Helper()

	checkpoints, syncs, _, backend, err := badgerstore.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() { _ = backend.Close() })

	store, err := local.New(backend)
	require.NoError(t, err)

	embedder := mock.NewEmbedder()
	sink, err := ingest.NewSink(store, embedder)
	require.NoError(t, err)

	cache, err := resolve.NewCache(stubLookup{}, resolve.WithMinInterval(time.Millisecond))
	require.NoError(t, err)
	resolver, err := resolve.NewResolver(cache)
	require.NoError(t, err)

	registry := source.Registry{connector.Source(): connector}
	opts = append(opts, WithSyncStatus(syncs))
	orch, err := NewOrchestrator(registry, resolver, sink, checkpoints, opts...)
	require.NoError(t, err)

	return &rig{
		orch:        orch,
		store:       store,
		embedder:    embedder,
		checkpoints: checkpoints,
		syncs:       syncs,
	}
}

func trackerIssue(id, key, body string, updated time.Time) core.Record {
	return core.Issue{
		ID:      id,
		Key:     key,
		Summary: "renewal invoices duplicated",
		Body:    body,
		Updated: updated,
	}
}

func testJob(batchID string) Job {
	return Job{
		Source:  core.SourceTracker,
		BatchID: batchID,
		From:    testWindow.from,
		To:      testWindow.to,
	}
}

func TestJob_Validate(t *testing.T) {
	valid := testJob("2024-11")

	tests := []struct {
		name    string
		mutate  func(*Job)
		wantErr error
	}{
		{"valid", func(*Job) {}, nil},
		{"unknown source", func(j *Job) { j.Source = "jira" }, source.ErrUnknownSource},
		{"missing batch id", func(j *Job) { j.BatchID = "" }, ErrBatchIDRequired},
		{"zero start", func(j *Job) { j.From = time.Time{} }, ErrInvalidWindow},
		{"inverted window", func(j *Job) { j.From, j.To = j.To, j.From }, ErrInvalidWindow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			job := valid
			tt.mutate(&job)
			err := job.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestNewOrchestrator_Validation(t *testing.T) {
	connector := &fakeConnector{src: core.SourceTracker}
	r := newRig(t, connector)
	registry := source.Registry{core.SourceTracker: connector}

	cache, err := resolve.NewCache(stubLookup{})
	require.NoError(t, err)
	resolver, err := resolve.NewResolver(cache)
	require.NoError(t, err)
	sink, err := ingest.NewSink(r.store, mock.NewEmbedder())
	require.NoError(t, err)

	_, err = NewOrchestrator(nil, resolver, sink, r.checkpoints)
	assert.ErrorIs(t, err, ErrRegistryRequired)

	_, err = NewOrchestrator(registry, nil, sink, r.checkpoints)
	assert.ErrorIs(t, err, ErrResolverRequired)

	_, err = NewOrchestrator(registry, resolver, nil, r.checkpoints)
	assert.ErrorIs(t, err, ErrSinkRequired)

	_, err = NewOrchestrator(registry, resolver, sink, nil)
	assert.ErrorIs(t, err, ErrCheckpointsRequired)

	_, err = NewOrchestrator(registry, resolver, sink, r.checkpoints, WithCheckpointInterval(0))
	assert.ErrorIs(t, err, ErrInvalidInterval)

	_, err = NewOrchestrator(registry, resolver, sink, r.checkpoints, WithLookback(0))
	assert.ErrorIs(t, err, ErrInvalidLookback)
}

func TestOrchestrator_RunProcessesBatch(t *testing.T) {
	connector := &fakeConnector{
		src: core.SourceTracker,
		records: []core.Record{
			trackerIssue("10001", "SUBS-482", "Renewals emit two invoices.", testWindow.from.Add(time.Hour)),
			trackerIssue("10002", "SUBS-483", "Credit memos never applied.", testWindow.from.Add(2*time.Hour)),
			trackerIssue("10099", "", "no anchors here", testWindow.from.Add(3*time.Hour)),
		},
	}
	r := newRig(t, connector)

	result, err := r.orch.Run(context.Background(), testJob("2024-11"))
	require.NoError(t, err)

	assert.False(t, result.AlreadyCompleted)
	assert.Equal(t, 3, result.Total)
	assert.Equal(t, 3, result.Processed)
	assert.Equal(t, 2, result.FastPath)
	assert.Equal(t, 0, result.SlowPath)
	assert.Equal(t, 1, result.Skipped)
	assert.Equal(t, 0, result.Duplicates)
	assert.Equal(t, 2, result.Ingested)
	assert.Equal(t, int64(1), result.CacheStats.Misses, "unresolvable issue consults the cache once")

	cp, err := r.checkpoints.LoadCheckpoint(context.Background(), core.SourceTracker, "2024-11")
	require.NoError(t, err)
	require.NotNil(t, cp)
	assert.Equal(t, core.StatusCompleted, cp.Status)
	assert.Equal(t, 3, cp.TotalItems)
	assert.Equal(t, 3, cp.ProcessedItems)
	assert.Equal(t, 2, cp.IngestedItems)
	assert.False(t, cp.CompletedAt.IsZero())

	count, err := r.store.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestOrchestrator_CompletedBatchShortCircuits(t *testing.T) {
	connector := &fakeConnector{
		src: core.SourceTracker,
		records: []core.Record{
			trackerIssue("10001", "SUBS-482", "Renewals emit two invoices.", testWindow.from.Add(time.Hour)),
		},
	}
	r := newRig(t, connector)

	first, err := r.orch.Run(context.Background(), testJob("2024-11"))
	require.NoError(t, err)
	require.Equal(t, 1, first.Ingested)
	require.Equal(t, 1, connector.count())
	embedsAfterFirst := r.embedder.CallCount()

	second, err := r.orch.Run(context.Background(), testJob("2024-11"))
	require.NoError(t, err)

	assert.True(t, second.AlreadyCompleted)
	assert.Equal(t, 1, second.Total)
	assert.Equal(t, 1, second.Processed)
	assert.Equal(t, 1, second.Ingested)
	assert.Equal(t, 1, connector.count(), "completed batch must not fetch")
	assert.Equal(t, embedsAfterFirst, r.embedder.CallCount(), "completed batch must not embed")
}

func TestOrchestrator_FetchFailureMarksCheckpointFailed(t *testing.T) {
	connector := &fakeConnector{
		src: core.SourceTracker,
		err: errors.New("listing unavailable"),
	}
	r := newRig(t, connector)

	_, err := r.orch.Run(context.Background(), testJob("2024-11"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "listing unavailable")

	cp, err := r.checkpoints.LoadCheckpoint(context.Background(), core.SourceTracker, "2024-11")
	require.NoError(t, err)
	require.NotNil(t, cp)
	assert.Equal(t, core.StatusFailed, cp.Status)
	assert.Contains(t, cp.ErrorMessage, "listing unavailable")

	// A failed batch is re-claimable once the source recovers.
	connector.err = nil
	connector.records = []core.Record{
		trackerIssue("10001", "SUBS-482", "Renewals emit two invoices.", testWindow.from.Add(time.Hour)),
	}

	result, err := r.orch.Run(context.Background(), testJob("2024-11"))
	require.NoError(t, err)
	assert.Equal(t, 1, result.Ingested)

	cp, err = r.checkpoints.LoadCheckpoint(context.Background(), core.SourceTracker, "2024-11")
	require.NoError(t, err)
	assert.Equal(t, core.StatusCompleted, cp.Status)
	assert.Empty(t, cp.ErrorMessage)
}

func TestOrchestrator_PersistsProgress(t *testing.T) {
	records := make([]core.Record, 1000)
	for i := range records {
		records[i] = trackerIssue(
			fmt.Sprintf("%d", 10000+i),
			fmt.Sprintf("SUBS-%d", i+1),
			"steady stream of tickets",
			testWindow.from.Add(time.Duration(i)*time.Minute),
		)
	}
	connector := &fakeConnector{src: core.SourceTracker, records: records}
	r := newRig(t, connector, WithCheckpointInterval(100))

	spy := &spyCheckpoints{CheckpointRepository: r.checkpoints}
	orch, err := NewOrchestrator(
		source.Registry{core.SourceTracker: connector},
		r.orch.resolver, r.orch.sink, spy,
		WithCheckpointInterval(100),
	)
	require.NoError(t, err)

	result, err := orch.Run(context.Background(), testJob("2024-11"))
	require.NoError(t, err)
	assert.Equal(t, 1000, result.Processed)
	assert.Equal(t, 1000, result.Ingested)

	prev := 0
	for _, cp := range spy.saves {
		assert.GreaterOrEqual(t, cp.ProcessedItems, prev, "processed must never decrease")
		prev = cp.ProcessedItems
	}

	final := spy.saves[len(spy.saves)-1]
	assert.Equal(t, core.StatusCompleted, final.Status)
	assert.Equal(t, 1000, final.ProcessedItems)
	assert.Equal(t, 1000, final.IngestedItems)

	running := 0
	for _, cp := range spy.saves {
		if cp.Status == core.StatusRunning && cp.ProcessedItems > 0 {
			running++
		}
	}
	assert.GreaterOrEqual(t, running, 10, "progress persists at least every interval")
}

func TestOrchestrator_CollapsesDuplicateTranscripts(t *testing.T) {
	started := time.Date(2024, 11, 5, 15, 0, 0, 0, time.UTC)
	call := func(id string, offset time.Duration, durationSec, segments int) core.Record {
		return core.Transcript{
			ID:          id,
			Title:       "SUBS-482 billing sync",
			Started:     started.Add(offset),
			DurationSec: durationSec,
			Segments:    segments,
			Attendees:   []string{"dana@example.com"},
			Body:        "transcript body " + id,
		}
	}
	connector := &fakeConnector{
		src: core.SourceMeetings,
		records: []core.Record{
			call("mt-1", 0, 3600, 10),
			call("mt-2", 2*time.Minute, 3620, 50),
			call("mt-3", 4*time.Minute, 3580, 20),
		},
	}
	r := newRig(t, connector)

	job := testJob("2024-11")
	job.Source = core.SourceMeetings
	result, err := r.orch.Run(context.Background(), job)
	require.NoError(t, err)

	assert.Equal(t, 3, result.Total)
	assert.Equal(t, 3, result.Processed)
	assert.Equal(t, 2, result.Duplicates)
	assert.Equal(t, 1, result.Ingested)

	count, err := r.store.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	// The most complete copy survives.
	doc, err := r.store.Get(context.Background(),
		core.DocumentID(core.SourceMeetings, "SUBS-482/transcript/mt-2"))
	require.NoError(t, err)
	assert.Contains(t, doc.Content, "mt-2")
	assert.Equal(t, []string{"dana@example.com"}, doc.Metadata.AccessList)
}

func TestOrchestrator_NewestContentWins(t *testing.T) {
	connector := &fakeConnector{
		src: core.SourceTracker,
		records: []core.Record{
			// Newest first on the wire; the orchestrator must not let
			// the stale copy overwrite it.
			trackerIssue("10001", "SUBS-482", "second revision", testWindow.from.Add(10*time.Minute)),
			trackerIssue("10001", "SUBS-482", "first draft", testWindow.from),
		},
	}
	r := newRig(t, connector)

	result, err := r.orch.Run(context.Background(), testJob("2024-11"))
	require.NoError(t, err)
	assert.Equal(t, 2, result.Ingested)

	count, err := r.store.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, count, "same natural key lands on one document")

	doc, err := r.store.Get(context.Background(), core.DocumentID(core.SourceTracker, "SUBS-482"))
	require.NoError(t, err)
	assert.Contains(t, doc.Content, "second revision")
	assert.NotContains(t, doc.Content, "first draft")
}

func TestOrchestrator_BackfillLeavesSyncMarkAlone(t *testing.T) {
	connector := &fakeConnector{
		src: core.SourceTracker,
		records: []core.Record{
			trackerIssue("10001", "SUBS-482", "Renewals emit two invoices.", testWindow.from.Add(time.Hour)),
		},
	}
	r := newRig(t, connector)

	_, err := r.orch.Run(context.Background(), testJob("2024-11"))
	require.NoError(t, err)

	statuses, err := r.syncs.ListSyncStatuses(context.Background())
	require.NoError(t, err)
	assert.Empty(t, statuses, "plain backfills never advance the sync mark")
}
