package backfill

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/tributary/core"
)

func TestRunIncremental_FirstSyncUsesLookback(t *testing.T) {
	connector := &fakeConnector{
		src: core.SourceTracker,
		records: []core.Record{
			trackerIssue("10001", "SUBS-482", "Renewals emit two invoices.", time.Now().UTC().Add(-time.Hour)),
		},
	}
	r := newRig(t, connector, WithLookback(48*time.Hour))

	result, err := r.orch.RunIncremental(context.Background(), core.SourceTracker)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Ingested)

	from, to := connector.window()
	assert.WithinDuration(t, time.Now().UTC().Add(-48*time.Hour), from, 10*time.Second)
	assert.WithinDuration(t, time.Now().UTC(), to, 10*time.Second)

	status, err := r.syncs.LoadSyncStatus(context.Background(), core.SourceTracker)
	require.NoError(t, err)
	require.NotNil(t, status)
	assert.WithinDuration(t, time.Now().UTC(), status.LastSyncAt, 10*time.Second)
}

func TestRunIncremental_AdvancesFromLastMark(t *testing.T) {
	connector := &fakeConnector{src: core.SourceTracker}
	r := newRig(t, connector, WithLookback(48*time.Hour))

	_, err := r.orch.RunIncremental(context.Background(), core.SourceTracker)
	require.NoError(t, err)

	mark, err := r.syncs.LoadSyncStatus(context.Background(), core.SourceTracker)
	require.NoError(t, err)
	require.NotNil(t, mark)

	_, err = r.orch.RunIncremental(context.Background(), core.SourceTracker)
	require.NoError(t, err)

	from, _ := connector.window()
	assert.True(t, from.Equal(mark.LastSyncAt), "second sync starts at the recorded mark")
	assert.Equal(t, 2, connector.count())
}

func TestRunIncremental_RequiresSyncStatus(t *testing.T) {
	connector := &fakeConnector{src: core.SourceTracker}
	r := newRig(t, connector)

	bare := *r.orch
	bare.syncs = nil

	_, err := bare.RunIncremental(context.Background(), core.SourceTracker)
	assert.ErrorIs(t, err, ErrSyncStatusRequired)
}
