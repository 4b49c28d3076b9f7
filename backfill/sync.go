package backfill

import (
	"context"
	"fmt"
	"time"

	"github.com/poiesic/tributary/core"
)

// RunIncremental syncs one source forward from its last recorded sync
// mark, or from the configured lookback when the source has never
// synced. On success the sync mark advances to the window end; plain
// backfills never move it.
func (o *Orchestrator) RunIncremental(ctx context.Context, src core.Source) (*Result, error) {
	if o.syncs == nil {
		return nil, ErrSyncStatusRequired
	}

	now := time.Now().UTC()
	from := now.Add(-o.lookback)

	status, err := o.syncs.LoadSyncStatus(ctx, src)
	if err != nil {
		return nil, fmt.Errorf("load sync status: %w", err)
	}
	if status != nil {
		from = status.LastSyncAt
	}

	// Nanosecond ids keep rapid successive syncs on distinct batches.
	job := Job{
		Source:  src,
		BatchID: fmt.Sprintf("sync-%d", now.UnixNano()),
		From:    from,
		To:      now,
	}

	result, err := o.Run(ctx, job)
	if err != nil {
		return nil, err
	}

	mark := &core.SyncStatus{Source: src, LastSyncAt: now}
	if err := o.syncs.SaveSyncStatus(ctx, mark); err != nil {
		return nil, fmt.Errorf("record sync mark: %w", err)
	}
	return result, nil
}
