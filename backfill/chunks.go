package backfill

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/poiesic/tributary/core"
)

// window is one chunk's date range.
type window struct {
	from time.Time
	to   time.Time
}

// RunChunked splits [from, to) into date-disjoint chunks of at most
// chunkDays days and runs each as its own batch with a derived id
// (baseID-c01, baseID-c02, ...). Chunks for the whole plan are recorded
// as pending checkpoints up front, then submitted pause apart and run
// concurrently; a chunk that completed in an earlier invocation is
// skipped by its checkpoint. Results arrive in chunk order.
func (o *Orchestrator) RunChunked(ctx context.Context, src core.Source, baseID string, from, to time.Time, chunkDays int, pause time.Duration) ([]*Result, error) {
	if chunkDays < 1 {
		return nil, ErrInvalidChunkDays
	}
	windows := splitWindow(from, to, chunkDays)
	if len(windows) == 0 {
		return nil, ErrInvalidWindow
	}

	jobs := make([]Job, len(windows))
	for i, w := range windows {
		jobs[i] = Job{
			Source:  src,
			BatchID: fmt.Sprintf("%s-c%02d", baseID, i+1),
			From:    w.from,
			To:      w.to,
		}
		if err := jobs[i].Validate(); err != nil {
			return nil, err
		}
	}

	if err := o.plan(ctx, jobs); err != nil {
		return nil, err
	}

	o.logger.Info("running chunked backfill",
		"source", src, "base_id", baseID, "chunks", len(jobs))

	results := make([]*Result, len(jobs))
	g, ctx := errgroup.WithContext(ctx)
	for i, job := range jobs {
		g.Go(func() error {
			res, err := o.Run(ctx, job)
			if err != nil {
				return fmt.Errorf("chunk %s: %w", job.BatchID, err)
			}
			results[i] = res
			return nil
		})

		if i == len(jobs)-1 {
			break
		}
		if err := sleep(ctx, pause); err != nil {
			break
		}
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

// plan records a pending checkpoint for every chunk that has no row
// yet, so the full plan is visible before any chunk starts.
func (o *Orchestrator) plan(ctx context.Context, jobs []Job) error {
	for _, job := range jobs {
		existing, err := o.checkpoints.LoadCheckpoint(ctx, job.Source, job.BatchID)
		if err != nil {
			return fmt.Errorf("plan chunk %s: %w", job.BatchID, err)
		}
		if existing != nil {
			continue
		}

		cp := &core.Checkpoint{
			Source:    job.Source,
			BatchID:   job.BatchID,
			StartDate: job.From,
			EndDate:   job.To,
			Status:    core.StatusPending,
		}
		if err := o.checkpoints.SaveCheckpoint(ctx, cp); err != nil {
			return fmt.Errorf("plan chunk %s: %w", job.BatchID, err)
		}
	}
	return nil
}

// splitWindow cuts [from, to) into consecutive chunks of at most
// chunkDays days. An empty or inverted range yields no windows.
func splitWindow(from, to time.Time, chunkDays int) []window {
	step := time.Duration(chunkDays) * 24 * time.Hour

	var out []window
	for cur := from; cur.Before(to); cur = cur.Add(step) {
		end := cur.Add(step)
		if end.After(to) {
			end = to
		}
		out = append(out, window{from: cur, to: end})
	}
	return out
}

// sleep waits for d or until ctx is done, whichever comes first.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
