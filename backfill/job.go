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
	"fmt"
	"slices"
	"time"

	"github.com/poiesic/tributary/core"
	"github.com/poiesic/tributary/resolve"
	"github.com/poiesic/tributary/source"
)

// Job names one backfill batch: a source and a date window under a
// caller-chosen batch id. The id is the resume key; running the same id
// twice never reprocesses a completed batch.
type Job struct {
	Source  core.Source `json:"source"`
	BatchID string      `json:"batch_id"`
	From    time.Time   `json:"from"`
	To      time.Time   `json:"to"`
}

// Validate rejects jobs that would claim a checkpoint they can never
// finish.
func (j Job) Validate() error {
	if !slices.Contains(core.Sources, j.Source) {
		return fmt.Errorf("%w: %q", source.ErrUnknownSource, j.Source)
	}
	if j.BatchID == "" {
		return ErrBatchIDRequired
	}
	if j.From.IsZero() || j.To.IsZero() || !j.From.Before(j.To) {
		return ErrInvalidWindow
	}
	return nil
}

// Result summarizes one batch run. Processed counts every fetched
// record, duplicates included; Ingested counts documents that reached
// the store. CacheStats is a snapshot of the shared resolver cache at
// batch end.
type Result struct {
	Source           core.Source   `json:"source"`
	BatchID          string        `json:"batch_id"`
	AlreadyCompleted bool          `json:"already_completed,omitempty"`
	Total            int           `json:"total"`
	Processed        int           `json:"processed"`
	Ingested         int           `json:"ingested"`
	Skipped          int           `json:"skipped"`
	Duplicates       int           `json:"duplicates"`
	FastPath         int           `json:"fast_path"`
	SlowPath         int           `json:"slow_path"`
	CacheStats       resolve.Stats `json:"cache_stats"`
	Errors           []string      `json:"errors,omitempty"`
}

// completedResult reconstructs the result of a batch that finished in
// an earlier run from its terminal checkpoint.
func completedResult(job Job, cp *core.Checkpoint) *Result {
	return &Result{
		Source:           job.Source,
		BatchID:          job.BatchID,
		AlreadyCompleted: true,
		Total:            cp.TotalItems,
		Processed:        cp.ProcessedItems,
		Ingested:         cp.IngestedItems,
	}
}
