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


package dedup

import (
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/poiesic/tributary/core"
)

const (
	// defaultWindow is the timestamp proximity for fuzzy matching.
	defaultWindow = 5 * time.Minute
	// defaultDurationTolerance is the allowed duration spread as a
	// fraction of the pair's average duration.
	defaultDurationTolerance = 0.10

	// Completeness weights: content dominates, participants are
	// secondary, age only breaks ties.
	contentWeight     = 1.0
	participantWeight = 50.0
	ageWeight         = 0.001
)

// Phase names which rule collapsed a group.
type Phase string

const (
	PhaseExact Phase = "exact"
	PhaseFuzzy Phase = "fuzzy"
)

// Group records one collapse decision.
type Group struct {
	Phase      Phase    `json:"phase"`
	SurvivorID string   `json:"survivor_id"`
	DroppedIDs []string `json:"dropped_ids"`
}

// Engine collapses duplicate transcripts. Meeting feeds routinely carry
// the same call twice (re-exports, bot rejoins, overlapping page
// windows), under the same raw id or under a near-identical copy.
//
// Fuzzy matching is pairwise over one sync window, O(n^2) in the window
// size. Windows are bounded by the chunked backfill, so this holds; if
// windows ever grow unbounded the comparison needs blocking by
// normalized title first.
type Engine struct {
	window      time.Duration
	durationTol float64
	logger      *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine) error

// WithWindow sets the fuzzy-match timestamp proximity.
// Default is 5 minutes.
func WithWindow(window time.Duration) Option {
	return func(e *Engine) error {
		if window <= 0 {
			return ErrInvalidWindow
		}
		e.window = window
		return nil
	}
}

// WithDurationTolerance sets the allowed duration spread as a fraction
// of the pair average. Default is 0.10.
func WithDurationTolerance(tol float64) Option {
	return func(e *Engine) error {
		if tol < 0 || tol >= 1 {
			return ErrInvalidTolerance
		}
		e.durationTol = tol
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) error {
		if logger == nil {
			logger = slog.Default()
		}
		e.logger = logger
		return nil
	}
}

// NewEngine creates a deduplication engine.
func NewEngine(opts ...Option) (*Engine, error) {
	e := &Engine{
		window:      defaultWindow,
		durationTol: defaultDurationTolerance,
		logger:      slog.Default().With("component", "dedup"),
	}
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}
	return e, nil
}

// Collapse removes duplicate transcripts from records and reports the
// collapsed groups. Non-transcript records pass through untouched, in
// order; collapsing an already-collapsed set is a no-op.
func (e *Engine) Collapse(records []core.Record) ([]core.Record, []Group) {
	// Phase 1: exact raw-id duplicates. First occurrence survives.
	var transcripts []core.Transcript
	occurrences := make(map[string]int)
	for _, rec := range records {
		t, ok := rec.(core.Transcript)
		if !ok {
			continue
		}
		occurrences[t.ID]++
		if occurrences[t.ID] == 1 {
			transcripts = append(transcripts, t)
		}
	}

	var groups []Group
	for _, t := range transcripts {
		if n := occurrences[t.ID]; n > 1 {
			repeats := make([]string, n-1)
			for i := range repeats {
				repeats[i] = t.ID
			}
			groups = append(groups, Group{Phase: PhaseExact, SurvivorID: t.ID, DroppedIDs: repeats})
		}
	}

	dropped := make(map[string]bool)

	// Phase 2: fuzzy similarity over the exact survivors, grouped
	// transitively.
	uf := newUnionFind(len(transcripts))
	for i := 0; i < len(transcripts); i++ {
		for j := i + 1; j < len(transcripts); j++ {
			if e.similar(transcripts[i], transcripts[j]) {
				uf.union(i, j)
			}
		}
	}

	members := make(map[int][]int)
	for i := range transcripts {
		root := uf.find(i)
		members[root] = append(members[root], i)
	}

	for _, idxs := range members {
		if len(idxs) < 2 {
			continue
		}
		survivor := idxs[0]
		best := completeness(transcripts[survivor])
		for _, idx := range idxs[1:] {
			if score := completeness(transcripts[idx]); score > best {
				best = score
				survivor = idx
			}
		}

		group := Group{Phase: PhaseFuzzy, SurvivorID: transcripts[survivor].ID}
		for _, idx := range idxs {
			if idx == survivor {
				continue
			}
			dropped[transcripts[idx].ID] = true
			group.DroppedIDs = append(group.DroppedIDs, transcripts[idx].ID)
		}
		groups = append(groups, group)

		e.logger.Debug("collapsed duplicate transcripts",
			"survivor", group.SurvivorID, "dropped", len(group.DroppedIDs))
	}

	survivors := make([]core.Record, 0, len(records))
	firstSeen := make(map[string]bool)
	for _, rec := range records {
		t, ok := rec.(core.Transcript)
		if !ok {
			survivors = append(survivors, rec)
			continue
		}
		if dropped[t.ID] || firstSeen[t.ID] {
			continue
		}
		firstSeen[t.ID] = true
		survivors = append(survivors, rec)
	}
	return survivors, groups
}

// similar reports whether two transcripts describe the same call:
// matching normalized titles AND timestamps within the window AND
// durations within tolerance of their average. Two absent durations
// match; a one-sided absence does not.
func (e *Engine) similar(a, b core.Transcript) bool {
	if normalizeTitle(a.Title) != normalizeTitle(b.Title) {
		return false
	}

	gap := a.Started.Sub(b.Started)
	if gap < 0 {
		gap = -gap
	}
	if gap > e.window {
		return false
	}

	switch {
	case a.DurationSec == 0 && b.DurationSec == 0:
		return true
	case a.DurationSec == 0 || b.DurationSec == 0:
		return false
	}
	avg := float64(a.DurationSec+b.DurationSec) / 2
	return math.Abs(float64(a.DurationSec-b.DurationSec)) <= e.durationTol*avg
}

// completeness scores a transcript for survivor selection.
func completeness(t core.Transcript) float64 {
	ageDays := time.Since(t.Started).Hours() / 24
	return float64(t.Segments)*contentWeight +
		float64(len(t.Attendees))*participantWeight +
		ageDays*ageWeight
}

// normalizeTitle lowercases and collapses runs of whitespace.
func normalizeTitle(title string) string {
	return strings.Join(strings.Fields(strings.ToLower(title)), " ")
}

// unionFind is a path-compressing disjoint set over [0, n).
type unionFind struct {
	parent []int
}

func newUnionFind(n int) *unionFind {
	parent := make([]int, n)
	for i := range parent {
		parent[i] = i
	}
	return &unionFind{parent: parent}
}

func (u *unionFind) find(i int) int {
	for u.parent[i] != i {
		u.parent[i] = u.parent[u.parent[i]]
		i = u.parent[i]
	}
	return i
}

func (u *unionFind) union(i, j int) {
	ri, rj := u.find(i), u.find(j)
	if ri != rj {
		u.parent[rj] = ri
	}
}
