package dedup

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/tributary/core"
)

var base = time.Date(2024, 11, 1, 15, 0, 0, 0, time.UTC)

func newEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	e, err := NewEngine(opts...)
	require.NoError(t, err)
	return e
}

func transcript(id, title string, started time.Time, durationSec, segments int, attendees ...string) core.Transcript {
	return core.Transcript{
		ID:          id,
		Title:       title,
		Started:     started,
		DurationSec: durationSec,
		Segments:    segments,
		Attendees:   attendees,
	}
}

func ids(records []core.Record) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, r.RecordID())
	}
	return out
}

func TestCollapse_ExactKeepsFirst(t *testing.T) {
	e := newEngine(t)

	first := transcript("mt-1", "SUBS-482 incident review", base, 1800, 40, "dana")
	repeat := transcript("mt-1", "SUBS-482 incident review", base, 1800, 40, "dana")

	survivors, groups := e.Collapse([]core.Record{first, repeat})
	assert.Equal(t, []string{"mt-1"}, ids(survivors))
	require.Len(t, groups, 1)
	assert.Equal(t, PhaseExact, groups[0].Phase)
	assert.Equal(t, "mt-1", groups[0].SurvivorID)
}

func TestCollapse_FuzzyThreeToOne(t *testing.T) {
	e := newEngine(t)

	// Same call exported three times with cosmetic title drift. The
	// middle copy is the most complete.
	a := transcript("mt-1", "Weekly Billing Sync", base, 1800, 20, "dana")
	b := transcript("mt-2", "weekly  billing   sync", base.Add(2*time.Minute), 1860, 45, "dana", "ravi", "lee")
	c := transcript("mt-3", "WEEKLY BILLING SYNC", base.Add(4*time.Minute), 1740, 30, "dana", "ravi")

	survivors, groups := e.Collapse([]core.Record{a, b, c})
	assert.Equal(t, []string{"mt-2"}, ids(survivors), "the most complete copy survives")
	require.Len(t, groups, 1)
	assert.Equal(t, PhaseFuzzy, groups[0].Phase)
	assert.Equal(t, "mt-2", groups[0].SurvivorID)
	assert.ElementsMatch(t, []string{"mt-1", "mt-3"}, groups[0].DroppedIDs)
}

func TestCollapse_TimestampWindow(t *testing.T) {
	e := newEngine(t)

	a := transcript("mt-1", "Platform sync", base, 1800, 10)
	b := transcript("mt-2", "Platform sync", base.Add(6*time.Minute), 1800, 10)

	survivors, groups := e.Collapse([]core.Record{a, b})
	assert.Len(t, survivors, 2, "six minutes apart is a different call")
	assert.Empty(t, groups)
}

func TestCollapse_DurationRules(t *testing.T) {
	e := newEngine(t)

	t.Run("both absent match", func(t *testing.T) {
		a := transcript("mt-1", "Standup", base, 0, 10)
		b := transcript("mt-2", "Standup", base.Add(time.Minute), 0, 5)
		survivors, _ := e.Collapse([]core.Record{a, b})
		assert.Len(t, survivors, 1)
	})

	t.Run("one-sided absence does not", func(t *testing.T) {
		a := transcript("mt-1", "Standup", base, 900, 10)
		b := transcript("mt-2", "Standup", base.Add(time.Minute), 0, 5)
		survivors, _ := e.Collapse([]core.Record{a, b})
		assert.Len(t, survivors, 2)
	})

	t.Run("within ten percent of average", func(t *testing.T) {
		// avg 1890, spread 180 < 189.
		a := transcript("mt-1", "Standup", base, 1800, 10)
		b := transcript("mt-2", "Standup", base.Add(time.Minute), 1980, 5)
		survivors, _ := e.Collapse([]core.Record{a, b})
		assert.Len(t, survivors, 1)
	})

	t.Run("outside ten percent", func(t *testing.T) {
		a := transcript("mt-1", "Standup", base, 1800, 10)
		b := transcript("mt-2", "Standup", base.Add(time.Minute), 2400, 5)
		survivors, _ := e.Collapse([]core.Record{a, b})
		assert.Len(t, survivors, 2)
	})
}

func TestCollapse_TransitiveGrouping(t *testing.T) {
	e := newEngine(t)

	// a~b and b~c, but a and c are 8 minutes apart. The pairwise
	// relation still chains them into one group.
	a := transcript("mt-1", "Retro", base, 0, 10, "dana")
	b := transcript("mt-2", "Retro", base.Add(4*time.Minute), 0, 30, "dana", "ravi")
	c := transcript("mt-3", "Retro", base.Add(8*time.Minute), 0, 20, "dana")

	survivors, groups := e.Collapse([]core.Record{a, b, c})
	assert.Equal(t, []string{"mt-2"}, ids(survivors))
	require.Len(t, groups, 1)
	assert.ElementsMatch(t, []string{"mt-1", "mt-3"}, groups[0].DroppedIDs)
}

func TestCollapse_Idempotent(t *testing.T) {
	e := newEngine(t)

	records := []core.Record{
		transcript("mt-1", "Weekly sync", base, 1800, 20, "dana"),
		transcript("mt-2", "Weekly sync", base.Add(time.Minute), 1830, 45, "dana", "ravi"),
		transcript("mt-3", "Quarterly planning", base, 3600, 80, "dana", "ravi", "lee"),
		core.Issue{ID: "10001", Key: "SUBS-482"},
	}

	once, _ := e.Collapse(records)
	twice, groups := e.Collapse(once)
	assert.Equal(t, ids(once), ids(twice), "collapsing a collapsed set is a no-op")
	assert.Empty(t, groups)
}

func TestCollapse_NonTranscriptsPassThrough(t *testing.T) {
	e := newEngine(t)

	records := []core.Record{
		core.Issue{ID: "10001", Key: "SUBS-482"},
		transcript("mt-1", "Weekly sync", base, 0, 10),
		core.Message{ID: "m-1", Channel: "eng", Posted: base},
		transcript("mt-2", "Weekly sync", base.Add(time.Minute), 0, 25),
		core.Page{ID: "pg-1", Slug: "runbook"},
	}

	survivors, _ := e.Collapse(records)
	assert.Equal(t, []string{"10001", "m-1", "mt-2", "pg-1"}, ids(survivors),
		"non-transcripts keep their relative order")
}

func TestCollapse_AgeBreaksTies(t *testing.T) {
	e := newEngine(t)

	// Identical completeness; the older copy wins on the age term.
	younger := transcript("mt-new", "Design review", base.Add(time.Minute), 0, 10, "dana")
	older := transcript("mt-old", "Design review", base, 0, 10, "dana")

	survivors, _ := e.Collapse([]core.Record{younger, older})
	assert.Equal(t, []string{"mt-old"}, ids(survivors))
}

func TestNewEngine_Validation(t *testing.T) {
	_, err := NewEngine(WithWindow(0))
	assert.ErrorIs(t, err, ErrInvalidWindow)

	_, err = NewEngine(WithDurationTolerance(1.5))
	assert.ErrorIs(t, err, ErrInvalidTolerance)
}
