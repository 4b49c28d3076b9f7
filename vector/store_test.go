package vector

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/poiesic/tributary/core"
)

func filterDoc() *core.Document {
	return &core.Document{
		ID:     "tracker:0000000000000001",
		Source: core.SourceTracker,
		Kind:   core.KindIssue,
		Metadata: core.DocumentMetadata{
			NaturalKey: "SUBS-482",
			Project:    "SUBS",
			Timestamp:  time.Date(2024, 11, 1, 12, 0, 0, 0, time.UTC),
		},
	}
}

func TestFilter_Matches(t *testing.T) {
	doc := filterDoc()
	ts := doc.Metadata.Timestamp

	tests := []struct {
		name   string
		filter Filter
		want   bool
	}{
		{"empty filter matches", Filter{}, true},
		{"source match", Filter{Source: core.SourceTracker}, true},
		{"source mismatch", Filter{Source: core.SourceWiki}, false},
		{"kind listed", Filter{Kinds: []core.Kind{core.KindWorklog, core.KindIssue}}, true},
		{"kind not listed", Filter{Kinds: []core.Kind{core.KindTranscript}}, false},
		{"project match", Filter{Project: "SUBS"}, true},
		{"project mismatch", Filter{Project: "BILL"}, false},
		{"inside time range", Filter{Since: ts.Add(-time.Hour), Until: ts.Add(time.Hour)}, true},
		{"before since", Filter{Since: ts.Add(time.Minute)}, false},
		{"after until", Filter{Until: ts.Add(-time.Minute)}, false},
		{"bounds are inclusive", Filter{Since: ts, Until: ts}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.filter.Matches(doc))
		})
	}
}

func TestFilter_AccessControl(t *testing.T) {
	restricted := filterDoc()
	restricted.Kind = core.KindTranscript
	restricted.Metadata.AccessList = []string{"dana@example.com", "kim@example.com"}

	public := filterDoc()
	public.Kind = core.KindTranscript
	public.Metadata.Public = true

	open := filterDoc() // no access metadata at all

	tests := []struct {
		name      string
		doc       *core.Document
		principal string
		want      bool
	}{
		{"listed principal reads restricted", restricted, "dana@example.com", true},
		{"unlisted principal blocked", restricted, "mallory@example.com", false},
		{"anyone reads public", public, "mallory@example.com", true},
		{"anyone reads unrestricted", open, "mallory@example.com", true},
		{"no principal skips checks", restricted, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Filter{AccessibleBy: tt.principal}.Matches(tt.doc)
			assert.Equal(t, tt.want, got)
		})
	}
}
