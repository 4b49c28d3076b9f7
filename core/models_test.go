package core

import (
	"testing"
	"time"
)

func TestIDFromContent(t *testing.T) {
	id1 := IDFromContent("tracker:SUBS-482")
	id2 := IDFromContent("tracker:SUBS-482")
	id3 := IDFromContent("tracker:SUBS-483")

	if id1 != id2 {
		t.Errorf("identical content produced different IDs: %d != %d", id1, id2)
	}
	if id1 == id3 {
		t.Errorf("different content produced the same ID: %d", id1)
	}
	if id1 == 0 {
		t.Error("ID should not be zero for non-empty content")
	}
}

func TestDocumentID(t *testing.T) {
	a := DocumentID(SourceTracker, "SUBS-482")
	b := DocumentID(SourceTracker, "SUBS-482")
	c := DocumentID(SourceTracker, "SUBS-483")
	d := DocumentID(SourceMeetings, "SUBS-482")

	if a != b {
		t.Errorf("same (source, key) produced different ids: %s != %s", a, b)
	}
	if a == c {
		t.Errorf("different keys produced the same id: %s", a)
	}
	if a == d {
		t.Errorf("different sources produced the same id: %s", a)
	}
	if len(a) != len("tracker:")+16 {
		t.Errorf("unexpected id shape: %s", a)
	}
}

func TestSourceOf(t *testing.T) {
	tests := []struct {
		kind Kind
		want Source
	}{
		{KindIssue, SourceTracker},
		{KindWorklog, SourceTracker},
		{KindTranscript, SourceMeetings},
		{KindPage, SourceWiki},
		{KindMessage, SourceChat},
		{Kind("bogus"), Source("")},
	}

	for _, tt := range tests {
		if got := SourceOf(tt.kind); got != tt.want {
			t.Errorf("SourceOf(%q) = %q, want %q", tt.kind, got, tt.want)
		}
	}
}

func TestRecordAccessors(t *testing.T) {
	now := time.Now().Add(-time.Hour)
	records := []Record{
		Issue{ID: "10001", Key: "SUBS-482", Updated: now},
		Worklog{ID: "20001", IssueID: "10001", Started: now},
		Transcript{ID: "m-1", Title: "Standup", Started: now},
		Page{ID: "p-1", Slug: "runbooks/oncall", Updated: now},
		Message{ID: "1700000000.0001", Channel: "C042", Posted: now},
	}
	wantKinds := []Kind{KindIssue, KindWorklog, KindTranscript, KindPage, KindMessage}

	for i, record := range records {
		if record.RecordKind() != wantKinds[i] {
			t.Errorf("record %d: kind = %q, want %q", i, record.RecordKind(), wantKinds[i])
		}
		if record.RecordID() == "" {
			t.Errorf("record %d: empty id", i)
		}
		if !record.RecordTime().Equal(now) {
			t.Errorf("record %d: timestamp mismatch", i)
		}
	}
}

func TestIdentityUnresolved(t *testing.T) {
	resolved := Identity{Kind: IdentityIssueKey, RawID: "10001", ResolvedKey: "SUBS-482", Path: PathAuthoritative}
	if resolved.Unresolved() {
		t.Error("identity with resolved key reported as unresolved")
	}

	sentinel := Identity{Kind: IdentityIssueKey, RawID: "10002", Path: PathNone}
	if !sentinel.Unresolved() {
		t.Error("sentinel not reported as unresolved")
	}
}

func TestCheckpointTerminal(t *testing.T) {
	cp := &Checkpoint{Source: SourceTracker, BatchID: "b-1", Status: StatusRunning}
	if cp.Terminal() {
		t.Error("running checkpoint reported terminal")
	}
	cp.Status = StatusCompleted
	if !cp.Terminal() {
		t.Error("completed checkpoint not terminal")
	}
	cp.Status = StatusFailed
	if cp.Terminal() {
		t.Error("failed checkpoint reported terminal; retries must be possible")
	}
}

func TestSyncStatusStale(t *testing.T) {
	fresh := &SyncStatus{Source: SourceChat, LastSyncAt: time.Now().Add(-time.Hour)}
	if fresh.Stale(24 * time.Hour) {
		t.Error("hour-old sync reported stale")
	}

	old := &SyncStatus{Source: SourceChat, LastSyncAt: time.Now().Add(-25 * time.Hour)}
	if !old.Stale(24 * time.Hour) {
		t.Error("day-old sync not reported stale")
	}
}
