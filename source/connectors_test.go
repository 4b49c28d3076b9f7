package source

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/tributary/core"
)

func TestMeetings_Fetch(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v2/transcripts", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"total": 1,
			"transcripts": []wireTranscript{{
				ID:           "mt-881",
				Title:        "SUBS-482 incident review",
				StartedAt:    time.Date(2024, 11, 1, 15, 0, 0, 0, time.UTC),
				DurationSec:  1800,
				SegmentCount: 42,
				Attendees:    []string{"dana@example.com", "ravi@example.com"},
				SharedWith:   []string{"lee@example.com"},
				Public:       false,
				Text:         "We walked through the retry storm timeline...",
			}},
		})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	meetings := NewMeetings(newTestClient(t, srv.URL))

	it, err := meetings.Fetch(context.Background(),
		time.Date(2024, 11, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 11, 2, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	defer it.Close()

	require.True(t, it.Next())
	tr, ok := it.Record().(core.Transcript)
	require.True(t, ok)
	assert.Equal(t, "mt-881", tr.ID)
	assert.Equal(t, "SUBS-482 incident review", tr.Title)
	assert.Equal(t, 1800, tr.DurationSec)
	assert.Equal(t, 42, tr.Segments)
	assert.Equal(t, []string{"dana@example.com", "ravi@example.com"}, tr.Attendees)
	assert.Equal(t, []string{"lee@example.com"}, tr.SharedWith)
	assert.False(t, tr.Public)

	assert.False(t, it.Next())
	require.NoError(t, it.Err())
}

func TestMeetings_LookupIdentity(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v2/meetings/mt-881", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"linkedTicket": "SUBS-482"})
	})
	mux.HandleFunc("/api/v2/meetings/", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unknown meeting", http.StatusNotFound)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	meetings := NewMeetings(newTestClient(t, srv.URL))
	ctx := context.Background()

	key, err := meetings.LookupIdentity(ctx, core.IdentityMeeting, "mt-881")
	require.NoError(t, err)
	assert.Equal(t, "SUBS-482", key)

	key, err = meetings.LookupIdentity(ctx, core.IdentityMeeting, "mt-000")
	require.NoError(t, err)
	assert.Empty(t, key)

	_, err = meetings.LookupIdentity(ctx, core.IdentityIssueKey, "10000")
	assert.ErrorIs(t, err, ErrLookupUnsupported)
}

func TestWiki_FetchScopesSpace(t *testing.T) {
	var gotSpace string
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/pages", func(w http.ResponseWriter, r *http.Request) {
		gotSpace = r.URL.Query().Get("space")
		json.NewEncoder(w).Encode(map[string]any{
			"total": 1,
			"pages": []wirePage{{
				ID: "pg-17", Slug: "billing-runbook", Space: "ENG",
				Title: "Billing runbook", Content: "When invoices stall...",
				Author: "lee", Updated: time.Date(2024, 11, 1, 9, 0, 0, 0, time.UTC),
			}},
		})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	wiki := NewWiki(newTestClient(t, srv.URL), "ENG")

	it, err := wiki.Fetch(context.Background(),
		time.Date(2024, 11, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 11, 2, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	defer it.Close()

	require.True(t, it.Next())
	page, ok := it.Record().(core.Page)
	require.True(t, ok)
	assert.Equal(t, "billing-runbook", page.Slug)
	assert.Equal(t, "ENG", gotSpace)
	require.NoError(t, it.Err())
}

func TestChat_FetchWalksChannels(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/conversations/history", func(w http.ResponseWriter, r *http.Request) {
		channel := r.URL.Query().Get("channel")
		json.NewEncoder(w).Encode(map[string]any{
			"total": 1,
			"messages": []wireMessage{{
				ID: channel + "-msg-1", Author: "ravi",
				Text:   "Deploy for " + channel + " is done",
				Posted: time.Date(2024, 11, 1, 12, 0, 0, 0, time.UTC),
			}},
		})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	chat := NewChat(newTestClient(t, srv.URL), []string{"eng-billing", "eng-infra"})

	it, err := chat.Fetch(context.Background(),
		time.Date(2024, 11, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 11, 2, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	defer it.Close()

	var channels []string
	for it.Next() {
		msg, ok := it.Record().(core.Message)
		require.True(t, ok)
		channels = append(channels, msg.Channel)
	}
	require.NoError(t, it.Err())
	assert.Equal(t, []string{"eng-billing", "eng-infra"}, channels)
}

func TestIterator_PageFetchError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad request", http.StatusBadRequest)
	}))
	defer srv.Close()

	tracker := NewTracker(newTestClient(t, srv.URL))

	it := tracker.Issues(context.Background(), time.Now().Add(-time.Hour), time.Now())
	defer it.Close()

	assert.False(t, it.Next())
	assert.Error(t, it.Err())
}

func TestFromRecords(t *testing.T) {
	records := []core.Record{
		core.Issue{ID: "1", Key: "SUBS-1"},
		core.Message{ID: "2", Channel: "eng"},
	}

	it := FromRecords(records...)
	var got []core.Record
	for it.Next() {
		got = append(got, it.Record())
	}
	require.NoError(t, it.Err())
	assert.Equal(t, records, got)
	require.NoError(t, it.Close())
}

func TestRegistry_Connector(t *testing.T) {
	tracker := NewTracker(&Client{})
	reg := Registry{core.SourceTracker: tracker}

	got, err := reg.Connector(core.SourceTracker)
	require.NoError(t, err)
	assert.Same(t, tracker, got)

	_, err = reg.Connector(core.SourceChat)
	assert.ErrorIs(t, err, ErrUnknownSource)
}

func TestRouter_Dispatch(t *testing.T) {
	router := &Router{}

	_, err := router.LookupIdentity(context.Background(), core.IdentityIssueKey, "x")
	assert.ErrorIs(t, err, ErrLookupUnsupported, "no tracker wired")

	_, err = router.LookupIdentity(context.Background(), core.IdentityMeeting, "x")
	assert.ErrorIs(t, err, ErrLookupUnsupported, "no meetings wired")

	_, err = router.LookupIdentity(context.Background(), core.IdentityKind("bogus"), "x")
	assert.ErrorIs(t, err, ErrLookupUnsupported)
}
