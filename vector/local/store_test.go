package local

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/tributary/core"
	badgerstore "github.com/poiesic/tributary/storage/badger"
	"github.com/poiesic/tributary/vector"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	backend, err := badgerstore.OpenBackend("", true)
	require.NoError(t, err)
	t.Cleanup(func() { _ = backend.Close() })

	store, err := New(backend)
	require.NoError(t, err)
	return store
}

func issueDoc(id string, embedding []float32) core.Document {
	return core.Document{
		ID:        id,
		Source:    core.SourceTracker,
		Kind:      core.KindIssue,
		Title:     "SUBS-482: renewal invoices duplicated",
		Content:   "Subscription renewals emit two invoices when the term rolls over.",
		Embedding: embedding,
		Metadata: core.DocumentMetadata{
			NaturalKey: "SUBS-482",
			Project:    "SUBS",
			Timestamp:  time.Date(2024, 11, 1, 12, 0, 0, 0, time.UTC),
		},
	}
}

func TestNew_RequiresBackend(t *testing.T) {
	_, err := New(nil)
	assert.ErrorIs(t, err, ErrBackendRequired)
}

func TestStore_UpsertAndGet(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	doc := issueDoc("tracker:aaa", []float32{1, 0, 0})
	doc.Metadata.Participants = []string{"dana@example.com"}
	doc.Metadata.Labels = []string{"epic:billing-v2"}
	require.NoError(t, store.Upsert(ctx, []core.Document{doc}))

	got, err := store.Get(ctx, "tracker:aaa")
	require.NoError(t, err)
	assert.Equal(t, doc.Title, got.Title)
	assert.Equal(t, doc.Content, got.Content)
	assert.Equal(t, doc.Embedding, got.Embedding)
	assert.Equal(t, doc.Metadata.NaturalKey, got.Metadata.NaturalKey)
	assert.Equal(t, doc.Metadata.Project, got.Metadata.Project)
	assert.Equal(t, doc.Metadata.Participants, got.Metadata.Participants)
	assert.Equal(t, doc.Metadata.Labels, got.Metadata.Labels)
	assert.True(t, got.Metadata.Timestamp.Equal(doc.Metadata.Timestamp))

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestStore_UpsertReplacesSameID(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	first := issueDoc("tracker:aaa", []float32{1, 0, 0})
	first.Content = "original content"
	require.NoError(t, store.Upsert(ctx, []core.Document{first}))

	second := issueDoc("tracker:aaa", []float32{0, 1, 0})
	second.Content = "revised content"
	require.NoError(t, store.Upsert(ctx, []core.Document{second}))

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	got, err := store.Get(ctx, "tracker:aaa")
	require.NoError(t, err)
	assert.Equal(t, "revised content", got.Content)
	assert.Equal(t, []float32{0, 1, 0}, got.Embedding)
}

func TestStore_GetMissing(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Get(context.Background(), "tracker:nope")
	assert.ErrorIs(t, err, vector.ErrNotFound)
}

func TestStore_QueryRanksByDotProduct(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	docs := []core.Document{
		issueDoc("tracker:exact", []float32{1, 0, 0}),
		issueDoc("tracker:close", []float32{0.8, 0.6, 0}),
		issueDoc("tracker:orthogonal", []float32{0, 1, 0}),
	}
	require.NoError(t, store.Upsert(ctx, docs))

	matches, err := store.Query(ctx, []float32{1, 0, 0}, vector.Filter{}, 10)
	require.NoError(t, err)
	require.Len(t, matches, 3)

	assert.Equal(t, "tracker:exact", matches[0].Document.ID)
	assert.Equal(t, "tracker:close", matches[1].Document.ID)
	assert.Equal(t, "tracker:orthogonal", matches[2].Document.ID)
	assert.InDelta(t, 1.0, matches[0].Score, 0.001)
	assert.InDelta(t, 0.8, matches[1].Score, 0.001)
	assert.InDelta(t, 0.0, matches[2].Score, 0.001)
}

func TestStore_QueryTopK(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	docs := []core.Document{
		issueDoc("tracker:a", []float32{1, 0, 0}),
		issueDoc("tracker:b", []float32{0.9, 0.1, 0}),
		issueDoc("tracker:c", []float32{0.8, 0.2, 0}),
	}
	require.NoError(t, store.Upsert(ctx, docs))

	matches, err := store.Query(ctx, []float32{1, 0, 0}, vector.Filter{}, 2)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, "tracker:a", matches[0].Document.ID)
}

func TestStore_QueryRequiresEmbedding(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Query(context.Background(), nil, vector.Filter{}, 10)
	assert.ErrorIs(t, err, vector.ErrEmbeddingRequired)
}

func TestStore_QuerySkipsUnembedded(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	docs := []core.Document{
		issueDoc("tracker:embedded", []float32{1, 0, 0}),
		issueDoc("tracker:bare", nil),
	}
	require.NoError(t, store.Upsert(ctx, docs))

	matches, err := store.Query(ctx, []float32{1, 0, 0}, vector.Filter{}, 10)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "tracker:embedded", matches[0].Document.ID)

	// Unembedded rows still count as stored documents.
	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestStore_QueryAppliesFilter(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	issue := issueDoc("tracker:issue", []float32{1, 0, 0})

	transcript := core.Document{
		ID:        "meetings:standup",
		Source:    core.SourceMeetings,
		Kind:      core.KindTranscript,
		Title:     "Billing standup",
		Embedding: []float32{1, 0, 0},
		Metadata: core.DocumentMetadata{
			NaturalKey: "SUBS-482",
			Timestamp:  time.Date(2024, 11, 3, 9, 0, 0, 0, time.UTC),
			AccessList: []string{"dana@example.com"},
		},
	}
	require.NoError(t, store.Upsert(ctx, []core.Document{issue, transcript}))

	matches, err := store.Query(ctx, []float32{1, 0, 0}, vector.Filter{Source: core.SourceMeetings}, 10)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "meetings:standup", matches[0].Document.ID)

	matches, err = store.Query(ctx, []float32{1, 0, 0}, vector.Filter{AccessibleBy: "mallory@example.com"}, 10)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "tracker:issue", matches[0].Document.ID)

	matches, err = store.Query(ctx, []float32{1, 0, 0}, vector.Filter{
		Until: time.Date(2024, 11, 2, 0, 0, 0, 0, time.UTC),
	}, 10)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "tracker:issue", matches[0].Document.ID)
}
