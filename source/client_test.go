package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/tributary/retry"
)

// fastRetry keeps client tests short.
func fastRetry() retry.Config {
	cfg := retry.DefaultConfig()
	cfg.BaseDelay = time.Millisecond
	cfg.MaxDelay = 5 * time.Millisecond
	return cfg
}

func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	client, err := NewClient(ClientConfig{
		BaseURL:   baseURL,
		Token:     "test-token",
		RateLimit: 1000,
		RateBurst: 100,
		Retry:     fastRetry(),
	})
	require.NoError(t, err)
	return client
}

func TestNewClient_RequiresBaseURL(t *testing.T) {
	_, err := NewClient(ClientConfig{})
	assert.ErrorIs(t, err, ErrBaseURLRequired)
}

func TestClient_GetJSON(t *testing.T) {
	var gotAuth, gotAccept string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotAccept = r.Header.Get("Accept")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"name":"alpha","count":3}`))
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)

	var out struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}
	err := client.GetJSON(context.Background(), "/api/v1/thing", nil, &out)
	require.NoError(t, err)
	assert.Equal(t, "alpha", out.Name)
	assert.Equal(t, 3, out.Count)
	assert.Equal(t, "Bearer test-token", gotAuth)
	assert.Equal(t, "application/json", gotAccept)
}

func TestClient_GetJSON_HTTPError(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		http.Error(w, "no such thing", http.StatusNotFound)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)

	err := client.GetJSON(context.Background(), "/api/v1/thing", nil, nil)
	require.Error(t, err)

	var httpErr *retry.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusNotFound, httpErr.StatusCode)
	assert.Equal(t, int32(1), hits.Load(), "client errors must not be retried")
}

func TestClient_GetJSON_RetriesServerErrors(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) < 3 {
			http.Error(w, "overloaded", http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)

	var out struct {
		OK bool `json:"ok"`
	}
	err := client.GetJSON(context.Background(), "/status", nil, &out)
	require.NoError(t, err)
	assert.True(t, out.OK)
	assert.Equal(t, int32(3), hits.Load())
}

func TestClient_GetJSON_DecodeError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>not json</html>"))
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)

	var out map[string]any
	err := client.GetJSON(context.Background(), "/", nil, &out)
	assert.ErrorIs(t, err, ErrDecodeResponse)
}

func TestClient_RateLimiterSpacesCalls(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	client, err := NewClient(ClientConfig{
		BaseURL:   srv.URL,
		RateLimit: 50, // 20ms between calls
		RateBurst: 1,
		Retry:     fastRetry(),
	})
	require.NoError(t, err)

	start := time.Now()
	for range 3 {
		require.NoError(t, client.GetJSON(context.Background(), "/", nil, nil))
	}
	// First call is free, the next two wait ~20ms each.
	assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)
}
