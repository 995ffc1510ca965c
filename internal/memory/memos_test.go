package memory

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func memosWithServer(t *testing.T, handler http.HandlerFunc) *MemOSClient {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)
	return NewMemOSClient(ts.URL, "secret-key", 30)
}

func TestSaveMemory(t *testing.T) {
	client := memosWithServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/memories", r.URL.Path)
		assert.Equal(t, "Bearer secret-key", r.Header.Get("Authorization"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "u1", body["user_id"])
		assert.Equal(t, "likes tea", body["content"])
		assert.Equal(t, ScopeUser, body["scope"])
		assert.Equal(t, TypePlaintext, body["memory_type"])
		assert.EqualValues(t, 30*24*3600, body["ttl"])

		json.NewEncoder(w).Encode(map[string]string{"memory_id": "mem-42"})
	})

	id, err := client.SaveMemory(context.Background(), "u1", "likes tea", "", []string{"preference"})
	require.NoError(t, err)
	assert.Equal(t, "mem-42", id)
}

func TestSearchMemories(t *testing.T) {
	client := memosWithServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/memories/search", r.URL.Path)
		assert.Equal(t, "u1", r.URL.Query().Get("user_id"))
		assert.Equal(t, "tea", r.URL.Query().Get("query"))
		assert.Equal(t, "5", r.URL.Query().Get("limit"))

		json.NewEncoder(w).Encode(map[string]any{
			"memories": []Memory{
				{ID: "m1", UserID: "u1", Content: "likes tea", Scope: ScopeUser},
				{ID: "m2", UserID: "u1", Content: "lives in Beijing", Scope: ScopeUser},
			},
		})
	})

	memories, err := client.SearchMemories(context.Background(), "u1", "tea", 5)
	require.NoError(t, err)
	require.Len(t, memories, 2)
	assert.Equal(t, "likes tea", memories[0].Content)
}

func TestDeleteMemory(t *testing.T) {
	client := memosWithServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/api/v1/memories/mem-42", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	})

	require.NoError(t, client.DeleteMemory(context.Background(), "mem-42"))
}

func TestMemOSErrorStatusSurfaces(t *testing.T) {
	client := memosWithServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	})

	_, err := client.SaveMemory(context.Background(), "u1", "x", ScopeUser, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
	assert.Contains(t, err.Error(), "quota exceeded")
}
