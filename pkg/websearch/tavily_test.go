package websearch

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSearch(t *testing.T) {
	var gotReq searchRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))

		score := 0.91
		_ = json.NewEncoder(w).Encode(searchResponse{Results: []searchResult{
			{Title: "Scored", Content: "scored content", Score: &score},
			{Title: "Unscored", Content: "unscored content"},
		}})
	}))
	defer server.Close()

	client := NewTavilyClient("test-key", WithBaseURL(server.URL), WithMaxResults(2))

	results, err := client.Search(context.Background(), "what is pgvector")

	assert.NoError(t, err)
	assert.Equal(t, "test-key", gotReq.APIKey)
	assert.Equal(t, "what is pgvector", gotReq.Query)
	assert.Equal(t, 2, gotReq.MaxResults)

	assert.Len(t, results, 2)
	assert.Equal(t, "Scored", results[0].Title)
	assert.True(t, results[0].HasScore)
	assert.Equal(t, 0.91, results[0].Score)
	assert.False(t, results[1].HasScore)
}

func TestSearchHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewTavilyClient("test-key", WithBaseURL(server.URL))

	_, err := client.Search(context.Background(), "query")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestSearchMalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not json"))
	}))
	defer server.Close()

	client := NewTavilyClient("test-key", WithBaseURL(server.URL))

	_, err := client.Search(context.Background(), "query")

	assert.Error(t, err)
}

func TestSearchEmptyResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(searchResponse{})
	}))
	defer server.Close()

	client := NewTavilyClient("test-key", WithBaseURL(server.URL))

	results, err := client.Search(context.Background(), "query")

	assert.NoError(t, err)
	assert.Empty(t, results)
}
