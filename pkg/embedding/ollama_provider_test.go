package embedding

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOllamaGenerate(t *testing.T) {
	var gotReq ollamaEmbeddingRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/embeddings", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))

		_ = json.NewEncoder(w).Encode(ollamaEmbeddingResponse{
			Embedding: []float64{0.1, 0.2, 0.3},
		})
	}))
	defer server.Close()

	p := NewOllamaProvider(server.URL, "nomic-embed-text")

	values, err := p.Generate(context.Background(), "some note text", TaskRetrievalDocument)

	assert.NoError(t, err)
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, values)
	assert.Equal(t, "nomic-embed-text", gotReq.Model)
	assert.Equal(t, "some note text", gotReq.Prompt)
}

func TestOllamaGenerateEmptyEmbedding(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(ollamaEmbeddingResponse{})
	}))
	defer server.Close()

	p := NewOllamaProvider(server.URL, "nomic-embed-text")

	_, err := p.Generate(context.Background(), "text", TaskRetrievalQuery)

	assert.Error(t, err)
}

func TestOllamaGenerateServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	p := NewOllamaProvider(server.URL, "nomic-embed-text")

	_, err := p.Generate(context.Background(), "text", TaskRetrievalQuery)

	assert.Error(t, err)
}
