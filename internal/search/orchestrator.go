// Package search adapts the pgvector note index into the rag.EvidenceSource
// contract: embed the query, run cosine similarity search, expose raw
// distances for the scorer.
package search

import (
	"context"
	"fmt"
	"log"

	"ai-notes-rag-be/internal/repository/contract"
	"ai-notes-rag-be/pkg/embedding"
	"ai-notes-rag-be/pkg/rag"
)

type Orchestrator struct {
	embedder   embedding.Provider
	embeddings contract.NoteEmbeddingRepository
	logger     *log.Logger
}

var _ rag.EvidenceSource = (*Orchestrator)(nil)

func NewOrchestrator(embedder embedding.Provider, embeddings contract.NoteEmbeddingRepository, logger *log.Logger) *Orchestrator {
	return &Orchestrator{
		embedder:   embedder,
		embeddings: embeddings,
		logger:     logger,
	}
}

// Query embeds the text and returns the top matches in similarity order.
// Distance handed to the scorer is cosine distance (1 - similarity).
func (o *Orchestrator) Query(ctx context.Context, text string, limit int) ([]rag.RawEvidence, error) {
	vector, err := o.embedder.Generate(ctx, text, embedding.TaskRetrievalQuery)
	if err != nil {
		return nil, fmt.Errorf("embedding generation failed: %w", err)
	}

	scored, err := o.embeddings.SearchSimilarWithScore(ctx, vector, limit)
	if err != nil {
		return nil, fmt.Errorf("vector search failed: %w", err)
	}
	o.logger.Printf("[SEARCH] %d raw matches for query", len(scored))

	results := make([]rag.RawEvidence, 0, len(scored))
	for _, s := range scored {
		created := s.CreatedAt
		updated := s.UpdatedAt
		results = append(results, rag.RawEvidence{
			ID:        s.NoteId,
			Title:     s.Title,
			Text:      s.Document,
			Distance:  1 - s.Similarity,
			CreatedAt: &created,
			UpdatedAt: &updated,
		})
	}
	return results, nil
}
