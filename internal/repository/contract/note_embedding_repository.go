package contract

import (
	"context"
	"time"
)

// ScoredNote is a vector search hit joined with its note metadata.
// Similarity is pgvector cosine similarity, 1.0 = identical.
type ScoredNote struct {
	NoteId     int64
	Title      string
	Document   string
	Similarity float64
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type NoteEmbeddingRepository interface {
	// Upsert replaces the embedding row for a note (one row per note).
	Upsert(ctx context.Context, noteId int64, document string, embedding []float32) error
	DeleteByNoteId(ctx context.Context, noteId int64) error
	Count(ctx context.Context) (int64, error)
	// SearchSimilarWithScore returns the top matches ordered by similarity,
	// joined with note titles; soft-deleted notes and embeddings are skipped.
	SearchSimilarWithScore(ctx context.Context, embedding []float32, limit int) ([]*ScoredNote, error)
}
