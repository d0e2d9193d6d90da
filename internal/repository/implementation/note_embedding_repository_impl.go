package implementation

import (
	"context"
	"errors"
	"time"

	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"

	"ai-notes-rag-be/internal/model"
	"ai-notes-rag-be/internal/repository/contract"
)

type NoteEmbeddingRepositoryImpl struct {
	db *gorm.DB
}

func NewNoteEmbeddingRepository(db *gorm.DB) contract.NoteEmbeddingRepository {
	return &NoteEmbeddingRepositoryImpl{db: db}
}

func (r *NoteEmbeddingRepositoryImpl) Upsert(ctx context.Context, noteId int64, document string, embedding []float32) error {
	vec := pgvector.NewVector(embedding)

	var existing model.NoteEmbedding
	err := r.db.WithContext(ctx).Where("note_id = ?", noteId).First(&existing).Error
	switch {
	case err == nil:
		existing.Document = document
		existing.EmbeddingValue = vec
		return r.db.WithContext(ctx).Save(&existing).Error
	case errors.Is(err, gorm.ErrRecordNotFound):
		return r.db.WithContext(ctx).Create(&model.NoteEmbedding{
			NoteId:         noteId,
			Document:       document,
			EmbeddingValue: vec,
		}).Error
	default:
		return err
	}
}

func (r *NoteEmbeddingRepositoryImpl) DeleteByNoteId(ctx context.Context, noteId int64) error {
	return r.db.WithContext(ctx).Where("note_id = ?", noteId).Delete(&model.NoteEmbedding{}).Error
}

func (r *NoteEmbeddingRepositoryImpl) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.NoteEmbedding{}).Count(&count).Error
	return count, err
}

// SearchSimilarWithScore orders by pgvector cosine distance and joins note
// titles. Cosine distance is 1 - cosine_similarity, so similarity is
// computed as 1 - (embedding_value <=> query).
func (r *NoteEmbeddingRepositoryImpl) SearchSimilarWithScore(ctx context.Context, embedding []float32, limit int) ([]*contract.ScoredNote, error) {
	if limit <= 0 {
		limit = 5
	}

	type row struct {
		NoteId     int64
		Title      string
		Document   string
		Similarity float64
		CreatedAt  time.Time
		UpdatedAt  time.Time
	}
	var rows []row

	queryVector := pgvector.NewVector(embedding)

	err := r.db.WithContext(ctx).
		Table("note_embeddings").
		Select("note_embeddings.note_id, notes.title, note_embeddings.document, 1 - (embedding_value <=> ?) as similarity, notes.created_at, notes.updated_at", queryVector).
		Joins("JOIN notes ON notes.id = note_embeddings.note_id").
		Where("note_embeddings.deleted_at IS NULL").
		Where("notes.deleted_at IS NULL").
		Order("similarity DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	scored := make([]*contract.ScoredNote, len(rows))
	for i, res := range rows {
		scored[i] = &contract.ScoredNote{
			NoteId:     res.NoteId,
			Title:      res.Title,
			Document:   res.Document,
			Similarity: res.Similarity,
			CreatedAt:  res.CreatedAt,
			UpdatedAt:  res.UpdatedAt,
		}
	}
	return scored, nil
}
