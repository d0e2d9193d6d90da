package contract

import (
	"context"

	"ai-notes-rag-be/internal/entity"
)

type NoteRepository interface {
	Create(ctx context.Context, note *entity.Note) error
	Update(ctx context.Context, note *entity.Note) error
	Delete(ctx context.Context, id int64) error
	FindByID(ctx context.Context, id int64) (*entity.Note, error)
	FindAll(ctx context.Context) ([]*entity.Note, error)
	Count(ctx context.Context) (int64, error)
}
