package entity

import (
	"time"
)

type NoteEmbedding struct {
	Id        int64
	NoteId    int64
	Document  string
	Embedding []float32
	CreatedAt time.Time
	UpdatedAt *time.Time
}
