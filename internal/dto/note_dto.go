package dto

import (
	"time"
)

type CreateNoteRequest struct {
	Title    string `json:"title" validate:"required"`
	Content  string `json:"content" validate:"required"`
	Tags     string `json:"tags"`
	Category string `json:"category"`
}

type CreateNoteResponse struct {
	Id int64 `json:"id"`
}

type ShowNoteResponse struct {
	Id        int64      `json:"id"`
	Title     string     `json:"title"`
	Content   string     `json:"content"`
	Tags      string     `json:"tags"`
	Category  string     `json:"category"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`
}

type UpdateNoteRequest struct {
	Id       int64
	Title    string `json:"title" validate:"required"`
	Content  string `json:"content" validate:"required"`
	Tags     string `json:"tags"`
	Category string `json:"category"`
}

type UpdateNoteResponse struct {
	Id int64 `json:"id"`
}

type ListNotesResponse struct {
	Notes []ShowNoteResponse `json:"notes"`
	Total int64              `json:"total"`
}

// PublishEmbedNoteMessage is the payload of the embed-note topic consumed by
// the background embedding worker.
type PublishEmbedNoteMessage struct {
	NoteId int64 `json:"note_id"`
}
