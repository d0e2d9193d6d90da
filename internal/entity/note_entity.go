package entity

import (
	"time"
)

// Note ids are 64-bit serials rather than uuids: evidence items reuse the
// note id as their source id, and web evidence occupies the negative range.
type Note struct {
	Id        int64
	Title     string
	Content   string
	Tags      string
	Category  string
	CreatedAt time.Time
	UpdatedAt *time.Time
	DeletedAt *time.Time
	IsDeleted bool
}
