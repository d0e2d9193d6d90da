package dto

import (
	"time"
)

type ChatRequest struct {
	Message        string `json:"message" validate:"required"`
	ConversationID string `json:"conversation_id,omitempty"`
	// IncludeSources defaults to true when the field is omitted.
	IncludeSources *bool `json:"include_sources,omitempty"`
}

// WantsSources reports whether the response should carry source items.
func (r *ChatRequest) WantsSources() bool {
	return r.IncludeSources == nil || *r.IncludeSources
}

type SourceDTO struct {
	SourceID  int64      `json:"source_id"`
	Title     string     `json:"title"`
	Snippet   string     `json:"snippet"`
	Relevance float64    `json:"relevance"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

type ChatResponse struct {
	Response       string      `json:"response"`
	ConversationID string      `json:"conversation_id"`
	Sources        []SourceDTO `json:"sources,omitempty"`
	Timestamp      time.Time   `json:"timestamp"`
	TokensUsed     int         `json:"tokens_used"`
	Unverified     bool        `json:"unverified,omitempty"` // set when the answer could not be fully verified against sources
}

type MessageDTO struct {
	Role      string      `json:"role"`
	Content   string      `json:"content"`
	Timestamp time.Time   `json:"timestamp"`
	Sources   []SourceDTO `json:"sources,omitempty"`
}

type HistoryResponse struct {
	ConversationID string       `json:"conversation_id"`
	Messages       []MessageDTO `json:"messages"`
}

type ConversationStatDTO struct {
	ConversationID string    `json:"conversation_id"`
	MessageCount   int       `json:"message_count"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type StatsResponse struct {
	ActiveConversations int                   `json:"active_conversations"`
	TotalMessages       int                   `json:"total_messages"`
	Mode                string                `json:"mode"`
	Model               string                `json:"model"`
	ContextWindow       int                   `json:"context_window"`
	Conversations       []ConversationStatDTO `json:"conversations"`
}
