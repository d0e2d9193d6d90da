// Package store holds the in-memory conversation state of the chat core.
// Conversations are created lazily, mutated only by appending message pairs
// and truncated oldest-first so retained history never exceeds twice the
// context window.
package store

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"ai-notes-rag-be/pkg/rag"
)

// Role of a conversation message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one immutable conversation entry. Evidence is only set on
// assistant messages.
type Message struct {
	Role      Role               `json:"role"`
	Content   string             `json:"content"`
	Timestamp time.Time          `json:"timestamp"`
	Evidence  []rag.EvidenceItem `json:"evidence,omitempty"`
}

// conversation is mutated only under its own mutex, so appends to different
// conversations never contend.
type conversation struct {
	mu        sync.Mutex
	id        string
	messages  []Message
	createdAt time.Time
	updatedAt time.Time
}

// ConversationStat describes one live conversation.
type ConversationStat struct {
	ID           string    `json:"id"`
	MessageCount int       `json:"message_count"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Stats are aggregate read-only counters, computed on demand.
type Stats struct {
	ConversationCount int                `json:"conversation_count"`
	TotalMessageCount int                `json:"total_message_count"`
	Conversations     []ConversationStat `json:"conversations"`
}

// ConversationStore keys bounded message history by conversation id. The
// core defines no expiry; a TTL may be supplied for deployments that want
// idle conversations evicted.
type ConversationStore struct {
	cache  *cache.Cache
	window int
}

// NewConversationStore creates a store retaining 2×window messages per
// conversation. ttl <= 0 keeps conversations for the process lifetime.
func NewConversationStore(window int, ttl time.Duration) *ConversationStore {
	if window <= 0 {
		window = 10
	}
	expiration := cache.NoExpiration
	cleanup := time.Duration(0)
	if ttl > 0 {
		expiration = ttl
		cleanup = 10 * time.Minute
	}
	return &ConversationStore{
		cache:  cache.New(expiration, cleanup),
		window: window,
	}
}

// Window returns the configured context window size.
func (s *ConversationStore) Window() int {
	return s.window
}

// GetOrCreate returns the given id if a conversation exists for it, creating
// one otherwise. An empty id allocates a fresh uuid. Concurrent first calls
// with the same id resolve to a single conversation: cache.Add refuses to
// overwrite an existing entry.
func (s *ConversationStore) GetOrCreate(conversationID string) string {
	if conversationID == "" {
		conversationID = uuid.NewString()
	}
	now := time.Now()
	conv := &conversation{id: conversationID, createdAt: now, updatedAt: now}
	// Add loses the race gracefully: the existing conversation wins.
	_ = s.cache.Add(conversationID, conv, cache.DefaultExpiration)
	return conversationID
}

// Append adds a message with the current timestamp, then truncates the
// oldest excess messages beyond 2×window. Appending to an unknown id is a
// silent no-op: append never creates.
func (s *ConversationStore) Append(conversationID string, role Role, content string, evidence []rag.EvidenceItem) {
	conv, ok := s.get(conversationID)
	if !ok {
		return
	}

	conv.mu.Lock()
	defer conv.mu.Unlock()

	conv.messages = append(conv.messages, Message{
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
		Evidence:  evidence,
	})
	conv.updatedAt = time.Now()

	if limit := s.window * 2; len(conv.messages) > limit {
		conv.messages = append(conv.messages[:0:0], conv.messages[len(conv.messages)-limit:]...)
	}
}

// History returns the full retained history in chronological order, empty
// for an unknown id. The returned slice is a copy.
func (s *ConversationStore) History(conversationID string) []Message {
	conv, ok := s.get(conversationID)
	if !ok {
		return nil
	}
	conv.mu.Lock()
	defer conv.mu.Unlock()
	return append([]Message(nil), conv.messages...)
}

// ContextWindow returns at most the last window messages, the slice used to
// build generation context.
func (s *ConversationStore) ContextWindow(conversationID string) []Message {
	conv, ok := s.get(conversationID)
	if !ok {
		return nil
	}
	conv.mu.Lock()
	defer conv.mu.Unlock()
	msgs := conv.messages
	if len(msgs) > s.window {
		msgs = msgs[len(msgs)-s.window:]
	}
	return append([]Message(nil), msgs...)
}

// Clear removes the conversation entirely. Unknown ids are a no-op.
func (s *ConversationStore) Clear(conversationID string) {
	s.cache.Delete(conversationID)
}

// Stats counts conversations and retained messages.
func (s *ConversationStore) Stats() Stats {
	items := s.cache.Items()
	stats := Stats{ConversationCount: len(items)}
	for _, item := range items {
		conv, ok := item.Object.(*conversation)
		if !ok {
			continue
		}
		conv.mu.Lock()
		stats.TotalMessageCount += len(conv.messages)
		stats.Conversations = append(stats.Conversations, ConversationStat{
			ID:           conv.id,
			MessageCount: len(conv.messages),
			CreatedAt:    conv.createdAt,
			UpdatedAt:    conv.updatedAt,
		})
		conv.mu.Unlock()
	}
	return stats
}

func (s *ConversationStore) get(conversationID string) (*conversation, bool) {
	x, found := s.cache.Get(conversationID)
	if !found {
		return nil, false
	}
	conv, ok := x.(*conversation)
	return conv, ok
}
