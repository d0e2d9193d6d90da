// Package events defines the telemetry events published by the chat core.
package events

import "time"

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "CHAT_COMPLETED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// ChatCompleted is emitted after a chat request produced a terminal answer
// and the conversation was updated.
type ChatCompleted struct {
	ConversationID string
	Mode           string
	EvidenceCount  int
	TokensUsed     int
	Unverified     bool
	OccurredAt     time.Time
}

func (e ChatCompleted) EventType() string { return "CHAT_COMPLETED" }

func (e ChatCompleted) Payload() map[string]interface{} {
	return map[string]interface{}{
		"conversation_id": e.ConversationID,
		"mode":            e.Mode,
		"evidence_count":  e.EvidenceCount,
		"tokens_used":     e.TokensUsed,
		"unverified":      e.Unverified,
		"occurred_at":     e.OccurredAt,
	}
}

func (e ChatCompleted) Timestamp() time.Time { return e.OccurredAt }
