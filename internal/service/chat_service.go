package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"ai-notes-rag-be/internal/dto"
	"ai-notes-rag-be/internal/pkg/logger"
	"ai-notes-rag-be/pkg/events"
	"ai-notes-rag-be/pkg/llm"
	"ai-notes-rag-be/pkg/rag"
	"ai-notes-rag-be/pkg/store"
)

type IChatService interface {
	Chat(ctx context.Context, req *dto.ChatRequest) (*dto.ChatResponse, error)
	History(ctx context.Context, conversationID string) (*dto.HistoryResponse, error)
	Clear(ctx context.Context, conversationID string) error
	Stats(ctx context.Context) (*dto.StatsResponse, error)
}

// IEventPublisher is the telemetry sink for completed chats. A nil publisher
// disables telemetry.
type IEventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

type chatService struct {
	strategy       rag.Strategy
	conversations  *store.ConversationStore
	eventPublisher IEventPublisher
	logger         logger.ILogger
	mode           string
	model          string
}

func NewChatService(
	strategy rag.Strategy,
	conversations *store.ConversationStore,
	eventPublisher IEventPublisher,
	log logger.ILogger,
	mode string,
	model string,
) IChatService {
	return &chatService{
		strategy:       strategy,
		conversations:  conversations,
		eventPublisher: eventPublisher,
		logger:         log,
		mode:           mode,
		model:          model,
	}
}

func (s *chatService) Chat(ctx context.Context, req *dto.ChatRequest) (*dto.ChatResponse, error) {
	query := strings.TrimSpace(req.Message)
	if query == "" {
		return nil, fmt.Errorf("message must not be empty: %w", rag.ErrInvalidInput)
	}

	conversationID := s.conversations.GetOrCreate(req.ConversationID)
	history := toLLMMessages(s.conversations.ContextWindow(conversationID))

	result, err := s.strategy.Answer(ctx, query, history)
	if err != nil && !errors.Is(err, rag.ErrMaxRetriesExceeded) {
		return nil, err
	}
	if result == nil {
		return nil, err
	}
	// On exhausted retries the pipeline still hands back its best answer,
	// flagged unverified, so the client gets a response instead of a 500.
	unverified := result.Unverified

	// The pair is appended only after a terminal answer: a failed request
	// must not leave a dangling user message in the history.
	s.conversations.Append(conversationID, store.RoleUser, query, nil)
	s.conversations.Append(conversationID, store.RoleAssistant, result.Answer, result.Evidence)

	tokensUsed := estimateTokens(query + " " + result.Answer)

	s.publishCompleted(conversationID, len(result.Evidence), tokensUsed, unverified)

	res := &dto.ChatResponse{
		Response:       result.Answer,
		ConversationID: conversationID,
		Timestamp:      time.Now(),
		TokensUsed:     tokensUsed,
		Unverified:     unverified,
	}
	if req.WantsSources() {
		res.Sources = toSourceDTOs(result.Evidence)
	}
	return res, nil
}

func (s *chatService) History(ctx context.Context, conversationID string) (*dto.HistoryResponse, error) {
	messages := s.conversations.History(conversationID)

	res := &dto.HistoryResponse{
		ConversationID: conversationID,
		Messages:       make([]dto.MessageDTO, 0, len(messages)),
	}
	for _, m := range messages {
		res.Messages = append(res.Messages, dto.MessageDTO{
			Role:      string(m.Role),
			Content:   m.Content,
			Timestamp: m.Timestamp,
			Sources:   toSourceDTOs(m.Evidence),
		})
	}
	return res, nil
}

func (s *chatService) Clear(ctx context.Context, conversationID string) error {
	s.conversations.Clear(conversationID)
	return nil
}

func (s *chatService) Stats(ctx context.Context) (*dto.StatsResponse, error) {
	stats := s.conversations.Stats()

	res := &dto.StatsResponse{
		ActiveConversations: stats.ConversationCount,
		TotalMessages:       stats.TotalMessageCount,
		Mode:                s.mode,
		Model:               s.model,
		ContextWindow:       s.conversations.Window(),
		Conversations:       make([]dto.ConversationStatDTO, 0, len(stats.Conversations)),
	}
	for _, c := range stats.Conversations {
		res.Conversations = append(res.Conversations, dto.ConversationStatDTO{
			ConversationID: c.ID,
			MessageCount:   c.MessageCount,
			CreatedAt:      c.CreatedAt,
			UpdatedAt:      c.UpdatedAt,
		})
	}
	return res, nil
}

// publishCompleted emits telemetry fire-and-forget; chat never fails because
// the event bus is down.
func (s *chatService) publishCompleted(conversationID string, evidenceCount, tokensUsed int, unverified bool) {
	if s.eventPublisher == nil {
		return
	}
	evt := events.ChatCompleted{
		ConversationID: conversationID,
		Mode:           s.mode,
		EvidenceCount:  evidenceCount,
		TokensUsed:     tokensUsed,
		Unverified:     unverified,
		OccurredAt:     time.Now(),
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.eventPublisher.Publish(ctx, evt); err != nil {
		s.logger.Warn("CHAT_SERVICE", "Failed to publish CHAT_COMPLETED event", map[string]interface{}{
			"conversation_id": conversationID,
			"error":           err.Error(),
		})
	}
}

// estimateTokens approximates token usage as word count scaled by 1.3. It is
// an estimate for reporting, not a billing figure.
func estimateTokens(text string) int {
	return int(float64(len(strings.Fields(text))) * 1.3)
}

func toLLMMessages(messages []store.Message) []llm.Message {
	out := make([]llm.Message, 0, len(messages))
	for _, m := range messages {
		out = append(out, llm.Message{
			Role:    string(m.Role),
			Content: m.Content,
		})
	}
	return out
}

func toSourceDTOs(evidence []rag.EvidenceItem) []dto.SourceDTO {
	if len(evidence) == 0 {
		return nil
	}
	out := make([]dto.SourceDTO, 0, len(evidence))
	for _, ev := range evidence {
		out = append(out, dto.SourceDTO{
			SourceID:  ev.SourceID,
			Title:     ev.Title,
			Snippet:   ev.Snippet,
			Relevance: ev.Relevance,
			CreatedAt: ev.CreatedAt,
			UpdatedAt: ev.UpdatedAt,
		})
	}
	return out
}
