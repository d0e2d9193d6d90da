package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"ai-notes-rag-be/internal/dto"
	"ai-notes-rag-be/pkg/events"
	"ai-notes-rag-be/pkg/llm"
	"ai-notes-rag-be/pkg/rag"
	"ai-notes-rag-be/pkg/store"
)

type recordingLogger struct {
	warns []string
}

func (l *recordingLogger) Debug(module, message string, details map[string]interface{}) {}
func (l *recordingLogger) Info(module, message string, details map[string]interface{})  {}
func (l *recordingLogger) Warn(module, message string, details map[string]interface{}) {
	l.warns = append(l.warns, message)
}
func (l *recordingLogger) Error(module, message string, details map[string]interface{}) {}
func (l *recordingLogger) Sync() error                                                  { return nil }

type failingPublisher struct {
	calls int
}

func (p *failingPublisher) Publish(ctx context.Context, event events.Event) error {
	p.calls++
	return errors.New("nats unavailable")
}

type stubStrategy struct {
	result     *rag.Result
	err        error
	gotQuery   string
	gotHistory []llm.Message
	calls      int
}

func (s *stubStrategy) Answer(ctx context.Context, query string, history []llm.Message) (*rag.Result, error) {
	s.calls++
	s.gotQuery = query
	s.gotHistory = history
	return s.result, s.err
}

func newChatService(strategy rag.Strategy) (IChatService, *store.ConversationStore) {
	conversations := store.NewConversationStore(10, 0)
	return NewChatService(strategy, conversations, nil, &recordingLogger{}, "graded", "llama3"), conversations
}

func boolPtr(b bool) *bool { return &b }

func TestChatAppendsPairAndReturnsAnswer(t *testing.T) {
	strategy := &stubStrategy{result: &rag.Result{
		Answer: "four words in here",
		Evidence: []rag.EvidenceItem{
			{SourceID: 7, Title: "Note", Snippet: "snippet", Relevance: 0.8},
		},
	}}
	svc, conversations := newChatService(strategy)

	res, err := svc.Chat(context.Background(), &dto.ChatRequest{Message: "what did I note?", IncludeSources: boolPtr(true)})

	assert.NoError(t, err)
	assert.Equal(t, "four words in here", res.Response)
	assert.NotEmpty(t, res.ConversationID)
	assert.False(t, res.Unverified)
	// 4 query words + 4 answer words, × 1.3 ≈ 10
	assert.Equal(t, 10, res.TokensUsed)
	assert.Len(t, res.Sources, 1)
	assert.Equal(t, int64(7), res.Sources[0].SourceID)

	history := conversations.History(res.ConversationID)
	assert.Len(t, history, 2)
	assert.Equal(t, store.RoleUser, history[0].Role)
	assert.Equal(t, store.RoleAssistant, history[1].Role)
	assert.Len(t, history[1].Evidence, 1)
}

func TestChatSourcesIncludedByDefault(t *testing.T) {
	strategy := &stubStrategy{result: &rag.Result{
		Answer:   "answer",
		Evidence: []rag.EvidenceItem{{SourceID: 1}},
	}}
	svc, _ := newChatService(strategy)

	res, err := svc.Chat(context.Background(), &dto.ChatRequest{Message: "q"})

	assert.NoError(t, err)
	assert.Len(t, res.Sources, 1)
}

func TestChatSourcesOmittedOnOptOut(t *testing.T) {
	strategy := &stubStrategy{result: &rag.Result{
		Answer:   "answer",
		Evidence: []rag.EvidenceItem{{SourceID: 1}},
	}}
	svc, _ := newChatService(strategy)

	res, err := svc.Chat(context.Background(), &dto.ChatRequest{Message: "q", IncludeSources: boolPtr(false)})

	assert.NoError(t, err)
	assert.Empty(t, res.Sources)
}

func TestChatEmptyMessageRejectedBeforeStrategy(t *testing.T) {
	strategy := &stubStrategy{}
	svc, _ := newChatService(strategy)

	_, err := svc.Chat(context.Background(), &dto.ChatRequest{Message: "   "})

	assert.ErrorIs(t, err, rag.ErrInvalidInput)
	assert.Equal(t, 0, strategy.calls)
}

func TestChatStrategyFailureLeavesHistoryUntouched(t *testing.T) {
	strategy := &stubStrategy{err: errors.New("pipeline failed")}
	svc, conversations := newChatService(strategy)

	id := conversations.GetOrCreate("")
	_, err := svc.Chat(context.Background(), &dto.ChatRequest{Message: "q", ConversationID: id})

	assert.Error(t, err)
	assert.Empty(t, conversations.History(id))
}

func TestChatMaxRetriesReturnsUnverifiedAnswer(t *testing.T) {
	strategy := &stubStrategy{
		result: &rag.Result{Answer: "best effort", Unverified: true},
		err:    rag.ErrMaxRetriesExceeded,
	}
	svc, conversations := newChatService(strategy)

	res, err := svc.Chat(context.Background(), &dto.ChatRequest{Message: "q"})

	assert.NoError(t, err)
	assert.True(t, res.Unverified)
	assert.Equal(t, "best effort", res.Response)
	assert.Len(t, conversations.History(res.ConversationID), 2)
}

func TestChatNilResultWithRetriesErrorFailsCleanly(t *testing.T) {
	strategy := &stubStrategy{result: nil, err: rag.ErrMaxRetriesExceeded}
	svc, conversations := newChatService(strategy)

	id := conversations.GetOrCreate("")
	_, err := svc.Chat(context.Background(), &dto.ChatRequest{Message: "q", ConversationID: id})

	assert.ErrorIs(t, err, rag.ErrMaxRetriesExceeded)
	assert.Empty(t, conversations.History(id))
}

func TestChatPublishFailureIsLoggedNotFatal(t *testing.T) {
	strategy := &stubStrategy{result: &rag.Result{Answer: "answer"}}
	conversations := store.NewConversationStore(10, 0)
	publisher := &failingPublisher{}
	logs := &recordingLogger{}
	svc := NewChatService(strategy, conversations, publisher, logs, "graded", "llama3")

	res, err := svc.Chat(context.Background(), &dto.ChatRequest{Message: "q"})

	assert.NoError(t, err)
	assert.Equal(t, "answer", res.Response)
	assert.Equal(t, 1, publisher.calls)
	assert.Len(t, logs.warns, 1)
	assert.Contains(t, logs.warns[0], "CHAT_COMPLETED")
}

func TestChatPassesContextWindowToStrategy(t *testing.T) {
	strategy := &stubStrategy{result: &rag.Result{Answer: "a"}}
	svc, conversations := newChatService(strategy)

	id := conversations.GetOrCreate("")
	conversations.Append(id, store.RoleUser, "first q", nil)
	conversations.Append(id, store.RoleAssistant, "first a", nil)

	_, err := svc.Chat(context.Background(), &dto.ChatRequest{Message: "second q", ConversationID: id})

	assert.NoError(t, err)
	assert.Equal(t, "second q", strategy.gotQuery)
	assert.Len(t, strategy.gotHistory, 2)
	assert.Equal(t, "first q", strategy.gotHistory[0].Content)
	assert.Equal(t, "assistant", strategy.gotHistory[1].Role)
}

func TestHistoryUnknownConversation(t *testing.T) {
	svc, _ := newChatService(&stubStrategy{})

	res, err := svc.History(context.Background(), "missing")

	assert.NoError(t, err)
	assert.Empty(t, res.Messages)
	assert.Equal(t, "missing", res.ConversationID)
}

func TestClearUnknownConversationIsNoOp(t *testing.T) {
	svc, _ := newChatService(&stubStrategy{})

	assert.NoError(t, svc.Clear(context.Background(), "missing"))
}

func TestStatsReportsConfiguration(t *testing.T) {
	strategy := &stubStrategy{result: &rag.Result{Answer: "a"}}
	svc, _ := newChatService(strategy)

	_, err := svc.Chat(context.Background(), &dto.ChatRequest{Message: "q"})
	assert.NoError(t, err)

	stats, err := svc.Stats(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 1, stats.ActiveConversations)
	assert.Equal(t, 2, stats.TotalMessages)
	assert.Equal(t, "graded", stats.Mode)
	assert.Equal(t, "llama3", stats.Model)
	assert.Equal(t, 10, stats.ContextWindow)
	assert.Len(t, stats.Conversations, 1)
}
