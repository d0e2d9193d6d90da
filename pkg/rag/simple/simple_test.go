package simple

import (
	"context"
	"errors"
	"io"
	"log"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"ai-notes-rag-be/pkg/llm"
	"ai-notes-rag-be/pkg/rag"
	"ai-notes-rag-be/pkg/rag/retrieve"
)

type stubSource struct {
	evidence []rag.RawEvidence
	err      error
}

func (s *stubSource) Query(ctx context.Context, text string, limit int) ([]rag.RawEvidence, error) {
	return s.evidence, s.err
}

type recordingLLM struct {
	response    string
	err         error
	gotMessages []llm.Message
}

func (r *recordingLLM) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	r.gotMessages = history
	return r.response, r.err
}

func (r *recordingLLM) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return r.response, r.err
}

func newRag(source rag.EvidenceSource, provider llm.LLMProvider) *Rag {
	l := log.New(io.Discard, "", 0)
	return New(retrieve.New(source, l), provider, 5, l)
}

func TestAnswerFiltersWeakEvidence(t *testing.T) {
	source := &stubSource{evidence: []rag.RawEvidence{
		{ID: 1, Title: "Strong", Text: "strong match", Distance: 0.2},  // 0.8
		{ID: 2, Title: "Weak", Text: "weak match", Distance: 0.75},     // 0.25, below filter
		{ID: 3, Title: "Border", Text: "border match", Distance: 0.71}, // 0.29, just under the filter
	}}
	provider := &recordingLLM{response: "the answer"}
	r := newRag(source, provider)

	result, err := r.Answer(context.Background(), "question", nil)

	assert.NoError(t, err)
	assert.Len(t, result.Evidence, 1)
	assert.Equal(t, int64(1), result.Evidence[0].SourceID)

	// System prompt cites the retained note only.
	system := provider.gotMessages[0]
	assert.Equal(t, "system", system.Role)
	assert.Contains(t, system.Content, "Strong")
	assert.NotContains(t, system.Content, "Weak")
}

func TestAnswerIncludesHistoryWindow(t *testing.T) {
	source := &stubSource{}
	provider := &recordingLLM{response: "reply"}
	r := newRag(source, provider)

	history := []llm.Message{
		{Role: "user", Content: "earlier question"},
		{Role: "assistant", Content: "earlier answer"},
	}

	_, err := r.Answer(context.Background(), "follow-up", history)

	assert.NoError(t, err)
	// system + history + current user turn
	assert.Len(t, provider.gotMessages, 4)
	assert.Equal(t, "earlier question", provider.gotMessages[1].Content)
	assert.Equal(t, "follow-up", provider.gotMessages[3].Content)
}

func TestAnswerNoEvidenceSystemPrompt(t *testing.T) {
	source := &stubSource{err: errors.New("index offline")}
	provider := &recordingLLM{response: "honest reply"}
	r := newRag(source, provider)

	result, err := r.Answer(context.Background(), "question", nil)

	assert.NoError(t, err)
	assert.Empty(t, result.Evidence)
	assert.True(t, strings.Contains(provider.gotMessages[0].Content, "No relevant notes were found"))
}

func TestAnswerEmptyQueryRejected(t *testing.T) {
	r := newRag(&stubSource{}, &recordingLLM{})

	result, err := r.Answer(context.Background(), "", nil)

	assert.ErrorIs(t, err, rag.ErrInvalidInput)
	assert.Nil(t, result)
}

func TestAnswerProviderFailurePropagates(t *testing.T) {
	r := newRag(&stubSource{}, &recordingLLM{err: errors.New("model offline")})

	result, err := r.Answer(context.Background(), "question", nil)

	assert.Error(t, err)
	assert.Nil(t, result)
}
