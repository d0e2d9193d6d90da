package workflow

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"ai-notes-rag-be/pkg/llm"
	"ai-notes-rag-be/pkg/rag"
	"ai-notes-rag-be/pkg/rag/generate"
	"ai-notes-rag-be/pkg/rag/grader"
	"ai-notes-rag-be/pkg/rag/retrieve"
)

// fakeSource feeds scripted raw evidence into the real retriever.
type fakeSource struct {
	evidence []rag.RawEvidence
	err      error
	calls    int
}

func (f *fakeSource) Query(ctx context.Context, text string, limit int) ([]rag.RawEvidence, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if len(f.evidence) > limit {
		return f.evidence[:limit], nil
	}
	return f.evidence, nil
}

// fakeLLM routes prompts to scripted verdict queues by recognizing which
// grader (or the generator) built the prompt.
type fakeLLM struct {
	relevance []bool
	grounded  []bool
	useful    []bool

	generateCalls  int
	relevanceCalls int
	groundedCalls  int
	usefulCalls    int
}

func (f *fakeLLM) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	switch {
	case strings.Contains(prompt, "assessing relevance"):
		f.relevanceCalls++
		return verdict(pop(&f.relevance)), nil
	case strings.Contains(prompt, "grounded in / supported by"):
		f.groundedCalls++
		return verdict(pop(&f.grounded)), nil
	case strings.Contains(prompt, "useful to resolve"):
		f.usefulCalls++
		return verdict(pop(&f.useful)), nil
	default:
		f.generateCalls++
		return fmt.Sprintf("answer %d", f.generateCalls), nil
	}
}

func (f *fakeLLM) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	return "", errors.New("chat not used by the graded engine")
}

// pop consumes the queue head, repeating the last verdict when exhausted.
func pop(q *[]bool) bool {
	if len(*q) == 0 {
		return true
	}
	v := (*q)[0]
	if len(*q) > 1 {
		*q = (*q)[1:]
	}
	return v
}

func verdict(yes bool) string {
	if yes {
		return `{"score": "yes"}`
	}
	return `{"score": "no"}`
}

type fakeWebSearch struct {
	results []rag.WebResult
	err     error
	calls   int
}

func (f *fakeWebSearch) Search(ctx context.Context, query string) ([]rag.WebResult, error) {
	f.calls++
	return f.results, f.err
}

func noteEvidence(n int) []rag.RawEvidence {
	evidence := make([]rag.RawEvidence, 0, n)
	for i := 0; i < n; i++ {
		evidence = append(evidence, rag.RawEvidence{
			ID:       int64(i + 1),
			Title:    fmt.Sprintf("Note %d", i+1),
			Text:     fmt.Sprintf("note content %d", i+1),
			Distance: 0.2 + 0.1*float64(i),
		})
	}
	return evidence
}

func newEngine(source rag.EvidenceSource, provider llm.LLMProvider, opts ...Option) *Engine {
	l := log.New(io.Discard, "", 0)
	return New(
		retrieve.New(source, l),
		grader.New(provider, l),
		generate.New(provider, l),
		l,
		opts...,
	)
}

func TestAnswerHappyPath(t *testing.T) {
	source := &fakeSource{evidence: noteEvidence(3)}
	provider := &fakeLLM{}
	web := &fakeWebSearch{}
	engine := newEngine(source, provider, WithWebSearch(web))

	result, err := engine.Answer(context.Background(), "what did I write about Go?", nil)

	assert.NoError(t, err)
	assert.False(t, result.Unverified)
	assert.Equal(t, "answer 1", result.Answer)
	assert.Len(t, result.Evidence, 3)
	assert.Equal(t, 1, provider.generateCalls)
	assert.Equal(t, 3, provider.relevanceCalls)
	assert.Equal(t, 0, web.calls)
	for _, item := range result.Evidence {
		assert.Greater(t, item.SourceID, int64(0))
	}
}

func TestAnswerPartialRelevanceTriggersWebSearch(t *testing.T) {
	source := &fakeSource{evidence: noteEvidence(3)}
	provider := &fakeLLM{relevance: []bool{true, false, false}}
	web := &fakeWebSearch{results: []rag.WebResult{
		{Title: "Blog", Content: "web content one", Score: 0.8, HasScore: true},
		{Title: "Docs", Content: "web content two"},
	}}
	engine := newEngine(source, provider, WithWebSearch(web))

	result, err := engine.Answer(context.Background(), "question", nil)

	assert.NoError(t, err)
	assert.Equal(t, 1, web.calls)
	// One retained note plus two web items.
	assert.Len(t, result.Evidence, 3)
	assert.Equal(t, int64(1), result.Evidence[0].SourceID)
	assert.Equal(t, int64(-1), result.Evidence[1].SourceID)
	assert.Equal(t, int64(-2), result.Evidence[2].SourceID)
	// Provider score respected; missing score falls back by rank.
	assert.InDelta(t, 0.8, result.Evidence[1].Relevance, 1e-9)
	assert.InDelta(t, 0.8, result.Evidence[2].Relevance, 1e-9)
}

func TestAnswerRegeneratesWhenNotGrounded(t *testing.T) {
	source := &fakeSource{evidence: noteEvidence(2)}
	provider := &fakeLLM{grounded: []bool{false, true}}
	web := &fakeWebSearch{}
	engine := newEngine(source, provider, WithWebSearch(web))

	result, err := engine.Answer(context.Background(), "question", nil)

	assert.NoError(t, err)
	assert.False(t, result.Unverified)
	assert.Equal(t, "answer 2", result.Answer)
	assert.Equal(t, 2, provider.generateCalls)
	assert.Equal(t, 0, web.calls)
	// Usefulness is only consulted once the answer is grounded.
	assert.Equal(t, 1, provider.usefulCalls)
}

func TestAnswerGroundedButNotUsefulWidensEvidence(t *testing.T) {
	source := &fakeSource{evidence: noteEvidence(2)}
	provider := &fakeLLM{useful: []bool{false, true}}
	web := &fakeWebSearch{results: []rag.WebResult{
		{Title: "Extra", Content: "extra context"},
	}}
	engine := newEngine(source, provider, WithWebSearch(web))

	result, err := engine.Answer(context.Background(), "question", nil)

	assert.NoError(t, err)
	assert.Equal(t, 1, web.calls)
	assert.Equal(t, 2, provider.generateCalls)
	assert.Len(t, result.Evidence, 3)
}

func TestAnswerSourceFailureDegradesToNoContext(t *testing.T) {
	source := &fakeSource{err: errors.New("index offline")}
	provider := &fakeLLM{}
	engine := newEngine(source, provider)

	result, err := engine.Answer(context.Background(), "question", nil)

	assert.NoError(t, err)
	assert.Empty(t, result.Evidence)
	assert.Equal(t, "answer 1", result.Answer)
	// Nothing to grade when retrieval came back empty.
	assert.Equal(t, 0, provider.relevanceCalls)
}

func TestAnswerNilWebSearchPassesThrough(t *testing.T) {
	source := &fakeSource{evidence: noteEvidence(1)}
	provider := &fakeLLM{relevance: []bool{false}}
	engine := newEngine(source, provider)

	result, err := engine.Answer(context.Background(), "question", nil)

	assert.NoError(t, err)
	assert.Empty(t, result.Evidence)
	assert.Equal(t, "answer 1", result.Answer)
}

func TestAnswerCycleBoundReturnsUnverified(t *testing.T) {
	source := &fakeSource{evidence: noteEvidence(1)}
	provider := &fakeLLM{grounded: []bool{false}} // never grounded
	engine := newEngine(source, provider, WithMaxCycles(3))

	result, err := engine.Answer(context.Background(), "question", nil)

	assert.ErrorIs(t, err, rag.ErrMaxRetriesExceeded)
	assert.NotNil(t, result)
	assert.True(t, result.Unverified)
	assert.Equal(t, "answer 3", result.Answer)
	assert.Equal(t, 3, provider.generateCalls)
}

func TestAnswerEmptyQueryRejected(t *testing.T) {
	engine := newEngine(&fakeSource{}, &fakeLLM{})

	result, err := engine.Answer(context.Background(), "", nil)

	assert.ErrorIs(t, err, rag.ErrInvalidInput)
	assert.Nil(t, result)
}

func TestAnswerWebSearchFailurePropagates(t *testing.T) {
	source := &fakeSource{evidence: noteEvidence(1)}
	provider := &fakeLLM{relevance: []bool{false}}
	web := &fakeWebSearch{err: errors.New("quota exceeded")}
	engine := newEngine(source, provider, WithWebSearch(web))

	result, err := engine.Answer(context.Background(), "question", nil)

	assert.Error(t, err)
	assert.NotErrorIs(t, err, rag.ErrMaxRetriesExceeded)
	assert.Nil(t, result)
}

func TestAnswerCancelledContext(t *testing.T) {
	engine := newEngine(&fakeSource{evidence: noteEvidence(1)}, &fakeLLM{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := engine.Answer(ctx, "question", nil)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, result)
}
