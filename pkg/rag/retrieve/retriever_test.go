package retrieve

import (
	"context"
	"errors"
	"io"
	"log"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"ai-notes-rag-be/pkg/rag"
)

type stubSource struct {
	evidence []rag.RawEvidence
	err      error
	gotLimit int
}

func (s *stubSource) Query(ctx context.Context, text string, limit int) ([]rag.RawEvidence, error) {
	s.gotLimit = limit
	return s.evidence, s.err
}

func discard() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func TestRetrieveScoresAndBoundsSnippets(t *testing.T) {
	long := strings.Repeat("x", 350)
	source := &stubSource{evidence: []rag.RawEvidence{
		{ID: 1, Title: "A", Text: "short text", Distance: 0.25},
		{ID: 2, Title: "B", Text: long, Distance: 0.5},
	}}
	r := New(source, discard())

	items := r.Retrieve(context.Background(), "query", 5)

	assert.Len(t, items, 2)
	assert.Equal(t, 5, source.gotLimit)

	assert.Equal(t, int64(1), items[0].SourceID)
	assert.InDelta(t, 0.75, items[0].Relevance, 1e-9)
	assert.Equal(t, "short text", items[0].Snippet)

	assert.InDelta(t, 0.5, items[1].Relevance, 1e-9)
	assert.Len(t, []rune(items[1].Snippet), rag.SnippetLimit+3)
	assert.True(t, strings.HasSuffix(items[1].Snippet, "..."))
}

func TestRetrieveSourceFailureReturnsEmpty(t *testing.T) {
	source := &stubSource{err: errors.New("connection refused")}
	r := New(source, discard())

	items := r.Retrieve(context.Background(), "query", 5)

	assert.Empty(t, items)
}

func TestRetrieveDropsItemsWithInvalidDistance(t *testing.T) {
	source := &stubSource{evidence: []rag.RawEvidence{
		{ID: 1, Text: "good", Distance: 0.3},
		{ID: 2, Text: "bad", Distance: -1},
		{ID: 3, Text: "also good", Distance: 0.6},
	}}
	r := New(source, discard())

	items := r.Retrieve(context.Background(), "query", 5)

	assert.Len(t, items, 2)
	assert.Equal(t, int64(1), items[0].SourceID)
	assert.Equal(t, int64(3), items[1].SourceID)
}

func TestRetrievePreservesSourceOrder(t *testing.T) {
	// The source returns best-first; scoring must not reorder.
	source := &stubSource{evidence: []rag.RawEvidence{
		{ID: 10, Text: "first", Distance: 0.4},
		{ID: 20, Text: "second", Distance: 0.1},
	}}
	r := New(source, discard())

	items := r.Retrieve(context.Background(), "query", 5)

	assert.Equal(t, int64(10), items[0].SourceID)
	assert.Equal(t, int64(20), items[1].SourceID)
}
