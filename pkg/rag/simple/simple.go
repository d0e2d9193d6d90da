// Package simple implements the single-pass answering strategy: retrieve,
// filter by relevance score, generate once against a notes-context system
// prompt plus the recent conversation window. No grading gates.
package simple

import (
	"context"
	"fmt"
	"log"
	"strings"

	"ai-notes-rag-be/pkg/llm"
	"ai-notes-rag-be/pkg/rag"
	"ai-notes-rag-be/pkg/rag/retrieve"
)

// MinRelevance filters out weakly matching evidence before prompting.
const MinRelevance = 0.3

// Rag is the non-graded strategy variant.
type Rag struct {
	retriever  *retrieve.Retriever
	provider   llm.LLMProvider
	maxResults int
	logger     *log.Logger
}

var _ rag.Strategy = (*Rag)(nil)

// New creates a simple RAG strategy.
func New(retriever *retrieve.Retriever, provider llm.LLMProvider, maxResults int, logger *log.Logger) *Rag {
	if maxResults <= 0 {
		maxResults = 5
	}
	return &Rag{
		retriever:  retriever,
		provider:   provider,
		maxResults: maxResults,
		logger:     logger,
	}
}

const basePrompt = `You are an AI assistant helping users find and discuss information from their personal notes.

Your role:
- Answer questions based on the provided note context
- Be helpful, accurate, and conversational
- If the context doesn't contain enough information, say so honestly
- Always cite which notes you're referencing when possible

Guidelines:
- Be concise but thorough
- Use a friendly, personal tone since these are the user's own notes
- If asked about something not in the notes, clarify that you can only work with the provided notes`

// Answer retrieves evidence, builds the contextual system prompt and runs a
// single generation over the conversation window.
func (r *Rag) Answer(ctx context.Context, query string, history []llm.Message) (*rag.Result, error) {
	if query == "" {
		return nil, fmt.Errorf("%w: empty query", rag.ErrInvalidInput)
	}

	evidence := r.retriever.Retrieve(ctx, query, r.maxResults)

	filtered := evidence[:0:0]
	for _, item := range evidence {
		if item.Relevance > MinRelevance {
			filtered = append(filtered, item)
		}
	}
	r.logger.Printf("[SIMPLE] %d of %d evidence items pass the relevance filter", len(filtered), len(evidence))

	messages := make([]llm.Message, 0, len(history)+2)
	messages = append(messages, llm.Message{Role: "system", Content: systemPrompt(filtered)})
	messages = append(messages, history...)
	messages = append(messages, llm.Message{Role: "user", Content: query})

	answer, err := r.provider.Chat(ctx, messages)
	if err != nil {
		return nil, fmt.Errorf("answer generation failed: %w", err)
	}

	return &rag.Result{Answer: strings.TrimSpace(answer), Evidence: filtered}, nil
}

func systemPrompt(evidence []rag.EvidenceItem) string {
	if len(evidence) == 0 {
		return basePrompt + "\n\nNo relevant notes were found for this query. Let the user know that you don't have information about this topic in their notes."
	}

	var b strings.Builder
	b.WriteString(basePrompt)
	b.WriteString("\n\nRelevant notes context:\n")
	for i, item := range evidence {
		fmt.Fprintf(&b, "\n%d. Note: %q\n", i+1, item.Title)
		fmt.Fprintf(&b, "   Content: %s\n", item.Snippet)
		fmt.Fprintf(&b, "   Relevance: %.2f\n", item.Relevance)
	}
	return b.String()
}
