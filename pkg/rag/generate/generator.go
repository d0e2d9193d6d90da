// Package generate produces answers from grounded evidence.
package generate

import (
	"context"
	"fmt"
	"log"
	"strings"

	"ai-notes-rag-be/pkg/llm"
)

// Generator turns (query, evidence) into a free-text answer via the LLM
// provider. Each call recomputes the answer from the current evidence set;
// prior failed attempts are not retained.
type Generator struct {
	provider llm.LLMProvider
	logger   *log.Logger
}

// New creates a Generator.
func New(provider llm.LLMProvider, logger *log.Logger) *Generator {
	return &Generator{provider: provider, logger: logger}
}

const answerPrompt = `You are an assistant for question-answering tasks.
Use the following documents to answer the question.
If you don't know the answer, just say that you don't know.
Use three sentences maximum and keep the answer concise.
Question: %s
Documents:
%s
Answer:`

const noContextNote = "(no documents were found for this question)"

// Generate answers the query from the evidence texts. An empty evidence set
// is allowed: the model is told no documents were found.
func (g *Generator) Generate(ctx context.Context, query string, evidenceTexts []string) (string, error) {
	docs := noContextNote
	if len(evidenceTexts) > 0 {
		docs = strings.Join(evidenceTexts, "\n\n")
	}

	answer, err := g.provider.Generate(ctx, fmt.Sprintf(answerPrompt, query, docs))
	if err != nil {
		return "", fmt.Errorf("answer generation failed: %w", err)
	}

	g.logger.Printf("[GENERATE] Answer produced from %d documents", len(evidenceTexts))
	return strings.TrimSpace(answer), nil
}
