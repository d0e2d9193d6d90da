// Package grader implements the three binary LLM gates of the graded
// pipeline: evidence relevance, answer groundedness and answer usefulness.
package grader

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"ai-notes-rag-be/pkg/llm"
)

// Grader wraps an LLM provider into yes/no classifiers. All grading calls
// run at temperature 0.
type Grader struct {
	provider llm.LLMProvider
	logger   *log.Logger
}

// New creates a Grader on top of the given provider.
func New(provider llm.LLMProvider, logger *log.Logger) *Grader {
	return &Grader{provider: provider, logger: logger}
}

const relevancePrompt = `You are a grader assessing relevance of a retrieved document to a user question.
Here is the retrieved document:

%s

Here is the user question: %s

If the document contains keywords related to the user question, grade it as relevant.
It does not need to be a stringent test. The goal is to filter out erroneous retrievals.
Give a binary score 'yes' or 'no' to indicate whether the document is relevant to the question.
Provide the binary score as a JSON with a single key 'score' and no preamble or explanation.`

const groundednessPrompt = `You are a grader assessing whether an answer is grounded in / supported by a set of facts.
Here are the facts:
-------
%s
-------
Here is the answer: %s
Give a binary score 'yes' or 'no' to indicate whether the answer is grounded in / supported by the facts.
Provide the binary score as a JSON with a single key 'score' and no preamble or explanation.`

const usefulnessPrompt = `You are a grader assessing whether an answer is useful to resolve a question.
Here is the answer:
-------
%s
-------
Here is the question: %s
Give a binary score 'yes' or 'no' to indicate whether the answer is useful to resolve the question.
Provide the binary score as a JSON with a single key 'score' and no preamble or explanation.`

// GradeRelevance reports whether a document is relevant to the question.
func (g *Grader) GradeRelevance(ctx context.Context, query, document string) (bool, error) {
	prompt := fmt.Sprintf(relevancePrompt, document, query)
	return g.grade(ctx, "relevance", prompt)
}

// GradeGroundedness reports whether the answer is supported by the
// evidence texts.
func (g *Grader) GradeGroundedness(ctx context.Context, answer string, evidenceTexts []string) (bool, error) {
	prompt := fmt.Sprintf(groundednessPrompt, strings.Join(evidenceTexts, "\n\n"), answer)
	return g.grade(ctx, "groundedness", prompt)
}

// GradeUsefulness reports whether the answer resolves the question.
func (g *Grader) GradeUsefulness(ctx context.Context, query, answer string) (bool, error) {
	prompt := fmt.Sprintf(usefulnessPrompt, answer, query)
	return g.grade(ctx, "usefulness", prompt)
}

func (g *Grader) grade(ctx context.Context, kind, prompt string) (bool, error) {
	raw, err := g.provider.Generate(ctx, prompt, llm.WithTemperature(0))
	if err != nil {
		return false, fmt.Errorf("%s grading failed: %w", kind, err)
	}
	verdict, err := parseBinaryScore(raw)
	if err != nil {
		return false, fmt.Errorf("%s grading returned an unparseable verdict: %w", kind, err)
	}
	g.logger.Printf("[GRADE] %s: %v", kind, verdict)
	return verdict, nil
}

type scorePayload struct {
	Score string `json:"score"`
}

// parseBinaryScore accepts the requested {"score":"yes"} shape but also
// tolerates code fences and bare yes/no replies, since smaller models drift.
func parseBinaryScore(raw string) (bool, error) {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	var payload scorePayload
	if err := json.Unmarshal([]byte(cleaned), &payload); err == nil && payload.Score != "" {
		return normalizeVerdict(payload.Score)
	}

	return normalizeVerdict(cleaned)
}

func normalizeVerdict(s string) (bool, error) {
	switch strings.ToLower(strings.Trim(s, ` ."'`)) {
	case "yes":
		return true, nil
	case "no":
		return false, nil
	}
	return false, fmt.Errorf("expected yes/no, got %q", s)
}
