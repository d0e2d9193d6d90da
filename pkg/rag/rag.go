// Package rag holds the shared contracts of the retrieval-augmented
// answering core: evidence types, the collaborator interfaces the engines
// depend on, and the Strategy interface the chat service consumes.
package rag

import (
	"context"
	"time"

	"ai-notes-rag-be/pkg/llm"
)

// SnippetLimit caps evidence snippets handed to prompts and to callers.
const SnippetLimit = 200

// EvidenceItem is a scored unit of retrieved text. Note-backed items carry
// the positive note id; web-backed items carry negative ids so the two id
// spaces never collide. Items are immutable once produced.
type EvidenceItem struct {
	SourceID  int64      `json:"source_id"`
	Title     string     `json:"title"`
	Snippet   string     `json:"snippet"`
	Relevance float64    `json:"relevance"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// RawEvidence is what an EvidenceSource returns before scoring: the raw
// vector distance has not been normalized yet.
type RawEvidence struct {
	ID        int64
	Title     string
	Text      string
	Distance  float64
	CreatedAt *time.Time
	UpdatedAt *time.Time
}

// EvidenceSource is the retrieval collaborator (vector index, etc.).
// Results must be ordered best-first. A failing source is tolerated by the
// engines and treated as an empty result set.
type EvidenceSource interface {
	Query(ctx context.Context, text string, limit int) ([]RawEvidence, error)
}

// WebResult is a single ranked result from the optional web search
// capability. Score is only meaningful when HasScore is set.
type WebResult struct {
	Title    string
	Content  string
	Score    float64
	HasScore bool
}

// WebSearch is the optional evidence-widening capability. Engines must
// tolerate its absence (nil) without failing a request.
type WebSearch interface {
	Search(ctx context.Context, query string) ([]WebResult, error)
}

// Result is the terminal output of a strategy run. Unverified marks an
// answer that exhausted the correction loop without passing both quality
// gates; it is still the best effort the engine produced.
type Result struct {
	Answer     string
	Evidence   []EvidenceItem
	Unverified bool
}

// Strategy produces an answer for a query given the recent conversation
// window. Implementations: simple.Rag (single-pass) and workflow.Engine
// (graded, self-correcting). Selected once at construction time.
type Strategy interface {
	Answer(ctx context.Context, query string, history []llm.Message) (*Result, error)
}

// Snippet bounds text to SnippetLimit runes, marking truncation.
func Snippet(text string) string {
	runes := []rune(text)
	if len(runes) <= SnippetLimit {
		return text
	}
	return string(runes[:SnippetLimit]) + "..."
}

// WebEvidence converts ranked web results into evidence items. Ids descend
// from -1 to stay disjoint from note ids. When the provider supplies no
// usable score, rank position decides: 0.95, 0.80, 0.65, then floor.
func WebEvidence(results []WebResult) []EvidenceItem {
	now := time.Now()
	items := make([]EvidenceItem, 0, len(results))
	for i, r := range results {
		score := r.Score
		if !r.HasScore || score < 0 || score > 1 {
			score = 0.95 - 0.15*float64(i)
			if score < 0.65 {
				score = 0.65
			}
		}
		title := r.Title
		if title == "" {
			title = "Web Result"
		}
		created := now
		items = append(items, EvidenceItem{
			SourceID:  -1 - int64(i),
			Title:     title,
			Snippet:   Snippet(r.Content),
			Relevance: score,
			CreatedAt: &created,
			UpdatedAt: &created,
		})
	}
	return items
}

// EvidenceTexts extracts the snippets used for grading and generation.
func EvidenceTexts(items []EvidenceItem) []string {
	texts := make([]string, len(items))
	for i, it := range items {
		texts[i] = it.Snippet
	}
	return texts
}
