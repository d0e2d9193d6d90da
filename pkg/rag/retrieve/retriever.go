// Package retrieve assembles scored evidence from an EvidenceSource.
package retrieve

import (
	"context"
	"log"
	"time"

	"ai-notes-rag-be/pkg/rag"
	"ai-notes-rag-be/pkg/rag/score"
)

// DefaultTimeout bounds a single retrieval round trip. A slow source is
// treated the same as a failing one: empty evidence, not a hang.
const DefaultTimeout = 10 * time.Second

// Retriever queries the evidence source, normalizes distances into
// relevance scores and bounds snippet length. Rank order of the source is
// preserved.
type Retriever struct {
	source  rag.EvidenceSource
	timeout time.Duration
	logger  *log.Logger
}

// Option customizes a Retriever.
type Option func(*Retriever)

// WithTimeout overrides the retrieval deadline.
func WithTimeout(d time.Duration) Option {
	return func(r *Retriever) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// New creates a Retriever over the given source.
func New(source rag.EvidenceSource, logger *log.Logger, opts ...Option) *Retriever {
	r := &Retriever{
		source:  source,
		timeout: DefaultTimeout,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Retrieve fetches up to maxResults evidence items. Source failure and
// timeout degrade to an empty set so the caller can fall back to web search
// or a no-context generation.
func (r *Retriever) Retrieve(ctx context.Context, query string, maxResults int) []rag.EvidenceItem {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	raw, err := r.source.Query(ctx, query, maxResults)
	if err != nil {
		r.logger.Printf("[WARN] Evidence retrieval failed, proceeding without context: %v", err)
		return nil
	}

	items := make([]rag.EvidenceItem, 0, len(raw))
	for _, re := range raw {
		relevance, err := score.Score(re.Distance)
		if err != nil {
			r.logger.Printf("[WARN] Dropping evidence %d with bad distance %v: %v", re.ID, re.Distance, err)
			continue
		}
		items = append(items, rag.EvidenceItem{
			SourceID:  re.ID,
			Title:     re.Title,
			Snippet:   rag.Snippet(re.Text),
			Relevance: relevance,
			CreatedAt: re.CreatedAt,
			UpdatedAt: re.UpdatedAt,
		})
	}

	r.logger.Printf("[RETRIEVE] %d evidence items for query: %s", len(items), truncate(query, 50))
	return items
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
