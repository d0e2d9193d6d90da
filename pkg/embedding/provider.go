// Package embedding abstracts the text-embedding backends used to index
// notes and to embed queries for similarity search.
package embedding

import "context"

// Task types hint providers that distinguish indexing from querying.
const (
	TaskRetrievalDocument = "RETRIEVAL_DOCUMENT"
	TaskRetrievalQuery    = "RETRIEVAL_QUERY"
)

// Provider generates a vector for the given text.
type Provider interface {
	Generate(ctx context.Context, text string, taskType string) ([]float32, error)
}
