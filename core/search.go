package core

import "context"

// SearchResult represents a retrieved document with a relevance score and arbitrary metadata.
type SearchResult struct {
	ID       string
	Content  string
	Score    float64
	Metadata map[string]any
}

// Searcher looks up documents relevant to a query.
type Searcher interface {
	Search(ctx context.Context, query string, limit int) ([]SearchResult, error)
}
