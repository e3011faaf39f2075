package domain

import "context"

// LocalSearcher retrieves candidate passages from the private document corpus.
// The returned int64 is the retrieval elapsed time in milliseconds.
type LocalSearcher interface {
	Search(ctx context.Context, query string, topK int) ([]LocalItem, int64, error)
}

// WebSearcher retrieves candidate results from a live web search provider.
// The returned int64 is the retrieval elapsed time in milliseconds.
type WebSearcher interface {
	Search(ctx context.Context, query string, k int) ([]WebItem, int64, error)
}
