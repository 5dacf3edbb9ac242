// Package tool provides web search backends used by the search answer
// strategy. Both searchers return structured results; formatting into a
// synthesis prompt is the strategy's job.
package tool

import "context"

// Result is one web search hit.
type Result struct {
	Title   string
	URL     string
	Snippet string
}

// Searcher is the web search contract. It may fail with rate-limit or
// network errors; an empty result list is a valid outcome.
type Searcher interface {
	Search(ctx context.Context, query string) ([]Result, error)
}
