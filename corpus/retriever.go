package corpus

import (
	"context"
	"fmt"
)

// VectorRetriever retrieves chunks from an Index by embedding the query.
type VectorRetriever struct {
	index    Index
	embedder Embedder
}

var _ Retriever = (*VectorRetriever)(nil)

// NewVectorRetriever creates a retriever over the given index and embedder.
func NewVectorRetriever(index Index, embedder Embedder) *VectorRetriever {
	return &VectorRetriever{
		index:    index,
		embedder: embedder,
	}
}

// Retrieve returns the k most relevant chunks for the query.
func (r *VectorRetriever) Retrieve(ctx context.Context, query string, k int) ([]SearchResult, error) {
	if r.index == nil {
		return nil, fmt.Errorf("no index available")
	}
	if r.index.Len() == 0 {
		return []SearchResult{}, nil
	}

	queryEmbedding, err := r.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	return r.index.Search(ctx, queryEmbedding, k)
}
