package session

import (
	"context"
	"sync"

	"github.com/Neelshah1810/Smart-Chatbot-with-LLM-RAG-Web-Search/corpus"
)

// CorpusRetriever adapts the live corpus index to the Retriever
// interface. The retrieval strategy holds it for the lifetime of the
// session while the orchestrator replaces the underlying index wholesale
// on each ingestion.
type CorpusRetriever struct {
	mu       sync.RWMutex
	embedder corpus.Embedder
	index    corpus.Index
}

var _ corpus.Retriever = (*CorpusRetriever)(nil)

// NewCorpusRetriever creates a retriever with no index yet. Until an
// index is installed it retrieves nothing.
func NewCorpusRetriever(embedder corpus.Embedder) *CorpusRetriever {
	return &CorpusRetriever{embedder: embedder}
}

// Retrieve returns the k most relevant chunks from the current index.
func (r *CorpusRetriever) Retrieve(ctx context.Context, query string, k int) ([]corpus.SearchResult, error) {
	r.mu.RLock()
	index := r.index
	r.mu.RUnlock()

	if index == nil || index.Len() == 0 {
		return []corpus.SearchResult{}, nil
	}

	return corpus.NewVectorRetriever(index, r.embedder).Retrieve(ctx, query, k)
}

func (r *CorpusRetriever) swap(index corpus.Index) {
	r.mu.Lock()
	r.index = index
	r.mu.Unlock()
}
