package corpus

import (
	"context"
	"fmt"
	"math"
	"sort"
)

// InMemoryIndex is a simple in-memory vector index using cosine
// similarity. It lives for the lifetime of the session; re-ingestion
// builds a fresh index rather than merging into an existing one.
type InMemoryIndex struct {
	chunks []Chunk
}

var _ Index = (*InMemoryIndex)(nil)

// NewInMemoryIndex creates an empty index.
func NewInMemoryIndex() *InMemoryIndex {
	return &InMemoryIndex{
		chunks: make([]Chunk, 0),
	}
}

// Add appends chunks to the index. Every chunk must carry an embedding.
func (s *InMemoryIndex) Add(ctx context.Context, chunks []Chunk) error {
	for _, chunk := range chunks {
		if len(chunk.Embedding) == 0 {
			return fmt.Errorf("chunk %s has no embedding", chunk.ID)
		}
	}
	s.chunks = append(s.chunks, chunks...)
	return nil
}

// Search returns the k most similar chunks to the query embedding,
// highest score first.
func (s *InMemoryIndex) Search(ctx context.Context, queryEmbedding []float32, k int) ([]SearchResult, error) {
	if k <= 0 {
		return nil, fmt.Errorf("k must be positive")
	}
	if len(s.chunks) == 0 {
		return []SearchResult{}, nil
	}

	results := make([]SearchResult, len(s.chunks))
	for i, chunk := range s.chunks {
		results[i] = SearchResult{
			Chunk: chunk,
			Score: cosineSimilarity32(queryEmbedding, chunk.Embedding),
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if k > len(results) {
		k = len(results)
	}
	return results[:k], nil
}

// Len returns the number of indexed chunks.
func (s *InMemoryIndex) Len() int {
	return len(s.chunks)
}

// cosineSimilarity32 computes cosine similarity between two vectors.
// Mismatched or zero-length vectors score 0.
func cosineSimilarity32(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
