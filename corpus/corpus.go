// Package corpus manages the user-uploaded document corpus: ingestion,
// chunk storage, embedding, and similarity retrieval.
//
// The Handle type is the only piece the routing core depends on; it says
// whether a searchable index currently exists and what went into it. The
// index itself lives behind the Index and Retriever interfaces.
package corpus

import (
	"context"
	"sort"
)

// Chunk is one indexed piece of an ingested document.
type Chunk struct {
	ID         string
	Content    string
	SourceFile string
	Embedding  []float32
}

// SearchResult is a chunk with its similarity score.
type SearchResult struct {
	Chunk Chunk
	Score float64
}

// Handle describes corpus availability. It is replaced wholesale on
// re-ingestion; Present implies ChunkCount > 0.
type Handle struct {
	Present    bool
	ChunkCount int
	FileNames  []string
}

// NewHandle builds a handle over the given chunk count and file names.
// File names are deduplicated and sorted.
func NewHandle(chunkCount int, fileNames []string) Handle {
	seen := make(map[string]bool)
	unique := make([]string, 0, len(fileNames))
	for _, name := range fileNames {
		if !seen[name] {
			seen[name] = true
			unique = append(unique, name)
		}
	}
	sort.Strings(unique)

	return Handle{
		Present:    chunkCount > 0,
		ChunkCount: chunkCount,
		FileNames:  unique,
	}
}

// Embedder generates embeddings for text.
type Embedder interface {
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// Index stores chunk embeddings and answers similarity queries.
type Index interface {
	Add(ctx context.Context, chunks []Chunk) error
	Search(ctx context.Context, queryEmbedding []float32, k int) ([]SearchResult, error)
	Len() int
}

// Retriever retrieves relevant chunks for a query. An empty result set
// is valid and must not be treated as a failure.
type Retriever interface {
	Retrieve(ctx context.Context, query string, k int) ([]SearchResult, error)
}
