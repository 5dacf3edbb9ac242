package corpus

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockEmbedder maps each text to a fixed-dimension vector derived from
// its length, so identical texts get identical embeddings.
type mockEmbedder struct {
	failures int
	calls    int
}

func (m *mockEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	m.calls++
	if m.calls <= m.failures {
		return nil, fmt.Errorf("embedder unavailable")
	}
	out := make([][]float32, len(texts))
	for i, text := range texts {
		out[i] = []float32{float32(len(text)), 1, 0}
	}
	return out, nil
}

func (m *mockEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vecs, err := m.EmbedDocuments(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

func TestNewHandle(t *testing.T) {
	t.Run("Present Implies Chunks", func(t *testing.T) {
		h := NewHandle(10, []string{"report.pdf"})
		assert.True(t, h.Present)
		assert.Equal(t, 10, h.ChunkCount)
		assert.Equal(t, []string{"report.pdf"}, h.FileNames)
	})

	t.Run("Empty Corpus Is Absent", func(t *testing.T) {
		h := NewHandle(0, nil)
		assert.False(t, h.Present)
		assert.Equal(t, 0, h.ChunkCount)
	})

	t.Run("File Names Deduplicated And Sorted", func(t *testing.T) {
		h := NewHandle(3, []string{"b.txt", "a.txt", "b.txt"})
		assert.Equal(t, []string{"a.txt", "b.txt"}, h.FileNames)
	})
}

func TestInMemoryIndexSearch(t *testing.T) {
	ctx := context.Background()
	index := NewInMemoryIndex()

	err := index.Add(ctx, []Chunk{
		{ID: "c1", Content: "alpha", SourceFile: "a.txt", Embedding: []float32{1, 0, 0}},
		{ID: "c2", Content: "beta", SourceFile: "a.txt", Embedding: []float32{0, 1, 0}},
		{ID: "c3", Content: "gamma", SourceFile: "b.txt", Embedding: []float32{0.9, 0.1, 0}},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, index.Len())

	t.Run("Ranked By Similarity", func(t *testing.T) {
		results, err := index.Search(ctx, []float32{1, 0, 0}, 2)
		require.NoError(t, err)
		require.Len(t, results, 2)
		assert.Equal(t, "c1", results[0].Chunk.ID)
		assert.Equal(t, "c3", results[1].Chunk.ID)
		assert.Greater(t, results[0].Score, results[1].Score)
	})

	t.Run("K Larger Than Index", func(t *testing.T) {
		results, err := index.Search(ctx, []float32{1, 0, 0}, 10)
		require.NoError(t, err)
		assert.Len(t, results, 3)
	})

	t.Run("Invalid K", func(t *testing.T) {
		_, err := index.Search(ctx, []float32{1, 0, 0}, 0)
		assert.Error(t, err)
	})

	t.Run("Missing Embedding Rejected", func(t *testing.T) {
		err := index.Add(ctx, []Chunk{{ID: "bad", Content: "no vector"}})
		assert.Error(t, err)
	})
}

func TestInMemoryIndexEmpty(t *testing.T) {
	results, err := NewInMemoryIndex().Search(context.Background(), []float32{1, 0, 0}, 4)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, cosineSimilarity32([]float32{1, 2}, []float32{1, 2}), 1e-9)
	assert.InDelta(t, 0.0, cosineSimilarity32([]float32{1, 0}, []float32{0, 1}), 1e-9)
	assert.Equal(t, 0.0, cosineSimilarity32([]float32{1}, []float32{1, 2}))
	assert.Equal(t, 0.0, cosineSimilarity32([]float32{0, 0}, []float32{1, 2}))
}

func TestIngestPartialSuccess(t *testing.T) {
	ctx := context.Background()
	ing := NewIngestor(&mockEmbedder{}, WithChunkSize(50), WithChunkOverlap(0))

	files := []File{
		{Name: "notes.txt", Data: []byte("Revenue grew by ten percent in the last quarter.")},
		{Name: "empty.txt", Data: nil},
		{Name: "image.png", Data: []byte{0x89, 0x50}},
	}

	result, err := ing.Ingest(ctx, files)
	require.NoError(t, err)

	require.Len(t, result.Failures, 2)
	assert.Equal(t, "empty.txt", result.Failures[0].Name)
	assert.Equal(t, "image.png", result.Failures[1].Name)

	assert.True(t, result.Handle.Present)
	assert.Greater(t, result.Handle.ChunkCount, 0)
	assert.Equal(t, []string{"notes.txt"}, result.Handle.FileNames)
	assert.Equal(t, result.Handle.ChunkCount, result.Index.Len())
}

func TestIngestAllFilesFail(t *testing.T) {
	ctx := context.Background()
	ing := NewIngestor(&mockEmbedder{})

	result, err := ing.Ingest(ctx, []File{{Name: "broken.xyz", Data: []byte("x")}})
	require.NoError(t, err)

	assert.False(t, result.Handle.Present)
	assert.Equal(t, 0, result.Handle.ChunkCount)
	assert.Len(t, result.Failures, 1)
}

func TestIngestEmbedderFailure(t *testing.T) {
	ctx := context.Background()
	ing := NewIngestor(&mockEmbedder{failures: 10})

	_, err := ing.Ingest(ctx, []File{{Name: "notes.txt", Data: []byte("some content to embed")}})
	assert.Error(t, err)
}

func TestVectorRetriever(t *testing.T) {
	ctx := context.Background()
	embedder := &mockEmbedder{}
	index := NewInMemoryIndex()
	require.NoError(t, index.Add(ctx, []Chunk{
		{ID: "c1", Content: "short", SourceFile: "a.txt", Embedding: []float32{5, 1, 0}},
		{ID: "c2", Content: "a much longer chunk of text", SourceFile: "b.txt", Embedding: []float32{27, 1, 0}},
	}))

	r := NewVectorRetriever(index, embedder)

	results, err := r.Retrieve(ctx, "short", 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "c1", results[0].Chunk.ID)

	t.Run("Empty Index Is Not An Error", func(t *testing.T) {
		empty := NewVectorRetriever(NewInMemoryIndex(), embedder)
		results, err := empty.Retrieve(ctx, "anything", 4)
		require.NoError(t, err)
		assert.Empty(t, results)
	})
}
