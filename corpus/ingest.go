package corpus

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/tmc/langchaingo/documentloaders"
	"github.com/tmc/langchaingo/schema"
	"github.com/tmc/langchaingo/textsplitter"

	"github.com/Neelshah1810/Smart-Chatbot-with-LLM-RAG-Web-Search/log"
)

// File is a raw uploaded file.
type File struct {
	Name string
	Data []byte
}

// FileError records a per-file ingestion failure.
type FileError struct {
	Name string
	Err  error
}

func (e FileError) Error() string {
	return fmt.Sprintf("%s: %v", e.Name, e.Err)
}

// Ingestion is the outcome of processing a batch of files. Failures are
// collected per file; the index and handle cover the files that
// succeeded.
type Ingestion struct {
	Index    *InMemoryIndex
	Handle   Handle
	Failures []FileError
}

// Ingestor turns uploaded files into an indexed corpus.
type Ingestor struct {
	embedder     Embedder
	chunkSize    int
	chunkOverlap int
	logger       log.Logger
}

// IngestorOption configures the Ingestor.
type IngestorOption func(*Ingestor)

// WithChunkSize sets the target characters per chunk.
func WithChunkSize(size int) IngestorOption {
	return func(i *Ingestor) {
		if size > 0 {
			i.chunkSize = size
		}
	}
}

// WithChunkOverlap sets the character overlap between adjacent chunks.
func WithChunkOverlap(overlap int) IngestorOption {
	return func(i *Ingestor) {
		if overlap >= 0 {
			i.chunkOverlap = overlap
		}
	}
}

// WithIngestorLogger sets the logger.
func WithIngestorLogger(logger log.Logger) IngestorOption {
	return func(i *Ingestor) {
		i.logger = logger
	}
}

// NewIngestor creates an Ingestor over the given embedder.
func NewIngestor(embedder Embedder, opts ...IngestorOption) *Ingestor {
	ing := &Ingestor{
		embedder:     embedder,
		chunkSize:    1000,
		chunkOverlap: 200,
		logger:       log.GetDefaultLogger(),
	}
	for _, opt := range opts {
		opt(ing)
	}
	return ing
}

// Ingest loads, splits, embeds, and indexes the given files. A failing
// file is recorded and skipped; the remaining files still produce a
// valid handle. The previous corpus, if any, is not touched: callers
// replace their index and handle with the returned ones.
func (i *Ingestor) Ingest(ctx context.Context, files []File) (*Ingestion, error) {
	splitter := textsplitter.NewRecursiveCharacter(
		textsplitter.WithChunkSize(i.chunkSize),
		textsplitter.WithChunkOverlap(i.chunkOverlap),
	)

	result := &Ingestion{
		Index: NewInMemoryIndex(),
	}

	var chunks []Chunk
	var fileNames []string

	for _, file := range files {
		docs, err := i.loadAndSplit(ctx, file, splitter)
		if err != nil {
			i.logger.Warn("ingestion failed for %s: %v", file.Name, err)
			result.Failures = append(result.Failures, FileError{Name: file.Name, Err: err})
			continue
		}

		for _, doc := range docs {
			content := strings.TrimSpace(doc.PageContent)
			if content == "" {
				continue
			}
			chunks = append(chunks, Chunk{
				ID:         uuid.New().String(),
				Content:    content,
				SourceFile: file.Name,
			})
		}
		fileNames = append(fileNames, file.Name)
		i.logger.Info("processed %s into %d chunks", file.Name, len(docs))
	}

	if len(chunks) > 0 {
		texts := make([]string, len(chunks))
		for idx, chunk := range chunks {
			texts[idx] = chunk.Content
		}

		embeddings, err := i.embedder.EmbedDocuments(ctx, texts)
		if err != nil {
			return nil, fmt.Errorf("failed to embed corpus: %w", err)
		}
		for idx := range chunks {
			chunks[idx].Embedding = embeddings[idx]
		}

		if err := result.Index.Add(ctx, chunks); err != nil {
			return nil, fmt.Errorf("failed to index corpus: %w", err)
		}
	}

	result.Handle = NewHandle(len(chunks), fileNames)
	return result, nil
}

func (i *Ingestor) loadAndSplit(ctx context.Context, file File, splitter textsplitter.TextSplitter) ([]schema.Document, error) {
	if len(file.Data) == 0 {
		return nil, fmt.Errorf("file is empty")
	}

	ext := strings.ToLower(filepath.Ext(file.Name))
	switch ext {
	case ".pdf":
		loader := documentloaders.NewPDF(bytes.NewReader(file.Data), int64(len(file.Data)))
		return loader.LoadAndSplit(ctx, splitter)
	case ".txt", ".md":
		loader := documentloaders.NewText(bytes.NewReader(file.Data))
		return loader.LoadAndSplit(ctx, splitter)
	case ".html", ".htm":
		loader := documentloaders.NewHTML(bytes.NewReader(file.Data))
		return loader.LoadAndSplit(ctx, splitter)
	default:
		return nil, fmt.Errorf("unsupported file type %q", ext)
	}
}
