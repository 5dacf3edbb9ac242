package strategy

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/tmc/langchaingo/llms"

	"github.com/Neelshah1810/Smart-Chatbot-with-LLM-RAG-Web-Search/corpus"
	"github.com/Neelshah1810/Smart-Chatbot-with-LLM-RAG-Web-Search/memory"
)

const retrievalSystemPrompt = `You are an AI assistant answering questions about uploaded documents. Ground your answer in the provided excerpts. If the excerpts do not contain the answer, say so instead of guessing.`

// Retrieval answers by retrieving corpus chunks relevant to the query
// and grounding a completion in them.
type Retrieval struct {
	retriever  corpus.Retriever
	model      llms.Model
	k          int
	maxSources int
	window     int
	timeout    time.Duration
}

var _ Strategy = (*Retrieval)(nil)

// RetrievalOption configures the Retrieval strategy.
type RetrievalOption func(*Retrieval)

// WithRetrievalK sets how many chunks are retrieved per query.
func WithRetrievalK(k int) RetrievalOption {
	return func(r *Retrieval) {
		if k > 0 {
			r.k = k
		}
	}
}

// WithRetrievalMaxSources caps the number of source files reported.
func WithRetrievalMaxSources(n int) RetrievalOption {
	return func(r *Retrieval) {
		if n > 0 {
			r.maxSources = n
		}
	}
}

// WithRetrievalWindow sets how many recent turns are included.
func WithRetrievalWindow(window int) RetrievalOption {
	return func(r *Retrieval) {
		r.window = window
	}
}

// WithRetrievalTimeout bounds the retrieve-and-generate sequence.
func WithRetrievalTimeout(timeout time.Duration) RetrievalOption {
	return func(r *Retrieval) {
		r.timeout = timeout
	}
}

// NewRetrieval creates the retrieval strategy.
func NewRetrieval(retriever corpus.Retriever, model llms.Model, opts ...RetrievalOption) *Retrieval {
	r := &Retrieval{
		retriever:  retriever,
		model:      model,
		k:          4,
		maxSources: 3,
		window:     6,
		timeout:    45 * time.Second,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Name returns the strategy name.
func (r *Retrieval) Name() string { return "retrieval" }

// Answer retrieves the top chunks for the query and grounds a completion
// in them. An empty retrieval result is not a failure; the model is told
// no excerpts matched.
func (r *Retrieval) Answer(ctx context.Context, query string, turns []memory.Turn) (*Result, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	hits, err := r.retriever.Retrieve(ctx, query, r.k)
	if err != nil {
		return nil, fmt.Errorf("retrieval failed: %w", err)
	}

	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, retrievalSystemPrompt),
	}
	messages = append(messages, historyMessages(turns, r.window)...)
	messages = append(messages, llms.TextParts(llms.ChatMessageTypeHuman, retrievalPrompt(query, hits)))

	answer, err := generate(ctx, r.model, messages, llms.WithTemperature(0.3))
	if err != nil {
		return nil, fmt.Errorf("completion failed: %w", err)
	}

	return &Result{Answer: answer, Sources: sourceFiles(hits, r.maxSources)}, nil
}

// retrievalPrompt renders the retrieved excerpts and the question.
func retrievalPrompt(query string, hits []corpus.SearchResult) string {
	var b strings.Builder
	if len(hits) == 0 {
		b.WriteString("No document excerpts matched the question.\n\n")
	} else {
		b.WriteString("Document excerpts:\n\n")
		for i, hit := range hits {
			fmt.Fprintf(&b, "[%d] (from %s)\n%s\n\n", i+1, hit.Chunk.SourceFile, hit.Chunk.Content)
		}
	}
	b.WriteString("Question: ")
	b.WriteString(query)
	return b.String()
}

// sourceFiles returns the unique source file names behind hits, in hit
// order, capped at max.
func sourceFiles(hits []corpus.SearchResult, max int) []string {
	seen := make(map[string]bool, len(hits))
	var files []string
	for _, hit := range hits {
		name := hit.Chunk.SourceFile
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		files = append(files, name)
		if max > 0 && len(files) >= max {
			break
		}
	}
	return files
}
