package strategy

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/tmc/langchaingo/llms"

	"github.com/Neelshah1810/Smart-Chatbot-with-LLM-RAG-Web-Search/memory"
	"github.com/Neelshah1810/Smart-Chatbot-with-LLM-RAG-Web-Search/tool"
)

const searchSystemPrompt = `You are an AI assistant with access to fresh web search results. Synthesize an answer from the results below, note when they disagree, and do not invent facts the results do not support.`

// Search answers by running a web search and synthesizing a completion
// from the results.
type Search struct {
	searcher tool.Searcher
	model    llms.Model
	window   int
	timeout  time.Duration
}

var _ Strategy = (*Search)(nil)

// SearchOption configures the Search strategy.
type SearchOption func(*Search)

// WithSearchWindow sets how many recent turns are included.
func WithSearchWindow(window int) SearchOption {
	return func(s *Search) {
		s.window = window
	}
}

// WithSearchTimeout bounds the search-and-generate sequence.
func WithSearchTimeout(timeout time.Duration) SearchOption {
	return func(s *Search) {
		s.timeout = timeout
	}
}

// NewSearch creates the web search strategy.
func NewSearch(searcher tool.Searcher, model llms.Model, opts ...SearchOption) *Search {
	s := &Search{
		searcher: searcher,
		model:    model,
		window:   6,
		timeout:  45 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the strategy name.
func (s *Search) Name() string { return "search" }

// Answer runs the web search and synthesizes an answer from the
// results. A search that returns no results is a failure, since the
// strategy has nothing to ground the answer in.
func (s *Search) Answer(ctx context.Context, query string, turns []memory.Turn) (*Result, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	results, err := s.searcher.Search(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("web search failed: %w", err)
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("web search returned no results")
	}

	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, searchSystemPrompt),
	}
	messages = append(messages, historyMessages(turns, s.window)...)
	messages = append(messages, llms.TextParts(llms.ChatMessageTypeHuman, searchPrompt(query, results)))

	answer, err := generate(ctx, s.model, messages, llms.WithTemperature(0.3))
	if err != nil {
		return nil, fmt.Errorf("completion failed: %w", err)
	}

	sources := make([]string, 0, len(results))
	for _, r := range results {
		sources = append(sources, r.URL)
	}

	return &Result{Answer: answer, Sources: sources}, nil
}

// searchPrompt renders the search results and the question.
func searchPrompt(query string, results []tool.Result) string {
	var b strings.Builder
	b.WriteString("Web search results:\n\n")
	for i, r := range results {
		fmt.Fprintf(&b, "[%d] %s\n%s\n%s\n\n", i+1, r.Title, r.URL, r.Snippet)
	}
	b.WriteString("Question: ")
	b.WriteString(query)
	return b.String()
}
