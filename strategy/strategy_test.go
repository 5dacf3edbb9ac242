package strategy

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"

	"github.com/Neelshah1810/Smart-Chatbot-with-LLM-RAG-Web-Search/corpus"
	"github.com/Neelshah1810/Smart-Chatbot-with-LLM-RAG-Web-Search/memory"
	"github.com/Neelshah1810/Smart-Chatbot-with-LLM-RAG-Web-Search/tool"
)

type mockModel struct {
	response string
	err      error
	messages []llms.MessageContent
}

func (m *mockModel) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	m.messages = messages
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if m.err != nil {
		return nil, m.err
	}
	return &llms.ContentResponse{
		Choices: []*llms.ContentChoice{{Content: m.response}},
	}, nil
}

func (m *mockModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	return m.response, nil
}

type mockRetriever struct {
	hits []corpus.SearchResult
	err  error
	gotK int
}

func (m *mockRetriever) Retrieve(ctx context.Context, query string, k int) ([]corpus.SearchResult, error) {
	m.gotK = k
	if m.err != nil {
		return nil, m.err
	}
	return m.hits, nil
}

type mockSearcher struct {
	results []tool.Result
	err     error
}

func (m *mockSearcher) Search(ctx context.Context, query string) ([]tool.Result, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.results, nil
}

func textOf(t *testing.T, msg llms.MessageContent) string {
	t.Helper()
	require.Len(t, msg.Parts, 1)
	part, ok := msg.Parts[0].(llms.TextContent)
	require.True(t, ok)
	return part.Text
}

func TestDirectAnswer(t *testing.T) {
	model := &mockModel{response: "42"}
	d := NewDirect(model)

	turns := []memory.Turn{
		memory.NewTurn(memory.SpeakerUser, "what is 6*7?"),
		memory.NewTurn(memory.SpeakerAssistant, "42"),
	}

	result, err := d.Answer(context.Background(), "and doubled?", turns)
	require.NoError(t, err)
	assert.Equal(t, "42", result.Answer)
	assert.Empty(t, result.Sources)

	// system prompt, two history turns, then the query
	require.Len(t, model.messages, 4)
	assert.Equal(t, llms.ChatMessageTypeSystem, model.messages[0].Role)
	assert.Equal(t, llms.ChatMessageTypeHuman, model.messages[1].Role)
	assert.Equal(t, llms.ChatMessageTypeAI, model.messages[2].Role)
	assert.Equal(t, "and doubled?", textOf(t, model.messages[3]))
}

func TestDirectWindowCapsHistory(t *testing.T) {
	model := &mockModel{response: "ok"}
	d := NewDirect(model, WithDirectWindow(2))

	var turns []memory.Turn
	for i := 0; i < 6; i++ {
		turns = append(turns, memory.NewTurn(memory.SpeakerUser, fmt.Sprintf("turn %d", i)))
	}

	_, err := d.Answer(context.Background(), "q", turns)
	require.NoError(t, err)

	// system prompt + 2 windowed turns + query
	require.Len(t, model.messages, 4)
	assert.Equal(t, "turn 4", textOf(t, model.messages[1]))
	assert.Equal(t, "turn 5", textOf(t, model.messages[2]))
}

func TestDirectModelFailure(t *testing.T) {
	d := NewDirect(&mockModel{err: fmt.Errorf("api down")})

	_, err := d.Answer(context.Background(), "q", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "api down")
}

func TestDirectTimeout(t *testing.T) {
	d := NewDirect(&mockModel{response: "late"}, WithDirectTimeout(time.Nanosecond))

	_, err := d.Answer(context.Background(), "q", nil)
	assert.Error(t, err)
}

func TestRetrievalAnswer(t *testing.T) {
	retriever := &mockRetriever{hits: []corpus.SearchResult{
		{Chunk: corpus.Chunk{Content: "revenue grew 12%", SourceFile: "report.pdf"}, Score: 0.9},
		{Chunk: corpus.Chunk{Content: "costs were flat", SourceFile: "report.pdf"}, Score: 0.8},
		{Chunk: corpus.Chunk{Content: "meeting agenda", SourceFile: "notes.txt"}, Score: 0.5},
	}}
	model := &mockModel{response: "Revenue grew 12% while costs stayed flat."}
	r := NewRetrieval(retriever, model)

	result, err := r.Answer(context.Background(), "how did revenue do?", nil)
	require.NoError(t, err)
	assert.Equal(t, 4, retriever.gotK)
	assert.Equal(t, "Revenue grew 12% while costs stayed flat.", result.Answer)
	assert.Equal(t, []string{"report.pdf", "notes.txt"}, result.Sources)

	prompt := textOf(t, model.messages[len(model.messages)-1])
	assert.Contains(t, prompt, "revenue grew 12%")
	assert.Contains(t, prompt, "how did revenue do?")
}

func TestRetrievalEmptyHitsAreNotAFailure(t *testing.T) {
	model := &mockModel{response: "The documents do not cover that."}
	r := NewRetrieval(&mockRetriever{}, model)

	result, err := r.Answer(context.Background(), "unrelated question", nil)
	require.NoError(t, err)
	assert.Empty(t, result.Sources)

	prompt := textOf(t, model.messages[len(model.messages)-1])
	assert.Contains(t, prompt, "No document excerpts matched")
}

func TestRetrievalRetrieverFailure(t *testing.T) {
	r := NewRetrieval(&mockRetriever{err: fmt.Errorf("index gone")}, &mockModel{response: "x"})

	_, err := r.Answer(context.Background(), "q", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "index gone")
}

func TestRetrievalMaxSources(t *testing.T) {
	hits := []corpus.SearchResult{
		{Chunk: corpus.Chunk{Content: "a", SourceFile: "a.txt"}},
		{Chunk: corpus.Chunk{Content: "b", SourceFile: "b.txt"}},
		{Chunk: corpus.Chunk{Content: "c", SourceFile: "c.txt"}},
		{Chunk: corpus.Chunk{Content: "d", SourceFile: "d.txt"}},
	}
	r := NewRetrieval(&mockRetriever{hits: hits}, &mockModel{response: "x"}, WithRetrievalMaxSources(2))

	result, err := r.Answer(context.Background(), "q", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.txt", "b.txt"}, result.Sources)
}

func TestSearchAnswer(t *testing.T) {
	searcher := &mockSearcher{results: []tool.Result{
		{Title: "Weather Today", URL: "https://example.com/weather", Snippet: "Sunny, 24C"},
		{Title: "Forecast", URL: "https://example.org/forecast", Snippet: "Rain tomorrow"},
	}}
	model := &mockModel{response: "It is sunny today with rain expected tomorrow."}
	s := NewSearch(searcher, model)

	result, err := s.Answer(context.Background(), "what's the weather?", nil)
	require.NoError(t, err)
	assert.Equal(t, "It is sunny today with rain expected tomorrow.", result.Answer)
	assert.Equal(t, []string{"https://example.com/weather", "https://example.org/forecast"}, result.Sources)

	prompt := textOf(t, model.messages[len(model.messages)-1])
	assert.Contains(t, prompt, "Sunny, 24C")
	assert.Contains(t, prompt, "what's the weather?")
}

func TestSearchNoResultsIsAFailure(t *testing.T) {
	s := NewSearch(&mockSearcher{}, &mockModel{response: "x"})

	_, err := s.Answer(context.Background(), "q", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no results")
}

func TestSearchSearcherFailure(t *testing.T) {
	s := NewSearch(&mockSearcher{err: fmt.Errorf("rate limited")}, &mockModel{response: "x"})

	_, err := s.Answer(context.Background(), "q", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limited")
}
