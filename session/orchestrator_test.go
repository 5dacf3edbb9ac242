package session

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Neelshah1810/Smart-Chatbot-with-LLM-RAG-Web-Search/corpus"
	"github.com/Neelshah1810/Smart-Chatbot-with-LLM-RAG-Web-Search/memory"
	"github.com/Neelshah1810/Smart-Chatbot-with-LLM-RAG-Web-Search/router"
	"github.com/Neelshah1810/Smart-Chatbot-with-LLM-RAG-Web-Search/strategy"
)

type stubStrategy struct {
	name   string
	result *strategy.Result
	err    error
	calls  int
}

func (s *stubStrategy) Name() string { return s.name }

func (s *stubStrategy) Answer(ctx context.Context, query string, turns []memory.Turn) (*strategy.Result, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

type stubEmbedder struct{}

func (stubEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		out[i] = stubVector(text)
	}
	return out, nil
}

func (stubEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	return stubVector(text), nil
}

func stubVector(text string) []float32 {
	return []float32{float32(len(text)), 1}
}

type fixture struct {
	orch      *Orchestrator
	direct    *stubStrategy
	retrieval *stubStrategy
	search    *stubStrategy
}

func newFixture(opts ...OrchestratorOption) *fixture {
	f := &fixture{
		direct:    &stubStrategy{name: "direct", result: &strategy.Result{Answer: "direct answer"}},
		retrieval: &stubStrategy{name: "retrieval", result: &strategy.Result{Answer: "retrieval answer", Sources: []string{"report.pdf"}}},
		search:    &stubStrategy{name: "search", result: &strategy.Result{Answer: "search answer", Sources: []string{"https://example.com"}}},
	}

	strategies := map[router.Route]strategy.Strategy{
		router.RouteDirect:    f.direct,
		router.RouteRetrieval: f.retrieval,
		router.RouteSearch:    f.search,
	}

	f.orch = NewOrchestrator(router.NewEngine(router.DefaultKeywords()), strategies, opts...)
	return f
}

func TestGreetingAnsweredDirect(t *testing.T) {
	f := newFixture()

	resp, err := f.orch.HandleQuery(context.Background(), "hello there")
	require.NoError(t, err)

	assert.Equal(t, "direct answer", resp.Answer)
	assert.Equal(t, router.RouteDirect, resp.Decision.Route)
	assert.Equal(t, router.RouteDirect, resp.UsedRoute)
	assert.False(t, resp.FallbackUsed)
	assert.Equal(t, 1, f.direct.calls)

	assert.Equal(t, RouteStats{Direct: 1}, f.orch.Stats())

	history := f.orch.History()
	require.Len(t, history, 2)
	assert.Equal(t, memory.SpeakerUser, history[0].Speaker)
	assert.Equal(t, "hello there", history[0].Text)
	assert.Equal(t, memory.SpeakerAssistant, history[1].Speaker)
	assert.Equal(t, "direct answer", history[1].Text)
}

func TestRecencyQueryAnsweredBySearch(t *testing.T) {
	f := newFixture()

	resp, err := f.orch.HandleQuery(context.Background(), "what's the weather in Paris today?")
	require.NoError(t, err)

	assert.Equal(t, router.RouteSearch, resp.UsedRoute)
	assert.Equal(t, "search answer", resp.Answer)
	assert.Equal(t, []string{"https://example.com"}, resp.Sources)
	assert.Equal(t, RouteStats{Search: 1}, f.orch.Stats())
}

func TestEmptyQueryLeavesSessionUntouched(t *testing.T) {
	f := newFixture()

	for _, query := range []string{"", "   ", "\n\t"} {
		_, err := f.orch.HandleQuery(context.Background(), query)
		assert.ErrorIs(t, err, ErrEmptyQuery)
	}

	assert.Equal(t, 0, len(f.orch.History()))
	assert.Equal(t, RouteStats{}, f.orch.Stats())
	assert.Equal(t, 0, f.direct.calls)
}

func TestFallbackToDirect(t *testing.T) {
	f := newFixture()
	f.search.err = fmt.Errorf("search backend down")

	resp, err := f.orch.HandleQuery(context.Background(), "latest news about Go")
	require.NoError(t, err)

	assert.Equal(t, router.RouteSearch, resp.Decision.Route)
	assert.Equal(t, router.RouteDirect, resp.UsedRoute)
	assert.True(t, resp.FallbackUsed)
	assert.Equal(t, "direct answer", resp.Answer)

	// The decision keeps the original routing reason and records why
	// the fallback happened
	assert.Contains(t, resp.Decision.Rationale, "recency keyword")
	assert.Contains(t, resp.Decision.Rationale, "fell back to direct")
	assert.Contains(t, resp.Decision.Rationale, "search backend down")

	// The answered route is counted, not the decided one
	assert.Equal(t, RouteStats{Direct: 1}, f.orch.Stats())
	assert.Len(t, f.orch.History(), 2)
}

func TestDirectFailureIsFatal(t *testing.T) {
	f := newFixture()
	f.direct.err = fmt.Errorf("api key revoked")

	_, err := f.orch.HandleQuery(context.Background(), "hello")
	require.Error(t, err)

	var fatal *FatalError
	require.ErrorAs(t, err, &fatal)

	// Nothing is recorded for a failed turn
	assert.Equal(t, 0, len(f.orch.History()))
	assert.Equal(t, RouteStats{}, f.orch.Stats())
}

func TestFallbackFailureIsFatal(t *testing.T) {
	f := newFixture()
	f.search.err = fmt.Errorf("search backend down")
	f.direct.err = fmt.Errorf("api key revoked")

	_, err := f.orch.HandleQuery(context.Background(), "breaking news")
	require.Error(t, err)

	var fatal *FatalError
	require.ErrorAs(t, err, &fatal)
	assert.Equal(t, 0, len(f.orch.History()))
	assert.Equal(t, RouteStats{}, f.orch.Stats())
	assert.Equal(t, 1, f.search.calls)
	assert.Equal(t, 1, f.direct.calls)
}

func TestDocumentQueryRequiresCorpus(t *testing.T) {
	f := newFixture()

	// Without a corpus the document keywords cannot route to retrieval
	resp, err := f.orch.HandleQuery(context.Background(), "summarize the uploaded document")
	require.NoError(t, err)
	assert.Equal(t, router.RouteDirect, resp.UsedRoute)
	assert.Equal(t, 0, f.retrieval.calls)
}

func TestLoadFilesEnablesRetrievalRoute(t *testing.T) {
	retriever := NewCorpusRetriever(stubEmbedder{})
	ingestor := corpus.NewIngestor(stubEmbedder{})
	f := newFixture(WithCorpus(ingestor, retriever))

	ingestion, err := f.orch.LoadFiles(context.Background(), []corpus.File{
		{Name: "report.txt", Data: []byte("Quarterly revenue grew twelve percent over the prior year.")},
	})
	require.NoError(t, err)
	assert.Empty(t, ingestion.Failures)

	handle := f.orch.Handle()
	assert.True(t, handle.Present)
	assert.Equal(t, []string{"report.txt"}, handle.FileNames)

	resp, err := f.orch.HandleQuery(context.Background(), "summarize the uploaded document")
	require.NoError(t, err)
	assert.Equal(t, router.RouteRetrieval, resp.UsedRoute)
	assert.Equal(t, []string{"report.pdf"}, resp.Sources)
	assert.Equal(t, RouteStats{Retrieval: 1}, f.orch.Stats())
}

func TestLoadFilesReportsPartialFailures(t *testing.T) {
	retriever := NewCorpusRetriever(stubEmbedder{})
	ingestor := corpus.NewIngestor(stubEmbedder{})
	f := newFixture(WithCorpus(ingestor, retriever))

	ingestion, err := f.orch.LoadFiles(context.Background(), []corpus.File{
		{Name: "notes.txt", Data: []byte("Meeting notes about the launch plan.")},
		{Name: "image.png", Data: []byte{0x89, 0x50}},
	})
	require.NoError(t, err)

	require.Len(t, ingestion.Failures, 1)
	assert.Equal(t, "image.png", ingestion.Failures[0].Name)
	assert.Equal(t, []string{"notes.txt"}, f.orch.Handle().FileNames)
}

func TestLoadFilesWithoutCorpusSupport(t *testing.T) {
	f := newFixture()

	_, err := f.orch.LoadFiles(context.Background(), []corpus.File{
		{Name: "a.txt", Data: []byte("text")},
	})
	assert.Error(t, err)
}

func TestCorpusRetrieverBeforeIngestion(t *testing.T) {
	retriever := NewCorpusRetriever(stubEmbedder{})

	results, err := retriever.Retrieve(context.Background(), "anything", 4)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestCorpusRetrieverSeesIngestedChunks(t *testing.T) {
	retriever := NewCorpusRetriever(stubEmbedder{})
	ingestor := corpus.NewIngestor(stubEmbedder{})
	f := newFixture(WithCorpus(ingestor, retriever))

	_, err := f.orch.LoadFiles(context.Background(), []corpus.File{
		{Name: "report.txt", Data: []byte("Revenue grew twelve percent.")},
	})
	require.NoError(t, err)

	results, err := retriever.Retrieve(context.Background(), "revenue", 4)
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Equal(t, "report.txt", results[0].Chunk.SourceFile)
}

func TestResetClearsMemoryAndStatsKeepsCorpus(t *testing.T) {
	retriever := NewCorpusRetriever(stubEmbedder{})
	ingestor := corpus.NewIngestor(stubEmbedder{})
	f := newFixture(WithCorpus(ingestor, retriever))

	_, err := f.orch.LoadFiles(context.Background(), []corpus.File{
		{Name: "report.txt", Data: []byte("Some indexed content for later.")},
	})
	require.NoError(t, err)

	_, err = f.orch.HandleQuery(context.Background(), "hello")
	require.NoError(t, err)
	require.Len(t, f.orch.History(), 2)

	f.orch.Reset()

	assert.Equal(t, 0, len(f.orch.History()))
	assert.Equal(t, RouteStats{}, f.orch.Stats())
	assert.True(t, f.orch.Handle().Present)
}

func TestConversationAccumulates(t *testing.T) {
	f := newFixture()

	_, err := f.orch.HandleQuery(context.Background(), "hello")
	require.NoError(t, err)
	_, err = f.orch.HandleQuery(context.Background(), "what's the latest news?")
	require.NoError(t, err)

	history := f.orch.History()
	require.Len(t, history, 4)
	assert.Equal(t, "hello", history[0].Text)
	assert.Equal(t, "what's the latest news?", history[2].Text)
	assert.Equal(t, RouteStats{Direct: 1, Search: 1}, f.orch.Stats())
	assert.Equal(t, 2, f.orch.Stats().Total())
}
