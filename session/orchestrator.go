// Package session implements the conversation orchestrator: the layer
// that validates a query, asks the routing engine for a decision,
// dispatches to the chosen answer strategy, applies the fallback policy,
// and records the exchange in memory.
//
// The fallback policy is deliberately shallow: a failing retrieval or
// search strategy gets exactly one retry through the direct strategy,
// and a failing direct strategy ends the turn with a FatalError.
package session

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/Neelshah1810/Smart-Chatbot-with-LLM-RAG-Web-Search/corpus"
	"github.com/Neelshah1810/Smart-Chatbot-with-LLM-RAG-Web-Search/log"
	"github.com/Neelshah1810/Smart-Chatbot-with-LLM-RAG-Web-Search/memory"
	"github.com/Neelshah1810/Smart-Chatbot-with-LLM-RAG-Web-Search/router"
	"github.com/Neelshah1810/Smart-Chatbot-with-LLM-RAG-Web-Search/strategy"
)

// RouteStats counts answered turns per route. A turn answered through
// the fallback counts toward direct, not the originally decided route.
type RouteStats struct {
	Direct    int
	Retrieval int
	Search    int
}

// Total returns the number of answered turns.
func (s RouteStats) Total() int {
	return s.Direct + s.Retrieval + s.Search
}

// Response is the outcome of one answered turn. Decision records what
// the routing engine chose; UsedRoute is the route that actually
// produced the answer, which differs when FallbackUsed is set. On a
// fallback the failure is appended to the decision rationale.
type Response struct {
	Answer       string
	Sources      []string
	Decision     router.Decision
	UsedRoute    router.Route
	FallbackUsed bool
}

// Orchestrator drives a single conversation session.
type Orchestrator struct {
	engine     *router.Engine
	strategies map[router.Route]strategy.Strategy
	memory     *memory.ConversationMemory
	ingestor   *corpus.Ingestor
	retriever  *CorpusRetriever
	logger     log.Logger

	mu     sync.Mutex
	handle corpus.Handle
	stats  RouteStats
}

// OrchestratorOption configures the Orchestrator.
type OrchestratorOption func(*Orchestrator)

// WithMemory sets the conversation memory.
func WithMemory(mem *memory.ConversationMemory) OrchestratorOption {
	return func(o *Orchestrator) {
		o.memory = mem
	}
}

// WithCorpus enables document ingestion. The retriever must be the same
// instance the retrieval strategy reads from, so an ingestion becomes
// visible to subsequent retrieval answers.
func WithCorpus(ingestor *corpus.Ingestor, retriever *CorpusRetriever) OrchestratorOption {
	return func(o *Orchestrator) {
		o.ingestor = ingestor
		o.retriever = retriever
	}
}

// WithOrchestratorLogger sets the logger.
func WithOrchestratorLogger(logger log.Logger) OrchestratorOption {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}

// NewOrchestrator creates an orchestrator over the given routing engine
// and strategies. The strategies map must contain an entry for
// router.RouteDirect, which is also the fallback target.
func NewOrchestrator(engine *router.Engine, strategies map[router.Route]strategy.Strategy, opts ...OrchestratorOption) *Orchestrator {
	o := &Orchestrator{
		engine:     engine,
		strategies: strategies,
		memory:     memory.NewConversationMemory(),
		logger:     log.GetDefaultLogger(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// HandleQuery answers one user query. Blank input returns ErrEmptyQuery
// without touching memory or stats. On success the user and assistant
// turns are appended to memory and the answering route is counted.
func (o *Orchestrator) HandleQuery(ctx context.Context, query string) (*Response, error) {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return nil, ErrEmptyQuery
	}

	turns := o.memory.Snapshot()
	decision := o.engine.Decide(ctx, trimmed, turns, o.Handle())
	o.logger.Info("routed to %s (confidence %.2f, %s): %s",
		decision.Route, decision.Confidence, decision.TriggeredBy, decision.Rationale)

	usedRoute := decision.Route
	fallbackUsed := false

	result, err := o.dispatch(ctx, decision.Route, trimmed, turns)
	if err != nil {
		if decision.Route == router.RouteDirect {
			return nil, &FatalError{Err: &StrategyError{Route: decision.Route, Err: err}}
		}

		o.logger.Warn("%s strategy failed, falling back to direct: %v", decision.Route, err)
		decision.Rationale += fmt.Sprintf("; fell back to direct: %v", err)
		usedRoute = router.RouteDirect
		fallbackUsed = true

		result, err = o.dispatch(ctx, router.RouteDirect, trimmed, turns)
		if err != nil {
			return nil, &FatalError{Err: &StrategyError{Route: router.RouteDirect, Err: err}}
		}
	}

	o.memory.Append(memory.NewTurn(memory.SpeakerUser, trimmed))
	o.memory.Append(memory.NewTurn(memory.SpeakerAssistant, result.Answer))
	o.countRoute(usedRoute)

	return &Response{
		Answer:       result.Answer,
		Sources:      result.Sources,
		Decision:     decision,
		UsedRoute:    usedRoute,
		FallbackUsed: fallbackUsed,
	}, nil
}

// LoadFiles ingests the given files and replaces the session corpus.
// Per-file failures are reported in the returned Ingestion; the corpus
// is replaced even when only a subset of the files succeeded.
func (o *Orchestrator) LoadFiles(ctx context.Context, files []corpus.File) (*corpus.Ingestion, error) {
	if o.ingestor == nil || o.retriever == nil {
		return nil, fmt.Errorf("document ingestion is not configured")
	}

	ingestion, err := o.ingestor.Ingest(ctx, files)
	if err != nil {
		return nil, fmt.Errorf("ingestion failed: %w", err)
	}

	o.retriever.swap(ingestion.Index)
	o.mu.Lock()
	o.handle = ingestion.Handle
	o.mu.Unlock()

	o.logger.Info("corpus replaced: %d chunks from %d files, %d failures",
		ingestion.Handle.ChunkCount, len(ingestion.Handle.FileNames), len(ingestion.Failures))
	return ingestion, nil
}

// Handle returns the current corpus handle.
func (o *Orchestrator) Handle() corpus.Handle {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.handle
}

// Stats returns a copy of the per-route counters.
func (o *Orchestrator) Stats() RouteStats {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.stats
}

// History returns a copy of the conversation log, oldest first.
func (o *Orchestrator) History() []memory.Turn {
	return o.memory.Snapshot()
}

// Reset clears the conversation memory and the route stats. The corpus
// is kept; re-ingestion is the only way to replace it.
func (o *Orchestrator) Reset() {
	o.memory.Clear()
	o.mu.Lock()
	o.stats = RouteStats{}
	o.mu.Unlock()
}

func (o *Orchestrator) dispatch(ctx context.Context, route router.Route, query string, turns []memory.Turn) (*strategy.Result, error) {
	strat, ok := o.strategies[route]
	if !ok {
		return nil, fmt.Errorf("no strategy registered for route %s", route)
	}
	return strat.Answer(ctx, query, turns)
}

func (o *Orchestrator) countRoute(route router.Route) {
	o.mu.Lock()
	defer o.mu.Unlock()
	switch route {
	case router.RouteDirect:
		o.stats.Direct++
	case router.RouteRetrieval:
		o.stats.Retrieval++
	case router.RouteSearch:
		o.stats.Search++
	}
}
