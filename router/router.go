// Package router implements the route decision engine: the ordered rule
// chain that inspects a query, the conversation memory, and the corpus
// handle, and selects the answer strategy (direct, retrieval, or search).
//
// Rules are evaluated in a fixed order and the first match wins. Override
// and keyword tiers are deterministic; the optional model-assisted
// classifier sits at the bottom of the chain, just above the default.
// A rule failure never surfaces to the caller: the chain falls through
// to the next rule.
package router

import (
	"context"

	"github.com/Neelshah1810/Smart-Chatbot-with-LLM-RAG-Web-Search/corpus"
	"github.com/Neelshah1810/Smart-Chatbot-with-LLM-RAG-Web-Search/log"
	"github.com/Neelshah1810/Smart-Chatbot-with-LLM-RAG-Web-Search/memory"
	"github.com/tmc/langchaingo/llms"
)

// Route identifies the answer strategy selected for a query.
type Route string

const (
	// RouteDirect answers with a plain LLM completion
	RouteDirect Route = "direct"
	// RouteRetrieval answers with RAG over the uploaded corpus
	RouteRetrieval Route = "retrieval"
	// RouteSearch answers with web-search-augmented synthesis
	RouteSearch Route = "search"
)

// TriggeredBy records which tier of the decision policy produced a decision.
type TriggeredBy string

const (
	// TriggeredByOverrideRule marks short-circuit rules (greetings, empty input)
	TriggeredByOverrideRule TriggeredBy = "override_rule"
	// TriggeredByKeywordRule marks the recency and document-reference rules
	TriggeredByKeywordRule TriggeredBy = "keyword_rule"
	// TriggeredByModelClassification marks the LLM classifier tier
	TriggeredByModelClassification TriggeredBy = "model_classification"
	// TriggeredByDefault marks the fallback tier
	TriggeredByDefault TriggeredBy = "default"
)

// Decision is the outcome of routing a single query. Produced fresh per
// query; not persisted beyond the turn it informs.
type Decision struct {
	Route       Route
	Confidence  float64
	Rationale   string
	TriggeredBy TriggeredBy
}

// Keywords holds the configurable keyword sets the rule tiers match on.
type Keywords struct {
	GreetingPatterns []string
	RecencyKeywords  []string
	DocumentKeywords []string
}

// DefaultKeywords returns the built-in keyword sets.
func DefaultKeywords() Keywords {
	return Keywords{
		GreetingPatterns: []string{
			"hello", "hi", "hey", "good morning", "good afternoon",
			"good evening", "thanks", "thank you", "bye", "goodbye",
			"how are you", "what's up",
		},
		RecencyKeywords: []string{
			"latest", "current", "today", "now", "recent", "news",
			"weather", "stock", "price", "happening", "score",
			"live", "real-time", "update", "breaking",
		},
		DocumentKeywords: []string{
			"document", "file", "pdf", "uploaded", "in the text",
			"according to", "from the document", "in the paper",
			"the article states", "summarize the", "extract from",
		},
	}
}

// Query is the normalized input a rule evaluates. Built once per Decide
// call so every rule sees the same tokenization.
type Query struct {
	Text       string
	Normalized string
	Tokens     []string
	Memory     []memory.Turn
	Corpus     corpus.Handle
}

// Rule is one tier of the decision policy. A nil decision with a nil
// error means the rule does not apply; an error means the tier failed
// and the chain falls through.
type Rule interface {
	Name() string
	Evaluate(ctx context.Context, q Query) (*Decision, error)
}

// Engine evaluates the rule chain. It holds configuration only — no
// mutable state — so routing is reproducible for identical inputs.
type Engine struct {
	rules  []Rule
	logger log.Logger
}

// EngineOption configures the Engine.
type EngineOption func(*engineOptions)

type engineOptions struct {
	classifier    llms.Model
	contextWindow int
	logger        log.Logger
}

// WithClassifier enables the model-assisted classification tier using
// the given model and a window of recent turns included in the prompt.
func WithClassifier(model llms.Model, contextWindow int) EngineOption {
	return func(o *engineOptions) {
		o.classifier = model
		o.contextWindow = contextWindow
	}
}

// WithLogger sets the engine logger.
func WithLogger(logger log.Logger) EngineOption {
	return func(o *engineOptions) {
		o.logger = logger
	}
}

// NewEngine creates an engine with the standard rule chain over the
// given keyword sets.
func NewEngine(keywords Keywords, opts ...EngineOption) *Engine {
	options := &engineOptions{
		contextWindow: 6,
		logger:        log.GetDefaultLogger(),
	}
	for _, opt := range opts {
		opt(options)
	}

	rules := []Rule{
		&GreetingRule{Patterns: keywords.GreetingPatterns},
		&RecencyRule{Keywords: keywords.RecencyKeywords},
		&DocumentReferenceRule{Keywords: keywords.DocumentKeywords},
	}
	if options.classifier != nil {
		rules = append(rules, &ClassifierRule{
			Model:         options.classifier,
			ContextWindow: options.contextWindow,
		})
	}
	rules = append(rules, &DefaultRule{})

	return &Engine{
		rules:  rules,
		logger: options.logger,
	}
}

// NewEngineWithRules creates an engine from an explicit rule chain,
// evaluated in order. The caller is responsible for ending the chain
// with a rule that always matches.
func NewEngineWithRules(rules []Rule, logger log.Logger) *Engine {
	if logger == nil {
		logger = log.GetDefaultLogger()
	}
	return &Engine{rules: rules, logger: logger}
}

// Decide routes a query. Empty input short-circuits to direct so the
// orchestrator can prompt for input instead of calling a strategy. Rule
// failures are absorbed: the chain always produces a decision.
func (e *Engine) Decide(ctx context.Context, query string, turns []memory.Turn, handle corpus.Handle) Decision {
	q := NewQuery(query, turns, handle)

	if q.Normalized == "" {
		return Decision{
			Route:       RouteDirect,
			Confidence:  1.0,
			Rationale:   "empty input",
			TriggeredBy: TriggeredByOverrideRule,
		}
	}

	for _, rule := range e.rules {
		decision, err := rule.Evaluate(ctx, q)
		if err != nil {
			e.logger.Warn("routing rule %s failed: %v", rule.Name(), err)
			continue
		}
		if decision == nil {
			continue
		}
		e.logger.Debug("routed to %s by %s: %s", decision.Route, rule.Name(), decision.Rationale)
		return *decision
	}

	// Unreachable with the standard chain; kept for custom rule sets
	// that forget a terminal rule.
	return Decision{
		Route:       RouteDirect,
		Confidence:  0.5,
		Rationale:   "no rule matched",
		TriggeredBy: TriggeredByDefault,
	}
}
