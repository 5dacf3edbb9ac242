package router

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/Neelshah1810/Smart-Chatbot-with-LLM-RAG-Web-Search/corpus"
	"github.com/Neelshah1810/Smart-Chatbot-with-LLM-RAG-Web-Search/memory"
)

// NewQuery tokenizes and normalizes a raw query for rule evaluation.
func NewQuery(text string, turns []memory.Turn, handle corpus.Handle) Query {
	tokens := tokenize(text)
	return Query{
		Text:       text,
		Normalized: strings.Join(tokens, " "),
		Tokens:     tokens,
		Memory:     turns,
		Corpus:     handle,
	}
}

// tokenize lowercases text and splits it into word tokens. Apostrophes
// stay inside tokens so "what's" survives as one word.
func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\''
	})
}

// matchKeyword reports whether the normalized query contains the keyword
// on token boundaries. Multi-word keywords match as token phrases, so
// "latest" never matches inside "later" or "relate".
func matchKeyword(normalized, keyword string) bool {
	kw := strings.Join(tokenize(keyword), " ")
	if kw == "" {
		return false
	}
	return strings.Contains(" "+normalized+" ", " "+kw+" ")
}

// firstKeywordMatch returns the first keyword from the set found in the
// normalized query, and whether any matched.
func firstKeywordMatch(normalized string, keywords []string) (string, bool) {
	for _, kw := range keywords {
		if matchKeyword(normalized, kw) {
			return kw, true
		}
	}
	return "", false
}

// hasYearToken reports whether any token is an explicit year (19xx/20xx).
func hasYearToken(tokens []string) (string, bool) {
	for _, tok := range tokens {
		if len(tok) != 4 {
			continue
		}
		if !strings.HasPrefix(tok, "19") && !strings.HasPrefix(tok, "20") {
			continue
		}
		allDigits := true
		for _, r := range tok {
			if r < '0' || r > '9' {
				allDigits = false
				break
			}
		}
		if allDigits {
			return tok, true
		}
	}
	return "", false
}

// GreetingRule short-circuits greetings and small talk to the direct
// route before any expensive classification runs.
type GreetingRule struct {
	Patterns []string
}

// Name returns the rule name.
func (r *GreetingRule) Name() string { return "greeting_override" }

// Evaluate matches when the query opens with one of the greeting patterns.
func (r *GreetingRule) Evaluate(ctx context.Context, q Query) (*Decision, error) {
	for _, pattern := range r.Patterns {
		p := strings.Join(tokenize(pattern), " ")
		if p == "" {
			continue
		}
		if strings.HasPrefix(q.Normalized+" ", p+" ") {
			return &Decision{
				Route:       RouteDirect,
				Confidence:  1.0,
				Rationale:   fmt.Sprintf("conversational opener %q", pattern),
				TriggeredBy: TriggeredByOverrideRule,
			}, nil
		}
	}
	return nil, nil
}

// RecencyRule routes queries that need fresh data to web search. It runs
// before the document rule: recency language outweighs document phrasing
// even when both appear ("the latest update according to the document").
type RecencyRule struct {
	Keywords []string
}

// Name returns the rule name.
func (r *RecencyRule) Name() string { return "recency_keywords" }

// Evaluate matches recency keywords and explicit year tokens.
func (r *RecencyRule) Evaluate(ctx context.Context, q Query) (*Decision, error) {
	if kw, ok := firstKeywordMatch(q.Normalized, r.Keywords); ok {
		return &Decision{
			Route:       RouteSearch,
			Confidence:  0.95,
			Rationale:   fmt.Sprintf("recency keyword %q", kw),
			TriggeredBy: TriggeredByKeywordRule,
		}, nil
	}
	if year, ok := hasYearToken(q.Tokens); ok {
		return &Decision{
			Route:       RouteSearch,
			Confidence:  0.95,
			Rationale:   fmt.Sprintf("explicit year token %q", year),
			TriggeredBy: TriggeredByKeywordRule,
		}, nil
	}
	return nil, nil
}

// DocumentReferenceRule routes document-phrased queries to retrieval,
// but only while a corpus is actually present.
type DocumentReferenceRule struct {
	Keywords []string
}

// Name returns the rule name.
func (r *DocumentReferenceRule) Name() string { return "document_reference" }

// Evaluate matches document keywords when the corpus is available.
func (r *DocumentReferenceRule) Evaluate(ctx context.Context, q Query) (*Decision, error) {
	if !q.Corpus.Present {
		return nil, nil
	}
	if kw, ok := firstKeywordMatch(q.Normalized, r.Keywords); ok {
		return &Decision{
			Route:       RouteRetrieval,
			Confidence:  0.95,
			Rationale:   fmt.Sprintf("document keyword %q with corpus of %d chunks", kw, q.Corpus.ChunkCount),
			TriggeredBy: TriggeredByKeywordRule,
		}, nil
	}
	return nil, nil
}

// DefaultRule always matches and ends the chain.
type DefaultRule struct{}

// Name returns the rule name.
func (r *DefaultRule) Name() string { return "default" }

// Evaluate returns the direct route.
func (r *DefaultRule) Evaluate(ctx context.Context, q Query) (*Decision, error) {
	return &Decision{
		Route:       RouteDirect,
		Confidence:  0.5,
		Rationale:   "no routing signal",
		TriggeredBy: TriggeredByDefault,
	}, nil
}
