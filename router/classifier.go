package router

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/tmc/langchaingo/llms"
)

const classifierSystemPrompt = `You are a query routing expert for a chat assistant. Pick the best source for the user's query.

Routes:
- DIRECT: general conversation, explanations, reasoning, creative tasks
- RETRIEVAL: questions about the user's uploaded documents
- SEARCH: current or real-time information from the web

Respond with the route name, optionally followed by a confidence between 0 and 1 (for example: "SEARCH 0.8"). Respond with nothing else.`

// ClassifierRule asks a language model to choose a route. It is the
// lowest-priority tier above the default; any failure (call error,
// unparseable output, retrieval verdict without a corpus) falls through.
type ClassifierRule struct {
	Model         llms.Model
	ContextWindow int // recent turns included in the prompt
}

// Name returns the rule name.
func (r *ClassifierRule) Name() string { return "model_classification" }

// Evaluate submits the query plus recent turns and parses the verdict.
func (r *ClassifierRule) Evaluate(ctx context.Context, q Query) (*Decision, error) {
	if r.Model == nil {
		return nil, nil
	}

	var sb strings.Builder
	turns := q.Memory
	if r.ContextWindow > 0 && len(turns) > r.ContextWindow {
		turns = turns[len(turns)-r.ContextWindow:]
	}
	for _, turn := range turns {
		fmt.Fprintf(&sb, "%s: %s\n", turn.Speaker, turn.Text)
	}

	prompt := fmt.Sprintf("Documents available: %t\n\nRecent conversation:\n%s\nQuery: %q",
		q.Corpus.Present, sb.String(), q.Text)

	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, classifierSystemPrompt),
		llms.TextParts(llms.ChatMessageTypeHuman, prompt),
	}

	response, err := r.Model.GenerateContent(ctx, messages, llms.WithTemperature(0.1))
	if err != nil {
		return nil, fmt.Errorf("classification call failed: %w", err)
	}
	if len(response.Choices) == 0 {
		return nil, fmt.Errorf("classification returned no choices")
	}

	route, confidence, err := parseVerdict(response.Choices[0].Content)
	if err != nil {
		return nil, err
	}
	if route == RouteRetrieval && !q.Corpus.Present {
		return nil, fmt.Errorf("classifier chose retrieval but no corpus is present")
	}

	return &Decision{
		Route:       route,
		Confidence:  confidence,
		Rationale:   fmt.Sprintf("model classified as %s", route),
		TriggeredBy: TriggeredByModelClassification,
	}, nil
}

// parseVerdict extracts the route and optional confidence from the model
// output. Confidence defaults to 0.6 when the model does not report one.
func parseVerdict(output string) (Route, float64, error) {
	fields := strings.Fields(strings.ToUpper(strings.TrimSpace(output)))
	if len(fields) == 0 {
		return "", 0, fmt.Errorf("empty classification output")
	}

	var route Route
	switch strings.Trim(fields[0], ".,:;!") {
	case "DIRECT", "LLM":
		route = RouteDirect
	case "RETRIEVAL", "RAG":
		route = RouteRetrieval
	case "SEARCH", "WEB":
		route = RouteSearch
	default:
		return "", 0, fmt.Errorf("unrecognized route %q", fields[0])
	}

	confidence := 0.6
	if len(fields) > 1 {
		if parsed, err := strconv.ParseFloat(fields[1], 64); err == nil && parsed >= 0 && parsed <= 1 {
			confidence = parsed
		}
	}

	return route, confidence, nil
}
