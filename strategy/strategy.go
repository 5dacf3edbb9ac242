// Package strategy implements the three answer strategies a routed query
// can be dispatched to: direct LLM completion, retrieval-augmented
// generation over the corpus, and web-search-augmented synthesis.
//
// Each strategy bounds its external calls with a timeout and reports any
// failure to the orchestrator, which owns the fallback policy.
package strategy

import (
	"context"
	"fmt"
	"time"

	"github.com/tmc/langchaingo/llms"

	"github.com/Neelshah1810/Smart-Chatbot-with-LLM-RAG-Web-Search/memory"
)

// Result is a produced answer plus the sources backing it.
type Result struct {
	Answer  string
	Sources []string
}

// Strategy produces an answer for a query with the given conversation
// context.
type Strategy interface {
	Name() string
	Answer(ctx context.Context, query string, turns []memory.Turn) (*Result, error)
}

// withTimeout bounds ctx by d when d > 0.
func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d > 0 {
		return context.WithTimeout(ctx, d)
	}
	return context.WithCancel(ctx)
}

// historyMessages converts recent turns into chat messages, keeping at
// most window turns.
func historyMessages(turns []memory.Turn, window int) []llms.MessageContent {
	if window > 0 && len(turns) > window {
		turns = turns[len(turns)-window:]
	}

	messages := make([]llms.MessageContent, 0, len(turns))
	for _, turn := range turns {
		role := llms.ChatMessageTypeHuman
		if turn.Speaker == memory.SpeakerAssistant {
			role = llms.ChatMessageTypeAI
		}
		messages = append(messages, llms.TextParts(role, turn.Text))
	}
	return messages
}

// generate runs a completion and extracts the first choice.
func generate(ctx context.Context, model llms.Model, messages []llms.MessageContent, opts ...llms.CallOption) (string, error) {
	response, err := model.GenerateContent(ctx, messages, opts...)
	if err != nil {
		return "", err
	}
	if len(response.Choices) == 0 {
		return "", fmt.Errorf("model returned no choices")
	}
	return response.Choices[0].Content, nil
}
