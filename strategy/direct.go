package strategy

import (
	"context"
	"fmt"
	"time"

	"github.com/tmc/langchaingo/llms"

	"github.com/Neelshah1810/Smart-Chatbot-with-LLM-RAG-Web-Search/memory"
)

const directSystemPrompt = `You are an intelligent AI assistant in an ongoing conversation. Use the conversation history when the user references it ("it", "that", "the result"), show step-by-step reasoning for calculations, and answer directly without unnecessary preamble.`

// Direct answers with a plain LLM completion over the recent
// conversation history.
type Direct struct {
	model       llms.Model
	window      int // turns of history included
	temperature float64
	maxTokens   int
	timeout     time.Duration
}

var _ Strategy = (*Direct)(nil)

// DirectOption configures the Direct strategy.
type DirectOption func(*Direct)

// WithDirectWindow sets how many recent turns are included.
func WithDirectWindow(window int) DirectOption {
	return func(d *Direct) {
		d.window = window
	}
}

// WithDirectTemperature sets the sampling temperature.
func WithDirectTemperature(temperature float64) DirectOption {
	return func(d *Direct) {
		d.temperature = temperature
	}
}

// WithDirectMaxTokens caps the response length.
func WithDirectMaxTokens(maxTokens int) DirectOption {
	return func(d *Direct) {
		d.maxTokens = maxTokens
	}
}

// WithDirectTimeout bounds the completion call.
func WithDirectTimeout(timeout time.Duration) DirectOption {
	return func(d *Direct) {
		d.timeout = timeout
	}
}

// NewDirect creates the direct strategy.
func NewDirect(model llms.Model, opts ...DirectOption) *Direct {
	d := &Direct{
		model:       model,
		window:      12,
		temperature: 0.7,
		maxTokens:   2048,
		timeout:     30 * time.Second,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Name returns the strategy name.
func (d *Direct) Name() string { return "direct" }

// Answer generates a completion over the query and recent history.
func (d *Direct) Answer(ctx context.Context, query string, turns []memory.Turn) (*Result, error) {
	ctx, cancel := withTimeout(ctx, d.timeout)
	defer cancel()

	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, directSystemPrompt),
	}
	messages = append(messages, historyMessages(turns, d.window)...)
	messages = append(messages, llms.TextParts(llms.ChatMessageTypeHuman, query))

	answer, err := generate(ctx, d.model, messages,
		llms.WithTemperature(d.temperature),
		llms.WithMaxTokens(d.maxTokens),
	)
	if err != nil {
		return nil, fmt.Errorf("completion failed: %w", err)
	}

	return &Result{Answer: answer}, nil
}
