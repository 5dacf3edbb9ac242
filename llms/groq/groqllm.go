// Package groq provides an llms.Model implementation backed by the Groq
// API. Groq exposes an OpenAI-compatible surface, so the client is the
// OpenAI SDK pointed at the Groq base URL.
package groq

import (
	"context"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"github.com/tmc/langchaingo/llms"
)

// ErrEmptyResponse is returned when the API yields no choices.
var ErrEmptyResponse = errors.New("no response")

// DefaultBaseURL is the Groq OpenAI-compatible endpoint.
const DefaultBaseURL = "https://api.groq.com/openai/v1"

// LLM is a client for Groq-hosted chat models.
type LLM struct {
	client *openai.Client
	model  ModelName
}

var _ llms.Model = (*LLM)(nil)

// New returns a new Groq LLM client.
//
// Authentication options:
// 1. WithAPIKey(apiKey) - pass API key directly
// 2. Set GROQ_API_KEY environment variable
//
// Example:
//
//	llm, err := groq.New(
//		groq.WithAPIKey("your-api-key"),
//		groq.WithModel(groq.ModelNameLlama318BInstant),
//	)
func New(opts ...Option) (*LLM, error) {
	options := &options{
		apiKey:    getEnvOrDefault("GROQ_API_KEY", ""),
		modelName: ModelNameLlama318BInstant,
		baseURL:   DefaultBaseURL,
	}

	for _, opt := range opts {
		opt(options)
	}

	if options.apiKey == "" {
		return nil, fmt.Errorf(`missing API key
You can pass auth info by using groq.New(groq.WithAPIKey("{API Key}"))
or
export GROQ_API_KEY={API Key}`)
	}

	cfg := openai.DefaultConfig(options.apiKey)
	cfg.BaseURL = options.baseURL
	if options.httpClient != nil {
		cfg.HTTPClient = options.httpClient
	}

	return &LLM{
		client: openai.NewClientWithConfig(cfg),
		model:  options.modelName,
	}, nil
}

// Call generates a response from the LLM for the given prompt.
func (o *LLM) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, o, prompt, options...)
}

// GenerateContent implements the Model interface.
func (o *LLM) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	opts := &llms.CallOptions{}
	for _, opt := range options {
		opt(opts)
	}

	chatMessages := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, msg := range messages {
		role := openai.ChatMessageRoleUser
		switch msg.Role {
		case llms.ChatMessageTypeAI:
			role = openai.ChatMessageRoleAssistant
		case llms.ChatMessageTypeSystem:
			role = openai.ChatMessageRoleSystem
		}

		var content strings.Builder
		for _, part := range msg.Parts {
			if text, ok := part.(llms.TextContent); ok {
				content.WriteString(text.Text)
			}
		}

		chatMessages = append(chatMessages, openai.ChatCompletionMessage{
			Role:    role,
			Content: content.String(),
		})
	}

	req := openai.ChatCompletionRequest{
		Model:       o.getModelString(*opts),
		Messages:    chatMessages,
		Temperature: float32(opts.Temperature),
		MaxTokens:   opts.MaxTokens,
	}
	if opts.TopP > 0 {
		req.TopP = float32(opts.TopP)
	}
	if len(opts.StopWords) > 0 {
		req.Stop = opts.StopWords
	}

	result, err := o.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("groq chat completion: %w", err)
	}
	if len(result.Choices) == 0 {
		return nil, ErrEmptyResponse
	}

	choices := make([]*llms.ContentChoice, 0, len(result.Choices))
	for _, c := range result.Choices {
		choices = append(choices, &llms.ContentChoice{
			Content:    c.Message.Content,
			StopReason: string(c.FinishReason),
			GenerationInfo: map[string]any{
				"prompt_tokens":     result.Usage.PromptTokens,
				"completion_tokens": result.Usage.CompletionTokens,
				"total_tokens":      result.Usage.TotalTokens,
			},
		})
	}

	return &llms.ContentResponse{Choices: choices}, nil
}

func (o *LLM) getModelString(opts llms.CallOptions) string {
	if opts.Model != "" {
		return opts.Model
	}
	return string(o.model)
}
