package groq

import (
	"net/http"
	"os"
)

// ModelName represents a model identifier on the Groq API.
type ModelName string

const (
	// Production models
	ModelNameLlama318BInstant    ModelName = "llama-3.1-8b-instant"    // 128k context, fast
	ModelNameLlama3370BVersatile ModelName = "llama-3.3-70b-versatile" // 128k context
	ModelNameGemma29BIt          ModelName = "gemma2-9b-it"            // 8k context

	// Preview models
	ModelNameLlama4Scout17B    ModelName = "meta-llama/llama-4-scout-17b-16e-instruct"
	ModelNameLlama4Maverick17B ModelName = "meta-llama/llama-4-maverick-17b-128e-instruct"
)

type options struct {
	apiKey     string
	modelName  ModelName
	baseURL    string
	httpClient *http.Client
}

// Option is a function that configures an LLM.
type Option func(*options)

// WithAPIKey sets the API key for the LLM.
func WithAPIKey(apiKey string) Option {
	return func(opts *options) {
		opts.apiKey = apiKey
	}
}

// WithModel sets the model name for the LLM.
func WithModel(model ModelName) Option {
	return func(opts *options) {
		opts.modelName = model
	}
}

// WithBaseURL sets the base URL for the LLM API.
// Default is "https://api.groq.com/openai/v1".
func WithBaseURL(baseURL string) Option {
	return func(opts *options) {
		opts.baseURL = baseURL
	}
}

// WithHTTPClient sets the HTTP client for the LLM.
func WithHTTPClient(client *http.Client) Option {
	return func(opts *options) {
		opts.httpClient = client
	}
}

// getEnvOrDefault retrieves an environment variable or returns the default value.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
