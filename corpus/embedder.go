package corpus

import (
	"context"
	"fmt"
	"net/http"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIEmbedder generates embeddings through any OpenAI-compatible
// embeddings endpoint.
type OpenAIEmbedder struct {
	client    *openai.Client
	model     openai.EmbeddingModel
	batchSize int
}

var _ Embedder = (*OpenAIEmbedder)(nil)

// OpenAIEmbedderOption configures the OpenAIEmbedder.
type OpenAIEmbedderOption func(*openAIEmbedderOptions)

type openAIEmbedderOptions struct {
	baseURL    string
	model      string
	batchSize  int
	httpClient *http.Client
}

// WithEmbedderBaseURL sets the API base URL (for OpenAI-compatible providers).
func WithEmbedderBaseURL(baseURL string) OpenAIEmbedderOption {
	return func(o *openAIEmbedderOptions) {
		o.baseURL = baseURL
	}
}

// WithEmbedderModel sets the embedding model name.
func WithEmbedderModel(model string) OpenAIEmbedderOption {
	return func(o *openAIEmbedderOptions) {
		o.model = model
	}
}

// WithEmbedderBatchSize sets how many texts are embedded per request.
func WithEmbedderBatchSize(size int) OpenAIEmbedderOption {
	return func(o *openAIEmbedderOptions) {
		if size > 0 {
			o.batchSize = size
		}
	}
}

// WithEmbedderHTTPClient sets a custom HTTP client (e.g. with a timeout).
func WithEmbedderHTTPClient(client *http.Client) OpenAIEmbedderOption {
	return func(o *openAIEmbedderOptions) {
		o.httpClient = client
	}
}

// NewOpenAIEmbedder creates an embedder for the given API key.
func NewOpenAIEmbedder(apiKey string, opts ...OpenAIEmbedderOption) (*OpenAIEmbedder, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("embedder API key is required")
	}

	options := &openAIEmbedderOptions{
		model:     string(openai.SmallEmbedding3),
		batchSize: 32,
	}
	for _, opt := range opts {
		opt(options)
	}

	cfg := openai.DefaultConfig(apiKey)
	if options.baseURL != "" {
		cfg.BaseURL = options.baseURL
	}
	if options.httpClient != nil {
		cfg.HTTPClient = options.httpClient
	}

	return &OpenAIEmbedder{
		client:    openai.NewClientWithConfig(cfg),
		model:     openai.EmbeddingModel(options.model),
		batchSize: options.batchSize,
	}, nil
}

// EmbedDocuments embeds texts in batches.
func (e *OpenAIEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	embeddings := make([][]float32, 0, len(texts))

	for start := 0; start < len(texts); start += e.batchSize {
		end := start + e.batchSize
		if end > len(texts) {
			end = len(texts)
		}

		resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
			Input: texts[start:end],
			Model: e.model,
		})
		if err != nil {
			return nil, fmt.Errorf("embedding request failed: %w", err)
		}
		if len(resp.Data) != end-start {
			return nil, fmt.Errorf("embedding response has %d vectors, want %d", len(resp.Data), end-start)
		}

		for _, item := range resp.Data {
			embeddings = append(embeddings, item.Embedding)
		}
	}

	return embeddings, nil
}

// EmbedQuery embeds a single query string.
func (e *OpenAIEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	result, err := e.EmbedDocuments(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return result[0], nil
}
