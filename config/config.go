package config

import (
	"errors"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Neelshah1810/Smart-Chatbot-with-LLM-RAG-Web-Search/router"
)

// LLMConfig configures the chat completion model.
type LLMConfig struct {
	BaseURL     string  `yaml:"base_url"`
	APIKeyEnv   string  `yaml:"api_key_env"`
	Model       string  `yaml:"model"`
	Temperature float64 `yaml:"temperature"`
	MaxTokens   int     `yaml:"max_tokens"`
	TimeoutSecs int     `yaml:"timeout_secs"`
}

// RoutingConfig holds the keyword sets and classifier settings for the
// route decision engine. Keyword sets are configuration data so they can
// be tuned and tested independently of the engine.
type RoutingConfig struct {
	GreetingPatterns []string `yaml:"greeting_patterns"`
	RecencyKeywords  []string `yaml:"recency_keywords"`
	DocumentKeywords []string `yaml:"document_keywords"`
	UseClassifier    bool     `yaml:"use_classifier"`
	ContextWindow    int      `yaml:"context_window"` // recent turns fed to the classifier
}

// EmbedderConfig configures the OpenAI-compatible embedding client.
type EmbedderConfig struct {
	BaseURL     string `yaml:"base_url"`
	APIKeyEnv   string `yaml:"api_key_env"`
	Model       string `yaml:"model"`
	BatchSize   int    `yaml:"batch_size"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// RetrievalConfig configures document ingestion and retrieval.
type RetrievalConfig struct {
	K            int `yaml:"k"`
	ChunkSize    int `yaml:"chunk_size"`
	ChunkOverlap int `yaml:"chunk_overlap"`
	MaxSources   int `yaml:"max_sources"`
}

// SearchConfig configures the web search backend.
type SearchConfig struct {
	Provider    string `yaml:"provider"` // "duckduckgo" or "brave"
	MaxResults  int    `yaml:"max_results"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// MemoryConfig configures the conversation memory window.
type MemoryConfig struct {
	// MaxTurns caps the conversation log. 0 takes the default (200);
	// a negative value leaves the log unbounded.
	MaxTurns int `yaml:"max_turns"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	LLM       LLMConfig       `yaml:"llm"`
	Routing   RoutingConfig   `yaml:"routing"`
	Embedder  EmbedderConfig  `yaml:"embedder"`
	Retrieval RetrievalConfig `yaml:"retrieval"`
	Search    SearchConfig    `yaml:"search"`
	Memory    MemoryConfig    `yaml:"memory"`
}

// Load reads a config from a specified path. If the file does not exist,
// returns defaults.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return nil, err
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)
	return &cfg, nil
}

// Default returns the built-in configuration.
func Default() *AppConfig {
	cfg := &AppConfig{}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *AppConfig) {
	if cfg.LLM.BaseURL == "" {
		cfg.LLM.BaseURL = "https://api.groq.com/openai/v1"
	}
	if cfg.LLM.APIKeyEnv == "" {
		cfg.LLM.APIKeyEnv = "GROQ_API_KEY"
	}
	if cfg.LLM.Model == "" {
		cfg.LLM.Model = "llama-3.1-8b-instant"
	}
	if cfg.LLM.Temperature == 0 {
		cfg.LLM.Temperature = 0.7
	}
	if cfg.LLM.MaxTokens == 0 {
		cfg.LLM.MaxTokens = 2048
	}
	if cfg.LLM.TimeoutSecs == 0 {
		cfg.LLM.TimeoutSecs = 30
	}

	keywords := router.DefaultKeywords()
	if len(cfg.Routing.GreetingPatterns) == 0 {
		cfg.Routing.GreetingPatterns = keywords.GreetingPatterns
	}
	if len(cfg.Routing.RecencyKeywords) == 0 {
		cfg.Routing.RecencyKeywords = keywords.RecencyKeywords
	}
	if len(cfg.Routing.DocumentKeywords) == 0 {
		cfg.Routing.DocumentKeywords = keywords.DocumentKeywords
	}
	if cfg.Routing.ContextWindow == 0 {
		cfg.Routing.ContextWindow = 6
	}

	if cfg.Embedder.BaseURL == "" {
		cfg.Embedder.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Embedder.APIKeyEnv == "" {
		cfg.Embedder.APIKeyEnv = "OPENAI_API_KEY"
	}
	if cfg.Embedder.Model == "" {
		cfg.Embedder.Model = "text-embedding-3-small"
	}
	if cfg.Embedder.BatchSize == 0 {
		cfg.Embedder.BatchSize = 32
	}
	if cfg.Embedder.TimeoutSecs == 0 {
		cfg.Embedder.TimeoutSecs = 30
	}

	if cfg.Retrieval.K == 0 {
		cfg.Retrieval.K = 4
	}
	if cfg.Retrieval.ChunkSize == 0 {
		cfg.Retrieval.ChunkSize = 1000
	}
	if cfg.Retrieval.ChunkOverlap == 0 {
		cfg.Retrieval.ChunkOverlap = 200
	}
	if cfg.Retrieval.MaxSources == 0 {
		cfg.Retrieval.MaxSources = 3
	}

	if cfg.Search.Provider == "" {
		cfg.Search.Provider = "duckduckgo"
	}
	if cfg.Search.MaxResults == 0 {
		cfg.Search.MaxResults = 5
	}
	if cfg.Search.TimeoutSecs == 0 {
		cfg.Search.TimeoutSecs = 10
	}

	if cfg.Memory.MaxTurns == 0 {
		cfg.Memory.MaxTurns = 200
	}
}
