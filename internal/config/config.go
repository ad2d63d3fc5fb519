package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// RAGConfig holds the retrieval parameters: chunk window and overlap are
// counted in whitespace-delimited words, TopK is the retrieval depth.
type RAGConfig struct {
	ChunkWords    int    `yaml:"chunk_words"`
	OverlapWords  int    `yaml:"overlap_words"`
	TopK          int    `yaml:"top_k"`
	EncryptionKey string `yaml:"encryption_key"`
}

// LLMConfig describes one OpenAI-compatible or Ollama endpoint.
type LLMConfig struct {
	Provider  string `yaml:"provider"` // "openai" or "ollama"
	BaseURL   string `yaml:"base_url"`
	Model     string `yaml:"model"`
	Key       string `yaml:"key"`
	Dimension int    `yaml:"dimension"`
}

type DatabaseConfig struct {
	URL   string `yaml:"url"`
	Key   string `yaml:"key"`
	Debug bool   `yaml:"debug"`
}

type Config struct {
	RAG      RAGConfig      `yaml:"rag"`
	EmbedLLM LLMConfig      `yaml:"embed_llm"`
	LLM      LLMConfig      `yaml:"llm"`
	Database DatabaseConfig `yaml:"database"`
}

const (
	defaultChunkWords   = 200
	defaultOverlapWords = 40
	defaultTopK         = 5
	defaultDimension    = 768
)

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.RAG.ChunkWords == 0 {
		c.RAG.ChunkWords = defaultChunkWords
	}
	if c.RAG.OverlapWords == 0 {
		c.RAG.OverlapWords = defaultOverlapWords
	}
	if c.RAG.TopK == 0 {
		c.RAG.TopK = defaultTopK
	}
	if c.EmbedLLM.Dimension == 0 {
		c.EmbedLLM.Dimension = defaultDimension
	}
}

// Validate rejects parameter combinations the pipeline cannot run with.
func (c *Config) Validate() error {
	if c.RAG.ChunkWords <= 0 {
		return fmt.Errorf("config: chunk_words must be positive, got %d", c.RAG.ChunkWords)
	}
	if c.RAG.OverlapWords < 0 || c.RAG.OverlapWords >= c.RAG.ChunkWords {
		return fmt.Errorf("config: overlap_words must satisfy 0 <= overlap < chunk_words, got %d", c.RAG.OverlapWords)
	}
	if c.RAG.TopK <= 0 {
		return fmt.Errorf("config: top_k must be positive, got %d", c.RAG.TopK)
	}
	if c.EmbedLLM.Dimension <= 0 {
		return fmt.Errorf("config: embedding dimension must be positive, got %d", c.EmbedLLM.Dimension)
	}
	return nil
}
