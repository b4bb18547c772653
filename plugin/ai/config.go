package ai

import (
	"errors"

	"github.com/relaymind/recall/internal/profile"
)

// Config represents memory engine configuration.
type Config struct {
	Embedding EmbeddingConfig
	Context   ContextConfig
}

// EmbeddingConfig represents vector embedding configuration.
type EmbeddingConfig struct {
	Provider   string // hash, openai
	Model      string // text-embedding-3-small
	Dimensions int    // 128
	APIKey     string
	BaseURL    string
}

// ContextConfig tunes the tiered context manager.
type ContextConfig struct {
	ShortTermSize        int     // turns held in the short-term buffer
	EpisodicInterval     int     // turns between episodic summaries
	MaxContextTokens     int     // approximate token budget
	CompressionThreshold float64 // fraction of the budget that triggers compression
	RetrievalTopK        int     // long-term snippets returned per query
	KeepRecent           int     // episodes exempt from compression
}

// NewConfigFromProfile creates engine config from profile.
func NewConfigFromProfile(p *profile.Profile) *Config {
	return &Config{
		Embedding: EmbeddingConfig{
			Provider:   p.EmbedderProvider,
			Model:      p.EmbedderModel,
			Dimensions: p.VectorDim,
			APIKey:     p.EmbedderAPIKey,
			BaseURL:    p.EmbedderBaseURL,
		},
		Context: ContextConfig{
			ShortTermSize:        p.ShortTermSize,
			EpisodicInterval:     p.EpisodicInterval,
			MaxContextTokens:     p.MaxContextTokens,
			CompressionThreshold: p.CompressionThreshold,
			RetrievalTopK:        5,
			KeepRecent:           3,
		},
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Embedding.Dimensions <= 0 {
		return errors.New("embedding dimensions must be positive")
	}

	switch c.Embedding.Provider {
	case "hash":
	case "openai":
		if c.Embedding.APIKey == "" {
			return errors.New("embedding API key is required")
		}
		if c.Embedding.Model == "" {
			return errors.New("embedding model is required")
		}
	default:
		return errors.New("unsupported embedding provider: " + c.Embedding.Provider)
	}

	if c.Context.ShortTermSize <= 0 {
		return errors.New("short-term size must be positive")
	}
	if c.Context.EpisodicInterval <= 0 {
		return errors.New("episodic interval must be positive")
	}
	if c.Context.CompressionThreshold <= 0 || c.Context.CompressionThreshold > 1 {
		return errors.New("compression threshold must be in (0, 1]")
	}
	return nil
}
