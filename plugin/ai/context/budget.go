// Package context orchestrates the in-memory tiers: it ingests turns,
// triggers episodic summarization on a fixed cadence, compresses old
// episodes into long-term memory under token pressure, and aggregates all
// tiers into the relevant context for a query.
package context

// Default tuning values.
const (
	DefaultMaxTokens            = 4096
	DefaultCompressionThreshold = 0.8
	DefaultEpisodicInterval     = 10
	DefaultShortTermSize        = 10
	DefaultRetrievalTopK        = 5
	DefaultKeepRecent           = 3

	// charsPerToken is the approximation used for the budget estimate.
	charsPerToken = 4

	// recentTurns is how many turns RelevantContext pulls from the buffer.
	recentTurns = 5

	// episodeTopK is how many episode summaries RelevantContext includes.
	episodeTopK = 3
)

// Config tunes the orchestrator.
type Config struct {
	ShortTermSize        int
	EpisodicInterval     int
	MaxTokens            int
	CompressionThreshold float64
	RetrievalTopK        int
	KeepRecent           int
}

// DefaultConfig returns the default orchestrator configuration.
func DefaultConfig() Config {
	return Config{
		ShortTermSize:        DefaultShortTermSize,
		EpisodicInterval:     DefaultEpisodicInterval,
		MaxTokens:            DefaultMaxTokens,
		CompressionThreshold: DefaultCompressionThreshold,
		RetrievalTopK:        DefaultRetrievalTopK,
		KeepRecent:           DefaultKeepRecent,
	}
}

func (c *Config) applyDefaults() {
	if c.ShortTermSize <= 0 {
		c.ShortTermSize = DefaultShortTermSize
	}
	if c.EpisodicInterval <= 0 {
		c.EpisodicInterval = DefaultEpisodicInterval
	}
	if c.MaxTokens <= 0 {
		c.MaxTokens = DefaultMaxTokens
	}
	if c.CompressionThreshold <= 0 || c.CompressionThreshold > 1 {
		c.CompressionThreshold = DefaultCompressionThreshold
	}
	if c.RetrievalTopK <= 0 {
		c.RetrievalTopK = DefaultRetrievalTopK
	}
	if c.KeepRecent < 0 {
		c.KeepRecent = DefaultKeepRecent
	}
}

// EstimateTokens approximates the token count of a character total.
func EstimateTokens(chars int) int {
	return chars / charsPerToken
}
