package profile

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Profile is the runtime configuration for the memory engine.
type Profile struct {
	// Mode can be "prod" or "dev" or "demo"
	Mode string
	// Data is the data directory
	Data string
	// DSN points to where recall stores its durable records
	DSN string
	// Driver is the database driver (sqlite or postgres)
	Driver string
	// Version is the current version of the engine
	Version string

	// VectorDim is the embedding dimension. Every stored record carries
	// exactly this many float32 components.
	VectorDim int

	// Embedder configuration
	EmbedderProvider string // RECALL_EMBEDDER_PROVIDER: "hash" (default) or "openai"
	EmbedderModel    string // RECALL_EMBEDDER_MODEL
	EmbedderAPIKey   string // RECALL_EMBEDDER_API_KEY
	EmbedderBaseURL  string // RECALL_EMBEDDER_BASE_URL

	// Context manager tuning
	ShortTermSize        int     // RECALL_SHORT_TERM_SIZE (turns, default 10)
	EpisodicInterval     int     // RECALL_EPISODIC_INTERVAL (turns, default 10)
	MaxContextTokens     int     // RECALL_MAX_CONTEXT_TOKENS (default 4096)
	CompressionThreshold float64 // RECALL_COMPRESSION_THRESHOLD (default 0.8)
}

func (p *Profile) IsDev() bool {
	return p.Mode != "prod"
}

// getEnvOrDefault returns the environment variable value or the default value.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnvOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil && n > 0 {
			return n
		}
	}
	return defaultValue
}

func getFloatEnvOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil && f > 0 {
			return f
		}
	}
	return defaultValue
}

// FromEnv loads configuration from RECALL_* environment variables.
func (p *Profile) FromEnv() {
	p.Mode = getEnvOrDefault("RECALL_MODE", p.Mode)
	p.Data = getEnvOrDefault("RECALL_DATA", p.Data)
	p.DSN = getEnvOrDefault("RECALL_DSN", p.DSN)
	p.Driver = getEnvOrDefault("RECALL_DRIVER", p.Driver)

	p.VectorDim = getIntEnvOrDefault("RECALL_VECTOR_DIM", p.VectorDim)

	p.EmbedderProvider = getEnvOrDefault("RECALL_EMBEDDER_PROVIDER", "hash")
	p.EmbedderModel = getEnvOrDefault("RECALL_EMBEDDER_MODEL", "text-embedding-3-small")
	p.EmbedderAPIKey = os.Getenv("RECALL_EMBEDDER_API_KEY")
	p.EmbedderBaseURL = os.Getenv("RECALL_EMBEDDER_BASE_URL")

	p.ShortTermSize = getIntEnvOrDefault("RECALL_SHORT_TERM_SIZE", 10)
	p.EpisodicInterval = getIntEnvOrDefault("RECALL_EPISODIC_INTERVAL", 10)
	p.MaxContextTokens = getIntEnvOrDefault("RECALL_MAX_CONTEXT_TOKENS", 4096)
	p.CompressionThreshold = getFloatEnvOrDefault("RECALL_COMPRESSION_THRESHOLD", 0.8)
}

func checkDataDir(dataDir string) (string, error) {
	// Convert to absolute path if relative path is supplied.
	if !filepath.IsAbs(dataDir) {
		relativeDir := filepath.Join(filepath.Dir(os.Args[0]), dataDir)
		absDir, err := filepath.Abs(relativeDir)
		if err != nil {
			return "", err
		}
		dataDir = absDir
	}

	// Trim trailing \ or / in case user supplies
	dataDir = strings.TrimRight(dataDir, "\\/")
	if _, err := os.Stat(dataDir); err != nil {
		return "", errors.Wrapf(err, "unable to access data folder %s", dataDir)
	}
	return dataDir, nil
}

func (p *Profile) Validate() error {
	if p.Mode != "demo" && p.Mode != "dev" && p.Mode != "prod" {
		p.Mode = "demo"
	}

	if p.Driver == "" {
		p.Driver = "sqlite"
	}
	if p.Driver != "sqlite" && p.Driver != "postgres" {
		return errors.Errorf("unknown driver %q: only 'sqlite' and 'postgres' are supported", p.Driver)
	}

	if p.VectorDim <= 0 {
		p.VectorDim = 128
	}

	if p.Data == "" {
		p.Data = "."
	}
	dataDir, err := checkDataDir(p.Data)
	if err != nil {
		return err
	}
	p.Data = dataDir

	if p.Driver == "sqlite" && p.DSN == "" {
		dbFile := fmt.Sprintf("recall_%s.db", p.Mode)
		p.DSN = filepath.Join(dataDir, dbFile)
	}
	if p.Driver == "postgres" && p.DSN == "" {
		return errors.New("postgres driver requires RECALL_DSN")
	}

	return nil
}
