// Package embedder provides a deterministic feature-hashing embedder.
//
// It is a stand-in for a trained embedding model: each whitespace token is
// hashed into one of D buckets and the bucket counts are L2-normalized. The
// contract callers rely on is determinism and fixed dimensionality, so a
// real model can replace it behind the same interface.
package embedder

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
)

// DefaultDimensions is the bucket count used when none is configured.
const DefaultDimensions = 128

// HashEmbedder maps text to a fixed-dimension vector via feature hashing.
// It is stateless and safe for concurrent use.
type HashEmbedder struct {
	dimensions int
}

// NewHashEmbedder creates a hash embedder with the given dimension.
func NewHashEmbedder(dimensions int) *HashEmbedder {
	if dimensions <= 0 {
		dimensions = DefaultDimensions
	}
	return &HashEmbedder{dimensions: dimensions}
}

// Embed generates a vector for a single text. Empty text yields the zero
// vector; normalization leaves it untouched.
func (e *HashEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	vector := make([]float32, e.dimensions)
	for _, token := range strings.Fields(text) {
		h := fnv.New32a()
		h.Write([]byte(strings.ToLower(token)))
		bucket := int(h.Sum32()) % e.dimensions
		if bucket < 0 {
			bucket += e.dimensions
		}
		vector[bucket]++
	}
	normalize(vector)
	return vector, nil
}

// EmbedBatch generates vectors for multiple texts.
func (e *HashEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		v, err := e.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		vectors[i] = v
	}
	return vectors, nil
}

// Dimensions returns the vector dimension.
func (e *HashEmbedder) Dimensions() int {
	return e.dimensions
}

func normalize(vector []float32) {
	var sum float64
	for _, v := range vector {
		sum += float64(v) * float64(v)
	}
	if sum == 0 {
		return
	}
	norm := math.Sqrt(sum)
	for i := range vector {
		vector[i] = float32(float64(vector[i]) / norm)
	}
}
