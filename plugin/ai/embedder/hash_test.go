package embedder

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashEmbedder(t *testing.T) {
	ctx := context.Background()
	e := NewHashEmbedder(128)

	t.Run("Deterministic", func(t *testing.T) {
		a, err := e.Embed(ctx, "the quick brown fox")
		require.NoError(t, err)
		b, err := e.Embed(ctx, "the quick brown fox")
		require.NoError(t, err)
		assert.Equal(t, a, b)
	})

	t.Run("FixedDimension", func(t *testing.T) {
		v, err := e.Embed(ctx, "hello world")
		require.NoError(t, err)
		assert.Len(t, v, 128)
		assert.Equal(t, 128, e.Dimensions())
	})

	t.Run("L2Normalized", func(t *testing.T) {
		v, err := e.Embed(ctx, "several different tokens here")
		require.NoError(t, err)
		var sum float64
		for _, x := range v {
			sum += float64(x) * float64(x)
		}
		assert.InDelta(t, 1.0, math.Sqrt(sum), 1e-6)
	})

	t.Run("EmptyTextIsZeroVector", func(t *testing.T) {
		v, err := e.Embed(ctx, "")
		require.NoError(t, err)
		for _, x := range v {
			assert.Zero(t, x)
		}
	})

	t.Run("DifferentTextsDiffer", func(t *testing.T) {
		a, err := e.Embed(ctx, "rust memory safety")
		require.NoError(t, err)
		b, err := e.Embed(ctx, "completely unrelated words elsewhere")
		require.NoError(t, err)
		assert.NotEqual(t, a, b)
	})

	t.Run("BatchMatchesSingle", func(t *testing.T) {
		single, err := e.Embed(ctx, "batch test")
		require.NoError(t, err)
		batch, err := e.EmbedBatch(ctx, []string{"batch test", "other"})
		require.NoError(t, err)
		require.Len(t, batch, 2)
		assert.Equal(t, single, batch[0])
	})

	t.Run("DefaultDimension", func(t *testing.T) {
		assert.Equal(t, DefaultDimensions, NewHashEmbedder(0).Dimensions())
	})
}
