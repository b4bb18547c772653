package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLRUCache(t *testing.T) {
	t.Run("GetSet", func(t *testing.T) {
		c := NewLRUCache(4, time.Minute)
		c.Set("a", "alpha")

		v, ok := c.Get("a")
		assert.True(t, ok)
		assert.Equal(t, "alpha", v)

		_, ok = c.Get("missing")
		assert.False(t, ok)
	})

	t.Run("EvictsOldest", func(t *testing.T) {
		c := NewLRUCache(2, time.Minute)
		c.Set("a", "1")
		c.Set("b", "2")
		c.Get("a") // refresh a
		c.Set("c", "3")

		_, ok := c.Get("b")
		assert.False(t, ok, "least recently used entry should be evicted")
		_, ok = c.Get("a")
		assert.True(t, ok)
		_, ok = c.Get("c")
		assert.True(t, ok)
	})

	t.Run("UpdateDoesNotGrow", func(t *testing.T) {
		c := NewLRUCache(2, time.Minute)
		c.Set("a", "1")
		c.Set("a", "2")
		assert.Equal(t, 1, c.Size())

		v, _ := c.Get("a")
		assert.Equal(t, "2", v)
	})

	t.Run("Expiration", func(t *testing.T) {
		c := NewLRUCache(4, time.Millisecond)
		c.Set("a", "1")
		time.Sleep(5 * time.Millisecond)

		_, ok := c.Get("a")
		assert.False(t, ok)
	})

	t.Run("Clear", func(t *testing.T) {
		c := NewLRUCache(4, time.Minute)
		c.Set("a", "1")
		c.Set("b", "2")
		c.Clear()
		assert.Equal(t, 0, c.Size())
	})
}
