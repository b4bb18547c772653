package memory

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShortTermBuffer(t *testing.T) {
	t.Run("BufferBound", func(t *testing.T) {
		buf := NewShortTermBuffer(3)
		for i := 0; i < 20; i++ {
			buf.AddMessage(RoleUser, fmt.Sprintf("u%d", i))
			buf.AddMessage(RoleAssistant, fmt.Sprintf("a%d", i))
		}
		assert.LessOrEqual(t, buf.MessageCount(), 6)

		// Retained messages are exactly the most recent ones.
		messages := buf.AllMessages()
		assert.Equal(t, "u17", messages[0].Content)
		assert.Equal(t, "a19", messages[len(messages)-1].Content)
	})

	t.Run("TurnCountAdvancesOnAssistant", func(t *testing.T) {
		buf := NewShortTermBuffer(5)
		buf.AddMessage(RoleUser, "hello")
		assert.Equal(t, 0, buf.TurnCount())
		buf.AddMessage(RoleAssistant, "hi")
		assert.Equal(t, 1, buf.TurnCount())
		buf.AddMessage(RoleUser, "again")
		assert.Equal(t, 1, buf.TurnCount())
	})

	t.Run("GetRecent", func(t *testing.T) {
		buf := NewShortTermBuffer(5)
		for i := 0; i < 4; i++ {
			buf.AddMessage(RoleUser, fmt.Sprintf("u%d", i))
			buf.AddMessage(RoleAssistant, fmt.Sprintf("a%d", i))
		}

		recent := buf.GetRecent(2)
		assert.Len(t, recent, 4)
		assert.Equal(t, "u2", recent[0].Content)
		assert.Equal(t, "a3", recent[3].Content)

		// Asking for more turns than retained returns everything.
		assert.Len(t, buf.GetRecent(100), 8)
	})

	t.Run("GetRecentNonPositive", func(t *testing.T) {
		buf := NewShortTermBuffer(5)
		buf.AddMessage(RoleUser, "u")
		buf.AddMessage(RoleAssistant, "a")
		assert.Empty(t, buf.GetRecent(0))
		assert.Empty(t, buf.GetRecent(-1))
	})

	t.Run("ConcurrentAccess", func(t *testing.T) {
		buf := NewShortTermBuffer(10)
		done := make(chan bool)

		// Writer goroutine
		go func() {
			for i := 0; i < 100; i++ {
				buf.AddMessage(RoleUser, "question")
				buf.AddMessage(RoleAssistant, "answer")
			}
			done <- true
		}()

		// Reader goroutine
		go func() {
			for i := 0; i < 100; i++ {
				_ = buf.GetRecent(5)
				_ = buf.ContentChars()
			}
			done <- true
		}()

		<-done
		<-done

		assert.Equal(t, 20, buf.MessageCount())
		assert.Equal(t, 100, buf.TurnCount())
	})

	t.Run("CopySemantics", func(t *testing.T) {
		buf := NewShortTermBuffer(5)
		buf.AddMessage(RoleUser, "original")

		recent := buf.GetRecent(1)
		recent[0].Content = "mutated"
		assert.Equal(t, "original", buf.AllMessages()[0].Content)
	})

	t.Run("ClearKeepsTurnCounter", func(t *testing.T) {
		buf := NewShortTermBuffer(5)
		buf.AddMessage(RoleUser, "u")
		buf.AddMessage(RoleAssistant, "a")
		buf.Clear()
		assert.Equal(t, 0, buf.MessageCount())
		assert.Equal(t, 1, buf.TurnCount())
	})

	t.Run("ContentChars", func(t *testing.T) {
		buf := NewShortTermBuffer(5)
		buf.AddMessage(RoleUser, "abcd")
		buf.AddMessage(RoleAssistant, "ef")
		assert.Equal(t, 6, buf.ContentChars())
	})
}
