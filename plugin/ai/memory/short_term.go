package memory

import (
	"sync"
	"time"
)

// ShortTermBuffer holds the most recent raw messages with a sliding window.
// A turn is a user+assistant pair, so the buffer caps at 2x maxSize messages.
// Recency-only: this tier has no search capability.
type ShortTermBuffer struct {
	mu       sync.RWMutex
	messages []Message
	maxSize  int // turns, not messages
	turns    int
}

// NewShortTermBuffer creates a buffer holding up to maxSize turns
// (default 10).
func NewShortTermBuffer(maxSize int) *ShortTermBuffer {
	if maxSize <= 0 {
		maxSize = 10
	}
	return &ShortTermBuffer{
		messages: make([]Message, 0, 2*maxSize),
		maxSize:  maxSize,
	}
}

// AddMessage appends a message. The turn counter advances only on assistant
// messages, closing the current user/assistant pair. Oldest messages are
// evicted once the window exceeds 2x maxSize.
func (s *ShortTermBuffer) AddMessage(role, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.messages = append(s.messages, Message{
		Role:       role,
		Content:    content,
		Timestamp:  time.Now(),
		TurnNumber: s.turns + 1,
	})
	if role == RoleAssistant {
		s.turns++
	}

	for len(s.messages) > 2*s.maxSize {
		s.messages = s.messages[1:]
	}
}

// GetRecent returns a copy of the last n turns (2n messages), or fewer if
// not that many are retained.
func (s *ShortTermBuffer) GetRecent(n int) []Message {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if n <= 0 {
		return []Message{}
	}
	count := 2 * n
	if count > len(s.messages) {
		count = len(s.messages)
	}
	result := make([]Message, count)
	copy(result, s.messages[len(s.messages)-count:])
	return result
}

// AllMessages returns a copy of every retained message.
func (s *ShortTermBuffer) AllMessages() []Message {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]Message, len(s.messages))
	copy(result, s.messages)
	return result
}

// MessageCount returns the number of retained messages.
func (s *ShortTermBuffer) MessageCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.messages)
}

// TurnCount returns the number of completed user/assistant turns.
func (s *ShortTermBuffer) TurnCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.turns
}

// ContentChars returns the total content length in characters, used for the
// approximate token estimate.
func (s *ShortTermBuffer) ContentChars() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	total := 0
	for _, m := range s.messages {
		total += len(m.Content)
	}
	return total
}

// Clear drops all retained messages. The turn counter is preserved so
// episodic cadence is unaffected.
func (s *ShortTermBuffer) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = s.messages[:0]
}
