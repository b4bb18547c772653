// Package memory implements the in-process conversational memory tiers:
// a recency-only short-term buffer, keyword-tagged episodic summaries, a
// keyword-indexed long-term store, and an extracted user profile.
//
// Each tier guards its own state with an independent reader/writer lock, so
// unrelated tiers never contend. Cross-tier operations acquire locks
// sequentially, never nested. The tiers are infallible: no network, no
// untrusted input, so their operations have no error returns.
package memory

import (
	"time"
)

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// Message represents a single conversation message. Derived structures copy
// messages rather than referencing buffer internals.
type Message struct {
	Role       string    `json:"role"`
	Content    string    `json:"content"`
	Timestamp  time.Time `json:"timestamp"`
	TurnNumber int       `json:"turn_number"`
}

// Episode is a compressed summary of a contiguous run of messages.
// Immutable once created.
type Episode struct {
	ID           int64     `json:"id"`
	Summary      string    `json:"summary"`
	TurnNumber   int       `json:"turn_number"`
	MessageCount int       `json:"message_count"`
	Timestamp    time.Time `json:"timestamp"`
	KeyTopics    []string  `json:"key_topics"`
}

// MemoryType distinguishes raw facts from migrated episodic summaries.
type MemoryType string

const (
	MemoryTypeFact    MemoryType = "fact"
	MemoryTypeEpisode MemoryType = "episode"
)

// MemoryItem is a long-term memory entry.
type MemoryItem struct {
	ID          int64      `json:"id"`
	Content     string     `json:"content"`
	Type        MemoryType `json:"memory_type"`
	TurnCreated int        `json:"turn_created"`
	Timestamp   time.Time  `json:"timestamp"`
	Keywords    []string   `json:"keywords"`
}

// Project tracks a named project the user mentioned, keyed by name.
type Project struct {
	Name           string `json:"name"`
	Language       string `json:"language"`
	Description    string `json:"description,omitempty"`
	FirstMentioned int    `json:"first_mentioned"`
	LastMentioned  int    `json:"last_mentioned"`
}

// PreferenceChange records one overwrite of a preference value.
type PreferenceChange struct {
	OldValue string `json:"old_value"`
	NewValue string `json:"new_value"`
	Turn     int    `json:"turn"`
	Reason   string `json:"reason,omitempty"`
}

// Preference holds one preference per category. The value is overwritten in
// place but every overwrite appends to History.
type Preference struct {
	Category   string             `json:"category"`
	Value      string             `json:"value"`
	Confidence float64            `json:"confidence"`
	TurnSet    int                `json:"turn_set"`
	History    []PreferenceChange `json:"history"`
}

// Entity tracks a capitalized name seen in user text.
type Entity struct {
	Name      string `json:"name"`
	Type      string `json:"entity_type"`
	Mentions  int    `json:"mentions"`
	FirstSeen int    `json:"first_seen"`
	LastSeen  int    `json:"last_seen"`
}
