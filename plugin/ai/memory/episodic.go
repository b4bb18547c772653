package memory

import (
	"sort"
	"strings"
	"sync"
	"time"
)

// topicVocabulary is the fixed vocabulary used to tag episode summaries.
var topicVocabulary = []string{
	"build", "create", "deploy", "test", "debug", "design", "refactor",
	"database", "api", "frontend", "backend", "performance", "security",
	"error", "config", "release", "migrate",
}

// EpisodicMemory holds compressed summaries of completed turn groups, each
// tagged with key topics. Episodes are append-only; compression reads old
// episodes out but never deletes them here.
type EpisodicMemory struct {
	mu       sync.RWMutex
	episodes []Episode
	nextID   int64
}

// NewEpisodicMemory creates an empty episodic store.
func NewEpisodicMemory() *EpisodicMemory {
	return &EpisodicMemory{}
}

// AddEpisode records a new episode covering messages up to turnNumber and
// returns it with its assigned id and extracted key topics.
func (e *EpisodicMemory) AddEpisode(summary string, turnNumber, messageCount int) Episode {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.nextID++
	episode := Episode{
		ID:           e.nextID,
		Summary:      summary,
		TurnNumber:   turnNumber,
		MessageCount: messageCount,
		Timestamp:    time.Now(),
		KeyTopics:    extractTopics(summary),
	}
	e.episodes = append(e.episodes, episode)
	return episode
}

// SearchRelevant scores each episode by how many query tokens its summary
// contains (case-insensitive substring), drops zero-score episodes, and
// returns the topK best summaries. Ties keep chronological order.
func (e *EpisodicMemory) SearchRelevant(query string, topK int) []string {
	e.mu.RLock()
	defer e.mu.RUnlock()

	tokens := strings.Fields(strings.ToLower(query))
	if len(tokens) == 0 || topK <= 0 {
		return []string{}
	}

	type scored struct {
		summary string
		score   int
	}
	candidates := []scored{}
	for _, episode := range e.episodes {
		summary := strings.ToLower(episode.Summary)
		score := 0
		for _, token := range tokens {
			if strings.Contains(summary, token) {
				score++
			}
		}
		if score > 0 {
			candidates = append(candidates, scored{summary: episode.Summary, score: score})
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})
	if len(candidates) > topK {
		candidates = candidates[:topK]
	}

	results := make([]string, len(candidates))
	for i, c := range candidates {
		results[i] = c.summary
	}
	return results
}

// OldEpisodes returns a copy of every episode except the most recent
// keepRecent. Empty if there are not enough episodes. The caller owns the
// migration; this store keeps everything.
func (e *EpisodicMemory) OldEpisodes(keepRecent int) []Episode {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if keepRecent < 0 {
		keepRecent = 0
	}
	if len(e.episodes) <= keepRecent {
		return []Episode{}
	}
	old := make([]Episode, len(e.episodes)-keepRecent)
	copy(old, e.episodes[:len(e.episodes)-keepRecent])
	return old
}

// EpisodeCount returns the number of stored episodes.
func (e *EpisodicMemory) EpisodeCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.episodes)
}

// ContentChars returns the total summary length in characters.
func (e *EpisodicMemory) ContentChars() int {
	e.mu.RLock()
	defer e.mu.RUnlock()

	total := 0
	for _, episode := range e.episodes {
		total += len(episode.Summary)
	}
	return total
}

func extractTopics(summary string) []string {
	lower := strings.ToLower(summary)
	topics := []string{}
	for _, topic := range topicVocabulary {
		if strings.Contains(lower, topic) {
			topics = append(topics, topic)
		}
	}
	return topics
}
