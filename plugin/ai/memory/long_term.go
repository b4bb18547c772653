package memory

import (
	"sort"
	"strings"
	"sync"
	"time"
	"unicode"
)

// stopWords filters keyword extraction. Short function words never make
// useful index terms.
var stopWords = map[string]bool{
	"this": true, "that": true, "with": true, "from": true, "have": true,
	"been": true, "will": true, "would": true, "could": true, "should": true,
	"about": true, "their": true, "there": true, "which": true, "when": true,
	"what": true, "then": true, "than": true, "them": true, "they": true,
	"were": true, "into": true, "your": true, "some": true, "just": true,
	"like": true, "also": true, "more": true, "very": true, "because": true,
}

const maxKeywordsPerItem = 10

// LongTermMemory is an inverted keyword index over retained content,
// including episodes migrated out of EpisodicMemory. Pure keyword-match
// relevance, no recency bias.
type LongTermMemory struct {
	mu     sync.RWMutex
	items  []MemoryItem
	index  map[string][]int // lowercased keyword -> item positions
	nextID int64
}

// NewLongTermMemory creates an empty long-term store.
func NewLongTermMemory() *LongTermMemory {
	return &LongTermMemory{
		index: make(map[string][]int),
	}
}

// AddMemory stores content with extracted keywords and indexes it. Adding
// the same content twice creates two entries; compression relies on this
// being additive and harmless.
func (l *LongTermMemory) AddMemory(content string, memType MemoryType, turnCreated int) MemoryItem {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.nextID++
	item := MemoryItem{
		ID:          l.nextID,
		Content:     content,
		Type:        memType,
		TurnCreated: turnCreated,
		Timestamp:   time.Now(),
		Keywords:    extractKeywords(content),
	}
	position := len(l.items)
	l.items = append(l.items, item)
	for _, keyword := range item.Keywords {
		l.index[keyword] = append(l.index[keyword], position)
	}
	return item
}

// SearchByKeywords sums index matches per item across the query tokens and
// returns the topK best contents, most matches first. Ties keep insertion
// order.
func (l *LongTermMemory) SearchByKeywords(query string, topK int) []string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if topK <= 0 {
		return []string{}
	}

	matches := map[int]int{} // item position -> match count
	for _, token := range strings.Fields(strings.ToLower(query)) {
		token = stripNonAlnum(token)
		if len(token) <= 2 {
			continue
		}
		for _, position := range l.index[token] {
			matches[position]++
		}
	}
	if len(matches) == 0 {
		return []string{}
	}

	positions := make([]int, 0, len(matches))
	for position := range matches {
		positions = append(positions, position)
	}
	sort.Slice(positions, func(i, j int) bool {
		if matches[positions[i]] != matches[positions[j]] {
			return matches[positions[i]] > matches[positions[j]]
		}
		return positions[i] < positions[j]
	})
	if len(positions) > topK {
		positions = positions[:topK]
	}

	results := make([]string, len(positions))
	for i, position := range positions {
		results[i] = l.items[position].Content
	}
	return results
}

// ItemCount returns the number of stored items.
func (l *LongTermMemory) ItemCount() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.items)
}

// Items returns a copy of all stored items.
func (l *LongTermMemory) Items() []MemoryItem {
	l.mu.RLock()
	defer l.mu.RUnlock()

	result := make([]MemoryItem, len(l.items))
	copy(result, l.items)
	return result
}

// ContentChars returns the total content length in characters.
func (l *LongTermMemory) ContentChars() int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	total := 0
	for _, item := range l.items {
		total += len(item.Content)
	}
	return total
}

// extractKeywords picks up to 10 index terms: alphanumeric tokens longer
// than 3 characters that are not stop words.
func extractKeywords(content string) []string {
	keywords := []string{}
	for _, token := range strings.Fields(strings.ToLower(content)) {
		token = stripNonAlnum(token)
		if len(token) <= 3 || stopWords[token] {
			continue
		}
		keywords = append(keywords, token)
		if len(keywords) >= maxKeywordsPerItem {
			break
		}
	}
	return keywords
}

func stripNonAlnum(token string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return -1
	}, token)
}
