package context

import (
	"sync"

	"github.com/relaymind/recall/plugin/ai/memory"
)

// RelevantContext is the read-only aggregation of all tiers for one query,
// ready for prompt injection.
type RelevantContext struct {
	RecentMessages   []memory.Message `json:"recent_messages"`
	Episodes         []string         `json:"episodes"`
	LongTermSnippets []string         `json:"long_term_snippets"`
	ProfileSummary   string           `json:"profile_summary"`
	Contradictions   []string         `json:"contradictions"`
}

// Orchestrator composes the in-memory tiers. Each tier carries its own
// lock; the orchestrator lock only guards its private bookkeeping (token
// estimate, migration ledger), so tier readers never contend on it.
type Orchestrator struct {
	config     Config
	summarizer Summarizer

	shortTerm *memory.ShortTermBuffer
	episodic  *memory.EpisodicMemory
	longTerm  *memory.LongTermMemory
	profile   *memory.UserProfile

	mu            sync.Mutex
	tokenEstimate int
	migrated      map[int64]bool // episode ids already moved to long term
}

// NewOrchestrator creates an orchestrator with fresh tiers.
func NewOrchestrator(config Config, summarizer Summarizer) *Orchestrator {
	config.applyDefaults()
	if summarizer == nil {
		summarizer = TruncateSummarizer{}
	}
	return &Orchestrator{
		config:     config,
		summarizer: summarizer,
		shortTerm:  memory.NewShortTermBuffer(config.ShortTermSize),
		episodic:   memory.NewEpisodicMemory(),
		longTerm:   memory.NewLongTermMemory(),
		profile:    memory.NewUserProfile(),
		migrated:   make(map[int64]bool),
	}
}

// ProcessTurn ingests one conversation exchange. The user message always
// lands in the buffer and the profile extractor; the assistant message, if
// present, completes the turn. Completed turns drive the episodic cadence
// and the compression check. Infallible: the tiers have no error modes.
func (o *Orchestrator) ProcessTurn(userText, assistantText string) {
	o.shortTerm.AddMessage(memory.RoleUser, userText)
	o.profile.ExtractFromMessage(userText)

	if assistantText != "" {
		o.shortTerm.AddMessage(memory.RoleAssistant, assistantText)

		turns := o.shortTerm.TurnCount()
		if turns%o.config.EpisodicInterval == 0 {
			window := o.shortTerm.AllMessages()
			summary := o.summarizer.Summarize(window)
			o.episodic.AddEpisode(summary, turns, len(window))
		}
	}

	// The estimate and the compression check run on every ingest, half-open
	// turns included.
	estimate := o.refreshTokenEstimate()
	if float64(estimate) > o.config.CompressionThreshold*float64(o.config.MaxTokens) {
		o.Compress()
	}
}

// Compress moves episodes beyond the most recent KeepRecent into long-term
// memory. Purely additive: EpisodicMemory keeps everything, and a migration
// ledger keeps re-runs from duplicating long-term entries. Tier locks are
// taken one at a time, never nested.
func (o *Orchestrator) Compress() {
	old := o.episodic.OldEpisodes(o.config.KeepRecent)

	o.mu.Lock()
	pending := make([]memory.Episode, 0, len(old))
	for _, episode := range old {
		if !o.migrated[episode.ID] {
			o.migrated[episode.ID] = true
			pending = append(pending, episode)
		}
	}
	o.mu.Unlock()

	for _, episode := range pending {
		o.longTerm.AddMemory(episode.Summary, memory.MemoryTypeEpisode, episode.TurnNumber)
	}

	o.refreshTokenEstimate()
}

// RelevantContext aggregates every tier for the query. Read-only.
func (o *Orchestrator) RelevantContext(query string) *RelevantContext {
	return &RelevantContext{
		RecentMessages:   o.shortTerm.GetRecent(recentTurns),
		Episodes:         o.episodic.SearchRelevant(query, episodeTopK),
		LongTermSnippets: o.longTerm.SearchByKeywords(query, o.config.RetrievalTopK),
		ProfileSummary:   o.profile.ContextString(),
		Contradictions:   o.profile.DetectContradictions(query),
	}
}

// TokenEstimate returns the last computed approximate token usage.
func (o *Orchestrator) TokenEstimate() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.tokenEstimate
}

// TurnCount returns the number of completed turns.
func (o *Orchestrator) TurnCount() int {
	return o.shortTerm.TurnCount()
}

// ShortTerm exposes the short-term buffer tier.
func (o *Orchestrator) ShortTerm() *memory.ShortTermBuffer { return o.shortTerm }

// Episodic exposes the episodic memory tier.
func (o *Orchestrator) Episodic() *memory.EpisodicMemory { return o.episodic }

// LongTerm exposes the long-term memory tier.
func (o *Orchestrator) LongTerm() *memory.LongTermMemory { return o.longTerm }

// Profile exposes the user profile tier.
func (o *Orchestrator) Profile() *memory.UserProfile { return o.profile }

// refreshTokenEstimate recomputes the cross-tier character total. The tier
// reads each take their own lock; the snapshot may be slightly stale against
// concurrent writers, which the compression path tolerates.
func (o *Orchestrator) refreshTokenEstimate() int {
	chars := o.shortTerm.ContentChars() +
		o.episodic.ContentChars() +
		o.longTerm.ContentChars() +
		o.profile.ContentChars()
	estimate := EstimateTokens(chars)

	o.mu.Lock()
	o.tokenEstimate = estimate
	o.mu.Unlock()
	return estimate
}
