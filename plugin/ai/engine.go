// Package ai assembles the memory engine: the durable semantic store, the
// embedding service, and the tiered conversational context manager.
package ai

import (
	stdcontext "context"
	"fmt"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/relaymind/recall/internal/observability"
	"github.com/relaymind/recall/plugin/ai/context"
	"github.com/relaymind/recall/plugin/ai/rag"
	"github.com/relaymind/recall/store"
)

// maxConcurrentWrites bounds in-flight durable flushes. Disk flushes block,
// so they must not saturate the caller's scheduler.
const maxConcurrentWrites = 4

// Engine is the in-process facade consumed by the dispatch layer.
//
// Durable operations (semantic facts) surface typed store errors; retrieval
// degrades to empty results instead of failing the conversation turn. The
// in-memory tiers never fail.
type Engine struct {
	store        *store.Store
	embedder     EmbeddingService
	orchestrator *context.Orchestrator
	session      *observability.SessionContext
	metrics      *observability.Metrics
	writeSem     *semaphore.Weighted
}

// NewEngine wires an engine from its dependencies. A nil summarizer selects
// the truncate-and-join default.
func NewEngine(cfg *Config, s *store.Store, embedder EmbeddingService, summarizer context.Summarizer, session *observability.SessionContext) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if embedder.Dimensions() != cfg.Embedding.Dimensions {
		return nil, fmt.Errorf("embedder dimension %d does not match configured %d", embedder.Dimensions(), cfg.Embedding.Dimensions)
	}
	if session == nil {
		session = observability.NewSessionContext(nil)
	}

	orchestrator := context.NewOrchestrator(context.Config{
		ShortTermSize:        cfg.Context.ShortTermSize,
		EpisodicInterval:     cfg.Context.EpisodicInterval,
		MaxTokens:            cfg.Context.MaxContextTokens,
		CompressionThreshold: cfg.Context.CompressionThreshold,
		RetrievalTopK:        cfg.Context.RetrievalTopK,
		KeepRecent:           cfg.Context.KeepRecent,
	}, summarizer)

	return &Engine{
		store:        s,
		embedder:     embedder,
		orchestrator: orchestrator,
		session:      session,
		metrics:      observability.NewMetrics(0),
		writeSem:     semaphore.NewWeighted(maxConcurrentWrites),
	}, nil
}

// StoreSemanticFact embeds a fact and durably stores it. The record is
// flushed before return. Failures are logged and surfaced, never swallowed.
func (e *Engine) StoreSemanticFact(ctx stdcontext.Context, text string) (*store.MemoryRecord, error) {
	vector, err := e.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed fact: %w", err)
	}

	if err := e.writeSem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer e.writeSem.Release(1)

	record, err := e.store.CreateMemoryRecord(ctx, text, vector)
	if err != nil {
		e.metrics.RecordStoreError()
		e.session.Error("semantic fact write failed", err)
		return nil, err
	}
	e.metrics.RecordStoreWrite()
	return record, nil
}

// RetrieveSemanticContext returns up to k stored texts most similar to the
// query. Best-effort: any failure degrades to an empty result so the caller
// can still complete the turn.
func (e *Engine) RetrieveSemanticContext(ctx stdcontext.Context, query string, k int) []string {
	start := time.Now()
	defer func() {
		e.metrics.RecordRetrieval(time.Since(start))
	}()

	results, err := e.searchStore(ctx, query, k)
	if err != nil {
		e.metrics.RecordStoreError()
		e.session.Warn("semantic retrieval degraded to empty result",
			observability.ErrAttr(err))
		return []string{}
	}

	texts := make([]string, len(results))
	for i, r := range results {
		texts[i] = r.Record.Text
	}
	return texts
}

// ProcessTurn advances the conversation state machine: buffer, profile
// extraction, episodic cadence, compression. assistantText may be empty for
// a half-open turn.
func (e *Engine) ProcessTurn(userText, assistantText string) {
	before := e.orchestrator.Episodic().EpisodeCount()
	compressionsBefore := e.orchestrator.LongTerm().ItemCount()

	e.orchestrator.ProcessTurn(userText, assistantText)

	if assistantText != "" {
		e.metrics.RecordTurn()
	}
	if e.orchestrator.Episodic().EpisodeCount() > before {
		e.metrics.RecordEpisode()
		e.session.Debug("episode created",
			observability.IntAttr(observability.LogFieldTurn, e.orchestrator.TurnCount()))
	}
	if e.orchestrator.LongTerm().ItemCount() > compressionsBefore {
		e.metrics.RecordCompression()
	}
}

// RelevantContext aggregates every in-memory tier for the query.
func (e *Engine) RelevantContext(query string) *context.RelevantContext {
	return e.orchestrator.RelevantContext(query)
}

// HybridRetrieve merges durable similarity search with the long-term
// keyword tier via reciprocal rank fusion. Best-effort on the durable side.
func (e *Engine) HybridRetrieve(ctx stdcontext.Context, query string, k int) []*rag.SearchResult {
	vectorResults := []*rag.SearchResult{}
	if records, err := e.searchStore(ctx, query, k); err == nil {
		for _, r := range records {
			vectorResults = append(vectorResults, &rag.SearchResult{
				ID:      r.Record.ID,
				Content: r.Record.Text,
				Score:   r.Score,
				Source:  "vector",
			})
		}
	} else {
		e.session.Warn("hybrid retrieval lost vector arm", observability.ErrAttr(err))
	}

	keywordResults := []*rag.SearchResult{}
	for i, snippet := range e.orchestrator.LongTerm().SearchByKeywords(query, k) {
		keywordResults = append(keywordResults, &rag.SearchResult{
			ID:      fmt.Sprintf("ltm-%d", i),
			Content: snippet,
			Source:  "keyword",
		})
	}

	fused := rag.FuseWithRRF(
		[][]*rag.SearchResult{vectorResults, keywordResults},
		[]float64{0.6, 0.4},
	)
	if len(fused) > k {
		fused = fused[:k]
	}
	return fused
}

// CountStoredFacts returns the number of durably stored semantic facts.
func (e *Engine) CountStoredFacts(ctx stdcontext.Context) (int64, error) {
	return e.store.CountMemoryRecords(ctx)
}

// Orchestrator exposes the tier orchestrator.
func (e *Engine) Orchestrator() *context.Orchestrator {
	return e.orchestrator
}

// Metrics exposes the engine counters.
func (e *Engine) Metrics() *observability.Metrics {
	return e.metrics
}

// Close releases the durable store.
func (e *Engine) Close() error {
	return e.store.Close()
}

func (e *Engine) searchStore(ctx stdcontext.Context, query string, k int) ([]*store.MemoryRecordWithScore, error) {
	vector, err := e.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	return e.store.SearchMemoryRecords(ctx, vector, k)
}
