package ai

import (
	"context"
	"database/sql"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relaymind/recall/internal/profile"
	"github.com/relaymind/recall/plugin/ai/embedder"
	"github.com/relaymind/recall/plugin/ai/memory"
	"github.com/relaymind/recall/store"
)

// fakeDriver keeps records in memory so engine tests need no database.
type fakeDriver struct {
	records []*store.MemoryRecord
	failAll bool
}

func (d *fakeDriver) GetDB() *sql.DB { return nil }
func (d *fakeDriver) Close() error   { return nil }

func (d *fakeDriver) CreateMemoryRecord(_ context.Context, create *store.MemoryRecord) (*store.MemoryRecord, error) {
	if d.failAll {
		return nil, assert.AnError
	}
	d.records = append(d.records, create)
	return create, nil
}

func (d *fakeDriver) GetMemoryRecord(_ context.Context, find *store.FindMemoryRecord) (*store.MemoryRecord, error) {
	if d.failAll {
		return nil, assert.AnError
	}
	for _, r := range d.records {
		if find.ID != nil && r.ID == *find.ID {
			return r, nil
		}
	}
	return nil, nil
}

func (d *fakeDriver) ListMemoryVectors(_ context.Context) ([]*store.MemoryVector, error) {
	if d.failAll {
		return nil, assert.AnError
	}
	vectors := make([]*store.MemoryVector, len(d.records))
	for i, r := range d.records {
		vectors[i] = &store.MemoryVector{ID: r.ID, Vector: r.Vector}
	}
	return vectors, nil
}

func (d *fakeDriver) CountMemoryRecords(_ context.Context) (int64, error) {
	return int64(len(d.records)), nil
}

func (d *fakeDriver) GetSystemSetting(_ context.Context, _ string) (string, error) { return "", nil }
func (d *fakeDriver) UpsertSystemSetting(_ context.Context, _, _ string) error    { return nil }

func testEngine(t *testing.T, driver store.Driver) *Engine {
	t.Helper()
	p := &profile.Profile{Mode: "demo", Driver: "sqlite", VectorDim: 128}
	cfg := &Config{
		Embedding: EmbeddingConfig{Provider: "hash", Dimensions: 128},
		Context: ContextConfig{
			ShortTermSize:        10,
			EpisodicInterval:     2,
			MaxContextTokens:     4096,
			CompressionThreshold: 0.8,
			RetrievalTopK:        5,
			KeepRecent:           3,
		},
	}
	engine, err := NewEngine(cfg, store.New(driver, p), embedder.NewHashEmbedder(128), nil, nil)
	require.NoError(t, err)
	return engine
}

func TestEngineSemanticRoundTrip(t *testing.T) {
	ctx := context.Background()
	engine := testEngine(t, &fakeDriver{})

	record, err := engine.StoreSemanticFact(ctx, "the deployment pipeline uses blue green releases")
	require.NoError(t, err)
	_, err = uuid.Parse(record.ID)
	assert.NoError(t, err, "record ids are UUIDs")

	_, err = engine.StoreSemanticFact(ctx, "completely different topic entirely")
	require.NoError(t, err)

	texts := engine.RetrieveSemanticContext(ctx, "deployment pipeline releases", 1)
	require.Len(t, texts, 1)
	assert.Equal(t, "the deployment pipeline uses blue green releases", texts[0])

	count, err := engine.CountStoredFacts(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)
	assert.EqualValues(t, 2, engine.Metrics().GetStoreWrites())
}

func TestEngineRetrievalDegradesToEmpty(t *testing.T) {
	ctx := context.Background()
	engine := testEngine(t, &fakeDriver{failAll: true})

	texts := engine.RetrieveSemanticContext(ctx, "anything", 5)
	assert.Empty(t, texts)
	assert.EqualValues(t, 1, engine.Metrics().GetStoreErrors())
}

func TestEngineWriteFailureSurfaced(t *testing.T) {
	ctx := context.Background()
	engine := testEngine(t, &fakeDriver{failAll: true})

	_, err := engine.StoreSemanticFact(ctx, "fact")
	assert.Error(t, err)
}

func TestEngineConversationFlow(t *testing.T) {
	engine := testEngine(t, &fakeDriver{})

	engine.ProcessTurn("I'm building NexusFlow in Rust", "great choice")
	engine.ProcessTurn("how should I structure the database", "start with one table")

	relevant := engine.RelevantContext("NexusFlow database")
	assert.NotEmpty(t, relevant.RecentMessages)
	assert.Contains(t, relevant.ProfileSummary, "NexusFlow")
	assert.EqualValues(t, 2, engine.Metrics().GetTurnsProcessed())
	assert.EqualValues(t, 1, engine.Metrics().GetEpisodesCreated())
}

func TestEngineHybridRetrieve(t *testing.T) {
	ctx := context.Background()
	engine := testEngine(t, &fakeDriver{})

	_, err := engine.StoreSemanticFact(ctx, "NexusFlow deployment runbook")
	require.NoError(t, err)
	engine.Orchestrator().LongTerm().AddMemory("NexusFlow keyword entry", memory.MemoryTypeFact, 1)

	results := engine.HybridRetrieve(ctx, "NexusFlow deployment", 5)
	require.NotEmpty(t, results)
	contents := []string{}
	for _, r := range results {
		contents = append(contents, r.Content)
	}
	assert.Contains(t, contents, "NexusFlow deployment runbook")
	assert.Contains(t, contents, "NexusFlow keyword entry")
}

func TestEngineDimensionMismatch(t *testing.T) {
	p := &profile.Profile{Mode: "demo", Driver: "sqlite", VectorDim: 128}
	cfg := &Config{
		Embedding: EmbeddingConfig{Provider: "hash", Dimensions: 128},
		Context:   ContextConfig{ShortTermSize: 10, EpisodicInterval: 10, MaxContextTokens: 4096, CompressionThreshold: 0.8},
	}
	_, err := NewEngine(cfg, store.New(&fakeDriver{}, p), embedder.NewHashEmbedder(64), nil, nil)
	assert.Error(t, err)
}
