package context

import (
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relaymind/recall/plugin/ai/memory"
)

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.EpisodicInterval = 2
	return cfg
}

func TestEpisodicCadence(t *testing.T) {
	o := NewOrchestrator(testConfig(), nil)

	o.ProcessTurn("first question", "first answer")
	assert.Equal(t, 0, o.Episodic().EpisodeCount())

	o.ProcessTurn("second question", "second answer")
	assert.Equal(t, 1, o.Episodic().EpisodeCount())

	o.ProcessTurn("third question", "third answer")
	o.ProcessTurn("fourth question", "fourth answer")
	assert.Equal(t, 2, o.Episodic().EpisodeCount())
}

func TestHalfOpenTurnDoesNotAdvance(t *testing.T) {
	o := NewOrchestrator(testConfig(), nil)

	o.ProcessTurn("user only", "")
	o.ProcessTurn("user only again", "")
	assert.Equal(t, 0, o.TurnCount())
	assert.Equal(t, 0, o.Episodic().EpisodeCount())
	assert.Equal(t, 2, o.ShortTerm().MessageCount())
	assert.Greater(t, o.TokenEstimate(), 0, "estimate refreshes even without an assistant reply")
}

func TestOrchestratorConcurrentAccess(t *testing.T) {
	o := NewOrchestrator(testConfig(), nil)
	done := make(chan bool)

	// Writer goroutine
	go func() {
		for i := 0; i < 100; i++ {
			o.ProcessTurn(fmt.Sprintf("question %d about the deploy pipeline", i), "acknowledged")
		}
		done <- true
	}()

	// Reader goroutine
	go func() {
		for i := 0; i < 100; i++ {
			_ = o.RelevantContext("deploy pipeline")
			_ = o.TokenEstimate()
		}
		done <- true
	}()

	<-done
	<-done

	assert.Equal(t, 100, o.TurnCount())
	assert.Equal(t, 50, o.Episodic().EpisodeCount())
}

func TestCompressionPreservesData(t *testing.T) {
	o := NewOrchestrator(testConfig(), nil)

	for i := 0; i < 5; i++ {
		o.Episodic().AddEpisode(fmt.Sprintf("episode number %d", i), (i+1)*2, 4)
	}

	o.Compress()

	// Two oldest episodes migrated, episodic tier untouched.
	assert.Equal(t, 5, o.Episodic().EpisodeCount())
	items := o.LongTerm().Items()
	require.Len(t, items, 2)
	assert.Equal(t, "episode number 0", items[0].Content)
	assert.Equal(t, "episode number 1", items[1].Content)
	assert.Equal(t, memory.MemoryTypeEpisode, items[0].Type)
}

func TestCompressionIsIdempotent(t *testing.T) {
	o := NewOrchestrator(testConfig(), nil)

	for i := 0; i < 5; i++ {
		o.Episodic().AddEpisode(fmt.Sprintf("episode number %d", i), (i+1)*2, 4)
	}

	o.Compress()
	o.Compress()
	assert.Equal(t, 2, o.LongTerm().ItemCount(), "re-running compression must not duplicate entries")
}

func TestCompressionTriggeredByTokenPressure(t *testing.T) {
	cfg := testConfig()
	cfg.MaxTokens = 100
	cfg.CompressionThreshold = 0.5
	o := NewOrchestrator(cfg, nil)

	long := strings.Repeat("deploy pipeline words ", 30)
	for i := 0; i < 8; i++ {
		o.ProcessTurn(long, "acknowledged "+fmt.Sprint(i))
	}

	assert.Greater(t, o.LongTerm().ItemCount(), 0, "old episodes should have been compressed into long-term memory")
	assert.Greater(t, o.TokenEstimate(), 0)
}

func TestRelevantContextAggregation(t *testing.T) {
	o := NewOrchestrator(testConfig(), nil)

	o.ProcessTurn("I'm building NexusFlow in Rust", "sounds good")
	o.ProcessTurn("how do I deploy the database", "with migrations")
	o.LongTerm().AddMemory("The user is building NexusFlow in Rust", memory.MemoryTypeFact, 1)

	ctx := o.RelevantContext("NexusFlow database deploy")
	assert.NotEmpty(t, ctx.RecentMessages)
	assert.NotEmpty(t, ctx.Episodes, "episode summary mentioning the query terms should match")
	require.NotEmpty(t, ctx.LongTermSnippets)
	assert.Equal(t, "The user is building NexusFlow in Rust", ctx.LongTermSnippets[0])
	assert.Contains(t, ctx.ProfileSummary, "NexusFlow")
	assert.Empty(t, ctx.Contradictions)
}

func TestRelevantContextContradictions(t *testing.T) {
	o := NewOrchestrator(testConfig(), nil)
	o.ProcessTurn("I'm building NexusFlow in Rust", "ok")

	ctx := o.RelevantContext("let's try Zig instead")
	assert.NotEmpty(t, ctx.Contradictions)
}

func TestTruncateSummarizer(t *testing.T) {
	s := TruncateSummarizer{}

	assert.Empty(t, s.Summarize(nil))

	long := strings.Repeat("x", 150)
	summary := s.Summarize([]memory.Message{
		{Role: memory.RoleUser, Content: long},
		{Role: memory.RoleAssistant, Content: "short"},
		{Role: memory.RoleUser, Content: "ignored"},
	})
	assert.Contains(t, summary, "user: "+strings.Repeat("x", truncateLen)+"...")
	assert.Contains(t, summary, "assistant: short")
	assert.NotContains(t, summary, "ignored")

	// The cut lands on a rune boundary, never inside a multi-byte character.
	wide := strings.Repeat("世", 40)
	summary = s.Summarize([]memory.Message{{Role: memory.RoleUser, Content: wide}})
	assert.True(t, utf8.ValidString(summary))
	assert.Contains(t, summary, strings.Repeat("世", 33)+"...")
}
